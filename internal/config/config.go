package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	TextGen   TextGenConfig   `yaml:"textgen" mapstructure:"textgen"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Clusters  ClustersConfig  `yaml:"clusters" mapstructure:"clusters"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Serve     ServeConfig     `yaml:"serve" mapstructure:"serve"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// PipelineConfig holds the fan-out knobs.
type PipelineConfig struct {
	MaxSearchResults      int `yaml:"max_search_results" mapstructure:"max_search_results"`
	MinScrapableResults   int `yaml:"min_scrapable_results" mapstructure:"min_scrapable_results"`
	InitialScrapeAttempts int `yaml:"initial_scrape_attempts" mapstructure:"initial_scrape_attempts"`
	MaxContentChars       int `yaml:"max_content_chars" mapstructure:"max_content_chars"`
	Concurrency           int `yaml:"concurrency" mapstructure:"concurrency"`
}

// RetryConfig holds the shared backoff policy applied to every collaborator.
type RetryConfig struct {
	InitialDelay time.Duration `yaml:"initial_delay" mapstructure:"initial_delay"`
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"`
}

// TextGenConfig selects the generation provider and models.
type TextGenConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"`
	Model      string `yaml:"model" mapstructure:"model"`
	FlashModel string `yaml:"flash_model" mapstructure:"flash_model"`
}

// GeminiConfig holds Gemini API credentials.
type GeminiConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// AnthropicConfig holds Anthropic API credentials.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// FirecrawlConfig holds Firecrawl API settings.
type FirecrawlConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// NotionConfig holds the optional Notion integration settings. ClustersDBID
// selects the cluster-definition database; ParentPageID enables brief
// publishing. Both require APIKey.
type NotionConfig struct {
	APIKey       string `yaml:"api_key" mapstructure:"api_key"`
	ClustersDBID string `yaml:"clusters_db_id" mapstructure:"clusters_db_id"`
	ParentPageID string `yaml:"parent_page_id" mapstructure:"parent_page_id"`
}

// OutputConfig configures run artifact writing.
type OutputConfig struct {
	Dir  string `yaml:"dir" mapstructure:"dir"`
	XLSX bool   `yaml:"xlsx" mapstructure:"xlsx"`
}

// ClustersConfig points at an optional YAML cluster-definition override.
type ClustersConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// ScrapeConfig configures the scrape chain.
type ScrapeConfig struct {
	ExcludePaths []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Dir    string `yaml:"dir" mapstructure:"dir"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("fanout")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.fanout")

	// Environment
	v.SetEnvPrefix("FANOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("pipeline.max_search_results", 10)
	v.SetDefault("pipeline.min_scrapable_results", 2)
	v.SetDefault("pipeline.initial_scrape_attempts", 3)
	v.SetDefault("pipeline.max_content_chars", 12000)
	v.SetDefault("pipeline.concurrency", 4)
	v.SetDefault("retry.initial_delay", "5s")
	v.SetDefault("retry.max_retries", 4)
	v.SetDefault("textgen.provider", "gemini")
	v.SetDefault("textgen.model", "gemini-1.5-pro-latest")
	v.SetDefault("textgen.flash_model", "gemini-1.5-flash-latest")
	// Credential keys get empty defaults so AutomaticEnv can see them during
	// Unmarshal; viper only consults the environment for keys it knows.
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("firecrawl.api_key", "")
	v.SetDefault("notion.api_key", "")
	v.SetDefault("notion.clusters_db_id", "")
	v.SetDefault("notion.parent_page_id", "")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v2")
	v.SetDefault("output.dir", "outputs")
	v.SetDefault("output.xlsx", false)
	v.SetDefault("clusters.file", "")
	v.SetDefault("scrape.exclude_paths", []string{})
	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.dir", "logs")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// TextGenKey returns the API key of the configured generation provider, empty
// when the provider has no key set.
func (c *Config) TextGenKey() string {
	switch c.TextGen.Provider {
	case "", "gemini":
		return c.Gemini.APIKey
	case "anthropic":
		return c.Anthropic.APIKey
	}
	return ""
}

// Validate checks that every setting the given command mode depends on is
// present and in range. Modes: "run", "plan", "serve".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "run", "serve":
		if c.Firecrawl.APIKey == "" {
			problems = append(problems, "firecrawl.api_key is required")
		}
		problems = append(problems, c.textgenProblems(true)...)
		problems = append(problems, c.pipelineProblems()...)
		problems = append(problems, c.notionProblems()...)
		if mode == "serve" && c.Serve.Addr == "" {
			problems = append(problems, "serve.addr is required")
		}
	case "plan":
		problems = append(problems, c.textgenProblems(false)...)
		problems = append(problems, c.notionProblems()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// textgenProblems validates the provider selection. The provider key is only
// required in modes that must generate text; plan degrades to local briefs.
func (c *Config) textgenProblems(requireKey bool) []string {
	switch c.TextGen.Provider {
	case "", "gemini":
		if requireKey && c.Gemini.APIKey == "" {
			return []string{"gemini.api_key is required"}
		}
	case "anthropic":
		if requireKey && c.Anthropic.APIKey == "" {
			return []string{"anthropic.api_key is required"}
		}
	default:
		return []string{fmt.Sprintf("textgen.provider must be gemini or anthropic, got %q", c.TextGen.Provider)}
	}
	return nil
}

func (c *Config) pipelineProblems() []string {
	var problems []string
	p := c.Pipeline

	if p.MaxSearchResults < 1 || p.MaxSearchResults > 100 {
		problems = append(problems, "pipeline.max_search_results must be between 1 and 100")
	}
	if p.MinScrapableResults < 1 || p.MinScrapableResults > p.MaxSearchResults {
		problems = append(problems, "pipeline.min_scrapable_results must be between 1 and pipeline.max_search_results")
	}
	if p.InitialScrapeAttempts < 1 || p.InitialScrapeAttempts > p.MaxSearchResults {
		problems = append(problems, "pipeline.initial_scrape_attempts must be between 1 and pipeline.max_search_results")
	}
	if p.MaxContentChars < 1 {
		problems = append(problems, "pipeline.max_content_chars must be > 0")
	}
	if p.Concurrency < 1 || p.Concurrency > 50 {
		problems = append(problems, "pipeline.concurrency must be between 1 and 50")
	}

	if c.Retry.MaxRetries < 1 || c.Retry.MaxRetries > 10 {
		problems = append(problems, "retry.max_retries must be between 1 and 10")
	}
	if c.Retry.InitialDelay <= 0 {
		problems = append(problems, "retry.initial_delay must be > 0")
	}

	return problems
}

// notionProblems flags Notion features configured without credentials.
func (c *Config) notionProblems() []string {
	if c.Notion.APIKey == "" && (c.Notion.ClustersDBID != "" || c.Notion.ParentPageID != "") {
		return []string{"notion.api_key is required when notion.clusters_db_id or notion.parent_page_id is set"}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	zapCfg, err := buildZapConfig(cfg)
	if err != nil {
		return err
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// InitRunLogger rebuilds the global logger with an additional sink under
// cfg.Dir named for the run stamp, and returns the log file path.
func InitRunLogger(cfg LogConfig, stamp string) (string, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "config: create log dir %s", dir)
	}
	path := filepath.Join(dir, "query-fan-out-run-"+stamp+".log")

	zapCfg, err := buildZapConfig(cfg)
	if err != nil {
		return "", err
	}
	zapCfg.OutputPaths = append(zapCfg.OutputPaths, path)

	logger, err := zapCfg.Build()
	if err != nil {
		return "", eris.Wrap(err, "config: build run logger")
	}
	zap.ReplaceGlobals(logger)

	return path, nil
}

func buildZapConfig(cfg LogConfig) (zap.Config, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zap.Config{}, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	return zapCfg, nil
}
