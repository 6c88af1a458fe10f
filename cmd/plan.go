package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/cost"
	"github.com/intentlab/fanout-cli/internal/model"
	"github.com/intentlab/fanout-cli/internal/output"
	"github.com/intentlab/fanout-cli/internal/plan"
	"github.com/intentlab/fanout-cli/internal/registry"
	"github.com/intentlab/fanout-cli/pkg/notion"
	"github.com/intentlab/fanout-cli/pkg/textgen"
)

var planFile string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a combined content plan from saved run records",
	Long:  "Reads previously saved fan-out records, regroups every routed sub-query against the current cluster definitions, and writes one combined content plan.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("plan"); err != nil {
			return err
		}

		var records []model.Record
		if planFile != "" {
			rec, err := output.ReadRecord(planFile)
			if err != nil {
				return err
			}
			records = []model.Record{*rec}
		} else {
			var err error
			records, err = output.LoadRecords(cfg.Output.Dir)
			if err != nil {
				return err
			}
		}
		if len(records) == 0 {
			return eris.Errorf("plan: no run records in %s", cfg.Output.Dir)
		}

		var notionClient notion.Client
		if cfg.Notion.APIKey != "" {
			notionClient = notion.NewClient(cfg.Notion.APIKey)
		}

		clusters, err := registry.Resolve(ctx, notionClient, cfg.Notion.ClustersDBID, cfg.Clusters.File)
		if err != nil {
			return err
		}

		// Pool every record's routed sub-queries into one combined plan,
		// titled after the distinct seed queries in record order.
		var routed []model.RoutedSubQuery
		var queries []string
		seen := make(map[string]bool)
		for _, rec := range records {
			routed = append(routed, rec.RoutedAndProfiled...)
			if !seen[rec.OriginalQuery] {
				seen[rec.OriginalQuery] = true
				queries = append(queries, rec.OriginalQuery)
			}
		}
		title := strings.Join(queries, ", ")

		zap.L().Info("building combined plan",
			zap.Int("records", len(records)),
			zap.Int("sub_queries", len(routed)),
		)

		// Brief synthesis degrades to the deterministic local aggregation
		// when no text-generation key is configured.
		var gen textgen.Client
		if key := cfg.TextGenKey(); key != "" {
			gen, err = textgen.New(ctx, cfg.TextGen.Provider, key)
			if err != nil {
				return err
			}
		}
		ledger := cost.NewLedger(cost.DefaultRates())
		synth := synthesizer(gen, ledger)

		briefs := synth.Synthesize(ctx, plan.Assign(clusters, routed))
		text := plan.Render(title, briefs)

		writer := output.Writer{Dir: cfg.Output.Dir}
		path, err := writer.WritePlan(text, output.Stamp(time.Now()))
		if err != nil {
			return err
		}

		if notionClient != nil && cfg.Notion.ParentPageID != "" {
			if _, err := output.PublishBriefs(ctx, notionClient, cfg.Notion.ParentPageID, title, briefs); err != nil {
				zap.L().Warn("notion publish failed", zap.Error(err))
			}
		}

		if gen != nil {
			fmt.Print(ledger.Summary())
		}
		fmt.Println(path)

		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&planFile, "file", "", "plan a single saved record instead of every record in the output dir")
	rootCmd.AddCommand(planCmd)
}
