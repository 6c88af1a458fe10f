package cost

// Rates holds the per-model pricing table. Prices are USD per million tokens.
type Rates struct {
	Models map[string]ModelRate `yaml:"models" mapstructure:"models"`
}

// ModelRate holds one model's token pricing. Flat-rate models leave the tier
// fields zero. Tiered models set TierCutoff: calls whose input token count
// exceeds the cutoff are billed at the long rates (the output rate tier also
// follows the input count, matching provider billing).
type ModelRate struct {
	Input      float64 `yaml:"input" mapstructure:"input"`
	Output     float64 `yaml:"output" mapstructure:"output"`
	TierCutoff int     `yaml:"tier_cutoff" mapstructure:"tier_cutoff"`
	InputLong  float64 `yaml:"input_long" mapstructure:"input_long"`
	OutputLong float64 `yaml:"output_long" mapstructure:"output_long"`
}

// Cost computes the USD cost of one call under this rate.
func (r ModelRate) Cost(inputTokens, outputTokens int) float64 {
	in, out := r.Input, r.Output
	if r.TierCutoff > 0 && inputTokens > r.TierCutoff {
		in, out = r.InputLong, r.OutputLong
	}
	return (float64(inputTokens)/1e6)*in + (float64(outputTokens)/1e6)*out
}

// DefaultRates returns the default pricing table for the supported
// text-generation models.
func DefaultRates() Rates {
	return Rates{
		Models: map[string]ModelRate{
			"gemini-1.5-flash-latest": {
				Input: 0.35, Output: 1.05,
			},
			"gemini-1.5-pro-latest": {
				Input: 0.625, Output: 5.00,
				TierCutoff: 200000,
				InputLong:  1.25, OutputLong: 7.50,
			},
			"claude-haiku-4-5-20251001": {
				Input: 0.80, Output: 4.00,
			},
			"claude-sonnet-4-5-20250929": {
				Input: 3.00, Output: 15.00,
			},
		},
	}
}
