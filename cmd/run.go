package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/config"
	"github.com/intentlab/fanout-cli/internal/output"
	"github.com/intentlab/fanout-cli/internal/plan"
)

var (
	runLocation string
	runXLSX     bool
)

var runCmd = &cobra.Command{
	Use:   "run \"query\" [\"query\" ...]",
	Short: "Run the fan-out pipeline for one or more seed queries",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		batchStamp := output.Stamp(time.Now())
		logPath, err := config.InitRunLogger(cfg.Log, batchStamp)
		if err != nil {
			return err
		}
		zap.L().Info("run log opened", zap.String("path", logPath))

		env, err := initFanout(ctx, "run")
		if err != nil {
			return err
		}

		writer := output.Writer{Dir: cfg.Output.Dir}
		synth := synthesizer(env.Gen, env.Ledger)

		env.Ledger.StartRun(ctx, env.Firecrawl)
		for _, query := range args {
			if err := runQuery(ctx, env, writer, synth, query, runLocation); err != nil {
				return eris.Wrapf(err, "run %q", query)
			}
		}
		env.Ledger.EndRun(ctx, env.Firecrawl)

		summary := env.Ledger.Summary()
		fmt.Print(summary)
		if _, err := writer.WriteCosts(summary, batchStamp); err != nil {
			return err
		}

		return nil
	},
}

// runQuery executes the pipeline for one query and writes its artifacts: the
// JSON run record, the XLSX flattening when enabled, the rendered content
// plan, and the Notion briefs when a parent page is configured. A failed
// Notion publish is logged rather than returned; the local artifacts are
// already on disk at that point.
func runQuery(ctx context.Context, env *fanoutEnv, writer output.Writer, synth *plan.Synthesizer, query, location string) error {
	record, err := env.Pipeline.Run(ctx, query, location)
	if err != nil {
		return err
	}

	stamp := output.Stamp(record.GeneratedAt)
	if _, err := writer.WriteRecord(record, stamp); err != nil {
		return err
	}
	if cfg.Output.XLSX || runXLSX {
		if _, err := writer.WriteXLSX(record, stamp); err != nil {
			return err
		}
	}

	briefs := synth.Synthesize(ctx, plan.Assign(env.Clusters, record.RoutedAndProfiled))
	if _, err := writer.WritePlan(plan.Render(record.OriginalQuery, briefs), stamp); err != nil {
		return err
	}

	if env.Notion != nil && cfg.Notion.ParentPageID != "" {
		if _, err := output.PublishBriefs(ctx, env.Notion, cfg.Notion.ParentPageID, record.OriginalQuery, briefs); err != nil {
			zap.L().Warn("notion publish failed",
				zap.String("query", query),
				zap.Error(err),
			)
		}
	}

	return nil
}

func init() {
	runCmd.Flags().StringVar(&runLocation, "location", "", "location context for the fan-out, e.g. \"Austin, TX\"")
	runCmd.Flags().BoolVar(&runXLSX, "xlsx", false, "also write the flattened XLSX artifact")
	rootCmd.AddCommand(runCmd)
}
