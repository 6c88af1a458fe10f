package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/output"
	"github.com/intentlab/fanout-cli/internal/plan"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP server that runs fan-outs on request",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initFanout(ctx, "serve")
		if err != nil {
			return err
		}

		writer := output.Writer{Dir: cfg.Output.Dir}
		mux := buildMux(ctx, env, writer, synthesizer(env.Gen, env.Ledger))

		addr := serveAddr
		if addr == "" {
			addr = cfg.Serve.Addr
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildMux wires the health and fan-out endpoints. env may be nil in tests;
// the async worker then drops the request after accepting it.
func buildMux(ctx context.Context, env *fanoutEnv, writer output.Writer, synth *plan.Synthesizer) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /fanout", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query    string `json:"query"`
			Location string `json:"location"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		if req.Query == "" {
			http.Error(w, `{"error":"query is required"}`, http.StatusBadRequest)
			return
		}

		// Run the fan-out asynchronously
		go func() {
			if env == nil {
				zap.L().Warn("fanout request dropped, pipeline not initialized",
					zap.String("query", req.Query),
				)
				return
			}
			if err := runQuery(ctx, env, writer, synth, req.Query, req.Location); err != nil {
				zap.L().Error("fanout request failed",
					zap.String("query", req.Query),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("fanout request complete", zap.String("query", req.Query))
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "accepted",
			"query":  req.Query,
		})
	})

	return mux
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
