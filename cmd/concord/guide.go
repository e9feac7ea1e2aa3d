package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/concord/internal/telemetry"
	"github.com/aretw0/concord/pkg/adapters/guidanceapi"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Run the guidance API the onboarding pages submit to",
	Long: `Serves POST /api/guidance. Advice comes from the built-in heuristic advisor
or, with advisor.provider=openai, from a chat-completions model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		adv, err := newAdvisor(cfg)
		if err != nil {
			return err
		}

		metrics := telemetry.NewMetrics()
		api, err := guidanceapi.New(adv,
			guidanceapi.WithLogger(logger),
			guidanceapi.WithObserver(metrics.ObserveGuidance),
			guidanceapi.WithRoutes(func(r chi.Router) {
				r.Handle("/metrics", metrics.Handler())
			}),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              cfg.Guide.Addr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		logger.Info("Starting Guidance API", "address", srv.Addr, "advisor", cfg.Advisor.Provider)
		return listenAndServe(ctx, srv)
	},
}

func init() {
	rootCmd.AddCommand(guideCmd)
	guideCmd.Flags().String("addr", "", "Address to listen on (default :5001)")
	guideCmd.Flags().String("advisor", "", "Advisor: heuristic or openai")
	guideCmd.Flags().String("model", "", "Model used by the openai advisor")
	bindFlags(guideCmd, map[string]string{
		"addr":    "guide.addr",
		"advisor": "advisor.provider",
		"model":   "advisor.model",
	})
}
