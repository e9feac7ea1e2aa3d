package main

import (
	"fmt"

	"github.com/aretw0/concord/internal/logging"
	"github.com/aretw0/concord/internal/presentation/tui"
	"github.com/aretw0/concord/pkg/coordinator"
	"github.com/aretw0/concord/pkg/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Fill in the onboarding form in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := openHistory(cfg.History, logger)
		if err != nil {
			return err
		}
		defer hist.Close()

		// Log lines would tear the form apart.
		opts := []coordinator.Option{coordinator.WithLogger(logging.NewNop())}
		if hist != nil {
			opts = append(opts,
				coordinator.WithPageID("tui-"+uuid.NewString()),
				coordinator.WithHooks(hist.Manager.Hooks()),
			)
		}
		coord := coordinator.New(newGuidanceClient(cfg), opts...)

		tui.PrintBanner(cmd.OutOrStdout())
		state, err := tui.Run(cmd.Context(), coord, renderFor(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		if state.Status == domain.StatusError {
			return fmt.Errorf("%s", trimErrorPrefix(state.Text()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(onboardCmd)
	onboardCmd.Flags().String("endpoint", "", "Guidance endpoint")
	bindFlags(onboardCmd, map[string]string{"endpoint": "guidance.endpoint"})
}
