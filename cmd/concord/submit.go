package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/concord/internal/presentation/tui"
	"github.com/aretw0/concord/pkg/coordinator"
	"github.com/aretw0/concord/pkg/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var submitCmd = &cobra.Command{
	Use:   "submit -f answers.yaml",
	Short: "Submit an answers file once and print the guidance",
	Long: `Reads onboarding answers from a YAML file (or "-" for stdin), submits them to
the guidance endpoint and prints the result. Exits 1 when the submission ends
in the error state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		printPayload, _ := cmd.Flags().GetBool("print-payload")

		var in io.Reader = cmd.InOrStdin()
		if path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		form, err := readAnswers(in)
		if err != nil {
			return err
		}

		if printPayload {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(domain.NewEnvelope(form.Payload()))
		}

		hist, err := openHistory(cfg.History, logger)
		if err != nil {
			return err
		}
		defer hist.Close()

		opts := []coordinator.Option{coordinator.WithLogger(logger)}
		if hist != nil {
			opts = append(opts,
				coordinator.WithPageID("cli-"+uuid.NewString()),
				coordinator.WithHooks(hist.Manager.Hooks()),
			)
		}
		coord := coordinator.New(newGuidanceClient(cfg), opts...)
		coord.SetContextual(form.Contextual)
		coord.SetMediator(form.Mediator)
		coord.SetGoals(form.Goals)

		state := coord.Submit(cmd.Context())
		if state.Status == domain.StatusError {
			return fmt.Errorf("%s", trimErrorPrefix(state.Text()))
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderFor(cmd.OutOrStdout())(state.Text()))
		return nil
	},
}

// trimErrorPrefix avoids "Error: Error: ..." when Execute prints the failure.
func trimErrorPrefix(msg string) string {
	return strings.TrimPrefix(msg, coordinator.ErrorPrefix)
}

// renderFor renders markdown on terminals and passes text through otherwise.
func renderFor(w io.Writer) func(string) string {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return tui.PlainRenderer
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width > 100 {
		width = 100
	}
	return tui.NewRenderer(width)
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringP("file", "f", "", "Answers file in YAML, or - for stdin")
	submitCmd.Flags().Bool("print-payload", false, "Print the request body instead of submitting")
	submitCmd.Flags().String("endpoint", "", "Guidance endpoint")
	_ = submitCmd.MarkFlagRequired("file")
	bindFlags(submitCmd, map[string]string{"endpoint": "guidance.endpoint"})
}
