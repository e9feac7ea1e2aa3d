package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/aretw0/concord/internal/presentation/graph"
	"github.com/aretw0/concord/pkg/adapters/sqlite"
	"github.com/spf13/cobra"
)

var errHistoryDisabled = errors.New("history is disabled (set history.backend)")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded submissions",
	Long:  `List, inspect, and remove the submission histories of onboarding pages.`,
}

var historyLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List pages with recorded submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := requireHistory()
		if err != nil {
			return err
		}
		defer hist.Close()
		out := cmd.OutOrStdout()

		if store, ok := hist.Raw.(*sqlite.Store); ok {
			summaries, err := store.Summaries(cmd.Context())
			if err != nil {
				return fmt.Errorf("list histories: %w", err)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No recorded submissions found.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PAGE\tATTEMPTS\tLAST STATUS\tUPDATED")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", s.PageID, s.Attempts, s.LastStatus, s.UpdatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		}

		ids, err := hist.Manager.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list histories: %w", err)
		}
		if len(ids) == 0 {
			fmt.Fprintln(out, "No recorded submissions found.")
			return nil
		}
		fmt.Fprintln(out, "Recorded Pages:")
		for _, id := range ids {
			fmt.Fprintln(out, "- "+id)
		}
		return nil
	},
}

var historyInspectCmd = &cobra.Command{
	Use:   "inspect <page-id>",
	Short: "Print the submissions of a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := requireHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		h, err := hist.Manager.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("loading history '%s': %w", args[0], err)
		}
		if mermaid, _ := cmd.Flags().GetBool("mermaid"); mermaid {
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(h))
			return nil
		}
		data, err := json.MarshalIndent(h, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <page-id>...",
	Short: "Remove the history of one or more pages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := requireHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		var failed int
		for _, id := range args {
			if err := hist.Manager.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed history '%s'\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d removals failed", failed, len(args))
		}
		return nil
	},
}

func requireHistory() (*history, error) {
	hist, err := openHistory(cfg.History, logger)
	if err != nil {
		return nil, err
	}
	if hist == nil {
		return nil, errHistoryDisabled
	}
	return hist, nil
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyLsCmd)
	historyCmd.AddCommand(historyInspectCmd)
	historyCmd.AddCommand(historyRmCmd)

	historyInspectCmd.Flags().Bool("mermaid", false, "Print the attempts as a Mermaid diagram")

	historyCmd.PersistentFlags().String("backend", "", "History backend: memory, file, redis or sqlite")
	historyCmd.PersistentFlags().String("path", "", "History path for the file and sqlite backends")
	for _, c := range []*cobra.Command{historyLsCmd, historyInspectCmd, historyRmCmd} {
		bindFlags(c, map[string]string{
			"backend": "history.backend",
			"path":    "history.path",
		})
	}
}
