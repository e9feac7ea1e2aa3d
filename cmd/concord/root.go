package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/concord/internal/config"
	"github.com/aretw0/concord/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger = logging.NewNop()
)

// globalFlags maps persistent flags to configuration keys.
var globalFlags = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
}

var rootCmd = &cobra.Command{
	Use:   "concord",
	Short: "Concord collects conflict onboarding answers and returns guidance",
	Long: `Concord serves an onboarding page where people describe a conflict, pick a
mediator style and state their goals, then submits the answers to a guidance
service and shows the advice it returns.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Configuration file (default ./concord.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
}

// commandFlags holds the flag to key bindings of each subcommand.
var commandFlags = map[*cobra.Command]map[string]string{}

func bindFlags(cmd *cobra.Command, keys map[string]string) {
	commandFlags[cmd] = keys
}

// setup loads configuration, applying the flags the user set explicitly.
func setup(cmd *cobra.Command) error {
	overrides := map[string]any{}
	collect := func(keys map[string]string) {
		for name, key := range keys {
			if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
				overrides[key] = f.Value.String()
			}
		}
	}
	collect(globalFlags)
	collect(commandFlags[cmd])

	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path, overrides)
	if err != nil {
		return err
	}
	cfg = c

	l, err := logging.NewFromConfig(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}
	logger = l
	slog.SetDefault(logger)
	return nil
}
