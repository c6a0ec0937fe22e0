// Package cli wires the cobra commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

func newRootCommand() *cobra.Command {
	var flags globalFlags
	cc := newCommandContext(&flags)

	root := &cobra.Command{
		Use:           "anchor",
		Short:         "Operator console for the AI news-anchor backend",
		Long:          "Anchor: pick a topic and a source, generate a narrated news video or audio clip.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := cc.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, cc)
		},
	}

	root.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	root.PersistentFlags().StringVarP(&flags.backend, "backend", "b", "", "Backend base URL (overrides "+envHint+")")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(newConsoleCommand(cc))
	root.AddCommand(newGenerateCommand(cc))
	root.AddCommand(newHistoryCommand(cc))
	root.AddCommand(newConfigCommand(cc))
	return root
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
