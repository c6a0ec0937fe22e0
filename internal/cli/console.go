package cli

import (
	"github.com/spf13/cobra"

	"github.com/interpretive-systems/anchor/internal/logger"
	"github.com/interpretive-systems/anchor/internal/tui"
)

func newConsoleCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Open the interactive console",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, cc)
		},
	}
}

func runConsole(cmd *cobra.Command, cc *commandContext) error {
	// The terminal belongs to the console, so logs only go to the file.
	if err := cc.setupLogging(nil); err != nil {
		return err
	}
	defer logger.Close()

	ctx := cmd.Context()
	s, err := cc.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	cfg, _ := cc.ensureConfig()
	return tui.Run(ctx, tui.Options{
		Session:      s,
		PrefsPath:    cfg.PrefsPath(),
		ThemePath:    cfg.ThemePath(),
		TickInterval: cfg.ProgressInterval(),
		BackendURL:   cfg.Backend.URL,
	})
}
