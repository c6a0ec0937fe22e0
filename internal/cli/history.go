package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/interpretive-systems/anchor/internal/history"
)

func newHistoryCommand(cc *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent generation attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "History is disabled (history.enabled = false).")
				return nil
			}

			store, err := history.Open(cmd.Context(), cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			attempts, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(attempts) == 0 {
				fmt.Fprintln(out, "No attempts recorded yet.")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Topic", "Source", "Kind", "Status", "Took", "Artifact / Error"},
				historyRows(attempts, time.Now()),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of attempts to show")
	return cmd
}

func historyRows(attempts []history.Attempt, now time.Time) [][]string {
	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		detail := a.Artifact
		if a.Status != "completed" {
			detail = a.ErrorKind
			if a.Message != "" {
				detail += ": " + a.Message
			}
		}
		rows = append(rows, []string{
			humanize.RelTime(a.StartedAt, now, "ago", "from now"),
			strings.Join(a.Topics, ", "),
			a.SourceMode,
			a.Kind,
			a.Status,
			a.Duration().Round(time.Second).String(),
			detail,
		})
	}
	return rows
}
