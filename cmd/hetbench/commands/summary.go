package commands

import (
	"github.com/spf13/cobra"

	"github.com/LynnColeArt/hetmem"
)

func newSummaryCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [log-file]",
		Short: "Print a summary of recorded benchmark results",
		Long: `Print the results stored in a JSON result log. Without an argument the
most recent log in the configured log directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				dir := s.cfg.Bench.LogDir
				if dir == "" {
					dir = "."
				}
				latest, err := hetmem.LatestLog(dir)
				if err != nil {
					return err
				}
				path = latest
			}

			results, err := hetmem.ReadLog(path)
			if err != nil {
				return err
			}
			hetmem.WriteSummary(cmd.OutOrStdout(), path, results)
			return nil
		},
	}
	cmd.Flags().String("log-dir", "", "directory searched for the latest result log")
	return cmd
}
