package cli

import (
	"fmt"

	"github.com/ngicks/linkmtime/internal/config"
	"github.com/spf13/cobra"
)

func newVersionCommand(a *app) *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), a.build.Version)
				return nil
			}
			if a.cfg.Output != config.OutputText {
				return encode(cmd.OutOrStdout(), a.cfg.Output, map[string]string{
					"version": a.build.Version,
					"commit":  a.build.Commit,
					"date":    a.build.Date,
				})
			}
			fmt.Fprintf(
				cmd.OutOrStdout(),
				"linkmtime version %s (commit: %s, built: %s)\n",
				a.build.Version, a.build.Commit, a.build.Date,
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print version number only")
	return cmd
}
