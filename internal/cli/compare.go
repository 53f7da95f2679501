package cli

import (
	"fmt"
	"time"

	"github.com/ngicks/linkmtime"
	"github.com/ngicks/linkmtime/internal/config"
	"github.com/ngicks/linkmtime/internal/ctxlog"
	"github.com/spf13/cobra"
)

type compareRecord struct {
	A         statRecord `json:"a" yaml:"a"`
	B         statRecord `json:"b" yaml:"b"`
	Skew      string     `json:"skew" yaml:"skew"`
	Tolerance string     `json:"tolerance" yaml:"tolerance"`
	InSync    bool       `json:"in_sync" yaml:"in_sync"`
	Newer     string     `json:"newer,omitempty" yaml:"newer,omitempty"`
}

func newCompareCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare A B",
		Short: "Check whether two paths were modified within the tolerance of each other",
		Long: `compare resolves both paths, typically a notebook and its paired script where
one side is a symbolic link, and compares the effective modification times.
It exits with status 1 when the pair is out of sync.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctxlog.FromContext(cmd.Context())
			tolerance := a.cfg.Tolerance

			status, err := linkmtime.ComparePair(a.resolver(cmd.Context()), args[0], args[1], tolerance)
			if err != nil {
				return &ExitError{Code: 2, Err: fmt.Errorf("%w [%s]", err, linkmtime.KindOf(err))}
			}
			logger.Debug("compared", "a", status.A.Resolved, "b", status.B.Resolved, "skew", status.Skew)

			if a.cfg.Output == config.OutputText {
				printCompareText(cmd, status, tolerance)
			} else {
				rec := compareRecord{
					A:         newStatRecord(status.A, a.clock),
					B:         newStatRecord(status.B, a.clock),
					Skew:      status.Skew.String(),
					Tolerance: tolerance.String(),
					InSync:    status.InSync,
					Newer:     status.Newer(),
				}
				if err := encode(cmd.OutOrStdout(), a.cfg.Output, rec); err != nil {
					return &ExitError{Code: 2, Err: err}
				}
			}

			if !status.InSync {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
	cmd.Flags().Duration("tolerance", linkmtime.DefaultTolerance, "Maximum mtime difference considered in sync")
	mustBindPFlag(a.v, config.KeyTolerance, cmd.Flags().Lookup("tolerance"))
	return cmd
}

func printCompareText(cmd *cobra.Command, status linkmtime.PairStatus, tolerance time.Duration) {
	w := cmd.OutOrStdout()
	for _, m := range []linkmtime.Metadata{status.A, status.B} {
		fmt.Fprintf(w, "%s  %s", m.ModTime().Format(fullISO), m.Name)
		if m.Hops > 0 {
			fmt.Fprintf(w, " -> %s", m.Resolved)
		}
		fmt.Fprintln(w)
	}
	switch newer := status.Newer(); newer {
	case "":
		fmt.Fprintf(w, "in sync (skew %s, tolerance %s)\n", status.Skew, tolerance)
	default:
		name := status.A.Name
		if newer == "b" {
			name = status.B.Name
		}
		skew := status.Skew
		if skew < 0 {
			skew = -skew
		}
		fmt.Fprintf(w, "out of sync: %s is newer by %s (tolerance %s)\n", name, skew, tolerance)
	}
}
