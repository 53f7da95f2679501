package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/ngicks/linkmtime"
	"github.com/ngicks/linkmtime/clock"
	"github.com/ngicks/linkmtime/internal/config"
	"github.com/ngicks/linkmtime/internal/ctxlog"
	"github.com/spf13/cobra"
)

// fullISO is the layout of ls --time-style=full-iso.
const fullISO = "2006-01-02 15:04:05.000000000 -0700"

type statRecord struct {
	Path     string `json:"path" yaml:"path"`
	Resolved string `json:"resolved,omitempty" yaml:"resolved,omitempty"`
	Hops     int    `json:"hops" yaml:"hops"`
	ModTime  string `json:"mtime,omitempty" yaml:"mtime,omitempty"`
	Age      string `json:"age,omitempty" yaml:"age,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
	Kind     string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

func newStatRecord(m linkmtime.Metadata, c clock.WallClock) statRecord {
	return statRecord{
		Path:     m.Name,
		Resolved: m.Resolved,
		Hops:     m.Hops,
		ModTime:  m.ModTime().Format(time.RFC3339Nano),
		Age:      clock.Age(c, m.ModTime()).Round(time.Millisecond).String(),
	}
}

func newStatErrRecord(name string, err error) statRecord {
	r := statRecord{
		Path:  name,
		Error: err.Error(),
		Kind:  linkmtime.KindOf(err).String(),
	}
	var chainErr *linkmtime.ChainError
	if errors.As(err, &chainErr) {
		r.Hops = chainErr.Hops
	}
	return r
}

func newStatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat PATH...",
		Short: "Print the effective modification time of each path",
		Long: `stat resolves each path through its chain of symbolic links and prints the
modification time of the terminal entry. Chains longer than --max-hops, and link
cycles, are reported as link_chain_too_deep.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctxlog.FromContext(cmd.Context())
			r := a.resolver(cmd.Context())

			var (
				records []statRecord
				failed  int
			)
			for _, name := range args {
				m, err := r.Resolve(name)
				if err != nil {
					failed++
					logger.Debug("resolution failed", "path", name, "kind", linkmtime.KindOf(err).String())
					records = append(records, newStatErrRecord(name, err))
					if a.cfg.Output == config.OutputText {
						fmt.Fprintf(cmd.ErrOrStderr(), "linkmtime: %v [%s]\n", err, linkmtime.KindOf(err))
					}
					continue
				}
				logger.Debug("resolved", "path", name, "resolved", m.Resolved, "hops", m.Hops)
				records = append(records, newStatRecord(m, a.clock))
				if a.cfg.Output == config.OutputText {
					printStatText(cmd, m)
				}
			}

			if a.cfg.Output != config.OutputText {
				if err := encode(cmd.OutOrStdout(), a.cfg.Output, records); err != nil {
					return &ExitError{Code: 2, Err: err}
				}
			}

			if failed > 0 {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
}

func printStatText(cmd *cobra.Command, m linkmtime.Metadata) {
	if m.Hops == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", m.ModTime().Format(fullISO), m.Name)
		return
	}
	fmt.Fprintf(
		cmd.OutOrStdout(),
		"%s  %s -> %s (%d hop(s))\n",
		m.ModTime().Format(fullISO), m.Name, m.Resolved, m.Hops,
	)
}
