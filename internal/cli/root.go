// Package cli implements the linkmtime command line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ngicks/linkmtime"
	"github.com/ngicks/linkmtime/clock"
	"github.com/ngicks/linkmtime/internal/config"
	"github.com/ngicks/linkmtime/internal/ctxlog"
	"github.com/ngicks/linkmtime/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ExitError carries a specific exit code.
// A nil Err means the failure has already been reported.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// BuildInfo is injected via ldflags at build time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type app struct {
	v          *viper.Viper
	cfg        config.Config
	configFile string
	configDir  string
	fsys       linkmtime.Fs
	clock      clock.WallClock
	build      BuildInfo
}

func (a *app) resolver(ctx context.Context) *linkmtime.Resolver {
	return &linkmtime.Resolver{
		Fs:      a.fsys,
		MaxHops: a.cfg.MaxHops,
		Logger:  ctxlog.FromContext(ctx),
	}
}

type option func(a *app)

func withFs(fsys linkmtime.Fs) option {
	return func(a *app) { a.fsys = fsys }
}

func withClock(c clock.WallClock) option {
	return func(a *app) { a.clock = c }
}

func withConfigDir(dir string) option {
	return func(a *app) { a.configDir = dir }
}

func newRootCommand(build BuildInfo, opts ...option) *cobra.Command {
	a := &app{
		v:         config.New(),
		configDir: config.Dir(),
		fsys:      linkmtime.OsFs(),
		clock:     clock.RealWallClock(),
		build:     build,
	}
	for _, opt := range opts {
		opt(a)
	}

	rootCmd := &cobra.Command{
		Use:   "linkmtime",
		Short: "Report the modification time of the file a path ultimately refers to",
		Long: `linkmtime follows symbolic link chains, up to a bounded number of hops,
and reports the modification time of the terminal entry instead of the link's own.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.configFile, a.configDir)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}
			a.cfg = cfg

			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
			logger.Debug("config loaded", "max_hops", cfg.MaxHops, "tolerance", cfg.Tolerance, "output", cfg.Output)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default "+config.Dir()+"/config.yaml)")
	flags.Int("max-hops", linkmtime.DefaultMaxHops, "Maximum number of symbolic links followed per path")
	flags.String("log-level", "warn", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.StringP("output", "o", config.OutputText, "Output format: text, json or yaml")
	for key, flag := range map[string]string{
		config.KeyMaxHops:   "max-hops",
		config.KeyLogLevel:  "log-level",
		config.KeyLogFormat: "log-format",
		config.KeyOutput:    "output",
	} {
		mustBindPFlag(a.v, key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(
		newStatCommand(a),
		newCompareCommand(a),
		newVersionCommand(a),
	)
	return rootCmd
}

// mustBindPFlag binds flag to key. It only fails on a nil flag,
// which is a programming error.
func mustBindPFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag to %q: %v", key, err))
	}
}

// Execute runs the command line with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, build BuildInfo) int {
	return execute(ctx, args, stdout, stderr, build)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer, build BuildInfo, opts ...option) int {
	rootCmd := newRootCommand(build, opts...)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(stderr, "linkmtime: %v\n", exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "linkmtime: %v\n", err)
	return 2
}
