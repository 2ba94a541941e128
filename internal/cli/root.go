// Package cli implements the stepbinder command line.
package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fjglira/stepbinder/internal/config"
)

const defaultConfigFile = "stepbinder.yaml"

var (
	cfgFile string
	verbose bool
	dryRun  bool
	log     *logrus.Logger
	logFile *os.File
)

// rootCmd is the base command for stepbinder.
var rootCmd = &cobra.Command{
	Use:   "stepbinder",
	Short: "Bind Gherkin steps to Go step definitions",
	Long: `stepbinder reads Gherkin features (.feature files and gherkin blocks in
Markdown or AsciiDoc) and resolves every step against the step definitions
declared in annotated Go sources.

Undefined, ambiguous and out-of-scope steps are reported together with a
code skeleton for the missing definitions. Everything is driven by a YAML
configuration file (stepbinder.yaml).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = newLogger(cmd.ErrOrStderr(), verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
			logFile = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "match steps but don't invoke handlers")

	// Initialize default logger (overridden in PersistentPreRun)
	log = newLogger(os.Stderr, false)
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// loadConfig reads the config file, falling back to the defaults when the
// default file is absent, validates it and applies flags and logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		if cfgFile != defaultConfigFile || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		log.Debugf("No %s found, using defaults", defaultConfigFile)
		cfg = config.DefaultConfig()
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	if dryRun {
		cfg.DryRun = true
	}

	if !verbose && cfg.Logging.Level != "" {
		if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
			log.SetLevel(level)
		}
	}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		logFile = f
		log.SetOutput(f)
	}

	log.Debugf("Loaded config: %+v", cfg)
	return cfg, nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ExecuteArgs runs the command line args with the given output streams.
// Flags are reset to their defaults first.
func ExecuteArgs(args []string, out, errOut io.Writer) error {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return rootCmd.Execute()
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
