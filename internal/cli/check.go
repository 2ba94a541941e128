package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fjglira/stepbinder/internal/config"
	"github.com/fjglira/stepbinder/internal/watch"
)

var watchMode bool

var watchedExtensions = []string{".feature", ".md", ".markdown", ".adoc", ".asciidoc", ".go"}

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Resolve every step against the step definitions",
	Long: `Scans the binding sources for step definitions, loads the features and
matches every step. Undefined, out-of-scope and ambiguous steps make the
check fail. Paths default to features.directories from the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log.Infof("Checking features in %v against bindings in %v", cfg.Features.Directories, cfg.Bindings.Directories)
		checkErr := runCheck(cmd, cfg, args)
		if !watchMode {
			return checkErr
		}
		if checkErr != nil {
			log.Error(checkErr)
		}

		dirs := append(append([]string(nil), cfg.Features.Directories...), cfg.Bindings.Directories...)
		w, err := watch.New(dirs, watchedExtensions, 300*time.Millisecond, log)
		if err != nil {
			return err
		}
		log.Info("Watching for changes, press Ctrl+C to stop")
		return w.Run(contextOf(cmd), func(ctx context.Context, paths []string) error {
			log.Debugf("Changed: %v", paths)
			if err := runCheck(cmd, cfg, args); err != nil {
				log.Error(err)
			}
			return nil
		})
	},
}

func init() {
	checkCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "rerun the check when features or bindings change")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, cfg *config.Config, paths []string) error {
	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	report, err := s.run(contextOf(cmd), paths, s.listener(out), cfg.Trace.ShowSkeletons)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, report.Summary())
	if report.Failed() {
		return fmt.Errorf("check failed: %s", report.Summary())
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
