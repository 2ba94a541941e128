package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fjglira/stepbinder/internal/config"
	"github.com/fjglira/stepbinder/internal/tracer"
)

var suggestLanguage string

var suggestCmd = &cobra.Command{
	Use:   "suggest [paths...]",
	Short: "Print a binding skeleton for every undefined step",
	Long: `Runs the same resolution as check, but prints one binding class holding a
step definition skeleton for each distinct undefined step.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if suggestLanguage != "" {
			cfg.Skeleton.Language = suggestLanguage
			if err := config.Validate(cfg); err != nil {
				return err
			}
		}
		cfg.DryRun = true

		s, err := newSession(cfg)
		if err != nil {
			return err
		}
		report, err := s.run(contextOf(cmd), args, tracer.NewLogListener(log), false)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if report.Skeleton == "" {
			fmt.Fprintln(out, "All steps are bound.")
			return nil
		}
		fmt.Fprintln(out, report.Skeleton)
		return nil
	},
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestLanguage, "lang", "l", "", "skeleton language (overrides skeleton.language)")
	rootCmd.AddCommand(suggestCmd)
}
