package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fjglira/stepbinder/internal/domain"
	"github.com/fjglira/stepbinder/internal/skeleton"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the stepbinder.yaml configuration file",
	Long:  `Loads the configuration file and checks for errors, missing required fields, and invalid values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		skeletons, err := skeleton.LoadProviders(cfg.Skeleton.TemplateDirectory)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if _, err := skeletons.Provider(domain.ProgrammingLanguage(cfg.Skeleton.Language)); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration file %q is valid.\n", cfgFile)
		fmt.Fprintf(out, "Skeleton languages: %s\n", strings.Join(skeletons.Languages(), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
