package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fjglira/stepbinder/internal/binding"
)

var showIDs bool

var headerStyle = lipgloss.NewStyle().Bold(true)

var bindingsCmd = &cobra.Command{
	Use:   "bindings",
	Short: "List the discovered step definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		s, err := newSession(cfg)
		if err != nil {
			return err
		}
		if err := s.discover(contextOf(cmd)); err != nil {
			return err
		}

		defs := s.registry.All()
		out := cmd.OutOrStdout()
		if len(defs) == 0 {
			fmt.Fprintln(out, "No step definitions found.")
			return nil
		}
		writeBindings(out, defs, showIDs, cfg.Trace.Color)
		fmt.Fprintf(out, "%d step definition(s)\n", len(defs))
		return nil
	},
}

func init() {
	bindingsCmd.Flags().BoolVar(&showIDs, "ids", false, "show step definition ids")
	rootCmd.AddCommand(bindingsCmd)
}

// writeBindings renders defs as an aligned table.
func writeBindings(w io.Writer, defs []*binding.StepDefinition, ids, color bool) {
	headers := []string{"TYPE", "PATTERN", "METHOD", "SCOPE", "SOURCE"}
	if ids {
		headers = append([]string{"ID"}, headers...)
	}

	rows := make([][]string, 0, len(defs))
	for _, d := range defs {
		scopes := make([]string, len(d.Scopes))
		for i, sc := range d.Scopes {
			scopes[i] = sc.String()
		}
		source := ""
		if d.SourceFile != "" {
			source = fmt.Sprintf("%s:%d", d.SourceFile, d.LineNumber)
		}
		row := []string{d.Type.String(), d.Pattern, binding.FormatMethod(d.Method), strings.Join(scopes, " | "), source}
		if ids {
			row = append([]string{d.ID}, row...)
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := lipgloss.Width(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	render := func(cells []string, style lipgloss.Style) string {
		padded := make([]string, len(cells))
		for i, cell := range cells {
			padded[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		line := strings.TrimRight(strings.Join(padded, "  "), " ")
		if color {
			return style.Render(line)
		}
		return line
	}

	fmt.Fprintln(w, render(headers, headerStyle))
	for _, row := range rows {
		fmt.Fprintln(w, render(row, lipgloss.NewStyle()))
	}
}
