package gherkin

import (
	"fmt"
	"strings"

	"github.com/fjglira/stepbinder/internal/domain"
)

// Pickle is a concrete scenario: outline rows expanded, backgrounds
// prepended and tags inherited.
type Pickle struct {
	FeatureName  string
	ScenarioName string // the name scopes match against
	Title        string // display name, with the example row for outlines
	Tags         []string
	Line         int
	Steps        []Step
}

// Pickles expands every scenario of f in file order.
func (f *Feature) Pickles() []Pickle {
	var pickles []Pickle
	for _, s := range f.Scenarios {
		background := append(append([]Step(nil), f.Background...), s.Background...)
		if !s.Outline {
			pickles = append(pickles, Pickle{
				FeatureName:  f.Name,
				ScenarioName: s.Name,
				Title:        s.Name,
				Tags:         mergeTags(f.Tags, s.Tags),
				Line:         s.Line,
				Steps:        append(background, s.Steps...),
			})
			continue
		}

		row := 0
		for _, ex := range s.Examples {
			for _, values := range ex.Rows {
				row++
				steps := append([]Step(nil), background...)
				for _, st := range s.Steps {
					steps = append(steps, substitute(st, ex.Header, values))
				}
				label := ex.Name
				if label == "" {
					label = "example"
				}
				pickles = append(pickles, Pickle{
					FeatureName:  f.Name,
					ScenarioName: s.Name,
					Title:        fmt.Sprintf("%s (%s #%d)", s.Name, label, row),
					Tags:         mergeTags(f.Tags, s.Tags, ex.Tags),
					Line:         s.Line,
					Steps:        steps,
				})
			}
		}
	}
	return pickles
}

// substitute replaces <name> placeholders in a step with row values.
func substitute(st Step, header, values []string) Step {
	pairs := make([]string, 0, 2*len(header))
	for i, h := range header {
		if i < len(values) {
			pairs = append(pairs, "<"+h+">", values[i])
		}
	}
	r := strings.NewReplacer(pairs...)

	out := st
	out.Text = r.Replace(st.Text)
	out.DocString = r.Replace(st.DocString)
	if st.Table != nil {
		out.Table = make([][]string, len(st.Table))
		for i, tr := range st.Table {
			out.Table[i] = make([]string, len(tr))
			for j, cell := range tr {
				out.Table[i][j] = r.Replace(cell)
			}
		}
	}
	return out
}

// StepInstances returns the pickle's steps ready for matching.
func (p Pickle) StepInstances(sourceFile string) []domain.StepInstance {
	ctx := domain.StepContext{
		Tags:         append([]string(nil), p.Tags...),
		FeatureName:  p.FeatureName,
		ScenarioName: p.ScenarioName,
	}
	steps := make([]domain.StepInstance, len(p.Steps))
	for i, st := range p.Steps {
		steps[i] = domain.StepInstance{
			Type:       st.Type,
			Keyword:    st.Keyword,
			Text:       st.Text,
			DocString:  st.DocString,
			Table:      st.Table,
			SourceFile: sourceFile,
			LineNumber: st.Line,
			Context:    ctx,
		}
	}
	return steps
}
