package gherkin

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fjglira/stepbinder/internal/domain"
)

var tagPattern = regexp.MustCompile(`@[^@\s]+`)

var scenarioKeywords = []string{"Scenario Outline:", "Scenario Template:", "Scenario:", "Example:"}

type parser struct {
	lines  []string
	i      int
	errors []ParseError

	feature     *Feature
	pendingTags []string

	rule           string
	ruleTags       []string
	ruleBackground []Step

	scenario *Scenario
	examples *Examples
	steps    *[]Step

	lastType   domain.StepType
	haveType   bool
	inFeature  bool // between Feature: and the first section
	headerOpen bool // description lines allowed
}

// Parse parses a feature file. The feature is named after the file when it
// has no Feature: line. Parse errors do not stop parsing.
func Parse(filename string, content []byte) (*Feature, []ParseError) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	p := &parser{
		lines:   strings.Split(text, "\n"),
		feature: &Feature{},
	}
	p.parse()

	if p.feature.Name == "" {
		base := filepath.Base(filename)
		p.feature.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return p.feature, p.errors
}

func (p *parser) errorf(message string) {
	p.errors = append(p.errors, ParseError{Line: p.i + 1, Message: message})
}

func (p *parser) parse() {
	var description []string
	for ; p.i < len(p.lines); p.i++ {
		line := p.lines[p.i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			if p.inFeature && len(description) > 0 {
				description = append(description, "")
			}
			continue
		case strings.HasPrefix(trimmed, "#"):
			continue
		case isDocStringDelimiter(trimmed):
			p.docString()
			continue
		case strings.HasPrefix(trimmed, "|"):
			p.tableRow(trimmed)
			continue
		case strings.HasPrefix(trimmed, "@"):
			p.pendingTags = append(p.pendingTags, parseTags(trimmed)...)
			continue
		}

		if name, ok := cutKeyword(trimmed, "Feature:"); ok {
			p.feature.Name = name
			p.feature.Tags = p.takeTags()
			p.feature.Line = p.i + 1
			p.inFeature, p.headerOpen = true, true
			continue
		}
		if name, ok := cutKeyword(trimmed, "Rule:"); ok {
			p.closeHeader(&description)
			p.rule = name
			p.ruleTags = p.takeTags()
			p.ruleBackground = nil
			p.scenario, p.examples, p.steps = nil, nil, nil
			p.headerOpen = true
			continue
		}
		if _, ok := cutKeyword(trimmed, "Background:"); ok {
			p.closeHeader(&description)
			p.pendingTags = nil
			if p.rule != "" {
				p.steps = &p.ruleBackground
			} else {
				p.steps = &p.feature.Background
			}
			p.scenario, p.examples = nil, nil
			p.haveType = false
			p.headerOpen = true
			continue
		}
		if p.scenarioHeader(trimmed, &description) {
			continue
		}
		if name, ok := cutKeyword(trimmed, "Examples:"); ok {
			p.examplesHeader(name, "Examples:")
			continue
		}
		if name, ok := cutKeyword(trimmed, "Scenarios:"); ok {
			p.examplesHeader(name, "Scenarios:")
			continue
		}
		if keyword, text, ok := splitStep(trimmed); ok {
			p.step(keyword, text)
			continue
		}

		if p.headerOpen {
			if p.inFeature {
				description = append(description, trimmed)
			}
			continue
		}
		p.errorf("unexpected line: " + trimmed)
	}
	p.closeHeader(&description)
}

func (p *parser) closeHeader(description *[]string) {
	if p.inFeature {
		p.feature.Description = strings.TrimSpace(strings.Join(*description, "\n"))
		p.inFeature = false
	}
}

func (p *parser) takeTags() []string {
	tags := p.pendingTags
	p.pendingTags = nil
	return tags
}

func (p *parser) scenarioHeader(trimmed string, description *[]string) bool {
	for _, kw := range scenarioKeywords {
		name, ok := cutKeyword(trimmed, kw)
		if !ok {
			continue
		}
		p.closeHeader(description)
		s := &Scenario{
			Name:       name,
			Tags:       mergeTags(p.ruleTags, p.takeTags()),
			Line:       p.i + 1,
			Rule:       p.rule,
			Outline:    strings.HasPrefix(kw, "Scenario Outline") || strings.HasPrefix(kw, "Scenario Template"),
			Background: append([]Step(nil), p.ruleBackground...),
		}
		p.feature.Scenarios = append(p.feature.Scenarios, s)
		p.scenario = s
		p.examples = nil
		p.steps = &s.Steps
		p.haveType = false
		p.headerOpen = true
		return true
	}
	return false
}

func (p *parser) examplesHeader(name, keyword string) {
	if p.scenario == nil {
		p.errorf(keyword + " outside of a scenario outline")
		p.pendingTags = nil
		return
	}
	p.scenario.Outline = true
	p.scenario.Examples = append(p.scenario.Examples, Examples{
		Name: name,
		Tags: p.takeTags(),
		Line: p.i + 1,
	})
	p.examples = &p.scenario.Examples[len(p.scenario.Examples)-1]
	p.steps = nil
	p.headerOpen = true
}

func (p *parser) step(keyword, text string) {
	p.headerOpen = false
	if p.steps == nil {
		p.errorf("step outside of a scenario or background: " + keyword + " " + text)
		return
	}

	var t domain.StepType
	switch keyword {
	case "And", "But", "*":
		if !p.haveType {
			p.errorf(keyword + " step without a preceding Given, When or Then; treated as Given")
			t = domain.Given
		} else {
			t = p.lastType
		}
	default:
		t, _ = domain.ParseStepType(keyword)
	}
	p.lastType, p.haveType = t, true

	*p.steps = append(*p.steps, Step{
		Keyword: keyword,
		Type:    t,
		Text:    text,
		Line:    p.i + 1,
	})
}

func (p *parser) lastStep() *Step {
	if p.steps == nil || len(*p.steps) == 0 {
		return nil
	}
	return &(*p.steps)[len(*p.steps)-1]
}

func (p *parser) docString() {
	start := p.i
	opener := p.lines[p.i]
	indent := len(opener) - len(strings.TrimLeft(opener, " \t"))
	delimiter := `"""`
	if strings.HasPrefix(strings.TrimSpace(opener), "```") {
		delimiter = "```"
	}

	var content []string
	closed := false
	for p.i++; p.i < len(p.lines); p.i++ {
		line := p.lines[p.i]
		if strings.TrimSpace(line) == delimiter {
			closed = true
			break
		}
		content = append(content, trimIndent(line, indent))
	}
	if !closed {
		p.errors = append(p.errors, ParseError{Line: start + 1, Message: "unterminated doc string"})
	}

	step := p.lastStep()
	if step == nil {
		p.errors = append(p.errors, ParseError{Line: start + 1, Message: "doc string without a step"})
		return
	}
	step.DocString = strings.Join(content, "\n")
}

func (p *parser) tableRow(trimmed string) {
	cells := splitRow(trimmed)
	if p.examples != nil {
		if p.examples.Header == nil {
			p.examples.Header = cells
		} else {
			p.examples.Rows = append(p.examples.Rows, cells)
		}
		return
	}
	step := p.lastStep()
	if step == nil {
		p.errorf("table row without a step")
		return
	}
	step.Table = append(step.Table, cells)
}

func cutKeyword(trimmed, keyword string) (string, bool) {
	if !strings.HasPrefix(trimmed, keyword) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, keyword)), true
}

// splitStep splits "Given some text" into keyword and text.
func splitStep(trimmed string) (string, string, bool) {
	if strings.HasPrefix(trimmed, "* ") {
		return "*", strings.TrimSpace(trimmed[2:]), true
	}
	for _, kw := range []string{"Given", "When", "Then", "And", "But"} {
		if strings.HasPrefix(trimmed, kw+" ") {
			return kw, strings.TrimSpace(trimmed[len(kw)+1:]), true
		}
	}
	return "", "", false
}

func parseTags(line string) []string {
	if idx := strings.Index(line, "#"); idx >= 0 {
		line = line[:idx]
	}
	var tags []string
	for _, m := range tagPattern.FindAllString(line, -1) {
		tags = append(tags, domain.NormalizeTag(m))
	}
	return tags
}

func mergeTags(groups ...[]string) []string {
	var merged []string
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, t := range g {
			if !seen[t] {
				seen[t] = true
				merged = append(merged, t)
			}
		}
	}
	return merged
}

func isDocStringDelimiter(trimmed string) bool {
	return strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "```")
}

func trimIndent(line string, indent int) string {
	n := 0
	for n < indent && n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return line[n:]
}

// splitRow splits "| a | b \| c |" into cells, honoring \|, \\ and \n escapes.
func splitRow(trimmed string) []string {
	row := strings.TrimPrefix(trimmed, "|")
	var cells []string
	var cur strings.Builder
	for i := 0; i < len(row); i++ {
		c := row[i]
		switch {
		case c == '\\' && i+1 < len(row):
			i++
			switch row[i] {
			case 'n':
				cur.WriteByte('\n')
			default:
				cur.WriteByte(row[i])
			}
		case c == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	// trailing text after the last '|' is not a cell
	return cells
}
