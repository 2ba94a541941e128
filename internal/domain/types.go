package domain

import (
	"fmt"
	"strings"
)

// StepType is the verb category of a step.
type StepType int

const (
	Given StepType = iota
	When
	Then
)

// StepTypes lists every concrete step type in declaration order.
var StepTypes = []StepType{Given, When, Then}

func (t StepType) String() string {
	switch t {
	case Given:
		return "Given"
	case When:
		return "When"
	case Then:
		return "Then"
	default:
		return fmt.Sprintf("StepType(%d)", int(t))
	}
}

// ParseStepType maps a keyword such as "given" or "Then" to a StepType.
func ParseStepType(s string) (StepType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "given":
		return Given, nil
	case "when":
		return When, nil
	case "then":
		return Then, nil
	}
	return Given, fmt.Errorf("unknown step type %q", s)
}

// ProgrammingLanguage selects the skeleton provider for undefined steps.
type ProgrammingLanguage string

const (
	LanguageGo     ProgrammingLanguage = "go"
	LanguageCSharp ProgrammingLanguage = "csharp"
	LanguageJava   ProgrammingLanguage = "java"
)

// StepContext describes where a step occurs: active tags, feature and scenario.
type StepContext struct {
	Tags         []string // without the leading '@'
	FeatureName  string
	ScenarioName string
}

// HasTag reports whether tag is active. A leading '@' on either side is ignored.
func (c StepContext) HasTag(tag string) bool {
	tag = NormalizeTag(tag)
	for _, t := range c.Tags {
		if NormalizeTag(t) == tag {
			return true
		}
	}
	return false
}

// NormalizeTag strips the leading '@' of a tag.
func NormalizeTag(tag string) string {
	return strings.TrimPrefix(strings.TrimSpace(tag), "@")
}

// StepInstance is one occurrence of a step to be matched.
type StepInstance struct {
	Type       StepType
	Keyword    string // keyword as written ("And", "Given", ...)
	Text       string
	DocString  string
	Table      [][]string
	SourceFile string
	LineNumber int
	Context    StepContext
}

// ParsedDocument holds the Gherkin sources found in a single document file.
type ParsedDocument struct {
	FilePath string
	FileType string            // "feature", "markdown", "asciidoc"
	Blocks   []CodeBlock       // Gherkin sources, in document order
	Headings []Heading         // Document structure
	Metadata map[string]string // Any document-level metadata found
}

// CodeBlock is one Gherkin source embedded in (or forming) a document.
type CodeBlock struct {
	Tag        string            // The fence tag that selected the block (e.g. "gherkin")
	Content    string            // Raw Gherkin text
	LineNumber int               // 1-based line of the first content line
	Attributes map[string]string // Key-value attributes from the fence info
	Context    string            // Nearest heading / section title
}

// Heading represents a document heading.
type Heading struct {
	Level int
	Text  string
	Line  int
}
