// Package skeleton suggests step definition code for undefined steps.
package skeleton

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"io/fs"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/fjglira/stepbinder/internal/domain"
	"github.com/fjglira/stepbinder/internal/stepregex"
)

//go:embed templates/*.tmpl
var builtinTemplates embed.FS

const (
	stepSuffix  = "_step.tmpl"
	classSuffix = "_class.tmpl"
)

// Provider produces step definition skeletons for one programming language.
// Implementations must be pure functions of their input.
type Provider interface {
	StepDefinitionSkeleton(step domain.StepInstance) (string, error)
	BindingClassSkeleton(stepDefinitions string) (string, error)
}

// stepData is the struct passed to step templates.
type stepData struct {
	Keyword    string
	Text       string
	Pattern    string
	MethodName string
	ClassName  string
	Params     []Param
}

// classData is the struct passed to class templates.
type classData struct {
	Namespace string
	ClassName string
	Body      string
}

// TemplateProvider renders skeletons from a pair of text/templates.
type TemplateProvider struct {
	language  domain.ProgrammingLanguage
	step      *template.Template
	class     *template.Template
	calc      *stepregex.Calculator
	namespace string
	className string
}

// NewTemplateProvider parses <language>_step.tmpl and <language>_class.tmpl from fsys.
func NewTemplateProvider(language domain.ProgrammingLanguage, fsys fs.FS) (*TemplateProvider, error) {
	p := &TemplateProvider{
		language:  language,
		calc:      stepregex.NewCalculator(),
		namespace: defaultNamespace(language),
		className: "StepDefinitions",
	}

	var err error
	if p.step, err = parseTemplate(fsys, string(language)+stepSuffix); err != nil {
		return nil, err
	}
	if p.class, err = parseTemplate(fsys, string(language)+classSuffix); err != nil {
		return nil, err
	}
	return p, nil
}

func parseTemplate(fsys fs.FS, name string) (*template.Template, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, domain.NewError("skeleton", name, 0, "failed to read template file", err)
	}
	tmpl, err := template.New(name).Funcs(CustomFuncMap()).Parse(string(content))
	if err != nil {
		return nil, domain.NewError("skeleton", name, 0, "failed to parse template", err)
	}
	return tmpl, nil
}

func defaultNamespace(language domain.ProgrammingLanguage) string {
	if language == domain.LanguageCSharp {
		return "MyNamespace"
	}
	return "steps"
}

// StepDefinitionSkeleton renders one step method for step.
func (p *TemplateProvider) StepDefinitionSkeleton(step domain.StepInstance) (string, error) {
	a := Analyze(step, p.calc)
	data := stepData{
		Keyword:    step.Type.String(),
		Text:       step.Text,
		Pattern:    a.Pattern,
		MethodName: Identifier(a.MethodWords(), p.language != domain.LanguageJava),
		ClassName:  p.className,
		Params:     a.Params,
	}

	var buf bytes.Buffer
	if err := p.step.Execute(&buf, data); err != nil {
		return "", domain.NewError("skeleton", p.step.Name(), 0, "failed to execute template", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// BindingClassSkeleton wraps step methods in a binding class. Go output is
// gofmt'ed when it parses; the snippet is advisory either way.
func (p *TemplateProvider) BindingClassSkeleton(stepDefinitions string) (string, error) {
	data := classData{
		Namespace: p.namespace,
		ClassName: p.className,
		Body:      stepDefinitions,
	}

	var buf bytes.Buffer
	if err := p.class.Execute(&buf, data); err != nil {
		return "", domain.NewError("skeleton", p.class.Name(), 0, "failed to execute template", err)
	}

	out := buf.Bytes()
	if p.language == domain.LanguageGo {
		if formatted, err := format.Source(out); err == nil {
			out = formatted
		}
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// LoadProviders registers the built-in providers and, when templateDir is
// set, every language found there as <language>_step.tmpl plus
// <language>_class.tmpl. Templates in templateDir replace built-ins.
func LoadProviders(templateDir string) (*Registry, error) {
	registry := NewRegistry()
	if err := registerAll(registry, builtinTemplates, "templates"); err != nil {
		return nil, err
	}
	if templateDir == "" {
		return registry, nil
	}
	if _, err := os.Stat(templateDir); err != nil {
		return nil, domain.NewErrorWithSuggestion("skeleton", templateDir, 0,
			"failed to read template directory",
			"set skeleton.template_directory to an existing directory or leave it empty to use the built-in templates",
			err)
	}
	if err := registerAll(registry, os.DirFS(templateDir), "."); err != nil {
		return nil, err
	}
	return registry, nil
}

func registerAll(registry *Registry, fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return domain.NewError("skeleton", dir, 0, "failed to open template directory", err)
	}
	entries, err := fs.ReadDir(sub, ".")
	if err != nil {
		return domain.NewError("skeleton", dir, 0, "failed to read template directory", err)
	}

	var languages []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), stepSuffix) {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), stepSuffix))
	}
	sort.Strings(languages)

	for _, lang := range languages {
		p, err := NewTemplateProvider(domain.ProgrammingLanguage(lang), sub)
		if err != nil {
			return fmt.Errorf("loading %s skeleton templates: %w", lang, err)
		}
		registry.Register(domain.ProgrammingLanguage(lang), p)
	}
	return nil
}
