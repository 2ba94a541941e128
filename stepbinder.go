// Package stepbinder binds Gherkin steps to Go functions and resolves every
// step of a feature file against those bindings.
//
// A Suite collects step definitions registered at runtime, then runs feature
// files against them:
//
//	suite := stepbinder.NewSuite(stepbinder.Options{Output: os.Stdout})
//	suite.Given(`I have entered (\d+) into the calculator`, calc.Enter)
//	suite.Receiver(&CalculatorSteps{})
//	report, err := suite.Run(ctx, "features")
package stepbinder

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/stepbinder/internal/binding"
	"github.com/fjglira/stepbinder/internal/config"
	"github.com/fjglira/stepbinder/internal/discovery"
	"github.com/fjglira/stepbinder/internal/domain"
	"github.com/fjglira/stepbinder/internal/matcher"
	"github.com/fjglira/stepbinder/internal/parser"
	"github.com/fjglira/stepbinder/internal/runner"
	"github.com/fjglira/stepbinder/internal/scanner"
	"github.com/fjglira/stepbinder/internal/skeleton"
	"github.com/fjglira/stepbinder/internal/tracer"
)

// ErrPending is returned by a step handler that is not implemented yet.
var ErrPending = domain.ErrPending

// Scope restricts a step definition to a tag, a feature and/or a scenario.
type Scope = binding.Scope

// Report is the outcome of a Run.
type Report = runner.Report

// Tag scopes a step definition to scenarios carrying tag.
func Tag(tag string) Scope {
	s, _ := binding.NewScope(tag, "", "")
	return s
}

// Feature scopes a step definition to the feature with the given name.
func Feature(name string) Scope {
	s, _ := binding.NewScope("", name, "")
	return s
}

// Scenario scopes a step definition to the scenario with the given name.
func Scenario(name string) Scope {
	s, _ := binding.NewScope("", "", name)
	return s
}

// Options configures a Suite. The zero value writes uncolored trace output
// to stdout and suggests Go skeletons.
type Options struct {
	Output   io.Writer
	Color    bool
	Language string
	DryRun   bool
	// FenceTags selects the fenced blocks read from Markdown and AsciiDoc
	// files. Defaults to gherkin, feature and cucumber.
	FenceTags []string
	Logger    *logrus.Logger
}

// Suite holds runtime step definitions. It is not safe to register
// definitions concurrently with Run.
type Suite struct {
	registry *binding.Registry
	runtime  *discovery.Runtime
	opts     Options
	defaults *config.Config
}

// NewSuite creates an empty Suite.
func NewSuite(opts Options) *Suite {
	defaults := config.DefaultConfig()
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Language == "" {
		opts.Language = defaults.Skeleton.Language
	}
	if len(opts.FenceTags) == 0 {
		opts.FenceTags = defaults.Features.FenceTags
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetOutput(io.Discard)
	}

	registry := binding.NewRegistry()
	return &Suite{
		registry: registry,
		runtime:  discovery.NewRuntime(registry),
		opts:     opts,
		defaults: defaults,
	}
}

// Given registers fn for Given steps matching pattern.
func (s *Suite) Given(pattern string, fn any, scopes ...Scope) error {
	return s.runtime.Given(pattern, fn, scopes...)
}

// When registers fn for When steps matching pattern.
func (s *Suite) When(pattern string, fn any, scopes ...Scope) error {
	return s.runtime.When(pattern, fn, scopes...)
}

// Then registers fn for Then steps matching pattern.
func (s *Suite) Then(pattern string, fn any, scopes ...Scope) error {
	return s.runtime.Then(pattern, fn, scopes...)
}

// Step registers fn for steps of any type matching pattern.
func (s *Suite) Step(pattern string, fn any, scopes ...Scope) error {
	return s.runtime.Step(pattern, fn, scopes...)
}

// Receiver registers every Given*, When* and Then* method of recv and
// returns how many were registered.
func (s *Suite) Receiver(recv any, scopes ...Scope) (int, error) {
	return s.runtime.Receiver(recv, scopes...)
}

// Len returns the number of registered step definitions.
func (s *Suite) Len() int {
	return s.registry.Len()
}

// Run loads the feature files and directories in paths and runs every step.
// The first Run freezes the suite: later registrations fail.
func (s *Suite) Run(ctx context.Context, paths ...string) (*Report, error) {
	s.registry.Freeze()

	files, err := s.files(paths)
	if err != nil {
		return nil, err
	}
	loader := runner.NewLoader(scanner.NewScanner(true), parser.NewDefaultRegistry(), s.opts.Logger)
	features, err := loader.LoadFiles(ctx, files, s.opts.FenceTags)
	if err != nil {
		return nil, err
	}

	skeletons, err := skeleton.LoadProviders("")
	if err != nil {
		return nil, err
	}
	tr := tracer.NewTracer(tracer.NewConsoleListener(s.opts.Output, s.opts.Color), tracer.NewFormatter(), skeletons)
	r := runner.New(matcher.NewEngine(s.registry, nil), tr, skeletons, runner.Options{
		Language:          domain.ProgrammingLanguage(s.opts.Language),
		DryRun:            s.opts.DryRun,
		MinTracedDuration: s.defaults.Trace.MinDuration(),
		ShowSkeletons:     true,
	}, s.opts.Logger)
	return r.Run(ctx, features)
}

// files expands directories in paths with the default feature patterns.
func (s *Suite) files(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = s.defaults.Features.Directories
	}
	sc := scanner.NewScanner(true)
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, domain.NewErrorWithSuggestion("scan", p, 0, "failed to read feature path",
				"pass existing feature files or directories", err)
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(p))
			continue
		}
		found, err := sc.Scan(p, s.defaults.Features.Include, s.defaults.Features.Exclude)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}
