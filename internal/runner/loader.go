// Package runner loads feature documents and drives their steps through
// the matcher, reporting every outcome to a tracer.
package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fjglira/stepbinder/internal/config"
	"github.com/fjglira/stepbinder/internal/domain"
	"github.com/fjglira/stepbinder/internal/gherkin"
	"github.com/fjglira/stepbinder/internal/parser"
	"github.com/fjglira/stepbinder/internal/scanner"
)

// LoadedFeature is one feature parsed from a document. Markdown and
// AsciiDoc documents may hold several.
type LoadedFeature struct {
	Path    string
	Feature *gherkin.Feature
}

// Loader finds and parses feature documents.
type Loader struct {
	scanner  scanner.Scanner
	registry parser.ParserRegistry
	log      *logrus.Logger
}

// NewLoader creates a Loader.
func NewLoader(s scanner.Scanner, r parser.ParserRegistry, log *logrus.Logger) *Loader {
	return &Loader{scanner: s, registry: r, log: log}
}

// Load scans the configured feature directories and parses every document.
func (l *Loader) Load(ctx context.Context, cfg config.FeaturesConfig) ([]LoadedFeature, error) {
	files, err := l.scanner.ScanAll(cfg.Directories, cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		l.log.Warn("No feature documents found")
		return nil, nil
	}
	l.log.Infof("Found %d feature document(s)", len(files))
	return l.LoadFiles(ctx, files, cfg.FenceTags)
}

// LoadFiles parses files concurrently. Features are returned in file order,
// then in block order within a file.
func (l *Loader) LoadFiles(ctx context.Context, files []string, fenceTags []string) ([]LoadedFeature, error) {
	results := make([][]LoadedFeature, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			features, err := l.loadFile(path, fenceTags)
			if err != nil {
				return err
			}
			results[i] = features
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []LoadedFeature
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func (l *Loader) loadFile(path string, fenceTags []string) ([]LoadedFeature, error) {
	l.log.Debugf("Processing: %s", path)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewErrorWithSuggestion("parse", path, 0,
			"failed to read file",
			"check that the file exists and has read permissions",
			err)
	}

	ext := filepath.Ext(path)
	p, err := l.registry.ParserFor(ext)
	if err != nil {
		l.log.Warnf("No parser for %s, skipping %s", ext, path)
		return nil, nil
	}

	doc, err := p.Parse(path, content, fenceTags)
	if err != nil {
		return nil, err
	}
	if len(doc.Blocks) == 0 {
		l.log.Debugf("No gherkin blocks found in %s", path)
		return nil, nil
	}

	var features []LoadedFeature
	for _, block := range doc.Blocks {
		if strings.EqualFold(block.Attributes["skip"], "true") {
			l.log.Debugf("Skipping block at %s:%d", path, block.LineNumber)
			continue
		}
		feature, errs := gherkin.Parse(path, []byte(block.Content))
		offset := block.LineNumber - 1
		for _, e := range errs {
			l.log.Warnf("%s:%d: %s", path, e.Line+offset, e.Message)
		}
		shiftLines(feature, offset)
		features = append(features, LoadedFeature{Path: path, Feature: feature})
	}
	return features, nil
}

// shiftLines moves every line number of f down by offset, so lines of an
// embedded block refer to the enclosing document.
func shiftLines(f *gherkin.Feature, offset int) {
	if offset == 0 {
		return
	}
	shiftSteps := func(steps []gherkin.Step) {
		for i := range steps {
			steps[i].Line += offset
		}
	}
	if f.Line > 0 {
		f.Line += offset
	}
	shiftSteps(f.Background)
	for _, s := range f.Scenarios {
		s.Line += offset
		shiftSteps(s.Background)
		shiftSteps(s.Steps)
		for i := range s.Examples {
			s.Examples[i].Line += offset
		}
	}
}
