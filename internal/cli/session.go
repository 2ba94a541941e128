package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

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

// session wires the components for one command run. Its registry is frozen
// after discovery, so every rerun builds a new session.
type session struct {
	cfg       *config.Config
	registry  *binding.Registry
	skeletons *skeleton.Registry
}

func newSession(cfg *config.Config) (*session, error) {
	skeletons, err := skeleton.LoadProviders(cfg.Skeleton.TemplateDirectory)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:       cfg,
		registry:  binding.NewRegistry(),
		skeletons: skeletons,
	}, nil
}

// discover registers the step definitions found in the binding sources.
func (s *session) discover(ctx context.Context) error {
	defer s.registry.Freeze()

	b := s.cfg.Bindings
	if len(b.Directories) == 0 {
		log.Warn("No binding directories configured")
		return nil
	}
	src := discovery.NewSourceScanner(scanner.NewScanner(b.IsRecursive()), log)
	defs, err := src.Discover(ctx, b.Directories, b.Include, b.Exclude)
	if err != nil {
		return err
	}
	return discovery.Register(s.registry, defs)
}

// features loads paths, or the configured feature directories when paths is
// empty. A directory path is scanned with the configured patterns.
func (s *session) features(ctx context.Context, paths []string) ([]runner.LoadedFeature, error) {
	f := s.cfg.Features
	sc := scanner.NewScanner(f.IsRecursive())
	loader := runner.NewLoader(sc, parser.NewDefaultRegistry(), log)
	if len(paths) == 0 {
		return loader.Load(ctx, f)
	}

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
		found, err := sc.Scan(p, f.Include, f.Exclude)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return loader.LoadFiles(ctx, files, f.FenceTags)
}

func (s *session) listener(out io.Writer) tracer.Listener {
	if s.cfg.Trace.Listener == "log" {
		return tracer.NewLogListener(log)
	}
	return tracer.NewConsoleListener(out, s.cfg.Trace.Color)
}

func (s *session) runner(listener tracer.Listener, showSkeletons bool) *runner.Runner {
	tr := tracer.NewTracer(listener, tracer.NewFormatter(), s.skeletons)
	opts := runner.Options{
		Language:          domain.ProgrammingLanguage(s.cfg.Skeleton.Language),
		DryRun:            s.cfg.DryRun,
		MinTracedDuration: s.cfg.Trace.MinDuration(),
		ShowSkeletons:     showSkeletons,
	}
	return runner.New(matcher.NewEngine(s.registry, nil), tr, s.skeletons, opts, log)
}

// run discovers bindings, loads features and runs them.
func (s *session) run(ctx context.Context, paths []string, listener tracer.Listener, showSkeletons bool) (*runner.Report, error) {
	if err := s.discover(ctx); err != nil {
		return nil, err
	}
	features, err := s.features(ctx, paths)
	if err != nil {
		return nil, err
	}
	return s.runner(listener, showSkeletons).Run(ctx, features)
}
