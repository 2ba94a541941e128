package runner_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/fjglira/stepbinder/internal/config"
	"github.com/fjglira/stepbinder/internal/parser"
	"github.com/fjglira/stepbinder/internal/runner"
	"github.com/fjglira/stepbinder/internal/scanner"
)

var _ = Describe("Loader", func() {
	var (
		loader   *runner.Loader
		testdata = filepath.Join("..", "..", "testdata")
		tags     = []string{"gherkin"}
	)

	BeforeEach(func() {
		log, _ := test.NewNullLogger()
		loader = runner.NewLoader(scanner.NewScanner(true), parser.NewDefaultRegistry(), log)
	})

	It("should load every feature file in order", func() {
		cfg := config.DefaultConfig().Features
		cfg.Directories = []string{filepath.Join(testdata, "features")}
		features, err := loader.Load(context.Background(), cfg)
		Expect(err).ToNot(HaveOccurred())
		Expect(features).To(HaveLen(3))
		Expect(features[0].Feature.Name).To(Equal("Calculator"))
		Expect(features[1].Feature.Name).To(Equal("Memory"))
		Expect(features[2].Feature.Name).To(Equal("Display"))
	})

	It("should return nothing when no documents match", func() {
		cfg := config.DefaultConfig().Features
		cfg.Directories = []string{filepath.Join(testdata, "bindings")}
		features, err := loader.Load(context.Background(), cfg)
		Expect(err).ToNot(HaveOccurred())
		Expect(features).To(BeEmpty())
	})

	It("should shift markdown block lines to document lines", func() {
		features, err := loader.LoadFiles(context.Background(), []string{filepath.Join(testdata, "markdown", "guide.md")}, tags)
		Expect(err).ToNot(HaveOccurred())
		Expect(features).To(HaveLen(1))
		f := features[0].Feature
		Expect(f.Name).To(Equal("Guide addition"))
		Expect(f.Line).To(Equal(8))
		Expect(f.Scenarios[0].Line).To(Equal(10))
		Expect(f.Scenarios[0].Steps[0].Line).To(Equal(11))
	})

	It("should skip blocks marked skip=true", func() {
		features, err := loader.LoadFiles(context.Background(), []string{filepath.Join(testdata, "asciidoc", "guide.adoc")}, tags)
		Expect(err).ToNot(HaveOccurred())
		Expect(features).To(HaveLen(1))
		Expect(features[0].Feature.Scenarios[0].Line).To(Equal(9))
	})

	It("should ignore files without a parser", func() {
		features, err := loader.LoadFiles(context.Background(), []string{filepath.Join(testdata, "configs", "full.yaml")}, tags)
		Expect(err).ToNot(HaveOccurred())
		Expect(features).To(BeEmpty())
	})

	It("should fail for unreadable files", func() {
		_, err := loader.LoadFiles(context.Background(), []string{filepath.Join(testdata, "missing.feature")}, tags)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("failed to read file"))
	})

	It("should stop on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := loader.LoadFiles(ctx, []string{filepath.Join(testdata, "features", "calculator.feature")}, tags)
		Expect(err).To(MatchError(context.Canceled))
	})
})
