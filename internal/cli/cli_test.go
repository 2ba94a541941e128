package cli_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/stepbinder/internal/cli"
)

var _ = Describe("CLI", func() {
	var (
		cfgPath  string
		features string
		out      *bytes.Buffer
		errOut   *bytes.Buffer
	)

	writeConfig := func(language string) {
		testdata, err := filepath.Abs(filepath.Join("..", "..", "testdata"))
		Expect(err).ToNot(HaveOccurred())
		features = filepath.Join(testdata, "features")
		content := fmt.Sprintf(`features:
  directories: [%q]
bindings:
  directories: [%q]
  include: ["*.go"]
skeleton:
  language: %s
trace:
  color: false
  listener: console
logging:
  level: error
`, features, filepath.Join(testdata, "bindings"), language)
		cfgPath = filepath.Join(GinkgoT().TempDir(), "stepbinder.yaml")
		Expect(os.WriteFile(cfgPath, []byte(content), 0644)).To(Succeed())
	}

	execute := func(args ...string) error {
		return cli.ExecuteArgs(append(args, "--config", cfgPath), out, errOut)
	}

	BeforeEach(func() {
		out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
		writeConfig("go")
	})

	Describe("validate", func() {
		It("should accept a valid config", func() {
			Expect(execute("validate")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("is valid"))
			Expect(out.String()).To(ContainSubstring("Skeleton languages: csharp, go, java"))
		})

		It("should reject an unknown language", func() {
			writeConfig("cobol")
			err := execute("validate")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("skeleton.language"))
		})

		It("should fail for a missing explicit config file", func() {
			err := cli.ExecuteArgs([]string{"validate", "--config", filepath.Join(GinkgoT().TempDir(), "none.yaml")}, out, errOut)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("check", func() {
		It("should pass when every step is bound", func() {
			Expect(execute("check", filepath.Join(features, "calculator.feature"))).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Given a calculator"))
			Expect(out.String()).To(ContainSubstring("-> done: CalculatorSteps.NewCalculator()"))
			Expect(out.String()).To(ContainSubstring("3 scenario(s), 15 step(s): 15 passed"))
		})

		It("should fail and offer skeletons for unbound steps", func() {
			err := execute("check", filepath.Join(features, "undefined.feature"))
			Expect(err).To(MatchError(ContainSubstring("check failed")))
			Expect(out.String()).To(ContainSubstring("No matching step definition found for the step"))
			Expect(out.String()).To(ContainSubstring("none of them have matching scope for this step"))
			Expect(out.String()).To(ContainSubstring("1 passed, 1 undefined, 1 scope mismatch"))
		})

		It("should fail for a missing feature path", func() {
			Expect(execute("check", "missing.feature")).ToNot(Succeed())
		})
	})

	Describe("suggest", func() {
		It("should print one binding class for the undefined steps", func() {
			Expect(execute("suggest", filepath.Join(features, "undefined.feature"))).To(Succeed())
			Expect(out.String()).To(ContainSubstring("//stepbind:when"))
			Expect(out.String()).To(ContainSubstring("StepDefinitions struct"))
		})

		It("should honor the language flag", func() {
			Expect(execute("suggest", "--lang", "csharp", filepath.Join(features, "undefined.feature"))).To(Succeed())
			Expect(out.String()).To(ContainSubstring(`[When(@"`))
		})

		It("should report when nothing is missing", func() {
			Expect(execute("suggest", filepath.Join(features, "calculator.feature"))).To(Succeed())
			Expect(out.String()).To(ContainSubstring("All steps are bound."))
		})
	})

	Describe("bindings", func() {
		It("should list every discovered definition", func() {
			Expect(execute("bindings")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("PATTERN"))
			Expect(out.String()).To(ContainSubstring("CalculatorSteps.NewCalculator()"))
			Expect(out.String()).To(ContainSubstring("12 step definition(s)"))
		})

		It("should show ids on request", func() {
			Expect(execute("bindings", "--ids")).To(Succeed())
			Expect(out.String()).To(HavePrefix("ID"))
		})
	})
})
