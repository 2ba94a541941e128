package tracer_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/stepbinder/internal/binding"
	"github.com/fjglira/stepbinder/internal/domain"
	"github.com/fjglira/stepbinder/internal/skeleton"
	"github.com/fjglira/stepbinder/internal/tracer"
)

var _ = Describe("TestTracer", func() {
	var (
		recorder *tracer.Recorder
		tr       *tracer.TestTracer
		def      *binding.StepDefinition
	)

	step := domain.StepInstance{Type: domain.Then, Keyword: "And", Text: "the display shows 3 lines"}

	BeforeEach(func() {
		skeletons, err := skeleton.LoadProviders("")
		Expect(err).ToNot(HaveOccurred())
		recorder = &tracer.Recorder{}
		tr = tracer.NewTracer(recorder, tracer.NewFormatter(), skeletons)

		method := binding.NewStaticMethod("DisplaySteps", "DisplayShows", binding.Parameter{Name: "lines", TypeName: "int"})
		def, err = binding.NewStepDefinition(domain.Then, `the display shows (\d+) lines`, method)
		Expect(err).ToNot(HaveOccurred())
	})

	It("should write the step as test output", func() {
		tr.TraceStep(step)
		Expect(recorder.TestOutput).To(Equal([]string{"And the display shows 3 lines"}))
		Expect(recorder.ToolOutput).To(BeEmpty())
	})

	It("should name the bound call", func() {
		tr.TraceStepDone(def, []any{3}, 1500*time.Millisecond)
		tr.TraceStepPending(def, []any{3})
		tr.TraceStepSkipped()
		Expect(recorder.ToolOutput).To(Equal([]string{
			"done: DisplaySteps.DisplayShows(3) (1.5s)",
			"pending: DisplaySteps.DisplayShows(3)",
			"skipped because of previous errors",
		}))
	})

	It("should report errors and warnings", func() {
		tr.TraceError(errors.New("expected 3, got 2"))
		tr.TraceBindingError(errors.New("cannot convert"))
		tr.TraceWarning("slow")
		Expect(recorder.ToolOutput).To(Equal([]string{
			"error: expected 3, got 2",
			"binding error: cannot convert",
			"warning: slow",
		}))
	})

	It("should offer a skeleton for an undefined step", func() {
		Expect(tr.TraceNoMatchingStepDefinition(step, domain.LanguageGo, nil)).To(Succeed())
		Expect(recorder.ToolOutput).To(HaveLen(1))
		Expect(recorder.ToolOutput[0]).To(HavePrefix("No matching step definition found for the step. Use the following code to create one:\n"))
		Expect(recorder.ToolOutput[0]).To(ContainSubstring("\n    //stepbind:then (?i)^the display shows (-?\\d+) lines$"))
	})

	It("should name the out-of-scope definitions first", func() {
		Expect(tr.TraceNoMatchingStepDefinition(step, domain.LanguageCSharp, []*binding.StepDefinition{def})).To(Succeed())
		Expect(recorder.ToolOutput).To(HaveLen(2))
		Expect(recorder.ToolOutput[0]).To(Equal("No matching step definition found for the step. There are matching step definitions, but none of them have matching scope for this step: DisplaySteps.DisplayShows(int)."))
		Expect(recorder.ToolOutput[1]).To(HavePrefix("Change the scope or use the following code to create a new step definition:\n"))
		Expect(recorder.ToolOutput[1]).To(ContainSubstring("[Binding]"))
	})

	It("should trace and return a missing provider", func() {
		err := tr.TraceNoMatchingStepDefinition(step, "cobol", nil)
		Expect(domain.KindOf(err)).To(Equal(domain.KindConfiguration))
		Expect(recorder.ToolOutput).To(ConsistOf(HavePrefix("error: ")))
	})

	It("should list ambiguous candidates", func() {
		tr.TraceAmbiguousStepDefinition(step, []*binding.StepDefinition{def, def})
		Expect(recorder.ToolOutput).To(Equal([]string{
			"binding error: Ambiguous step definitions found for step 'Then the display shows 3 lines': DisplaySteps.DisplayShows(int), DisplaySteps.DisplayShows(int)",
		}))
	})

	It("should report durations", func() {
		tr.TraceDuration(2*time.Second, def.Method, []any{"x"})
		tr.TraceDurationText(300*time.Millisecond, "Scenario: Add two numbers")
		Expect(recorder.ToolOutput).To(Equal([]string{
			`duration: DisplaySteps.DisplayShows("x"): 2.0s`,
			"duration: Scenario: Add two numbers: 0.3s",
		}))
	})
})

var _ = Describe("DefaultFormatter", func() {
	f := tracer.NewFormatter()

	It("should append doc strings and tables", func() {
		text := f.GetStepText(domain.StepInstance{
			Type:      domain.When,
			Text:      "I attach a note",
			DocString: "line one\nline two",
			Table:     [][]string{{"a", "b"}},
		})
		Expect(text).To(Equal("When I attach a note\n" +
			"  --- multiline step argument ---\n  line one\n  line two\n" +
			"  --- table step argument ---\n  | a | b |\n"))
	})

	It("should render a table argument without its cells", func() {
		m := binding.NewStaticMethod("", "rows")
		Expect(f.GetMethodText(m, []any{[][]string{{"a"}}, 1.5})).To(Equal("rows(<table>, 1.5)"))
	})
})
