package matcher_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/stepbinder/internal/binding"
	"github.com/fjglira/stepbinder/internal/domain"
	"github.com/fjglira/stepbinder/internal/matcher"
)

var _ = Describe("Engine", func() {
	var (
		reg    *binding.Registry
		engine *matcher.Engine
	)

	ctx := domain.StepContext{Tags: []string{"math"}, FeatureName: "Calculator", ScenarioName: "Add two numbers"}

	step := func(t domain.StepType, text string) domain.StepInstance {
		return domain.StepInstance{Type: t, Keyword: t.String(), Text: text, Context: ctx}
	}

	define := func(t domain.StepType, pattern, name string, params []binding.Parameter, scopes ...binding.Scope) *binding.StepDefinition {
		def, err := binding.NewStepDefinition(t, pattern, binding.NewStaticMethod("Steps", name, params...), scopes...)
		Expect(err).ToNot(HaveOccurred())
		Expect(reg.Register(def)).To(Succeed())
		return def
	}

	scope := func(tag, feature, scenario string) binding.Scope {
		s, ok := binding.NewScope(tag, feature, scenario)
		Expect(ok).To(BeTrue())
		return s
	}

	intParam := []binding.Parameter{{Name: "n", TypeName: "int"}}

	BeforeEach(func() {
		reg = binding.NewRegistry()
		engine = matcher.NewEngine(reg, nil)
	})

	It("should bind the single matching definition and convert its arguments", func() {
		def := define(domain.Given, `I have entered (-?\d+) into the calculator`, "Enter", intParam)
		reg.Freeze()

		result, err := engine.Match(step(domain.Given, "I have entered -50 into the calculator"))
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Status).To(Equal(matcher.Matched))
		Expect(result.Binding).To(BeIdenticalTo(def))
		Expect(result.Arguments).To(Equal([]string{"-50"}))
		Expect(result.Values).To(Equal([]any{-50}))
	})

	It("should only consider definitions of the step's type", func() {
		define(domain.When, `a calculator`, "A", nil)
		result, err := engine.Match(step(domain.Given, "a calculator"))
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Status).To(Equal(matcher.Undefined))
		Expect(result.Binding).To(BeNil())
		Expect(result.Candidates).To(BeEmpty())
	})

	It("should report a scope mismatch with the rejected definitions", func() {
		def := define(domain.Given, `a calculator`, "A", nil, scope("display", "", ""))
		result, err := engine.Match(step(domain.Given, "a calculator"))
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Status).To(Equal(matcher.ScopeMismatch))
		Expect(result.Candidates).To(Equal([]*binding.StepDefinition{def}))
	})

	It("should resolve by feature scope and list every rejected definition", func() {
		login := define(domain.When, `I click (.*)`, "ClickLogin", []binding.Parameter{{Name: "target", TypeName: "string"}}, scope("", "Login", ""))
		checkout := define(domain.When, `I click (.*)`, "ClickCheckout", []binding.Parameter{{Name: "target", TypeName: "string"}}, scope("", "Checkout", ""))
		reg.Freeze()

		s := step(domain.When, "I click submit")
		s.Context = domain.StepContext{FeatureName: "Login", ScenarioName: "Sign in"}
		result, err := engine.Match(s)
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Status).To(Equal(matcher.Matched))
		Expect(result.Binding).To(BeIdenticalTo(login))
		Expect(result.Values).To(Equal([]any{"submit"}))

		s.Context = domain.StepContext{FeatureName: "Shipping", ScenarioName: "Sign in"}
		result, err = engine.Match(s)
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Status).To(Equal(matcher.ScopeMismatch))
		Expect(result.Candidates).To(ConsistOf(login, checkout))
	})

	It("should only match texts the pattern fully accepts", func() {
		define(domain.Given, `I have (\d+) cucumbers?`, "Cucumbers", []binding.Parameter{{Name: "count", TypeName: "int"}})
		reg.Freeze()

		result, err := engine.Match(step(domain.Given, "I have 5 cucumbers"))
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Status).To(Equal(matcher.Matched))
		Expect(result.Values).To(Equal([]any{5}))

		result, err = engine.Match(step(domain.Given, "I have a cucumber"))
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Status).To(Equal(matcher.Undefined))
		Expect(result.Binding).To(BeNil())
	})

	It("should prefer a scoped definition over an unscoped one", func() {
		define(domain.Given, `a calculator`, "Plain", nil)
		scoped := define(domain.Given, `a calculator`, "Scoped", nil, scope("math", "", ""))
		result, err := engine.Match(step(domain.Given, "a calculator"))
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Status).To(Equal(matcher.Matched))
		Expect(result.Binding).To(BeIdenticalTo(scoped))
	})

	It("should ignore scoped definitions whose scope does not apply", func() {
		plain := define(domain.Given, `a calculator`, "Plain", nil)
		define(domain.Given, `a calculator`, "Other", nil, scope("", "Memory", ""))
		result, err := engine.Match(step(domain.Given, "a calculator"))
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Binding).To(BeIdenticalTo(plain))
	})

	It("should report ties of equal specificity as ambiguous", func() {
		a := define(domain.Given, `a calculator`, "A", nil, scope("math", "", ""))
		b := define(domain.Given, `a (\w+)`, "B", []binding.Parameter{{Name: "s", TypeName: "string"}}, scope("", "Calculator", ""))
		define(domain.Given, `a .*`, "Plain", nil)
		result, err := engine.Match(step(domain.Given, "a calculator"))
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Status).To(Equal(matcher.Ambiguous))
		Expect(result.Candidates).To(ConsistOf(a, b))
	})

	It("should treat distinct registrations of one method as distinct", func() {
		method := binding.NewStaticMethod("Steps", "A")
		for range 2 {
			def, err := binding.NewStepDefinition(domain.Given, `a calculator`, method)
			Expect(err).ToNot(HaveOccurred())
			Expect(reg.Register(def)).To(Succeed())
		}
		result, err := engine.Match(step(domain.Given, "a calculator"))
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Status).To(Equal(matcher.Ambiguous))
	})

	It("should return conversion failures as conversion errors", func() {
		def := define(domain.When, `I press (.*)`, "Press", intParam)
		result, err := engine.Match(step(domain.When, "I press add"))
		Expect(err).To(HaveOccurred())
		Expect(domain.KindOf(err)).To(Equal(domain.KindConversion))
		Expect(result.Status).To(Equal(matcher.Matched))
		Expect(result.Binding).To(BeIdenticalTo(def))
		Expect(result.Arguments).To(Equal([]string{"add"}))
		Expect(result.Values).To(BeNil())
	})

	It("should reject a parameter count that does not fit the pattern", func() {
		define(domain.Then, `the result is (\d+) and (\d+)`, "Result", intParam)
		_, err := engine.Match(step(domain.Then, "the result is 1 and 2"))
		Expect(err).To(MatchError(ContainSubstring("parameter count mismatch")))
		Expect(domain.KindOf(err)).To(Equal(domain.KindConversion))
	})

	It("should append a doc string for an extra parameter", func() {
		define(domain.When, `I attach a note`, "Attach", []binding.Parameter{{Name: "note", TypeName: "string"}})
		s := step(domain.When, "I attach a note")
		s.DocString = "first line\nsecond line"
		result, err := engine.Match(s)
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Values).To(Equal([]any{"first line\nsecond line"}))
	})

	It("should append a table for an extra parameter", func() {
		define(domain.Given, `the values`, "Values", []binding.Parameter{{Name: "rows", TypeName: "[][]string"}})
		s := step(domain.Given, "the values")
		s.Table = [][]string{{"a", "b"}, {"1", "2"}}
		result, err := engine.Match(s)
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Values).To(Equal([]any{[][]string{{"a", "b"}, {"1", "2"}}}))
	})

	It("should leave out the multiline argument when the method does not take it", func() {
		define(domain.When, `I attach a note`, "Attach", nil)
		s := step(domain.When, "I attach a note")
		s.DocString = "ignored"
		result, err := engine.Match(s)
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Values).To(BeEmpty())
	})

	It("should use registered converters", func() {
		conv := matcher.NewConverter()
		conv.Register("int", func(v string) (any, error) { return len(v), nil })
		engine = matcher.NewEngine(reg, conv)
		define(domain.When, `I press (.*)`, "Press", intParam)
		result, err := engine.Match(step(domain.When, "I press add"))
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Values).To(Equal([]any{3}))
	})

	It("should match concurrently with the same results", func() {
		define(domain.Given, `I have entered (-?\d+) into the calculator`, "Enter", intParam)
		define(domain.Given, `a calculator`, "A", nil, scope("display", "", ""))
		reg.Freeze()

		texts := []string{"I have entered 7 into the calculator", "a calculator", "nothing here"}
		expected := make([]matcher.Status, len(texts))
		for i, text := range texts {
			r, err := engine.Match(step(domain.Given, text))
			Expect(err).ToNot(HaveOccurred())
			expected[i] = r.Status
		}

		var wg sync.WaitGroup
		statuses := make([][]matcher.Status, 16)
		for g := range statuses {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for _, text := range texts {
					r, err := engine.Match(step(domain.Given, text))
					Expect(err).ToNot(HaveOccurred())
					statuses[g] = append(statuses[g], r.Status)
				}
			}()
		}
		wg.Wait()
		for _, got := range statuses {
			Expect(got).To(Equal(expected))
		}
		Expect(expected).To(Equal([]matcher.Status{matcher.Matched, matcher.ScopeMismatch, matcher.Undefined}))
	})
})
