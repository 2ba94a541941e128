package binding_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/stepbinder/internal/binding"
	"github.com/fjglira/stepbinder/internal/domain"
)

var _ = Describe("Scope", func() {
	ctx := domain.StepContext{
		Tags:         []string{"math", "fast"},
		FeatureName:  "Calculator",
		ScenarioName: "Add two numbers",
	}

	It("should report an all-empty scope as absent", func() {
		_, ok := binding.NewScope(" ", "", "")
		Expect(ok).To(BeFalse())
		s, ok := binding.NewScope("@math", "", "")
		Expect(ok).To(BeTrue())
		Expect(s.Tag).To(Equal("math"))
	})

	It("should require every non-empty field to match", func() {
		s, _ := binding.NewScope("math", "Calculator", "")
		Expect(s.Applies(ctx)).To(BeTrue())

		s, _ = binding.NewScope("math", "Memory", "")
		Expect(s.Applies(ctx)).To(BeFalse())

		s, _ = binding.NewScope("", "", "Add two numbers")
		Expect(s.Applies(ctx)).To(BeTrue())
		s, _ = binding.NewScope("", "", "add two numbers")
		Expect(s.Applies(ctx)).To(BeFalse())
	})

	It("should accept any one of several scopes", func() {
		memory, _ := binding.NewScope("", "Memory", "")
		fast, _ := binding.NewScope("fast", "", "")
		Expect(binding.ScopesApply([]binding.Scope{memory, fast}, ctx)).To(BeTrue())
		Expect(binding.ScopesApply([]binding.Scope{memory}, ctx)).To(BeFalse())
		Expect(binding.ScopesApply(nil, ctx)).To(BeTrue())
	})

	It("should union class and method scopes", func() {
		a, _ := binding.NewScope("a", "", "")
		b, _ := binding.NewScope("", "F", "")
		merged := binding.MergeScopes([]binding.Scope{a}, []binding.Scope{b, a})
		Expect(merged).To(Equal([]binding.Scope{a, b}))
	})

	It("should render the non-empty fields", func() {
		s, _ := binding.NewScope("memory", "Memory", "Store a value")
		Expect(s.String()).To(Equal(`@memory feature="Memory" scenario="Store a value"`))
	})
})
