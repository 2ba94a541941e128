package binding_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/stepbinder/internal/binding"
	"github.com/fjglira/stepbinder/internal/domain"
)

var _ = Describe("Registry", func() {
	var reg *binding.Registry

	define := func(t domain.StepType, pattern string) *binding.StepDefinition {
		def, err := binding.NewStepDefinition(t, pattern, binding.NewStaticMethod("S", pattern))
		Expect(err).ToNot(HaveOccurred())
		return def
	}

	BeforeEach(func() {
		reg = binding.NewRegistry()
	})

	It("should group definitions by step type in registration order", func() {
		g1, w, g2 := define(domain.Given, "a"), define(domain.When, "b"), define(domain.Given, "c")
		for _, d := range []*binding.StepDefinition{g1, w, g2} {
			Expect(reg.Register(d)).To(Succeed())
		}
		Expect(reg.BindingsFor(domain.Given)).To(Equal([]*binding.StepDefinition{g1, g2}))
		Expect(reg.BindingsFor(domain.Then)).To(BeEmpty())
		Expect(reg.All()).To(Equal([]*binding.StepDefinition{g1, w, g2}))
		Expect(reg.Len()).To(Equal(3))
	})

	It("should refuse registrations once frozen", func() {
		reg.Freeze()
		Expect(reg.Frozen()).To(BeTrue())
		Expect(reg.Register(define(domain.Given, "a"))).To(MatchError(domain.ErrRegistryFrozen))
	})

	It("should return copies of its lists", func() {
		Expect(reg.Register(define(domain.Given, "a"))).To(Succeed())
		list := reg.BindingsFor(domain.Given)
		list[0] = nil
		Expect(reg.BindingsFor(domain.Given)[0]).ToNot(BeNil())
	})
})
