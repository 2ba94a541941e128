package parser_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/stepbinder/internal/parser"
)

var _ = Describe("FeatureParser", func() {
	It("should return the whole file as one block", func() {
		p := parser.NewFeatureParser()
		doc, err := p.Parse("a.feature", []byte("Feature: A\n"), nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(doc.Blocks).To(HaveLen(1))
		Expect(doc.Blocks[0].LineNumber).To(Equal(1))
		Expect(doc.Blocks[0].Content).To(Equal("Feature: A\n"))
	})

	It("should return no blocks for an empty file", func() {
		doc, err := parser.NewFeatureParser().Parse("a.feature", nil, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(doc.Blocks).To(BeEmpty())
	})
})

var _ = Describe("DefaultRegistry", func() {
	It("should resolve parsers by extension", func() {
		r := parser.NewDefaultRegistry()
		for _, ext := range []string{".feature", "md", ".MD", ".adoc"} {
			p, err := r.ParserFor(ext)
			Expect(err).ToNot(HaveOccurred())
			Expect(p).ToNot(BeNil())
		}
	})

	It("should fail for unknown extensions without a fallback", func() {
		_, err := parser.NewDefaultRegistry().ParserFor(".txt")
		Expect(err).To(HaveOccurred())
	})

	It("should use the fallback when set", func() {
		r := parser.NewDefaultRegistry()
		r.SetFallback(parser.NewFeatureParser())
		p, err := r.ParserFor(".txt")
		Expect(err).ToNot(HaveOccurred())
		Expect(p.SupportedExtensions()).To(ContainElement(".feature"))
	})
})
