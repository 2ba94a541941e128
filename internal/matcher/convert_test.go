package matcher_test

import (
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/stepbinder/internal/domain"
	"github.com/fjglira/stepbinder/internal/matcher"
)

type color int

type colorHook struct{}

func (colorHook) Convert(value, typeName string) (any, bool, error) {
	if typeName != "Color" {
		return nil, false, nil
	}
	switch strings.ToLower(value) {
	case "red":
		return color(1), true, nil
	case "blue":
		return color(2), true, nil
	}
	return nil, true, errors.New("unknown color")
}

var _ = Describe("Converter", func() {
	var conv *matcher.Converter

	BeforeEach(func() {
		conv = matcher.NewConverter()
	})

	DescribeTable("built-in conversions",
		func(value, typeName string, expected any) {
			v, err := conv.Convert(value, typeName)
			Expect(err).ToNot(HaveOccurred())
			Expect(v).To(Equal(expected))
		},
		Entry("int", " 42 ", "int", 42),
		Entry("negative int64", "-9", "int64", int64(-9)),
		Entry("uint8", "255", "uint8", uint8(255)),
		Entry("float64", "1.5", "float64", 1.5),
		Entry("bool", "TRUE", "bool", true),
		Entry("string keeps spaces", " a b ", "string", " a b "),
		Entry("duration", "2s", "time.Duration", 2*time.Second),
	)

	It("should fail on out of range values", func() {
		_, err := conv.Convert("256", "uint8")
		Expect(err).To(HaveOccurred())
		Expect(domain.KindOf(err)).To(Equal(domain.KindConversion))
		Expect(err.Error()).To(ContainSubstring(`cannot convert "256" to uint8`))
	})

	It("should consult hooks for unknown types", func() {
		conv.AddHook(colorHook{})
		v, err := conv.Convert("Red", "Color")
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(Equal(color(1)))

		_, err = conv.Convert("green", "Color")
		Expect(domain.KindOf(err)).To(Equal(domain.KindConversion))
	})

	It("should fail for types nothing handles", func() {
		conv.AddHook(colorHook{})
		_, err := conv.Convert("x", "Shape")
		Expect(err).To(MatchError(ContainSubstring("no conversion registered for type Shape")))
	})

	It("should let registered conversions override built-ins", func() {
		conv.Register("bool", func(v string) (any, error) { return v == "yes", nil })
		v, err := conv.Convert("yes", "bool")
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(BeTrue())
	})
})
