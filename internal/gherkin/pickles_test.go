package gherkin_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/stepbinder/internal/domain"
	"github.com/fjglira/stepbinder/internal/gherkin"
)

var _ = Describe("Pickles", func() {
	It("should prepend the background and expand outline rows", func() {
		pickles := parseFile("calculator.feature").Pickles()
		Expect(pickles).To(HaveLen(3))

		Expect(pickles[0].Title).To(Equal("Add two numbers"))
		Expect(pickles[0].Steps).To(HaveLen(5))
		Expect(pickles[0].Steps[0].Text).To(Equal("a calculator"))
		Expect(pickles[0].Tags).To(Equal([]string{"math"}))

		row := pickles[2]
		Expect(row.Title).To(Equal("Add small numbers (small #2)"))
		Expect(row.ScenarioName).To(Equal("Add small numbers"))
		Expect(row.Tags).To(Equal([]string{"math", "outline"}))
		Expect(row.Steps[1].Text).To(Equal("I have entered 5 into the calculator"))
		Expect(row.Steps[4].Text).To(Equal("the result should be 10 on the screen"))
	})

	It("should run the feature background before the rule background", func() {
		pickles := parseFile("rules.feature").Pickles()
		texts := []string{}
		for _, st := range pickles[0].Steps {
			texts = append(texts, st.Text)
		}
		Expect(texts).To(Equal([]string{
			"a calculator",
			"the memory is empty",
			"I have entered 7 into the calculator",
			"I press memory store",
			"the memory should hold 7",
		}))
	})

	It("should substitute placeholders in doc strings and tables", func() {
		f, errs := gherkin.Parse("x.feature", []byte(`Feature: X
  Scenario Outline: Rows
    Given the note
      """
      hello <name>
      """
    And the values
      | <name> |
    Examples:
      | name |
      | ann  |
`))
		Expect(errs).To(BeEmpty())
		pickles := f.Pickles()
		Expect(pickles).To(HaveLen(1))
		Expect(pickles[0].Title).To(Equal("Rows (example #1)"))
		Expect(pickles[0].Steps[0].DocString).To(Equal("hello ann"))
		Expect(pickles[0].Steps[1].Table).To(Equal([][]string{{"ann"}}))
	})

	It("should build step instances carrying the scenario context", func() {
		pickles := parseFile("rules.feature").Pickles()
		steps := pickles[0].StepInstances("rules.feature")
		Expect(steps).To(HaveLen(5))
		Expect(steps[2]).To(Equal(domain.StepInstance{
			Type:       domain.Given,
			Keyword:    "Given",
			Text:       "I have entered 7 into the calculator",
			SourceFile: "rules.feature",
			LineNumber: 37,
			Context: domain.StepContext{
				Tags:         []string{"memory"},
				FeatureName:  "Memory",
				ScenarioName: "Store a value",
			},
		}))
	})
})
