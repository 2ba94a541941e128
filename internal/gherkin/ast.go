// Package gherkin parses feature files into scenarios and step instances.
package gherkin

import (
	"fmt"

	"github.com/fjglira/stepbinder/internal/domain"
)

type Feature struct {
	Name        string
	Description string
	Tags        []string // without '@'
	Line        int
	Background  []Step
	Scenarios   []*Scenario
}

type Scenario struct {
	Name       string
	Tags       []string // own tags, plus rule tags
	Line       int
	Rule       string
	Outline    bool
	Background []Step // rule background, run after the feature background
	Steps      []Step
	Examples   []Examples
}

type Examples struct {
	Name   string
	Tags   []string
	Line   int
	Header []string
	Rows   [][]string
}

type Step struct {
	Keyword   string // as written: Given, When, Then, And, But, *
	Type      domain.StepType
	Text      string
	Line      int
	DocString string
	Table     [][]string
}

type ParseError struct {
	Line    int
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
