// Package stepregex derives step patterns from method descriptors.
package stepregex

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/fjglira/stepbinder/internal/binding"
	"github.com/fjglira/stepbinder/internal/domain"
)

const (
	integerShape  = `(-?\d+)`
	unsignedShape = `(\d+)`
	decimalShape  = `(-?\d+(?:\.\d+)?)`
	stringShape   = `"?([^"]*)"?`
	boolShape     = `(true|false)`
	genericShape  = `(.*)`
	variadicTail  = `(?:.*)`
)

var ordinalToken = regexp.MustCompile(`^[Pp](\d+)$`)

// Calculator turns a method name into an anchored, case-insensitive
// pattern with one capture group per non-variadic parameter.
type Calculator struct{}

// NewCalculator creates a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Token is one piece of a pattern: literal text, or the capture group of
// the parameter at index Param.
type Token struct {
	Literal string
	Param   int
}

// LiteralToken is text matched as written.
func LiteralToken(s string) Token {
	return Token{Literal: s, Param: -1}
}

// ParamToken is the capture group of parameter i.
func ParamToken(i int) Token {
	return Token{Param: i}
}

// Calculate returns the pattern for method bound as stepType. The result
// depends only on its inputs.
//
// Words come from underscores when the name has any, otherwise from case
// changes. A leading word equal to the step keyword is dropped. A word that
// names a parameter (case-insensitive) or has the form P<n> becomes that
// parameter's group; parameters no word refers to are appended in order.
func (c *Calculator) Calculate(stepType domain.StepType, method binding.Method) string {
	words := SplitWords(method.Name())
	if len(words) > 0 && strings.EqualFold(words[0], stepType.String()) {
		words = words[1:]
	}

	params := method.Parameters()
	used := make([]bool, len(params))
	tokens := make([]Token, 0, 2*len(words))
	for i, w := range words {
		if i > 0 {
			tokens = append(tokens, LiteralToken(" "))
		}
		if idx := placeholderIndex(w, params, used); idx >= 0 {
			used[idx] = true
			tokens = append(tokens, ParamToken(idx))
			continue
		}
		tokens = append(tokens, LiteralToken(w))
	}
	return c.CalculateTokens(tokens, params)
}

// CalculateTokens assembles a pattern from tokens whose literals are used
// verbatim, so no text is ever read as a placeholder. Non-variadic
// parameters without a token are appended in order; a variadic parameter
// adds a catch-all tail.
func (c *Calculator) CalculateTokens(tokens []Token, params []binding.Parameter) string {
	var b strings.Builder
	used := make([]bool, len(params))
	for _, t := range tokens {
		if t.Param >= 0 {
			if t.Param < len(params) && !params[t.Param].Variadic && !used[t.Param] {
				used[t.Param] = true
				b.WriteString(shapeFor(params[t.Param].TypeName))
			}
			continue
		}
		b.WriteString(regexp.QuoteMeta(t.Literal))
	}

	hasVariadic := false
	for i, p := range params {
		switch {
		case p.Variadic:
			hasVariadic = true
		case !used[i]:
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(shapeFor(p.TypeName))
		}
	}
	if hasVariadic {
		b.WriteString(variadicTail)
	}
	return "(?i)^" + b.String() + "$"
}

// placeholderIndex returns the index in params of the parameter word
// refers to, or -1. P<n> counts non-variadic parameters only.
func placeholderIndex(word string, params []binding.Parameter, used []bool) int {
	var fixed []int
	for i, p := range params {
		if !p.Variadic {
			fixed = append(fixed, i)
		}
	}
	if m := ordinalToken.FindStringSubmatch(word); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n < len(fixed) && !used[fixed[n]] {
			return fixed[n]
		}
	}
	for _, i := range fixed {
		if !used[i] && params[i].Name != "" && strings.EqualFold(params[i].Name, word) {
			return i
		}
	}
	return -1
}

// shapeFor picks a capture group for a parameter type name. Unknown types
// get the generic group.
func shapeFor(typeName string) string {
	t := strings.TrimLeft(typeName, "*")
	if i := strings.LastIndex(t, "."); i >= 0 {
		t = t[i+1:]
	}
	switch strings.ToLower(t) {
	case "int", "int8", "int16", "int32", "int64", "long", "short", "integer", "sbyte":
		return integerShape
	case "uint", "uint8", "uint16", "uint32", "uint64", "byte", "ulong", "ushort":
		return unsignedShape
	case "float32", "float64", "float", "double", "decimal", "single":
		return decimalShape
	case "string":
		return stringShape
	case "bool", "boolean":
		return boolShape
	}
	return genericShape
}

// SplitWords splits an identifier into words. Names with underscores split
// only on underscores; other names split on case and letter/digit changes.
func SplitWords(name string) []string {
	if strings.Contains(name, "_") {
		var words []string
		for _, w := range strings.Split(name, "_") {
			if w != "" {
				words = append(words, w)
			}
		}
		return words
	}

	runes := []rune(name)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		boundary := (unicode.IsLower(prev) && unicode.IsUpper(cur)) ||
			(unicode.IsUpper(prev) && unicode.IsUpper(cur) && unicode.IsLower(next)) ||
			(unicode.IsLetter(prev) && unicode.IsDigit(cur)) ||
			(unicode.IsDigit(prev) && unicode.IsLetter(cur))
		if boundary {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	if start < len(runes) {
		words = append(words, string(runes[start:]))
	}

	// keep ordinal placeholders such as P0 in one piece
	merged := words[:0]
	for i := 0; i < len(words); i++ {
		w := words[i]
		if (w == "P" || w == "p") && i+1 < len(words) && unicode.IsDigit([]rune(words[i+1])[0]) {
			w += words[i+1]
			i++
		}
		merged = append(merged, w)
	}
	return merged
}
