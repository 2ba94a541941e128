package skeleton

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/fjglira/stepbinder/internal/binding"
	"github.com/fjglira/stepbinder/internal/domain"
	"github.com/fjglira/stepbinder/internal/stepregex"
)

var (
	quotedRe = regexp.MustCompile(`"[^"]*"`)
	numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// Param is a parameter of a suggested step method.
type Param struct {
	Name string
	Type string // Go type name: "string", "int" or "float64"
}

// Analysis is the placeholder descriptor inferred from a step's text.
type Analysis struct {
	Type    domain.StepType
	Text    string
	Words   []string // literal words of the text, placeholders removed
	Params  []Param
	Pattern string
	Method  binding.Method
}

// MethodWords is the step keyword followed by the literal words.
func (a Analysis) MethodWords() []string {
	return append([]string{a.Type.String()}, a.Words...)
}

// Analyze infers parameters from step text: quoted substrings become string
// parameters and whitespace-delimited numbers become numeric ones. The
// pattern comes from the regex calculator applied to the literal text and
// the parameter slots, so it always matches the text it was built from.
func Analyze(step domain.StepInstance, calc *stepregex.Calculator) Analysis {
	a := Analysis{Type: step.Type, Text: step.Text}

	var tokens []stepregex.Token
	nameParts := []string{step.Type.String()}
	addParam := func(typeName string) {
		name := fmt.Sprintf("p%d", len(a.Params))
		tokens = append(tokens, stepregex.ParamToken(len(a.Params)))
		a.Params = append(a.Params, Param{Name: name, Type: typeName})
		nameParts = append(nameParts, strings.ToUpper(name[:1])+name[1:])
	}
	addLiteral := func(s string) {
		if s == "" {
			return
		}
		tokens = append(tokens, stepregex.LiteralToken(s))
		for _, part := range strings.Fields(strings.ReplaceAll(s, "_", " ")) {
			a.Words = append(a.Words, part)
			nameParts = append(nameParts, part)
		}
	}
	addSegment := func(seg string) {
		last := 0
		for _, loc := range numberRe.FindAllStringIndex(seg, -1) {
			if !wordStart(seg, loc[0]) || !wordEnd(seg, loc[1]) {
				continue
			}
			addLiteral(seg[last:loc[0]])
			if strings.Contains(seg[loc[0]:loc[1]], ".") {
				addParam("float64")
			} else {
				addParam("int")
			}
			last = loc[1]
		}
		addLiteral(seg[last:])
	}

	last := 0
	for _, loc := range quotedRe.FindAllStringIndex(step.Text, -1) {
		addSegment(step.Text[last:loc[0]])
		addParam("string")
		last = loc[1]
	}
	addSegment(step.Text[last:])

	params := make([]binding.Parameter, len(a.Params))
	for i, p := range a.Params {
		params[i] = binding.Parameter{Name: p.Name, TypeName: p.Type}
	}
	a.Method = binding.NewStaticMethod("", strings.Join(nameParts, "_"), params...)
	a.Pattern = calc.CalculateTokens(tokens, params)
	return a
}

func wordStart(s string, i int) bool {
	return i == 0 || unicode.IsSpace(rune(s[i-1]))
}

func wordEnd(s string, i int) bool {
	return i == len(s) || unicode.IsSpace(rune(s[i]))
}

// Identifier joins words into an identifier. upperFirst selects PascalCase
// over camelCase. Characters that cannot appear in identifiers are dropped.
func Identifier(words []string, upperFirst bool) string {
	var b strings.Builder
	for i, w := range words {
		var clean []rune
		for _, r := range w {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				clean = append(clean, r)
			}
		}
		if len(clean) == 0 {
			continue
		}
		if i == 0 && !upperFirst {
			clean[0] = unicode.ToLower(clean[0])
		} else {
			clean[0] = unicode.ToUpper(clean[0])
		}
		b.WriteString(string(clean))
	}
	id := b.String()
	if id == "" {
		return "Step"
	}
	if unicode.IsDigit([]rune(id)[0]) {
		id = "Step" + id
	}
	return id
}
