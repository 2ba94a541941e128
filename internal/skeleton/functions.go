package skeleton

import (
	"strconv"
	"strings"
	"text/template"
)

// CodeIndent is the indentation applied to skeletons embedded in trace output.
const CodeIndent = 4

// CustomFuncMap returns the functions available in skeleton templates.
func CustomFuncMap() template.FuncMap {
	return template.FuncMap{
		"toLower":   strings.ToLower,
		"toUpper":   strings.ToUpper,
		"join":      strings.Join,
		"trimSpace": strings.TrimSpace,
		"indent":    Indent,
		"goString": func(s string) string {
			if strings.Contains(s, "`") {
				return strconv.Quote(s)
			}
			return "`" + s + "`"
		},
		"csharpString": func(s string) string {
			return `@"` + strings.ReplaceAll(s, `"`, `""`) + `"`
		},
		"javaString": func(s string) string {
			s = strings.ReplaceAll(s, `\`, `\\`)
			return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
		},
		"csharpType": func(goType string) string {
			switch goType {
			case "float64":
				return "decimal"
			}
			return goType
		},
		"javaType": func(goType string) string {
			switch goType {
			case "string":
				return "String"
			case "float64":
				return "double"
			}
			return goType
		},
	}
}

// Indent prefixes every non-empty line of s with the given number of spaces.
func Indent(spaces int, s string) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}
