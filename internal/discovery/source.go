// Package discovery turns step declarations into step definitions, either
// from annotated Go sources or from live Go functions.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/fjglira/stepbinder/internal/binding"
	"github.com/fjglira/stepbinder/internal/domain"
	"github.com/fjglira/stepbinder/internal/scanner"
	"github.com/fjglira/stepbinder/internal/stepregex"
)

const directivePrefix = "stepbind:"

// bindingType is a type marked //stepbind:binding, possibly declared in
// another file than its methods.
type bindingType struct {
	name   string
	file   string
	scopes []binding.Scope
}

// candidate is an annotated method waiting for its receiver type.
type candidate struct {
	receiver string
	name     string
	params   []binding.Parameter
	verbs    []verbDirective
	scopes   []binding.Scope
	file     string
	line     int
}

type verbDirective struct {
	types   []domain.StepType
	pattern string
}

type parsedFile struct {
	path       string
	types      []bindingType
	candidates []candidate
}

// SourceScanner discovers step definitions in Go source files.
type SourceScanner struct {
	scanner scanner.Scanner
	calc    *stepregex.Calculator
	log     *logrus.Logger
}

// NewSourceScanner creates a SourceScanner using s to find files.
func NewSourceScanner(s scanner.Scanner, log *logrus.Logger) *SourceScanner {
	return &SourceScanner{
		scanner: s,
		calc:    stepregex.NewCalculator(),
		log:     log,
	}
}

// Discover scans dirs for Go files and returns their step definitions.
func (s *SourceScanner) Discover(ctx context.Context, dirs, include, exclude []string) ([]*binding.StepDefinition, error) {
	files, err := s.scanner.ScanAll(dirs, include, exclude)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("Found %d binding source(s)", len(files))
	return s.DiscoverFiles(ctx, files)
}

// DiscoverFiles parses files and returns their step definitions, ordered by
// file and line. Binding types and their methods may live in different files.
func (s *SourceScanner) DiscoverFiles(ctx context.Context, files []string) ([]*binding.StepDefinition, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())

	var parsed []parsedFile
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.NewError("discover", path, 0, "failed to read binding source", err)
		}
		tree, err := parser.ParseCtx(ctx, nil, content)
		if err != nil {
			return nil, domain.NewError("discover", path, 0, "failed to parse binding source", err)
		}
		pf := s.collect(path, tree.RootNode(), content)
		tree.Close()
		parsed = append(parsed, pf)
	}

	types := make(map[string]*bindingType)
	for _, pf := range parsed {
		for i := range pf.types {
			t := pf.types[i]
			if existing, ok := types[t.name]; ok {
				existing.scopes = binding.MergeScopes(existing.scopes, t.scopes)
				continue
			}
			types[t.name] = &t
		}
	}

	var defs []*binding.StepDefinition
	for _, pf := range parsed {
		for _, c := range pf.candidates {
			bt, ok := types[c.receiver]
			if !ok {
				s.log.Warnf("%s:%d: %s has step annotations but %s is not marked %sbinding",
					c.file, c.line, c.name, c.receiver, directivePrefix)
				continue
			}
			built, err := s.build(bt, c)
			if err != nil {
				return nil, err
			}
			defs = append(defs, built...)
		}
	}

	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].SourceFile != defs[j].SourceFile {
			return defs[i].SourceFile < defs[j].SourceFile
		}
		return defs[i].LineNumber < defs[j].LineNumber
	})
	s.log.Infof("Discovered %d step definition(s) in %d file(s)", len(defs), len(files))
	return defs, nil
}

// Register adds defs to reg.
func Register(reg *binding.Registry, defs []*binding.StepDefinition) error {
	for _, d := range defs {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}

func (s *SourceScanner) build(bt *bindingType, c candidate) ([]*binding.StepDefinition, error) {
	method := binding.NewStaticMethod(bt.name, c.name, c.params...)
	scopes := binding.MergeScopes(bt.scopes, c.scopes)

	var defs []*binding.StepDefinition
	for _, v := range c.verbs {
		for _, t := range v.types {
			pattern := v.pattern
			if pattern == "" {
				pattern = s.calc.Calculate(t, method)
			}
			def, err := binding.NewStepDefinition(t, pattern, method, scopes...)
			if err != nil {
				var e *domain.Error
				if errors.As(err, &e) {
					e.File, e.LineNumber = c.file, c.line
				}
				return nil, err
			}
			def.SourceFile, def.LineNumber = c.file, c.line
			s.log.Debugf("%s:%d: %s", c.file, c.line, def)
			defs = append(defs, def)
		}
	}
	return defs, nil
}

// collect walks the top-level declarations of one file.
func (s *SourceScanner) collect(path string, root *sitter.Node, src []byte) parsedFile {
	pf := parsedFile{path: path}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "type_declaration":
			pf.types = append(pf.types, s.collectTypes(path, node, src)...)
		case "method_declaration":
			if c, ok := s.collectMethod(path, node, src); ok {
				pf.candidates = append(pf.candidates, c)
			}
		}
	}
	return pf
}

func (s *SourceScanner) collectTypes(path string, decl *sitter.Node, src []byte) []bindingType {
	outer := directives(decl, src)
	var types []bindingType
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		spec := decl.NamedChild(i)
		if spec.Type() != "type_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		lines := append(append([]string(nil), outer...), directives(spec, src)...)
		isBinding := false
		var scopes []binding.Scope
		for _, d := range lines {
			verb, args := splitDirective(d)
			switch verb {
			case "binding":
				isBinding = true
			case "scope":
				if sc, ok := s.parseScope(path, spec, args); ok {
					scopes = append(scopes, sc)
				}
			}
		}
		if isBinding {
			types = append(types, bindingType{
				name:   nameNode.Content(src),
				file:   path,
				scopes: scopes,
			})
		}
	}
	return types
}

func (s *SourceScanner) collectMethod(path string, node *sitter.Node, src []byte) (candidate, bool) {
	c := candidate{file: path, line: int(node.StartPoint().Row + 1)}
	for _, d := range directives(node, src) {
		verb, args := splitDirective(d)
		switch verb {
		case "given", "when", "then":
			t, _ := domain.ParseStepType(verb)
			c.verbs = append(c.verbs, verbDirective{types: []domain.StepType{t}, pattern: args})
		case "step":
			c.verbs = append(c.verbs, verbDirective{types: domain.StepTypes, pattern: args})
		case "scope":
			if sc, ok := s.parseScope(path, node, args); ok {
				c.scopes = append(c.scopes, sc)
			}
		case "binding":
		default:
			s.log.Warnf("%s:%d: unknown directive %s%s", path, c.line, directivePrefix, verb)
		}
	}
	if len(c.verbs) == 0 {
		return c, false
	}

	nameNode := node.ChildByFieldName("name")
	recvNode := node.ChildByFieldName("receiver")
	if nameNode == nil || recvNode == nil {
		return c, false
	}
	c.name = nameNode.Content(src)
	c.receiver = receiverType(recvNode, src)
	if params := node.ChildByFieldName("parameters"); params != nil {
		c.params = extractParams(params, src)
	}
	return c, true
}

func (s *SourceScanner) parseScope(path string, node *sitter.Node, args string) (binding.Scope, bool) {
	line := int(node.StartPoint().Row + 1)
	var tag, feature, scenario string
	for _, field := range splitFields(args) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			s.log.Warnf("%s:%d: ignoring scope field %q", path, line, field)
			continue
		}
		value = unquote(value)
		switch key {
		case "tag":
			tag = value
		case "feature":
			feature = value
		case "scenario":
			scenario = value
		default:
			s.log.Warnf("%s:%d: unknown scope field %q", path, line, key)
		}
	}
	sc, ok := binding.NewScope(tag, feature, scenario)
	if !ok {
		s.log.Warnf("%s:%d: ignoring empty %sscope", path, line, directivePrefix)
	}
	return sc, ok
}

// directives returns the stepbind: lines of the comment block directly
// above node, without the prefix.
func directives(node *sitter.Node, src []byte) []string {
	var lines []string
	current := node
	for {
		prev := current.PrevSibling()
		if prev == nil || prev.Type() != "comment" || current.StartPoint().Row-prev.EndPoint().Row > 1 {
			break
		}
		text := strings.TrimSpace(strings.TrimPrefix(prev.Content(src), "//"))
		if strings.HasPrefix(text, directivePrefix) {
			lines = append([]string{strings.TrimPrefix(text, directivePrefix)}, lines...)
		}
		current = prev
	}
	return lines
}

// splitDirective splits "given I have (\d+)" into "given" and the pattern.
func splitDirective(d string) (string, string) {
	verb, rest, _ := strings.Cut(strings.TrimSpace(d), " ")
	return strings.ToLower(verb), strings.TrimSpace(rest)
}

// receiverType returns the base type name of a receiver: "(s *Steps)" -> "Steps".
func receiverType(recv *sitter.Node, src []byte) string {
	for i := 0; i < int(recv.NamedChildCount()); i++ {
		p := recv.NamedChild(i)
		if p.Type() != "parameter_declaration" {
			continue
		}
		if t := p.ChildByFieldName("type"); t != nil {
			name := strings.TrimLeft(t.Content(src), "*")
			if idx := strings.Index(name, "["); idx >= 0 {
				name = name[:idx]
			}
			return strings.TrimSpace(name)
		}
	}
	return ""
}

// extractParams reads a parameter_list. "a, b int" yields two parameters.
func extractParams(list *sitter.Node, src []byte) []binding.Parameter {
	var params []binding.Parameter
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		variadic := p.Type() == "variadic_parameter_declaration"
		if p.Type() != "parameter_declaration" && !variadic {
			continue
		}
		typeName := ""
		if t := p.ChildByFieldName("type"); t != nil {
			typeName = t.Content(src)
		}
		if typeName == "context.Context" && len(params) == 0 {
			continue
		}

		var names []string
		for j := 0; j < int(p.NamedChildCount()); j++ {
			child := p.NamedChild(j)
			if child.Type() == "identifier" {
				names = append(names, child.Content(src))
			}
		}
		if len(names) == 0 {
			names = []string{fmt.Sprintf("p%d", len(params))}
		}
		for _, n := range names {
			params = append(params, binding.Parameter{Name: n, TypeName: typeName, Variadic: variadic})
		}
	}
	return params
}

// splitFields splits on spaces, keeping double-quoted values together.
func splitFields(s string) []string {
	var fields []string
	var current strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			current.WriteByte(c)
		case (c == ' ' || c == '\t') && !inQuote:
			if current.Len() > 0 {
				fields = append(fields, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}
	if current.Len() > 0 {
		fields = append(fields, current.String())
	}
	return fields
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}
