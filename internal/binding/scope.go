package binding

import (
	"fmt"
	"strings"

	"github.com/fjglira/stepbinder/internal/domain"
)

// Scope restricts a binding to a tag, a feature and/or a scenario.
// All non-empty fields must match for the scope to apply.
type Scope struct {
	Tag      string
	Feature  string
	Scenario string
}

// NewScope builds a Scope. ok is false when every field is empty, in which
// case the scope is absent and must not be attached to a binding.
func NewScope(tag, feature, scenario string) (Scope, bool) {
	s := Scope{
		Tag:      domain.NormalizeTag(tag),
		Feature:  strings.TrimSpace(feature),
		Scenario: strings.TrimSpace(scenario),
	}
	return s, !s.IsEmpty()
}

// IsEmpty reports whether the scope carries no restriction.
func (s Scope) IsEmpty() bool {
	return s.Tag == "" && s.Feature == "" && s.Scenario == ""
}

// Applies reports whether ctx satisfies every non-empty field of s.
func (s Scope) Applies(ctx domain.StepContext) bool {
	if s.Tag != "" && !ctx.HasTag(s.Tag) {
		return false
	}
	if s.Feature != "" && s.Feature != ctx.FeatureName {
		return false
	}
	if s.Scenario != "" && s.Scenario != ctx.ScenarioName {
		return false
	}
	return true
}

func (s Scope) String() string {
	var parts []string
	if s.Tag != "" {
		parts = append(parts, "@"+s.Tag)
	}
	if s.Feature != "" {
		parts = append(parts, fmt.Sprintf("feature=%q", s.Feature))
	}
	if s.Scenario != "" {
		parts = append(parts, fmt.Sprintf("scenario=%q", s.Scenario))
	}
	return strings.Join(parts, " ")
}

// ScopesApply reports whether a binding with the given scopes applies in ctx.
// No scopes means unconstrained; otherwise any one scope is enough.
func ScopesApply(scopes []Scope, ctx domain.StepContext) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s.Applies(ctx) {
			return true
		}
	}
	return false
}

// MergeScopes returns the union of class-level and method-level scopes,
// dropping empty and duplicate entries.
func MergeScopes(groups ...[]Scope) []Scope {
	var merged []Scope
	seen := make(map[Scope]bool)
	for _, g := range groups {
		for _, s := range g {
			if s.IsEmpty() || seen[s] {
				continue
			}
			seen[s] = true
			merged = append(merged, s)
		}
	}
	return merged
}
