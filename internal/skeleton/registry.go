package skeleton

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fjglira/stepbinder/internal/domain"
	"github.com/fjglira/stepbinder/internal/stepregex"
)

// Registry maps language keys to skeleton providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[domain.ProgrammingLanguage]Provider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[domain.ProgrammingLanguage]Provider)}
}

// Register sets the provider for language, replacing any previous one.
func (r *Registry) Register(language domain.ProgrammingLanguage, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[language] = p
}

// Provider returns the provider for language. A missing provider is a
// KindConfiguration error.
func (r *Registry) Provider(language domain.ProgrammingLanguage) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[language]; ok {
		return p, nil
	}
	e := domain.NewKindError(domain.KindConfiguration, "skeleton",
		fmt.Sprintf("no skeleton provider registered for language %q (available: %s)",
			language, strings.Join(r.languagesLocked(), ", ")), nil)
	e.Suggestion = "set skeleton.language to an available language or add templates to skeleton.template_directory"
	return nil, e
}

// Languages returns the registered language keys, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.languagesLocked()
}

func (r *Registry) languagesLocked() []string {
	names := make([]string, 0, len(r.providers))
	for lang := range r.providers {
		names = append(names, string(lang))
	}
	sort.Strings(names)
	return names
}

// Generate renders a binding class with one step method per distinct
// step type and pattern among steps.
func (r *Registry) Generate(language domain.ProgrammingLanguage, steps ...domain.StepInstance) (string, error) {
	p, err := r.Provider(language)
	if err != nil {
		return "", err
	}

	type key struct {
		t       domain.StepType
		pattern string
	}
	calc := stepregex.NewCalculator()
	seen := make(map[key]bool)
	var methods []string
	for _, step := range steps {
		k := key{step.Type, Analyze(step, calc).Pattern}
		if seen[k] {
			continue
		}
		seen[k] = true
		m, err := p.StepDefinitionSkeleton(step)
		if err != nil {
			return "", err
		}
		methods = append(methods, m)
	}
	return p.BindingClassSkeleton(strings.Join(methods, "\n\n"))
}
