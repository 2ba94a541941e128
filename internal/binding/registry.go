package binding

import (
	"sync"

	"github.com/fjglira/stepbinder/internal/domain"
)

// Source exposes registered step definitions to the matcher.
type Source interface {
	BindingsFor(stepType domain.StepType) []*StepDefinition
}

// Registry stores step definitions. It performs no matching and accepts
// duplicates. Once frozen, further registrations fail.
type Registry struct {
	mu     sync.RWMutex
	byType map[domain.StepType][]*StepDefinition
	all    []*StepDefinition
	frozen bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[domain.StepType][]*StepDefinition),
	}
}

// Register adds d to the registry.
func (r *Registry) Register(d *StepDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return domain.ErrRegistryFrozen
	}
	r.byType[d.Type] = append(r.byType[d.Type], d)
	r.all = append(r.all, d)
	return nil
}

// Freeze marks the end of discovery. Matching may start after Freeze returns.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// BindingsFor returns the definitions registered for stepType, in registration order.
func (r *Registry) BindingsFor(stepType domain.StepType) []*StepDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*StepDefinition(nil), r.byType[stepType]...)
}

// All returns every registered definition, in registration order.
func (r *Registry) All() []*StepDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*StepDefinition(nil), r.all...)
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.all)
}
