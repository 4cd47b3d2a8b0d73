// Package registry provides the step registry, mapping step names to their implementations.
package registry

import (
	"sort"

	"go.flow.arcalot.io/stepmonitor/step"
)

// New creates a new step registry from the specified steps.
func New(steps map[string]step.Step) (step.Registry, error) {
	b := NewBuilder()
	for name, s := range steps {
		if err := b.Register(name, s); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// Builder collects steps before the monitor starts. Once Build is called the resulting registry is immutable.
type Builder interface {
	// Register adds a step. It fails with ErrDuplicateStep if the name is already taken.
	Register(name string, body step.Step) error
	// RegisterFunc is a shortcut for registering a step.Func.
	RegisterFunc(name string, body step.Func) error
	// Build returns the registry. Further Register calls do not affect it.
	Build() step.Registry
}

// NewBuilder creates an empty registry builder.
func NewBuilder() Builder {
	return &builder{
		steps: map[string]step.Step{},
	}
}

type builder struct {
	steps map[string]step.Step
}

func (b *builder) Register(name string, body step.Step) error {
	if name == "" {
		return &ErrInvalidStep{Name: name, Reason: "the step name cannot be empty"}
	}
	if body == nil {
		return &ErrInvalidStep{Name: name, Reason: "the step has no body"}
	}
	if _, ok := b.steps[name]; ok {
		return &ErrDuplicateStep{name}
	}
	b.steps[name] = body
	return nil
}

func (b *builder) RegisterFunc(name string, body step.Func) error {
	if body == nil {
		return &ErrInvalidStep{Name: name, Reason: "the step has no body"}
	}
	return b.Register(name, body)
}

func (b *builder) Build() step.Registry {
	steps := make(map[string]step.Step, len(b.steps))
	names := make([]string, 0, len(b.steps))
	for name, s := range b.steps {
		steps[name] = s
		names = append(names, name)
	}
	sort.Strings(names)
	return &stepRegistry{
		steps: steps,
		names: names,
	}
}

type stepRegistry struct {
	steps map[string]step.Step
	names []string
}

func (s stepRegistry) Resolve(name string) (step.Step, error) {
	body, ok := s.steps[name]
	if !ok {
		return nil, &step.ErrStepNotFound{
			Name:       name,
			ValidNames: s.Names(),
		}
	}
	return body, nil
}

func (s stepRegistry) Names() []string {
	result := make([]string, len(s.names))
	copy(result, s.names)
	return result
}
