package stepmonitor

import (
	"fmt"
	"io"
	"sort"

	"go.flow.arcalot.io/stepmonitor/step"
	"go.flow.arcalot.io/stepmonitor/step/builtin"
	"go.flow.arcalot.io/stepmonitor/step/registry"
)

// NewDefaultStepRegistry creates a registry with the built-in steps. If enabled is not empty, only the named steps
// are registered. PrintStderr writes to the passed stderr writer.
func NewDefaultStepRegistry(enabled []string, stderr io.Writer) (step.Registry, error) {
	available := builtin.All(stderr)
	if len(enabled) == 0 {
		for name := range available {
			enabled = append(enabled, name)
		}
		sort.Strings(enabled)
	}

	b := registry.NewBuilder()
	for _, name := range enabled {
		s, ok := available[name]
		if !ok {
			names := make([]string, 0, len(available))
			for n := range available {
				names = append(names, n)
			}
			sort.Strings(names)
			return nil, fmt.Errorf(
				"failed to create step registry (%w)",
				&step.ErrStepNotFound{Name: name, ValidNames: names},
			)
		}
		if err := b.Register(name, s); err != nil {
			return nil, fmt.Errorf("failed to create step registry (%w)", err)
		}
	}
	return b.Build(), nil
}
