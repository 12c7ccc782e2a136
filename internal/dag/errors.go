package dag

import (
	"fmt"
	"strings"
)

// DependencyCycleError reports that the dependency pairs form a cycle.
// Cycle holds one witness path whose first and last elements are equal.
type DependencyCycleError struct {
	Cycle []string
}

func (e *DependencyCycleError) Error() string {
	if len(e.Cycle) == 0 {
		return "dependency cycle detected"
	}
	return "dependency cycle detected: " + strings.Join(e.Cycle, " -> ")
}

func nodeNotFound(role, id string) error {
	if role == "" {
		return fmt.Errorf("node not found: %s", id)
	}
	return fmt.Errorf("%s node not found: %s", role, id)
}
