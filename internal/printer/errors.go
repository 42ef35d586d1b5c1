package printer

import (
	"fmt"
	"strings"
)

// Attempt records one discovery strategy that was tried and why it failed.
type Attempt struct {
	Strategy string
	Reason   string
}

// ConnectionError is returned when every discovery strategy for a target has
// been exhausted. Attempts preserves the order in which strategies ran.
type ConnectionError struct {
	Target   string
	Attempts []Attempt
}

func (e *ConnectionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "printer connection failed for target %q after %d attempts", e.Target, len(e.Attempts))
	for _, a := range e.Attempts {
		fmt.Fprintf(&sb, "; %s: %s", a.Strategy, a.Reason)
	}
	return sb.String()
}
