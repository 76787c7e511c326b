package engine

import "fmt"

// ErrorList accumulates the soft errors of one cycle. A fresh list is
// created per cycle and threaded through the steps, so concurrent cycles
// could never share state.
type ErrorList struct {
	items []string
}

func (e *ErrorList) Addf(format string, args ...any) {
	e.items = append(e.items, fmt.Sprintf(format, args...))
}

// Extend folds parser issues into the list under a step prefix.
func (e *ErrorList) Extend(step string, issues []string) {
	for _, issue := range issues {
		e.items = append(e.items, step+": "+issue)
	}
}

func (e *ErrorList) Items() []string { return e.items }

func (e *ErrorList) Len() int { return len(e.items) }
