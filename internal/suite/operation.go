//go:generate go run golang.org/x/tools/cmd/stringer -type=Operation -linecomment=true

package suite

import (
	"strings"
)

// Operation identifies one of the grid benchmarks.
type Operation int

const (
	// Load generates rows, binds them to the grid, and times the first render.
	Load Operation = iota // load
	// DeltaUpdate adds, updates, and removes rows in a single transaction.
	DeltaUpdate // delta
	// Sort sorts the grid by a single column.
	Sort // sort
	// Filter applies a quick filter.
	Filter // filter
	// Scroll scrolls through every row in batches, yielding a frame between batches.
	Scroll // scroll
	// Group groups rows by a single column.
	Group // group
)

// Operations lists every operation in its default run order.
var Operations = []Operation{Load, DeltaUpdate, Sort, Filter, Scroll, Group}

// ParseOperation looks up an Operation by its stringified (case-insensitive) representation.
func ParseOperation(op string) (Operation, bool) {
	for _, known := range Operations {
		if strings.EqualFold(strings.TrimSpace(op), known.String()) {
			return known, true
		}
	}

	return Load, false
}

// ParseOperations parses a list of operation names, reporting the first unknown one.
func ParseOperations(names []string) ([]Operation, string, bool) {
	ops := make([]Operation, 0, len(names))

	for _, name := range names {
		op, ok := ParseOperation(name)
		if !ok {
			return nil, name, false
		}
		ops = append(ops, op)
	}

	return ops, "", true
}
