//go:generate go run golang.org/x/tools/cmd/stringer -type=State

package bench

// State describes where a harness is in the lifecycle of a single timed operation.
type State int

const (
	// Idle is the state after construction or Reset.
	Idle State = iota
	// MarkingStart is entered while a step's start mark is being recorded.
	MarkingStart
	// Running is entered while a step's body executes.
	Running
	// MarkingEnd is entered once a step's end mark is being recorded, possibly from a later
	// callback.
	MarkingEnd
	// Measured is entered once a measurement has been resolved.
	Measured
	// Published is entered once the measurements have been handed to a sink. The next Reset
	// returns the harness to Idle.
	Published
)
