package reconciler

import (
	"fmt"
)

// Op names the filesystem step an IoError comes from.
type Op string

const (
	OpCreateDir Op = "create directory"
	OpName      Op = "derive file name"
	OpPlan      Op = "plan relocation"
	OpRead      Op = "read source"
	OpWrite     Op = "write destination"
	OpCopy      Op = "copy"
)

// IoError reports a failed filesystem operation during relocation.
// The whole run should be aborted; the engine does not retry.
type IoError struct {
	Op          Op
	DNA         string
	Source      string
	Destination string
	Err         error
}

func (e *IoError) Error() string {
	switch {
	case e.DNA == "":
		return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Destination, e.Err)
	case e.Destination == "":
		return fmt.Sprintf("failed to %s for dna %s (%s): %v", e.Op, e.DNA, e.Source, e.Err)
	default:
		return fmt.Sprintf("failed to %s for dna %s (%s -> %s): %v", e.Op, e.DNA, e.Source, e.Destination, e.Err)
	}
}

func (e *IoError) Unwrap() error {
	return e.Err
}
