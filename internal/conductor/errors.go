package conductor

import (
	"fmt"
	"strings"
)

// FormatError reports a document that is not valid TOML or does not match the
// expected shape. It is never retried: the run has to be aborted.
type FormatError struct {
	// Entity locates the offending entity, e.g. "dnas[2]". Empty for top-level problems.
	Entity string
	// ID is the entity id when it could be read.
	ID string
	// Field is the offending key.
	Field string
	// Line is the 1-based line of a syntax error, 0 when unknown.
	Line    int
	Message string
	Err     error
}

func (e *FormatError) Error() string {
	var parts []string
	if e.Entity != "" {
		loc := e.Entity
		if e.ID != "" {
			loc = fmt.Sprintf("%s (id %q)", e.Entity, e.ID)
		}
		parts = append(parts, loc)
	}
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field %q", e.Field))
	}
	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("line %d", e.Line))
	}

	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(parts) == 0 {
		return "invalid conductor config: " + msg
	}
	return fmt.Sprintf("invalid conductor config: %s: %s", strings.Join(parts, ", "), msg)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// SerializationError reports an in-memory document that cannot be encoded.
type SerializationError struct {
	Entity  string
	Field   string
	Message string
	Err     error
}

func (e *SerializationError) Error() string {
	loc := e.Entity
	if e.Field != "" {
		if loc != "" {
			loc += "."
		}
		loc += e.Field
	}
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if loc == "" {
		return "failed to serialize conductor config: " + msg
	}
	return fmt.Sprintf("failed to serialize conductor config: %s: %s", loc, msg)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
