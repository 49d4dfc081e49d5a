package parser

import "fmt"

//go:generate stringer -type=ErrKind

// ErrKind classifies a copybook syntax error.
type ErrKind uint8

const (
	// ErrUnexpectedToken is a token that no clause grammar accepts.
	ErrUnexpectedToken ErrKind = 0
	// ErrBadLevel is a level number outside 1-49/66/77/88 or bad nesting.
	ErrBadLevel ErrKind = 1
	// ErrBadPic is a malformed PICTURE clause.
	ErrBadPic ErrKind = 2
	// ErrBadReference is an unresolved REDEFINES or OCCURS DEPENDING ON name.
	ErrBadReference ErrKind = 3
)

// SyntaxError is a fatal copybook compilation error. No partial tree is
// returned alongside one.
type SyntaxError struct {
	Kind ErrKind
	// Line is the 1-based source line, or 0 when the error is not tied to one.
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("copybook syntax error [line %d]: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("copybook syntax error: %s", e.Msg)
}

func errf(kind ErrKind, line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}
