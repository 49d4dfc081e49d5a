package decode

import "fmt"

// Error is a value-level decode failure: the bytes do not form a valid value
// of the field's declared type. Errors are recorded per field and do not stop
// the rest of the record from decoding unless Options.Strict is set.
type Error struct {
	// Field is the qualified field name, e.g. "TRAN.AMOUNT".
	Field string
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("decode error at %s: %s", e.Field, e.Msg)
}

func errf(fieldName, format string, args ...any) *Error {
	return &Error{Field: fieldName, Msg: fmt.Sprintf(format, args...)}
}
