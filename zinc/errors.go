package zinc

import "fmt"

// ParseError is the structured error the parser surfaces for malformed
// Zinc input: the byte offset of the first unexpected input plus a short
// description. Parsing is total — it never panics on adversarial input
// (spec.md §4.2, §7); every failure path returns a *ParseError instead.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("zinc: unexpected input at byte %d: %s", e.Offset, e.Msg)
}

func newParseError(offset int, format string, args ...interface{}) *ParseError {
	return &ParseError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
