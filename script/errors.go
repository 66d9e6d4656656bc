package script

import (
	"fmt"

	"github.com/gogpu/fragpipe"
)

// ParseError reports an invalid script instruction.
//
// ParseError unwraps to fragpipe.ErrParse.
type ParseError struct {
	// Line is the 1-based line number.
	Line int

	// Column is the 1-based rune column of the offending token, or 0 when
	// the whole instruction is at fault.
	Column int

	// Text is the instruction as written.
	Text string

	Msg string
}

func (e *ParseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("script: line %d: %s", e.Line, e.Msg)
	}
	if e.Column > 0 {
		return fmt.Sprintf("script: line %d, column %d: %s: %q", e.Line, e.Column, e.Msg, e.Text)
	}
	return fmt.Sprintf("script: line %d: %s: %q", e.Line, e.Msg, e.Text)
}

func (e *ParseError) Unwrap() error { return fragpipe.ErrParse }
