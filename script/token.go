// Package script parses pipeline scripts into pipeline tasks.
//
// A script holds one instruction per line. Tokens are separated by
// whitespace; double quotes group whitespace into one token and \" inside
// quotes is a literal quote. Blank lines and lines starting with // are
// ignored.
//
//	#alias src "scans/page 1.png"
//	loadfromfile src
//	createtarget src out
//	setread src
//	setwrite out
//	processfull src out antistamp 8 32
//	setnoaccess out
//	savetofile out %1 png
//
// Verbs are case-insensitive and underscores in them are ignored, so
// Load_From_File and loadfromfile are the same verb. Positional arguments
// passed to the parser are available as the aliases %0, %1, ...
//
// All errors are reported at parse time as *ParseError, before any task
// runs.
package script

import (
	"errors"
	"strings"
	"unicode"
)

// errUnterminated is reported by tokenize for an unbalanced quote.
var errUnterminated = errors.New("unterminated quoted string")

// token is one word of a script line.
type token struct {
	text string

	// col is the 1-based rune column where the token starts.
	col int
}

// isComment reports whether line is a // comment.
func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimLeftFunc(line, unicode.IsSpace), "//")
}

// tokenize splits a line into tokens. On an unterminated quote it returns
// the column of the opening quote.
func tokenize(line string) ([]token, int, error) {
	var (
		tokens  []token
		sb      strings.Builder
		inQuote bool
		started bool
		start   int
		quoteAt int
		prev    rune
	)

	flush := func() {
		if started {
			tokens = append(tokens, token{text: sb.String(), col: start})
		}
		sb.Reset()
		started = false
	}

	col := 0
	for _, r := range line {
		col++
		switch {
		case r == '"' && inQuote && prev == '\\':
			// Replace the escaping backslash with the quote.
			s := sb.String()
			sb.Reset()
			sb.WriteString(s[:len(s)-1])
			sb.WriteRune(r)
			r = 0
		case r == '"':
			if !started {
				started = true
				start = col
			}
			inQuote = !inQuote
			quoteAt = col
		case inQuote:
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			if !started {
				started = true
				start = col
			}
			sb.WriteRune(r)
		}
		prev = r
	}

	if inQuote {
		return nil, quoteAt, errUnterminated
	}
	flush()
	return tokens, 0, nil
}
