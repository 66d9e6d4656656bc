package fragpipe

import (
	"fmt"
	"strings"
)

// Mode controls which pixel operations a Buffer permits.
//
// The zero value is NoAccess. Modes change only through the transition
// methods below; each is total and idempotent:
//
//	               NoAccess   ReadOnly   WriteOnly  ReadWrite
//	EnableWrite    WriteOnly  ReadWrite  WriteOnly  ReadWrite
//	DisableWrite   NoAccess   ReadOnly   NoAccess   ReadOnly
//	EnableRead     ReadOnly   ReadOnly   ReadWrite  ReadWrite
//	DisableRead    NoAccess   NoAccess   WriteOnly  WriteOnly
type Mode uint8

const (
	// NoAccess permits neither reads nor writes.
	NoAccess Mode = iota
	// ReadOnly permits reads.
	ReadOnly
	// WriteOnly permits writes.
	WriteOnly
	// ReadWrite permits reads and writes.
	ReadWrite
)

// CanRead reports whether pixel reads are allowed.
func (m Mode) CanRead() bool {
	return m == ReadOnly || m == ReadWrite
}

// CanWrite reports whether pixel writes are allowed.
func (m Mode) CanWrite() bool {
	return m == WriteOnly || m == ReadWrite
}

// IsValid reports whether m is one of the four defined modes.
func (m Mode) IsValid() bool {
	return m <= ReadWrite
}

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case NoAccess:
		return "NoAccess"
	case ReadOnly:
		return "ReadOnly"
	case WriteOnly:
		return "WriteOnly"
	case ReadWrite:
		return "ReadWrite"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// EnableWrite returns the mode after granting write permission.
func (m Mode) EnableWrite() Mode {
	if m.CanRead() {
		return ReadWrite
	}
	return WriteOnly
}

// DisableWrite returns the mode after revoking write permission.
// Read permission is unaffected.
func (m Mode) DisableWrite() Mode {
	if m.CanRead() {
		return ReadOnly
	}
	return NoAccess
}

// EnableRead returns the mode after granting read permission.
func (m Mode) EnableRead() Mode {
	if m.CanWrite() {
		return ReadWrite
	}
	return ReadOnly
}

// DisableRead returns the mode after revoking read permission.
// Write permission is unaffected.
func (m Mode) DisableRead() Mode {
	if m.CanWrite() {
		return WriteOnly
	}
	return NoAccess
}

// ReadWrite returns ReadWrite when on is true and NoAccess otherwise,
// regardless of m.
func (m Mode) ReadWrite(on bool) Mode {
	if on {
		return ReadWrite
	}
	return NoAccess
}

// Toward returns the mode reached from m by applying the transitions that
// grant exactly the permissions of target.
func (m Mode) Toward(target Mode) Mode {
	switch target {
	case ReadOnly:
		return m.DisableWrite().EnableRead()
	case WriteOnly:
		return m.DisableRead().EnableWrite()
	default:
		return m.ReadWrite(target == ReadWrite)
	}
}

// modeNames maps accepted spellings to modes.
var modeNames = map[string]Mode{
	"none":      NoAccess,
	"noaccess":  NoAccess,
	"read":      ReadOnly,
	"readonly":  ReadOnly,
	"write":     WriteOnly,
	"writeonly": WriteOnly,
	"readwrite": ReadWrite,
}

// ParseMode converts a mode name to a Mode. Matching is case-insensitive and
// ignores underscores and hyphens, so "read_only" and "Read-Write" are
// accepted.
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(strings.TrimSpace(s)))
	if m, ok := modeNames[key]; ok {
		return m, nil
	}
	return NoAccess, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}
