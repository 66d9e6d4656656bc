package fragpipe

import (
	"errors"
	"testing"
)

var allModes = []Mode{NoAccess, ReadOnly, WriteOnly, ReadWrite}

// =============================================================================
// Transition Table Tests
// =============================================================================

func TestMode_Transitions(t *testing.T) {
	tests := []struct {
		name string
		op   func(Mode) Mode
		want map[Mode]Mode
	}{
		{"EnableWrite", Mode.EnableWrite, map[Mode]Mode{
			NoAccess: WriteOnly, ReadOnly: ReadWrite, WriteOnly: WriteOnly, ReadWrite: ReadWrite,
		}},
		{"DisableWrite", Mode.DisableWrite, map[Mode]Mode{
			NoAccess: NoAccess, ReadOnly: ReadOnly, WriteOnly: NoAccess, ReadWrite: ReadOnly,
		}},
		{"EnableRead", Mode.EnableRead, map[Mode]Mode{
			NoAccess: ReadOnly, ReadOnly: ReadOnly, WriteOnly: ReadWrite, ReadWrite: ReadWrite,
		}},
		{"DisableRead", Mode.DisableRead, map[Mode]Mode{
			NoAccess: NoAccess, ReadOnly: NoAccess, WriteOnly: WriteOnly, ReadWrite: WriteOnly,
		}},
		{"ReadWrite(true)", func(m Mode) Mode { return m.ReadWrite(true) }, map[Mode]Mode{
			NoAccess: ReadWrite, ReadOnly: ReadWrite, WriteOnly: ReadWrite, ReadWrite: ReadWrite,
		}},
		{"ReadWrite(false)", func(m Mode) Mode { return m.ReadWrite(false) }, map[Mode]Mode{
			NoAccess: NoAccess, ReadOnly: NoAccess, WriteOnly: NoAccess, ReadWrite: NoAccess,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, from := range allModes {
				got := tt.op(from)
				if got != tt.want[from] {
					t.Errorf("%s from %s = %s, want %s", tt.name, from, got, tt.want[from])
				}
				// Idempotent: applying twice equals applying once.
				if again := tt.op(got); again != got {
					t.Errorf("%s not idempotent from %s: %s then %s", tt.name, from, got, again)
				}
			}
		})
	}
}

func TestMode_WriteRoundTrip(t *testing.T) {
	for _, from := range []Mode{NoAccess, ReadOnly} {
		if got := from.EnableWrite().DisableWrite(); got != from {
			t.Errorf("EnableWrite then DisableWrite from %s = %s", from, got)
		}
	}
	for _, from := range []Mode{NoAccess, WriteOnly} {
		if got := from.EnableRead().DisableRead(); got != from {
			t.Errorf("EnableRead then DisableRead from %s = %s", from, got)
		}
	}
}

func TestMode_Toward(t *testing.T) {
	for _, from := range allModes {
		for _, target := range allModes {
			if got := from.Toward(target); got != target {
				t.Errorf("%s.Toward(%s) = %s", from, target, got)
			}
		}
	}
}

func TestMode_Permissions(t *testing.T) {
	tests := []struct {
		m               Mode
		canRead, canWrt bool
	}{
		{NoAccess, false, false},
		{ReadOnly, true, false},
		{WriteOnly, false, true},
		{ReadWrite, true, true},
		{Mode(9), false, false},
	}
	for _, tt := range tests {
		if tt.m.CanRead() != tt.canRead || tt.m.CanWrite() != tt.canWrt {
			t.Errorf("%s: CanRead=%v CanWrite=%v, want %v %v",
				tt.m, tt.m.CanRead(), tt.m.CanWrite(), tt.canRead, tt.canWrt)
		}
	}
	if Mode(9).IsValid() {
		t.Error("Mode(9).IsValid() = true")
	}
	if Mode(9).String() != "Mode(9)" {
		t.Errorf("Mode(9).String() = %q", Mode(9).String())
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"none", NoAccess, false},
		{"NoAccess", NoAccess, false},
		{"read", ReadOnly, false},
		{"READ_ONLY", ReadOnly, false},
		{"write", WriteOnly, false},
		{"write-only", WriteOnly, false},
		{"readwrite", ReadWrite, false},
		{" ReadWrite ", ReadWrite, false},
		{"execute", NoAccess, true},
		{"", NoAccess, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidMode) {
				t.Errorf("error %v does not wrap ErrInvalidMode", err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
