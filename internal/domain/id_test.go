package domain

import (
	"strings"
	"testing"
)

func TestValidateMeetingCode(t *testing.T) {
	valid := []string{
		"abc-def-ghij",
		"ABC-DEF-GHIJ",
		"a1B-2c3-D4e5",
		"000-000-0000",
	}
	for _, code := range valid {
		if !ValidateMeetingCode(code) {
			t.Fatalf("expected %q to be valid", code)
		}
	}

	invalid := []string{
		"",
		"abc-def-ghi",    // last segment too short
		"ab-def-ghij",    // first segment too short
		"abcd-def-ghij",  // first segment too long
		"abc-def-ghijk",  // last segment too long
		"abcdefghij",     // missing hyphens
		"abc_def_ghij",   // wrong separator
		"abc-def-ghij ",  // trailing space
		" abc-def-ghij",  // leading space
		"ab!-def-ghij",   // non-alphanumeric
		"abc-def-ghij-x", // extra segment
	}
	for _, code := range invalid {
		if ValidateMeetingCode(code) {
			t.Fatalf("expected %q to be invalid", code)
		}
	}
}

func TestNewMeetingCodeShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := NewMeetingCode()
		if !ValidateMeetingCode(string(code)) {
			t.Fatalf("generated code %q does not validate", code)
		}
	}
}

func TestNewIDPrefix(t *testing.T) {
	kinds := []IDKind{KindMeeting, KindUser, KindMessage, KindFile, KindEvent}
	for _, k := range kinds {
		id := NewID(k)
		if !strings.HasPrefix(id, string(k)+"-") {
			t.Fatalf("id %q missing %q prefix", id, k)
		}
	}
	if NewID(KindUser) == NewID(KindUser) {
		t.Fatal("two generated ids collided")
	}
}
