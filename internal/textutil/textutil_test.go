package textutil

import "testing"

func TestIsWordBreak(t *testing.T) {
	for _, r := range " ,;:.\"'!?()[]{}\t\n" {
		if !IsWordBreak(r) {
			t.Errorf("%q should break words", r)
		}
	}
	for _, r := range "abzAZ09ộư" {
		if IsWordBreak(r) {
			t.Errorf("%q should not break words", r)
		}
	}
}

func TestTrimLastRunes(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"việt", 1, "việ"},
		{"việt", 2, "vi"},
		{"việt", 10, ""},
		{"abc", 0, "abc"},
		{"", 3, ""},
	}
	for _, tc := range cases {
		if got := TrimLastRunes(tc.in, tc.n); got != tc.want {
			t.Errorf("TrimLastRunes(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestLastRune(t *testing.T) {
	if got := LastRune("ngả"); got != 'ả' {
		t.Errorf("got %q", got)
	}
	if got := LastRune(""); got != 0 {
		t.Errorf("empty string: got %q", got)
	}
}

func TestTrimTrailingBreaks(t *testing.T) {
	cases := []struct{ in, want string }{
		{"việt ", "việt"},
		{"việt.!?", "việt"},
		{"việt", "việt"},
		{"  ", ""},
	}
	for _, tc := range cases {
		if got := TrimTrailingBreaks(tc.in); got != tc.want {
			t.Errorf("TrimTrailingBreaks(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestContainsBreak(t *testing.T) {
	if !ContainsBreak("xin chào") {
		t.Error("space is a break")
	}
	if ContainsBreak("chào") {
		t.Error("no break expected")
	}
}

func TestIsAutoCommitASCII(t *testing.T) {
	for _, r := range "bcfghjklmnpqrstvxzBCFGHJKLMNPQRSTVXZ0159" {
		if !IsAutoCommitASCII(r) {
			t.Errorf("%q should auto-commit", r)
		}
	}
	// vowels and sequence openers go through the engine
	for _, r := range "adeiouwyADEIOUWY .ư" {
		if IsAutoCommitASCII(r) {
			t.Errorf("%q should not auto-commit", r)
		}
	}
}

func TestIsWordChar(t *testing.T) {
	if !IsWordChar('ộ') || !IsWordChar('a') || !IsWordChar('9') {
		t.Error("letters and digits are word characters")
	}
	if IsWordChar(' ') || IsWordChar('.') {
		t.Error("breaks are not word characters")
	}
}
