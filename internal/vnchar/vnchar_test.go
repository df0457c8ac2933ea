package vnchar

import "testing"

func TestSplitTone(t *testing.T) {
	cases := []struct {
		in   rune
		base rune
		tone Tone
	}{
		{'ạ', 'a', ToneDot},
		{'ế', 'ê', ToneAcute},
		{'ừ', 'ư', ToneGrave},
		{'Ỷ', 'Y', ToneHook},
		{'ẵ', 'ă', ToneTilde},
		{'a', 'a', ToneNone},
		{'đ', 'đ', ToneNone},
		{'x', 'x', ToneNone},
	}
	for _, tc := range cases {
		base, tone := SplitTone(tc.in)
		if base != tc.base || tone != tc.tone {
			t.Errorf("SplitTone(%q) = %q, %d; want %q, %d", tc.in, base, tone, tc.base, tc.tone)
		}
	}
}

func TestWithTone(t *testing.T) {
	cases := []struct {
		in   rune
		tone Tone
		want rune
		ok   bool
	}{
		{'a', ToneAcute, 'á', true},
		{'à', ToneDot, 'ạ', true},
		{'ê', ToneGrave, 'ề', true},
		{'Ư', ToneTilde, 'Ữ', true},
		{'ộ', ToneNone, 'ô', true},
		{'đ', ToneAcute, 'đ', false},
		{'b', ToneAcute, 'b', false},
	}
	for _, tc := range cases {
		got, ok := WithTone(tc.in, tc.tone)
		if got != tc.want || ok != tc.ok {
			t.Errorf("WithTone(%q, %d) = %q, %v; want %q, %v", tc.in, tc.tone, got, ok, tc.want, tc.ok)
		}
	}
}

func TestWithShapeKeepsTone(t *testing.T) {
	cases := []struct {
		in    rune
		shape Shape
		want  rune
		ok    bool
	}{
		{'a', ShapeCircumflex, 'â', true},
		{'á', ShapeCircumflex, 'ấ', true},
		{'ọ', ShapeHorn, 'ợ', true},
		{'a', ShapeBreve, 'ă', true},
		{'d', ShapeStroke, 'đ', true},
		{'U', ShapeHorn, 'Ư', true},
		{'e', ShapeBreve, 'e', false},
		{'i', ShapeCircumflex, 'i', false},
	}
	for _, tc := range cases {
		got, ok := WithShape(tc.in, tc.shape)
		if got != tc.want || ok != tc.ok {
			t.Errorf("WithShape(%q, %d) = %q, %v; want %q, %v", tc.in, tc.shape, got, ok, tc.want, tc.ok)
		}
	}
}

func TestStripShape(t *testing.T) {
	cases := []struct{ in, want rune }{
		{'â', 'a'},
		{'ấ', 'á'},
		{'ự', 'ụ'},
		{'đ', 'd'},
		{'á', 'á'},
		{'x', 'x'},
	}
	for _, tc := range cases {
		if got := StripShape(tc.in); got != tc.want {
			t.Errorf("StripShape(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestShapeOf(t *testing.T) {
	cases := []struct {
		in    rune
		shape Shape
		ok    bool
	}{
		{'â', ShapeCircumflex, true},
		{'ậ', ShapeCircumflex, true},
		{'ằ', ShapeBreve, true},
		{'ữ', ShapeHorn, true},
		{'đ', ShapeStroke, true},
		{'a', 0, false},
		{'á', 0, false},
	}
	for _, tc := range cases {
		shape, ok := ShapeOf(tc.in)
		if ok != tc.ok || (ok && shape != tc.shape) {
			t.Errorf("ShapeOf(%q) = %d, %v; want %d, %v", tc.in, shape, ok, tc.shape, tc.ok)
		}
	}
}

func TestPlain(t *testing.T) {
	cases := []struct{ in, want rune }{
		{'ậ', 'a'},
		{'ự', 'u'},
		{'đ', 'd'},
		{'é', 'e'},
		{'k', 'k'},
	}
	for _, tc := range cases {
		if got := Plain(tc.in); got != tc.want {
			t.Errorf("Plain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsVowel(t *testing.T) {
	for _, r := range "aeiouyáộừĂÊ" {
		if !IsVowel(r) {
			t.Errorf("%q is a vowel", r)
		}
	}
	for _, r := range "bdđkw " {
		if IsVowel(r) {
			t.Errorf("%q is not a vowel", r)
		}
	}
}

func TestIsLetter(t *testing.T) {
	for _, r := range "ăâđơưệỰ" {
		if !IsLetter(r) {
			t.Errorf("%q belongs to the alphabet", r)
		}
	}
	for _, r := range "azç€" {
		if IsLetter(r) {
			t.Errorf("%q is outside the alphabet", r)
		}
	}
}

func TestIsRebuildable(t *testing.T) {
	for _, r := range "aZ9ộđ" {
		if !IsRebuildable(r) {
			t.Errorf("%q should be rebuildable", r)
		}
	}
	for _, r := range " .\n\tç" {
		if IsRebuildable(r) {
			t.Errorf("%q should not be rebuildable", r)
		}
	}
	if IsRebuildable(0x07) {
		t.Error("control characters are not rebuildable")
	}
}
