package keysym

import "testing"

func TestFromEventFoldsReleaseBit(t *testing.T) {
	k := FromEvent(uint32('a'), uint32(ModShift|ModRelease))
	if !k.Release {
		t.Error("release bit not detected")
	}
	if k.Mods != ModShift {
		t.Errorf("mods = %#x, want shift only", k.Mods)
	}
	if k.Sym != Sym('a') {
		t.Errorf("sym = %#x", k.Sym)
	}

	k = FromEvent(uint32(BackSpace), 0)
	if k.Release || k.Mods != 0 || k.Sym != BackSpace {
		t.Errorf("press event mangled: %+v", k)
	}
}

func TestIsPrintable(t *testing.T) {
	printable := []Sym{Space, 'a', 'Z', '0', '~'}
	for _, s := range printable {
		if !s.IsPrintable() {
			t.Errorf("%#x should be printable", s)
		}
	}
	other := []Sym{None, BackSpace, Return, Left, KP0, ShiftL, 0x7f}
	for _, s := range other {
		if s.IsPrintable() {
			t.Errorf("%#x should not be printable", s)
		}
	}
}

func TestNormalizeKeypad(t *testing.T) {
	cases := []struct{ in, want Sym }{
		{KP0, '0'},
		{KP0 + 5, '5'},
		{KP9, '9'},
		{KPEnter, Return},
		{KPMultiply, '*'},
		{KPAdd, '+'},
		{KPSubtract, '-'},
		{KPDecimal, '.'},
		{KPDivide, '/'},
		{'a', 'a'},
		{Left, Left},
	}
	for _, tc := range cases {
		if got := tc.in.NormalizeKeypad(); got != tc.want {
			t.Errorf("NormalizeKeypad(%#x) = %#x, want %#x", tc.in, got, tc.want)
		}
	}
}

func TestClassifiers(t *testing.T) {
	if !ShiftL.IsShift() || !ShiftR.IsShift() || Sym('s').IsShift() {
		t.Error("shift classification wrong")
	}
	if !KP0.IsKeypadDigit() || !KP9.IsKeypadDigit() || Sym('0').IsKeypadDigit() {
		t.Error("keypad digit classification wrong")
	}
	if !Sym('0').IsDigit() || !Sym('9').IsDigit() || Sym('a').IsDigit() || KP0.IsDigit() {
		t.Error("digit classification wrong")
	}
	for _, s := range []Sym{Left, Right, Up, Down, Home, End, PageUp, PageDown} {
		if !s.IsNavigation() {
			t.Errorf("%#x should navigate", s)
		}
	}
	if BackSpace.IsNavigation() || Sym('h').IsNavigation() {
		t.Error("navigation classification wrong")
	}
}

func TestRune(t *testing.T) {
	if Sym('q').Rune() != 'q' || Space.Rune() != ' ' {
		t.Error("printable symbols map to their rune")
	}
	if Return.Rune() != 0 || None.Rune() != 0 {
		t.Error("non-printable symbols map to zero")
	}
}

func TestModifierAccessors(t *testing.T) {
	m := ModShift | ModControl | ModAlt | ModSuper | ModLock
	if !m.HasShift() || !m.HasControl() || !m.HasAlt() || !m.HasSuper() || !m.HasCapsLock() {
		t.Error("set modifiers not reported")
	}
	var none Modifiers
	if none.HasShift() || none.HasControl() || none.HasAlt() || none.HasSuper() || none.HasCapsLock() {
		t.Error("clear modifiers reported set")
	}
}
