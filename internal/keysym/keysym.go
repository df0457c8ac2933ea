// Package keysym defines the keystroke data model shared by the composer
// and the host frontends: X11-style key symbols, modifier masks, and the
// classification helpers the composition logic keys off.
package keysym

// Sym is an X11 key symbol. Printable ASCII symbols equal their byte
// value; function and navigation keys live in the 0xff00 range.
type Sym uint32

// Key symbols used by the composition logic.
const (
	None Sym = 0

	Space      Sym = 0x0020
	AsciiTilde Sym = 0x007e

	BackSpace Sym = 0xff08
	Tab       Sym = 0xff09
	Return    Sym = 0xff0d
	Escape    Sym = 0xff1b
	Home      Sym = 0xff50
	Left      Sym = 0xff51
	Up        Sym = 0xff52
	Right     Sym = 0xff53
	Down      Sym = 0xff54
	PageUp    Sym = 0xff55
	PageDown  Sym = 0xff56
	End       Sym = 0xff57
	Insert    Sym = 0xff63
	Delete    Sym = 0xffff

	KPEnter    Sym = 0xff8d
	KPMultiply Sym = 0xffaa
	KPAdd      Sym = 0xffab
	KPSubtract Sym = 0xffad
	KPDecimal  Sym = 0xffae
	KPDivide   Sym = 0xffaf
	KP0        Sym = 0xffb0
	KP9        Sym = 0xffb9

	ShiftL   Sym = 0xffe1
	ShiftR   Sym = 0xffe2
	ControlL Sym = 0xffe3
	ControlR Sym = 0xffe4
	CapsLock Sym = 0xffe5
	SuperL   Sym = 0xffeb
	SuperR   Sym = 0xffec
	AltL     Sym = 0xffe9
	AltR     Sym = 0xffea
	HyperL   Sym = 0xffed
	HyperR   Sym = 0xffee
)

// Modifiers is the modifier state accompanying a keystroke, using the
// IBus/GDK mask layout.
type Modifiers uint32

const (
	ModShift   Modifiers = 1 << 0
	ModLock    Modifiers = 1 << 1
	ModControl Modifiers = 1 << 2
	ModAlt     Modifiers = 1 << 3 // Mod1
	ModSuper   Modifiers = 1 << 26
	ModRelease Modifiers = 1 << 30
)

// Keystroke is one key event as reported by the host.
type Keystroke struct {
	Sym     Sym
	Mods    Modifiers
	Release bool
}

// Press builds a key-press Keystroke.
func Press(sym Sym, mods Modifiers) Keystroke {
	return Keystroke{Sym: sym, Mods: mods}
}

// FromEvent builds a Keystroke from a raw IBus key event, folding the
// release bit out of the modifier state.
func FromEvent(keyval, state uint32) Keystroke {
	mods := Modifiers(state)
	release := mods&ModRelease != 0
	return Keystroke{
		Sym:     Sym(keyval),
		Mods:    mods &^ ModRelease,
		Release: release,
	}
}

// IsPrintable reports whether the symbol is a printable ASCII character.
// Only these reach the phonetic engine.
func (s Sym) IsPrintable() bool {
	return s >= Space && s <= AsciiTilde
}

// IsShift reports whether the symbol is a shift key.
func (s Sym) IsShift() bool {
	return s == ShiftL || s == ShiftR
}

// IsKeypadDigit reports whether the symbol is a numeric keypad digit.
func (s Sym) IsKeypadDigit() bool {
	return s >= KP0 && s <= KP9
}

// NormalizeKeypad folds keypad symbols onto their main-keyboard
// equivalents. Keypad digits matter because the VNI scheme uses digits
// as tone keys.
func (s Sym) NormalizeKeypad() Sym {
	switch {
	case s.IsKeypadDigit():
		return Sym('0') + (s - KP0)
	case s == KPEnter:
		return Return
	case s == KPMultiply:
		return Sym('*')
	case s == KPAdd:
		return Sym('+')
	case s == KPSubtract:
		return Sym('-')
	case s == KPDecimal:
		return Sym('.')
	case s == KPDivide:
		return Sym('/')
	}
	return s
}

// IsDigit reports whether the symbol is an ASCII digit.
func (s Sym) IsDigit() bool {
	return s >= '0' && s <= '9'
}

// IsNavigation reports whether the symbol moves the caret.
func (s Sym) IsNavigation() bool {
	switch s {
	case Left, Right, Up, Down, Home, End, PageUp, PageDown:
		return true
	}
	return false
}

// Rune returns the character a printable symbol produces, or 0.
func (s Sym) Rune() rune {
	if s.IsPrintable() {
		return rune(s)
	}
	return 0
}

// HasShift reports whether the shift modifier is held.
func (m Modifiers) HasShift() bool { return m&ModShift != 0 }

// HasCapsLock reports whether caps lock is latched.
func (m Modifiers) HasCapsLock() bool { return m&ModLock != 0 }

// HasControl reports whether the control modifier is held.
func (m Modifiers) HasControl() bool { return m&ModControl != 0 }

// HasAlt reports whether the alt modifier is held.
func (m Modifiers) HasAlt() bool { return m&ModAlt != 0 }

// HasSuper reports whether the super modifier is held.
func (m Modifiers) HasSuper() bool { return m&ModSuper != 0 }
