// Package phoneng defines the contract between the composer and a
// phonetic transliteration engine. The engine is an opaque collaborator:
// it owns the keystroke-to-text rules, the composer owns buffering,
// commit policy, and document reconciliation.
package phoneng

import "github.com/qduc/fcitx5-unikey/internal/keysym"

// Result is the engine's answer to one keystroke: erase that many code
// points from the tail of the pending text, then append Output.
type Result struct {
	Erase  int
	Output string
}

// Engine transforms a keystroke sequence into composed text. All methods
// operate on the engine's current-word state; none of them touch the
// document.
type Engine interface {
	// Feed processes one printable keystroke. A zero symbol flushes
	// whatever the engine holds back without adding input.
	Feed(sym keysym.Sym) Result

	// AtWordStart reports whether the engine considers itself at the
	// beginning of a word.
	AtWordStart() bool

	// Reset discards the current word state.
	Reset()

	// ReplayChar seeds the engine with an already-composed code point,
	// as if the engine itself had produced it. Used when adopting
	// committed document text back into composition.
	ReplayChar(r rune) error

	// RestoreKeystrokes converts the current word back to the raw
	// keystrokes that produced it.
	RestoreKeystrokes() Result

	// SetCapsState tells the engine the shift and caps-lock state for
	// the next keystroke.
	SetCapsState(shift, capsLock bool)
}
