// Package shadow implements the composer's own model of the document:
// text, caret, and selection, maintained purely from the keystrokes and
// commits that flowed through the input method. It exists for hosts
// whose self-reported snapshots cannot be trusted, so every operation
// must mirror what the host's editor does with the same key.
package shadow

import "github.com/qduc/fcitx5-unikey/internal/textutil"

// Buffer is the mirrored document state. Indices are code points, not
// bytes. anchor is -1 when no selection exists; when a selection is
// active the caret is one end and the anchor the other, in either
// order.
type Buffer struct {
	text   []rune
	cursor int
	anchor int
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{anchor: -1}
}

// Text returns the buffered document text.
func (b *Buffer) Text() string { return string(b.text) }

// Len returns the document length in code points.
func (b *Buffer) Len() int { return len(b.text) }

// Cursor returns the caret position.
func (b *Buffer) Cursor() int { return b.cursor }

// HasSelection reports whether a non-empty selection is active.
func (b *Buffer) HasSelection() bool {
	return b.anchor >= 0 && b.anchor != b.cursor
}

// Selection returns the active selection bounds in document order. ok
// is false when nothing is selected.
func (b *Buffer) Selection() (start, end int, ok bool) {
	if !b.HasSelection() {
		return 0, 0, false
	}
	if b.anchor < b.cursor {
		return b.anchor, b.cursor, true
	}
	return b.cursor, b.anchor, true
}

// SelectedText returns the selected text, or "".
func (b *Buffer) SelectedText() string {
	start, end, ok := b.Selection()
	if !ok {
		return ""
	}
	return string(b.text[start:end])
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.text = b.text[:0]
	b.cursor = 0
	b.anchor = -1
}

// SetText replaces the whole buffer, placing the caret at the end.
// Used when adopting a trusted host snapshot.
func (b *Buffer) SetText(text string, cursor int) {
	b.text = []rune(text)
	b.cursor = clamp(cursor, 0, len(b.text))
	b.anchor = -1
}

// Insert places s at the caret. An active selection is replaced, the
// way every editor treats typing over a selection.
func (b *Buffer) Insert(s string) {
	b.deleteSelection()
	ins := []rune(s)
	b.text = append(b.text[:b.cursor], append(ins, b.text[b.cursor:]...)...)
	b.cursor += len(ins)
}

// Backspace removes the selection if one is active, otherwise the code
// point before the caret. Reports whether anything was removed.
func (b *Buffer) Backspace() bool {
	if b.deleteSelection() {
		return true
	}
	if b.cursor == 0 {
		return false
	}
	b.text = append(b.text[:b.cursor-1], b.text[b.cursor:]...)
	b.cursor--
	return true
}

// DeleteForward removes the selection if one is active, otherwise the
// code point at the caret. Reports whether anything was removed.
func (b *Buffer) DeleteForward() bool {
	if b.deleteSelection() {
		return true
	}
	if b.cursor >= len(b.text) {
		return false
	}
	b.text = append(b.text[:b.cursor], b.text[b.cursor+1:]...)
	return true
}

// DeleteBeforeCursor removes up to n code points before the caret.
// Returns the number actually removed.
func (b *Buffer) DeleteBeforeCursor(n int) int {
	if n > b.cursor {
		n = b.cursor
	}
	if n <= 0 {
		return 0
	}
	b.text = append(b.text[:b.cursor-n], b.text[b.cursor:]...)
	b.cursor -= n
	b.anchor = -1
	return n
}

// MoveLeft moves the caret one code point left. With extend it grows or
// shrinks the selection; without, an active selection collapses to its
// left edge.
func (b *Buffer) MoveLeft(extend bool) {
	if !extend {
		if start, _, ok := b.Selection(); ok {
			b.cursor = start
			b.anchor = -1
			return
		}
		b.anchor = -1
		if b.cursor > 0 {
			b.cursor--
		}
		return
	}
	b.armAnchor()
	if b.cursor > 0 {
		b.cursor--
	}
}

// MoveRight is the mirror of MoveLeft.
func (b *Buffer) MoveRight(extend bool) {
	if !extend {
		if _, end, ok := b.Selection(); ok {
			b.cursor = end
			b.anchor = -1
			return
		}
		b.anchor = -1
		if b.cursor < len(b.text) {
			b.cursor++
		}
		return
	}
	b.armAnchor()
	if b.cursor < len(b.text) {
		b.cursor++
	}
}

// MoveWordLeft moves the caret to the start of the previous word: back
// over any separators, then over the word itself.
func (b *Buffer) MoveWordLeft(extend bool) {
	b.beginMove(extend)
	for b.cursor > 0 && !textutil.IsWordChar(b.text[b.cursor-1]) {
		b.cursor--
	}
	for b.cursor > 0 && textutil.IsWordChar(b.text[b.cursor-1]) {
		b.cursor--
	}
}

// MoveWordRight moves the caret to the end of the next word: forward
// over any separators, then over the word itself.
func (b *Buffer) MoveWordRight(extend bool) {
	b.beginMove(extend)
	for b.cursor < len(b.text) && !textutil.IsWordChar(b.text[b.cursor]) {
		b.cursor++
	}
	for b.cursor < len(b.text) && textutil.IsWordChar(b.text[b.cursor]) {
		b.cursor++
	}
}

// MoveToStart moves the caret to the beginning of the buffer.
func (b *Buffer) MoveToStart(extend bool) {
	b.beginMove(extend)
	b.cursor = 0
}

// MoveToEnd moves the caret to the end of the buffer.
func (b *Buffer) MoveToEnd(extend bool) {
	b.beginMove(extend)
	b.cursor = len(b.text)
}

// SelectAll selects the whole buffer, caret at the end.
func (b *Buffer) SelectAll() {
	b.anchor = 0
	b.cursor = len(b.text)
}

// DeleteWordBefore removes from the caret back to the start of the
// previous word. Reports whether anything was removed.
func (b *Buffer) DeleteWordBefore() bool {
	if b.deleteSelection() {
		return true
	}
	end := b.cursor
	b.MoveWordLeft(false)
	if b.cursor == end {
		return false
	}
	b.text = append(b.text[:b.cursor], b.text[end:]...)
	return true
}

// DeleteWordAfter removes from the caret forward to the end of the next
// word. Reports whether anything was removed.
func (b *Buffer) DeleteWordAfter() bool {
	if b.deleteSelection() {
		return true
	}
	start := b.cursor
	b.MoveWordRight(false)
	if b.cursor == start {
		return false
	}
	b.text = append(b.text[:start], b.text[b.cursor:]...)
	b.cursor = start
	return true
}

// RunesBefore returns up to n code points immediately before the caret.
func (b *Buffer) RunesBefore(n int) []rune {
	start := b.cursor - n
	if start < 0 {
		start = 0
	}
	out := make([]rune, b.cursor-start)
	copy(out, b.text[start:b.cursor])
	return out
}

func (b *Buffer) armAnchor() {
	if b.anchor < 0 {
		b.anchor = b.cursor
	}
}

func (b *Buffer) beginMove(extend bool) {
	if extend {
		b.armAnchor()
	} else {
		b.anchor = -1
	}
}

func (b *Buffer) deleteSelection() bool {
	start, end, ok := b.Selection()
	if !ok {
		b.anchor = -1
		return false
	}
	b.text = append(b.text[:start], b.text[end:]...)
	b.cursor = start
	b.anchor = -1
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
