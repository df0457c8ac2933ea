package composer

import "github.com/qduc/fcitx5-unikey/internal/keysym"

// Shadow-only mode: some hosts report surrounding text that lags or
// lies, so the composer keeps its own model of the text around the
// caret and never consults the host's self-report. The model is fed by
// our own commits and by mirroring the editing keys we let through.

// reconcileFromShadow adopts the word before the caret back into
// composition, using the shadow buffer as the source of truth. The span
// is removed from both the host document and the shadow; the commit
// that follows re-inserts the rewritten form into both.
func (c *Composer) reconcileFromShadow() {
	if c.shadow.HasSelection() {
		return
	}

	look := c.shadow.RunesBefore(c.cfg.Commit.MaxWordLength + 1)
	span := c.spanBeforeCursor(look, len(look))
	n := len(span)
	if n == 0 || n > c.cfg.Commit.MaxWordLength {
		return
	}

	c.replaySpan(span)
	c.sur.DeleteAroundCursor(-n, n)
	c.shadow.DeleteBeforeCursor(n)
	c.updatePreedit()
}

// shadowControlKey mirrors an editing or navigation key onto the shadow
// buffer and lets it pass through to the host. Keys the flat model
// cannot follow (vertical movement, anything unrecognized) drop the
// model instead of guessing; an empty shadow just means no rewriting
// until new text is typed.
func (c *Composer) shadowControlKey(sym keysym.Sym, mods keysym.Modifiers) bool {
	c.flushIgnoredKey()

	extend := mods.HasShift()
	word := mods.HasControl()

	switch sym {
	case keysym.Left:
		if word {
			c.shadow.MoveWordLeft(extend)
		} else {
			c.shadow.MoveLeft(extend)
		}
	case keysym.Right:
		if word {
			c.shadow.MoveWordRight(extend)
		} else {
			c.shadow.MoveRight(extend)
		}
	case keysym.Home:
		c.shadow.MoveToStart(extend)
	case keysym.End:
		c.shadow.MoveToEnd(extend)
	case keysym.Delete:
		if word {
			c.shadow.DeleteWordAfter()
		} else {
			c.shadow.DeleteForward()
		}
		c.clearLastWord()
	case keysym.BackSpace:
		if word {
			c.shadow.DeleteWordBefore()
		} else {
			c.shadow.Backspace()
		}
		c.clearLastWord()
	case keysym.Return, keysym.KPEnter:
		c.shadow.Insert("\n")
	case keysym.Tab:
		c.shadow.Insert("\t")
	case 'a', 'A':
		if mods.HasControl() {
			c.shadow.SelectAll()
		} else {
			c.shadow.Reset()
		}
	default:
		c.shadow.Reset()
	}
	return false
}

// adoptSnapshotIntoShadow seeds the shadow from the host's self-report.
// Shadow-only hosts cannot be trusted mid-stream, but at focus time the
// snapshot is the only starting point available.
func (c *Composer) adoptSnapshotIntoShadow() {
	c.sur.RefreshSnapshot()
	snap := c.sur.CurrentSnapshot()
	if snap.Valid && !snap.HasSelection() {
		runes := []rune(snap.Text)
		if snap.Cursor >= 0 && snap.Cursor <= len(runes) {
			c.shadow.SetText(snap.Text, snap.Cursor)
			return
		}
	}
	c.shadow.Reset()
}
