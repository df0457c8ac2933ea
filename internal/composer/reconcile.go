package composer

import (
	"strings"
	"unicode/utf8"

	"github.com/qduc/fcitx5-unikey/internal/config"
	"github.com/qduc/fcitx5-unikey/internal/keysym"
	"github.com/qduc/fcitx5-unikey/internal/textutil"
	"github.com/qduc/fcitx5-unikey/internal/vnchar"
)

// reconcile runs before a simple keystroke is composed. If the engine
// sits at a word boundary, the word already committed before the caret
// is adopted back into composition so the new keystroke can transform
// it. Sources, in order of preference: the host's self-report, then the
// internally recorded last word when the self-report is stale.
func (c *Composer) reconcile(upcoming keysym.Sym, vniOverride bool) {
	if !c.cfg.Commit.Immediate && !c.cfg.Commit.ModifySurrounding {
		return
	}
	if c.cfg.Input.OutputCharset != config.CharsetUnicode {
		return
	}
	if !c.eng.AtWordStart() {
		return
	}
	if !c.sur.SupportsDocumentEditing() {
		return
	}

	if c.shadow != nil {
		c.reconcileFromShadow()
		return
	}
	if !c.profile.SupportsReliableSnapshot {
		return
	}

	if c.rel.Unreliable() {
		if vniOverride {
			// Digits never depend on the snapshot; the internal
			// history is enough to rewrite safely.
			if n := c.rebuildFromLastWord(true); n > 0 {
				c.log.Debug("reconcile: rebuilt from history under distrust",
					"chars", n, "upcoming", uint32(upcoming))
				c.updatePreedit()
			}
			return
		}
		// Probe only: read the snapshot to detect recovery, never
		// touch the document.
		c.sur.RefreshSnapshot()
		ok := c.probeSpan() > 0
		if c.rel.RecordProbe(ok) {
			c.log.Debug("reconcile: snapshot trust recovered")
		}
		return
	}

	n := c.rebuildFromSnapshot(true)
	if n > 0 {
		c.rel.RecordSuccess()
		c.log.Debug("reconcile: rebuilt from snapshot", "chars", n)
		c.updatePreedit()
		return
	}

	if !c.staleSnap {
		return
	}

	if c.lastWord != "" {
		if n := c.rebuildFromLastWord(true); n > 0 {
			// The fallback worked, but the snapshot was still stale;
			// that counts against the host.
			if c.rel.RecordFailure() {
				c.log.Info("reconcile: snapshot marked unreliable", "host", c.sur.HostIdentifier())
			}
			c.log.Debug("reconcile: rebuilt from last word", "chars", n)
			c.updatePreedit()
			return
		}
	}

	if c.rel.RecordFailure() {
		c.log.Info("reconcile: snapshot marked unreliable", "host", c.sur.HostIdentifier())
	}
}

// rebuildFromSnapshot adopts the word before the caret from the host's
// self-report into the engine. Returns the span length in code points,
// or 0 when nothing was adopted. Defective snapshots — stale ones
// contradicting the recorded last commit, invalid ones, cursors out of
// range — are flagged on c.staleSnap rather than returned: the caller
// decides whether the failure counts.
func (c *Composer) rebuildFromSnapshot(deleteSpan bool) int {
	c.staleSnap = false

	c.sur.RefreshSnapshot()
	snap := c.sur.CurrentSnapshot()

	// A selection would be replaced by the host on commit; rewriting
	// around it corrupts text. Not a host defect, so no flag.
	if snap.HasSelection() {
		return 0
	}
	// A host that cannot produce a usable snapshot counts like one that
	// produced a stale one: repeat offenders must lose trust.
	if !snap.Valid {
		c.staleSnap = true
		return 0
	}
	if !utf8.ValidString(snap.Text) {
		c.log.Debug("rebuild: snapshot text not valid UTF-8")
		c.staleSnap = true
		return 0
	}

	if deleteSpan && c.lastWord != "" && snap.Text == "" {
		// We just committed a word and the host reports an empty
		// document: the snapshot lags behind the commit.
		c.log.Debug("rebuild: empty snapshot while history exists", "lastWord", c.lastWord)
		c.staleSnap = true
		return 0
	}

	runes := []rune(snap.Text)
	if snap.Cursor < 0 || snap.Cursor > len(runes) {
		c.log.Debug("rebuild: snapshot cursor out of range",
			"cursor", snap.Cursor, "len", len(runes))
		c.staleSnap = true
		return 0
	}

	span := c.spanBeforeCursor(runes, snap.Cursor)
	n := len(span)
	if n == 0 || n > c.cfg.Commit.MaxWordLength {
		return 0
	}
	word := string(span)

	if deleteSpan && c.lastWord != "" && word != c.lastWord {
		// A snapshot showing a truncated version of the recorded word
		// is the signature of a lagging host. Deleting based on it
		// would delete too little.
		truncated := len(c.lastWord) > len(word) &&
			(strings.HasPrefix(c.lastWord, word) || strings.HasSuffix(c.lastWord, word))
		if truncated {
			c.log.Debug("rebuild: snapshot looks truncated", "got", word, "lastWord", c.lastWord)
			c.staleSnap = true
			return 0
		}
		// A longer snapshot ending with the recorded word carries
		// extra context and wins; anything else means the caret moved
		// and the snapshot is authoritative.
	}

	c.replaySpan(span)
	if deleteSpan {
		c.sur.DeleteAroundCursor(-n, n)
	}
	return n
}

// rebuildFromLastWord adopts the internally recorded last commit,
// ignoring the snapshot entirely.
func (c *Composer) rebuildFromLastWord(deleteSpan bool) int {
	if c.lastWord == "" || c.lastWordLen == 0 || c.lastWordLen > c.cfg.Commit.MaxWordLength {
		return 0
	}
	if !utf8.ValidString(c.lastWord) {
		return 0
	}
	span := []rune(c.lastWord)
	for _, r := range span {
		if !vnchar.IsRebuildable(r) {
			return 0
		}
	}

	c.replaySpan(span)
	if deleteSpan {
		c.sur.DeleteAroundCursor(-c.lastWordLen, c.lastWordLen)
	}
	return len(span)
}

// probeSpan measures the rewritable span before the caret without
// touching any state. Used to detect recovery while the snapshot is
// distrusted.
func (c *Composer) probeSpan() int {
	snap := c.sur.CurrentSnapshot()
	if !snap.Valid || snap.HasSelection() {
		return 0
	}
	runes := []rune(snap.Text)
	if snap.Cursor < 0 || snap.Cursor > len(runes) {
		return 0
	}
	n := len(c.spanBeforeCursor(runes, snap.Cursor))
	if n == 0 || n > c.cfg.Commit.MaxWordLength {
		return 0
	}
	return n
}

// spanBeforeCursor collects the trailing contiguous run of rewritable
// code points before cursor, looking back at most MaxWordLength+1
// characters. A non-rewritable character resets the run.
func (c *Composer) spanBeforeCursor(runes []rune, cursor int) []rune {
	start := 0
	if cursor > c.cfg.Commit.MaxWordLength {
		start = cursor - c.cfg.Commit.MaxWordLength - 1
	}

	segStart := start
	for i := start; i < cursor; i++ {
		if !vnchar.IsRebuildable(runes[i]) {
			segStart = i + 1
		}
	}
	return runes[segStart:cursor]
}

// replaySpan resets the engine and composition, then seeds both with an
// already-committed span. ASCII goes through the engine's normal
// filtering so sequences it recognizes keep working; composed letters
// are replayed directly.
func (c *Composer) replaySpan(span []rune) {
	c.eng.Reset()
	c.preedit = ""
	for _, r := range span {
		if r < 0x80 {
			res := c.eng.Feed(keysym.Sym(r))
			c.applyResult(res, keysym.Sym(r))
		} else {
			if err := c.eng.ReplayChar(r); err != nil {
				c.log.Warn("replay composed char", "error", err)
				continue
			}
			c.preedit += string(r)
		}
	}
}

// seedFromSnapshot runs in preedit mode at a word boundary: when the
// characters just before the caret are engine-neutral consonants typed
// before the input method was active, they are fed to the engine so a
// later tone key can still land on the word. Read-only with respect to
// the document.
func (c *Composer) seedFromSnapshot() {
	if !c.maySeed {
		return
	}
	c.maySeed = false

	if c.cfg.Commit.ModifySurrounding || c.cfg.Commit.Immediate {
		// The rewrite paths own boundary handling in those modes.
		return
	}
	if c.cfg.Input.OutputCharset != config.CharsetUnicode {
		return
	}
	if c.shadow != nil || !c.profile.SupportsReliableSnapshot {
		return
	}
	if !c.eng.AtWordStart() {
		return
	}

	snap := c.sur.CurrentSnapshot()
	if !snap.Valid || snap.HasSelection() {
		return
	}
	runes := []rune(snap.Text)
	cursor := snap.Cursor
	if cursor <= 0 || cursor > len(runes) {
		return
	}

	seedable := func(r rune) bool {
		return textutil.IsAutoCommitASCII(r) && !(r >= '0' && r <= '9')
	}

	if !seedable(runes[cursor-1]) {
		return
	}

	start := cursor - 1
	for start > 0 && seedable(runes[start-1]) && cursor-start < c.cfg.Commit.MaxWordLength {
		start--
	}

	// If the run continues into a Vietnamese letter we are mid-word;
	// seeding a fragment would misplace tones.
	if start > 0 && vnchar.IsLetter(runes[start-1]) {
		return
	}

	for _, r := range runes[start:cursor] {
		if err := c.eng.ReplayChar(r); err != nil {
			c.log.Warn("seed from snapshot", "error", err)
			return
		}
	}
	c.log.Debug("seeded engine from snapshot", "chars", cursor-start)
}
