// Package composer implements the composition core: keystroke buffering
// in front of a phonetic engine, the choice between preedit and
// immediate commit, and the reconciliation that lets later keystrokes
// rewrite text the host has already received.
package composer

import (
	"unicode/utf8"

	"github.com/qduc/fcitx5-unikey/internal/config"
	"github.com/qduc/fcitx5-unikey/internal/keysym"
	"github.com/qduc/fcitx5-unikey/internal/logging"
	"github.com/qduc/fcitx5-unikey/internal/phoneng"
	"github.com/qduc/fcitx5-unikey/internal/quirks"
	"github.com/qduc/fcitx5-unikey/internal/reliability"
	"github.com/qduc/fcitx5-unikey/internal/shadow"
	"github.com/qduc/fcitx5-unikey/internal/surface"
	"github.com/qduc/fcitx5-unikey/internal/textutil"
)

// Options configures a Composer.
type Options struct {
	Engine  phoneng.Engine
	Surface surface.Surface
	Config  *config.Config
	Quirks  *quirks.Table
	Logger  *logging.Logger

	// OnPreedit is invoked whenever the pending composition changes,
	// including when it empties. Hosts use it to render the preedit.
	OnPreedit func(text string)
}

// Composer holds the composition state of one editing context. A new
// context (focus change, new input field) gets a new Composer; the
// struct is never shared between contexts.
type Composer struct {
	eng     phoneng.Engine
	sur     surface.Surface
	cfg     *config.Config
	table   *quirks.Table
	profile quirks.Profile
	log     *logging.Logger

	onPreedit func(string)

	preedit string
	keyLog  []keysym.Sym

	lastShift        keysym.Sym
	lastKeyWithShift bool

	lastWord    string
	lastWordLen int
	recordNext  bool
	staleSnap   bool

	rel     reliability.Tracker
	shadow  *shadow.Buffer
	maySeed bool
}

// New builds a Composer for the context behind the given surface.
func New(opts Options) *Composer {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	table := opts.Quirks
	if table == nil {
		table = quirks.NewTable()
	}
	for _, h := range cfg.Hosts {
		table.Override(h.Name, quirks.Profile{
			SupportsReliableSnapshot: h.TrustSnapshot,
			ForceShadowOnly:          h.ShadowOnly,
		})
	}
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}

	c := &Composer{
		eng:       opts.Engine,
		sur:       opts.Surface,
		cfg:       cfg,
		table:     table,
		log:       log.WithComponent("composer"),
		onPreedit: opts.OnPreedit,
		lastShift: keysym.None,
	}
	c.profile = table.Lookup(opts.Surface.HostIdentifier())
	if c.profile.ForceShadowOnly {
		c.shadow = shadow.New()
	}
	return c
}

// SetConfig swaps in a new configuration, for hot reload. Composition
// state survives; the next keystroke picks up the new settings.
func (c *Composer) SetConfig(cfg *config.Config) {
	c.cfg = cfg
	for _, h := range cfg.Hosts {
		c.table.Override(h.Name, quirks.Profile{
			SupportsReliableSnapshot: h.TrustSnapshot,
			ForceShadowOnly:          h.ShadowOnly,
		})
	}
	c.profile = c.table.Lookup(c.sur.HostIdentifier())
	if c.profile.ForceShadowOnly && c.shadow == nil {
		c.shadow = shadow.New()
	}
}

// Preedit returns the pending composition text.
func (c *Composer) Preedit() string { return c.preedit }

// Unreliable reports whether this context's snapshots are currently
// distrusted.
func (c *Composer) Unreliable() bool { return c.rel.Unreliable() }

// ShadowText exposes the internal text model, for hosts running in
// shadow-only mode.
func (c *Composer) ShadowText() string {
	if c.shadow == nil {
		return ""
	}
	return c.shadow.Text()
}

// FocusIn prepares the composer for a newly focused context.
func (c *Composer) FocusIn() {
	c.maySeed = true
	c.clearCommitHistory()
	if c.shadow != nil {
		c.adoptSnapshotIntoShadow()
	}
}

// FocusOut flushes the pending composition when the context loses
// focus.
func (c *Composer) FocusOut() {
	c.recordNext = false
	c.Commit()
	c.clearCommitHistory()
}

// Reset handles a host-initiated reset: the composition is dropped, not
// committed. Hosts send this when the caret moves behind our back.
func (c *Composer) Reset() {
	c.reset()
	c.maySeed = true
}

// Commit flushes the pending composition to the host.
func (c *Composer) Commit() {
	c.commit()
}

// ProcessKeystroke runs one keystroke through the composition core.
// The result reports whether the key was consumed; unconsumed keys pass
// through to the host unchanged.
func (c *Composer) ProcessKeystroke(ks keysym.Keystroke) bool {
	if ks.Release {
		// Releases never affect composition. The armed Shift+Shift
		// sequence must survive the release of the first shift.
		return false
	}

	sym := ks.Sym
	if sym.IsKeypadDigit() {
		sym = sym.NormalizeKeypad()
	}

	// Decide immediate commit before reconciliation: a keystroke that
	// trips the failure threshold should still behave the way it was
	// dispatched.
	allowImmediate := c.immediateCommitAllowed()

	// VNI tone keys are digits and never depend on the host snapshot:
	// with internal history available they may rewrite even while the
	// snapshot is distrusted.
	vniOverride := false
	if !allowImmediate && c.rel.Unreliable() && c.cfg.Commit.Immediate &&
		c.cfg.Input.Method == config.MethodVNI &&
		c.lastWord != "" && sym.IsDigit() {
		allowImmediate = true
		vniOverride = true
	}

	if c.isSimple(sym, ks.Mods) {
		c.seedFromSnapshot()
		c.reconcile(sym, vniOverride)
	}

	consumed := c.preeditKey(sym, ks.Mods, allowImmediate)

	if sym.IsPrintable() {
		c.lastKeyWithShift = ks.Mods.HasShift()
	} else {
		c.lastKeyWithShift = false
	}
	return consumed
}

func (c *Composer) isSimple(sym keysym.Sym, mods keysym.Modifiers) bool {
	return sym.IsPrintable() && !mods.HasControl() && !mods.HasAlt() && !mods.HasSuper()
}

// preeditKey routes one keystroke through the composition state. The
// flow follows a fixed order: shift gestures, ignored keys, backspace,
// then printable input.
func (c *Composer) preeditKey(sym keysym.Sym, mods keysym.Modifiers, allowImmediate bool) bool {
	// Shift+Shift restores the raw keystrokes of the current word.
	if sym.IsShift() {
		if len(c.keyLog) == 0 {
			c.lastShift = keysym.None
			return false
		}
		if c.lastShift == keysym.None {
			c.lastShift = sym
			return false
		}
		res := c.eng.RestoreKeystrokes()
		c.preedit = res.Output
		c.updatePreedit()
		c.lastShift = keysym.None
		return true
	}
	c.lastShift = keysym.None

	if mods.HasControl() || mods.HasAlt() ||
		sym == keysym.ControlL || sym == keysym.ControlR ||
		sym == keysym.Tab || sym == keysym.Return || sym == keysym.KPEnter ||
		sym == keysym.Delete ||
		(sym >= keysym.Home && sym <= keysym.Insert) {
		// Enter breaks the rewrite context; the last word must not be
		// rewritten across a line boundary.
		if sym == keysym.Return || sym == keysym.KPEnter {
			c.clearLastWord()
			c.recordNext = false
			c.staleSnap = false
		}
		if c.shadow != nil {
			return c.shadowControlKey(sym, mods)
		}
		c.flushIgnoredKey()
		return false
	}
	if mods.HasSuper() {
		return false
	}
	if sym >= keysym.CapsLock && sym <= keysym.HyperR {
		return false
	}

	if sym == keysym.BackSpace {
		return c.backspace()
	}

	if sym >= keysym.KPMultiply && sym <= keysym.KP9 {
		c.flushIgnoredKey()
		return false
	}

	if sym.IsPrintable() {
		return c.printableKey(sym, mods, allowImmediate)
	}

	c.flushIgnoredKey()
	return false
}

func (c *Composer) printableKey(sym keysym.Sym, mods keysym.Modifiers, allowImmediate bool) bool {
	c.eng.SetCapsState(mods.HasShift(), mods.HasCapsLock())

	// Telex quirk: with w-at-begin processing off, a leading w stays a
	// literal w but remains inside the composition. Mixing passed
	// through keys with composed ones would desynchronize the buffer.
	if (c.cfg.Input.Method == config.MethodTelex || c.cfg.Input.Method == config.MethodSimpleTelex) &&
		!c.cfg.Input.ProcessWAtBegin && c.eng.AtWordStart() &&
		(sym == 'w' || sym == 'W') {
		if err := c.eng.ReplayChar(rune(sym)); err != nil {
			c.log.Warn("replay leading w", "error", err)
		}
		c.keyLog = append(c.keyLog, sym)
		c.preedit += string(rune(sym))
		if allowImmediate {
			c.commitImmediate()
			return true
		}
		c.updatePreedit()
		return true
	}

	// Shift+Space restores the raw keystrokes and commits them with
	// the space appended.
	if !c.lastKeyWithShift && mods.HasShift() && sym == keysym.Space && !c.eng.AtWordStart() {
		res := c.eng.RestoreKeystrokes()
		c.preedit = res.Output + " "
		c.commit()
		return true
	}

	res := c.eng.Feed(sym)
	c.keyLog = append(c.keyLog, sym)
	c.applyResult(res, sym)

	if allowImmediate {
		c.commitImmediate()
		return true
	}

	// A word-break symbol that survived composition verbatim flushes
	// the word.
	if c.preedit != "" {
		if r := textutil.LastRune(c.preedit); r == rune(sym) && textutil.IsWordBreak(rune(sym)) {
			c.commit()
			return true
		}
	}

	c.updatePreedit()
	return true
}

// backspace handles BackSpace in both modes. In preedit mode it undoes
// whole characters by replaying the keystroke log; a tone key and the
// letter it modified disappear together.
func (c *Composer) backspace() bool {
	if c.immediateCommitAllowed() {
		if c.shadow != nil {
			// The host applies the backspace itself; mirror it. The
			// shadow decides selection handling here, never the host's
			// self-report: these hosts are shadow-only because their
			// reports cannot be trusted.
			c.shadow.Backspace()
			c.clearCommitHistory()
			c.reset()
			return false
		}

		c.sur.RefreshSnapshot()
		if snap := c.sur.CurrentSnapshot(); snap.HasSelection() {
			c.reset()
			return false
		}

		c.sur.DeleteAroundCursor(-1, 1)
		// An explicit deletion invalidates the rewrite history.
		c.clearLastWord()
		c.reset()
		return true
	}

	if len(c.keyLog) == 0 {
		c.commit()
		return false
	}

	currentLen := utf8.RuneCountInString(c.preedit)

	// Pop keystrokes until the visible length shrinks. Popping only
	// one key might just remove a tone, leaving the same number of
	// characters on screen.
	for len(c.keyLog) > 0 {
		c.keyLog = c.keyLog[:len(c.keyLog)-1]
		if currentLen == 0 {
			break
		}
		if utf8.RuneCountInString(c.replayLength()) < currentLen {
			break
		}
	}

	c.eng.Reset()
	c.preedit = ""
	for _, s := range c.keyLog {
		res := c.eng.Feed(s)
		c.applyResult(res, s)
	}

	if c.preedit == "" {
		c.commit()
		return true
	}
	c.updatePreedit()
	return true
}

// replayLength rebuilds the composed text for the current keystroke log
// without disturbing composer state, to measure its length.
func (c *Composer) replayLength() string {
	c.eng.Reset()
	var out string
	for _, s := range c.keyLog {
		res := c.eng.Feed(s)
		if res.Erase > 0 {
			out = textutil.TrimLastRunes(out, res.Erase)
		}
		if res.Output != "" {
			out += res.Output
		} else if s != keysym.None && !s.IsShift() {
			out += string(rune(s))
		}
	}
	return out
}

// applyResult folds one engine result into the pending composition.
func (c *Composer) applyResult(res phoneng.Result, sym keysym.Sym) {
	if res.Erase > 0 {
		c.preedit = textutil.TrimLastRunes(c.preedit, res.Erase)
	}
	if res.Output != "" {
		c.preedit += res.Output
	} else if sym != keysym.None && !sym.IsShift() {
		c.preedit += string(rune(sym))
	}
}

// flushIgnoredKey commits whatever is pending before a key the
// composition cannot absorb passes through to the host.
func (c *Composer) flushIgnoredKey() {
	res := c.eng.Feed(keysym.None)
	c.applyResult(res, keysym.None)
	c.recordNext = false
	c.commit()
}

// commitImmediate commits the composition in immediate mode, recording
// it as the rewrite source for the next keystroke.
func (c *Composer) commitImmediate() {
	c.recordNext = true
	c.commit()
}

// commit flushes the composition to the host and resets. When flagged,
// the committed word is recorded as the rewrite source, but only if it
// is a clean word: valid UTF-8, no break symbols inside.
func (c *Composer) commit() {
	if c.recordNext {
		c.recordNext = false
		candidate := textutil.TrimTrailingBreaks(c.preedit)
		if candidate != "" && utf8.ValidString(candidate) && !textutil.ContainsBreak(candidate) {
			c.lastWord = candidate
			c.lastWordLen = utf8.RuneCountInString(candidate)
		} else {
			c.clearLastWord()
		}
	}

	if c.preedit != "" {
		c.sur.Commit(c.preedit)
		if c.shadow != nil {
			c.shadow.Insert(c.preedit)
		}
	}
	c.reset()
}

// reset drops the composition state. Reliability tracking deliberately
// survives: hosts fire resets constantly and flapping the trust state
// on each one would make it meaningless.
func (c *Composer) reset() {
	c.eng.Reset()
	c.preedit = ""
	c.keyLog = c.keyLog[:0]
	c.lastShift = keysym.None
	c.updatePreedit()
}

// clearCommitHistory forgets everything tied to the previous context.
// Only focus changes call this: the new field deserves a fresh trust
// state.
func (c *Composer) clearCommitHistory() {
	c.clearLastWord()
	c.recordNext = false
	c.staleSnap = false
	c.rel.Reset()
}

func (c *Composer) clearLastWord() {
	c.lastWord = ""
	c.lastWordLen = 0
}

// immediateCommitAllowed decides whether this keystroke may commit
// directly to the document instead of composing in preedit.
func (c *Composer) immediateCommitAllowed() bool {
	if !c.cfg.Commit.Immediate {
		return false
	}
	if c.cfg.Input.OutputCharset != config.CharsetUnicode {
		return false
	}
	if !c.sur.SupportsDocumentEditing() {
		return false
	}
	if c.shadow != nil {
		// Shadow-only hosts bypass snapshot trust entirely.
		return true
	}
	if !c.profile.SupportsReliableSnapshot {
		return false
	}
	if c.rel.Unreliable() {
		return false
	}
	return true
}

func (c *Composer) updatePreedit() {
	if c.onPreedit != nil {
		c.onPreedit(c.preedit)
	}
}
