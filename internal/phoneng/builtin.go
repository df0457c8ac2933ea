package phoneng

import (
	"errors"
	"strings"
	"unicode"

	"github.com/qduc/fcitx5-unikey/internal/keysym"
	"github.com/qduc/fcitx5-unikey/internal/textutil"
	"github.com/qduc/fcitx5-unikey/internal/vnchar"
)

// ErrReplay reports a code point the engine cannot adopt as composed
// output.
var ErrReplay = errors.New("phoneng: unsupported replay character")

// Scheme selects the transliteration rules of the built-in engine.
type Scheme int

const (
	SchemeTelex Scheme = iota
	SchemeSimpleTelex
	SchemeVNI
	SchemeVIQR
)

// wordEngine is the built-in transliteration engine. It keeps exactly
// one word of state: the composed form and the raw keystrokes that
// produced it.
type wordEngine struct {
	scheme Scheme
	word   []rune
	keys   []rune
	shift  bool
	caps   bool
}

// NewEngine builds the built-in engine for the given scheme.
func NewEngine(scheme Scheme) Engine {
	return &wordEngine{scheme: scheme}
}

// SchemeForMethod maps a configured method name to its scheme. Unknown
// names fall back to telex.
func SchemeForMethod(method string) Scheme {
	switch method {
	case "vni":
		return SchemeVNI
	case "viqr":
		return SchemeVIQR
	case "simple-telex":
		return SchemeSimpleTelex
	default:
		return SchemeTelex
	}
}

func (e *wordEngine) Feed(sym keysym.Sym) Result {
	if sym == keysym.None {
		e.word = e.word[:0]
		e.keys = e.keys[:0]
		return Result{}
	}
	key := rune(sym)

	old := append([]rune(nil), e.word...)
	handled := e.apply(key)
	if !handled {
		e.word = append(e.word, key)
	}
	res := diff(old, e.word)

	if !handled && textutil.IsWordBreak(key) {
		e.word = e.word[:0]
		e.keys = e.keys[:0]
	} else {
		e.keys = append(e.keys, key)
	}
	return res
}

func (e *wordEngine) AtWordStart() bool { return len(e.word) == 0 }

func (e *wordEngine) Reset() {
	e.word = e.word[:0]
	e.keys = e.keys[:0]
}

func (e *wordEngine) ReplayChar(r rune) error {
	if !vnchar.IsRebuildable(r) {
		return ErrReplay
	}
	e.word = append(e.word, r)
	e.keys = append(e.keys, e.rawKeys(r)...)
	return nil
}

func (e *wordEngine) RestoreKeystrokes() Result {
	res := Result{Erase: len(e.word), Output: string(e.keys)}
	e.word = append(e.word[:0], e.keys...)
	return res
}

func (e *wordEngine) SetCapsState(shift, capsLock bool) {
	e.shift = shift
	e.caps = capsLock
}

// diff expresses the old-to-new word transition as an erase count plus
// appended text, against the longest common prefix.
func diff(old, new []rune) Result {
	p := 0
	for p < len(old) && p < len(new) && old[p] == new[p] {
		p++
	}
	return Result{Erase: len(old) - p, Output: string(new[p:])}
}

// apply runs one keystroke through the scheme's rules. It returns true
// when the key was absorbed as a mark; false means the key is a literal
// character.
func (e *wordEngine) apply(key rune) bool {
	switch e.scheme {
	case SchemeVNI:
		return e.applyVNI(key)
	case SchemeVIQR:
		return e.applyVIQR(key)
	default:
		return e.applyTelex(key)
	}
}

func (e *wordEngine) applyTelex(key rune) bool {
	switch unicode.ToLower(key) {
	case 's':
		return e.applyTone(key, vnchar.ToneAcute)
	case 'f':
		return e.applyTone(key, vnchar.ToneGrave)
	case 'r':
		return e.applyTone(key, vnchar.ToneHook)
	case 'x':
		return e.applyTone(key, vnchar.ToneTilde)
	case 'j':
		return e.applyTone(key, vnchar.ToneDot)
	case 'z':
		return e.clearTone()
	case 'a', 'e', 'o':
		return e.applyDouble(key)
	case 'w':
		return e.applyW(key)
	case 'd':
		return e.applyStrokeTail(key)
	}
	return false
}

func (e *wordEngine) applyVNI(key rune) bool {
	switch key {
	case '1':
		return e.applyTone(key, vnchar.ToneAcute)
	case '2':
		return e.applyTone(key, vnchar.ToneGrave)
	case '3':
		return e.applyTone(key, vnchar.ToneHook)
	case '4':
		return e.applyTone(key, vnchar.ToneTilde)
	case '5':
		return e.applyTone(key, vnchar.ToneDot)
	case '0':
		return e.clearTone()
	case '6':
		return e.applyShapeScan(key, vnchar.ShapeCircumflex, "aeo")
	case '7':
		return e.applyHornScan(key)
	case '8':
		return e.applyShapeScan(key, vnchar.ShapeBreve, "a")
	case '9':
		return e.applyStrokeHead(key)
	}
	return false
}

func (e *wordEngine) applyVIQR(key rune) bool {
	switch key {
	case '\'':
		return e.applyTone(key, vnchar.ToneAcute)
	case '`':
		return e.applyTone(key, vnchar.ToneGrave)
	case '?':
		return e.applyTone(key, vnchar.ToneHook)
	case '~':
		return e.applyTone(key, vnchar.ToneTilde)
	case '.':
		return e.applyTone(key, vnchar.ToneDot)
	case '^':
		return e.applyShapeScan(key, vnchar.ShapeCircumflex, "aeo")
	case '(':
		return e.applyShapeScan(key, vnchar.ShapeBreve, "a")
	case '+':
		return e.applyHornScan(key)
	case 'd', 'D':
		return e.applyStrokeTail(key)
	}
	return false
}

// applyTone places tone on the word's tone-bearing vowel. Pressing the
// key whose tone is already present removes the tone and leaves the key
// as a literal.
func (e *wordEngine) applyTone(key rune, tone vnchar.Tone) bool {
	idx := e.toneTarget()
	if idx < 0 {
		return false
	}

	current := vnchar.ToneNone
	for _, r := range e.word {
		if _, t := vnchar.SplitTone(r); t != vnchar.ToneNone {
			current = t
			break
		}
	}

	e.stripTones()
	if current == tone {
		e.word = append(e.word, key)
		return true
	}
	toned, ok := vnchar.WithTone(e.word[idx], tone)
	if !ok {
		return false
	}
	e.word[idx] = toned
	return true
}

func (e *wordEngine) clearTone() bool {
	for _, r := range e.word {
		if _, t := vnchar.SplitTone(r); t != vnchar.ToneNone {
			e.stripTones()
			return true
		}
	}
	return false
}

func (e *wordEngine) stripTones() {
	for i, r := range e.word {
		if base, t := vnchar.SplitTone(r); t != vnchar.ToneNone {
			e.word[i] = base
		}
	}
}

// toneTarget picks the vowel the tone mark lands on: within the last
// vowel cluster, a shaped vowel wins; a cluster closed by a consonant
// takes the mark on its last vowel; an open cluster of two or more on
// the penultimate. The u of qu- and the i of gi- count as part of the
// initial consonant.
func (e *wordEngine) toneTarget() int {
	end := -1
	for i := len(e.word) - 1; i >= 0; i-- {
		if vnchar.IsVowel(e.word[i]) {
			end = i
			break
		}
	}
	if end < 0 {
		return -1
	}
	start := end
	for start > 0 && vnchar.IsVowel(e.word[start-1]) {
		start--
	}

	if start < end && start > 0 {
		lead := unicode.ToLower(vnchar.Plain(e.word[start]))
		prev := unicode.ToLower(vnchar.Plain(e.word[start-1]))
		if (lead == 'u' && prev == 'q') || (lead == 'i' && prev == 'g') {
			start++
		}
	}

	for i := end; i >= start; i-- {
		if _, ok := vnchar.ShapeOf(e.word[i]); ok {
			return i
		}
	}
	if end < len(e.word)-1 {
		return end
	}
	if end == start {
		return end
	}
	return end - 1
}

// applyDouble handles the telex vowel doubling (aa, ee, oo). A doubled
// key on an already circumflexed letter reverts it.
func (e *wordEngine) applyDouble(key rune) bool {
	n := len(e.word)
	if n == 0 {
		return false
	}
	last := e.word[n-1]
	lower := unicode.ToLower(key)

	base, _ := vnchar.SplitTone(last)
	if unicode.ToLower(base) == lower {
		if shaped, ok := vnchar.WithShape(last, vnchar.ShapeCircumflex); ok {
			e.word[n-1] = shaped
			return true
		}
	}
	if sh, ok := vnchar.ShapeOf(last); ok && sh == vnchar.ShapeCircumflex &&
		unicode.ToLower(vnchar.Plain(last)) == lower {
		e.word[n-1] = vnchar.StripShape(last)
		e.word = append(e.word, key)
		return true
	}
	return false
}

// applyW handles the telex w: horn on o/u, breve on a, the uo pair
// horned together, and in full telex a standalone w composing to ư.
func (e *wordEngine) applyW(key rune) bool {
	n := len(e.word)
	if n > 0 {
		last := e.word[n-1]
		if sh, ok := vnchar.ShapeOf(last); ok && (sh == vnchar.ShapeHorn || sh == vnchar.ShapeBreve) {
			e.word[n-1] = vnchar.StripShape(last)
			e.word = append(e.word, key)
			return true
		}
		if n >= 2 &&
			unicode.ToLower(vnchar.Plain(e.word[n-2])) == 'u' &&
			unicode.ToLower(vnchar.Plain(e.word[n-1])) == 'o' {
			if h, ok := vnchar.WithShape(e.word[n-2], vnchar.ShapeHorn); ok {
				e.word[n-2] = h
			}
			if h, ok := vnchar.WithShape(e.word[n-1], vnchar.ShapeHorn); ok {
				e.word[n-1] = h
			}
			return true
		}
		base, _ := vnchar.SplitTone(last)
		switch unicode.ToLower(base) {
		case 'a':
			if h, ok := vnchar.WithShape(last, vnchar.ShapeBreve); ok {
				e.word[n-1] = h
				return true
			}
		case 'o', 'u':
			if h, ok := vnchar.WithShape(last, vnchar.ShapeHorn); ok {
				e.word[n-1] = h
				return true
			}
		}
	}
	if e.scheme == SchemeTelex {
		u := 'ư'
		if unicode.IsUpper(key) {
			u = 'Ư'
		}
		e.word = append(e.word, u)
		return true
	}
	return false
}

// applyStrokeTail handles dd on the last letter (telex, VIQR).
func (e *wordEngine) applyStrokeTail(key rune) bool {
	n := len(e.word)
	if n == 0 {
		return false
	}
	last := e.word[n-1]
	if shaped, ok := vnchar.WithShape(last, vnchar.ShapeStroke); ok && shaped != last {
		e.word[n-1] = shaped
		return true
	}
	if sh, ok := vnchar.ShapeOf(last); ok && sh == vnchar.ShapeStroke {
		e.word[n-1] = vnchar.StripShape(last)
		e.word = append(e.word, key)
		return true
	}
	return false
}

// applyStrokeHead handles the VNI 9, which strokes the word-initial d.
func (e *wordEngine) applyStrokeHead(key rune) bool {
	if len(e.word) == 0 {
		return false
	}
	first := e.word[0]
	if shaped, ok := vnchar.WithShape(first, vnchar.ShapeStroke); ok && shaped != first {
		e.word[0] = shaped
		return true
	}
	if sh, ok := vnchar.ShapeOf(first); ok && sh == vnchar.ShapeStroke {
		e.word[0] = vnchar.StripShape(first)
		e.word = append(e.word, key)
		return true
	}
	return false
}

// applyShapeScan places shape on the rightmost letter whose plain form
// is in bases, scanning the whole word so the mark key may come after
// trailing consonants.
func (e *wordEngine) applyShapeScan(key rune, shape vnchar.Shape, bases string) bool {
	for i := len(e.word) - 1; i >= 0; i-- {
		r := e.word[i]
		if !strings.ContainsRune(bases, unicode.ToLower(vnchar.Plain(r))) {
			continue
		}
		if sh, ok := vnchar.ShapeOf(r); ok {
			if sh == shape {
				e.word[i] = vnchar.StripShape(r)
				e.word = append(e.word, key)
				return true
			}
			continue
		}
		if shaped, ok := vnchar.WithShape(r, shape); ok {
			e.word[i] = shaped
			return true
		}
	}
	return false
}

// applyHornScan places horn on the rightmost o/u, horning a uo pair
// together.
func (e *wordEngine) applyHornScan(key rune) bool {
	for i := len(e.word) - 1; i >= 0; i-- {
		r := e.word[i]
		pl := unicode.ToLower(vnchar.Plain(r))
		if pl != 'o' && pl != 'u' {
			continue
		}
		if sh, ok := vnchar.ShapeOf(r); ok {
			if sh == vnchar.ShapeHorn {
				e.word[i] = vnchar.StripShape(r)
				e.word = append(e.word, key)
				return true
			}
			continue
		}
		if pl == 'o' && i > 0 && unicode.ToLower(vnchar.Plain(e.word[i-1])) == 'u' {
			if h, ok := vnchar.WithShape(e.word[i-1], vnchar.ShapeHorn); ok {
				e.word[i-1] = h
			}
		}
		if h, ok := vnchar.WithShape(r, vnchar.ShapeHorn); ok {
			e.word[i] = h
			return true
		}
		return false
	}
	return false
}

// rawKeys synthesizes the keystrokes that would produce r under the
// current scheme, for text adopted from the document.
func (e *wordEngine) rawKeys(r rune) []rune {
	if r < 0x80 {
		return []rune{r}
	}
	base, tone := vnchar.SplitTone(r)
	plain := vnchar.Plain(r)
	out := []rune{plain}
	if sh, ok := vnchar.ShapeOf(base); ok {
		out = append(out, e.shapeKeys(sh, plain)...)
	}
	if tone != vnchar.ToneNone {
		out = append(out, e.toneKey(tone))
	}
	return out
}

func (e *wordEngine) shapeKeys(sh vnchar.Shape, plain rune) []rune {
	switch e.scheme {
	case SchemeVNI:
		switch sh {
		case vnchar.ShapeCircumflex:
			return []rune{'6'}
		case vnchar.ShapeBreve:
			return []rune{'8'}
		case vnchar.ShapeHorn:
			return []rune{'7'}
		case vnchar.ShapeStroke:
			return []rune{'9'}
		}
	case SchemeVIQR:
		switch sh {
		case vnchar.ShapeCircumflex:
			return []rune{'^'}
		case vnchar.ShapeBreve:
			return []rune{'('}
		case vnchar.ShapeHorn:
			return []rune{'+'}
		case vnchar.ShapeStroke:
			return []rune{'d'}
		}
	default:
		switch sh {
		case vnchar.ShapeCircumflex:
			return []rune{unicode.ToLower(plain)}
		case vnchar.ShapeBreve, vnchar.ShapeHorn:
			return []rune{'w'}
		case vnchar.ShapeStroke:
			return []rune{'d'}
		}
	}
	return nil
}

func (e *wordEngine) toneKey(tone vnchar.Tone) rune {
	var keys string
	switch e.scheme {
	case SchemeVNI:
		keys = "12345"
	case SchemeVIQR:
		keys = "'`?~."
	default:
		keys = "sfrxj"
	}
	return []rune(keys)[tone]
}
