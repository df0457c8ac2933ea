// Package vnchar knows the precomposed Vietnamese alphabet: which code
// points belong to it, and how tones and diacritic shapes map onto base
// letters. The composer uses the recognition side when deciding what
// committed text it may rewrite; phonetic engines use the composition
// side.
package vnchar

import "github.com/qduc/fcitx5-unikey/internal/textutil"

// Tone indexes the five Vietnamese tone marks.
type Tone int

const (
	ToneNone  Tone = iota - 1
	ToneAcute      // sắc
	ToneGrave      // huyền
	ToneHook       // hỏi
	ToneTilde      // ngã
	ToneDot        // nặng
)

// Shape is a base-letter diacritic.
type Shape int

const (
	ShapeCircumflex Shape = iota // â ê ô
	ShapeBreve                   // ă
	ShapeHorn                    // ơ ư
	ShapeStroke                  // đ
)

// tones maps each toneless vowel shape to its five toned forms, in Tone
// order.
var tones = map[rune][5]rune{
	'a': {'á', 'à', 'ả', 'ã', 'ạ'},
	'ă': {'ắ', 'ằ', 'ẳ', 'ẵ', 'ặ'},
	'â': {'ấ', 'ầ', 'ẩ', 'ẫ', 'ậ'},
	'e': {'é', 'è', 'ẻ', 'ẽ', 'ẹ'},
	'ê': {'ế', 'ề', 'ể', 'ễ', 'ệ'},
	'i': {'í', 'ì', 'ỉ', 'ĩ', 'ị'},
	'o': {'ó', 'ò', 'ỏ', 'õ', 'ọ'},
	'ô': {'ố', 'ồ', 'ổ', 'ỗ', 'ộ'},
	'ơ': {'ớ', 'ờ', 'ở', 'ỡ', 'ợ'},
	'u': {'ú', 'ù', 'ủ', 'ũ', 'ụ'},
	'ư': {'ứ', 'ừ', 'ử', 'ữ', 'ự'},
	'y': {'ý', 'ỳ', 'ỷ', 'ỹ', 'ỵ'},
	'A': {'Á', 'À', 'Ả', 'Ã', 'Ạ'},
	'Ă': {'Ắ', 'Ằ', 'Ẳ', 'Ẵ', 'Ặ'},
	'Â': {'Ấ', 'Ầ', 'Ẩ', 'Ẫ', 'Ậ'},
	'E': {'É', 'È', 'Ẻ', 'Ẽ', 'Ẹ'},
	'Ê': {'Ế', 'Ề', 'Ể', 'Ễ', 'Ệ'},
	'I': {'Í', 'Ì', 'Ỉ', 'Ĩ', 'Ị'},
	'O': {'Ó', 'Ò', 'Ỏ', 'Õ', 'Ọ'},
	'Ô': {'Ố', 'Ồ', 'Ổ', 'Ỗ', 'Ộ'},
	'Ơ': {'Ớ', 'Ờ', 'Ở', 'Ỡ', 'Ợ'},
	'U': {'Ú', 'Ù', 'Ủ', 'Ũ', 'Ụ'},
	'Ư': {'Ứ', 'Ừ', 'Ử', 'Ữ', 'Ự'},
	'Y': {'Ý', 'Ỳ', 'Ỷ', 'Ỹ', 'Ỵ'},
}

// shapes maps plain base letters to their shaped forms.
var shapes = map[Shape]map[rune]rune{
	ShapeCircumflex: {'a': 'â', 'e': 'ê', 'o': 'ô', 'A': 'Â', 'E': 'Ê', 'O': 'Ô'},
	ShapeBreve:      {'a': 'ă', 'A': 'Ă'},
	ShapeHorn:       {'o': 'ơ', 'u': 'ư', 'O': 'Ơ', 'U': 'Ư'},
	ShapeStroke:     {'d': 'đ', 'D': 'Đ'},
}

// toneless reverses tones: toned rune to its shape base and tone.
var toneless = map[rune]struct {
	base rune
	tone Tone
}{}

// unshaped reverses shapes: shaped base to its plain letter.
var unshaped = map[rune]rune{}

// shapeOf indexes shaped bases by the shape they carry.
var shapeOf = map[rune]Shape{}

// letters holds every non-ASCII rune of the precomposed alphabet.
var letters = map[rune]bool{}

func init() {
	for base, toned := range tones {
		if base >= 0x80 {
			letters[base] = true
		}
		for i, r := range toned {
			letters[r] = true
			toneless[r] = struct {
				base rune
				tone Tone
			}{base, Tone(i)}
		}
	}
	for shape, m := range shapes {
		for plain, shaped := range m {
			letters[shaped] = true
			unshaped[shaped] = plain
			shapeOf[shaped] = shape
		}
	}
}

// IsLetter reports whether r is a non-ASCII letter of the precomposed
// Vietnamese alphabet.
func IsLetter(r rune) bool {
	return letters[r]
}

// IsRebuildable reports whether a committed code point may take part in
// a retroactive rewrite: printable ASCII outside the word-break set, or
// a recognized Vietnamese letter.
func IsRebuildable(r rune) bool {
	if r < 0x80 {
		return r >= 0x20 && !textutil.IsWordBreak(r)
	}
	return IsLetter(r)
}

// IsVowel reports whether r is a vowel of the alphabet, in any tone or
// shape.
func IsVowel(r rune) bool {
	base, _ := SplitTone(r)
	_, ok := tones[base]
	return ok
}

// ShapeOf reports the diacritic shape carried by r, ignoring tone.
func ShapeOf(r rune) (Shape, bool) {
	base, _ := SplitTone(r)
	shape, ok := shapeOf[base]
	return shape, ok
}

// Plain strips both tone and shape from r, down to the bare letter.
func Plain(r rune) rune {
	base, _ := SplitTone(r)
	if plain, ok := unshaped[base]; ok {
		return plain
	}
	return base
}

// SplitTone decomposes r into its toneless shape and tone. Runes outside
// the alphabet come back unchanged with ToneNone.
func SplitTone(r rune) (rune, Tone) {
	if t, ok := toneless[r]; ok {
		return t.base, t.tone
	}
	return r, ToneNone
}

// WithTone places tone on r, replacing any tone already there. The
// second result is false when r cannot carry a tone.
func WithTone(r rune, tone Tone) (rune, bool) {
	base, _ := SplitTone(r)
	toned, ok := tones[base]
	if !ok {
		return r, false
	}
	if tone == ToneNone {
		return base, true
	}
	return toned[tone], true
}

// WithShape applies a diacritic shape to r, preserving its tone. The
// second result is false when the shape does not fit r.
func WithShape(r rune, shape Shape) (rune, bool) {
	base, tone := SplitTone(r)
	shaped, ok := shapes[shape][base]
	if !ok {
		return r, false
	}
	if tone == ToneNone {
		return shaped, true
	}
	out, ok := WithTone(shaped, tone)
	return out, ok
}

// StripShape removes any diacritic shape from r, preserving its tone.
func StripShape(r rune) rune {
	base, tone := SplitTone(r)
	plain, ok := unshaped[base]
	if !ok {
		return r
	}
	if tone == ToneNone {
		return plain
	}
	out, ok := WithTone(plain, tone)
	if !ok {
		return plain
	}
	return out
}
