// Package textutil holds the text-span utilities shared by the composer
// and the internal text model, so both agree on what a word is and how
// trailing characters are erased.
package textutil

import "unicode/utf8"

// wordBreaks is the x-unikey word-break symbol set: characters that end
// the current word and can never be part of a rewritable span.
var wordBreaks = [128]bool{}

func init() {
	for _, c := range " ,;:.\"'!?<>=+-*/\\_~`@#$%^&()[]{}|\t\n\r" {
		wordBreaks[c] = true
	}
}

// IsWordBreak reports whether r is a word-break symbol. Non-ASCII runes
// never break words.
func IsWordBreak(r rune) bool {
	return r < 128 && wordBreaks[r]
}

// IsWordChar reports whether r belongs to a word for cursor-motion and
// word-deletion purposes: any non-ASCII rune, or an ASCII rune that is
// neither whitespace nor a word-break symbol.
func IsWordChar(r rune) bool {
	if r >= 128 {
		return true
	}
	return !IsWordBreak(r)
}

// RuneLen returns the number of code points in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// TrimLastRunes removes n code points from the end of s, never splitting
// a UTF-8 sequence. Removing more runes than s holds empties it.
func TrimLastRunes(s string, n int) string {
	end := len(s)
	for i := 0; i < n && end > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(s[:end])
		end -= size
	}
	return s[:end]
}

// LastRune returns the final code point of s, or 0 for an empty string.
func LastRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

// TrimTrailingBreaks strips trailing word-break symbols from s.
func TrimTrailingBreaks(s string) string {
	for s != "" {
		r, size := utf8.DecodeLastRuneInString(s)
		if !IsWordBreak(r) {
			break
		}
		s = s[:len(s)-size]
	}
	return s
}

// ContainsBreak reports whether any code point of s is a word-break
// symbol.
func ContainsBreak(s string) bool {
	for _, r := range s {
		if IsWordBreak(r) {
			return true
		}
	}
	return false
}

// autoConsonants are the ASCII letters the phonetic schemes pass
// straight through when they start a word. Vowels and the letters that
// can open a special sequence (a, d, e, i, o, u, w, y) are excluded.
const autoConsonants = "bcfghjklmnpqrstvxz"

// IsAutoCommitASCII reports whether r is an ASCII symbol the engine
// commits verbatim: a digit or a consonant outside the modifier set.
// These are the only characters safe to seed the engine with when
// adopting text the composer did not produce.
func IsAutoCommitASCII(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	lower := r | 0x20
	for _, c := range autoConsonants {
		if lower == c {
			return true
		}
	}
	return false
}
