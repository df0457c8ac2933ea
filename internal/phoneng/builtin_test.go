package phoneng

import (
	"testing"

	"github.com/qduc/fcitx5-unikey/internal/keysym"
)

// typeKeys feeds every key through the engine and folds the results the
// way a caller maintaining a pending buffer would.
func typeKeys(e Engine, keys string) string {
	var out []rune
	for _, k := range keys {
		res := e.Feed(keysym.Sym(k))
		out = out[:len(out)-res.Erase]
		out = append(out, []rune(res.Output)...)
	}
	return string(out)
}

func TestTelexComposition(t *testing.T) {
	cases := []struct {
		keys, want string
	}{
		{"vieetj", "việt"},
		{"toans", "toán"},
		{"quas", "quá"},
		{"gif", "gì"},
		{"hoaf", "hòa"},
		{"ngar", "ngả"},
		{"awn", "ăn"},
		{"uw", "ư"},
		{"chuwa", "chưa"},
		{"dduowngf", "đường"},
		{"w", "ư"},
		{"VIEETJ", "VIỆT"},
		// escapes: a repeated mark reverts to the literal keys
		{"ass", "as"},
		{"aaa", "aa"},
		{"uww", "uw"},
		{"ddd", "dd"},
		// z removes the tone and stays silent
		{"masz", "ma"},
		{"maz", "maz"},
		// tone keys without a vowel are literal
		{"s", "s"},
		{"trs", "trs"},
	}
	for _, tc := range cases {
		got := typeKeys(NewEngine(SchemeTelex), tc.keys)
		if got != tc.want {
			t.Errorf("telex %q: got %q, want %q", tc.keys, got, tc.want)
		}
	}
}

func TestSimpleTelexKeepsWLiteral(t *testing.T) {
	if got := typeKeys(NewEngine(SchemeSimpleTelex), "wa"); got != "wa" {
		t.Errorf("simple telex standalone w: got %q, want %q", got, "wa")
	}
	if got := typeKeys(NewEngine(SchemeSimpleTelex), "uw"); got != "ư" {
		t.Errorf("simple telex uw: got %q, want %q", got, "ư")
	}
}

func TestVNIComposition(t *testing.T) {
	cases := []struct {
		keys, want string
	}{
		{"viet65", "việt"},
		{"nga3", "ngả"},
		{"tuong71", "tướng"},
		{"d9i", "đi"},
		{"an8", "ăn"},
		// escapes and removal
		{"nga33", "nga3"},
		{"ma10", "ma"},
		// digits without a target are literal
		{"1", "1"},
		{"nh1", "nh1"},
	}
	for _, tc := range cases {
		got := typeKeys(NewEngine(SchemeVNI), tc.keys)
		if got != tc.want {
			t.Errorf("vni %q: got %q, want %q", tc.keys, got, tc.want)
		}
	}
}

func TestVIQRComposition(t *testing.T) {
	cases := []struct {
		keys, want string
	}{
		{"vie^t.", "việt"},
		{"dda^`u", "đầu"},
		{"tu+o+ng", "tương"},
		{"a(n", "ăn"},
		{"ma~", "mã"},
	}
	for _, tc := range cases {
		got := typeKeys(NewEngine(SchemeVIQR), tc.keys)
		if got != tc.want {
			t.Errorf("viqr %q: got %q, want %q", tc.keys, got, tc.want)
		}
	}
}

func TestWordBreakResetsWord(t *testing.T) {
	e := NewEngine(SchemeTelex)
	if got := typeKeys(e, "as "); got != "á " {
		t.Fatalf("got %q, want %q", got, "á ")
	}
	if !e.AtWordStart() {
		t.Error("engine should be at word start after a break")
	}
	// the next word must not inherit the previous one's vowels
	if got := typeKeys(e, "bs"); got != "bs" {
		t.Errorf("after break: got %q, want %q", got, "bs")
	}
}

func TestRestoreKeystrokes(t *testing.T) {
	e := NewEngine(SchemeTelex)
	typeKeys(e, "vieetj")
	res := e.RestoreKeystrokes()
	if res.Erase != 4 {
		t.Errorf("erase: got %d, want 4", res.Erase)
	}
	if res.Output != "vieetj" {
		t.Errorf("output: got %q, want %q", res.Output, "vieetj")
	}
}

func TestReplayChar(t *testing.T) {
	e := NewEngine(SchemeTelex)
	for _, r := range "việt" {
		if err := e.ReplayChar(r); err != nil {
			t.Fatalf("replay %q: %v", r, err)
		}
	}
	if e.AtWordStart() {
		t.Fatal("engine should hold a word after replay")
	}

	// a tone key must rewrite the adopted word
	res := e.Feed('s')
	if res.Erase != 2 || res.Output != "ết" {
		t.Errorf("tone after replay: got erase=%d output=%q, want erase=2 output=%q",
			res.Erase, res.Output, "ết")
	}
}

func TestReplayCharRejectsBreaks(t *testing.T) {
	e := NewEngine(SchemeTelex)
	if err := e.ReplayChar(' '); err == nil {
		t.Error("replaying a break symbol should fail")
	}
}

func TestFlushForgetsWord(t *testing.T) {
	e := NewEngine(SchemeTelex)
	typeKeys(e, "ab")
	res := e.Feed(keysym.None)
	if res.Erase != 0 || res.Output != "" {
		t.Errorf("flush result: got %+v, want zero", res)
	}
	if !e.AtWordStart() {
		t.Error("engine should be at word start after flush")
	}
}
