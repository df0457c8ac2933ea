package surface

import "testing"

func TestSimCommitAndReport(t *testing.T) {
	s := NewSim("test")
	s.Commit("xin ")
	s.Commit("chào")
	if got := s.Doc(); got != "xin chào" {
		t.Fatalf("doc = %q", got)
	}
	if got := s.CommittedText(); got != "xin chào" {
		t.Fatalf("committed = %q", got)
	}
	snap := s.CurrentSnapshot()
	if !snap.Valid || snap.Text != "xin chào" || snap.Cursor != 8 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestSimDeleteAroundCursor(t *testing.T) {
	s := NewSim("test")
	s.Commit("người")
	s.DeleteAroundCursor(-3, 3)
	if got := s.Doc(); got != "ng" {
		t.Fatalf("doc = %q", got)
	}
	if s.DocCursor() != 2 {
		t.Fatalf("cursor = %d", s.DocCursor())
	}

	// Deleting past the document start clamps.
	s.DeleteAroundCursor(-10, 10)
	if got := s.Doc(); got != "" {
		t.Fatalf("doc after clamped delete = %q", got)
	}
}

func TestSimDeleteAheadOfCursor(t *testing.T) {
	s := NewSim("test")
	s.SetDoc("abcdef")
	s.MoveCursor(2)
	s.DeleteAroundCursor(0, 2)
	if got := s.Doc(); got != "abef" {
		t.Fatalf("doc = %q", got)
	}
	if s.DocCursor() != 2 {
		t.Fatalf("cursor = %d", s.DocCursor())
	}
}

func TestSimCommitReplacesSelection(t *testing.T) {
	s := NewSim("test")
	s.SetDoc("một hai")
	s.Select(0, 3)
	s.Commit("ba")
	if got := s.Doc(); got != "ba hai" {
		t.Fatalf("doc = %q", got)
	}
	if s.CurrentSnapshot().HasSelection() {
		t.Error("selection should collapse after commit")
	}
}

func TestSimFrozenReport(t *testing.T) {
	s := NewSim("test")
	s.Commit("a")
	s.SetAutoReport(false)
	s.Commit("b")
	snap := s.CurrentSnapshot()
	if snap.Text != "a" {
		t.Fatalf("frozen report changed: %q", snap.Text)
	}
	s.RefreshSnapshot()
	if s.CurrentSnapshot().Text != "a" {
		t.Error("refresh must not thaw a frozen report")
	}
	s.SetAutoReport(true)
	if got := s.CurrentSnapshot().Text; got != "ab" {
		t.Fatalf("thawed report = %q", got)
	}
}

func TestSimLyingReport(t *testing.T) {
	s := NewSim("test")
	s.Commit("thật")
	s.Report(Snapshot{Text: "dối", Cursor: 3, Anchor: -1, Valid: true})
	if got := s.CurrentSnapshot().Text; got != "dối" {
		t.Fatalf("report = %q", got)
	}
	if got := s.Doc(); got != "thật" {
		t.Fatalf("doc = %q", got)
	}
}

func TestSimEditableToggle(t *testing.T) {
	s := NewSim("test")
	s.Commit("abc")
	s.SetEditable(false)
	if s.SupportsDocumentEditing() {
		t.Error("editing should be off")
	}
	s.DeleteAroundCursor(-1, 1)
	if got := s.Doc(); got != "abc" {
		t.Fatalf("delete went through on a read-only host: %q", got)
	}
}

func TestSimRefreshCount(t *testing.T) {
	s := NewSim("test")
	s.RefreshSnapshot()
	s.RefreshSnapshot()
	if s.RefreshCount() != 2 {
		t.Fatalf("refreshCount = %d", s.RefreshCount())
	}
}

func TestSnapshotHasSelection(t *testing.T) {
	cases := []struct {
		snap Snapshot
		want bool
	}{
		{Snapshot{Text: "ab", Cursor: 2, Anchor: 0, Valid: true}, true},
		{Snapshot{Text: "ab", Cursor: 2, Anchor: 2, Valid: true}, false},
		{Snapshot{Text: "ab", Cursor: 2, Anchor: -1, Valid: true}, false},
		{Snapshot{Text: "ab", Cursor: 2, Anchor: 0, Valid: false}, false},
	}
	for i, tc := range cases {
		if got := tc.snap.HasSelection(); got != tc.want {
			t.Errorf("case %d: HasSelection = %v", i, got)
		}
	}
}
