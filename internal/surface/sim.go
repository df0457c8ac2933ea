package surface

import "strings"

// Sim is an in-memory host. It keeps a true document and a separately
// controlled self-report, so tests can model hosts whose snapshots lag
// behind or lie about the document.
type Sim struct {
	doc    []rune
	cursor int
	anchor int

	reported     Snapshot
	autoReport   bool
	canEdit      bool
	host         string
	commits      []string
	refreshCount int
}

// NewSim returns a host whose self-reports track the document
// faithfully.
func NewSim(host string) *Sim {
	s := &Sim{anchor: -1, autoReport: true, canEdit: true, host: host}
	s.publish()
	return s
}

// SetAutoReport controls whether document changes update the
// self-report. Turning it off freezes the report at its current value,
// modeling a laggy host.
func (s *Sim) SetAutoReport(on bool) {
	s.autoReport = on
	if on {
		s.publish()
	}
}

// Report overrides the self-report without touching the document,
// modeling a host that lies.
func (s *Sim) Report(snap Snapshot) {
	s.reported = snap
}

// SetEditable controls whether the host accepts deletions.
func (s *Sim) SetEditable(on bool) { s.canEdit = on }

// Doc returns the true document text.
func (s *Sim) Doc() string { return string(s.doc) }

// DocCursor returns the true caret position.
func (s *Sim) DocCursor() int { return s.cursor }

// Commits returns every string committed so far.
func (s *Sim) Commits() []string { return s.commits }

// CommittedText returns the concatenation of all commits.
func (s *Sim) CommittedText() string { return strings.Join(s.commits, "") }

// RefreshCount returns how many snapshot refreshes were requested.
func (s *Sim) RefreshCount() int { return s.refreshCount }

// Select sets a selection on the true document.
func (s *Sim) Select(start, end int) {
	s.anchor = start
	s.cursor = end
	if s.autoReport {
		s.publish()
	}
}

// MoveCursor moves the true caret, clearing any selection.
func (s *Sim) MoveCursor(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.doc) {
		pos = len(s.doc)
	}
	s.cursor = pos
	s.anchor = -1
	if s.autoReport {
		s.publish()
	}
}

// SetDoc replaces the true document, caret at the end.
func (s *Sim) SetDoc(text string) {
	s.doc = []rune(text)
	s.cursor = len(s.doc)
	s.anchor = -1
	if s.autoReport {
		s.publish()
	}
}

// RefreshSnapshot republishes the document as the self-report when auto
// reporting is on; a frozen report stays frozen, like a host that
// answers refresh requests with stale data.
func (s *Sim) RefreshSnapshot() {
	s.refreshCount++
	if s.autoReport {
		s.publish()
	}
}

// CurrentSnapshot returns the self-report.
func (s *Sim) CurrentSnapshot() Snapshot { return s.reported }

// Commit inserts text at the true caret, replacing any selection.
func (s *Sim) Commit(text string) {
	s.commits = append(s.commits, text)
	if start, end, ok := s.selection(); ok {
		s.doc = append(s.doc[:start], s.doc[end:]...)
		s.cursor = start
		s.anchor = -1
	}
	ins := []rune(text)
	s.doc = append(s.doc[:s.cursor], append(ins, s.doc[s.cursor:]...)...)
	s.cursor += len(ins)
	if s.autoReport {
		s.publish()
	}
}

// DeleteAroundCursor removes length code points starting at offset from
// the true caret.
func (s *Sim) DeleteAroundCursor(offset, length int) {
	if !s.canEdit || length <= 0 {
		return
	}
	start := s.cursor + offset
	if start < 0 {
		start = 0
	}
	end := start + length
	if end > len(s.doc) {
		end = len(s.doc)
	}
	if start >= end {
		return
	}
	s.doc = append(s.doc[:start], s.doc[end:]...)
	if s.cursor > end {
		s.cursor -= end - start
	} else if s.cursor > start {
		s.cursor = start
	}
	s.anchor = -1
	if s.autoReport {
		s.publish()
	}
}

// SupportsDocumentEditing reports whether deletions are accepted.
func (s *Sim) SupportsDocumentEditing() bool { return s.canEdit }

// HostIdentifier returns the simulated program name.
func (s *Sim) HostIdentifier() string { return s.host }

func (s *Sim) selection() (int, int, bool) {
	if s.anchor < 0 || s.anchor == s.cursor {
		return 0, 0, false
	}
	if s.anchor < s.cursor {
		return s.anchor, s.cursor, true
	}
	return s.cursor, s.anchor, true
}

func (s *Sim) publish() {
	s.reported = Snapshot{
		Text:   string(s.doc),
		Cursor: s.cursor,
		Anchor: s.anchor,
		Valid:  true,
	}
}
