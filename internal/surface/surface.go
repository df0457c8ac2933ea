// Package surface abstracts the editing host: the only window the
// composer has onto the user's document. Real hosts sit behind an input
// method bus; Sim provides an in-memory host for tests and self-checks.
package surface

// Snapshot is the host's self-reported view of the text around the
// caret. Cursor and Anchor are code-point indices; Anchor is -1 when no
// selection is active. A snapshot with Valid false carries no usable
// information at all.
type Snapshot struct {
	Text   string
	Cursor int
	Anchor int
	Valid  bool
}

// HasSelection reports whether the snapshot shows an active selection.
func (s Snapshot) HasSelection() bool {
	return s.Valid && s.Anchor >= 0 && s.Anchor != s.Cursor
}

// Surface is the composer's contract with the editing host. All
// positions and lengths are code points.
type Surface interface {
	// RefreshSnapshot asks the host to republish its surrounding text.
	// Hosts that push snapshots unsolicited may treat this as a no-op.
	RefreshSnapshot()

	// CurrentSnapshot returns the most recent self-report.
	CurrentSnapshot() Snapshot

	// Commit inserts text at the caret. Hosts replace an active
	// selection with the committed text.
	Commit(text string)

	// DeleteAroundCursor removes length code points starting at
	// offset relative to the caret. Retroactive rewrites use negative
	// offsets.
	DeleteAroundCursor(offset, length int)

	// SupportsDocumentEditing reports whether the host accepts
	// surrounding-text deletion at all.
	SupportsDocumentEditing() bool

	// HostIdentifier names the client program, for quirk lookup.
	HostIdentifier() string
}
