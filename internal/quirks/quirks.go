// Package quirks maintains the host capability table: which editing
// hosts report snapshots worth trusting, and which need the composer to
// run entirely on its own text model. Entries ship for the hosts with
// known-broken behavior and can be extended from configuration.
package quirks

import "strings"

// Profile describes what the composer may rely on for one host.
type Profile struct {
	// SupportsReliableSnapshot is false for hosts whose self-reported
	// text is known to be inconsistent. The composer never attempts
	// snapshot-based rewrites there.
	SupportsReliableSnapshot bool

	// ForceShadowOnly routes the host straight to the internal text
	// model, skipping snapshots even for reading.
	ForceShadowOnly bool
}

// Table resolves host identifiers to profiles. The zero value knows the
// built-in quirks.
type Table struct {
	overrides map[string]Profile
}

// snapshotDenylist names hosts whose snapshots are known to be
// inconsistent enough that rewriting based on them corrupts text.
var snapshotDenylist = map[string]bool{
	"libreoffice":                 true,
	"libreoffice-writer":          true,
	"soffice":                     true,
	"soffice.bin":                 true,
	"org.libreoffice.libreoffice": true,
}

// shadowOnlyHosts names hosts handled through the internal text model:
// their snapshot support exists but lags behind commits.
var shadowOnlyHosts = map[string]bool{
	"firefox":             true,
	"firefox-bin":         true,
	"org.mozilla.firefox": true,
}

// NewTable builds a table with the built-in entries.
func NewTable() *Table {
	return &Table{}
}

// Override registers or replaces the profile for a host identifier.
// Used to apply user configuration on top of the built-ins.
func (t *Table) Override(host string, p Profile) {
	if t.overrides == nil {
		t.overrides = make(map[string]Profile)
	}
	t.overrides[normalize(host)] = p
}

// Lookup returns the profile for a host identifier. Unknown hosts get
// full trust; the reliability tracking downgrades them at runtime if
// their snapshots misbehave.
func (t *Table) Lookup(host string) Profile {
	key := normalize(host)
	if t != nil && t.overrides != nil {
		if p, ok := t.overrides[key]; ok {
			return p
		}
	}
	if shadowOnlyHosts[key] {
		return Profile{SupportsReliableSnapshot: false, ForceShadowOnly: true}
	}
	if snapshotDenylist[key] {
		return Profile{SupportsReliableSnapshot: false}
	}
	return Profile{SupportsReliableSnapshot: true}
}

func normalize(host string) string {
	return strings.ToLower(strings.TrimSpace(host))
}
