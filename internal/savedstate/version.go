package savedstate

import "fmt"

// Version identifies the schema snapshot a blob was written with.
type Version uint

// CurrentVersion is the schema every write uses.
const CurrentVersion Version = 5

// Snapshot is implemented by every frozen schema type. The set is closed:
// only types in this package can satisfy it.
type Snapshot interface {
	SnapshotVersion() Version
	snapshot()
}

// MigrationFailure is the panic value raised when the upgrade chain meets a
// snapshot it has no step for. Reaching it means a migration is missing, so it
// is never turned into a recoverable decode error.
type MigrationFailure struct {
	Snapshot Snapshot
	Reason   string
}

func (m *MigrationFailure) Error() string {
	if m.Snapshot == nil {
		return "savedstate: migration failure: " + m.Reason
	}
	return fmt.Sprintf("savedstate: migration failure at %T (v%d): %s", m.Snapshot, m.Snapshot.SnapshotVersion(), m.Reason)
}
