package persistence

import (
	"fmt"

	"sessionstate/internal/codec"
	"sessionstate/internal/savedstate"
)

// Write encodes state at the current version. There is no downgrade path.
func Write(state savedstate.SavedState, format codec.Format) ([]byte, error) {
	return EncodeSnapshot(state, format)
}

// EncodeSnapshot encodes any snapshot under its own version tag. Production
// code only writes the current version, through Write.
func EncodeSnapshot(s savedstate.Snapshot, format codec.Format) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("persistence: nil snapshot")
	}
	c, err := codec.New(format)
	if err != nil {
		return nil, fmt.Errorf("persistence: %w", err)
	}
	payload, err := c.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("persistence: encode v%d payload: %w", s.SnapshotVersion(), err)
	}
	data, err := c.Marshal(envelope{Version: uint64(s.SnapshotVersion()), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("persistence: encode envelope: %w", err)
	}
	return data, nil
}
