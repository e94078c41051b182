// Package persistence turns saved-state values into versioned blobs and back.
//
// A blob is an envelope {1: version, 2: payload} in the store's format. The
// reader decodes the envelope first, then hands the payload to the decoder
// registered for that version, then upgrades the result to the current
// schema. Blobs are never decoded with a decoder for another version.
package persistence

import (
	"fmt"

	"sessionstate/internal/codec"
	"sessionstate/internal/savedstate"
)

type decodeFunc func(c codec.Codec, payload []byte) (savedstate.Snapshot, error)

func decodeAs[T savedstate.Snapshot](c codec.Codec, payload []byte) (savedstate.Snapshot, error) {
	var s T
	if err := c.Unmarshal(payload, &s); err != nil {
		return nil, err
	}
	return s, nil
}

// decoders holds one entry per released version. Adding a snapshot means
// adding an entry here and a case in savedstate.Upgrade.
var decoders = [savedstate.CurrentVersion + 1]decodeFunc{
	0: decodeAs[savedstate.SavedStateV0],
	1: decodeAs[savedstate.SavedStateV1],
	2: decodeAs[savedstate.SavedStateV2],
	3: decodeAs[savedstate.SavedStateV3],
	4: decodeAs[savedstate.SavedStateV4],
	5: decodeAs[savedstate.SavedStateV5],
}

// ReadLatest decodes data written in format by any release and upgrades it
// to the current schema.
func ReadLatest(data []byte, format codec.Format) (savedstate.SavedState, error) {
	snap, err := DecodeVersioned(data, format)
	if err != nil {
		return savedstate.SavedState{}, err
	}
	return savedstate.Upgrade(snap), nil
}

// DecodeVersioned decodes data into the snapshot type of the version it was
// written with, without migrating it.
func DecodeVersioned(data []byte, format codec.Format) (savedstate.Snapshot, error) {
	c, err := codec.New(format)
	if err != nil {
		return nil, fmt.Errorf("persistence: %w", err)
	}

	env, err := peekEnvelope(c, data)
	if err != nil {
		return nil, &DecodeError{Kind: ErrMalformedPayload, Format: format, Err: fmt.Errorf("envelope: %w", err)}
	}
	if env.Version > uint64(savedstate.CurrentVersion) {
		return nil, &DecodeError{Kind: ErrUnknownVersion, Version: env.Version, Format: format}
	}

	snap, err := decoders[env.Version](c, env.Payload)
	if err != nil {
		return nil, &DecodeError{Kind: ErrMalformedPayload, Version: env.Version, Format: format, Err: err}
	}
	return snap, nil
}
