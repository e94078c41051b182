package persistence

import (
	"errors"

	"sessionstate/internal/codec"
)

// envelope is the only structure shared by every release. Field numbers 1 and
// 2 are frozen. Version 0 is omitted on the wire, which is how blobs written
// before versioning existed still decode.
type envelope struct {
	Version uint64 `cbor:"1,keyasint,omitempty"`
	Payload []byte `cbor:"2,keyasint,omitempty"`
}

var errEmptyBlob = errors.New("empty blob")

// peekEnvelope decodes the version tag and keeps the payload as raw bytes.
// A zero-length protobuf blob is an empty envelope: version 0 with an empty
// payload. Every CBOR envelope is at least one byte long.
func peekEnvelope(c codec.Codec, data []byte) (envelope, error) {
	var env envelope
	if len(data) == 0 {
		if c.Format() == codec.FormatProtobuf {
			return env, nil
		}
		return env, errEmptyBlob
	}
	if err := c.Unmarshal(data, &env); err != nil {
		return envelope{}, err
	}
	return env, nil
}
