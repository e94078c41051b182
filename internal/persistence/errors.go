package persistence

import (
	"errors"
	"fmt"

	"sessionstate/internal/codec"
)

var (
	// ErrUnknownVersion means the blob was written by a newer release.
	ErrUnknownVersion = errors.New("unknown schema version")
	// ErrMalformedPayload means the blob is corrupt: the envelope does not
	// parse, or its payload does not parse under the tagged version.
	ErrMalformedPayload = errors.New("malformed payload")
)

// DecodeError is returned by ReadLatest and DecodeVersioned. Kind is one of
// the sentinels above, so both errors.Is(err, ErrUnknownVersion) and
// errors.As(err, &decodeErr) work.
type DecodeError struct {
	Kind    error
	Version uint64
	Format  codec.Format
	Err     error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("persistence: %s blob v%d: %v", e.Format, e.Version, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsRecoverable reports whether err is one of the decode failures a caller
// may answer by starting from a fresh state.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrUnknownVersion) || errors.Is(err, ErrMalformedPayload)
}
