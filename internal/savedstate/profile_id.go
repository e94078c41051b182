package savedstate

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ProfileID is a typed profile identifier in DID form ("did:plc:abc123").
type ProfileID string

const legacyPrefix = "did:legacy:"

var profileIDPattern = regexp.MustCompile(`^did:[a-z0-9]+:[A-Za-z0-9._:%-]+$`)

// ParseProfileID validates s as a DID. The "legacy" method is reserved for
// identifiers minted by LegacyProfileID and is rejected here.
func ParseProfileID(s string) (ProfileID, error) {
	if !profileIDPattern.MatchString(s) {
		return "", fmt.Errorf("invalid profile ID %q", s)
	}
	if strings.HasPrefix(s, legacyPrefix) {
		return "", fmt.Errorf("invalid profile ID %q: reserved method", s)
	}
	return ProfileID(s), nil
}

// MustProfileID is ParseProfileID for constants and tests.
func MustProfileID(s string) ProfileID {
	id, err := ParseProfileID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// LegacyProfileID is the fallback identifier for a stored key that does not
// parse: "did:legacy:" followed by the hex of the raw key, or
// "did:legacy:empty" for the empty key. The mapping is injective and never
// collides with a parseable ID.
func LegacyProfileID(raw string) ProfileID {
	if raw == "" {
		return ProfileID(legacyPrefix + "empty")
	}
	return ProfileID(legacyPrefix + hex.EncodeToString([]byte(raw)))
}

// ParseStoredProfileID accepts what ParseProfileID accepts plus identifiers
// minted by LegacyProfileID, i.e. anything that may appear as a key of a
// migrated state.
func ParseStoredProfileID(s string) (ProfileID, error) {
	rest, ok := strings.CutPrefix(s, legacyPrefix)
	if !ok {
		return ParseProfileID(s)
	}
	if rest == "empty" {
		return ProfileID(s), nil
	}
	if raw, err := hex.DecodeString(rest); err == nil && len(raw) > 0 && hex.EncodeToString(raw) == rest {
		return ProfileID(s), nil
	}
	return "", fmt.Errorf("invalid legacy profile ID %q", s)
}

// profileIDFromKey is the single key conversion used by the v0 -> v1 step.
func profileIDFromKey(raw string) ProfileID {
	if id, err := ParseProfileID(raw); err == nil {
		return id
	}
	return LegacyProfileID(raw)
}

func (p ProfileID) String() string { return string(p) }

// IsLegacy reports whether p was produced by LegacyProfileID.
func (p ProfileID) IsLegacy() bool { return strings.HasPrefix(string(p), legacyPrefix) }

// Instant is a point in time stored as Unix milliseconds.
type Instant int64

func InstantOf(t time.Time) Instant { return Instant(t.UnixMilli()) }

func (i Instant) Time() time.Time { return time.UnixMilli(int64(i)).UTC() }

// InstantPtr is a convenience for optional timestamp fields.
func InstantPtr(i Instant) *Instant { return &i }
