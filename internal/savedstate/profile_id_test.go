package savedstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfileID_Valid(t *testing.T) {
	for _, s := range []string{
		"did:plc:alice",
		"did:web:bob.example.com",
		"did:web:localhost%3A8080",
		"did:key:z6Mk-x_y",
	} {
		id, err := ParseProfileID(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, id.String())
		assert.False(t, id.IsLegacy())
	}
}

func TestParseProfileID_Invalid(t *testing.T) {
	for _, s := range []string{
		"",
		"alice",
		"did:",
		"did:plc:",
		"DID:plc:alice",
		"did:PLC:alice",
		"did:plc:alice bob",
		"did:legacy:616c696365",
	} {
		_, err := ParseProfileID(s)
		assert.Error(t, err, s)
	}
}

func TestMustProfileID_Panics(t *testing.T) {
	assert.Panics(t, func() { MustProfileID("not a did") })
	assert.NotPanics(t, func() { MustProfileID("did:plc:alice") })
}

func TestLegacyProfileID(t *testing.T) {
	assert.Equal(t, ProfileID("did:legacy:empty"), LegacyProfileID(""))
	assert.Equal(t, ProfileID("did:legacy:616c696365"), LegacyProfileID("alice"))
	assert.True(t, LegacyProfileID("alice").IsLegacy())

	// Legacy IDs are valid DIDs in form but are never accepted by the parser,
	// so they cannot collide with a parsed key.
	assert.Regexp(t, profileIDPattern, string(LegacyProfileID("a b/c")))
	_, err := ParseProfileID(string(LegacyProfileID("alice")))
	assert.Error(t, err)
}

func TestLegacyProfileID_Injective(t *testing.T) {
	seen := map[ProfileID]string{}
	for _, raw := range []string{"", "empty", "a", "A", "ab", "a b", "did:legacy:x", "656d707479", "\x00"} {
		id := LegacyProfileID(raw)
		prev, dup := seen[id]
		require.False(t, dup, "%q and %q map to %s", prev, raw, id)
		seen[id] = raw
	}
}

func TestProfileIDFromKey(t *testing.T) {
	assert.Equal(t, ProfileID("did:plc:alice"), profileIDFromKey("did:plc:alice"))
	assert.Equal(t, LegacyProfileID("alice"), profileIDFromKey("alice"))
	assert.Equal(t, LegacyProfileID("did:legacy:abc"), profileIDFromKey("did:legacy:abc"))
}

func TestInstant_Time(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 250*int(time.Millisecond), time.UTC)
	i := InstantOf(ts)
	assert.Equal(t, Instant(ts.UnixMilli()), i)
	assert.Equal(t, ts, i.Time())

	p := InstantPtr(5)
	require.NotNil(t, p)
	assert.Equal(t, Instant(5), *p)
}

func TestParseStoredProfileID(t *testing.T) {
	for _, s := range []string{
		"did:plc:alice",
		string(LegacyProfileID("alice@old-server")),
		string(LegacyProfileID("")),
	} {
		id, err := ParseStoredProfileID(s)
		require.NoError(t, err, s)
		assert.Equal(t, ProfileID(s), id)
	}

	for _, s := range []string{
		"",
		"alice",
		"did:legacy:",
		"did:legacy:zz",
		"did:legacy:ABCD",
		"did:legacy:abc",
	} {
		_, err := ParseStoredProfileID(s)
		assert.Error(t, err, s)
	}
}
