package ctl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessionstate/internal/codec"
	"sessionstate/internal/persistence"
	"sessionstate/internal/savedstate"
	"sessionstate/internal/storage"
	"sessionstate/internal/testutil"
)

func init() {
	color.NoColor = true
}

func writeBlob(t *testing.T, snap savedstate.Snapshot, format codec.Format) string {
	t.Helper()
	data, err := persistence.EncodeSnapshot(snap, format)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "state.bin")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestInspect_OldBlob(t *testing.T) {
	path := writeBlob(t, testutil.StateV0(), codec.FormatCBOR)

	var out bytes.Buffer
	summary, err := Inspect(context.Background(), &out, Options{Path: path, Format: "cbor"}, false)
	require.NoError(t, err)

	assert.Equal(t, savedstate.Version(0), summary.Version)
	assert.False(t, summary.Current)
	assert.Equal(t, "bearer", summary.AuthKind)
	assert.Len(t, summary.Profiles, 2)
	assert.Contains(t, out.String(), "v0 (upgrade to v5 pending)")
	assert.Contains(t, out.String(), "(legacy)")
}

func TestInspect_RawDumpsStoredShape(t *testing.T) {
	path := writeBlob(t, testutil.StateV4(), codec.FormatProtobuf)

	var out bytes.Buffer
	summary, err := Inspect(context.Background(), &out, Options{Path: path, Format: "protobuf"}, true)
	require.NoError(t, err)
	assert.Equal(t, savedstate.Version(4), summary.Version)
	assert.Contains(t, out.String(), "dpop")
}

func TestInspect_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Inspect(context.Background(), &bytes.Buffer{}, Options{Path: filepath.Join(dir, "none.bin"), Format: "cbor"}, false)
	assert.ErrorIs(t, err, ErrNoBlob)

	_, err = Inspect(context.Background(), &bytes.Buffer{}, Options{Path: filepath.Join(dir, "none.bin"), Format: "xml"}, false)
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.bin")
	require.NoError(t, os.WriteFile(garbage, []byte{0xff, 0x00}, 0644))
	_, err = Inspect(context.Background(), &bytes.Buffer{}, Options{Path: garbage, Format: "cbor"}, false)
	assert.ErrorIs(t, err, persistence.ErrMalformedPayload)
}

func TestUpgrade_RewritesOldBlob(t *testing.T) {
	path := writeBlob(t, testutil.StateV3(), codec.FormatCBOR)
	opts := Options{Path: path, Format: "cbor"}

	var out bytes.Buffer
	from, changed, err := Upgrade(context.Background(), &out, opts)
	require.NoError(t, err)
	assert.Equal(t, savedstate.Version(3), from)
	assert.True(t, changed)
	assert.Contains(t, out.String(), "upgraded from v3 to v5")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	state, err := persistence.ReadLatest(data, codec.FormatCBOR)
	require.NoError(t, err)
	assert.Equal(t, savedstate.Upgrade(testutil.StateV3()), state)

	_, changed, err = Upgrade(context.Background(), &out, opts)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestUpgrade_CompressedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin.zst")
	compressor, err := storage.NewZstdCompressor()
	require.NoError(t, err)
	store := storage.NewFileStore(path, compressor)
	data, err := persistence.EncodeSnapshot(testutil.StateV1(), codec.FormatProtobuf)
	require.NoError(t, err)
	require.NoError(t, store.Write(context.Background(), data))
	store.Close()

	opts := Options{Path: path, Format: "protobuf", Compression: "zstd"}
	from, changed, err := Upgrade(context.Background(), &bytes.Buffer{}, opts)
	require.NoError(t, err)
	assert.Equal(t, savedstate.Version(1), from)
	assert.True(t, changed)

	summary, err := Inspect(context.Background(), &bytes.Buffer{}, opts, false)
	require.NoError(t, err)
	assert.True(t, summary.Current)
}

func TestListQuarantine(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	entries, err := ListQuarantine(&out, dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, out.String(), "quarantine is empty")

	compressor, err := storage.NewZstdCompressor()
	require.NoError(t, err)
	q := storage.NewQuarantine(dir, 0, compressor, &testutil.MockLogger{})
	_, err = q.Keep([]byte("future"), &persistence.DecodeError{Kind: persistence.ErrUnknownVersion, Version: 7})
	require.NoError(t, err)
	q.Close()

	out.Reset()
	entries, err = ListQuarantine(&out, dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, out.String(), "v7")
}
