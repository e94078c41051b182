package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessionstate/internal/codec"
	"sessionstate/internal/persistence"
	"sessionstate/internal/savedstate"
	"sessionstate/internal/services"
	"sessionstate/internal/storage/interfaces"
	"sessionstate/internal/testutil"
)

var storeFormats = []codec.Format{codec.FormatCBOR, codec.FormatProtobuf}

type testEnvelope struct {
	Version uint64 `cbor:"1,keyasint,omitempty"`
	Payload []byte `cbor:"2,keyasint,omitempty"`
}

func futureBlob(t *testing.T, format codec.Format) []byte {
	t.Helper()
	c, err := codec.New(format)
	require.NoError(t, err)
	data, err := c.Marshal(testEnvelope{Version: uint64(savedstate.CurrentVersion) + 1, Payload: []byte{0x01}})
	require.NoError(t, err)
	return data
}

type fileManagerFixture struct {
	fm      *FileManager
	store   *MemoryStore
	service services.SessionServiceInterface
	metrics *testutil.MockMetrics
	logger  *testutil.MockLogger
}

func newFileManagerFixture(t *testing.T, format codec.Format, initial []byte, quarantine *Quarantine) *fileManagerFixture {
	t.Helper()
	f := &fileManagerFixture{
		store:   NewMemoryStore(initial),
		service: services.NewSessionService(),
		metrics: &testutil.MockMetrics{},
		logger:  &testutil.MockLogger{},
	}
	f.fm = NewFileManager(f.store, format, f.service, quarantine, f.logger, f.metrics)
	return f
}

func TestFileManager_LoadEmptyStore(t *testing.T) {
	f := newFileManagerFixture(t, codec.FormatCBOR, nil, nil)

	require.NoError(t, f.fm.LoadFromFile(context.Background()))
	assert.Equal(t, savedstate.Default(), f.service.State())
	assert.False(t, f.service.IsDirty())

	report := f.fm.LastLoad()
	assert.Equal(t, OutcomeEmpty, report.Outcome)
	assert.False(t, report.LoadedAt.IsZero())
	assert.Equal(t, 1, f.metrics.Loads[OutcomeEmpty])
}

func TestFileManager_LoadCurrentVersion(t *testing.T) {
	for _, format := range storeFormats {
		t.Run(format.String(), func(t *testing.T) {
			blob, err := persistence.Write(testutil.StateV5(), format)
			require.NoError(t, err)

			f := newFileManagerFixture(t, format, blob, nil)
			require.NoError(t, f.fm.LoadFromFile(context.Background()))

			if diff := cmp.Diff(testutil.StateV5(), f.service.State()); diff != "" {
				t.Fatalf("loaded state mismatch (-want +got):\n%s", diff)
			}
			assert.False(t, f.service.IsDirty())
			assert.Equal(t, OutcomeCurrent, f.fm.LastLoad().Outcome)
			assert.Equal(t, savedstate.CurrentVersion, f.fm.LastLoad().SourceVersion)
			assert.Equal(t, len(blob), f.metrics.BlobBytes)
		})
	}
}

func TestFileManager_LoadMigratesOlderVersions(t *testing.T) {
	for _, format := range storeFormats {
		for _, snap := range testutil.Snapshots()[:savedstate.CurrentVersion] {
			from := snap.SnapshotVersion()
			t.Run(fmt.Sprintf("%s/v%d", format, from), func(t *testing.T) {
				blob, err := persistence.EncodeSnapshot(snap, format)
				require.NoError(t, err)

				f := newFileManagerFixture(t, format, blob, nil)
				require.NoError(t, f.fm.LoadFromFile(context.Background()))

				if diff := cmp.Diff(savedstate.Upgrade(snap), f.service.State()); diff != "" {
					t.Fatalf("migrated state mismatch (-want +got):\n%s", diff)
				}
				assert.True(t, f.service.IsDirty(), "migrated state must be rewritten")
				assert.Equal(t, OutcomeMigrated, f.fm.LastLoad().Outcome)
				assert.Equal(t, from, f.fm.LastLoad().SourceVersion)
				assert.Equal(t, 1, f.metrics.Migrations[uint(from)])

				saved, err := f.fm.SaveIfDirty(context.Background())
				require.NoError(t, err)
				assert.True(t, saved)

				rewritten, err := f.store.Read(context.Background())
				require.NoError(t, err)
				decoded, err := persistence.DecodeVersioned(rewritten, format)
				require.NoError(t, err)
				assert.Equal(t, savedstate.CurrentVersion, decoded.SnapshotVersion())
			})
		}
	}
}

func TestFileManager_UnknownVersionFallsBack(t *testing.T) {
	for _, format := range storeFormats {
		t.Run(format.String(), func(t *testing.T) {
			blob := futureBlob(t, format)
			q := NewQuarantine(t.TempDir(), 0, &testutil.MockCompressor{}, &testutil.MockLogger{})
			f := newFileManagerFixture(t, format, blob, q)

			require.NoError(t, f.fm.LoadFromFile(context.Background()))
			assert.Equal(t, savedstate.Default(), f.service.State())
			assert.False(t, f.service.IsDirty(), "fallback must not overwrite the blob")

			report := f.fm.LastLoad()
			assert.Equal(t, OutcomeFallback, report.Outcome)
			assert.Equal(t, savedstate.CurrentVersion+1, report.SourceVersion)
			assert.Contains(t, report.Fallback, "unknown schema version")
			require.NotEmpty(t, report.Quarantined)

			kept, err := q.Open(report.Quarantined)
			require.NoError(t, err)
			assert.Equal(t, blob, kept)

			saved, err := f.fm.SaveIfDirty(context.Background())
			require.NoError(t, err)
			assert.False(t, saved)
			assert.Zero(t, f.store.Writes())
		})
	}
}

func TestFileManager_MalformedFallsBack(t *testing.T) {
	for name, blob := range map[string][]byte{
		"empty":   {},
		"garbage": {0xff, 0xfe, 0xfd},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFileManagerFixture(t, codec.FormatCBOR, blob, nil)

			require.NoError(t, f.fm.LoadFromFile(context.Background()))
			assert.Equal(t, savedstate.Default(), f.service.State())
			assert.Equal(t, OutcomeFallback, f.fm.LastLoad().Outcome)
			assert.Empty(t, f.fm.LastLoad().Quarantined)
			assert.Equal(t, 1, f.metrics.Loads[OutcomeFallback])
			assert.True(t, f.logger.Has("warn", "malformed payload"))
		})
	}
}

func TestFileManager_EmptyProtobufBlobIsVersionZero(t *testing.T) {
	f := newFileManagerFixture(t, codec.FormatProtobuf, []byte{}, nil)

	require.NoError(t, f.fm.LoadFromFile(context.Background()))
	assert.Equal(t, OutcomeMigrated, f.fm.LastLoad().Outcome)
	assert.Equal(t, savedstate.Version(0), f.fm.LastLoad().SourceVersion)
	assert.Equal(t, savedstate.Upgrade(savedstate.SavedStateV0{}), f.service.State())
	assert.Zero(t, f.metrics.Loads[OutcomeFallback])
}

func TestFileManager_EmptyProtobufFile(t *testing.T) {
	zstdCompressor, err := NewZstdCompressor()
	require.NoError(t, err)
	defer zstdCompressor.Close()

	for name, compressor := range map[string]interfaces.CompressorInterface{
		"none": noCompression{},
		"zstd": zstdCompressor,
	} {
		t.Run(name, func(t *testing.T) {
			blob, err := persistence.EncodeSnapshot(savedstate.SavedStateV0{}, codec.FormatProtobuf)
			require.NoError(t, err)
			store := NewFileStore(filepath.Join(t.TempDir(), "state.bin"), compressor)
			require.NoError(t, store.Write(context.Background(), blob))

			svc := services.NewSessionService()
			fm := NewFileManager(store, codec.FormatProtobuf, svc, nil, &testutil.MockLogger{}, &testutil.MockMetrics{})
			require.NoError(t, fm.LoadFromFile(context.Background()))
			assert.Equal(t, OutcomeMigrated, fm.LastLoad().Outcome)
			assert.Equal(t, savedstate.Version(0), fm.LastLoad().SourceVersion)
		})
	}
}

func TestFileManager_CorruptFrameFallsBack(t *testing.T) {
	store := &testutil.MockBlobStore{
		ReadFn: func(context.Context) ([]byte, error) {
			return nil, errors.Join(ErrCorruptBlob, errors.New("bad frame"))
		},
	}
	svc := services.NewSessionService()
	fm := NewFileManager(store, codec.FormatCBOR, svc, nil, &testutil.MockLogger{}, &testutil.MockMetrics{})

	require.NoError(t, fm.LoadFromFile(context.Background()))
	assert.Equal(t, OutcomeFallback, fm.LastLoad().Outcome)
	assert.Equal(t, savedstate.Default(), svc.State())
}

func TestFileManager_ReadErrorIsReturned(t *testing.T) {
	store := &testutil.MockBlobStore{
		ReadFn: func(context.Context) ([]byte, error) { return nil, errors.New("permission denied") },
	}
	svc := services.NewSessionService()
	metrics := &testutil.MockMetrics{}
	fm := NewFileManager(store, codec.FormatCBOR, svc, nil, &testutil.MockLogger{}, metrics)

	err := fm.LoadFromFile(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Equal(t, 1, metrics.Loads[OutcomeError])
}

func TestFileManager_SaveMarksClean(t *testing.T) {
	f := newFileManagerFixture(t, codec.FormatProtobuf, nil, nil)
	require.NoError(t, f.fm.LoadFromFile(context.Background()))

	f.service.Replace(testutil.StateV5())
	require.True(t, f.service.IsDirty())

	require.NoError(t, f.fm.SaveToFile(context.Background()))
	assert.False(t, f.service.IsDirty())
	assert.Equal(t, 1, f.store.Writes())
	assert.Equal(t, 1, f.metrics.Durations["save"])

	blob, err := f.store.Read(context.Background())
	require.NoError(t, err)
	got, err := persistence.ReadLatest(blob, codec.FormatProtobuf)
	require.NoError(t, err)
	if diff := cmp.Diff(testutil.StateV5(), got); diff != "" {
		t.Fatalf("saved state mismatch (-want +got):\n%s", diff)
	}
}

func TestFileManager_SaveIfDirty(t *testing.T) {
	f := newFileManagerFixture(t, codec.FormatCBOR, nil, nil)
	require.NoError(t, f.fm.LoadFromFile(context.Background()))

	saved, err := f.fm.SaveIfDirty(context.Background())
	require.NoError(t, err)
	assert.False(t, saved)

	f.service.SignOut()
	saved, err = f.fm.SaveIfDirty(context.Background())
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = f.fm.SaveIfDirty(context.Background())
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, 1, f.store.Writes())
}

func TestFileManager_SaveErrorKeepsDirty(t *testing.T) {
	store := &testutil.MockBlobStore{
		WriteFn: func(context.Context, []byte) error { return errors.New("disk full") },
	}
	svc := services.NewSessionService()
	metrics := &testutil.MockMetrics{}
	fm := NewFileManager(store, codec.FormatCBOR, svc, nil, &testutil.MockLogger{}, metrics)

	svc.Replace(testutil.StateV5())
	_, err := fm.SaveIfDirty(context.Background())
	require.Error(t, err)
	assert.True(t, svc.IsDirty())
	assert.Equal(t, 1, metrics.SaveErrors)
}

func TestFileManager_ChangeDuringSaveStaysDirty(t *testing.T) {
	svc := services.NewSessionService()
	store := &testutil.MockBlobStore{}
	store.WriteFn = func(context.Context, []byte) error {
		svc.SignOut()
		return nil
	}
	fm := NewFileManager(store, codec.FormatCBOR, svc, nil, &testutil.MockLogger{}, &testutil.MockMetrics{})

	svc.Replace(testutil.StateV5())
	require.NoError(t, fm.SaveToFile(context.Background()))
	assert.True(t, svc.IsDirty())
}

func TestFileManager_RoundTripThroughFileStore(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	store := NewFileStore(t.TempDir()+"/state.bin", c)

	svc := services.NewSessionService()
	fm := NewFileManager(store, codec.FormatCBOR, svc, nil, &testutil.MockLogger{}, &testutil.MockMetrics{})
	defer fm.Close()

	svc.Replace(testutil.StateV5())
	require.NoError(t, fm.SaveToFile(context.Background()))

	restored := services.NewSessionService()
	fm2 := NewFileManager(store, codec.FormatCBOR, restored, nil, &testutil.MockLogger{}, &testutil.MockMetrics{})
	require.NoError(t, fm2.LoadFromFile(context.Background()))
	assert.Equal(t, svc.State(), restored.State())
	assert.Equal(t, codec.FormatCBOR, fm2.Format())
}
