// Package ctl implements the offline sessionctl commands. They work on a
// blob file directly and never talk to a running daemon.
package ctl

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"

	"sessionstate/internal/codec"
	"sessionstate/internal/persistence"
	"sessionstate/internal/savedstate"
	"sessionstate/internal/storage"
	"sessionstate/internal/storage/interfaces"
	"sessionstate/internal/structures"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
	keyColor  = color.New(color.FgCyan)
)

// ErrNoBlob is returned when the file does not exist.
var ErrNoBlob = errors.New("no saved state at path")

// Options selects the blob file and how it is stored.
type Options struct {
	Path        string
	Format      string
	Compression string
}

func (o Options) open() (interfaces.BlobStoreInterface, codec.Format, func(), error) {
	format, err := codec.ParseFormat(o.Format)
	if err != nil {
		return nil, 0, nil, err
	}
	conf := &structures.Config{Store: structures.Store{FilePath: o.Path, Compression: o.Compression}}
	compressor, err := storage.NewCompressor(conf)
	if err != nil {
		return nil, 0, nil, err
	}
	return storage.NewConfiguredFileStore(conf, compressor), format, compressor.Close, nil
}

func read(ctx context.Context, store interfaces.BlobStoreInterface) ([]byte, error) {
	data, err := store.Read(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNoBlob
	}
	return data, nil
}

// Summary describes a decoded blob.
type Summary struct {
	Version   savedstate.Version
	Current   bool
	AuthKind  string
	Profiles  []savedstate.ProfileID
	BlobBytes int
}

func summarize(snap savedstate.Snapshot, size int) (Summary, savedstate.SavedState) {
	state := savedstate.Upgrade(snap)
	return Summary{
		Version:   snap.SnapshotVersion(),
		Current:   snap.SnapshotVersion() == savedstate.CurrentVersion,
		AuthKind:  state.Auth.Kind().String(),
		Profiles:  state.ProfileIDs(),
		BlobBytes: size,
	}, state
}

// Inspect prints what the blob holds. With raw the snapshot is dumped at the
// version it was written with; otherwise it is upgraded first.
func Inspect(ctx context.Context, w io.Writer, opts Options, raw bool) (Summary, error) {
	store, format, closeFn, err := opts.open()
	if err != nil {
		return Summary{}, err
	}
	defer closeFn()

	data, err := read(ctx, store)
	if err != nil {
		return Summary{}, err
	}
	snap, err := persistence.DecodeVersioned(data, format)
	if err != nil {
		return Summary{}, err
	}
	summary, state := summarize(snap, len(data))

	keyColor.Fprint(w, "format:   ")
	fmt.Fprintln(w, format)
	keyColor.Fprint(w, "version:  ")
	if summary.Current {
		okColor.Fprintf(w, "v%d (current)\n", summary.Version)
	} else {
		warnColor.Fprintf(w, "v%d (upgrade to v%d pending)\n", summary.Version, savedstate.CurrentVersion)
	}
	keyColor.Fprint(w, "auth:     ")
	fmt.Fprintln(w, summary.AuthKind)
	keyColor.Fprint(w, "profiles: ")
	fmt.Fprintln(w, len(summary.Profiles))
	for _, id := range summary.Profiles {
		if id.IsLegacy() {
			warnColor.Fprintf(w, "  %s (legacy)\n", id)
		} else {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}

	var dump any = state
	if raw {
		dump = snap
	}
	out, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return Summary{}, err
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return summary, err
}

// Upgrade rewrites an old blob at the current version. A blob that is
// already current is left untouched.
func Upgrade(ctx context.Context, w io.Writer, opts Options) (savedstate.Version, bool, error) {
	store, format, closeFn, err := opts.open()
	if err != nil {
		return 0, false, err
	}
	defer closeFn()

	data, err := read(ctx, store)
	if err != nil {
		return 0, false, err
	}
	snap, err := persistence.DecodeVersioned(data, format)
	if err != nil {
		return 0, false, err
	}
	from := snap.SnapshotVersion()
	if from == savedstate.CurrentVersion {
		okColor.Fprintf(w, "%s is already at v%d\n", opts.Path, from)
		return from, false, nil
	}

	out, err := persistence.Write(savedstate.Upgrade(snap), format)
	if err != nil {
		return from, false, err
	}
	if err := store.Write(ctx, out); err != nil {
		return from, false, err
	}
	okColor.Fprintf(w, "%s upgraded from v%d to v%d\n", opts.Path, from, savedstate.CurrentVersion)
	return from, true, nil
}

// ListQuarantine prints the blobs kept in dir.
func ListQuarantine(w io.Writer, dir string) ([]storage.QuarantineEntry, error) {
	compressor, err := storage.NewZstdCompressor()
	if err != nil {
		return nil, err
	}
	q := storage.NewQuarantine(dir, 0, compressor, discardLogger{})
	defer q.Close()

	entries, err := q.List()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		okColor.Fprintln(w, "quarantine is empty")
		return entries, nil
	}
	for _, e := range entries {
		keyColor.Fprint(w, e.File)
		fmt.Fprintf(w, "  %s  %d bytes", e.StoredAt.Format("2006-01-02 15:04:05"), e.Size)
		if e.Version != 0 {
			fmt.Fprintf(w, "  v%d", e.Version)
		}
		warnColor.Fprintf(w, "  %s\n", e.Reason)
	}
	return entries, nil
}
