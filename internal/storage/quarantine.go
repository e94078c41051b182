package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"sessionstate/internal/persistence"
	"sessionstate/internal/providers"
	"sessionstate/internal/storage/interfaces"
	"sessionstate/internal/structures"
)

const (
	quarantineIndexFile = "index.json"
	quarantineExt       = ".blob.zst"
)

// QuarantineEntry describes one unreadable blob set aside before the store
// was reset to defaults.
type QuarantineEntry struct {
	File     string    `json:"file"`
	Reason   string    `json:"reason"`
	Version  uint64    `json:"version,omitempty"`
	Size     int       `json:"size"`
	StoredAt time.Time `json:"stored_at"`
}

type quarantineIndex struct {
	Entries []*QuarantineEntry `json:"entries"`
}

// Quarantine keeps copies of blobs that failed to decode, so a blob written
// by a newer release survives the fallback to defaults. Files are compressed
// and listed in index.json. An empty dir disables it.
type Quarantine struct {
	mu         sync.Mutex
	dir        string
	ttl        time.Duration
	index      *quarantineIndex
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	now        func() time.Time
}

func NewQuarantine(dir string, ttl time.Duration, compressor interfaces.CompressorInterface, logger providers.Logger) *Quarantine {
	return &Quarantine{
		dir:        dir,
		ttl:        ttl,
		compressor: compressor,
		logger:     logger,
		now:        time.Now,
	}
}

// NewConfiguredQuarantine builds the quarantine from conf.Store. QuarantineTTL
// is given in hours.
func NewConfiguredQuarantine(conf *structures.Config, logger providers.Logger) (*Quarantine, error) {
	compressor, err := NewZstdCompressor()
	if err != nil {
		return nil, err
	}
	return NewQuarantine(conf.Store.QuarantineDir, conf.Store.QuarantineTTL*time.Hour, compressor, logger), nil
}

func (q *Quarantine) Enabled() bool {
	return q != nil && q.dir != ""
}

// Keep stores data with the reason it could not be read. It returns nil, nil
// when the quarantine is disabled.
func (q *Quarantine) Keep(data []byte, reason error) (*QuarantineEntry, error) {
	if !q.Enabled() {
		return nil, nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.loadIndex(); err != nil {
		return nil, err
	}

	now := q.now().UTC()
	entry := &QuarantineEntry{
		File:     strconv.FormatInt(now.UnixNano(), 10) + quarantineExt,
		Size:     len(data),
		StoredAt: now,
	}
	if reason != nil {
		entry.Reason = reason.Error()
	}
	var de *persistence.DecodeError
	if errors.As(reason, &de) {
		entry.Version = de.Version
	}

	compressed, err := q.compressor.Compress(data)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(filepath.Join(q.dir, entry.File), compressed); err != nil {
		return nil, err
	}

	entries := append(slices.Clip(q.index.Entries), entry)
	if err := q.writeIndex(entries); err != nil {
		os.Remove(filepath.Join(q.dir, entry.File))
		return nil, err
	}
	q.index.Entries = entries

	out := *entry
	return &out, nil
}

// List returns the quarantined blobs, oldest first.
func (q *Quarantine) List() ([]QuarantineEntry, error) {
	if !q.Enabled() {
		return nil, nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.loadIndex(); err != nil {
		return nil, err
	}
	out := make([]QuarantineEntry, 0, len(q.index.Entries))
	for _, e := range q.index.Entries {
		out = append(out, *e)
	}
	return out, nil
}

// Open returns the original bytes of a quarantined blob.
func (q *Quarantine) Open(file string) ([]byte, error) {
	if !q.Enabled() {
		return nil, errors.New("quarantine disabled")
	}
	if filepath.Base(file) != file {
		return nil, fmt.Errorf("invalid quarantine file %q", file)
	}
	data, err := os.ReadFile(filepath.Join(q.dir, file))
	if err != nil {
		return nil, err
	}
	return q.compressor.Decompress(data)
}

// Prune removes entries older than the TTL. A zero TTL keeps everything.
func (q *Quarantine) Prune() (int, error) {
	if !q.Enabled() || q.ttl <= 0 {
		return 0, nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.loadIndex(); err != nil {
		return 0, err
	}

	now := q.now()
	kept := make([]*QuarantineEntry, 0, len(q.index.Entries))
	var removed []string
	for _, e := range q.index.Entries {
		if now.Sub(e.StoredAt) > q.ttl {
			removed = append(removed, e.File)
			continue
		}
		kept = append(kept, e)
	}
	if len(removed) == 0 {
		return 0, nil
	}
	if err := q.writeIndex(kept); err != nil {
		return 0, err
	}
	q.index.Entries = kept
	for _, file := range removed {
		if err := os.Remove(filepath.Join(q.dir, file)); err != nil && !os.IsNotExist(err) {
			q.logger.Errorf(providers.TypeApp, "Failed to remove quarantined blob %s: %s", file, err)
		}
	}
	return len(removed), nil
}

// RestoreIndex reads index.json and drops entries whose file is gone. Called
// once at startup.
func (q *Quarantine) RestoreIndex() error {
	if !q.Enabled() {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := os.MkdirAll(q.dir, 0755); err != nil {
		return err
	}
	q.index = nil
	if err := q.loadIndex(); err != nil {
		return err
	}

	kept := q.index.Entries[:0]
	for _, e := range q.index.Entries {
		if _, err := os.Stat(filepath.Join(q.dir, e.File)); err != nil {
			q.logger.Warnf(providers.TypeApp, "Quarantined blob %s is missing, dropping it from the index", e.File)
			continue
		}
		kept = append(kept, e)
	}
	q.index.Entries = kept
	return nil
}

func (q *Quarantine) Close() {
	if q != nil {
		q.compressor.Close()
	}
}

// loadIndex reads index.json once. Must be called under q.mu.
func (q *Quarantine) loadIndex() error {
	if q.index != nil {
		return nil
	}
	q.index = &quarantineIndex{}

	data, err := os.ReadFile(filepath.Join(q.dir, quarantineIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(data, q.index); err != nil {
		q.logger.Errorf(providers.TypeApp, "Failed to parse quarantine index: %s", err)
		q.index = &quarantineIndex{}
		return nil
	}
	sort.SliceStable(q.index.Entries, func(i, j int) bool {
		return q.index.Entries[i].StoredAt.Before(q.index.Entries[j].StoredAt)
	})
	return nil
}

// writeIndex persists entries and must be called under q.mu. The caller
// commits them to q.index only once this returns nil.
func (q *Quarantine) writeIndex(entries []*QuarantineEntry) error {
	data, err := json.Marshal(quarantineIndex{Entries: entries})
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(q.dir, quarantineIndexFile), data)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpFile, path)
}
