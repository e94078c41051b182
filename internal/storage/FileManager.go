package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sessionstate/internal/codec"
	"sessionstate/internal/persistence"
	"sessionstate/internal/providers"
	"sessionstate/internal/savedstate"
	"sessionstate/internal/services"
	"sessionstate/internal/storage/interfaces"
)

// Load outcomes, also used as metric labels.
const (
	OutcomeEmpty    = "empty"
	OutcomeCurrent  = "current"
	OutcomeMigrated = "migrated"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// LoadReport describes the last LoadFromFile call.
type LoadReport struct {
	Outcome       string             `json:"outcome"`
	SourceVersion savedstate.Version `json:"sourceVersion"`
	Fallback      string             `json:"fallback,omitempty"`
	Quarantined   string             `json:"quarantined,omitempty"`
	LoadedAt      time.Time          `json:"loadedAt"`
}

// FileManager moves the session state between the service and the blob
// store. It is the only place where a recoverable decode error is turned
// into a fresh default state.
type FileManager struct {
	mu         sync.Mutex
	store      interfaces.BlobStoreInterface
	format     codec.Format
	service    services.SessionServiceInterface
	quarantine *Quarantine
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	lastLoad   LoadReport
}

func NewFileManager(store interfaces.BlobStoreInterface, format codec.Format, service services.SessionServiceInterface, quarantine *Quarantine, logger providers.Logger, metrics providers.MetricsProviderInterface) *FileManager {
	return &FileManager{
		store:      store,
		format:     format,
		service:    service,
		quarantine: quarantine,
		logger:     logger,
		metrics:    metrics,
	}
}

// LoadFromFile reads the blob, upgrades it to the current schema and
// installs it in the service. Unknown-version and corrupt blobs are replaced
// by savedstate.Default(); the state stays clean so the blob on disk is only
// overwritten once something changes. A migrated state is marked dirty so
// the next save rewrites it at the current version.
func (f *FileManager) LoadFromFile(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	start := time.Now()
	defer func() { f.metrics.ObservePersistenceDuration("load", time.Since(start)) }()

	data, err := f.store.Read(ctx)
	if err != nil && !errors.Is(err, ErrCorruptBlob) {
		f.metrics.IncStateLoads(OutcomeError)
		return fmt.Errorf("read saved state: %w", err)
	}
	if err == nil && data == nil {
		f.logger.Infof(providers.TypeApp, "No saved state found, starting with defaults")
		f.service.Load(savedstate.Default())
		f.finishLoad(LoadReport{Outcome: OutcomeEmpty, SourceVersion: savedstate.CurrentVersion})
		return nil
	}

	var snap savedstate.Snapshot
	if err == nil {
		f.metrics.SetBlobBytes(len(data))
		snap, err = persistence.DecodeVersioned(data, f.format)
	}
	if err != nil {
		if !errors.Is(err, ErrCorruptBlob) && !persistence.IsRecoverable(err) {
			f.metrics.IncStateLoads(OutcomeError)
			return fmt.Errorf("decode saved state: %w", err)
		}
		f.fallback(data, err)
		return nil
	}

	from := snap.SnapshotVersion()
	state := savedstate.Upgrade(snap)
	report := LoadReport{Outcome: OutcomeCurrent, SourceVersion: from}
	if from < savedstate.CurrentVersion {
		f.logger.Warnf(providers.TypeApp, "Migrated saved state from v%d to v%d", from, savedstate.CurrentVersion)
		f.metrics.IncMigrations(uint(from))
		f.service.Replace(state)
		report.Outcome = OutcomeMigrated
	} else {
		f.service.Load(state)
	}
	f.logger.Infof(providers.TypeApp, "Restored saved state (%s, v%d, %d profiles)", f.format, from, len(state.ProfileData))
	f.finishLoad(report)
	return nil
}

func (f *FileManager) fallback(data []byte, cause error) {
	report := LoadReport{Outcome: OutcomeFallback, Fallback: cause.Error()}
	var de *persistence.DecodeError
	if errors.As(cause, &de) {
		report.SourceVersion = savedstate.Version(de.Version)
	}
	f.logger.Warnf(providers.TypeApp, "Saved state is unreadable, starting with defaults: %s", cause)

	if len(data) > 0 && f.quarantine.Enabled() {
		entry, err := f.quarantine.Keep(data, cause)
		if err != nil {
			f.logger.Errorf(providers.TypeApp, "Failed to quarantine unreadable blob: %s", err)
		} else {
			report.Quarantined = entry.File
			f.logger.Infof(providers.TypeApp, "Unreadable blob kept as %s", entry.File)
		}
	}

	f.service.Load(savedstate.Default())
	f.finishLoad(report)
}

// finishLoad must be called under f.mu.
func (f *FileManager) finishLoad(report LoadReport) {
	report.LoadedAt = time.Now().UTC()
	f.lastLoad = report
	f.metrics.IncStateLoads(report.Outcome)
}

// SaveToFile writes the current state at the current version and marks the
// saved revision clean.
func (f *FileManager) SaveToFile(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(ctx)
}

// SaveIfDirty saves only when the service has unsaved changes.
func (f *FileManager) SaveIfDirty(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.service.IsDirty() {
		return false, nil
	}
	if err := f.save(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// save must be called under f.mu.
func (f *FileManager) save(ctx context.Context) error {
	start := time.Now()
	state, rev := f.service.Snapshot()

	data, err := persistence.Write(state, f.format)
	if err != nil {
		f.metrics.IncSaveErrors()
		return err
	}
	if err := f.store.Write(ctx, data); err != nil {
		f.metrics.IncSaveErrors()
		return fmt.Errorf("write saved state: %w", err)
	}

	f.service.MarkClean(rev)
	f.metrics.SetBlobBytes(len(data))
	f.metrics.ObservePersistenceDuration("save", time.Since(start))
	return nil
}

func (f *FileManager) LastLoad() LoadReport {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLoad
}

func (f *FileManager) Format() codec.Format {
	return f.format
}

func (f *FileManager) Close() {
	if c, ok := f.store.(interface{ Close() }); ok {
		c.Close()
	}
	f.quarantine.Close()
}
