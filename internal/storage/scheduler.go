package storage

import (
	"context"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"sessionstate/internal/providers"
	"sessionstate/internal/storage/interfaces"
	"sessionstate/internal/structures"
)

const persistTimeout = 10 * time.Second

type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	fileManager *FileManager
	quarantine  *Quarantine
	cron        *gron.Cron
	opsMu       sync.Mutex
}

// Init starts the autosave job. Saves only happen when the state is dirty.
func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.config.Persistence.SaveInterval

	s.cron.AddFunc(gron.Every(interval*time.Second), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		saved, err := s.fileManager.SaveIfDirty(ctx)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting state: %s", err)
			return
		}
		if saved {
			s.logger.Debugf(providers.TypeApp, "Persisted state to %s", s.config.Store.FilePath)
		}
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore loads the saved state and prunes expired quarantined blobs.
func (s *Scheduler) Restore() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	if err := s.quarantine.RestoreIndex(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while reading quarantine: %s", err)
	} else if n, err := s.quarantine.Prune(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while pruning quarantine: %s", err)
	} else if n > 0 {
		s.logger.Infof(providers.TypeApp, "Pruned %d quarantined blobs", n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	return s.fileManager.LoadFromFile(ctx)
}

// Persist writes pending changes. A state that was never changed since the
// last load is not rewritten.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	s.logger.Infof(providers.TypeApp, "Persisting state to %s...", s.config.Store.FilePath)
	saved, err := s.fileManager.SaveIfDirty(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting state: %s", err)
		return err
	}
	if !saved {
		s.logger.Infof(providers.TypeApp, "No changes to persist")
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, fileManager *FileManager, quarantine *Quarantine) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		fileManager: fileManager,
		quarantine:  quarantine,
	}
}
