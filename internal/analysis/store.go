package analysis

import (
	"context"
	"sync"
	"time"

	"codeatlas/internal/config"
	"codeatlas/internal/errors"
	"codeatlas/internal/logging"
	"codeatlas/internal/model"
	"codeatlas/internal/storage"
)

// Store holds the current snapshot and coordinates scans. Reads always see
// either the previous complete snapshot or the new one, never a partial
// state. At most one scan runs at a time.
type Store struct {
	cfg     *config.Config
	logger  *logging.Logger
	scanner *Scanner
	persist storage.SnapshotStore

	mu       sync.RWMutex
	current  *model.Snapshot
	scanning bool
}

// NewStore creates a Store. persist may be nil to disable durability.
func NewStore(cfg *config.Config, persist storage.SnapshotStore, logger *logging.Logger) *Store {
	return &Store{
		cfg:     cfg,
		logger:  logger.Named("analysis"),
		scanner: NewScanner(cfg, logger),
		persist: persist,
	}
}

// LoadPersisted restores the last saved snapshot, if any, so queries work
// before the first scan of this process.
func (s *Store) LoadPersisted() error {
	if s.persist == nil {
		return nil
	}
	snap, err := s.persist.Load()
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	s.logger.Info("restored persisted snapshot", logging.Fields{
		"id":         snap.ID,
		"files":      len(snap.Files),
		"scanned_at": snap.ScannedAt.Format(time.RFC3339),
	})
	return nil
}

// Current returns the active snapshot, or nil before the first scan.
func (s *Store) Current() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Scanning reports whether a scan is in flight.
func (s *Store) Scanning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanning
}

// Scan runs the pipeline and atomically replaces the current snapshot on
// success. A second concurrent call fails fast with ScanInProgress. On any
// failure, including timeout, the previous snapshot stays active.
func (s *Store) Scan(ctx context.Context, root, subdir string) (*model.Snapshot, error) {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return nil, errors.New(errors.ScanInProgress, "a scan is already running")
	}
	s.scanning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.scanning = false
		s.mu.Unlock()
	}()

	if t := s.cfg.Scan.TimeoutSeconds; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(t)*time.Second)
		defer cancel()
	}

	snap, err := s.scanner.Scan(ctx, root, subdir)
	if err != nil {
		s.logger.Warn("scan failed, previous snapshot retained", logging.Fields{
			"error": err.Error(),
		})
		return nil, err
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.Save(snap); err != nil {
			// The in-memory snapshot is already live; persistence failure
			// only costs durability across restarts.
			s.logger.Warn("snapshot persistence failed", logging.Fields{
				"error": err.Error(),
			})
		}
	}

	return snap, nil
}
