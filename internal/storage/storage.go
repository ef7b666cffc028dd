// Package storage persists analysis snapshots as an opaque durable blob so a
// restarted server can answer queries without rescanning. The blob is
// zstd-compressed JSON written atomically via a temp-file rename.
package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"codeatlas/internal/errors"
	"codeatlas/internal/logging"
	"codeatlas/internal/model"
)

// SnapshotStore loads and saves the current snapshot.
type SnapshotStore interface {
	// Load returns the persisted snapshot, or (nil, nil) when none exists.
	Load() (*model.Snapshot, error)
	// Save replaces the persisted snapshot.
	Save(snap *model.Snapshot) error
}

const snapshotFileName = "snapshot.json.zst"

// FileStore is the default SnapshotStore, writing under <root>/.codeatlas/.
type FileStore struct {
	dir    string
	logger *logging.Logger
}

// NewFileStore creates a FileStore rooted at repoRoot.
func NewFileStore(repoRoot string, logger *logging.Logger) *FileStore {
	return &FileStore{
		dir:    filepath.Join(repoRoot, ".codeatlas"),
		logger: logger.Named("storage"),
	}
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, snapshotFileName)
}

// Load reads and decodes the persisted snapshot. A missing file is not an
// error; a corrupt one is.
func (s *FileStore) Load() (*model.Snapshot, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.InternalError, "read snapshot", err)
	}

	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.InternalError, "open snapshot decoder", err)
	}
	defer dec.Close()

	var snap model.Snapshot
	if err := json.NewDecoder(dec).Decode(&snap); err != nil {
		return nil, errors.Wrap(errors.InternalError, "decode snapshot", err)
	}

	s.logger.Debug("snapshot loaded", logging.Fields{
		"id":    snap.ID,
		"files": len(snap.Files),
	})
	return &snap, nil
}

// Save encodes and writes the snapshot atomically: encode to a temp file in
// the same directory, then rename over the target.
func (s *FileStore) Save(snap *model.Snapshot) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return errors.Wrap(errors.InternalError, "create storage dir", err)
	}

	tmp, err := os.CreateTemp(s.dir, snapshotFileName+".tmp-*")
	if err != nil {
		return errors.Wrap(errors.InternalError, "create temp snapshot", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return errors.Wrap(errors.InternalError, "open snapshot encoder", err)
	}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		enc.Close()
		tmp.Close()
		return errors.Wrap(errors.InternalError, "encode snapshot", err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return errors.Wrap(errors.InternalError, "flush snapshot encoder", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.InternalError, "close temp snapshot", err)
	}

	if err := os.Rename(tmpName, s.Path()); err != nil {
		return errors.Wrap(errors.InternalError, "replace snapshot", err)
	}

	s.logger.Debug("snapshot saved", logging.Fields{
		"id":    snap.ID,
		"files": len(snap.Files),
	})
	return nil
}
