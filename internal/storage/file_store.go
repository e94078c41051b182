package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"sessionstate/internal/storage/interfaces"
	"sessionstate/internal/structures"
)

// ErrCorruptBlob is returned by FileStore.Read when the file exists but its
// compression frame cannot be opened.
var ErrCorruptBlob = errors.New("corrupt blob")

// FileStore keeps the blob in a single file. Writes go to <path>.tmp, are
// fsynced, and replace the file with a rename, so readers only ever see a
// complete blob.
type FileStore struct {
	mu         sync.RWMutex
	path       string
	compressor interfaces.CompressorInterface
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	out, err := s.compressor.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptBlob, s.path, err)
	}
	// nil means no file; an existing empty blob stays non-nil.
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

// Write replaces the blob. If ctx is cancelled before the rename the old
// file is left as it was.
func (s *FileStore) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	compressed, err := s.compressor.Compress(data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	tmpFile := s.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(compressed)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = ctx.Err(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, s.path)
}

func (s *FileStore) Close() {
	s.compressor.Close()
}

func NewFileStore(path string, compressor interfaces.CompressorInterface) *FileStore {
	return &FileStore{path: path, compressor: compressor}
}

// NewConfiguredFileStore builds the store described by conf.Store.
func NewConfiguredFileStore(conf *structures.Config, compressor interfaces.CompressorInterface) interfaces.BlobStoreInterface {
	return NewFileStore(conf.Store.FilePath, compressor)
}
