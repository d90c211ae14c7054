package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/SofiSoft/sofisoft-admin/internal/port/outbound"
)

// FileKVStore is an outbound.KVStore backed by a single JSON file.
// It provides atomic writes (write-tmp-then-rename), automatic backups and
// file locking (flock for cross-process, mutex for in-process).
type FileKVStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

var _ outbound.KVStore = (*FileKVStore)(nil)

// NewFileKVStore creates a new FileKVStore for the given file path.
func NewFileKVStore(path string, logger *slog.Logger) *FileKVStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileKVStore{
		path:   path,
		logger: logger,
	}
}

// Get returns the record stored under key.
func (s *FileKVStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := st.Records[key]
	return v, ok, nil
}

// Set stores value under key and writes the file.
func (s *FileKVStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	st.Records[key] = value
	return s.save(st)
}

// load reads and parses the state file.
// A missing file is an empty store. A malformed file is also treated as empty:
// the client store never fails a caller over unreadable local state.
// Warns if the existing file has permissions more open than 0600.
func (s *FileKVStore) load() (*StateFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.defaultState(), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	// Skip on Windows where Unix file permission bits are not supported.
	if runtime.GOOS != "windows" {
		if info, statErr := os.Stat(s.path); statErr == nil {
			mode := info.Mode().Perm()
			if mode&0077 != 0 {
				s.logger.Warn("state file has too-open permissions, should be 0600",
					"path", s.path, "current_mode", fmt.Sprintf("%04o", mode))
			}
		}
	}

	var st StateFile
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("state file is not valid JSON, starting empty", "path", s.path, "error", err)
		return s.defaultState(), nil
	}
	if st.Records == nil {
		st.Records = map[string]string{}
	}
	return &st, nil
}

// lock acquires the cross-process file lock on path+".lock".
func (s *FileKVStore) lock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	lockPath := s.path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := flockLock(lockFile.Fd()); err != nil {
		_ = lockFile.Close()
		return nil, fmt.Errorf("acquire file lock: %w", err)
	}
	return func() {
		_ = flockUnlock(lockFile.Fd())
		_ = lockFile.Close()
	}, nil
}

// save writes the state to disk atomically. Callers hold both locks.
//
// The write sequence is:
//  1. Copy current file to path+".bak" (ignored if no current file)
//  2. Marshal state as indented JSON
//  3. Write to path+".tmp" with 0600 permissions
//  4. Fsync the temp file
//  5. Rename path+".tmp" -> path
func (s *FileKVStore) save(st *StateFile) error {
	st.UpdatedAt = time.Now().UTC()

	if currentData, readErr := os.ReadFile(s.path); readErr == nil {
		bakPath := s.path + ".bak"
		if writeErr := os.WriteFile(bakPath, currentData, 0600); writeErr != nil {
			s.logger.Warn("failed to create backup", "error", writeErr)
		}
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	data = append(data, '\n')

	if err := s.writeAtomic(data); err != nil {
		return err
	}

	if err := os.Chmod(s.path, 0600); err != nil {
		s.logger.Warn("failed to set permissions on state file", "error", err)
	}

	s.logger.Debug("state saved", "path", s.path)
	return nil
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it
// over the target path. On any error the temp file is cleaned up.
func (s *FileKVStore) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp to state: %w", err)
	}
	return nil
}

func (s *FileKVStore) defaultState() *StateFile {
	now := time.Now().UTC()
	return &StateFile{
		Version:   "1",
		Records:   map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Path returns the configured file path.
func (s *FileKVStore) Path() string {
	return s.path
}
