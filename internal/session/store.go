// Package session holds the locally persisted credential record: the
// username, email, and bearer token written on login/signup and cleared
// on logout. It is the only state shared between the auth flow and the
// gateway's outgoing-request authorization.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Record is the single key-value record the app persists. A zero
// AccessToken means unauthenticated.
type Record struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

// Store abstracts credential persistence. Save must be atomic at the
// record granularity: readers never observe a partially written record.
type Store interface {
	Load() (Record, error)
	Save(rec Record) error
	Clear() error
}

// Token reads the current bearer token from s, swallowing load errors.
// Used by the gateway's authorizing transport, which must not fail a
// request over a missing token.
func Token(s Store) string {
	rec, err := s.Load()
	if err != nil {
		return ""
	}
	return rec.AccessToken
}

// MemoryStore is a mutex-guarded in-memory Store, used in tests and by
// callers that do not want credentials on disk.
type MemoryStore struct {
	mu  sync.RWMutex
	rec Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rec, nil
}

func (m *MemoryStore) Save(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = Record{}
	return nil
}

// FileStore persists the record as JSON in a single file. Writes go
// through a temp file followed by rename, so concurrent readers see
// either the old or the new record, never a torn one.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a FileStore writing to path. The parent directory
// is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("read session file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parse session file: %w", err)
	}
	return rec, nil
}

func (f *FileStore) Save(rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(rec)
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(Record{})
}

func (f *FileStore) write(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("commit session file: %w", err)
	}
	return nil
}
