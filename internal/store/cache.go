package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jeryldev/pyworks/internal/domain"
)

const (
	envsFile  = "envs.json" // map[string]envRecord keyed by project root
	probesDir = "probes"    // one <fingerprint>.json per probe result
)

type envRecord struct {
	SavedAt int64                `json:"saved_at"`
	Envs    []domain.Environment `json:"envs"`
}

type probeRecord struct {
	SavedAt   int64           `json:"saved_at"`
	Installed map[string]bool `json:"installed"`
}

// FileStore persists detection caches as JSON files under a single directory.
// Staleness is judged by callers from the saved-at timestamps.
type FileStore struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

// ---------- Environments ----------

func (s *FileStore) SaveEnvironments(root string, envs []domain.Environment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	m := make(map[string]envRecord)
	_ = readJSON(filepath.Join(s.dir, envsFile), &m)

	m[root] = envRecord{SavedAt: s.now().Unix(), Envs: envs}
	return writeJSON(filepath.Join(s.dir, envsFile), m, 0o600)
}

func (s *FileStore) LoadEnvironments(root string) (envs []domain.Environment, savedAt time.Time, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]envRecord)
	if err = readJSON(filepath.Join(s.dir, envsFile), &m); err != nil {
		return nil, time.Time{}, false, err
	}
	rec, exists := m[root]
	if !exists {
		return nil, time.Time{}, false, nil
	}
	return rec.Envs, time.Unix(rec.SavedAt, 0), true, nil
}

// ---------- Probe results ----------

func (s *FileStore) SaveProbe(fingerprint string, installed map[string]bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.dir, probesDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	rec := probeRecord{SavedAt: s.now().Unix(), Installed: installed}
	return writeJSON(filepath.Join(dir, fingerprint+".json"), rec, 0o600)
}

func (s *FileStore) LoadProbe(fingerprint string) (installed map[string]bool, savedAt time.Time, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(filepath.Join(s.dir, probesDir, fingerprint+".json"))
	if err != nil {
		return nil, time.Time{}, false, err
	}
	if b == nil {
		return nil, time.Time{}, false, nil
	}
	var rec probeRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, time.Time{}, false, err
	}
	return rec.Installed, time.Unix(rec.SavedAt, 0), true, nil
}

// ---------- Maintenance ----------

// Clear drops every cached record but keeps the cache directory itself.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.dir, envsFile)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.RemoveAll(filepath.Join(s.dir, probesDir))
}

var _ domain.CacheStore = (*FileStore)(nil)
