// Package cache keeps small JSON values on disk for a fixed time.
//
// Each Store is one file under the cache directory. Disable every store with
// PURE360_NO_CACHE=1.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const envNoCache = "PURE360_NO_CACHE"

type entry struct {
	CachedAt time.Time       `json:"cached_at"`
	Value    json.RawMessage `json:"value"`
}

// Store reads and writes a single cached value.
type Store struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

// NewStore returns a Store for key under dir whose values expire after ttl.
func NewStore(dir, key string, ttl time.Duration) *Store {
	return &Store{
		path: filepath.Join(dir, sanitizeKey(key)+".json"),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// Get loads the cached value into dst. Returns false on miss (no file,
// expired, unreadable or disabled).
func (s *Store) Get(dst any) bool {
	if disabled() {
		return false
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	if s.now().Sub(e.CachedAt) > s.ttl {
		return false
	}
	return json.Unmarshal(e.Value, dst) == nil
}

// Put writes value to the cache. Failures are ignored.
func (s *Store) Put(value any) {
	if disabled() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	data, err := json.Marshal(entry{CachedAt: s.now(), Value: raw})
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return
	}

	// Write then rename so readers never see a partial file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return
	}
	_ = os.Rename(tmp, s.path)
}

// Clear removes the cache file.
func (s *Store) Clear() {
	_ = os.Remove(s.path)
}

// DefaultDir returns "$XDG_CACHE_HOME/pure360-cli" or the platform equivalent.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "pure360-cli"), nil
}

func disabled() bool {
	return os.Getenv(envNoCache) != ""
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "cache"
	}
	return strings.NewReplacer("/", "-", "\\", "-").Replace(key)
}
