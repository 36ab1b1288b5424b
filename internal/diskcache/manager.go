package diskcache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mmcdole/kinocache/internal/domain"
)

// File names under the runtime directory
const (
	PayloadIndexFile  = "payload_index"
	PayloadBodyFile   = "payload_body"
	PlaylistIndexFile = "playlist_index"
	PlaylistBodyFile  = "playlist_body"
)

// Manager owns the payload cache (the listing currently shown) and the
// playlist cache (playable items queued for playback) of one runtime directory.
// Only one process may use a runtime directory at a time.
type Manager struct {
	runtimeDir string
	logger     *slog.Logger

	// nil until Init or Recover
	payload  *Cache
	playlist *Cache

	// cache files that already existed when Init ran
	stale []string
}

// NewManager returns a manager for runtimeDir. Nothing touches the disk until Init.
func NewManager(runtimeDir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		runtimeDir: runtimeDir,
		logger:     logger,
	}
}

// RuntimeDir returns the directory holding the cache files
func (m *Manager) RuntimeDir() string {
	return m.runtimeDir
}

// setup derives the cache file paths, creating the runtime directory if create is set
func (m *Manager) setup(create bool) error {
	if m.runtimeDir == "" {
		return domain.ErrNoRuntimeDir
	}
	if err := m.Close(); err != nil {
		return err
	}
	if create {
		if err := os.MkdirAll(m.runtimeDir, 0700); err != nil {
			return fmt.Errorf("failed to create runtime directory: %w", err)
		}
	} else if _, err := os.Stat(m.runtimeDir); err != nil {
		return fmt.Errorf("runtime directory: %w", err)
	}
	m.payload = NewCache("payload",
		filepath.Join(m.runtimeDir, PayloadIndexFile),
		filepath.Join(m.runtimeDir, PayloadBodyFile),
		m.logger)
	m.playlist = NewCache("playlist",
		filepath.Join(m.runtimeDir, PlaylistIndexFile),
		filepath.Join(m.runtimeDir, PlaylistBodyFile),
		m.logger)
	return nil
}

func (m *Manager) paths() []string {
	var paths []string
	for _, c := range []*Cache{m.payload, m.playlist} {
		if c == nil {
			continue
		}
		index, body := c.Paths()
		paths = append(paths, index, body)
	}
	return paths
}

// Init prepares the runtime directory and opens both caches empty.
// Cache files that already exist mean another session used the same
// directory; that is reported through StaleFiles and a warning, not an error.
func (m *Manager) Init() error {
	if err := m.setup(true); err != nil {
		return err
	}

	m.stale = nil
	for _, path := range m.paths() {
		if _, err := os.Lstat(path); err == nil {
			m.stale = append(m.stale, path)
		}
	}
	if len(m.stale) > 0 {
		m.logger.Warn("found cache files from another session; concurrent instances need distinct runtime directories",
			"runtime_dir", m.runtimeDir, "files", m.stale)
	}

	return m.openAll((*Cache).Open)
}

// Recover opens both caches on the files an earlier session left behind,
// keeping their records. Nothing is created: a missing runtime directory or
// cache file is an error.
func (m *Manager) Recover() error {
	if err := m.setup(false); err != nil {
		return err
	}
	m.stale = nil
	return m.openAll((*Cache).Load)
}

// Refresh reopens both caches, discarding every record
func (m *Manager) Refresh() error {
	if m.payload == nil {
		return ErrClosed
	}
	return m.openAll((*Cache).Open)
}

func (m *Manager) openAll(open func(*Cache) error) error {
	if err := open(m.payload); err != nil {
		return err
	}
	if err := open(m.playlist); err != nil {
		m.payload.Close()
		return err
	}
	return nil
}

// StaleFiles lists the cache files that already existed when Init ran
func (m *Manager) StaleFiles() []string {
	return m.stale
}

// Close closes both caches and leaves their files in place
func (m *Manager) Close() error {
	var errs []error
	for _, c := range []*Cache{m.payload, m.playlist} {
		if c == nil {
			continue
		}
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Clear closes both caches and deletes their files. It is best effort:
// failures are logged and returned joined, and it is safe to call before Init.
func (m *Manager) Clear() error {
	var errs []error
	for _, c := range []*Cache{m.payload, m.playlist} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			m.logger.Warn("failed to close cache", "error", err)
			errs = append(errs, err)
		}
		if err := c.Remove(); err != nil {
			m.logger.Warn("failed to remove cache files", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// === Payload ===

// PayloadAdd appends item to the payload cache. A nil item is rejected with false.
func (m *Manager) PayloadAdd(item *domain.Item) (bool, error) {
	if item == nil {
		return false, nil
	}
	if m.payload == nil {
		return false, ErrClosed
	}
	return m.payload.Add(item)
}

// PayloadGet returns payload record n, or false if n is out of range
func (m *Manager) PayloadGet(n int) (*domain.Item, bool, error) {
	if m.payload == nil {
		return nil, false, nil
	}
	return m.payload.Get(n)
}

// PayloadGetType returns the type of payload record n, ItemTypeNone if unavailable
func (m *Manager) PayloadGetType(n int) domain.ItemType {
	if m.payload == nil {
		return domain.ItemTypeNone
	}
	return m.payload.GetType(n)
}

// PayloadCount returns the number of payload records
func (m *Manager) PayloadCount() int {
	if m.payload == nil {
		return 0
	}
	return m.payload.Count()
}

// === Playlist ===

// PlaylistAdd appends item to the playlist cache.
// Nil items and containers (folders, series, seasons...) are rejected with false.
func (m *Manager) PlaylistAdd(item *domain.Item) (bool, error) {
	if item == nil || item.Type.IsFolder() {
		return false, nil
	}
	if m.playlist == nil {
		return false, ErrClosed
	}
	return m.playlist.Add(item)
}

// PlaylistGet returns playlist record n, or false if n is out of range
func (m *Manager) PlaylistGet(n int) (*domain.Item, bool, error) {
	if m.playlist == nil {
		return nil, false, nil
	}
	return m.playlist.Get(n)
}

// PlaylistCount returns the number of playlist records
func (m *Manager) PlaylistCount() int {
	if m.playlist == nil {
		return 0
	}
	return m.playlist.Count()
}

var _ domain.CacheStore = (*Manager)(nil)
