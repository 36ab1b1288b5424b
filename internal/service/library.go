package service

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/kinocache/internal/domain"
)

// LibraryService moves listings into the disk cache and builds the playback
// queue from them. All reads go through the cache; nothing is held in memory.
type LibraryService struct {
	cache  domain.CacheStore
	logger *slog.Logger
}

// NewLibraryService creates a new library service
func NewLibraryService(cache domain.CacheStore, logger *slog.Logger) *LibraryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryService{
		cache:  cache,
		logger: logger,
	}
}

// Load replaces the cached listing (and the queue) with items
func (s *LibraryService) Load(items []*domain.Item, onProgress domain.ProgressFunc) error {
	start := time.Now()
	if err := s.cache.Refresh(); err != nil {
		return fmt.Errorf("failed to refresh cache: %w", err)
	}

	skipped := 0
	for i, item := range items {
		ok, err := s.cache.PayloadAdd(item)
		if err != nil {
			return fmt.Errorf("failed to cache item %d: %w", i+1, err)
		}
		if !ok {
			skipped++
		}
		if onProgress != nil {
			onProgress(i+1, len(items))
		}
	}

	s.logger.Info("loaded listing",
		"items", s.cache.PayloadCount(),
		"skipped", skipped,
		"duration", time.Since(start))
	return nil
}

// Count returns the number of items in the current listing
func (s *LibraryService) Count() int {
	return s.cache.PayloadCount()
}

// Item returns listing item n
func (s *LibraryService) Item(n int) (*domain.Item, error) {
	item, ok, err := s.cache.PayloadGet(n)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: listing item %d", domain.ErrItemNotFound, n)
	}
	return item, nil
}

// ItemType returns the type of listing item n without decoding the whole record
func (s *LibraryService) ItemType(n int) domain.ItemType {
	return s.cache.PayloadGetType(n)
}

// Items returns the whole listing in order
func (s *LibraryService) Items() ([]*domain.Item, error) {
	return collect(s.cache.PayloadCount(), s.cache.PayloadGet)
}

// Names returns the listing names in order
func (s *LibraryService) Names() ([]string, error) {
	items, err := s.Items()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names, nil
}

// Search returns the numbers of listing items whose names fuzzy-match query, best first
func (s *LibraryService) Search(query string) ([]int, error) {
	if query == "" {
		return nil, nil
	}
	names, err := s.Names()
	if err != nil {
		return nil, err
	}

	matches := fuzzy.RankFindFold(query, names)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].OriginalIndex < matches[j].OriginalIndex
	})

	results := make([]int, len(matches))
	for i, m := range matches {
		results[i] = m.OriginalIndex + 1
	}
	return results, nil
}

// Enqueue appends listing item n to the playback queue.
// Returns false if n is out of range or the item is a container.
func (s *LibraryService) Enqueue(n int) (bool, error) {
	item, ok, err := s.cache.PayloadGet(n)
	if err != nil || !ok {
		return false, err
	}
	ok, err = s.cache.PlaylistAdd(item)
	if err != nil {
		return false, fmt.Errorf("failed to queue item %d: %w", n, err)
	}
	if ok {
		s.logger.Debug("queued item", "item", n, "name", item.Name)
	}
	return ok, nil
}

// EnqueueFrom appends every playable listing item from n to the end of the
// listing, skipping containers. Returns how many were queued.
func (s *LibraryService) EnqueueFrom(n int) (int, error) {
	if n < 1 {
		n = 1
	}
	queued := 0
	for i := n; i <= s.cache.PayloadCount(); i++ {
		// cheap type check first so containers are never decoded
		if s.cache.PayloadGetType(i).IsFolder() {
			continue
		}
		ok, err := s.Enqueue(i)
		if err != nil {
			return queued, err
		}
		if ok {
			queued++
		}
	}
	return queued, nil
}

// QueueCount returns the number of queued items
func (s *LibraryService) QueueCount() int {
	return s.cache.PlaylistCount()
}

// Queue returns the playback queue in order
func (s *LibraryService) Queue() ([]*domain.Item, error) {
	return collect(s.cache.PlaylistCount(), s.cache.PlaylistGet)
}

// QueueItem returns queue entry n
func (s *LibraryService) QueueItem(n int) (*domain.Item, error) {
	item, ok, err := s.cache.PlaylistGet(n)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: queue item %d", domain.ErrItemNotFound, n)
	}
	return item, nil
}

// QueueRemaining returns the time left to play the whole queue,
// taking resume positions into account
func (s *LibraryService) QueueRemaining() (time.Duration, error) {
	var total time.Duration
	for n := 1; n <= s.cache.PlaylistCount(); n++ {
		item, _, err := s.cache.PlaylistGet(n)
		if err != nil {
			return 0, err
		}
		if left := item.Runtime() - item.PlaybackPosition(); left > 0 {
			total += left
		}
	}
	return total, nil
}

// collect reads records 1..count through get
func collect(count int, get func(int) (*domain.Item, bool, error)) ([]*domain.Item, error) {
	items := make([]*domain.Item, 0, count)
	for n := 1; n <= count; n++ {
		item, ok, err := get(n)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		items = append(items, item)
	}
	return items, nil
}
