package diskcache

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/kinocache/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	dir := t.TempDir()
	c := NewCache("test", filepath.Join(dir, "index"), filepath.Join(dir, "body"), discardLogger())
	require.NoError(t, c.Open())
	t.Cleanup(func() { c.Close() })
	return c
}

var testTypes = []domain.ItemType{
	domain.ItemTypeMovie,
	domain.ItemTypeEpisode,
	domain.ItemTypeAudio,
	domain.ItemTypeSeries,
	domain.ItemTypeSeason,
	domain.ItemTypeFolder,
}

func genItems(n int) []*domain.Item {
	rng := rand.New(rand.NewSource(42))
	letters := []byte("abcdefghijklmnopqrstuvwxyz ")
	items := make([]*domain.Item, n)
	for i := range items {
		name := make([]byte, rng.Intn(200))
		for j := range name {
			name[j] = letters[rng.Intn(len(letters))]
		}
		var id domain.ID
		rng.Read(id[:])
		items[i] = &domain.Item{
			Type:          testTypes[rng.Intn(len(testTypes))],
			ID:            id,
			Name:          string(name),
			RuntimeTicks:  rng.Int63(),
			PlaybackTicks: rng.Int63n(1000),
		}
	}
	return items
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)

	items := []*domain.Item{
		{Type: domain.ItemTypeMovie, ID: testID(1), Name: "Blade Runner", RuntimeTicks: 70170000000, PlaybackTicks: 30000000000},
		{Type: domain.ItemTypeEpisode, ID: testID(2), Name: ""},
		{Type: domain.ItemTypeAudio, ID: testID(3), Name: "Träumerei", RuntimeTicks: 1},
	}
	for _, it := range items {
		ok, err := c.Add(it)
		require.NoError(t, err)
		require.True(t, ok)
	}

	for i, want := range items {
		got, ok, err := c.Get(i + 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestCacheSequentialIndexing(t *testing.T) {
	c := newTestCache(t)
	items := genItems(500)

	for _, it := range items {
		ok, err := c.Add(it)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.Equal(t, len(items), c.Count())

	// random access in shuffled order
	order := rand.New(rand.NewSource(7)).Perm(len(items))
	for _, i := range order {
		got, ok, err := c.Get(i + 1)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, items[i], got, "record %d", i+1)
	}
}

func TestCacheGetReturnsFreshItems(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Add(&domain.Item{Type: domain.ItemTypeMovie, Name: "Solaris"})
	require.NoError(t, err)

	a, _, err := c.Get(1)
	require.NoError(t, err)
	b, _, err := c.Get(1)
	require.NoError(t, err)

	require.NotSame(t, a, b)
	a.Name = "changed"
	assert.Equal(t, "Solaris", b.Name)
}

func TestCacheChildrenNotStored(t *testing.T) {
	c := newTestCache(t)
	parent := &domain.Item{
		Type:     domain.ItemTypeSeries,
		Name:     "Twin Peaks",
		Children: []*domain.Item{{Type: domain.ItemTypeSeason, Name: "Season 1"}},
	}
	_, err := c.Add(parent)
	require.NoError(t, err)

	got, ok, err := c.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, got.Children)
	assert.Equal(t, "Twin Peaks", got.Name)
}

func TestCacheBounds(t *testing.T) {
	c := newTestCache(t)

	check := func() {
		t.Helper()
		for _, n := range []int{-1, 0, c.Count() + 1, c.Count() + 100} {
			item, ok, err := c.Get(n)
			assert.NoError(t, err)
			assert.False(t, ok, "Get(%d)", n)
			assert.Nil(t, item)
			assert.Equal(t, domain.ItemTypeNone, c.GetType(n), "GetType(%d)", n)
		}
	}

	check()
	for _, it := range genItems(3) {
		_, err := c.Add(it)
		require.NoError(t, err)
	}
	check()
}

func TestCacheRejects(t *testing.T) {
	c := newTestCache(t)

	ok, err := c.Add(nil)
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Add(&domain.Item{Type: domain.ItemTypeMovie, Name: "bad\x00name"})
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 0, c.Count())
	_, body := c.Paths()
	st, err := os.Stat(body)
	require.NoError(t, err)
	assert.Zero(t, st.Size())
}

func TestCacheOffsetsIncreasing(t *testing.T) {
	c := newTestCache(t)
	items := genItems(50)
	items[10].Name = ""
	for _, it := range items {
		_, err := c.Add(it)
		require.NoError(t, err)
	}

	index, _ := c.Paths()
	st, err := os.Stat(index)
	require.NoError(t, err)
	assert.Equal(t, int64(len(items)*offsetWidth), st.Size())

	var prev int64 = -1
	for n := 1; n <= c.Count(); n++ {
		off, err := c.index.read(n)
		require.NoError(t, err)
		assert.Greater(t, off, prev)
		prev = off
	}
	first, err := c.index.read(1)
	require.NoError(t, err)
	assert.Zero(t, first)
}

func TestCacheGetTypeMatchesGet(t *testing.T) {
	c := newTestCache(t)
	for _, it := range genItems(100) {
		_, err := c.Add(it)
		require.NoError(t, err)
	}
	for n := 1; n <= c.Count(); n++ {
		item, ok, err := c.Get(n)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, item.Type, c.GetType(n), "record %d", n)
	}
}

func TestCacheOpenTruncates(t *testing.T) {
	c := newTestCache(t)
	for _, it := range genItems(10) {
		_, err := c.Add(it)
		require.NoError(t, err)
	}

	require.NoError(t, c.Open())
	assert.Equal(t, 0, c.Count())
	for n := 1; n <= 10; n++ {
		_, ok, err := c.Get(n)
		assert.NoError(t, err)
		assert.False(t, ok)
	}

	ok, err := c.Add(&domain.Item{Type: domain.ItemTypeMovie, Name: "after"})
	require.NoError(t, err)
	require.True(t, ok)
	got, _, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Name)
}

func TestCacheClosed(t *testing.T) {
	dir := t.TempDir()
	c := NewCache("closed", filepath.Join(dir, "i"), filepath.Join(dir, "b"), discardLogger())
	assert.False(t, c.IsOpen())

	ok, err := c.Add(&domain.Item{Name: "x"})
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, ok)

	_, ok, err = c.Get(1)
	assert.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Open())
	assert.True(t, c.IsOpen())
	_, err = c.Add(&domain.Item{Name: "x"})
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.False(t, c.IsOpen())
	assert.Equal(t, 0, c.Count())
	assert.NoError(t, c.Close())
}

func TestCacheCloseReleasesScratch(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Add(&domain.Item{Type: domain.ItemTypeMovie, Name: "Stalker"})
	require.NoError(t, err)
	_, _, err = c.Get(1)
	require.NoError(t, err)
	require.Positive(t, c.scratch.Cap())
	require.NotNil(t, c.encoded)

	require.NoError(t, c.Close())
	assert.Zero(t, c.scratch.Cap())
	assert.Nil(t, c.encoded)

	// reopening works with fresh scratch space
	require.NoError(t, c.Load())
	got, ok, err := c.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Stalker", got.Name)
}

func TestCacheLoad(t *testing.T) {
	c := newTestCache(t)
	items := genItems(40)
	for _, it := range items[:30] {
		_, err := c.Add(it)
		require.NoError(t, err)
	}
	require.NoError(t, c.Close())

	require.NoError(t, c.Load())
	require.Equal(t, 30, c.Count())
	for _, it := range items[30:] {
		_, err := c.Add(it)
		require.NoError(t, err)
	}
	require.Equal(t, 40, c.Count())

	for i, want := range items {
		got, ok, err := c.Get(i + 1)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestCacheLoadOrphanBodyTail(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Add(&domain.Item{Type: domain.ItemTypeMovie, Name: "kept"})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	// an add interrupted after the body write
	_, bodyPath := c.Paths()
	f, err := os.OpenFile(bodyPath, os.O_WRONLY|os.O_APPEND, 0600)
	require.NoError(t, err)
	_, err = f.Write(appendRecord(nil, &domain.Item{Name: "orphan"}))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, c.Load())
	require.Equal(t, 1, c.Count())
	_, err = c.Add(&domain.Item{Type: domain.ItemTypeEpisode, Name: "next"})
	require.NoError(t, err)

	got, _, err := c.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "next", got.Name)
	got, _, err = c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Name)
}

func TestCacheLoadCorrupt(t *testing.T) {
	tests := []struct {
		name  string
		index func(path string) error
	}{
		{
			name: "partial entry",
			index: func(path string) error {
				return os.Truncate(path, offsetWidth+3)
			},
		},
		{
			name: "offset past body",
			index: func(path string) error {
				f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0600)
				if err != nil {
					return err
				}
				defer f.Close()
				var b [offsetWidth]byte
				byteOrder.PutUint64(b[:], 1<<30)
				_, err = f.Write(b[:])
				return err
			},
		},
		{
			name: "offsets not increasing",
			index: func(path string) error {
				f, err := os.OpenFile(path, os.O_WRONLY, 0600)
				if err != nil {
					return err
				}
				defer f.Close()
				var b [offsetWidth]byte
				_, err = f.WriteAt(b[:], offsetWidth)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache(t)
			for _, it := range genItems(2) {
				_, err := c.Add(it)
				require.NoError(t, err)
			}
			require.NoError(t, c.Close())

			indexPath, _ := c.Paths()
			require.NoError(t, tt.index(indexPath))

			err := c.Load()
			assert.ErrorIs(t, err, ErrCorrupt)
			assert.False(t, c.IsOpen())
		})
	}
}

func TestCacheLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	c := NewCache("missing", filepath.Join(dir, "i"), filepath.Join(dir, "b"), discardLogger())
	err := c.Load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCacheBadIndexEntry(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Add(&domain.Item{Type: domain.ItemTypeMovie, Name: "x"})
	require.NoError(t, err)
	require.NoError(t, c.index.write(1, 1<<20))

	assert.Equal(t, domain.ItemTypeNone, c.GetType(1))
	_, ok, err := c.Get(1)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestCacheRemove(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Add(&domain.Item{Name: "gone"})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	require.NoError(t, c.Remove())
	index, body := c.Paths()
	for _, p := range []string{index, body} {
		_, err := os.Stat(p)
		assert.ErrorIs(t, err, os.ErrNotExist, p)
	}
	// already gone
	assert.NoError(t, c.Remove())
}

func BenchmarkCacheGet(b *testing.B) {
	dir := b.TempDir()
	c := NewCache("bench", filepath.Join(dir, "index"), filepath.Join(dir, "body"), discardLogger())
	if err := c.Open(); err != nil {
		b.Fatal(err)
	}
	defer c.Close()
	for i := 0; i < 1000; i++ {
		if _, err := c.Add(&domain.Item{Type: domain.ItemTypeEpisode, Name: fmt.Sprintf("Episode %d", i)}); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := c.Get(i%1000 + 1); err != nil {
			b.Fatal(err)
		}
	}
}
