package diskcache

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/mmcdole/kinocache/internal/domain"
)

// Cache is one index file + body file pair holding an append-only list of items.
// It is not safe for concurrent use.
type Cache struct {
	name      string
	indexPath string
	bodyPath  string
	logger    *slog.Logger

	// both nil while closed
	index offsetIndex
	body  *os.File

	bodyEnd int64 // append position in the body file
	count   int

	scratch *Buffer // name bytes while decoding
	reader  *bufio.Reader
	encoded []byte
}

// NewCache returns a closed cache backed by the two given files
func NewCache(name, indexPath, bodyPath string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		name:      name,
		indexPath: indexPath,
		bodyPath:  bodyPath,
		logger:    logger.With("cache", name),
		scratch:   NewBuffer(0),
		reader:    bufio.NewReader(nil),
	}
}

// IsOpen returns true if both files are open
func (c *Cache) IsOpen() bool {
	return c.body != nil
}

// Open creates or truncates both files. Anything cached before is gone.
func (c *Cache) Open() error {
	if err := c.Close(); err != nil {
		return err
	}
	return c.open(os.O_RDWR|os.O_CREATE|os.O_TRUNC, false)
}

// Load opens both files without truncating them and picks up the records
// they already hold, e.g. those left behind by a session that did not exit cleanly.
func (c *Cache) Load() error {
	if err := c.Close(); err != nil {
		return err
	}
	return c.open(os.O_RDWR, true)
}

func (c *Cache) open(flag int, existing bool) error {
	index, err := os.OpenFile(c.indexPath, flag, 0600)
	if err != nil {
		return fmt.Errorf("%s: open index: %w", c.name, err)
	}
	body, err := os.OpenFile(c.bodyPath, flag, 0600)
	if err != nil {
		index.Close()
		return fmt.Errorf("%s: open body: %w", c.name, err)
	}
	c.index = offsetIndex{file: index}
	c.body = body
	c.bodyEnd = 0
	c.count = 0

	if !existing {
		return nil
	}
	if err := c.scan(); err != nil {
		c.Close()
		return fmt.Errorf("%s: %w", c.name, err)
	}
	return nil
}

// scan sets count and bodyEnd from files opened by Load and checks that the
// offsets are strictly increasing and leave room for at least one record each
func (c *Cache) scan() error {
	n, err := c.index.entries()
	if err != nil {
		return err
	}
	st, err := c.body.Stat()
	if err != nil {
		return err
	}
	end := st.Size()

	prev := int64(-minRecordSize)
	for i := 1; i <= n; i++ {
		off, err := c.index.read(i)
		if err != nil {
			return err
		}
		if off < prev+minRecordSize || off+minRecordSize > end {
			return corrupt("index", fmt.Errorf("entry %d points at offset %d (previous %d, body size %d)", i, off, prev, end))
		}
		prev = off
	}

	c.count = n
	c.bodyEnd = end
	return nil
}

// Close closes both files and releases the decode and encode scratch space.
// The cache is empty afterwards.
func (c *Cache) Close() error {
	if c.body == nil {
		return nil
	}
	err := errors.Join(c.index.file.Close(), c.body.Close())
	c.index = offsetIndex{}
	c.body = nil
	c.bodyEnd = 0
	c.count = 0
	c.scratch.Release()
	c.reader.Reset(nil)
	c.encoded = nil
	if err != nil {
		return fmt.Errorf("%s: close: %w", c.name, err)
	}
	return nil
}

// Remove deletes both backing files. Files that do not exist are not an error.
func (c *Cache) Remove() error {
	var errs []error
	for _, path := range []string{c.indexPath, c.bodyPath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Paths returns the index and body file paths
func (c *Cache) Paths() (index, body string) {
	return c.indexPath, c.bodyPath
}

// Count returns the number of stored records
func (c *Cache) Count() int {
	return c.count
}

// Add appends item as record Count()+1.
// A nil item, or one whose name holds a NUL byte, is rejected with false.
// Errors mean the files are no longer usable.
func (c *Cache) Add(item *domain.Item) (bool, error) {
	if item == nil {
		return false, nil
	}
	if c.body == nil {
		return false, ErrClosed
	}
	if strings.IndexByte(item.Name, nameTerminator) >= 0 {
		c.logger.Warn("rejecting item with NUL in name", "id", item.ID.String())
		return false, nil
	}

	n := c.count + 1
	start := c.bodyEnd
	c.encoded = appendRecord(c.encoded[:0], item)

	// body before index: an interrupted add leaves unreferenced bytes at the
	// end of the body, never an index entry pointing past it
	if _, err := c.body.WriteAt(c.encoded, start); err != nil {
		return false, fmt.Errorf("%s: write record %d: %w", c.name, n, err)
	}
	c.bodyEnd += int64(len(c.encoded))
	if err := c.index.write(n, start); err != nil {
		return false, fmt.Errorf("%s: %w", c.name, err)
	}

	c.count = n
	return true, nil
}

// section returns a reader over the body starting at record n.
// n must be within [1, Count()].
func (c *Cache) section(n int) (*io.SectionReader, error) {
	off, err := c.index.read(n)
	if err != nil {
		return nil, err
	}
	if off < 0 || off >= c.bodyEnd {
		return nil, corrupt("index", fmt.Errorf("entry %d points at offset %d past body end %d", n, off, c.bodyEnd))
	}
	return io.NewSectionReader(c.body, off, c.bodyEnd-off), nil
}

// Get decodes record n. Out-of-range n (including 0) returns false, not an error.
// Every call returns a newly allocated item.
func (c *Cache) Get(n int) (*domain.Item, bool, error) {
	if n <= 0 || n > c.count {
		return nil, false, nil
	}
	sr, err := c.section(n)
	if err != nil {
		return nil, false, fmt.Errorf("%s: record %d: %w", c.name, n, err)
	}
	c.reader.Reset(sr)
	item, err := decodeRecord(c.reader, c.scratch)
	if err != nil {
		return nil, false, fmt.Errorf("%s: record %d: %w", c.name, n, err)
	}
	return item, true, nil
}

// GetType reads only the type of record n, skipping the name scan.
// Out-of-range n and read failures yield ItemTypeNone.
func (c *Cache) GetType(n int) domain.ItemType {
	if n <= 0 || n > c.count {
		return domain.ItemTypeNone
	}
	sr, err := c.section(n)
	if err != nil {
		c.logger.Warn("could not locate record", "record", n, "error", err)
		return domain.ItemTypeNone
	}
	t, err := decodeType(sr)
	if err != nil {
		c.logger.Warn("could not read record type", "record", n, "error", err)
		return domain.ItemTypeNone
	}
	return t
}
