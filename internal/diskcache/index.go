package diskcache

import (
	"fmt"
	"os"
)

// offsetWidth is the size of one index entry: the body offset of a record
const offsetWidth = 8

// offsetIndex is the index file: a headerless array of body offsets,
// entry n (1-based) holding where record n starts
type offsetIndex struct {
	file *os.File
}

func entryPos(n int) int64 {
	return int64(n-1) * offsetWidth
}

// write stores the offset of record n
func (x offsetIndex) write(n int, off int64) error {
	var b [offsetWidth]byte
	byteOrder.PutUint64(b[:], uint64(off))
	if _, err := x.file.WriteAt(b[:], entryPos(n)); err != nil {
		return fmt.Errorf("write index entry %d: %w", n, err)
	}
	return nil
}

// read returns the offset of record n
func (x offsetIndex) read(n int) (int64, error) {
	var b [offsetWidth]byte
	if _, err := x.file.ReadAt(b[:], entryPos(n)); err != nil {
		return 0, corrupt(fmt.Sprintf("read index entry %d", n), err)
	}
	return int64(byteOrder.Uint64(b[:])), nil
}

// entries derives the number of stored entries from the file length
func (x offsetIndex) entries() (int, error) {
	st, err := x.file.Stat()
	if err != nil {
		return 0, err
	}
	if st.Size()%offsetWidth != 0 {
		return 0, corrupt("index length", fmt.Errorf("%d bytes is not a multiple of %d", st.Size(), offsetWidth))
	}
	return int(st.Size() / offsetWidth), nil
}
