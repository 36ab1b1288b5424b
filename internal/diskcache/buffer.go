package diskcache

const (
	minBufferSize = 64

	// Reset drops buffers that grew past this so a single huge name
	// does not pin memory for the rest of the session
	maxRetainedBufferSize = 1024 * 1024
)

// Buffer is a growable byte accumulator, reused across decodes.
// The zero value is ready to use.
type Buffer struct {
	buf []byte
}

// NewBuffer returns a buffer with at least size bytes of capacity
func NewBuffer(size int) *Buffer {
	if size < minBufferSize {
		size = minBufferSize
	}
	return &Buffer{buf: make([]byte, 0, size)}
}

// grow makes room for n more bytes, doubling capacity as needed
func (b *Buffer) grow(n int) {
	need := len(b.buf) + n
	if need <= cap(b.buf) {
		return
	}
	newCap := cap(b.buf)
	if newCap < minBufferSize {
		newCap = minBufferSize
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]byte, len(b.buf), newCap)
	copy(grown, b.buf)
	b.buf = grown
}

// Append copies p onto the end of the buffer
func (b *Buffer) Append(p []byte) {
	b.grow(len(p))
	b.buf = append(b.buf, p...)
}

// AppendByte appends a single byte
func (b *Buffer) AppendByte(c byte) {
	b.grow(1)
	b.buf = append(b.buf, c)
}

// Reset empties the buffer and keeps its capacity for reuse
func (b *Buffer) Reset() {
	if cap(b.buf) > maxRetainedBufferSize {
		b.buf = nil
		return
	}
	b.buf = b.buf[:0]
}

// Release drops the backing array. The buffer stays usable and grows again on demand.
func (b *Buffer) Release() {
	b.buf = nil
}

// Bytes returns the current content. Valid until the next Append or Reset.
func (b *Buffer) Bytes() []byte { return b.buf }

// String returns a copy of the current content
func (b *Buffer) String() string { return string(b.buf) }

// Len returns the number of bytes held
func (b *Buffer) Len() int { return len(b.buf) }

// Cap returns the current capacity
func (b *Buffer) Cap() int { return cap(b.buf) }
