package diskcache

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/mmcdole/kinocache/internal/domain"
)

// Record layout in the body file:
//
//	[type:1][id:16][name bytes][0x00][runtime_ticks:8][playback_ticks:8]
//
// Integers use the machine's native byte order; cache files never leave
// the machine that wrote them.
var byteOrder = binary.NativeEndian

const (
	typeWidth      = 1
	idWidth        = domain.IDSize
	ticksWidth     = 8
	nameTerminator = 0x00

	headerWidth  = typeWidth + idWidth
	trailerWidth = 2 * ticksWidth

	// smallest possible record: empty name, terminator only
	minRecordSize = headerWidth + 1 + trailerWidth
)

// appendRecord appends the encoding of item to dst
func appendRecord(dst []byte, item *domain.Item) []byte {
	dst = append(dst, byte(item.Type))
	dst = append(dst, item.ID[:]...)
	dst = append(dst, item.Name...)
	dst = append(dst, nameTerminator)
	dst = byteOrder.AppendUint64(dst, uint64(item.RuntimeTicks))
	dst = byteOrder.AppendUint64(dst, uint64(item.PlaybackTicks))
	return dst
}

// decodeRecord reads one record from r, which must be positioned at its
// first byte. The name length is not stored, so it is found by scanning for
// the terminator; buf collects the name bytes on the way.
func decodeRecord(r *bufio.Reader, buf *Buffer) (*domain.Item, error) {
	var hdr [headerWidth]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, corrupt("read record header", err)
	}

	item := &domain.Item{Type: domain.ItemType(hdr[0])}
	copy(item.ID[:], hdr[typeWidth:])

	buf.Reset()
	for {
		c, err := r.ReadByte()
		if err != nil {
			return nil, corrupt("read record name", err)
		}
		if c == nameTerminator {
			break
		}
		buf.AppendByte(c)
	}
	item.Name = buf.String()

	var trailer [trailerWidth]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		return nil, corrupt("read record ticks", err)
	}
	item.RuntimeTicks = int64(byteOrder.Uint64(trailer[:ticksWidth]))
	item.PlaybackTicks = int64(byteOrder.Uint64(trailer[ticksWidth:]))

	return item, nil
}

// decodeType reads only the type byte of the record r is positioned at
func decodeType(r io.Reader) (domain.ItemType, error) {
	var b [typeWidth]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return domain.ItemTypeNone, corrupt("read record type", err)
	}
	return domain.ItemType(b[0]), nil
}
