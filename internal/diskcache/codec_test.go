package diskcache

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/kinocache/internal/domain"
)

func testID(seed byte) domain.ID {
	var id domain.ID
	for i := range id {
		id[i] = seed + byte(i)
	}
	return id
}

func TestAppendRecordLayout(t *testing.T) {
	item := &domain.Item{
		Type:          domain.ItemTypeMovie,
		ID:            testID(1),
		Name:          "Alien",
		RuntimeTicks:  70000000000,
		PlaybackTicks: 12345,
	}

	rec := appendRecord(nil, item)
	require.Len(t, rec, minRecordSize+len(item.Name))

	assert.Equal(t, byte(domain.ItemTypeMovie), rec[0])
	id := testID(1)
	assert.Equal(t, id[:], rec[typeWidth:headerWidth])
	assert.Equal(t, []byte("Alien"), rec[headerWidth:headerWidth+5])
	assert.Equal(t, byte(nameTerminator), rec[headerWidth+5])

	ticks := rec[headerWidth+6:]
	assert.Equal(t, uint64(70000000000), byteOrder.Uint64(ticks[:ticksWidth]))
	assert.Equal(t, uint64(12345), byteOrder.Uint64(ticks[ticksWidth:]))
}

func TestAppendRecordEmptyName(t *testing.T) {
	rec := appendRecord(nil, &domain.Item{Type: domain.ItemTypeEpisode})
	require.Len(t, rec, minRecordSize)
	assert.Equal(t, byte(nameTerminator), rec[headerWidth])
}

func TestDecodeRecord(t *testing.T) {
	items := []*domain.Item{
		{Type: domain.ItemTypeMovie, ID: testID(1), Name: "A", RuntimeTicks: 100},
		{Type: domain.ItemTypeFolder, ID: testID(2), Name: ""},
		{Type: domain.ItemTypeEpisode, ID: testID(3), Name: "Ünïcødé – 第1話", RuntimeTicks: -1, PlaybackTicks: 1 << 40},
	}

	var data []byte
	for _, it := range items {
		data = appendRecord(data, it)
	}

	r := bufio.NewReader(bytes.NewReader(data))
	buf := NewBuffer(0)
	for i, want := range items {
		got, err := decodeRecord(r, buf)
		require.NoError(t, err, "record %d", i)
		assert.Equal(t, want, got, "record %d", i)
		assert.Nil(t, got.Children)
	}
}

func TestDecodeRecordTruncated(t *testing.T) {
	data := appendRecord(nil, &domain.Item{Type: domain.ItemTypeMovie, ID: testID(9), Name: "Heat"})

	tests := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"partial header", headerWidth - 3},
		{"no terminator", headerWidth + 2},
		{"partial ticks", len(data) - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(bytes.NewReader(data[:tt.size]))
			_, err := decodeRecord(r, NewBuffer(0))
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestDecodeType(t *testing.T) {
	data := appendRecord(nil, &domain.Item{Type: domain.ItemTypeSeries, Name: "Lost"})
	typ, err := decodeType(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, domain.ItemTypeSeries, typ)

	typ, err = decodeType(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Equal(t, domain.ItemTypeNone, typ)
}
