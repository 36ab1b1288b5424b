package diskcache

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferAppend(t *testing.T) {
	var b Buffer
	assert.Equal(t, 0, b.Len())

	b.Append([]byte("hello"))
	b.AppendByte(' ')
	b.Append([]byte("world"))

	assert.Equal(t, "hello world", b.String())
	assert.Equal(t, []byte("hello world"), b.Bytes())
	assert.Equal(t, 11, b.Len())
}

func TestBufferGrowsGeometrically(t *testing.T) {
	b := NewBuffer(0)
	require.Equal(t, minBufferSize, b.Cap())

	data := bytes.Repeat([]byte{'x'}, minBufferSize+1)
	b.Append(data)
	assert.Equal(t, 2*minBufferSize, b.Cap())
	assert.Equal(t, data, b.Bytes())

	b.Append(bytes.Repeat([]byte{'y'}, 5*minBufferSize))
	assert.Equal(t, 8*minBufferSize, b.Cap())
	assert.Equal(t, 6*minBufferSize+1, b.Len())
}

func TestBufferResetKeepsCapacity(t *testing.T) {
	b := NewBuffer(128)
	b.Append(bytes.Repeat([]byte{'a'}, 100))
	before := b.Cap()

	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, "", b.String())
	assert.Equal(t, before, b.Cap())

	b.Append([]byte("next"))
	assert.Equal(t, "next", b.String())
}

func TestBufferResetDropsHugeCapacity(t *testing.T) {
	var b Buffer
	b.Append(make([]byte, maxRetainedBufferSize+1))
	b.Reset()
	assert.Equal(t, 0, b.Cap())

	b.AppendByte('z')
	assert.Equal(t, "z", b.String())
}

func TestBufferStringIsCopy(t *testing.T) {
	var b Buffer
	b.Append([]byte("abc"))
	s := b.String()
	b.Reset()
	b.Append([]byte("xyz"))
	assert.Equal(t, "abc", s)
}

func TestBufferRelease(t *testing.T) {
	b := NewBuffer(512)
	b.Append([]byte("name"))

	b.Release()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Cap())

	b.AppendByte('x')
	assert.Equal(t, "x", b.String())
	assert.Equal(t, minBufferSize, b.Cap())
}
