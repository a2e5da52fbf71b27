package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_EncodeParseRoundTrip(t *testing.T) {
	payload := []byte("Hello, this is a test payload for chunking!")
	chunks, err := Split(payload, DefaultMTU)
	require.NoError(t, err)
	require.Len(t, chunks, 1, "small payload fits in one chunk")
	assert.Equal(t, uint16(0), chunks[0].Index)
	assert.Equal(t, uint16(1), chunks[0].Total)

	parsed, err := ParseChunk(chunks[0].Encode())
	require.NoError(t, err)
	assert.Equal(t, payload, parsed.Data)
}

func TestSplit_RespectsMTU(t *testing.T) {
	payload := make([]byte, 2000)
	for i := range payload {
		payload[i] = byte(i % 256)
	}

	const mtu = 100
	chunks, err := Split(payload, mtu)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.LessOrEqual(t, len(c.Encode()), mtu, "chunk %d exceeds mtu", i)
		assert.Equal(t, uint16(len(chunks)), c.Total)
		assert.Equal(t, uint16(i), c.Index)
	}
}

func TestSplit_EmptyPayload(t *testing.T) {
	chunks, err := Split(nil, DefaultMTU)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0].Data)

	r := NewReassembler(1)
	done, err := r.Add(&chunks[0])
	require.NoError(t, err)
	assert.True(t, done)

	out, err := r.Reassemble()
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSplit_MTUTooSmall(t *testing.T) {
	_, err := Split([]byte("x"), HeaderSize)
	require.ErrorIs(t, err, ErrMTUTooSmall)
}

func TestParseChunk_CorruptionDetected(t *testing.T) {
	chunks, err := Split([]byte("test data"), DefaultMTU)
	require.NoError(t, err)

	frame := chunks[0].Encode()
	frame[len(frame)-1] ^= 0xFF // corrupt one data byte

	_, err = ParseChunk(frame)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crc32 mismatch on chunk 0")
}

func TestParseChunk_TooSmall(t *testing.T) {
	_, err := ParseChunk([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrChunkTooSmall)
}

func TestReassembler_RoundTrip(t *testing.T) {
	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i * 7 % 256)
	}

	chunks, err := Split(payload, 128)
	require.NoError(t, err)

	r := NewReassembler(chunks[0].Total)
	for i := range chunks {
		parsed, err := ParseChunk(chunks[i].Encode())
		require.NoError(t, err)
		_, err = r.Add(parsed)
		require.NoError(t, err)
	}

	out, err := r.Reassemble()
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestReassembler_OutOfOrder(t *testing.T) {
	payload := make([]byte, 2000)
	for i := range payload {
		payload[i] = byte(i % 256)
	}

	chunks, err := Split(payload, 100)
	require.NoError(t, err)
	r := NewReassembler(chunks[0].Total)

	// Feed strictly in reverse order.
	for i := len(chunks) - 1; i >= 0; i-- {
		parsed, err := ParseChunk(chunks[i].Encode())
		require.NoError(t, err)
		done, err := r.Add(parsed)
		require.NoError(t, err)
		assert.Equal(t, i == 0, done)
	}

	out, err := r.Reassemble()
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestReassembler_DuplicateChunkIdempotent(t *testing.T) {
	chunks, err := Split([]byte("abcdef"), DefaultMTU)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	r := NewReassembler(2) // expect two, send the same one twice
	c := chunks[0]
	c.Total = 2

	done, err := r.Add(&c)
	require.NoError(t, err)
	assert.False(t, done)

	done, err = r.Add(&c)
	require.NoError(t, err)
	assert.False(t, done, "duplicate index must not double-count")

	got, total := r.Progress()
	assert.Equal(t, uint16(1), got)
	assert.Equal(t, uint16(2), total)
}

func TestReassembler_Rejections(t *testing.T) {
	r := NewReassembler(2)

	_, err := r.Add(&Chunk{Index: 0, Total: 3})
	require.Error(t, err, "total mismatch")

	_, err = r.Add(&Chunk{Index: 2, Total: 2})
	require.Error(t, err, "index out of range")

	_, err = r.Reassemble()
	require.Error(t, err, "incomplete message")
}

func TestSplit_TooManyChunks(t *testing.T) {
	// mtu of HeaderSize+1 leaves one data byte per chunk, so 64 KiB+1
	// overflows the uint16 index space
	payload := make([]byte, 65536)
	_, err := Split(payload, HeaderSize+1)
	require.ErrorIs(t, err, ErrPayloadTooLarge)

	chunks, err := Split(payload[:65535], HeaderSize+1)
	require.NoError(t, err)
	require.Len(t, chunks, 65535)
}
