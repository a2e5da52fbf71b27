// Package transport implements the chunked framing protocol used to move
// encrypted sync payloads across a small-MTU duplex channel. Payloads are
// split into fixed-size, CRC32-checked chunks that may arrive in any order
// and are reassembled on the receiving side.
//
// The package is link-agnostic: the underlying medium lives behind the
// Channel interface.
package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
)

// HeaderSize is the fixed chunk header: index(u16 LE) + total(u16 LE) +
// crc32(u32 LE), followed by the data bytes.
const HeaderSize = 8

// DefaultMTU matches the usual BLE payload after ATT overhead.
const DefaultMTU = 501

var (
	ErrChunkTooSmall   = errors.New("chunk too small")
	ErrMTUTooSmall     = errors.New("mtu too small for chunk header")
	ErrPayloadTooLarge = errors.New("payload exceeds chunk index space")
)

// Chunk is a single framing unit. Checksum covers Data only.
type Chunk struct {
	Index    uint16
	Total    uint16
	Checksum uint32
	Data     []byte
}

// Encode serializes the chunk to wire format.
func (c *Chunk) Encode() []byte {
	buf := make([]byte, HeaderSize+len(c.Data))
	binary.LittleEndian.PutUint16(buf[0:2], c.Index)
	binary.LittleEndian.PutUint16(buf[2:4], c.Total)
	binary.LittleEndian.PutUint32(buf[4:8], c.Checksum)
	copy(buf[HeaderSize:], c.Data)
	return buf
}

// ParseChunk parses and validates a wire-format chunk. The CRC32 is
// recomputed over the data; a mismatch rejects the chunk, naming its index
// so the transport layer can request retransmission.
func ParseChunk(b []byte) (*Chunk, error) {
	if len(b) < HeaderSize {
		return nil, ErrChunkTooSmall
	}

	c := &Chunk{
		Index:    binary.LittleEndian.Uint16(b[0:2]),
		Total:    binary.LittleEndian.Uint16(b[2:4]),
		Checksum: binary.LittleEndian.Uint32(b[4:8]),
		Data:     append([]byte(nil), b[HeaderSize:]...),
	}

	if computed := crc32.ChecksumIEEE(c.Data); computed != c.Checksum {
		return nil, fmt.Errorf("crc32 mismatch on chunk %d: header %08x, computed %08x",
			c.Index, c.Checksum, computed)
	}
	return c, nil
}

// Split cuts payload into chunks whose data fits in mtu minus the header.
// An empty payload still produces one empty chunk so the receiver learns
// the total count.
func Split(payload []byte, mtu int) ([]Chunk, error) {
	maxData := mtu - HeaderSize
	if maxData <= 0 {
		return nil, ErrMTUTooSmall
	}

	total := (len(payload) + maxData - 1) / maxData
	if total == 0 {
		total = 1
	}
	if total > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d chunks at mtu %d", ErrPayloadTooLarge, total, mtu)
	}

	chunks := make([]Chunk, 0, total)
	for i := 0; i < total; i++ {
		start := i * maxData
		end := start + maxData
		if end > len(payload) {
			end = len(payload)
		}
		data := append([]byte(nil), payload[start:end]...)
		chunks = append(chunks, Chunk{
			Index:    uint16(i),
			Total:    uint16(total),
			Checksum: crc32.ChecksumIEEE(data),
			Data:     data,
		})
	}
	return chunks, nil
}
