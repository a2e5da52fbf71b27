// Package netx carries transport frames over TCP for device-to-device sync
// on a local network. Each frame is length-prefixed on the wire; chunking
// and checksums stay in the transport package.
package netx

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/vibevault/vibevault/internal/transport"
)

// maxFrameSize bounds a single frame read so a broken peer cannot make us
// allocate unbounded memory.
const maxFrameSize = 1 << 20

var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// ConnChannel adapts a net.Conn to transport.Channel. Frames are written as
// a big-endian uint32 length followed by the frame bytes.
type ConnChannel struct {
	conn net.Conn

	closeOnce sync.Once
	closeErr  error
}

// NewConnChannel wraps an established connection.
func NewConnChannel(conn net.Conn) *ConnChannel {
	return &ConnChannel{conn: conn}
}

// Send writes one frame. A canceled context aborts by closing the
// connection, as net.Conn writes cannot be interrupted otherwise.
func (c *ConnChannel) Send(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(frame) > maxFrameSize {
		return ErrFrameTooLarge
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(frame)))
	if _, err := c.conn.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Receive reads one frame, honoring context cancellation via a watcher that
// closes the connection.
func (c *ConnChannel) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-done:
		}
	}()

	var header [4]byte
	if _, err := io.ReadFull(c.conn, header[:]); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, io.EOF) {
			return nil, transport.ErrChannelClosed
		}
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > maxFrameSize {
		return nil, ErrFrameTooLarge
	}

	frame := make([]byte, size)
	if _, err := io.ReadFull(c.conn, frame); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return frame, nil
}

// Close shuts the connection down.
func (c *ConnChannel) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

var _ transport.Channel = (*ConnChannel)(nil)

// Listen waits for exactly one peer to connect on addr and returns the
// channel for it. The listener is closed once the peer is accepted.
func Listen(ctx context.Context, addr string) (*ConnChannel, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	defer ln.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-done:
		}
	}()

	conn, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("accept: %w", err)
	}
	return NewConnChannel(conn), nil
}

// Dial connects to a listening peer.
func Dial(ctx context.Context, addr string) (*ConnChannel, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewConnChannel(conn), nil
}
