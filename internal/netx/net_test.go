package netx

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibevault/vibevault/internal/transport"
)

func connPair(t *testing.T) (*ConnChannel, *ConnChannel) {
	t.Helper()
	c1, c2 := net.Pipe()
	a, b := NewConnChannel(c1), NewConnChannel(c2)
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return a, b
}

func TestSendReceive(t *testing.T) {
	a, b := connPair(t)
	ctx := context.Background()

	go func() {
		_ = a.Send(ctx, []byte("frame-1"))
		_ = a.Send(ctx, []byte("frame-2"))
	}()

	got, err := b.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("frame-1"), got)

	got, err = b.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("frame-2"), got)
}

func TestReceive_PeerClosed(t *testing.T) {
	a, b := connPair(t)

	require.NoError(t, a.Close())
	_, err := b.Receive(context.Background())
	require.ErrorIs(t, err, transport.ErrChannelClosed)
}

func TestReceive_ContextCanceled(t *testing.T) {
	_, b := connPair(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := b.Receive(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestListenAndDial_PayloadRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	type result struct {
		payload []byte
		err     error
	}
	results := make(chan result, 1)
	go func() {
		ch, err := Listen(ctx, addr)
		if err != nil {
			results <- result{nil, err}
			return
		}
		defer ch.Close()
		payload, err := transport.ReceivePayload(ctx, ch)
		results <- result{payload, err}
	}()

	var ch *ConnChannel
	require.Eventually(t, func() bool {
		var err error
		ch, err = Dial(ctx, addr)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	defer ch.Close()

	payload := make([]byte, 2000) // forces several chunks
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	require.NoError(t, transport.SendPayload(ctx, ch, payload, transport.DefaultMTU))

	res := <-results
	require.NoError(t, res.err)
	assert.Equal(t, payload, res.payload)
}
