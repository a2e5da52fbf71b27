package transport

import (
	"context"
	"errors"
	"sync"
)

// Control bytes exchanged on the sync control characteristic.
const (
	ControlStartSync byte = 0x01
	ControlAckChunk  byte = 0x02
	ControlAbort     byte = 0x03
	ControlComplete  byte = 0x04
)

var ErrChannelClosed = errors.New("channel closed")

// Channel is an abstract duplex chunk pipe. Implementations deliver whole
// frames of at most the negotiated MTU; the underlying link lives outside
// this package.
type Channel interface {
	// Send writes one frame. It blocks until the frame is handed to the
	// underlying transport or ctx is done.
	Send(ctx context.Context, frame []byte) error

	// Receive returns the next frame, blocking until one arrives, the
	// channel closes (ErrChannelClosed), or ctx is done.
	Receive(ctx context.Context) ([]byte, error)

	// Close tears the channel down. Pending and future calls fail.
	Close() error
}

// SendPayload splits payload into mtu-sized chunks and writes them to ch in
// index order.
func SendPayload(ctx context.Context, ch Channel, payload []byte, mtu int) error {
	chunks, err := Split(payload, mtu)
	if err != nil {
		return err
	}
	for i := range chunks {
		if err := ch.Send(ctx, chunks[i].Encode()); err != nil {
			return err
		}
	}
	return nil
}

// ReceivePayload reads frames from ch until one whole message is
// reassembled. The expected total is taken from the first valid chunk;
// chunks may arrive in any order.
func ReceivePayload(ctx context.Context, ch Channel) ([]byte, error) {
	var r *Reassembler
	for {
		frame, err := ch.Receive(ctx)
		if err != nil {
			return nil, err
		}
		c, err := ParseChunk(frame)
		if err != nil {
			return nil, err
		}
		if r == nil {
			r = NewReassembler(c.Total)
		}
		done, err := r.Add(c)
		if err != nil {
			return nil, err
		}
		if done {
			return r.Reassemble()
		}
	}
}

// Pipe is an in-memory Channel pair for tests and loopback use. Frames
// written to one end are read from the other.
type Pipe struct {
	in  chan []byte
	out chan []byte
	// closed and closeOnce are shared between both ends.
	closed    chan struct{}
	closeOnce *sync.Once
}

// NewPipe returns the two connected ends of an in-memory channel.
// bufferedFrames sets the per-direction capacity.
func NewPipe(bufferedFrames int) (*Pipe, *Pipe) {
	ab := make(chan []byte, bufferedFrames)
	ba := make(chan []byte, bufferedFrames)
	closed := make(chan struct{})
	once := &sync.Once{}
	a := &Pipe{in: ba, out: ab, closed: closed, closeOnce: once}
	b := &Pipe{in: ab, out: ba, closed: closed, closeOnce: once}
	return a, b
}

func (p *Pipe) Send(ctx context.Context, frame []byte) error {
	f := append([]byte(nil), frame...)
	select {
	case p.out <- f:
		return nil
	case <-p.closed:
		return ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipe) Receive(ctx context.Context) ([]byte, error) {
	select {
	case f := <-p.in:
		return f, nil
	case <-p.closed:
		// Drain anything already buffered before reporting closure.
		select {
		case f := <-p.in:
			return f, nil
		default:
			return nil, ErrChannelClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pipe) Close() error {
	p.closeOnce.Do(func() { close(p.closed) })
	return nil
}
