// Package gpio feeds keyboard state to the simulator's GPIO port over UDP.
//
// Every datagram is the decimal key bitmask. The simulator answers each one
// with a single datagram; the literal EXIT ends the session and is
// acknowledged the same way.
package gpio

import (
	"context"
	"net"
	"strconv"
	"time"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

const (
	DefaultAddr = "localhost:50000"
	ExitToken   = "EXIT"
)

// Keys is the GPIO input bitmask.
type Keys uint8

const (
	KeyA Keys = 1 << iota
	KeyS
	KeyD
	KeyF
)

// Layout is the physical key bound to each bit, lowest first.
var Layout = [...]rune{'a', 's', 'd', 'f'}

var ErrClosed = errors.New("bridge closed")

type Bridge struct {
	// Timeout bounds each exchange when ctx has no deadline. Zero waits
	// forever.
	Timeout time.Duration

	conn net.Conn
	buf  []byte
}

// Sample builds the bitmask from a key state probe.
func Sample(pressed func(key rune) bool) Keys {
	var k Keys

	for i, r := range Layout {
		if pressed(r) {
			k |= 1 << i
		}
	}

	return k
}

func (k Keys) Has(f Keys) bool { return k&f == f }

func (k Keys) String() string {
	return strconv.Itoa(int(k))
}

// Dial opens the connectionless socket. No datagram is sent.
func Dial(ctx context.Context, addr string) (*Bridge, error) {
	if addr == "" {
		addr = DefaultAddr
	}

	var d net.Dialer

	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "dial %v", addr)
	}

	tlog.SpanFromContext(ctx).Printw("gpio bridge", "addr", addr, "local", conn.LocalAddr().String())

	return &Bridge{
		conn: conn,
		buf:  make([]byte, 1024),
	}, nil
}

// Send reports k and waits for the simulator's reply.
func (b *Bridge) Send(ctx context.Context, k Keys) error {
	reply, err := b.exchange(ctx, k.String())
	if err != nil {
		return errors.Wrap(err, "send %v", k)
	}

	if tlog.If("gpio") {
		tlog.SpanFromContext(ctx).Printw("keys", "keys", k, "reply", reply)
	}

	return nil
}

// Close ends the session with EXIT, waits for the acknowledgement and closes
// the socket. The socket is closed even if the exchange fails.
func (b *Bridge) Close(ctx context.Context) (err error) {
	if b.conn == nil {
		return ErrClosed
	}

	defer func() {
		e := b.conn.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close")
		}

		b.conn = nil
	}()

	_, err = b.exchange(ctx, ExitToken)
	if err != nil {
		return errors.Wrap(err, "exit")
	}

	tlog.SpanFromContext(ctx).Printw("gpio bridge closed")

	return nil
}

func (b *Bridge) exchange(ctx context.Context, msg string) (string, error) {
	if b.conn == nil {
		return "", ErrClosed
	}

	dl, ok := ctx.Deadline()
	if !ok && b.Timeout > 0 {
		dl = time.Now().Add(b.Timeout)
	}

	err := b.conn.SetDeadline(dl)
	if err != nil {
		return "", errors.Wrap(err, "set deadline")
	}

	_, err = b.conn.Write([]byte(msg))
	if err != nil {
		return "", errors.Wrap(err, "write")
	}

	n, err := b.conn.Read(b.buf)
	if err != nil {
		return "", errors.Wrap(err, "read reply")
	}

	return string(b.buf[:n]), nil
}
