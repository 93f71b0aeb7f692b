package transport

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff"

	"clasp/internal/domain"
)

// Link is a domain.PeerLink over a single net.Conn, one JSON frame per line.
// Sends are serialized under a mutex; Receive is single-reader.
type Link struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
	wmu  sync.Mutex
}

// NewLink wraps an established connection.
func NewLink(conn net.Conn) *Link {
	return &Link{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
	}
}

// Send writes one frame. A context deadline is applied as a write deadline.
func (l *Link) Send(ctx context.Context, f domain.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.wmu.Lock()
	defer l.wmu.Unlock()
	if d, ok := ctx.Deadline(); ok {
		_ = l.conn.SetWriteDeadline(d)
		defer l.conn.SetWriteDeadline(time.Time{})
	}
	return l.enc.Encode(f)
}

// Receive blocks for the next frame. A context deadline is applied as a read
// deadline; cancellation without a deadline is honoured by closing the link.
func (l *Link) Receive(ctx context.Context) (domain.Frame, error) {
	var f domain.Frame
	if err := ctx.Err(); err != nil {
		return f, err
	}
	if d, ok := ctx.Deadline(); ok {
		_ = l.conn.SetReadDeadline(d)
		defer l.conn.SetReadDeadline(time.Time{})
	}
	if err := l.dec.Decode(&f); err != nil {
		return domain.Frame{}, err
	}
	return f, nil
}

// Close tears the connection down. Any blocked Receive returns an error.
func (l *Link) Close() error { return l.conn.Close() }

// RemoteAddr reports the peer address for logging.
func (l *Link) RemoteAddr() net.Addr { return l.conn.RemoteAddr() }

// Listen opens a TCP listener on addr (":0" picks a free port).
func Listen(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

// AcceptOne waits for a single peer and wraps the connection. The listener is
// closed afterwards; a channel pairs exactly two peers.
func AcceptOne(ln net.Listener) (*Link, error) {
	conn, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	_ = ln.Close()
	return NewLink(conn), nil
}

// Dial connects to addr, retrying with exponential backoff until the context
// is done or the backoff gives up.
func Dial(ctx context.Context, addr string) (*Link, error) {
	var conn net.Conn
	op := func() error {
		var err error
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", addr)
		return err
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return NewLink(conn), nil
}

// Compile-time assertion that Link implements domain.PeerLink.
var _ domain.PeerLink = (*Link)(nil)
