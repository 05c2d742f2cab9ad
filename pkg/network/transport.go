// Package network implements the UDP transport, server/client connection
// managers, and wire-level plumbing described in SPEC_FULL.md §4.3-§4.4.
// The ECS/protocol bridge lives one layer up, in pkg/coordinator.
package network

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/opd-ai/rtype/pkg/network/codec"
)

// MaxDatagramSize bounds the receive buffer; a single UDP datagram never
// exceeds codec.MaxUDPPayload (spec.md §4.3).
const MaxDatagramSize = codec.MaxUDPPayload

// datagramPool recycles receive buffers across poll iterations, the same
// sync.Pool idiom the teacher's pkg/network/buffer_pool.go uses for
// serialization buffers, resized here to the transport's datagram size.
var datagramPool = sync.Pool{
	New: func() any {
		buf := make([]byte, MaxDatagramSize)
		return &buf
	},
}

func acquireDatagram() *[]byte {
	return datagramPool.Get().(*[]byte)
}

func releaseDatagram(buf *[]byte) {
	if buf == nil {
		return
	}
	*buf = (*buf)[:MaxDatagramSize]
	datagramPool.Put(buf)
}

// Datagram is one received packet together with the endpoint it arrived
// from.
type Datagram struct {
	Payload []byte
	From    *net.UDPAddr
}

// Transport owns a single non-blocking UDP socket. receive/send are the
// only operations the I/O thread performs on the socket; no other
// goroutine touches it (spec.md §5).
type Transport struct {
	conn *net.UDPConn

	mu           sync.Mutex
	lastEndpoint map[string]*net.UDPAddr
}

// Listen binds addr (empty host for a wildcard bind) and returns a
// Transport ready for ReceiveFrom/SendTo.
func Listen(addr string) (*Transport, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, newNetworkError("resolving bind address %q: %v", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, newNetworkError("binding %q: %v", addr, err)
	}
	return &Transport{conn: conn, lastEndpoint: make(map[string]*net.UDPAddr)}, nil
}

// Dial resolves remote and binds an ephemeral local UDP socket connected
// to it, for client use.
func Dial(remote string) (*Transport, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", remote)
	if err != nil {
		return nil, newNetworkError("resolving remote address %q: %v", remote, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, newNetworkError("dialing %q: %v", remote, err)
	}
	return &Transport{conn: conn, lastEndpoint: map[string]*net.UDPAddr{remote: udpAddr}}, nil
}

// Close releases the underlying socket.
func (t *Transport) Close() error {
	return t.conn.Close()
}

// LocalAddr reports the bound local address.
func (t *Transport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

// ReceiveFrom polls the socket for one datagram, bounded by deadline (a
// short ~1ms budget keeps the I/O loop non-blocking per spec.md §4.3/§5).
// Returns (nil, nil) on a read timeout — not an error condition, just
// "nothing waiting this iteration". A datagram over MaxDatagramSize is
// impossible to receive whole (net.UDPConn truncates it); ReadFromUDP
// reports that case as an error here via net's message-too-long signal.
func (t *Transport) ReceiveFrom(deadline time.Duration) (*Datagram, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(deadline)); err != nil {
		return nil, newNetworkError("setting read deadline: %v", err)
	}
	buf := acquireDatagram()
	n, from, err := t.conn.ReadFromUDP(*buf)
	if err != nil {
		releaseDatagram(buf)
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, nil
		}
		return nil, newNetworkError("receiving: %v", err)
	}
	payload := make([]byte, n)
	copy(payload, (*buf)[:n])
	releaseDatagram(buf)

	t.mu.Lock()
	t.lastEndpoint[from.String()] = from
	t.mu.Unlock()

	return &Datagram{Payload: payload, From: from}, nil
}

// SendTo writes payload to target. If target is nil and the transport
// was built with Dial, the connected peer is used.
func (t *Transport) SendTo(payload []byte, target *net.UDPAddr) error {
	if len(payload) > MaxDatagramSize {
		return newNetworkError("payload of %d bytes exceeds max datagram size %d", len(payload), MaxDatagramSize)
	}
	var err error
	if target == nil {
		_, err = t.conn.Write(payload)
	} else {
		_, err = t.conn.WriteToUDP(payload, target)
	}
	if err != nil {
		return newNetworkError("sending to %v: %v", target, err)
	}
	return nil
}

// LastEndpoint returns the most recently observed remote address for
// endpoint (in net.JoinHostPort form), enabling send-reply semantics
// after a receive (spec.md §4.3).
func (t *Transport) LastEndpoint(endpoint string) (*net.UDPAddr, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	addr, ok := t.lastEndpoint[endpoint]
	return addr, ok
}
