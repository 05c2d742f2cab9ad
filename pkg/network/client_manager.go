package network

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/rtype/pkg/network/codec"
)

// DefaultAcceptTimeout is how long a client waits for SERVER_ACCEPT
// before reporting disconnected (spec.md §5).
const DefaultAcceptTimeout = 15 * time.Second

// DefaultClientHeartbeatInterval is how often a connected client sends
// HEARTBEAT (spec.md §6: "~1 Hz").
const DefaultClientHeartbeatInterval = time.Second

// ClientConfig configures a ClientManager.
type ClientConfig struct {
	ServerAddr        string
	PlayerName        string
	ProtocolVersion   uint8
	AcceptTimeout     time.Duration
	HeartbeatInterval time.Duration
	Logger            *logrus.Logger
}

// ClientManager drives the client side of the handshake in spec.md §6
// and keeps the connection alive with periodic heartbeats.
type ClientManager struct {
	transport *Transport
	logger    *logrus.Logger

	playerName        string
	protocolVersion    uint8
	acceptTimeout      time.Duration
	heartbeatInterval  time.Duration

	connected  atomic.Bool
	playerID   atomic.Uint32
	clientID   uint32

	inboundMu sync.Mutex
	inbound   []InboundPacket

	outboundMu sync.Mutex
	outbound   []OutboundPacket

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewClientManager dials the server endpoint; the handshake itself runs
// in Connect, not here, so construction cannot fail on protocol grounds.
func NewClientManager(cfg ClientConfig) (*ClientManager, error) {
	transport, err := Dial(cfg.ServerAddr)
	if err != nil {
		return nil, err
	}
	if cfg.AcceptTimeout <= 0 {
		cfg.AcceptTimeout = DefaultAcceptTimeout
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultClientHeartbeatInterval
	}
	if cfg.ProtocolVersion == 0 {
		cfg.ProtocolVersion = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &ClientManager{
		transport:         transport,
		logger:            cfg.Logger,
		playerName:        cfg.PlayerName,
		protocolVersion:   cfg.ProtocolVersion,
		acceptTimeout:     cfg.AcceptTimeout,
		heartbeatInterval: cfg.HeartbeatInterval,
		clientID:          uint32(time.Now().UnixNano()),
	}, nil
}

// Connect sends CLIENT_CONNECT and blocks until SERVER_ACCEPT/REJECT
// arrives or acceptTimeout elapses.
func (c *ClientManager) Connect() error {
	var nameBuf [32]byte
	copy(nameBuf[:], c.playerName)

	buf, err := codec.EncodePacket(codec.TypeClientConnect, 0, 0, nowMS(), codec.ClientConnect{
		ProtocolVersion: c.protocolVersion,
		PlayerName:      nameBuf,
		ClientID:        c.clientID,
	})
	if err != nil {
		return newClientError("encoding CLIENT_CONNECT: %v", err)
	}
	if err := c.transport.SendTo(buf, nil); err != nil {
		return newClientError("sending CLIENT_CONNECT: %v", err)
	}

	deadline := time.Now().Add(c.acceptTimeout)
	for time.Now().Before(deadline) {
		dg, err := c.transport.ReceiveFrom(50 * time.Millisecond)
		if err != nil {
			return newClientError("awaiting handshake reply: %v", err)
		}
		if dg == nil {
			continue
		}
		typ, err := codec.Validate(dg.Payload)
		if err != nil {
			continue
		}
		if hdr, herr := codec.DecodeHeader(dg.Payload); herr == nil && hdr.Flags&codec.FlagReliable != 0 {
			c.ackReliable(hdr)
		}
		switch typ {
		case codec.TypeServerAccept:
			_, accept, err := codec.DecodePacket[codec.ServerAccept](dg.Payload)
			if err != nil {
				continue
			}
			c.playerID.Store(accept.AssignedPlayerID)
			c.connected.Store(true)
			return nil
		case codec.TypeServerReject:
			_, reject, err := codec.DecodePacket[codec.ServerReject](dg.Payload)
			if err != nil {
				continue
			}
			return newClientError("connection rejected: code %d", reject.RejectCode)
		}
	}
	return newClientError("no SERVER_ACCEPT within %s", c.acceptTimeout)
}

// Connected reports whether the handshake has completed successfully.
// Once set, it is not cleared by a later loss of contact with the server.
func (c *ClientManager) Connected() bool {
	return c.connected.Load()
}

// PlayerID returns the id the server assigned during handshake.
func (c *ClientManager) PlayerID() uint32 {
	return c.playerID.Load()
}

// Start launches the I/O goroutine (receive loop, heartbeat ticker,
// outbound drain) once Connect has succeeded.
func (c *ClientManager) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	group, gctx := errgroup.WithContext(ctx)
	c.group = group
	group.Go(func() error {
		c.ioLoop(gctx)
		return nil
	})
}

// Stop cooperatively ends the I/O goroutine and closes the socket.
func (c *ClientManager) Stop() error {
	if c.cancel == nil {
		return nil
	}
	c.cancel()
	if err := c.group.Wait(); err != nil {
		return err
	}
	return c.transport.Close()
}

func (c *ClientManager) ioLoop(ctx context.Context) {
	lastHeartbeat := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if time.Since(lastHeartbeat) >= c.heartbeatInterval {
			c.sendHeartbeat()
			lastHeartbeat = time.Now()
		}

		dg, err := c.transport.ReceiveFrom(pollInterval)
		if err != nil {
			c.logger.WithError(err).Warn("udp receive failed")
		} else if dg != nil {
			c.handleDatagram(dg)
		}

		c.drainOutbound()
	}
}

func (c *ClientManager) sendHeartbeat() {
	buf, err := codec.EncodePacket(codec.TypeHeartbeat, 0, 0, nowMS(), codec.HeartBeat{PlayerID: c.playerID.Load()})
	if err != nil {
		return
	}
	if err := c.transport.SendTo(buf, nil); err != nil {
		c.logger.WithError(err).Warn("sending heartbeat")
	}
}

func (c *ClientManager) handleDatagram(dg *Datagram) {
	typ, err := codec.Validate(dg.Payload)
	if err != nil {
		c.logger.WithError(err).Debug("dropping invalid datagram")
		return
	}
	if typ == codec.TypePong {
		return
	}
	h, err := codec.DecodeHeader(dg.Payload)
	if err != nil {
		return
	}
	if h.Flags&codec.FlagReliable != 0 {
		c.ackReliable(h)
	}
	c.inboundMu.Lock()
	c.inbound = append(c.inbound, InboundPacket{Header: h, Payload: dg.Payload, ClientID: c.playerID.Load(), From: dg.From})
	c.inboundMu.Unlock()
}

// ackReliable replies to a RELIABLE packet so the sender's
// codec.Tracker can retire it instead of retransmitting.
func (c *ClientManager) ackReliable(h codec.Header) {
	buf, err := codec.EncodePacket(codec.TypeAck, 0, 0, nowMS(), codec.Acknowledgment{
		AckedSequence: h.SequenceNumber,
		ReceivedTSMS:  nowMS(),
		ClientID:      c.playerID.Load(),
	})
	if err != nil {
		return
	}
	if err := c.transport.SendTo(buf, nil); err != nil {
		c.logger.WithError(err).Warn("sending ACK")
	}
}

// FetchIncoming atomically drains packets received since the last call.
func (c *ClientManager) FetchIncoming() []InboundPacket {
	c.inboundMu.Lock()
	defer c.inboundMu.Unlock()
	out := c.inbound
	c.inbound = nil
	return out
}

// QueueOutgoing appends pkt for the I/O thread to send; Target/Broadcast
// are ignored client-side since there is exactly one peer.
func (c *ClientManager) QueueOutgoing(pkt OutboundPacket) {
	c.outboundMu.Lock()
	c.outbound = append(c.outbound, pkt)
	c.outboundMu.Unlock()
}

func (c *ClientManager) drainOutbound() {
	c.outboundMu.Lock()
	batch := c.outbound
	c.outbound = nil
	c.outboundMu.Unlock()

	for _, pkt := range batch {
		if err := c.transport.SendTo(pkt.Payload, nil); err != nil {
			c.logger.WithError(err).Warn("sending packet")
		}
	}
}
