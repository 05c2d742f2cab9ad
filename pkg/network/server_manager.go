package network

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/rtype/pkg/network/codec"
)

// DefaultHeartbeatTimeout is the window after which an inactive slot is
// evicted (spec.md §4.4/§5).
const DefaultHeartbeatTimeout = 10 * time.Second

// pollInterval bounds how long one ReceiveFrom call blocks before the
// I/O loop re-checks heartbeats and drains the outbound queue, keeping
// the loop non-blocking and CPU-bounded (spec.md §4.3: "a short sleep,
// ≈1ms, bounds CPU use when idle").
const pollInterval = time.Millisecond

// ConnectionHandler lets the coordinator react to connection lifecycle
// events the server manager settles locally. Entity construction and
// ENTITY_SPAWN/DESTROY broadcast (spec.md §4.5) live on the other side
// of this interface, not inside the network manager.
type ConnectionHandler interface {
	// HandleAccept runs after a client's CLIENT_CONNECT has been
	// accepted and SERVER_ACCEPT sent; clientID is the slot's
	// assigned id.
	HandleAccept(clientID uint32, playerName string)
	// HandleDisconnect runs after a slot is freed, whether by
	// CLIENT_DISCONNECT or heartbeat timeout.
	HandleDisconnect(clientID uint32)
}

// InboundPacket is one non-control packet handed to the game loop for
// coordinator dispatch.
type InboundPacket struct {
	Header   codec.Header
	Payload  []byte
	ClientID uint32
	From     *net.UDPAddr
}

// OutboundPacket queues a packet for the I/O thread to send. Broadcast
// sends to every active slot except those named by ExceptClientID
// (anti-echo, spec.md §4.5). A non-broadcast packet goes to Target if
// set, else to the active slot named by TargetClientID - the latter lets
// a caller that only knows a logical client id (e.g. pkg/coordinator)
// address one recipient without reaching into connection-slot internals.
type OutboundPacket struct {
	Payload         []byte
	Target          *net.UDPAddr
	Broadcast       bool
	ExceptClientID  uint32
	HasExceptClient bool
	TargetClientID  uint32
	HasTargetClient bool
}

type slot struct {
	clientID      uint32
	endpoint      string
	addr          *net.UDPAddr
	playerName    string
	lastHeartbeat time.Time
	active        bool
}

// ServerManager is the authoritative UDP endpoint described in spec.md
// §4.4: a fixed connection-slot table, an I/O goroutine, and the two
// mutex-guarded cross-thread queues from §5.
type ServerManager struct {
	transport *Transport
	logger    *logrus.Logger

	maxPlayers       int
	tickRate         uint32
	gameInstanceID   uint32
	heartbeatTimeout time.Duration
	handler          ConnectionHandler

	slotMu        sync.Mutex
	slots         []slot
	endpointIndex map[string]int
	nextClientID  uint32

	// reliability tracks RELIABLE-flagged sends (SERVER_ACCEPT/REJECT)
	// until the peer ACKs them, retried from ioLoop via retransmitDue.
	// reliableAddr remembers where each tracked sequence was sent, since
	// codec.Tracker stays transport-agnostic and only stores payloads.
	reliability   *codec.Tracker
	reliableSeq    atomic.Uint32
	reliableAddrMu sync.Mutex
	reliableAddr   map[uint32]*net.UDPAddr

	inboundMu sync.Mutex
	inbound   []InboundPacket

	outboundMu sync.Mutex
	outbound   []OutboundPacket

	cancel context.CancelFunc
	group  *errgroup.Group
}

// ServerConfig configures a ServerManager.
type ServerConfig struct {
	BindAddr         string
	MaxPlayers       int
	TickRate         uint32
	GameInstanceID   uint32
	HeartbeatTimeout time.Duration
	Logger           *logrus.Logger
	Handler          ConnectionHandler
}

// NewServerManager constructs a ServerManager bound to cfg.BindAddr.
// The socket is opened immediately so callers can discover the bound
// port before Start; the I/O goroutine itself only begins on Start.
func NewServerManager(cfg ServerConfig) (*ServerManager, error) {
	transport, err := Listen(cfg.BindAddr)
	if err != nil {
		return nil, err
	}
	if cfg.HeartbeatTimeout <= 0 {
		cfg.HeartbeatTimeout = DefaultHeartbeatTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &ServerManager{
		transport:        transport,
		logger:           cfg.Logger,
		maxPlayers:       cfg.MaxPlayers,
		tickRate:         cfg.TickRate,
		gameInstanceID:   cfg.GameInstanceID,
		heartbeatTimeout: cfg.HeartbeatTimeout,
		handler:          cfg.Handler,
		slots:            make([]slot, cfg.MaxPlayers),
		endpointIndex:    make(map[string]int, cfg.MaxPlayers),
		nextClientID:     1,
		reliability:      codec.NewTracker(0, 0),
		reliableAddr:     make(map[uint32]*net.UDPAddr),
	}, nil
}

// LocalAddr reports the bound address, useful when BindAddr used port 0.
func (s *ServerManager) LocalAddr() net.Addr {
	return s.transport.LocalAddr()
}

// Start launches the I/O goroutine. Stop must be called to join it.
func (s *ServerManager) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	group, gctx := errgroup.WithContext(ctx)
	s.group = group
	group.Go(func() error {
		s.ioLoop(gctx)
		return nil
	})
}

// Stop flips the running flag and joins the I/O goroutine (spec.md §5:
// "cooperative" cancellation, the main loop then joins the I/O thread).
func (s *ServerManager) Stop() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	if err := s.group.Wait(); err != nil {
		return err
	}
	return s.transport.Close()
}

func (s *ServerManager) ioLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.evictTimedOutSlots(time.Now())
		s.retransmitDue()

		dg, err := s.transport.ReceiveFrom(pollInterval)
		if err != nil {
			s.logger.WithError(err).Warn("udp receive failed")
		} else if dg != nil {
			s.handleDatagram(dg)
		}

		s.drainOutbound()
	}
}

func (s *ServerManager) evictTimedOutSlots(now time.Time) {
	s.slotMu.Lock()
	var timedOut []uint32
	for i := range s.slots {
		sl := &s.slots[i]
		if sl.active && now.Sub(sl.lastHeartbeat) > s.heartbeatTimeout {
			timedOut = append(timedOut, sl.clientID)
			delete(s.endpointIndex, sl.endpoint)
			*sl = slot{}
		}
	}
	s.slotMu.Unlock()

	for _, id := range timedOut {
		s.logger.WithField("client_id", id).Info("evicting client: heartbeat timeout")
		if s.handler != nil {
			s.handler.HandleDisconnect(id)
		}
	}
}

func (s *ServerManager) handleDatagram(dg *Datagram) {
	typ, err := codec.Validate(dg.Payload)
	if err != nil {
		s.logger.WithError(err).Debug("dropping invalid datagram")
		return
	}

	switch typ {
	case codec.TypeClientConnect:
		s.handleClientConnect(dg)
	case codec.TypeClientDisconnect:
		s.handleClientDisconnect(dg)
	case codec.TypeHeartbeat:
		s.handleHeartbeat(dg)
	case codec.TypePing:
		s.handlePing(dg)
	case codec.TypeAck:
		s.handleAck(dg)
	default:
		s.enqueueInbound(typ, dg)
	}
}

// handleAck applies an inbound ACK to the reliability tracker so
// retransmitDue stops resending the acknowledged packet.
func (s *ServerManager) handleAck(dg *Datagram) {
	_, body, err := codec.DecodePacket[codec.Acknowledgment](dg.Payload)
	if err != nil {
		return
	}
	if s.reliability.Ack(body.AckedSequence) {
		s.reliableAddrMu.Lock()
		delete(s.reliableAddr, body.AckedSequence)
		s.reliableAddrMu.Unlock()
	}
}

// trackReliable registers a just-sent RELIABLE packet with the
// reliability tracker and remembers where to resend it.
func (s *ServerManager) trackReliable(seq uint32, payload []byte, addr *net.UDPAddr) {
	s.reliability.Track(seq, payload, time.Now())
	s.reliableAddrMu.Lock()
	s.reliableAddr[seq] = addr
	s.reliableAddrMu.Unlock()
}

// retransmitDue resends every RELIABLE packet whose retry deadline has
// elapsed, and drops bookkeeping for any the tracker has abandoned.
func (s *ServerManager) retransmitDue() {
	for _, r := range s.reliability.DueRetransmits(time.Now()) {
		s.reliableAddrMu.Lock()
		addr := s.reliableAddr[r.Sequence]
		if r.Abandoned {
			delete(s.reliableAddr, r.Sequence)
		}
		s.reliableAddrMu.Unlock()

		if r.Abandoned {
			s.logger.WithField("sequence", r.Sequence).Warn("giving up on RELIABLE packet: no ACK")
			continue
		}
		if addr == nil {
			continue
		}
		if err := s.transport.SendTo(r.Payload, addr); err != nil {
			s.logger.WithError(err).Warn("retransmitting RELIABLE packet")
		}
	}
}

func (s *ServerManager) handleClientConnect(dg *Datagram) {
	_, body, err := codec.DecodePacket[codec.ClientConnect](dg.Payload)
	if err != nil {
		s.logger.WithError(err).Debug("malformed CLIENT_CONNECT")
		return
	}
	endpoint := dg.From.String()

	s.slotMu.Lock()
	if idx, ok := s.endpointIndex[endpoint]; ok {
		s.slots[idx].lastHeartbeat = time.Now()
		s.slotMu.Unlock()
		return
	}
	freeIdx := -1
	for i := range s.slots {
		if !s.slots[i].active {
			freeIdx = i
			break
		}
	}
	if freeIdx < 0 {
		s.slotMu.Unlock()
		s.reject(dg.From, codec.RejectServerFull, "server full")
		return
	}
	clientID := s.nextClientID
	s.nextClientID++
	playerName := decodePlayerName(body.PlayerName)
	s.slots[freeIdx] = slot{
		clientID:      clientID,
		endpoint:      endpoint,
		addr:          dg.From,
		playerName:    playerName,
		lastHeartbeat: time.Now(),
		active:        true,
	}
	s.endpointIndex[endpoint] = freeIdx
	s.slotMu.Unlock()

	accept := codec.ServerAccept{
		AssignedPlayerID: clientID,
		MaxPlayers:       uint8(s.maxPlayers),
		GameInstanceID:   s.gameInstanceID,
		ServerTickRate:   uint16(s.tickRate),
	}
	seq := s.reliableSeq.Add(1)
	buf, err := codec.EncodePacket(codec.TypeServerAccept, codec.FlagReliable, seq, nowMS(), accept)
	if err != nil {
		s.logger.WithError(err).Error("encoding SERVER_ACCEPT")
		return
	}
	s.trackReliable(seq, buf, dg.From)
	if err := s.transport.SendTo(buf, dg.From); err != nil {
		s.logger.WithError(err).Warn("sending SERVER_ACCEPT")
		return
	}
	if s.handler != nil {
		s.handler.HandleAccept(clientID, playerName)
	}
}

func (s *ServerManager) reject(addr *net.UDPAddr, code codec.RejectCode, reason string) {
	var reasonBuf [64]byte
	copy(reasonBuf[:], reason)
	seq := s.reliableSeq.Add(1)
	buf, err := codec.EncodePacket(codec.TypeServerReject, codec.FlagReliable, seq, nowMS(), codec.ServerReject{
		RejectCode:    code,
		ReasonMessage: reasonBuf,
	})
	if err != nil {
		s.logger.WithError(err).Error("encoding SERVER_REJECT")
		return
	}
	s.trackReliable(seq, buf, addr)
	if err := s.transport.SendTo(buf, addr); err != nil {
		s.logger.WithError(err).Warn("sending SERVER_REJECT")
	}
}

func (s *ServerManager) handleClientDisconnect(dg *Datagram) {
	_, _, err := codec.DecodePacket[codec.ClientDisconnect](dg.Payload)
	if err != nil {
		return
	}
	endpoint := dg.From.String()

	s.slotMu.Lock()
	idx, ok := s.endpointIndex[endpoint]
	if !ok {
		s.slotMu.Unlock()
		return
	}
	clientID := s.slots[idx].clientID
	delete(s.endpointIndex, endpoint)
	s.slots[idx] = slot{}
	s.slotMu.Unlock()

	if s.handler != nil {
		s.handler.HandleDisconnect(clientID)
	}
}

func (s *ServerManager) handleHeartbeat(dg *Datagram) {
	endpoint := dg.From.String()
	s.slotMu.Lock()
	if idx, ok := s.endpointIndex[endpoint]; ok {
		s.slots[idx].lastHeartbeat = time.Now()
	}
	s.slotMu.Unlock()
}

func (s *ServerManager) handlePing(dg *Datagram) {
	_, body, err := codec.DecodePacket[codec.Ping](dg.Payload)
	if err != nil {
		return
	}
	buf, err := codec.EncodePacket(codec.TypePong, 0, 0, nowMS(), codec.Pong{
		ClientTSMS: body.ClientTSMS,
		ServerTSMS: nowMS(),
	})
	if err != nil {
		return
	}
	_ = s.transport.SendTo(buf, dg.From)
}

func (s *ServerManager) enqueueInbound(typ codec.Type, dg *Datagram) {
	h, err := codec.DecodeHeader(dg.Payload)
	if err != nil {
		return
	}
	endpoint := dg.From.String()
	s.slotMu.Lock()
	idx, ok := s.endpointIndex[endpoint]
	var clientID uint32
	if ok {
		clientID = s.slots[idx].clientID
	}
	s.slotMu.Unlock()
	if !ok {
		s.logger.WithField("type", typ).Debug("dropping packet from unknown endpoint")
		return
	}

	s.inboundMu.Lock()
	s.inbound = append(s.inbound, InboundPacket{Header: h, Payload: dg.Payload, ClientID: clientID, From: dg.From})
	s.inboundMu.Unlock()
}

// FetchIncoming atomically drains and returns every packet enqueued for
// the game loop since the last call (spec.md §4.4).
func (s *ServerManager) FetchIncoming() []InboundPacket {
	s.inboundMu.Lock()
	defer s.inboundMu.Unlock()
	out := s.inbound
	s.inbound = nil
	return out
}

// QueueOutgoing appends pkt to the outbound queue for the I/O thread to
// drain on its next iteration (spec.md §4.4).
func (s *ServerManager) QueueOutgoing(pkt OutboundPacket) {
	s.outboundMu.Lock()
	s.outbound = append(s.outbound, pkt)
	s.outboundMu.Unlock()
}

func (s *ServerManager) drainOutbound() {
	s.outboundMu.Lock()
	batch := s.outbound
	s.outbound = nil
	s.outboundMu.Unlock()

	if len(batch) == 0 {
		return
	}

	s.slotMu.Lock()
	active := make([]slot, 0, len(s.slots))
	for _, sl := range s.slots {
		if sl.active {
			active = append(active, sl)
		}
	}
	s.slotMu.Unlock()

	for _, pkt := range batch {
		if !pkt.Broadcast {
			target := pkt.Target
			if pkt.HasTargetClient {
				target = nil
				for _, sl := range active {
					if sl.clientID == pkt.TargetClientID {
						target = sl.addr
						break
					}
				}
				if target == nil {
					continue // client disconnected before this packet drained
				}
			}
			if err := s.transport.SendTo(pkt.Payload, target); err != nil {
				s.logger.WithError(err).Warn("sending targeted packet")
			}
			continue
		}
		for _, sl := range active {
			if pkt.HasExceptClient && sl.clientID == pkt.ExceptClientID {
				continue
			}
			if err := s.transport.SendTo(pkt.Payload, sl.addr); err != nil {
				s.logger.WithError(err).Warn("broadcasting packet")
			}
		}
	}
}

// ActiveSlotCount reports how many connection slots are currently in
// use, primarily for tests and diagnostics.
func (s *ServerManager) ActiveSlotCount() int {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	n := 0
	for _, sl := range s.slots {
		if sl.active {
			n++
		}
	}
	return n
}

func decodePlayerName(raw [32]byte) string {
	n := 0
	for n < len(raw) && raw[n] != 0 {
		n++
	}
	return string(raw[:n])
}

func nowMS() uint32 {
	return uint32(time.Now().UnixMilli())
}
