package rtp

import (
	"context"
	"fmt"
	"net"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var zeroLogger zerolog.Logger

const (
	stateCreated    = "created"
	stateRunning    = "running"
	stateTerminated = "terminated"

	eventInit      = "init"
	eventTerminate = "terminate"

	defaultRtcpInterval  = 5 * time.Second
	defaultIdleTimeout   = 60 * time.Second
	defaultMaxCollisions = uint32(3)
	defaultToolName      = "rtpsession"
)

// SessionConfig configures a Session. NewSession copies it, and the Session
// offers no way to change any field afterwards.
type SessionConfig struct {
	// ID names the session; left empty, a UUID is generated (grounded in
	// the pack's uuid.New().String() idiom for synthesizing identifiers).
	ID string

	PayloadType PayloadType

	// LocalParticipant seeds the SDES fields the engine advertises. CNAME
	// defaults to "rtpsession/<ID>@<local data address>" if left empty,
	// once the data channel is bound.
	LocalParticipant ParticipantInfo

	DiscardOutOfOrder bool

	MaxCollisionsBeforeConsideringLoop uint32

	// AutomatedRtcpHandling, when true, makes the Session own SR/RR/SDES/BYE
	// construction and emission; callers may only send APP packets manually.
	// Left at its zero value (false), the Session neither joins nor leaves
	// automatically and every control packet the caller sends goes out as-is.
	AutomatedRtcpHandling bool

	TryToUpdateOnEverySdes bool

	PeriodicRtcpSendInterval time.Duration
	ParticipantIdleTimeout   time.Duration

	// InitialSequenceNumber seeds the outgoing sequence counter. Left at
	// its zero value, egress starts at sequence 1 (pre-increment from 0),
	// matching the reference behavior documented as an open design
	// decision: RFC 3550 recommends a random start, which a caller can opt
	// into by setting this explicitly.
	InitialSequenceNumber uint16
	InitialLocalSSRC      SSRC // 0 means "generate randomly"

	DataLocalAddr    string
	ControlLocalAddr string

	Transport DatagramTransport
	Codec     PacketCodec

	Logger            zerolog.Logger
	MetricsRegisterer prometheus.Registerer
}

// Session is the top-level RTP/RTCP state machine: Created -> Running ->
// Terminated. All exported methods are safe for concurrent use.
type Session struct {
	id     string
	config SessionConfig

	machine *fsm.FSM
	mu      sync.Mutex // guards Init/Terminate and channel (re)binding

	transport     DatagramTransport
	codec         PacketCodec
	dataCh        Channel
	controlCh     Channel
	dataLocalAddr atomic.Value // net.Addr

	localSSRC       atomic.Uint32
	sequence        atomic.Uint32
	collisions      atomic.Uint32
	sentOrReceived  atomic.Bool
	sentBytes       atomic.Uint64
	sentPackets     atomic.Uint64
	receivedBytes   atomic.Uint64
	receivedPackets atomic.Uint64

	localInfoMu sync.RWMutex
	localInfo   ParticipantInfo

	db        *ParticipantDatabase
	scheduler *RtcpScheduler
	listeners *listenerRegistry
	arbiter   SsrcArbiter
	metrics   *sessionMetrics
	log       zerolog.Logger
}

// NewSession validates cfg and constructs a Session in the Created state.
// The session does not bind any socket until Init is called.
func NewSession(cfg SessionConfig) (*Session, error) {
	if !cfg.PayloadType.Valid() {
		return nil, ErrInvalidPayloadType
	}
	if cfg.Transport == nil {
		return nil, ErrMissingTransport
	}
	if cfg.Codec == nil {
		return nil, ErrMissingCodec
	}
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	if cfg.MaxCollisionsBeforeConsideringLoop == 0 {
		cfg.MaxCollisionsBeforeConsideringLoop = defaultMaxCollisions
	}
	if cfg.PeriodicRtcpSendInterval == 0 {
		cfg.PeriodicRtcpSendInterval = defaultRtcpInterval
	}
	if cfg.ParticipantIdleTimeout == 0 {
		cfg.ParticipantIdleTimeout = defaultIdleTimeout
	}
	if cfg.LocalParticipant.Tool == "" {
		cfg.LocalParticipant.Tool = defaultToolName
	}
	if reflect.DeepEqual(cfg.Logger, zeroLogger) {
		cfg.Logger = zerolog.Nop()
	}

	s := &Session{
		id:        cfg.ID,
		config:    cfg,
		transport: cfg.Transport,
		codec:     cfg.Codec,
		localInfo: cfg.LocalParticipant,
		log:       cfg.Logger.With().Str("component", "session").Str("session_id", cfg.ID).Logger(),
	}

	initialSSRC := cfg.InitialLocalSSRC
	if initialSSRC == 0 {
		initialSSRC = SSRC(randomUint32())
	}
	s.localSSRC.Store(uint32(initialSSRC))
	s.sequence.Store(uint32(cfg.InitialSequenceNumber))

	s.listeners = newListenerRegistry(s.log)
	s.metrics = newSessionMetrics(cfg.MetricsRegisterer, cfg.ID)
	s.db = NewParticipantDatabase(s.LocalSSRC, cfg.ParticipantIdleTimeout, s, s.log)
	s.scheduler = NewRtcpScheduler(FixedInterval(cfg.PeriodicRtcpSendInterval), s.onSchedulerTick)

	s.machine = fsm.NewFSM(
		stateCreated,
		fsm.Events{
			{Name: eventInit, Src: []string{stateCreated}, Dst: stateRunning},
			{Name: eventTerminate, Src: []string{stateRunning}, Dst: stateTerminated},
		},
		fsm.Callbacks{},
	)

	return s, nil
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// LocalSSRC returns the current local synchronization source.
func (s *Session) LocalSSRC() SSRC { return SSRC(s.localSSRC.Load()) }

// IsRunning reports whether the session is in the Running state.
func (s *Session) IsRunning() bool {
	return s.machine.Current() == stateRunning
}

// LocalDataAddr returns the bound local address of the data channel, or nil
// before Init succeeds.
func (s *Session) LocalDataAddr() net.Addr {
	return s.localDataAddr()
}

// LocalControlAddr returns the bound local address of the control channel,
// or nil before Init succeeds.
func (s *Session) LocalControlAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.controlCh == nil {
		return nil
	}
	return s.controlCh.LocalAddr()
}

// Init binds the data and control transports and transitions Created ->
// Running. If either bind fails, whatever succeeded is released and the
// session remains in Created.
func (s *Session) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.Current() != stateCreated {
		return ErrAlreadyRunning
	}

	dataCh, err := s.transport.BindData(s.config.DataLocalAddr, s.onDataReceived)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to bind data channel")
		return fmt.Errorf("rtp: bind data channel: %w", err)
	}
	controlCh, err := s.transport.BindControl(s.config.ControlLocalAddr, s.onControlReceived)
	if err != nil {
		_ = dataCh.Close()
		s.log.Error().Err(err).Msg("failed to bind control channel")
		return fmt.Errorf("rtp: bind control channel: %w", err)
	}

	s.dataCh = dataCh
	s.controlCh = controlCh
	s.dataLocalAddr.Store(dataCh.LocalAddr())

	s.localInfoMu.Lock()
	if s.localInfo.CNAME == "" {
		s.localInfo.CNAME = fmt.Sprintf("rtpsession/%s@%s", s.id, dataCh.LocalAddr().String())
	}
	s.localInfoMu.Unlock()

	if err := s.machine.Event(context.Background(), eventInit); err != nil {
		_ = dataCh.Close()
		_ = controlCh.Close()
		return fmt.Errorf("rtp: state transition: %w", err)
	}

	if s.config.AutomatedRtcpHandling {
		s.sendJoinRtcp()
		s.scheduler.Start()
	}

	s.log.Info().Stringer("ssrc", s.LocalSSRC()).Msg("session initialized")
	return nil
}

// Terminate tears the session down. Idempotent: only the first caller
// performs teardown and fires SessionTerminated.
func (s *Session) Terminate(cause TerminationCause) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.Current() != stateRunning {
		return
	}

	s.scheduler.Stop()

	if s.config.AutomatedRtcpHandling {
		s.sendLeaveRtcp(cause)
	}

	if s.dataCh != nil {
		_ = s.dataCh.Close()
	}
	if s.controlCh != nil {
		_ = s.controlCh.Close()
	}

	_ = s.machine.Event(context.Background(), eventTerminate)

	s.log.Info().Stringer("cause", loggableCause{cause}).Msg("session terminated")
	s.listeners.fireSessionTerminated(cause)
	s.listeners.clear()
}

type loggableCause struct{ c TerminationCause }

func (l loggableCause) String() string { return l.c.String() }

// SendData stamps and broadcasts one RTP data packet carrying payload to
// every explicit receiver whose BYE has not been seen. Returns false if the
// session is not Running.
func (s *Session) SendData(payload []byte, timestamp uint32, marker bool) bool {
	pkt := &DataPacket{
		Version:     2,
		Marker:      marker,
		PayloadType: s.config.PayloadType,
		Timestamp:   timestamp,
		Payload:     payload,
	}
	return s.SendDataPacket(pkt)
}

// SendDataPacket stamps packet's SSRC, payload type, and sequence number,
// overwriting any caller-supplied values, and broadcasts it.
func (s *Session) SendDataPacket(pkt *DataPacket) bool {
	if !s.IsRunning() {
		return false
	}

	pkt.SSRC = s.LocalSSRC()
	pkt.PayloadType = s.config.PayloadType
	pkt.SequenceNumber = uint16(s.sequence.Add(1))

	encoded, err := s.codec.EncodeData(pkt)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to encode outgoing data packet")
		return false
	}

	s.sentOrReceived.Store(true)
	s.sentPackets.Add(1)
	s.sentBytes.Add(uint64(len(payloadOf(pkt))))
	s.metrics.incPacketsSent(len(payloadOf(pkt)))

	s.db.DoWithReceivers(func(p *Participant) {
		if p.ByeReceived() {
			return
		}
		if err := s.dataCh.Send(encoded, p.DataAddress); err != nil {
			s.log.Warn().Err(err).Stringer("ssrc", p.Info.SSRC).Msg("failed to send data packet")
		}
	})
	return true
}

func payloadOf(pkt *DataPacket) []byte { return pkt.Payload }

// SendControlPacket sends a caller-constructed compound control packet to
// every explicit receiver. When automated RTCP handling is enabled, only
// APP_DATA packets are accepted.
func (s *Session) SendControlPacket(compound CompoundControlPacket) bool {
	if !s.IsRunning() {
		return false
	}
	if s.config.AutomatedRtcpHandling {
		for _, p := range compound {
			if p.Kind != ControlPacketAppData {
				s.log.Warn().Msg(ErrAutomatedRtcpOnly.Error())
				return false
			}
		}
	}
	return s.sendCompound(compound)
}

func (s *Session) sendCompound(compound CompoundControlPacket) bool {
	encoded, err := s.codec.EncodeControl(compound)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to encode outgoing control packet")
		return false
	}
	s.db.DoWithReceivers(func(p *Participant) {
		if err := s.controlCh.Send(encoded, p.ControlAddress); err != nil {
			s.log.Warn().Err(err).Stringer("ssrc", p.Info.SSRC).Msg("failed to send control packet")
		}
	})
	s.metrics.incRtcpReportsSent()
	return true
}

// AddReceiver registers p as an explicit egress target.
func (s *Session) AddReceiver(p *Participant) bool { return s.db.AddReceiver(p) }

// RemoveReceiver drops ssrc from the explicit-receiver set.
func (s *Session) RemoveReceiver(ssrc SSRC) bool { return s.db.RemoveReceiver(ssrc) }

// GetRemoteParticipant looks up a known remote participant by SSRC.
func (s *Session) GetRemoteParticipant(ssrc SSRC) *Participant { return s.db.GetParticipant(ssrc) }

// GetRemoteParticipants returns every known remote participant.
func (s *Session) GetRemoteParticipants() map[SSRC]*Participant { return s.db.GetMembers() }

// AddDataListener registers l to observe inbound data packets. The returned
// handle can be passed to RemoveDataListener.
func (s *Session) AddDataListener(l DataListener) ListenerHandle { return s.listeners.AddData(l) }

// RemoveDataListener unregisters a listener added via AddDataListener.
func (s *Session) RemoveDataListener(h ListenerHandle) bool { return s.listeners.RemoveData(h) }

// AddControlListener registers l to observe raw inbound control traffic. The
// returned handle can be passed to RemoveControlListener.
func (s *Session) AddControlListener(l ControlListener) ListenerHandle {
	return s.listeners.AddControl(l)
}

// RemoveControlListener unregisters a listener added via AddControlListener.
func (s *Session) RemoveControlListener(h ListenerHandle) bool {
	return s.listeners.RemoveControl(h)
}

// AddEventListener registers l to observe lifecycle and protocol events. The
// returned handle can be passed to RemoveEventListener.
func (s *Session) AddEventListener(l EventListener) ListenerHandle { return s.listeners.AddEvent(l) }

// RemoveEventListener unregisters a listener added via AddEventListener.
func (s *Session) RemoveEventListener(h ListenerHandle) bool { return s.listeners.RemoveEvent(h) }

// onDataReceived is the transport callback for the data channel.
func (s *Session) onDataReceived(origin net.Addr, raw []byte) {
	if !s.IsRunning() {
		return
	}
	pkt, err := s.codec.DecodeData(raw)
	if err != nil {
		s.log.Debug().Err(err).Msg("dropping undecodable data packet")
		return
	}
	if pkt.PayloadType != s.config.PayloadType {
		return
	}

	s.receivedPackets.Add(1)
	s.receivedBytes.Add(uint64(len(pkt.Payload)))
	s.metrics.incPacketsReceived(len(pkt.Payload))

	localDataAddr := s.localDataAddr()
	class := s.arbiter.Classify(pkt.SSRC, s.LocalSSRC(), origin, localDataAddr, s.collisions.Load(), s.config.MaxCollisionsBeforeConsideringLoop, s.db)

	switch class.Kind {
	case SelfLoop:
		s.log.Error().Msg("detected self-loop, terminating")
		s.Terminate(CauseSelfLoop)
		return
	case LoopByCollisions:
		s.log.Error().Msg("exceeded collision threshold, treating as loop")
		s.Terminate(CauseLoopByCollisions)
		return
	case Collision:
		s.handleCollision(class.NewLocalSSRC)
	}

	if s.db.GetOrCreateFromDataPacket(origin, pkt) == nil {
		return
	}

	participant, discarded := s.db.ApplyDataArrival(pkt.SSRC, origin, pkt.SequenceNumber, s.config.DiscardOutOfOrder)
	if discarded || participant == nil {
		return
	}

	info := participant.Info
	s.listeners.fireData(s, &info, pkt)
}

func (s *Session) localDataAddr() net.Addr {
	addr, _ := s.dataLocalAddr.Load().(net.Addr)
	return addr
}

func (s *Session) handleCollision(newSSRC SSRC) {
	old := s.LocalSSRC()
	s.collisions.Add(1)
	s.metrics.incCollisions()

	if s.sentOrReceived.Load() {
		s.sendCompound(CompoundControlPacket{
			s.buildSdes(),
			{Kind: ControlPacketBye, Bye: &Bye{Sources: []SSRC{old}, Reason: "SSRC collision"}},
		})
		s.localSSRC.Store(uint32(newSSRC))
		s.sendJoinRtcp()
	} else {
		s.localSSRC.Store(uint32(newSSRC))
	}

	s.log.Warn().Stringer("old_ssrc", old).Stringer("new_ssrc", newSSRC).Msg("resolved SSRC collision")
	s.listeners.fireResolvedSsrcConflict(old, newSSRC)
}

// onControlReceived is the transport callback for the control channel.
func (s *Session) onControlReceived(origin net.Addr, raw []byte) {
	if !s.IsRunning() {
		return
	}
	compound, err := s.codec.DecodeControl(raw)
	if err != nil {
		s.log.Debug().Err(err).Msg("dropping undecodable control packet")
		return
	}

	if !s.config.AutomatedRtcpHandling {
		s.listeners.fireControl(s, origin, compound)
		return
	}

	for _, pkt := range compound {
		switch pkt.Kind {
		case ControlPacketSenderReport:
			s.processReceptionReports(pkt.SR.SenderSSRC, pkt.SR.Reports)
		case ControlPacketReceiverReport:
			s.processReceptionReports(pkt.RR.SenderSSRC, pkt.RR.Reports)
		case ControlPacketSourceDescription:
			s.processSdes(origin, pkt.SDES)
		case ControlPacketBye:
			s.processBye(pkt.Bye)
		case ControlPacketAppData:
			s.listeners.fireControl(s, origin, CompoundControlPacket{pkt})
		}
	}
}

func (s *Session) processReceptionReports(senderSSRC SSRC, reports []ReceptionReport) {
	if s.db.GetParticipant(senderSSRC) == nil {
		return // a sender must first be announced via data or SDES
	}
	local := s.LocalSSRC()
	for _, r := range reports {
		if r.SSRC != local {
			continue
		}
		// Reserved for future jitter/loss tracking (see SPEC_FULL.md §9);
		// the engine does not yet act on reception reports about itself.
	}
}

func (s *Session) processSdes(origin net.Addr, sdes *SourceDescription) {
	for _, chunk := range sdes.Chunks {
		if s.db.GetOrCreateFromSdesChunk(origin, chunk) == nil {
			continue
		}
		s.db.Touch(chunk.SSRC)

		participant, changed := s.db.ApplySdesChunk(chunk.SSRC, origin, chunk, s.config.TryToUpdateOnEverySdes)
		if changed {
			s.listeners.fireParticipantDataUpdated(participant)
		}
	}
}

func (s *Session) processBye(bye *Bye) {
	for _, ssrc := range bye.Sources {
		p := s.db.MarkBye(ssrc)
		if p != nil {
			s.listeners.fireParticipantLeft(p)
		}
	}
}

// onSchedulerTick fires on every RTCP scheduler interval: emits a compound
// report to each receiver and sweeps idle participants.
func (s *Session) onSchedulerTick() {
	if !s.IsRunning() {
		return
	}
	s.emitCompoundRtcp()
	s.db.SweepIdle()
	s.metrics.setParticipants(len(s.db.GetMembers()))
}

// emitCompoundRtcp builds and sends one {report, SDES} compound packet per
// receiver, choosing SR when this session has sent at least one data packet
// and RR otherwise (RFC 3550 §6.4).
func (s *Session) emitCompoundRtcp() {
	sdes := s.buildSdes()
	local := s.LocalSSRC()
	sentPackets := s.sentPackets.Load()

	s.db.DoWithReceivers(func(p *Participant) {
		compound := CompoundControlPacket{s.buildReport(local, sentPackets, p), sdes}
		encoded, err := s.codec.EncodeControl(compound)
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to encode scheduled RTCP report")
			return
		}
		if err := s.controlCh.Send(encoded, p.ControlAddress); err != nil {
			s.log.Warn().Err(err).Stringer("ssrc", p.Info.SSRC).Msg("failed to send scheduled RTCP report")
		}
	})
	s.metrics.incRtcpReportsSent()
}

func (s *Session) buildReport(local SSRC, sentPackets uint64, context *Participant) ControlPacket {
	var reports []ReceptionReport
	if context.ReceivedPacketCount > 0 {
		reports = []ReceptionReport{{
			SSRC:                  context.Info.SSRC,
			ExtendedHighestSeqNum: uint32(context.LastSequenceNumber),
		}}
	}

	if sentPackets > 0 {
		return ControlPacket{
			Kind: ControlPacketSenderReport,
			SR: &SenderReport{
				SenderSSRC:        local,
				NTPTimestamp:      toNTP(time.Now()),
				SenderPacketCount: uint32(sentPackets),
				SenderOctetCount:  uint32(s.sentBytes.Load()),
				Reports:           reports,
			},
		}
	}
	return ControlPacket{
		Kind: ControlPacketReceiverReport,
		RR:   &ReceiverReport{SenderSSRC: local, Reports: reports},
	}
}

func (s *Session) buildSdes() ControlPacket {
	s.localInfoMu.RLock()
	info := s.localInfo
	s.localInfoMu.RUnlock()

	var items []SdesItem
	cname := info.CNAME
	if cname == "" {
		cname = fmt.Sprintf("rtpsession/%s", s.id)
	}
	items = append(items, SdesItem{Kind: SdesCNAME, Value: cname})
	if info.Name != "" {
		items = append(items, SdesItem{Kind: SdesNAME, Value: info.Name})
	}
	if info.Email != "" {
		items = append(items, SdesItem{Kind: SdesEMAIL, Value: info.Email})
	}
	if info.Phone != "" {
		items = append(items, SdesItem{Kind: SdesPHONE, Value: info.Phone})
	}
	if info.Location != "" {
		items = append(items, SdesItem{Kind: SdesLOC, Value: info.Location})
	}
	if info.Note != "" {
		items = append(items, SdesItem{Kind: SdesNOTE, Value: info.Note})
	}
	tool := info.Tool
	if tool == "" {
		tool = defaultToolName
	}
	items = append(items, SdesItem{Kind: SdesTOOL, Value: tool})

	return ControlPacket{
		Kind: ControlPacketSourceDescription,
		SDES: &SourceDescription{Chunks: []SdesChunk{{SSRC: s.LocalSSRC(), Items: items}}},
	}
}

// sendJoinRtcp announces presence on the control channel: an empty RR plus
// SDES, per RFC 3550's recommendation that a new participant announce itself
// before sending data.
func (s *Session) sendJoinRtcp() {
	local := s.LocalSSRC()
	s.sendCompound(CompoundControlPacket{
		{Kind: ControlPacketReceiverReport, RR: &ReceiverReport{SenderSSRC: local}},
		s.buildSdes(),
	})
}

func (s *Session) sendLeaveRtcp(cause TerminationCause) {
	local := s.LocalSSRC()
	// RFC 3550 requires every compound RTCP transmission to begin with an
	// SR or RR, even the final BYE.
	s.sendCompound(CompoundControlPacket{
		{Kind: ControlPacketReceiverReport, RR: &ReceiverReport{SenderSSRC: local}},
		s.buildSdes(),
		{Kind: ControlPacketBye, Bye: &Bye{Sources: []SSRC{local}, Reason: cause.String()}},
	})
}

// ParticipantCreatedFromDataPacket implements ParticipantEventListener.
func (s *Session) ParticipantCreatedFromDataPacket(p *Participant) {
	s.log.Debug().Stringer("ssrc", p.Info.SSRC).Msg("participant discovered from data packet")
	s.listeners.fireParticipantCreated(p)
}

// ParticipantCreatedFromSdesChunk implements ParticipantEventListener.
func (s *Session) ParticipantCreatedFromSdesChunk(p *Participant) {
	s.log.Debug().Stringer("ssrc", p.Info.SSRC).Msg("participant discovered from SDES")
	s.listeners.fireParticipantCreated(p)
}

// ParticipantDataUpdated implements ParticipantEventListener.
func (s *Session) ParticipantDataUpdated(p *Participant) {
	s.listeners.fireParticipantDataUpdated(p)
}

// ParticipantDeleted implements ParticipantEventListener.
func (s *Session) ParticipantDeleted(p *Participant) {
	s.listeners.fireParticipantDeleted(p)
}

// SentPackets returns the number of data packets sent so far.
func (s *Session) SentPackets() uint64 { return s.sentPackets.Load() }

// SentBytes returns the number of payload bytes sent so far.
func (s *Session) SentBytes() uint64 { return s.sentBytes.Load() }

// ReceivedPackets returns the number of data packets received so far.
func (s *Session) ReceivedPackets() uint64 { return s.receivedPackets.Load() }

// ReceivedBytes returns the number of payload bytes received so far.
func (s *Session) ReceivedBytes() uint64 { return s.receivedBytes.Load() }

// Collisions returns the number of SSRC collisions resolved so far.
func (s *Session) Collisions() uint32 { return s.collisions.Load() }

// toNTP converts a wall-clock time to the 64-bit fixed-point NTP timestamp
// format used by RTCP Sender Reports (RFC 3550 §4), seconds since the NTP
// epoch (1900-01-01) in the high 32 bits, fractional seconds in the low 32.
func toNTP(t time.Time) uint64 {
	const ntpEpochOffset = 2208988800 // seconds between 1900-01-01 and 1970-01-01
	secs := uint64(t.Unix()+ntpEpochOffset)
	frac := uint64(float64(t.Nanosecond()) / 1e9 * (1 << 32))
	return secs<<32 | frac
}
