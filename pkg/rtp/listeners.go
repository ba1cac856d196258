package rtp

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ListenerHandle identifies a previously registered listener for removal.
type ListenerHandle uint64

// DataListener observes inbound RTP data packets already attributed to a
// participant.
type DataListener func(session *Session, participant *ParticipantInfo, packet *DataPacket)

// ControlListener observes raw inbound compound RTCP packets. It only fires
// for the packet kinds the Session does not consume itself when automated
// RTCP handling is on: APP_DATA always, and every kind when automated
// handling is off.
type ControlListener func(session *Session, origin net.Addr, packet CompoundControlPacket)

// EventListener observes session lifecycle and protocol events.
type EventListener interface {
	ParticipantCreated(p *Participant)
	ParticipantDataUpdated(p *Participant)
	ParticipantLeft(p *Participant)
	ParticipantDeleted(p *Participant)
	ResolvedSsrcConflict(oldSSRC, newSSRC SSRC)
	SessionTerminated(cause TerminationCause)
}

// listenerRegistry holds three independent, copy-on-write listener lists.
// Every registered callback is treated as untrusted: dispatch recovers from
// panics and logs them rather than letting them escape to the caller's
// dispatch goroutine.
type dataEntry struct {
	handle ListenerHandle
	l      DataListener
}

type controlEntry struct {
	handle ListenerHandle
	l      ControlListener
}

type eventEntry struct {
	handle ListenerHandle
	l      EventListener
}

type listenerRegistry struct {
	mu      sync.Mutex
	data    []dataEntry
	control []controlEntry
	event   []eventEntry
	log     zerolog.Logger
	nextID  atomic.Uint64
}

func newListenerRegistry(log zerolog.Logger) *listenerRegistry {
	return &listenerRegistry{log: log.With().Str("component", "listeners").Logger()}
}

func (r *listenerRegistry) newHandle() ListenerHandle {
	return ListenerHandle(r.nextID.Add(1))
}

func (r *listenerRegistry) AddData(l DataListener) ListenerHandle {
	h := r.newHandle()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(append([]dataEntry{}, r.data...), dataEntry{h, l})
	return h
}

func (r *listenerRegistry) AddControl(l ControlListener) ListenerHandle {
	h := r.newHandle()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.control = append(append([]controlEntry{}, r.control...), controlEntry{h, l})
	return h
}

func (r *listenerRegistry) AddEvent(l EventListener) ListenerHandle {
	h := r.newHandle()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.event = append(append([]eventEntry{}, r.event...), eventEntry{h, l})
	return h
}

func (r *listenerRegistry) RemoveData(h ListenerHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.data {
		if e.handle == h {
			next := append([]dataEntry{}, r.data[:i]...)
			r.data = append(next, r.data[i+1:]...)
			return true
		}
	}
	return false
}

func (r *listenerRegistry) RemoveControl(h ListenerHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.control {
		if e.handle == h {
			next := append([]controlEntry{}, r.control[:i]...)
			r.control = append(next, r.control[i+1:]...)
			return true
		}
	}
	return false
}

func (r *listenerRegistry) RemoveEvent(h ListenerHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.event {
		if e.handle == h {
			next := append([]eventEntry{}, r.event[:i]...)
			r.event = append(next, r.event[i+1:]...)
			return true
		}
	}
	return false
}

func (r *listenerRegistry) snapshotData() []dataEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

func (r *listenerRegistry) snapshotControl() []controlEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.control
}

func (r *listenerRegistry) snapshotEvent() []eventEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.event
}

func (r *listenerRegistry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = nil
	r.control = nil
	r.event = nil
}

func (r *listenerRegistry) fireData(session *Session, info *ParticipantInfo, packet *DataPacket) {
	for _, e := range r.snapshotData() {
		l := e.l
		r.guard(func() { l(session, info, packet) })
	}
}

func (r *listenerRegistry) fireControl(session *Session, origin net.Addr, packet CompoundControlPacket) {
	for _, e := range r.snapshotControl() {
		l := e.l
		r.guard(func() { l(session, origin, packet) })
	}
}

func (r *listenerRegistry) fireParticipantCreated(p *Participant) {
	for _, e := range r.snapshotEvent() {
		ll := e.l
		r.guard(func() { ll.ParticipantCreated(p) })
	}
}

func (r *listenerRegistry) fireParticipantDataUpdated(p *Participant) {
	for _, e := range r.snapshotEvent() {
		ll := e.l
		r.guard(func() { ll.ParticipantDataUpdated(p) })
	}
}

func (r *listenerRegistry) fireParticipantLeft(p *Participant) {
	for _, e := range r.snapshotEvent() {
		ll := e.l
		r.guard(func() { ll.ParticipantLeft(p) })
	}
}

func (r *listenerRegistry) fireParticipantDeleted(p *Participant) {
	for _, e := range r.snapshotEvent() {
		ll := e.l
		r.guard(func() { ll.ParticipantDeleted(p) })
	}
}

func (r *listenerRegistry) fireResolvedSsrcConflict(oldSSRC, newSSRC SSRC) {
	for _, e := range r.snapshotEvent() {
		ll := e.l
		r.guard(func() { ll.ResolvedSsrcConflict(oldSSRC, newSSRC) })
	}
}

func (r *listenerRegistry) fireSessionTerminated(cause TerminationCause) {
	for _, e := range r.snapshotEvent() {
		ll := e.l
		r.guard(func() { ll.SessionTerminated(cause) })
	}
}

func (r *listenerRegistry) guard(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Msg("listener panicked, recovered")
		}
	}()
	fn()
}
