package rtp

import (
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ParticipantEventListener is notified of lifecycle events on the database.
// The Session is the sole implementer; methods must not block.
type ParticipantEventListener interface {
	ParticipantCreatedFromDataPacket(p *Participant)
	ParticipantCreatedFromSdesChunk(p *Participant)
	ParticipantDataUpdated(p *Participant)
	ParticipantDeleted(p *Participant)
}

// ParticipantDatabase holds all known remote participants for one session:
// explicit receivers added by the host application, and members discovered
// from incoming traffic. A participant counts as an explicit receiver once
// AddReceiver has been called for its SSRC; discovery alone never makes an
// entry an egress target.
//
// Locking follows the source manager pattern: one RWMutex guards the map,
// held only for the duration of a lookup/mutation, never across a listener
// callback.
type ParticipantDatabase struct {
	mu          sync.RWMutex
	byKey       map[SSRC]*Participant
	isReceiver  map[SSRC]bool
	localSSRC   func() SSRC
	idleTimeout time.Duration
	listener    ParticipantEventListener
	log         zerolog.Logger
}

// NewParticipantDatabase constructs an empty database. localSSRC is consulted
// on every mutation so the local identifier is never admitted as a key, even
// across SSRC rotation.
func NewParticipantDatabase(localSSRC func() SSRC, idleTimeout time.Duration, listener ParticipantEventListener, log zerolog.Logger) *ParticipantDatabase {
	return &ParticipantDatabase{
		byKey:       make(map[SSRC]*Participant),
		isReceiver:  make(map[SSRC]bool),
		localSSRC:   localSSRC,
		idleTimeout: idleTimeout,
		listener:    listener,
		log:         log.With().Str("component", "participant_database").Logger(),
	}
}

// AddReceiver admits p as an explicit egress target. Returns false if p's
// SSRC is the local SSRC, or if an entry already exists for that SSRC whose
// recorded addresses are incompatible with p's (same address kind set on
// both sides but disagreeing) — admitting it would silently clobber a
// discovered identity.
func (db *ParticipantDatabase) AddReceiver(p *Participant) bool {
	if p.Info.SSRC == db.localSSRC() {
		return false
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if existing, ok := db.byKey[p.Info.SSRC]; ok && !addressesCompatible(existing, p) {
		return false
	}
	db.byKey[p.Info.SSRC] = p
	db.isReceiver[p.Info.SSRC] = true
	return true
}

// addressesCompatible reports whether b can be admitted in place of a: for
// each address kind both sides have set, they must agree.
func addressesCompatible(a, b *Participant) bool {
	if a.DataAddress != nil && b.DataAddress != nil && a.DataAddress.String() != b.DataAddress.String() {
		return false
	}
	if a.ControlAddress != nil && b.ControlAddress != nil && a.ControlAddress.String() != b.ControlAddress.String() {
		return false
	}
	return true
}

// RemoveReceiver drops the explicit-receiver marking for ssrc. The
// participant record itself, if discovered independently, is left in place.
func (db *ParticipantDatabase) RemoveReceiver(ssrc SSRC) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	if !db.isReceiver[ssrc] {
		return false
	}
	delete(db.isReceiver, ssrc)
	return true
}

// GetParticipant looks up a participant by SSRC.
func (db *ParticipantDatabase) GetParticipant(ssrc SSRC) *Participant {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.byKey[ssrc]
}

// GetOrCreateFromDataPacket returns the existing participant for the
// packet's SSRC, or creates one bound to origin and fires
// ParticipantCreatedFromDataPacket. Returns nil if ssrc is the local SSRC.
func (db *ParticipantDatabase) GetOrCreateFromDataPacket(origin net.Addr, packet *DataPacket) *Participant {
	if packet.SSRC == db.localSSRC() {
		return nil
	}
	db.mu.Lock()
	p, exists := db.byKey[packet.SSRC]
	if !exists {
		p = NewParticipant(packet.SSRC)
		p.DataAddress = origin
		db.byKey[packet.SSRC] = p
	}
	db.mu.Unlock()

	if !exists && db.listener != nil {
		db.listener.ParticipantCreatedFromDataPacket(p)
	}
	return p
}

// GetOrCreateFromSdesChunk returns the existing participant for the chunk's
// SSRC, creating one bound to origin's control address if unknown. If a
// participant already exists for this SSRC (e.g. discovered from a data
// packet), it is augmented with the control address in place rather than
// duplicated. Returns nil if ssrc is the local SSRC.
func (db *ParticipantDatabase) GetOrCreateFromSdesChunk(origin net.Addr, chunk SdesChunk) *Participant {
	if chunk.SSRC == db.localSSRC() {
		return nil
	}
	db.mu.Lock()
	p, exists := db.byKey[chunk.SSRC]
	if !exists {
		p = NewParticipant(chunk.SSRC)
		p.ControlAddress = origin
		db.byKey[chunk.SSRC] = p
	} else if p.ControlAddress == nil {
		p.ControlAddress = origin
	}
	db.mu.Unlock()

	if !exists && db.listener != nil {
		db.listener.ParticipantCreatedFromSdesChunk(p)
	}
	return p
}

// DoWithReceivers invokes op once per explicit receiver, over a snapshot
// taken under the read lock; op runs outside any lock, so it may itself
// call back into the database (e.g. to read a different participant).
func (db *ParticipantDatabase) DoWithReceivers(op func(*Participant)) {
	db.mu.RLock()
	snapshot := make([]*Participant, 0, len(db.isReceiver))
	for ssrc := range db.isReceiver {
		if p, ok := db.byKey[ssrc]; ok {
			snapshot = append(snapshot, p)
		}
	}
	db.mu.RUnlock()

	for _, p := range snapshot {
		op(p)
	}
}

// GetMembers returns a shallow copy of every known participant, receiver or
// discovered.
func (db *ParticipantDatabase) GetMembers() map[SSRC]*Participant {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make(map[SSRC]*Participant, len(db.byKey))
	for k, v := range db.byKey {
		out[k] = v
	}
	return out
}

// Touch records activity for ssrc and increments its received packet count.
func (db *ParticipantDatabase) Touch(ssrc SSRC) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if p, ok := db.byKey[ssrc]; ok {
		p.ReceivedPacketCount++
		p.touch()
	}
}

// ApplyDataArrival records an inbound data packet against ssrc's
// participant under the database lock: if discardOutOfOrder is set and seq
// does not advance lastSequenceNumber, the arrival is reported as discarded
// and no field is touched; otherwise lastSequenceNumber, dataAddress,
// receivedPacketCount, and lastActivity are all updated atomically with
// respect to every other database operation. Returns the participant (nil
// if ssrc is unknown) and whether the arrival was discarded.
func (db *ParticipantDatabase) ApplyDataArrival(ssrc SSRC, origin net.Addr, seq uint16, discardOutOfOrder bool) (p *Participant, discarded bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.byKey[ssrc]
	if !ok {
		return nil, false
	}
	if discardOutOfOrder && p.LastSequenceNumber >= 0 && int32(seq) <= p.LastSequenceNumber {
		return p, true
	}
	p.LastSequenceNumber = int32(seq)
	p.DataAddress = origin
	p.ReceivedPacketCount++
	p.touch()
	return p, false
}

// ApplySdesChunk records an inbound SDES chunk against chunk.SSRC's
// participant under the database lock: marks receivedSdes, merges the
// control origin, and — if tryToUpdateOnEverySdes or this is the first SDES
// seen for the participant — applies chunk to its info. Returns the
// participant (nil if unknown) and whether applying the chunk changed any
// field.
func (db *ParticipantDatabase) ApplySdesChunk(ssrc SSRC, origin net.Addr, chunk SdesChunk, tryToUpdateOnEverySdes bool) (p *Participant, changed bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.byKey[ssrc]
	if !ok {
		return nil, false
	}
	firstSdes := !p.ReceivedSdesFlag
	p.ReceivedSdesFlag = true
	p.ControlAddress = origin
	if tryToUpdateOnEverySdes || firstSdes {
		changed = p.Info.UpdateFromSdesChunk(chunk)
	}
	return p, changed
}

// MarkBye flags ssrc as having sent BYE; eviction happens later via the idle
// sweep, preserving identity for late duplicate BYEs.
func (db *ParticipantDatabase) MarkBye(ssrc SSRC) *Participant {
	db.mu.Lock()
	p, ok := db.byKey[ssrc]
	if ok {
		p.MarkByeReceived()
	}
	db.mu.Unlock()
	return p
}

// Remove deletes ssrc unconditionally, receiver marking included, and fires
// ParticipantDeleted.
func (db *ParticipantDatabase) Remove(ssrc SSRC) {
	db.mu.Lock()
	p, ok := db.byKey[ssrc]
	if ok {
		delete(db.byKey, ssrc)
		delete(db.isReceiver, ssrc)
	}
	db.mu.Unlock()

	if ok && db.listener != nil {
		db.listener.ParticipantDeleted(p)
	}
}

// Contains reports whether ssrc is already a known key, used by the SSRC
// arbiter when picking a replacement identifier.
func (db *ParticipantDatabase) Contains(ssrc SSRC) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.byKey[ssrc]
	return ok
}

// SweepIdle evicts every participant whose LastActivity is older than the
// configured idle timeout, firing ParticipantDeleted for each. Intended to be
// invoked periodically by the Session alongside the RTCP scheduler tick.
func (db *ParticipantDatabase) SweepIdle() {
	if db.idleTimeout <= 0 {
		return
	}
	cutoff := time.Now().Add(-db.idleTimeout)

	db.mu.Lock()
	var stale []*Participant
	for ssrc, p := range db.byKey {
		if p.LastActivity.Before(cutoff) {
			stale = append(stale, p)
			delete(db.byKey, ssrc)
			delete(db.isReceiver, ssrc)
		}
	}
	db.mu.Unlock()

	if db.listener == nil {
		return
	}
	for _, p := range stale {
		db.log.Debug().Stringer("ssrc", p.Info.SSRC).Msg("evicted idle participant")
		db.listener.ParticipantDeleted(p)
	}
}
