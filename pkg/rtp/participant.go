package rtp

import (
	"net"
	"time"
)

// Participant is the runtime record the engine keeps for one remote SSRC.
// Mutation through ParticipantDatabase methods is guarded by the database's
// single map-wide lock; Participant itself holds no lock.
type Participant struct {
	Info ParticipantInfo

	DataAddress    net.Addr
	ControlAddress net.Addr

	// LastSequenceNumber is -1 until the first data packet is observed.
	LastSequenceNumber    int32
	ReceivedPacketCount   uint64
	ReceivedByeFlag       bool
	ReceivedSdesFlag      bool
	LastActivity          time.Time
}

// NewParticipant returns a Participant for ssrc with no known addresses yet.
func NewParticipant(ssrc SSRC) *Participant {
	return &Participant{
		Info:               ParticipantInfo{SSRC: ssrc},
		LastSequenceNumber: -1,
		LastActivity:       time.Now(),
	}
}

// IsReceiver reports whether this participant has both a data and control
// address on file, making it a valid egress target.
func (p *Participant) IsReceiver() bool {
	return p.DataAddress != nil && p.ControlAddress != nil
}

// MarkByeReceived latches the bye flag; once true it never reverts.
func (p *Participant) MarkByeReceived() {
	p.ReceivedByeFlag = true
}

// ByeReceived reports whether a BYE has been observed for this participant.
func (p *Participant) ByeReceived() bool {
	return p.ReceivedByeFlag
}

// touch records activity now, used by the idle-eviction sweep.
func (p *Participant) touch() {
	p.LastActivity = time.Now()
}
