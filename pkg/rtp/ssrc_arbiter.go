package rtp

import (
	"crypto/rand"
	"encoding/binary"
	"net"
)

// ClassificationKind is the outcome of SsrcArbiter.Classify.
type ClassificationKind int

const (
	// Normal means the packet carries a foreign SSRC; no action needed.
	Normal ClassificationKind = iota
	// SelfLoop means our own packet arrived back from our own address:
	// fatal, the session must terminate.
	SelfLoop
	// Collision means a foreign peer is using our SSRC; the local SSRC
	// must be rotated.
	Collision
	// LoopByCollisions means the collision count threshold was exceeded,
	// taken as evidence of a routing loop: fatal, the session must
	// terminate.
	LoopByCollisions
)

// Classification is the result of evaluating one inbound data packet against
// the local identity.
type Classification struct {
	Kind         ClassificationKind
	NewLocalSSRC SSRC // only set when Kind == Collision
}

// SsrcArbiter implements the ordered collision/self-loop rules of RFC 3550
// §8.2. It holds no state of its own; all context is passed in per call.
type SsrcArbiter struct{}

// Classify evaluates one inbound data packet.
//
//   - packetSSRC == localSSRC && origin == localDataAddr  -> SelfLoop
//   - packetSSRC == localSSRC && collisions+1 > max       -> LoopByCollisions
//   - packetSSRC == localSSRC                             -> Collision(new)
//   - otherwise                                           -> Normal
//
// db is consulted so the freshly chosen SSRC never collides with a known
// participant.
func (SsrcArbiter) Classify(packetSSRC, localSSRC SSRC, origin, localDataAddr net.Addr, collisions, maxCollisions uint32, db *ParticipantDatabase) Classification {
	if packetSSRC != localSSRC {
		return Classification{Kind: Normal}
	}
	if sameAddr(origin, localDataAddr) {
		return Classification{Kind: SelfLoop}
	}
	if collisions+1 > maxCollisions {
		return Classification{Kind: LoopByCollisions}
	}
	return Classification{Kind: Collision, NewLocalSSRC: pickReplacementSSRC(localSSRC, db)}
}

func sameAddr(a, b net.Addr) bool {
	if a == nil || b == nil {
		return false
	}
	return a.String() == b.String()
}

// pickReplacementSSRC draws a uniformly random SSRC, excluding the value
// being replaced and every SSRC already present in db.
func pickReplacementSSRC(exclude SSRC, db *ParticipantDatabase) SSRC {
	for {
		candidate := SSRC(randomUint32())
		if candidate == 0 || candidate == exclude {
			continue
		}
		if db != nil && db.Contains(candidate) {
			continue
		}
		return candidate
	}
}

func randomUint32() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable on any real
		// platform; fall back to a fixed non-zero value rather than loop
		// forever on a broken entropy source.
		return 0x4a6f7068 // "Joph"
	}
	return binary.BigEndian.Uint32(b[:])
}
