package rtp

import "errors"

// Sentinel errors returned by Session configuration and control methods.
// These map to the error kinds a caller must be able to branch on without
// inspecting formatted text.
var (
	// ErrAlreadyRunning is returned by Init once the session has left the
	// Created state. The configuration itself is copied by NewSession and
	// has no mutators.
	ErrAlreadyRunning = errors.New("rtp: session configuration is immutable after init")

	// ErrInvalidPayloadType is returned when a configured or supplied
	// payload type falls outside the 7-bit RTP range.
	ErrInvalidPayloadType = errors.New("rtp: payload type must be in [0,127]")

	// ErrMissingTransport is returned by NewSession when no
	// DatagramTransport was configured.
	ErrMissingTransport = errors.New("rtp: no transport configured")

	// ErrMissingCodec is returned by NewSession when no PacketCodec was
	// configured.
	ErrMissingCodec = errors.New("rtp: no codec configured")

	// ErrAutomatedRtcpOnly is logged by SendControlPacket, which then
	// returns false, when automated RTCP handling is enabled and the caller
	// attempts to send anything other than application-defined data.
	ErrAutomatedRtcpOnly = errors.New("rtp: only APP packets may be sent manually while automated RTCP handling is enabled")
)

// TerminationCause explains why a session moved to the Terminated state.
type TerminationCause int

const (
	// CauseRequested is a normal, caller-initiated terminate().
	CauseRequested TerminationCause = iota
	// CauseSelfLoop is a fatal detection of our own packets looping back.
	CauseSelfLoop
	// CauseLoopByCollisions is a fatal detection of repeated SSRC
	// collisions (counted across all peers), taken as evidence of a
	// network loop.
	CauseLoopByCollisions
	// CauseTransportFailure marks teardown triggered by an unrecoverable
	// transport error.
	CauseTransportFailure
)

func (c TerminationCause) String() string {
	switch c {
	case CauseRequested:
		return "requested"
	case CauseSelfLoop:
		return "self-loop"
	case CauseLoopByCollisions:
		return "loop-by-collisions"
	case CauseTransportFailure:
		return "transport-failure"
	default:
		return "unknown"
	}
}
