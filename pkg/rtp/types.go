// Package rtp implements an RFC 3550 RTP/RTCP session engine: a single-stream
// peer that frames outgoing media, demultiplexes incoming packets per remote
// source, resolves SSRC collisions, and drives the periodic RTCP control loop.
//
// The engine treats the datagram socket layer and the wire codec as external
// collaborators (see DatagramTransport and PacketCodec); callers supply a
// concrete implementation, or use the defaults in the udptransport and codec
// subpackages.
package rtp

import "fmt"

// SSRC identifies a synchronization source, per RFC 3550 §3.
type SSRC uint32

func (s SSRC) String() string {
	return fmt.Sprintf("0x%08x", uint32(s))
}

// PayloadType is the RTP payload type carried in the packet header (RFC 3551
// Table 4/5 assigns the well-known static values below; dynamic types use the
// 96-127 range by convention).
type PayloadType uint8

const (
	PayloadTypePCMU PayloadType = 0
	PayloadTypeGSM  PayloadType = 3
	PayloadTypeG723 PayloadType = 4
	PayloadTypePCMA PayloadType = 8
	PayloadTypeG722 PayloadType = 9
	PayloadTypeG729 PayloadType = 18

	// PayloadTypeDynamicMin is the lowest value in the dynamic payload range.
	PayloadTypeDynamicMin PayloadType = 96
	// PayloadTypeDynamicMax is the highest legal RTP payload type.
	PayloadTypeDynamicMax PayloadType = 127
)

// Valid reports whether pt is a legal 7-bit RTP payload type.
func (pt PayloadType) Valid() bool {
	return pt <= PayloadTypeDynamicMax
}
