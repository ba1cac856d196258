package rtp

import "net"

// DataPacket is the engine's in-memory representation of one RTP packet.
// A PacketCodec translates between this shape and wire bytes.
type DataPacket struct {
	Version        uint8
	Padding        bool
	Extension      bool
	Marker         bool
	PayloadType    PayloadType
	SequenceNumber uint16
	Timestamp      uint32
	SSRC           SSRC
	CSRC           []SSRC
	Payload        []byte
}

// ControlPacketKind tags the concrete type carried by a ControlPacket.
type ControlPacketKind int

const (
	ControlPacketSenderReport ControlPacketKind = iota
	ControlPacketReceiverReport
	ControlPacketSourceDescription
	ControlPacketBye
	ControlPacketAppData
)

// ReceptionReport is one block of per-source reception statistics as carried
// in a Sender or Receiver Report (RFC 3550 §6.4.1/6.4.2). The loss/jitter/DLSR
// fields are placeholders the engine does not compute (see SPEC_FULL.md §9);
// ExtendedHighestSeqNum is populated from tracked participant state.
type ReceptionReport struct {
	SSRC                  SSRC
	FractionLost          uint8
	CumulativePacketsLost int32
	ExtendedHighestSeqNum uint32
	Jitter                uint32
	LastSR                uint32
	DelaySinceLastSR      uint32
}

// SenderReport is an RTCP SR packet (RFC 3550 §6.4.1).
type SenderReport struct {
	SenderSSRC       SSRC
	NTPTimestamp     uint64
	RTPTimestamp     uint32
	SenderPacketCount uint32
	SenderOctetCount  uint32
	Reports          []ReceptionReport
}

// ReceiverReport is an RTCP RR packet (RFC 3550 §6.4.2).
type ReceiverReport struct {
	SenderSSRC SSRC
	Reports    []ReceptionReport
}

// SdesItemKind enumerates the SDES item types the engine understands
// (RFC 3550 §6.5).
type SdesItemKind int

const (
	SdesCNAME SdesItemKind = iota + 1
	SdesNAME
	SdesEMAIL
	SdesPHONE
	SdesLOC
	SdesTOOL
	SdesNOTE
)

// SdesItem is one {kind, value} pair inside an SDES chunk.
type SdesItem struct {
	Kind  SdesItemKind
	Value string
}

// SdesChunk is the per-source SDES payload (RFC 3550 §6.5).
type SdesChunk struct {
	SSRC  SSRC
	Items []SdesItem
}

// SourceDescription is an RTCP SDES packet: one or more chunks.
type SourceDescription struct {
	Chunks []SdesChunk
}

// Bye is an RTCP BYE packet (RFC 3550 §6.6).
type Bye struct {
	Sources []SSRC
	Reason  string
}

// AppData is an RTCP APP packet (RFC 3550 §6.7).
type AppData struct {
	SenderSSRC SSRC
	Name       [4]byte
	Data       []byte
}

// ControlPacket is a tagged variant over the concrete RTCP packet kinds.
// Exactly one of the typed fields is meaningful, selected by Kind.
type ControlPacket struct {
	Kind      ControlPacketKind
	SR        *SenderReport
	RR        *ReceiverReport
	SDES      *SourceDescription
	Bye       *Bye
	App       *AppData
}

// CompoundControlPacket is an ordered sequence of control packets sent or
// received as a single RTCP transmission; RFC 3550 §6.1 requires every
// compound packet to begin with an SR or RR.
type CompoundControlPacket []ControlPacket

// DatagramTransport is the socket-layer collaborator the core consumes. It
// never appears in wire format decisions; it only moves bytes.
type DatagramTransport interface {
	// BindData opens the channel used for RTP data packets.
	BindData(localAddr string, onReceive func(origin net.Addr, payload []byte)) (Channel, error)
	// BindControl opens the channel used for RTCP control packets.
	BindControl(localAddr string, onReceive func(origin net.Addr, payload []byte)) (Channel, error)
}

// Channel is one bound, bidirectional datagram endpoint.
type Channel interface {
	Send(payload []byte, remote net.Addr) error
	LocalAddr() net.Addr
	Close() error
}

// PacketCodec translates between wire bytes and the engine's packet types.
type PacketCodec interface {
	EncodeData(p *DataPacket) ([]byte, error)
	DecodeData(b []byte) (*DataPacket, error)
	EncodeControl(c CompoundControlPacket) ([]byte, error)
	DecodeControl(b []byte) (CompoundControlPacket, error)
}
