// Package codec implements rtp.PacketCodec on top of github.com/pion/rtp and
// github.com/pion/rtcp, the same pair of libraries used for RTP/RTCP framing
// elsewhere in the media stack this engine was adapted from.
package codec

import (
	"fmt"

	prtcp "github.com/pion/rtcp"
	prtp "github.com/pion/rtp"

	engine "github.com/arzzra/rtpsession/pkg/rtp"
)

// Codec is the default rtp.PacketCodec implementation.
type Codec struct{}

// New returns a ready-to-use Codec.
func New() *Codec { return &Codec{} }

// EncodeData marshals an engine.DataPacket into RTP wire bytes.
func (Codec) EncodeData(p *engine.DataPacket) ([]byte, error) {
	pkt := &prtp.Packet{
		Header: prtp.Header{
			Version:        2,
			Padding:        p.Padding,
			Extension:      p.Extension,
			Marker:         p.Marker,
			PayloadType:    uint8(p.PayloadType),
			SequenceNumber: p.SequenceNumber,
			Timestamp:      p.Timestamp,
			SSRC:           uint32(p.SSRC),
			CSRC:           toUint32Slice(p.CSRC),
		},
		Payload: p.Payload,
	}
	return pkt.Marshal()
}

// DecodeData unmarshals RTP wire bytes into an engine.DataPacket.
func (Codec) DecodeData(b []byte) (*engine.DataPacket, error) {
	var pkt prtp.Packet
	if err := pkt.Unmarshal(b); err != nil {
		return nil, fmt.Errorf("codec: unmarshal RTP packet: %w", err)
	}
	return &engine.DataPacket{
		Version:        pkt.Version,
		Padding:        pkt.Padding,
		Extension:      pkt.Extension,
		Marker:         pkt.Marker,
		PayloadType:    engine.PayloadType(pkt.PayloadType),
		SequenceNumber: pkt.SequenceNumber,
		Timestamp:      pkt.Timestamp,
		SSRC:           engine.SSRC(pkt.SSRC),
		CSRC:           toSSRCSlice(pkt.CSRC),
		Payload:        pkt.Payload,
	}, nil
}

// EncodeControl marshals a compound control packet into RTCP wire bytes,
// serializing its packets back-to-back in order with pion/rtcp's Marshal.
// The first packet is not required to be an SR or RR, so an APP-only or
// {SDES, BYE} compound encodes as given.
func (Codec) EncodeControl(compound engine.CompoundControlPacket) ([]byte, error) {
	packets := make([]prtcp.Packet, 0, len(compound))
	for _, p := range compound {
		pkt, err := toPionPacket(p)
		if err != nil {
			return nil, err
		}
		packets = append(packets, pkt)
	}
	return prtcp.Marshal(packets)
}

// DecodeControl unmarshals RTCP wire bytes into a compound control packet.
func (Codec) DecodeControl(b []byte) (engine.CompoundControlPacket, error) {
	packets, err := prtcp.Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("codec: unmarshal RTCP compound packet: %w", err)
	}
	out := make(engine.CompoundControlPacket, 0, len(packets))
	for _, pkt := range packets {
		converted, ok := fromPionPacket(pkt)
		if ok {
			out = append(out, converted)
		}
	}
	return out, nil
}

func toPionPacket(p engine.ControlPacket) (prtcp.Packet, error) {
	switch p.Kind {
	case engine.ControlPacketSenderReport:
		sr := p.SR
		return &prtcp.SenderReport{
			SSRC:        uint32(sr.SenderSSRC),
			NTPTime:     sr.NTPTimestamp,
			RTPTime:     sr.RTPTimestamp,
			PacketCount: sr.SenderPacketCount,
			OctetCount:  sr.SenderOctetCount,
			Reports:     toPionReports(sr.Reports),
		}, nil
	case engine.ControlPacketReceiverReport:
		rr := p.RR
		return &prtcp.ReceiverReport{
			SSRC:    uint32(rr.SenderSSRC),
			Reports: toPionReports(rr.Reports),
		}, nil
	case engine.ControlPacketSourceDescription:
		return &prtcp.SourceDescription{Chunks: toPionChunks(p.SDES.Chunks)}, nil
	case engine.ControlPacketBye:
		return &prtcp.Goodbye{Sources: toUint32Slice(p.Bye.Sources), Reason: p.Bye.Reason}, nil
	case engine.ControlPacketAppData:
		app := p.App
		return &prtcp.ApplicationDefined{SSRC: uint32(app.SenderSSRC), Name: string(app.Name[:]), Data: app.Data}, nil
	default:
		return nil, fmt.Errorf("codec: unsupported control packet kind %d", p.Kind)
	}
}

func fromPionPacket(pkt prtcp.Packet) (engine.ControlPacket, bool) {
	switch v := pkt.(type) {
	case *prtcp.SenderReport:
		return engine.ControlPacket{
			Kind: engine.ControlPacketSenderReport,
			SR: &engine.SenderReport{
				SenderSSRC:        engine.SSRC(v.SSRC),
				NTPTimestamp:      v.NTPTime,
				RTPTimestamp:      v.RTPTime,
				SenderPacketCount: v.PacketCount,
				SenderOctetCount:  v.OctetCount,
				Reports:           fromPionReports(v.Reports),
			},
		}, true
	case *prtcp.ReceiverReport:
		return engine.ControlPacket{
			Kind: engine.ControlPacketReceiverReport,
			RR:   &engine.ReceiverReport{SenderSSRC: engine.SSRC(v.SSRC), Reports: fromPionReports(v.Reports)},
		}, true
	case *prtcp.SourceDescription:
		return engine.ControlPacket{
			Kind: engine.ControlPacketSourceDescription,
			SDES: &engine.SourceDescription{Chunks: fromPionChunks(v.Chunks)},
		}, true
	case *prtcp.Goodbye:
		return engine.ControlPacket{
			Kind: engine.ControlPacketBye,
			Bye:  &engine.Bye{Sources: fromUint32Slice(v.Sources), Reason: v.Reason},
		}, true
	case *prtcp.ApplicationDefined:
		var name [4]byte
		copy(name[:], v.Name)
		return engine.ControlPacket{
			Kind: engine.ControlPacketAppData,
			App:  &engine.AppData{SenderSSRC: engine.SSRC(v.SSRC), Name: name, Data: v.Data},
		}, true
	default:
		return engine.ControlPacket{}, false
	}
}

func toPionReports(reports []engine.ReceptionReport) []prtcp.ReceptionReport {
	out := make([]prtcp.ReceptionReport, 0, len(reports))
	for _, r := range reports {
		out = append(out, prtcp.ReceptionReport{
			SSRC:               uint32(r.SSRC),
			FractionLost:       r.FractionLost,
			TotalLost:          uint32(r.CumulativePacketsLost),
			LastSequenceNumber: r.ExtendedHighestSeqNum,
			Jitter:             r.Jitter,
			LastSenderReport:   r.LastSR,
			Delay:              r.DelaySinceLastSR,
		})
	}
	return out
}

func fromPionReports(reports []prtcp.ReceptionReport) []engine.ReceptionReport {
	out := make([]engine.ReceptionReport, 0, len(reports))
	for _, r := range reports {
		out = append(out, engine.ReceptionReport{
			SSRC:                  engine.SSRC(r.SSRC),
			FractionLost:          r.FractionLost,
			CumulativePacketsLost: int32(r.TotalLost),
			ExtendedHighestSeqNum: r.LastSequenceNumber,
			Jitter:                r.Jitter,
			LastSR:                r.LastSenderReport,
			DelaySinceLastSR:      r.Delay,
		})
	}
	return out
}

func toPionChunks(chunks []engine.SdesChunk) []prtcp.SourceDescriptionChunk {
	out := make([]prtcp.SourceDescriptionChunk, 0, len(chunks))
	for _, c := range chunks {
		items := make([]prtcp.SourceDescriptionItem, 0, len(c.Items))
		for _, it := range c.Items {
			items = append(items, prtcp.SourceDescriptionItem{
				Type: sdesKindToPion(it.Kind),
				Text: it.Value,
			})
		}
		out = append(out, prtcp.SourceDescriptionChunk{Source: uint32(c.SSRC), Items: items})
	}
	return out
}

func fromPionChunks(chunks []prtcp.SourceDescriptionChunk) []engine.SdesChunk {
	out := make([]engine.SdesChunk, 0, len(chunks))
	for _, c := range chunks {
		items := make([]engine.SdesItem, 0, len(c.Items))
		for _, it := range c.Items {
			kind, ok := sdesKindFromPion(it.Type)
			if !ok {
				continue
			}
			items = append(items, engine.SdesItem{Kind: kind, Value: it.Text})
		}
		out = append(out, engine.SdesChunk{SSRC: engine.SSRC(c.Source), Items: items})
	}
	return out
}

func sdesKindToPion(k engine.SdesItemKind) prtcp.SDESType {
	switch k {
	case engine.SdesCNAME:
		return prtcp.SDESCNAME
	case engine.SdesNAME:
		return prtcp.SDESName
	case engine.SdesEMAIL:
		return prtcp.SDESEmail
	case engine.SdesPHONE:
		return prtcp.SDESPhone
	case engine.SdesLOC:
		return prtcp.SDESLocation
	case engine.SdesTOOL:
		return prtcp.SDESTool
	case engine.SdesNOTE:
		return prtcp.SDESNote
	default:
		return prtcp.SDESEnd
	}
}

func sdesKindFromPion(t prtcp.SDESType) (engine.SdesItemKind, bool) {
	switch t {
	case prtcp.SDESCNAME:
		return engine.SdesCNAME, true
	case prtcp.SDESName:
		return engine.SdesNAME, true
	case prtcp.SDESEmail:
		return engine.SdesEMAIL, true
	case prtcp.SDESPhone:
		return engine.SdesPHONE, true
	case prtcp.SDESLocation:
		return engine.SdesLOC, true
	case prtcp.SDESTool:
		return engine.SdesTOOL, true
	case prtcp.SDESNote:
		return engine.SdesNOTE, true
	default:
		return 0, false
	}
}

func toUint32Slice(in []engine.SSRC) []uint32 {
	if in == nil {
		return nil
	}
	out := make([]uint32, len(in))
	for i, v := range in {
		out[i] = uint32(v)
	}
	return out
}

func fromUint32Slice(in []uint32) []engine.SSRC {
	if in == nil {
		return nil
	}
	out := make([]engine.SSRC, len(in))
	for i, v := range in {
		out[i] = engine.SSRC(v)
	}
	return out
}

func toSSRCSlice(in []uint32) []engine.SSRC { return fromUint32Slice(in) }
