package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/arzzra/rtpsession/pkg/rtp"
)

func TestDataPacketRoundTrip(t *testing.T) {
	c := New()
	original := &engine.DataPacket{
		Marker:         true,
		PayloadType:    engine.PayloadTypePCMU,
		SequenceNumber: 42,
		Timestamp:      123456,
		SSRC:           engine.SSRC(0xDEADBEEF),
		Payload:        []byte{0x01, 0x02, 0x03},
	}

	raw, err := c.EncodeData(original)
	require.NoError(t, err)

	decoded, err := c.DecodeData(raw)
	require.NoError(t, err)

	assert.Equal(t, original.Marker, decoded.Marker)
	assert.Equal(t, original.PayloadType, decoded.PayloadType)
	assert.Equal(t, original.SequenceNumber, decoded.SequenceNumber)
	assert.Equal(t, original.Timestamp, decoded.Timestamp)
	assert.Equal(t, original.SSRC, decoded.SSRC)
	assert.Equal(t, original.Payload, decoded.Payload)
}

func TestCompoundControlPacketRoundTrip(t *testing.T) {
	c := New()
	compound := engine.CompoundControlPacket{
		{
			Kind: engine.ControlPacketSenderReport,
			SR: &engine.SenderReport{
				SenderSSRC:        engine.SSRC(0x1111),
				NTPTimestamp:      1 << 40,
				SenderPacketCount: 10,
				SenderOctetCount:  2000,
				Reports: []engine.ReceptionReport{
					{SSRC: engine.SSRC(0x2222), ExtendedHighestSeqNum: 99},
				},
			},
		},
		{
			Kind: engine.ControlPacketSourceDescription,
			SDES: &engine.SourceDescription{Chunks: []engine.SdesChunk{
				{SSRC: engine.SSRC(0x1111), Items: []engine.SdesItem{
					{Kind: engine.SdesCNAME, Value: "alice@example"},
					{Kind: engine.SdesNOTE, Value: "testing"},
				}},
			}},
		},
		{
			Kind: engine.ControlPacketBye,
			Bye:  &engine.Bye{Sources: []engine.SSRC{0x1111}, Reason: "done"},
		},
	}

	raw, err := c.EncodeControl(compound)
	require.NoError(t, err)

	decoded, err := c.DecodeControl(raw)
	require.NoError(t, err)
	require.Len(t, decoded, 3)

	require.Equal(t, engine.ControlPacketSenderReport, decoded[0].Kind)
	assert.Equal(t, compound[0].SR.SenderSSRC, decoded[0].SR.SenderSSRC)
	assert.Equal(t, compound[0].SR.SenderPacketCount, decoded[0].SR.SenderPacketCount)
	require.Len(t, decoded[0].SR.Reports, 1)
	assert.Equal(t, engine.SSRC(0x2222), decoded[0].SR.Reports[0].SSRC)

	require.Equal(t, engine.ControlPacketSourceDescription, decoded[1].Kind)
	require.Len(t, decoded[1].SDES.Chunks, 1)
	assert.Equal(t, "alice@example", decoded[1].SDES.Chunks[0].Items[0].Value)
	assert.Equal(t, engine.SdesNOTE, decoded[1].SDES.Chunks[0].Items[1].Kind)

	require.Equal(t, engine.ControlPacketBye, decoded[2].Kind)
	assert.Equal(t, []engine.SSRC{0x1111}, decoded[2].Bye.Sources)
	assert.Equal(t, "done", decoded[2].Bye.Reason)
}

func TestAppDataRoundTrip(t *testing.T) {
	c := New()
	compound := engine.CompoundControlPacket{{
		Kind: engine.ControlPacketAppData,
		App: &engine.AppData{
			SenderSSRC: engine.SSRC(0x1111),
			Name:       [4]byte{'T', 'E', 'S', 'T'},
			Data:       []byte{0xAA, 0xBB},
		},
	}}

	raw, err := c.EncodeControl(compound)
	require.NoError(t, err)

	decoded, err := c.DecodeControl(raw)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, engine.ControlPacketAppData, decoded[0].Kind)
	assert.Equal(t, [4]byte{'T', 'E', 'S', 'T'}, decoded[0].App.Name)
	assert.Equal(t, []byte{0xAA, 0xBB}, decoded[0].App.Data)
}
