package rtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateFromSdesChunkReportsChange(t *testing.T) {
	info := ParticipantInfo{SSRC: SSRC(1)}

	changed := info.UpdateFromSdesChunk(SdesChunk{Items: []SdesItem{{Kind: SdesCNAME, Value: "alice"}}})
	assert.True(t, changed)
	assert.Equal(t, "alice", info.CNAME)

	changed = info.UpdateFromSdesChunk(SdesChunk{Items: []SdesItem{{Kind: SdesCNAME, Value: "alice"}}})
	assert.False(t, changed, "re-applying the same value is not a change")
}

func TestCnameIsStickyOnceSet(t *testing.T) {
	info := ParticipantInfo{SSRC: SSRC(1)}
	info.UpdateFromSdesChunk(SdesChunk{Items: []SdesItem{{Kind: SdesCNAME, Value: "alice"}}})

	changed := info.UpdateFromSdesChunk(SdesChunk{Items: []SdesItem{{Kind: SdesNAME, Value: "Alice"}}})
	assert.True(t, changed)
	assert.Equal(t, "alice", info.CNAME, "CNAME must not be cleared by a chunk that omits it")
	assert.Equal(t, "Alice", info.Name)
}

func TestUpdateFromSdesChunkHandlesEveryItemKind(t *testing.T) {
	info := ParticipantInfo{SSRC: SSRC(1)}
	changed := info.UpdateFromSdesChunk(SdesChunk{Items: []SdesItem{
		{Kind: SdesCNAME, Value: "cname"},
		{Kind: SdesNAME, Value: "name"},
		{Kind: SdesEMAIL, Value: "email"},
		{Kind: SdesPHONE, Value: "phone"},
		{Kind: SdesLOC, Value: "loc"},
		{Kind: SdesTOOL, Value: "tool"},
		{Kind: SdesNOTE, Value: "note"},
	}})

	assert.True(t, changed)
	assert.Equal(t, "cname", info.CNAME)
	assert.Equal(t, "name", info.Name)
	assert.Equal(t, "email", info.Email)
	assert.Equal(t, "phone", info.Phone)
	assert.Equal(t, "loc", info.Location)
	assert.Equal(t, "tool", info.Tool)
	assert.Equal(t, "note", info.Note, "NOTE must be its own field, never aliased onto Location")
}

func TestUpdateFromSdesChunkEmptyCnameDoesNotClear(t *testing.T) {
	info := ParticipantInfo{SSRC: SSRC(1), CNAME: "alice"}
	changed := info.UpdateFromSdesChunk(SdesChunk{Items: []SdesItem{{Kind: SdesCNAME, Value: ""}}})
	assert.False(t, changed)
	assert.Equal(t, "alice", info.CNAME)
}
