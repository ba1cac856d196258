package rtp

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestClassifyNormalForForeignSsrc(t *testing.T) {
	var arb SsrcArbiter
	db := NewParticipantDatabase(func() SSRC { return 1 }, time.Hour, nil, zerolog.Nop())
	c := arb.Classify(SSRC(0x2222), SSRC(0x1111), memAddr("peer"), memAddr("local"), 0, 3, db)
	assert.Equal(t, Normal, c.Kind)
}

func TestClassifySelfLoopWhenOriginMatchesLocal(t *testing.T) {
	var arb SsrcArbiter
	db := NewParticipantDatabase(func() SSRC { return 1 }, time.Hour, nil, zerolog.Nop())
	local := memAddr("local-data")
	c := arb.Classify(SSRC(0x1111), SSRC(0x1111), local, local, 0, 3, db)
	assert.Equal(t, SelfLoop, c.Kind)
}

func TestClassifyCollisionWhenOriginDiffers(t *testing.T) {
	var arb SsrcArbiter
	db := NewParticipantDatabase(func() SSRC { return 1 }, time.Hour, nil, zerolog.Nop())
	c := arb.Classify(SSRC(0x1111), SSRC(0x1111), memAddr("other"), memAddr("local"), 0, 3, db)
	assert.Equal(t, Collision, c.Kind)
	assert.NotEqual(t, SSRC(0x1111), c.NewLocalSSRC)
	assert.NotZero(t, c.NewLocalSSRC)
}

func TestClassifyLoopByCollisionsWhenThresholdExceeded(t *testing.T) {
	var arb SsrcArbiter
	db := NewParticipantDatabase(func() SSRC { return 1 }, time.Hour, nil, zerolog.Nop())
	c := arb.Classify(SSRC(0x1111), SSRC(0x1111), memAddr("other"), memAddr("local"), 3, 3, db)
	assert.Equal(t, LoopByCollisions, c.Kind)
}

func TestClassifySelfLoopTakesPrecedenceOverCollisionThreshold(t *testing.T) {
	var arb SsrcArbiter
	db := NewParticipantDatabase(func() SSRC { return 1 }, time.Hour, nil, zerolog.Nop())
	local := memAddr("local-data")
	// Even with collisions already at the threshold, a packet arriving from
	// our own address is a self-loop, not a manufactured loop-by-collisions.
	c := arb.Classify(SSRC(0x1111), SSRC(0x1111), local, local, 10, 3, db)
	assert.Equal(t, SelfLoop, c.Kind)
}

func TestPickReplacementSsrcAvoidsKnownParticipants(t *testing.T) {
	var arb SsrcArbiter
	db := NewParticipantDatabase(func() SSRC { return 0xFFFFFFFF }, time.Hour, nil, zerolog.Nop())
	db.GetOrCreateFromDataPacket(memAddr("a"), &DataPacket{SSRC: SSRC(0x2222)})

	for i := 0; i < 50; i++ {
		c := arb.Classify(SSRC(0x1111), SSRC(0x1111), memAddr("other"), memAddr("local"), 0, 1000, db)
		assert.NotEqual(t, SSRC(0x2222), c.NewLocalSSRC)
		assert.NotEqual(t, SSRC(0x1111), c.NewLocalSSRC)
	}
}
