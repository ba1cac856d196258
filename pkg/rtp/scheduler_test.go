package rtp

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRtcpSchedulerFiresRepeatedly(t *testing.T) {
	var ticks atomic.Int32
	s := NewRtcpScheduler(FixedInterval(5*time.Millisecond), func() { ticks.Add(1) })
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestRtcpSchedulerStopPreventsFurtherTicks(t *testing.T) {
	var ticks atomic.Int32
	s := NewRtcpScheduler(FixedInterval(5*time.Millisecond), func() { ticks.Add(1) })
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	after := ticks.Load()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "no tick may fire after Stop")
}

func TestRtcpSchedulerStopIsIdempotent(t *testing.T) {
	s := NewRtcpScheduler(FixedInterval(time.Millisecond), func() {})
	s.Start()
	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})
}

func TestFixedIntervalIsConstant(t *testing.T) {
	f := FixedInterval(7 * time.Second)
	assert.Equal(t, 7*time.Second, f())
	assert.Equal(t, 7*time.Second, f())
}

func TestBandwidthAwareIntervalFloorsAtMinimum(t *testing.T) {
	f := BandwidthAwareInterval(
		func() int { return 2 },
		func() int { return 1 },
		1024*1024,
		func() bool { return true },
		200,
	)
	assert.Equal(t, 5*time.Second, f())
}

func TestBandwidthAwareIntervalGrowsWithMembership(t *testing.T) {
	members := 1000
	f := BandwidthAwareInterval(
		func() int { return members },
		func() int { return 0 },
		1024,
		func() bool { return false },
		200,
	)
	assert.Greater(t, f(), 5*time.Second)
}
