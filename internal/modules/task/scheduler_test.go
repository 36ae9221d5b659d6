package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedulerArmFiresOnce(t *testing.T) {
	clock := newFakeClock()
	runs := 0
	s := NewScheduler(clock, 3*time.Second, func() { runs++ })

	s.Arm()
	require.True(t, s.Armed())

	// Arming while armed must not stack a second timer.
	s.Arm()
	require.Equal(t, 1, clock.pendingTimers())

	clock.Advance(3 * time.Second)
	require.Equal(t, 1, runs)
	require.False(t, s.Armed())
}

func TestSchedulerDisarmCancelsPendingTimer(t *testing.T) {
	clock := newFakeClock()
	runs := 0
	s := NewScheduler(clock, 3*time.Second, func() { runs++ })

	s.Arm()
	s.Disarm()
	require.False(t, s.Armed())

	clock.Advance(time.Minute)
	require.Equal(t, 0, runs)
}

func TestSchedulerRearmAfterFire(t *testing.T) {
	clock := newFakeClock()
	var s *Scheduler
	runs := 0
	s = NewScheduler(clock, 3*time.Second, func() {
		runs++
		if runs < 3 {
			s.Arm()
		}
	})

	s.Arm()
	for i := 0; i < 5; i++ {
		clock.Advance(3 * time.Second)
	}
	// The chain re-armed itself twice and then died out.
	require.Equal(t, 3, runs)
	require.False(t, s.Armed())
}
