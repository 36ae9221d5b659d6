package task

import (
	"sync"
	"time"
)

// Clock abstracts time for the scheduler so cancellation and re-arming are
// testable without real timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func NewRealClock() Clock {
	return realClock{}
}

// Scheduler is the two-state (idle / armed) timer driving poll cycles. Arming
// while armed is a no-op; the run callback decides whether to re-arm after
// each cycle, so the chain dies out once nothing is processing.
type Scheduler struct {
	lock     sync.Mutex
	clock    Clock
	interval time.Duration
	run      func()
	timer    Timer
	armed    bool
}

func NewScheduler(clock Clock, interval time.Duration, run func()) *Scheduler {
	return &Scheduler{
		clock:    clock,
		interval: interval,
		run:      run,
	}
}

func (s *Scheduler) Arm() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.armed {
		return
	}
	s.armed = true
	s.timer = s.clock.AfterFunc(s.interval, s.fire)
}

func (s *Scheduler) fire() {
	s.lock.Lock()
	s.armed = false
	s.timer = nil
	s.lock.Unlock()
	s.run()
}

// Disarm cancels a pending timer. An in-flight run is not interrupted; it
// simply finds no eligible work or fails to re-arm.
func (s *Scheduler) Disarm() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.armed = false
}

func (s *Scheduler) Armed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.armed
}
