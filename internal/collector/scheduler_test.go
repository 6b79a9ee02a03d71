package collector

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"cryptorewards-backend/internal/components/chrono"
	"cryptorewards-backend/internal/components/telemetry"
	"cryptorewards-backend/internal/rewards"
	"cryptorewards-backend/internal/sources"

	"github.com/stretchr/testify/require"
)

type countingStore struct {
	saves int64
	panic bool
}

func (c *countingStore) Save(string, rewards.ExchangeSnapshot) error {
	atomic.AddInt64(&c.saves, 1)
	if c.panic {
		panic("disk on fire")
	}
	return nil
}

func newTestScheduler(t *testing.T, clock chrono.TimeAPI, writer SnapshotWriter, opts SchedulerOptions) *Scheduler {
	t.Helper()
	tel := telemetry.NewRecorder()
	c := New([]sources.Source{
		fakeSource{id: "bitci"},
		fakeSource{id: "paribu"},
	}, writer, clock, tel, Options{Concurrency: 2})

	if opts.PollInterval == 0 {
		opts.PollInterval = 5 * time.Millisecond
	}
	s, err := NewScheduler(c, clock, tel, opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	})
	return s
}

func cycles(s *Scheduler) func() int {
	return func() int { return s.Status().Cycles }
}

func TestSchedulerStartRunsInitialCycle(t *testing.T) {
	clock := chrono.NewFakeTime(testStart)
	writer := &countingStore{}
	s := newTestScheduler(t, clock, writer, SchedulerOptions{Interval: time.Hour})

	results := s.Start(context.Background())
	require.Equal(t, map[string]bool{"bitci": true, "paribu": true}, results)
	require.Equal(t, int64(2), atomic.LoadInt64(&writer.saves))

	status := s.Status()
	require.Equal(t, StateIdle, status.State)
	require.Equal(t, 1, status.Cycles)
	require.True(t, status.LastCycleAt.Equal(testStart))
	require.True(t, status.NextRunAt.Equal(testStart.Add(time.Hour)))
}

func TestSchedulerInterval(t *testing.T) {
	clock := chrono.NewFakeTime(testStart)
	s := newTestScheduler(t, clock, &countingStore{}, SchedulerOptions{Interval: time.Hour})
	s.Start(context.Background())

	// polling alone does not run anything
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, 1, cycles(s)())

	clock.Advance(61 * time.Minute)
	require.Eventually(t, func() bool { return cycles(s)() == 2 }, 2*time.Second, 5*time.Millisecond)
	require.True(t, s.Status().NextRunAt.After(clock.Now()))
}

func TestSchedulerDaily(t *testing.T) {
	start := time.Date(2024, 5, 1, 23, 59, 0, 0, chrono.Istanbul())
	clock := chrono.NewFakeTime(start)
	s := newTestScheduler(t, clock, &countingStore{}, SchedulerOptions{
		Interval: 24 * time.Hour,
		DailyAt:  "00:00",
		Location: chrono.Istanbul(),
	})
	s.Start(context.Background())
	require.True(t, s.Status().NextRunAt.Equal(start.Add(time.Minute)))

	clock.Advance(2 * time.Minute)
	require.Eventually(t, func() bool { return cycles(s)() == 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestSchedulerTriggerKeepsSchedule(t *testing.T) {
	clock := chrono.NewFakeTime(testStart)
	writer := &countingStore{}
	s := newTestScheduler(t, clock, writer, SchedulerOptions{Interval: time.Hour})
	s.Start(context.Background())
	next := s.Status().NextRunAt

	clock.Advance(10 * time.Minute)
	require.True(t, s.Trigger("BITCI"))
	require.Eventually(t, func() bool { return cycles(s)() == 2 }, 2*time.Second, 5*time.Millisecond)

	status := s.Status()
	require.Equal(t, map[string]bool{"bitci": true}, status.LastResults)
	require.True(t, status.NextRunAt.Equal(next))
	require.Equal(t, int64(3), atomic.LoadInt64(&writer.saves))
}

func TestSchedulerRunNow(t *testing.T) {
	clock := chrono.NewFakeTime(testStart)
	s := newTestScheduler(t, clock, &countingStore{}, SchedulerOptions{Interval: time.Hour})
	s.Start(context.Background())

	results, err := s.RunNow(context.Background(), "paribu")
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"paribu": true}, results)

	results, err = s.RunNow(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	_, err = s.RunNow(context.Background(), "unknown-source")
	require.ErrorIs(t, err, sources.ErrUnknownSource)
	require.Equal(t, 3, s.Status().Cycles)
}

func TestSchedulerSurvivesPanics(t *testing.T) {
	clock := chrono.NewFakeTime(testStart)
	writer := &countingStore{panic: true}
	s := newTestScheduler(t, clock, writer, SchedulerOptions{Interval: time.Hour})

	results := s.Start(context.Background())
	require.Equal(t, map[string]bool{"bitci": false, "paribu": false}, results)

	require.True(t, s.Trigger(""))
	require.Eventually(t, func() bool { return cycles(s)() == 2 }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, StateIdle, s.Status().State)
}

func TestSchedulerStop(t *testing.T) {
	clock := chrono.NewFakeTime(testStart)
	s := newTestScheduler(t, clock, &countingStore{}, SchedulerOptions{Interval: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.ErrorIs(t, s.Stop(ctx), ErrNotStarted)

	s.Start(context.Background())
	require.NoError(t, s.Stop(ctx))
	require.Equal(t, StateStopped, s.Status().State)

	// the loop is gone, triggers are queued but never run
	s.Trigger("")
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, 1, s.Status().Cycles)
}

func TestSchedulerInvalidDailyAt(t *testing.T) {
	clock := chrono.NewFakeTime(testStart)
	c := New(nil, &countingStore{}, clock, telemetry.NewRecorder(), Options{})
	_, err := NewScheduler(c, clock, telemetry.NewRecorder(), SchedulerOptions{DailyAt: "25:00"})
	require.Error(t, err)
}
