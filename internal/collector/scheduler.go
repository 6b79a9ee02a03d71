package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cryptorewards-backend/internal/components/assert"
	"cryptorewards-backend/internal/components/chrono"
	"cryptorewards-backend/internal/components/telemetry"

	"github.com/robfig/cron/v3"
)

const (
	report_scheduler_cycle   = "scheduler.cycle"
	report_scheduler_trigger = "scheduler.trigger"
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
)

var ErrNotStarted = errors.New("scheduler not started")

type SchedulerOptions struct {
	// Interval between scheduled cycles.
	Interval time.Duration
	// DailyAt is an additional "HH:MM" cycle each day, empty disables it.
	DailyAt  string
	Location *time.Location
	// PollInterval is how often the loop checks whether a cycle is due.
	PollInterval time.Duration
}

func DefaultSchedulerOptions() SchedulerOptions {
	return SchedulerOptions{
		Interval:     6 * time.Hour,
		DailyAt:      "00:00",
		Location:     chrono.Istanbul(),
		PollInterval: time.Minute,
	}
}

type Status struct {
	State       State           `json:"state"`
	Cycles      int             `json:"cycles"`
	LastCycleAt time.Time       `json:"lastCycleAt"`
	NextRunAt   time.Time       `json:"nextRunAt"`
	LastResults map[string]bool `json:"lastResults"`
}

// Scheduler runs a cycle on start, then on a fixed interval plus an optional
// daily time. Manual triggers run in between without moving the schedule.
// Cycles never overlap.
type Scheduler struct {
	collector *Collector
	time      chrono.TimeAPI
	tel       telemetry.API
	opts      SchedulerOptions
	schedules []cron.Schedule

	// held for the duration of a cycle
	cycleLock sync.Mutex

	mutex  sync.Mutex
	plan   *chrono.Plan
	status Status
	cancel context.CancelFunc
	done   chan struct{}

	triggers chan string
}

func NewScheduler(
	collector *Collector,
	time chrono.TimeAPI,
	tel telemetry.API,
	opts SchedulerOptions,
) (*Scheduler, error) {
	assert.NotNil(collector, "collector")
	assert.NotNil(time, "time")
	assert.NotNil(tel, "telemetry")

	defaults := DefaultSchedulerOptions()
	if opts.Interval <= 0 {
		opts.Interval = defaults.Interval
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaults.PollInterval
	}
	if opts.Location == nil {
		opts.Location = defaults.Location
	}

	schedules := []cron.Schedule{chrono.Every(opts.Interval)}
	if opts.DailyAt != "" {
		daily, err := chrono.DailyAt(opts.DailyAt, opts.Location)
		if err != nil {
			return nil, fmt.Errorf("daily refresh: %w", err)
		}
		schedules = append(schedules, daily)
	}

	return &Scheduler{
		collector: collector,
		time:      time,
		tel:       telemetry.NewScopedAPI("scheduler", tel),
		opts:      opts,
		schedules: schedules,
		status:    Status{State: StateIdle},
		triggers:  make(chan string, 8),
	}, nil
}

// Start runs one full cycle synchronously, then starts the background loop.
// The loop lives until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) map[string]bool {
	results := s.run(ctx, "")

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mutex.Lock()
	s.plan = chrono.NewPlan(s.time.Now(), s.schedules...)
	s.status.NextRunAt = s.plan.Next()
	s.cancel = cancel
	s.done = done
	s.mutex.Unlock()

	go s.loop(loopCtx, done)
	return results
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case id := <-s.triggers:
			s.run(ctx, normalizeID(id))
		case <-ticker.C:
			if s.due() {
				s.run(ctx, "")
			}
		}
	}
}

func (s *Scheduler) due() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	due := s.plan.Due(s.time.Now())
	s.status.NextRunAt = s.plan.Next()
	return due
}

// run executes a cycle for every source when id is empty, or for a single
// source. Panics are reported and swallowed so the loop survives.
func (s *Scheduler) run(ctx context.Context, id string) (results map[string]bool) {
	s.cycleLock.Lock()
	defer s.cycleLock.Unlock()

	s.setState(StateRunning)
	defer func() {
		if r := recover(); r != nil {
			s.tel.ReportBroken(report_scheduler_cycle, fmt.Errorf("panic: %v", r), id)
		}
		s.finish(results)
	}()

	if id == "" {
		return s.collector.RunAll(ctx)
	}
	ok, err := s.collector.RunOne(ctx, id)
	if err != nil {
		s.tel.ReportWarning(report_scheduler_trigger, err)
		return map[string]bool{}
	}
	return map[string]bool{id: ok}
}

func (s *Scheduler) setState(state State) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.status.State != StateStopped {
		s.status.State = state
	}
}

func (s *Scheduler) finish(results map[string]bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.status.State != StateStopped {
		s.status.State = StateIdle
	}
	s.status.Cycles++
	s.status.LastCycleAt = s.time.Now()
	if results != nil {
		s.status.LastResults = results
	}
}

// Trigger queues a cycle for the background loop, all sources when id is
// empty. It returns false when the queue is full.
func (s *Scheduler) Trigger(id string) bool {
	select {
	case s.triggers <- id:
		return true
	default:
		s.tel.ReportWarning(report_scheduler_trigger, "trigger queue full", id)
		return false
	}
}

// RunNow runs a cycle and waits for it, all sources when id is empty. It
// waits for any cycle already in progress.
func (s *Scheduler) RunNow(ctx context.Context, id string) (map[string]bool, error) {
	id = normalizeID(id)
	if id != "" && !s.collector.Has(id) {
		_, err := s.collector.RunOne(ctx, id)
		return nil, err
	}
	return s.run(ctx, id), nil
}

// Stop ends the background loop and waits for an in-flight cycle, or until
// ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mutex.Lock()
	cancel, done := s.cancel, s.done
	s.status.State = StateStopped
	s.mutex.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}
	cancel()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	// a cycle started through RunNow is not part of the loop
	waited := make(chan struct{})
	go func() {
		s.cycleLock.Lock()
		s.cycleLock.Unlock()
		close(waited)
	}()
	select {
	case <-waited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) Status() Status {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	status := s.status
	if status.LastResults != nil {
		results := make(map[string]bool, len(status.LastResults))
		for id, ok := range status.LastResults {
			results[id] = ok
		}
		status.LastResults = results
	}
	return status
}
