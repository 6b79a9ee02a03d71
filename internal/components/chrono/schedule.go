package chrono

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Plan keeps track of when a set of cron schedules are next due. It does not
// run anything by itself, the owner polls Due on its own tick.
type Plan struct {
	schedules []cron.Schedule
	next      []time.Time
}

// NewPlan creates a plan with the given schedules, next run times are computed
// relative to now.
func NewPlan(now time.Time, schedules ...cron.Schedule) *Plan {
	p := &Plan{
		schedules: schedules,
		next:      make([]time.Time, len(schedules)),
	}
	for i, s := range schedules {
		p.next[i] = s.Next(now)
	}
	return p
}

// Every returns a schedule that fires at a constant interval, intervals are
// rounded down to the second with a minimum of one second.
func Every(interval time.Duration) cron.Schedule {
	return cron.Every(interval)
}

// DailyAt parses a "HH:MM" time of day into a schedule that fires once every
// day at that time in the given location.
func DailyAt(clock string, loc *time.Location) (cron.Schedule, error) {
	hour, minute, err := parseClock(clock)
	if err != nil {
		return nil, err
	}
	schedule, err := cron.ParseStandard(fmt.Sprintf("%d %d * * *", minute, hour))
	if err != nil {
		return nil, err
	}
	spec, ok := schedule.(*cron.SpecSchedule)
	if ok && loc != nil {
		spec.Location = loc
	}
	return schedule, nil
}

func parseClock(clock string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time of day '%s', expected HH:MM", clock)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in '%s'", clock)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in '%s'", clock)
	}
	return hour, minute, nil
}

// Due reports whether any schedule's next run time is at or before now, every
// schedule that is due is advanced past now.
func (p *Plan) Due(now time.Time) bool {
	due := false
	for i, s := range p.schedules {
		if p.next[i].After(now) {
			continue
		}
		due = true
		p.next[i] = s.Next(now)
	}
	return due
}

// Next returns the earliest upcoming run time, or the zero time if the plan
// has no schedules.
func (p *Plan) Next() time.Time {
	var earliest time.Time
	for _, n := range p.next {
		if earliest.IsZero() || n.Before(earliest) {
			earliest = n
		}
	}
	return earliest
}
