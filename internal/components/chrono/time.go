package chrono

import (
	"sync"
	"time"
)

var istanbul *time.Location

func init() {
	var err error
	istanbul, err = time.LoadLocation("Europe/Istanbul")
	if err != nil {
		// minimal containers ship without tzdata, turkey has been fixed at
		// UTC+3 since 2016 so this is equivalent.
		istanbul = time.FixedZone("TRT", 3*60*60)
	}
}

// Istanbul returns a [*time.Location] for Europe/Istanbul, every exchange this
// service scrapes publishes its campaigns in this timezone.
func Istanbul() *time.Location {
	return istanbul
}

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in Europe/Istanbul.
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now().In(istanbul)
}

// FakeTime is a TimeAPI that only moves when told to.
type FakeTime struct {
	mutex   sync.Mutex
	current time.Time
}

func NewFakeTime(start time.Time) *FakeTime {
	return &FakeTime{current: start}
}

func (f *FakeTime) Now() time.Time {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.current
}

// Advance moves the fake clock forward by d.
func (f *FakeTime) Advance(d time.Duration) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.current = f.current.Add(d)
}
