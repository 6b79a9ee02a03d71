package extract

import "fmt"

// WithFallback returns the records of primary, or the records of fallback
// when primary fails, panics or yields nothing. onFallback is told why.
func WithFallback[T any](primary func() ([]T, error), fallback func() []T, onFallback func(error)) []T {
	records, err := func() (records []T, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("extraction panicked: %v", r)
			}
		}()
		return primary()
	}()
	if err == nil && len(records) > 0 {
		return records
	}
	if err == nil {
		err = ErrNoRecords
	}
	if onFallback != nil {
		onFallback(err)
	}

	records = fallback()
	if records == nil {
		records = []T{}
	}
	return records
}
