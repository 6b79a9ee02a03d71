// Package telemetry is the reporting surface every component logs through.
package telemetry

import (
	"fmt"
)

// API is an abstraction over logging/metrics so tests can assert on what a
// component reported.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a component that broke in a way someone should fix.
	//
	// The id names the component, not the line that failed: a failed staking
	// page request of bitci is `source.fetch-staking` with the bitci namespace
	// attached by ScopedAPI. Details like "the tls handshake failed" go in the
	// params or in the wrapped error.
	//
	// ids are lowercase, underscores separate words of a component and dashes
	// separate a component from one of its operations.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something worth looking into that is not
	// necessarily broken, ids follow ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug reports information that is dropped outside of verbose mode.
	ReportDebug(msg string, params ...any)

	// ReportCount reports the value of a gauge at the current time, values
	// are points over time and must not be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace, like a sub logger.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
