package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
	report_resty_failure  = "resty.failure"
	report_resty_inflight = "resty.in-flight"
)

// restyHooks reports every request of one client, requests are numbered so
// the request and its outcome can be matched up in the logs.
type restyHooks struct {
	tel      API
	sequence atomic.Uint64
	inflight atomic.Int64
}

// InstrumentResty attaches request/response/error hooks to a resty client that
// report through the given telemetry API. Failures are reported at debug
// level, the caller decides whether a failed attempt is broken.
func InstrumentResty(client *resty.Client, tel API) {
	h := &restyHooks{tel: tel}
	client.OnBeforeRequest(h.before)
	client.OnAfterResponse(h.after)
	client.OnError(h.failed)
}

type requestKey struct{}

type requestInfo struct {
	seq uint64
	// monotonic, only used for durations
	start time.Time
}

func infoFrom(ctx context.Context) (requestInfo, bool) {
	info, ok := ctx.Value(requestKey{}).(requestInfo)
	return info, ok
}

func (h *restyHooks) before(_ *resty.Client, req *resty.Request) error {
	info := requestInfo{
		seq:   h.sequence.Add(1),
		start: time.Now(),
	}
	req.SetContext(context.WithValue(req.Context(), requestKey{}, info))

	h.tel.ReportDebug(report_resty_request, info.seq, req.Method, req.URL)
	h.tel.ReportCount(report_resty_inflight, h.inflight.Add(1))
	return nil
}

func (h *restyHooks) after(_ *resty.Client, res *resty.Response) error {
	info, ok := infoFrom(res.Request.Context())
	if !ok {
		return nil
	}
	h.inflight.Add(-1)
	h.tel.ReportDebug(
		report_resty_response,
		info.seq,
		res.Status(),
		time.Since(info.start).Round(time.Millisecond).String(),
		len(res.Body()),
	)
	return nil
}

func (h *restyHooks) failed(req *resty.Request, err error) {
	info, ok := infoFrom(req.Context())
	if !ok {
		return
	}
	h.inflight.Add(-1)
	h.tel.ReportDebug(
		report_resty_failure,
		info.seq,
		req.Method,
		req.URL,
		time.Since(info.start).Round(time.Millisecond).String(),
		err,
	)
}
