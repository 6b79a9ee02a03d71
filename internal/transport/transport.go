package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"cryptorewards-backend/internal/components/assert"
	"cryptorewards-backend/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("internal/transport")

const (
	report_fetch_attempt  = "fetch.attempt"
	report_fetch_escalate = "fetch.escalate"
	report_fetch_backoff  = "fetch.backoff"
)

// Strategy is one rung of the leniency ladder a fetch climbs on transport
// failures.
type Strategy int

const (
	StrategyVerified Strategy = iota
	StrategyUnverified
	StrategyUnverifiedExtended
)

func (s Strategy) String() string {
	switch s {
	case StrategyVerified:
		return "verified"
	case StrategyUnverified:
		return "unverified"
	case StrategyUnverifiedExtended:
		return "unverified-extended"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

func (s Strategy) insecure() bool {
	return s != StrategyVerified
}

func (s Strategy) timeout(standard time.Duration) time.Duration {
	if s == StrategyUnverifiedExtended {
		return standard * 2
	}
	return standard
}

var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7",
}

type Options struct {
	// VerifyTLS selects the verified strategy as the first attempt, when false
	// fetches start with certificate checks disabled.
	VerifyTLS   bool
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// RequestsPerSecond limits requests per host, 0 disables limiting.
	RequestsPerSecond float64
	Burst             int
	// BrowserProfile wraps the http transport with a browser-like TLS
	// fingerprint and headers.
	BrowserProfile bool
	Headers        map[string]string
	// DumpDir, when set, receives a text file for every response.
	DumpDir string
}

func DefaultOptions() Options {
	return Options{
		VerifyTLS:         true,
		Timeout:           30 * time.Second,
		MaxAttempts:       3,
		BaseDelay:         time.Second,
		MaxDelay:          30 * time.Second,
		RequestsPerSecond: 2,
		Burst:             2,
		BrowserProfile:    true,
	}
}

// RequestOptions overrides the fetcher defaults for a single fetch, zero
// values keep the defaults.
type RequestOptions struct {
	Headers     map[string]string
	Timeout     time.Duration
	MaxAttempts int
}

type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Strategy   Strategy
	Attempts   int
}

// Fetcher performs GET requests with strategy escalation and backoff.
type Fetcher struct {
	opts     Options
	verified *resty.Client
	insecure *resty.Client
	tel      telemetry.API
	dump     *dumper

	limiterLock sync.Mutex
	limiters    map[string]*rate.Limiter
}

func New(opts Options, tel telemetry.API) *Fetcher {
	assert.NotNil(tel)

	defaults := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaults.MaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaults.BaseDelay
	}
	if opts.MaxDelay < opts.BaseDelay {
		opts.MaxDelay = opts.BaseDelay
	}

	tel = telemetry.NewScopedAPI("transport", tel)
	f := &Fetcher{
		opts:     opts,
		tel:      tel,
		limiters: make(map[string]*rate.Limiter),
	}
	if opts.DumpDir != "" {
		dump, err := newDumper(opts.DumpDir, tel)
		if err != nil {
			tel.ReportWarning(report_fetch_dump, err)
		}
		f.dump = dump
	}
	f.verified = f.newClient(false)
	f.insecure = f.newClient(true)
	return f
}

func newRoundTripper(insecure, browserProfile bool) http.RoundTripper {
	base := http.DefaultTransport.(*http.Transport).Clone()
	var rt http.RoundTripper = base
	if browserProfile {
		rt = cloudflarebp.AddCloudFlareByPass(base)
	}
	// the bypass replaces the tls config, so this must come after it
	if base.TLSClientConfig == nil {
		base.TLSClientConfig = &tls.Config{}
	}
	base.TLSClientConfig.InsecureSkipVerify = insecure
	return rt
}

func (f *Fetcher) newClient(insecure bool) *resty.Client {
	client := resty.New()
	client.SetTransport(newRoundTripper(insecure, f.opts.BrowserProfile))
	client.SetHeaders(defaultHeaders)
	if len(f.opts.Headers) > 0 {
		client.SetHeaders(f.opts.Headers)
	}

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		limiter := f.limiter(req.URL)
		if limiter == nil {
			return nil
		}
		return limiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, f.tel)
	return client
}

func (f *Fetcher) limiter(rawUrl string) *rate.Limiter {
	if f.opts.RequestsPerSecond <= 0 {
		return nil
	}
	parsed, err := url.Parse(rawUrl)
	if err != nil {
		return nil
	}

	f.limiterLock.Lock()
	defer f.limiterLock.Unlock()

	limiter, ok := f.limiters[parsed.Host]
	if !ok {
		burst := f.opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(f.opts.RequestsPerSecond), burst)
		f.limiters[parsed.Host] = limiter
	}
	return limiter
}

func (f *Fetcher) initialStrategy() Strategy {
	if f.opts.VerifyTLS {
		return StrategyVerified
	}
	return StrategyUnverified
}

// Fetch GETs the url. Transport failures escalate to the next strategy
// immediately, once the ladder is exhausted the last strategy is retried with
// exponential backoff. Non-2xx responses are failures, 4xx other than 429 are
// never retried. Every returned error matches ErrTransport.
func (f *Fetcher) Fetch(ctx context.Context, rawUrl string, ropts RequestOptions) (Response, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()

	span.SetAttributes(attribute.KeyValue{
		Key:   "url",
		Value: attribute.StringValue(rawUrl),
	})

	timeout := f.opts.Timeout
	if ropts.Timeout > 0 {
		timeout = ropts.Timeout
	}
	maxAttempts := f.opts.MaxAttempts
	if ropts.MaxAttempts > 0 {
		maxAttempts = ropts.MaxAttempts
	}

	strategy := f.initialStrategy()
	delay := f.opts.BaseDelay

	var lastErr *Error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := f.attempt(ctx, rawUrl, ropts.Headers, strategy, timeout)
		if err == nil {
			res.Attempts = attempt
			span.SetAttributes(attribute.KeyValue{
				Key:   "strategy",
				Value: attribute.StringValue(strategy.String()),
			})
			return res, nil
		}

		lastErr = err
		lastErr.Attempt = attempt
		f.tel.ReportDebug(report_fetch_attempt, rawUrl, attempt, strategy.String(), err.Kind.String())

		if ctx.Err() != nil || !err.Retryable() || attempt == maxAttempts {
			break
		}

		if err.Kind != KindHTTPStatus && strategy < StrategyUnverifiedExtended {
			strategy++
			f.tel.ReportDebug(report_fetch_escalate, rawUrl, strategy.String())
			continue
		}

		f.tel.ReportDebug(report_fetch_backoff, rawUrl, delay.String())
		if sleep(ctx, delay) != nil {
			break
		}
		delay *= 2
		if delay > f.opts.MaxDelay {
			delay = f.opts.MaxDelay
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return Response{}, lastErr
}

func (f *Fetcher) attempt(
	ctx context.Context,
	rawUrl string,
	headers map[string]string,
	strategy Strategy,
	timeout time.Duration,
) (Response, *Error) {
	client := f.verified
	if strategy.insecure() {
		client = f.insecure
	}

	attemptCtx, cancel := context.WithTimeout(ctx, strategy.timeout(timeout))
	defer cancel()

	req := client.R().SetContext(attemptCtx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	res, err := req.Get(rawUrl)
	if err != nil {
		kind := classify(err)
		if errors.Is(ctx.Err(), context.Canceled) {
			kind = KindConnection
		}
		return Response{}, &Error{
			Kind:     kind,
			URL:      rawUrl,
			Strategy: strategy,
			Err:      err,
		}
	}
	if f.dump != nil {
		f.dump.write(res, strategy)
	}
	if !res.IsSuccess() {
		return Response{}, &Error{
			Kind:       KindHTTPStatus,
			URL:        rawUrl,
			StatusCode: res.StatusCode(),
			Strategy:   strategy,
			Err:        fmt.Errorf("unexpected status %s", res.Status()),
		}
	}

	return Response{
		URL:        rawUrl,
		StatusCode: res.StatusCode(),
		Header:     res.Header(),
		Body:       res.Body(),
		Strategy:   strategy,
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
