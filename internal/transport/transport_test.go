package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cryptorewards-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func testOptions(verify bool) Options {
	return Options{
		VerifyTLS:   verify,
		Timeout:     2 * time.Second,
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}
}

func countingHandler(hits *int64, status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestTLSEscalation(t *testing.T) {
	var hits int64
	server := httptest.NewTLSServer(countingHandler(&hits, http.StatusOK, "<html>ok</html>"))
	defer server.Close()

	f := New(testOptions(true), telemetry.NewRecorder())
	res, err := f.Fetch(context.Background(), server.URL, RequestOptions{})
	require.NoError(t, err)
	require.Equal(t, StrategyUnverified, res.Strategy)
	require.Equal(t, 2, res.Attempts)
	require.Equal(t, "<html>ok</html>", string(res.Body))
	// the verified attempt fails during the handshake
	require.Equal(t, int64(1), atomic.LoadInt64(&hits))
}

func TestStartsUnverifiedOutsideProduction(t *testing.T) {
	var hits int64
	server := httptest.NewTLSServer(countingHandler(&hits, http.StatusOK, "ok"))
	defer server.Close()

	f := New(testOptions(false), telemetry.NewRecorder())
	res, err := f.Fetch(context.Background(), server.URL, RequestOptions{})
	require.NoError(t, err)
	require.Equal(t, StrategyUnverified, res.Strategy)
	require.Equal(t, 1, res.Attempts)
}

func TestTLSFailureExhausted(t *testing.T) {
	server := httptest.NewTLSServer(countingHandler(new(int64), http.StatusOK, "ok"))
	defer server.Close()

	f := New(testOptions(true), telemetry.NewRecorder())
	_, err := f.Fetch(context.Background(), server.URL, RequestOptions{MaxAttempts: 1})
	require.ErrorIs(t, err, ErrTransport)
	require.ErrorIs(t, err, ErrTLS)
}

func TestServerErrorRetried(t *testing.T) {
	var hits int64
	server := httptest.NewServer(countingHandler(&hits, http.StatusServiceUnavailable, "down"))
	defer server.Close()

	f := New(testOptions(false), telemetry.NewRecorder())
	_, err := f.Fetch(context.Background(), server.URL, RequestOptions{})
	require.ErrorIs(t, err, ErrTransport)
	require.ErrorIs(t, err, ErrHTTPStatus)

	var terr *Error
	require.True(t, errors.As(err, &terr))
	require.Equal(t, http.StatusServiceUnavailable, terr.StatusCode)
	require.Equal(t, 3, terr.Attempt)
	require.Equal(t, int64(3), atomic.LoadInt64(&hits))
}

func TestClientErrorNotRetried(t *testing.T) {
	var hits int64
	server := httptest.NewServer(countingHandler(&hits, http.StatusNotFound, "missing"))
	defer server.Close()

	f := New(testOptions(false), telemetry.NewRecorder())
	_, err := f.Fetch(context.Background(), server.URL, RequestOptions{})
	require.ErrorIs(t, err, ErrHTTPStatus)
	require.Equal(t, int64(1), atomic.LoadInt64(&hits))
}

func TestRecoversAfterServerError(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("fine"))
	}))
	defer server.Close()

	f := New(testOptions(false), telemetry.NewRecorder())
	res, err := f.Fetch(context.Background(), server.URL, RequestOptions{
		Headers: map[string]string{"X-Test": "1"},
	})
	require.NoError(t, err)
	require.Equal(t, "fine", string(res.Body))
	require.Equal(t, 2, res.Attempts)
}

func TestConnectionRefused(t *testing.T) {
	server := httptest.NewServer(countingHandler(new(int64), http.StatusOK, "ok"))
	addr := server.URL
	server.Close()

	f := New(testOptions(false), telemetry.NewRecorder())
	_, err := f.Fetch(context.Background(), addr, RequestOptions{})
	require.ErrorIs(t, err, ErrTransport)
	require.ErrorIs(t, err, ErrConnection)

	var terr *Error
	require.True(t, errors.As(err, &terr))
	require.Equal(t, StrategyUnverifiedExtended, terr.Strategy)
}

func TestTimeoutEscalatesToExtended(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	opts := testOptions(false)
	opts.Timeout = 50 * time.Millisecond
	f := New(opts, telemetry.NewRecorder())

	_, err := f.Fetch(context.Background(), server.URL, RequestOptions{MaxAttempts: 2})
	require.ErrorIs(t, err, ErrTimeout)

	var terr *Error
	require.True(t, errors.As(err, &terr))
	require.Equal(t, StrategyUnverifiedExtended, terr.Strategy)
	require.Equal(t, 2, terr.Attempt)
}

func TestCancelDuringBackoff(t *testing.T) {
	server := httptest.NewServer(countingHandler(new(int64), http.StatusServiceUnavailable, ""))
	defer server.Close()

	opts := testOptions(false)
	opts.BaseDelay = time.Hour
	opts.MaxDelay = time.Hour
	f := New(opts, telemetry.NewRecorder())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Fetch(ctx, server.URL, RequestOptions{})
	require.ErrorIs(t, err, ErrHTTPStatus)
	require.Less(t, time.Since(start), 10*time.Second)
}

func TestErrorRetryable(t *testing.T) {
	cases := []struct {
		err       Error
		retryable bool
	}{
		{Error{Kind: KindTLS}, true},
		{Error{Kind: KindTimeout}, true},
		{Error{Kind: KindHTTPStatus, StatusCode: 500}, true},
		{Error{Kind: KindHTTPStatus, StatusCode: 429}, true},
		{Error{Kind: KindHTTPStatus, StatusCode: 403}, false},
	}
	for _, c := range cases {
		require.Equal(t, c.retryable, c.err.Retryable(), c.err.Kind.String())
	}
}
