package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	rec := NewRecorder()
	client := resty.New()
	InstrumentResty(client, rec)

	_, err := client.R().Get(server.URL)
	require.NoError(t, err)

	require.True(t, rec.Has(KindDebug, report_resty_request))
	require.True(t, rec.Has(KindDebug, report_resty_response))
	require.False(t, rec.Has(KindDebug, report_resty_failure))

	counts := rec.Reports(KindCount)
	require.Len(t, counts, 1)
	require.Equal(t, int64(1), counts[0].Count)

	addr := server.URL
	server.Close()
	_, err = client.R().Get(addr)
	require.Error(t, err)
	require.True(t, rec.Has(KindDebug, report_resty_failure))

	counts = rec.Reports(KindCount)
	require.Len(t, counts, 2)
	// the first request finished before the second started
	require.Equal(t, int64(1), counts[1].Count)
}
