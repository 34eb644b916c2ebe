package paylane

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func durationSamples(t *testing.T, operation, method string) uint64 {
	t.Helper()
	m, ok := callDuration.WithLabelValues(operation, method).(prometheus.Metric)
	require.True(t, ok)
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	return out.GetHistogram().GetSampleCount()
}

func TestMetrics_RecordedPerCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	c, err := New("merchant", "s3cret",
		WithBaseURL(srv.URL+"/"),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)

	calls := callsTotal.WithLabelValues(OpGetSaleInfo, http.MethodGet, outcomeSuccess)
	beforeCalls := testutil.ToFloat64(calls)
	beforeSamples := durationSamples(t, OpGetSaleInfo, http.MethodGet)

	_, err = c.GetSaleInfo(context.Background(), Params{"id_sale": 1})
	require.NoError(t, err)

	assert.Equal(t, beforeCalls+1, testutil.ToFloat64(calls))
	assert.Equal(t, beforeSamples+1, durationSamples(t, OpGetSaleInfo, http.MethodGet))
}

func TestMetrics_UnsupportedMethodsShareOneLabel(t *testing.T) {
	assert.Equal(t, http.MethodPost, metricMethod(http.MethodPost))
	assert.Equal(t, otherMethod, metricMethod("PROPFIND"))
	assert.Equal(t, otherMethod, metricMethod("X-CUSTOM-1234"))

	other := callsTotal.WithLabelValues("raw", otherMethod, outcomeDeclined)
	before := testutil.ToFloat64(other)

	recordMetrics(CallRecord{Method: "PROPFIND", StatusCode: http.StatusOK})
	recordMetrics(CallRecord{Method: "PURGE", StatusCode: http.StatusOK})

	assert.Equal(t, before+2, testutil.ToFloat64(other))
}
