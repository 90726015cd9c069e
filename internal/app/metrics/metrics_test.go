package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordWrite(t *testing.T) {
	before := testutil.ToFloat64(recordWrites.WithLabelValues("owner", "create"))
	RecordWrite("owner", "create")
	assert.Equal(t, before+1, testutil.ToFloat64(recordWrites.WithLabelValues("owner", "create")))
}

func TestTrackInFlight(t *testing.T) {
	before := testutil.ToFloat64(httpInFlight)
	done := TrackInFlight()
	assert.Equal(t, before+1, testutil.ToFloat64(httpInFlight))
	done()
	assert.Equal(t, before, testutil.ToFloat64(httpInFlight))
}

func TestHandlerExposesClinicMetrics(t *testing.T) {
	RecordHTTPRequest("get", "/owners/{ownerId}", "200", 12*time.Millisecond)
	RecordValidationFailure("pet")
	RecordStoreError("")
	RecordRateLimited()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `petclinic_http_requests_total{method="GET",path="/owners/{ownerId}",status="200"}`)
	assert.Contains(t, text, `petclinic_clinic_validation_failures_total{form="pet"}`)
	assert.Contains(t, text, `petclinic_store_errors_total{operation="unknown"}`)
	assert.Contains(t, text, "petclinic_http_rate_limited_total")
}
