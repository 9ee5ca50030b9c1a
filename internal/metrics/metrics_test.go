package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCounters(t *testing.T) {
	Requests.WithLabelValues("online_score", "200").Inc()
	StoreRetries.WithLabelValues("get").Add(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(StoreRetries.WithLabelValues("get")))

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	res := w.Result()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `scoring_api_requests_total{code="200",method="online_score"}`)
	assert.Contains(t, string(body), `scoring_api_store_retries_total{op="get"} 2`)
}
