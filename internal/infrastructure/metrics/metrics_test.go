package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Contadores(t *testing.T) {
	m := New("bodega")

	m.ObserveMovement("salida", 50)
	m.ObserveMovement("salida", 5)
	m.ObserveRejection("insufficient_stock")
	m.ObserveCorrection("lot_sum")
	m.ObservePublish("bodega.stock.movement", errors.New("broker caído"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Movements.WithLabelValues("salida")))
	assert.Equal(t, 55.0, testutil.ToFloat64(m.Units.WithLabelValues("salida")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Corrections.WithLabelValues("lot_sum")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("bodega.stock.movement", "error")))
}

func TestHandler_ExponeMetricas(t *testing.T) {
	m := New("bodega")
	m.ObserveHTTP("GET", "/api/products", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bodega_http_requests_total{method="GET",path="/api/products",status="200"} 1`)
}
