package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewMetricsAreIndependent(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordActivation("go")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Activations.WithLabelValues("go")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Activations.WithLabelValues("go")))
}

func TestRecordPageMetrics(t *testing.T) {
	m := NewMetrics()

	m.RecordBootstrap("go", "attached")
	m.RecordBootstrap("script", "skipped")
	m.RecordActivation("script")
	m.RecordActivation("script")
	m.RecordInspection("go", 3*time.Millisecond)
	m.SetSandboxAvailable(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BootstrapRuns.WithLabelValues("go", "attached")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BootstrapRuns.WithLabelValues("script", "skipped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Activations.WithLabelValues("script")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SandboxAvailability))
	assert.Equal(t, 1, testutil.CollectAndCount(m.InspectionDuration))

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.Activations)
	assert.EqualValues(t, 1, snap.Inspections)
}

func TestMiddlewareRecordsRoute(t *testing.T) {
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/static/*filepath", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/static/js/main.js", "/static/css/site.css", "/fail", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/static/*filepath", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/fail", "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	snap := m.Snapshot()
	assert.EqualValues(t, 4, snap.TotalRequests)
	assert.EqualValues(t, 2, snap.TotalErrors)
	assert.Greater(t, snap.UptimeSeconds, 0.0)
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.RecordBootstrap("go", "attached")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `pagehook_bootstrap_runs_total{engine="go",state="attached"} 1`)
	assert.Contains(t, body, "pagehook_uptime_seconds")
}
