package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordEvent(t *testing.T) {
	m := New()
	m.RecordEvent(EventPregnancyConfirmed)
	m.RecordEvent(EventPregnancyConfirmed)
	m.RecordEvent(EventInventoryClamped)

	if got := testutil.ToFloat64(m.events.WithLabelValues(EventPregnancyConfirmed)); got != 2 {
		t.Errorf("pregnancy_confirmed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues(EventInventoryClamped)); got != 1 {
		t.Errorf("inventory_clamped = %v, want 1", got)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/cows/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/api/cows/1", "/api/cows/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/api/cows/:id", "GET", "204")); got != 2 {
		t.Errorf("cow route count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")); got != 1 {
		t.Errorf("unmatched count = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "herdbook_http_requests_total") {
		t.Error("exposition is missing herdbook_http_requests_total")
	}
}

func TestOrNop(t *testing.T) {
	if _, ok := OrNop(nil).(Nop); !ok {
		t.Error("OrNop(nil) must return Nop")
	}
	m := New()
	if OrNop(m) != Recorder(m) {
		t.Error("OrNop must keep a non-nil recorder")
	}
}
