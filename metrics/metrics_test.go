package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposure(t *testing.T) {
	ObserveScan(12, nil)
	ObserveScan(0, errors.New("partial"))
	IncReport("Pivot")
	ObserveAnalysisDuration(time.Now().Add(-250 * time.Millisecond))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"discord_analyzer_scans_total",
		"discord_analyzer_scan_errors_total",
		"discord_analyzer_scanned_messages_total",
		"discord_analyzer_analysis_duration_seconds",
		`discord_analyzer_report_requests_total{method="Pivot"}`,
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status: %d", rec.Code)
	}
}

func TestStartServerDisabled(t *testing.T) {
	if srv := StartServer(""); srv != nil {
		t.Fatal("empty addr should not start a server")
	}
}
