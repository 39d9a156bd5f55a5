package metrics

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Scans = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discord_analyzer_scans_total",
		Help: "Total guild scans, full and incremental",
	})
	ScanErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discord_analyzer_scan_errors_total",
		Help: "Total scans that finished with at least one error",
	})
	ScannedMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discord_analyzer_scanned_messages_total",
		Help: "Messages added to scans",
	})
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "discord_analyzer_analysis_duration_seconds",
		Help:    "Time spent aggregating a scan",
		Buckets: prometheus.DefBuckets,
	})
	ReportRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discord_analyzer_report_requests_total",
		Help: "Report requests by method",
	}, []string{"method"})
)

func init() {
	prometheus.MustRegister(Scans, ScanErrors, ScannedMessages, AnalysisDuration, ReportRequests)
}

// ObserveScan records one finished scan that added n messages.
func ObserveScan(n int, err error) {
	Scans.Inc()
	ScannedMessages.Add(float64(n))
	if err != nil {
		ScanErrors.Inc()
	}
}

// ObserveAnalysisDuration records an aggregation that started at start.
func ObserveAnalysisDuration(start time.Time) {
	AnalysisDuration.Observe(time.Since(start).Seconds())
}

// IncReport counts one report request served by method.
func IncReport(method string) { ReportRequests.WithLabelValues(method).Inc() }

// Handler serves /metrics and /health.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return mux
}

// StartServer serves Handler on addr in the background. An empty addr
// disables the listener and returns nil.
func StartServer(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	srv := &http.Server{Addr: addr, Handler: Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()
	log.Printf("Metrics listening on %s", addr)
	return srv
}
