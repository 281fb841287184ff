package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "interviewprep"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"service", "method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method", "route", "status"})

	httpInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_in_flight_requests",
		Help:      "Current number of in-flight HTTP requests",
	}, []string{"service"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_response_size_bytes",
		Help:      "Size of HTTP responses in bytes",
		Buckets:   prometheus.ExponentialBuckets(200, 2, 8),
	}, []string{"service", "method", "route", "status"})

	interviewsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interviews_started_total",
		Help:      "Interview sessions created, by interview type",
	}, []string{"type"})

	interviewsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interviews_finished_total",
		Help:      "Finish transitions, by interview type",
	}, []string{"type"})

	answersEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answers_evaluated_total",
		Help:      "Answers evaluated, by whether the turn ended the interview",
	}, []string{"completed"})

	overallScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "interview_overall_score",
		Help:      "Overall score of finished interviews",
		Buckets:   prometheus.LinearBuckets(10, 10, 10),
	})

	oracleCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "oracle_calls_total",
		Help:      "Text generation attempts, by model tier and outcome",
	}, []string{"tier", "outcome"})

	oracleLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "oracle_call_duration_seconds",
		Help:      "Duration of text generation attempts in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
	}, []string{"tier"})

	oracleParses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "oracle_evaluation_parse_total",
		Help:      "Evaluation responses, by parse result",
	}, []string{"result"})
)

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request metrics with Prometheus labels. The route label
// is the chi route pattern so session ids do not explode label cardinality.
func Middleware(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			httpInFlight.WithLabelValues(service).Inc()
			defer httpInFlight.WithLabelValues(service).Dec()

			next.ServeHTTP(rec, r)

			labels := prometheus.Labels{
				"service": service,
				"method":  r.Method,
				"route":   routePattern(r),
				"status":  strconv.Itoa(rec.status),
			}

			httpRequests.With(labels).Inc()
			httpLatency.With(labels).Observe(time.Since(start).Seconds())
			httpResponseSize.With(labels).Observe(float64(rec.bytes))
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func InterviewStarted(interviewType string) {
	interviewsStarted.WithLabelValues(interviewType).Inc()
}

func InterviewFinished(interviewType string, overallScore float64) {
	interviewsFinished.WithLabelValues(interviewType).Inc()
	overallScores.Observe(overallScore)
}

func AnswerEvaluated(completed bool) {
	answersEvaluated.WithLabelValues(strconv.FormatBool(completed)).Inc()
}

// OracleCall records one generation attempt; outcome is "ok" or an error code.
func OracleCall(tier, outcome string, d time.Duration) {
	oracleCalls.WithLabelValues(tier, outcome).Inc()
	oracleLatency.WithLabelValues(tier).Observe(d.Seconds())
}

func EvaluationParsed(result string) {
	oracleParses.WithLabelValues(result).Inc()
}
