// Package metrics регистрирует метрики Prometheus сервисов трекера.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "subscription_tracker"

var (
	// HTTPRequests количество обработанных HTTP-запросов.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Number of handled HTTP requests.",
	}, []string{"method", "route", "status"})

	// HTTPDuration длительность обработки HTTP-запросов.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ViewRecomputes количество пересчётов отфильтрованного списка.
	ViewRecomputes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_recomputes_total",
		Help:      "Number of filtered list recomputations.",
	})

	// ViewSessions количество состояний фильтров в памяти.
	ViewSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "view_sessions",
		Help:      "Number of per-user filter states held in memory.",
	})

	// RemindersPublished количество опубликованных напоминаний.
	RemindersPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_published_total",
		Help:      "Number of reminders published to the broker.",
	}, []string{"kind"})

	// BillingDatesRolled количество перенесённых вперёд дат списания.
	BillingDatesRolled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "billing_dates_rolled_total",
		Help:      "Number of past billing dates moved forward.",
	})

	// EmailsSent количество отправленных писем по результату.
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Number of reminder emails by result.",
	}, []string{"result"})
)

// Middleware считает запросы и их длительность по шаблону маршрута chi.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
