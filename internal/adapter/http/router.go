package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"exchange-form-service/internal/metrics"
	"exchange-form-service/pkg/logger"
)

type Router struct {
	handler        *Handler
	log            *logger.Logger
	metrics        *metrics.Metrics
	metricsHandler http.Handler
}

func NewRouter(handler *Handler, log *logger.Logger, metrics *metrics.Metrics) *Router {
	return &Router{
		handler:        handler,
		log:            log,
		metrics:        metrics,
		metricsHandler: promhttp.Handler(),
	}
}

func (r *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		crw := &customResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(crw, req)

		// the mux sets Pattern, which keeps form ids out of the labels
		path := req.Pattern
		if path == "" {
			path = "unmatched"
		}
		duration := time.Since(start)
		r.metrics.HTTPRequestDuration.WithLabelValues(path, req.Method).Observe(duration.Seconds())
		r.metrics.HTTPRequestsTotal.WithLabelValues(path, req.Method, fmt.Sprintf("%dxx", crw.statusCode/100)).Inc()

		r.log.Info("HTTP request",
			"method", req.Method,
			"path", req.URL.Path,
			"query", req.URL.RawQuery,
			"status", crw.statusCode,
			"duration", duration,
			"remote_addr", req.RemoteAddr,
			"user_agent", req.UserAgent(),
		)
	})
}

type customResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (crw *customResponseWriter) WriteHeader(code int) {
	crw.statusCode = code
	crw.ResponseWriter.WriteHeader(code)
}

func (r *Router) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/rates", r.handler.GetRatesHandler)
	mux.HandleFunc("POST /api/v1/rates/refresh", r.handler.RefreshRatesHandler)
	mux.HandleFunc("GET /api/v1/convert", r.handler.ConvertCurrencyHandler)
	mux.HandleFunc("GET /api/v1/balance", r.handler.GetBalanceHandler)

	mux.HandleFunc("POST /api/v1/forms", r.handler.OpenFormHandler)
	mux.HandleFunc("GET /api/v1/forms/{id}", r.handler.GetFormHandler)
	mux.HandleFunc("PUT /api/v1/forms/{id}/amount", r.handler.SetAmountHandler)
	mux.HandleFunc("POST /api/v1/forms/{id}/focus", r.handler.FocusHandler)
	mux.HandleFunc("PUT /api/v1/forms/{id}/currency", r.handler.SelectCurrencyHandler)
	mux.HandleFunc("POST /api/v1/forms/{id}/submit", r.handler.SubmitHandler)
	mux.HandleFunc("DELETE /api/v1/forms/{id}", r.handler.CloseFormHandler)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	rootMux := http.NewServeMux()
	rootMux.Handle("/", r.loggingMiddleware(mux))
	rootMux.Handle("/metrics", r.metricsHandler)

	return rootMux
}
