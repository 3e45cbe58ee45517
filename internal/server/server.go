package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"parking-garage/internal/logging"
	"parking-garage/internal/parking"
)

type Options struct {
	Port           string
	ServiceName    string
	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	httpServer *http.Server
}

// NewRouter builds the HTTP surface over a garage.
func NewRouter(garage *parking.InstrumentedGarage, opts Options) http.Handler {
	handler := NewHandler(garage, opts.ServiceName)
	limiter := NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
	metrics := NewMetricsRegistry(garage)

	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(TracingMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}).ServeHTTP)

	r.Route("/api/garage", func(r chi.Router) {
		r.Use(limiter.Middleware)

		r.Post("/check-in", handler.CheckIn)
		r.Post("/check-out", handler.CheckOut)
		r.Post("/pay", handler.ConfirmPayment)
		r.Get("/status", handler.GetStatus)
		r.Get("/find/{plate}", handler.FindByPlate)
		r.Get("/tickets", handler.ActiveTickets)
		r.Get("/history", handler.History)
		r.Post("/passes/monthly", handler.BuyMonthlyPass)
		r.Post("/passes/single", handler.BuySingleEntryPass)
		r.Get("/passes/{plate}", handler.GetPasses)
		r.Get("/rates", handler.GetRates)
		r.Get("/report", handler.GetReport)
	})

	return r
}

func NewServer(garage *parking.InstrumentedGarage, opts Options) *Server {
	httpServer := &http.Server{
		Addr:         ":" + opts.Port,
		Handler:      NewRouter(garage, opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
	}
}

func (s *Server) Start() error {
	logging.Logger().WithField("addr", s.httpServer.Addr).Info("starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Logger().Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
