package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-garage/internal/config"
	"parking-garage/internal/jobs"
	"parking-garage/internal/logging"
	"parking-garage/internal/parking"
	"parking-garage/internal/pricing"
	"parking-garage/internal/server"
)

var (
	mode = flag.String("mode", "cli", "Mode to run: cli, server, or both")
	port = flag.String("port", "", "Port for HTTP server (overrides APP_PORT)")
)

type app struct {
	cfg       *config.Config
	telemetry *parking.TelemetryProvider
	garage    *parking.InstrumentedGarage
	report    *jobs.DailyReport
}

func main() {
	flag.Parse()

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}
	logging.Configure(cfg.LogLevel, cfg.OTelServiceName)
	log := logging.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := parking.NewTelemetryProvider(ctx, cfg.OTelServiceName, cfg.OTelEndpoint)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize telemetry")
	}

	garage, err := parking.NewGarage(parking.GarageOptions{
		Name:           cfg.GarageName,
		Capacity:       cfg.Capacity,
		Fees:           pricing.NewCalculator(parking.SystemClock),
		Clock:          parking.SystemClock,
		Tokens:         parking.NewSequence(cfg.TokenBase),
		MonthlyPermits: parking.NewSequence(cfg.MonthlyPermitBase),
		SinglePermits:  parking.NewSequence(cfg.SinglePermitBase),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to create garage")
	}

	instrumented, err := parking.NewInstrumentedGarage(garage, telemetryProvider)
	if err != nil {
		log.WithError(err).Fatal("failed to instrument garage")
	}

	report, err := jobs.NewDailyReport(garage, cfg.ReportSchedule)
	if err != nil {
		log.WithError(err).WithField("schedule", cfg.ReportSchedule).Fatal("invalid report schedule")
	}

	a := &app{
		cfg:       cfg,
		telemetry: telemetryProvider,
		garage:    instrumented,
		report:    report,
	}

	log.WithField("garage", cfg.GarageName).WithField("capacity", cfg.Capacity).Info("garage open")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	report.Start()

	switch *mode {
	case "cli":
		a.runCLI(ctx, cancel, sigChan)
	case "server":
		a.runServer(ctx, cancel, sigChan)
	case "both":
		a.runBoth(ctx, cancel, sigChan)
	default:
		log.Fatalf("Invalid mode: %s. Must be cli, server, or both", *mode)
	}

	a.shutdown()
}

func (a *app) newServer() *server.Server {
	return server.NewServer(a.garage, server.Options{
		Port:           a.cfg.Port,
		ServiceName:    a.cfg.OTelServiceName,
		RateLimitRPS:   a.cfg.RateLimitRPS,
		RateLimitBurst: a.cfg.RateLimitBurst,
	})
}

func (a *app) runCLI(ctx context.Context, cancel context.CancelFunc, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Logger().Info("shutting down")
		cancel()
	}()

	shell := parking.NewShell(a.garage, os.Stdin, os.Stdout)
	shell.Run(ctx)
}

func (a *app) runServer(ctx context.Context, cancel context.CancelFunc, sigChan chan os.Signal) {
	srv := a.newServer()

	go func() {
		<-sigChan
		logging.Logger().Info("received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger().WithError(err).Error("server shutdown error")
		}

		cancel()
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Logger().WithError(err).Error("server error")
	}
}

func (a *app) runBoth(ctx context.Context, cancel context.CancelFunc, sigChan chan os.Signal) {
	srv := a.newServer()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan bool, 1)
	go func() {
		shell := parking.NewShell(a.garage, os.Stdin, os.Stdout)
		shell.Run(ctx)
		cliDone <- true
	}()

	go func() {
		<-sigChan
		logging.Logger().Info("received shutdown signal")
		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger().WithError(err).Error("server error")
		}
	case <-cliDone:
		logging.Logger().Info("CLI exited")
	case <-ctx.Done():
		logging.Logger().Info("context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger().WithError(err).Error("server shutdown error")
	}
}

func (a *app) shutdown() {
	log := logging.Logger()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	a.report.Stop(shutdownCtx)

	log.Info("shutting down telemetry")
	if err := a.telemetry.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("error shutting down telemetry")
	}
}
