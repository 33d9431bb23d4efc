package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"exchange-form-service/internal/adapter/cache"
	httpRouter "exchange-form-service/internal/adapter/http"
	"exchange-form-service/internal/adapter/publisher"
	"exchange-form-service/internal/adapter/repository"
	"exchange-form-service/internal/config"
	"exchange-form-service/internal/domain/model"
	"exchange-form-service/internal/domain/ports"
	"exchange-form-service/internal/form"
	"exchange-form-service/internal/metrics"
	"exchange-form-service/internal/refresher"
	"exchange-form-service/internal/service"
	"exchange-form-service/pkg/logger"
)

type stateStore interface {
	ports.RateStore
	ports.BalanceStore
}

func main() {
	log := logger.NewLogger(os.Getenv("LOG_LEVEL"))
	log.Info("Starting exchange form service")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	store, closeStore, err := newStateStore(cfg, log)
	if err != nil {
		log.Error("Failed to initialize state store", "error", err, "driver", cfg.Store.Driver)
		os.Exit(1)
	}
	defer closeStore()

	events := newPublisher(cfg, log)
	defer func() {
		if err := events.Close(); err != nil {
			log.Error("Failed to close event publisher", "error", err)
		}
	}()

	fetcher := repository.NewExchangeAPI(
		cfg.ExchangeAPI.BaseURL,
		cfg.ExchangeAPI.APIKey,
		model.ParseCurrency(cfg.ExchangeAPI.Base),
		cfg.ExchangeAPI.Timeout,
		log.With("component", "exchange_api"),
	)

	currencies := cfg.Exchange.CurrencyList()
	precision := cfg.Exchange.AmountPrecision

	ratesService := service.NewRatesService(store, store, events, appMetrics, precision, log.With("component", "rates"))
	exchangeService := service.NewExchangeService(ratesService, store, events, appMetrics, currencies, precision,
		log.With("component", "exchange"))
	formService := service.NewFormService(ratesService, exchangeService, form.Options{
		Currencies:    currencies,
		Precision:     precision,
		RatePrecision: cfg.Exchange.RatePrecision,
	}, appMetrics, log.With("component", "forms"))

	rateRefresher := refresher.New(fetcher, ratesService, cfg.ExchangeAPI.RefreshRate, nil, log.With("component", "refresher"))

	handler := httpRouter.NewHandler(ratesService, formService, rateRefresher, log, appMetrics)
	router := httpRouter.NewRouter(handler, log, appMetrics)
	routes := router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, cancelRefresh := context.WithCancel(context.Background())
	go rateRefresher.Run(ctx)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	cancelRefresh()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}

func newStateStore(cfg *config.Config, log *logger.Logger) (stateStore, func(), error) {
	storeLog := log.With("component", "store", "driver", cfg.Store.Driver)

	if cfg.Store.Driver != "redis" {
		return cache.NewMemoryStore(cfg.Exchange.Balances(), storeLog), func() {}, nil
	}

	rs := cache.NewRedisStore(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB, cfg.Store.RedisPrefix, storeLog)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rs.Ping(ctx); err != nil {
		_ = rs.Close()
		return nil, nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	if err := rs.Seed(ctx, cfg.Exchange.Balances()); err != nil {
		_ = rs.Close()
		return nil, nil, err
	}
	return rs, func() {
		if err := rs.Close(); err != nil {
			log.Error("Failed to close redis client", "error", err)
		}
	}, nil
}

func newPublisher(cfg *config.Config, log *logger.Logger) ports.EventPublisher {
	if cfg.Events.Driver == "kafka" {
		return publisher.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.RefreshTopic, cfg.Events.ExchangeTopic,
			log.With("component", "events"))
	}
	return publisher.NewLogPublisher(log)
}
