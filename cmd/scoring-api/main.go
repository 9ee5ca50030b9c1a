// Модуль main - входная точка скорингового API: читает конфигурацию,
// открывает хранилище и запускает HTTP-сервер.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sol1corejz/scoring-api/cmd/config"
	"github.com/sol1corejz/scoring-api/internal/cert"
	"github.com/sol1corejz/scoring-api/internal/handlers"
	"github.com/sol1corejz/scoring-api/internal/logger"
	"github.com/sol1corejz/scoring-api/internal/storage"
	"go.uber.org/zap"
)

// Информация о сборке, задаётся через -ldflags.
var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

// shutdownTimeout - сколько ждём завершения активных запросов при остановке.
const shutdownTimeout = 10 * time.Second

func main() {
	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)

	if err := config.ParseFlags(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Log.Error("Failed to run server", zap.Error(err))
	}
	logger.Sync()
}

// run запускает HTTP-сервер и блокируется до отмены ctx.
//
// Маршруты:
//   - POST /method: вызов методов API (online_score, clients_interests);
//   - GET /ping: проверка доступности хранилища;
//   - GET /metrics: метрики Prometheus;
//   - /debug/pprof/*: профилирование.
func run(ctx context.Context) error {
	if err := logger.Initialize(config.FlagLogLevel, config.FlagLogFile); err != nil {
		return err
	}

	store, err := storage.Open(storeConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	r := handlers.NewAPI(store).Routes(config.TrustedSubnet)
	mountProfiler(r)

	srv := &http.Server{
		Addr:              config.FlagRunAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Running server",
			zap.String("address", config.FlagRunAddr),
			zap.String("store", config.StoreBackend),
			zap.Bool("https", config.EnableHTTPS),
		)
		errCh <- serve(srv)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Log.Info("Server Shutdown gracefully")
	return nil
}

func serve(srv *http.Server) error {
	var err error
	if config.EnableHTTPS {
		certPath, keyPath, certErr := cert.Ensure(".")
		if certErr != nil {
			return fmt.Errorf("TLS certificate: %w", certErr)
		}
		err = srv.ListenAndServeTLS(certPath, keyPath)
	} else {
		err = srv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func storeConfig() storage.Config {
	return storage.Config{
		Backend:       config.StoreBackend,
		RedisAddr:     config.RedisAddr,
		RedisPassword: config.RedisPassword,
		RedisDB:       config.RedisDB,
		DatabaseDSN:   config.DatabaseDSN,
		FilePath:      config.FileStoragePath,
		Timeout:       config.StoreTimeout,
		Attempts:      config.StoreAttempts,
		Delay:         config.StoreDelay,
	}
}

func mountProfiler(r chi.Router) {
	r.HandleFunc("/debug/pprof", pprof.Index)
	r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	r.Handle("/debug/pprof/{name}", http.HandlerFunc(pprof.Index))
}
