package graceful

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"eventsScraper/internal/utils/logger/sl"
)

// Operation — функция корректного завершения одного сервиса.
type Operation func(ctx context.Context) error

// GracefulShutdown ждёт сигнала завершения (SIGINT, SIGTERM, SIGHUP) и запускает все операции
// параллельно с общим таймаутом. Возвращаемый канал закрывается, когда все операции завершены
// или истёк таймаут.
func GracefulShutdown(ctx context.Context, timeout time.Duration, ops map[string]Operation, logger *slog.Logger) <-chan struct{} {
	wait := make(chan struct{})

	go func() {
		s := make(chan os.Signal, 1)
		signal.Notify(s, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

		select {
		case sig := <-s:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		case <-ctx.Done():
			logger.Info("shutdown requested by context")
		}
		signal.Stop(s)

		Run(timeout, ops, logger)
		close(wait)
	}()

	return wait
}

// Run выполняет операции завершения параллельно и ждёт их не дольше timeout.
func Run(timeout time.Duration, ops map[string]Operation, logger *slog.Logger) {
	op := "graceful.Run()"
	log := logger.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	timeoutFunc := time.AfterFunc(timeout, func() {
		log.Warn("timeout elapsed, force exit", slog.Duration("timeout", timeout))
	})
	defer timeoutFunc.Stop()

	var wg sync.WaitGroup
	for name, operation := range ops {
		wg.Add(1)
		go func(name string, operation Operation) {
			defer wg.Done()

			log.Info("shutting down", slog.String("service", name))
			if err := operation(ctx); err != nil {
				log.Error("shutdown failed", slog.String("service", name), sl.Err(err))
				return
			}
			log.Info("shutdown complete", slog.String("service", name))
		}(name, operation)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}
