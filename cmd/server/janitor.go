package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/phoneauth/internal/server/storage"
)

// startJanitor запускает runJanitor в отдельной горутине.
// Возвращенная stop останавливает janitor и ждет его завершения,
// после нее хранилище можно закрывать.
func startJanitor(ctx context.Context, logger *slog.Logger, tokens storage.TokenStorage, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runJanitor(ctx, logger, tokens, interval)
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

// runJanitor периодически удаляет просроченные токены до отмены ctx
func runJanitor(ctx context.Context, logger *slog.Logger, tokens storage.TokenStorage, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			purgeExpired(ctx, logger, tokens, now)
		}
	}
}

func purgeExpired(ctx context.Context, logger *slog.Logger, tokens storage.TokenStorage, now time.Time) {
	deleted, err := tokens.DeleteExpiredTokens(ctx, now)
	if err != nil {
		logger.ErrorContext(ctx, "failed to purge expired tokens", slog.Any("error", err))
		return
	}
	if deleted > 0 {
		logger.InfoContext(ctx, "purged expired tokens", slog.Int("count", deleted))
	}
}
