package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/config"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// Class names one rate-limited route class. Each class has an independent
// fixed-window budget keyed by client IP; hitting one budget never consumes
// another.
type Class string

const (
	ClassAPI    Class = "api"
	ClassAuth   Class = "auth"
	ClassEmail  Class = "email"
	ClassPDF    Class = "pdf"
	ClassExport Class = "export"
)

// budget pairs a window quota with the error code emitted when it runs out.
type budget struct {
	max    int
	window time.Duration
	code   string
}

// Limiter enforces fixed-window budgets per (class, IP). The count for a key
// lives in the CounterStore for the duration of the window; a new window
// starts the count over from zero rather than sliding.
type Limiter struct {
	store   CounterStore
	budgets map[Class]budget
	logger  *zap.Logger
}

// New builds a limiter from the configured budgets.
func New(store CounterStore, cfg config.RateLimitConfig, logger *zap.Logger) *Limiter {
	return &Limiter{
		store:  store,
		logger: logger,
		budgets: map[Class]budget{
			ClassAPI:    {max: cfg.API.Max, window: cfg.API.Window, code: "RATE_LIMIT_EXCEEDED"},
			ClassAuth:   {max: cfg.Auth.Max, window: cfg.Auth.Window, code: "AUTH_RATE_LIMIT_EXCEEDED"},
			ClassEmail:  {max: cfg.Email.Max, window: cfg.Email.Window, code: "EMAIL_RATE_LIMIT_EXCEEDED"},
			ClassPDF:    {max: cfg.PDF.Max, window: cfg.PDF.Window, code: "PDF_RATE_LIMIT_EXCEEDED"},
			ClassExport: {max: cfg.Export.Max, window: cfg.Export.Window, code: "EXPORT_RATE_LIMIT_EXCEEDED"},
		},
	}
}

// Allow consumes one unit of the caller's budget for the class. It returns
// nil when the request may proceed and a 429 DomainError once the window
// quota is spent. Store failures fail open: limiting is protection, not a
// correctness guarantee, so an unreachable store must not take the API down.
func (l *Limiter) Allow(ctx context.Context, class Class, ip string) error {
	b, ok := l.budgets[class]
	if !ok || b.max <= 0 {
		return nil
	}

	key := fmt.Sprintf("ratelimit:%s:%s", class, ip)
	count, ttl, err := l.store.Incr(ctx, key, b.window)
	if err != nil {
		l.logger.Warn("rate limit store unavailable, allowing request",
			zap.String("class", string(class)), zap.Error(err))
		return nil
	}
	if count <= int64(b.max) {
		return nil
	}

	retryAfter := int(ttl / time.Second)
	if retryAfter <= 0 {
		retryAfter = int(b.window / time.Second)
	}
	return apperrors.NewRateLimited(b.code,
		fmt.Sprintf("too many requests, retry in %d seconds", retryAfter), retryAfter)
}
