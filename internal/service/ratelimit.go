package service

import (
	"context"
	"sync"
	"time"

	"imagegate/config"
	"imagegate/internal/core"
	"imagegate/internal/database/client"
	"imagegate/internal/telemetry"

	"go.uber.org/zap"
)

// RateLimiter 所有呼叫外部 AI 供應商前都必須先 Admit
type RateLimiter interface {
	Admit(ctx context.Context) bool
}

// GlobalRateLimiter 單一行程內的滑動視窗；一個行程只會有一個實例
type GlobalRateLimiter struct {
	mutex      sync.Mutex
	timestamps []time.Time
	ceiling    int
	window     time.Duration
	now        func() time.Time
	trace      *telemetry.Trace
	metric     *telemetry.Metric
}

func NewGlobalRateLimiter(ceiling int, window time.Duration, trace *telemetry.Trace, metric *telemetry.Metric) *GlobalRateLimiter {
	return &GlobalRateLimiter{
		timestamps: make([]time.Time, 0, ceiling),
		ceiling:    ceiling,
		window:     window,
		now:        time.Now,
		trace:      trace,
		metric:     metric,
	}
}

// WithClock 替換時間來源
func (l *GlobalRateLimiter) WithClock(now func() time.Time) *GlobalRateLimiter {
	l.now = now
	return l
}

func (l *GlobalRateLimiter) Admit(ctx context.Context) bool {
	_, span, end := l.trace.WithSpan(ctx, string(core.SpanRateLimiterAdmit))
	defer end(nil)

	l.mutex.Lock()
	now := l.now()
	cutoff := now.Add(-l.window)

	// timestamps 依時間遞增，找到第一個仍在視窗內的位置
	i := 0
	for i < len(l.timestamps) && l.timestamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[i:]...)
	}

	admitted := len(l.timestamps) < l.ceiling
	if admitted {
		l.timestamps = append(l.timestamps, now)
	}
	inWindow := len(l.timestamps)
	l.mutex.Unlock()

	l.trace.ApplyTraceAttributes(span, core.TraceRateLimitMeta{
		Backend:   config.RateLimitBackendMemory,
		Ceiling:   l.ceiling,
		WindowSec: int64(l.window / time.Second),
		InWindow:  inWindow,
		Admitted:  admitted,
	})
	if !admitted {
		l.metric.IncRateLimited()
	}
	return admitted
}

// RedisRateLimiter 多副本共用同一個視窗；redis 失敗時一律拒絕
type RedisRateLimiter struct {
	store   SlidingWindowStore
	ceiling int
	window  time.Duration
	now     func() time.Time
	metric  *telemetry.Metric
	logger  *zap.Logger
}

func NewRedisRateLimiter(store SlidingWindowStore, ceiling int, window time.Duration, metric *telemetry.Metric, logger *zap.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		store:   store,
		ceiling: ceiling,
		window:  window,
		now:     time.Now,
		metric:  metric,
		logger:  logger,
	}
}

func (l *RedisRateLimiter) Admit(ctx context.Context) bool {
	admitted, _, err := l.store.Admit(ctx, l.now(), l.window, l.ceiling)
	if err != nil {
		l.logger.Warn("redis rate limiter unavailable, rejecting call", zap.Error(err))
		l.metric.IncRateLimited()
		return false
	}
	if !admitted {
		l.metric.IncRateLimited()
	}
	return admitted
}

// NewRateLimiter 依設定選擇後端；redis 未設定時退回單機視窗
func NewRateLimiter(
	conf *config.Configuration,
	redisClient *client.RedisClient,
	store SlidingWindowStore,
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	logger *zap.Logger,
) RateLimiter {
	window := time.Duration(conf.RateLimit.WindowSeconds) * time.Second
	if conf.RateLimit.Backend == config.RateLimitBackendRedis {
		if redisClient.Enabled() {
			return NewRedisRateLimiter(store, conf.RateLimit.Ceiling, window, metric, logger)
		}
		logger.Warn("RATE_LIMIT__BACKEND=redis but redis is not configured, using in-memory window")
	}
	return NewGlobalRateLimiter(conf.RateLimit.Ceiling, window, trace, metric)
}
