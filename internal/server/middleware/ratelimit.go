package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
)

var rateLimitedTotal = metrics.GetOrCreateCounter(`gophsync_http_rate_limited_total`)

// RateLimiter ограничивает число запросов с одного ключа (обычно IP адреса)
// за временное окно
type RateLimiter struct {
	buckets  *xsync.MapOf[string, *bucket]
	logger   *slog.Logger
	stopC    chan struct{}
	stopOnce sync.Once
	rate     int
	window   time.Duration
}

// bucket представляет bucket для конкретного ключа
type bucket struct {
	lastRefill time.Time
	tokens     int
	mu         sync.Mutex
}

// NewRateLimiter создает новый rate limiter
// rate - максимальное количество запросов в окне
// window - временное окно (например, 1 минута)
func NewRateLimiter(rate int, window time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		buckets: xsync.NewMapOf[string, *bucket](),
		rate:    rate,
		window:  window,
		logger:  logger,
		stopC:   make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// cleanup периодически удаляет неактивные buckets
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupOldBuckets(time.Now())
		case <-rl.stopC:
			return
		}
	}
}

// cleanupOldBuckets удаляет buckets, которые не пополнялись дольше двух окон
func (rl *RateLimiter) cleanupOldBuckets(now time.Time) {
	rl.buckets.Range(func(key string, b *bucket) bool {
		b.mu.Lock()
		stale := now.Sub(b.lastRefill) > rl.window*2
		b.mu.Unlock()
		if stale {
			rl.buckets.Delete(key)
		}
		return true
	})
}

// Stop останавливает cleanup goroutine. Повторный вызов безопасен.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopC)
	})
}

// Allow проверяет, разрешен ли запрос для данного ключа
func (rl *RateLimiter) Allow(key string) bool {
	b, _ := rl.buckets.LoadOrCompute(key, func() *bucket {
		return &bucket{
			tokens:     rl.rate,
			lastRefill: time.Now(),
		}
	})

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.Sub(b.lastRefill) >= rl.window {
		b.tokens = rl.rate
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// Middleware возвращает middleware, ограничивающее все запросы этим limiter
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.check(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// check отвечает 429, если лимит исчерпан
func (rl *RateLimiter) check(w http.ResponseWriter, r *http.Request) bool {
	key := getClientIP(r)
	if rl.Allow(key) {
		return true
	}

	rateLimitedTotal.Inc()
	rl.logger.Warn("Rate limit exceeded",
		"ip", key,
		"method", r.Method,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate limit exceeded, please try again later"}`))
	return false
}

// PathRateLimit задает лимит для конкретного пути
type PathRateLimit struct {
	Path   string
	Rate   int
	Window time.Duration
}

// PathRateLimiter применяет свой limiter к каждому перечисленному пути.
// Остальные пути не ограничиваются.
type PathRateLimiter struct {
	limiters map[string]*RateLimiter
}

// NewPathRateLimiter создает limiters для путей
func NewPathRateLimiter(limits []PathRateLimit, logger *slog.Logger) *PathRateLimiter {
	limiters := make(map[string]*RateLimiter, len(limits))
	for _, limit := range limits {
		limiters[limit.Path] = NewRateLimiter(limit.Rate, limit.Window, logger)
	}
	return &PathRateLimiter{limiters: limiters}
}

// Middleware возвращает middleware с лимитами по путям
func (p *PathRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter, ok := p.limiters[r.URL.Path]; ok && !limiter.check(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stop останавливает все limiters
func (p *PathRateLimiter) Stop() {
	for _, limiter := range p.limiters {
		limiter.Stop()
	}
}

// getClientIP извлекает IP адрес клиента из запроса
// Проверяет заголовки X-Forwarded-For и X-Real-IP для прокси
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Берем первый IP из списка (реальный клиент)
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}
