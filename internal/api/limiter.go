package telegram

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// userLimiter ограничивает частоту анализов для каждого пользователя отдельно.
type userLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
	every    rate.Limit
}

func newUserLimiter(interval time.Duration) *userLimiter {
	every := rate.Inf
	if interval > 0 {
		every = rate.Every(interval)
	}
	return &userLimiter{
		limiters: make(map[int64]*rate.Limiter),
		every:    every,
	}
}

// Reserve пытается занять слот. Если слот занят, возвращает время ожидания.
func (l *userLimiter) Reserve(userID int64) (bool, time.Duration) {
	limiter := l.get(userID)

	r := limiter.Reserve()
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		return false, delay
	}
	return true, 0
}

func (l *userLimiter) get(userID int64) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(l.every, 1)
		l.limiters[userID] = limiter
	}
	return limiter
}
