package backend

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"ProNetwork/pkg/logger"
)

// errBreakerOpen 熔断期间直接拒绝请求，调用方按网络错误处理
var errBreakerOpen = errors.New("backend circuit breaker is open")

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// breaker 后端熔断器：连续 maxFailures 次失败后熔断 resetTimeout，
// 之后放行一个探测请求，成功则恢复
type breaker struct {
	maxFailures  int
	resetTimeout time.Duration
	now          func() time.Time

	mu       sync.Mutex
	state    breakerState
	failures int
	openedAt time.Time
	probing  bool
}

func newBreaker(maxFailures int, resetTimeout time.Duration) *breaker {
	return &breaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		now:          time.Now,
	}
}

// allow 判断本次请求能否发出
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateOpen:
		if b.now().Sub(b.openedAt) < b.resetTimeout {
			return false
		}
		b.transition(stateHalfOpen)
		b.probing = true
		return true
	case stateHalfOpen:
		// 同一时间只放行一个探测请求
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

// record 记录结果，failed 为 true 表示网络错误或 5xx
func (b *breaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	if !failed {
		b.failures = 0
		if b.state != stateClosed {
			b.transition(stateClosed)
		}
		return
	}

	b.failures++
	if b.state == stateHalfOpen || b.failures >= b.maxFailures {
		b.openedAt = b.now()
		if b.state != stateOpen {
			b.transition(stateOpen)
		}
	}
}

func (b *breaker) current() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *breaker) transition(to breakerState) {
	logger.Logger.Warn("Backend circuit breaker state changed",
		zap.String("from", b.state.String()),
		zap.String("to", to.String()),
		zap.Int("failures", b.failures),
	)
	b.state = to
}
