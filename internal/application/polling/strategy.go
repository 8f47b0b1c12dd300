package polling

import (
	"context"
	"math"
	"time"

	"netstate-agent/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// Strategy는 폴링 전략 인터페이스입니다
type Strategy interface {
	// NextInterval은 다음 폴링까지의 대기 시간을 반환합니다
	NextInterval(success bool) time.Duration
	// Reset은 폴링 전략을 초기 상태로 리셋합니다
	Reset()
}

// FixedIntervalStrategy는 고정 간격 폴링 전략입니다
type FixedIntervalStrategy struct {
	interval time.Duration
}

// NewFixedIntervalStrategy는 새로운 고정 간격 전략을 생성합니다
func NewFixedIntervalStrategy(interval time.Duration) *FixedIntervalStrategy {
	return &FixedIntervalStrategy{interval: interval}
}

// NextInterval은 결과와 상관없이 같은 간격을 반환합니다
func (s *FixedIntervalStrategy) NextInterval(success bool) time.Duration {
	return s.interval
}

// Reset은 아무 작업도 하지 않습니다
func (s *FixedIntervalStrategy) Reset() {}

// ExponentialBackoffStrategy는 지수 백오프를 구현하는 폴링 전략입니다
type ExponentialBackoffStrategy struct {
	baseInterval   time.Duration
	maxInterval    time.Duration
	multiplier     float64
	currentBackoff int
	logger         *logrus.Logger
}

// NewExponentialBackoffStrategy는 새로운 지수 백오프 전략을 생성합니다
func NewExponentialBackoffStrategy(
	baseInterval time.Duration,
	maxInterval time.Duration,
	multiplier float64,
	logger *logrus.Logger,
) *ExponentialBackoffStrategy {
	if multiplier <= 1 {
		multiplier = 2.0
	}

	return &ExponentialBackoffStrategy{
		baseInterval:   baseInterval,
		maxInterval:    maxInterval,
		multiplier:     multiplier,
		currentBackoff: 0,
		logger:         logger,
	}
}

// NextInterval은 다음 폴링까지의 대기 시간을 계산합니다
func (s *ExponentialBackoffStrategy) NextInterval(success bool) time.Duration {
	if success {
		// 성공하면 백오프 리셋
		if s.currentBackoff > 0 {
			s.logger.Debug("적용 성공으로 백오프 리셋")
			s.currentBackoff = 0
			metrics.SetBackoffLevel(0)
		}
		return s.baseInterval
	}

	s.currentBackoff++
	metrics.SetBackoffLevel(float64(s.currentBackoff))

	// time.Duration으로 변환하기 전에 최대 간격으로 제한해야 int64 오버플로가 없습니다
	backoffDuration := float64(s.baseInterval) * math.Pow(s.multiplier, float64(s.currentBackoff-1))
	nextInterval := s.maxInterval
	if backoffDuration < float64(s.maxInterval) {
		nextInterval = time.Duration(backoffDuration)
	}

	s.logger.WithFields(logrus.Fields{
		"backoff_count": s.currentBackoff,
		"next_interval": nextInterval,
		"max_interval":  s.maxInterval,
	}).Debug("지수 백오프 간격 계산")

	return nextInterval
}

// Reset은 백오프 카운터를 리셋합니다
func (s *ExponentialBackoffStrategy) Reset() {
	s.currentBackoff = 0
	metrics.SetBackoffLevel(0)
}

// minPollInterval은 전략이 0 이하의 간격을 반환할 때 사용하는 최소 간격입니다
const minPollInterval = 100 * time.Millisecond

// PollingController는 폴링을 관리하는 컨트롤러입니다
type PollingController struct {
	strategy Strategy
	ticker   *time.Ticker
	logger   *logrus.Logger
}

// NewPollingController는 새로운 폴링 컨트롤러를 생성합니다
func NewPollingController(strategy Strategy, logger *logrus.Logger) *PollingController {
	return &PollingController{
		strategy: strategy,
		logger:   logger,
	}
}

// Start는 폴링을 시작합니다. 첫 작업은 즉시 실행되며 ctx가 취소될 때까지 반복합니다.
func (c *PollingController) Start(ctx context.Context, task func(context.Context) error) error {
	c.ticker = time.NewTicker(c.runOnce(ctx, task))
	defer c.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-c.ticker.C:
			c.ticker.Reset(c.runOnce(ctx, task))
		}
	}
}

// runOnce는 작업을 한 번 실행하고 다음 간격을 반환합니다
func (c *PollingController) runOnce(ctx context.Context, task func(context.Context) error) time.Duration {
	startTime := time.Now()
	err := task(ctx)
	metrics.RecordPollingCycle(time.Since(startTime).Seconds())

	if err != nil {
		c.logger.WithError(err).Error("폴링 작업 실패")
	}
	next := c.strategy.NextInterval(err == nil)
	if next <= 0 {
		c.logger.WithField("interval", next).Warn("잘못된 폴링 간격, 최소 간격 사용")
		return minPollInterval
	}
	return next
}
