package polling

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoffStrategy(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	t.Run("성공 시 기본 간격 반환", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(
			30*time.Second,
			300*time.Second,
			2.0,
			logger,
		)

		// 첫 번째 성공
		interval := strategy.NextInterval(true)
		assert.Equal(t, 30*time.Second, interval)

		// 계속 성공
		interval = strategy.NextInterval(true)
		assert.Equal(t, 30*time.Second, interval)
	})

	t.Run("실패 시 지수 백오프", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(
			30*time.Second,
			300*time.Second,
			2.0,
			logger,
		)

		// 첫 번째 실패: 30s
		interval := strategy.NextInterval(false)
		assert.Equal(t, 30*time.Second, interval)

		// 두 번째 실패: 60s
		interval = strategy.NextInterval(false)
		assert.Equal(t, 60*time.Second, interval)

		// 세 번째 실패: 120s
		interval = strategy.NextInterval(false)
		assert.Equal(t, 120*time.Second, interval)

		// 네 번째 실패: 240s
		interval = strategy.NextInterval(false)
		assert.Equal(t, 240*time.Second, interval)

		// 다섯 번째 실패: 300s (최대값)
		interval = strategy.NextInterval(false)
		assert.Equal(t, 300*time.Second, interval)

		// 여섯 번째 실패: 여전히 300s
		interval = strategy.NextInterval(false)
		assert.Equal(t, 300*time.Second, interval)
	})

	t.Run("실패 후 성공 시 리셋", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(
			30*time.Second,
			300*time.Second,
			2.0,
			logger,
		)

		// 실패 몇 번
		strategy.NextInterval(false)
		strategy.NextInterval(false)
		strategy.NextInterval(false)

		// 성공하면 리셋
		interval := strategy.NextInterval(true)
		assert.Equal(t, 30*time.Second, interval)

		// 다시 실패하면 처음부터
		interval = strategy.NextInterval(false)
		assert.Equal(t, 30*time.Second, interval)
	})

	t.Run("다른 지수 계수", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(
			10*time.Second,
			100*time.Second,
			1.5,
			logger,
		)

		// 첫 번째 실패: 10s
		interval := strategy.NextInterval(false)
		assert.Equal(t, 10*time.Second, interval)

		// 두 번째 실패: 15s
		interval = strategy.NextInterval(false)
		assert.Equal(t, 15*time.Second, interval)

		// 세 번째 실패: 22.5s
		interval = strategy.NextInterval(false)
		assert.Equal(t, time.Duration(22.5*float64(time.Second)), interval)
	})

	t.Run("장시간 연속 실패에도 최대 간격 유지", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(
			30*time.Second,
			5*time.Minute,
			2.0,
			logger,
		)

		for i := 1; i <= 100; i++ {
			interval := strategy.NextInterval(false)
			require.Positive(t, int64(interval), "failure #%d", i)
			require.LessOrEqual(t, interval, 5*time.Minute, "failure #%d", i)
		}
		assert.Equal(t, 5*time.Minute, strategy.NextInterval(false))
	})

	t.Run("Reset 메서드", func(t *testing.T) {
		strategy := NewExponentialBackoffStrategy(
			30*time.Second,
			300*time.Second,
			2.0,
			logger,
		)

		// 실패 몇 번
		strategy.NextInterval(false)
		strategy.NextInterval(false)

		// Reset
		strategy.Reset()

		// 다시 실패하면 처음부터
		interval := strategy.NextInterval(false)
		assert.Equal(t, 30*time.Second, interval)
	})
}

func TestFixedIntervalStrategy(t *testing.T) {
	strategy := NewFixedIntervalStrategy(30 * time.Second)

	assert.Equal(t, 30*time.Second, strategy.NextInterval(true))
	assert.Equal(t, 30*time.Second, strategy.NextInterval(false))

	strategy.Reset()
	assert.Equal(t, 30*time.Second, strategy.NextInterval(false))
}

// recordingStrategy는 전달받은 결과를 기록하는 테스트용 전략입니다
type recordingStrategy struct {
	results []bool
}

func (s *recordingStrategy) NextInterval(success bool) time.Duration {
	s.results = append(s.results, success)
	return time.Millisecond
}

func (s *recordingStrategy) Reset() {}

func TestPollingController_Start(t *testing.T) {
	t.Run("첫 작업은 즉시 실행하고 결과를 전략에 전달", func(t *testing.T) {
		strategy := &recordingStrategy{}
		controller := NewPollingController(strategy, logrus.New())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var calls int32
		err := controller.Start(ctx, func(ctx context.Context) error {
			n := atomic.AddInt32(&calls, 1)
			if n == 3 {
				cancel()
			}
			if n == 2 {
				return errors.New("db connection lost")
			}
			return nil
		})

		require.ErrorIs(t, err, context.Canceled)
		assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))
		require.GreaterOrEqual(t, len(strategy.results), 3)
		assert.Equal(t, []bool{true, false, true}, strategy.results[:3])
	})

	t.Run("0 이하의 간격은 최소 간격으로 대체", func(t *testing.T) {
		quiet := logrus.New()
		quiet.SetLevel(logrus.ErrorLevel)
		controller := NewPollingController(NewFixedIntervalStrategy(0), quiet)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var calls int32
		err := controller.Start(ctx, func(ctx context.Context) error {
			if atomic.AddInt32(&calls, 1) == 3 {
				cancel()
			}
			return nil
		})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("취소된 컨텍스트", func(t *testing.T) {
		controller := NewPollingController(NewFixedIntervalStrategy(time.Hour), logrus.New())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var calls int32
		err := controller.Start(ctx, func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}
