package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netstate-agent/internal/application/polling"
	"netstate-agent/internal/application/usecases"
	"netstate-agent/internal/infrastructure/config"
	"netstate-agent/internal/infrastructure/container"
	"netstate-agent/internal/infrastructure/health"
	"netstate-agent/internal/infrastructure/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	_ "go.uber.org/automaxprocs"
)

// version은 빌드 시 -ldflags로 덮어씁니다
var version = "dev"

func main() {
	// 로거 초기화
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// LOG_LEVEL 환경 변수 설정
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr != "" {
		logLevel, err := logrus.ParseLevel(logLevelStr)
		if err != nil {
			logger.WithError(err).Warnf("Unknown LOG_LEVEL value: %s. Using default Info level.", logLevelStr)
			logger.SetLevel(logrus.InfoLevel)
		} else {
			logger.SetLevel(logLevel)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	// 설정 로드
	configLoader := config.NewEnvironmentConfigLoader()
	cfg, err := configLoader.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// 의존성 주입 컨테이너 생성
	appContainer, err := container.NewContainer(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create dependency injection container")
	}
	defer func() {
		if err := appContainer.Close(); err != nil {
			logger.WithError(err).Error("Failed to cleanup container")
		}
	}()

	// 애플리케이션 시작
	app := NewApplication(appContainer, logger)
	if err := app.Run(); err != nil {
		logger.WithError(err).Error("Failed to run application")
	}
}

// Application은 메인 애플리케이션 구조체입니다
type Application struct {
	container     *container.Container
	logger        *logrus.Logger
	syncUseCase   *usecases.SyncDesiredStatesUseCase
	healthService *health.HealthService
	healthServer  *http.Server
}

// NewApplication은 새로운 Application을 생성합니다
func NewApplication(container *container.Container, logger *logrus.Logger) *Application {
	return &Application{
		container:     container,
		logger:        logger,
		syncUseCase:   container.GetSyncDesiredStatesUseCase(),
		healthService: container.GetHealthService(),
	}
}

// Run은 애플리케이션을 실행합니다
func (a *Application) Run() error {
	cfg := a.container.GetConfig()

	// 에이전트 정보 메트릭 설정
	metrics.SetAgentInfo(version, cfg.Agent.NodeName)

	// 헬스체크 서버 시작
	a.startHealthServer(cfg.Health.Port)
	defer a.shutdown()

	// 컨텍스트 및 시그널 핸들링 설정
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 폴링 전략 설정
	var strategy polling.Strategy
	if cfg.Agent.Backoff.Enabled {
		strategy = polling.NewExponentialBackoffStrategy(
			cfg.Agent.PollInterval,        // 기본 간격
			cfg.Agent.Backoff.MaxInterval, // 최대 간격
			cfg.Agent.Backoff.Multiplier,  // 지수 계수
			a.logger,
		)
		a.logger.WithFields(logrus.Fields{
			"base_interval": cfg.Agent.PollInterval,
			"max_interval":  cfg.Agent.Backoff.MaxInterval,
			"multiplier":    cfg.Agent.Backoff.Multiplier,
		}).Info("Exponential backoff polling enabled")
	} else {
		strategy = polling.NewFixedIntervalStrategy(cfg.Agent.PollInterval)
		a.logger.WithField("interval", cfg.Agent.PollInterval).Info("Fixed interval polling enabled")
	}

	pollingController := polling.NewPollingController(strategy, a.logger)

	a.logger.WithFields(logrus.Fields{
		"node_name": cfg.Agent.NodeName,
		"version":   version,
	}).Info("Netstate agent started")

	err := pollingController.Start(ctx, func(ctx context.Context) error {
		return a.syncDesiredStates(ctx, cfg.Agent.NodeName)
	})
	if errors.Is(err, context.Canceled) {
		a.logger.Info("Received shutdown signal")
		return nil
	}
	return err
}

// startHealthServer는 헬스체크 서버를 시작합니다
func (a *Application) startHealthServer(port string) {
	// HTTP 핸들러 설정
	mux := http.NewServeMux()
	mux.Handle("/", a.healthService)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/state", health.NewStateHandler(a.container.GetShowNetworkStateUseCase(), a.logger))

	a.healthServer = &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.logger.WithField("port", port).Info("Health check server started (with /metrics, /state)")
		if err := a.healthServer.ListenAndServe(); err != http.ErrServerClosed {
			a.logger.WithError(err).Error("Health check server failed")
		}
	}()
}

// syncDesiredStates는 대기 중인 desired state 요청을 한 번 처리합니다.
// 요청 조회 실패만 에러로 반환하며 개별 요청의 실패는 요청 상태로 기록됩니다.
func (a *Application) syncDesiredStates(ctx context.Context, nodeName string) error {
	output, err := a.syncUseCase.Execute(ctx, usecases.SyncDesiredStatesInput{NodeName: nodeName})
	if err != nil {
		a.healthService.UpdateDBHealth(false, err)
		metrics.SetDBConnectionStatus(false)
		return err
	}
	a.healthService.UpdateDBHealth(true, nil)
	metrics.SetDBConnectionStatus(true)

	a.healthService.RecordSync(output.AppliedCount, output.FailedCount)

	// 실제로 처리된 것이 있을 때만 로그 출력
	if output.TotalCount > 0 {
		a.logger.WithFields(logrus.Fields{
			"applied": output.AppliedCount,
			"failed":  output.FailedCount,
			"total":   output.TotalCount,
		}).Info("Desired state processing completed")
	}

	return nil
}

// shutdown은 애플리케이션을 정리하고 종료합니다
func (a *Application) shutdown() {
	if a.healthServer == nil {
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := a.healthServer.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("Failed to shutdown health check server")
	}
}
