package container

import (
	"database/sql"

	"netstate-agent/internal/application/usecases"
	"netstate-agent/internal/domain/interfaces"
	"netstate-agent/internal/domain/services"
	"netstate-agent/internal/infrastructure/adapters"
	"netstate-agent/internal/infrastructure/config"
	"netstate-agent/internal/infrastructure/health"
	"netstate-agent/internal/infrastructure/network"
	"netstate-agent/internal/infrastructure/persistence"
	infraServices "netstate-agent/internal/infrastructure/services"
	"netstate-agent/pkg/utils"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// Container는 의존성 주입을 관리하는 컨테이너입니다
type Container struct {
	config *config.Config
	logger *logrus.Logger

	// 인프라스트럭처 어댑터들
	fileSystem      interfaces.FileSystem
	commandExecutor interfaces.CommandExecutor
	clock           interfaces.Clock

	// 서비스들
	healthService    *health.HealthService
	networkFactory   *network.NetworkFactory
	snapshotArchiver *infraServices.SnapshotArchiver

	// 레포지토리
	repository interfaces.StateRequestRepository

	// 유스케이스
	applyNetworkStateUseCase *usecases.ApplyNetworkStateUseCase
	showNetworkStateUseCase  *usecases.ShowNetworkStateUseCase
	syncDesiredStatesUseCase *usecases.SyncDesiredStatesUseCase

	// 데이터베이스
	db *sql.DB
}

// NewContainer는 새로운 Container를 생성합니다
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	if err := container.initializeInfrastructure(); err != nil {
		return nil, err
	}

	container.initializeServices()
	container.initializeUseCases()

	return container, nil
}

// initializeInfrastructure는 인프라스트럭처 컴포넌트들을 초기화합니다
func (c *Container) initializeInfrastructure() error {
	// 기본 어댑터들 초기화
	c.fileSystem = adapters.NewRealFileSystem()
	c.commandExecutor = adapters.NewRealCommandExecutor(c.logger)
	c.clock = adapters.NewRealClock()

	// 데이터베이스 연결
	db, err := sql.Open("mysql", c.buildDSN())
	if err != nil {
		return err
	}

	// 연결 풀 설정
	db.SetMaxOpenConns(c.config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.config.Database.MaxLifetime)

	// 연결 테스트
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	c.db = db

	// 레포지토리 초기화
	c.repository = persistence.NewMySQLStateRepository(c.db, c.logger)

	return nil
}

// initializeServices는 서비스들을 초기화합니다
func (c *Container) initializeServices() {
	// 헬스 서비스
	c.healthService = health.NewHealthService(c.clock, c.config.Agent.NodeName, c.config.Apply.OvsEnabled, c.logger)

	// 관측기와 적용기 팩토리
	c.networkFactory = network.NewNetworkFactory(
		c.commandExecutor,
		c.fileSystem,
		&network.RealNetlinker{},
		c.config.Apply.OvsEnabled,
		c.config.Apply.CommandTimeout,
		c.logger,
	)

	// 적용 전 스냅샷 보관
	c.snapshotArchiver = infraServices.NewSnapshotArchiver(
		c.fileSystem,
		c.clock,
		c.logger,
		c.config.Apply.SnapshotDirectory,
		c.config.Apply.SnapshotKeep,
	)
}

// initializeUseCases는 유스케이스들을 초기화합니다
func (c *Container) initializeUseCases() {
	observer := c.networkFactory.CreateStateObserver()
	applier := c.networkFactory.CreateStateApplier()

	options := usecases.ApplyOptions{
		VerifyEnabled:   c.config.Apply.VerifyEnabled,
		VerifyRetry:     utils.FixedRetryConfig(c.config.Apply.VerifyRetryCount, c.config.Apply.VerifyRetryInterval),
		RollbackEnabled: c.config.Apply.RollbackEnabled,
	}

	// desired state 적용 유스케이스
	c.applyNetworkStateUseCase = usecases.NewApplyNetworkStateUseCase(
		observer,
		applier,
		c.snapshotArchiver,
		services.NewReferenceRewriter(),
		services.NewDependencyGrapher(),
		services.NewStateReconciler(),
		options,
		c.logger,
	)

	// 현재 상태 조회 유스케이스
	c.showNetworkStateUseCase = usecases.NewShowNetworkStateUseCase(observer, c.logger)

	// 대기 요청 동기화 유스케이스
	c.syncDesiredStatesUseCase = usecases.NewSyncDesiredStatesUseCase(
		c.repository,
		c.applyNetworkStateUseCase,
		c.logger,
	)
}

// buildDSN은 데이터베이스 연결 문자열을 생성합니다
func (c *Container) buildDSN() string {
	db := c.config.Database

	dsn := mysql.NewConfig()
	dsn.User = db.User
	dsn.Passwd = db.Password
	dsn.Net = "tcp"
	dsn.Addr = db.Host + ":" + db.Port
	dsn.DBName = db.Database
	dsn.ParseTime = true
	return dsn.FormatDSN()
}

// GetConfig는 설정을 반환합니다
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetHealthService는 헬스 서비스를 반환합니다
func (c *Container) GetHealthService() *health.HealthService {
	return c.healthService
}

// GetApplyNetworkStateUseCase는 desired state 적용 유스케이스를 반환합니다
func (c *Container) GetApplyNetworkStateUseCase() *usecases.ApplyNetworkStateUseCase {
	return c.applyNetworkStateUseCase
}

// GetShowNetworkStateUseCase는 현재 상태 조회 유스케이스를 반환합니다
func (c *Container) GetShowNetworkStateUseCase() *usecases.ShowNetworkStateUseCase {
	return c.showNetworkStateUseCase
}

// GetSyncDesiredStatesUseCase는 대기 요청 동기화 유스케이스를 반환합니다
func (c *Container) GetSyncDesiredStatesUseCase() *usecases.SyncDesiredStatesUseCase {
	return c.syncDesiredStatesUseCase
}

// Close는 컨테이너를 정리합니다
func (c *Container) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
