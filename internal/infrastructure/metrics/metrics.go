package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 적용 관련 메트릭
	ApplyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netstate_apply_total",
			Help: "Total number of desired state apply passes",
		},
		[]string{"result"}, // success, failed, noop, rejected
	)

	ApplyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netstate_apply_duration_seconds",
			Help:    "Time spent in each apply pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	PlanOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netstate_plan_operations_total",
			Help: "Total number of planned operations by kind",
		},
		[]string{"kind"}, // detach, remove, create, update, attach
	)

	ResolutionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netstate_resolution_errors_total",
			Help: "Total number of desired states rejected before any change",
		},
		[]string{"error_type"}, // VALIDATION, NOT_FOUND, AMBIGUOUS_REFERENCE, CONFLICT, CYCLE
	)

	Rollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netstate_rollbacks_total",
			Help: "Total number of rollbacks after a failed apply",
		},
		[]string{"result"}, // success, failed
	)

	// 폴링 관련 메트릭
	PollingCycleCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "netstate_polling_cycles_total",
			Help: "Total number of polling cycles executed",
		},
	)

	PollingCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netstate_polling_cycle_duration_seconds",
			Help:    "Time spent in each polling cycle",
			Buckets: prometheus.DefBuckets,
		},
	)

	PollingBackoffLevel = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netstate_polling_backoff_level",
			Help: "Current backoff level (0 = no backoff)",
		},
	)

	// 데이터베이스 연결 관련 메트릭
	DBConnectionStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netstate_db_connection_status",
			Help: "Database connection status (1 = connected, 0 = disconnected)",
		},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netstate_db_query_duration_seconds",
			Help:    "Time spent executing database queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type"}, // get_pending, get_by_id, update_status
	)

	// 시스템 정보
	AgentInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netstate_agent_info",
			Help: "Agent information",
		},
		[]string{"version", "node_name"},
	)
)

// RecordApply는 적용 결과와 소요 시간을 기록합니다
func RecordApply(result string, duration float64) {
	ApplyTotal.WithLabelValues(result).Inc()
	ApplyDuration.Observe(duration)
}

// RecordPlanOperations는 계획된 작업 수를 종류별로 기록합니다
func RecordPlanOperations(counts map[string]int) {
	for kind, n := range counts {
		PlanOperations.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordResolutionError는 적용 전에 거부된 desired state를 기록합니다
func RecordResolutionError(errorType string) {
	ResolutionErrors.WithLabelValues(errorType).Inc()
}

// RecordRollback은 롤백 결과를 기록합니다
func RecordRollback(success bool) {
	if success {
		Rollbacks.WithLabelValues("success").Inc()
	} else {
		Rollbacks.WithLabelValues("failed").Inc()
	}
}

// RecordPollingCycle은 폴링 사이클 메트릭을 기록합니다
func RecordPollingCycle(duration float64) {
	PollingCycleCount.Inc()
	PollingCycleDuration.Observe(duration)
}

// RecordDBQuery는 데이터베이스 쿼리 시간을 기록합니다
func RecordDBQuery(queryType string, duration float64) {
	DBQueryDuration.WithLabelValues(queryType).Observe(duration)
}

// SetBackoffLevel은 현재 백오프 레벨을 설정합니다
func SetBackoffLevel(level float64) {
	PollingBackoffLevel.Set(level)
}

// SetDBConnectionStatus는 데이터베이스 연결 상태를 설정합니다
func SetDBConnectionStatus(connected bool) {
	if connected {
		DBConnectionStatus.Set(1)
	} else {
		DBConnectionStatus.Set(0)
	}
}

// SetAgentInfo는 에이전트 정보를 설정합니다
func SetAgentInfo(version, nodeName string) {
	AgentInfo.WithLabelValues(version, nodeName).Set(1)
}
