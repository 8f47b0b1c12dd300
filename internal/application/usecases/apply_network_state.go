package usecases

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"netstate-agent/internal/domain/entities"
	"netstate-agent/internal/domain/errors"
	"netstate-agent/internal/domain/interfaces"
	"netstate-agent/internal/domain/services"
	"netstate-agent/internal/infrastructure/metrics"
	"netstate-agent/pkg/utils"

	"github.com/sirupsen/logrus"
)

// ApplyOptions는 적용 후 검증과 롤백 동작을 설정합니다
type ApplyOptions struct {
	VerifyEnabled   bool
	VerifyRetry     utils.RetryConfig
	RollbackEnabled bool
}

// ApplyNetworkStateUseCase는 desired state 문서 하나를 시스템에 적용하는 유스케이스입니다
type ApplyNetworkStateUseCase struct {
	observer   interfaces.StateObserver
	applier    interfaces.StateApplier
	archiver   interfaces.SnapshotArchiver
	rewriter   *services.ReferenceRewriter
	grapher    *services.DependencyGrapher
	reconciler *services.StateReconciler
	options    ApplyOptions
	logger     *logrus.Logger

	// 같은 네임스페이스에 대한 적용이 섞이지 않도록 직렬화합니다
	mu sync.Mutex
}

// NewApplyNetworkStateUseCase는 새로운 ApplyNetworkStateUseCase를 생성합니다
func NewApplyNetworkStateUseCase(
	observer interfaces.StateObserver,
	applier interfaces.StateApplier,
	archiver interfaces.SnapshotArchiver,
	rewriter *services.ReferenceRewriter,
	grapher *services.DependencyGrapher,
	reconciler *services.StateReconciler,
	options ApplyOptions,
	logger *logrus.Logger,
) *ApplyNetworkStateUseCase {
	return &ApplyNetworkStateUseCase{
		observer:   observer,
		applier:    applier,
		archiver:   archiver,
		rewriter:   rewriter,
		grapher:    grapher,
		reconciler: reconciler,
		options:    options,
		logger:     logger,
	}
}

// ApplyNetworkStateInput은 유스케이스의 입력 파라미터입니다
type ApplyNetworkStateInput struct {
	Desired *entities.DesiredState
	// DryRun이면 계획만 만들고 시스템을 변경하지 않습니다
	DryRun bool
}

// ApplyNetworkStateOutput은 유스케이스의 출력 결과입니다
type ApplyNetworkStateOutput struct {
	Plan         *entities.ApplyPlan
	AppliedCount int
	SnapshotPath string
	RolledBack   bool
}

// 적용 결과 메트릭 레이블
const (
	resultSuccess   = "success"
	resultUnchanged = "unchanged"
	resultRejected  = "rejected"
	resultFailed    = "failed"
	resultDryRun    = "dry_run"
)

// Execute는 스냅샷, 정규화, 그래프, 계획, 재검증, 적용, 검증 순서로 한 번의 적용을 수행합니다.
// 계획 단계의 에러는 어떤 변경도 하기 전에 반환됩니다.
func (uc *ApplyNetworkStateUseCase) Execute(ctx context.Context, input ApplyNetworkStateInput) (*ApplyNetworkStateOutput, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	start := time.Now()
	output, result, err := uc.execute(ctx, input)
	metrics.RecordApply(result, time.Since(start).Seconds())
	return output, err
}

func (uc *ApplyNetworkStateUseCase) execute(ctx context.Context, input ApplyNetworkStateInput) (*ApplyNetworkStateOutput, string, error) {
	if input.Desired == nil {
		return nil, resultRejected, errors.NewValidationError("desired state가 비어 있습니다", nil)
	}

	before, err := uc.snapshot(ctx)
	if err != nil {
		return nil, resultFailed, err
	}

	canonical, order, plan, err := uc.plan(input.Desired, before)
	if err != nil {
		if t, ok := errors.TypeOf(err); ok {
			metrics.RecordResolutionError(string(t))
		}
		uc.logger.WithError(err).Warn("desired state 검증 실패, 적용하지 않음")
		return nil, resultRejected, err
	}

	output := &ApplyNetworkStateOutput{Plan: plan}
	if plan.IsEmpty() {
		uc.logger.Debug("desired state와 현재 상태가 일치하여 적용할 작업 없음")
		return output, resultUnchanged, nil
	}

	uc.logger.WithFields(logrus.Fields{
		"operations": plan.Len(),
		"plan":       strings.Join(plan.Strings(), "; "),
		"dry_run":    input.DryRun,
	}).Info("적용 계획 생성")

	if input.DryRun {
		return output, resultDryRun, nil
	}

	if uc.archiver != nil {
		path, err := uc.archiver.Archive(ctx, before)
		if err != nil {
			return output, resultFailed, errors.NewSystemError("적용 전 스냅샷 보관 실패", err)
		}
		output.SnapshotPath = path
	}

	if err := uc.revalidate(ctx, before, plan); err != nil {
		uc.logger.WithError(err).Warn("계획 이후 현재 상태가 변경되어 적용 중단")
		return output, resultRejected, err
	}

	counts := make(map[string]int)
	for kind, n := range plan.CountByKind() {
		counts[string(kind)] = n
	}
	metrics.RecordPlanOperations(counts)

	applied, applyErr := uc.applyAll(ctx, plan)
	output.AppliedCount = applied
	if applyErr == nil && uc.options.VerifyEnabled {
		applyErr = uc.verify(ctx, canonical, order)
	}

	if applyErr != nil {
		uc.logger.WithError(applyErr).WithField("applied", applied).Error("desired state 적용 실패")
		if uc.options.RollbackEnabled {
			output.RolledBack = uc.rollback(ctx, before, plan)
		}
		return output, resultFailed, applyErr
	}

	uc.logger.WithFields(logrus.Fields{
		"operations": applied,
		"interfaces": plan.TouchedInterfaces(),
	}).Info("desired state 적용 성공")
	return output, resultSuccess, nil
}

func (uc *ApplyNetworkStateUseCase) snapshot(ctx context.Context) (*entities.CurrentState, error) {
	current, err := uc.observer.Snapshot(ctx)
	if err != nil {
		if _, ok := errors.TypeOf(err); ok {
			return nil, err
		}
		return nil, errors.NewSystemError("현재 네트워크 상태 조회 실패", err)
	}
	return current, nil
}

// plan은 부작용 없이 정규화된 문서, 위상 순서, 적용 계획을 만듭니다
func (uc *ApplyNetworkStateUseCase) plan(desired *entities.DesiredState, current *entities.CurrentState) (*entities.DesiredState, []string, *entities.ApplyPlan, error) {
	canonical, err := uc.rewriter.Canonicalize(desired, current)
	if err != nil {
		return nil, nil, nil, err
	}
	graph, err := uc.grapher.BuildGraph(canonical)
	if err != nil {
		return nil, nil, nil, err
	}
	order, err := graph.TopologicalSort()
	if err != nil {
		return nil, nil, nil, err
	}
	plan, err := uc.reconciler.Reconcile(canonical, current, order)
	if err != nil {
		return nil, nil, nil, err
	}
	return canonical, order, plan, nil
}

// revalidate는 첫 변경 직전에 새 스냅샷을 읽어
// 계획이 가정한 인터페이스가 사라지거나 타입, MAC 주소가 바뀌었는지 확인합니다
func (uc *ApplyNetworkStateUseCase) revalidate(ctx context.Context, before *entities.CurrentState, plan *entities.ApplyPlan) error {
	fresh, err := uc.snapshot(ctx)
	if err != nil {
		return err
	}
	for _, name := range plan.TouchedInterfaces() {
		prev, existed := before.Get(name)
		now, exists := fresh.Get(name)
		switch {
		case existed && !exists:
			return errors.NewConflictError("interface vanished after planning").WithInterface(name)
		case !existed && exists:
			return errors.NewConflictError("interface appeared after planning").WithInterface(name)
		case !existed:
		case prev.Type != now.Type:
			return errors.NewConflictError("interface type changed after planning").
				WithInterface(name).WithField("type", string(now.Type))
		case !strings.EqualFold(prev.MacAddress, now.MacAddress):
			return errors.NewConflictError("interface mac-address changed after planning").
				WithInterface(name).WithField("mac-address", now.MacAddress)
		}
	}
	return nil
}

// applyAll은 계획의 작업을 순서대로 적용하고 성공한 작업 수를 반환합니다
func (uc *ApplyNetworkStateUseCase) applyAll(ctx context.Context, plan *entities.ApplyPlan) (int, error) {
	for idx, op := range plan.Operations {
		if err := ctx.Err(); err != nil {
			return idx, errors.NewTimeoutError(fmt.Sprintf("적용 중단: %v", err))
		}
		if err := uc.applier.Apply(ctx, op); err != nil {
			uc.logger.WithFields(logrus.Fields{
				"operation": op.String(),
				"index":     idx,
			}).WithError(err).Error("작업 적용 실패")
			if _, ok := errors.TypeOf(err); ok {
				return idx, err
			}
			return idx, errors.NewNetworkError(fmt.Sprintf("작업 적용 실패: %s", op), err)
		}
		uc.logger.WithField("operation", op.String()).Debug("작업 적용 완료")
	}
	return len(plan.Operations), nil
}

// verify는 새 스냅샷으로 다시 계획을 만들어 빈 계획이 될 때까지 재시도합니다
func (uc *ApplyNetworkStateUseCase) verify(ctx context.Context, canonical *entities.DesiredState, order []string) error {
	retry := uc.options.VerifyRetry
	retry.Retryable = errors.IsVerificationError

	err := utils.RetryWithBackoff(ctx, retry, func() error {
		fresh, err := uc.snapshot(ctx)
		if err != nil {
			return err
		}
		remaining, err := uc.reconciler.Reconcile(canonical, fresh, order)
		if err != nil {
			return err
		}
		if !remaining.IsEmpty() {
			return errors.NewVerificationError(
				fmt.Sprintf("적용 후 상태가 수렴하지 않음: %s", strings.Join(remaining.Strings(), "; ")), nil)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if _, ok := errors.TypeOf(err); ok {
		return err
	}
	return errors.NewVerificationError("적용 후 검증 실패", err)
}

// rollback은 작업 대상 인터페이스를 적용 전 스냅샷으로 되돌립니다.
// 최선을 다해 적용하며 개별 작업 실패는 기록만 합니다.
func (uc *ApplyNetworkStateUseCase) rollback(ctx context.Context, before *entities.CurrentState, plan *entities.ApplyPlan) bool {
	revert := revertState(before, plan)
	uc.logger.WithField("interfaces", revert.Names()).Warn("적용 전 상태로 롤백 시작")

	fresh, err := uc.snapshot(ctx)
	if err != nil {
		uc.logger.WithError(err).Error("롤백용 상태 조회 실패")
		metrics.RecordRollback(false)
		return false
	}
	_, _, revertPlan, err := uc.plan(revert, fresh)
	if err != nil {
		uc.logger.WithError(err).Error("롤백 계획 생성 실패")
		metrics.RecordRollback(false)
		return false
	}

	ok := true
	for _, op := range revertPlan.Operations {
		if err := uc.applier.Apply(ctx, op); err != nil {
			ok = false
			uc.logger.WithError(err).WithField("operation", op.String()).Error("롤백 작업 실패")
		}
	}
	metrics.RecordRollback(ok)
	if ok {
		uc.logger.WithField("operations", revertPlan.Len()).Info("롤백 완료")
	}
	return ok
}

// revertState는 계획이 건드린 인터페이스의 적용 전 정의로 desired state를 만듭니다.
// 적용 전에 없던 인터페이스는 absent로 표시합니다.
func revertState(before *entities.CurrentState, plan *entities.ApplyPlan) *entities.DesiredState {
	macChanged := make(map[string]bool)
	types := make(map[string]entities.InterfaceType)
	for _, op := range plan.Operations {
		if _, ok := op.Change(entities.FieldMacAddress); ok {
			macChanged[op.Name] = true
		}
		if _, ok := types[op.Name]; !ok {
			types[op.Name] = op.Type
		}
		if op.Controller != "" {
			if _, ok := types[op.Controller]; !ok {
				types[op.Controller] = op.ControllerType
			}
		}
	}

	revert := &entities.DesiredState{}
	for _, name := range plan.TouchedInterfaces() {
		live, existed := before.Get(name)
		if !existed {
			revert.Interfaces = append(revert.Interfaces, entities.Interface{
				BaseInterface: entities.BaseInterface{
					Name:  name,
					Type:  types[name],
					State: entities.InterfaceStateAbsent,
				},
			})
			continue
		}
		live.PermanentMacAddress = ""
		if !macChanged[name] {
			live.MacAddress = ""
		}
		revert.Interfaces = append(revert.Interfaces, live)
	}
	return revert
}
