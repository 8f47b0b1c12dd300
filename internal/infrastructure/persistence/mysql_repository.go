package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"netstate-agent/internal/domain/entities"
	"netstate-agent/internal/domain/errors"
	"netstate-agent/internal/domain/interfaces"
	"netstate-agent/internal/infrastructure/metrics"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// pendingBatchSize는 한 번의 폴링에서 가져오는 최대 요청 수입니다
const pendingBatchSize = 10

// MySQLStateRepository는 MySQL 기반의 StateRequestRepository 구현체입니다
type MySQLStateRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewMySQLStateRepository는 새로운 MySQLStateRepository를 생성합니다
func NewMySQLStateRepository(db *sql.DB, logger *logrus.Logger) interfaces.StateRequestRepository {
	return &MySQLStateRepository{
		db:     db,
		logger: logger,
	}
}

// GetPendingRequests는 특정 노드의 적용 대기 중인 요청을 id 순으로 조회합니다
func (r *MySQLStateRepository) GetPendingRequests(ctx context.Context, nodeName string) ([]entities.StateRequest, error) {
	query := `
		SELECT id, node_name, desired_state, status, message
		FROM network_state_request
		WHERE status = 'pending'
		AND node_name = ?
		AND deleted_at IS NULL
		ORDER BY id
		LIMIT ?
	`

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, nodeName, pendingBatchSize)
	metrics.RecordDBQuery("get_pending", time.Since(start).Seconds())
	if err != nil {
		return nil, errors.NewSystemError("데이터베이스 조회 실패", err)
	}
	defer rows.Close()

	var requests []entities.StateRequest

	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			r.logger.WithError(err).Error("행 스캔 실패")
			continue
		}
		requests = append(requests, req)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.NewSystemError("결과 처리 중 오류", err)
	}

	return requests, nil
}

// GetRequestByID는 ID로 요청을 조회합니다
func (r *MySQLStateRepository) GetRequestByID(ctx context.Context, id int) (*entities.StateRequest, error) {
	query := `
		SELECT id, node_name, desired_state, status, message
		FROM network_state_request
		WHERE id = ? AND deleted_at IS NULL
	`

	start := time.Now()
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	metrics.RecordDBQuery("get_by_id", time.Since(start).Seconds())

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("요청을 찾을 수 없음: ID=%d", id))
	}
	if err != nil {
		return nil, errors.NewSystemError("데이터베이스 조회 실패", err)
	}

	return &req, nil
}

// UpdateRequestStatus는 요청의 처리 상태와 메시지를 업데이트합니다
func (r *MySQLStateRepository) UpdateRequestStatus(ctx context.Context, id int, status entities.RequestStatus, message string) error {
	query := `
		UPDATE network_state_request
		SET status = ?, message = ?, modified_at = NOW()
		WHERE id = ?
	`

	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, status.String(), message, id)
	metrics.RecordDBQuery("update_status", time.Since(start).Seconds())
	if err != nil {
		return errors.NewSystemError("상태 업데이트 실패", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewSystemError("영향받은 행 확인 실패", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("요청을 찾을 수 없음: ID=%d", id))
	}

	r.logger.WithFields(logrus.Fields{
		"request_id": id,
		"status":     status.String(),
	}).Info("요청 상태 업데이트 완료")

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (entities.StateRequest, error) {
	var req entities.StateRequest
	var status string
	var message sql.NullString

	if err := row.Scan(&req.ID, &req.NodeName, &req.Document, &status, &message); err != nil {
		return entities.StateRequest{}, err
	}

	req.Status = parseStatus(status)
	if message.Valid {
		req.Message = message.String
	}
	return req, nil
}

func parseStatus(s string) entities.RequestStatus {
	switch s {
	case entities.RequestApplied.String():
		return entities.RequestApplied
	case entities.RequestFailed.String():
		return entities.RequestFailed
	default:
		return entities.RequestPending
	}
}
