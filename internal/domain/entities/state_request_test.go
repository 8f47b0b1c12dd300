package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		request   StateRequest
		errorType error
	}{
		{
			name:    "유효한 요청",
			request: StateRequest{ID: 1, NodeName: "node-1", Document: "interfaces: []"},
		},
		{
			name:      "빈 노드 이름",
			request:   StateRequest{ID: 1, Document: "interfaces: []"},
			errorType: ErrInvalidNodeName,
		},
		{
			name:      "빈 문서",
			request:   StateRequest{ID: 1, NodeName: "node-1"},
			errorType: ErrEmptyDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.errorType != nil {
				assert.ErrorIs(t, err, tt.errorType)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStateRequest_StatusTransitions(t *testing.T) {
	req := StateRequest{ID: 1, NodeName: "node-1", Document: "interfaces: []"}
	assert.True(t, req.IsPending())
	assert.Equal(t, "pending", req.Status.String())

	req.MarkAsFailed("boom")
	assert.Equal(t, RequestFailed, req.Status)
	assert.Equal(t, "boom", req.Message)
	assert.Equal(t, "failed", req.Status.String())

	req.MarkAsApplied()
	assert.Equal(t, RequestApplied, req.Status)
	assert.Empty(t, req.Message)
	assert.Equal(t, "applied", req.Status.String())
}
