package document

import (
	"bytes"
	"errors"
	"io"

	"netstate-agent/internal/domain/entities"
	domainerrors "netstate-agent/internal/domain/errors"
	"netstate-agent/pkg/utils"

	"gopkg.in/yaml.v3"
)

// Decode는 YAML desired state 문서를 타입이 있는 모델로 변환합니다.
// 모르는 필드는 ValidationError로 거부합니다.
func Decode(data []byte) (*entities.DesiredState, error) {
	if err := utils.ValidateStateDocument(data); err != nil {
		return nil, domainerrors.NewValidationError("desired state 문서 검증 실패", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var state entities.DesiredState
	if err := decoder.Decode(&state); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domainerrors.NewValidationError("빈 desired state 문서", err)
		}
		return nil, domainerrors.NewValidationError("desired state 문서 파싱 실패", err)
	}
	return &state, nil
}

// EncodeDesired는 desired state를 YAML로 변환합니다
func EncodeDesired(state *entities.DesiredState) ([]byte, error) {
	return encode(state)
}

// EncodeCurrent는 현재 상태 스냅샷을 desired state와 같은 형식의 YAML로 변환합니다
func EncodeCurrent(state *entities.CurrentState) ([]byte, error) {
	return encode(&entities.DesiredState{Interfaces: state.Interfaces()})
}

func encode(state *entities.DesiredState) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(state); err != nil {
		return nil, domainerrors.NewSystemError("YAML 변환 실패", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, domainerrors.NewSystemError("YAML 변환 실패", err)
	}
	return buf.Bytes(), nil
}
