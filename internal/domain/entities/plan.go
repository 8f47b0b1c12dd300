package entities

import (
	"fmt"
	"sort"
	"strings"
)

// OperationKind는 적용 작업의 종류입니다
type OperationKind string

const (
	OperationDetach OperationKind = "detach"
	OperationRemove OperationKind = "remove"
	OperationCreate OperationKind = "create"
	OperationUpdate OperationKind = "update"
	OperationAttach OperationKind = "attach"
)

// 부분 업데이트가 가능한 필드 이름
const (
	FieldState       = "state"
	FieldMTU         = "mtu"
	FieldMacAddress  = "mac-address"
	FieldProfileName = "profile-name"
)

// FieldChange는 업데이트 작업에서 변경되는 필드 하나를 나타냅니다
type FieldChange struct {
	Field   string
	Current string
	Desired string
}

// Operation은 시스템에 적용할 작업 하나입니다
type Operation struct {
	Kind           OperationKind
	Name           string
	Type           InterfaceType
	Controller     string
	ControllerType InterfaceType
	Interface      *Interface
	Changes        []FieldChange
}

func (o Operation) String() string {
	switch o.Kind {
	case OperationAttach:
		return fmt.Sprintf("attach %s to %s", o.Name, o.Controller)
	case OperationDetach:
		return fmt.Sprintf("detach %s from %s", o.Name, o.Controller)
	case OperationUpdate:
		fields := make([]string, 0, len(o.Changes))
		for _, c := range o.Changes {
			fields = append(fields, c.Field)
		}
		return fmt.Sprintf("update %s (%s)", o.Name, strings.Join(fields, ", "))
	default:
		return fmt.Sprintf("%s %s %s", o.Kind, o.Type, o.Name)
	}
}

// Change는 지정한 필드의 변경 내용을 반환합니다
func (o Operation) Change(field string) (FieldChange, bool) {
	for _, c := range o.Changes {
		if c.Field == field {
			return c, true
		}
	}
	return FieldChange{}, false
}

// ApplyPlan은 순서가 정해진 작업 목록입니다
type ApplyPlan struct {
	Operations []Operation
}

// IsEmpty는 적용할 작업이 없는지 확인합니다
func (p *ApplyPlan) IsEmpty() bool {
	return p == nil || len(p.Operations) == 0
}

// Len은 작업 개수를 반환합니다
func (p *ApplyPlan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Operations)
}

// CountByKind는 종류별 작업 개수를 반환합니다
func (p *ApplyPlan) CountByKind() map[OperationKind]int {
	counts := make(map[OperationKind]int)
	if p == nil {
		return counts
	}
	for _, op := range p.Operations {
		counts[op.Kind]++
	}
	return counts
}

// TouchedInterfaces는 작업 대상 인터페이스 이름을 정렬하여 반환합니다.
// attach/detach 작업의 컨트롤러도 포함됩니다.
func (p *ApplyPlan) TouchedInterfaces() []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, op := range p.Operations {
		seen[op.Name] = struct{}{}
		if op.Controller != "" {
			seen[op.Controller] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Strings는 사람이 읽을 수 있는 작업 목록을 반환합니다
func (p *ApplyPlan) Strings() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.Operations))
	for _, op := range p.Operations {
		out = append(out, op.String())
	}
	return out
}
