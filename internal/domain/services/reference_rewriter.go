package services

import (
	"errors"
	"fmt"
	"strings"

	"netstate-agent/internal/domain/entities"
	domainerrors "netstate-agent/internal/domain/errors"
)

// ReferenceRewriter는 desired state의 모든 인터페이스 참조를 커널 이름으로 바꿉니다.
// 결과 문서 이후의 단계는 커널 이름만 다룹니다.
type ReferenceRewriter struct{}

// NewReferenceRewriter는 새로운 ReferenceRewriter를 생성합니다
func NewReferenceRewriter() *ReferenceRewriter {
	return &ReferenceRewriter{}
}

// Canonicalize는 desired state를 검증하고 참조를 해석한 복사본을 반환합니다.
// 첫 번째 실패에서 중단하며 실패한 항목, 필드, 원래 토큰을 에러에 기록합니다.
func (w *ReferenceRewriter) Canonicalize(desired *entities.DesiredState, current *entities.CurrentState) (*entities.DesiredState, error) {
	out := desired.Clone()
	resolver := NewIdentifierResolver(current)

	// 1단계: 각 항목 자신의 커널 이름 결정
	owners := make(map[string]string, len(out.Interfaces))
	for idx := range out.Interfaces {
		iface := &out.Interfaces[idx]
		original := iface.Name

		if err := validateBase(iface); err != nil {
			return nil, err
		}
		if err := resolveOwnName(iface, resolver); err != nil {
			return nil, err
		}
		if prev, dup := owners[iface.Name]; dup {
			return nil, domainerrors.NewConflictError(
				fmt.Sprintf("entries %q and %q resolve to the same interface %q", prev, original, iface.Name)).
				WithInterface(original)
		}
		owners[iface.Name] = original

		if err := resolveType(iface, current); err != nil {
			return nil, err
		}
		if err := validatePayload(iface, current.Has(iface.Name)); err != nil {
			return nil, err
		}
		resolver.Declare(iface.Name, iface.ProfileName)
	}

	// 2단계: 참조 필드 재작성 (문서 순서)
	for idx := range out.Interfaces {
		iface := &out.Interfaces[idx]
		err := iface.VisitReferences(func(field, token string) (string, error) {
			ref, err := resolver.ResolveToken(token)
			if err != nil {
				return "", annotate(err, iface.Name, field, token)
			}
			return ref.Name, nil
		})
		if err != nil {
			return nil, err
		}
		if ports, specified := iface.ControllerPorts(); specified {
			iface.SetControllerPorts(ports)
		}
	}

	return out, nil
}

func validateBase(iface *entities.Interface) error {
	if iface.Name == "" {
		return domainerrors.NewValidationError("interface name is required", nil).WithField("name", "")
	}
	switch iface.State {
	case "", entities.InterfaceStateUp, entities.InterfaceStateDown, entities.InterfaceStateAbsent:
	default:
		return domainerrors.NewValidationError("unsupported state", nil).
			WithInterface(iface.Name).WithField("state", string(iface.State))
	}
	switch iface.Identifier {
	case "", entities.InterfaceIdentifierName, entities.InterfaceIdentifierMacAddress:
	default:
		return domainerrors.NewValidationError("unsupported identifier", nil).
			WithInterface(iface.Name).WithField("identifier", string(iface.Identifier))
	}
	if iface.MacAddress != "" {
		mac, err := entities.NormalizeMacAddress(iface.MacAddress)
		if err != nil {
			return domainerrors.NewValidationError("invalid mac-address", err).
				WithInterface(iface.Name).WithField("mac-address", iface.MacAddress)
		}
		iface.MacAddress = mac
	}
	if iface.MTU != nil && *iface.MTU <= 0 {
		return domainerrors.NewValidationError("mtu must be positive", nil).
			WithInterface(iface.Name).WithField("mtu", fmt.Sprint(*iface.MTU))
	}
	if iface.Vlan != nil && iface.Vlan.Protocol != "" {
		protocol := strings.ToLower(iface.Vlan.Protocol)
		if protocol != "802.1q" && protocol != "802.1ad" {
			return domainerrors.NewValidationError("unsupported vlan protocol", nil).
				WithInterface(iface.Name).WithField("vlan.protocol", iface.Vlan.Protocol)
		}
		iface.Vlan.Protocol = protocol
	}
	if iface.Type != "" && iface.Type != entities.InterfaceTypeUnknown && !iface.Type.IsKnown() {
		return domainerrors.NewValidationError("unsupported interface type", nil).
			WithInterface(iface.Name).WithField("type", string(iface.Type))
	}
	return nil
}

// resolveOwnName은 mac-address 식별자를 사용하는 항목을 실제 커널 이름으로 바꿉니다.
// 원래 이름은 profile-name이 비어 있을 때 profile-name으로 남깁니다.
func resolveOwnName(iface *entities.Interface, resolver *IdentifierResolver) error {
	if !iface.UsesMacIdentifier() {
		iface.Identifier = ""
		return nil
	}
	if iface.MacAddress == "" {
		return domainerrors.NewValidationError("mac-address is required when identifier is mac-address", nil).
			WithInterface(iface.Name).WithField("mac-address", "")
	}
	name, err := resolver.Resolve(entities.RefByMacAddress, iface.MacAddress)
	if err != nil {
		return annotate(err, iface.Name, "mac-address", iface.MacAddress)
	}
	if iface.ProfileName == "" {
		iface.ProfileName = iface.Name
	}
	iface.Name = name
	iface.Identifier = ""
	iface.MacAddress = ""
	return nil
}

// resolveType은 생략된 타입을 현재 상태에서 가져옵니다
func resolveType(iface *entities.Interface, current *entities.CurrentState) error {
	if iface.Type != "" && iface.Type != entities.InterfaceTypeUnknown {
		return nil
	}
	if live, ok := current.Get(iface.Name); ok {
		iface.Type = live.Type
		return nil
	}
	if iface.IsAbsent() {
		iface.Type = entities.InterfaceTypeUnknown
		return nil
	}
	return domainerrors.NewValidationError("type is required for an interface that does not exist", nil).
		WithInterface(iface.Name).WithField("type", string(iface.Type))
}

func validatePayload(iface *entities.Interface, live bool) error {
	for _, t := range iface.PayloadTypes() {
		if t != iface.Type {
			return domainerrors.NewValidationError(
				fmt.Sprintf("%s configuration is not valid for type %s", t, iface.Type), nil).
				WithInterface(iface.Name).WithField(string(t), "")
		}
	}
	if iface.IsAbsent() {
		return nil
	}
	if !live {
		if err := entities.ValidateKernelName(iface.Name); err != nil {
			return domainerrors.NewValidationError("invalid kernel interface name", err).
				WithInterface(iface.Name).WithField("name", iface.Name)
		}
		if field := missingCreateField(iface); field != "" {
			return domainerrors.NewValidationError("required to create the interface", nil).
				WithInterface(iface.Name).WithField(field, "")
		}
	}
	return nil
}

// missingCreateField는 새 인터페이스 생성에 필요한데 빠진 필드 이름을 반환합니다
func missingCreateField(iface *entities.Interface) string {
	switch iface.Type {
	case entities.InterfaceTypeVlan:
		if iface.Vlan == nil || iface.Vlan.BaseIface == "" {
			return "vlan.base-iface"
		}
		if iface.Vlan.ID == nil {
			return "vlan.id"
		}
	case entities.InterfaceTypeVxlan:
		if iface.Vxlan == nil || iface.Vxlan.ID == nil {
			return "vxlan.id"
		}
	case entities.InterfaceTypeMacVlan:
		if iface.MacVlan == nil || iface.MacVlan.BaseIface == "" {
			return "mac-vlan.base-iface"
		}
		if iface.MacVlan.Mode == "" {
			return "mac-vlan.mode"
		}
	case entities.InterfaceTypeMacVtap:
		if iface.MacVtap == nil || iface.MacVtap.BaseIface == "" {
			return "mac-vtap.base-iface"
		}
		if iface.MacVtap.Mode == "" {
			return "mac-vtap.mode"
		}
	case entities.InterfaceTypeMacSec:
		if iface.MacSec == nil || iface.MacSec.BaseIface == "" {
			return "macsec.base-iface"
		}
	case entities.InterfaceTypeVrf:
		if iface.Vrf == nil || iface.Vrf.RouteTableID == nil {
			return "vrf.route-table-id"
		}
	case entities.InterfaceTypeVeth:
		if iface.Veth == nil || iface.Veth.Peer == "" {
			return "veth.peer"
		}
	}
	return ""
}

// annotate는 해석 에러에 실패한 항목, 필드, 토큰을 기록합니다
func annotate(err error, iface, field, token string) error {
	var domainErr *domainerrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.WithInterface(iface).WithField(field, token)
	}
	return domainerrors.NewValidationError("reference resolution failed", err).
		WithInterface(iface).WithField(field, token)
}
