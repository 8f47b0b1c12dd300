package services

import (
	"fmt"
	"sort"

	"netstate-agent/internal/domain/entities"
	domainerrors "netstate-agent/internal/domain/errors"
)

// IdentifierResolver는 사용자가 작성한 인터페이스 참조를 커널 인터페이스 이름으로 해석합니다.
// 현재 상태 스냅샷과 desired state 항목 선언만을 사용하며 부작용이 없습니다.
type IdentifierResolver struct {
	current  *entities.CurrentState
	declared map[string]struct{}
	// 커널 이름 -> profile-name
	profiles map[string]string
}

// NewIdentifierResolver는 현재 상태 스냅샷으로 새로운 IdentifierResolver를 생성합니다
func NewIdentifierResolver(current *entities.CurrentState) *IdentifierResolver {
	r := &IdentifierResolver{
		current:  current,
		declared: make(map[string]struct{}),
		profiles: make(map[string]string),
	}
	for _, iface := range current.Interfaces() {
		if iface.ProfileName != "" {
			r.profiles[iface.Name] = iface.ProfileName
		}
	}
	return r
}

// Declare는 desired state 항목의 커널 이름과 profile-name 바인딩을 등록합니다.
// 항목이 선언한 profile-name은 같은 커널 이름에 대한 스냅샷의 바인딩을 대체합니다.
func (r *IdentifierResolver) Declare(kernelName, profileName string) {
	r.declared[kernelName] = struct{}{}
	if profileName != "" {
		r.profiles[kernelName] = profileName
	}
}

// IsKnown은 커널 이름이 현재 존재하거나 이번 배치에서 선언되었는지 확인합니다
func (r *IdentifierResolver) IsKnown(name string) bool {
	if r.current.Has(name) {
		return true
	}
	_, ok := r.declared[name]
	return ok
}

// ResolveKernelName은 커널 이름 참조를 해석합니다
func (r *IdentifierResolver) ResolveKernelName(name string) (entities.InterfaceRef, error) {
	if !r.IsKnown(name) {
		return entities.InterfaceRef{}, domainerrors.NewNotFoundError("no interface with this kernel name")
	}
	return entities.InterfaceRef{Kind: entities.RefByKernelName, Token: name, Name: name}, nil
}

// ResolveProfileName은 profile-name 참조를 해석합니다.
// 서로 다른 커널 인터페이스 둘 이상이 같은 profile-name을 가지면 모호한 참조입니다.
func (r *IdentifierResolver) ResolveProfileName(profile string) (entities.InterfaceRef, error) {
	var matches []string
	for kernel, bound := range r.profiles {
		if bound == profile {
			matches = append(matches, kernel)
		}
	}
	switch len(matches) {
	case 0:
		return entities.InterfaceRef{}, domainerrors.NewNotFoundError("no interface with this kernel name or profile name")
	case 1:
		return entities.InterfaceRef{Kind: entities.RefByProfileName, Token: profile, Name: matches[0]}, nil
	}
	sort.Strings(matches)
	return entities.InterfaceRef{}, domainerrors.NewAmbiguousReferenceError(
		fmt.Sprintf("profile name is held by multiple interfaces %v", matches))
}

// ResolveMacAddress는 MAC 주소 참조를 현재 존재하는 인터페이스 하나로 해석합니다.
// 영구 MAC 주소가 일치하는 인터페이스가 있으면 현재 MAC 주소 일치보다 우선합니다.
func (r *IdentifierResolver) ResolveMacAddress(mac string) (entities.InterfaceRef, error) {
	normalized, err := entities.NormalizeMacAddress(mac)
	if err != nil {
		return entities.InterfaceRef{}, domainerrors.NewValidationError("invalid mac-address", err)
	}

	var permanent, assigned []string
	for _, iface := range r.current.Interfaces() {
		if perm, err := entities.NormalizeMacAddress(iface.PermanentMacAddress); err == nil && perm == normalized {
			permanent = append(permanent, iface.Name)
		}
		if cur, err := entities.NormalizeMacAddress(iface.MacAddress); err == nil && cur == normalized {
			assigned = append(assigned, iface.Name)
		}
	}

	matches := permanent
	if len(matches) == 0 {
		matches = assigned
	}
	switch len(matches) {
	case 0:
		return entities.InterfaceRef{}, domainerrors.NewNotFoundError("no live interface with this mac-address")
	case 1:
		return entities.InterfaceRef{Kind: entities.RefByMacAddress, Token: mac, Name: matches[0]}, nil
	}
	return entities.InterfaceRef{}, domainerrors.NewAmbiguousReferenceError(
		fmt.Sprintf("mac-address is held by multiple interfaces %v", matches))
}

// ResolveToken은 참조 필드의 토큰을 해석합니다.
// 커널 이름 일치가 profile-name 일치보다 우선합니다.
func (r *IdentifierResolver) ResolveToken(token string) (entities.InterfaceRef, error) {
	if ref, err := r.ResolveKernelName(token); err == nil {
		return ref, nil
	}
	return r.ResolveProfileName(token)
}

// Resolve는 참조 종류에 맞는 해석 규칙으로 토큰을 커널 이름 하나로 해석합니다
func (r *IdentifierResolver) Resolve(kind entities.RefKind, token string) (string, error) {
	var (
		ref entities.InterfaceRef
		err error
	)
	switch kind {
	case entities.RefByMacAddress:
		ref, err = r.ResolveMacAddress(token)
	case entities.RefByProfileName:
		ref, err = r.ResolveProfileName(token)
	default:
		ref, err = r.ResolveKernelName(token)
	}
	if err != nil {
		return "", err
	}
	return ref.Name, nil
}
