package entities

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// RefKind는 참조 토큰이 어떤 방식으로 해석되었는지 나타냅니다
type RefKind int

const (
	RefByKernelName RefKind = iota
	RefByProfileName
	RefByMacAddress
)

func (k RefKind) String() string {
	switch k {
	case RefByProfileName:
		return "profile-name"
	case RefByMacAddress:
		return "mac-address"
	default:
		return "kernel-name"
	}
}

// InterfaceRef는 해석이 끝난 인터페이스 참조입니다.
// Name은 항상 커널 인터페이스 이름입니다.
type InterfaceRef struct {
	Kind  RefKind
	Token string
	Name  string
}

func (r InterfaceRef) String() string {
	if r.Token == r.Name {
		return r.Name
	}
	return fmt.Sprintf("%s(%s=%s)", r.Name, r.Kind, r.Token)
}

// MaxKernelNameLength는 커널 인터페이스 이름의 최대 길이입니다 (IFNAMSIZ - 1)
const MaxKernelNameLength = 15

var (
	ErrInvalidMacAddress    = errors.New("유효하지 않은 MAC 주소 형식")
	ErrInvalidInterfaceName = errors.New("유효하지 않은 인터페이스 이름")
)

var macRegex = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)

// NormalizeMacAddress는 MAC 주소를 대문자 콜론 구분 형식으로 정규화합니다
func NormalizeMacAddress(mac string) (string, error) {
	if !macRegex.MatchString(mac) {
		return "", ErrInvalidMacAddress
	}
	return strings.ToUpper(strings.ReplaceAll(mac, "-", ":")), nil
}

// ValidateKernelName은 커널이 허용하는 인터페이스 이름인지 검증합니다
func ValidateKernelName(name string) error {
	if name == "" || len(name) > MaxKernelNameLength {
		return ErrInvalidInterfaceName
	}
	if name == "." || name == ".." {
		return ErrInvalidInterfaceName
	}
	if strings.ContainsAny(name, "/: \t\n") {
		return ErrInvalidInterfaceName
	}
	return nil
}
