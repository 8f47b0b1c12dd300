package network

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"netstate-agent/internal/domain/entities"
	"netstate-agent/internal/domain/errors"
	"netstate-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const ipCommand = "ip"

// IPRouteApplier는 적용 계획의 작업을 ip link 명령으로 반영합니다.
// OVS 브리지와 포트 작업은 OvsClient에 위임합니다.
type IPRouteApplier struct {
	commandExecutor interfaces.CommandExecutor
	ovs             *OvsClient
	timeout         time.Duration
	logger          *logrus.Logger
}

// NewIPRouteApplier는 새로운 IPRouteApplier를 생성합니다. ovs는 nil일 수 있습니다.
func NewIPRouteApplier(executor interfaces.CommandExecutor, ovs *OvsClient, timeout time.Duration, logger *logrus.Logger) *IPRouteApplier {
	return &IPRouteApplier{
		commandExecutor: executor,
		ovs:             ovs,
		timeout:         timeout,
		logger:          logger,
	}
}

// Apply는 작업 하나를 적용합니다
func (a *IPRouteApplier) Apply(ctx context.Context, op entities.Operation) error {
	a.logger.WithFields(logrus.Fields{
		"kind":      op.Kind,
		"interface": op.Name,
		"type":      op.Type,
	}).Info("작업 적용 시작")

	var err error
	switch op.Kind {
	case entities.OperationCreate:
		err = a.create(ctx, op)
	case entities.OperationRemove:
		err = a.remove(ctx, op)
	case entities.OperationUpdate:
		err = a.update(ctx, op)
	case entities.OperationAttach:
		err = a.attach(ctx, op)
	case entities.OperationDetach:
		err = a.detach(ctx, op)
	default:
		err = errors.NewValidationError(fmt.Sprintf("지원하지 않는 작업 종류: %s", op.Kind), nil)
	}
	if err != nil {
		var domainErr *errors.DomainError
		if stderrors.As(err, &domainErr) && domainErr.Interface == "" {
			domainErr.WithInterface(op.Name)
		}
		return err
	}
	return nil
}

func (a *IPRouteApplier) create(ctx context.Context, op entities.Operation) error {
	iface := op.Interface
	if iface == nil {
		return errors.NewValidationError("생성할 인터페이스 정의가 없음", nil)
	}

	if iface.Type == entities.InterfaceTypeOvsBridge {
		ovs, err := a.ovsClient()
		if err != nil {
			return err
		}
		if err := ovs.AddBridge(ctx, iface.Name); err != nil {
			return err
		}
	} else {
		args, err := createArgs(iface)
		if err != nil {
			return err
		}
		if iface.Type == entities.InterfaceTypeMacSec && iface.MacSec != nil && (iface.MacSec.MkaCak != "" || iface.MacSec.MkaCkn != "") {
			a.logger.WithField("interface", iface.Name).Warn("MKA 키는 ip link로 설정할 수 없어 무시합니다")
		}
		if err := a.ip(ctx, args...); err != nil {
			return err
		}
	}

	return a.setAttributes(ctx, iface)
}

// setAttributes는 생성 직후 공통 속성을 설정합니다. 상태는 마지막에 반영합니다.
func (a *IPRouteApplier) setAttributes(ctx context.Context, iface *entities.Interface) error {
	if iface.MTU != nil {
		if err := a.setLink(ctx, iface.Name, "mtu", strconv.Itoa(*iface.MTU)); err != nil {
			return err
		}
	}
	if iface.MacAddress != "" {
		if err := a.setLink(ctx, iface.Name, "address", iface.MacAddress); err != nil {
			return err
		}
	}
	if iface.ProfileName != "" {
		if err := a.setLink(ctx, iface.Name, "alias", iface.ProfileName); err != nil {
			return err
		}
	}
	return a.setLink(ctx, iface.Name, string(iface.EffectiveState()))
}

func (a *IPRouteApplier) remove(ctx context.Context, op entities.Operation) error {
	if op.Type == entities.InterfaceTypeOvsBridge {
		ovs, err := a.ovsClient()
		if err != nil {
			return err
		}
		return ovs.DeleteBridge(ctx, op.Name)
	}
	return a.ip(ctx, "link", "del", "dev", op.Name)
}

func (a *IPRouteApplier) update(ctx context.Context, op entities.Operation) error {
	// 상태 변경은 다른 속성을 바꾼 뒤에 적용합니다
	var state string
	for _, change := range op.Changes {
		var err error
		switch change.Field {
		case entities.FieldState:
			state = change.Desired
		case entities.FieldMTU:
			err = a.setLink(ctx, op.Name, "mtu", change.Desired)
		case entities.FieldMacAddress:
			err = a.setLink(ctx, op.Name, "address", change.Desired)
		case entities.FieldProfileName:
			err = a.setLink(ctx, op.Name, "alias", change.Desired)
		default:
			err = errors.NewValidationError(fmt.Sprintf("변경할 수 없는 필드: %s", change.Field), nil).
				WithField(change.Field, change.Desired)
		}
		if err != nil {
			return err
		}
	}
	if state != "" {
		return a.setLink(ctx, op.Name, state)
	}
	return nil
}

func (a *IPRouteApplier) attach(ctx context.Context, op entities.Operation) error {
	switch op.ControllerType {
	case entities.InterfaceTypeOvsBridge:
		ovs, err := a.ovsClient()
		if err != nil {
			return err
		}
		return ovs.AddPort(ctx, op.Controller, op.Name)
	case entities.InterfaceTypeBond:
		// bond 포트는 down 상태에서만 연결할 수 있습니다
		if err := a.setLink(ctx, op.Name, "down"); err != nil {
			return err
		}
		if err := a.setLink(ctx, op.Name, "master", op.Controller); err != nil {
			return err
		}
		return a.setLink(ctx, op.Name, "up")
	default:
		return a.setLink(ctx, op.Name, "master", op.Controller)
	}
}

func (a *IPRouteApplier) detach(ctx context.Context, op entities.Operation) error {
	if op.ControllerType == entities.InterfaceTypeOvsBridge {
		ovs, err := a.ovsClient()
		if err != nil {
			return err
		}
		return ovs.DeletePort(ctx, op.Controller, op.Name)
	}
	return a.setLink(ctx, op.Name, "nomaster")
}

func (a *IPRouteApplier) ovsClient() (*OvsClient, error) {
	if a.ovs == nil {
		return nil, errors.NewValidationError("OVS 지원이 비활성화되어 있음", nil).
			WithField("type", string(entities.InterfaceTypeOvsBridge))
	}
	return a.ovs, nil
}

func (a *IPRouteApplier) setLink(ctx context.Context, name string, args ...string) error {
	return a.ip(ctx, append([]string{"link", "set", "dev", name}, args...)...)
}

func (a *IPRouteApplier) ip(ctx context.Context, args ...string) error {
	if _, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.timeout, ipCommand, args...); err != nil {
		if errors.IsTimeoutError(err) {
			return err
		}
		return errors.NewNetworkError(fmt.Sprintf("ip %s 실패", strings.Join(args, " ")), err)
	}
	return nil
}

// createArgs는 타입별 ip link add 인자를 만듭니다
func createArgs(iface *entities.Interface) ([]string, error) {
	name := iface.Name
	switch iface.Type {
	case entities.InterfaceTypeDummy:
		return []string{"link", "add", name, "type", "dummy"}, nil

	case entities.InterfaceTypeBond:
		args := []string{"link", "add", name, "type", "bond"}
		if iface.Bond != nil && iface.Bond.Mode != "" {
			args = append(args, "mode", iface.Bond.Mode)
		}
		return args, nil

	case entities.InterfaceTypeLinuxBridge:
		return []string{"link", "add", name, "type", "bridge"}, nil

	case entities.InterfaceTypeVrf:
		if iface.Vrf == nil || iface.Vrf.RouteTableID == nil {
			return nil, errors.NewValidationError("vrf에는 route-table-id가 필요함", nil).
				WithField("vrf.route-table-id", "")
		}
		return []string{"link", "add", name, "type", "vrf", "table", strconv.FormatUint(uint64(*iface.Vrf.RouteTableID), 10)}, nil

	case entities.InterfaceTypeVlan:
		if iface.Vlan == nil || iface.Vlan.BaseIface == "" || iface.Vlan.ID == nil {
			return nil, errors.NewValidationError("vlan에는 base-iface와 id가 필요함", nil).
				WithField("vlan", "")
		}
		args := []string{"link", "add", "link", iface.Vlan.BaseIface, "name", name,
			"type", "vlan", "id", strconv.Itoa(int(*iface.Vlan.ID))}
		if iface.Vlan.Protocol != "" {
			args = append(args, "protocol", iface.Vlan.Protocol)
		}
		return args, nil

	case entities.InterfaceTypeVxlan:
		v := iface.Vxlan
		if v == nil || v.ID == nil {
			return nil, errors.NewValidationError("vxlan에는 id가 필요함", nil).
				WithField("vxlan.id", "")
		}
		args := []string{"link", "add", name, "type", "vxlan", "id", strconv.FormatUint(uint64(*v.ID), 10)}
		if v.BaseIface != "" {
			args = append(args, "dev", v.BaseIface)
		}
		if v.Remote != "" {
			args = append(args, "remote", v.Remote)
		}
		if v.Local != "" {
			args = append(args, "local", v.Local)
		}
		if v.DestinationPort != nil {
			args = append(args, "dstport", strconv.Itoa(int(*v.DestinationPort)))
		}
		if v.Learning != nil && !*v.Learning {
			args = append(args, "nolearning")
		}
		return args, nil

	case entities.InterfaceTypeMacVlan, entities.InterfaceTypeMacVtap:
		cfg, kind := iface.MacVlan, "macvlan"
		if iface.Type == entities.InterfaceTypeMacVtap {
			cfg, kind = iface.MacVtap, "macvtap"
		}
		if cfg == nil || cfg.BaseIface == "" {
			return nil, errors.NewValidationError(fmt.Sprintf("%s에는 base-iface가 필요함", iface.Type), nil).
				WithField(string(iface.Type)+".base-iface", "")
		}
		args := []string{"link", "add", "link", cfg.BaseIface, "name", name, "type", kind}
		if cfg.Mode != "" {
			args = append(args, "mode", cfg.Mode)
		}
		return args, nil

	case entities.InterfaceTypeMacSec:
		m := iface.MacSec
		if m == nil || m.BaseIface == "" {
			return nil, errors.NewValidationError("macsec에는 base-iface가 필요함", nil).
				WithField("macsec.base-iface", "")
		}
		args := []string{"link", "add", "link", m.BaseIface, "name", name, "type", "macsec"}
		if m.Port != nil {
			args = append(args, "port", strconv.FormatUint(uint64(*m.Port), 10))
		}
		if m.Encrypt != nil {
			args = append(args, "encrypt", onOff(*m.Encrypt))
		}
		if m.SendSci != nil {
			args = append(args, "send_sci", onOff(*m.SendSci))
		}
		if m.Validation != "" {
			args = append(args, "validate", m.Validation)
		}
		return args, nil

	case entities.InterfaceTypeVeth:
		if iface.Veth == nil || iface.Veth.Peer == "" {
			return nil, errors.NewValidationError("veth에는 peer가 필요함", nil).
				WithField("veth.peer", "")
		}
		return []string{"link", "add", name, "type", "veth", "peer", "name", iface.Veth.Peer}, nil
	}

	return nil, errors.NewValidationError(fmt.Sprintf("%s 인터페이스는 생성할 수 없음", iface.Type), nil).
		WithField("type", string(iface.Type))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
