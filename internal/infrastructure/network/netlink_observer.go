package network

import (
	"context"
	"net"
	"path/filepath"
	"strings"

	"netstate-agent/internal/domain/constants"
	"netstate-agent/internal/domain/entities"
	"netstate-agent/internal/domain/errors"
	"netstate-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

const ovsDatapath = "ovs-system"

// Netlinker is an interface that abstracts netlink interactions.
// This allows for mocking netlink calls during unit testing.
type Netlinker interface {
	LinkList() ([]netlink.Link, error)
}

// RealNetlinker is a concrete implementation of Netlinker that uses the actual netlink package.
type RealNetlinker struct{}

// LinkList retrieves all links.
func (r *RealNetlinker) LinkList() ([]netlink.Link, error) {
	return netlink.LinkList()
}

// NetlinkObserver는 netlink 링크 목록과 sysfs로 현재 상태 스냅샷을 만듭니다.
// ovs가 설정되면 OVS 브리지와 포트 정보를 함께 반영합니다.
type NetlinkObserver struct {
	netlinker  Netlinker
	fileSystem interfaces.FileSystem
	ovs        *OvsClient
	logger     *logrus.Logger
}

// NewNetlinkObserver는 새로운 NetlinkObserver를 생성합니다. ovs는 nil일 수 있습니다.
func NewNetlinkObserver(netlinker Netlinker, fs interfaces.FileSystem, ovs *OvsClient, logger *logrus.Logger) *NetlinkObserver {
	return &NetlinkObserver{
		netlinker:  netlinker,
		fileSystem: fs,
		ovs:        ovs,
		logger:     logger,
	}
}

// linkTypes는 netlink 링크 종류 -> 인터페이스 타입입니다
var linkTypes = map[string]entities.InterfaceType{
	"device":  entities.InterfaceTypeEthernet,
	"dummy":   entities.InterfaceTypeDummy,
	"bond":    entities.InterfaceTypeBond,
	"bridge":  entities.InterfaceTypeLinuxBridge,
	"vrf":     entities.InterfaceTypeVrf,
	"vlan":    entities.InterfaceTypeVlan,
	"vxlan":   entities.InterfaceTypeVxlan,
	"macvlan": entities.InterfaceTypeMacVlan,
	"macvtap": entities.InterfaceTypeMacVtap,
	"macsec":  entities.InterfaceTypeMacSec,
	"veth":    entities.InterfaceTypeVeth,
}

// Snapshot은 현재 네트워크 인터페이스 상태를 반환합니다
func (o *NetlinkObserver) Snapshot(ctx context.Context) (*entities.CurrentState, error) {
	links, err := o.netlinker.LinkList()
	if err != nil {
		return nil, errors.NewSystemError("netlink 링크 목록 조회 실패", err)
	}

	var ovsBridges map[string][]string
	if o.ovs != nil {
		if ovsBridges, err = o.ovs.Bridges(ctx); err != nil {
			return nil, err
		}
	}
	ovsPorts := make(map[string]string)
	for bridge, ports := range ovsBridges {
		for _, port := range ports {
			ovsPorts[port] = bridge
		}
	}

	// ovs-system은 OVS 데이터패스이므로 컨트롤러로 취급하지 않습니다
	names := make(map[int]string, len(links))
	for _, link := range links {
		if link.Attrs().Name != ovsDatapath {
			names[link.Attrs().Index] = link.Attrs().Name
		}
	}

	ifaces := make([]entities.Interface, 0, len(links))
	seen := make(map[string]struct{}, len(links))
	for _, link := range links {
		attrs := link.Attrs()
		if attrs.Flags&net.FlagLoopback != 0 || attrs.Name == ovsDatapath {
			continue
		}

		iface := o.convert(link, names)
		if _, ok := ovsBridges[iface.Name]; ok {
			iface.Type = entities.InterfaceTypeOvsBridge
			iface.Bridge = &entities.BridgeConfig{}
		}
		if bridge, ok := ovsPorts[iface.Name]; ok {
			iface.Controller = bridge
		}
		seen[iface.Name] = struct{}{}
		ifaces = append(ifaces, iface)
	}

	// 데이터패스 링크가 아직 없는 OVS 브리지
	for bridge := range ovsBridges {
		if _, ok := seen[bridge]; !ok {
			ifaces = append(ifaces, entities.Interface{
				BaseInterface: entities.BaseInterface{Name: bridge, Type: entities.InterfaceTypeOvsBridge, State: entities.InterfaceStateUp},
				Bridge:        &entities.BridgeConfig{},
			})
		}
	}

	state := entities.NewCurrentState(ifaces)
	o.logger.WithField("interfaces", state.Len()).Debug("현재 네트워크 상태 스냅샷 생성")
	return state, nil
}

func (o *NetlinkObserver) convert(link netlink.Link, names map[int]string) entities.Interface {
	attrs := link.Attrs()

	ifaceType, ok := linkTypes[link.Type()]
	if !ok {
		ifaceType = entities.InterfaceTypeUnknown
	}

	iface := entities.Interface{BaseInterface: entities.BaseInterface{
		Name:        attrs.Name,
		Type:        ifaceType,
		State:       entities.InterfaceStateDown,
		ProfileName: attrs.Alias,
	}}
	if attrs.Flags&net.FlagUp != 0 {
		iface.State = entities.InterfaceStateUp
	}
	if attrs.MTU > 0 {
		mtu := attrs.MTU
		iface.MTU = &mtu
	}
	if len(attrs.HardwareAddr) > 0 {
		iface.MacAddress = strings.ToUpper(attrs.HardwareAddr.String())
	}
	if ifaceType == entities.InterfaceTypeEthernet {
		iface.PermanentMacAddress = o.permanentMac(attrs.Name, iface.MacAddress)
	}
	if master := names[attrs.MasterIndex]; master != "" {
		iface.Controller = master
	}

	parent := names[attrs.ParentIndex]
	switch l := link.(type) {
	case *netlink.Bond:
		iface.Bond = &entities.BondConfig{Mode: l.Mode.String()}
	case *netlink.Bridge:
		iface.Bridge = &entities.BridgeConfig{}
	case *netlink.Vrf:
		table := l.Table
		iface.Vrf = &entities.VrfConfig{RouteTableID: &table}
	case *netlink.Vlan:
		id := uint16(l.VlanId)
		iface.Vlan = &entities.VlanConfig{BaseIface: parent, ID: &id, Protocol: vlanProtocolName(l.VlanProtocol)}
	case *netlink.Vxlan:
		id := uint32(l.VxlanId)
		port := uint16(l.Port)
		learning := l.Learning
		iface.Vxlan = &entities.VxlanConfig{
			BaseIface:       names[l.VtepDevIndex],
			ID:              &id,
			DestinationPort: &port,
			Learning:        &learning,
		}
		if l.Group != nil {
			iface.Vxlan.Remote = l.Group.String()
		}
		if l.SrcAddr != nil {
			iface.Vxlan.Local = l.SrcAddr.String()
		}
	case *netlink.Macvtap:
		iface.MacVtap = &entities.MacVlanConfig{BaseIface: parent, Mode: macvlanModeName(l.Mode)}
	case *netlink.Macvlan:
		iface.MacVlan = &entities.MacVlanConfig{BaseIface: parent, Mode: macvlanModeName(l.Mode)}
	case *netlink.Veth:
		iface.Veth = &entities.VethConfig{Peer: parent}
	}
	if ifaceType == entities.InterfaceTypeMacSec {
		iface.MacSec = &entities.MacSecConfig{BaseIface: parent}
	}
	return iface
}

// permanentMac은 물리 인터페이스의 영구 MAC 주소를 sysfs에서 읽습니다.
// bond 포트는 bonding_slave/perm_hwaddr를, 그 외에는 addr_assign_type이 영구인 경우 현재 주소를 사용합니다.
func (o *NetlinkObserver) permanentMac(name, current string) string {
	base := filepath.Join(constants.SysClassNet, name)

	if data, err := o.fileSystem.ReadFile(filepath.Join(base, "bonding_slave", "perm_hwaddr")); err == nil {
		if mac, err := entities.NormalizeMacAddress(strings.TrimSpace(string(data))); err == nil {
			return mac
		}
	}

	data, err := o.fileSystem.ReadFile(filepath.Join(base, "addr_assign_type"))
	if err != nil {
		o.logger.WithError(err).WithField("interface", name).Debug("addr_assign_type 읽기 실패")
		return ""
	}
	if strings.TrimSpace(string(data)) == constants.AddrAssignTypePermanent {
		return current
	}
	return ""
}

func macvlanModeName(mode netlink.MacvlanMode) string {
	switch mode {
	case netlink.MACVLAN_MODE_PRIVATE:
		return "private"
	case netlink.MACVLAN_MODE_VEPA:
		return "vepa"
	case netlink.MACVLAN_MODE_BRIDGE:
		return "bridge"
	case netlink.MACVLAN_MODE_PASSTHRU:
		return "passthru"
	case netlink.MACVLAN_MODE_SOURCE:
		return "source"
	}
	return ""
}

func vlanProtocolName(protocol netlink.VlanProtocol) string {
	if protocol == netlink.VLAN_PROTOCOL_8021AD {
		return "802.1ad"
	}
	return "802.1q"
}
