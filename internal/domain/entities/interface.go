package entities

import (
	"fmt"
)

// InterfaceType은 인터페이스 종류를 나타냅니다
type InterfaceType string

const (
	InterfaceTypeEthernet    InterfaceType = "ethernet"
	InterfaceTypeDummy       InterfaceType = "dummy"
	InterfaceTypeBond        InterfaceType = "bond"
	InterfaceTypeLinuxBridge InterfaceType = "linux-bridge"
	InterfaceTypeOvsBridge   InterfaceType = "ovs-bridge"
	InterfaceTypeVrf         InterfaceType = "vrf"
	InterfaceTypeVlan        InterfaceType = "vlan"
	InterfaceTypeVxlan       InterfaceType = "vxlan"
	InterfaceTypeMacVlan     InterfaceType = "mac-vlan"
	InterfaceTypeMacVtap     InterfaceType = "mac-vtap"
	InterfaceTypeMacSec      InterfaceType = "macsec"
	InterfaceTypeVeth        InterfaceType = "veth"
	InterfaceTypeUnknown     InterfaceType = "unknown"
)

var knownInterfaceTypes = map[InterfaceType]struct{}{
	InterfaceTypeEthernet:    {},
	InterfaceTypeDummy:       {},
	InterfaceTypeBond:        {},
	InterfaceTypeLinuxBridge: {},
	InterfaceTypeOvsBridge:   {},
	InterfaceTypeVrf:         {},
	InterfaceTypeVlan:        {},
	InterfaceTypeVxlan:       {},
	InterfaceTypeMacVlan:     {},
	InterfaceTypeMacVtap:     {},
	InterfaceTypeMacSec:      {},
	InterfaceTypeVeth:        {},
}

// IsKnown은 지원하는 타입인지 확인합니다 (unknown 제외)
func (t InterfaceType) IsKnown() bool {
	_, ok := knownInterfaceTypes[t]
	return ok
}

// IsController는 포트를 소유하는 타입인지 확인합니다
func (t InterfaceType) IsController() bool {
	switch t {
	case InterfaceTypeBond, InterfaceTypeLinuxBridge, InterfaceTypeOvsBridge, InterfaceTypeVrf:
		return true
	}
	return false
}

// HasBaseIface는 base-iface 위에 올라가는 타입인지 확인합니다
func (t InterfaceType) HasBaseIface() bool {
	switch t {
	case InterfaceTypeVlan, InterfaceTypeVxlan, InterfaceTypeMacVlan, InterfaceTypeMacVtap, InterfaceTypeMacSec:
		return true
	}
	return false
}

// IsVirtual은 삭제 가능한 소프트웨어 인터페이스인지 확인합니다
func (t InterfaceType) IsVirtual() bool {
	return t.IsKnown() && t != InterfaceTypeEthernet
}

// InterfaceState는 인터페이스의 목표 상태입니다
type InterfaceState string

const (
	InterfaceStateUp     InterfaceState = "up"
	InterfaceStateDown   InterfaceState = "down"
	InterfaceStateAbsent InterfaceState = "absent"
)

// InterfaceIdentifier는 항목이 실제 인터페이스를 찾는 방법입니다
type InterfaceIdentifier string

const (
	InterfaceIdentifierName       InterfaceIdentifier = "name"
	InterfaceIdentifierMacAddress InterfaceIdentifier = "mac-address"
)

// BaseInterface는 모든 인터페이스 타입이 공유하는 필드입니다
type BaseInterface struct {
	Name                string              `yaml:"name"`
	ProfileName         string              `yaml:"profile-name,omitempty"`
	Type                InterfaceType       `yaml:"type,omitempty"`
	State               InterfaceState      `yaml:"state,omitempty"`
	Identifier          InterfaceIdentifier `yaml:"identifier,omitempty"`
	MacAddress          string              `yaml:"mac-address,omitempty"`
	PermanentMacAddress string              `yaml:"permanent-mac-address,omitempty"`
	MTU                 *int                `yaml:"mtu,omitempty"`
	Controller          string              `yaml:"controller,omitempty"`
}

// BondConfig는 link-aggregation 설정입니다
type BondConfig struct {
	Mode        string           `yaml:"mode,omitempty"`
	Port        []string         `yaml:"port,omitempty"`
	PortsConfig []BondPortConfig `yaml:"ports-config,omitempty"`
}

// BondPortConfig는 bond 포트별 설정입니다
type BondPortConfig struct {
	Name     string `yaml:"name"`
	Priority *int   `yaml:"priority,omitempty"`
	QueueID  *int   `yaml:"queue-id,omitempty"`
}

// BridgeConfig는 linux-bridge와 ovs-bridge가 공유하는 설정입니다.
// port와 ports는 같은 의미이며 정규화 시 port로 합쳐집니다.
type BridgeConfig struct {
	Port  []BridgePortConfig `yaml:"port,omitempty"`
	Ports []BridgePortConfig `yaml:"ports,omitempty"`
}

// BridgePortConfig는 브리지 포트 항목입니다
type BridgePortConfig struct {
	Name string `yaml:"name"`
}

// VrfConfig는 vrf 설정입니다
type VrfConfig struct {
	Port         []string `yaml:"port,omitempty"`
	RouteTableID *uint32  `yaml:"route-table-id,omitempty"`
}

// VlanConfig는 vlan 설정입니다
type VlanConfig struct {
	BaseIface string  `yaml:"base-iface,omitempty"`
	ID        *uint16 `yaml:"id,omitempty"`
	Protocol  string  `yaml:"protocol,omitempty"`
}

// VxlanConfig는 vxlan 설정입니다
type VxlanConfig struct {
	BaseIface       string  `yaml:"base-iface,omitempty"`
	ID              *uint32 `yaml:"id,omitempty"`
	Remote          string  `yaml:"remote,omitempty"`
	Local           string  `yaml:"local,omitempty"`
	DestinationPort *uint16 `yaml:"destination-port,omitempty"`
	Learning        *bool   `yaml:"learning,omitempty"`
}

// MacVlanConfig는 mac-vlan과 mac-vtap이 공유하는 설정입니다
type MacVlanConfig struct {
	BaseIface   string `yaml:"base-iface,omitempty"`
	Mode        string `yaml:"mode,omitempty"`
	Promiscuous *bool  `yaml:"promiscuous,omitempty"`
}

// MacSecConfig는 macsec 설정입니다
type MacSecConfig struct {
	Encrypt    *bool   `yaml:"encrypt,omitempty"`
	BaseIface  string  `yaml:"base-iface,omitempty"`
	MkaCak     string  `yaml:"mka-cak,omitempty"`
	MkaCkn     string  `yaml:"mka-ckn,omitempty"`
	Port       *uint32 `yaml:"port,omitempty"`
	Validation string  `yaml:"validation,omitempty"`
	SendSci    *bool   `yaml:"send-sci,omitempty"`
}

// VethConfig는 veth 설정입니다
type VethConfig struct {
	Peer string `yaml:"peer,omitempty"`
}

// Interface는 desired state의 인터페이스 항목입니다.
// 공통 필드와 타입별 payload 하나로 구성됩니다.
type Interface struct {
	BaseInterface `yaml:",inline"`
	Bond          *BondConfig    `yaml:"link-aggregation,omitempty"`
	Bridge        *BridgeConfig  `yaml:"bridge,omitempty"`
	Vrf           *VrfConfig     `yaml:"vrf,omitempty"`
	Vlan          *VlanConfig    `yaml:"vlan,omitempty"`
	Vxlan         *VxlanConfig   `yaml:"vxlan,omitempty"`
	MacVlan       *MacVlanConfig `yaml:"mac-vlan,omitempty"`
	MacVtap       *MacVlanConfig `yaml:"mac-vtap,omitempty"`
	MacSec        *MacSecConfig  `yaml:"macsec,omitempty"`
	Veth          *VethConfig    `yaml:"veth,omitempty"`
}

// EffectiveState는 생략된 state를 up으로 취급하여 반환합니다
func (i *Interface) EffectiveState() InterfaceState {
	if i.State == "" {
		return InterfaceStateUp
	}
	return i.State
}

// IsAbsent는 삭제 대상인지 확인합니다
func (i *Interface) IsAbsent() bool {
	return i.State == InterfaceStateAbsent
}

// UsesMacIdentifier는 MAC 주소로 실제 인터페이스를 찾는 항목인지 확인합니다
func (i *Interface) UsesMacIdentifier() bool {
	return i.Identifier == InterfaceIdentifierMacAddress
}

// ControllerPorts는 컨트롤러의 포트 목록과 목록이 명시되었는지 여부를 반환합니다.
// 명시되지 않은 경우(nil) 현재 포트를 건드리지 않습니다.
func (i *Interface) ControllerPorts() ([]string, bool) {
	switch i.Type {
	case InterfaceTypeBond:
		if i.Bond == nil || (i.Bond.Port == nil && i.Bond.PortsConfig == nil) {
			return nil, false
		}
		names := append([]string{}, i.Bond.Port...)
		for _, pc := range i.Bond.PortsConfig {
			names = append(names, pc.Name)
		}
		return dedup(names), true
	case InterfaceTypeLinuxBridge, InterfaceTypeOvsBridge:
		if i.Bridge == nil || (i.Bridge.Port == nil && i.Bridge.Ports == nil) {
			return nil, false
		}
		names := []string{}
		for _, p := range i.Bridge.Port {
			names = append(names, p.Name)
		}
		for _, p := range i.Bridge.Ports {
			names = append(names, p.Name)
		}
		return dedup(names), true
	case InterfaceTypeVrf:
		if i.Vrf == nil || i.Vrf.Port == nil {
			return nil, false
		}
		return dedup(append([]string{}, i.Vrf.Port...)), true
	}
	return nil, false
}

// SetControllerPorts는 정규화된 포트 목록을 저장합니다
func (i *Interface) SetControllerPorts(ports []string) {
	ports = append([]string{}, ports...)
	switch i.Type {
	case InterfaceTypeBond:
		if i.Bond == nil {
			i.Bond = &BondConfig{}
		}
		i.Bond.Port = ports
	case InterfaceTypeLinuxBridge, InterfaceTypeOvsBridge:
		if i.Bridge == nil {
			i.Bridge = &BridgeConfig{}
		}
		bridgePorts := make([]BridgePortConfig, 0, len(ports))
		for _, p := range ports {
			bridgePorts = append(bridgePorts, BridgePortConfig{Name: p})
		}
		i.Bridge.Port = bridgePorts
		i.Bridge.Ports = nil
	case InterfaceTypeVrf:
		if i.Vrf == nil {
			i.Vrf = &VrfConfig{}
		}
		i.Vrf.Port = ports
	}
}

// VethPeer는 veth 반대편 인터페이스 이름을 반환합니다
func (i *Interface) VethPeer() string {
	if i.Type != InterfaceTypeVeth || i.Veth == nil {
		return ""
	}
	return i.Veth.Peer
}

// BaseIface는 부모 인터페이스 이름을 반환합니다
func (i *Interface) BaseIface() string {
	switch i.Type {
	case InterfaceTypeVlan:
		if i.Vlan != nil {
			return i.Vlan.BaseIface
		}
	case InterfaceTypeVxlan:
		if i.Vxlan != nil {
			return i.Vxlan.BaseIface
		}
	case InterfaceTypeMacVlan:
		if i.MacVlan != nil {
			return i.MacVlan.BaseIface
		}
	case InterfaceTypeMacVtap:
		if i.MacVtap != nil {
			return i.MacVtap.BaseIface
		}
	case InterfaceTypeMacSec:
		if i.MacSec != nil {
			return i.MacSec.BaseIface
		}
	}
	return ""
}

// VisitReferences는 인터페이스 참조를 담는 모든 필드를 방문합니다.
// fn이 반환한 값이 해당 필드에 다시 저장됩니다.
func (i *Interface) VisitReferences(fn func(field, token string) (string, error)) error {
	visit := func(field string, target *string) error {
		if *target == "" {
			return nil
		}
		resolved, err := fn(field, *target)
		if err != nil {
			return err
		}
		*target = resolved
		return nil
	}

	if err := visit("controller", &i.Controller); err != nil {
		return err
	}
	if i.Bond != nil {
		for idx := range i.Bond.Port {
			if err := visit(fmt.Sprintf("link-aggregation.port[%d]", idx), &i.Bond.Port[idx]); err != nil {
				return err
			}
		}
		for idx := range i.Bond.PortsConfig {
			if err := visit(fmt.Sprintf("link-aggregation.ports-config[%d].name", idx), &i.Bond.PortsConfig[idx].Name); err != nil {
				return err
			}
		}
	}
	if i.Bridge != nil {
		for idx := range i.Bridge.Port {
			if err := visit(fmt.Sprintf("bridge.port[%d].name", idx), &i.Bridge.Port[idx].Name); err != nil {
				return err
			}
		}
		for idx := range i.Bridge.Ports {
			if err := visit(fmt.Sprintf("bridge.ports[%d].name", idx), &i.Bridge.Ports[idx].Name); err != nil {
				return err
			}
		}
	}
	if i.Vrf != nil {
		for idx := range i.Vrf.Port {
			if err := visit(fmt.Sprintf("vrf.port[%d]", idx), &i.Vrf.Port[idx]); err != nil {
				return err
			}
		}
	}
	if i.Vlan != nil {
		if err := visit("vlan.base-iface", &i.Vlan.BaseIface); err != nil {
			return err
		}
	}
	if i.Vxlan != nil {
		if err := visit("vxlan.base-iface", &i.Vxlan.BaseIface); err != nil {
			return err
		}
	}
	if i.MacVlan != nil {
		if err := visit("mac-vlan.base-iface", &i.MacVlan.BaseIface); err != nil {
			return err
		}
	}
	if i.MacVtap != nil {
		if err := visit("mac-vtap.base-iface", &i.MacVtap.BaseIface); err != nil {
			return err
		}
	}
	if i.MacSec != nil {
		if err := visit("macsec.base-iface", &i.MacSec.BaseIface); err != nil {
			return err
		}
	}
	return nil
}

// PayloadTypes는 설정된 타입별 payload가 요구하는 인터페이스 타입 목록을 반환합니다
func (i *Interface) PayloadTypes() []InterfaceType {
	var types []InterfaceType
	if i.Bond != nil {
		types = append(types, InterfaceTypeBond)
	}
	if i.Bridge != nil {
		if i.Type == InterfaceTypeOvsBridge {
			types = append(types, InterfaceTypeOvsBridge)
		} else {
			types = append(types, InterfaceTypeLinuxBridge)
		}
	}
	if i.Vrf != nil {
		types = append(types, InterfaceTypeVrf)
	}
	if i.Vlan != nil {
		types = append(types, InterfaceTypeVlan)
	}
	if i.Vxlan != nil {
		types = append(types, InterfaceTypeVxlan)
	}
	if i.MacVlan != nil {
		types = append(types, InterfaceTypeMacVlan)
	}
	if i.MacVtap != nil {
		types = append(types, InterfaceTypeMacVtap)
	}
	if i.MacSec != nil {
		types = append(types, InterfaceTypeMacSec)
	}
	if i.Veth != nil {
		types = append(types, InterfaceTypeVeth)
	}
	return types
}

// Clone은 깊은 복사본을 반환합니다
func (i *Interface) Clone() Interface {
	out := *i
	if i.MTU != nil {
		out.MTU = ptrCopy(i.MTU)
	}
	if i.Bond != nil {
		b := *i.Bond
		b.Port = cloneStrings(i.Bond.Port)
		if i.Bond.PortsConfig != nil {
			b.PortsConfig = make([]BondPortConfig, len(i.Bond.PortsConfig))
			for idx, pc := range i.Bond.PortsConfig {
				b.PortsConfig[idx] = BondPortConfig{
					Name:     pc.Name,
					Priority: ptrCopy(pc.Priority),
					QueueID:  ptrCopy(pc.QueueID),
				}
			}
		}
		out.Bond = &b
	}
	if i.Bridge != nil {
		b := BridgeConfig{}
		if i.Bridge.Port != nil {
			b.Port = append([]BridgePortConfig{}, i.Bridge.Port...)
		}
		if i.Bridge.Ports != nil {
			b.Ports = append([]BridgePortConfig{}, i.Bridge.Ports...)
		}
		out.Bridge = &b
	}
	if i.Vrf != nil {
		out.Vrf = &VrfConfig{Port: cloneStrings(i.Vrf.Port), RouteTableID: ptrCopy(i.Vrf.RouteTableID)}
	}
	if i.Vlan != nil {
		v := *i.Vlan
		v.ID = ptrCopy(i.Vlan.ID)
		out.Vlan = &v
	}
	if i.Vxlan != nil {
		v := *i.Vxlan
		v.ID = ptrCopy(i.Vxlan.ID)
		v.DestinationPort = ptrCopy(i.Vxlan.DestinationPort)
		v.Learning = ptrCopy(i.Vxlan.Learning)
		out.Vxlan = &v
	}
	if i.MacVlan != nil {
		m := *i.MacVlan
		m.Promiscuous = ptrCopy(i.MacVlan.Promiscuous)
		out.MacVlan = &m
	}
	if i.MacVtap != nil {
		m := *i.MacVtap
		m.Promiscuous = ptrCopy(i.MacVtap.Promiscuous)
		out.MacVtap = &m
	}
	if i.MacSec != nil {
		m := *i.MacSec
		m.Encrypt = ptrCopy(i.MacSec.Encrypt)
		m.Port = ptrCopy(i.MacSec.Port)
		m.SendSci = ptrCopy(i.MacSec.SendSci)
		out.MacSec = &m
	}
	if i.Veth != nil {
		v := *i.Veth
		out.Veth = &v
	}
	return out
}

func ptrCopy[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func dedup(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
