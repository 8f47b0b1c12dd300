package services

import (
	"testing"

	"netstate-agent/internal/domain/entities"

	"github.com/stretchr/testify/require"
)

const (
	macEth1 = "00:23:45:67:89:1A"
	macEth2 = "00:23:45:67:89:1B"
	macEth3 = "00:23:45:67:89:1C"
)

func intPtr(v int) *int          { return &v }
func uint16Ptr(v uint16) *uint16 { return &v }
func uint32Ptr(v uint32) *uint32 { return &v }

// nic은 영구 MAC 주소를 가진 물리 인터페이스를 만듭니다
func nic(name, mac string) entities.Interface {
	return entities.Interface{BaseInterface: entities.BaseInterface{
		Name:                name,
		Type:                entities.InterfaceTypeEthernet,
		State:               entities.InterfaceStateUp,
		MacAddress:          mac,
		PermanentMacAddress: mac,
	}}
}

func withController(iface entities.Interface, controller string) entities.Interface {
	iface.Controller = controller
	return iface
}

func withProfile(iface entities.Interface, profile string) entities.Interface {
	iface.ProfileName = profile
	return iface
}

func virtual(name string, t entities.InterfaceType) entities.Interface {
	return entities.Interface{BaseInterface: entities.BaseInterface{
		Name:  name,
		Type:  t,
		State: entities.InterfaceStateUp,
	}}
}

func byMac(name, mac string) entities.Interface {
	return entities.Interface{BaseInterface: entities.BaseInterface{
		Name:       name,
		Identifier: entities.InterfaceIdentifierMacAddress,
		MacAddress: mac,
	}}
}

func absent(name string) entities.Interface {
	return entities.Interface{BaseInterface: entities.BaseInterface{
		Name:  name,
		State: entities.InterfaceStateAbsent,
	}}
}

func bond(name, mode string, ports ...string) entities.Interface {
	iface := virtual(name, entities.InterfaceTypeBond)
	iface.State = ""
	iface.Bond = &entities.BondConfig{Mode: mode, Port: ports}
	return iface
}

func vlan(name, base string, id uint16) entities.Interface {
	iface := virtual(name, entities.InterfaceTypeVlan)
	iface.State = ""
	iface.Vlan = &entities.VlanConfig{BaseIface: base, ID: uint16Ptr(id)}
	return iface
}

func linuxBridge(name string, ports ...string) entities.Interface {
	iface := virtual(name, entities.InterfaceTypeLinuxBridge)
	iface.State = ""
	iface.Bridge = &entities.BridgeConfig{Port: []entities.BridgePortConfig{}}
	for _, p := range ports {
		iface.Bridge.Port = append(iface.Bridge.Port, entities.BridgePortConfig{Name: p})
	}
	return iface
}

func threeNics() *entities.CurrentState {
	return entities.NewCurrentState([]entities.Interface{
		nic("eth1", macEth1),
		nic("eth2", macEth2),
		nic("eth3", macEth3),
	})
}

func desiredOf(ifaces ...entities.Interface) *entities.DesiredState {
	return &entities.DesiredState{Interfaces: ifaces}
}

// buildPlan은 정규화, 그래프, 비교 단계를 차례로 실행합니다
func buildPlan(desired *entities.DesiredState, current *entities.CurrentState) (*entities.ApplyPlan, error) {
	canonical, err := NewReferenceRewriter().Canonicalize(desired, current)
	if err != nil {
		return nil, err
	}
	graph, err := NewDependencyGrapher().BuildGraph(canonical)
	if err != nil {
		return nil, err
	}
	order, err := graph.TopologicalSort()
	if err != nil {
		return nil, err
	}
	return NewStateReconciler().Reconcile(canonical, current, order)
}

func mustPlan(t *testing.T, desired *entities.DesiredState, current *entities.CurrentState) []string {
	t.Helper()
	plan, err := buildPlan(desired, current)
	require.NoError(t, err)
	return plan.Strings()
}
