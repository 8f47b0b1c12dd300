package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCurrentState() *CurrentState {
	return NewCurrentState([]Interface{
		{BaseInterface: BaseInterface{Name: "eth2", Type: InterfaceTypeEthernet, Controller: "bond0"}},
		{BaseInterface: BaseInterface{Name: "eth1", Type: InterfaceTypeEthernet, Controller: "bond0"}},
		{BaseInterface: BaseInterface{Name: "bond0", Type: InterfaceTypeBond}, Bond: &BondConfig{Mode: "active-backup"}},
		{
			BaseInterface: BaseInterface{Name: "bond0.10", Type: InterfaceTypeVlan},
			Vlan:          &VlanConfig{BaseIface: "bond0"},
		},
	})
}

func TestNewCurrentState_ComputesControllerPorts(t *testing.T) {
	state := sampleCurrentState()

	bond, ok := state.Get("bond0")
	require.True(t, ok)
	ports, specified := bond.ControllerPorts()
	assert.True(t, specified)
	assert.Equal(t, []string{"eth1", "eth2"}, ports)
	assert.Equal(t, InterfaceStateUp, bond.State)
}

func TestCurrentState_Names(t *testing.T) {
	state := sampleCurrentState()

	assert.Equal(t, []string{"bond0", "bond0.10", "eth1", "eth2"}, state.Names())
	assert.Equal(t, 4, state.Len())
	assert.True(t, state.Has("eth1"))
	assert.False(t, state.Has("eth9"))
}

func TestCurrentState_GetReturnsCopy(t *testing.T) {
	state := sampleCurrentState()

	bond, _ := state.Get("bond0")
	bond.Bond.Port[0] = "changed"
	bond.Name = "changed"

	again, _ := state.Get("bond0")
	assert.Equal(t, "bond0", again.Name)
	assert.Equal(t, []string{"eth1", "eth2"}, again.Bond.Port)
}

func TestCurrentState_Relations(t *testing.T) {
	state := sampleCurrentState()

	assert.Equal(t, []string{"eth1", "eth2"}, state.PortsOf("bond0"))
	assert.Equal(t, []string{"bond0.10"}, state.ChildrenOf("bond0"))
	assert.Empty(t, state.ChildrenOf("eth1"))
}

func TestCurrentState_Filter(t *testing.T) {
	state := sampleCurrentState()

	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{name: "전체", names: nil, want: []string{"bond0", "bond0.10", "eth1", "eth2"}},
		{name: "일부", names: []string{"eth1", "bond0"}, want: []string{"bond0", "eth1"}},
		{name: "없는 이름 무시", names: []string{"eth9"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, state.Filter(tt.names).Names())
		})
	}
}
