package services

import (
	"testing"

	"netstate-agent/internal/domain/entities"
	domainerrors "netstate-agent/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bondedCurrent는 eth1, eth2를 포트로 가진 bond0과 그 위의 vlan을 가진 상태입니다
func bondedCurrent() *entities.CurrentState {
	liveBond := virtual("bond0", entities.InterfaceTypeBond)
	liveBond.Bond = &entities.BondConfig{Mode: "active-backup"}
	liveVlan := virtual("bond0.10", entities.InterfaceTypeVlan)
	liveVlan.Vlan = &entities.VlanConfig{BaseIface: "bond0", ID: uint16Ptr(10), Protocol: "802.1q"}

	return entities.NewCurrentState([]entities.Interface{
		withController(nic("eth1", macEth1), "bond0"),
		withController(nic("eth2", macEth2), "bond0"),
		nic("eth3", macEth3),
		liveBond,
		liveVlan,
	})
}

func TestStateReconciler_CreateControllerThenAttach(t *testing.T) {
	desired := desiredOf(
		vlan("bond1.10", "bond1", 10),
		bond("bond1", "active-backup", "eth3"),
	)

	ops := mustPlan(t, desired, bondedCurrent())

	assert.Equal(t, []string{
		"create bond bond1",
		"create vlan bond1.10",
		"attach eth3 to bond1",
	}, ops)
}

func TestStateReconciler_MacReferencedPortsConverge(t *testing.T) {
	desired := desiredOf(
		byMac("port1", macEth1),
		byMac("port2", macEth2),
		bond("bond99", "balance-rr", "port1", "port2"),
	)
	current := threeNics()

	plan, err := buildPlan(desired, current)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"update eth1 (profile-name)",
		"update eth2 (profile-name)",
		"create bond bond99",
		"attach eth1 to bond99",
		"attach eth2 to bond99",
	}, plan.Strings())

	// 적용 결과를 흉내 낸 현재 상태에서는 빈 계획이어야 합니다
	liveBond := virtual("bond99", entities.InterfaceTypeBond)
	liveBond.Bond = &entities.BondConfig{Mode: "balance-rr"}
	converged := entities.NewCurrentState([]entities.Interface{
		withController(withProfile(nic("eth1", macEth1), "port1"), "bond99"),
		withController(withProfile(nic("eth2", macEth2), "port2"), "bond99"),
		nic("eth3", macEth3),
		liveBond,
	})

	second, err := buildPlan(desired, converged)
	require.NoError(t, err)
	assert.True(t, second.IsEmpty(), "unexpected operations: %v", second.Strings())
}

func TestStateReconciler_ConvergedStateIsEmpty(t *testing.T) {
	desired := desiredOf(
		bond("bond0", "active-backup", "eth1", "eth2"),
		vlan("bond0.10", "bond0", 10),
		nic("eth3", ""),
	)

	plan, err := buildPlan(desired, bondedCurrent())

	require.NoError(t, err)
	assert.True(t, plan.IsEmpty(), "unexpected operations: %v", plan.Strings())
}

func TestStateReconciler_AbsentController(t *testing.T) {
	ops := mustPlan(t, desiredOf(absent("bond0")), bondedCurrent())

	assert.Equal(t, []string{
		"detach eth1 from bond0",
		"detach eth2 from bond0",
		"remove vlan bond0.10",
		"remove bond bond0",
	}, ops)
}

func TestStateReconciler_AbsentChildOfRemovedBaseKeptUp(t *testing.T) {
	keep := entities.Interface{BaseInterface: entities.BaseInterface{Name: "bond0.10", State: entities.InterfaceStateUp}}

	_, err := buildPlan(desiredOf(absent("bond0"), keep), bondedCurrent())

	domainErr := requireDomainError(t, err)
	assert.Equal(t, domainerrors.ErrorTypeValidation, domainErr.Type)
	assert.Equal(t, "bond0.10", domainErr.Interface)
	assert.Equal(t, "bond0", domainErr.Token)
}

func TestStateReconciler_AbsentEthernetGoesDown(t *testing.T) {
	plan, err := buildPlan(desiredOf(absent("eth3")), bondedCurrent())

	require.NoError(t, err)
	require.Equal(t, 1, plan.Len())
	op := plan.Operations[0]
	assert.Equal(t, entities.OperationUpdate, op.Kind)
	change, ok := op.Change(entities.FieldState)
	require.True(t, ok)
	assert.Equal(t, "up", change.Current)
	assert.Equal(t, "down", change.Desired)
}

func TestStateReconciler_AbsentMissingInterfaceIsNoop(t *testing.T) {
	plan, err := buildPlan(desiredOf(absent("ghost0")), bondedCurrent())

	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
}

func TestStateReconciler_PartialUpdate(t *testing.T) {
	update := entities.Interface{BaseInterface: entities.BaseInterface{Name: "eth3", MTU: intPtr(9000)}}

	plan, err := buildPlan(desiredOf(update), bondedCurrent())

	require.NoError(t, err)
	require.Equal(t, []string{"update eth3 (mtu)"}, plan.Strings())
	assert.Equal(t, []entities.FieldChange{{Field: entities.FieldMTU, Current: "", Desired: "9000"}}, plan.Operations[0].Changes)
}

func TestStateReconciler_UpdateFields(t *testing.T) {
	live := withProfile(nic("eth3", macEth3), "old")
	live.MTU = intPtr(1500)
	current := entities.NewCurrentState([]entities.Interface{live})

	want := entities.Interface{BaseInterface: entities.BaseInterface{
		Name:        "eth3",
		State:       entities.InterfaceStateDown,
		MTU:         intPtr(1500),
		MacAddress:  "02:00:00:00:00:03",
		ProfileName: "new",
	}}

	plan, err := buildPlan(desiredOf(want), current)

	require.NoError(t, err)
	require.Equal(t, 1, plan.Len())
	assert.Equal(t, []entities.FieldChange{
		{Field: entities.FieldState, Current: "up", Desired: "down"},
		{Field: entities.FieldMacAddress, Current: macEth3, Desired: "02:00:00:00:00:03"},
		{Field: entities.FieldProfileName, Current: "old", Desired: "new"},
	}, plan.Operations[0].Changes)
}

func TestStateReconciler_ImmutableChangeRecreates(t *testing.T) {
	plan, err := buildPlan(desiredOf(vlan("bond0.10", "bond0", 20)), bondedCurrent())

	require.NoError(t, err)
	require.Equal(t, []string{"remove vlan bond0.10", "create vlan bond0.10"}, plan.Strings())
	assert.Equal(t, uint16(20), *plan.Operations[1].Interface.Vlan.ID)
	assert.Equal(t, "bond0", plan.Operations[1].Interface.Vlan.BaseIface)
}

func TestStateReconciler_VlanProtocolCaseInsensitive(t *testing.T) {
	upper := vlan("bond0.10", "bond0", 10)
	upper.Vlan.Protocol = "802.1Q"

	ops := mustPlan(t, desiredOf(upper), bondedCurrent())
	assert.Empty(t, ops)

	canonical := desiredOf(upper)
	order := []string{"bond0.10"}
	plan, err := NewStateReconciler().Reconcile(canonical, bondedCurrent(), order)
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
}

func TestStateReconciler_RecreatedBaseCascades(t *testing.T) {
	desired := desiredOf(bond("bond0", "balance-rr"))

	plan, err := buildPlan(desired, bondedCurrent())

	require.NoError(t, err)
	assert.Equal(t, []string{
		"detach eth1 from bond0",
		"detach eth2 from bond0",
		"remove vlan bond0.10",
		"remove bond bond0",
		"create bond bond0",
		"create vlan bond0.10",
		"attach eth1 to bond0",
		"attach eth2 to bond0",
	}, plan.Strings())
	assert.Equal(t, "balance-rr", plan.Operations[4].Interface.Bond.Mode)
	assert.Equal(t, uint16(10), *plan.Operations[5].Interface.Vlan.ID)
}

func TestStateReconciler_PortListChanges(t *testing.T) {
	t.Run("목록에서 빠진 포트 분리", func(t *testing.T) {
		ops := mustPlan(t, desiredOf(bond("bond0", "", "eth1")), bondedCurrent())

		assert.Equal(t, []string{"detach eth2 from bond0"}, ops)
	})

	t.Run("빈 목록은 모든 포트 분리", func(t *testing.T) {
		empty := bond("bond0", "")
		empty.Bond.Port = []string{}

		ops := mustPlan(t, desiredOf(empty), bondedCurrent())

		assert.Equal(t, []string{"detach eth1 from bond0", "detach eth2 from bond0"}, ops)
	})

	t.Run("목록 생략은 포트 유지", func(t *testing.T) {
		keep := bond("bond0", "")
		keep.Bond.Port = nil
		keep.MTU = intPtr(9000)

		ops := mustPlan(t, desiredOf(keep), bondedCurrent())

		assert.Equal(t, []string{"update bond0 (mtu)"}, ops)
	})

	t.Run("다른 컨트롤러로 이동", func(t *testing.T) {
		desired := desiredOf(
			bond("bond0", "", "eth1"),
			linuxBridge("br0", "eth2"),
		)

		ops := mustPlan(t, desired, bondedCurrent())

		assert.Equal(t, []string{
			"detach eth2 from bond0",
			"create linux-bridge br0",
			"attach eth2 to br0",
		}, ops)
	})
}

func TestStateReconciler_Validation(t *testing.T) {
	removedPort := absent("dummy0")
	liveDummy := virtual("dummy0", entities.InterfaceTypeDummy)

	tests := []struct {
		name    string
		desired *entities.DesiredState
		current *entities.CurrentState
	}{
		{
			name:    "존재하지 않는 ethernet 생성",
			desired: desiredOf(nic("eth9", "")),
			current: bondedCurrent(),
		},
		{
			name:    "물리 인터페이스의 타입 변경",
			desired: desiredOf(virtual("eth3", entities.InterfaceTypeDummy)),
			current: bondedCurrent(),
		},
		{
			name:    "삭제되는 인터페이스를 포트로 사용",
			desired: desiredOf(removedPort, linuxBridge("br0", "dummy0")),
			current: entities.NewCurrentState([]entities.Interface{liveDummy}),
		},
		{
			name:    "컨트롤러가 아닌 인터페이스를 controller로 지정",
			desired: desiredOf(withController(nic("eth3", ""), "eth1")),
			current: bondedCurrent(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildPlan(tt.desired, tt.current)

			assert.True(t, domainerrors.IsValidationError(err), "unexpected error: %v", err)
		})
	}
}

func TestStateReconciler_CreateDown(t *testing.T) {
	dummy := virtual("dummy0", entities.InterfaceTypeDummy)
	dummy.State = entities.InterfaceStateDown

	plan, err := buildPlan(desiredOf(dummy), bondedCurrent())

	require.NoError(t, err)
	require.Equal(t, []string{"create dummy dummy0"}, plan.Strings())
	assert.Equal(t, entities.InterfaceStateDown, plan.Operations[0].Interface.State)
}

func TestStateReconciler_Deterministic(t *testing.T) {
	desired := desiredOf(
		bond("bond0", "", "eth1"),
		linuxBridge("br0", "eth2", "eth3"),
		vlan("br0.5", "br0", 5),
		absent("bond0.10"),
	)

	first := mustPlan(t, desired, bondedCurrent())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, mustPlan(t, desired, bondedCurrent()))
	}
}

func veth(name, peer string) entities.Interface {
	iface := virtual(name, entities.InterfaceTypeVeth)
	iface.State = ""
	iface.Veth = &entities.VethConfig{Peer: peer}
	return iface
}

func vethPairCurrent() *entities.CurrentState {
	end0 := veth("veth0", "veth1")
	end0.State = entities.InterfaceStateUp
	end1 := veth("veth1", "veth0")
	end1.State = entities.InterfaceStateUp
	end1.MTU = intPtr(1400)
	return entities.NewCurrentState([]entities.Interface{nic("eth1", macEth1), end0, end1})
}

func TestStateReconciler_VethPair(t *testing.T) {
	t.Run("양쪽 끝을 모두 선언하면 한 번만 생성", func(t *testing.T) {
		end1 := veth("veth1", "veth0")
		end1.MTU = intPtr(1400)

		plan, err := buildPlan(desiredOf(veth("veth0", "veth1"), end1), threeNics())

		require.NoError(t, err)
		require.Equal(t, []string{"create veth veth0", "update veth1 (state, mtu)"}, plan.Strings())
		assert.Equal(t, []entities.FieldChange{
			{Field: entities.FieldState, Current: "down", Desired: "up"},
			{Field: entities.FieldMTU, Current: "", Desired: "1400"},
		}, plan.Operations[1].Changes)
		assert.Equal(t, entities.InterfaceTypeVeth, plan.Operations[1].Type)
	})

	t.Run("수렴된 veth 쌍은 빈 계획", func(t *testing.T) {
		end1 := veth("veth1", "veth0")
		end1.MTU = intPtr(1400)

		ops := mustPlan(t, desiredOf(veth("veth0", "veth1"), end1), vethPairCurrent())

		assert.Empty(t, ops)
	})

	t.Run("한쪽을 삭제하면 반대편도 함께 삭제", func(t *testing.T) {
		ops := mustPlan(t, desiredOf(absent("veth1")), vethPairCurrent())

		assert.Equal(t, []string{"remove veth veth0"}, ops)
	})

	t.Run("양쪽 모두 absent여도 삭제는 한 번", func(t *testing.T) {
		ops := mustPlan(t, desiredOf(absent("veth0"), absent("veth1")), vethPairCurrent())

		assert.Equal(t, []string{"remove veth veth0"}, ops)
	})

	t.Run("peer 변경으로 재생성하면 기존 반대편은 다시 만들지 않음", func(t *testing.T) {
		ops := mustPlan(t, desiredOf(veth("veth0", "veth2")), vethPairCurrent())

		assert.Equal(t, []string{"remove veth veth0", "create veth veth0"}, ops)
	})
}

func TestStateReconciler_VethPairValidation(t *testing.T) {
	tests := []struct {
		name    string
		desired *entities.DesiredState
		current *entities.CurrentState
	}{
		{
			name:    "남겨 둘 반대편을 가진 veth 삭제",
			desired: desiredOf(absent("veth0"), veth("veth1", "veth0")),
			current: vethPairCurrent(),
		},
		{
			name:    "이미 존재하는 인터페이스를 peer로 지정",
			desired: desiredOf(veth("veth9", "eth1")),
			current: threeNics(),
		},
		{
			name:    "양쪽 끝의 peer가 서로 다름",
			desired: desiredOf(veth("veth0", "veth1"), veth("veth1", "veth5")),
			current: threeNics(),
		},
		{
			name:    "재생성되는 반대편이 다른 peer를 가리킴",
			desired: desiredOf(veth("veth0", "veth2"), veth("veth1", "veth0")),
			current: vethPairCurrent(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildPlan(tt.desired, tt.current)

			assert.True(t, domainerrors.IsValidationError(err), "unexpected error: %v", err)
		})
	}
}
