package services

import (
	"testing"

	"netstate-agent/internal/domain/entities"
	domainerrors "netstate-agent/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyGrapher_TopologicalOrder(t *testing.T) {
	canonical := desiredOf(
		vlan("bond0.10", "bond0", 10),
		bond("bond0", "active-backup", "eth2", "eth1"),
		nic("eth1", ""),
	)

	graph, err := NewDependencyGrapher().BuildGraph(canonical)
	require.NoError(t, err)

	order, err := graph.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []string{"eth1", "eth2", "bond0", "bond0.10"}, order)

	assert.ElementsMatch(t, []DependencyEdge{
		{Child: "bond0.10", Parent: "bond0", Kind: EdgeBaseOf},
		{Child: "eth2", Parent: "bond0", Kind: EdgePortOf},
		{Child: "eth1", Parent: "bond0", Kind: EdgePortOf},
	}, graph.Edges())

	controller, ok := graph.ControllerOf("eth1")
	assert.True(t, ok)
	assert.Equal(t, "bond0", controller)
	base, ok := graph.BaseOf("bond0.10")
	assert.True(t, ok)
	assert.Equal(t, "bond0", base)
	assert.True(t, graph.Has("eth2"))
}

func TestDependencyGrapher_DeterministicTieBreak(t *testing.T) {
	canonical := desiredOf(
		virtual("dummy2", entities.InterfaceTypeDummy),
		bond("bond0", "active-backup", "eth9", "eth3"),
		virtual("dummy1", entities.InterfaceTypeDummy),
	)

	for i := 0; i < 5; i++ {
		graph, err := NewDependencyGrapher().BuildGraph(canonical)
		require.NoError(t, err)
		order, err := graph.TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"dummy2", "dummy1", "eth3", "eth9", "bond0"}, order)
	}
}

func TestDependencyGrapher_PortClaimedTwice(t *testing.T) {
	canonical := desiredOf(
		bond("bond0", "active-backup", "eth1"),
		linuxBridge("br0", "eth1"),
	)

	_, err := NewDependencyGrapher().BuildGraph(canonical)

	domainErr := requireDomainError(t, err)
	assert.Equal(t, domainerrors.ErrorTypeConflict, domainErr.Type)
	assert.Equal(t, "br0", domainErr.Interface)
	assert.Equal(t, "eth1", domainErr.Token)
}

func TestDependencyGrapher_ControllerField(t *testing.T) {
	t.Run("포트 목록과 같은 컨트롤러", func(t *testing.T) {
		canonical := desiredOf(
			withController(nic("eth1", ""), "bond0"),
			bond("bond0", "active-backup", "eth1"),
		)

		_, err := NewDependencyGrapher().BuildGraph(canonical)

		assert.NoError(t, err)
	})

	t.Run("포트 목록과 다른 컨트롤러", func(t *testing.T) {
		canonical := desiredOf(
			withController(nic("eth1", ""), "br0"),
			bond("bond0", "active-backup", "eth1"),
		)

		_, err := NewDependencyGrapher().BuildGraph(canonical)

		assert.True(t, domainerrors.IsConflictError(err))
	})
}

func TestDependencyGrapher_AbsentEntriesAddNoEdges(t *testing.T) {
	removed := bond("bond0", "active-backup", "eth1")
	removed.State = entities.InterfaceStateAbsent
	canonical := desiredOf(removed, linuxBridge("br0", "eth1"))

	graph, err := NewDependencyGrapher().BuildGraph(canonical)

	require.NoError(t, err)
	assert.Len(t, graph.Edges(), 1)
}

func TestDependencyGrapher_Cycle(t *testing.T) {
	tests := []struct {
		name      string
		desired   *entities.DesiredState
		wantCycle string
	}{
		{
			name:      "두 vlan이 서로를 base로 사용",
			desired:   desiredOf(vlan("a", "b", 10), vlan("b", "a", 20)),
			wantCycle: "a -> b -> a",
		},
		{
			name:      "자기 자신을 포트로 사용",
			desired:   desiredOf(bond("bond0", "active-backup", "bond0")),
			wantCycle: "bond0 -> bond0",
		},
		{
			name: "컨트롤러와 base를 거치는 순환",
			desired: desiredOf(
				linuxBridge("br0", "br0.10"),
				vlan("br0.10", "br0", 10),
			),
			wantCycle: "br0 -> br0.10 -> br0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDependencyGrapher().BuildGraph(tt.desired)

			require.Error(t, err)
			assert.True(t, domainerrors.IsCycleError(err))
			assert.Contains(t, err.Error(), tt.wantCycle)
		})
	}
}
