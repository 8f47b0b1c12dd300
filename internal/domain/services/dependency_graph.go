package services

import (
	"fmt"
	"sort"

	"netstate-agent/internal/domain/entities"
	domainerrors "netstate-agent/internal/domain/errors"
)

// EdgeKind는 의존성 관계의 종류입니다
type EdgeKind string

const (
	// EdgePortOf는 포트 -> 컨트롤러 관계입니다
	EdgePortOf EdgeKind = "port-of"
	// EdgeBaseOf는 자식 -> base-iface 관계입니다
	EdgeBaseOf EdgeKind = "base-of"
)

// DependencyEdge는 (자식, 부모, 관계 종류)입니다.
// 부모는 자식보다 나중에(port-of) 또는 먼저(base-of) 생성되어야 합니다.
type DependencyEdge struct {
	Child  string
	Parent string
	Kind   EdgeKind
}

func (e DependencyEdge) String() string {
	return fmt.Sprintf("%s %s %s", e.Child, e.Kind, e.Parent)
}

// DependencyGraph는 desired state 인터페이스 사이의 방향성 비순환 그래프입니다
type DependencyGraph struct {
	// 이름 -> 문서 순서. 참조로만 등장한 인터페이스는 문서 뒤에 위치합니다.
	vertices map[string]int
	// 이름 -> 먼저 처리되어야 하는 이름들
	dependencies map[string]map[string]struct{}
	edges        []DependencyEdge
	controllerOf map[string]string
	baseOf       map[string]string
}

// DependencyGrapher는 정규화된 desired state로부터 의존성 그래프를 만듭니다
type DependencyGrapher struct{}

// NewDependencyGrapher는 새로운 DependencyGrapher를 생성합니다
func NewDependencyGrapher() *DependencyGrapher {
	return &DependencyGrapher{}
}

// BuildGraph는 port-of와 base-of 관계로 그래프를 만들고 순환 여부를 검사합니다.
// 같은 포트를 두 컨트롤러가 요구하면 ConflictError를 반환합니다.
func (g *DependencyGrapher) BuildGraph(canonical *entities.DesiredState) (*DependencyGraph, error) {
	graph := &DependencyGraph{
		vertices:     make(map[string]int),
		dependencies: make(map[string]map[string]struct{}),
		controllerOf: make(map[string]string),
		baseOf:       make(map[string]string),
	}

	for idx := range canonical.Interfaces {
		graph.addVertex(canonical.Interfaces[idx].Name, idx)
	}
	tail := len(canonical.Interfaces)

	for idx := range canonical.Interfaces {
		iface := &canonical.Interfaces[idx]
		if iface.IsAbsent() {
			continue
		}

		if ports, specified := iface.ControllerPorts(); specified {
			for _, port := range ports {
				if err := graph.claimPort(port, iface.Name, tail); err != nil {
					return nil, err
				}
			}
		}
		if iface.Controller != "" {
			if err := graph.claimPort(iface.Name, iface.Controller, tail); err != nil {
				return nil, err
			}
		}
		if base := iface.BaseIface(); base != "" {
			graph.addVertex(base, tail)
			graph.baseOf[iface.Name] = base
			graph.addEdge(DependencyEdge{Child: iface.Name, Parent: base, Kind: EdgeBaseOf})
		}
	}

	if _, err := graph.TopologicalSort(); err != nil {
		return nil, err
	}
	return graph, nil
}

func (d *DependencyGraph) addVertex(name string, order int) {
	if _, ok := d.vertices[name]; ok {
		return
	}
	d.vertices[name] = order
	d.dependencies[name] = make(map[string]struct{})
}

func (d *DependencyGraph) claimPort(port, controller string, order int) error {
	if prev, ok := d.controllerOf[port]; ok {
		if prev == controller {
			return nil
		}
		return domainerrors.NewConflictError(
			fmt.Sprintf("port is claimed by both %q and %q", prev, controller)).
			WithInterface(controller).WithField("port", port)
	}
	d.addVertex(port, order)
	d.addVertex(controller, order)
	d.controllerOf[port] = controller
	d.addEdge(DependencyEdge{Child: port, Parent: controller, Kind: EdgePortOf})
	return nil
}

func (d *DependencyGraph) addEdge(edge DependencyEdge) {
	d.edges = append(d.edges, edge)
	switch edge.Kind {
	case EdgePortOf:
		// 포트가 컨트롤러보다 먼저 준비되어야 합니다
		d.dependencies[edge.Parent][edge.Child] = struct{}{}
	case EdgeBaseOf:
		d.dependencies[edge.Child][edge.Parent] = struct{}{}
	}
}

// Edges는 추가된 순서대로 간선 목록을 반환합니다
func (d *DependencyGraph) Edges() []DependencyEdge {
	return append([]DependencyEdge{}, d.edges...)
}

// ControllerOf는 이번 배치에서 포트를 요구한 컨트롤러를 반환합니다
func (d *DependencyGraph) ControllerOf(port string) (string, bool) {
	c, ok := d.controllerOf[port]
	return c, ok
}

// BaseOf는 자식 인터페이스의 base-iface를 반환합니다
func (d *DependencyGraph) BaseOf(child string) (string, bool) {
	b, ok := d.baseOf[child]
	return b, ok
}

// Has는 그래프에 해당 인터페이스가 있는지 확인합니다
func (d *DependencyGraph) Has(name string) bool {
	_, ok := d.vertices[name]
	return ok
}

// TopologicalSort는 의존 대상이 항상 먼저 오는 순서를 반환합니다.
// 동시에 가능한 인터페이스는 문서 순서, 그 다음 이름 순으로 정렬되어 결과가 결정적입니다.
func (d *DependencyGraph) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(d.vertices))
	dependents := make(map[string][]string, len(d.vertices))
	for name, deps := range d.dependencies {
		inDegree[name] = len(deps)
		for dep := range deps {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]string, 0, len(d.vertices))
	for len(ready) > 0 {
		d.sortByOrder(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, dependent := range dependents[next] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) != len(d.vertices) {
		return nil, domainerrors.NewCycleError(d.findCycle(inDegree))
	}
	return order, nil
}

func (d *DependencyGraph) sortByOrder(names []string) {
	sort.Slice(names, func(i, j int) bool {
		oi, oj := d.vertices[names[i]], d.vertices[names[j]]
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
}

// findCycle은 정렬되지 못한 정점들 중에서 순환 하나를 찾아 경로를 반환합니다
func (d *DependencyGraph) findCycle(inDegree map[string]int) []string {
	var remaining []string
	for name, degree := range inDegree {
		if degree > 0 {
			remaining = append(remaining, name)
		}
	}
	d.sortByOrder(remaining)

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(remaining))
	var stack []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		state[name] = visiting
		stack = append(stack, name)

		deps := make([]string, 0, len(d.dependencies[name]))
		for dep := range d.dependencies[name] {
			deps = append(deps, dep)
		}
		d.sortByOrder(deps)

		for _, dep := range deps {
			switch state[dep] {
			case visiting:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == dep {
						cycle = append(append([]string{}, stack[i:]...), dep)
						return true
					}
				}
			case unvisited:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return false
	}

	for _, name := range remaining {
		if state[name] == unvisited && visit(name) {
			return cycle
		}
	}
	return remaining
}
