package entities

import (
	"sort"
)

// CurrentState는 시스템에서 관측한 인터페이스 스냅샷입니다.
// 생성 후에는 변경되지 않으며 조회 결과는 항상 복사본입니다.
type CurrentState struct {
	ifaces map[string]Interface
	names  []string
}

// NewCurrentState는 관측된 인터페이스 목록으로 스냅샷을 생성합니다.
// 컨트롤러의 포트 목록은 각 인터페이스의 controller 필드로부터 계산됩니다.
func NewCurrentState(ifaces []Interface) *CurrentState {
	s := &CurrentState{
		ifaces: make(map[string]Interface, len(ifaces)),
		names:  make([]string, 0, len(ifaces)),
	}
	for i := range ifaces {
		iface := ifaces[i].Clone()
		if iface.State == "" {
			iface.State = InterfaceStateUp
		}
		if _, dup := s.ifaces[iface.Name]; !dup {
			s.names = append(s.names, iface.Name)
		}
		s.ifaces[iface.Name] = iface
	}
	sort.Strings(s.names)

	ports := make(map[string][]string)
	for _, name := range s.names {
		if ctrl := s.ifaces[name].Controller; ctrl != "" {
			ports[ctrl] = append(ports[ctrl], name)
		}
	}
	for _, name := range s.names {
		iface := s.ifaces[name]
		if !iface.Type.IsController() {
			continue
		}
		if _, specified := iface.ControllerPorts(); specified {
			continue
		}
		iface.SetControllerPorts(ports[name])
		s.ifaces[name] = iface
	}
	return s
}

// Get은 커널 이름으로 인터페이스를 조회합니다
func (s *CurrentState) Get(name string) (Interface, bool) {
	iface, ok := s.ifaces[name]
	if !ok {
		return Interface{}, false
	}
	return iface.Clone(), true
}

// Has는 해당 커널 이름의 인터페이스가 존재하는지 확인합니다
func (s *CurrentState) Has(name string) bool {
	_, ok := s.ifaces[name]
	return ok
}

// Names는 정렬된 커널 이름 목록을 반환합니다
func (s *CurrentState) Names() []string {
	return append([]string{}, s.names...)
}

// Len은 인터페이스 개수를 반환합니다
func (s *CurrentState) Len() int {
	return len(s.names)
}

// Interfaces는 이름 순으로 정렬된 인터페이스 복사본을 반환합니다
func (s *CurrentState) Interfaces() []Interface {
	out := make([]Interface, 0, len(s.names))
	for _, name := range s.names {
		iface := s.ifaces[name]
		out = append(out, iface.Clone())
	}
	return out
}

// PortsOf는 해당 컨트롤러에 연결된 포트 이름을 정렬하여 반환합니다
func (s *CurrentState) PortsOf(controller string) []string {
	var ports []string
	for _, name := range s.names {
		if s.ifaces[name].Controller == controller {
			ports = append(ports, name)
		}
	}
	return ports
}

// ChildrenOf는 해당 인터페이스를 base-iface로 사용하는 인터페이스 이름을 반환합니다
func (s *CurrentState) ChildrenOf(base string) []string {
	var children []string
	for _, name := range s.names {
		iface := s.ifaces[name]
		if iface.BaseIface() == base {
			children = append(children, name)
		}
	}
	return children
}

// Filter는 주어진 이름만 포함하는 새 스냅샷을 반환합니다.
// 이름이 비어 있으면 전체를 반환합니다.
func (s *CurrentState) Filter(names []string) *CurrentState {
	if len(names) == 0 {
		return s
	}
	var selected []Interface
	for _, name := range names {
		if iface, ok := s.ifaces[name]; ok {
			selected = append(selected, iface)
		}
	}
	return NewCurrentState(selected)
}
