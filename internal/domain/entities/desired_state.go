package entities

// DesiredState는 사용자가 선언한 목표 네트워크 상태 문서입니다
type DesiredState struct {
	Interfaces []Interface `yaml:"interfaces"`
}

// Clone은 깊은 복사본을 반환합니다
func (s *DesiredState) Clone() *DesiredState {
	out := &DesiredState{Interfaces: make([]Interface, 0, len(s.Interfaces))}
	for i := range s.Interfaces {
		out.Interfaces = append(out.Interfaces, s.Interfaces[i].Clone())
	}
	return out
}

// Find는 이름이 일치하는 첫 항목을 반환합니다
func (s *DesiredState) Find(name string) (*Interface, bool) {
	for i := range s.Interfaces {
		if s.Interfaces[i].Name == name {
			return &s.Interfaces[i], true
		}
	}
	return nil, false
}

// Names는 문서 순서대로 항목 이름을 반환합니다
func (s *DesiredState) Names() []string {
	names := make([]string, 0, len(s.Interfaces))
	for i := range s.Interfaces {
		names = append(names, s.Interfaces[i].Name)
	}
	return names
}
