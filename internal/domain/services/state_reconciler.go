package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"netstate-agent/internal/domain/entities"
	domainerrors "netstate-agent/internal/domain/errors"
)

// StateReconciler는 정규화된 desired state와 현재 상태를 비교하여 적용 계획을 만듭니다.
// 같은 입력에 대해 항상 같은 계획을 반환하며, 수렴된 상태에서는 빈 계획을 반환합니다.
type StateReconciler struct{}

// NewStateReconciler는 새로운 StateReconciler를 생성합니다
func NewStateReconciler() *StateReconciler {
	return &StateReconciler{}
}

// Reconcile은 detach, remove, create/update, attach 순서의 적용 계획을 반환합니다.
// order는 DependencyGraph.TopologicalSort의 결과입니다.
func (r *StateReconciler) Reconcile(canonical *entities.DesiredState, current *entities.CurrentState, order []string) (*entities.ApplyPlan, error) {
	p := newPlanner(canonical, current, order)

	steps := []func() error{
		p.markRemovals,
		p.markRecreations,
		p.cascadeToChildren,
		p.validatePorts,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	p.planDetach()
	p.planRemove()
	p.planDown()
	if err := p.planCreateUpdate(); err != nil {
		return nil, err
	}
	p.planAttach()

	return &entities.ApplyPlan{Operations: p.ops}, nil
}

type planner struct {
	current   *entities.CurrentState
	desired   map[string]*entities.Interface
	order     []string
	position  map[string]int
	removed   map[string]struct{}
	recreated map[string]struct{}
	// 삭제 대신 down으로 내리는 물리 인터페이스
	downs []string
	// 포트 -> 이번 배치에서 요구한 컨트롤러
	claims map[string]string
	// veth 끝 -> 그 끝을 함께 만드는 반대편 veth
	pairedBy map[string]string
	ops      []entities.Operation
}

func newPlanner(canonical *entities.DesiredState, current *entities.CurrentState, order []string) *planner {
	p := &planner{
		current:   current,
		desired:   make(map[string]*entities.Interface, len(canonical.Interfaces)),
		order:     order,
		position:  make(map[string]int, len(order)),
		removed:   make(map[string]struct{}),
		recreated: make(map[string]struct{}),
		claims:    make(map[string]string),
		pairedBy:  make(map[string]string),
	}
	for idx := range canonical.Interfaces {
		iface := &canonical.Interfaces[idx]
		p.desired[iface.Name] = iface
	}
	for idx, name := range order {
		p.position[name] = idx
	}
	for _, iface := range p.desiredInOrder() {
		if iface.IsAbsent() {
			continue
		}
		if ports, specified := iface.ControllerPorts(); specified {
			for _, port := range ports {
				p.claims[port] = iface.Name
			}
		}
		if iface.Controller != "" {
			p.claims[iface.Name] = iface.Controller
		}
	}
	return p
}

// desiredInOrder는 desired 항목을 위상 정렬 순서로 반환합니다
func (p *planner) desiredInOrder() []*entities.Interface {
	out := make([]*entities.Interface, 0, len(p.desired))
	for _, name := range p.sorted(keys(p.desired)) {
		out = append(out, p.desired[name])
	}
	return out
}

// sorted는 이름을 위상 정렬 위치, 그 다음 이름 순으로 정렬합니다
func (p *planner) sorted(names []string) []string {
	sort.Slice(names, func(i, j int) bool {
		pi, iok := p.position[names[i]]
		pj, jok := p.position[names[j]]
		switch {
		case iok && jok && pi != pj:
			return pi < pj
		case iok != jok:
			return iok
		}
		return names[i] < names[j]
	})
	return names
}

func (p *planner) isRemoved(name string) bool {
	_, ok := p.removed[name]
	return ok
}

func (p *planner) isRecreated(name string) bool {
	_, ok := p.recreated[name]
	return ok
}

func (p *planner) markRemovals() error {
	for _, iface := range p.desiredInOrder() {
		if !iface.IsAbsent() {
			continue
		}
		live, ok := p.current.Get(iface.Name)
		if !ok {
			continue
		}
		if live.Type.IsVirtual() {
			p.removed[iface.Name] = struct{}{}
			continue
		}
		if live.EffectiveState() != entities.InterfaceStateDown {
			p.downs = append(p.downs, iface.Name)
		}
	}
	return nil
}

func (p *planner) markRecreations() error {
	for _, iface := range p.desiredInOrder() {
		if iface.IsAbsent() {
			continue
		}
		live, ok := p.current.Get(iface.Name)
		if !ok {
			continue
		}
		recreate, err := needsRecreate(&live, iface)
		if err != nil {
			return err
		}
		if recreate {
			p.recreated[iface.Name] = struct{}{}
		}
	}
	return nil
}

// cascadeToChildren은 삭제되는 base-iface의 자식을 삭제하고,
// 재생성되는 base-iface의 자식을 재생성 대상으로 표시합니다.
// veth는 한쪽을 지우면 커널이 반대편도 지우므로 반대편을 같은 방식으로 표시합니다.
func (p *planner) cascadeToChildren() error {
	for changed := true; changed; {
		changed = false
		for _, name := range p.current.Names() {
			marked, err := p.cascadeToPeer(name)
			if err != nil {
				return err
			}
			changed = changed || marked
		}
		for _, name := range p.current.Names() {
			if p.isRemoved(name) {
				continue
			}
			live, _ := p.current.Get(name)
			base := live.BaseIface()
			if want, ok := p.desired[name]; ok && !want.IsAbsent() && want.BaseIface() != "" {
				base = want.BaseIface()
			}
			if base == "" {
				continue
			}
			switch {
			case p.isRemoved(base) && !p.isRecreated(base):
				if want, ok := p.desired[name]; ok && !want.IsAbsent() {
					return domainerrors.NewValidationError("base interface is being removed", nil).
						WithInterface(name).WithField("base-iface", base)
				}
				p.removed[name] = struct{}{}
				changed = true
			case p.isRecreated(base) && !p.isRecreated(name):
				p.recreated[name] = struct{}{}
				changed = true
			}
		}
	}
	return nil
}

// cascadeToPeer는 삭제되거나 재생성되는 veth의 현재 반대편을 표시합니다.
// desired에 남아 있는 반대편은 재생성하고 그 외에는 삭제합니다.
func (p *planner) cascadeToPeer(name string) (bool, error) {
	live, _ := p.current.Get(name)
	peer := livePeer(&live)
	if peer == "" || !p.current.Has(peer) || p.isRemoved(peer) || p.isRecreated(peer) {
		return false, nil
	}
	if !p.isRemoved(name) && !p.isRecreated(name) {
		return false, nil
	}

	want, ok := p.desired[peer]
	switch {
	case ok && !want.IsAbsent() && p.isRemoved(name):
		return false, domainerrors.NewValidationError("veth peer is being removed", nil).
			WithInterface(peer).WithField("veth.peer", name)
	case ok && !want.IsAbsent():
		p.recreated[peer] = struct{}{}
	default:
		p.removed[peer] = struct{}{}
	}
	return true, nil
}

func (p *planner) validatePorts() error {
	for _, port := range p.sorted(keys(p.claims)) {
		controller := p.claims[port]
		if want, ok := p.desired[port]; ok && want.IsAbsent() {
			return domainerrors.NewValidationError("port is marked absent", nil).
				WithInterface(controller).WithField("port", port)
		}
		if p.isRemoved(port) {
			return domainerrors.NewValidationError("port is being removed", nil).
				WithInterface(controller).WithField("port", port)
		}
		if t := p.typeOf(controller); t != entities.InterfaceTypeUnknown && !t.IsController() {
			return domainerrors.NewValidationError(
				fmt.Sprintf("%s interface cannot hold ports", t), nil).
				WithInterface(port).WithField("controller", controller)
		}
	}
	return nil
}

// planDetach는 제거되거나 목록에서 빠지거나 다른 컨트롤러로 옮겨지는 포트를 분리합니다
func (p *planner) planDetach() {
	type detach struct{ port, controller string }
	var detaches []detach

	for _, name := range p.current.Names() {
		live, _ := p.current.Get(name)
		controller := live.Controller
		if controller == "" || p.isRemoved(name) || p.isRecreated(name) {
			continue
		}
		switch {
		case p.isRemoved(controller) || p.isRecreated(controller):
		case p.claims[name] != "" && p.claims[name] != controller:
		default:
			want, ok := p.desired[controller]
			if !ok || want.IsAbsent() {
				continue
			}
			ports, specified := want.ControllerPorts()
			if !specified || contains(ports, name) {
				continue
			}
		}
		detaches = append(detaches, detach{port: name, controller: controller})
	}

	controllers := make([]string, 0, len(detaches))
	seen := make(map[string]struct{})
	for _, d := range detaches {
		if _, ok := seen[d.controller]; !ok {
			seen[d.controller] = struct{}{}
			controllers = append(controllers, d.controller)
		}
	}
	for _, controller := range p.sorted(controllers) {
		ctrl, _ := p.current.Get(controller)
		for _, d := range detaches {
			if d.controller != controller {
				continue
			}
			port, _ := p.current.Get(d.port)
			p.ops = append(p.ops, entities.Operation{
				Kind:           entities.OperationDetach,
				Name:           d.port,
				Type:           port.Type,
				Controller:     controller,
				ControllerType: ctrl.Type,
			})
		}
	}
}

// planRemove는 자식을 base-iface보다 먼저 삭제합니다
func (p *planner) planRemove() {
	targets := make(map[string]struct{}, len(p.removed)+len(p.recreated))
	for name := range p.removed {
		targets[name] = struct{}{}
	}
	for name := range p.recreated {
		if p.current.Has(name) {
			targets[name] = struct{}{}
		}
	}

	emitted := make(map[string]struct{}, len(targets))
	var visit func(name string)
	visit = func(name string) {
		if _, done := emitted[name]; done {
			return
		}
		emitted[name] = struct{}{}
		live, _ := p.current.Get(name)
		owners := []string{name}
		// 반대편 veth는 이 삭제와 함께 사라지므로 따로 삭제하지 않습니다
		if peer := livePeer(&live); peer != "" {
			if _, ok := targets[peer]; ok {
				if _, done := emitted[peer]; !done {
					emitted[peer] = struct{}{}
					owners = append(owners, peer)
				}
			}
		}
		for _, owner := range owners {
			for _, child := range p.current.ChildrenOf(owner) {
				if _, ok := targets[child]; ok {
					visit(child)
				}
			}
		}
		p.ops = append(p.ops, entities.Operation{
			Kind:      entities.OperationRemove,
			Name:      name,
			Type:      live.Type,
			Interface: &live,
		})
	}

	names := keys(targets)
	sort.Strings(names)
	for _, name := range names {
		visit(name)
	}
}

// planDown은 삭제할 수 없는 물리 인터페이스를 down 상태로 내립니다
func (p *planner) planDown() {
	for _, name := range p.downs {
		live, _ := p.current.Get(name)
		want := p.desired[name].Clone()
		want.Type = live.Type
		want.State = entities.InterfaceStateDown
		p.ops = append(p.ops, entities.Operation{
			Kind:      entities.OperationUpdate,
			Name:      name,
			Type:      live.Type,
			Interface: &want,
			Changes: []entities.FieldChange{{
				Field:   entities.FieldState,
				Current: string(live.EffectiveState()),
				Desired: string(entities.InterfaceStateDown),
			}},
		})
	}
}

func (p *planner) planCreateUpdate() error {
	processed := make(map[string]struct{})

	var process func(name string) error
	process = func(name string) error {
		if _, done := processed[name]; done {
			return nil
		}
		processed[name] = struct{}{}

		want, inDesired := p.desired[name]
		live, isLive := p.current.Get(name)
		switch {
		case inDesired && want.IsAbsent():
		case !inDesired && p.isRecreated(name):
			merged := mergeForCreate(&live, nil)
			if err := p.create(&merged); err != nil {
				return err
			}
		case !inDesired:
		case !isLive:
			if want.Type == entities.InterfaceTypeEthernet {
				return domainerrors.NewValidationError("ethernet interface does not exist and cannot be created", nil).
					WithInterface(name).WithField("type", string(want.Type))
			}
			if err := p.checkBase(want); err != nil {
				return err
			}
			created := want.Clone()
			if err := p.create(&created); err != nil {
				return err
			}
		case p.isRecreated(name):
			if err := p.checkBase(want); err != nil {
				return err
			}
			merged := mergeForCreate(&live, want)
			if err := p.create(&merged); err != nil {
				return err
			}
		default:
			if changes := diffInterface(&live, want); len(changes) > 0 {
				updated := want.Clone()
				p.ops = append(p.ops, entities.Operation{
					Kind:      entities.OperationUpdate,
					Name:      name,
					Type:      live.Type,
					Interface: &updated,
					Changes:   changes,
				})
			}
		}

		// 그래프에 없는 재생성 자식은 base-iface 바로 뒤에 생성합니다
		for _, child := range p.current.ChildrenOf(name) {
			if _, inGraph := p.position[child]; !inGraph && p.isRecreated(child) {
				if err := process(child); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, name := range p.order {
		if err := process(name); err != nil {
			return err
		}
	}
	for _, name := range p.sorted(keys(p.desired)) {
		if err := process(name); err != nil {
			return err
		}
	}
	// desired에 없는 재생성 대상 (반대편 veth)
	for _, name := range p.sorted(keys(p.recreated)) {
		if err := process(name); err != nil {
			return err
		}
	}
	return nil
}

// create는 생성 작업을 추가합니다. 반대편 veth 생성으로 이미 만들어지는 끝은
// 생성 대신 자신의 속성만 설정하는 업데이트로 계획합니다.
func (p *planner) create(iface *entities.Interface) error {
	if partner, ok := p.pairedBy[iface.Name]; ok {
		if peer := iface.VethPeer(); peer != "" && peer != partner {
			return domainerrors.NewValidationError("veth peer does not match the other end", nil).
				WithInterface(iface.Name).WithField("veth.peer", peer)
		}
		// 반대편과 함께 생성된 끝은 down 상태입니다
		fresh := entities.Interface{BaseInterface: entities.BaseInterface{
			Name:  iface.Name,
			Type:  entities.InterfaceTypeVeth,
			State: entities.InterfaceStateDown,
		}}
		if changes := diffInterface(&fresh, iface); len(changes) > 0 {
			updated := iface.Clone()
			p.ops = append(p.ops, entities.Operation{
				Kind:      entities.OperationUpdate,
				Name:      iface.Name,
				Type:      entities.InterfaceTypeVeth,
				Interface: &updated,
				Changes:   changes,
			})
		}
		return nil
	}

	if peer := iface.VethPeer(); peer != "" {
		if p.current.Has(peer) && !p.isRemoved(peer) && !p.isRecreated(peer) {
			return domainerrors.NewValidationError("veth peer already exists", nil).
				WithInterface(iface.Name).WithField("veth.peer", peer)
		}
		if want, ok := p.desired[peer]; ok && !want.IsAbsent() {
			if back := want.VethPeer(); back != "" && back != iface.Name {
				return domainerrors.NewValidationError("veth peer does not match the other end", nil).
					WithInterface(peer).WithField("veth.peer", back)
			}
		}
		p.pairedBy[peer] = iface.Name
	}
	p.ops = append(p.ops, createOp(iface))
	return nil
}

func (p *planner) checkBase(want *entities.Interface) error {
	base := want.BaseIface()
	if base == "" {
		return nil
	}
	if p.isRemoved(base) && !p.isRecreated(base) {
		return domainerrors.NewValidationError("base interface is being removed", nil).
			WithInterface(want.Name).WithField("base-iface", base)
	}
	if b, ok := p.desired[base]; ok && b.IsAbsent() {
		return domainerrors.NewValidationError("base interface is marked absent", nil).
			WithInterface(want.Name).WithField("base-iface", base)
	}
	return nil
}

// planAttach는 생성 이후에 포트를 컨트롤러에 연결합니다
func (p *planner) planAttach() {
	type attach struct{ port, controller string }
	var attaches []attach
	seen := make(map[string]struct{})

	add := func(port, controller string) {
		if _, dup := seen[port]; dup {
			return
		}
		live, isLive := p.current.Get(port)
		if isLive && live.Controller == controller && !p.isRecreated(controller) && !p.isRecreated(port) {
			return
		}
		seen[port] = struct{}{}
		attaches = append(attaches, attach{port: port, controller: controller})
	}

	var controllers []string
	for _, iface := range p.desiredInOrder() {
		if !iface.IsAbsent() && iface.Type.IsController() {
			controllers = append(controllers, iface.Name)
		}
	}
	for name := range p.recreated {
		if _, ok := p.desired[name]; !ok {
			if live, _ := p.current.Get(name); live.Type.IsController() {
				controllers = append(controllers, name)
			}
		}
	}

	for _, controller := range p.sorted(controllers) {
		var ports []string
		specified := false
		if want, ok := p.desired[controller]; ok {
			ports, specified = want.ControllerPorts()
		}
		if !specified {
			for _, port := range p.current.PortsOf(controller) {
				if !p.isRemoved(port) && (p.claims[port] == "" || p.claims[port] == controller) {
					ports = append(ports, port)
				}
			}
		}
		for _, port := range ports {
			add(port, controller)
		}
	}
	for _, iface := range p.desiredInOrder() {
		if !iface.IsAbsent() && iface.Controller != "" {
			add(iface.Name, iface.Controller)
		}
	}
	// 재생성된 포트는 기존 컨트롤러에 다시 연결합니다
	for _, name := range p.current.Names() {
		live, _ := p.current.Get(name)
		if p.isRecreated(name) && live.Controller != "" && p.claims[name] == "" && p.keepsPort(live.Controller, name) {
			add(name, live.Controller)
		}
	}

	for _, a := range attaches {
		p.ops = append(p.ops, entities.Operation{
			Kind:           entities.OperationAttach,
			Name:           a.port,
			Type:           p.typeOf(a.port),
			Controller:     a.controller,
			ControllerType: p.typeOf(a.controller),
		})
	}
}

// keepsPort는 컨트롤러가 이번 배치 이후에도 해당 포트를 유지하는지 확인합니다
func (p *planner) keepsPort(controller, port string) bool {
	if p.isRemoved(controller) {
		return false
	}
	want, ok := p.desired[controller]
	if !ok {
		return true
	}
	if want.IsAbsent() {
		return false
	}
	ports, specified := want.ControllerPorts()
	return !specified || contains(ports, port)
}

func (p *planner) typeOf(name string) entities.InterfaceType {
	if want, ok := p.desired[name]; ok && want.Type != entities.InterfaceTypeUnknown {
		return want.Type
	}
	if live, ok := p.current.Get(name); ok {
		return live.Type
	}
	return entities.InterfaceTypeUnknown
}

func createOp(iface *entities.Interface) entities.Operation {
	return entities.Operation{
		Kind:      entities.OperationCreate,
		Name:      iface.Name,
		Type:      iface.Type,
		Interface: iface,
	}
}

// mergeForCreate는 재생성할 인터페이스의 정의를 현재 정의 위에 desired 값을 덮어써서 만듭니다
func mergeForCreate(live, want *entities.Interface) entities.Interface {
	if want != nil && want.Type != live.Type {
		return want.Clone()
	}
	out := live.Clone()
	out.MacAddress = ""
	out.PermanentMacAddress = ""
	out.Controller = ""
	if want == nil {
		return out
	}
	overlay := want.Clone()
	if overlay.ProfileName != "" {
		out.ProfileName = overlay.ProfileName
	}
	out.State = overlay.EffectiveState()
	if overlay.MacAddress != "" {
		out.MacAddress = overlay.MacAddress
	}
	if overlay.MTU != nil {
		out.MTU = overlay.MTU
	}
	if overlay.Bond != nil {
		out.Bond = overlay.Bond
	}
	if overlay.Bridge != nil {
		out.Bridge = overlay.Bridge
	}
	if overlay.Vrf != nil {
		out.Vrf = overlay.Vrf
	}
	if overlay.Vlan != nil {
		out.Vlan = overlay.Vlan
	}
	if overlay.Vxlan != nil {
		out.Vxlan = overlay.Vxlan
	}
	if overlay.MacVlan != nil {
		out.MacVlan = overlay.MacVlan
	}
	if overlay.MacVtap != nil {
		out.MacVtap = overlay.MacVtap
	}
	if overlay.MacSec != nil {
		out.MacSec = overlay.MacSec
	}
	if overlay.Veth != nil {
		out.Veth = overlay.Veth
	}
	return out
}

// diffInterface는 desired 항목이 지정한 필드 중 현재 값과 다른 것만 반환합니다
func diffInterface(live, want *entities.Interface) []entities.FieldChange {
	var changes []entities.FieldChange

	if ws, ls := want.EffectiveState(), live.EffectiveState(); ws != ls {
		changes = append(changes, entities.FieldChange{Field: entities.FieldState, Current: string(ls), Desired: string(ws)})
	}
	if want.MTU != nil && (live.MTU == nil || *live.MTU != *want.MTU) {
		cur := ""
		if live.MTU != nil {
			cur = strconv.Itoa(*live.MTU)
		}
		changes = append(changes, entities.FieldChange{Field: entities.FieldMTU, Current: cur, Desired: strconv.Itoa(*want.MTU)})
	}
	if want.MacAddress != "" && !sameMac(live.MacAddress, want.MacAddress) {
		changes = append(changes, entities.FieldChange{Field: entities.FieldMacAddress, Current: live.MacAddress, Desired: want.MacAddress})
	}
	if want.ProfileName != "" && want.ProfileName != live.ProfileName {
		changes = append(changes, entities.FieldChange{Field: entities.FieldProfileName, Current: live.ProfileName, Desired: want.ProfileName})
	}
	return changes
}

// needsRecreate는 커널에서 변경할 수 없는 필드가 바뀌었는지 확인합니다
func needsRecreate(live, want *entities.Interface) (bool, error) {
	if want.Type != live.Type {
		if !live.Type.IsVirtual() || !want.Type.IsVirtual() {
			return false, domainerrors.NewValidationError(
				fmt.Sprintf("cannot change type of %s interface to %s", live.Type, want.Type), nil).
				WithInterface(want.Name).WithField("type", string(want.Type))
		}
		return true, nil
	}

	switch want.Type {
	case entities.InterfaceTypeBond:
		if want.Bond != nil && live.Bond != nil && want.Bond.Mode != "" && want.Bond.Mode != live.Bond.Mode {
			return true, nil
		}
	case entities.InterfaceTypeVrf:
		if want.Vrf != nil && live.Vrf != nil && differsPtr(want.Vrf.RouteTableID, live.Vrf.RouteTableID) {
			return true, nil
		}
	case entities.InterfaceTypeVlan:
		if want.Vlan != nil && live.Vlan != nil {
			return differsStr(want.Vlan.BaseIface, live.Vlan.BaseIface) ||
				differsPtr(want.Vlan.ID, live.Vlan.ID) ||
				(want.Vlan.Protocol != "" && !strings.EqualFold(want.Vlan.Protocol, live.Vlan.Protocol)), nil
		}
	case entities.InterfaceTypeVxlan:
		if want.Vxlan != nil && live.Vxlan != nil {
			return differsStr(want.Vxlan.BaseIface, live.Vxlan.BaseIface) ||
				differsPtr(want.Vxlan.ID, live.Vxlan.ID) ||
				differsStr(want.Vxlan.Remote, live.Vxlan.Remote) ||
				differsStr(want.Vxlan.Local, live.Vxlan.Local) ||
				differsPtr(want.Vxlan.DestinationPort, live.Vxlan.DestinationPort) ||
				differsPtr(want.Vxlan.Learning, live.Vxlan.Learning), nil
		}
	case entities.InterfaceTypeMacVlan:
		if want.MacVlan != nil && live.MacVlan != nil {
			return differsStr(want.MacVlan.BaseIface, live.MacVlan.BaseIface) ||
				differsStr(want.MacVlan.Mode, live.MacVlan.Mode), nil
		}
	case entities.InterfaceTypeMacVtap:
		if want.MacVtap != nil && live.MacVtap != nil {
			return differsStr(want.MacVtap.BaseIface, live.MacVtap.BaseIface) ||
				differsStr(want.MacVtap.Mode, live.MacVtap.Mode), nil
		}
	case entities.InterfaceTypeMacSec:
		if want.MacSec != nil && live.MacSec != nil {
			return differsStr(want.MacSec.BaseIface, live.MacSec.BaseIface), nil
		}
	case entities.InterfaceTypeVeth:
		if want.Veth != nil && live.Veth != nil {
			return differsStr(want.Veth.Peer, live.Veth.Peer), nil
		}
	}
	return false, nil
}

// livePeer는 현재 veth 인터페이스의 반대편 이름을 반환합니다
func livePeer(live *entities.Interface) string {
	if live.Type != entities.InterfaceTypeVeth {
		return ""
	}
	return live.VethPeer()
}

// differsStr은 desired 값이 지정되어 있고 현재 값과 다른지 확인합니다
func differsStr(want, live string) bool {
	return want != "" && want != live
}

func differsPtr[T comparable](want, live *T) bool {
	if want == nil {
		return false
	}
	return live == nil || *want != *live
}

func sameMac(a, b string) bool {
	na, errA := entities.NormalizeMacAddress(a)
	nb, errB := entities.NormalizeMacAddress(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return na == nb
}

func contains(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
