// Package sim is a headless in-memory scene.Host. It keeps every spawned entity
// in a map keyed by handle and lets callers script the aiming ray and text input.
// It backs the command-line editor and every package test.
package sim

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/OCAP2/missioneditor/internal/scene"
	"github.com/OCAP2/missioneditor/pkg/core"
)

// Seats available in every simulated vehicle, in the order FreeSeat hands them out.
var vehicleSeats = []int{-1, 0, 1, 2}

// Entity is a snapshot of a simulated live entity.
type Entity struct {
	Kind       scene.EntityKind
	Model      uint32
	Transform  core.Transform
	Primary    core.Color
	Secondary  core.Color
	Collision  bool
	Frozen     bool
	Alpha      uint8
	Persistent bool
	Blip       bool
	Weapons    map[uint32]int

	// peds
	Vehicle core.Handle
	Seat    int

	// vehicles
	seats map[int]core.Handle
}

type textInput struct {
	open      bool
	initial   string
	text      string
	ready     bool
	cancelled bool
}

// Host is an in-memory scene.Host.
type Host struct {
	mu       sync.Mutex
	next     core.Handle
	entities map[core.Handle]*Entity

	aim RayHit

	failedModels map[uint32]bool
	requests     map[uint32]int
	alphaWrites  map[core.Handle]int

	input        textInput
	viewRestores int
}

// RayHit mirrors scene.RayHit so tests can script the ray without importing scene.
type RayHit = scene.RayHit

var (
	_ scene.Host     = (*Host)(nil)
	_ scene.Pointer  = (*Host)(nil)
	_ scene.Keyboard = (*Host)(nil)
)

// New creates an empty simulated scene.
func New() *Host {
	return &Host{
		entities:     make(map[core.Handle]*Entity),
		failedModels: make(map[uint32]bool),
		requests:     make(map[uint32]int),
		alphaWrites:  make(map[core.Handle]int),
	}
}

// Aim sets what the next Raycast returns.
func (s *Host) Aim(hit RayHit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aim = hit
}

// AimAtPoint points the ray at empty ground.
func (s *Host) AimAtPoint(p core.Position3D) {
	s.Aim(RayHit{Point: p, Hit: true})
}

// AimAtEntity points the ray at a live entity. The aim point is the entity origin.
func (s *Host) AimAtEntity(h core.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hit := RayHit{Handle: h, Hit: true}
	if e, ok := s.entities[h]; ok {
		hit.Point = s.transformLocked(e).Position
	}
	s.aim = hit
}

// FailModel makes every later request for model fail.
func (s *Host) FailModel(model uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedModels[model] = true
}

// Requests returns how many times model was requested.
func (s *Host) Requests(model uint32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[model]
}

// AlphaWrites returns how many times SetAlpha was called on h.
func (s *Host) AlphaWrites(h core.Handle) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alphaWrites[h]
}

// Entity returns a snapshot of a live entity.
func (s *Host) Entity(h core.Handle) (Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[h]
	if !ok {
		return Entity{}, false
	}
	snap := *e
	snap.Transform = s.transformLocked(e)
	snap.Weapons = make(map[uint32]int, len(e.Weapons))
	for k, v := range e.Weapons {
		snap.Weapons[k] = v
	}
	snap.seats = nil
	return snap, true
}

// Count returns the number of live entities.
func (s *Host) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entities)
}

// Handles returns every live handle in ascending order.
func (s *Host) Handles() []core.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Handle, 0, len(s.entities))
	for h := range s.entities {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ViewRestores returns how many times RestoreView was called.
func (s *Host) ViewRestores() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewRestores
}

// SubmitText completes an open text input with text.
func (s *Host) SubmitText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.text = text
	s.input.ready = true
	s.input.cancelled = false
}

// CancelText dismisses an open text input.
func (s *Host) CancelText() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.ready = true
	s.input.cancelled = true
}

// TextInputOpen reports whether a text input is waiting and its initial text.
func (s *Host) TextInputOpen() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input.initial, s.input.open
}

func (s *Host) Raycast() scene.RayHit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aim
}

func (s *Host) IsValid(h core.Handle) bool {
	if h == core.NoHandle {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entities[h]
	return ok
}

func (s *Host) KindOf(h core.Handle) scene.EntityKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[h]; ok {
		return e.Kind
	}
	return scene.KindNone
}

func (s *Host) RequestModel(ctx context.Context, model uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[model]++
	if s.failedModels[model] {
		return fmt.Errorf("model %#x: %w", model, core.ErrModelLoad)
	}
	return nil
}

func (s *Host) SpawnPed(model uint32, t core.Transform) (core.Handle, error) {
	return s.spawn(scene.KindPed, model, t)
}

func (s *Host) SpawnVehicle(model uint32, t core.Transform) (core.Handle, error) {
	return s.spawn(scene.KindVehicle, model, t)
}

func (s *Host) SpawnObject(model uint32, t core.Transform) (core.Handle, error) {
	return s.spawn(scene.KindObject, model, t)
}

func (s *Host) spawn(kind scene.EntityKind, model uint32, t core.Transform) (core.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failedModels[model] {
		return core.NoHandle, fmt.Errorf("spawn %s %#x: %w", kind, model, core.ErrModelLoad)
	}
	s.next++
	e := &Entity{
		Kind:       kind,
		Model:      model,
		Transform:  t,
		Collision:  true,
		Alpha:      255,
		Persistent: true,
		Weapons:    make(map[uint32]int),
		Seat:       core.NoSeat,
	}
	if kind == scene.KindVehicle {
		e.seats = make(map[int]core.Handle)
	}
	s.entities[s.next] = e
	return s.next, nil
}

func (s *Host) Destroy(h core.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[h]
	if !ok {
		return
	}
	switch e.Kind {
	case scene.KindVehicle:
		for _, ped := range e.seats {
			if p, ok := s.entities[ped]; ok {
				p.Transform = e.Transform
				p.Vehicle = core.NoHandle
				p.Seat = core.NoSeat
			}
		}
	case scene.KindPed:
		s.leaveVehicleLocked(h, e)
	}
	delete(s.entities, h)
}

func (s *Host) Transform(h core.Handle) (core.Transform, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[h]
	if !ok {
		return core.Transform{}, false
	}
	return s.transformLocked(e), true
}

// transformLocked resolves seated peds to their vehicle's transform.
func (s *Host) transformLocked(e *Entity) core.Transform {
	if e.Vehicle != core.NoHandle {
		if v, ok := s.entities[e.Vehicle]; ok {
			return v.Transform
		}
	}
	return e.Transform
}

func (s *Host) SetTransform(h core.Handle, t core.Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[h]; ok {
		e.Transform = t
	}
}

func (s *Host) Model(h core.Handle) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[h]; ok {
		return e.Model
	}
	return 0
}

func (s *Host) Colors(h core.Handle) (core.Color, core.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[h]; ok {
		return e.Primary, e.Secondary
	}
	return core.Color{}, core.Color{}
}

func (s *Host) SetColors(h core.Handle, primary, secondary core.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[h]; ok {
		e.Primary = primary
		e.Secondary = secondary
	}
}

func (s *Host) SetCollision(h core.Handle, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[h]; ok {
		e.Collision = enabled
	}
}

func (s *Host) SetFrozen(h core.Handle, frozen bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[h]; ok {
		e.Frozen = frozen
	}
}

func (s *Host) SetAlpha(h core.Handle, alpha uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[h]; ok {
		e.Alpha = alpha
		s.alphaWrites[h]++
	}
}

func (s *Host) FreeSeat(vehicle core.Handle) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entities[vehicle]
	if !ok || v.Kind != scene.KindVehicle {
		return core.NoSeat, false
	}
	for _, seat := range vehicleSeats {
		if _, taken := v.seats[seat]; !taken {
			return seat, true
		}
	}
	return core.NoSeat, false
}

func (s *Host) Occupants(vehicle core.Handle) []core.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entities[vehicle]
	if !ok || v.Kind != scene.KindVehicle {
		return nil
	}
	var out []core.Handle
	for _, seat := range vehicleSeats {
		if ped, taken := v.seats[seat]; taken {
			out = append(out, ped)
		}
	}
	return out
}

func (s *Host) WarpIntoVehicle(ped, vehicle core.Handle, seat int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.entities[ped]
	if !ok || p.Kind != scene.KindPed {
		return
	}
	v, ok := s.entities[vehicle]
	if !ok || v.Kind != scene.KindVehicle {
		return
	}
	if _, taken := v.seats[seat]; taken {
		return
	}
	s.leaveVehicleLocked(ped, p)
	v.seats[seat] = ped
	p.Vehicle = vehicle
	p.Seat = seat
}

func (s *Host) leaveVehicleLocked(h core.Handle, p *Entity) {
	if p.Vehicle == core.NoHandle {
		return
	}
	if v, ok := s.entities[p.Vehicle]; ok {
		p.Transform = v.Transform
		if v.seats[p.Seat] == h {
			delete(v.seats, p.Seat)
		}
	}
	p.Vehicle = core.NoHandle
	p.Seat = core.NoSeat
}

func (s *Host) GiveWeapon(ped core.Handle, weapon uint32, ammo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[ped]; ok && e.Kind == scene.KindPed {
		e.Weapons[weapon] = ammo
	}
}

func (s *Host) SetPersistentBehavior(ped core.Handle, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[ped]; ok {
		e.Persistent = enabled
	}
}

func (s *Host) AttachBlip(h core.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[h]; ok {
		e.Blip = true
	}
}

func (s *Host) DetachBlip(h core.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entities[h]; ok {
		e.Blip = false
	}
}

func (s *Host) OpenTextInput(initial string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = textInput{open: true, initial: initial}
}

func (s *Host) PollTextInput() (string, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.input.open || !s.input.ready {
		return "", false, false
	}
	in := s.input
	s.input = textInput{}
	return in.text, true, in.cancelled
}

func (s *Host) RestoreView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewRestores++
}
