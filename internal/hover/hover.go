// Package hover works out, once per frame, what the operator is aiming at and
// how the placement ring should look.
package hover

import (
	"github.com/OCAP2/missioneditor/internal/classify"
	"github.com/OCAP2/missioneditor/internal/scene"
	"github.com/OCAP2/missioneditor/pkg/core"
)

// Visual is the state of the placement ring.
type Visual uint8

const (
	Idle Visual = iota
	BlockedRed
	AllowedGreen
	InformationalYellow
)

func (v Visual) String() string {
	switch v {
	case BlockedRed:
		return "blocked"
	case AllowedGreen:
		return "allowed"
	case InformationalYellow:
		return "info"
	default:
		return "idle"
	}
}

// Shape is the kind of preview the ghost shows.
type Shape uint8

const (
	ShapePed Shape = iota + 1
	ShapeVehicle
	ShapeObject
	ShapePickup
	ShapeMarker
)

// Ghost describes the active placement preview.
type Ghost struct {
	Shape       Shape
	Handle      core.Handle // the preview entity itself, never a target
	Objective   bool
	PlayerSpawn bool
}

// Target is the record under the aim. Handle is NoHandle for trigger markers.
// Seat is the free seat offered when a ped ghost hovers a vehicle.
type Target struct {
	Handle core.Handle
	Record core.Record
	Type   classify.SemanticType
	Seat   int
}

// Resolver tracks the hover target across frames. It holds a non-owning
// reference and re-derives it from the scene on every Update.
type Resolver struct {
	host       scene.Host
	classifier *classify.Classifier

	target Target
	has    bool
	visual Visual
}

// New creates a Resolver.
func New(host scene.Host, classifier *classify.Classifier) *Resolver {
	return &Resolver{host: host, classifier: classifier}
}

// Target returns the current hover target.
func (r *Resolver) Target() (Target, bool) {
	return r.target, r.has
}

// Visual returns the current ring state.
func (r *Resolver) Visual() Visual {
	return r.visual
}

// Hovering reports whether any target is under the aim.
func (r *Resolver) Hovering() bool {
	return r.has
}

// Clear drops the current target without reporting a change.
func (r *Resolver) Clear() {
	r.target = Target{}
	r.has = false
	r.visual = Idle
}

// Update re-resolves the hover for this frame. ghost is nil in inspection
// mode. It returns true when the target or the ring state changed.
func (r *Resolver) Update(ghost *Ghost) bool {
	hit := r.host.Raycast()
	if ghost != nil && hit.Handle == ghost.Handle {
		hit.Handle = core.NoHandle
	}

	var (
		next   Target
		ok     bool
		visual Visual
	)
	if ghost == nil {
		next, ok = r.inspect(hit)
		if ok {
			visual = InformationalYellow
		}
	} else {
		next, visual, ok = r.place(hit, ghost)
	}
	if !ok {
		next = Target{}
		visual = Idle
	}

	changed := ok != r.has || next.Handle != r.target.Handle || next.Record != r.target.Record || visual != r.visual
	r.target = next
	r.has = ok
	r.visual = visual
	return changed
}

func (r *Resolver) inspect(hit scene.RayHit) (Target, bool) {
	if hit.Handle != core.NoHandle && r.host.IsValid(hit.Handle) {
		m, ok := r.classifier.Owner(hit.Handle)
		if !ok {
			return Target{}, false
		}
		return Target{Handle: hit.Handle, Record: m.Record, Type: m.Type, Seat: core.NoSeat}, true
	}
	if !hit.Hit {
		return Target{}, false
	}
	m, ok := r.classifier.ClassifyByProximity(hit.Point, classify.ProximityRadius)
	if !ok {
		return Target{}, false
	}
	return Target{Handle: m.Record.Base().Handle(), Record: m.Record, Type: m.Type, Seat: core.NoSeat}, true
}

func (r *Resolver) place(hit scene.RayHit, g *Ghost) (Target, Visual, bool) {
	switch g.Shape {
	case ShapePickup:
		want := classify.Pickup
		if g.Objective {
			want = classify.ObjectivePickup
		}
		return r.nearby(hit, want)
	case ShapeMarker:
		return r.nearby(hit, classify.ObjectiveMarker)
	}

	if hit.Handle == core.NoHandle || !r.host.IsValid(hit.Handle) {
		return Target{}, Idle, false
	}
	m, ok := r.classifier.Owner(hit.Handle)
	if !ok {
		return Target{}, Idle, false
	}
	t := Target{Handle: hit.Handle, Record: m.Record, Type: m.Type, Seat: core.NoSeat}

	switch g.Shape {
	case ShapeVehicle:
		if (!g.Objective && m.Type == classify.Vehicle) || (g.Objective && m.Type == classify.ObjectiveVehicle) {
			return t, BlockedRed, true
		}
	case ShapePed:
		switch {
		case !g.PlayerSpawn && !g.Objective && m.Type == classify.Actor,
			g.PlayerSpawn && m.Type == classify.Spawnpoint,
			g.Objective && m.Type == classify.ObjectiveActor:
			return t, BlockedRed, true
		case m.Type == classify.Vehicle:
			if seat, free := r.host.FreeSeat(hit.Handle); free {
				t.Seat = seat
				return t, AllowedGreen, true
			}
		}
	case ShapeObject:
		if m.Type == classify.StaticObject {
			return t, BlockedRed, true
		}
	}
	return Target{}, Idle, false
}

func (r *Resolver) nearby(hit scene.RayHit, want classify.SemanticType) (Target, Visual, bool) {
	if !hit.Hit {
		return Target{}, Idle, false
	}
	m, ok := r.classifier.ClassifyByProximityOf(hit.Point, classify.ProximityRadius, want)
	if !ok {
		return Target{}, Idle, false
	}
	return Target{Handle: m.Record.Base().Handle(), Record: m.Record, Type: m.Type, Seat: core.NoSeat}, BlockedRed, true
}
