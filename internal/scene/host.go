// Package scene defines the boundary between the editor and the live 3-D world.
// Everything the editor knows about spawned entities goes through Host.
package scene

import (
	"context"

	"github.com/OCAP2/missioneditor/pkg/core"
)

// EntityKind is the coarse kind reported by the host for a live handle.
type EntityKind uint8

const (
	KindNone EntityKind = iota
	KindPed
	KindVehicle
	KindObject
)

func (k EntityKind) String() string {
	switch k {
	case KindPed:
		return "ped"
	case KindVehicle:
		return "vehicle"
	case KindObject:
		return "object"
	default:
		return "none"
	}
}

// RayHit is the result of the aiming raycast. Handle is NoHandle when the ray
// hit terrain or nothing at all; Point is always the aim point.
type RayHit struct {
	Handle core.Handle
	Point  core.Position3D
	Hit    bool
}

// Host is the native scene. Implementations must treat calls on an invalid
// handle as no-ops and never panic.
type Host interface {
	// Aiming
	Raycast() RayHit

	// Identity
	IsValid(h core.Handle) bool
	KindOf(h core.Handle) EntityKind

	// Lifecycle
	RequestModel(ctx context.Context, model uint32) error
	SpawnPed(model uint32, t core.Transform) (core.Handle, error)
	SpawnVehicle(model uint32, t core.Transform) (core.Handle, error)
	SpawnObject(model uint32, t core.Transform) (core.Handle, error)
	Destroy(h core.Handle)

	// State
	Transform(h core.Handle) (core.Transform, bool)
	SetTransform(h core.Handle, t core.Transform)
	Model(h core.Handle) uint32
	Colors(h core.Handle) (primary, secondary core.Color)
	SetColors(h core.Handle, primary, secondary core.Color)
	SetCollision(h core.Handle, enabled bool)
	SetFrozen(h core.Handle, frozen bool)
	SetAlpha(h core.Handle, alpha uint8)

	// Seats. Seat -1 is the driver.
	FreeSeat(vehicle core.Handle) (int, bool)
	Occupants(vehicle core.Handle) []core.Handle
	WarpIntoVehicle(ped, vehicle core.Handle, seat int)

	// Peds
	GiveWeapon(ped core.Handle, weapon uint32, ammo int)
	SetPersistentBehavior(ped core.Handle, enabled bool)

	// Blips
	AttachBlip(h core.Handle)
	DetachBlip(h core.Handle)

	// Text input. ok is false while the keyboard is still open; cancelled
	// is true when the operator dismissed it.
	OpenTextInput(initial string)
	PollTextInput() (text string, ok bool, cancelled bool)

	// RestoreView returns the camera and player visibility to gameplay.
	RestoreView()
}

// Pointer is implemented by hosts whose aim is set by operator commands
// instead of a camera.
type Pointer interface {
	AimAtPoint(p core.Position3D)
	AimAtEntity(h core.Handle)
}

// Keyboard is implemented by hosts whose text input is typed as commands.
type Keyboard interface {
	SubmitText(text string)
	CancelText()
}
