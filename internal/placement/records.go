package placement

import (
	"github.com/OCAP2/missioneditor/internal/hover"
	"github.com/OCAP2/missioneditor/pkg/core"
)

// Factory defaults for freshly placed records.
const (
	DefaultPedHealth         = 200
	DefaultPedAmmo           = 9999
	DefaultRelationshipGroup = 3
	DefaultVehicleHealth     = 1000
	DefaultPickupAmmo        = 9999
	DefaultActivateAfter     = 1
)

var (
	defaultMarkerColor = core.Color{R: 255, G: 255, A: 100}
	defaultMarkerScale = core.Position3D{X: 1, Y: 1, Z: 1}
)

// Selection is what the operator picked from the placement menu.
type Selection struct {
	Kind       core.RecordKind
	Model      uint32
	PickupHash uint32
	MarkerType int
}

// Shape returns the ghost preview shape for the selection.
func (s Selection) Shape() hover.Shape {
	switch s.Kind {
	case core.KindActor, core.KindSpawnpoint, core.KindActorObjective:
		return hover.ShapePed
	case core.KindVehicle, core.KindVehicleObjective:
		return hover.ShapeVehicle
	case core.KindPickup, core.KindPickupObjective:
		return hover.ShapePickup
	case core.KindTriggerMarker:
		return hover.ShapeMarker
	default:
		return hover.ShapeObject
	}
}

func defaultPed() core.PedProps {
	return core.PedProps{
		Health:            DefaultPedHealth,
		WeaponAmmo:        DefaultPedAmmo,
		RelationshipGroup: DefaultRelationshipGroup,
		VehicleSeat:       core.NoSeat,
	}
}

// newRecord builds the record a commit creates for the selection.
func newRecord(sel Selection, t core.Transform, primary, secondary core.Color) core.Record {
	p := core.Placement{Position: t.Position, Rotation: t.Rotation, Model: sel.Model}

	switch sel.Kind {
	case core.KindActor:
		return &core.Actor{Placement: p, PedProps: defaultPed()}
	case core.KindSpawnpoint:
		ped := defaultPed()
		ped.RelationshipGroup = 0
		return &core.Spawnpoint{Placement: p, PedProps: ped}
	case core.KindActorObjective:
		return &core.ActorObjective{Placement: p, PedProps: defaultPed(), ActivateAfter: DefaultActivateAfter}
	case core.KindVehicle:
		return &core.Vehicle{Placement: p, PrimaryColor: primary, SecondaryColor: secondary, Health: DefaultVehicleHealth}
	case core.KindVehicleObjective:
		return &core.VehicleObjective{Placement: p, PrimaryColor: primary, SecondaryColor: secondary, Health: DefaultVehicleHealth, ActivateAfter: DefaultActivateAfter}
	case core.KindPickup:
		return &core.Pickup{Placement: p, PickupHash: sel.PickupHash, Ammo: DefaultPickupAmmo}
	case core.KindPickupObjective:
		return &core.PickupObjective{Placement: p, PickupHash: sel.PickupHash, Ammo: DefaultPickupAmmo, ActivateAfter: DefaultActivateAfter}
	case core.KindTriggerMarker:
		return &core.TriggerMarker{Placement: p, TypeID: sel.MarkerType, Color: defaultMarkerColor, Scale: defaultMarkerScale, ActivateAfter: DefaultActivateAfter}
	default:
		return &core.StaticObject{Placement: p}
	}
}
