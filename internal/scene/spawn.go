package scene

import (
	"fmt"

	"github.com/OCAP2/missioneditor/pkg/core"
)

// Spawn creates the live entity for a record at its stored transform and
// applies the stored per-kind state. The model must already be loaded. Pickups
// are represented by pickupModel. Trigger markers have no live entity and
// return NoHandle.
func Spawn(host Host, r core.Record, pickupModel uint32) (core.Handle, error) {
	base := r.Base()
	t := base.Transform()

	var (
		h   core.Handle
		err error
	)
	switch v := r.(type) {
	case *core.Actor, *core.Spawnpoint, *core.ActorObjective:
		h, err = host.SpawnPed(base.Model, t)
		if err != nil {
			break
		}
		ped, _ := core.Seated(r)
		host.SetPersistentBehavior(h, false)
		if ped.WeaponHash != 0 {
			host.GiveWeapon(h, ped.WeaponHash, ped.WeaponAmmo)
		}
		host.SetFrozen(h, r.Kind() == core.KindSpawnpoint)
	case *core.Vehicle:
		h, err = host.SpawnVehicle(base.Model, t)
		if err == nil {
			host.SetColors(h, v.PrimaryColor, v.SecondaryColor)
		}
	case *core.VehicleObjective:
		h, err = host.SpawnVehicle(base.Model, t)
		if err == nil {
			host.SetColors(h, v.PrimaryColor, v.SecondaryColor)
		}
	case *core.StaticObject:
		h, err = host.SpawnObject(base.Model, t)
	case *core.Pickup, *core.PickupObjective:
		h, err = host.SpawnObject(pickupModel, t)
		if err == nil {
			host.SetCollision(h, false)
			host.SetFrozen(h, true)
		}
	case *core.TriggerMarker:
		return core.NoHandle, nil
	default:
		return core.NoHandle, fmt.Errorf("spawn: unsupported record %T", r)
	}
	if err != nil {
		return core.NoHandle, fmt.Errorf("spawn %s: %w", r.Kind(), err)
	}
	return h, nil
}

// ModelFor returns the model a record needs loaded before Spawn.
func ModelFor(r core.Record, pickupModel uint32) uint32 {
	switch r.Kind() {
	case core.KindPickup, core.KindPickupObjective:
		return pickupModel
	case core.KindTriggerMarker:
		return 0
	}
	return r.Base().Model
}
