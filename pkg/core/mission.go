// pkg/core/mission.go
package core

import "fmt"

// MissionInfo holds the global mission settings
type MissionInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Weather     string   `json:"weather"`
	Hour        int      `json:"hour"`
	Minute      int      `json:"minute"`
	MinWanted   int      `json:"minWanted"`
	MaxWanted   int      `json:"maxWanted"`
	TimeLimit   int      `json:"timeLimit"` // seconds, 0 = none
	Interiors   []string `json:"interiors"`
}

// MissionData is the flat persisted form of a mission: one block per
// collection, in document order, and the fixed-length objective name table.
type MissionData struct {
	Info           MissionInfo     `json:"info"`
	Spawnpoints    []Spawnpoint    `json:"spawnpoints"`
	Actors         []Actor         `json:"actors"`
	Vehicles       []Vehicle       `json:"vehicles"`
	Objects        []StaticObject  `json:"objects"`
	Pickups        []Pickup        `json:"pickups"`
	Objectives     []ObjectiveData `json:"objectives"`
	ObjectiveNames []string        `json:"objectiveNames"`
}

// RecordCount returns the number of records in the dump.
func (d *MissionData) RecordCount() int {
	return len(d.Spawnpoints) + len(d.Actors) + len(d.Vehicles) + len(d.Objects) + len(d.Pickups) + len(d.Objectives)
}

// ObjectiveData is the flat form of any objective variant. Only the fields of
// the variant named by Type are meaningful.
type ObjectiveData struct {
	Type string `json:"type"`
	Placement
	Ped            *PedProps  `json:"ped,omitempty"`
	PrimaryColor   Color      `json:"primaryColor"`
	SecondaryColor Color      `json:"secondaryColor"`
	Health         int        `json:"health"`
	PickupHash     uint32     `json:"pickupHash"`
	Ammo           int        `json:"ammo"`
	Respawn        bool       `json:"respawn"`
	TypeID         int        `json:"typeId"`
	Color          Color      `json:"color"`
	Scale          Position3D `json:"scale"`
	ActivateAfter  int        `json:"activateAfter"`
}

// FlattenObjective converts an objective variant into its flat form.
func FlattenObjective(o Objective) ObjectiveData {
	d := ObjectiveData{
		Type:          o.Kind().String(),
		Placement:     o.Base().cloned(),
		ActivateAfter: o.ActivationSlot(),
	}
	switch v := o.(type) {
	case *ActorObjective:
		ped := v.PedProps.copyProps()
		d.Ped = &ped
	case *VehicleObjective:
		d.PrimaryColor = v.PrimaryColor
		d.SecondaryColor = v.SecondaryColor
		d.Health = v.Health
	case *PickupObjective:
		d.PickupHash = v.PickupHash
		d.Ammo = v.Ammo
		d.Respawn = v.Respawn
	case *TriggerMarker:
		d.TypeID = v.TypeID
		d.Color = v.Color
		d.Scale = v.Scale
	}
	return d
}

// Objective rebuilds the objective variant named by Type.
func (d ObjectiveData) Objective() (Objective, error) {
	kind, ok := ParseRecordKind(d.Type)
	if !ok || !kind.IsObjective() {
		return nil, fmt.Errorf("unknown objective type %q", d.Type)
	}
	base := d.Placement.cloned()
	switch kind {
	case KindActorObjective:
		o := &ActorObjective{Placement: base, ActivateAfter: d.ActivateAfter}
		if d.Ped != nil {
			o.PedProps = d.Ped.copyProps()
		}
		return o, nil
	case KindVehicleObjective:
		return &VehicleObjective{
			Placement:      base,
			PrimaryColor:   d.PrimaryColor,
			SecondaryColor: d.SecondaryColor,
			Health:         d.Health,
			ActivateAfter:  d.ActivateAfter,
		}, nil
	case KindPickupObjective:
		return &PickupObjective{
			Placement:     base,
			PickupHash:    d.PickupHash,
			Ammo:          d.Ammo,
			Respawn:       d.Respawn,
			ActivateAfter: d.ActivateAfter,
		}, nil
	default:
		return &TriggerMarker{
			Placement:     base,
			TypeID:        d.TypeID,
			Color:         d.Color,
			Scale:         d.Scale,
			ActivateAfter: d.ActivateAfter,
		}, nil
	}
}
