// pkg/core/record.go
package core

// RecordKind is the discriminant of the closed set of placeable records.
type RecordKind uint8

const (
	KindActor RecordKind = iota + 1
	KindVehicle
	KindStaticObject
	KindPickup
	KindSpawnpoint
	KindActorObjective
	KindVehicleObjective
	KindPickupObjective
	KindTriggerMarker
)

var recordKindNames = map[RecordKind]string{
	KindActor:            "actor",
	KindVehicle:          "vehicle",
	KindStaticObject:     "object",
	KindPickup:           "pickup",
	KindSpawnpoint:       "spawnpoint",
	KindActorObjective:   "actor_objective",
	KindVehicleObjective: "vehicle_objective",
	KindPickupObjective:  "pickup_objective",
	KindTriggerMarker:    "trigger_marker",
}

func (k RecordKind) String() string {
	if s, ok := recordKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseRecordKind is the inverse of RecordKind.String.
func ParseRecordKind(s string) (RecordKind, bool) {
	for k, name := range recordKindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// IsObjective reports whether records of this kind belong to the objective chain.
func (k RecordKind) IsObjective() bool {
	switch k {
	case KindActorObjective, KindVehicleObjective, KindPickupObjective, KindTriggerMarker:
		return true
	}
	return false
}

// NoSeat marks a ped record that is not assigned to a vehicle seat.
// Seat -1 is the driver, 0 and up are passengers.
const NoSeat = -2

// Record is implemented by every placeable mission entity.
type Record interface {
	Kind() RecordKind
	Base() *Placement
	Clone() Record
}

// Objective is a record that takes part in the objective chain.
type Objective interface {
	Record
	ActivationSlot() int
	SetActivationSlot(slot int)
}

// Placement holds the fields shared by every record, including the live handle
// slot. The handle is owned by the record and never serialized.
type Placement struct {
	Position    Position3D `json:"position"`
	Rotation    Rotation3D `json:"rotation"`
	Model       uint32     `json:"model"`
	SpawnAfter  int        `json:"spawnAfter"`
	RemoveAfter int        `json:"removeAfter"`

	handle Handle
}

// Handle returns the live handle, NoHandle when the record is not spawned.
func (p *Placement) Handle() Handle {
	return p.handle
}

// Attach binds a live handle to the record.
func (p *Placement) Attach(h Handle) {
	p.handle = h
}

// Detach clears the live handle slot and returns the previous handle.
func (p *Placement) Detach() Handle {
	h := p.handle
	p.handle = NoHandle
	return h
}

// Spawned reports whether the record currently holds a live handle.
func (p *Placement) Spawned() bool {
	return p.handle != NoHandle
}

// SetTransform overwrites the stored transform.
func (p *Placement) SetTransform(t Transform) {
	p.Position = t.Position
	p.Rotation = t.Rotation
}

// Transform returns the stored transform.
func (p *Placement) Transform() Transform {
	return Transform{Position: p.Position, Rotation: p.Rotation}
}

func (p Placement) cloned() Placement {
	p.handle = NoHandle
	return p
}

// Waypoint is a scripted movement step for an actor.
type Waypoint struct {
	Position Position3D `json:"position"`
	Type     int        `json:"type"`
	Duration int        `json:"duration"`
	Velocity float64    `json:"velocity"`
}

// PedProps are the fields shared by actor-like records.
type PedProps struct {
	Health            int        `json:"health"`
	Armor             int        `json:"armor"`
	WeaponHash        uint32     `json:"weaponHash"`
	WeaponAmmo        int        `json:"weaponAmmo"`
	RelationshipGroup int        `json:"relationshipGroup"`
	Behaviour         int        `json:"behaviour"`
	Accuracy          int        `json:"accuracy"`
	SpawnInVehicle    bool       `json:"spawnInVehicle"`
	VehicleSeat       int        `json:"vehicleSeat"`
	Waypoints         []Waypoint `json:"waypoints,omitempty"`
}

// Disembark clears the vehicle assignment.
func (p *PedProps) Disembark() {
	p.SpawnInVehicle = false
	p.VehicleSeat = NoSeat
}

// Board assigns the ped to a vehicle seat.
func (p *PedProps) Board(seat int) {
	p.SpawnInVehicle = true
	p.VehicleSeat = seat
}

func (p PedProps) copyProps() PedProps {
	if p.Waypoints != nil {
		p.Waypoints = append([]Waypoint(nil), p.Waypoints...)
	}
	return p
}

// Seated returns the ped fields of records that can occupy a vehicle seat.
func Seated(r Record) (*PedProps, bool) {
	switch v := r.(type) {
	case *Actor:
		return &v.PedProps, true
	case *Spawnpoint:
		return &v.PedProps, true
	case *ActorObjective:
		return &v.PedProps, true
	}
	return nil, false
}

// Actor is a scripted character
type Actor struct {
	Placement
	PedProps
}

func (*Actor) Kind() RecordKind { return KindActor }
func (a *Actor) Base() *Placement { return &a.Placement }
func (a *Actor) Clone() Record {
	return &Actor{Placement: a.Placement.cloned(), PedProps: a.PedProps.copyProps()}
}

// Spawnpoint is a player spawn location. It is frozen in place when spawned.
type Spawnpoint struct {
	Placement
	PedProps
}

func (*Spawnpoint) Kind() RecordKind { return KindSpawnpoint }
func (s *Spawnpoint) Base() *Placement { return &s.Placement }
func (s *Spawnpoint) Clone() Record {
	return &Spawnpoint{Placement: s.Placement.cloned(), PedProps: s.PedProps.copyProps()}
}

// Vehicle is a placed vehicle
type Vehicle struct {
	Placement
	PrimaryColor       Color `json:"primaryColor"`
	SecondaryColor     Color `json:"secondaryColor"`
	Health             int   `json:"health"`
	FailMissionOnDeath bool  `json:"failMissionOnDeath"`
}

func (*Vehicle) Kind() RecordKind { return KindVehicle }
func (v *Vehicle) Base() *Placement { return &v.Placement }
func (v *Vehicle) Clone() Record {
	c := *v
	c.Placement = v.Placement.cloned()
	return &c
}

// StaticObject is a prop without behaviour
type StaticObject struct {
	Placement
}

func (*StaticObject) Kind() RecordKind { return KindStaticObject }
func (o *StaticObject) Base() *Placement { return &o.Placement }
func (o *StaticObject) Clone() Record {
	return &StaticObject{Placement: o.Placement.cloned()}
}

// Pickup is a weapon pickup. Its live handle is a non-colliding prop.
type Pickup struct {
	Placement
	PickupHash uint32 `json:"pickupHash"`
	Ammo       int    `json:"ammo"`
	Respawn    bool   `json:"respawn"`
}

func (*Pickup) Kind() RecordKind { return KindPickup }
func (p *Pickup) Base() *Placement { return &p.Placement }
func (p *Pickup) Clone() Record {
	c := *p
	c.Placement = p.Placement.cloned()
	return &c
}

// ActorObjective is an actor the player must deal with to advance the chain.
type ActorObjective struct {
	Placement
	PedProps
	ActivateAfter int `json:"activateAfter"`
}

func (*ActorObjective) Kind() RecordKind { return KindActorObjective }
func (o *ActorObjective) Base() *Placement { return &o.Placement }
func (o *ActorObjective) ActivationSlot() int { return o.ActivateAfter }
func (o *ActorObjective) SetActivationSlot(slot int) {
	o.ActivateAfter = slot
}
func (o *ActorObjective) Clone() Record {
	return &ActorObjective{Placement: o.Placement.cloned(), PedProps: o.PedProps.copyProps(), ActivateAfter: o.ActivateAfter}
}

// VehicleObjective is a vehicle the player must destroy or reach.
type VehicleObjective struct {
	Placement
	PrimaryColor   Color `json:"primaryColor"`
	SecondaryColor Color `json:"secondaryColor"`
	Health         int   `json:"health"`
	ActivateAfter  int   `json:"activateAfter"`
}

func (*VehicleObjective) Kind() RecordKind { return KindVehicleObjective }
func (o *VehicleObjective) Base() *Placement { return &o.Placement }
func (o *VehicleObjective) ActivationSlot() int { return o.ActivateAfter }
func (o *VehicleObjective) SetActivationSlot(slot int) {
	o.ActivateAfter = slot
}
func (o *VehicleObjective) Clone() Record {
	c := *o
	c.Placement = o.Placement.cloned()
	return &c
}

// PickupObjective is a pickup the player must collect.
type PickupObjective struct {
	Placement
	PickupHash    uint32 `json:"pickupHash"`
	Ammo          int    `json:"ammo"`
	Respawn       bool   `json:"respawn"`
	ActivateAfter int    `json:"activateAfter"`
}

func (*PickupObjective) Kind() RecordKind { return KindPickupObjective }
func (o *PickupObjective) Base() *Placement { return &o.Placement }
func (o *PickupObjective) ActivationSlot() int { return o.ActivateAfter }
func (o *PickupObjective) SetActivationSlot(slot int) {
	o.ActivateAfter = slot
}
func (o *PickupObjective) Clone() Record {
	c := *o
	c.Placement = o.Placement.cloned()
	return &c
}

// TriggerMarker is a positional objective with no live handle. It is matched
// by proximity only.
type TriggerMarker struct {
	Placement
	TypeID        int        `json:"typeId"`
	Color         Color      `json:"color"`
	Scale         Position3D `json:"scale"`
	ActivateAfter int        `json:"activateAfter"`
}

func (*TriggerMarker) Kind() RecordKind { return KindTriggerMarker }
func (m *TriggerMarker) Base() *Placement { return &m.Placement }
func (m *TriggerMarker) ActivationSlot() int { return m.ActivateAfter }
func (m *TriggerMarker) SetActivationSlot(slot int) {
	m.ActivateAfter = slot
}
func (m *TriggerMarker) Clone() Record {
	c := *m
	c.Placement = m.Placement.cloned()
	return &c
}
