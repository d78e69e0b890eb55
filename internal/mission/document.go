package mission

import (
	"fmt"
	"strings"

	"github.com/OCAP2/missioneditor/pkg/core"
)

// DefaultObjectiveSlots is the size of the objective name table of a new mission.
// Slot 0 is reserved for "active from start".
const DefaultObjectiveSlots = 301

// labelRunes is how much of an objective name fits in a menu label.
const labelRunes = 20

// Destroyer releases live handles. scene.Host satisfies it.
type Destroyer interface {
	Destroy(h core.Handle)
}

// Document is the single editable mission. It is owned by the frame loop and
// is not safe for concurrent mutation.
type Document struct {
	Info core.MissionInfo

	Spawnpoints []*core.Spawnpoint
	Actors      []*core.Actor
	Vehicles    []*core.Vehicle
	Objects     []*core.StaticObject
	Pickups     []*core.Pickup
	Objectives  []core.Objective

	names []string
}

// NewDocument creates an empty mission with a name table of the given size.
func NewDocument(slots int) *Document {
	if slots <= 0 {
		slots = DefaultObjectiveSlots
	}
	return &Document{
		Info:  DefaultInfo(),
		names: make([]string, slots),
	}
}

// DefaultInfo returns the settings of a freshly created mission.
func DefaultInfo() core.MissionInfo {
	return core.MissionInfo{
		Name:      "Untitled mission",
		Weather:   "EXTRASUNNY",
		Hour:      12,
		MinWanted: 0,
		MaxWanted: 5,
	}
}

// FromData rebuilds a document from its flat form. Records come back without
// live handles. The name table keeps the stored length.
func FromData(data *core.MissionData) (*Document, error) {
	d := &Document{Info: data.Info}
	if len(data.ObjectiveNames) > 0 {
		d.names = append([]string(nil), data.ObjectiveNames...)
	} else {
		d.names = make([]string, DefaultObjectiveSlots)
	}

	for i := range data.Spawnpoints {
		d.Spawnpoints = append(d.Spawnpoints, data.Spawnpoints[i].Clone().(*core.Spawnpoint))
	}
	for i := range data.Actors {
		d.Actors = append(d.Actors, data.Actors[i].Clone().(*core.Actor))
	}
	for i := range data.Vehicles {
		d.Vehicles = append(d.Vehicles, data.Vehicles[i].Clone().(*core.Vehicle))
	}
	for i := range data.Objects {
		d.Objects = append(d.Objects, data.Objects[i].Clone().(*core.StaticObject))
	}
	for i := range data.Pickups {
		d.Pickups = append(d.Pickups, data.Pickups[i].Clone().(*core.Pickup))
	}
	for i, od := range data.Objectives {
		o, err := od.Objective()
		if err != nil {
			return nil, fmt.Errorf("objective %d: %w", i, err)
		}
		d.Objectives = append(d.Objectives, o)
	}
	return d, nil
}

// Data flattens the document into its persisted form. Records are copied as
// they are; pulling live state back is the caller's job.
func (d *Document) Data() *core.MissionData {
	data := &core.MissionData{
		Info:           d.Info,
		Spawnpoints:    make([]core.Spawnpoint, 0, len(d.Spawnpoints)),
		Actors:         make([]core.Actor, 0, len(d.Actors)),
		Vehicles:       make([]core.Vehicle, 0, len(d.Vehicles)),
		Objects:        make([]core.StaticObject, 0, len(d.Objects)),
		Pickups:        make([]core.Pickup, 0, len(d.Pickups)),
		Objectives:     make([]core.ObjectiveData, 0, len(d.Objectives)),
		ObjectiveNames: d.ObjectiveNames(),
	}
	data.Info.Interiors = append([]string(nil), d.Info.Interiors...)

	for _, r := range d.Spawnpoints {
		data.Spawnpoints = append(data.Spawnpoints, *r.Clone().(*core.Spawnpoint))
	}
	for _, r := range d.Actors {
		data.Actors = append(data.Actors, *r.Clone().(*core.Actor))
	}
	for _, r := range d.Vehicles {
		data.Vehicles = append(data.Vehicles, *r.Clone().(*core.Vehicle))
	}
	for _, r := range d.Objects {
		data.Objects = append(data.Objects, *r.Clone().(*core.StaticObject))
	}
	for _, r := range d.Pickups {
		data.Pickups = append(data.Pickups, *r.Clone().(*core.Pickup))
	}
	for _, o := range d.Objectives {
		data.Objectives = append(data.Objectives, core.FlattenObjective(o))
	}
	return data
}

// Add inserts a record into the collection for its kind. A live handle can be
// owned by one record only, and objectives must extend the chain without gaps.
func (d *Document) Add(r core.Record) error {
	if d.Contains(r) {
		return fmt.Errorf("add %s: already in document", r.Kind())
	}
	if h := r.Base().Handle(); h != core.NoHandle {
		if _, ok := d.Owner(h); ok {
			return fmt.Errorf("add %s handle %d: %w", r.Kind(), h, core.ErrHandleOwned)
		}
	}

	switch v := r.(type) {
	case *core.Spawnpoint:
		d.Spawnpoints = append(d.Spawnpoints, v)
	case *core.Actor:
		d.Actors = append(d.Actors, v)
	case *core.Vehicle:
		d.Vehicles = append(d.Vehicles, v)
	case *core.StaticObject:
		d.Objects = append(d.Objects, v)
	case *core.Pickup:
		d.Pickups = append(d.Pickups, v)
	case core.Objective:
		if err := d.ValidateActivation(v.ActivationSlot(), nil); err != nil {
			return fmt.Errorf("add %s: %w", r.Kind(), err)
		}
		d.Objectives = append(d.Objectives, v)
	default:
		return fmt.Errorf("add: unsupported record %T", r)
	}
	return nil
}

// Remove drops the record from its collection. The live handle is left alone.
func (d *Document) Remove(r core.Record) error {
	removed := false
	switch v := r.(type) {
	case *core.Spawnpoint:
		d.Spawnpoints, removed = without(d.Spawnpoints, v)
	case *core.Actor:
		d.Actors, removed = without(d.Actors, v)
	case *core.Vehicle:
		d.Vehicles, removed = without(d.Vehicles, v)
	case *core.StaticObject:
		d.Objects, removed = without(d.Objects, v)
	case *core.Pickup:
		d.Pickups, removed = without(d.Pickups, v)
	case core.Objective:
		d.Objectives, removed = without(d.Objectives, v)
	}
	if !removed {
		return fmt.Errorf("remove %s: %w", r.Kind(), core.ErrNotFound)
	}
	return nil
}

func without[T comparable](list []T, item T) ([]T, bool) {
	for i, v := range list {
		if v == item {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}

// Contains reports whether r is one of the document's records.
func (d *Document) Contains(r core.Record) bool {
	for _, have := range d.Records() {
		if have == r {
			return true
		}
	}
	return false
}

// Owner returns the record holding the live handle.
func (d *Document) Owner(h core.Handle) (core.Record, bool) {
	if h == core.NoHandle {
		return nil, false
	}
	for _, r := range d.Records() {
		if r.Base().Handle() == h {
			return r, true
		}
	}
	return nil, false
}

// Records lists every record in persisted collection order.
func (d *Document) Records() []core.Record {
	out := make([]core.Record, 0, d.Count())
	for _, r := range d.Spawnpoints {
		out = append(out, r)
	}
	for _, r := range d.Actors {
		out = append(out, r)
	}
	for _, r := range d.Vehicles {
		out = append(out, r)
	}
	for _, r := range d.Objects {
		out = append(out, r)
	}
	for _, r := range d.Pickups {
		out = append(out, r)
	}
	for _, o := range d.Objectives {
		out = append(out, o)
	}
	return out
}

// Count returns the number of records.
func (d *Document) Count() int {
	return len(d.Spawnpoints) + len(d.Actors) + len(d.Vehicles) + len(d.Objects) + len(d.Pickups) + len(d.Objectives)
}

// Clear destroys every live handle and empties all collections. The name table
// and settings are kept.
func (d *Document) Clear(host Destroyer) {
	for _, r := range d.Records() {
		if h := r.Base().Detach(); h != core.NoHandle && host != nil {
			host.Destroy(h)
		}
	}
	d.Spawnpoints = nil
	d.Actors = nil
	d.Vehicles = nil
	d.Objects = nil
	d.Pickups = nil
	d.Objectives = nil
}

// HighestSlot returns the highest activation slot used by any objective other
// than exclude.
func (d *Document) HighestSlot(exclude core.Objective) int {
	highest := 0
	for _, o := range d.Objectives {
		if o == exclude {
			continue
		}
		if s := o.ActivationSlot(); s > highest {
			highest = s
		}
	}
	return highest
}

// ValidateActivation checks that slot is 0, a slot already in use, or the next
// free slot after the highest one. exclude is ignored when counting, so an
// objective can be moved along its own chain.
func (d *Document) ValidateActivation(slot int, exclude core.Objective) error {
	if slot < 0 || slot >= len(d.names) {
		return fmt.Errorf("slot %d: %w", slot, core.ErrNoSuchSlot)
	}
	if slot == 0 {
		return nil
	}
	if next := d.HighestSlot(exclude) + 1; slot > next {
		return fmt.Errorf("slot %d after highest %d: %w", slot, next-1, core.ErrChainGap)
	}
	return nil
}

// SetActivation moves an objective to another chain slot.
func (d *Document) SetActivation(o core.Objective, slot int) error {
	if err := d.ValidateActivation(slot, o); err != nil {
		return err
	}
	o.SetActivationSlot(slot)
	return nil
}

// ObjectiveSlots returns the length of the name table.
func (d *Document) ObjectiveSlots() int {
	return len(d.names)
}

// ObjectiveNames returns a copy of the name table.
func (d *Document) ObjectiveNames() []string {
	return append([]string(nil), d.names...)
}

// ObjectiveName returns the title of a chain slot.
func (d *Document) ObjectiveName(slot int) (string, error) {
	if slot < 0 || slot >= len(d.names) {
		return "", fmt.Errorf("slot %d: %w", slot, core.ErrNoSuchSlot)
	}
	return d.names[slot], nil
}

// SetObjectiveName stores a title for a chain slot. An empty title clears it.
func (d *Document) SetObjectiveName(slot int, title string) error {
	if slot < 0 || slot >= len(d.names) {
		return fmt.Errorf("slot %d: %w", slot, core.ErrNoSuchSlot)
	}
	d.names[slot] = SanitizeObjectiveName(title)
	return nil
}

// ObjectiveLabel returns the title shortened for menu labels.
func (d *Document) ObjectiveLabel(slot int) string {
	name, err := d.ObjectiveName(slot)
	if err != nil {
		return ""
	}
	return Label(name)
}

// SanitizeObjectiveName replaces the "-=" escape with the "~" text colour marker.
func SanitizeObjectiveName(title string) string {
	return strings.ReplaceAll(title, "-=", "~")
}

// Label truncates s to the menu label width.
func Label(s string) string {
	r := []rune(s)
	if len(r) <= labelRunes {
		return s
	}
	return string(r[:labelRunes]) + "..."
}
