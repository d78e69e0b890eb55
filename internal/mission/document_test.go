package mission

import (
	"testing"

	"github.com/OCAP2/missioneditor/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type destroyed []core.Handle

func (d *destroyed) Destroy(h core.Handle) { *d = append(*d, h) }

func TestNewDocument_Defaults(t *testing.T) {
	doc := NewDocument(0)
	assert.Equal(t, DefaultObjectiveSlots, doc.ObjectiveSlots())
	assert.Equal(t, 0, doc.Count())
	assert.Equal(t, "Untitled mission", doc.Info.Name)

	small := NewDocument(10)
	assert.Equal(t, 10, small.ObjectiveSlots())
}

func TestAdd_RoutesByKind(t *testing.T) {
	doc := NewDocument(0)
	records := []core.Record{
		&core.Vehicle{},
		&core.Actor{},
		&core.StaticObject{},
		&core.Pickup{},
		&core.Spawnpoint{},
		&core.ActorObjective{ActivateAfter: 1},
		&core.TriggerMarker{ActivateAfter: 1},
	}
	for _, r := range records {
		require.NoError(t, doc.Add(r))
	}

	assert.Len(t, doc.Vehicles, 1)
	assert.Len(t, doc.Actors, 1)
	assert.Len(t, doc.Objects, 1)
	assert.Len(t, doc.Pickups, 1)
	assert.Len(t, doc.Spawnpoints, 1)
	assert.Len(t, doc.Objectives, 2)
	assert.Equal(t, 7, doc.Count())
	assert.Len(t, doc.Records(), 7)
}

func TestAdd_RejectsDuplicateRecord(t *testing.T) {
	doc := NewDocument(0)
	a := &core.Actor{}
	require.NoError(t, doc.Add(a))
	assert.Error(t, doc.Add(a))
	assert.Len(t, doc.Actors, 1)
}

func TestAdd_HandleOwnedOnce(t *testing.T) {
	doc := NewDocument(0)
	a := &core.Actor{}
	a.Attach(7)
	require.NoError(t, doc.Add(a))

	v := &core.Vehicle{}
	v.Attach(7)
	err := doc.Add(v)
	assert.ErrorIs(t, err, core.ErrHandleOwned)
	assert.Empty(t, doc.Vehicles)
}

func TestActivationChain(t *testing.T) {
	tests := []struct {
		name     string
		existing []int
		slot     int
		wantErr  error
	}{
		{"always active", nil, 0, nil},
		{"first slot", nil, 1, nil},
		{"gap on empty chain", nil, 2, core.ErrChainGap},
		{"reuse slot", []int{1, 2}, 1, nil},
		{"next slot", []int{1, 2}, 3, nil},
		{"gap after highest", []int{1, 2}, 4, core.ErrChainGap},
		{"negative", nil, -1, core.ErrNoSuchSlot},
		{"past table", nil, DefaultObjectiveSlots, core.ErrNoSuchSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument(0)
			for _, s := range tt.existing {
				require.NoError(t, doc.Add(&core.VehicleObjective{ActivateAfter: s}))
			}
			err := doc.Add(&core.PickupObjective{ActivateAfter: tt.slot})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetActivation_ExcludesSelf(t *testing.T) {
	doc := NewDocument(0)
	first := &core.ActorObjective{ActivateAfter: 1}
	second := &core.ActorObjective{ActivateAfter: 2}
	require.NoError(t, doc.Add(first))
	require.NoError(t, doc.Add(second))

	// moving the only slot-2 objective to 3 leaves a gap at 2
	assert.ErrorIs(t, doc.SetActivation(second, 3), core.ErrChainGap)
	assert.Equal(t, 2, second.ActivateAfter)

	require.NoError(t, doc.SetActivation(second, 0))
	assert.Equal(t, 0, second.ActivateAfter)
}

func TestRemove(t *testing.T) {
	doc := NewDocument(0)
	a, b := &core.Actor{}, &core.Actor{}
	m := &core.TriggerMarker{ActivateAfter: 1}
	require.NoError(t, doc.Add(a))
	require.NoError(t, doc.Add(b))
	require.NoError(t, doc.Add(m))

	require.NoError(t, doc.Remove(a))
	require.NoError(t, doc.Remove(m))
	assert.Equal(t, []*core.Actor{b}, doc.Actors)
	assert.Empty(t, doc.Objectives)

	assert.ErrorIs(t, doc.Remove(a), core.ErrNotFound)
}

func TestClear_DestroysHandles(t *testing.T) {
	doc := NewDocument(0)
	a := &core.Actor{}
	a.Attach(3)
	v := &core.Vehicle{}
	v.Attach(4)
	m := &core.TriggerMarker{ActivateAfter: 1}
	require.NoError(t, doc.Add(a))
	require.NoError(t, doc.Add(v))
	require.NoError(t, doc.Add(m))
	require.NoError(t, doc.SetObjectiveName(1, "Reach the docks"))

	var d destroyed
	doc.Clear(&d)

	assert.ElementsMatch(t, []core.Handle{3, 4}, []core.Handle(d))
	assert.Equal(t, 0, doc.Count())
	assert.False(t, a.Spawned())
	assert.False(t, v.Spawned())

	name, err := doc.ObjectiveName(1)
	require.NoError(t, err)
	assert.Equal(t, "Reach the docks", name)
}

func TestObjectiveNames(t *testing.T) {
	doc := NewDocument(0)

	require.NoError(t, doc.SetObjectiveName(1, "Kill target"))
	name, err := doc.ObjectiveName(1)
	require.NoError(t, err)
	assert.Equal(t, "Kill target", name)

	require.NoError(t, doc.SetObjectiveName(2, "-=r-=Escape"))
	name, _ = doc.ObjectiveName(2)
	assert.Equal(t, "~r~Escape", name)

	require.NoError(t, doc.SetObjectiveName(3, "Destroy the armoured convoy"))
	assert.Equal(t, "Destroy the armoured...", doc.ObjectiveLabel(3))
	assert.Equal(t, "Kill target", doc.ObjectiveLabel(1))

	_, err = doc.ObjectiveName(DefaultObjectiveSlots)
	assert.ErrorIs(t, err, core.ErrNoSuchSlot)
	assert.ErrorIs(t, doc.SetObjectiveName(-1, "x"), core.ErrNoSuchSlot)
	assert.Equal(t, "", doc.ObjectiveLabel(-1))

	names := doc.ObjectiveNames()
	names[1] = "changed"
	name, _ = doc.ObjectiveName(1)
	assert.Equal(t, "Kill target", name)
}

func TestLabel_Runes(t *testing.T) {
	assert.Equal(t, "короткий", Label("короткий"))
	assert.Equal(t, "ääääääääääääääääääää...", Label("äääääääääääääääääääääää"))
}

func TestDataRoundTrip(t *testing.T) {
	doc := NewDocument(0)
	doc.Info.Name = "Convoy"
	doc.Info.Interiors = []string{"bank"}

	actor := &core.Actor{
		Placement: core.Placement{Position: core.Position3D{X: 1, Y: 2, Z: 3}, Model: 0x1234},
		PedProps:  core.PedProps{Health: 200, WeaponHash: 0xBEEF, WeaponAmmo: 9999, Waypoints: []core.Waypoint{{Type: 1}}},
	}
	actor.Attach(11)
	vehicle := &core.Vehicle{Health: 1000, PrimaryColor: core.Color{R: 255, A: 255}}
	marker := &core.TriggerMarker{TypeID: 1, Scale: core.Position3D{X: 2, Y: 2, Z: 1}, ActivateAfter: 1}
	objective := &core.ActorObjective{PedProps: core.PedProps{Health: 150}, ActivateAfter: 2}

	require.NoError(t, doc.Add(actor))
	require.NoError(t, doc.Add(vehicle))
	require.NoError(t, doc.Add(marker))
	require.NoError(t, doc.Add(objective))
	require.NoError(t, doc.SetObjectiveName(1, "Kill target"))

	data := doc.Data()
	require.Len(t, data.Actors, 1)
	assert.False(t, data.Actors[0].Spawned())
	assert.Len(t, data.ObjectiveNames, DefaultObjectiveSlots)
	assert.Equal(t, 4, data.RecordCount())

	restored, err := FromData(data)
	require.NoError(t, err)
	assert.Equal(t, "Convoy", restored.Info.Name)
	assert.Equal(t, []string{"bank"}, restored.Info.Interiors)
	require.Len(t, restored.Actors, 1)
	assert.Equal(t, actor.Position, restored.Actors[0].Position)
	assert.Equal(t, actor.Waypoints, restored.Actors[0].Waypoints)
	require.Len(t, restored.Objectives, 2)
	assert.Equal(t, core.KindTriggerMarker, restored.Objectives[0].Kind())
	assert.Equal(t, 150, restored.Objectives[1].(*core.ActorObjective).Health)
	name, _ := restored.ObjectiveName(1)
	assert.Equal(t, "Kill target", name)

	// flattening again gives the same dump
	assert.Equal(t, data, restored.Data())
}

func TestFromData_UnknownObjective(t *testing.T) {
	_, err := FromData(&core.MissionData{Objectives: []core.ObjectiveData{{Type: "actor"}}})
	assert.Error(t, err)
}
