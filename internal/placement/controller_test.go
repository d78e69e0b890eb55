package placement

import (
	"context"
	"testing"

	"github.com/OCAP2/missioneditor/internal/classify"
	"github.com/OCAP2/missioneditor/internal/hover"
	"github.com/OCAP2/missioneditor/internal/input"
	"github.com/OCAP2/missioneditor/internal/mission"
	"github.com/OCAP2/missioneditor/internal/scene"
	"github.com/OCAP2/missioneditor/internal/scene/sim"
	"github.com/OCAP2/missioneditor/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPickupModel = 0x2C014CA6

type fakeEditors struct {
	opened  []core.Record
	onClose func()
	refuse  bool
}

func (e *fakeEditors) Open(r core.Record, onClose func()) bool {
	if e.refuse {
		return false
	}
	e.opened = append(e.opened, r)
	e.onClose = onClose
	return true
}

type fixture struct {
	host    *sim.Host
	doc     *mission.Document
	editors *fakeEditors
	ctl     *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{host: sim.New(), doc: mission.NewDocument(0), editors: &fakeEditors{}}
	docFn := func() *mission.Document { return f.doc }
	c := classify.New(f.host, docFn, nil)
	ctl, err := New(Dependencies{
		Host:       f.host,
		Document:   docFn,
		Classifier: c,
		Hover:      hover.New(f.host, c),
		Editors:    f.editors,
	}, Config{PickupModel: testPickupModel})
	require.NoError(t, err)
	f.ctl = ctl
	return f
}

// place adds r to the document with a live entity.
func (f *fixture) place(t *testing.T, r core.Record) core.Handle {
	t.Helper()
	h, err := scene.Spawn(f.host, r, testPickupModel)
	require.NoError(t, err)
	r.Base().Attach(h)
	require.NoError(t, f.doc.Add(r))
	return h
}

func (f *fixture) seatPed(t *testing.T, vehicle core.Handle, seat int) core.Handle {
	t.Helper()
	h, err := f.host.SpawnPed(1, core.Transform{})
	require.NoError(t, err)
	f.host.WarpIntoVehicle(h, vehicle, seat)
	return h
}

func TestNew_Defaults(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, Idle, f.ctl.State())
	assert.Equal(t, DefaultRotationStep, f.ctl.cfg.RotationStep)
	assert.Equal(t, core.NoHandle, f.ctl.GhostHandle())
	_, ok := f.ctl.Selection()
	assert.False(t, ok)
}

func TestSelect_SpawnsGhostWithoutCollision(t *testing.T) {
	f := newFixture(t)
	f.host.AimAtPoint(core.Position3D{X: 5, Y: 5})

	require.NoError(t, f.ctl.Select(context.Background(), Selection{Kind: core.KindActor, Model: 10}))
	assert.Equal(t, GhostActive, f.ctl.State())

	e, ok := f.host.Entity(f.ctl.GhostHandle())
	require.True(t, ok)
	assert.Equal(t, scene.KindPed, e.Kind)
	assert.False(t, e.Collision)
	assert.Equal(t, core.Position3D{X: 5, Y: 5, Z: GhostPedOffset}, e.Transform.Position)
	assert.Equal(t, 1, f.host.Requests(10))
}

func TestSelect_PickupUsesPickupModel(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctl.Select(context.Background(), Selection{Kind: core.KindPickup, PickupHash: 7}))
	e, ok := f.host.Entity(f.ctl.GhostHandle())
	require.True(t, ok)
	assert.Equal(t, uint32(testPickupModel), e.Model)
}

func TestSelect_MarkerHasNoLiveGhost(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctl.Select(context.Background(), Selection{Kind: core.KindTriggerMarker, MarkerType: 1}))
	assert.Equal(t, GhostActive, f.ctl.State())
	assert.Equal(t, core.NoHandle, f.ctl.GhostHandle())
	assert.Equal(t, 0, f.host.Count())
}

func TestSelect_ModelFailureKeepsIdle(t *testing.T) {
	f := newFixture(t)
	f.host.FailModel(99)
	err := f.ctl.Select(context.Background(), Selection{Kind: core.KindVehicle, Model: 99})
	require.ErrorIs(t, err, core.ErrModelLoad)
	assert.Equal(t, Idle, f.ctl.State())
	assert.Equal(t, 0, f.host.Count())
}

func TestSelect_ReplacesGhost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindVehicle, Model: 1}))
	first := f.ctl.GhostHandle()
	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindStaticObject, Model: 2}))

	assert.False(t, f.host.IsValid(first))
	assert.Equal(t, 1, f.host.Count())
}

func TestCommit_FactoryDefaults(t *testing.T) {
	tests := []struct {
		name  string
		sel   Selection
		check func(t *testing.T, doc *mission.Document)
	}{
		{"actor", Selection{Kind: core.KindActor, Model: 10}, func(t *testing.T, doc *mission.Document) {
			require.Len(t, doc.Actors, 1)
			a := doc.Actors[0]
			assert.Equal(t, DefaultPedHealth, a.Health)
			assert.Equal(t, DefaultPedAmmo, a.WeaponAmmo)
			assert.Equal(t, DefaultRelationshipGroup, a.RelationshipGroup)
			assert.Equal(t, 0, a.Armor)
			assert.Equal(t, core.NoSeat, a.VehicleSeat)
			assert.False(t, a.SpawnInVehicle)
			assert.Equal(t, core.Position3D{X: 1, Y: 2, Z: 3}, a.Position)
		}},
		{"spawnpoint", Selection{Kind: core.KindSpawnpoint, Model: 11}, func(t *testing.T, doc *mission.Document) {
			require.Len(t, doc.Spawnpoints, 1)
			assert.Equal(t, 0, doc.Spawnpoints[0].RelationshipGroup)
			assert.Equal(t, DefaultPedHealth, doc.Spawnpoints[0].Health)
		}},
		{"vehicle", Selection{Kind: core.KindVehicle, Model: 12}, func(t *testing.T, doc *mission.Document) {
			require.Len(t, doc.Vehicles, 1)
			assert.Equal(t, DefaultVehicleHealth, doc.Vehicles[0].Health)
		}},
		{"pickup", Selection{Kind: core.KindPickup, PickupHash: 77}, func(t *testing.T, doc *mission.Document) {
			require.Len(t, doc.Pickups, 1)
			assert.Equal(t, uint32(77), doc.Pickups[0].PickupHash)
			assert.Equal(t, DefaultPickupAmmo, doc.Pickups[0].Ammo)
		}},
		{"marker", Selection{Kind: core.KindTriggerMarker, MarkerType: 2}, func(t *testing.T, doc *mission.Document) {
			require.Len(t, doc.Objectives, 1)
			m := doc.Objectives[0].(*core.TriggerMarker)
			assert.Equal(t, DefaultActivateAfter, m.ActivateAfter)
			assert.Equal(t, 2, m.TypeID)
			assert.Equal(t, core.NoHandle, m.Handle())
		}},
		{"actor objective", Selection{Kind: core.KindActorObjective, Model: 13}, func(t *testing.T, doc *mission.Document) {
			require.Len(t, doc.Objectives, 1)
			assert.Equal(t, DefaultActivateAfter, doc.Objectives[0].ActivationSlot())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			require.NoError(t, f.ctl.Select(ctx, tt.sel))
			f.host.AimAtPoint(core.Position3D{X: 1, Y: 2, Z: 3})

			f.ctl.Tick(ctx, []input.Action{input.Commit})

			tt.check(t, f.doc)
			assert.Equal(t, 1, f.doc.Count())
			assert.Equal(t, GhostActive, f.ctl.State())
		})
	}
}

func TestCommit_SpawnedEntityMatchesRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindActor, Model: 10}))
	f.host.AimAtPoint(core.Position3D{X: 1, Y: 2, Z: 3})

	rec, err := f.ctl.Commit(ctx)
	require.NoError(t, err)

	e, ok := f.host.Entity(rec.Base().Handle())
	require.True(t, ok)
	assert.True(t, e.Collision)
	assert.False(t, e.Persistent)
	assert.NotEqual(t, f.ctl.GhostHandle(), rec.Base().Handle())
}

func TestCommit_VehicleOverVehicleDeletesAndDisownsOccupants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := &core.Vehicle{Placement: core.Placement{Model: 5, Position: core.Position3D{X: 10}}}
	vh := f.place(t, v)
	driver := &core.Actor{PedProps: core.PedProps{VehicleSeat: core.NoSeat}}
	f.place(t, driver)
	f.host.WarpIntoVehicle(driver.Handle(), vh, -1)
	driver.Board(-1)

	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindVehicle, Model: 6}))
	f.host.AimAtEntity(vh)

	assert.True(t, f.ctl.Tick(ctx, nil))
	ghost, _ := f.host.Entity(f.ctl.GhostHandle())
	assert.Equal(t, uint8(ghostHidden), ghost.Alpha)

	f.ctl.Tick(ctx, []input.Action{input.Commit})

	assert.Empty(t, f.doc.Vehicles)
	assert.False(t, f.host.IsValid(vh))
	assert.False(t, driver.SpawnInVehicle)
	assert.Equal(t, core.NoSeat, driver.VehicleSeat)
	assert.Len(t, f.doc.Actors, 1)

	ghost, _ = f.host.Entity(f.ctl.GhostHandle())
	assert.Equal(t, uint8(ghostVisible), ghost.Alpha)
}

func TestTick_GhostVisualOnlyOnHoverChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vh := f.place(t, &core.Vehicle{Placement: core.Placement{Model: 5, Position: core.Position3D{X: 10}}})

	f.host.AimAtPoint(core.Position3D{X: -10})
	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindVehicle, Model: 6}))
	gh := f.ctl.GhostHandle()
	require.Equal(t, 1, f.host.AlphaWrites(gh))

	for i := 0; i < 5; i++ {
		assert.False(t, f.ctl.Tick(ctx, nil))
	}
	assert.Equal(t, 1, f.host.AlphaWrites(gh))

	f.host.AimAtEntity(vh)
	assert.True(t, f.ctl.Tick(ctx, nil))
	for i := 0; i < 5; i++ {
		assert.False(t, f.ctl.Tick(ctx, nil))
	}
	assert.Equal(t, 2, f.host.AlphaWrites(gh))
	ghost, _ := f.host.Entity(gh)
	assert.Equal(t, uint8(ghostHidden), ghost.Alpha)

	f.host.AimAtPoint(core.Position3D{X: -10})
	assert.True(t, f.ctl.Tick(ctx, nil))
	assert.Equal(t, 3, f.host.AlphaWrites(gh))
	ghost, _ = f.host.Entity(gh)
	assert.Equal(t, uint8(ghostVisible), ghost.Alpha)
}

func TestCommit_VehicleGhostOverObjectiveVehicleCreatesOnTop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vh := f.place(t, &core.VehicleObjective{Placement: core.Placement{Model: 5}, ActivateAfter: 0})

	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindVehicle, Model: 6}))
	f.host.AimAtEntity(vh)
	f.ctl.Tick(ctx, []input.Action{input.Commit})

	// not a swap target, so the commit creates a new record on top
	assert.Len(t, f.doc.Objectives, 1)
	assert.Len(t, f.doc.Vehicles, 1)
	assert.True(t, f.host.IsValid(vh))
}

func TestCommit_PedBoardsFreeSeat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := &core.Vehicle{Placement: core.Placement{Model: 5}}
	vh := f.place(t, v)
	f.seatPed(t, vh, -1)
	f.seatPed(t, vh, 0)
	f.seatPed(t, vh, 1)

	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindActor, Model: 10}))
	f.host.AimAtEntity(vh)
	f.ctl.Tick(ctx, nil)
	require.Equal(t, hover.AllowedGreen, f.ctl.deps.Hover.Visual())

	rec, err := f.ctl.Commit(ctx)
	require.NoError(t, err)

	actor, ok := rec.(*core.Actor)
	require.True(t, ok)
	assert.True(t, actor.SpawnInVehicle)
	assert.Equal(t, 2, actor.VehicleSeat)
	e, ok := f.host.Entity(actor.Handle())
	require.True(t, ok)
	assert.Equal(t, vh, e.Vehicle)
	assert.Equal(t, 2, e.Seat)
	assert.Len(t, f.doc.Vehicles, 1)
	assert.False(t, f.ctl.deps.Hover.Hovering())
}

func TestCommit_PedOverFullVehicleCreatesOnTop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vh := f.place(t, &core.Vehicle{Placement: core.Placement{Model: 5}})
	for _, seat := range []int{-1, 0, 1, 2} {
		f.seatPed(t, vh, seat)
	}

	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindActor, Model: 10}))
	f.host.AimAtEntity(vh)
	f.ctl.Tick(ctx, []input.Action{input.Commit})

	require.Len(t, f.doc.Actors, 1)
	assert.False(t, f.doc.Actors[0].SpawnInVehicle)
}

func TestCommit_ModelFailureLeavesDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindStaticObject, Model: 3}))
	f.host.FailModel(3)

	_, err := f.ctl.Commit(ctx)
	require.ErrorIs(t, err, core.ErrModelLoad)
	assert.Equal(t, 0, f.doc.Count())
}

func TestCommit_ObjectiveChainGapRollsBackSpawn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.doc = mission.NewDocument(1)
	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindVehicleObjective, Model: 3}))
	before := f.host.Count()

	_, err := f.ctl.Commit(ctx)
	require.ErrorIs(t, err, core.ErrNoSuchSlot)
	assert.Equal(t, 0, f.doc.Count())
	assert.Equal(t, before, f.host.Count())
}

func TestRotate_BlockedWhileHovering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	oh := f.place(t, &core.StaticObject{Placement: core.Placement{Model: 4, Position: core.Position3D{X: 20}}})

	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindStaticObject, Model: 4}))
	f.host.AimAtPoint(core.Position3D{})
	f.ctl.Tick(ctx, []input.Action{input.RotateLeft, input.RotateLeft})

	tr, ok := f.ctl.GhostTransform()
	require.True(t, ok)
	assert.InDelta(t, 6.0, tr.Rotation.Yaw, 1e-9)

	f.host.AimAtEntity(oh)
	f.ctl.Tick(ctx, []input.Action{input.RotateRight})
	tr, _ = f.ctl.GhostTransform()
	assert.InDelta(t, 6.0, tr.Rotation.Yaw, 1e-9)

	f.host.AimAtPoint(core.Position3D{})
	f.ctl.Tick(ctx, []input.Action{input.RotateRight, input.RotateRight, input.RotateRight})
	tr, _ = f.ctl.GhostTransform()
	assert.InDelta(t, 357.0, tr.Rotation.Yaw, 1e-9)
}

func TestCopy_CancelLeavesDocumentUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := &core.Pickup{Placement: core.Placement{Position: core.Position3D{X: 3, Y: 3}}, PickupHash: 9, Ammo: 5}
	f.place(t, p)
	before := f.host.Count()

	f.host.AimAtPoint(core.Position3D{X: 3.5, Y: 3})
	f.ctl.Tick(ctx, []input.Action{input.Duplicate})
	require.Equal(t, CopyPending, f.ctl.State())
	assert.Equal(t, before+1, f.host.Count())

	f.host.AimAtPoint(core.Position3D{X: 40})
	f.ctl.Tick(ctx, nil)
	pending, ok := f.ctl.Pending()
	require.True(t, ok)
	assert.Equal(t, core.Position3D{X: 40}, pending.Base().Position)

	f.ctl.Tick(ctx, []input.Action{input.CancelCopy})

	assert.Equal(t, Idle, f.ctl.State())
	assert.Equal(t, before, f.host.Count())
	require.Len(t, f.doc.Pickups, 1)
	assert.Same(t, p, f.doc.Pickups[0])
	assert.Equal(t, core.Position3D{X: 3, Y: 3}, p.Position)
}

func TestCopy_ConfirmAddsClone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := &core.Vehicle{Placement: core.Placement{Model: 5}, Health: 700, PrimaryColor: core.Color{R: 9}}
	vh := f.place(t, v)

	f.host.AimAtEntity(vh)
	f.ctl.Tick(ctx, []input.Action{input.Duplicate})
	pending, ok := f.ctl.Pending()
	require.True(t, ok)
	e, _ := f.host.Entity(pending.Base().Handle())
	assert.False(t, e.Collision)

	f.host.AimAtPoint(core.Position3D{X: 15, Y: 1})
	f.ctl.Tick(ctx, []input.Action{input.ConfirmCopy})

	assert.Equal(t, Idle, f.ctl.State())
	require.Len(t, f.doc.Vehicles, 2)
	clone := f.doc.Vehicles[1]
	assert.Equal(t, 700, clone.Health)
	assert.Equal(t, core.Color{R: 9}, clone.PrimaryColor)
	assert.Equal(t, core.Position3D{X: 15, Y: 1}, clone.Position)
	assert.NotEqual(t, vh, clone.Handle())

	e, ok = f.host.Entity(clone.Handle())
	require.True(t, ok)
	assert.True(t, e.Collision)
}

func TestCopy_SeatedActorCloneDisembarks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vh := f.place(t, &core.Vehicle{Placement: core.Placement{Model: 5}})
	a := &core.Actor{Placement: core.Placement{Model: 1}, PedProps: core.PedProps{VehicleSeat: core.NoSeat}}
	f.place(t, a)
	f.host.WarpIntoVehicle(a.Handle(), vh, 0)
	a.Board(0)

	f.host.AimAtEntity(a.Handle())
	f.ctl.Tick(ctx, []input.Action{input.Duplicate})
	pending, ok := f.ctl.Pending()
	require.True(t, ok)

	ped, _ := core.Seated(pending)
	assert.False(t, ped.SpawnInVehicle)
	assert.Equal(t, core.NoSeat, ped.VehicleSeat)
	assert.True(t, a.SpawnInVehicle)
}

func TestCopy_ReturnsToGhostWhenOneExisted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	oh := f.place(t, &core.StaticObject{Placement: core.Placement{Model: 4}})

	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindStaticObject, Model: 4}))
	f.host.AimAtEntity(oh)
	f.ctl.Tick(ctx, []input.Action{input.Duplicate})
	require.Equal(t, CopyPending, f.ctl.State())

	ghost, _ := f.host.Entity(f.ctl.GhostHandle())
	assert.Equal(t, uint8(ghostHidden), ghost.Alpha)

	f.ctl.Tick(ctx, []input.Action{input.CancelCopy})
	assert.Equal(t, GhostActive, f.ctl.State())
	ghost, _ = f.host.Entity(f.ctl.GhostHandle())
	assert.Equal(t, uint8(ghostVisible), ghost.Alpha)
}

func TestCopy_NothingHovered(t *testing.T) {
	f := newFixture(t)
	f.host.AimAtPoint(core.Position3D{})
	f.ctl.Tick(context.Background(), []input.Action{input.Duplicate})
	assert.Equal(t, Idle, f.ctl.State())
}

func TestInspect_OpenAndClose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := &core.Actor{Placement: core.Placement{Model: 1}, PedProps: core.PedProps{VehicleSeat: core.NoSeat}}
	h := f.place(t, a)

	f.host.AimAtEntity(h)
	f.ctl.Tick(ctx, []input.Action{input.Inspect, input.Delete})

	assert.Equal(t, PropertiesOpen, f.ctl.State())
	require.Len(t, f.editors.opened, 1)
	assert.Same(t, a, f.editors.opened[0])
	// actions after the editor opened are dropped
	assert.Len(t, f.doc.Actors, 1)

	// frames are ignored while the editor is open
	assert.False(t, f.ctl.Tick(ctx, []input.Action{input.Delete}))
	assert.Len(t, f.doc.Actors, 1)

	f.editors.onClose()
	assert.Equal(t, Idle, f.ctl.State())
	assert.True(t, f.ctl.ConsumeMenuDirty())
	assert.False(t, f.ctl.ConsumeMenuDirty())
}

func TestInspect_NotWhileGhostActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := f.place(t, &core.Vehicle{Placement: core.Placement{Model: 1}})

	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindVehicle, Model: 1}))
	f.host.AimAtEntity(h)
	f.ctl.Tick(ctx, []input.Action{input.Inspect})

	assert.Equal(t, GhostActive, f.ctl.State())
	assert.Empty(t, f.editors.opened)
}

func TestInspect_NoEditorForRecord(t *testing.T) {
	f := newFixture(t)
	f.editors.refuse = true
	h := f.place(t, &core.StaticObject{Placement: core.Placement{Model: 1}})
	f.host.AimAtEntity(h)

	f.ctl.Tick(context.Background(), []input.Action{input.Inspect})
	assert.Equal(t, Idle, f.ctl.State())
}

func TestDelete_HoveredInIdle(t *testing.T) {
	f := newFixture(t)
	h := f.place(t, &core.StaticObject{Placement: core.Placement{Model: 1}})
	f.host.AimAtEntity(h)

	f.ctl.Tick(context.Background(), []input.Action{input.Delete})
	assert.Empty(t, f.doc.Objects)
	assert.False(t, f.host.IsValid(h))
}

func TestDelete_NotInDocument(t *testing.T) {
	f := newFixture(t)
	err := f.ctl.Delete(context.Background(), &core.StaticObject{})
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestSuspendInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindStaticObject, Model: 1}))

	f.ctl.SuspendInput()
	f.ctl.Tick(ctx, []input.Action{input.Commit})
	assert.Equal(t, 0, f.doc.Count())

	f.ctl.ResumeInput()
	f.ctl.Tick(ctx, []input.Action{input.Commit})
	assert.Equal(t, 1, f.doc.Count())
}

func TestRemoveGhostAndReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ctl.Select(ctx, Selection{Kind: core.KindVehicle, Model: 1}))
	f.ctl.Tick(ctx, []input.Action{input.RemoveGhost})
	assert.Equal(t, Idle, f.ctl.State())
	assert.Equal(t, 0, f.host.Count())

	h := f.place(t, &core.StaticObject{Placement: core.Placement{Model: 1}})
	f.host.AimAtEntity(h)
	f.ctl.Tick(ctx, []input.Action{input.Duplicate})
	require.Equal(t, CopyPending, f.ctl.State())

	f.ctl.Reset()
	assert.Equal(t, Idle, f.ctl.State())
	assert.Equal(t, 1, f.host.Count())
	_, ok := f.ctl.Pending()
	assert.False(t, ok)
}

func TestSelection_Shape(t *testing.T) {
	tests := []struct {
		kind core.RecordKind
		want hover.Shape
	}{
		{core.KindActor, hover.ShapePed},
		{core.KindSpawnpoint, hover.ShapePed},
		{core.KindActorObjective, hover.ShapePed},
		{core.KindVehicle, hover.ShapeVehicle},
		{core.KindVehicleObjective, hover.ShapeVehicle},
		{core.KindStaticObject, hover.ShapeObject},
		{core.KindPickup, hover.ShapePickup},
		{core.KindPickupObjective, hover.ShapePickup},
		{core.KindTriggerMarker, hover.ShapeMarker},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Selection{Kind: tt.kind}.Shape())
		})
	}
}
