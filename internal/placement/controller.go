// Package placement is the editor's placement state machine. It turns operator
// actions and the per-frame hover into atomic changes of the document and the
// live scene.
package placement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/OCAP2/missioneditor/internal/classify"
	"github.com/OCAP2/missioneditor/internal/hover"
	"github.com/OCAP2/missioneditor/internal/input"
	"github.com/OCAP2/missioneditor/internal/mission"
	"github.com/OCAP2/missioneditor/internal/scene"
	"github.com/OCAP2/missioneditor/pkg/core"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// State of the placement controller.
type State uint8

const (
	Idle State = iota
	GhostActive
	CopyPending
	PropertiesOpen
)

func (s State) String() string {
	switch s {
	case GhostActive:
		return "ghost"
	case CopyPending:
		return "copy"
	case PropertiesOpen:
		return "properties"
	default:
		return "idle"
	}
}

// GhostPedOffset is how far above the aim point a ped preview floats.
const GhostPedOffset = 1.0

// DefaultRotationStep is the yaw change per rotate action, in degrees.
const DefaultRotationStep = 3.0

const (
	ghostVisible = 255
	ghostHidden  = 0
)

// ErrBusy is returned when an operation is not allowed in the current state.
var ErrBusy = errors.New("placement busy")

// PropertyEditors opens the property editor for a record. Open returns false
// when no editor exists for the record. onClose must be called exactly once
// when the editor closes.
type PropertyEditors interface {
	Open(r core.Record, onClose func()) bool
}

// Config holds placement settings.
type Config struct {
	RotationStep float64
	PickupModel  uint32
}

// Dependencies holds the collaborators of the controller.
type Dependencies struct {
	Host       scene.Host
	Document   func() *mission.Document
	Classifier *classify.Classifier
	Hover      *hover.Resolver
	Editors    PropertyEditors
	Logger     *slog.Logger
}

type ghost struct {
	sel       Selection
	handle    core.Handle
	transform core.Transform
}

type pendingCopy struct {
	rec      core.Record
	hadGhost bool
}

// Controller is the placement state machine. All methods run on the frame
// thread.
type Controller struct {
	deps Dependencies
	cfg  Config

	state     State
	ghost     *ghost
	copy      *pendingCopy
	suspended bool
	menuDirty bool

	placed  metric.Int64Counter
	deleted metric.Int64Counter
}

// New creates a Controller in the Idle state.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(deps Dependencies, cfg Config) (*Controller, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.RotationStep == 0 {
		cfg.RotationStep = DefaultRotationStep
	}
	c := &Controller{deps: deps, cfg: cfg}

	m := meter()
	var err error
	c.placed, err = m.Int64Counter(
		"placement.records.placed",
		metric.WithDescription("Records added to the mission by placement"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating placed counter: %w", err)
	}
	c.deleted, err = m.Int64Counter(
		"placement.records.deleted",
		metric.WithDescription("Records removed from the mission by placement"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating deleted counter: %w", err)
	}
	return c, nil
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Selection returns the active ghost selection.
func (c *Controller) Selection() (Selection, bool) {
	if c.ghost == nil {
		return Selection{}, false
	}
	return c.ghost.sel, true
}

// GhostHandle returns the live handle of the preview entity.
func (c *Controller) GhostHandle() core.Handle {
	if c.ghost == nil {
		return core.NoHandle
	}
	return c.ghost.handle
}

// GhostTransform returns the preview transform.
func (c *Controller) GhostTransform() (core.Transform, bool) {
	if c.ghost == nil {
		return core.Transform{}, false
	}
	return c.ghost.transform, true
}

// Pending returns the clone waiting for confirmation.
func (c *Controller) Pending() (core.Record, bool) {
	if c.copy == nil {
		return nil, false
	}
	return c.copy.rec, true
}

// SuspendInput disables placement actions while a text prompt is open.
func (c *Controller) SuspendInput() {
	c.suspended = true
}

// ResumeInput re-enables placement actions.
func (c *Controller) ResumeInput() {
	c.suspended = false
}

// InputSuspended reports whether placement actions are ignored.
func (c *Controller) InputSuspended() bool {
	return c.suspended
}

// MarkMenuDirty flags the mission menu for a rebuild.
func (c *Controller) MarkMenuDirty() {
	c.menuDirty = true
}

// ConsumeMenuDirty returns and clears the rebuild flag.
func (c *Controller) ConsumeMenuDirty() bool {
	d := c.menuDirty
	c.menuDirty = false
	return d
}

// Select spawns a ghost for the selection, replacing any current ghost.
func (c *Controller) Select(ctx context.Context, sel Selection) error {
	if c.state == CopyPending || c.state == PropertiesOpen {
		return fmt.Errorf("select %s in %s: %w", sel.Kind, c.state, ErrBusy)
	}
	c.dropGhost()

	g := &ghost{sel: sel, handle: core.NoHandle}
	hit := c.deps.Host.Raycast()
	g.transform.Position = c.ghostPosition(sel, hit.Point)

	shape := sel.Shape()
	if shape != hover.ShapeMarker {
		model := sel.Model
		if shape == hover.ShapePickup {
			model = c.cfg.PickupModel
		}
		if err := c.deps.Host.RequestModel(ctx, model); err != nil {
			return fmt.Errorf("select %s: %w", sel.Kind, err)
		}
		var (
			h   core.Handle
			err error
		)
		switch shape {
		case hover.ShapePed:
			h, err = c.deps.Host.SpawnPed(model, g.transform)
		case hover.ShapeVehicle:
			h, err = c.deps.Host.SpawnVehicle(model, g.transform)
		default:
			h, err = c.deps.Host.SpawnObject(model, g.transform)
		}
		if err != nil {
			return fmt.Errorf("select %s: %w", sel.Kind, err)
		}
		c.deps.Host.SetCollision(h, false)
		c.deps.Host.SetAlpha(h, ghostVisible)
		g.handle = h
	}

	c.ghost = g
	c.deps.Hover.Clear()
	c.state = GhostActive
	c.deps.Logger.Debug("ghost selected", "kind", sel.Kind.String(), "model", sel.Model)
	return nil
}

func (c *Controller) ghostPosition(sel Selection, aim core.Position3D) core.Position3D {
	if sel.Shape() == hover.ShapePed {
		return aim.Add(core.Up(GhostPedOffset))
	}
	return aim
}

// RemoveGhost destroys the preview and returns to Idle.
func (c *Controller) RemoveGhost() {
	if c.state != GhostActive {
		return
	}
	c.dropGhost()
	c.deps.Hover.Clear()
	c.state = Idle
}

func (c *Controller) dropGhost() {
	if c.ghost == nil {
		return
	}
	if c.ghost.handle != core.NoHandle {
		c.deps.Host.Destroy(c.ghost.handle)
	}
	c.ghost = nil
}

// Reset abandons every transient flow and returns to Idle. Pending copies are
// destroyed.
func (c *Controller) Reset() {
	if c.copy != nil {
		if h := c.copy.rec.Base().Detach(); h != core.NoHandle {
			c.deps.Host.Destroy(h)
		}
		c.copy = nil
	}
	c.dropGhost()
	c.deps.Hover.Clear()
	c.suspended = false
	c.state = Idle
}

// Tick advances one frame: it moves the ghost or pending copy to the aim
// point, refreshes the hover and applies the queued actions in order. It
// returns true when the hover changed.
func (c *Controller) Tick(ctx context.Context, actions []input.Action) bool {
	if c.suspended || c.state == PropertiesOpen || c.deps.Document() == nil {
		return false
	}

	hit := c.deps.Host.Raycast()
	changed := false
	switch c.state {
	case GhostActive:
		if hit.Hit {
			c.ghost.transform.Position = c.ghostPosition(c.ghost.sel, hit.Point)
			if c.ghost.handle != core.NoHandle {
				c.deps.Host.SetTransform(c.ghost.handle, c.ghost.transform)
			}
		}
		changed = c.deps.Hover.Update(c.ghostDescriptor())
		if changed {
			c.applyGhostVisual()
		}
	case CopyPending:
		if hit.Hit {
			base := c.copy.rec.Base()
			base.Position = hit.Point
			if h := base.Handle(); h != core.NoHandle {
				c.deps.Host.SetTransform(h, base.Transform())
			}
		}
	case Idle:
		changed = c.deps.Hover.Update(nil)
	}

	for _, a := range actions {
		if err := c.apply(ctx, a); err != nil {
			c.deps.Logger.Warn("placement action failed", "action", a.String(), "state", c.state.String(), "error", err)
		}
		if c.suspended || c.state == PropertiesOpen {
			break
		}
	}
	return changed
}

func (c *Controller) apply(ctx context.Context, a input.Action) error {
	switch a {
	case input.Commit:
		if c.state == GhostActive {
			_, err := c.Commit(ctx)
			return err
		}
	case input.Duplicate:
		return c.Duplicate(ctx)
	case input.ConfirmCopy:
		return c.ConfirmCopy(ctx)
	case input.CancelCopy:
		c.CancelCopy()
	case input.Inspect:
		c.Inspect()
	case input.RotateLeft:
		c.Rotate(c.cfg.RotationStep)
	case input.RotateRight:
		c.Rotate(-c.cfg.RotationStep)
	case input.RemoveGhost:
		c.RemoveGhost()
	case input.Delete:
		return c.DeleteHovered(ctx)
	}
	return nil
}

func (c *Controller) ghostDescriptor() *hover.Ghost {
	if c.ghost == nil {
		return nil
	}
	return &hover.Ghost{
		Shape:       c.ghost.sel.Shape(),
		Handle:      c.ghost.handle,
		Objective:   c.ghost.sel.Kind.IsObjective(),
		PlayerSpawn: c.ghost.sel.Kind == core.KindSpawnpoint,
	}
}

// applyGhostVisual hides the preview while it is over something it would replace.
func (c *Controller) applyGhostVisual() {
	if c.ghost == nil || c.ghost.handle == core.NoHandle {
		return
	}
	alpha := uint8(ghostVisible)
	if c.deps.Hover.Visual() == hover.BlockedRed {
		alpha = ghostHidden
	}
	c.deps.Host.SetAlpha(c.ghost.handle, alpha)
}

// Rotate turns the ghost by delta degrees. It does nothing while hovering.
func (c *Controller) Rotate(delta float64) bool {
	if c.state != GhostActive || c.deps.Hover.Hovering() {
		return false
	}
	c.ghost.transform.Rotation = c.ghost.transform.Rotation.WithYaw(delta)
	if c.ghost.handle != core.NoHandle {
		c.deps.Host.SetTransform(c.ghost.handle, c.ghost.transform)
	}
	return true
}

// Commit places the ghost. Without a hover target it creates a new record;
// over a compatible target it swaps: a red target is deleted, a green vehicle
// gets a new seated actor. The ghost stays active.
func (c *Controller) Commit(ctx context.Context) (core.Record, error) {
	if c.state != GhostActive {
		return nil, fmt.Errorf("commit in %s: %w", c.state, ErrBusy)
	}
	target, hovering := c.deps.Hover.Target()
	if !hovering {
		return c.create(ctx)
	}

	var (
		rec core.Record
		err error
	)
	switch c.deps.Hover.Visual() {
	case hover.AllowedGreen:
		rec, err = c.board(ctx, target)
	case hover.BlockedRed:
		err = c.Delete(ctx, target.Record)
	}
	c.deps.Hover.Clear()
	c.applyGhostVisual()
	return rec, err
}

func (c *Controller) commitTransform() core.Transform {
	t := c.ghost.transform
	if c.ghost.sel.Shape() == hover.ShapePed {
		t.Position = t.Position.Sub(core.Up(GhostPedOffset))
	}
	return t
}

func (c *Controller) create(ctx context.Context) (core.Record, error) {
	var primary, secondary core.Color
	if c.ghost.handle != core.NoHandle {
		primary, secondary = c.deps.Host.Colors(c.ghost.handle)
	}
	rec := newRecord(c.ghost.sel, c.commitTransform(), primary, secondary)
	if err := c.spawnAndAdd(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Controller) board(ctx context.Context, target hover.Target) (core.Record, error) {
	sel := c.ghost.sel
	sel.Kind = core.KindActor
	rec := newRecord(sel, c.commitTransform(), core.Color{}, core.Color{}).(*core.Actor)
	if err := c.spawnAndAdd(ctx, rec); err != nil {
		return nil, err
	}
	c.deps.Host.WarpIntoVehicle(rec.Handle(), target.Handle, target.Seat)
	rec.Board(target.Seat)
	return rec, nil
}

// spawnAndAdd creates the live entity for rec and adds rec to the document.
// Either both happen or neither does.
func (c *Controller) spawnAndAdd(ctx context.Context, rec core.Record) error {
	if model := scene.ModelFor(rec, c.cfg.PickupModel); model != 0 {
		if err := c.deps.Host.RequestModel(ctx, model); err != nil {
			return fmt.Errorf("place %s: %w", rec.Kind(), err)
		}
	}
	h, err := scene.Spawn(c.deps.Host, rec, c.cfg.PickupModel)
	if err != nil {
		return fmt.Errorf("place %s: %w", rec.Kind(), err)
	}
	rec.Base().Attach(h)
	if err := c.deps.Document().Add(rec); err != nil {
		rec.Base().Detach()
		if h != core.NoHandle {
			c.deps.Host.Destroy(h)
		}
		return err
	}
	c.placed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", rec.Kind().String())))
	return nil
}

// DeleteHovered deletes the record under the aim while no ghost is active.
func (c *Controller) DeleteHovered(ctx context.Context) error {
	if c.state != Idle {
		return nil
	}
	target, ok := c.deps.Hover.Target()
	if !ok {
		return nil
	}
	err := c.Delete(ctx, target.Record)
	c.deps.Hover.Clear()
	return err
}

// Delete removes a record from the document and destroys its live entity.
// Actors seated in a deleted vehicle lose their seat first.
func (c *Controller) Delete(ctx context.Context, r core.Record) error {
	h := r.Base().Handle()
	if h != core.NoHandle && c.deps.Host.IsValid(h) && c.deps.Host.KindOf(h) == scene.KindVehicle {
		c.disownOccupants(h)
	}
	if err := c.deps.Document().Remove(r); err != nil {
		return err
	}
	if h := r.Base().Detach(); h != core.NoHandle {
		c.deps.Host.Destroy(h)
	}
	c.deleted.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", r.Kind().String())))
	return nil
}

func (c *Controller) disownOccupants(vehicle core.Handle) {
	for _, occupant := range c.deps.Host.Occupants(vehicle) {
		m, ok := c.deps.Classifier.Owner(occupant)
		if !ok {
			continue
		}
		if ped, ok := core.Seated(m.Record); ok {
			ped.Disembark()
		}
	}
}

// Duplicate clones the hovered record and lets it follow the aim until the
// copy is confirmed or cancelled. The document is not touched until then.
func (c *Controller) Duplicate(ctx context.Context) error {
	if c.state != Idle && c.state != GhostActive {
		return fmt.Errorf("copy in %s: %w", c.state, ErrBusy)
	}
	target, ok := c.deps.Hover.Target()
	if !ok {
		return nil
	}

	clone := target.Record.Clone()
	if ped, ok := core.Seated(clone); ok {
		ped.Disembark()
	}
	if model := scene.ModelFor(clone, c.cfg.PickupModel); model != 0 {
		if err := c.deps.Host.RequestModel(ctx, model); err != nil {
			return fmt.Errorf("copy %s: %w", clone.Kind(), err)
		}
	}
	h, err := scene.Spawn(c.deps.Host, clone, c.cfg.PickupModel)
	if err != nil {
		return fmt.Errorf("copy %s: %w", clone.Kind(), err)
	}
	if h != core.NoHandle {
		c.deps.Host.SetCollision(h, false)
		c.deps.Host.SetFrozen(h, false)
		clone.Base().Attach(h)
	}

	hadGhost := c.ghost != nil
	if hadGhost && c.ghost.handle != core.NoHandle {
		c.deps.Host.SetAlpha(c.ghost.handle, ghostHidden)
	}
	c.copy = &pendingCopy{rec: clone, hadGhost: hadGhost}
	c.deps.Hover.Clear()
	c.state = CopyPending
	return nil
}

// ConfirmCopy adds the pending clone to the document.
func (c *Controller) ConfirmCopy(ctx context.Context) error {
	if c.state != CopyPending {
		return nil
	}
	rec := c.copy.rec
	if h := rec.Base().Handle(); h != core.NoHandle {
		if t, ok := c.deps.Host.Transform(h); ok {
			rec.Base().SetTransform(t)
		}
		frozen := rec.Kind() == core.KindSpawnpoint || rec.Kind() == core.KindPickup || rec.Kind() == core.KindPickupObjective
		if rec.Kind() != core.KindPickup && rec.Kind() != core.KindPickupObjective {
			c.deps.Host.SetCollision(h, true)
		}
		c.deps.Host.SetFrozen(h, frozen)
	}
	if err := c.deps.Document().Add(rec); err != nil {
		c.CancelCopy()
		return fmt.Errorf("confirm copy: %w", err)
	}
	c.placed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", rec.Kind().String())))
	c.endCopy()
	return nil
}

// CancelCopy destroys the pending clone. The document is unchanged.
func (c *Controller) CancelCopy() {
	if c.state != CopyPending {
		return
	}
	if h := c.copy.rec.Base().Detach(); h != core.NoHandle {
		c.deps.Host.Destroy(h)
	}
	c.endCopy()
}

func (c *Controller) endCopy() {
	hadGhost := c.copy.hadGhost
	c.copy = nil
	if hadGhost && c.ghost != nil {
		if c.ghost.handle != core.NoHandle {
			c.deps.Host.SetAlpha(c.ghost.handle, ghostVisible)
		}
		c.state = GhostActive
		return
	}
	c.state = Idle
}

// Inspect opens the property editor for the hovered record. Only allowed
// without a ghost.
func (c *Controller) Inspect() bool {
	if c.state != Idle || c.deps.Editors == nil {
		return false
	}
	target, ok := c.deps.Hover.Target()
	if !ok {
		return false
	}
	if !c.deps.Editors.Open(target.Record, c.closeProperties) {
		return false
	}
	c.state = PropertiesOpen
	return true
}

func (c *Controller) closeProperties() {
	if c.state != PropertiesOpen {
		return
	}
	c.deps.Hover.Clear()
	c.menuDirty = true
	c.state = Idle
}
