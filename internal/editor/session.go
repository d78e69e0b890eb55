// Package editor holds the state of one editing session: the active document,
// the placement machine wired to it, background loads and saves, and the
// objective name prompt. Everything here runs on the frame thread.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/missioneditor/internal/classify"
	"github.com/OCAP2/missioneditor/internal/hover"
	"github.com/OCAP2/missioneditor/internal/input"
	"github.com/OCAP2/missioneditor/internal/livesync"
	"github.com/OCAP2/missioneditor/internal/mission"
	"github.com/OCAP2/missioneditor/internal/placement"
	"github.com/OCAP2/missioneditor/internal/queue"
	"github.com/OCAP2/missioneditor/internal/scene"
	"github.com/OCAP2/missioneditor/internal/worker"
	"github.com/OCAP2/missioneditor/pkg/core"
)

var (
	// ErrNoMission is returned by operations that need an open document.
	ErrNoMission = errors.New("no mission open")

	// ErrNoName is returned when saving a mission that was never named.
	ErrNoName = errors.New("mission has no storage name")

	// ErrPromptOpen is returned while the text prompt owns input.
	ErrPromptOpen = errors.New("text prompt open")

	// ErrNotObjective is returned when the open property editor is not bound
	// to an objective.
	ErrNotObjective = errors.New("record is not an objective")

	// ErrNoPrompt is returned when text arrives with no prompt open.
	ErrNoPrompt = errors.New("no text prompt open")

	// ErrNotScriptable is returned when the host reads aim or text from its
	// own devices.
	ErrNotScriptable = errors.New("host input is not scriptable")
)

// Config holds session settings.
type Config struct {
	ObjectiveSlots int
	RotationStep   float64
	PickupModel    uint32
}

// ActivityRecorder receives completed saves and loads, usually the InfluxDB
// sink.
type ActivityRecorder interface {
	MissionSaved(name string, records int, elapsed time.Duration)
	MissionLoaded(name string, loaded, skipped int)
}

// Dependencies holds the collaborators of a session.
type Dependencies struct {
	Host    scene.Host
	Sync    *livesync.Service
	Worker  *worker.Manager
	Mission *mission.Context
	Logger  *slog.Logger

	// Flush runs after every successful save, usually the log exporter flush.
	Flush func(context.Context) error

	// Activity is optional.
	Activity ActivityRecorder
}

type pendingLoad struct {
	name string
	task *worker.Task[*livesync.Prepared]
}

type pendingSave struct {
	name    string
	records int
	started time.Time
	task    *worker.Task[string]
}

type prompt struct {
	slot int
}

// Session is the editor state passed to every command handler.
type Session struct {
	deps Dependencies
	cfg  Config

	classifier *classify.Classifier
	hover      *hover.Resolver
	placement  *placement.Controller
	properties *Properties
	actions    *input.Queue

	load   *pendingLoad
	saves  []*pendingSave
	prompt *prompt

	notices *queue.Queue[string]
}

// New creates a session with no document open.
func New(deps Dependencies, cfg Config) (*Session, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Mission == nil {
		deps.Mission = mission.NewContext()
	}
	if cfg.ObjectiveSlots <= 0 {
		cfg.ObjectiveSlots = mission.DefaultObjectiveSlots
	}

	s := &Session{
		deps:       deps,
		cfg:        cfg,
		properties: &Properties{},
		actions:    input.NewQueue(),
		notices:    queue.New[string](),
	}
	s.classifier = classify.New(deps.Host, deps.Mission.GetDocument, deps.Logger)
	s.hover = hover.New(deps.Host, s.classifier)

	ctl, err := placement.New(placement.Dependencies{
		Host:       deps.Host,
		Document:   deps.Mission.GetDocument,
		Classifier: s.classifier,
		Hover:      s.hover,
		Editors:    s.properties,
		Logger:     deps.Logger,
	}, placement.Config{
		RotationStep: cfg.RotationStep,
		PickupModel:  cfg.PickupModel,
	})
	if err != nil {
		return nil, fmt.Errorf("creating placement controller: %w", err)
	}
	s.placement = ctl
	return s, nil
}

// Placement returns the placement controller.
func (s *Session) Placement() *placement.Controller {
	return s.placement
}

// Hover returns the hover resolver.
func (s *Session) Hover() *hover.Resolver {
	return s.hover
}

// Properties returns the property editor state.
func (s *Session) Properties() *Properties {
	return s.properties
}

// Mission returns the mission context.
func (s *Session) Mission() *mission.Context {
	return s.deps.Mission
}

// Document returns the active document, nil when none is open.
func (s *Session) Document() *mission.Document {
	return s.deps.Mission.GetDocument()
}

// Loading reports whether a load is in flight.
func (s *Session) Loading() bool {
	return s.load != nil
}

// Saving reports whether a save is in flight.
func (s *Session) Saving() bool {
	return len(s.saves) > 0
}

// Busy reports whether any background work is in flight.
func (s *Session) Busy() bool {
	return s.Loading() || s.Saving()
}

// Prompting reports whether the objective name prompt is open.
func (s *Session) Prompting() bool {
	return s.prompt != nil
}

// notify queues a message for the operator.
func (s *Session) notify(format string, args ...any) {
	s.notices.Push(fmt.Sprintf(format, args...))
}

// Notices returns and clears the pending operator messages. Safe to call from
// any goroutine.
func (s *Session) Notices() []string {
	return s.notices.GetAndEmpty()
}

// teardown returns the session to Idle with no live handles left behind.
func (s *Session) teardown() {
	s.cancelLoad()
	s.cancelPrompt()
	s.properties.Close()
	s.placement.Reset()
	s.actions.Clear()
	if doc := s.deps.Mission.GetDocument(); doc != nil {
		doc.Clear(s.deps.Host)
	}
}

// NewMission discards the active document and opens an empty one with default
// settings.
func (s *Session) NewMission() *mission.Document {
	s.teardown()
	doc := mission.NewDocument(s.cfg.ObjectiveSlots)
	s.deps.Mission.SetDocument(doc, "")
	s.deps.Logger.Info("New mission", "slots", doc.ObjectiveSlots())
	return doc
}

// Load starts reading the named mission in the background. The active
// document stays editable until the load finishes; Tick then swaps it in. A
// second Load cancels the first.
func (s *Session) Load(ctx context.Context, name string) error {
	if name == "" {
		return ErrNoName
	}
	s.cancelLoad()
	s.load = &pendingLoad{name: name, task: s.deps.Worker.StartLoad(ctx, name)}
	s.deps.Logger.Info("Loading mission", "name", name)
	return nil
}

func (s *Session) cancelLoad() {
	if s.load == nil {
		return
	}
	s.load.task.Cancel()
	s.load = nil
}

func (s *Session) pollLoad(ctx context.Context) {
	if s.load == nil || !s.load.task.Finished() {
		return
	}
	name := s.load.name
	p, err := s.load.task.Result()
	s.load = nil
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.deps.Logger.Error("Mission load failed", "name", name, "error", err)
		s.notify("load %s failed: %v", name, err)
		return
	}

	s.teardown()
	doc, report := s.deps.Sync.Instantiate(ctx, p)
	s.deps.Mission.SetDocument(doc, name)
	if s.deps.Activity != nil {
		s.deps.Activity.MissionLoaded(name, report.Loaded, report.SkippedCount())
	}
	if n := report.SkippedCount(); n > 0 {
		s.notify("loaded %s: %d records, %d skipped", name, report.Loaded, n)
		return
	}
	s.notify("loaded %s: %d records", name, report.Loaded)
}

// Save pulls live state into the document and writes it under name in the
// background. An empty name reuses the name the document was loaded from or
// last saved to.
func (s *Session) Save(ctx context.Context, name string) error {
	doc := s.deps.Mission.GetDocument()
	if doc == nil {
		return ErrNoMission
	}
	if name == "" {
		name = s.deps.Mission.GetPath()
	}
	if name == "" {
		return ErrNoName
	}
	data := s.deps.Sync.Save(doc)
	s.saves = append(s.saves, &pendingSave{
		name:    name,
		records: data.RecordCount(),
		started: time.Now(),
		task:    s.deps.Worker.StartSave(ctx, name, data),
	})
	return nil
}

func (s *Session) pollSaves(ctx context.Context) {
	pending := s.saves[:0]
	for _, sv := range s.saves {
		if !sv.task.Finished() {
			pending = append(pending, sv)
			continue
		}
		if _, err := sv.task.Result(); err != nil {
			s.notify("save %s failed: %v", sv.name, err)
			continue
		}
		s.deps.Mission.SetPath(sv.name)
		s.notify("saved %s", sv.name)
		if s.deps.Activity != nil {
			s.deps.Activity.MissionSaved(sv.name, sv.records, time.Since(sv.started))
		}
		if s.deps.Flush != nil {
			if err := s.deps.Flush(ctx); err != nil {
				s.deps.Logger.Warn("Flush after save failed", "error", err)
			}
		}
	}
	s.saves = pending
}

// Exit tears down every live handle and returns the camera to gameplay.
func (s *Session) Exit() {
	s.teardown()
	s.deps.Mission.SetDocument(nil, "")
	s.deps.Host.RestoreView()
	s.deps.Logger.Info("Editor closed")
}

// Select arms a ghost for the selection.
func (s *Session) Select(ctx context.Context, sel placement.Selection) error {
	if s.deps.Mission.GetDocument() == nil {
		return ErrNoMission
	}
	if s.prompt != nil {
		return ErrPromptOpen
	}
	return s.placement.Select(ctx, sel)
}

// Push queues placement actions for the next frame.
func (s *Session) Push(actions ...input.Action) {
	s.actions.Push(actions...)
}

// UpdateInfo edits the mission settings.
func (s *Session) UpdateInfo(fn func(*core.MissionInfo) error) error {
	doc := s.deps.Mission.GetDocument()
	if doc == nil {
		return ErrNoMission
	}
	info := doc.Info
	if err := fn(&info); err != nil {
		return err
	}
	doc.Info = info
	s.placement.MarkMenuDirty()
	return nil
}

// SetActivation moves the objective in the open property editor to slot.
func (s *Session) SetActivation(slot int) error {
	doc := s.deps.Mission.GetDocument()
	if doc == nil {
		return ErrNoMission
	}
	o, ok := s.properties.Objective()
	if !ok {
		return ErrNotObjective
	}
	if err := doc.SetActivation(o, slot); err != nil {
		return err
	}
	s.placement.MarkMenuDirty()
	return nil
}

// CloseProperties closes the open property editor, if any.
func (s *Session) CloseProperties() {
	s.properties.Close()
}

// PromptObjectiveName opens the host keyboard with the current title of slot.
// Placement input stays suspended until the prompt completes.
func (s *Session) PromptObjectiveName(slot int) error {
	doc := s.deps.Mission.GetDocument()
	if doc == nil {
		return ErrNoMission
	}
	if s.prompt != nil {
		return ErrPromptOpen
	}
	current, err := doc.ObjectiveName(slot)
	if err != nil {
		return err
	}
	s.placement.SuspendInput()
	s.deps.Host.OpenTextInput(current)
	s.prompt = &prompt{slot: slot}
	return nil
}

// SubmitText completes the open prompt with text. The name is applied on the
// next Tick.
func (s *Session) SubmitText(text string) error {
	kb, err := s.keyboard()
	if err != nil {
		return err
	}
	kb.SubmitText(text)
	return nil
}

// CancelText dismisses the open prompt. The slot keeps its name.
func (s *Session) CancelText() error {
	kb, err := s.keyboard()
	if err != nil {
		return err
	}
	kb.CancelText()
	return nil
}

func (s *Session) keyboard() (scene.Keyboard, error) {
	if s.prompt == nil {
		return nil, ErrNoPrompt
	}
	kb, ok := s.deps.Host.(scene.Keyboard)
	if !ok {
		return nil, ErrNotScriptable
	}
	return kb, nil
}

// AimAt points the host ray at empty ground at p.
func (s *Session) AimAt(p core.Position3D) error {
	ptr, ok := s.deps.Host.(scene.Pointer)
	if !ok {
		return ErrNotScriptable
	}
	ptr.AimAtPoint(p)
	return nil
}

// AimAtEntity points the host ray at a live entity.
func (s *Session) AimAtEntity(h core.Handle) error {
	ptr, ok := s.deps.Host.(scene.Pointer)
	if !ok {
		return ErrNotScriptable
	}
	if h == core.NoHandle || !s.deps.Host.IsValid(h) {
		return fmt.Errorf("aim at %d: %w", h, core.ErrInvalidHandle)
	}
	ptr.AimAtEntity(h)
	return nil
}

func (s *Session) cancelPrompt() {
	if s.prompt == nil {
		return
	}
	s.prompt = nil
	s.placement.ResumeInput()
}

func (s *Session) pollPrompt() {
	if s.prompt == nil {
		return
	}
	text, ok, cancelled := s.deps.Host.PollTextInput()
	if !ok {
		return
	}
	slot := s.prompt.slot
	s.cancelPrompt()
	if cancelled {
		s.deps.Logger.Debug("Objective name prompt cancelled", "slot", slot, "reason", core.ErrUserCancelled)
		return
	}
	doc := s.deps.Mission.GetDocument()
	if doc == nil {
		return
	}
	if err := doc.SetObjectiveName(slot, text); err != nil {
		s.deps.Logger.Warn("Objective name rejected", "slot", slot, "error", err)
		return
	}
	s.placement.MarkMenuDirty()
}

// Tick advances the session by one frame. It returns true when the hover
// changed.
func (s *Session) Tick(ctx context.Context) bool {
	s.pollLoad(ctx)
	s.pollSaves(ctx)
	s.pollPrompt()

	actions := s.actions.Drain()
	if s.deps.Mission.GetDocument() == nil {
		return false
	}
	return s.placement.Tick(ctx, actions)
}
