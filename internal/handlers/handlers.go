// Package handlers binds operator commands to the editor session.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/OCAP2/missioneditor/internal/dispatcher"
	"github.com/OCAP2/missioneditor/internal/editor"
	"github.com/OCAP2/missioneditor/internal/parser"
	"github.com/OCAP2/missioneditor/internal/worker"
	"github.com/OCAP2/missioneditor/pkg/core"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Session *editor.Session
	Worker  *worker.Manager
	Parser  *parser.Parser
	Logger  *slog.Logger
}

// Service provides handler methods for operator commands
type Service struct {
	deps Dependencies
	ctx  context.Context
}

// NewService creates a new handler service. ctx bounds the background loads
// and saves the handlers start.
func NewService(ctx context.Context, deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Parser == nil {
		deps.Parser = parser.NewParser(deps.Logger)
	}
	return &Service{deps: deps, ctx: ctx}
}

// RegisterHandlers registers every command. opts apply to the commands that
// touch the session; the frame loop passes dispatcher.Deferred so they run on
// its goroutine.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher, opts ...dispatcher.Option) {
	// Mission lifecycle
	d.Register("new", s.handleNew, opts...)
	d.Register("load", s.handleLoad, opts...)
	d.Register("save", s.handleSave, opts...)
	d.Register("exit", s.handleExit, opts...)

	// Placement
	d.Register("aim", s.handleAim, opts...)
	d.Register("select", s.handleSelect, opts...)
	d.Register("action", s.handleAction, opts...)
	d.Register("records", s.handleRecords, opts...)

	// Properties and settings
	d.Register("name", s.handleName, opts...)
	d.Register("text", s.handleText, opts...)
	d.Register("text-cancel", s.handleTextCancel, opts...)
	d.Register("activate", s.handleActivate, opts...)
	d.Register("close", s.handleClose, opts...)
	d.Register("info", s.handleInfo, opts...)
	d.Register("status", s.handleStatus, opts...)

	// Storage only - safe off the frame loop
	d.Register("list", s.handleList, dispatcher.Logged())
}

func (s *Service) handleNew(e dispatcher.Event) (any, error) {
	doc := s.deps.Session.NewMission()
	return fmt.Sprintf("new mission %q", doc.Info.Name), nil
}

func (s *Service) handleLoad(e dispatcher.Event) (any, error) {
	name := s.deps.Parser.ParseName(e.Args)
	if err := s.deps.Session.Load(s.ctx, name); err != nil {
		return nil, fmt.Errorf("failed to load mission: %w", err)
	}
	return "loading " + name, nil
}

func (s *Service) handleSave(e dispatcher.Event) (any, error) {
	name := s.deps.Parser.ParseName(e.Args)
	if name == "" {
		name = s.deps.Session.Mission().GetPath()
	}
	if err := s.deps.Session.Save(s.ctx, name); err != nil {
		return nil, fmt.Errorf("failed to save mission: %w", err)
	}
	return "saving " + name, nil
}

func (s *Service) handleExit(e dispatcher.Event) (any, error) {
	s.deps.Session.Exit()
	return "editor closed", nil
}

func (s *Service) handleList(e dispatcher.Event) (any, error) {
	names, err := s.deps.Worker.ListMissions(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	return names, nil
}

func (s *Service) handleAim(e dispatcher.Event) (any, error) {
	target, err := s.deps.Parser.ParseAim(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse aim: %w", err)
	}
	if target.Entity != core.NoHandle {
		if err := s.deps.Session.AimAtEntity(target.Entity); err != nil {
			return nil, fmt.Errorf("failed to aim: %w", err)
		}
		return fmt.Sprintf("aiming at entity %d", target.Entity), nil
	}
	if err := s.deps.Session.AimAt(target.Point); err != nil {
		return nil, fmt.Errorf("failed to aim: %w", err)
	}
	return "aiming at " + formatPosition(target.Point), nil
}

// handleRecords lists every record with its live handle, the ids aim entity
// takes.
func (s *Service) handleRecords(e dispatcher.Event) (any, error) {
	doc := s.deps.Session.Document()
	if doc == nil {
		return nil, editor.ErrNoMission
	}
	records := doc.Records()
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("%s %d at %s", r.Kind(), r.Base().Handle(), formatPosition(r.Base().Position)))
	}
	return lines, nil
}

func formatPosition(p core.Position3D) string {
	return fmt.Sprintf("%.2f %.2f %.2f", p.X, p.Y, p.Z)
}

func (s *Service) handleSelect(e dispatcher.Event) (any, error) {
	sel, err := s.deps.Parser.ParseSelection(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse selection: %w", err)
	}
	if err := s.deps.Session.Select(s.ctx, sel); err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", sel.Kind, err)
	}
	return "selected " + sel.Kind.String(), nil
}

func (s *Service) handleAction(e dispatcher.Event) (any, error) {
	actions, err := s.deps.Parser.ParseActions(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse actions: %w", err)
	}
	s.deps.Session.Push(actions...)
	return fmt.Sprintf("queued %d", len(actions)), nil
}

func (s *Service) handleName(e dispatcher.Event) (any, error) {
	slot, err := s.deps.Parser.ParseSlot(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse slot: %w", err)
	}
	if err := s.deps.Session.PromptObjectiveName(slot); err != nil {
		return nil, fmt.Errorf("failed to name objective %d: %w", slot, err)
	}
	return fmt.Sprintf("naming objective %d", slot), nil
}

func (s *Service) handleText(e dispatcher.Event) (any, error) {
	if err := s.deps.Session.SubmitText(s.deps.Parser.ParseName(e.Args)); err != nil {
		return nil, fmt.Errorf("failed to submit text: %w", err)
	}
	return "text submitted", nil
}

func (s *Service) handleTextCancel(e dispatcher.Event) (any, error) {
	if err := s.deps.Session.CancelText(); err != nil {
		return nil, fmt.Errorf("failed to cancel text: %w", err)
	}
	return "text cancelled", nil
}

func (s *Service) handleActivate(e dispatcher.Event) (any, error) {
	slot, err := s.deps.Parser.ParseSlot(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse slot: %w", err)
	}
	if err := s.deps.Session.SetActivation(slot); err != nil {
		return nil, fmt.Errorf("failed to set activation: %w", err)
	}
	return fmt.Sprintf("activates after %d", slot), nil
}

func (s *Service) handleClose(e dispatcher.Event) (any, error) {
	s.deps.Session.CloseProperties()
	return "properties closed", nil
}

func (s *Service) handleInfo(e dispatcher.Event) (any, error) {
	update, err := s.deps.Parser.ParseInfo(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse info: %w", err)
	}
	if err := s.deps.Session.UpdateInfo(update); err != nil {
		return nil, fmt.Errorf("failed to update info: %w", err)
	}
	return "updated " + strings.ToLower(e.Args[0]), nil
}

func (s *Service) handleStatus(e dispatcher.Event) (any, error) {
	st := s.deps.Session.Status()
	if !st.Open {
		return "no mission open", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "mission %q", st.Mission)
	if st.Path != "" {
		fmt.Fprintf(&b, " (%s)", st.Path)
	}
	fmt.Fprintf(&b, ", %d records, %s", st.Records, st.State)
	if st.Hover != "" {
		fmt.Fprintf(&b, ", hovering %s", st.Hover)
	}
	if st.Editing != "" {
		fmt.Fprintf(&b, ", editing %s", st.Editing)
	}
	if st.Loading || st.Saving {
		b.WriteString(", busy")
	}
	return b.String(), nil
}
