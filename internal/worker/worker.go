package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/missioneditor/internal/cache"
	"github.com/OCAP2/missioneditor/internal/livesync"
	"github.com/OCAP2/missioneditor/internal/storage"
	"github.com/OCAP2/missioneditor/pkg/core"
)

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Sync   *livesync.Service
	Logger *slog.Logger
}

// Manager runs storage work off the frame thread
type Manager struct {
	deps    Dependencies
	backend storage.Backend
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{
		deps:    deps,
		backend: backend,
	}
}

// Backend returns the storage backend the manager writes to.
func (m *Manager) Backend() storage.Backend {
	return m.backend
}

// StartLoad reads the named mission and streams its models in the background.
// The result is instantiated on the frame thread with livesync.Service.Instantiate.
func (m *Manager) StartLoad(ctx context.Context, name string) *Task[*livesync.Prepared] {
	return Start(ctx, func(ctx context.Context, progress *cache.SafeCounter) (*livesync.Prepared, error) {
		start := time.Now()
		data, err := m.backend.LoadMission(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", name, err)
		}
		p, err := m.deps.Sync.Prepare(ctx, data, progress)
		if err != nil {
			return nil, fmt.Errorf("prepare %q: %w", name, err)
		}
		m.deps.Logger.Debug("Mission prepared", "name", name, "records", data.RecordCount(), "duration", time.Since(start))
		return p, nil
	})
}

// SaveMission writes data under name.
func (m *Manager) SaveMission(ctx context.Context, name string, data *core.MissionData) error {
	start := time.Now()
	if err := m.backend.SaveMission(ctx, name, data); err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	m.deps.Logger.Info("Mission saved", "name", name, "records", data.RecordCount(), "duration", time.Since(start))
	return nil
}

// StartSave writes data in the background. The flattening must already have
// happened on the frame thread; the task only touches storage.
func (m *Manager) StartSave(ctx context.Context, name string, data *core.MissionData) *Task[string] {
	return Start(ctx, func(ctx context.Context, progress *cache.SafeCounter) (string, error) {
		if err := m.SaveMission(ctx, name, data); err != nil {
			return "", err
		}
		progress.Set(data.RecordCount())
		return name, nil
	})
}

// ListMissions returns the names known to the backend.
func (m *Manager) ListMissions(ctx context.Context) ([]string, error) {
	return m.backend.ListMissions(ctx)
}

// DBWriteDurationProvider is an optional interface that backends can implement
// to expose their last DB write duration for monitoring.
type DBWriteDurationProvider interface {
	GetLastDBWriteDuration() time.Duration
}

// GetLastDBWriteDuration returns the duration of the last DB write.
// Returns 0 if the backend doesn't support this metric.
func (m *Manager) GetLastDBWriteDuration() time.Duration {
	if p, ok := m.backend.(DBWriteDurationProvider); ok {
		return p.GetLastDBWriteDuration()
	}
	return 0
}
