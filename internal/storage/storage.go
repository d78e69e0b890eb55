package storage

import (
	"context"

	"github.com/OCAP2/missioneditor/pkg/core"
)

// Backend is the interface all mission storage implementations must satisfy.
// Names are backend specific: the file backend accepts paths, the database
// backends use them as keys.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	SaveMission(ctx context.Context, name string, data *core.MissionData) error
	// LoadMission returns core.ErrMissionNotFound (wrapped) for unknown names.
	LoadMission(ctx context.Context, name string) (*core.MissionData, error)
	ListMissions(ctx context.Context) ([]string, error)
}

// Locator is an optional interface for backends that write to the filesystem
// and can report where a mission name resolves to.
type Locator interface {
	PathFor(name string) string
}
