package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/OCAP2/missioneditor/internal/cache"
	"github.com/OCAP2/missioneditor/internal/livesync"
	"github.com/OCAP2/missioneditor/internal/scene/sim"
	"github.com/OCAP2/missioneditor/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBackend implements storage.Backend for testing
type mockBackend struct {
	mu       sync.Mutex
	missions map[string]*core.MissionData
	saveErr  error
}

func newMockBackend() *mockBackend {
	return &mockBackend{missions: map[string]*core.MissionData{}}
}

func (b *mockBackend) Init() error  { return nil }
func (b *mockBackend) Close() error { return nil }

func (b *mockBackend) SaveMission(ctx context.Context, name string, data *core.MissionData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.missions[name] = data
	return nil
}

func (b *mockBackend) LoadMission(ctx context.Context, name string) (*core.MissionData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.missions[name]
	if !ok {
		return nil, core.ErrMissionNotFound
	}
	return data, nil
}

func (b *mockBackend) ListMissions(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.missions))
	for name := range b.missions {
		names = append(names, name)
	}
	return names, nil
}

// durationBackend also reports a write duration
type durationBackend struct {
	*mockBackend
}

func (durationBackend) GetLastDBWriteDuration() time.Duration { return 3 * time.Millisecond }

func newManager(t *testing.T, backend *mockBackend) (*Manager, *sim.Host) {
	t.Helper()
	host := sim.New()
	svc, err := livesync.New(host, cache.NewModelCache(), 0x2C014CA6, nil)
	require.NoError(t, err)
	return NewManager(Dependencies{Sync: svc}, backend), host
}

func sampleData() *core.MissionData {
	return &core.MissionData{
		Info:           core.MissionInfo{Name: "Yard"},
		Spawnpoints:    []core.Spawnpoint{{Placement: core.Placement{Model: 1}, PedProps: core.PedProps{Health: 200, VehicleSeat: core.NoSeat}}},
		Actors:         []core.Actor{},
		Vehicles:       []core.Vehicle{{Placement: core.Placement{Model: 2, Position: core.Position3D{X: 5}}, Health: 1000}},
		Objects:        []core.StaticObject{},
		Pickups:        []core.Pickup{},
		Objectives:     []core.ObjectiveData{},
		ObjectiveNames: make([]string, 301),
	}
}

func TestStartLoad_PreparesWithoutSpawning(t *testing.T) {
	backend := newMockBackend()
	backend.missions["yard"] = sampleData()
	m, host := newManager(t, backend)

	task := m.StartLoad(context.Background(), "yard")
	p, err := task.Wait()
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, 2, task.Progress())
	assert.Equal(t, 0, host.Count())
	assert.Equal(t, 2, p.Document.Count())
	assert.Equal(t, 1, host.Requests(1))
}

func TestStartLoad_NotFound(t *testing.T) {
	m, _ := newManager(t, newMockBackend())

	_, err := m.StartLoad(context.Background(), "missing").Wait()
	require.ErrorIs(t, err, core.ErrMissionNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestSaveMission(t *testing.T) {
	backend := newMockBackend()
	m, _ := newManager(t, backend)

	require.NoError(t, m.SaveMission(context.Background(), "yard", sampleData()))
	names, err := m.ListMissions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"yard"}, names)

	backend.saveErr = assert.AnError
	err = m.SaveMission(context.Background(), "yard", sampleData())
	require.ErrorIs(t, err, assert.AnError)
}

func TestGetLastDBWriteDuration(t *testing.T) {
	m, _ := newManager(t, newMockBackend())
	assert.Equal(t, time.Duration(0), m.GetLastDBWriteDuration())

	m.backend = durationBackend{newMockBackend()}
	assert.Equal(t, 3*time.Millisecond, m.GetLastDBWriteDuration())
}

func TestStartSave(t *testing.T) {
	backend := newMockBackend()
	m, _ := newManager(t, backend)

	task := m.StartSave(context.Background(), "yard", sampleData())
	name, err := task.Wait()
	require.NoError(t, err)
	assert.Equal(t, "yard", name)
	assert.Equal(t, 2, task.Progress())
	assert.Contains(t, backend.missions, "yard")

	backend.saveErr = assert.AnError
	_, err = m.StartSave(context.Background(), "yard", sampleData()).Wait()
	require.ErrorIs(t, err, assert.AnError)
}
