package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/missioneditor/internal/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readReport(t *testing.T, path string) Report {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var r Report
	require.NoError(t, json.Unmarshal(data, &r))
	return r
}

func TestWriteStatus_NothingBeforeUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	s := NewService(Dependencies{StatusPath: path})

	require.NoError(t, s.WriteStatus())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	s := NewService(Dependencies{StatusPath: path})

	s.Update(editor.Status{Open: true, Mission: "Dock run", Records: 4, State: "ghost"})
	require.NoError(t, s.WriteStatus())

	r := readReport(t, path)
	assert.True(t, r.Session.Open)
	assert.Equal(t, "Dock run", r.Session.Mission)
	assert.Equal(t, 4, r.Session.Records)
	assert.Equal(t, "ghost", r.Session.State)
	assert.Zero(t, r.LastWriteDurationMs)
}

func TestStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "status.json")
	s := NewService(Dependencies{StatusPath: path, Interval: 5 * time.Millisecond})

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	s.Update(editor.Status{State: "idle"})
	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	s.Update(editor.Status{Open: true, Mission: "last"})
	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Equal(t, "last", readReport(t, path).Session.Mission)

	s.Stop()
}
