// Package monitor mirrors the editor status to a JSON file so launchers and
// overlays can follow the session without talking to the process.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/OCAP2/missioneditor/internal/editor"
	"github.com/OCAP2/missioneditor/internal/worker"
)

// DefaultInterval is how often the status file is rewritten.
const DefaultInterval = time.Second

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Logger        *slog.Logger
	WorkerManager *worker.Manager
	StatusPath    string
	Interval      time.Duration
}

// Report is the content of the status file.
type Report struct {
	Time                time.Time     `json:"time"`
	Session             editor.Status `json:"session"`
	LastWriteDurationMs float32       `json:"lastWriteDurationMs"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	stopped   chan struct{}

	latest editor.Status
	seen   bool
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Update stores the latest session snapshot. The frame loop calls it every
// frame; the file is written on the monitor's own schedule.
func (s *Service) Update(st editor.Status) {
	s.mu.Lock()
	s.latest = st
	s.seen = true
	s.mu.Unlock()
}

// GetProgramStatus returns the report that would be written now, and false
// until the first Update.
func (s *Service) GetProgramStatus() (Report, bool) {
	s.mu.RLock()
	st, ok := s.latest, s.seen
	s.mu.RUnlock()

	r := Report{Time: time.Now(), Session: st}
	if s.deps.WorkerManager != nil {
		r.LastWriteDurationMs = float32(s.deps.WorkerManager.GetLastDBWriteDuration().Microseconds()) / 1000
	}
	return r, ok
}

// WriteStatus writes the current report to StatusPath, replacing the file
// atomically.
func (s *Service) WriteStatus() error {
	r, ok := s.GetProgramStatus()
	if !ok {
		return nil
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	tmp := s.deps.StatusPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	return os.Rename(tmp, s.deps.StatusPath)
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.deps.StatusPath), 0755); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("create status dir: %w", err)
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.stopped = make(chan struct{})
	stop, stopped := s.stopChan, s.stopped
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			close(stopped)
		}()

		s.deps.Logger.Debug("Starting status monitor", "path", s.deps.StatusPath, "interval", s.deps.Interval)
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				if err := s.WriteStatus(); err != nil {
					s.deps.Logger.Error("Error writing status file", "error", err)
				}
				return
			case <-ticker.C:
				if err := s.WriteStatus(); err != nil {
					s.deps.Logger.Error("Error writing status file", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor after one last write.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	stopped := s.stopped
	s.isRunning = false
	s.mu.Unlock()
	<-stopped
}
