// Package websocket stores missions on a remote mission server over a
// WebSocket connection.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/OCAP2/missioneditor/pkg/core"
	"github.com/OCAP2/missioneditor/pkg/streaming"
)

const defaultTimeout = 10 * time.Second

// Config holds WebSocket backend configuration.
type Config struct {
	URL     string
	Secret  string
	Timeout time.Duration // per request, default 10s
}

// Backend keeps missions on a remote server. Requests are answered in any
// order; replies are matched by ID.
type Backend struct {
	conn *connection
	cfg  Config
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Backend{
		conn: newConnection(logger.With("backend", "websocket")),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// HTTPToWS converts an HTTP(S) URL to a WebSocket URL.
func HTTPToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}

func (b *Backend) call(ctx context.Context, env streaming.Envelope) (streaming.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	r, err := b.conn.request(ctx, env)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return r, fmt.Errorf("timeout waiting for reply to %s", env.Type)
		}
		return r, fmt.Errorf("%s: %w", env.Type, err)
	}
	if r.Error != "" {
		if r.NotFound {
			return r, fmt.Errorf("%s: %w", env.Name, core.ErrMissionNotFound)
		}
		return r, fmt.Errorf("%s %s: %s", env.Type, env.Name, r.Error)
	}
	return r, nil
}

// SaveMission sends the dump and waits for the server to store it.
func (b *Backend) SaveMission(ctx context.Context, name string, data *core.MissionData) error {
	if name == "" {
		return fmt.Errorf("mission name is required")
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal mission: %w", err)
	}
	_, err = b.call(ctx, streaming.Envelope{Type: streaming.TypeSaveMission, Name: name, Payload: raw})
	return err
}

// LoadMission fetches the named dump.
func (b *Backend) LoadMission(ctx context.Context, name string) (*core.MissionData, error) {
	r, err := b.call(ctx, streaming.Envelope{Type: streaming.TypeLoadMission, Name: name})
	if err != nil {
		return nil, err
	}
	var data core.MissionData
	if err := json.Unmarshal(r.Payload, &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return &data, nil
}

// ListMissions returns the names the server holds.
func (b *Backend) ListMissions(ctx context.Context) ([]string, error) {
	r, err := b.call(ctx, streaming.Envelope{Type: streaming.TypeListMissions})
	if err != nil {
		return nil, err
	}
	var list streaming.ListPayload
	if err := json.Unmarshal(r.Payload, &list); err != nil {
		return nil, fmt.Errorf("decode mission list: %w", err)
	}
	if list.Names == nil {
		list.Names = []string{}
	}
	return list.Names, nil
}
