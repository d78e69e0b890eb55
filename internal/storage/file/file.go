// Package filestorage stores missions as flat JSON dumps on disk, optionally
// gzip compressed.
package filestorage

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/OCAP2/missioneditor/pkg/core"
)

const (
	extJSON = ".json"
	extGzip = ".json.gz"
)

// Config holds configuration for the file storage backend.
type Config struct {
	OutputDir      string
	CompressOutput bool
}

// Backend reads and writes mission dumps under OutputDir.
type Backend struct {
	cfg Config
}

// New creates a new file storage backend.
func New(cfg Config) *Backend {
	return &Backend{cfg: cfg}
}

// Init ensures the output directory exists.
func (b *Backend) Init() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Close is a no-op.
func (b *Backend) Close() error {
	return nil
}

// PathFor resolves a mission name to a file path. Names carrying a .json or
// .json.gz extension are used as given (relative to OutputDir unless
// absolute); bare names are sanitised and get the configured extension.
func (b *Backend) PathFor(name string) string {
	if hasExt(name) {
		if filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(b.cfg.OutputDir, name)
	}

	base := strings.ReplaceAll(name, " ", "_")
	base = strings.ReplaceAll(base, ":", "_")
	if b.cfg.CompressOutput {
		return filepath.Join(b.cfg.OutputDir, base+extGzip)
	}
	return filepath.Join(b.cfg.OutputDir, base+extJSON)
}

// SaveMission writes the dump to the resolved path, replacing any existing file.
func (b *Backend) SaveMission(ctx context.Context, name string, data *core.MissionData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := b.PathFor(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if strings.HasSuffix(path, ".gz") {
		return writeGzipJSON(path, data)
	}
	return writeJSON(path, data)
}

// LoadMission reads the dump at the resolved path.
func (b *Backend) LoadMission(ctx context.Context, name string) (*core.MissionData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := b.PathFor(name)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, core.ErrMissionNotFound)
		}
		return nil, fmt.Errorf("failed to open mission file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gzr.Close()
		r = gzr
	}

	var data core.MissionData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &data, nil
}

// ListMissions returns the names of all dumps in OutputDir, without extension.
func (b *Backend) ListMissions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(b.cfg.OutputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch n := e.Name(); {
		case strings.HasSuffix(n, extGzip):
			names = append(names, strings.TrimSuffix(n, extGzip))
		case strings.HasSuffix(n, extJSON):
			names = append(names, strings.TrimSuffix(n, extJSON))
		}
	}
	sort.Strings(names)
	return names, nil
}

func hasExt(name string) bool {
	return strings.HasSuffix(name, extJSON) || strings.HasSuffix(name, extGzip)
}

func writeJSON(path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeGzipJSON(path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
