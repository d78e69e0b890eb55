package storage

import (
	"fmt"
	"log/slog"

	"github.com/OCAP2/missioneditor/internal/config"
	filestorage "github.com/OCAP2/missioneditor/internal/storage/file"
	"github.com/OCAP2/missioneditor/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/missioneditor/internal/storage/sqlite"
	wsstorage "github.com/OCAP2/missioneditor/internal/storage/websocket"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(postgres.Dependencies{Logger: logger}), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			Path:         cfg.SQLite.Path,
			DumpPath:     cfg.SQLite.DumpPath,
			DumpInterval: cfg.SQLite.DumpInterval,
		}, logger)
	case "websocket":
		return wsstorage.New(wsstorage.Config{
			URL:     wsstorage.HTTPToWS(cfg.Remote.ServerURL) + "/api/missions",
			Secret:  cfg.Remote.APIKey,
			Timeout: cfg.Remote.Timeout,
		}, logger), nil
	case "file", "":
		return filestorage.New(filestorage.Config{
			OutputDir:      cfg.File.OutputDir,
			CompressOutput: cfg.File.CompressOutput,
		}), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
