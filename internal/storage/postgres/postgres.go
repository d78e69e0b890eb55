// Package postgres stores missions in PostgreSQL through the GORM backend.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/OCAP2/missioneditor/internal/database"
	gormstorage "github.com/OCAP2/missioneditor/internal/storage/gorm"

	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the Postgres storage backend.
// When DB is nil Init connects using the db.* config keys.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// Backend wraps the GORM backend with Postgres connection handling.
type Backend struct {
	*gormstorage.Backend
	deps Dependencies
}

// New creates a new Postgres storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{DB: deps.DB, Logger: deps.Logger}),
		deps:    deps,
	}
}

// Init connects if needed, validates the connection and migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.GetPostgresDBStandalone()
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		b.deps.DB = db
		b.Backend.SetDB(db)
		b.deps.Logger.Info("Connected to database", "host", database.PostgresDSNHost())
	}

	return b.Backend.Init()
}
