// Package gormstorage implements mission storage on top of GORM. The sqlite
// and postgres backends wrap it and only supply the connection.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/OCAP2/missioneditor/internal/model"
	"github.com/OCAP2/missioneditor/internal/model/convert"
	"github.com/OCAP2/missioneditor/pkg/core"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEmptyName is returned when saving or loading without a mission key.
var ErrEmptyName = errors.New("empty mission name")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// Backend stores missions as one row per mission plus one row per record.
type Backend struct {
	deps      Dependencies
	lastWrite atomic.Int64
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{deps: deps}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// SetDB injects a connection after construction.
func (b *Backend) SetDB(db *gorm.DB) {
	b.deps.DB = db
}

// Init runs schema migration and creates the default editor info row.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gorm backend: no database connection")
	}
	if err := b.setupDB(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	return nil
}

func (b *Backend) setupDB() error {
	db := b.deps.DB
	log := b.deps.Logger

	if !db.Migrator().HasTable(&model.EditorInfo{}) {
		if err := db.AutoMigrate(&model.EditorInfo{}); err != nil {
			log.Error("Failed to create editor_infos table", "error", err)
			return fmt.Errorf("failed to auto-migrate EditorInfo: %w", err)
		}
		if err := db.Create(&model.EditorInfo{
			GroupName:        "Mission Editor",
			GroupDescription: "Mission Editor",
		}).Error; err != nil {
			return fmt.Errorf("failed to create editor_infos entry: %w", err)
		}
	}

	log.Info("Migrating schema")
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Info("Database setup complete")
	return nil
}

// Close closes the underlying connection.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}

// SaveMission replaces any mission stored under name in a single transaction.
func (b *Backend) SaveMission(ctx context.Context, name string, data *core.MissionData) error {
	if name == "" {
		return ErrEmptyName
	}
	m, err := convert.MissionToModel(name, data)
	if err != nil {
		return err
	}

	start := time.Now()
	err = b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Mission
		err := tx.Unscoped().Where(&model.Mission{Key: name}).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Where("mission_id = ?", existing.ID).Delete(&model.MissionRecord{}).Error; err != nil {
				return fmt.Errorf("failed to delete old records: %w", err)
			}
			if err := tx.Unscoped().Delete(&existing).Error; err != nil {
				return fmt.Errorf("failed to delete old mission: %w", err)
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to look up mission %q: %w", name, err)
		}

		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("failed to insert mission: %w", err)
		}
		return nil
	})
	if err != nil {
		b.deps.Logger.Error("Failed to save mission", "name", name, "error", err)
		return err
	}

	elapsed := time.Since(start)
	b.lastWrite.Store(int64(elapsed))
	b.deps.Logger.Debug("Mission saved", "name", name, "records", len(m.Records), "duration", elapsed)
	return nil
}

// LoadMission reads the mission stored under name.
func (b *Backend) LoadMission(ctx context.Context, name string) (*core.MissionData, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	var m model.Mission
	err := b.deps.DB.WithContext(ctx).
		Preload("Records", func(db *gorm.DB) *gorm.DB {
			return db.Order("collection, ordinal")
		}).
		Where(&model.Mission{Key: name}).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", name, core.ErrMissionNotFound)
		}
		return nil, fmt.Errorf("failed to load mission %q: %w", name, err)
	}
	return convert.MissionToCore(m)
}

// ListMissions returns the stored mission keys in alphabetical order.
func (b *Backend) ListMissions(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := b.deps.DB.WithContext(ctx).Model(&model.Mission{}).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Pluck("key", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	return names, nil
}

// GetLastDBWriteDuration returns how long the last successful save took.
func (b *Backend) GetLastDBWriteDuration() time.Duration {
	return time.Duration(b.lastWrite.Load())
}
