package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the name of the JSON config file looked up in the config dir.
const FileName = "missioneditor.cfg.json"

// FileConfig holds JSON file storage backend settings
type FileConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"` // empty keeps the database in memory
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// RemoteConfig holds the WebSocket mission server settings
type RemoteConfig struct {
	ServerURL string        `json:"serverUrl" mapstructure:"serverUrl"`
	APIKey    string        `json:"apiKey" mapstructure:"apiKey"`
	Timeout   time.Duration `json:"timeout" mapstructure:"timeout"`
}

// StorageConfig selects and configures the mission storage backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	File   FileConfig   `json:"file" mapstructure:"file"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
	Remote RemoteConfig `json:"remote" mapstructure:"remote"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// GraylogConfig holds the optional GELF log sink settings
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// EditorConfig holds placement and mission defaults
type EditorConfig struct {
	ObjectiveSlots int     `json:"objectiveSlots" mapstructure:"objectiveSlots"`
	RotationStep   float64 `json:"rotationStep" mapstructure:"rotationStep"`
	PickupModel    uint32  `json:"pickupModel" mapstructure:"pickupModel"`
	FrameRate      int     `json:"frameRate" mapstructure:"frameRate"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// SetDefaults registers every default value. Load calls it; callers running
// without a config file can call it directly.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./editorlogs")
	viper.SetDefault("statusInterval", "1s")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "missions")

	viper.SetDefault("storage.type", "file")
	viper.SetDefault("storage.file.outputDir", "./missions")
	viper.SetDefault("storage.file.compressOutput", false)
	viper.SetDefault("storage.sqlite.path", "./missions.db")
	viper.SetDefault("storage.sqlite.dumpPath", "")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.remote.serverUrl", "http://localhost:5000")
	viper.SetDefault("storage.remote.apiKey", "")
	viper.SetDefault("storage.remote.timeout", "10s")

	viper.SetDefault("editor.objectiveSlots", 301)
	viper.SetDefault("editor.rotationStep", 3.0)
	viper.SetDefault("editor.pickupModel", 0x2C014CA6)
	viper.SetDefault("editor.frameRate", 30)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "mission-editor")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "mission-editor")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		File: FileConfig{
			OutputDir:      viper.GetString("storage.file.outputDir"),
			CompressOutput: viper.GetBool("storage.file.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		Remote: RemoteConfig{
			ServerURL: viper.GetString("storage.remote.serverUrl"),
			APIKey:    viper.GetString("storage.remote.apiKey"),
			Timeout:   viper.GetDuration("storage.remote.timeout"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetGraylogConfig returns the GELF sink settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetEditorConfig returns the placement and mission defaults.
func GetEditorConfig() EditorConfig {
	var cfg EditorConfig
	if err := viper.UnmarshalKey("editor", &cfg); err != nil {
		cfg = EditorConfig{}
	}
	if cfg.ObjectiveSlots <= 0 {
		cfg.ObjectiveSlots = 301
	}
	if cfg.RotationStep == 0 {
		cfg.RotationStep = 3
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 30
	}
	return cfg
}
