package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OCAP2/missioneditor/internal/api"
	"github.com/OCAP2/missioneditor/internal/cache"
	"github.com/OCAP2/missioneditor/internal/config"
	"github.com/OCAP2/missioneditor/internal/database"
	"github.com/OCAP2/missioneditor/internal/livesync"
	"github.com/OCAP2/missioneditor/internal/scene/sim"
	"github.com/OCAP2/missioneditor/internal/storage"
	filestorage "github.com/OCAP2/missioneditor/internal/storage/file"

	"github.com/rs/zerolog"
)

const usage = `usage: missioneditor [-config dir] [command]

Without a command the interactive editor starts.

commands:
  list                   list stored missions
  export <name> <file>   write a stored mission to a .json or .json.gz file
  import <file> <name>   store a mission file under name
  check <name>           load a stored mission and report skipped records
  publish <name> [tag]   upload a stored mission to the mission server
  ping                   check the mission server is reachable
  migrate [dump.db]      create or update the database schema, optionally
                         copying a SQLite database to dump.db`

// runCLI runs one offline command against the configured backend.
func runCLI(args []string) error {
	ctx := context.Background()
	cmd := strings.ToLower(args[0])
	rest := args[1:]

	if cmd == "migrate" {
		dumpPath := ""
		if len(rest) > 0 {
			dumpPath = rest[0]
		}
		return migrate(dumpPath)
	}
	if cmd == "ping" {
		remote := config.GetStorageConfig().Remote
		if err := api.New(remote.ServerURL, remote.APIKey).Healthcheck(); err != nil {
			return err
		}
		fmt.Println("Mission server reachable at", remote.ServerURL)
		return nil
	}
	if cmd == "help" {
		fmt.Println(usage)
		return nil
	}

	backend, err := storage.NewBackend(config.GetStorageConfig(), Logger)
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	defer func() { _ = backend.Close() }()

	switch cmd {
	case "list":
		return listMissions(ctx, backend, os.Stdout)
	case "export":
		if len(rest) != 2 {
			return fmt.Errorf("export needs <name> <file>\n%s", usage)
		}
		return exportMission(ctx, backend, rest[0], rest[1], os.Stdout)
	case "import":
		if len(rest) != 2 {
			return fmt.Errorf("import needs <file> <name>\n%s", usage)
		}
		return importMission(ctx, backend, rest[0], rest[1], os.Stdout)
	case "check":
		if len(rest) != 1 {
			return fmt.Errorf("check needs <name>\n%s", usage)
		}
		return checkMission(ctx, backend, rest[0], config.GetEditorConfig().PickupModel, os.Stdout)
	case "publish":
		if len(rest) < 1 || len(rest) > 2 {
			return fmt.Errorf("publish needs <name> [tag]\n%s", usage)
		}
		tag := ""
		if len(rest) == 2 {
			tag = rest[1]
		}
		remote := config.GetStorageConfig().Remote
		return publishMission(ctx, backend, api.New(remote.ServerURL, remote.APIKey), rest[0], tag, os.Stdout)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func listMissions(ctx context.Context, backend storage.Backend, out io.Writer) error {
	names, err := backend.ListMissions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list missions: %w", err)
	}
	printResult(out, names)
	return nil
}

// missionFile resolves a dump file argument. Only .json and .json.gz are
// accepted so the file backend uses the path as given.
func missionFile(path string) (*filestorage.Backend, string, error) {
	if !strings.HasSuffix(path, ".json") && !strings.HasSuffix(path, ".json.gz") {
		return nil, "", fmt.Errorf("%s: file must end in .json or .json.gz", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return filestorage.New(filestorage.Config{OutputDir: filepath.Dir(abs)}), abs, nil
}

func exportMission(ctx context.Context, backend storage.Backend, name, path string, out io.Writer) error {
	dst, file, err := missionFile(path)
	if err != nil {
		return err
	}
	start := time.Now()
	data, err := backend.LoadMission(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", name, err)
	}
	if err := dst.SaveMission(ctx, file, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	fmt.Fprintf(out, "Wrote %d records to %s in %s\n", data.RecordCount(), file, time.Since(start).Round(time.Millisecond))
	return nil
}

func importMission(ctx context.Context, backend storage.Backend, path, name string, out io.Writer) error {
	src, file, err := missionFile(path)
	if err != nil {
		return err
	}
	data, err := src.LoadMission(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	if err := backend.SaveMission(ctx, name, data); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	fmt.Fprintf(out, "Stored %d records as %s\n", data.RecordCount(), name)
	return nil
}

// publishMission stages the stored mission as a gzipped dump and uploads it.
func publishMission(ctx context.Context, backend storage.Backend, client *api.Client, name, tag string, out io.Writer) error {
	data, err := backend.LoadMission(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", name, err)
	}

	dir, err := os.MkdirTemp("", "missioneditor-publish-")
	if err != nil {
		return fmt.Errorf("failed to create staging dir: %w", err)
	}
	defer os.RemoveAll(dir)

	staging := filestorage.New(filestorage.Config{OutputDir: dir, CompressOutput: true})
	if err := staging.SaveMission(ctx, name, data); err != nil {
		return fmt.Errorf("failed to stage %s: %w", name, err)
	}
	file := staging.PathFor(name)

	err = client.Publish(file, api.PublishMetadata{
		MissionName: data.Info.Name,
		Author:      data.Info.Author,
		Records:     data.RecordCount(),
		Tag:         tag,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", name, err)
	}
	fmt.Fprintf(out, "Published %s (%d records)\n", name, data.RecordCount())
	return nil
}

// checkMission instantiates a stored mission in an empty scene and prints
// every record that would be dropped on load.
func checkMission(ctx context.Context, backend storage.Backend, name string, pickupModel uint32, out io.Writer) error {
	data, err := backend.LoadMission(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", name, err)
	}
	host := sim.New()
	svc, err := livesync.New(host, cache.NewModelCache(), pickupModel, Logger)
	if err != nil {
		return err
	}
	doc, report, err := svc.Load(ctx, data)
	if err != nil {
		return fmt.Errorf("failed to instantiate %s: %w", name, err)
	}
	doc.Clear(host)

	fmt.Fprintf(out, "%s: %d records loaded, %d skipped\n", name, report.Loaded, report.SkippedCount())
	for _, s := range report.Skipped {
		fmt.Fprintf(out, "  %s model 0x%08X: %v\n", s.Kind, s.Model, s.Err)
	}
	return nil
}

// migrate connects to Postgres (SQLite fallback) and migrates the schema.
// With a dump path the SQLite database is then copied there.
func migrate(dumpPath string) error {
	log := zerolog.New(LogFile).With().Timestamp().Str("component", "database").Logger()
	m := database.NewManager(log)
	m.SqliteFilePath = config.GetStorageConfig().SQLite.Path
	if err := m.Connect(); err != nil {
		return err
	}
	defer func() { _ = m.SqlDB.Close() }()
	if err := m.Setup(); err != nil {
		return err
	}
	target := "postgres"
	if m.ShouldSaveLocal {
		target = "sqlite " + m.SqliteFilePath
	}
	fmt.Printf("Schema migrated (%s)\n", target)

	if dumpPath == "" {
		return nil
	}
	if !m.ShouldSaveLocal {
		return fmt.Errorf("dump needs the SQLite fallback, connected to postgres")
	}
	if err := m.DumpMemoryToDisk(dumpPath); err != nil {
		return fmt.Errorf("failed to dump database: %w", err)
	}
	fmt.Println("Dumped database to", dumpPath)
	return nil
}
