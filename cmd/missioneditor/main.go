package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/OCAP2/missioneditor/internal/cache"
	"github.com/OCAP2/missioneditor/internal/config"
	"github.com/OCAP2/missioneditor/internal/dispatcher"
	"github.com/OCAP2/missioneditor/internal/editor"
	"github.com/OCAP2/missioneditor/internal/handlers"
	"github.com/OCAP2/missioneditor/internal/influx"
	"github.com/OCAP2/missioneditor/internal/livesync"
	"github.com/OCAP2/missioneditor/internal/logging"
	"github.com/OCAP2/missioneditor/internal/mission"
	"github.com/OCAP2/missioneditor/internal/monitor"
	intOtel "github.com/OCAP2/missioneditor/internal/otel"
	"github.com/OCAP2/missioneditor/internal/parser"
	"github.com/OCAP2/missioneditor/internal/scene/sim"
	"github.com/OCAP2/missioneditor/internal/storage"
	"github.com/OCAP2/missioneditor/internal/worker"

	"github.com/rs/zerolog"
)

// BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "missioneditor"
)

var (
	SessionStartTime time.Time = time.Now()

	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	LogFilePath string
	LogFile     *os.File

	missionContext *mission.Context
	session        *editor.Session
)

func main() {
	configDir := flag.String("config", ".", "directory containing "+config.FileName)
	flag.Parse()

	if err := setup(*configDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer shutdown()

	args := flag.Args()
	if len(args) > 0 {
		if err := runCLI(args); err != nil {
			Logger.Error("Command failed", "command", args[0], "error", err)
			fmt.Fprintln(os.Stderr, err)
			shutdown()
			os.Exit(1)
		}
		return
	}

	if err := runEditor(); err != nil {
		Logger.Error("Editor stopped", "error", err)
		fmt.Fprintln(os.Stderr, err)
	}
}

// setup loads configuration and wires logging. Everything else is built by
// the mode that needs it.
func setup(configDir string) error {
	configErr := config.Load(configDir)
	if configErr != nil {
		config.SetDefaults()
	}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs dir: %w", err)
	}
	LogFilePath = logging.LogFilePath(logsDir, AppName, SessionStartTime)
	f, err := os.OpenFile(LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	LogFile = f

	otelCfg := config.GetOTelConfig()
	OTelProvider, err = intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    LogFile,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		return fmt.Errorf("failed to set up OTel: %w", err)
	}

	missionContext = mission.NewContext()
	opts := []logging.SetupOption{
		logging.WithContext(func() []slog.Attr {
			attrs := []slog.Attr{slog.String("mission", missionContext.MissionName())}
			if session != nil {
				attrs = append(attrs, slog.String("state", session.Placement().State().String()))
			}
			return attrs
		}),
	}
	if gl := config.GetGraylogConfig(); gl.Enabled {
		w, err := logging.NewGraylogWriter(gl.Address, AppName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "graylog disabled: %v\n", err)
		} else {
			opts = append(opts, logging.WithGraylog(w))
		}
	}

	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(LogFile, config.GetString("logLevel"), OTelProvider.LoggerProvider(), opts...)
	Logger = SlogManager.Logger()

	Logger.Info("Starting up", "version", CurrentVersion, "build", BuildDate, "log", LogFilePath)
	if configErr != nil {
		Logger.Warn("Config not loaded, using defaults", "dir", configDir, "error", configErr)
	}
	return nil
}

func shutdown() {
	if OTelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := SlogManager.Flush(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "flush logs: %v\n", err)
		}
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown otel: %v\n", err)
		}
		OTelProvider = nil
	}
	if LogFile != nil {
		_ = LogFile.Close()
		LogFile = nil
	}
}

// runEditor drives an editing session against the in-process scene. Operator
// commands are read from stdin; deferred handlers and the placement machine
// run on the frame loop.
func runEditor() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.NewBackend(config.GetStorageConfig(), Logger)
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			Logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	editorCfg := config.GetEditorConfig()
	host := sim.New()
	syncService, err := livesync.New(host, cache.NewModelCache(), editorCfg.PickupModel, Logger)
	if err != nil {
		return fmt.Errorf("failed to create live sync: %w", err)
	}
	workerManager := worker.NewManager(worker.Dependencies{Sync: syncService, Logger: Logger}, backend)

	deps := editor.Dependencies{
		Host:    host,
		Sync:    syncService,
		Worker:  workerManager,
		Mission: missionContext,
		Logger:  Logger,
		Flush:   OTelProvider.Flush,
	}
	if config.GetBool("influx.enabled") {
		influxLog := zerolog.New(LogFile).With().Timestamp().Str("component", "influx").Logger()
		backupPath := filepath.Join(config.GetString("logsDir"), AppName+"_activity.lp.gz")
		im := influx.NewManager(influxLog, backupPath, config.GetStorageConfig().Type)
		if err := im.Connect(); err != nil {
			Logger.Warn("Activity recording disabled", "error", err)
		} else {
			deps.Activity = im
			defer func() {
				if err := im.Close(); err != nil {
					Logger.Error("Failed to close activity recorder", "error", err)
				}
			}()
		}
	}

	session, err = editor.New(deps, editor.Config{
		ObjectiveSlots: editorCfg.ObjectiveSlots,
		RotationStep:   editorCfg.RotationStep,
		PickupModel:    editorCfg.PickupModel,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	dispatchLog := zerolog.New(LogFile).With().Timestamp().Str("component", "dispatcher").Logger()
	eventDispatcher, err := dispatcher.New(logging.NewDispatcherLogger(dispatchLog))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	handlers.NewService(ctx, handlers.Dependencies{
		Session: session,
		Worker:  workerManager,
		Parser:  parser.NewParser(Logger),
		Logger:  Logger,
	}).RegisterHandlers(eventDispatcher, dispatcher.Deferred(), dispatcher.Logged())

	monitorService := monitor.NewService(monitor.Dependencies{
		Logger:        Logger,
		WorkerManager: workerManager,
		StatusPath:    filepath.Join(config.GetString("logsDir"), "status.json"),
		Interval:      config.GetDuration("statusInterval"),
	})
	if err := monitorService.Start(); err != nil {
		Logger.Warn("Status monitor not started", "error", err)
	}
	defer monitorService.Stop()

	go readCommands(ctx, os.Stdin, os.Stdout, eventDispatcher, stop)

	fmt.Printf("%s %s ready, type a command (%v)\n", AppName, CurrentVersion, eventDispatcher.Commands())
	runFrames(ctx, editorCfg.FrameRate, eventDispatcher, session, monitorService, os.Stdout)

	if missionContext.GetDocument() != nil {
		session.Exit()
	}
	Logger.Info("Shutting down")
	return nil
}

// readCommands dispatches one command per line until EOF, "quit" or ctx ends.
func readCommands(ctx context.Context, in io.Reader, out io.Writer, d *dispatcher.Dispatcher, stop func()) {
	defer stop()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		e, ok := dispatcher.ParseCommand(scanner.Text())
		if !ok {
			continue
		}
		if e.Command == "quit" {
			return
		}
		result, err := d.Dispatch(e)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		printResult(out, result)
	}
}

// runFrames ticks the session at rate frames per second until ctx ends.
func runFrames(ctx context.Context, rate int, d *dispatcher.Dispatcher, s *editor.Session, mon *monitor.Service, out io.Writer) {
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.Flush()
			return
		case <-ticker.C:
			d.Flush()
			s.Tick(ctx)
			mon.Update(s.Status())
			for _, n := range s.Notices() {
				fmt.Fprintln(out, n)
			}
		}
	}
}

func printResult(out io.Writer, result any) {
	switch v := result.(type) {
	case nil:
	case []string:
		if len(v) == 0 {
			fmt.Fprintln(out, "(none)")
		}
		for _, s := range v {
			fmt.Fprintln(out, s)
		}
	default:
		fmt.Fprintln(out, v)
	}
}
