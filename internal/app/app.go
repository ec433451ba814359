package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"detectreport/internal/config"
	"detectreport/internal/logger"
	"detectreport/internal/pipeline"
	"detectreport/internal/protocol"
	"detectreport/internal/repository"
	"detectreport/internal/repository/sqlite"
	"detectreport/internal/route"
	"detectreport/internal/service/ai"
	"detectreport/internal/service/camera"
	"detectreport/internal/service/display"
	"detectreport/internal/service/render/cvcanvas"
	"detectreport/internal/service/report"
	"detectreport/internal/service/storage"
	"detectreport/internal/service/websocket"

	"gocv.io/x/gocv"
)

const shutdownTimeout = 5 * time.Second

// App owns every component of the appliance and the order they are released in.
type App struct {
	config   *config.Config
	logger   *logger.Logger
	detector *ai.DetectorService
	source   *camera.Source
	reporter pipeline.Reporter
	window   *display.WindowSink
	sinks    display.MultiSink
	hub      *websocket.HubService
	journal  repository.JournalRepository
	buffer   *storage.BufferService
	closers  []io.Closer
}

// New builds the application. Any error here is a startup failure and
// everything opened so far is released before returning.
func New(cfg *config.Config, logger *logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{config: cfg, logger: logger}
	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init() error {
	cfg := a.config

	detector, err := ai.LoadDetector(cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to load detector: %w", err)
	}
	a.detector = detector
	a.closers = append(a.closers, detector)

	source, err := camera.Open(cfg.CameraDevice, detector.InputWidth(), detector.InputHeight(), a.logger)
	if err != nil {
		return err
	}
	a.source = source
	a.closers = append(a.closers, source)

	if err := a.initJournal(); err != nil {
		return err
	}
	if err := a.initReporter(); err != nil {
		return err
	}

	if cfg.DisplayWindow {
		a.window = display.NewWindowSink("detectreport")
		a.sinks = append(a.sinks, a.window)
		a.closers = append(a.closers, a.window)
	}
	if cfg.ViewerPort > 0 {
		a.hub = websocket.NewHubService(a.logger)
		a.sinks = append(a.sinks, display.NewHubSink(a.hub))
	}

	if cfg.SnapshotDir != "" {
		a.buffer = storage.NewBufferService(cfg, a.logger)
		a.closers = append(a.closers, a.buffer)
	}

	return nil
}

func (a *App) initJournal() error {
	if a.config.JournalPath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(a.config.JournalPath), 0755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}
	db, err := sqlite.New(a.config.JournalPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	a.closers = append(a.closers, db)
	a.journal = sqlite.NewJournalRepository(db)
	a.logger.Info("Journal opened: %s", a.config.JournalPath)
	return nil
}

func (a *App) initReporter() error {
	var reporters report.MultiReporter

	transport, err := openTransport(a.config)
	if err != nil {
		return err
	}
	if transport != nil {
		reporter := report.NewReporter(transport)
		a.closers = append(a.closers, reporter)
		reporters = append(reporters, reporter)
		a.logger.Info("Reporting over %s, up to %d detections per frame",
			a.config.ReportTransport, protocol.MaxRecords(a.config.ReportBufferSize))
	}

	if a.journal != nil {
		reporters = append(reporters, report.NewJournalReporter(a.journal, a.detector))
	}

	switch len(reporters) {
	case 0:
		a.logger.Warning("No report transport configured, detections are only displayed")
	case 1:
		a.reporter = reporters[0]
	default:
		a.reporter = reporters
	}
	return nil
}

// openTransport returns nil when reporting over the wire is disabled.
func openTransport(cfg *config.Config) (report.Transport, error) {
	switch cfg.ReportTransport {
	case config.TransportSerial:
		return report.NewSerialTransport(cfg.SerialPort, cfg.SerialBaudRate, cfg.ReportBufferSize)
	case config.TransportUDP:
		return report.NewUDPTransport(cfg.UDPAddress, cfg.ReportBufferSize)
	default:
		return nil, nil
	}
}

// Run runs the frame loop until ctx is done or the window asks to quit.
func (a *App) Run(ctx context.Context) error {
	var server *http.Server
	if a.hub != nil {
		go a.hub.Run()
		server = &http.Server{
			Addr:    fmt.Sprintf(":%d", a.config.ViewerPort),
			Handler: route.SetupRoutes(a.hub, a.journal, a.config, a.logger),
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("Viewer server failed: %v", err)
			}
		}()
		a.logger.Info("📍 Viewer: http://localhost:%d/api/view", a.config.ViewerPort)
	}

	exit := pipeline.AnyExit{pipeline.NewSignalExit(ctx)}
	if a.window != nil {
		exit = append(exit, a.window)
	}

	var sink pipeline.Display[*gocv.Mat] = display.NopSink{}
	if len(a.sinks) > 0 {
		sink = a.sinks
	}

	p := pipeline.New[*gocv.Mat](a.source, a.detector, a.reporter, cvcanvas.NewRenderer(a.detector), sink, exit,
		pipeline.Options{
			ConfThreshold: a.config.ConfThreshold,
			IoUThreshold:  a.config.IoUThreshold,
			ReportEnabled: a.config.ReportEnabled,
		}, a.logger)
	if a.buffer != nil {
		p.WithRecorder(display.NewSnapshotRecorder(a.buffer, a.detector))
	}

	a.logger.Info("🚀 Pipeline started (conf %.2f, iou %.2f, report %v)",
		a.config.ConfThreshold, a.config.IoUThreshold, a.config.ReportEnabled)
	p.Run()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop viewer server: %w", err)
		}
		a.hub.Stop()
	}
	return nil
}

// Close releases components in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
