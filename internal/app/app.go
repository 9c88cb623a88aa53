// Package app runs the mudra frame loop: landmark ingestion, interaction
// and rendering of the AR scene over the camera image.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/interact"
	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/source"
	"github.com/ayusman/mudra/internal/store"
)

// Loop timing constants.
const (
	// IdleTimeout is how long the loop keeps the active rate after the
	// last hand was seen.
	IdleTimeout = 2 * time.Second
	// CommandQueueSize bounds commands waiting for the next frame.
	CommandQueueSize = 16
	// TrackerMaxDistance is the largest palm jump, in pixels, that keeps a
	// hand's index when stable indices are enabled.
	TrackerMaxDistance = 150.0
)

var (
	// ErrNotRunning is returned by Submit when the loop is not running.
	ErrNotRunning = errors.New("app: frame loop is not running")
	// ErrQueueFull is returned by Submit when commands arrive faster than
	// frames.
	ErrQueueFull = errors.New("app: command queue is full")
)

// Config holds the collaborators of an App. Only Settings is required.
type Config struct {
	Settings config.Config
	Store    *store.Store
	// Camera overrides the camera built from Settings.Camera.
	Camera capture.Camera
	// Detector overrides the local detector; it is only used in local
	// source mode.
	Detector detector.Detector
	// Frames receives the rendered view while it has viewers.
	Frames *server.FrameBuffer
	Logger *log.Logger
}

// App is the main application that orchestrates landmark ingestion, the
// interaction engine and rendering.
type App struct {
	config   Config
	logger   *log.Logger
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	box      *source.Mailbox
	worker   *source.DetectorWorker
	relay    *source.RelayClient

	pipe    *render.Pipeline
	scene   *scene.Scene
	engine  *interact.Engine
	interp  *hand.Interpreter
	tracker *hand.Tracker
	window  *display.Window

	commands chan interact.Command
	running  atomic.Bool
	snapshot atomic.Pointer[scene.Snapshot]

	mu      sync.Mutex
	onState func(display.Status)
	status  display.Status
	saved   settingsState
	fps     float64
}

// New builds an App from cfg. It fails only on unusable settings; a
// missing camera or detector degrades at Run time.
func New(cfg Config) (*App, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := cfg.Settings

	a := &App{
		config:   cfg,
		logger:   logger,
		camera:   cfg.Camera,
		box:      source.NewMailbox(),
		pipe:     render.NewPipeline(s.Render.Pipeline()),
		interp:   hand.NewInterpreter(s.Render.Width, s.Render.Height),
		commands: make(chan interact.Command, CommandQueueSize),
	}
	if s.Source.StableIndices {
		a.tracker = hand.NewTracker(TrackerMaxDistance)
	}

	a.scene = scene.New(scene.WithLogger(logger))
	a.engine = interact.NewEngine(a.scene, a.pipe,
		interact.WithLogger(logger),
		interact.WithLayout(a.layout),
	)
	a.scene.Load(a.layout())
	a.restoreSettings()
	a.publishSnapshot()

	switch s.Source.Mode {
	case config.SourceLocal:
		a.detector = cfg.Detector
		if a.detector == nil {
			// Try MediaPipe first, fall back to mock detector
			if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
				a.detector = mp
				logger.Println("Using MediaPipe hand detection")
			} else {
				logger.Printf("MediaPipe not available (%v), using mock detector", err)
				a.detector = detector.NewMockDetector()
			}
		}
		a.motion = capture.NewMotionDetector(s.Camera.MotionThreshold)
		a.worker = source.NewDetectorWorker(a.detector, a.motion, a.box, logger)
	case config.SourceRelay, config.SourceServer:
		base := s.Source.RelayURL
		if s.Source.Mode == config.SourceServer {
			base = "http://" + s.Server.Addr
		}
		rc, err := source.NewRelayClient(base, s.Source.RoomID, a.box, logger)
		if err != nil {
			return nil, fmt.Errorf("relay client: %w", err)
		}
		a.relay = rc
	}
	return a, nil
}

// layout returns the stored placements, or the configured ones when the
// store is absent or empty.
func (a *App) layout() []scene.Placement {
	if st := a.config.Store; st != nil {
		placements, err := st.Objects().Placements()
		if err != nil {
			a.logger.Printf("Failed to load stored objects: %v", err)
		} else if len(placements) > 0 {
			return placements
		}
	}
	return a.config.Settings.Placements()
}

// Mailbox returns the landmark hand-off the loop reads from.
func (a *App) Mailbox() *source.Mailbox {
	return a.box
}

// Engine returns the interaction engine. It must only be used from the
// frame loop or before Run.
func (a *App) Engine() *interact.Engine {
	return a.engine
}

// OnState registers a callback invoked from the loop whenever the
// summarised status changes.
func (a *App) OnState(fn func(display.Status)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onState = fn
}

// Snapshot returns the scene as of the last completed frame.
func (a *App) Snapshot() scene.Snapshot {
	return *a.snapshot.Load()
}

// Submit queues cmd for the next frame.
func (a *App) Submit(cmd interact.Command) error {
	if !a.running.Load() {
		return ErrNotRunning
	}
	select {
	case a.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *App) publishSnapshot() {
	snap := a.scene.Snapshot()
	a.snapshot.Store(&snap)
}

// Run opens the camera and window, starts the landmark producer and runs
// frames until ctx is done, the window closes or a quit command arrives.
func (a *App) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return errors.New("app: already running")
	}
	defer a.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)

	a.openCamera()
	defer a.close()

	if a.config.Settings.Render.Window {
		a.window = display.NewWindow(display.WindowTitle)
	}

	var wg sync.WaitGroup
	if a.worker != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.worker.Run(ctx)
		}()
	}
	if a.relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Printf("Relay client stopped: %v", err)
			}
		}()
	}
	defer wg.Wait()
	defer cancel()

	a.logger.Printf("Frame loop started (source %s)", a.config.Settings.Source.Mode)
	defer a.logger.Println("Frame loop stopped")
	return a.loop(ctx)
}

// openCamera opens the configured camera, falling back to blank frames so
// the scene can still be driven by a remote source.
func (a *App) openCamera() {
	s := a.config.Settings
	if a.camera == nil {
		if s.Camera.Enabled {
			a.camera = capture.NewCamera(capture.Config{
				Device: s.Camera.Device,
				Width:  s.Camera.Width,
				Height: s.Camera.Height,
				FPS:    s.Camera.FPS,
				Mirror: s.Camera.Mirror,
			})
		} else {
			a.camera = capture.NewBlankCamera(s.Render.Width, s.Render.Height)
		}
	}
	if err := a.camera.Open(); err != nil {
		a.logger.Printf("Camera unavailable (%v), using blank frames", err)
		a.camera = capture.NewBlankCamera(s.Render.Width, s.Render.Height)
		a.camera.Open()
	}
	a.camera.SetFPS(s.Camera.FPS)
}

func (a *App) close() {
	if a.window != nil {
		a.window.Close()
		a.window = nil
	}
	if err := a.camera.Close(); err != nil {
		a.logger.Printf("Error closing camera: %v", err)
	}
	if a.motion != nil {
		a.motion.Close()
	}
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			a.logger.Printf("Error closing detector: %v", err)
		}
	}
	a.box.Close()
}
