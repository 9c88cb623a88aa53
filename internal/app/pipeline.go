package app

import (
	"context"
	"errors"
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/interact"
	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/store"
)

// loop is the frame scheduler. It runs at the camera rate while hands are
// present and drops to the idle rate IdleTimeout after the last hand.
//
// Each frame performs, in order:
// 1. Read a camera frame and hand it to the local detector, if any
// 2. Take the newest landmark snapshot, waiting a bounded time
// 3. Apply queued commands
// 4. Interpret hands and update the engine
// 5. Render the scene and publish it to the window and stream viewers
func (a *App) loop(ctx context.Context) error {
	cam := a.config.Settings.Camera
	active := false
	lastHands := time.Time{}

	interval := frameInterval(cam.IdleFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			a.fps = smoothFPS(a.fps, now.Sub(last))
			last = now
		}

		hands, err := a.Step(ctx)
		if errors.Is(err, interact.ErrQuit) {
			return nil
		}
		if err != nil {
			a.logger.Printf("Frame error: %v", err)
			continue
		}
		if a.window != nil && !a.window.IsOpen() {
			a.logger.Println("Window closed")
			return nil
		}

		if hands > 0 {
			lastHands = time.Now()
			if !active {
				active = true
				a.setRate(ticker, cam.FPS)
				a.logger.Println("Switched to active mode")
			}
		} else if active && time.Since(lastHands) > IdleTimeout {
			active = false
			a.setRate(ticker, cam.IdleFPS)
			a.logger.Println("Switched to idle mode")
		}
	}
}

func (a *App) setRate(ticker *time.Ticker, fps int) {
	a.camera.SetFPS(fps)
	ticker.Reset(frameInterval(fps))
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}

func smoothFPS(prev float64, dt time.Duration) float64 {
	if dt <= 0 {
		return prev
	}
	fps := float64(time.Second) / float64(dt)
	if prev == 0 {
		return fps
	}
	return prev*0.9 + fps*0.1
}

// Step runs one frame and returns the number of hands seen. It returns
// interact.ErrQuit when a quit command was applied.
func (a *App) Step(ctx context.Context) (int, error) {
	s := a.config.Settings

	frame, err := a.camera.ReadFrame()
	if err != nil {
		return 0, err
	}
	defer frame.Close()
	if frame.Cols() != s.Render.Width || frame.Rows() != s.Render.Height {
		gocv.Resize(*frame, frame, image.Pt(s.Render.Width, s.Render.Height), 0, 0, gocv.InterpolationLinear)
	}

	if a.worker != nil {
		a.worker.Submit(frame)
	}
	landmarks := a.box.Next(ctx, s.Source.WaitTimeout(), s.Source.MaxAge())

	quit := a.drainCommands()

	frames := a.interp.Interpret(landmarks)
	if a.tracker != nil {
		frames = a.tracker.Assign(frames)
	}
	a.engine.Update(frames)
	a.scene.Advance()

	canvas := display.NewMatCanvas(frame)
	a.scene.Draw(canvas, a.pipe)
	a.scene.DrawHands(canvas, a.pipe, frames)
	status := a.currentStatus(len(frames))
	display.DrawStatus(canvas, status)

	if a.window != nil {
		a.window.Show(frame)
		if cmd, ok := a.window.Poll(1); ok {
			if a.apply(cmd) {
				quit = true
			}
		}
	}
	if a.config.Frames != nil && a.config.Frames.Viewers() > 0 {
		if err := a.config.Frames.Update(frame); err != nil {
			a.logger.Printf("Failed to publish frame: %v", err)
		}
	}

	a.publishSnapshot()
	a.notify(status)
	if quit {
		return len(frames), interact.ErrQuit
	}
	return len(frames), nil
}

// drainCommands applies every queued command and reports whether one of
// them was quit.
func (a *App) drainCommands() bool {
	quit := false
	for {
		select {
		case cmd := <-a.commands:
			if a.apply(cmd) {
				quit = true
			}
		default:
			return quit
		}
	}
}

// apply runs cmd against the engine and persists any toggle it changed.
func (a *App) apply(cmd interact.Command) (quit bool) {
	err := a.engine.Apply(cmd)
	if errors.Is(err, interact.ErrQuit) {
		return true
	}
	if err != nil {
		a.logger.Printf("Ignoring command: %v", err)
		return false
	}
	a.saveSettings()
	return false
}

func (a *App) currentStatus(hands int) display.Status {
	st := a.state()
	return display.Status{
		Show2D:     st.show2D,
		Show3D:     st.show3D,
		RenderMode: st.mode,
		AutoRotate: st.autoRotate,
		Hands:      hands,
		FPS:        a.fps,
		Source:     a.config.Settings.Source.Mode,
	}
}

// notify reports status to the OnState callback when anything but the
// frame rate changed.
func (a *App) notify(status display.Status) {
	a.mu.Lock()
	fn := a.onState
	prev := a.status
	a.status = status
	a.mu.Unlock()

	prev.FPS = status.FPS
	if fn != nil && prev != status {
		fn(status)
	}
}

// settingsState is the part of the scene persisted across runs.
type settingsState struct {
	show2D, show3D bool
	mode           string
	autoRotate     bool
}

func (a *App) state() settingsState {
	st := settingsState{
		show2D: a.scene.Show2D,
		show3D: a.scene.Show3D,
		mode:   "-",
	}
	if len(a.scene.Objects3D) > 0 {
		o := a.scene.Objects3D[0]
		st.mode = string(o.Mode)
		st.autoRotate = o.AutoRotate
	}
	return st
}

// restoreSettings applies the persisted toggles to the freshly loaded
// scene.
func (a *App) restoreSettings() {
	st := a.state()
	if db := a.config.Store; db != nil {
		settings := db.Settings()
		a.scene.Show2D = settings.Bool(store.SettingShow2D, st.show2D)
		a.scene.Show3D = settings.Bool(store.SettingShow3D, st.show3D)
		autoRotate := settings.Bool(store.SettingAutoRotate, st.autoRotate)
		mode := render.Mode("")
		if v, err := settings.Get(store.SettingRenderMode); err == nil {
			if m, err := render.ParseMode(v); err == nil {
				mode = m
			}
		}
		for _, o := range a.scene.Objects3D {
			o.AutoRotate = autoRotate
			if mode != "" {
				o.Mode = mode
			}
		}
	}
	a.saved = a.state()
}

// saveSettings writes the toggles that differ from the last saved state.
func (a *App) saveSettings() {
	st := a.state()
	db := a.config.Store
	if db == nil || st == a.saved {
		a.saved = st
		return
	}
	settings := db.Settings()
	var err error
	if st.show2D != a.saved.show2D {
		err = errors.Join(err, settings.SetBool(store.SettingShow2D, st.show2D))
	}
	if st.show3D != a.saved.show3D {
		err = errors.Join(err, settings.SetBool(store.SettingShow3D, st.show3D))
	}
	if st.autoRotate != a.saved.autoRotate {
		err = errors.Join(err, settings.SetBool(store.SettingAutoRotate, st.autoRotate))
	}
	if st.mode != a.saved.mode && st.mode != "-" {
		err = errors.Join(err, settings.Set(store.SettingRenderMode, st.mode))
	}
	if err != nil {
		a.logger.Printf("Failed to save settings: %v", err)
		return
	}
	a.saved = st
}
