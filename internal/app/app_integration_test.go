package app

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/interact"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/store"
)

var quiet = log.New(io.Discard, "", 0)

// testSettings returns headless settings with a moon at (200, 200) and a
// cube in the middle of the view, well apart on screen.
func testSettings() config.Config {
	cfg := config.Default()
	cfg.Camera.Enabled = false
	cfg.Render.Window = false
	cfg.Source.WaitTimeoutMS = 1
	cfg.Scene.Objects = []config.Object{
		{Kind: "2d", Name: "moon", Shape: "circle", Position: [3]float64{200, 200, 0}, Size: 60, Color: [3]uint8{200, 200, 200}},
		{Kind: "3d", Name: "cube", Mesh: "cube", Position: [3]float64{0, 0, -4}, Scale: 0.7, Color: [3]uint8{255, 150, 100}, RenderMode: "solid"},
	}
	return cfg
}

func newTestApp(t *testing.T, st *store.Store) *App {
	t.Helper()
	a, err := New(Config{
		Settings: testSettings(),
		Store:    st,
		Detector: detector.NewMockDetector(),
		Logger:   quiet,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	a.openCamera()
	t.Cleanup(a.close)
	return a
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func findObject(snap scene.Snapshot, name string) (scene.ObjectState, bool) {
	for _, o := range snap.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return scene.ObjectState{}, false
}

func step(t *testing.T, a *App) int {
	t.Helper()
	hands, err := a.Step(context.Background())
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	return hands
}

func TestApp_StepGrabsWithPinch(t *testing.T) {
	a := newTestApp(t, nil)

	pinch := detector.PinchLandmarks(200.0/800, 200.0/600, "Right")
	if err := a.Mailbox().Publish([]detector.HandLandmarks{pinch}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if hands := step(t, a); hands != 1 {
		t.Fatalf("Step() saw %d hands, want 1", hands)
	}

	moon, ok := findObject(a.Snapshot(), "moon")
	if !ok {
		t.Fatal("moon missing from snapshot")
	}
	if moon.GrabCount != 1 || len(moon.Hands) != 1 || moon.Hands[0] != 0 {
		t.Errorf("moon grab = %d %v, want hand 0", moon.GrabCount, moon.Hands)
	}
	cube, _ := findObject(a.Snapshot(), "cube")
	if cube.GrabCount != 0 {
		t.Errorf("cube grab count = %d, want 0", cube.GrabCount)
	}

	// no fresh data: the engine sees no hands and releases everything
	a.Mailbox().Publish(nil)
	step(t, a)
	moon, _ = findObject(a.Snapshot(), "moon")
	if moon.GrabCount != 0 {
		t.Errorf("moon grab count after hands left = %d, want 0", moon.GrabCount)
	}
}

func TestApp_StaleLandmarksYieldNoHands(t *testing.T) {
	a := newTestApp(t, nil)
	a.box.Publish([]detector.HandLandmarks{detector.OpenPalmLandmarks()})

	if hands := step(t, a); hands != 1 {
		t.Fatalf("fresh snapshot: %d hands, want 1", hands)
	}

	a.config.Settings.Source.MaxAgeMS = 1
	time.Sleep(5 * time.Millisecond)
	if hands := step(t, a); hands != 0 {
		t.Errorf("stale snapshot: %d hands, want 0", hands)
	}
}

func TestApp_Submit(t *testing.T) {
	a := newTestApp(t, nil)

	if err := a.Submit(interact.CmdToggle2D); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Submit() before Run error = %v, want ErrNotRunning", err)
	}

	a.running.Store(true)
	defer a.running.Store(false)

	if err := a.Submit(interact.CmdToggle2D); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !a.Snapshot().Show2D {
		t.Fatal("command applied before the next frame")
	}
	step(t, a)
	if a.Snapshot().Show2D {
		t.Error("Show2D still on after toggle")
	}

	for i := 0; i < CommandQueueSize; i++ {
		a.Submit(interact.CmdCycle2D)
	}
	if err := a.Submit(interact.CmdCycle2D); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Submit() on full queue error = %v, want ErrQueueFull", err)
	}
	step(t, a)

	a.Submit(interact.CmdQuit)
	if _, err := a.Step(context.Background()); !errors.Is(err, interact.ErrQuit) {
		t.Errorf("Step() after quit error = %v, want ErrQuit", err)
	}
}

func TestApp_OnState(t *testing.T) {
	a := newTestApp(t, nil)

	var got []display.Status
	a.OnState(func(s display.Status) { got = append(got, s) })

	step(t, a)
	step(t, a)
	if len(got) != 1 {
		t.Fatalf("OnState called %d times for an unchanged scene, want 1", len(got))
	}
	if !got[0].Show2D || got[0].RenderMode != "solid" || got[0].Source != config.SourceLocal {
		t.Errorf("status = %+v", got[0])
	}

	a.box.Publish([]detector.HandLandmarks{detector.FistLandmarks()})
	step(t, a)
	if len(got) != 2 || got[1].Hands != 1 {
		t.Errorf("status after a hand appeared = %+v", got)
	}
}

func TestApp_PersistsSettings(t *testing.T) {
	st := newTestStore(t)

	a := newTestApp(t, st)
	a.running.Store(true)
	a.Submit(interact.CmdToggle3D)
	a.Submit(interact.CmdToggleRenderMode)
	a.Submit(interact.CmdToggleAutoRotate)
	step(t, a)
	a.running.Store(false)

	if v, _ := st.Settings().Get(store.SettingRenderMode); v != "wireframe" {
		t.Errorf("stored render mode = %q, want wireframe", v)
	}

	b := newTestApp(t, st)
	snap := b.Snapshot()
	if snap.Show3D || !snap.Show2D {
		t.Errorf("restored visibility = %v/%v, want true/false", snap.Show2D, snap.Show3D)
	}
	cube, _ := findObject(snap, "cube")
	if cube.RenderMode != "wireframe" {
		t.Errorf("restored render mode = %q, want wireframe", cube.RenderMode)
	}
	if b.state().autoRotate {
		t.Error("auto-rotate should be restored off")
	}
}

func TestApp_LayoutFromStore(t *testing.T) {
	st := newTestStore(t)
	p := scene.Placement{Kind: scene.Kind2D, Name: "stored", Shape: scene.ShapeCube, X: 50, Y: 60, Size: 40}
	if err := st.Objects().Create(&p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	a := newTestApp(t, st)
	snap := a.Snapshot()
	if len(snap.Objects) != 1 || snap.Objects[0].Name != "stored" {
		t.Fatalf("objects = %+v, want only the stored placement", snap.Objects)
	}

	// reset reloads the stored layout, picking up later additions
	q := scene.Placement{Kind: scene.Kind2D, Name: "later", Shape: scene.ShapeCircle, X: 300, Y: 300, Size: 30}
	st.Objects().Create(&q)
	a.running.Store(true)
	a.Submit(interact.CmdReset)
	step(t, a)
	a.running.Store(false)
	if n := len(a.Snapshot().Objects); n != 2 {
		t.Errorf("objects after reset = %d, want 2", n)
	}
}

func TestApp_RunStopsOnQuit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, err := New(Config{
		Settings: testSettings(),
		Detector: detector.NewMockDetector(),
		Logger:   quiet,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for a.Submit(interact.CmdQuit) != nil {
		if time.Now().After(deadline) {
			t.Fatal("app did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run() did not return after quit")
	}
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, err := New(Config{Settings: testSettings(), Detector: detector.NewMockDetector(), Logger: quiet})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if err := a.Submit(interact.CmdReset); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Submit() after Run error = %v, want ErrNotRunning", err)
	}
}

func TestNew_RejectsInvalidSettings(t *testing.T) {
	cfg := testSettings()
	cfg.Source.Mode = "carrier-pigeon"
	if _, err := New(Config{Settings: cfg, Logger: quiet}); err == nil {
		t.Error("New() should reject an unknown source mode")
	}
}
