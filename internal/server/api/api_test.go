package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ayusman/mudra/internal/interact"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/store"
)

type fakeController struct {
	mu       sync.Mutex
	snap     scene.Snapshot
	commands []interact.Command
	err      error
}

func (f *fakeController) Snapshot() scene.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeController) Submit(cmd interact.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.commands = append(f.commands, cmd)
	return nil
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSceneHandler_Snapshot(t *testing.T) {
	ctl := &fakeController{snap: scene.Snapshot{
		Show2D:  true,
		Objects: []scene.ObjectState{{ID: "a", Kind: scene.Kind2D, GrabCount: 1, Hands: []int{0}}},
	}}
	h := NewSceneHandler(ctl)

	rec := httptest.NewRecorder()
	h.Snapshot(rec, httptest.NewRequest(http.MethodGet, "/api/scene", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got scene.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Show2D || got.Show3D {
		t.Errorf("visibility = %v/%v, want true/false", got.Show2D, got.Show3D)
	}
	if len(got.Objects) != 1 || got.Objects[0].GrabCount != 1 {
		t.Errorf("objects = %+v", got.Objects)
	}
}

func TestSceneHandler_Command(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		submitErr  error
		wantStatus int
		wantQueued []interact.Command
	}{
		{"valid", `{"command":"toggle_2d"}`, nil, http.StatusAccepted, []interact.Command{interact.CmdToggle2D}},
		{"unknown", `{"command":"explode"}`, nil, http.StatusBadRequest, nil},
		{"malformed", `{`, nil, http.StatusBadRequest, nil},
		{"loop stopped", `{"command":"reset"}`, errors.New("not running"), http.StatusServiceUnavailable, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := &fakeController{err: tt.submitErr}
			h := NewSceneHandler(ctl)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/commands", bytes.NewBufferString(tt.body))
			h.Command(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if len(ctl.commands) != len(tt.wantQueued) {
				t.Fatalf("queued %v, want %v", ctl.commands, tt.wantQueued)
			}
			for i := range tt.wantQueued {
				if ctl.commands[i] != tt.wantQueued[i] {
					t.Errorf("command %d = %s, want %s", i, ctl.commands[i], tt.wantQueued[i])
				}
			}
		})
	}
}

func TestObjectsHandler_Workflow(t *testing.T) {
	h := NewObjectsHandler(setupTestStore(t))

	body := `{"kind":"3d","name":"gem","mesh":"octahedron","position":[1,2,-3],"scale":1.2,"color":[10,20,30],"renderMode":"wireframe"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/objects", bytes.NewBufferString(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	var created objectResponse
	json.NewDecoder(rec.Body).Decode(&created)
	if created.ID == "" || created.Mesh != "octahedron" || created.Position != [3]float64{1, 2, -3} {
		t.Errorf("created = %+v", created)
	}
	if created.Color != [3]uint8{10, 20, 30} {
		t.Errorf("color = %v", created.Color)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/objects", nil))
	var list listObjectsResponse
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list.Objects) != 1 {
		t.Fatalf("list returned %d objects, want 1", len(list.Objects))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/objects/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET item status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/objects/"+created.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/objects/"+created.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestObjectsHandler_Errors(t *testing.T) {
	h := NewObjectsHandler(setupTestStore(t))

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"bad kind", http.MethodPost, "/api/objects", `{"kind":"4d"}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/objects", `nope`, http.StatusBadRequest},
		{"missing", http.MethodGet, "/api/objects/none", "", http.StatusNotFound},
		{"put collection", http.MethodPut, "/api/objects", "", http.StatusMethodNotAllowed},
		{"put item", http.MethodPut, "/api/objects/x", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body)))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
