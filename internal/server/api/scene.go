package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/interact"
	"github.com/ayusman/mudra/internal/scene"
)

// Controller is the frame loop as seen by the API. Both methods are safe
// to call from request goroutines.
type Controller interface {
	Snapshot() scene.Snapshot
	Submit(cmd interact.Command) error
}

// SceneHandler serves GET /api/scene and POST /api/commands.
type SceneHandler struct {
	ctl Controller
}

// NewSceneHandler creates a SceneHandler for ctl.
func NewSceneHandler(ctl Controller) *SceneHandler {
	return &SceneHandler{ctl: ctl}
}

type commandRequest struct {
	Command string `json:"command"`
}

type commandResponse struct {
	Command string `json:"command"`
	Status  string `json:"status"`
}

// Snapshot handles GET /api/scene.
func (h *SceneHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctl.Snapshot())
}

// Command handles POST /api/commands.
func (h *SceneHandler) Command(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd, err := interact.ParseCommand(req.Command)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.ctl.Submit(cmd); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, commandResponse{Command: string(cmd), Status: "queued"})
}
