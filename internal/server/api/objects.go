package api

import (
	"encoding/json"
	"errors"
	"image/color"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/store"
)

// ObjectsHandler handles the stored placements that reset-scene loads.
type ObjectsHandler struct {
	store *store.Store
}

// NewObjectsHandler creates a new ObjectsHandler with the given store.
func NewObjectsHandler(s *store.Store) *ObjectsHandler {
	return &ObjectsHandler{store: s}
}

// ServeHTTP routes /api/objects and /api/objects/{id}.
func (h *ObjectsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/objects"), "/")

	if id == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type objectRequest struct {
	Kind            string     `json:"kind"`
	Name            string     `json:"name"`
	Shape           string     `json:"shape"`
	Mesh            string     `json:"mesh"`
	Position        [3]float64 `json:"position"`
	Size            float64    `json:"size"`
	Scale           float64    `json:"scale"`
	Color           [3]uint8   `json:"color"`
	RenderMode      string     `json:"renderMode"`
	AutoRotateSpeed float64    `json:"autoRotateSpeed"`
}

type objectResponse struct {
	ID              string     `json:"id"`
	Kind            string     `json:"kind"`
	Name            string     `json:"name,omitempty"`
	Shape           string     `json:"shape,omitempty"`
	Mesh            string     `json:"mesh,omitempty"`
	Position        [3]float64 `json:"position"`
	Size            float64    `json:"size,omitempty"`
	Scale           float64    `json:"scale,omitempty"`
	Color           [3]uint8   `json:"color"`
	RenderMode      string     `json:"renderMode,omitempty"`
	AutoRotateSpeed float64    `json:"autoRotateSpeed,omitempty"`
	CreatedAt       string     `json:"created_at"`
}

type listObjectsResponse struct {
	Objects []objectResponse `json:"objects"`
}

func (req objectRequest) placement() scene.Placement {
	return scene.Placement{
		Kind:            scene.Kind(req.Kind),
		Name:            req.Name,
		Shape:           req.Shape,
		Mesh:            req.Mesh,
		X:               req.Position[0],
		Y:               req.Position[1],
		Z:               req.Position[2],
		Size:            req.Size,
		Scale:           req.Scale,
		Color:           color.RGBA{req.Color[0], req.Color[1], req.Color[2], 255},
		RenderMode:      render.Mode(req.RenderMode),
		AutoRotateSpeed: req.AutoRotateSpeed,
	}
}

func toResponse(o *store.Object) objectResponse {
	return objectResponse{
		ID:              o.ID,
		Kind:            string(o.Kind),
		Name:            o.Name,
		Shape:           o.Shape,
		Mesh:            o.Mesh,
		Position:        [3]float64{o.X, o.Y, o.Z},
		Size:            o.Size,
		Scale:           o.Scale,
		Color:           [3]uint8{o.Color.R, o.Color.G, o.Color.B},
		RenderMode:      string(o.RenderMode),
		AutoRotateSpeed: o.AutoRotateSpeed,
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
	}
}

// list handles GET /api/objects.
func (h *ObjectsHandler) list(w http.ResponseWriter, r *http.Request) {
	objects, err := h.store.Objects().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list objects")
		return
	}

	response := listObjectsResponse{
		Objects: make([]objectResponse, 0, len(objects)),
	}
	for _, o := range objects {
		response.Objects = append(response.Objects, toResponse(o))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/objects/{id}.
func (h *ObjectsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	o, err := h.store.Objects().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Object not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get object")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(o))
}

// create handles POST /api/objects.
func (h *ObjectsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req objectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p := req.placement()
	if err := h.store.Objects().Create(&p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.store.Objects().GetByID(p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read back object")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(o))
}

// delete handles DELETE /api/objects/{id}.
func (h *ObjectsHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Objects().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Object not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete object")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
