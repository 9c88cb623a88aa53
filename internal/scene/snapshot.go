package scene

// ObjectState is the JSON view of one object served by the API.
type ObjectState struct {
	ID         string     `json:"id"`
	Kind       Kind       `json:"kind"`
	Name       string     `json:"name,omitempty"`
	Shape      string     `json:"shape,omitempty"`
	Mesh       string     `json:"mesh,omitempty"`
	Position   [3]float64 `json:"position"`
	Rotation   [3]float64 `json:"rotation"`
	Size       float64    `json:"size,omitempty"`
	Scale      float64    `json:"scale,omitempty"`
	Color      [3]uint8   `json:"color"`
	RenderMode string     `json:"renderMode,omitempty"`
	GrabCount  int        `json:"grabCount"`
	Hands      []int      `json:"hands,omitempty"`
	Selected   bool       `json:"selected"`
	Rotating   bool       `json:"rotating,omitempty"`
	RotateAxis Axis       `json:"rotateAxis,omitempty"`
}

// Snapshot is the JSON view of the whole scene.
type Snapshot struct {
	Show2D  bool          `json:"show2d"`
	Show3D  bool          `json:"show3d"`
	Objects []ObjectState `json:"objects"`
}

// Snapshot captures the current state of every object.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		Show2D:  s.Show2D,
		Show3D:  s.Show3D,
		Objects: make([]ObjectState, 0, len(s.Objects2D)+len(s.Objects3D)),
	}
	for _, o := range s.Objects2D {
		snap.Objects = append(snap.Objects, ObjectState{
			ID:        o.ID,
			Kind:      Kind2D,
			Name:      o.Name,
			Shape:     o.Shape,
			Position:  [3]float64{o.X, o.Y, 0},
			Size:      o.Size,
			Color:     [3]uint8{o.Color.R, o.Color.G, o.Color.B},
			GrabCount: o.GrabCount(),
			Hands:     o.GrabbingHands(),
			Selected:  o.Selected,
		})
	}
	for _, o := range s.Objects3D {
		st := ObjectState{
			ID:         o.ID,
			Kind:       Kind3D,
			Name:       o.Name,
			Mesh:       o.MeshRef,
			Position:   o.Position,
			Rotation:   o.Rotation,
			Scale:      o.Scale,
			Color:      [3]uint8{o.Color.R, o.Color.G, o.Color.B},
			RenderMode: string(o.Mode),
			GrabCount:  o.GrabCount(),
			Hands:      o.GrabbingHands(),
			Selected:   o.Selected,
		}
		if r := o.Rotating(); r != nil {
			st.Rotating = true
			st.RotateAxis = r.Axis
		}
		snap.Objects = append(snap.Objects, st)
	}
	return snap
}

// Placements converts the scene back to placements, for persisting.
func (s *Scene) Placements() []Placement {
	out := make([]Placement, 0, len(s.Objects2D)+len(s.Objects3D))
	for _, o := range s.Objects2D {
		out = append(out, Placement{
			ID: o.ID, Kind: Kind2D, Name: o.Name, Shape: o.Shape,
			X: o.X, Y: o.Y, Size: o.Size, Color: o.Color,
		})
	}
	for _, o := range s.Objects3D {
		out = append(out, Placement{
			ID: o.ID, Kind: Kind3D, Name: o.Name, Mesh: o.MeshRef,
			X: o.Position[0], Y: o.Position[1], Z: o.Position[2],
			Scale: o.Scale, Color: o.Color, RenderMode: o.Mode,
			AutoRotateSpeed: o.AutoRotateSpeed,
		})
	}
	return out
}
