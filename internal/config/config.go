// Package config loads mudra's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml/v2"

	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/source"
)

// Environment overrides.
const (
	EnvRoomID   = "MUDRA_ROOM_ID"
	EnvRelayURL = "MUDRA_RELAY_URL"
	EnvSource   = "MUDRA_SOURCE"
)

// Landmark source modes.
const (
	// SourceLocal runs the detector on camera frames.
	SourceLocal = "local"
	// SourceRelay observes a room on a remote relay.
	SourceRelay = "relay"
	// SourceServer observes a room on the built-in relay.
	SourceServer = "server"
)

// Config is the full application configuration.
type Config struct {
	Camera Camera `toml:"camera"`
	Render Render `toml:"render"`
	Source Source `toml:"source"`
	Server Server `toml:"server"`
	Store  Store  `toml:"store"`
	Scene  Scene  `toml:"scene"`
}

type Camera struct {
	Device  int  `toml:"device"`
	Width   int  `toml:"width"`
	Height  int  `toml:"height"`
	FPS     int  `toml:"fps"`
	IdleFPS int  `toml:"idle_fps"`
	Mirror  bool `toml:"mirror"`
	Enabled bool `toml:"enabled"`
	// percentage of changed pixels that counts as motion
	MotionThreshold float64 `toml:"motion_threshold"`
}

type Render struct {
	Width      int        `toml:"width"`
	Height     int        `toml:"height"`
	FOVDegrees float64    `toml:"fov_degrees"`
	Near       float64    `toml:"near"`
	Far        float64    `toml:"far"`
	Eye        [3]float64 `toml:"eye"`
	Target     [3]float64 `toml:"target"`
	LightDir   [3]float64 `toml:"light_dir"`
	Window     bool       `toml:"window"`
}

type Source struct {
	Mode          string `toml:"mode"`
	RelayURL      string `toml:"relay_url"`
	RoomID        string `toml:"room_id"`
	WaitTimeoutMS int    `toml:"wait_timeout_ms"`
	MaxAgeMS      int    `toml:"max_age_ms"`
	StableIndices bool   `toml:"stable_indices"`
}

type Server struct {
	Addr      string `toml:"addr"`
	StaticDir string `toml:"static_dir"`
}

type Store struct {
	Path string `toml:"path"`
}

type Scene struct {
	Objects []Object `toml:"objects"`
}

// Object is one [[scene.objects]] entry.
type Object struct {
	Kind            string     `toml:"kind"`
	Name            string     `toml:"name"`
	Shape           string     `toml:"shape"`
	Mesh            string     `toml:"mesh"`
	Position        [3]float64 `toml:"position"`
	Size            float64    `toml:"size"`
	Scale           float64    `toml:"scale"`
	Color           [3]uint8   `toml:"color"`
	RenderMode      string     `toml:"render_mode"`
	AutoRotateSpeed float64    `toml:"auto_rotate_speed"`
}

// Default returns the built-in configuration.
func Default() Config {
	r := render.DefaultConfig(800, 600)
	return Config{
		Camera: Camera{
			Width:           800,
			Height:          600,
			FPS:             30,
			IdleFPS:         10,
			Mirror:          true,
			Enabled:         true,
			MotionThreshold: 1.0,
		},
		Render: Render{
			Width:      r.Width,
			Height:     r.Height,
			FOVDegrees: r.FOVDegrees,
			Near:       r.Near,
			Far:        r.Far,
			Eye:        r.Eye,
			Target:     r.Target,
			LightDir:   r.LightDir,
			Window:     true,
		},
		Source: Source{
			Mode:          SourceLocal,
			RoomID:        source.DefaultRoom,
			WaitTimeoutMS: int(source.DefaultWaitTimeout / time.Millisecond),
			MaxAgeMS:      int(source.DefaultMaxAge / time.Millisecond),
		},
		Server: Server{
			Addr: "127.0.0.1:8080",
		},
		Store: Store{
			Path: defaultStorePath(),
		},
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mudra.db"
	}
	return filepath.Join(home, ".mudra", "mudra.db")
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error when path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes TOML into cfg. Keys absent from data keep their values.
func Parse(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return err
	}
	return nil
}

// ApplyEnv overrides source settings from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvRoomID); ok && v != "" {
		c.Source.RoomID = v
	}
	if v, ok := lookup(EnvRelayURL); ok && v != "" {
		c.Source.RelayURL = v
	}
	if v, ok := lookup(EnvSource); ok && v != "" {
		c.Source.Mode = strings.ToLower(v)
	}
}

// Validate checks the settings the app cannot run without.
func (c *Config) Validate() error {
	var errs []error
	switch c.Source.Mode {
	case SourceLocal, SourceServer:
	case SourceRelay:
		if c.Source.RelayURL == "" {
			errs = append(errs, errors.New("source.relay_url is required in relay mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source.mode %q", c.Source.Mode))
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render size %dx%d must be positive", c.Render.Width, c.Render.Height))
	}
	if c.Render.Near <= 0 || c.Render.Far <= c.Render.Near {
		errs = append(errs, fmt.Errorf("render clip range %g..%g is invalid", c.Render.Near, c.Render.Far))
	}
	for i, o := range c.Scene.Objects {
		if _, err := o.Placement(); err != nil {
			errs = append(errs, fmt.Errorf("scene.objects[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Pipeline returns the render pipeline configuration.
func (r Render) Pipeline() render.Config {
	cfg := render.DefaultConfig(r.Width, r.Height)
	cfg.FOVDegrees = r.FOVDegrees
	cfg.Near, cfg.Far = r.Near, r.Far
	cfg.Eye = mgl64.Vec3(r.Eye)
	cfg.Target = mgl64.Vec3(r.Target)
	cfg.LightDir = mgl64.Vec3(r.LightDir)
	return cfg
}

// WaitTimeout is how long the frame loop waits for fresh landmarks.
func (s Source) WaitTimeout() time.Duration {
	return time.Duration(s.WaitTimeoutMS) * time.Millisecond
}

// MaxAge is the age after which landmarks count as stale.
func (s Source) MaxAge() time.Duration {
	return time.Duration(s.MaxAgeMS) * time.Millisecond
}

// Placement converts the entry to a scene placement.
func (o Object) Placement() (scene.Placement, error) {
	kind, err := scene.ParseKind(o.Kind)
	if err != nil {
		return scene.Placement{}, err
	}
	p := scene.Placement{
		Kind:            kind,
		Name:            o.Name,
		Shape:           o.Shape,
		Mesh:            o.Mesh,
		X:               o.Position[0],
		Y:               o.Position[1],
		Z:               o.Position[2],
		Size:            o.Size,
		Scale:           o.Scale,
		Color:           color.RGBA{o.Color[0], o.Color[1], o.Color[2], 255},
		AutoRotateSpeed: o.AutoRotateSpeed,
	}
	if o.RenderMode != "" {
		if p.RenderMode, err = render.ParseMode(o.RenderMode); err != nil {
			return scene.Placement{}, err
		}
	}
	return p, nil
}

// Placements returns the configured layout, or the default layout when
// none is configured.
func (c *Config) Placements() []scene.Placement {
	if len(c.Scene.Objects) == 0 {
		return scene.DefaultLayout()
	}
	out := make([]scene.Placement, 0, len(c.Scene.Objects))
	for _, o := range c.Scene.Objects {
		if p, err := o.Placement(); err == nil {
			out = append(out, p)
		}
	}
	return out
}
