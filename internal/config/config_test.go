package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/source"
)

const sample = `
[camera]
device = 1
mirror = false

[render]
width = 640
height = 480
eye = [0.0, 1.0, 6.0]

[source]
mode = "relay"
relay_url = "https://relay.example.com"
room_id = "studio"
max_age_ms = 500

[[scene.objects]]
kind = "2d"
name = "moon"
shape = "circle"
position = [120.0, 80.0, 0.0]
size = 40.0
color = [200, 200, 255]

[[scene.objects]]
kind = "3d"
mesh = "octahedron"
position = [0.0, 0.0, -3.0]
scale = 1.5
color = [255, 0, 0]
render_mode = "wireframe"
`

func noEnv(string) (string, bool) { return "", false }

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, SourceLocal, cfg.Source.Mode)
	assert.Equal(t, source.DefaultRoom, cfg.Source.RoomID)
	assert.Equal(t, source.DefaultMaxAge, cfg.Source.MaxAge())
	assert.Equal(t, source.DefaultWaitTimeout, cfg.Source.WaitTimeout())
	assert.Equal(t, scene.DefaultLayout(), cfg.Placements())
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, Parse([]byte(sample), &cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1, cfg.Camera.Device)
	assert.False(t, cfg.Camera.Mirror)
	assert.Equal(t, 30, cfg.Camera.FPS, "unset keys keep defaults")
	assert.Equal(t, 60.0, cfg.Render.FOVDegrees)

	pc := cfg.Render.Pipeline()
	assert.Equal(t, 640, pc.Width)
	assert.Equal(t, 6.0, pc.Eye.Z())

	assert.Equal(t, "studio", cfg.Source.RoomID)
	assert.Equal(t, int64(500), cfg.Source.MaxAge().Milliseconds())

	ps := cfg.Placements()
	require.Len(t, ps, 2)
	assert.Equal(t, scene.Placement{
		Kind: scene.Kind2D, Name: "moon", Shape: "circle",
		X: 120, Y: 80, Size: 40, Color: color.RGBA{200, 200, 255, 255},
	}, ps[0])
	assert.Equal(t, render.Wireframe, ps[1].RenderMode)
	assert.Equal(t, -3.0, ps[1].Z)
}

func TestParseReportsPosition(t *testing.T) {
	cfg := Default()
	err := Parse([]byte("[camera]\nfps = = 3\n"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Source.Mode = "carrier-pigeon" }},
		{"relay without url", func(c *Config) { c.Source.Mode = SourceRelay }},
		{"zero size", func(c *Config) { c.Render.Width = 0 }},
		{"far before near", func(c *Config) { c.Render.Far = 0.01 }},
		{"bad object kind", func(c *Config) { c.Scene.Objects = []Object{{Kind: "4d"}} }},
		{"bad render mode", func(c *Config) { c.Scene.Objects = []Object{{Kind: "3d", RenderMode: "glossy"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvRoomID:   "lab",
		EnvRelayURL: "ws://10.0.0.2:8080",
		EnvSource:   "RELAY",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, "lab", cfg.Source.RoomID)
	assert.Equal(t, "ws://10.0.0.2:8080", cfg.Source.RelayURL)
	assert.Equal(t, SourceRelay, cfg.Source.Mode)
	assert.NoError(t, cfg.Validate())

	before := cfg
	cfg.ApplyEnv(noEnv)
	assert.Equal(t, before, cfg)
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvSource, "")
	t.Setenv(EnvRoomID, "")
	t.Setenv(EnvRelayURL, "")

	path := filepath.Join(t.TempDir(), "mudra.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceRelay, cfg.Source.Mode)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, cfg.Source.Mode)
}
