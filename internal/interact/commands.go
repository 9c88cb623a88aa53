package interact

import (
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/scene"
)

// Command is a discrete scene action from the keyboard, tray or API.
type Command string

const (
	CmdQuit             Command = "quit"
	CmdReset            Command = "reset"
	CmdAddObject        Command = "add_object"
	CmdToggle2D         Command = "toggle_2d"
	CmdToggle3D         Command = "toggle_3d"
	CmdToggleRenderMode Command = "toggle_render_mode"
	CmdToggleAutoRotate Command = "toggle_auto_rotate"
	CmdZeroX            Command = "zero_x"
	CmdZeroY            Command = "zero_y"
	CmdZeroZ            Command = "zero_z"
	CmdCycle3D          Command = "cycle_3d"
	CmdCycle2D          Command = "cycle_2d"
)

// ErrQuit is returned by Apply for CmdQuit; the caller stops its loop.
var ErrQuit = errors.New("quit requested")

var commands = map[Command]bool{
	CmdQuit: true, CmdReset: true, CmdAddObject: true,
	CmdToggle2D: true, CmdToggle3D: true,
	CmdToggleRenderMode: true, CmdToggleAutoRotate: true,
	CmdZeroX: true, CmdZeroY: true, CmdZeroZ: true,
	CmdCycle3D: true, CmdCycle2D: true,
}

// ParseCommand validates a command name.
func ParseCommand(s string) (Command, error) {
	c := Command(s)
	if !commands[c] {
		return "", fmt.Errorf("unknown command %q", s)
	}
	return c, nil
}

var keymap = map[int]Command{
	'q': CmdQuit,
	'r': CmdReset,
	'c': CmdAddObject,
	'1': CmdToggle2D,
	'2': CmdToggle3D,
	'w': CmdToggleRenderMode,
	't': CmdToggleAutoRotate,
	'x': CmdZeroX,
	'y': CmdZeroY,
	'z': CmdZeroZ,
	' ': CmdCycle3D,
	's': CmdCycle2D,
}

// KeyCommand maps a key code to its command.
func KeyCommand(key int) (Command, bool) {
	c, ok := keymap[key]
	return c, ok
}

// Apply runs a command against the scene. Only CmdReset touches the
// per-hand interaction state.
func (e *Engine) Apply(cmd Command) error {
	s := e.scene
	switch cmd {
	case CmdQuit:
		return ErrQuit
	case CmdReset:
		e.Reset()
	case CmdAddObject:
		o := s.AddRandom()
		e.logger.Printf("Added %s %s at (%.0f, %.0f)", o.Shape, o.Name, o.X, o.Y)
	case CmdToggle2D:
		s.Show2D = !s.Show2D
	case CmdToggle3D:
		s.Show3D = !s.Show3D
	case CmdToggleRenderMode:
		s.ToggleRenderMode()
	case CmdToggleAutoRotate:
		s.ToggleAutoRotate()
	case CmdZeroX:
		s.ZeroRotation("x")
	case CmdZeroY:
		s.ZeroRotation("y")
	case CmdZeroZ:
		s.ZeroRotation("z")
	case CmdCycle3D:
		s.CycleSelection(scene.Kind3D)
	case CmdCycle2D:
		s.CycleSelection(scene.Kind2D)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// Reset restores the layout and clears all grab, pinch and rotation state.
func (e *Engine) Reset() {
	e.scene.ReleaseAll()
	e.hands = e.hands[:0]
	e.scene.Load(e.layout())
	e.logger.Println("Scene reset")
}
