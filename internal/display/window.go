package display

import (
	"fmt"
	"image"
	"image/color"
	"unicode"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/interact"
)

// WindowTitle is the title of the AR window.
const WindowTitle = "mudra"

// Window is the on-screen view.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show displays frame.
func (w *Window) Show(frame *gocv.Mat) {
	w.win.IMShow(*frame)
}

// Poll waits up to delay ms for a key and maps it to a command.
func (w *Window) Poll(delay int) (interact.Command, bool) {
	return KeyToCommand(w.win.WaitKey(delay))
}

// IsOpen reports whether the window is still open.
func (w *Window) IsOpen() bool {
	return w.win.IsOpen()
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}

// KeyToCommand maps a WaitKey result to a command. Letters are matched
// case-insensitively; -1 means no key.
func KeyToCommand(key int) (interact.Command, bool) {
	if key < 0 {
		return "", false
	}
	key &= 0xff
	return interact.KeyCommand(int(unicode.ToLower(rune(key))))
}

// Status is the state summarised in the overlay.
type Status struct {
	Show2D, Show3D bool
	RenderMode     string
	AutoRotate     bool
	Hands          int
	FPS            float64
	Source         string
}

var hudColor = color.RGBA{255, 255, 255, 255}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Lines formats the status overlay.
func (s Status) Lines() []string {
	return []string{
		"2D " + onOff(s.Show2D) + "  3D " + onOff(s.Show3D) + "  mode " + s.RenderMode + "  spin " + onOff(s.AutoRotate),
		fmt.Sprintf("hands %d  %.0f fps  %s", s.Hands, s.FPS, s.Source),
		"q quit  r reset  c add  w mode  t spin  x/y/z zero  space/s select",
	}
}

// DrawStatus writes the overlay in the top-left corner.
func DrawStatus(c *MatCanvas, s Status) {
	for i, line := range s.Lines() {
		c.Text(image.Pt(10, 20+18*i), line, hudColor)
	}
}
