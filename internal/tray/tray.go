// Package tray provides a system tray menu that issues scene commands.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/interact"
)

// entry is one command item of the tray menu.
type entry struct {
	title   string
	tooltip string
	cmd     interact.Command
	check   bool
}

// menu lists the command items in display order. A zero entry is a
// separator.
var menu = []entry{
	{title: "Reset scene", tooltip: "Release everything and reload the layout", cmd: interact.CmdReset},
	{title: "Add object", tooltip: "Add a random 2D object", cmd: interact.CmdAddObject},
	{},
	{title: "Show 2D", tooltip: "Toggle 2D objects", cmd: interact.CmdToggle2D, check: true},
	{title: "Show 3D", tooltip: "Toggle 3D objects", cmd: interact.CmdToggle3D, check: true},
	{title: "Auto-rotate", tooltip: "Spin objects that are not held", cmd: interact.CmdToggleAutoRotate, check: true},
	{title: "Wireframe / solid", tooltip: "Switch the 3D render mode", cmd: interact.CmdToggleRenderMode},
	{},
	{title: "Zero X rotation", cmd: interact.CmdZeroX},
	{title: "Zero Y rotation", cmd: interact.CmdZeroY},
	{title: "Zero Z rotation", cmd: interact.CmdZeroZ},
	{title: "Select next 3D", cmd: interact.CmdCycle3D},
	{title: "Select next 2D", cmd: interact.CmdCycle2D},
}

// Tray represents the system tray application.
type Tray struct {
	onCommand func(interact.Command)
	onOpen    func()
	mu        sync.RWMutex

	items  map[interact.Command]*systray.MenuItem
	status *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{items: make(map[interact.Command]*systray.MenuItem)}
}

// OnCommand sets the callback for menu commands, including quit.
func (t *Tray) OnCommand(fn func(interact.Command)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCommand = fn
}

// OnOpen sets the callback for the "Open view" item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("mudra")
	systray.SetTooltip("mudra hand-gesture AR")

	t.mu.Lock()
	t.status = systray.AddMenuItem("Hands: 0", "Hands in view")
	t.status.Disable()
	systray.AddSeparator()
	open := systray.AddMenuItem("Open view...", "Open the live view in a browser")
	systray.AddSeparator()

	for _, e := range menu {
		if e.cmd == "" {
			systray.AddSeparator()
			continue
		}
		var item *systray.MenuItem
		if e.check {
			item = systray.AddMenuItemCheckbox(e.title, e.tooltip, true)
		} else {
			item = systray.AddMenuItem(e.title, e.tooltip)
		}
		t.items[e.cmd] = item
		go t.forward(item, e.cmd)
	}
	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Quit mudra")
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-open.ClickedCh:
				t.mu.RLock()
				fn := t.onOpen
				t.mu.RUnlock()
				if fn != nil {
					fn()
				}
			case <-quit.ClickedCh:
				t.dispatch(interact.CmdQuit)
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) forward(item *systray.MenuItem, cmd interact.Command) {
	for range item.ClickedCh {
		t.dispatch(cmd)
	}
}

// dispatch calls the command callback outside the lock.
func (t *Tray) dispatch(cmd interact.Command) {
	t.mu.RLock()
	fn := t.onCommand
	t.mu.RUnlock()
	if fn != nil {
		fn(cmd)
	}
}

// SetState updates the status line and checkbox items.
func (t *Tray) SetState(hands int, show2D, show3D, autoRotate bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.status != nil {
		t.status.SetTitle(fmt.Sprintf("Hands: %d", hands))
	}
	setCheck(t.items[interact.CmdToggle2D], show2D)
	setCheck(t.items[interact.CmdToggle3D], show3D)
	setCheck(t.items[interact.CmdToggleAutoRotate], autoRotate)
}

func setCheck(item *systray.MenuItem, on bool) {
	if item == nil {
		return
	}
	if on {
		item.Check()
	} else {
		item.Uncheck()
	}
}
