// Package interact turns per-frame hand records into grabs, moves, two-hand
// scaling and single-hand rotation of scene objects.
package interact

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/scene"
)

// Tuning constants. They define interaction feel and are kept exact.
const (
	MoveThreshold3D     = 0.5
	MoveSensitivity3D   = 0.015
	ScaleKeep           = 0.7
	ScaleBlend          = 0.3
	MinSize2DScaling    = 20.0
	RotationThreshold   = 4.0
	RotationSensitivity = 0.01
	pinchConfirmFrames  = 1
)

// pinchFilter debounces the raw pinch flag. A flip needs
// pinchConfirmFrames consecutive disagreeing frames.
type pinchFilter struct {
	was    bool
	frames int
}

func (p *pinchFilter) update(raw bool) bool {
	if raw == p.was {
		p.frames = 0
		return p.was
	}
	p.frames++
	if p.frames >= pinchConfirmFrames {
		p.was = raw
		p.frames = 0
	}
	return p.was
}

type twoHand struct {
	distance float64
	size     float64
}

// grab is one hand's hold on one object. Exactly one of obj2D and obj3D
// is set.
type grab struct {
	obj2D *scene.Object2D
	obj3D *scene.Object3D

	initialPinch float64
	initialSize  float64
	offset       mgl64.Vec2
	lastPinch    mgl64.Vec2
	// set on the first grabber while two-hand scaling is active
	scaling *twoHand
}

type handState struct {
	active   bool
	pinch    pinchFilter
	pinching bool
	grab     *grab
	// object this hand rotates; the hand holds no grab meanwhile
	rotating *scene.Object3D
}

// Engine owns all per-hand interaction state for one scene.
type Engine struct {
	scene  *scene.Scene
	pipe   *render.Pipeline
	logger *log.Logger
	layout func() []scene.Placement

	hands []handState
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for state transitions.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithLayout sets the placements the reset command restores.
func WithLayout(fn func() []scene.Placement) Option {
	return func(e *Engine) { e.layout = fn }
}

// NewEngine returns an engine driving s, hit-testing through p.
func NewEngine(s *scene.Scene, p *render.Pipeline, opts ...Option) *Engine {
	e := &Engine{
		scene:  s,
		pipe:   p,
		logger: log.Default(),
		layout: scene.DefaultLayout,
	}
	for _, o := range opts {
		o(e)
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	return e
}

// Scene returns the scene the engine mutates.
func (e *Engine) Scene() *scene.Scene { return e.scene }

func (e *Engine) state(idx int) *handState {
	for len(e.hands) <= idx {
		e.hands = append(e.hands, handState{})
	}
	return &e.hands[idx]
}

// Pinching reports the debounced pinch state of hand idx.
func (e *Engine) Pinching(idx int) bool {
	return idx >= 0 && idx < len(e.hands) && e.hands[idx].active && e.hands[idx].pinching
}

// Holding reports the objects hand idx holds, at most one of them non-nil.
func (e *Engine) Holding(idx int) (*scene.Object2D, *scene.Object3D) {
	if idx < 0 || idx >= len(e.hands) || e.hands[idx].grab == nil {
		return nil, nil
	}
	g := e.hands[idx].grab
	return g.obj2D, g.obj3D
}

// Update advances the interaction state by one frame.
func (e *Engine) Update(frames []hand.Frame) {
	valid := frames[:0:0]
	for _, f := range frames {
		if f.Index >= 0 {
			valid = append(valid, f)
		}
	}
	frames = valid

	if len(frames) == 0 {
		e.clearAll()
		return
	}

	present := make(map[int]bool, len(frames))
	for _, f := range frames {
		present[f.Index] = true
	}
	for idx := range e.hands {
		if e.hands[idx].active && !present[idx] {
			e.dropHand(idx)
		}
	}

	for _, f := range frames {
		st := e.state(f.Index)
		st.active = true
		st.pinching = st.pinch.update(f.Pinching)
	}

	for i := range frames {
		e.step(&frames[i])
	}

	for _, o := range e.scene.Objects2D {
		if o.GrabCount() == 2 {
			e.scale2D(o, frames)
		}
	}
	for _, o := range e.scene.Objects3D {
		if o.GrabCount() == 2 {
			e.scale3D(o, frames)
		}
	}

	for _, o := range e.scene.Objects3D {
		if o.InRotationMode() {
			e.rotate(o, frames)
		}
	}

	e.bookkeeping(frames)
}

func (e *Engine) step(f *hand.Frame) {
	st := e.state(f.Index)
	if st.rotating != nil {
		return
	}

	if !st.pinching {
		if st.grab != nil && !e.enterRotation(f, st) {
			e.release(f.Index)
		}
		return
	}

	if st.grab == nil {
		e.tryGrab(f, st)
		return
	}

	g := st.grab
	switch {
	case g.obj2D != nil && !e.scene.Show2D, g.obj3D != nil && !e.scene.Show3D:
		e.release(f.Index)
	case g.obj2D != nil:
		p := f.PinchCenter.Sub(g.offset)
		g.obj2D.MoveTo(p.X(), p.Y())
	default:
		d := f.PinchCenter.Sub(g.lastPinch)
		if d.Len() > MoveThreshold3D {
			g.obj3D.Position[0] += d.X() * MoveSensitivity3D
			g.obj3D.Position[1] -= d.Y() * MoveSensitivity3D
		}
		g.lastPinch = f.PinchCenter
	}
}

func (e *Engine) tryGrab(f *hand.Frame, st *handState) {
	x, y := f.PinchCenter.X(), f.PinchCenter.Y()

	if e.scene.Show3D {
		for _, o := range e.scene.Objects3D {
			if o.GrabCount() >= scene.MaxGrabbers || !o.IsPointInside(e.pipe, x, y) {
				continue
			}
			if !o.Grab(f.Index) {
				continue
			}
			sp, _ := o.ScreenPosition(e.pipe)
			st.grab = &grab{
				obj3D:        o,
				initialPinch: f.PinchDistance,
				initialSize:  o.Scale,
				offset:       f.PinchCenter.Sub(sp),
				lastPinch:    f.PinchCenter,
			}
			o.Selected = true
			e.clearScaling3D(o)
			e.logger.Printf("Hand %d grabbed 3D object %s (grab count %d)", f.Index, o.Name, o.GrabCount())
			return
		}
	}

	if !e.scene.Show2D {
		return
	}
	var best *scene.Object2D
	bestDist := math.Inf(1)
	for _, o := range e.scene.Objects2D {
		if o.GrabCount() >= scene.MaxGrabbers {
			continue
		}
		if d := o.Distance(x, y); d <= o.Size && d < bestDist {
			best, bestDist = o, d
		}
	}
	if best == nil || !best.Grab(f.Index) {
		return
	}
	st.grab = &grab{
		obj2D:        best,
		initialPinch: f.PinchDistance,
		initialSize:  best.Size,
		offset:       f.PinchCenter.Sub(best.Center()),
		lastPinch:    f.PinchCenter,
	}
	best.Selected = true
	e.clearScaling2D(best)
	e.logger.Printf("Hand %d grabbed 2D object %s (grab count %d)", f.Index, best.Name, best.GrabCount())
}

// enterRotation hands a two-hand 3D grab over to rotation when the other
// grabber is still pinching.
func (e *Engine) enterRotation(f *hand.Frame, st *handState) bool {
	o := st.grab.obj3D
	if o == nil || o.GrabCount() != scene.MaxGrabbers {
		return false
	}
	other := -1
	for _, h := range o.GrabbingHands() {
		if h != f.Index {
			other = h
		}
	}
	if other < 0 || !e.Pinching(other) {
		return false
	}
	axis := scene.AxisFor(f.Handedness)
	if !o.EnterRotation(f.Index, axis, f.PalmCenter) {
		return false
	}
	st.grab = nil
	st.rotating = o
	e.clearScaling3D(o)
	e.logger.Printf("Object %s entered rotation mode (hand %d, axis %q)", o.Name, f.Index, axis)
	return true
}

// release fully drops hand idx's grab.
func (e *Engine) release(idx int) {
	st := e.state(idx)
	g := st.grab
	if g == nil {
		return
	}
	st.grab = nil

	if o := g.obj2D; o != nil {
		o.Release(idx)
		if o.GrabCount() == 0 {
			o.Selected = false
		}
		e.clearScaling2D(o)
		return
	}

	o := g.obj3D
	owner := -1
	if r := o.Rotating(); r != nil {
		owner = r.Owner
	}
	o.Release(idx)
	if owner >= 0 && !o.InRotationMode() {
		e.endRotation(owner, o)
	}
	if o.GrabCount() == 0 {
		o.Selected = false
	}
	e.clearScaling3D(o)
}

// endRotation clears the rotation owner's state after its object left
// rotation mode.
func (e *Engine) endRotation(owner int, o *scene.Object3D) {
	if owner < len(e.hands) && e.hands[owner].rotating == o {
		e.hands[owner].rotating = nil
	}
	e.logger.Printf("Object %s exited rotation mode", o.Name)
}

// dropHand treats a hand that is no longer reported as released and
// discards its state.
func (e *Engine) dropHand(idx int) {
	e.release(idx)
	if o := e.hands[idx].rotating; o != nil {
		o.ExitRotation()
		e.endRotation(idx, o)
	}
	e.hands[idx] = handState{}
}

func (e *Engine) clearScaling2D(o *scene.Object2D) {
	for _, h := range o.GrabbingHands() {
		if h < len(e.hands) && e.hands[h].grab != nil {
			e.hands[h].grab.scaling = nil
		}
	}
}

func (e *Engine) clearScaling3D(o *scene.Object3D) {
	for _, h := range o.GrabbingHands() {
		if h < len(e.hands) && e.hands[h].grab != nil {
			e.hands[h].grab.scaling = nil
		}
	}
}

// twoHandStep returns the smoothed size for an object held by hands a and
// b, snapshotting the baseline on the first two-hand frame.
func (e *Engine) twoHandStep(hands []int, frames []hand.Frame, size float64) (float64, bool) {
	if len(hands) != 2 {
		return 0, false
	}
	f1, ok1 := hand.Find(frames, hands[0])
	f2, ok2 := hand.Find(frames, hands[1])
	g := e.state(hands[0]).grab
	if !ok1 || !ok2 || g == nil {
		return 0, false
	}
	d := f2.PinchCenter.Sub(f1.PinchCenter).Len()
	if g.scaling == nil {
		g.scaling = &twoHand{distance: d, size: size}
	}
	if g.scaling.distance <= 0 {
		return 0, false
	}
	target := g.scaling.size * d / g.scaling.distance
	return size*ScaleKeep + target*ScaleBlend, true
}

func (e *Engine) scale2D(o *scene.Object2D, frames []hand.Frame) {
	if size, ok := e.twoHandStep(o.GrabbingHands(), frames, o.Size); ok {
		o.Size = mgl64.Clamp(size, MinSize2DScaling, scene.MaxSize2D)
	}
}

func (e *Engine) scale3D(o *scene.Object3D, frames []hand.Frame) {
	if scale, ok := e.twoHandStep(o.GrabbingHands(), frames, o.Scale); ok {
		o.Scale = mgl64.Clamp(scale, scene.MinScale3D, scene.MaxScale3D)
	}
}

func (e *Engine) rotate(o *scene.Object3D, frames []hand.Frame) {
	r := o.Rotating()
	f, ok := hand.Find(frames, r.Owner)
	if !ok {
		o.ExitRotation()
		e.endRotation(r.Owner, o)
		return
	}
	r.Axis = scene.AxisFor(f.Handedness)

	palm := f.PalmCenter
	if !r.HasLast || e.Pinching(r.Owner) || (f.Has(hand.Fist) && !f.Has(hand.OpenHand)) {
		r.LastPos, r.HasLast = palm, true
		return
	}

	d := palm.Sub(r.LastPos)
	if r.Axis == scene.AxisX {
		if math.Abs(d.Y()) > RotationThreshold {
			o.Rotation[0] = render.WrapAngle(o.Rotation[0] - d.Y()*RotationSensitivity)
		}
	} else if math.Abs(d.X()) > RotationThreshold {
		o.Rotation[1] = render.WrapAngle(o.Rotation[1] - d.X()*RotationSensitivity)
	}
	r.LastPos = palm
}

func (e *Engine) bookkeeping(frames []hand.Frame) {
	for _, o := range e.scene.Objects3D {
		o.TwoHandSelected = o.GrabCount() == scene.MaxGrabbers
		o.Highlighted = false
	}
	if !e.scene.Show3D {
		return
	}
	// an open hand over a free object is about to grab it
	for _, f := range frames {
		st := e.state(f.Index)
		if st.pinching || st.grab != nil || st.rotating != nil {
			continue
		}
		for _, o := range e.scene.Objects3D {
			if o.GrabCount() == 0 && o.IsPointInside(e.pipe, f.PinchCenter.X(), f.PinchCenter.Y()) {
				o.Highlighted = true
				break
			}
		}
	}
}

// clearAll is the zero-hand reset: every grab and rotation is dropped and
// every per-hand record discarded.
func (e *Engine) clearAll() {
	for _, o := range e.scene.Objects2D {
		if o.GrabCount() > 0 {
			o.ReleaseAll()
			o.Selected = false
		}
	}
	for _, o := range e.scene.Objects3D {
		if o.GrabCount() > 0 {
			o.ResetHold()
			o.Selected = false
		}
		o.TwoHandSelected = false
		o.Highlighted = false
	}
	e.hands = e.hands[:0]
}
