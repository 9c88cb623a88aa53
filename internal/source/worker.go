package source

import (
	"context"
	"log"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
)

// DetectorWorker runs hand detection off the frame loop and publishes
// results to a Mailbox. Frames submitted while a detection is running are
// dropped.
type DetectorWorker struct {
	det    detector.Detector
	motion *capture.MotionDetector
	box    *Mailbox
	frames chan gocv.Mat
	logger *log.Logger

	sawHands bool
}

// NewDetectorWorker returns a worker feeding box. motion may be nil to
// run detection on every frame.
func NewDetectorWorker(d detector.Detector, motion *capture.MotionDetector, box *Mailbox, logger *log.Logger) *DetectorWorker {
	if logger == nil {
		logger = log.Default()
	}
	return &DetectorWorker{
		det:    d,
		motion: motion,
		box:    box,
		frames: make(chan gocv.Mat, 1),
		logger: logger,
	}
}

// Submit hands a copy of frame to the worker and reports whether it was
// accepted. It never blocks.
func (w *DetectorWorker) Submit(frame *gocv.Mat) bool {
	if frame == nil || frame.Empty() {
		return false
	}
	c := frame.Clone()
	select {
	case w.frames <- c:
		return true
	default:
		c.Close()
		return false
	}
}

// Run processes submitted frames until ctx is done.
func (w *DetectorWorker) Run(ctx context.Context) {
	w.logger.Println("Detection worker started")
	defer w.logger.Println("Detection worker stopped")

	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case frame := <-w.frames:
			w.process(&frame)
			frame.Close()
		}
	}
}

func (w *DetectorWorker) process(frame *gocv.Mat) {
	// no hands last time and a still frame: skip inference
	if w.motion != nil && !w.sawHands {
		if moved, _ := w.motion.Detect(frame); !moved {
			w.box.Publish(nil)
			return
		}
	}

	hands, err := w.det.Detect(frame)
	if err != nil {
		w.logger.Printf("Error detecting hands: %v", err)
		hands = nil
	}
	w.sawHands = len(hands) > 0
	if err := w.box.Publish(hands); err != nil {
		w.logger.Printf("Dropping detection result: %v", err)
	}
}

func (w *DetectorWorker) drain() {
	for {
		select {
		case f := <-w.frames:
			f.Close()
		default:
			return
		}
	}
}
