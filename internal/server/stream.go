package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"gocv.io/x/gocv"
)

// FrameBuffer holds the latest rendered frame as JPEG for MJPEG viewers.
// The frame loop only encodes while someone is watching.
type FrameBuffer struct {
	mu      sync.Mutex
	jpeg    []byte
	seq     uint64
	viewers int
	updated chan struct{}
}

// NewFrameBuffer returns an empty buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{updated: make(chan struct{})}
}

// Viewers returns the number of connected stream clients.
func (b *FrameBuffer) Viewers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewers
}

// Update encodes frame and wakes the viewers.
func (b *FrameBuffer) Update(frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()
	b.Set(append([]byte(nil), buf.GetBytes()...))
	return nil
}

// Set replaces the current JPEG.
func (b *FrameBuffer) Set(jpeg []byte) {
	b.mu.Lock()
	b.jpeg = jpeg
	b.seq++
	close(b.updated)
	b.updated = make(chan struct{})
	b.mu.Unlock()
}

// next blocks until a frame newer than after is available.
func (b *FrameBuffer) next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		b.mu.Lock()
		if b.seq > after && b.jpeg != nil {
			jpeg, seq := b.jpeg, b.seq
			b.mu.Unlock()
			return jpeg, seq, nil
		}
		wait := b.updated
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-wait:
		}
	}
}

func (b *FrameBuffer) watch(delta int) {
	b.mu.Lock()
	b.viewers += delta
	b.mu.Unlock()
}

// StreamHandler serves the rendered AR view as MJPEG.
type StreamHandler struct {
	frames *FrameBuffer
}

// NewStreamHandler creates a StreamHandler over frames.
func NewStreamHandler(frames *FrameBuffer) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP streams frames until the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.frames.watch(1)
	defer h.frames.watch(-1)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	var seq uint64
	for {
		jpeg, next, err := h.frames.next(r.Context(), seq)
		if err != nil {
			return
		}
		seq = next

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
		if _, err := w.Write(jpeg); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
