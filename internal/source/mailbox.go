package source

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// Default hand-off timings.
const (
	DefaultWaitTimeout = 15 * time.Millisecond
	DefaultMaxAge      = 800 * time.Millisecond
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("source: mailbox closed")

// Mailbox hands the latest landmark snapshot from one producer to the
// frame loop. Publishing never blocks; readers see only the newest value.
type Mailbox struct {
	mu     sync.Mutex
	hands  []detector.HandLandmarks
	at     time.Time
	seq    uint64
	read   uint64
	closed bool
	notify chan struct{}
	now    func() time.Time
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{
		notify: make(chan struct{}, 1),
		now:    time.Now,
	}
}

// Publish replaces the snapshot. The slice is copied.
func (m *Mailbox) Publish(hands []detector.HandLandmarks) error {
	snap := make([]detector.HandLandmarks, len(hands))
	for i, h := range hands {
		snap[i] = h
		snap[i].Points = append([]detector.Point3D(nil), h.Points...)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.hands = snap
	m.at = m.now()
	m.seq++
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return nil
}

// Latest returns the current snapshot and when it was published.
func (m *Mailbox) Latest() ([]detector.HandLandmarks, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hands, m.at
}

// Next waits up to timeout for a snapshot newer than the last one read,
// then returns the newest snapshot if it is at most maxAge old. Stale or
// missing data yields no hands.
func (m *Mailbox) Next(ctx context.Context, timeout, maxAge time.Duration) []detector.HandLandmarks {
	m.mu.Lock()
	fresh := m.seq != m.read
	m.mu.Unlock()

	if fresh {
		select {
		case <-m.notify:
		default:
		}
	} else if timeout > 0 {
		t := time.NewTimer(timeout)
		select {
		case <-m.notify:
		case <-t.C:
		case <-ctx.Done():
		}
		t.Stop()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.read = m.seq
	if m.seq == 0 || m.now().Sub(m.at) > maxAge {
		return nil
	}
	return m.hands
}

// Close stops further publishing.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}
