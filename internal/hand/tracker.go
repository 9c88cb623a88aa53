package hand

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Tracker keeps hand indices stable across frames by matching each palm
// to the nearest palm of the previous frame. Unmatched hands take the
// smallest free index, so indices stay small.
type Tracker struct {
	maxDistance float64
	prev        map[int]mgl64.Vec2
}

// NewTracker returns a tracker that matches palms at most maxDistance
// pixels apart.
func NewTracker(maxDistance float64) *Tracker {
	return &Tracker{maxDistance: maxDistance, prev: make(map[int]mgl64.Vec2)}
}

type pairing struct {
	cur, prevID int
	dist        float64
}

// Assign rewrites the Index field of frames in place and returns them.
func (t *Tracker) Assign(frames []Frame) []Frame {
	if len(frames) == 0 {
		clear(t.prev)
		return frames
	}

	pairs := make([]pairing, 0, len(frames)*len(t.prev))
	for i := range frames {
		for id, pos := range t.prev {
			d := frames[i].PalmCenter.Sub(pos).Len()
			if d <= t.maxDistance {
				pairs = append(pairs, pairing{cur: i, prevID: id, dist: d})
			}
		}
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].dist != pairs[b].dist {
			return pairs[a].dist < pairs[b].dist
		}
		if pairs[a].prevID != pairs[b].prevID {
			return pairs[a].prevID < pairs[b].prevID
		}
		return pairs[a].cur < pairs[b].cur
	})

	assigned := make([]int, len(frames))
	for i := range assigned {
		assigned[i] = -1
	}
	used := make(map[int]bool, len(frames))
	for _, p := range pairs {
		if assigned[p.cur] >= 0 || used[p.prevID] {
			continue
		}
		assigned[p.cur] = p.prevID
		used[p.prevID] = true
	}

	next := 0
	for i := range frames {
		if assigned[i] < 0 {
			for used[next] {
				next++
			}
			assigned[i] = next
			used[next] = true
		}
	}

	clear(t.prev)
	for i := range frames {
		frames[i].Index = assigned[i]
		t.prev[assigned[i]] = frames[i].PalmCenter
	}
	return frames
}
