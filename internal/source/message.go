// Package source delivers hand landmarks to the frame loop from a local
// detector or a remote relay.
package source

import (
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// DefaultRoom is the relay room used when none is configured.
const DefaultRoom = "demo"

// Relay roles.
const (
	RoleSender   = "sender"
	RoleObserver = "observer"
)

// MessageType tags skeleton frames on the relay.
const MessageType = "hand-skeleton"

// Skeleton is one hand as sent by a remote tracker. Landmarks are
// normalised unless any coordinate exceeds pixelCutoff. Clear tells
// observers the hand is gone.
type Skeleton struct {
	Landmarks  []detector.Point3D `json:"landmarks"`
	Handedness string             `json:"handedness,omitempty"`
	Clear      bool               `json:"clear,omitempty"`
	TS         int64              `json:"ts,omitempty"`
}

// coordinates above this cannot be normalised
const pixelCutoff = 2.0

// Hand converts the skeleton to detector landmarks. Cleared or empty
// skeletons return false.
func (s *Skeleton) Hand() (detector.HandLandmarks, bool) {
	if s == nil || s.Clear || len(s.Landmarks) == 0 {
		return detector.HandLandmarks{}, false
	}
	h := detector.HandLandmarks{
		Points:     make([]detector.Point3D, len(s.Landmarks)),
		Handedness: s.Handedness,
	}
	copy(h.Points, s.Landmarks)
	for _, p := range s.Landmarks {
		if p.X > pixelCutoff || p.Y > pixelCutoff {
			h.Pixel = true
			break
		}
	}
	return h, true
}

// Message is the relay wire format. Single-hand senders fill Skeleton;
// multi-hand senders fill Hands.
type Message struct {
	Type      string     `json:"type,omitempty"`
	RoomID    string     `json:"roomId"`
	SenderID  string     `json:"senderId,omitempty"`
	Timestamp int64      `json:"timestamp,omitempty"`
	Skeleton  *Skeleton  `json:"skeleton,omitempty"`
	Hands     []Skeleton `json:"hands,omitempty"`
}

// Landmarks returns every usable hand in the message.
func (m *Message) Landmarks() []detector.HandLandmarks {
	var out []detector.HandLandmarks
	if h, ok := m.Skeleton.Hand(); ok {
		out = append(out, h)
	}
	for i := range m.Hands {
		if h, ok := m.Hands[i].Hand(); ok {
			out = append(out, h)
		}
	}
	return out
}

// NewMessage wraps hands for sending to room.
func NewMessage(room, sender string, hands []detector.HandLandmarks) Message {
	m := Message{
		Type:      MessageType,
		RoomID:    room,
		SenderID:  sender,
		Timestamp: time.Now().UnixMilli(),
	}
	if len(hands) == 0 {
		m.Skeleton = &Skeleton{Clear: true}
		return m
	}
	for _, h := range hands {
		m.Hands = append(m.Hands, Skeleton{Landmarks: h.Points, Handedness: h.Handedness})
	}
	return m
}

// Latest is the body of the latest-landmarks endpoint. Data is nil when
// the room has never received a skeleton.
type Latest struct {
	RoomID string      `json:"room_id"`
	Data   *LatestData `json:"data"`
}

// LatestData is the cached state of one room.
type LatestData struct {
	Skeleton  *Skeleton  `json:"skeleton,omitempty"`
	Hands     []Skeleton `json:"hands,omitempty"`
	UpdatedAt int64      `json:"updatedAt"`
	SenderID  string     `json:"senderId,omitempty"`
}
