// Package detect is the boundary to the external hand-landmark detector.
//
// Detector results arrive on their own goroutine at their own cadence and are
// posted into a single-slot Slot. The render loop reads the slot once per tick.
package detect

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// LandmarksPerHand is the number of landmarks the detector reports per hand.
const LandmarksPerHand = 21

// ErrShortHand reports a hand with fewer landmarks than a feature needs.
var ErrShortHand = errors.New("hand has too few landmarks")

// Landmark is a detected joint in normalised image coordinates ([0, 1]).
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Hand is an ordered, fixed-length list of landmarks.
type Hand []Landmark

// Frame is one detector result. It is never mutated after being stored.
type Frame struct {
	Hands    []Hand
	Received time.Time
}

// NumHands returns the number of hands in the frame; a nil frame has none.
func (f *Frame) NumHands() int {
	if f == nil {
		return 0
	}
	return len(f.Hands)
}

// Sink receives detector results. Implementations must be safe to call from
// a goroutine other than the render loop.
type Sink interface {
	OnDetectionResult(hands []Hand)
}

// Slot holds the most recently delivered frame.
// One writer (the detector), one reader (the render loop), one slot.
type Slot struct {
	latest atomic.Pointer[Frame]
	writes atomic.Uint64
}

// OnDetectionResult stores a new frame, replacing the previous one.
func (s *Slot) OnDetectionResult(hands []Hand) {
	s.Store(&Frame{Hands: hands, Received: time.Now()})
}

// Store replaces the latest frame.
func (s *Slot) Store(f *Frame) {
	s.latest.Store(f)
	s.writes.Add(1)
}

// Load returns the latest frame, or nil if the detector has never fired.
func (s *Slot) Load() *Frame {
	return s.latest.Load()
}

// Writes returns how many frames have been stored.
func (s *Slot) Writes() uint64 {
	return s.writes.Load()
}

// Clear forgets the latest frame.
func (s *Slot) Clear() {
	s.latest.Store(nil)
}

// results mirrors the detector's result payload.
type results struct {
	MultiHandLandmarks []Hand `json:"multiHandLandmarks"`
	DelayMS            int    `json:"delay_ms,omitempty"`
}

// ParseResults decodes one detector result message.
func ParseResults(data []byte) ([]Hand, error) {
	var r results
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding detector results: %w", err)
	}
	return r.MultiHandLandmarks, nil
}

// Landmark returns landmark i, or ErrShortHand if the hand does not have it.
func (h Hand) Landmark(i int) (Landmark, error) {
	if i < 0 || i >= len(h) {
		return Landmark{}, fmt.Errorf("landmark %d of %d: %w", i, len(h), ErrShortHand)
	}
	return h[i], nil
}
