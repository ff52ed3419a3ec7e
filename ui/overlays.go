package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayDebug   OverlayID = "debug"
	OverlayHands   OverlayID = "hands"
	OverlayLattice OverlayID = "lattice"
	OverlayLoop    OverlayID = "loop"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID       OverlayID // Unique identifier
	Name     string    // Display name
	Key      int32     // Keyboard key to toggle (0 = no key)
	KeyLabel string    // Key label for display
	Default  bool      // Enabled at startup
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:       OverlayDebug,
		Name:     "Debug info",
		Key:      rl.KeyD,
		KeyLabel: "D",
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayHands,
		Name:     "Hand skeletons",
		Key:      rl.KeyH,
		KeyLabel: "H",
		Default:  true,
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayLattice,
		Name:     "Lattice",
		Key:      rl.KeyL,
		KeyLabel: "L",
		Default:  true,
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayLoop,
		Name:     "Loop trace",
		Key:      rl.KeyO,
		KeyLabel: "O",
		Default:  true,
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and returns the new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id]
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	if _, ok := r.byID[id]; !ok {
		return
	}
	r.enabled[id] = enabled
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}
