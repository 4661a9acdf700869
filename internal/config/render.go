package config

import "sync"

// RenderSettings holds the live render distance a host may change at runtime.
type RenderSettings struct {
	mu             sync.RWMutex
	renderDistance int // in chunks
	maxDistance    int
}

// NewRenderSettings creates settings starting at distance, never exceeding maxDistance.
func NewRenderSettings(distance, maxDistance int) *RenderSettings {
	s := &RenderSettings{maxDistance: clamp(maxDistance, MinRenderDistance, MaxRenderDistance)}
	s.SetRenderDistance(distance)
	return s
}

// RenderDistance returns the current render distance in chunks.
func (s *RenderSettings) RenderDistance() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.renderDistance
}

// SetRenderDistance sets the render distance and returns the clamped value.
func (s *RenderSettings) SetRenderDistance(distance int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderDistance = clamp(distance, MinRenderDistance, s.maxDistance)
	return s.renderDistance
}

// Adjust changes the render distance by delta and returns the new value.
func (s *RenderSettings) Adjust(delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderDistance = clamp(s.renderDistance+delta, MinRenderDistance, s.maxDistance)
	return s.renderDistance
}

