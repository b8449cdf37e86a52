// Package mc holds the simulation truth of an event.
package mc

import "math"

// TrackRef is the position of a simulated particle where it crossed a
// detector boundary.
type TrackRef struct {
	X, Y, Z float64
}

// LocalX is the radial position of the reference point.
func (r TrackRef) LocalX() float64 {
	return math.Hypot(r.X, r.Y)
}

type Particle struct {
	PDG             int
	Primary         bool
	PhysicalPrimary bool

	// Refs are ordered by radial position.
	Refs []TrackRef
}

// Event is the truth store of one event. Particles are indexed by label.
type Event struct {
	Particles []*Particle
}

func (e *Event) NumberOfTracks() int {
	if e == nil {
		return 0
	}
	return len(e.Particles)
}

// Track returns the particle with the given label.
func (e *Event) Track(label int) (*Particle, bool) {
	if e == nil || label < 0 || label >= len(e.Particles) || e.Particles[label] == nil {
		return nil, false
	}
	return e.Particles[label], true
}

func (e *Event) IsPhysicalPrimary(label int) bool {
	p, ok := e.Track(label)
	return ok && p.PhysicalPrimary
}
