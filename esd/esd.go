// Package esd holds the reconstructed event model consumed by the info
// generator: tracks with their status bits, paired-track (V0) candidates,
// the primary vertex and the run/event header.
package esd

import (
	"math"
)

// Status is the reconstruction status bitset of a track.
type Status uint64

const (
	ITSin    Status = 0x1
	ITSout   Status = 0x2
	ITSrefit Status = 0x4
	TPCin    Status = 0x10
	TPCout   Status = 0x20
	TPCrefit Status = 0x40
	TRDin    Status = 0x100
	TRDout   Status = 0x200
	TRDrefit Status = 0x400
	TRDpid   Status = 0x800
)

// Has reports whether all bits of flag are set.
func (s Status) Has(flag Status) bool { return s&flag == flag }

// Number of TRD layers and particle species.
const (
	NLayer   = 6
	NSpecies = 5
)

// Detector indices for per-detector cluster counts.
const (
	ITS = iota
	TPC
	TRD
	nDetectors
)

// PhysicsEvent is the event type of collision data.
const PhysicsEvent uint32 = 7

// OuterParam is the track parametrisation at the outer boundary of the
// tracking volume.
type OuterParam struct {
	X, Y, Z    float64
	Px, Py, Pz float64
	Alpha      float64
}

// LocalX is the radial position of the parametrisation.
func (p OuterParam) LocalX() float64 {
	return math.Hypot(p.X, p.Y)
}

type Track struct {
	ID        int
	Label     int
	Status    Status
	KinkIndex int

	P [3]float64

	// ImpactXY and ImpactZ are the distances of closest approach to the
	// primary vertex.
	ImpactXY, ImpactZ float64

	TRDPID        [NSpecies]float64
	TRDPIDQuality int

	// Slices holds the dE/dx slices of each TRD layer.
	Slices   [NLayer][]float64
	Momentum [NLayer]float64

	Ncls [nDetectors]int

	Outer *OuterParam
}

func (t *Track) Pt() float64 {
	return math.Hypot(t.P[0], t.P[1])
}

func (t *Track) Eta() float64 {
	p := math.Sqrt(t.P[0]*t.P[0] + t.P[1]*t.P[1] + t.P[2]*t.P[2])
	if p == 0 {
		return 0
	}
	return math.Atanh(t.P[2] / p)
}

// NSlices returns the number of dE/dx slices reported for the first layer.
func (t *Track) NSlices() int {
	return len(t.Slices[0])
}

// Slice returns slice is of layer il, or zero when the track does not carry it.
func (t *Track) Slice(il, is int) float64 {
	if il < 0 || il >= NLayer || is < 0 || is >= len(t.Slices[il]) {
		return 0
	}
	return t.Slices[il][is]
}

// V0 is a reconstructed paired-track candidate.
type V0 struct {
	PIndex, NIndex int

	P [3]float64
	// PP and NP are the momenta of the positive and negative legs at the
	// decay vertex.
	PP, NP [3]float64

	Radius      float64
	DCA         float64
	CosPointing float64
}

type Vertex struct {
	X, Y, Z       float64
	NContributors int
}

type Header struct {
	RunNumber      int32
	EventNumber    int
	EventType      uint32
	EventSpecie    uint32
	TriggerClasses []string
}

// Event is one reconstructed collision event.
type Event struct {
	Header        Header
	MagneticField float64
	Vertex        Vertex

	Tracks []Track
	V0s    []V0

	fired map[string]bool
}

func (e *Event) NumberOfTracks() int { return len(e.Tracks) }

// Track returns track i or nil when i is out of range.
func (e *Event) Track(i int) *Track {
	if i < 0 || i >= len(e.Tracks) {
		return nil
	}
	return &e.Tracks[i]
}

func (e *Event) NumberOfV0s() int { return len(e.V0s) }

func (e *Event) V0(i int) *V0 {
	if i < 0 || i >= len(e.V0s) {
		return nil
	}
	return &e.V0s[i]
}

// IsTriggerClassFired reports whether class is among the fired trigger
// classes of the event header.
func (e *Event) IsTriggerClassFired(class string) bool {
	if e.fired == nil {
		e.fired = make(map[string]bool, len(e.Header.TriggerClasses))
		for _, c := range e.Header.TriggerClasses {
			e.fired[c] = true
		}
	}
	return e.fired[class]
}
