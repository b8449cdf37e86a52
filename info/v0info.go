package info

import (
	"github.com/decibelcooper/infogen/esd"
)

// Particle species in PID vectors.
const (
	Electron = iota
	Muon
	Pion
	Kaon
	Proton
)

// Masses in GeV, indexed by species.
var Masses = [esd.NSpecies]float64{
	Electron: 0.000510999,
	Muon:     0.1056584,
	Pion:     0.1395702,
	Kaon:     0.493677,
	Proton:   0.9382720,
}

// NoTrack marks a V0 leg that could not be resolved.
const NoTrack = -1

// V0Info describes a paired-track candidate together with the PID
// hypothesis of its legs.
type V0Info struct {
	MagField float64

	PTrackID, NTrackID int

	P           [3]float64
	PP, NP      [3]float64
	Radius      float64
	DCA         float64
	CosPointing float64

	// Decay is the accepted decay hypothesis, empty when none.
	Decay  string
	PIDPos [esd.NSpecies]int
	PIDNeg [esd.NSpecies]int
}

// NewV0Info returns a descriptor with unresolved legs and no hypothesis.
func NewV0Info() *V0Info {
	return &V0Info{PTrackID: NoTrack, NTrackID: NoTrack}
}

// SetV0Tracks resolves the two legs. Nil tracks leave the leg unresolved.
func (v *V0Info) SetV0Tracks(p, n *esd.Track) {
	v.PTrackID, v.NTrackID = NoTrack, NoTrack
	if p != nil {
		v.PTrackID = p.ID
	}
	if n != nil {
		v.NTrackID = n.ID
	}
}

// SetV0Info copies the kinematics and topology of the candidate.
func (v *V0Info) SetV0Info(v0 *esd.V0) {
	v.P = v0.P
	v.PP, v.NP = v0.PP, v0.NP
	v.Radius = v0.Radius
	v.DCA = v0.DCA
	v.CosPointing = v0.CosPointing
}

// HasTracks reports whether at least one leg is resolved.
func (v *V0Info) HasTracks() bool {
	return v.PTrackID != NoTrack || v.NTrackID != NoTrack
}

func (v *V0Info) HasTrack(id int) bool {
	if id == NoTrack {
		return false
	}
	return v.PTrackID == id || v.NTrackID == id
}

// PID returns the hypothesis for species is on the leg matching track id.
func (v *V0Info) PID(is, id int) int {
	switch {
	case is < 0 || is >= esd.NSpecies:
		return 0
	case id != NoTrack && id == v.PTrackID:
		return v.PIDPos[is]
	case id != NoTrack && id == v.NTrackID:
		return v.PIDNeg[is]
	}
	return 0
}

// Clone returns an independent copy of v.
func (v *V0Info) Clone() *V0Info {
	c := *v
	return &c
}
