// Package info defines the records the info generator hands to downstream
// tasks: one TrackInfo per selected track, one V0Info per paired-track
// candidate and one EventInfo per event.
package info

import (
	"go.uber.org/zap/zapcore"

	"github.com/decibelcooper/infogen/esd"
	"github.com/decibelcooper/infogen/mc"
)

// TrackInfo merges the reconstruction, truth and friend information of a
// single track.
type TrackInfo struct {
	Status  esd.Status
	TrackID int
	Label   int
	PDG     int
	Primary bool
	MC      bool
	V0      bool

	ESDPID        [esd.NSpecies]float64
	ESDPIDQuality int
	V0PID         [esd.NSpecies]int

	// Slices holds NLayer*nSlices dE/dx slices followed by NLayer momenta.
	Slices []float64

	NclsRefit int
	TPCNcls   int
	KinkIndex int

	Outer *esd.OuterParam
	Refs  []mc.TrackRef
	Track *esd.TRDTrack
}

// New returns an empty record. Track id and label are -1 until filled.
func New() *TrackInfo {
	t := &TrackInfo{}
	t.Reset()
	return t
}

// Reset clears every field of t while keeping the capacity of its buffers.
func (t *TrackInfo) Reset() {
	slices, refs := t.Slices[:0], t.Refs[:0]
	*t = TrackInfo{
		TrackID: -1,
		Label:   -1,
		PDG:     -1,
		Slices:  slices,
		Refs:    refs,
	}
}

// Clone returns a deep copy of t sharing no memory with it.
func (t *TrackInfo) Clone() *TrackInfo {
	c := *t
	c.Slices = append([]float64(nil), t.Slices...)
	c.Refs = append([]mc.TrackRef(nil), t.Refs...)
	if t.Outer != nil {
		op := *t.Outer
		c.Outer = &op
	}
	c.Track = t.Track.Clone()
	return &c
}

func (t *TrackInfo) SetSlices(s []float64) {
	t.Slices = append(t.Slices[:0], s...)
}

func (t *TrackInfo) AddTrackRef(ref mc.TrackRef) {
	t.Refs = append(t.Refs, ref)
}

func (t *TrackInfo) NTrackRefs() int { return len(t.Refs) }

func (t *TrackInfo) NTracklets() int {
	if t.Track == nil {
		return 0
	}
	return t.Track.NTracklets()
}

// MarshalLogObject writes the record to the debug stream.
func (t *TrackInfo) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint64("status", uint64(t.Status))
	enc.AddInt("trackID", t.TrackID)
	enc.AddInt("label", t.Label)
	enc.AddBool("mc", t.MC)
	if t.MC {
		enc.AddInt("pdg", t.PDG)
		enc.AddBool("primary", t.Primary)
	}
	enc.AddBool("v0", t.V0)
	enc.AddInt("kink", t.KinkIndex)
	enc.AddInt("nclsRefit", t.NclsRefit)
	enc.AddInt("nclsTPC", t.TPCNcls)
	enc.AddInt("nTracklets", t.NTracklets())
	if err := enc.AddArray("esdPID", floats(t.ESDPID[:])); err != nil {
		return err
	}
	if err := enc.AddArray("slices", floats(t.Slices)); err != nil {
		return err
	}
	if t.Outer != nil {
		enc.AddFloat64("outerX", t.Outer.LocalX())
	}
	return enc.AddArray("refs", zapcore.ArrayMarshalerFunc(func(ae zapcore.ArrayEncoder) error {
		for _, r := range t.Refs {
			ae.AppendFloat64(r.LocalX())
		}
		return nil
	}))
}

type floats []float64

func (f floats) MarshalLogArray(ae zapcore.ArrayEncoder) error {
	for _, v := range f {
		ae.AppendFloat64(v)
	}
	return nil
}
