package infogen

import (
	"github.com/decibelcooper/infogen/esd"
	"github.com/decibelcooper/infogen/info"
)

// V0Tagger attaches a decay and PID hypothesis to a V0 descriptor.
type V0Tagger interface {
	Tag(v *info.V0Info)
}

// BuildV0s builds one descriptor per V0 candidate of ev. Every candidate is
// kept; the tagger, when present, only annotates.
func BuildV0s(ev *esd.Event, tagger V0Tagger) []*info.V0Info {
	bField := ev.MagneticField
	v0s := make([]*info.V0Info, 0, ev.NumberOfV0s())
	for iv0 := 0; iv0 < ev.NumberOfV0s(); iv0++ {
		v0 := ev.V0(iv0)
		if v0 == nil {
			continue
		}
		v := info.NewV0Info()
		v.MagField = bField
		v.SetV0Tracks(ev.Track(v0.PIndex), ev.Track(v0.NIndex))
		v.SetV0Info(v0)
		if tagger != nil {
			tagger.Tag(v)
		}
		v0s = append(v0s, v)
	}
	return v0s
}

// tagV0 copies the PID hypothesis of the first V0 holding the track of rec.
func tagV0(rec *info.TrackInfo, v0s []*info.V0Info) {
	for _, v := range v0s {
		if !v.HasTracks() || !v.HasTrack(rec.TrackID) {
			continue
		}
		for is := range rec.V0PID {
			rec.V0PID[is] = v.PID(is, rec.TrackID)
		}
		rec.V0 = true
		return
	}
}
