package infogen

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/decibelcooper/infogen/esd"
	"github.com/decibelcooper/infogen/mc"
	"github.com/decibelcooper/infogen/stats"
)

// TrackError is a recoverable problem with one track: its truth linkage is
// broken and the track is skipped.
type TrackError struct {
	Event int
	Track int
	Label int
	Err   error
}

func (e *TrackError) Error() string {
	return fmt.Sprintf("Ev[%d] Trk[%d] label[%d]: %v", e.Event, e.Track, e.Label, e.Err)
}

func (e *TrackError) Unwrap() error { return e.Err }

var ErrMissingParticle = errors.New("MC particle missing")

// classifyTracks builds a record for every reconstructed track, in index
// order, and routes it to the barrel, stand-alone or kink collection.
func (g *Generator) classifyTracks(in Input, truth *mc.Event, out *Output, log *zap.Logger) {
	ev := in.Event
	geo := g.opts.Geometry
	c := &out.Counts
	nSlices := 0

	for itrk := 0; itrk < ev.NumberOfTracks(); itrk++ {
		trk := ev.Track(itrk)
		rec := g.work
		rec.Reset()
		log.Debug("track",
			zap.Int("trk", itrk),
			zap.Int("ITS", trk.Ncls[esd.ITS]), zap.Int("TPC", trk.Ncls[esd.TPC]), zap.Int("TRD", trk.Ncls[esd.TRD]))

		status := trk.Status
		if status.Has(esd.TPCout) {
			c[stats.TPC]++
		}
		if status.Has(esd.TRDout) {
			c[stats.TRDout]++
		}
		if status.Has(esd.TRDin) {
			c[stats.TRDin]++
		}

		alab := -1
		if truth != nil {
			label := trk.Label
			alab = abs(label)
			if err := g.registry.Mark(alab); err != nil {
				g.trackError(out, log, ev, itrk, label, err)
				continue
			}
			p, ok := truth.Track(alab)
			if !ok {
				g.trackError(out, log, ev, itrk, label, ErrMissingParticle)
				continue
			}
			rec.MC = true
			rec.PDG = p.PDG
			rec.Primary = p.Primary
			rec.Label = label

			iref := 0
			for iref < len(p.Refs) && p.Refs[iref].LocalX() <= geo.TPC {
				iref++
			}
			for jref := iref; jref < len(p.Refs); jref++ {
				if p.Refs[jref].LocalX() > geo.TRD {
					break
				}
				rec.AddTrackRef(p.Refs[jref])
			}
			log.Debug("track refs", zap.Int("trk", itrk), zap.Int("n", rec.NTrackRefs()), zap.Int("all", len(p.Refs)))
		}

		rec.Status = status
		rec.TrackID = trk.ID
		rec.ESDPID = trk.TRDPID
		rec.ESDPIDQuality = trk.TRDPIDQuality
		if nSlices == 0 {
			nSlices = trk.NSlices()
		}
		g.dedx = g.dedx[:0]
		for il := 0; il < esd.NLayer; il++ {
			for is := 0; is < nSlices; is++ {
				g.dedx = append(g.dedx, trk.Slice(il, is))
			}
		}
		g.dedx = append(g.dedx, trk.Momentum[:]...)
		rec.SetSlices(g.dedx)
		rec.NclsRefit = trk.Ncls[esd.TRD]
		rec.KinkIndex = trk.KinkIndex
		rec.TPCNcls = trk.Ncls[esd.TPC]

		tagV0(rec, out.V0s)

		if ft := in.Friend.Track(itrk); ft != nil {
			if trd, ok := esd.DetailedTrack(ft); ok {
				for _, tracklet := range trd.Tracklets {
					if tracklet != nil {
						tracklet.ResetClusters()
					}
				}
				rec.Track = trd
			}
		} else {
			log.Debug("no ESD friend", zap.Int("trk", itrk))
		}
		rec.Outer = trk.Outer

		g.trace(rec)

		switch {
		case status.Has(esd.TPCout) && trk.KinkIndex == 0:
			if g.selectTrack(trk, truth, alab, log.With(zap.Int("trk", itrk))) {
				out.Barrel = append(out.Barrel, rec.Clone())
				c[stats.Barrel]++
			}
		case status.Has(esd.TPCout):
			out.Kink = append(out.Kink, rec.Clone())
			c[stats.Kink]++
		case status.Has(esd.TRDout) && !status.Has(esd.TRDin):
			out.SA = append(out.SA, rec.Clone())
			c[stats.SA]++
		}
	}
}

func (g *Generator) trackError(out *Output, log *zap.Logger, ev *esd.Event, itrk, label int, err error) {
	terr := &TrackError{Event: ev.Header.EventNumber, Track: itrk, Label: label, Err: err}
	log.Error("skip track", zap.Error(terr))
	out.Errors = append(out.Errors, terr)
}

// selectTrack applies the barrel track selection. alab is the absolute
// truth label, or -1 without truth.
func (g *Generator) selectTrack(trk *esd.Track, truth *mc.Event, alab int, log *zap.Logger) bool {
	sel := g.opts.TrackSelection
	if sel.Local {
		switch {
		case trk.Pt() < sel.MinPt:
			log.Debug("reject track: pt", zap.Float64("pt", trk.Pt()))
			return false
		case math.Abs(trk.Eta()) > sel.MaxEta:
			log.Debug("reject track: eta", zap.Float64("eta", trk.Eta()))
			return false
		case trk.Ncls[esd.TPC] < sel.MinNclsTPC:
			log.Debug("reject track: TPC clusters", zap.Int("ncls", trk.Ncls[esd.TPC]))
			return false
		}
		if g.opts.Collision {
			if math.Abs(trk.ImpactXY) > sel.MaxDCAxy {
				log.Debug("reject track: DCAxy", zap.Float64("dca", trk.ImpactXY))
				return false
			}
			if math.Abs(trk.ImpactZ) > sel.MaxDCAz {
				log.Debug("reject track: DCAz", zap.Float64("dca", trk.ImpactZ))
				return false
			}
		} else if truth != nil && !truth.IsPhysicalPrimary(alab) {
			log.Debug("reject track: not primary")
			return false
		}
	}
	if g.opts.TrackCut != nil && !g.opts.TrackCut.IsSelected(trk) {
		log.Debug("reject track: track cut")
		return false
	}
	return true
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
