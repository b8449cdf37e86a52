package infogen

import (
	"go.uber.org/zap"

	"github.com/decibelcooper/infogen/mc"
	"github.com/decibelcooper/infogen/stats"
)

// minSATrackRefs is the number of TRD reference points above which an
// unreconstructed track starting outside the TPC counts as stand-alone.
const minSATrackRefs = 6

// recoverTruth builds records for the truth tracks crossing the TRD that no
// reconstructed track was matched to. They are routed by where the
// trajectory starts.
func (g *Generator) recoverTruth(truth *mc.Event, out *Output, log *zap.Logger) {
	geo := g.opts.Geometry
	c := &out.Counts

	for itk := range g.registry.Unmatched() {
		p, ok := truth.Track(itk)
		if !ok {
			log.Warn("MC particle missing", zap.Int("label", itk))
			continue
		}
		rec := g.work
		rec.Reset()
		rec.MC = true
		rec.PDG = p.PDG

		nRefsTRD := 0
		for _, ref := range p.Refs {
			if x := ref.LocalX(); x > geo.TPC && x < geo.TRD {
				rec.AddTrackRef(ref)
				nRefsTRD++
			}
		}
		if nRefsTRD == 0 {
			continue
		}
		rec.Primary = p.Primary
		rec.Label = itk
		g.trace(rec)
		log.Debug("MC track", zap.Int("label", itk), zap.Int("nTRDrefs", nRefsTRD))

		switch x0 := p.Refs[0].LocalX(); {
		case x0 < geo.ITS:
			out.Barrel = append(out.Barrel, rec.Clone())
			c[stats.BarrelMC]++
		case x0 < geo.TPC:
			out.Kink = append(out.Kink, rec.Clone())
			c[stats.KinkMC]++
		case nRefsTRD > minSATrackRefs:
			out.SA = append(out.SA, rec.Clone())
			c[stats.SAMC]++
		}
	}
}
