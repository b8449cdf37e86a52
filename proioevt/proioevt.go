// Package proioevt turns proio events written with the EIC data model into
// the reconstructed, friend and truth inputs of the info generator.
package proioevt

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/proio-org/go-proio"
	"github.com/proio-org/go-proio-pb/model/eic"

	"github.com/decibelcooper/infogen"
	"github.com/decibelcooper/infogen/esd"
	"github.com/decibelcooper/infogen/mc"
)

type Options struct {
	RunNumber     int32   `toml:"run_number"`
	EventSpecie   uint32  `toml:"event_specie"`
	MagneticField float64 `toml:"magnetic_field"`

	ReconstructedTag string `toml:"reconstructed_tag"`
	TrackerTag       string `toml:"tracker_tag"`
	ParticleTag      string `toml:"particle_tag"`
	PrimaryTag       string `toml:"primary_tag"`

	// NSlices is the number of dE/dx slices per TRD layer.
	NSlices int `toml:"n_slices"`
	// LabelPurity is the fraction of a track's hits the majority particle
	// must own for a positive label.
	LabelPurity float64 `toml:"label_purity"`
	// MaxV0Mass bounds the massless invariant mass of opposite-charge pairs
	// kept as V0 candidates.
	MaxV0Mass float64 `toml:"max_v0_mass"`
}

func DefaultOptions() Options {
	return Options{
		EventSpecie:      0x2,
		MagneticField:    0.5,
		ReconstructedTag: "Reconstructed",
		TrackerTag:       "Tracker",
		ParticleTag:      "Particle",
		PrimaryTag:       "GenStable",
		NSlices:          3,
		LabelPurity:      0.9,
		MaxV0Mass:        1.2,
	}
}

func (o Options) Validate() error {
	switch {
	case o.ReconstructedTag == "":
		return fmt.Errorf("input.reconstructed_tag is required")
	case o.NSlices < 1:
		return fmt.Errorf("input.n_slices must be at least 1")
	case o.LabelPurity < 0 || o.LabelPurity > 1:
		return fmt.Errorf("input.label_purity must be within [0, 1]")
	}
	return nil
}

// Converter builds generator inputs from proio events.
type Converter struct {
	opts Options
	geo  infogen.Geometry
}

func NewConverter(opts Options, geo infogen.Geometry) *Converter {
	return &Converter{opts: opts, geo: geo}
}

// mmPerCm converts EIC model positions, stored in mm, to the cm of the
// detector geometry.
const mmPerCm = 10

type cluster struct {
	pos  [3]float64
	r    float64
	edep float64
}

// Convert builds the input of the entry-th event of a file. Truth is never
// nil: an event without particles gives an empty truth store.
func (c *Converter) Convert(event *proio.Event, entry int) infogen.Input {
	truth, labels := c.truth(event)

	ev := &esd.Event{
		Header: esd.Header{
			RunNumber:      c.opts.RunNumber,
			EventNumber:    entry,
			EventType:      esd.PhysicsEvent,
			EventSpecie:    c.opts.EventSpecie,
			TriggerClasses: strings.Fields(string(event.Metadata["Trigger"])),
		},
		MagneticField: c.opts.MagneticField,
		Vertex:        parseVertex(event.Metadata["Vertex"]),
	}
	friend := &esd.Friend{}

	var charges []int32
	for _, id := range event.TaggedEntries(c.opts.ReconstructedTag) {
		track, ok := event.GetEntry(id).(*eic.Track)
		if !ok {
			continue
		}

		trk, ft, charge := c.track(event, track, len(ev.Tracks), labels, len(truth.Particles))
		ev.Tracks = append(ev.Tracks, trk)
		friend.Tracks = append(friend.Tracks, ft)
		charges = append(charges, charge)
	}
	ev.V0s = c.v0s(ev.Tracks, charges)

	return infogen.Input{Entry: entry, Event: ev, Friend: friend, Truth: truth}
}

// truth indexes the particles of the event by id and collects the SimHits
// reached through tracker energy deposits as reference points.
func (c *Converter) truth(event *proio.Event) (*mc.Event, map[uint64]int) {
	primary := make(map[uint64]bool)
	for _, id := range event.TaggedEntries(c.opts.PrimaryTag) {
		primary[id] = true
	}
	var ids []uint64
	seen := make(map[uint64]bool)
	for _, tag := range []string{c.opts.ParticleTag, c.opts.PrimaryTag} {
		for _, id := range event.TaggedEntries(tag) {
			if seen[id] {
				continue
			}
			seen[id] = true
			if _, ok := event.GetEntry(id).(*eic.Particle); ok {
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	truth := &mc.Event{Particles: make([]*mc.Particle, len(ids))}
	labels := make(map[uint64]int, len(ids))
	for i, id := range ids {
		part := event.GetEntry(id).(*eic.Particle)
		labels[id] = i
		truth.Particles[i] = &mc.Particle{
			PDG:             int(part.GetPdg()),
			Primary:         primary[id],
			PhysicalPrimary: primary[id] && part.GetCharge() != 0,
		}
	}

	hits := make(map[uint64]bool)
	for _, obsID := range event.TaggedEntries(c.opts.TrackerTag) {
		eDep, ok := event.GetEntry(obsID).(*eic.EnergyDep)
		if !ok {
			continue
		}
		for _, sourceID := range eDep.Source {
			if hits[sourceID] {
				continue
			}
			simHit, ok := event.GetEntry(sourceID).(*eic.SimHit)
			if !ok {
				continue
			}
			hits[sourceID] = true

			label, ok := labels[simHit.GetParticle()]
			if !ok {
				continue
			}
			pos := simHit.GetGlobalprepos()
			p := truth.Particles[label]
			p.Refs = append(p.Refs, mc.TrackRef{X: pos.GetX() / mmPerCm, Y: pos.GetY() / mmPerCm, Z: pos.GetZ() / mmPerCm})
		}
	}
	for _, p := range truth.Particles {
		sort.SliceStable(p.Refs, func(i, j int) bool { return p.Refs[i].LocalX() < p.Refs[j].LocalX() })
	}
	return truth, labels
}

// rawTrack is what a reconstructed proio track contributes before it is
// laid out as an esd.Track.
type rawTrack struct {
	clusters []cluster
	// votes counts the SimHits of each particle id behind the track.
	votes map[uint64]uint64
	// poq holds the momentum over charge of every segment, inner first.
	poq    [][3]float64
	charge int32
}

func (c *Converter) track(event *proio.Event, track *eic.Track, itrk int, labels map[uint64]int, nTruth int) (esd.Track, *esd.FriendTrack, int32) {
	raw := rawTrack{votes: make(map[uint64]uint64)}
	for _, obsID := range track.Observation {
		eDep, ok := event.GetEntry(obsID).(*eic.EnergyDep)
		if !ok {
			continue
		}
		if pos := eDep.GetPos(); len(pos) > 0 {
			mean := pos[0].GetMean()
			x, y, z := mean.GetX()/mmPerCm, mean.GetY()/mmPerCm, mean.GetZ()/mmPerCm
			raw.clusters = append(raw.clusters, cluster{
				pos:  [3]float64{x, y, z},
				r:    math.Hypot(x, y),
				edep: float64(eDep.GetMean()),
			})
		}

		for _, sourceID := range eDep.Source {
			simHit, ok := event.GetEntry(sourceID).(*eic.SimHit)
			if !ok {
				continue
			}
			raw.votes[simHit.GetParticle()]++
		}
	}
	for _, seg := range track.Segment {
		poq := seg.GetPoq()
		raw.poq = append(raw.poq, [3]float64{poq.GetX(), poq.GetY(), poq.GetZ()})
	}
	if len(track.Segment) > 0 {
		raw.charge = int32(track.Segment[0].GetChargesign())
	}

	trk, ft := c.buildTrack(raw, itrk, voteLabel(raw.votes, labels, nTruth, c.opts.LabelPurity))
	return trk, ft, raw.charge
}

// voteLabel returns the label of the particle owning most hits of a track.
// The label is negated when that particle owns less than purity of the hits
// and is nTruth, past the last particle, when no hit has a known particle.
// Negation cannot mark label 0: a low-purity track of the first particle
// keeps label 0, as with the fake labels of the reconstruction this feeds.
func voteLabel(votes map[uint64]uint64, labels map[uint64]int, nTruth int, purity float64) int {
	var partID, hitCount, nHits uint64
	for id, count := range votes {
		nHits += count
		if count > hitCount || (count == hitCount && id < partID) {
			partID = id
			hitCount = count
		}
	}
	label, ok := labels[partID]
	if !ok || hitCount == 0 {
		return nTruth
	}
	if float64(hitCount)/float64(nHits) < purity {
		return -label
	}
	return label
}

// buildTrack lays a raw track out as an esd.Track and its friend. Clusters
// are counted per detector by radius; TRD clusters are binned into layers
// of equal depth and each layer into NSlices slices of deposited energy.
func (c *Converter) buildTrack(raw rawTrack, itrk, label int) (esd.Track, *esd.FriendTrack) {
	trk := esd.Track{ID: itrk, Label: label}
	geo := c.geo

	q := math.Abs(float64(raw.charge))
	if q == 0 {
		q = 1
	}
	if len(raw.poq) > 0 {
		poq := raw.poq[0]
		trk.P = [3]float64{poq[0] * q, poq[1] * q, poq[2] * q}
	}
	if len(raw.poq) > 1 {
		trk.KinkIndex = 1
	}

	trd := &esd.TRDTrack{}
	for il := range trk.Slices {
		trk.Slices[il] = make([]float64, c.opts.NSlices)
	}
	var outer *cluster
	layerWidth := (geo.TRD - geo.TPC) / esd.NLayer
	for i := range raw.clusters {
		cl := &raw.clusters[i]
		switch {
		case cl.r < geo.ITS:
			trk.Ncls[esd.ITS]++
		case cl.r < geo.TPC:
			trk.Ncls[esd.TPC]++
		case cl.r < geo.TRD:
			trk.Ncls[esd.TRD]++
			depth := cl.r - geo.TPC
			il := min(int(depth/layerWidth), esd.NLayer-1)
			is := min(int((depth-float64(il)*layerWidth)/layerWidth*float64(c.opts.NSlices)), c.opts.NSlices-1)
			trk.Slices[il][is] += cl.edep
			if trd.Tracklets[il] == nil {
				trd.Tracklets[il] = &esd.Tracklet{Layer: il}
			}
			trd.Tracklets[il].Clusters = append(trd.Tracklets[il].Clusters, &esd.Cluster{
				X: cl.pos[0], Y: cl.pos[1], Z: cl.pos[2], Q: cl.edep, Used: true,
			})
		default:
			continue
		}
		if outer == nil || cl.r > outer.r {
			outer = cl
		}
	}

	if trk.Ncls[esd.ITS] > 0 {
		trk.Status |= esd.ITSin | esd.ITSout | esd.ITSrefit
	}
	if trk.Ncls[esd.TPC] > 0 {
		trk.Status |= esd.TPCin | esd.TPCout | esd.TPCrefit
	}
	if trk.Ncls[esd.TRD] > 0 {
		trk.Status |= esd.TRDout
		if trk.Ncls[esd.TPC] > 0 {
			trk.Status |= esd.TRDin | esd.TRDrefit
		}
	}

	pMag := norm(trk.P)
	for il, tracklet := range trd.Tracklets {
		if tracklet != nil {
			trk.Momentum[il] = pMag
			trk.TRDPIDQuality++
		}
	}
	if trk.TRDPIDQuality > 0 {
		trk.Status |= esd.TRDpid
		for is := range trk.TRDPID {
			trk.TRDPID[is] = 1. / esd.NSpecies
		}
	}

	if outer != nil {
		op := &esd.OuterParam{X: outer.pos[0], Y: outer.pos[1], Z: outer.pos[2], Alpha: math.Atan2(outer.pos[1], outer.pos[0])}
		if n := len(raw.poq); n > 0 {
			last := raw.poq[n-1]
			op.Px, op.Py, op.Pz = last[0]*q, last[1]*q, last[2]*q
		}
		trk.Outer = op
	}

	ft := &esd.FriendTrack{CalibObjects: []esd.CalibObject{&esd.TPCSeed{NClusters: trk.Ncls[esd.TPC]}}}
	if trk.Ncls[esd.TRD] > 0 {
		ft.CalibObjects = append(ft.CalibObjects, trd)
	}
	return trk, ft
}

// v0s pairs opposite-charge tracks whose massless invariant mass is below
// the configured ceiling.
func (c *Converter) v0s(tracks []esd.Track, charges []int32) []esd.V0 {
	var v0s []esd.V0
	for i := 0; i < len(tracks); i++ {
		for j := i + 1; j < len(tracks); j++ {
			if charges[i]*charges[j] >= 0 {
				continue
			}
			pos, neg := i, j
			if charges[i] < 0 {
				pos, neg = j, i
			}
			pp, np := tracks[pos].P, tracks[neg].P
			p := [3]float64{pp[0] + np[0], pp[1] + np[1], pp[2] + np[2]}
			p2 := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
			e := norm(pp) + norm(np)
			if m2 := e*e - p2; m2 < 0 || math.Sqrt(m2) > c.opts.MaxV0Mass {
				continue
			}
			v0s = append(v0s, esd.V0{
				PIndex: pos, NIndex: neg,
				P: p, PP: pp, NP: np,
				CosPointing: 1,
			})
		}
	}
	return v0s
}

func norm(p [3]float64) float64 {
	return math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
}

// parseVertex reads "x y z n" metadata. Missing or malformed metadata gives
// a vertex without contributors.
func parseVertex(raw []byte) esd.Vertex {
	fields := strings.Fields(string(raw))
	if len(fields) != 4 {
		return esd.Vertex{}
	}
	var xyz [3]float64
	for i := range xyz {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return esd.Vertex{}
		}
		xyz[i] = v
	}
	n, err := strconv.Atoi(fields[3])
	if err != nil {
		return esd.Vertex{}
	}
	return esd.Vertex{X: xyz[0], Y: xyz[1], Z: xyz[2], NContributors: n}
}
