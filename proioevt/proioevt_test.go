package proioevt

import (
	"math"
	"testing"

	"github.com/proio-org/go-proio"
	"github.com/proio-org/go-proio-pb/model/eic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decibelcooper/infogen"
	"github.com/decibelcooper/infogen/esd"
	"github.com/decibelcooper/infogen/mc"
)

func TestVoteLabel(t *testing.T) {
	labels := map[uint64]int{10: 0, 20: 1, 30: 2}

	tests := []struct {
		name  string
		votes map[uint64]uint64
		want  int
	}{
		{"pure", map[uint64]uint64{20: 8}, 1},
		{"majority above purity", map[uint64]uint64{30: 19, 10: 1}, 2},
		{"majority below purity", map[uint64]uint64{30: 6, 10: 4}, -2},
		{"first particle below purity", map[uint64]uint64{10: 6, 30: 4}, 0},
		{"tie takes lowest id", map[uint64]uint64{30: 5, 20: 5}, -1},
		{"unknown particle", map[uint64]uint64{99: 5}, 3},
		{"no hits", map[uint64]uint64{}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, voteLabel(tt.votes, labels, 3, 0.9))
		})
	}
}

func trdRadius(geo infogen.Geometry, layer int, depth float64) float64 {
	width := (geo.TRD - geo.TPC) / esd.NLayer
	return geo.TPC + (float64(layer)+depth)*width
}

func TestBuildTrackBarrel(t *testing.T) {
	geo := infogen.DefaultGeometry()
	c := NewConverter(DefaultOptions(), geo)

	raw := rawTrack{
		poq:    [][3]float64{{1, 0, 0}},
		charge: -1,
		clusters: []cluster{
			{pos: [3]float64{50, 0, 0}, r: 50},
			{pos: [3]float64{150, 0, 0}, r: 150},
			{pos: [3]float64{200, 0, 0}, r: 200},
			{pos: [3]float64{trdRadius(geo, 0, 0.1), 0, 0}, r: trdRadius(geo, 0, 0.1), edep: 2},
			{pos: [3]float64{trdRadius(geo, 0, 0.9), 0, 0}, r: trdRadius(geo, 0, 0.9), edep: 3},
			{pos: [3]float64{0, trdRadius(geo, 5, 0.5), 0}, r: trdRadius(geo, 5, 0.5), edep: 4},
			{pos: [3]float64{400, 0, 0}, r: 400},
		},
	}
	trk, ft := c.buildTrack(raw, 4, 7)

	assert.Equal(t, 4, trk.ID)
	assert.Equal(t, 7, trk.Label)
	assert.Equal(t, [3]int{1, 2, 3}, trk.Ncls)
	assert.True(t, trk.Status.Has(esd.ITSout|esd.TPCout|esd.TRDin|esd.TRDout|esd.TRDpid))
	assert.Zero(t, trk.KinkIndex)
	assert.Equal(t, [3]float64{1, 0, 0}, trk.P)

	assert.Equal(t, 3, trk.NSlices())
	assert.Equal(t, 2.0, trk.Slice(0, 0))
	assert.Equal(t, 3.0, trk.Slice(0, 2))
	assert.Equal(t, 4.0, trk.Slice(5, 1))
	assert.Equal(t, 1.0, trk.Momentum[0])
	assert.Zero(t, trk.Momentum[1])
	assert.Equal(t, 2, trk.TRDPIDQuality)

	require.NotNil(t, trk.Outer)
	assert.InDelta(t, trdRadius(geo, 5, 0.5), trk.Outer.LocalX(), 1e-9)
	assert.InDelta(t, math.Pi/2, trk.Outer.Alpha, 1e-9)

	require.Len(t, ft.CalibObjects, 2)
	trd, ok := esd.DetailedTrack(ft)
	require.True(t, ok)
	assert.Equal(t, 2, trd.NTracklets())
	require.NotNil(t, trd.Tracklets[0])
	assert.Len(t, trd.Tracklets[0].Clusters, 2)
	assert.True(t, trd.Tracklets[0].Clusters[0].Used)
}

func TestBuildTrackStandalone(t *testing.T) {
	geo := infogen.DefaultGeometry()
	c := NewConverter(DefaultOptions(), geo)

	r := trdRadius(geo, 2, 0.5)
	trk, _ := c.buildTrack(rawTrack{clusters: []cluster{{pos: [3]float64{r, 0, 0}, r: r}}}, 0, 0)

	assert.True(t, trk.Status.Has(esd.TRDout))
	assert.False(t, trk.Status.Has(esd.TRDin))
	assert.False(t, trk.Status.Has(esd.TPCout))
}

func TestBuildTrackKink(t *testing.T) {
	c := NewConverter(DefaultOptions(), infogen.DefaultGeometry())

	raw := rawTrack{
		poq:      [][3]float64{{0.5, 0, 0}, {0.25, 0.25, 0}},
		charge:   2,
		clusters: []cluster{{pos: [3]float64{150, 0, 0}, r: 150}},
	}
	trk, ft := c.buildTrack(raw, 0, 0)

	assert.Equal(t, 1, trk.KinkIndex)
	assert.Equal(t, [3]float64{1, 0, 0}, trk.P)
	require.NotNil(t, trk.Outer)
	assert.Equal(t, 0.5, trk.Outer.Px)
	assert.Equal(t, 0.5, trk.Outer.Py)

	_, ok := esd.DetailedTrack(ft)
	assert.False(t, ok)
}

func TestV0s(t *testing.T) {
	c := NewConverter(DefaultOptions(), infogen.DefaultGeometry())

	tracks := []esd.Track{
		{P: [3]float64{0.3, 0, 0}},
		{P: [3]float64{0.3, 0.01, 0}},
		{P: [3]float64{-5, 0, 0}},
		{P: [3]float64{0, 0.3, 0}},
	}
	v0s := c.v0s(tracks, []int32{1, -1, -1, 1})

	require.Len(t, v0s, 2)
	assert.Equal(t, 0, v0s[0].PIndex)
	assert.Equal(t, 1, v0s[0].NIndex)
	assert.Equal(t, [3]float64{0.6, 0.01, 0}, v0s[0].P)
	assert.Equal(t, 3, v0s[1].PIndex)
	assert.Equal(t, 1, v0s[1].NIndex)
	assert.Equal(t, 1.0, v0s[1].CosPointing)
}

func TestParseVertex(t *testing.T) {
	assert.Equal(t, esd.Vertex{X: 0.1, Y: -0.2, Z: 3.5, NContributors: 12}, parseVertex([]byte("0.1 -0.2 3.5 12")))
	assert.Equal(t, esd.Vertex{}, parseVertex(nil))
	assert.Equal(t, esd.Vertex{}, parseVertex([]byte("0.1 0.2 z 3")))
	assert.Equal(t, esd.Vertex{}, parseVertex([]byte("0.1 0.2 0.3")))
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	opts := DefaultOptions()
	opts.NSlices = 0
	assert.Error(t, opts.Validate())

	opts = DefaultOptions()
	opts.LabelPurity = 1.5
	assert.Error(t, opts.Validate())

	opts = DefaultOptions()
	opts.ReconstructedTag = ""
	assert.Error(t, opts.Validate())
}

func f32(v float32) *float32 { return &v }
func f64(v float64) *float64 { return &v }
func i32(v int32) *int32 { return &v }

// addHit adds a SimHit of particle at (x, y, 0) in mm and the tracker
// energy deposit observing it.
func addHit(event *proio.Event, particle uint64, x, y float64, edep float32) uint64 {
	hit := event.AddEntry("TrackerSim", &eic.SimHit{
		Particle:     &particle,
		Globalprepos: &eic.XYZTD{X: f64(x), Y: f64(y), Z: f64(0)},
	})
	return event.AddEntry("Tracker", &eic.EnergyDep{
		Mean:   f32(edep),
		Pos:    []*eic.ObservedPos{{Mean: &eic.XYZTD{X: f64(x), Y: f64(y), Z: f64(0)}}},
		Source: []uint64{hit},
	})
}

func addTrack(event *proio.Event, charge float32, poq [3]float64, obs ...uint64) {
	event.AddEntry("Reconstructed", &eic.Track{
		Segment: []*eic.TrackSegment{{
			Poq:        &eic.XYZD{X: f64(poq[0]), Y: f64(poq[1]), Z: f64(poq[2])},
			Chargesign: f32(charge),
		}},
		Observation: obs,
	})
}

func localXs(refs []mc.TrackRef) []float64 {
	out := make([]float64, len(refs))
	for i, ref := range refs {
		out[i] = ref.LocalX()
	}
	return out
}

func TestConvert(t *testing.T) {
	event := proio.NewEvent()
	event.Metadata["Trigger"] = []byte("CINT7-B CEMC7-B")
	event.Metadata["Vertex"] = []byte("0.1 0 2.5 14")

	piPlus := event.AddEntry("Particle", &eic.Particle{Pdg: i32(211), Charge: f32(1)})
	event.TagEntry(piPlus, "GenStable")
	piMinus := event.AddEntry("Particle", &eic.Particle{Pdg: i32(-211), Charge: f32(-1)})
	event.TagEntry(piMinus, "GenStable")
	event.AddEntry("GenStable", &eic.Particle{Pdg: i32(22)})
	electron := event.AddEntry("Particle", &eic.Particle{Pdg: i32(11), Charge: f32(-1)})

	addTrack(event, 1, [3]float64{0.3, 0, 0},
		addHit(event, piPlus, 3400, 0, 4),
		addHit(event, piPlus, 500, 0, 1),
		addHit(event, piPlus, 3000, 0, 3),
		addHit(event, piPlus, 1500, 0, 2),
	)
	addTrack(event, -1, [3]float64{0.3, 0.01, 0},
		addHit(event, piMinus, 0, 3000, 3),
		addHit(event, piMinus, 0, 1500, 2),
	)
	addTrack(event, -1, [3]float64{-5, 0, 0},
		addHit(event, electron, 1600, 0, 1),
		addHit(event, electron, 1700, 0, 1),
		addHit(event, piPlus, 1800, 0, 1),
	)

	c := NewConverter(DefaultOptions(), infogen.DefaultGeometry())
	in := c.Convert(event, 5)

	require.NotNil(t, in.Event)
	assert.Equal(t, 5, in.Entry)
	assert.Equal(t, 5, in.Event.Header.EventNumber)
	assert.Equal(t, []string{"CINT7-B", "CEMC7-B"}, in.Event.Header.TriggerClasses)
	assert.Equal(t, esd.Vertex{X: 0.1, Z: 2.5, NContributors: 14}, in.Event.Vertex)

	require.NotNil(t, in.Truth)
	require.Equal(t, 4, in.Truth.NumberOfTracks())
	parts := in.Truth.Particles
	assert.Equal(t, []int{211, -211, 22, 11}, []int{parts[0].PDG, parts[1].PDG, parts[2].PDG, parts[3].PDG})
	assert.True(t, parts[0].PhysicalPrimary)
	assert.True(t, parts[2].Primary)
	assert.False(t, parts[2].PhysicalPrimary)
	assert.False(t, parts[3].Primary)
	assert.Equal(t, []float64{50, 150, 180, 300, 340}, localXs(parts[0].Refs))
	assert.Equal(t, []float64{150, 300}, localXs(parts[1].Refs))
	assert.Empty(t, parts[2].Refs)

	tracks := in.Event.Tracks
	require.Len(t, tracks, 3)
	assert.Equal(t, []int{0, 1, -3}, []int{tracks[0].Label, tracks[1].Label, tracks[2].Label})

	assert.Equal(t, [3]int{1, 1, 2}, tracks[0].Ncls)
	assert.True(t, tracks[0].Status.Has(esd.ITSout|esd.TPCout|esd.TRDin|esd.TRDout|esd.TRDpid))
	require.NotNil(t, tracks[0].Outer)
	assert.Equal(t, 340.0, tracks[0].Outer.LocalX())

	assert.Equal(t, [3]int{0, 1, 1}, tracks[1].Ncls)
	assert.True(t, tracks[1].Status.Has(esd.TPCout|esd.TRDin|esd.TRDout))
	assert.False(t, tracks[1].Status.Has(esd.ITSin))

	assert.Equal(t, [3]int{0, 3, 0}, tracks[2].Ncls)
	assert.True(t, tracks[2].Status.Has(esd.TPCout))
	assert.False(t, tracks[2].Status.Has(esd.TRDout))

	require.NotNil(t, in.Friend)
	require.Len(t, in.Friend.Tracks, 3)
	trd, ok := esd.DetailedTrack(in.Friend.Track(0))
	require.True(t, ok)
	assert.Equal(t, 2, trd.NTracklets())
	_, ok = esd.DetailedTrack(in.Friend.Track(2))
	assert.False(t, ok)

	require.Len(t, in.Event.V0s, 1)
	assert.Equal(t, 0, in.Event.V0s[0].PIndex)
	assert.Equal(t, 1, in.Event.V0s[0].NIndex)
}

func TestConvertPositionsInMillimetres(t *testing.T) {
	event := proio.NewEvent()
	obs := event.AddEntry("Tracker", &eic.EnergyDep{
		Mean: f32(1),
		Pos:  []*eic.ObservedPos{{Mean: &eic.XYZTD{X: f64(1500), Y: f64(0), Z: f64(-200)}}},
	})
	addTrack(event, 1, [3]float64{1, 0, 0}, obs)

	in := NewConverter(DefaultOptions(), infogen.DefaultGeometry()).Convert(event, 0)

	require.Len(t, in.Event.Tracks, 1)
	trk := in.Event.Tracks[0]
	assert.Equal(t, [3]int{0, 1, 0}, trk.Ncls)
	assert.True(t, trk.Status.Has(esd.TPCin|esd.TPCout))
	require.NotNil(t, trk.Outer)
	assert.Equal(t, esd.OuterParam{X: 150, Z: -20, Px: 1}, *trk.Outer)

	require.NotNil(t, in.Truth)
	assert.Zero(t, in.Truth.NumberOfTracks())
	assert.Zero(t, trk.Label)
	assert.Empty(t, in.Event.V0s)
}
