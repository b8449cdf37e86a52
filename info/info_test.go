package info

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/decibelcooper/infogen/esd"
	"github.com/decibelcooper/infogen/mc"
)

func filled() *TrackInfo {
	trd := &esd.TRDTrack{}
	trd.Tracklets[2] = &esd.Tracklet{Layer: 2, Clusters: []*esd.Cluster{{X: 310, Q: 3}}}

	t := New()
	t.Status = esd.TPCout | esd.TRDout
	t.TrackID = 4
	t.Label = -12
	t.PDG = 2212
	t.MC = true
	t.V0PID[Proton] = 1
	t.SetSlices([]float64{1, 2, 3})
	t.AddTrackRef(mc.TrackRef{X: 300})
	t.AddTrackRef(mc.TrackRef{X: 330})
	t.Outer = &esd.OuterParam{X: 290}
	t.Track = trd
	return t
}

func TestNewAndReset(t *testing.T) {
	rec := New()
	assert.Equal(t, -1, rec.TrackID)
	assert.Equal(t, -1, rec.Label)
	assert.Equal(t, -1, rec.PDG)
	assert.Zero(t, rec.NTracklets())

	rec = filled()
	slices := rec.Slices
	rec.Reset()
	if diff := cmp.Diff(New(), rec, cmp.Comparer(func(a, b []float64) bool { return len(a) == len(b) }), cmp.Comparer(func(a, b []mc.TrackRef) bool { return len(a) == len(b) })); diff != "" {
		t.Errorf("reset record (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, cap(rec.Slices))
	rec.SetSlices([]float64{7})
	assert.Equal(t, 7.0, slices[0])
}

func TestCloneSharesNothing(t *testing.T) {
	orig := filled()
	c := orig.Clone()
	if diff := cmp.Diff(orig, c); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	c.Slices[0] = -1
	c.Refs[0].X = -1
	c.Outer.X = -1
	c.Track.Tracklets[2].Clusters[0].Q = -1
	c.V0PID[Proton] = 0

	assert.Equal(t, 1.0, orig.Slices[0])
	assert.Equal(t, 300.0, orig.Refs[0].X)
	assert.Equal(t, 290.0, orig.Outer.X)
	assert.Equal(t, 3.0, orig.Track.Tracklets[2].Clusters[0].Q)
	assert.Equal(t, 1, orig.V0PID[Proton])

	orig.Reset()
	orig.SetSlices([]float64{9, 9, 9})
	assert.Equal(t, []float64{-1, 2, 3}, c.Slices)
}

func TestMarshalLogObject(t *testing.T) {
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, filled().MarshalLogObject(enc))

	assert.Equal(t, 4, enc.Fields["trackID"])
	assert.Equal(t, -12, enc.Fields["label"])
	assert.Equal(t, 2212, enc.Fields["pdg"])
	assert.Equal(t, 1, enc.Fields["nTracklets"])
	assert.Equal(t, []interface{}{1.0, 2.0, 3.0}, enc.Fields["slices"])
	assert.Equal(t, []interface{}{300.0, 330.0}, enc.Fields["refs"])
	assert.Equal(t, 290.0, enc.Fields["outerX"])

	enc = zapcore.NewMapObjectEncoder()
	require.NoError(t, New().MarshalLogObject(enc))
	assert.NotContains(t, enc.Fields, "pdg")
	assert.NotContains(t, enc.Fields, "outerX")
}

func TestV0Info(t *testing.T) {
	v := NewV0Info()
	assert.False(t, v.HasTracks())
	assert.False(t, v.HasTrack(NoTrack))

	v.SetV0Tracks(&esd.Track{ID: 3}, nil)
	assert.True(t, v.HasTracks())
	assert.True(t, v.HasTrack(3))
	assert.Equal(t, NoTrack, v.NTrackID)

	v.SetV0Tracks(&esd.Track{ID: 3}, &esd.Track{ID: 8})
	v.PIDPos[Pion] = 1
	v.PIDNeg[Electron] = 1
	assert.Equal(t, 1, v.PID(Pion, 3))
	assert.Equal(t, 0, v.PID(Electron, 3))
	assert.Equal(t, 1, v.PID(Electron, 8))
	assert.Equal(t, 0, v.PID(Electron, 5))
	assert.Equal(t, 0, v.PID(esd.NSpecies, 3))
	assert.Equal(t, 0, v.PID(-1, 3))

	v.SetV0Info(&esd.V0{P: [3]float64{1, 2, 3}, Radius: 12, DCA: 0.1, CosPointing: 0.999})
	c := v.Clone()
	c.PIDPos[Pion] = 0
	c.Radius = 0
	assert.Equal(t, 1, v.PIDPos[Pion])
	assert.Equal(t, 12.0, v.Radius)
	assert.Equal(t, [3]float64{1, 2, 3}, v.P)
}

func TestNewEventInfo(t *testing.T) {
	ev := &esd.Event{
		Header: esd.Header{RunNumber: 7, EventNumber: 3, EventType: esd.PhysicsEvent, TriggerClasses: []string{"CINT7-B"}},
		Vertex: esd.Vertex{Z: 2, NContributors: 5},
	}
	ei := NewEventInfo(ev)
	ev.Header.TriggerClasses[0] = "changed"

	assert.Equal(t, int32(7), ei.RunNumber)
	assert.Equal(t, 3, ei.EventNumber)
	assert.Equal(t, []string{"CINT7-B"}, ei.TriggerClasses)
	assert.Equal(t, ev.Vertex, ei.Vertex)
}
