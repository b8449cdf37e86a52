package esd

// Cluster is a TRD cluster attached to a tracklet.
type Cluster struct {
	X, Y, Z float64
	Q       float64
	Used    bool
}

// Tracklet is the track segment reconstructed in one TRD layer.
type Tracklet struct {
	Layer    int
	Clusters []*Cluster
}

// ResetClusters flags every cluster of the tracklet as unused.
func (t *Tracklet) ResetClusters() {
	for _, cl := range t.Clusters {
		cl.Used = false
	}
}

// TRDTrack is the detailed TRD reconstruction of a track, shipped in the
// friend stream.
type TRDTrack struct {
	Tracklets [NLayer]*Tracklet
}

func (t *TRDTrack) calibObject() {}

// NTracklets counts the layers holding a tracklet.
func (t *TRDTrack) NTracklets() int {
	n := 0
	for _, tr := range t.Tracklets {
		if tr != nil {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the track.
func (t *TRDTrack) Clone() *TRDTrack {
	if t == nil {
		return nil
	}
	out := &TRDTrack{}
	for il, tr := range t.Tracklets {
		if tr == nil {
			continue
		}
		c := &Tracklet{Layer: tr.Layer, Clusters: make([]*Cluster, len(tr.Clusters))}
		for i, cl := range tr.Clusters {
			cp := *cl
			c.Clusters[i] = &cp
		}
		out.Tracklets[il] = c
	}
	return out
}

// CalibObject is any calibration object attached to a friend track.
type CalibObject interface {
	calibObject()
}

// TPCSeed is the TPC seed shipped next to the TRD track in the friend
// stream. The generator ignores it.
type TPCSeed struct {
	NClusters int
}

func (s *TPCSeed) calibObject() {}

type FriendTrack struct {
	CalibObjects []CalibObject
}

// DetailedTrack returns the first TRD track among the calibration objects of
// ft.
func DetailedTrack(ft *FriendTrack) (*TRDTrack, bool) {
	if ft == nil {
		return nil, false
	}
	for _, obj := range ft.CalibObjects {
		if trk, ok := obj.(*TRDTrack); ok && trk != nil {
			return trk, true
		}
	}
	return nil, false
}

// Friend is the friend stream of one event, indexed like Event.Tracks.
type Friend struct {
	Tracks []*FriendTrack
}

// Track returns the friend track i or nil.
func (f *Friend) Track(i int) *FriendTrack {
	if f == nil || i < 0 || i >= len(f.Tracks) {
		return nil
	}
	return f.Tracks[i]
}
