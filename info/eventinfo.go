package info

import "github.com/decibelcooper/infogen/esd"

// EventInfo summarises the run and event header for downstream tasks.
type EventInfo struct {
	RunNumber      int32
	EventNumber    int
	EventType      uint32
	EventSpecie    uint32
	TriggerClasses []string
	MagneticField  float64
	Vertex         esd.Vertex

	// NTimeBins and RecoParam come from the run's reconstruction context.
	NTimeBins int
	RecoParam string
}

func NewEventInfo(ev *esd.Event) *EventInfo {
	return &EventInfo{
		RunNumber:      ev.Header.RunNumber,
		EventNumber:    ev.Header.EventNumber,
		EventType:      ev.Header.EventType,
		EventSpecie:    ev.Header.EventSpecie,
		TriggerClasses: append([]string(nil), ev.Header.TriggerClasses...),
		MagneticField:  ev.MagneticField,
		Vertex:         ev.Vertex,
	}
}
