package scenario

import "wban-jamming-sim/internal/config"

func f(v float64) *float64 { return &v }

// BuiltIn returns predefined plans selectable by name from the batch command.
func BuiltIn() map[string]Plan {
	return map[string]Plan{
		"organ-survey": {
			Name:        "Organ survey",
			Description: "Receiver sweep from 0.1 m to 2 m for every 402 MHz implant profile with the jammer parked 43 m away.",
			Sweeps: []Sweep{
				{Name: "heart-402", Organ: "heart-402", Axis: "rx"},
				{Name: "kidney-402", Organ: "kidney-402", Axis: "rx"},
				{Name: "small-intestine-402", Organ: "small-intestine-402", Axis: "rx"},
				{Name: "fat-402", Organ: "fat-402", Axis: "rx"},
				{Name: "skin-402", Organ: "skin-402", Axis: "rx"},
			},
		},
		"jammer-standoff": {
			Name:        "Jammer standoff",
			Description: "Walk the jammer away from a heart implant link until the transmitter gets through again.",
			Sweeps: []Sweep{
				{Name: "standoff-heart", Organ: "heart-402", Axis: "jam", Start: f(1), Stop: f(30), Step: f(1)},
				{Name: "standoff-heart-thick", Organ: "heart-402", Axis: "jam", Start: f(1), Stop: f(30), Step: f(1), FatLayers: 2, MuscleLayers: 2},
			},
		},
		"near-field": {
			Name:        "Near field",
			Description: "Jammer adjacent to the body at 0.5 m while the receiver moves outwards.",
			Sweeps: []Sweep{
				{Name: "near-field-heart", Organ: "heart-402", Axis: "rx", Jam: &config.Point{X: 0.5}},
			},
		},
	}
}
