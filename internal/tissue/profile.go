// Dielectric tissue profiles for body-area attenuation
package tissue

import "fmt"

// Organ selects one organ/frequency tissue stack from the catalog.
type Organ int

// The catalog order is fixed; Organ values index it directly.
const (
	SmallIntestine2400 Organ = iota
	SmallIntestine916_5
	Fat2400
	Fat402
	Skin2400
	Skin863
	Skin402
	LargeIntestine2400
	SmallIntestine402
	Heart2400
	Kidney2400
	Heart402
	Kidney402

	organCount
)

// Profile holds the dielectric constants of one tissue stack. Conductivity is in S/m,
// thickness in metres, permittivity is relative. Layer counts are the stack's built-in
// number of muscle and fat layers.
type Profile struct {
	OrganConductivity  float64 `json:"organ_conductivity"`
	OrganPermittivity  float64 `json:"organ_permittivity"`
	OrganThickness     float64 `json:"organ_thickness"`
	MuscleConductivity float64 `json:"muscle_conductivity"`
	MusclePermittivity float64 `json:"muscle_permittivity"`
	MuscleThickness    float64 `json:"muscle_thickness"`
	MuscleLayers       float64 `json:"muscle_layers"`
	FatConductivity    float64 `json:"fat_conductivity"`
	FatPermittivity    float64 `json:"fat_permittivity"`
	FatThickness       float64 `json:"fat_thickness"`
	FatLayers          float64 `json:"fat_layers"`
	SkinConductivity   float64 `json:"skin_conductivity"`
	SkinPermittivity   float64 `json:"skin_permittivity"`
	SkinThickness      float64 `json:"skin_thickness"`
	// Frequency is GHz for the 2.4 entries and MHz for the rest.
	Frequency float64 `json:"frequency"`
}

var catalog = [organCount]Profile{
	SmallIntestine2400: {
		OrganConductivity: 3.1335, OrganPermittivity: 54.527, OrganThickness: 0.01,
		MuscleConductivity: 1.705, MusclePermittivity: 52.791, MuscleThickness: 0.012, MuscleLayers: 1,
		FatConductivity: 0.10235, FatPermittivity: 5.2853, FatThickness: 0.046, FatLayers: 1,
		SkinConductivity: 1.4407, SkinPermittivity: 38.063, SkinThickness: 0.0013,
		Frequency: 2.4,
	},
	SmallIntestine916_5: {
		OrganConductivity: 2.1738, OrganPermittivity: 59.379, OrganThickness: 0.01,
		MuscleConductivity: 0.94861, MusclePermittivity: 54.994, MuscleThickness: 0.012, MuscleLayers: 1,
		FatConductivity: 0.051438, FatPermittivity: 5.4594, FatThickness: 0.046, FatLayers: 1,
		SkinConductivity: 0.87219, SkinPermittivity: 41.322, SkinThickness: 0.0013,
		Frequency: 916.5,
	},
	Fat2400: {
		OrganConductivity: 1, OrganPermittivity: 1, OrganThickness: 0,
		MuscleConductivity: 1, MusclePermittivity: 1, MuscleThickness: 0, MuscleLayers: 0,
		FatConductivity: 0.10235, FatPermittivity: 5.2853, FatThickness: 0.046, FatLayers: 2,
		SkinConductivity: 1.4407, SkinPermittivity: 38.063, SkinThickness: 0.0013,
		Frequency: 2.4,
	},
	Fat402: {
		OrganConductivity: 1, OrganPermittivity: 1, OrganThickness: 0,
		MuscleConductivity: 1, MusclePermittivity: 1, MuscleThickness: 0, MuscleLayers: 0,
		FatConductivity: 0.041151, FatPermittivity: 5.5789, FatThickness: 0.046, FatLayers: 2,
		SkinConductivity: 0.68892, SkinPermittivity: 46.741, SkinThickness: 0.0013,
		Frequency: 402,
	},
	Skin2400: {
		OrganConductivity: 1, OrganPermittivity: 1, OrganThickness: 0,
		MuscleConductivity: 1, MusclePermittivity: 1, MuscleThickness: 0, MuscleLayers: 0,
		FatConductivity: 1, FatPermittivity: 1, FatThickness: 0, FatLayers: 0,
		SkinConductivity: 1.4407, SkinPermittivity: 38.063, SkinThickness: 0.0013,
		Frequency: 2.4,
	},
	Skin863: {
		OrganConductivity: 1, OrganPermittivity: 1, OrganThickness: 0,
		MuscleConductivity: 1, MusclePermittivity: 1, MuscleThickness: 0, MuscleLayers: 0,
		FatConductivity: 1, FatPermittivity: 1, FatThickness: 0, FatLayers: 0,
		SkinConductivity: 0.85451, SkinPermittivity: 41.603, SkinThickness: 0.0013,
		Frequency: 863,
	},
	Skin402: {
		OrganConductivity: 1, OrganPermittivity: 1, OrganThickness: 0,
		MuscleConductivity: 1, MusclePermittivity: 1, MuscleThickness: 0, MuscleLayers: 0,
		FatConductivity: 1, FatPermittivity: 1, FatThickness: 0, FatLayers: 0,
		SkinConductivity: 0.68892, SkinPermittivity: 46.741, SkinThickness: 0.0013,
		Frequency: 402,
	},
	LargeIntestine2400: {
		OrganConductivity: 1.3739, OrganPermittivity: 51.877, OrganThickness: 0.02,
		MuscleConductivity: 1.705, MusclePermittivity: 52.791, MuscleThickness: 0.012, MuscleLayers: 1,
		FatConductivity: 0.10235, FatPermittivity: 5.2853, FatThickness: 0.046, FatLayers: 1,
		SkinConductivity: 1.4407, SkinPermittivity: 38.063, SkinThickness: 0.0013,
		Frequency: 2.4,
	},
	SmallIntestine402: {
		OrganConductivity: 1.9035, OrganPermittivity: 66.086, OrganThickness: 0.01,
		MuscleConductivity: 0.79682, MusclePermittivity: 57.112, MuscleThickness: 0.012, MuscleLayers: 1,
		FatConductivity: 0.041151, FatPermittivity: 5.5789, FatThickness: 0.046, FatLayers: 1,
		SkinConductivity: 0.68892, SkinPermittivity: 46.741, SkinThickness: 0.0013,
		Frequency: 402,
	},
	Heart2400: {
		OrganConductivity: 2.2159, OrganPermittivity: 54.918, OrganThickness: 0.015,
		MuscleConductivity: 1.705, MusclePermittivity: 52.791, MuscleThickness: 0.012, MuscleLayers: 1,
		FatConductivity: 0.10235, FatPermittivity: 5.2853, FatThickness: 0.046, FatLayers: 1,
		SkinConductivity: 1.4407, SkinPermittivity: 38.063, SkinThickness: 0.0013,
		Frequency: 2.4,
	},
	Kidney2400: {
		OrganConductivity: 2.3901, OrganPermittivity: 52.856, OrganThickness: 0.01,
		MuscleConductivity: 1.705, MusclePermittivity: 52.791, MuscleThickness: 0.012, MuscleLayers: 1,
		FatConductivity: 0.10235, FatPermittivity: 5.2853, FatThickness: 0.046, FatLayers: 1,
		SkinConductivity: 1.4407, SkinPermittivity: 38.063, SkinThickness: 0.0013,
		Frequency: 2.4,
	},
	Heart402: {
		OrganConductivity: 0.96577, OrganPermittivity: 66.049, OrganThickness: 0.015,
		MuscleConductivity: 0.79682, MusclePermittivity: 57.112, MuscleThickness: 0.012, MuscleLayers: 1,
		FatConductivity: 0.041151, FatPermittivity: 5.5789, FatThickness: 0.046, FatLayers: 1,
		SkinConductivity: 0.68892, SkinPermittivity: 46.741, SkinThickness: 0.0013,
		Frequency: 402,
	},
	Kidney402: {
		OrganConductivity: 1.0958, OrganPermittivity: 66.361, OrganThickness: 0.01,
		MuscleConductivity: 0.79682, MusclePermittivity: 57.112, MuscleThickness: 0.012, MuscleLayers: 1,
		FatConductivity: 0.041151, FatPermittivity: 5.5789, FatThickness: 0.046, FatLayers: 1,
		SkinConductivity: 0.68892, SkinPermittivity: 46.741, SkinThickness: 0.0013,
		Frequency: 402,
	},
}

// Lookup returns the profile for o. An organ outside the catalog is a programming
// error and panics.
func Lookup(o Organ) Profile {
	if !o.Valid() {
		panic(fmt.Sprintf("tissue: organ %d outside catalog", int(o)))
	}
	return catalog[o]
}

// Organs lists every catalog entry in index order.
func Organs() []Organ {
	out := make([]Organ, 0, organCount)
	for o := Organ(0); o < organCount; o++ {
		out = append(out, o)
	}
	return out
}

// Valid reports whether o is a catalog entry.
func (o Organ) Valid() bool {
	return o >= 0 && o < organCount
}
