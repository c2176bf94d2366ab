package propagation

import (
	"math"
	"sync"

	"wban-jamming-sim/internal/mobility"
	"wban-jamming-sim/internal/tissue"
)

// attenuationConstant is 520.8*pi, the dB-per-metre factor of the slab law
// alpha = 520.8*pi*sigma/sqrt(eps_r).
const attenuationConstant = 520.8 * math.Pi

// SlabLossDb returns the attenuation of one dielectric slab.
func SlabLossDb(conductivity, permittivity, thickness, layers float64) float64 {
	return attenuationConstant * conductivity / math.Sqrt(permittivity) * thickness * layers
}

// Losses breaks the body loss down per tissue layer.
type Losses struct {
	OrganDb  float64 `json:"organ_db"`
	MuscleDb float64 `json:"muscle_db"`
	FatDb    float64 `json:"fat_db"`
	SkinDb   float64 `json:"skin_db"`
}

// TotalDb is the plain sum of the four layers.
func (l Losses) TotalDb() float64 {
	return l.OrganDb + l.SkinDb + l.FatDb + l.MuscleDb
}

// AttenuationModel adds the tissue loss of the active profile to links that touch an
// in-body endpoint. With no in-body endpoint registered every link is attenuated.
//
// Muscle and fat layer counts are the product of the profile's built-in count and the
// model override, so an override of 2 on a two-layer stack yields four layers.
type AttenuationModel struct {
	mu           sync.RWMutex
	organ        tissue.Organ
	profile      tissue.Profile
	fatLayers    uint32
	muscleLayers uint32
	inBody       map[mobility.Handle]struct{}
}

// NewAttenuationModel creates a model for organ with both layer overrides at 1.
func NewAttenuationModel(organ tissue.Organ) *AttenuationModel {
	m := &AttenuationModel{
		fatLayers:    1,
		muscleLayers: 1,
		inBody:       make(map[mobility.Handle]struct{}),
	}
	m.SetOrgan(organ)
	return m
}

// SetOrgan selects the active profile.
func (m *AttenuationModel) SetOrgan(organ tissue.Organ) {
	p := tissue.Lookup(organ)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.organ = organ
	m.profile = p
}

// Organ returns the active catalog key.
func (m *AttenuationModel) Organ() tissue.Organ {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.organ
}

// Profile returns the active profile.
func (m *AttenuationModel) Profile() tissue.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile
}

// SetFatLayers sets the fat layer override. Zero is treated as 1.
func (m *AttenuationModel) SetFatLayers(n uint32) {
	if n == 0 {
		n = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fatLayers = n
}

// FatLayers returns the fat layer override.
func (m *AttenuationModel) FatLayers() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fatLayers
}

// SetMuscleLayers sets the muscle layer override. Zero is treated as 1.
func (m *AttenuationModel) SetMuscleLayers(n uint32) {
	if n == 0 {
		n = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muscleLayers = n
}

// MuscleLayers returns the muscle layer override.
func (m *AttenuationModel) MuscleLayers() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.muscleLayers
}

// RegisterInBody marks h as located inside the body and switches the model to
// selective attenuation.
func (m *AttenuationModel) RegisterInBody(h mobility.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inBody[h] = struct{}{}
}

// ClearInBody forgets every in-body endpoint; the loss applies to all links again.
func (m *AttenuationModel) ClearInBody() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inBody = make(map[mobility.Handle]struct{})
}

// Selective reports whether at least one in-body endpoint is registered.
func (m *AttenuationModel) Selective() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.inBody) > 0
}

// Applies reports whether the body loss is added to the link a-b.
func (m *AttenuationModel) Applies(a, b mobility.Handle) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.inBody) == 0 {
		return true
	}
	_, okA := m.inBody[a]
	_, okB := m.inBody[b]
	return okA || okB
}

// LayerLosses evaluates the slab law for every layer of p using the model overrides.
func (m *AttenuationModel) LayerLosses(p tissue.Profile) Losses {
	m.mu.RLock()
	fat, muscle := float64(m.fatLayers), float64(m.muscleLayers)
	m.mu.RUnlock()

	return Losses{
		OrganDb:  SlabLossDb(p.OrganConductivity, p.OrganPermittivity, p.OrganThickness, 1),
		MuscleDb: SlabLossDb(p.MuscleConductivity, p.MusclePermittivity, p.MuscleThickness, p.MuscleLayers*muscle),
		FatDb:    SlabLossDb(p.FatConductivity, p.FatPermittivity, p.FatThickness, p.FatLayers*fat),
		SkinDb:   SlabLossDb(p.SkinConductivity, p.SkinPermittivity, p.SkinThickness, 1),
	}
}

// AdditionalLoss returns the body loss in dB of the link a-b for profile p, or zero
// when the link does not touch an in-body endpoint.
func (m *AttenuationModel) AdditionalLoss(p tissue.Profile, a, b mobility.Handle) float64 {
	if !m.Applies(a, b) {
		return 0
	}
	return m.LayerLosses(p).TotalDb()
}

// RxPower implements LossModel with the active profile.
func (m *AttenuationModel) RxPower(txPowerDbm float64, a, b mobility.Handle) float64 {
	return txPowerDbm - m.AdditionalLoss(m.Profile(), a, b)
}
