// Package battery owns the single mutable quantity of a simulation run: the
// battery energy content. Charge and Discharge are the only mutation path,
// so the SoC can never leave [0, capacity].
package battery

// State tracks the battery energy content between dispatch intervals.
// It is owned by a single simulation run and must not be shared.
type State struct {
	capacityKWh float64
	socKWh      float64
}

// NewState creates a state store with the given capacity and initial energy
// content. Both are clamped to physically valid values.
func NewState(capacityKWh, initialKWh float64) *State {
	if capacityKWh < 0 {
		capacityKWh = 0
	}
	s := &State{capacityKWh: capacityKWh}
	s.socKWh = clamp(initialKWh, 0, capacityKWh)
	return s
}

// Charge increases the energy content by up to amountKWh and returns the
// energy actually stored. Saturation at full capacity is a normal outcome,
// not an error.
func (s *State) Charge(amountKWh float64) float64 {
	if amountKWh <= 0 {
		return 0
	}
	applied := amountKWh
	if headroom := s.capacityKWh - s.socKWh; applied > headroom {
		applied = headroom
	}
	s.socKWh += applied
	return applied
}

// Discharge decreases the energy content by up to amountKWh and returns the
// energy actually drawn.
func (s *State) Discharge(amountKWh float64) float64 {
	if amountKWh <= 0 {
		return 0
	}
	applied := amountKWh
	if applied > s.socKWh {
		applied = s.socKWh
	}
	s.socKWh -= applied
	return applied
}

// SoC returns the current energy content in kWh.
func (s *State) SoC() float64 { return s.socKWh }

// Capacity returns the capacity in kWh.
func (s *State) Capacity() float64 { return s.capacityKWh }

// Headroom returns the remaining chargeable energy in kWh.
func (s *State) Headroom() float64 { return s.capacityKWh - s.socKWh }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
