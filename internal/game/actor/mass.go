package actor

// baseBodyMassGrams is the assumed unencumbered body mass.
// Resilience shifts it by 2 kg per point of bonus.
const baseBodyMassGrams = 80000

// ComputeActorMass returns the actor's total moved mass in grams:
// body mass adjusted for resilience, plus all carried gear.
//
// Precondition: a must be non-nil.
// Postcondition: return value > 0.
func ComputeActorMass(a *Actor) int {
	mass := baseBodyMassGrams + StatBonus(a.Stats.Res)*2000
	if w := a.Equipment.Weapon; w != nil {
		mass += w.BaseMass
	}
	for _, item := range a.Equipment.Worn {
		mass += item.Mass
	}
	if mass < 1000 {
		mass = 1000
	}
	return mass
}
