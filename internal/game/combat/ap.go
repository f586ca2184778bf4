package combat

import "math"

// TurnDurationAP is the action point budget per turn, in seconds.
const TurnDurationAP = 6.0

// AllRemainingAP is the sentinel meaning "consume the combatant's entire
// remaining AP". Callers replace the sentinel before deducting.
const AllRemainingAP = -1.0

// apEpsilon is the tolerance for floating drift when validating amounts.
const apEpsilon = 0.001

// CleanAP normalizes an AP value to the 0.1 grid, absorbing float drift.
//
// Postcondition: return value is a multiple of 0.1 within float precision.
func CleanAP(x float64) float64 {
	return math.Round(x*10) / 10
}

// RoundUpAP rounds an AP value up to the next 0.1 step.
//
// Postcondition: return value >= x and is a multiple of 0.1.
func RoundUpAP(x float64) float64 {
	return math.Ceil(x*10-1e-9) / 10
}

// APModifier is one entry in an AP ledger.
type APModifier struct {
	ID     string
	Reason string
	Delta  float64
}

// APTrack holds a combatant's natural and effective action point pools.
//
// Invariant: EffCur is in [0, EffMax] and is a multiple of 0.1 after cleaning.
type APTrack struct {
	NatCur float64
	NatMax float64
	EffCur float64
	EffMax float64
	Mods   []APModifier
}

// NewAPTrack creates a track with both pools filled to max.
//
// Precondition: max > 0 and a multiple of 0.1.
func NewAPTrack(max float64) APTrack {
	max = CleanAP(max)
	return APTrack{NatCur: max, NatMax: max, EffCur: max, EffMax: max}
}

// Deduct removes amount AP from the effective pool.
//
// Fails with PrecisionViolation when amount is not on the 0.1 grid within
// 0.001, and with InsufficientAp when clean(amount) exceeds clean(EffCur).
//
// Postcondition: on success EffCur == CleanAP(old EffCur - amount) >= 0;
// on error the track is unchanged.
func (t *APTrack) Deduct(amount float64, trace string) error {
	if math.Abs(amount-CleanAP(amount)) > apEpsilon {
		return NewError(CodePrecisionViolation, trace,
			"ap amount %v is not a multiple of 0.1", amount)
	}
	cleaned := CleanAP(amount)
	cur := CleanAP(t.EffCur)
	if cleaned > cur {
		return NewError(CodeInsufficientAP, trace,
			"need %.1f ap, have %.1f", cleaned, cur)
	}
	t.EffCur = CleanAP(cur - cleaned)
	return nil
}

// Reset refills the effective pool to its maximum.
func (t *APTrack) Reset() {
	t.EffCur = t.EffMax
}

// Remaining returns the cleaned effective AP.
func (t *APTrack) Remaining() float64 {
	return CleanAP(t.EffCur)
}
