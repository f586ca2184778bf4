package combat

import "github.com/industry-digital/flux-engine/internal/game/dice"

// Modifier is one entry in an integer-valued ledger (energy, balance).
type Modifier struct {
	ID     string
	Reason string
	Delta  int
}

// IntPool is a current/max pair.
type IntPool struct {
	Cur int
	Max int
}

// EnergyTrack holds a combatant's energy reserves in joules.
// Position is the stance ordinal affecting recovery; 0 is standing.
type EnergyTrack struct {
	Position int
	Nat      IntPool
	Eff      IntPool
	Mods     []Modifier
}

// Deduct removes amount joules from the effective pool, flooring at zero.
func (t *EnergyTrack) Deduct(amount int) {
	t.Eff.Cur -= amount
	if t.Eff.Cur < 0 {
		t.Eff.Cur = 0
	}
}

// BalanceTrack holds a combatant's physical balance rating.
type BalanceTrack struct {
	Nat  int
	Eff  int
	Mods []Modifier
}

// Combatant is the per-actor combat state owned by the session.
// Actor records (HP, equipment, location) stay owned by the world.
type Combatant struct {
	ActorID  string
	Team     string
	Position Position
	AP       APTrack
	Energy   EnergyTrack
	Balance  BalanceTrack
	// Target is the actor id of the current target, or "".
	Target     string
	Initiative dice.RollResult
	// DidInitiateCombat is set on exactly one combatant per session.
	DidInitiateCombat bool
	// Defending grants a defense bonus until the combatant's next turn.
	Defending bool
}

// CanAct reports whether the combatant has any AP left this turn.
//
// Postcondition: returns CleanAP(AP.EffCur) > 0.
func (c *Combatant) CanAct() bool {
	return CleanAP(c.AP.EffCur) > 0
}

// Clone returns a deep copy for callers simulating hypothetical state.
func (c *Combatant) Clone() *Combatant {
	cp := *c
	cp.AP.Mods = append([]APModifier(nil), c.AP.Mods...)
	cp.Energy.Mods = append([]Modifier(nil), c.Energy.Mods...)
	cp.Balance.Mods = append([]Modifier(nil), c.Balance.Mods...)
	cp.Initiative.Values = append([]int(nil), c.Initiative.Values...)
	cp.Initiative.Modifiers = append([]dice.RollModifier(nil), c.Initiative.Modifiers...)
	return &cp
}
