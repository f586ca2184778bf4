package tactical

import (
	"github.com/industry-digital/flux-engine/internal/game/combat"
	"github.com/industry-digital/flux-engine/internal/game/intent"
)

// Tactic is the planner-level goal derived from the weapon class.
type Tactic int

const (
	// TacticCloseCombat closes to melee reach and trades blows.
	TacticCloseCombat Tactic = iota
	// TacticControlDistance holds a 2 m gap, the reach weapon's sweet spot.
	TacticControlDistance
	// TacticKiteEnemy keeps the enemy outside its own reach while shooting.
	TacticKiteEnemy
)

// String returns "CLOSE_COMBAT", "CONTROL_DISTANCE", or "KITE_ENEMY".
func (t Tactic) String() string {
	switch t {
	case TacticCloseCombat:
		return "CLOSE_COMBAT"
	case TacticControlDistance:
		return "CONTROL_DISTANCE"
	default:
		return "KITE_ENEMY"
	}
}

// TacticFor maps a weapon class to its tactic.
func TacticFor(class combat.WeaponClass) Tactic {
	switch class {
	case combat.WeaponMelee:
		return TacticCloseCombat
	case combat.WeaponReach:
		return TacticControlDistance
	default:
		return TacticKiteEnemy
	}
}

// Weights are the scoring coefficients of one heuristic profile.
type Weights struct {
	Hit          float64 `yaml:"hit"`
	Damage       float64 `yaml:"damage"`
	APEfficiency float64 `yaml:"ap_efficiency"`
	Positioning  float64 `yaml:"positioning"`
	Safety       float64 `yaml:"safety"`
	Targeting    float64 `yaml:"targeting"`
}

// Profile is a pure, deterministic scoring function for hypothetical
// actions in a given situation.
type Profile struct {
	Tactic  Tactic
	Weights Weights
	// PreferredGap is the distance in meters the tactic steers toward.
	PreferredGap int
}

// controlDistanceGap is the gap a reach profile maintains.
const controlDistanceGap = 2

// ProfileFor builds the profile for a weapon class using the given weights.
// The preferred gap is 1 m for melee, 2 m for reach, and the weapon's
// optimal range for kiting.
func ProfileFor(class combat.WeaponClass, weaponOptimal int, ws WeightSet) Profile {
	switch class {
	case combat.WeaponMelee:
		return Profile{Tactic: TacticCloseCombat, Weights: ws.Melee, PreferredGap: 1}
	case combat.WeaponReach:
		return Profile{Tactic: TacticControlDistance, Weights: ws.Reach, PreferredGap: controlDistanceGap}
	default:
		gap := weaponOptimal
		if gap < 1 {
			gap = 1
		}
		return Profile{Tactic: TacticKiteEnemy, Weights: ws.Ranged, PreferredGap: gap}
	}
}

// Candidate is one hypothetical action together with its simulated effect.
type Candidate struct {
	Action intent.Action
	APCost float64
	// DistanceBefore and DistanceAfter bracket the simulated gap to the enemy.
	DistanceBefore int
	DistanceAfter  int
	// AcquiresTarget marks a target action taken while untargeted.
	AcquiresTarget bool
}

// Score rates a candidate in the given situation. Higher is better. The
// function is pure: identical inputs always produce identical scores.
func (p Profile) Score(sit Situation, c Candidate) float64 {
	var score float64

	switch c.Action.Command {
	case intent.CommandAttack, intent.CommandCleave:
		expected := sit.ExpectedDamage * sit.HitChance
		score += p.Weights.Hit * sit.HitChance * 10
		score += p.Weights.Damage * expected
		if c.APCost > 0 {
			score += p.Weights.APEfficiency * expected / c.APCost
		}

	case intent.CommandDefend:
		// A defensive stand is worth more the deeper the actor sits inside
		// the enemy's reach.
		exposure := float64(-(c.DistanceBefore - sit.EnemyWeaponRange))
		if exposure < 0 {
			exposure = 0
		}
		score += p.Weights.Safety * (1 + exposure*0.5)

	case intent.CommandTarget:
		if c.AcquiresTarget {
			score += p.Weights.Targeting * 5
		}

	case intent.CommandAdvance, intent.CommandRetreat:
		gapBefore := absInt(c.DistanceBefore - p.PreferredGap)
		gapAfter := absInt(c.DistanceAfter - p.PreferredGap)
		gain := float64(gapBefore - gapAfter)
		score += p.Weights.Positioning * gain
		if c.APCost > 0 && gain > 0 {
			score += p.Weights.APEfficiency * gain / c.APCost * 0.5
		}

		safetyBefore := c.DistanceBefore - sit.EnemyWeaponRange
		safetyAfter := c.DistanceAfter - sit.EnemyWeaponRange
		score += p.Weights.Safety * float64(safetyAfter-safetyBefore)
	}

	return score
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
