// Package tactical derives battlefield situations and searches short action
// sequences for AI-controlled combatants.
package tactical

import (
	"github.com/industry-digital/flux-engine/internal/game/actor"
	"github.com/industry-digital/flux-engine/internal/game/combat"
	"github.com/industry-digital/flux-engine/internal/game/dice"
)

// Situation is the tactical snapshot one planning call works from.
type Situation struct {
	ActorID string
	EnemyID string

	ActorPos int
	EnemyPos int
	// SignedDistance is EnemyPos - ActorPos; negative when the enemy is to
	// the left.
	SignedDistance int
	// Distance is the absolute gap in meters.
	Distance int

	WeaponClass   combat.WeaponClass
	WeaponOptimal int
	WeaponRange   int
	WeaponAPCost  float64
	// ExpectedDamage is the mean of the weapon damage expression.
	ExpectedDamage float64
	// HitChance estimates the probability of a strike landing.
	HitChance float64

	EnemyWeaponRange int
	InOptimalBand    bool
	// Safety is Distance minus the enemy's weapon reach; positive means the
	// actor stands outside it.
	Safety           int
	ObstaclesBetween int

	RemainingAP float64
	// Speed is the actor's walking speed in meters per second, for
	// converting AP into ground covered.
	Speed float64
}

// Analyze builds the TacticalSituation for actorID against its primary
// enemy: the current target when it is a viable opponent, otherwise the
// nearest viable opponent.
//
// Precondition: actorID must be in the session.
// Postcondition: returns ValidationFailure when no viable enemy exists.
func Analyze(s *combat.Session, actorID string) (Situation, error) {
	c, ok := s.Combatant(actorID)
	if !ok {
		return Situation{}, combat.NewError(combat.CodeUnknownActor, "", "actor %s not in session", actorID)
	}

	enemy := primaryEnemy(s, c)
	if enemy == nil {
		return Situation{}, combat.NewError(combat.CodeValidationFailure, "", "no viable enemy for %s", actorID)
	}

	schema, class := s.WeaponFor(actorID)
	enemySchema, _ := s.WeaponFor(enemy.ActorID)

	a, ok := s.Actor(actorID)
	if !ok {
		return Situation{}, combat.NewError(combat.CodeUnknownActor, "", "actor %s not found", actorID)
	}
	enemyActor, ok := s.Actor(enemy.ActorID)
	if !ok {
		return Situation{}, combat.NewError(combat.CodeUnknownActor, "", "actor %s not found", enemy.ActorID)
	}

	signed := enemy.Position.Coordinate - c.Position.Coordinate
	distance := signed
	if distance < 0 {
		distance = -distance
	}

	weaponRange := combat.MaxEffectiveRange(schema)
	enemyRange := combat.MaxEffectiveRange(enemySchema)

	return Situation{
		ActorID:          actorID,
		EnemyID:          enemy.ActorID,
		ActorPos:         c.Position.Coordinate,
		EnemyPos:         enemy.Position.Coordinate,
		SignedDistance:   signed,
		Distance:         distance,
		WeaponClass:      class,
		WeaponOptimal:    schema.Range.Optimal,
		WeaponRange:      weaponRange,
		WeaponAPCost:     combat.WeaponAPCost(schema.Timers.Attack, a.SkillRank(schema.Skill), s.MaxSkillRank()),
		ExpectedDamage:   expectedDamage(schema.Damage),
		HitChance:        hitChance(a, enemyActor, schema),
		EnemyWeaponRange: enemyRange,
		InOptimalBand:    distance >= schema.Range.Min && distance <= weaponRange,
		Safety:           distance - enemyRange,
		ObstaclesBetween: s.Battlefield.ObstaclesBetween(c.Position.Coordinate, enemy.Position.Coordinate),
		RemainingAP:      c.AP.Remaining(),
		Speed:            c.Position.Speed,
	}, nil
}

// primaryEnemy picks the combatant's target when it is a viable opponent,
// falling back to the nearest viable opponent. Equidistant opponents break
// ties by actor id for determinism.
func primaryEnemy(s *combat.Session, c *combat.Combatant) *combat.Combatant {
	if c.Target != "" {
		if t, ok := s.Combatant(c.Target); ok && t.Team != c.Team && s.Viable(t.ActorID) {
			return t
		}
	}
	var best *combat.Combatant
	bestDist := 0
	for _, other := range s.Combatants() {
		if other.Team == c.Team || !s.Viable(other.ActorID) {
			continue
		}
		d := other.Position.Coordinate - c.Position.Coordinate
		if d < 0 {
			d = -d
		}
		if best == nil || d < bestDist || (d == bestDist && other.ActorID < best.ActorID) {
			best, bestDist = other, d
		}
	}
	return best
}

// expectedDamage returns the mean roll of a damage expression, or 0 when
// the expression does not parse.
func expectedDamage(expr string) float64 {
	e, err := dice.Parse(expr)
	if err != nil {
		return 0
	}
	return float64(e.Count)*(float64(e.Sides)+1)/2 + float64(e.Modifier)
}

// hitChance estimates the probability of 1d20 plus bonuses meeting the
// defense threshold, clamped into [0.05, 0.95].
func hitChance(attacker, defender *actor.Actor, schema *actor.WeaponSchema) float64 {
	bonus := schema.Accuracy + attacker.SkillRank(schema.Skill)/10
	threshold := 10 + actor.StatBonus(defender.Stats.Fin)
	needed := threshold - bonus
	p := (21 - float64(needed)) / 20
	if p < 0.05 {
		p = 0.05
	}
	if p > 0.95 {
		p = 0.95
	}
	return p
}
