package combat

import (
	"math"

	"github.com/industry-digital/flux-engine/internal/game/actor"
)

// Movement physics constants. Speeds are meters per second, masses grams.
const (
	baseWalkSpeed    = 1.5
	minWalkSpeed     = 0.5
	referenceMass    = 80000
	massSpeedPenalty = 0.2 // speed lost per referenceMass of excess load
	dragCoefficient  = 0.7 // joules per kilogram-meter moved
)

// walkSpeed derives a combatant's walking speed from power, finesse, and
// total moved mass.
//
// Postcondition: return value >= minWalkSpeed.
func walkSpeed(pow, fin, massGrams int) float64 {
	speed := baseWalkSpeed +
		0.1*float64(actor.StatBonus(fin)) +
		0.05*float64(actor.StatBonus(pow))
	if excess := massGrams - referenceMass; excess > 0 {
		speed -= massSpeedPenalty * float64(excess) / float64(referenceMass)
	}
	if speed < minWalkSpeed {
		speed = minWalkSpeed
	}
	return speed
}

// MoveCost is the resolved price of one movement action.
type MoveCost struct {
	Distance int     // meters actually covered
	AP       float64 // seconds, multiple of 0.1
	Energy   int     // joules
}

// MovementCostByDistance derives the AP and energy cost of covering distance
// meters. The AP result is rounded up to the next 0.1.
//
// Precondition: distance >= 0.
func MovementCostByDistance(pow, fin, massGrams, distance int) MoveCost {
	if distance <= 0 {
		return MoveCost{}
	}
	speed := walkSpeed(pow, fin, massGrams)
	return MoveCost{
		Distance: distance,
		AP:       RoundUpAP(float64(distance) / speed),
		Energy:   MovementEnergyCost(pow, fin, distance, massGrams),
	}
}

// MovementCostByAP derives the distance covered by spending ap seconds of
// movement. The AP charge is the given budget rounded up to the next 0.1;
// the distance is floored to whole meters.
//
// Precondition: ap >= 0.
func MovementCostByAP(pow, fin, massGrams int, ap float64) MoveCost {
	if ap <= 0 {
		return MoveCost{}
	}
	charged := RoundUpAP(ap)
	speed := walkSpeed(pow, fin, massGrams)
	distance := int(math.Floor(speed * charged))
	return MoveCost{
		Distance: distance,
		AP:       charged,
		Energy:   MovementEnergyCost(pow, fin, distance, massGrams),
	}
}

// MovementEnergyCost returns the joules spent dragging massGrams over
// distance meters. Finesse improves economy; power reduces strain.
//
// Postcondition: return value >= 0.
func MovementEnergyCost(pow, fin, distance, massGrams int) int {
	if distance <= 0 {
		return 0
	}
	massKg := float64(massGrams) / 1000
	economy := 1.0 - 0.02*float64(actor.StatBonus(fin)) - 0.01*float64(actor.StatBonus(pow))
	if economy < 0.5 {
		economy = 0.5
	}
	joules := massKg * float64(distance) * dragCoefficient * economy
	if joules < 0 {
		return 0
	}
	return int(math.Round(joules))
}

// WeaponAPCost converts a weapon's attack timer into an AP cost. Skill rank
// reduces the cost by up to 50% at maxSkillRank; the result is rounded up
// to the 0.1 grid so it deducts cleanly.
//
// Precondition: attackTimerMs > 0; 0 <= skillRank <= maxSkillRank.
func WeaponAPCost(attackTimerMs, skillRank, maxSkillRank int) float64 {
	if maxSkillRank <= 0 {
		maxSkillRank = 100
	}
	if skillRank < 0 {
		skillRank = 0
	}
	if skillRank > maxSkillRank {
		skillRank = maxSkillRank
	}
	factor := 1.0 - float64(skillRank)/float64(maxSkillRank)*0.5
	return RoundUpAP(float64(attackTimerMs) * factor / 1000)
}
