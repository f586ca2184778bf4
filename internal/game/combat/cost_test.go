package combat_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/industry-digital/flux-engine/internal/game/combat"
)

func TestWeaponAPCost_SkillReduction(t *testing.T) {
	cases := []struct {
		name    string
		timerMs int
		rank    int
		max     int
		want    float64
	}{
		{"unskilled pays full timer", 2000, 0, 100, 2.0},
		{"max skill halves the cost", 2000, 100, 100, 1.0},
		{"half skill takes a quarter off", 2000, 50, 100, 1.5},
		{"odd result rounds up to the grid", 1500, 37, 100, 1.3},
		{"rank above max clamps", 2000, 250, 100, 1.0},
		{"negative rank clamps to zero", 2000, -5, 100, 2.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := combat.WeaponAPCost(tc.timerMs, tc.rank, tc.max)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestMovementCostByDistance_RoundsUp(t *testing.T) {
	cost := combat.MovementCostByDistance(10, 10, 80000, 10)
	assert.Equal(t, 10, cost.Distance)
	// 10 m at 1.5 m/s is 6.666… s; the charge rounds up to 6.7.
	assert.InDelta(t, 6.7, cost.AP, 1e-9)
	assert.Greater(t, cost.Energy, 0)
}

func TestMovementCostByAP_FloorsDistance(t *testing.T) {
	cost := combat.MovementCostByAP(10, 10, 80000, 2.0)
	assert.InDelta(t, 2.0, cost.AP, 1e-9)
	assert.Equal(t, 3, cost.Distance, "floor(1.5 m/s * 2 s)")
}

func TestMovementCost_ZeroValues(t *testing.T) {
	assert.Equal(t, combat.MoveCost{}, combat.MovementCostByDistance(10, 10, 80000, 0))
	assert.Equal(t, combat.MoveCost{}, combat.MovementCostByAP(10, 10, 80000, 0))
	assert.Equal(t, 0, combat.MovementEnergyCost(10, 10, 0, 80000))
}

// TestPropertyMovementCost_Invariants: AP charges land on the 0.1 grid,
// energy never goes negative, and heavier loads never move farther for the
// same AP.
func TestPropertyMovementCost_Invariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		pow := rapid.IntRange(3, 18).Draw(rt, "pow")
		fin := rapid.IntRange(3, 18).Draw(rt, "fin")
		mass := rapid.IntRange(40000, 160000).Draw(rt, "mass")
		distance := rapid.IntRange(1, 300).Draw(rt, "distance")

		cost := combat.MovementCostByDistance(pow, fin, mass, distance)
		assert.InDelta(rt, combat.CleanAP(cost.AP), cost.AP, 1e-9, "AP charge must sit on the 0.1 grid")
		assert.GreaterOrEqual(rt, cost.Energy, 0)
		assert.Equal(rt, distance, cost.Distance)

		deciAP := rapid.IntRange(1, 60).Draw(rt, "deciAP")
		ap := float64(deciAP) / 10
		byAP := combat.MovementCostByAP(pow, fin, mass, ap)
		heavier := combat.MovementCostByAP(pow, fin, mass+20000, ap)
		assert.GreaterOrEqual(rt, byAP.Distance, heavier.Distance,
			"more mass must never buy more distance")
		assert.False(rt, math.IsNaN(byAP.AP))
	})
}
