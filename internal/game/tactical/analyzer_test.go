package tactical_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/industry-digital/flux-engine/internal/game/actor"
	"github.com/industry-digital/flux-engine/internal/game/combat"
	"github.com/industry-digital/flux-engine/internal/game/dice"
	"github.com/industry-digital/flux-engine/internal/game/tactical"
)

const arena = "flux:location:arena"

// newSkirmish builds a RUNNING session: Alice (sword, alpha) against Bob
// (spear, beta) and Cal (bow, beta).
func newSkirmish(t *testing.T) (*combat.Session, *actor.Registry) {
	t.Helper()
	n := 0
	ctx := combat.NewContext(zap.NewNop(), dice.NewSequenceSource(9),
		combat.WithUniqid(func() string {
			n++
			return fmt.Sprintf("id-%04d", n)
		}))

	world := actor.NewRegistry()
	weapons := map[string]*actor.WeaponSchema{
		"flux:actor:alice": {
			URN: "flux:weapon:sword", BaseMass: 1200,
			Range:  actor.RangeProfile{Optimal: 1},
			Timers: actor.Timers{Attack: 2000}, Skill: "blades", Accuracy: 2, Damage: "1d8",
		},
		"flux:actor:bob": {
			URN: "flux:weapon:spear", BaseMass: 2000,
			Range:  actor.RangeProfile{Optimal: 2},
			Timers: actor.Timers{Attack: 2400}, Skill: "polearms", Accuracy: 1, Damage: "1d10",
		},
		"flux:actor:cal": {
			URN: "flux:weapon:bow", BaseMass: 900,
			Range:  actor.RangeProfile{Optimal: 40, Max: 100, Falloff: 20},
			Timers: actor.Timers{Attack: 3000}, Skill: "archery", Accuracy: 1, Damage: "1d6",
		},
	}
	for id, name := range map[string]string{
		"flux:actor:alice": "Alice",
		"flux:actor:bob":   "Bob",
		"flux:actor:cal":   "Cal",
	} {
		require.NoError(t, world.Put(&actor.Actor{
			ID:        id,
			Name:      name,
			Location:  arena,
			Stats:     actor.Stats{Pow: 10, Fin: 10, Res: 10, Int: 10, Per: 10, Mem: 10},
			HP:        actor.HP{Nat: actor.Pool{Cur: 30, Max: 30}, Eff: actor.Pool{Cur: 30, Max: 30}},
			Equipment: actor.Equipment{Weapon: weapons[id]},
		}))
	}

	s := combat.NewSession(ctx, world, actor.NewEquipmentAPI(), combat.SessionParams{Location: arena})
	_, err := s.AddCombatant("flux:actor:alice", "alpha", true)
	require.NoError(t, err)
	_, err = s.AddCombatant("flux:actor:bob", "beta", false)
	require.NoError(t, err)
	_, err = s.AddCombatant("flux:actor:cal", "beta", false)
	require.NoError(t, err)

	_, err = s.StartCombat(combat.StartOptions{
		Initiative: []combat.InitiativeEntry{
			{ActorID: "flux:actor:alice", Roll: dice.RollResult{Expression: "1d20", Values: []int{15}, Natural: 15}},
			{ActorID: "flux:actor:bob", Roll: dice.RollResult{Expression: "1d20", Values: []int{10}, Natural: 10}},
			{ActorID: "flux:actor:cal", Roll: dice.RollResult{Expression: "1d20", Values: []int{5}, Natural: 5}},
		},
	})
	require.NoError(t, err)
	return s, world
}

func TestAnalyze_NearestEnemyWhenUntargeted(t *testing.T) {
	s, _ := newSkirmish(t)
	alice, _ := s.Combatant("flux:actor:alice")
	bob, _ := s.Combatant("flux:actor:bob")
	cal, _ := s.Combatant("flux:actor:cal")

	alice.Position.Coordinate = 50
	bob.Position.Coordinate = 60
	cal.Position.Coordinate = 200

	sit, err := tactical.Analyze(s, "flux:actor:alice")
	require.NoError(t, err)

	assert.Equal(t, "flux:actor:bob", sit.EnemyID, "nearest viable enemy is primary")
	assert.Equal(t, 10, sit.Distance)
	assert.Equal(t, 10, sit.SignedDistance)
	assert.Equal(t, combat.WeaponMelee, sit.WeaponClass)
	assert.Equal(t, 1, sit.WeaponRange)
	assert.Equal(t, 2, sit.EnemyWeaponRange, "spear reach")
	assert.Equal(t, 8, sit.Safety)
	assert.False(t, sit.InOptimalBand)
	assert.Equal(t, 6.0, sit.RemainingAP)
	assert.InDelta(t, 4.5, sit.ExpectedDamage, 1e-9, "mean of 1d8")
}

func TestAnalyze_PrefersCurrentTarget(t *testing.T) {
	s, _ := newSkirmish(t)
	alice, _ := s.Combatant("flux:actor:alice")
	bob, _ := s.Combatant("flux:actor:bob")
	cal, _ := s.Combatant("flux:actor:cal")

	alice.Position.Coordinate = 50
	bob.Position.Coordinate = 60
	cal.Position.Coordinate = 200

	_, err := s.Target("flux:actor:alice", "flux:actor:cal", "")
	require.NoError(t, err)

	sit, err := tactical.Analyze(s, "flux:actor:alice")
	require.NoError(t, err)
	assert.Equal(t, "flux:actor:cal", sit.EnemyID, "an explicit target wins over proximity")
	assert.Equal(t, 150, sit.Distance)
}

func TestAnalyze_DeadTargetFallsBack(t *testing.T) {
	s, world := newSkirmish(t)
	_, err := s.Target("flux:actor:alice", "flux:actor:cal", "")
	require.NoError(t, err)

	a, _ := world.Get("flux:actor:cal")
	a.HP.Eff.Cur = 0

	sit, err := tactical.Analyze(s, "flux:actor:alice")
	require.NoError(t, err)
	assert.Equal(t, "flux:actor:bob", sit.EnemyID, "a dead target is replaced by the nearest living enemy")
}

func TestAnalyze_NoViableEnemy(t *testing.T) {
	s, world := newSkirmish(t)
	for _, id := range []string{"flux:actor:bob", "flux:actor:cal"} {
		a, _ := world.Get(id)
		a.HP.Eff.Cur = 0
	}
	_, err := tactical.Analyze(s, "flux:actor:alice")
	require.Error(t, err)
	assert.Equal(t, combat.CodeValidationFailure, combat.CodeOf(err))
}

func TestAnalyze_ObstaclesCounted(t *testing.T) {
	s, _ := newSkirmish(t)
	alice, _ := s.Combatant("flux:actor:alice")
	bob, _ := s.Combatant("flux:actor:bob")
	alice.Position.Coordinate = 50
	bob.Position.Coordinate = 80
	s.Battlefield.Obstacles = []combat.Obstacle{{From: 60, To: 65, Kind: "wall"}}

	sit, err := tactical.Analyze(s, "flux:actor:alice")
	require.NoError(t, err)
	assert.Equal(t, 1, sit.ObstaclesBetween)
}
