package combat_test

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/industry-digital/flux-engine/internal/game/actor"
	"github.com/industry-digital/flux-engine/internal/game/combat"
	"github.com/industry-digital/flux-engine/internal/game/dice"
)

const testLocation = "flux:location:arena"

// testSword is a melee weapon with a 2.0 AP swing at rank 0.
func testSword() *actor.WeaponSchema {
	return &actor.WeaponSchema{
		URN:      "flux:weapon:test-sword",
		BaseMass: 1200,
		Range:    actor.RangeProfile{Optimal: 1},
		Timers:   actor.Timers{Attack: 2000},
		Skill:    "blades",
		Accuracy: 2,
		Damage:   "1d6",
	}
}

// testBow is a ranged weapon reaching 100 m.
func testBow() *actor.WeaponSchema {
	return &actor.WeaponSchema{
		URN:      "flux:weapon:test-bow",
		BaseMass: 900,
		Range:    actor.RangeProfile{Optimal: 40, Max: 100, Falloff: 20},
		Timers:   actor.Timers{Attack: 3000},
		Skill:    "archery",
		Accuracy: 1,
		Damage:   "1d6",
	}
}

// newTestActor builds a healthy actor at the test location.
func newTestActor(id, name string, stats actor.Stats, weapon *actor.WeaponSchema) *actor.Actor {
	return &actor.Actor{
		ID:       id,
		Name:     name,
		Location: testLocation,
		Stats:    stats,
		HP:       actor.HP{Nat: actor.Pool{Cur: 30, Max: 30}, Eff: actor.Pool{Cur: 30, Max: 30}},
		Skills:   map[string]int{},
		Equipment: actor.Equipment{
			Weapon: weapon,
		},
	}
}

// testContext builds a context with a replayed dice sequence and sequential
// trace ids. A dice value v yields a d20 roll of v+1.
func testContext(diceValues ...int) *combat.Context {
	if len(diceValues) == 0 {
		diceValues = []int{9}
	}
	n := 0
	return combat.NewContext(
		zap.NewNop(),
		dice.NewSequenceSource(diceValues...),
		combat.WithUniqid(func() string {
			n++
			return fmt.Sprintf("id-%04d", n)
		}),
	)
}

// fixture bundles a session with its world for mutation in tests.
type fixture struct {
	ctx     *combat.Context
	world   *actor.Registry
	session *combat.Session
}

// member describes one combatant to seed.
type member struct {
	id        string
	name      string
	team      string
	initiator bool
	stats     actor.Stats
	weapon    *actor.WeaponSchema
}

// newFixture builds a PENDING session populated with the given members.
func newFixture(ctx *combat.Context, members []member) *fixture {
	world := actor.NewRegistry()
	for _, m := range members {
		stats := m.stats
		if stats == (actor.Stats{}) {
			stats = actor.Stats{Pow: 10, Fin: 10, Res: 10, Int: 10, Per: 10, Mem: 10}
		}
		weapon := m.weapon
		if weapon == nil {
			weapon = testSword()
		}
		if err := world.Put(newTestActor(m.id, m.name, stats, weapon)); err != nil {
			panic(err)
		}
	}
	session := combat.NewSession(ctx, world, actor.NewEquipmentAPI(), combat.SessionParams{
		Location: testLocation,
	})
	for _, m := range members {
		if _, err := session.AddCombatant(m.id, m.team, m.initiator); err != nil {
			panic(err)
		}
	}
	return &fixture{ctx: ctx, world: world, session: session}
}

// standardPair is a two-member fixture: alpha-team Alice versus beta-team Bob.
func standardPair(ctx *combat.Context) *fixture {
	return newFixture(ctx, []member{
		{id: "flux:actor:alice", name: "Alice", team: "alpha", initiator: true},
		{id: "flux:actor:bob", name: "Bob", team: "beta"},
	})
}

// actorStatsDefault returns the all-10s stat line used by most fixtures.
func actorStatsDefault() actor.Stats {
	return actor.Stats{Pow: 10, Fin: 10, Res: 10, Int: 10, Per: 10, Mem: 10}
}

// kill zeroes an actor's effective HP directly through the world record.
func (f *fixture) kill(actorID string) {
	a, ok := f.world.Get(actorID)
	if !ok {
		panic("kill: unknown actor " + actorID)
	}
	a.HP.Eff.Cur = 0
}
