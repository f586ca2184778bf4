package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/industry-digital/flux-engine/internal/game/combat"
	"github.com/industry-digital/flux-engine/internal/game/dice"
)

// fakeHooks overrides attack rolls by a fixed delta and damage to a fixed
// value, recording the locations it was consulted for.
type fakeHooks struct {
	attackDelta int
	damage      int
	locations   []string
}

func (f *fakeHooks) CallHook(locationID, hook string, args ...lua.LValue) (lua.LValue, error) {
	f.locations = append(f.locations, locationID)
	switch hook {
	case "on_attack_roll":
		if n, ok := args[2].(lua.LNumber); ok {
			return lua.LNumber(int(n) + f.attackDelta), nil
		}
	case "on_damage_roll":
		if f.damage > 0 {
			return lua.LNumber(f.damage), nil
		}
	}
	return lua.LNil, nil
}

func TestStrike_ScriptHooksOverrideRolls(t *testing.T) {
	hooks := &fakeHooks{attackDelta: -20, damage: 0}
	// Attack d20 value 15 → natural 16 +2 accuracy = 18; the hook drags it
	// to -2, turning a certain hit into a miss.
	ctx := combat.NewContext(zap.NewNop(), dice.NewSequenceSource(15, 3),
		combat.WithScriptHooks(hooks))

	f := newFixture(ctx, []member{
		{id: "flux:actor:alice", name: "Alice", team: "alpha", initiator: true},
		{id: "flux:actor:bob", name: "Bob", team: "beta"},
	})
	_, err := f.session.StartCombat(combat.StartOptions{
		Initiative: []combat.InitiativeEntry{
			entry("flux:actor:alice", 15),
			entry("flux:actor:bob", 10),
		},
	})
	require.NoError(t, err)

	bob, _ := f.session.Combatant("flux:actor:bob")
	bob.Position.Coordinate = 11

	events, err := f.session.Strike("flux:actor:alice", "flux:actor:bob", "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, false, events[0].Payload["hit"])
	assert.Contains(t, hooks.locations, testLocation, "hooks are keyed by the session location")
}

func TestStrike_DamageHookOverride(t *testing.T) {
	hooks := &fakeHooks{damage: 9}
	ctx := combat.NewContext(zap.NewNop(), dice.NewSequenceSource(15, 1),
		combat.WithScriptHooks(hooks))

	f := newFixture(ctx, []member{
		{id: "flux:actor:alice", name: "Alice", team: "alpha", initiator: true},
		{id: "flux:actor:bob", name: "Bob", team: "beta"},
	})
	_, err := f.session.StartCombat(combat.StartOptions{
		Initiative: []combat.InitiativeEntry{
			entry("flux:actor:alice", 15),
			entry("flux:actor:bob", 10),
		},
	})
	require.NoError(t, err)

	bob, _ := f.session.Combatant("flux:actor:bob")
	bob.Position.Coordinate = 11

	events, err := f.session.Strike("flux:actor:alice", "flux:actor:bob", "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 9, events[0].Payload["damage"])

	a, _ := f.world.Get("flux:actor:bob")
	assert.Equal(t, 21, a.HP.Eff.Cur)
}
