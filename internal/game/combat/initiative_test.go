package combat_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/industry-digital/flux-engine/internal/game/actor"
	"github.com/industry-digital/flux-engine/internal/game/combat"
	"github.com/industry-digital/flux-engine/internal/game/dice"
)

func entry(id string, result int) combat.InitiativeEntry {
	return combat.InitiativeEntry{
		ActorID: id,
		Roll: dice.RollResult{
			Expression: "1d20",
			Values:     []int{result},
			Natural:    result,
		},
	}
}

// TestSortInitiative_CascadingTieBreak is the canonical tie-break scenario:
// A (fin 15) leads on roll; B beats the 12-pointers on roll; D beats C on
// the initiator flag despite equal roll and finesse.
func TestSortInitiative_CascadingTieBreak(t *testing.T) {
	entries := []combat.InitiativeEntry{
		entry("flux:actor:a", 18),
		entry("flux:actor:b", 15),
		entry("flux:actor:c", 12),
		entry("flux:actor:d", 12),
	}
	info := map[string]combat.TieBreakInfo{
		"flux:actor:a": {Finesse: 15},
		"flux:actor:b": {Finesse: 12},
		"flux:actor:c": {Finesse: 10},
		"flux:actor:d": {Finesse: 10, Initiator: true},
	}

	combat.SortInitiative(entries, info)

	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.ActorID
	}
	want := []string{"flux:actor:a", "flux:actor:b", "flux:actor:d", "flux:actor:c"}
	assert.Equal(t, want, got)
}

func TestSortInitiative_FinesseBeforeInitiator(t *testing.T) {
	entries := []combat.InitiativeEntry{
		entry("flux:actor:x", 10),
		entry("flux:actor:y", 10),
	}
	info := map[string]combat.TieBreakInfo{
		"flux:actor:x": {Finesse: 14},
		"flux:actor:y": {Finesse: 16, Initiator: false},
	}
	combat.SortInitiative(entries, info)
	assert.Equal(t, "flux:actor:y", entries[0].ActorID,
		"higher finesse wins before the initiator flag is consulted")
}

func TestSortInitiative_LexicographicLastResort(t *testing.T) {
	entries := []combat.InitiativeEntry{
		entry("flux:actor:zeb", 10),
		entry("flux:actor:ann", 10),
	}
	info := map[string]combat.TieBreakInfo{
		"flux:actor:zeb": {Finesse: 10},
		"flux:actor:ann": {Finesse: 10},
	}
	combat.SortInitiative(entries, info)
	assert.Equal(t, "flux:actor:ann", entries[0].ActorID)
}

// TestPropertySortInitiative_Deterministic re-sorts identical inputs and
// demands identical sequences, for arbitrary rolls, finesse, and flags.
func TestPropertySortInitiative_Deterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(rt, "n")
		entries := make([]combat.InitiativeEntry, n)
		info := make(map[string]combat.TieBreakInfo, n)
		initiator := rapid.IntRange(0, n-1).Draw(rt, "initiator")
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("flux:actor:c%02d", i)
			entries[i] = entry(id, rapid.IntRange(1, 20).Draw(rt, "roll"))
			info[id] = combat.TieBreakInfo{
				Finesse:   rapid.IntRange(8, 18).Draw(rt, "fin"),
				Initiator: i == initiator,
			}
		}

		first := append([]combat.InitiativeEntry(nil), entries...)
		second := append([]combat.InitiativeEntry(nil), entries...)
		combat.SortInitiative(first, info)
		combat.SortInitiative(second, info)

		assert.Equal(rt, first, second, "identical inputs must sort identically")

		// Descending by result throughout.
		for i := 1; i < len(first); i++ {
			assert.GreaterOrEqual(rt, first[i-1].Roll.Result(), first[i].Roll.Result())
		}
	})
}

// TestSession_RollInitiative_AddsPerceptionBonus checks the roll formula
// 1d20 + perception bonus and that iteration order becomes turn order.
func TestSession_RollInitiative_AddsPerceptionBonus(t *testing.T) {
	// Dice values 17 and 4 yield d20 rolls of 18 and 5.
	ctx := testContext(17, 4)
	f := newFixture(ctx, []member{
		{id: "flux:actor:alice", name: "Alice", team: "alpha", initiator: true,
			stats: actor.Stats{Pow: 10, Fin: 10, Res: 10, Int: 10, Per: 14, Mem: 10}},
		{id: "flux:actor:bob", name: "Bob", team: "beta",
			stats: actor.Stats{Pow: 10, Fin: 10, Res: 10, Int: 10, Per: 10, Mem: 10}},
	})

	entries, err := f.session.RollInitiative()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "flux:actor:alice", entries[0].ActorID)
	assert.Equal(t, 20, entries[0].Roll.Result(), "18 natural + 2 perception bonus")
	assert.Equal(t, 18, entries[0].Roll.Natural)
	assert.Equal(t, 5, entries[1].Roll.Result())
}
