package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industry-digital/flux-engine/internal/game/combat"
)

// trio builds Alice (alpha) versus Bob and Charlie (beta), started with the
// explicit initiative order [Alice, Bob, Charlie].
func trio(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(testContext(9), []member{
		{id: "flux:actor:alice", name: "Alice", team: "alpha", initiator: true},
		{id: "flux:actor:bob", name: "Bob", team: "beta"},
		{id: "flux:actor:charlie", name: "Charlie", team: "beta"},
	})
	_, err := f.session.StartCombat(combat.StartOptions{
		Initiative: []combat.InitiativeEntry{
			entry("flux:actor:alice", 18),
			entry("flux:actor:bob", 14),
			entry("flux:actor:charlie", 9),
		},
	})
	require.NoError(t, err)
	return f
}

func TestAdvanceTurn_WalksInitiativeOrder(t *testing.T) {
	f := trio(t)
	s := f.session

	require.NotNil(t, s.CurrentTurn)
	assert.Equal(t, "flux:actor:alice", s.CurrentTurn.ActorID)
	assert.Equal(t, 1, s.CurrentTurn.Round)
	assert.Equal(t, 1, s.CurrentTurn.Turn)

	s.AdvanceTurn("")
	assert.Equal(t, "flux:actor:bob", s.CurrentTurn.ActorID)
	assert.Equal(t, 1, s.CurrentTurn.Round)
	assert.Equal(t, 2, s.CurrentTurn.Turn)

	s.AdvanceTurn("")
	assert.Equal(t, "flux:actor:charlie", s.CurrentTurn.ActorID)
	assert.Equal(t, 3, s.CurrentTurn.Turn)
}

// TestAdvanceTurn_SkipsDeadAndRollsOver is the skip-dead scenario: Bob dies
// during Alice's turn, so the next turn belongs to Charlie in the same
// round, and the turn after that wraps to Alice in round 2.
func TestAdvanceTurn_SkipsDeadAndRollsOver(t *testing.T) {
	f := trio(t)
	s := f.session

	f.kill("flux:actor:bob")

	s.AdvanceTurn("")
	require.NotNil(t, s.CurrentTurn)
	assert.Equal(t, "flux:actor:charlie", s.CurrentTurn.ActorID)
	assert.Equal(t, 1, s.CurrentTurn.Round, "round must not change while the order has viable actors left")

	s.AdvanceTurn("")
	assert.Equal(t, "flux:actor:alice", s.CurrentTurn.ActorID)
	assert.Equal(t, 2, s.CurrentTurn.Round)
	assert.Equal(t, 1, s.CurrentTurn.Turn)
}

// TestAdvanceTurn_DeadActorNeverStartsTurn drives several full rounds and
// asserts the dead combatant never receives combat:turn:started.
func TestAdvanceTurn_DeadActorNeverStartsTurn(t *testing.T) {
	f := trio(t)
	s := f.session

	f.kill("flux:actor:bob")
	for i := 0; i < 10; i++ {
		s.AdvanceTurn("")
	}

	started := f.ctx.DeclaredEvents(func(e combat.Event) bool {
		return e.Kind == combat.EventTurnStarted && e.Actor == "flux:actor:bob"
	})
	assert.Empty(t, started, "dead combatant must never be issued a turn")
}

// TestAdvanceTurn_TurnCoverage verifies every living actor acts once per
// round before anyone acts twice.
func TestAdvanceTurn_TurnCoverage(t *testing.T) {
	f := trio(t)
	s := f.session

	seen := map[string]int{s.CurrentTurn.ActorID: 1}
	for i := 0; i < 5; i++ {
		round := s.CurrentTurn.Round
		s.AdvanceTurn("")
		if s.CurrentTurn.Round != round {
			// Round boundary: everyone must have acted exactly once.
			for id, n := range seen {
				assert.Equal(t, 1, n, "actor %s acted %d times in round %d", id, n, round)
			}
			seen = map[string]int{}
		}
		seen[s.CurrentTurn.ActorID]++
	}
}

func TestAdvanceTurn_AllDeadEmitsNothingNew(t *testing.T) {
	f := trio(t)
	s := f.session

	f.kill("flux:actor:alice")
	f.kill("flux:actor:bob")
	f.kill("flux:actor:charlie")

	before := len(f.ctx.DeclaredEvents(func(e combat.Event) bool {
		return e.Kind == combat.EventTurnStarted
	}))
	s.AdvanceTurn("")
	after := len(f.ctx.DeclaredEvents(func(e combat.Event) bool {
		return e.Kind == combat.EventTurnStarted
	}))

	assert.Equal(t, before, after, "no TurnStarted when nobody is viable")
	assert.Nil(t, s.CurrentTurn)
}

func TestAdvanceTurn_EmitsRoundStartedOnRollover(t *testing.T) {
	f := trio(t)
	s := f.session

	s.AdvanceTurn("")
	s.AdvanceTurn("")
	s.AdvanceTurn("") // wraps

	rounds := f.ctx.DeclaredEvents(func(e combat.Event) bool {
		return e.Kind == combat.EventRoundStarted
	})
	require.Len(t, rounds, 1)
	assert.Equal(t, 2, rounds[0].Round)
}

func TestAdvanceTurn_CompletedTurnsAccumulate(t *testing.T) {
	f := trio(t)
	s := f.session

	s.AdvanceTurn("")
	s.AdvanceTurn("")
	assert.Len(t, s.CompletedTurns, 2)
	assert.Equal(t, "flux:actor:alice", s.CompletedTurns[0].ActorID)
	assert.Equal(t, "flux:actor:bob", s.CompletedTurns[1].ActorID)
}

func TestBeginTurn_RefillsAPAndClearsDefense(t *testing.T) {
	f := trio(t)
	s := f.session

	alice, _ := s.Combatant("flux:actor:alice")
	_, err := s.Defend("flux:actor:alice", "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, alice.AP.Remaining())
	assert.True(t, alice.Defending)

	// Bob and Charlie take their turns; Alice's next turn restores her.
	s.AdvanceTurn("")
	s.AdvanceTurn("")
	s.AdvanceTurn("")

	assert.Equal(t, "flux:actor:alice", s.CurrentTurn.ActorID)
	assert.Equal(t, 6.0, alice.AP.Remaining())
	assert.False(t, alice.Defending)
}
