package combat

import (
	"sort"
	"strings"

	"github.com/industry-digital/flux-engine/internal/game/actor"
	"github.com/industry-digital/flux-engine/internal/game/dice"
)

// InitiativeEntry pairs an actor with its initiative roll. The slice order
// of entries is the turn order for the whole session.
type InitiativeEntry struct {
	ActorID string
	Roll    dice.RollResult
}

// TieBreakInfo carries the data consulted when initiative results collide.
type TieBreakInfo struct {
	Finesse   int
	Initiator bool
}

// RollInitiative rolls 1d20 + perception bonus for every combatant, stores
// the roll on the combatant, and returns the sorted initiative order.
//
// Precondition: every combatant's actor record must exist in the world.
// Postcondition: the returned order is also stored on the session together
// with its roster cache key.
func (s *Session) RollInitiative() ([]InitiativeEntry, error) {
	entries := make([]InitiativeEntry, 0, len(s.combatants))
	info := make(map[string]TieBreakInfo, len(s.combatants))
	for _, c := range s.combatants {
		a, ok := s.world.Get(c.ActorID)
		if !ok {
			return nil, NewError(CodeUnknownActor, "", "actor %s not found", c.ActorID)
		}
		roll, err := s.ctx.Roll("1d20")
		if err != nil {
			return nil, NewError(CodeInternalInvariant, "", "initiative roll: %v", err)
		}
		roll = roll.WithModifier("stat:per", actor.StatBonus(a.Stats.Per))
		c.Initiative = roll
		entries = append(entries, InitiativeEntry{ActorID: c.ActorID, Roll: roll})
		info[c.ActorID] = TieBreakInfo{
			Finesse:   a.Stats.Fin,
			Initiator: c.DidInitiateCombat,
		}
	}
	SortInitiative(entries, info)
	s.Initiative = entries
	s.initiativeKey = rosterKey(entries)
	return entries, nil
}

// SortInitiative sorts entries in place: descending by roll result, with a
// cascading tie-break of (1) finesse descending, (2) initiator wins,
// (3) lexicographic actor id. The sort is stable; ties after rule 3 are
// impossible because ids are unique.
func SortInitiative(entries []InitiativeEntry, info map[string]TieBreakInfo) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		ra, rb := a.Roll.Result(), b.Roll.Result()
		if ra != rb {
			return ra > rb
		}
		ia, ib := info[a.ActorID], info[b.ActorID]
		if ia.Finesse != ib.Finesse {
			return ia.Finesse > ib.Finesse
		}
		if ia.Initiator != ib.Initiator {
			return ia.Initiator
		}
		return a.ActorID < b.ActorID
	})
}

// rosterKey derives the initiative cache key from the set of actor ids.
// A changed roster yields a different key and forces a re-sort.
func rosterKey(entries []InitiativeEntry) string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ActorID
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// initiativeStale reports whether the stored initiative no longer matches
// the current roster.
func (s *Session) initiativeStale() bool {
	if len(s.Initiative) != len(s.combatants) {
		return true
	}
	ids := make([]string, 0, len(s.combatants))
	for _, c := range s.combatants {
		ids = append(ids, c.ActorID)
	}
	sort.Strings(ids)
	return strings.Join(ids, ",") != s.initiativeKey
}

// initiativeIndex returns the position of actorID in the initiative order,
// or -1 when absent.
func (s *Session) initiativeIndex(actorID string) int {
	for i, e := range s.Initiative {
		if e.ActorID == actorID {
			return i
		}
	}
	return -1
}
