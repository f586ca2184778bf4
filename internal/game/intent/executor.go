package intent

import (
	"github.com/industry-digital/flux-engine/internal/game/combat"
)

// Executor dispatches validated actions onto the combatant action API.
type Executor struct{}

// NewExecutor creates an Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute dispatches each action in order, sharing one trace across the
// batch. After the batch, the turn is yielded automatically when the actor
// has no AP left.
//
// Individual action failures are already declared on the session context;
// the batch continues past them.
//
// Postcondition: returns every event emitted by the batch, in dispatch order.
func (e *Executor) Execute(s *combat.Session, actorID string, actions []Action, trace string) []combat.Event {
	if trace == "" {
		trace = s.Context().Uniqid()
	}

	var events []combat.Event
	for _, a := range actions {
		var actionEvents []combat.Event
		switch a.Command {
		case CommandTarget:
			actionEvents, _ = s.Target(actorID, a.TargetID, trace)
		case CommandAttack:
			if a.Primitive {
				actionEvents, _ = s.Strike(actorID, a.TargetID, trace)
			} else {
				actionEvents, _ = s.Attack(actorID, a.TargetID, trace)
			}
		case CommandDefend:
			actionEvents, _ = s.Defend(actorID, trace)
		case CommandCleave:
			actionEvents, _ = s.Cleave(actorID, trace)
		case CommandAdvance:
			actionEvents, _ = s.Advance(actorID, a.Mode, a.Value, a.TargetID, false, trace)
		case CommandRetreat:
			actionEvents, _ = s.Retreat(actorID, a.Mode, a.Value, a.TargetID, false, trace)
		}
		events = append(events, actionEvents...)
	}

	if !s.CanAct(actorID) {
		doneEvents, _ := s.Done(actorID, trace)
		events = append(events, doneEvents...)
	}
	return events
}

// ExecuteIntent parses input against the session roster and executes the
// result. Parse failures surface to the caller before any state mutation.
func (e *Executor) ExecuteIntent(s *combat.Session, actorID, input, trace string) ([]combat.Event, error) {
	parser := NewParser(s.Battlefield.Length)
	actions, err := parser.Parse(input, SessionRoster(s))
	if err != nil {
		return nil, err
	}
	return e.Execute(s, actorID, actions, trace), nil
}

// SessionRoster builds the target-resolution roster from the session's
// combatants and their world names.
func SessionRoster(s *combat.Session) []Candidate {
	combatants := s.Combatants()
	roster := make([]Candidate, 0, len(combatants))
	for _, c := range combatants {
		roster = append(roster, Candidate{ID: c.ActorID, Name: s.ActorName(c.ActorID)})
	}
	return roster
}
