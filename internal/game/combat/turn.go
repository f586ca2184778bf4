package combat

// ActionRecord is one executed action inside a turn.
type ActionRecord struct {
	Command string
	Trace   string
	APCost  float64
}

// TurnRecord identifies one combatant's turn within a round.
type TurnRecord struct {
	Round   int
	Turn    int
	ActorID string
	Actions []ActionRecord
}

// AdvanceTurn closes the current turn and hands the session to the next
// viable combatant in initiative order.
//
// The scan starts after the current actor; dead or absent combatants are
// skipped. When the scan reaches the end of the order it wraps to the
// beginning with the round counter incremented. When no viable combatant
// exists anywhere, only the turn-ended event is emitted and no turn starts;
// the victory check terminates the session instead.
//
// Precondition: session must be RUNNING with a current turn.
// Postcondition: the closed TurnRecord is appended to CompletedTurns.
func (s *Session) AdvanceTurn(trace string) []Event {
	if s.Status != StatusRunning || s.CurrentTurn == nil {
		return nil
	}
	if trace == "" {
		trace = s.ctx.Uniqid()
	}

	closed := s.CurrentTurn
	s.CompletedTurns = append(s.CompletedTurns, closed)
	events := []Event{s.ctx.DeclareEvent(s.newEvent(EventTurnEnded, closed.ActorID, trace, map[string]any{
		"actions": len(closed.Actions),
	}))}

	start := s.initiativeIndex(closed.ActorID) + 1

	// Scan the rest of the current round.
	for i := start; i < len(s.Initiative); i++ {
		if id := s.Initiative[i].ActorID; s.Viable(id) {
			events = append(events, s.beginTurn(closed.Round, closed.Turn+1, id, trace)...)
			return events
		}
	}

	// Wrap to a new round.
	for i := 0; i < len(s.Initiative); i++ {
		if id := s.Initiative[i].ActorID; s.Viable(id) {
			round := closed.Round + 1
			events = append(events, s.ctx.DeclareEvent(Event{
				Kind:      EventRoundStarted,
				SessionID: s.ID,
				Trace:     trace,
				Round:     round,
				Turn:      0,
				Payload:   map[string]any{"round": round},
			}))
			events = append(events, s.beginTurn(round, 1, id, trace)...)
			return events
		}
	}

	// Nobody is viable anywhere; leave CurrentTurn closed and emit nothing
	// further. The victory check will terminate the session.
	s.CurrentTurn = nil
	return events
}

// beginTurn installs a fresh TurnRecord, refills the actor's AP budget,
// clears its defensive stance, and emits TurnStarted.
func (s *Session) beginTurn(round, turn int, actorID, trace string) []Event {
	s.CurrentTurn = &TurnRecord{Round: round, Turn: turn, ActorID: actorID}
	if c, ok := s.byActor[actorID]; ok {
		c.AP.Reset()
		c.Defending = false
	}
	return []Event{s.ctx.DeclareEvent(s.newEvent(EventTurnStarted, actorID, trace, map[string]any{
		"round": round,
		"turn":  turn,
	}))}
}

// recordAction appends an executed action to the current turn when the
// acting combatant owns it.
func (s *Session) recordAction(actorID, command, trace string, apCost float64) {
	if s.CurrentTurn != nil && s.CurrentTurn.ActorID == actorID {
		s.CurrentTurn.Actions = append(s.CurrentTurn.Actions, ActionRecord{
			Command: command,
			Trace:   trace,
			APCost:  apCost,
		})
	}
}
