package combat

// StartOptions configures StartCombat.
type StartOptions struct {
	// Initiative, when non-empty, overrides the computed rolls. Entries must
	// cover exactly the session roster.
	Initiative []InitiativeEntry
	// Trace groups the start events; generated when empty.
	Trace string
}

// StartCombat validates the start gate and moves the session from PENDING
// to RUNNING.
//
// Gate: at least two combatants on at least two distinct teams, exactly one
// initiator, every actor present, alive, and at the session location, and
// no victory position yet.
//
// Postcondition: on success the session is RUNNING with round 1 turn 1 owned
// by the first entry of the initiative order, and SessionStarted,
// StatusChanged, and TurnStarted have been emitted. On error the session is
// unchanged.
func (s *Session) StartCombat(opts StartOptions) ([]Event, error) {
	trace := opts.Trace
	if trace == "" {
		trace = s.ctx.Uniqid()
	}

	if s.Status != StatusPending {
		return nil, NewError(CodeIllegalTransition, trace,
			"startCombat in %s session", s.Status)
	}
	if len(s.combatants) < 2 {
		return nil, NewError(CodeValidationFailure, trace,
			"need at least 2 combatants, have %d", len(s.combatants))
	}
	teams := make(map[string]bool)
	initiators := 0
	for _, c := range s.combatants {
		teams[c.Team] = true
		if c.DidInitiateCombat {
			initiators++
		}
	}
	if len(teams) < 2 {
		return nil, NewError(CodeNoOpposingTeams, trace,
			"need at least 2 teams, have %d", len(teams))
	}
	if initiators != 1 {
		return nil, NewError(CodeValidationFailure, trace,
			"need exactly 1 initiator, have %d", initiators)
	}
	for _, c := range s.combatants {
		a, ok := s.world.Get(c.ActorID)
		if !ok {
			return nil, NewError(CodeUnknownActor, trace, "actor %s not found", c.ActorID)
		}
		if !a.Alive() {
			return nil, NewError(CodeValidationFailure, trace, "actor %s is dead", c.ActorID)
		}
		if a.Location != s.Location {
			return nil, NewError(CodeValidationFailure, trace,
				"actor %s is at %q, session is at %q", c.ActorID, a.Location, s.Location)
		}
	}
	if teamCount := s.viableTeamCount(); teamCount < 2 {
		return nil, NewError(CodeValidationFailure, trace,
			"victory position already reached with %d viable team(s)", teamCount)
	}

	if len(opts.Initiative) > 0 {
		if err := s.adoptInitiative(opts.Initiative, trace); err != nil {
			return nil, err
		}
	} else if s.initiativeStale() {
		if _, err := s.RollInitiative(); err != nil {
			return nil, err
		}
	}

	s.Status = StatusRunning

	first := ""
	for _, e := range s.Initiative {
		if s.Viable(e.ActorID) {
			first = e.ActorID
			break
		}
	}
	if first == "" {
		s.Status = StatusPending
		return nil, NewError(CodeInternalInvariant, trace, "no viable first actor")
	}

	events := []Event{
		s.ctx.DeclareEvent(Event{
			Kind:      EventSessionStarted,
			SessionID: s.ID,
			Trace:     trace,
			Payload:   map[string]any{"combatants": len(s.combatants), "location": s.Location},
		}),
		s.ctx.DeclareEvent(Event{
			Kind:      EventSessionStatusChanged,
			SessionID: s.ID,
			Trace:     trace,
			Payload:   map[string]any{"from": StatusPending.String(), "to": StatusRunning.String()},
		}),
	}
	events = append(events, s.beginTurn(1, 1, first, trace)...)
	return events, nil
}

// adoptInitiative installs an explicit initiative order after verifying it
// covers exactly the session roster.
func (s *Session) adoptInitiative(entries []InitiativeEntry, trace string) error {
	if len(entries) != len(s.combatants) {
		return NewError(CodeValidationFailure, trace,
			"explicit initiative covers %d of %d combatants", len(entries), len(s.combatants))
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if _, ok := s.byActor[e.ActorID]; !ok {
			return NewError(CodeUnknownActor, trace,
				"initiative entry for %s, who is not in session", e.ActorID)
		}
		if seen[e.ActorID] {
			return NewError(CodeValidationFailure, trace,
				"duplicate initiative entry for %s", e.ActorID)
		}
		seen[e.ActorID] = true
	}
	for _, e := range entries {
		s.byActor[e.ActorID].Initiative = e.Roll
	}
	s.Initiative = append([]InitiativeEntry(nil), entries...)
	s.initiativeKey = rosterKey(s.Initiative)
	return nil
}

func (s *Session) viableTeamCount() int {
	viable := make(map[string]bool)
	for _, c := range s.combatants {
		if s.Viable(c.ActorID) {
			viable[c.Team] = true
		}
	}
	return len(viable)
}

// PauseCombat moves a RUNNING session to PAUSED.
func (s *Session) PauseCombat(trace string) ([]Event, error) {
	return s.transition(StatusRunning, StatusPaused, "pauseCombat", trace)
}

// ResumeCombat moves a PAUSED session back to RUNNING.
func (s *Session) ResumeCombat(trace string) ([]Event, error) {
	return s.transition(StatusPaused, StatusRunning, "resumeCombat", trace)
}

func (s *Session) transition(from, to Status, op, trace string) ([]Event, error) {
	if trace == "" {
		trace = s.ctx.Uniqid()
	}
	if s.Status != from {
		return nil, NewError(CodeIllegalTransition, trace, "%s in %s session", op, s.Status)
	}
	s.Status = to
	return []Event{s.ctx.DeclareEvent(s.newEvent(EventSessionStatusChanged, "", trace, map[string]any{
		"from": from.String(),
		"to":   to.String(),
	}))}, nil
}

// EndCombat terminates a RUNNING session, computing the winning team.
//
// Postcondition: status is TERMINATED; SessionEnded carries the winning
// team (TeamNone when mutual destruction), the final round, and final turn.
func (s *Session) EndCombat(trace string) ([]Event, error) {
	if trace == "" {
		trace = s.ctx.Uniqid()
	}
	if s.Status != StatusRunning {
		return nil, NewError(CodeIllegalTransition, trace, "endCombat in %s session", s.Status)
	}

	winner, decided := s.WinningTeam()
	if !decided {
		winner = ""
	}

	finalRound, finalTurn := 0, 0
	if s.CurrentTurn != nil {
		finalRound, finalTurn = s.CurrentTurn.Round, s.CurrentTurn.Turn
	} else if n := len(s.CompletedTurns); n > 0 {
		finalRound, finalTurn = s.CompletedTurns[n-1].Round, s.CompletedTurns[n-1].Turn
	}

	s.Status = StatusTerminated
	events := []Event{
		s.ctx.DeclareEvent(s.newEvent(EventSessionStatusChanged, "", trace, map[string]any{
			"from": StatusRunning.String(),
			"to":   StatusTerminated.String(),
		})),
		s.ctx.DeclareEvent(s.newEvent(EventSessionEnded, "", trace, map[string]any{
			"winningTeam": winner,
			"finalRound":  finalRound,
			"finalTurn":   finalTurn,
		})),
	}
	return events, nil
}
