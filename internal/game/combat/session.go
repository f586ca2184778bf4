// Package combat implements the deterministic turn-based tactical combat core.
package combat

import (
	"github.com/industry-digital/flux-engine/internal/game/actor"
)

// Status is the session lifecycle state.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusPaused
	StatusTerminated
)

// String returns the wire-level status label.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusRunning:
		return "RUNNING"
	case StatusPaused:
		return "PAUSED"
	default:
		return "TERMINATED"
	}
}

// SessionParams configures a new session.
type SessionParams struct {
	// ID is the session identity; generated when empty.
	ID string
	// Location is the world location id the session is anchored to.
	Location string
	// Battlefield is the 1-D arena; a default one is built when nil.
	Battlefield *Battlefield
	// TurnDuration is the AP budget per turn; defaults to TurnDurationAP.
	TurnDuration float64
	// MaxSkillRank caps skill-based cost reduction; defaults to 100.
	MaxSkillRank int
	// TeamSpread is the placement delta between same-team combatants;
	// defaults to 2 m.
	TeamSpread int
}

// Session owns all combatant state for one encounter. The session is
// single-threaded cooperative; it must not be shared across goroutines.
type Session struct {
	ID          string
	Status      Status
	Battlefield *Battlefield
	Location    string

	ctx       *Context
	world     *actor.Registry
	equipment actor.EquipmentAPI

	combatants []*Combatant // insertion order, kept for stable dumps
	byActor    map[string]*Combatant
	teamOrder  []string // team labels in first-seen order, for placement

	// Initiative iteration order is the ground truth of turn sequence.
	Initiative    []InitiativeEntry
	initiativeKey string

	CurrentTurn    *TurnRecord
	CompletedTurns []*TurnRecord

	monitor *Monitor

	weaponClasses map[string]WeaponClass // weapon URN → class

	turnDuration float64
	maxSkillRank int
	teamSpread   int
}

// NewSession creates a PENDING session.
//
// Precondition: ctx, world, and equipment must be non-nil.
func NewSession(ctx *Context, world *actor.Registry, equipment actor.EquipmentAPI, params SessionParams) *Session {
	if ctx == nil {
		panic("combat.NewSession: ctx must not be nil")
	}
	if world == nil {
		panic("combat.NewSession: world must not be nil")
	}
	if equipment == nil {
		panic("combat.NewSession: equipment must not be nil")
	}
	id := params.ID
	if id == "" {
		id = ctx.Uniqid()
	}
	bf := params.Battlefield
	if bf == nil {
		bf = NewBattlefield(DefaultBattlefieldLength, 10)
	}
	turnDuration := params.TurnDuration
	if turnDuration <= 0 {
		turnDuration = TurnDurationAP
	}
	maxSkill := params.MaxSkillRank
	if maxSkill <= 0 {
		maxSkill = 100
	}
	spread := params.TeamSpread
	if spread <= 0 {
		spread = 2
	}
	return &Session{
		ID:            id,
		Status:        StatusPending,
		Battlefield:   bf,
		Location:      params.Location,
		ctx:           ctx,
		world:         world,
		equipment:     equipment,
		byActor:       make(map[string]*Combatant),
		monitor:       NewMonitor(),
		weaponClasses: make(map[string]WeaponClass),
		turnDuration:  turnDuration,
		maxSkillRank:  maxSkill,
		teamSpread:    spread,
	}
}

// Context returns the session's execution context.
func (s *Session) Context() *Context { return s.ctx }

// TurnDuration returns the AP budget per turn.
func (s *Session) TurnDuration() float64 { return s.turnDuration }

// MaxSkillRank returns the skill rank cap.
func (s *Session) MaxSkillRank() int { return s.maxSkillRank }

// AddCombatant registers an actor into the session and places it on the
// battlefield. The first team seen is placed at the left margin facing
// right; the second at the right margin facing left. Same-team combatants
// are spread by TeamSpread meters so they never stack on one coordinate.
//
// Precondition: session must be PENDING.
// Postcondition: Combatant(actorID) returns the new combatant; exactly one
// combatant per session may carry initiator=true.
func (s *Session) AddCombatant(actorID, team string, initiator bool) (*Combatant, error) {
	if s.Status != StatusPending {
		return nil, NewError(CodeIllegalTransition, "",
			"cannot add combatant in %s session", s.Status)
	}
	if _, exists := s.byActor[actorID]; exists {
		return nil, NewError(CodeDuplicateCombatant, "",
			"actor %s already in session", actorID)
	}
	a, ok := s.world.Get(actorID)
	if !ok {
		return nil, NewError(CodeUnknownActor, "", "actor %s not found", actorID)
	}
	if initiator {
		for _, c := range s.combatants {
			if c.DidInitiateCombat {
				return nil, NewError(CodeValidationFailure, "",
					"combat already has an initiator (%s)", c.ActorID)
			}
		}
	}

	teamIdx := s.teamIndex(team)
	teamCount := 0
	for _, c := range s.combatants {
		if c.Team == team {
			teamCount++
		}
	}

	var coord int
	var facing Facing
	if teamIdx%2 == 0 {
		coord = s.Battlefield.Clamp(s.Battlefield.Margin + teamCount*s.teamSpread)
		facing = FacingRight
	} else {
		coord = s.Battlefield.Clamp(s.Battlefield.Length - s.Battlefield.Margin - teamCount*s.teamSpread)
		facing = FacingLeft
	}

	c := &Combatant{
		ActorID: actorID,
		Team:    team,
		Position: Position{
			Coordinate: coord,
			Facing:     facing,
			Speed:      walkSpeed(a.Stats.Pow, a.Stats.Fin, actor.ComputeActorMass(a)),
		},
		AP:                NewAPTrack(s.turnDuration),
		Energy:            newEnergyTrack(a.Stats.Res),
		Balance:           BalanceTrack{Nat: 10 + actor.StatBonus(a.Stats.Fin), Eff: 10 + actor.StatBonus(a.Stats.Fin)},
		DidInitiateCombat: initiator,
	}
	s.combatants = append(s.combatants, c)
	s.byActor[actorID] = c
	a.Sessions = ensureSet(a.Sessions, s.ID)
	return c, nil
}

func (s *Session) teamIndex(team string) int {
	for i, t := range s.teamOrder {
		if t == team {
			return i
		}
	}
	s.teamOrder = append(s.teamOrder, team)
	return len(s.teamOrder) - 1
}

func ensureSet(set map[string]bool, key string) map[string]bool {
	if set == nil {
		set = make(map[string]bool)
	}
	set[key] = true
	return set
}

func newEnergyTrack(res int) EnergyTrack {
	max := 1000 + 100*actor.StatBonus(res)
	if max < 100 {
		max = 100
	}
	return EnergyTrack{
		Nat: IntPool{Cur: max, Max: max},
		Eff: IntPool{Cur: max, Max: max},
	}
}

// Combatant returns the combatant for actorID.
func (s *Session) Combatant(actorID string) (*Combatant, bool) {
	c, ok := s.byActor[actorID]
	return c, ok
}

// Combatants returns the combatants in insertion order. The slice is a copy;
// the combatants are the live records.
func (s *Session) Combatants() []*Combatant {
	out := make([]*Combatant, len(s.combatants))
	copy(out, s.combatants)
	return out
}

// ActorName returns the world name for an actor id, or the id itself when
// the record is missing.
func (s *Session) ActorName(actorID string) string {
	if a, ok := s.world.Get(actorID); ok {
		return a.Name
	}
	return actorID
}

// Actor returns the borrowed world record for an actor id.
func (s *Session) Actor(actorID string) (*actor.Actor, bool) {
	return s.world.Get(actorID)
}

// Viable reports whether the actor is alive and at the session location.
func (s *Session) Viable(actorID string) bool {
	a, ok := s.world.Get(actorID)
	if !ok {
		return false
	}
	return a.Alive() && a.Location == s.Location
}

// WeaponFor returns the actor's equipped weapon schema (Unarmed as the
// fallback) and its cached classification.
func (s *Session) WeaponFor(actorID string) (*actor.WeaponSchema, WeaponClass) {
	a, ok := s.world.Get(actorID)
	if !ok {
		return actor.Unarmed, WeaponMelee
	}
	schema := s.equipment.EquippedWeaponSchema(a)
	if schema == nil {
		schema = actor.Unarmed
	}
	class, cached := s.weaponClasses[schema.URN]
	if !cached {
		class = Classify(schema)
		s.weaponClasses[schema.URN] = class
	}
	return schema, class
}

// Distance returns the absolute distance in meters between two combatants.
func (s *Session) Distance(aID, bID string) (int, error) {
	ca, ok := s.byActor[aID]
	if !ok {
		return 0, NewError(CodeUnknownActor, "", "actor %s not in session", aID)
	}
	cb, ok := s.byActor[bID]
	if !ok {
		return 0, NewError(CodeUnknownActor, "", "actor %s not in session", bID)
	}
	d := ca.Position.Coordinate - cb.Position.Coordinate
	if d < 0 {
		d = -d
	}
	return d, nil
}

// newEvent builds a session event stamped with the current round and turn.
func (s *Session) newEvent(kind EventKind, actorID, trace string, payload map[string]any) Event {
	round, turn := 0, 0
	if s.CurrentTurn != nil {
		round, turn = s.CurrentTurn.Round, s.CurrentTurn.Turn
	}
	return Event{
		Kind:      kind,
		SessionID: s.ID,
		Trace:     trace,
		Round:     round,
		Turn:      turn,
		Actor:     actorID,
		Payload:   payload,
	}
}
