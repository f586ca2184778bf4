package combat

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/industry-digital/flux-engine/internal/game/actor"
)

// MoveMode selects how a movement value is interpreted.
type MoveMode int

const (
	// MoveByAP spends the given AP and covers whatever distance that buys.
	MoveByAP MoveMode = iota
	// MoveByDistance covers the given distance and charges the derived AP.
	MoveByDistance
	// MoveMax spends the combatant's entire remaining AP.
	MoveMax
)

// String returns "AP", "DISTANCE", or "MAX".
func (m MoveMode) String() string {
	switch m {
	case MoveByAP:
		return "AP"
	case MoveByDistance:
		return "DISTANCE"
	default:
		return "MAX"
	}
}

// defendThresholdBase is the flat base of the defense threshold.
const defendThresholdBase = 10

// defendStanceBonus is the threshold bonus granted by Defend.
const defendStanceBonus = 4

// acting validates the common action preconditions and resolves the
// combatant. Failures are declared on the context.
func (s *Session) acting(actorID, trace string) (*Combatant, error) {
	if s.Status != StatusRunning {
		err := NewError(CodeIllegalTransition, trace, "action in %s session", s.Status)
		s.ctx.DeclareError(err.Message, trace)
		return nil, err
	}
	c, ok := s.byActor[actorID]
	if !ok {
		err := NewError(CodeUnknownActor, trace, "actor %s not in session", actorID)
		s.ctx.DeclareError(err.Message, trace)
		return nil, err
	}
	return c, nil
}

// ensureTrace fills an omitted trace from the context.
func (s *Session) ensureTrace(trace string) string {
	if trace == "" {
		return s.ctx.Uniqid()
	}
	return trace
}

// Target sets the combatant's current target. Cost 0.
//
// Postcondition: on success the combatant's target is targetID.
func (s *Session) Target(actorID, targetID, trace string) ([]Event, error) {
	trace = s.ensureTrace(trace)
	c, err := s.acting(actorID, trace)
	if err != nil {
		return nil, err
	}
	if _, ok := s.byActor[targetID]; !ok {
		terr := NewError(CodeUnknownActor, trace, "target %s not in session", targetID)
		s.ctx.DeclareError(terr.Message, trace)
		return nil, terr
	}
	c.Target = targetID
	s.recordAction(actorID, "TARGET", trace, 0)
	return []Event{}, nil
}

// Advance moves the combatant toward its target (or its facing direction
// when untargeted). The battlefield clamps the destination; clamping does
// not fail the action.
//
// Postcondition: on success AP and energy are deducted, the coordinate is
// updated, and an actor:did:move event is emitted. With autoDone set, the
// turn is yielded when no AP remains afterwards.
func (s *Session) Advance(actorID string, mode MoveMode, value float64, targetID string, autoDone bool, trace string) ([]Event, error) {
	return s.move(actorID, mode, value, targetID, autoDone, false, trace)
}

// Retreat is Advance with the direction reversed.
func (s *Session) Retreat(actorID string, mode MoveMode, value float64, targetID string, autoDone bool, trace string) ([]Event, error) {
	return s.move(actorID, mode, value, targetID, autoDone, true, trace)
}

func (s *Session) move(actorID string, mode MoveMode, value float64, targetID string, autoDone, reverse bool, trace string) ([]Event, error) {
	trace = s.ensureTrace(trace)
	c, err := s.acting(actorID, trace)
	if err != nil {
		return nil, err
	}
	a, ok := s.world.Get(actorID)
	if !ok {
		aerr := NewError(CodeUnknownActor, trace, "actor %s not found", actorID)
		s.ctx.DeclareError(aerr.Message, trace)
		return nil, aerr
	}

	if targetID != "" {
		if _, ok := s.byActor[targetID]; !ok {
			terr := NewError(CodeUnknownActor, trace, "target %s not in session", targetID)
			s.ctx.DeclareError(terr.Message, trace)
			return nil, terr
		}
		c.Target = targetID
	}

	mass := actor.ComputeActorMass(a)
	var cost MoveCost
	switch mode {
	case MoveByDistance:
		cost = MovementCostByDistance(a.Stats.Pow, a.Stats.Fin, mass, int(value))
	case MoveByAP:
		ap := value
		if ap == AllRemainingAP {
			ap = c.AP.Remaining()
		}
		cost = MovementCostByAP(a.Stats.Pow, a.Stats.Fin, mass, ap)
	case MoveMax:
		cost = MovementCostByAP(a.Stats.Pow, a.Stats.Fin, mass, c.AP.Remaining())
	}

	if cost.Distance == 0 && cost.AP == 0 {
		// Nothing to do; zero-value moves are a no-op, not an error.
		return []Event{}, nil
	}

	if err := c.AP.Deduct(cost.AP, trace); err != nil {
		s.ctx.DeclareError(err.Error(), trace)
		return nil, err
	}
	c.Energy.Deduct(cost.Energy)

	dir := s.moveDirection(c, reverse)
	from := c.Position.Coordinate
	to := s.Battlefield.Clamp(from + dir*cost.Distance)
	c.Position.Coordinate = to

	command := "ADVANCE"
	if reverse {
		command = "RETREAT"
	}
	s.recordAction(actorID, command, trace, cost.AP)

	events := []Event{s.ctx.DeclareEvent(s.newEvent(EventActorMoved, actorID, trace, map[string]any{
		"from":     from,
		"to":       to,
		"distance": cost.Distance,
		"ap":       cost.AP,
		"energy":   cost.Energy,
		"mode":     mode.String(),
	}))}

	if autoDone && !c.CanAct() {
		doneEvents, _ := s.Done(actorID, trace)
		events = append(events, doneEvents...)
	}
	return events, nil
}

// moveDirection resolves the signed advance direction: toward the target
// when one is set, otherwise along the facing. reverse flips it.
func (s *Session) moveDirection(c *Combatant, reverse bool) int {
	dir := 1
	if c.Position.Facing == FacingLeft {
		dir = -1
	}
	if c.Target != "" {
		if t, ok := s.byActor[c.Target]; ok {
			if t.Position.Coordinate < c.Position.Coordinate {
				dir = -1
			} else {
				dir = 1
			}
		}
	}
	if reverse {
		dir = -dir
	}
	return dir
}

// Attack is the high-level facade: an optional Target followed by a Strike.
// The facade itself costs nothing.
func (s *Session) Attack(actorID, targetID, trace string) ([]Event, error) {
	trace = s.ensureTrace(trace)
	var events []Event
	if targetID != "" {
		targetEvents, err := s.Target(actorID, targetID, trace)
		if err != nil {
			return nil, err
		}
		events = append(events, targetEvents...)
	}
	strikeEvents, err := s.Strike(actorID, "", trace)
	if err != nil {
		return events, err
	}
	return append(events, strikeEvents...), nil
}

// Strike is the primitive attack carrying the real weapon cost.
//
// Fails with OutOfRange when the target is farther than the weapon's
// maximum effective range. On a hit, damage is applied to the target's
// actor record; the combatant death event is emitted only here, never by
// external HP mutations.
func (s *Session) Strike(actorID, targetID, trace string) ([]Event, error) {
	trace = s.ensureTrace(trace)
	c, err := s.acting(actorID, trace)
	if err != nil {
		return nil, err
	}

	if targetID == "" {
		targetID = c.Target
	}
	if targetID == "" {
		terr := NewError(CodeUnknownActor, trace, "no target selected")
		s.ctx.DeclareError(terr.Message, trace)
		return nil, terr
	}
	target, ok := s.byActor[targetID]
	if !ok {
		terr := NewError(CodeUnknownActor, trace, "target %s not in session", targetID)
		s.ctx.DeclareError(terr.Message, trace)
		return nil, terr
	}
	c.Target = targetID

	schema, _ := s.WeaponFor(actorID)
	distance, _ := s.Distance(actorID, targetID)
	if maxRange := MaxEffectiveRange(schema); distance > maxRange {
		rerr := NewError(CodeOutOfRange, trace,
			"target at %dm exceeds weapon range %dm", distance, maxRange)
		s.ctx.DeclareError(rerr.Message, trace)
		return nil, rerr
	}

	a, ok := s.world.Get(actorID)
	if !ok {
		aerr := NewError(CodeUnknownActor, trace, "actor %s not found", actorID)
		s.ctx.DeclareError(aerr.Message, trace)
		return nil, aerr
	}
	apCost := WeaponAPCost(schema.Timers.Attack, a.SkillRank(schema.Skill), s.maxSkillRank)
	if err := c.AP.Deduct(apCost, trace); err != nil {
		s.ctx.DeclareError(err.Error(), trace)
		return nil, err
	}
	s.recordAction(actorID, "STRIKE", trace, apCost)

	events, err := s.resolveAttack(c, target, schema, trace)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// resolveAttack rolls to hit, applies damage, and emits attack and death
// events. Used by both Strike and Cleave.
func (s *Session) resolveAttack(c, target *Combatant, schema *actor.WeaponSchema, trace string) ([]Event, error) {
	attacker, ok := s.world.Get(c.ActorID)
	if !ok {
		aerr := NewError(CodeUnknownActor, trace, "actor %s not found", c.ActorID)
		s.ctx.DeclareError(aerr.Message, trace)
		return nil, aerr
	}
	defender, ok := s.world.Get(target.ActorID)
	if !ok {
		terr := NewError(CodeUnknownActor, trace, "target actor %s not found", target.ActorID)
		s.ctx.DeclareError(terr.Message, trace)
		return nil, terr
	}

	roll, err := s.ctx.Roll("1d20")
	if err != nil {
		ierr := NewError(CodeInternalInvariant, trace, "attack roll: %v", err)
		s.ctx.DeclareError(ierr.Message, trace)
		return nil, ierr
	}
	roll = roll.WithModifier("accuracy", schema.Accuracy)
	if rank := attacker.SkillRank(schema.Skill); rank > 0 {
		roll = roll.WithModifier("skill:"+schema.Skill, rank/10)
	}

	total := roll.Result()
	total = s.hookInt("on_attack_roll", total, trace,
		lua.LString(c.ActorID), lua.LString(target.ActorID), lua.LNumber(float64(total)))

	threshold := defendThresholdBase + actor.StatBonus(defender.Stats.Fin)
	if target.Defending {
		threshold += defendStanceBonus
	}
	hit := total >= threshold

	payload := map[string]any{
		"target":    target.ActorID,
		"weapon":    schema.URN,
		"natural":   roll.Natural,
		"rollTotal": total,
		"threshold": threshold,
		"hit":       hit,
		"damage":    0,
	}

	var events []Event
	if hit {
		dmgRoll, err := s.ctx.Roll(schema.Damage)
		if err != nil {
			ierr := NewError(CodeInternalInvariant, trace, "damage roll %q: %v", schema.Damage, err)
			s.ctx.DeclareError(ierr.Message, trace)
			return nil, ierr
		}
		damage := dmgRoll.Result()
		damage = s.hookInt("on_damage_roll", damage, trace,
			lua.LString(c.ActorID), lua.LString(target.ActorID), lua.LNumber(float64(damage)))
		if damage < 0 {
			damage = 0
		}
		remaining, err := s.world.ApplyDamage(target.ActorID, damage)
		if err != nil {
			s.ctx.DeclareError(err.Error(), trace)
			return nil, NewError(CodeInternalInvariant, trace, "applying damage: %v", err)
		}
		payload["damage"] = damage
		payload["remainingHp"] = remaining

		events = append(events, s.ctx.DeclareEvent(s.newEvent(EventCombatantAttacked, c.ActorID, trace, payload)))

		if remaining == 0 {
			events = append(events,
				s.ctx.DeclareEvent(s.newEvent(EventCombatantDied, target.ActorID, trace, map[string]any{
					"killedBy": c.ActorID,
				})),
				s.ctx.DeclareEvent(s.newEvent(EventActorDied, target.ActorID, trace, nil)),
			)
		}
	} else {
		events = append(events, s.ctx.DeclareEvent(s.newEvent(EventCombatantAttacked, c.ActorID, trace, payload)))
	}
	return events, nil
}

// hookInt consults a Lua hook for an integer override; non-number returns
// and hook errors leave the value unchanged.
func (s *Session) hookInt(hook string, value int, trace string, args ...lua.LValue) int {
	hooks := s.ctx.Hooks()
	if hooks == nil {
		return value
	}
	ret, err := hooks.CallHook(s.Location, hook, args...)
	if err != nil {
		s.ctx.DeclareError("script hook "+hook+": "+err.Error(), trace)
		return value
	}
	if n, ok := ret.(lua.LNumber); ok {
		return int(n)
	}
	return value
}

// Cleave strikes every viable enemy within weapon range, for a single
// weapon AP cost.
//
// Fails with OutOfRange when no enemy is within range.
func (s *Session) Cleave(actorID, trace string) ([]Event, error) {
	trace = s.ensureTrace(trace)
	c, err := s.acting(actorID, trace)
	if err != nil {
		return nil, err
	}

	schema, _ := s.WeaponFor(actorID)
	maxRange := MaxEffectiveRange(schema)

	var targets []*Combatant
	for _, other := range s.combatants {
		if other.Team == c.Team || !s.Viable(other.ActorID) {
			continue
		}
		if d, _ := s.Distance(actorID, other.ActorID); d <= maxRange {
			targets = append(targets, other)
		}
	}
	if len(targets) == 0 {
		rerr := NewError(CodeOutOfRange, trace, "no enemies within %dm", maxRange)
		s.ctx.DeclareError(rerr.Message, trace)
		return nil, rerr
	}

	a, ok := s.world.Get(actorID)
	if !ok {
		aerr := NewError(CodeUnknownActor, trace, "actor %s not found", actorID)
		s.ctx.DeclareError(aerr.Message, trace)
		return nil, aerr
	}
	apCost := WeaponAPCost(schema.Timers.Attack, a.SkillRank(schema.Skill), s.maxSkillRank)
	if err := c.AP.Deduct(apCost, trace); err != nil {
		s.ctx.DeclareError(err.Error(), trace)
		return nil, err
	}
	s.recordAction(actorID, "CLEAVE", trace, apCost)

	var events []Event
	for _, target := range targets {
		attackEvents, err := s.resolveAttack(c, target, schema, trace)
		if err != nil {
			return events, err
		}
		events = append(events, attackEvents...)
	}
	return events, nil
}

// Defend consumes all remaining AP and grants a defensive stance until the
// combatant's next turn. The cost is never negative.
func (s *Session) Defend(actorID, trace string) ([]Event, error) {
	trace = s.ensureTrace(trace)
	c, err := s.acting(actorID, trace)
	if err != nil {
		return nil, err
	}
	cost := c.AP.Remaining()
	if cost > 0 {
		if err := c.AP.Deduct(cost, trace); err != nil {
			s.ctx.DeclareError(err.Error(), trace)
			return nil, err
		}
	}
	c.Defending = true
	s.recordAction(actorID, "DEFEND", trace, cost)
	return []Event{}, nil
}

// Done explicitly yields the rest of the turn and advances the scheduler.
func (s *Session) Done(actorID, trace string) ([]Event, error) {
	trace = s.ensureTrace(trace)
	if _, err := s.acting(actorID, trace); err != nil {
		return nil, err
	}
	s.recordAction(actorID, "DONE", trace, 0)
	return s.AdvanceTurn(trace), nil
}

// CanAct reports whether the combatant has AP left this turn.
func (s *Session) CanAct(actorID string) bool {
	c, ok := s.byActor[actorID]
	return ok && c.CanAct()
}
