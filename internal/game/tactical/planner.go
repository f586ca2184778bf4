package tactical

import (
	"math"

	"github.com/industry-digital/flux-engine/internal/game/combat"
	"github.com/industry-digital/flux-engine/internal/game/intent"
)

// SearchConfig bounds one planning call.
type SearchConfig struct {
	// MaxDepth is the maximum number of actions per plan.
	MaxDepth int
	// MinScoreThreshold rejects complete plans scoring below it.
	MinScoreThreshold float64
	// EnableEarlyTermination prunes branches whose optimistic bound cannot
	// beat the best complete plan.
	EnableEarlyTermination bool
	// NodeBudget is the soft cap on expanded nodes. Values below the
	// default are raised to it.
	NodeBudget int
}

// defaultNodeBudget is the minimum search budget.
const defaultNodeBudget = 10000

// apStep is the enumeration granularity for movement AP. The 0.5 grid is a
// design choice aligned with the 0.1 AP precision.
const apStep = 0.5

// ConfigFor returns the role-specific search bounds for a weapon class.
func ConfigFor(class combat.WeaponClass) SearchConfig {
	switch class {
	case combat.WeaponMelee:
		return SearchConfig{MaxDepth: 3, MinScoreThreshold: 0, EnableEarlyTermination: false, NodeBudget: defaultNodeBudget}
	case combat.WeaponReach:
		return SearchConfig{MaxDepth: 3, MinScoreThreshold: 25, EnableEarlyTermination: false, NodeBudget: defaultNodeBudget}
	default:
		return SearchConfig{MaxDepth: 4, MinScoreThreshold: 30, EnableEarlyTermination: true, NodeBudget: defaultNodeBudget}
	}
}

// Plan is a scored, executable action sequence.
type Plan struct {
	Actions []intent.Action
	Score   float64
}

// simState is the simulated combatant state carried down the search tree.
type simState struct {
	distance  int
	ap        float64
	hasTarget bool
	defended  bool
}

// searchNode is one frontier entry. Nodes reference their parent to
// reconstruct the action sequence without copying prefixes.
type searchNode struct {
	parent *searchNode
	action intent.Action
	score  float64
	state  simState
	depth  int
}

// Planner enumerates bounded-depth action sequences and returns the best.
type Planner struct {
	profile Profile
	cfg     SearchConfig
}

// NewPlanner creates a Planner.
//
// Precondition: cfg.MaxDepth >= 1.
func NewPlanner(profile Profile, cfg SearchConfig) *Planner {
	if cfg.MaxDepth < 1 {
		panic("tactical.NewPlanner: MaxDepth must be >= 1")
	}
	if cfg.NodeBudget < defaultNodeBudget {
		cfg.NodeBudget = defaultNodeBudget
	}
	return &Planner{profile: profile, cfg: cfg}
}

// Plan searches action sequences up to MaxDepth and returns the best plan.
//
// The search is deterministic: children are generated in the total action
// order (target < advance by ascending AP < retreat by ascending AP <
// strike < defend < cleave), so identical inputs always yield identical
// plans. Plans below MinScoreThreshold are rejected; when nothing
// qualifies, the returned plan has an empty action list.
//
// Postcondition: len(plan.Actions) <= MaxDepth; the plan's cumulative AP
// never exceeds the situation's remaining AP.
func (p *Planner) Plan(sit Situation) Plan {
	root := &searchNode{state: simState{
		distance:  sit.Distance,
		ap:        combat.CleanAP(sit.RemainingAP),
		hasTarget: sit.EnemyID != "",
	}}
	// The analyzer always resolves an enemy, but the actor may not have it
	// targeted yet; planning starts untargeted so a target action is
	// considered first.
	root.state.hasTarget = false

	optimistic := p.optimisticActionScore(sit)

	var best *searchNode
	bestScore := math.Inf(-1)

	finalize := func(n *searchNode) {
		if n.depth == 0 {
			return
		}
		if n.score > bestScore {
			best, bestScore = n, n.score
		}
	}

	stack := []*searchNode{root}
	expanded := 0

	for len(stack) > 0 && expanded < p.cfg.NodeBudget {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		expanded++

		if n.depth == p.cfg.MaxDepth || n.state.defended {
			finalize(n)
			continue
		}

		children := p.expand(sit, n)
		if len(children) == 0 {
			finalize(n)
			continue
		}

		if p.cfg.EnableEarlyTermination && best != nil {
			kept := children[:0]
			for _, child := range children {
				remaining := p.cfg.MaxDepth - child.depth
				if child.score+optimistic*float64(remaining) > bestScore {
					kept = append(kept, child)
				}
			}
			children = kept
			if len(children) == 0 {
				finalize(n)
				continue
			}
		}

		// Push in reverse so the lowest-ordered action is explored first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	if best == nil || bestScore < p.cfg.MinScoreThreshold {
		return Plan{Actions: []intent.Action{}}
	}
	return Plan{Actions: actionsOf(best), Score: bestScore}
}

// expand generates the legal children of n in the canonical action order.
func (p *Planner) expand(sit Situation, n *searchNode) []*searchNode {
	var children []*searchNode
	st := n.state

	// target
	if !st.hasTarget {
		act := intent.Action{Command: intent.CommandTarget, TargetID: sit.EnemyID}
		next := st
		next.hasTarget = true
		children = append(children, p.child(sit, n, act, Candidate{
			Action:         act,
			DistanceBefore: st.distance,
			DistanceAfter:  st.distance,
			AcquiresTarget: true,
		}, next))
	}

	// advance by ascending AP
	for ap := apStep; ap <= st.ap+1e-9; ap += apStep {
		spend := combat.CleanAP(ap)
		meters := int(math.Floor(sit.Speed * spend))
		if meters == 0 {
			continue
		}
		after := st.distance - meters
		if after < 0 {
			after = 0
		}
		act := intent.Action{Command: intent.CommandAdvance, Mode: combat.MoveByAP, Value: spend}
		next := st
		next.ap = combat.CleanAP(st.ap - spend)
		next.distance = after
		children = append(children, p.child(sit, n, act, Candidate{
			Action:         act,
			APCost:         spend,
			DistanceBefore: st.distance,
			DistanceAfter:  after,
		}, next))
	}

	// retreat by ascending AP
	for ap := apStep; ap <= st.ap+1e-9; ap += apStep {
		spend := combat.CleanAP(ap)
		meters := int(math.Floor(sit.Speed * spend))
		if meters == 0 {
			continue
		}
		after := st.distance + meters
		act := intent.Action{Command: intent.CommandRetreat, Mode: combat.MoveByAP, Value: spend}
		next := st
		next.ap = combat.CleanAP(st.ap - spend)
		next.distance = after
		children = append(children, p.child(sit, n, act, Candidate{
			Action:         act,
			APCost:         spend,
			DistanceBefore: st.distance,
			DistanceAfter:  after,
		}, next))
	}

	// strike
	if st.hasTarget && st.distance <= sit.WeaponRange && st.ap >= sit.WeaponAPCost && sit.WeaponAPCost > 0 {
		act := intent.Action{Command: intent.CommandAttack, Primitive: true, TargetID: sit.EnemyID}
		next := st
		next.ap = combat.CleanAP(st.ap - sit.WeaponAPCost)
		children = append(children, p.child(sit, n, act, Candidate{
			Action:         act,
			APCost:         sit.WeaponAPCost,
			DistanceBefore: st.distance,
			DistanceAfter:  st.distance,
		}, next))
	}

	// defend
	if st.ap > 0 {
		act := intent.Action{Command: intent.CommandDefend}
		next := st
		next.ap = 0
		next.defended = true
		children = append(children, p.child(sit, n, act, Candidate{
			Action:         act,
			APCost:         st.ap,
			DistanceBefore: st.distance,
			DistanceAfter:  st.distance,
		}, next))
	}

	// cleave
	if st.hasTarget && st.distance <= sit.WeaponRange && st.ap >= sit.WeaponAPCost && sit.WeaponAPCost > 0 {
		act := intent.Action{Command: intent.CommandCleave}
		next := st
		next.ap = combat.CleanAP(st.ap - sit.WeaponAPCost)
		children = append(children, p.child(sit, n, act, Candidate{
			Action:         act,
			APCost:         sit.WeaponAPCost,
			DistanceBefore: st.distance,
			DistanceAfter:  st.distance,
		}, next))
	}

	return children
}

func (p *Planner) child(sit Situation, parent *searchNode, act intent.Action, cand Candidate, state simState) *searchNode {
	return &searchNode{
		parent: parent,
		action: act,
		score:  parent.score + p.profile.Score(sit, cand),
		state:  state,
		depth:  parent.depth + 1,
	}
}

// optimisticActionScore bounds the score any single action can add, used
// for early-termination pruning.
func (p *Planner) optimisticActionScore(sit Situation) float64 {
	w := p.profile.Weights
	expected := sit.ExpectedDamage * sit.HitChance
	strike := w.Hit*sit.HitChance*10 + w.Damage*expected
	if sit.WeaponAPCost > 0 {
		strike += w.APEfficiency * expected / sit.WeaponAPCost
	}
	maxMove := sit.Speed * sit.RemainingAP
	movement := w.Positioning*maxMove + w.Safety*maxMove + w.APEfficiency*maxMove
	targeting := w.Targeting * 5
	return math.Max(strike, math.Max(movement, targeting)) + 1
}

// actionsOf reconstructs the action sequence from the node chain.
func actionsOf(n *searchNode) []intent.Action {
	var rev []intent.Action
	for cur := n; cur != nil && cur.depth > 0; cur = cur.parent {
		rev = append(rev, cur.action)
	}
	out := make([]intent.Action, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}
