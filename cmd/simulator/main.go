// Package main runs a demonstration combat session: two teams of
// AI-controlled combatants fight on the 1-D battlefield until one side wins.
package main

import (
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/industry-digital/flux-engine/internal/config"
	"github.com/industry-digital/flux-engine/internal/game/actor"
	"github.com/industry-digital/flux-engine/internal/game/combat"
	"github.com/industry-digital/flux-engine/internal/game/dice"
	"github.com/industry-digital/flux-engine/internal/game/intent"
	"github.com/industry-digital/flux-engine/internal/game/tactical"
	"github.com/industry-digital/flux-engine/internal/observability"
	"github.com/industry-digital/flux-engine/internal/scripting"
)

// maxRounds stops a stalemate simulation.
const maxRounds = 50

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (optional)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	src := dice.NewCryptoSource()

	var ctxOpts []combat.ContextOption
	if cfg.Scripting.Enabled && cfg.Scripting.ScriptsDir != "" {
		roller := dice.NewLoggedRoller(src, logger)
		mgr := scripting.NewManager(roller, logger)
		if err := mgr.LoadGlobal(cfg.Scripting.ScriptsDir, 0); err != nil {
			logger.Fatal("loading hook scripts", zap.Error(err))
		}
		defer mgr.Close()
		ctxOpts = append(ctxOpts, combat.WithScriptHooks(mgr))
	}

	weights := tactical.DefaultWeightSet()
	if cfg.Planner.WeightsDir != "" {
		weights, err = tactical.LoadWeightSet(cfg.Planner.WeightsDir)
		if err != nil {
			logger.Fatal("loading planner weights", zap.Error(err))
		}
	}

	world := actor.NewRegistry()
	location := "flux:location:arena"
	for _, a := range demoActors(location) {
		if err := world.Put(a); err != nil {
			logger.Fatal("registering actor", zap.Error(err))
		}
	}

	ctx := combat.NewContext(logger, src, ctxOpts...)
	session := combat.NewSession(ctx, world, actor.NewEquipmentAPI(), combat.SessionParams{
		Location:     location,
		Battlefield:  combat.NewBattlefield(cfg.Battlefield.Length, cfg.Battlefield.Margin),
		TurnDuration: cfg.Combat.TurnDurationSeconds,
		MaxSkillRank: cfg.Combat.MaxSkillRank,
		TeamSpread:   cfg.Battlefield.TeamSpread,
	})

	roster := []struct {
		id        string
		team      string
		initiator bool
	}{
		{"flux:actor:asha", "vanguard", true},
		{"flux:actor:brom", "vanguard", false},
		{"flux:actor:cael", "raiders", false},
		{"flux:actor:dara", "raiders", false},
	}
	for _, r := range roster {
		if _, err := session.AddCombatant(r.id, r.team, r.initiator); err != nil {
			logger.Fatal("adding combatant", zap.String("actor", r.id), zap.Error(err))
		}
	}

	if _, err := session.StartCombat(combat.StartOptions{}); err != nil {
		logger.Fatal("starting combat", zap.Error(err))
	}
	logger.Info("combat started", zap.String("session", session.ID))

	executor := intent.NewExecutor()
	for session.Status == combat.StatusRunning {
		if session.CurrentTurn == nil || session.CurrentTurn.Round > maxRounds {
			break
		}
		actorID := session.CurrentTurn.ActorID

		if dead := session.CheckForDeaths(); len(dead) > 0 {
			logger.Info("combatants down", zap.Strings("actors", dead))
		}
		if session.CheckVictoryConditions() {
			if _, err := session.EndCombat(""); err != nil {
				logger.Fatal("ending combat", zap.Error(err))
			}
			break
		}

		runTurn(session, executor, weights, cfg.Planner.NodeBudget, actorID, logger)
	}

	if session.Status == combat.StatusRunning {
		if _, err := session.EndCombat(""); err != nil {
			logger.Fatal("ending combat", zap.Error(err))
		}
	}

	for _, e := range ctx.DeclaredEvents(nil) {
		logger.Info("event",
			zap.String("kind", string(e.Kind)),
			zap.Int("round", e.Round),
			zap.Int("turn", e.Turn),
			zap.String("actor", e.Actor),
		)
	}
	logger.Info("simulation complete",
		zap.Int("turns", len(session.CompletedTurns)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// runTurn plans and executes one combatant's turn.
func runTurn(session *combat.Session, executor *intent.Executor, weights tactical.WeightSet, nodeBudget int, actorID string, logger *zap.Logger) {
	sit, err := tactical.Analyze(session, actorID)
	if err != nil {
		session.Done(actorID, "")
		return
	}

	profile := tactical.ProfileFor(sit.WeaponClass, sit.WeaponOptimal, weights)
	cfg := tactical.ConfigFor(sit.WeaponClass)
	if nodeBudget > cfg.NodeBudget {
		cfg.NodeBudget = nodeBudget
	}
	plan := tactical.NewPlanner(profile, cfg).Plan(sit)

	logger.Debug("plan",
		zap.String("actor", actorID),
		zap.String("tactic", profile.Tactic.String()),
		zap.Int("actions", len(plan.Actions)),
		zap.Float64("score", plan.Score),
	)

	if len(plan.Actions) == 0 {
		session.Done(actorID, "")
		return
	}
	executor.Execute(session, actorID, plan.Actions, "")

	// The executor yields the turn when AP runs dry; if the plan left some
	// AP unspent, yield explicitly so the session keeps moving.
	if session.CurrentTurn != nil && session.CurrentTurn.ActorID == actorID {
		session.Done(actorID, "")
	}
}

// demoActors builds the demonstration cast: a sword fighter and a spear
// carrier against a spear carrier and an archer.
func demoActors(location string) []*actor.Actor {
	sword := &actor.WeaponSchema{
		URN:      "flux:weapon:arming-sword",
		BaseMass: 1400,
		Range:    actor.RangeProfile{Optimal: 1},
		Timers:   actor.Timers{Attack: 1800, Setup: 500},
		Skill:    "blades",
		Accuracy: 2,
		Damage:   "1d8+2",
	}
	spear := &actor.WeaponSchema{
		URN:      "flux:weapon:boar-spear",
		BaseMass: 2100,
		Range:    actor.RangeProfile{Optimal: 2},
		Timers:   actor.Timers{Attack: 2200, Setup: 600},
		Skill:    "polearms",
		Accuracy: 1,
		Damage:   "1d10+1",
	}
	bow := &actor.WeaponSchema{
		URN:      "flux:weapon:recurve-bow",
		BaseMass: 900,
		Range:    actor.RangeProfile{Optimal: 40, Max: 120, Falloff: 30},
		Timers:   actor.Timers{Attack: 2600, Setup: 800, Aim: 400, Reload: 1200},
		Skill:    "archery",
		Accuracy: 3,
		Damage:   "1d6+1",
	}

	newActor := func(id, name string, stats actor.Stats, hp int, weapon *actor.WeaponSchema, skills map[string]int) *actor.Actor {
		return &actor.Actor{
			ID:       id,
			Name:     name,
			Location: location,
			Stats:    stats,
			HP:       actor.HP{Nat: actor.Pool{Cur: hp, Max: hp}, Eff: actor.Pool{Cur: hp, Max: hp}},
			Skills:   skills,
			Equipment: actor.Equipment{
				Weapon: weapon,
				Worn:   []actor.Item{{URN: "flux:armor:jack", Mass: 6000}},
			},
		}
	}

	return []*actor.Actor{
		newActor("flux:actor:asha", "Asha", actor.Stats{Pow: 14, Fin: 12, Res: 13, Int: 10, Per: 12, Mem: 10}, 34, sword, map[string]int{"blades": 40}),
		newActor("flux:actor:brom", "Brom", actor.Stats{Pow: 15, Fin: 10, Res: 14, Int: 9, Per: 10, Mem: 10}, 38, spear, map[string]int{"polearms": 30}),
		newActor("flux:actor:cael", "Cael", actor.Stats{Pow: 12, Fin: 14, Res: 11, Int: 11, Per: 14, Mem: 10}, 30, bow, map[string]int{"archery": 50}),
		newActor("flux:actor:dara", "Dara", actor.Stats{Pow: 13, Fin: 13, Res: 12, Int: 10, Per: 11, Mem: 10}, 32, spear, map[string]int{"polearms": 25}),
	}
}
