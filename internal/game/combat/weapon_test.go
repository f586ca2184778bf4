package combat_test

import (
	"testing"

	"github.com/industry-digital/flux-engine/internal/game/actor"
	"github.com/industry-digital/flux-engine/internal/game/combat"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		rng   actor.RangeProfile
		want  combat.WeaponClass
		reach int
	}{
		{"fist", actor.RangeProfile{Optimal: 0}, combat.WeaponMelee, 0},
		{"sword", actor.RangeProfile{Optimal: 1}, combat.WeaponMelee, 1},
		{"spear", actor.RangeProfile{Optimal: 2}, combat.WeaponReach, 2},
		{"bow", actor.RangeProfile{Optimal: 40, Max: 120, Falloff: 30}, combat.WeaponRanged, 120},
		{"thrown", actor.RangeProfile{Optimal: 10, Falloff: 5}, combat.WeaponRanged, 15},
		{"pistol at 2m optimal with falloff", actor.RangeProfile{Optimal: 2, Falloff: 8}, combat.WeaponRanged, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			schema := &actor.WeaponSchema{URN: "flux:weapon:" + tc.name, Range: tc.rng}
			if got := combat.Classify(schema); got != tc.want {
				t.Errorf("Classify(%s) = %v, want %v", tc.name, got, tc.want)
			}
			if got := combat.MaxEffectiveRange(schema); got != tc.reach {
				t.Errorf("MaxEffectiveRange(%s) = %d, want %d", tc.name, got, tc.reach)
			}
		})
	}
}

func TestWeaponClassString(t *testing.T) {
	if combat.WeaponMelee.String() != "MELEE" ||
		combat.WeaponReach.String() != "REACH" ||
		combat.WeaponRanged.String() != "RANGED" {
		t.Error("weapon class labels must match the wire names")
	}
}

func TestSession_WeaponFor_UnarmedFallback(t *testing.T) {
	f := newFixture(testContext(9), []member{
		{id: "flux:actor:alice", name: "Alice", team: "alpha", initiator: true},
		{id: "flux:actor:bob", name: "Bob", team: "beta"},
	})
	a, _ := f.world.Get("flux:actor:bob")
	a.Equipment.Weapon = nil

	schema, class := f.session.WeaponFor("flux:actor:bob")
	if schema.URN != actor.Unarmed.URN {
		t.Errorf("unarmed fallback URN = %q", schema.URN)
	}
	if class != combat.WeaponMelee {
		t.Errorf("unarmed class = %v, want MELEE", class)
	}
}
