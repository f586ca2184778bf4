package tactical

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WeightSet holds one Weights record per weapon class.
type WeightSet struct {
	Melee  Weights `yaml:"melee"`
	Reach  Weights `yaml:"reach"`
	Ranged Weights `yaml:"ranged"`
}

// weightsFile wraps the YAML top-level key.
type weightsFile struct {
	Profiles WeightSet `yaml:"profiles"`
}

// DefaultWeightSet returns the compiled-in scoring weights.
func DefaultWeightSet() WeightSet {
	return WeightSet{
		Melee: Weights{
			Hit: 1.0, Damage: 1.5, APEfficiency: 1.0,
			Positioning: 2.0, Safety: 0.1, Targeting: 1.0,
		},
		Reach: Weights{
			Hit: 1.0, Damage: 1.2, APEfficiency: 1.0,
			Positioning: 2.5, Safety: 0.5, Targeting: 1.0,
		},
		Ranged: Weights{
			Hit: 1.2, Damage: 1.0, APEfficiency: 1.0,
			Positioning: 1.5, Safety: 1.5, Targeting: 1.0,
		},
	}
}

// LoadWeightSet reads scoring weights from a YAML file.
//
// Precondition: path must be a readable YAML file with a top-level
// "profiles" key.
// Postcondition: returns an error when any weight is negative.
func LoadWeightSet(path string) (WeightSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WeightSet{}, fmt.Errorf("tactical.LoadWeightSet: reading %q: %w", path, err)
	}
	var f weightsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return WeightSet{}, fmt.Errorf("tactical.LoadWeightSet: parsing %q: %w", path, err)
	}
	ws := f.Profiles
	for name, w := range map[string]Weights{"melee": ws.Melee, "reach": ws.Reach, "ranged": ws.Ranged} {
		if w.Hit < 0 || w.Damage < 0 || w.APEfficiency < 0 || w.Positioning < 0 || w.Safety < 0 || w.Targeting < 0 {
			return WeightSet{}, fmt.Errorf("tactical.LoadWeightSet: %s has a negative weight", name)
		}
	}
	return ws, nil
}
