package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedActor is one roster entry in the actor seed file.
type SeedActor struct {
	Name      string  `yaml:"name"`
	Slug      string  `yaml:"slug"`
	ActorType string  `yaml:"actor_type"`
	FeedURL   string  `yaml:"feed_url"`
	LibAutor  float64 `yaml:"lib_autor"`
	IndivCol  float64 `yaml:"indiv_col"`
	NatioMon  float64 `yaml:"natio_mon"`
	ProgCons  float64 `yaml:"prog_cons"`
}

// ActorsConfig is the actor seed file: the roster loaded into storage at
// startup when not already present.
type ActorsConfig struct {
	Actors []SeedActor `yaml:"actors"`
}

// LoadActorsConfig parses the YAML seed file at path.
func LoadActorsConfig(path string) (*ActorsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading actors config: %w", err)
	}

	var cfg ActorsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing actors config: %w", err)
	}
	return &cfg, nil
}

// FindActorsConfig loads the seed file when it exists; a missing file yields
// an empty roster so startup can proceed without seeding.
func FindActorsConfig(path string) (*ActorsConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &ActorsConfig{}, nil
	}
	return LoadActorsConfig(path)
}
