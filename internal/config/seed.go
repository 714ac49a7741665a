package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedStock is one stock to create at startup.
type SeedStock struct {
	Name    string `yaml:"name"`
	Balance int64  `yaml:"balance"`
}

// Seed is the layout of the seed file:
//
//	stocks:
//	  - name: ACME
//	    balance: 100
type Seed struct {
	Stocks []SeedStock `yaml:"stocks"`
}

// LoadSeed reads and validates a YAML seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	for i, s := range seed.Stocks {
		if s.Name == "" {
			return nil, fmt.Errorf("seed stock %d: name is required", i)
		}
		if s.Balance < 0 {
			return nil, fmt.Errorf("seed stock %q: balance must be >= 0", s.Name)
		}
	}
	return &seed, nil
}
