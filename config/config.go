// Package config holds the configuration of a simulation scenario, read from YAML:
//
//	parties: 3
//	rounds: 48
//	delta: 0              # 0 for a synchronous network
//	liveness_bound: 16    # defaults to (parties+1)*4
//	variant: invalid      # baseline, inconsistent or invalid
//	corrupt: [2]
//	seed: "some seed"
package config

import (
	"fmt"
	"io/ioutil"

	"github.com/shaih/go-bbsim/communication"
	"github.com/shaih/go-bbsim/communication/fake"
	"github.com/shaih/go-bbsim/primitives/secret"
	"github.com/shaih/go-bbsim/protocols/broadcast"
	"gopkg.in/yaml.v2"
)

const defaultSeed = "go-bbsim"

// Config is a simulation scenario
type Config struct {
	Parties       int    `yaml:"parties"`
	Rounds        int    `yaml:"rounds"`
	Delta         int    `yaml:"delta"`
	LivenessBound int    `yaml:"liveness_bound"`
	Variant       string `yaml:"variant"`
	Corrupt       []int  `yaml:"corrupt"`
	Seed          string `yaml:"seed"`
}

// Parse parses a YAML scenario, applies defaults and validates it
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads and parses the YAML scenario at path
func Load(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Variant == "" {
		c.Variant = broadcast.Baseline.String()
	}
	if c.LivenessBound == 0 {
		c.LivenessBound = (c.Parties + 1) * broadcast.MaxRounds
	}
	if c.Seed == "" {
		c.Seed = defaultSeed
	}
}

// Validate checks the scenario is well formed
func (c *Config) Validate() error {
	if c.Parties < 1 {
		return fmt.Errorf("parties must be at least 1, got %d", c.Parties)
	}
	if c.Rounds < 0 {
		return fmt.Errorf("rounds must be non-negative, got %d", c.Rounds)
	}
	if c.Delta < 0 {
		return fmt.Errorf("delta must be non-negative, got %d", c.Delta)
	}
	if c.LivenessBound < 0 {
		return fmt.Errorf("liveness_bound must be non-negative, got %d", c.LivenessBound)
	}
	if _, err := broadcast.ParseVariant(c.Variant); err != nil {
		return err
	}
	seen := make(map[int]bool)
	for _, id := range c.Corrupt {
		if id < 0 || id >= c.Parties {
			return fmt.Errorf("corrupt party %d out of range [0,%d)", id, c.Parties)
		}
		if seen[id] {
			return fmt.Errorf("corrupt party %d listed twice", id)
		}
		seen[id] = true
	}
	return nil
}

// BroadcastVariant returns the broadcast variant of the scenario
func (c *Config) BroadcastVariant() broadcast.Variant {
	// Validate already checked the variant
	v, _ := broadcast.ParseVariant(c.Variant)
	return v
}

// IsCorrupt returns true if party id is corrupt
func (c *Config) IsCorrupt(id int) bool {
	for _, cid := range c.Corrupt {
		if cid == id {
			return true
		}
	}
	return false
}

// NewNetwork creates the network of the scenario: synchronous if delta is 0,
// partially synchronous with bound delta otherwise
func (c *Config) NewNetwork() (communication.Network, error) {
	if c.Delta == 0 {
		return fake.NewNetwork(), nil
	}
	net, err := fake.NewDelayedNetwork(c.Delta)
	if err != nil {
		return nil, err
	}
	return net, nil
}

// Keys derives the secret material of every party from the seed
func (c *Config) Keys() ([]secret.Key, error) {
	return secret.DeriveKeys([]byte(c.Seed), c.Parties)
}
