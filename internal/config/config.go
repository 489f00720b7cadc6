// Package config loads and saves YAML motor definitions and turns them into
// runnable simulation drivers.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultMaxTime  = 60.0
	DefaultAmbient  = 101325.0
	DefaultSoakTemp = 293.15
)

// Config is one complete motor definition plus stepping parameters.
type Config struct {
	Motor      string           `yaml:"motor"` // "solid" or "hybrid"
	Propellant PropellantConfig `yaml:"propellant"`
	Grain      GrainConfig      `yaml:"grain"`
	Nozzle     NozzleConfig     `yaml:"nozzle"`
	Hybrid     HybridConfig     `yaml:"hybrid,omitempty"`
	Feed       FeedConfig       `yaml:"feed,omitempty"`
	Sim        SimConfig        `yaml:"sim"`
}

type PropellantConfig struct {
	Name        string  `yaml:"name"`
	Density     float64 `yaml:"density"`
	BurnCoeff   float64 `yaml:"a"`
	PressureExp float64 `yaml:"n"`
	TempSens    float64 `yaml:"sigma_p"`
	RefTemp     float64 `yaml:"t_ref"`
	MinTemp     float64 `yaml:"t_min"`
	MaxTemp     float64 `yaml:"t_max"`
	CStar       float64 `yaml:"c_star"`
	Gamma       float64 `yaml:"gamma"`
	MolWeight   float64 `yaml:"mol_weight"`
}

type GrainConfig struct {
	Family      string    `yaml:"family"`
	OuterRadius float64   `yaml:"outer_radius"`
	PortRadius  float64   `yaml:"port_radius"`
	Length      float64   `yaml:"length"`
	TableRadii  []float64 `yaml:"table_radii,omitempty"`
	TableAreas  []float64 `yaml:"table_areas,omitempty"`
}

type NozzleConfig struct {
	ThroatArea     float64 `yaml:"throat_area"`
	ExpansionRatio float64 `yaml:"expansion_ratio"`
	DischargeCoeff float64 `yaml:"discharge_coeff"`
}

type HybridConfig struct {
	BurnCoeff float64 `yaml:"a"`
	FluxExp   float64 `yaml:"n"`
	Vortex    float64 `yaml:"vortex"`
	Catalytic float64 `yaml:"catalytic"`
	Roughness float64 `yaml:"roughness"`
	Oxidizer  string  `yaml:"oxidizer"`
}

type FeedConfig struct {
	Type     string    `yaml:"type"` // constant, ramp, table
	Rate     float64   `yaml:"rate"`
	Start    float64   `yaml:"start"`
	End      float64   `yaml:"end"`
	Duration float64   `yaml:"duration"`
	Times    []float64 `yaml:"times,omitempty"`
	Rates    []float64 `yaml:"rates,omitempty"`
}

type SimConfig struct {
	Dt            float64 `yaml:"dt"`
	MaxTime       float64 `yaml:"max_time"`
	Ambient       float64 `yaml:"ambient_pressure"`
	GrainTemp     float64 `yaml:"grain_temp"`
	RelTol        float64 `yaml:"rel_tol"`
	AbsTol        float64 `yaml:"abs_tol"`
	MaxIterations int     `yaml:"max_iterations"`
	AdaptiveRetry bool    `yaml:"adaptive"`
}

// Default returns the baseline solid-motor configuration.
func Default() *Config {
	return &Config{
		Motor: "solid",
		Propellant: PropellantConfig{
			Name:        "apcp",
			Density:     1800,
			BurnCoeff:   2.1e-5,
			PressureExp: 0.35,
			TempSens:    0.002,
			RefTemp:     DefaultSoakTemp,
			CStar:       1520,
			Gamma:       1.2,
			MolWeight:   24,
		},
		Grain: GrainConfig{
			Family:      "bates",
			OuterRadius: 0.10,
			PortRadius:  0.02,
			Length:      0.5,
		},
		Nozzle: NozzleConfig{
			ThroatArea:     7.07e-4,
			ExpansionRatio: 4,
			DischargeCoeff: 1,
		},
		Sim: SimConfig{
			Dt:        DefaultDt,
			MaxTime:   DefaultMaxTime,
			Ambient:   DefaultAmbient,
			GrainTemp: DefaultSoakTemp,
		},
	}
}

// Load reads a YAML definition, layered over Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects definitions that cannot possibly run. Deeper physical
// validation belongs to the component constructors.
func (c *Config) Validate() error {
	switch c.Motor {
	case "solid", "hybrid":
	default:
		return fmt.Errorf("config: unknown motor type %q", c.Motor)
	}
	if c.Propellant.Density <= 0 {
		return fmt.Errorf("config: propellant density must be positive, got %g", c.Propellant.Density)
	}
	if c.Grain.OuterRadius <= 0 || c.Grain.Length <= 0 {
		return fmt.Errorf("config: grain dimensions must be positive")
	}
	if c.Grain.PortRadius > c.Grain.OuterRadius {
		return fmt.Errorf("config: port radius %g exceeds outer radius %g", c.Grain.PortRadius, c.Grain.OuterRadius)
	}
	if c.Nozzle.ThroatArea <= 0 {
		return fmt.Errorf("config: throat area must be positive, got %g", c.Nozzle.ThroatArea)
	}
	if c.Nozzle.ExpansionRatio < 1 {
		return fmt.Errorf("config: expansion ratio must be >= 1, got %g", c.Nozzle.ExpansionRatio)
	}
	if c.Sim.Dt <= 0 || c.Sim.MaxTime <= 0 {
		return fmt.Errorf("config: dt and max_time must be positive")
	}
	if c.Motor == "hybrid" {
		if c.Hybrid.BurnCoeff <= 0 {
			return fmt.Errorf("config: hybrid burn coefficient must be positive")
		}
		switch c.Feed.Type {
		case "constant", "ramp", "table":
		case "":
			return fmt.Errorf("config: hybrid motor needs a feed schedule")
		default:
			return fmt.Errorf("config: unknown feed type %q", c.Feed.Type)
		}
	}
	return nil
}
