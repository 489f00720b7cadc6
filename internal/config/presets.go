package config

import "sort"

var Presets = map[string]*Config{
	"baseline-bates": Default(),
	"cold-soak": func() *Config {
		cfg := Default()
		cfg.Sim.GrainTemp = 253.15
		return cfg
	}(),
	"vacuum-upper-stage": func() *Config {
		cfg := Default()
		cfg.Nozzle.ExpansionRatio = 40
		cfg.Sim.Ambient = 0
		return cfg
	}(),
	"star-demo": func() *Config {
		cfg := Default()
		cfg.Grain.Family = "star"
		cfg.Grain.TableRadii = []float64{0.02, 0.04, 0.06, 0.08, 0.10}
		cfg.Grain.TableAreas = []float64{0.110, 0.140, 0.150, 0.135, 0.090}
		return cfg
	}(),
	"hybrid-lab": {
		Motor: "hybrid",
		Propellant: PropellantConfig{
			Name:      "htpb",
			Density:   930,
			RefTemp:   DefaultSoakTemp,
			CStar:     1550,
			Gamma:     1.22,
			MolWeight: 26,
		},
		Grain: GrainConfig{
			Family:      "single_port",
			OuterRadius: 0.06,
			PortRadius:  0.015,
			Length:      0.6,
		},
		Nozzle: NozzleConfig{
			ThroatArea:     4.0e-4,
			ExpansionRatio: 4,
			DischargeCoeff: 1,
		},
		Hybrid: HybridConfig{
			BurnCoeff: 2.0e-4,
			FluxExp:   0.45,
			Oxidizer:  "n2o",
		},
		Feed: FeedConfig{Type: "constant", Rate: 0.3},
		Sim: SimConfig{
			Dt:        DefaultDt,
			MaxTime:   DefaultMaxTime,
			Ambient:   DefaultAmbient,
			GrainTemp: DefaultSoakTemp,
		},
	},
	"hybrid-ramp": {
		Motor: "hybrid",
		Propellant: PropellantConfig{
			Name:      "paraffin",
			Density:   900,
			RefTemp:   DefaultSoakTemp,
			CStar:     1600,
			Gamma:     1.2,
			MolWeight: 25,
		},
		Grain: GrainConfig{
			Family:      "single_port",
			OuterRadius: 0.05,
			PortRadius:  0.012,
			Length:      0.5,
		},
		Nozzle: NozzleConfig{
			ThroatArea:     3.5e-4,
			ExpansionRatio: 5,
			DischargeCoeff: 0.98,
		},
		Hybrid: HybridConfig{
			BurnCoeff: 1.5e-4,
			FluxExp:   0.5,
			Oxidizer:  "lox",
		},
		Feed: FeedConfig{Type: "ramp", Start: 0.05, End: 0.35, Duration: 3},
		Sim: SimConfig{
			Dt:        DefaultDt,
			MaxTime:   DefaultMaxTime,
			Ambient:   DefaultAmbient,
			GrainTemp: DefaultSoakTemp,
		},
	},
}

// GetPreset returns a private copy; callers may override fields without
// disturbing the preset table.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.clone()
}

func (c *Config) clone() *Config {
	out := *c
	out.Grain.TableRadii = append([]float64(nil), c.Grain.TableRadii...)
	out.Grain.TableAreas = append([]float64(nil), c.Grain.TableAreas...)
	out.Feed.Times = append([]float64(nil), c.Feed.Times...)
	out.Feed.Rates = append([]float64(nil), c.Feed.Rates...)
	return &out
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
