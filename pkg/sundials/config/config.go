// Package config loads problem files for the sundials-go command.
//
// A problem file is YAML:
//
//	kind: roots
//	backend: reference
//	y0: [1]
//	rate: 1
//	threshold: 0.5
//	tout: 2
//	outputs: 4
//	cvode:
//	  lmm: bdf
//	  rtol: 1e-6
//	  atol: 1e-9
//
// The kinds are decay (y' = -rate*y), roots (decay with a root at
// y = threshold) and sqrt (solve u^2 = target with KINSOL).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sunml/sundials-go/pkg/sundials"
	"github.com/sunml/sundials-go/pkg/sundials/cvode"
	"github.com/sunml/sundials-go/pkg/sundials/kinsol"
)

// BackendEnv overrides the backend named in a problem file.
const BackendEnv = "SUNDIALS_BACKEND"

// Problem is a demo problem read from a file.
type Problem struct {
	Kind    string `yaml:"kind" validate:"required,oneof=decay roots sqrt"`
	Backend string `yaml:"backend" validate:"omitempty,oneof=auto native reference"`

	Y0        []float64    `yaml:"y0" validate:"omitempty,dive,finite"`
	Rate      float64      `yaml:"rate" validate:"finite"`
	Threshold float64      `yaml:"threshold" validate:"finite"`
	TOut      float64      `yaml:"tout" validate:"gte=0,finite"`
	Outputs   int          `yaml:"outputs" validate:"gte=0"`
	CVode     cvode.Config `yaml:"cvode"`

	Target   float64       `yaml:"target" validate:"gte=0,finite"`
	Guess    float64       `yaml:"guess" validate:"finite"`
	Strategy string        `yaml:"strategy" validate:"omitempty,oneof=newton linesearch picard fixedpoint"`
	Kinsol   kinsol.Config `yaml:"kinsol"`
}

// Default returns a decay problem on [0, 1] with the library defaults.
func Default() Problem {
	return Problem{
		Kind:     "decay",
		Y0:       []float64{1},
		Rate:     1,
		TOut:     1,
		Outputs:  1,
		CVode:    cvode.DefaultConfig(),
		Target:   2,
		Guess:    1,
		Strategy: "newton",
	}
}

// ApplyEnv replaces the backend with the value of BackendEnv when it is set.
func (p *Problem) ApplyEnv() {
	if v := os.Getenv(BackendEnv); v != "" {
		p.Backend = v
	}
}

// Parse decodes a problem over Default, applies the environment and
// validates the result.
func Parse(data []byte) (Problem, error) {
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Problem{}, fmt.Errorf("config: parse problem: %w", err)
	}
	p.ApplyEnv()
	if err := p.Validate(); err != nil {
		return Problem{}, err
	}
	return p, nil
}

// Load reads and parses the problem file at path.
func Load(path string) (Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Problem{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Validate checks the problem and the solver configs it carries.
func (p Problem) Validate() error {
	if err := sundials.ValidateStruct(p); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if p.Kind != "sqrt" && len(p.Y0) == 0 {
		return fmt.Errorf("config: %w: y0 is required for %s", sundials.ErrIllegalInput, p.Kind)
	}
	return nil
}

// BackendOption returns the session option selecting the problem's backend.
func (p Problem) BackendOption() (sundials.Option, error) {
	b, err := sundials.ParseBackend(p.Backend)
	if err != nil {
		return nil, err
	}
	return sundials.WithBackend(b), nil
}
