package cvode

import (
	"github.com/sunml/sundials-go/internal/native"
	"github.com/sunml/sundials-go/pkg/sundials"
)

// Config holds the solver settings applied when a session is created.
// RelTol and AbsTol both zero select the DefaultConfig tolerances; other
// zero numeric fields keep the library defaults.
type Config struct {
	// LMM is the linear multistep method, "adams" or "bdf".
	LMM         string   `yaml:"lmm" validate:"omitempty,oneof=adams bdf"`
	RelTol      float64  `yaml:"rtol" validate:"gte=0,finite"`
	AbsTol      float64  `yaml:"atol" validate:"gte=0,finite"`
	MaxNumSteps int64    `yaml:"max_num_steps" validate:"gte=0"`
	InitStep    float64  `yaml:"init_step" validate:"gte=0,finite"`
	StopTime    *float64 `yaml:"stop_time,omitempty" validate:"omitempty,finite"`
}

// DefaultConfig returns BDF with rtol 1e-4 and atol 1e-8.
func DefaultConfig() Config {
	return Config{LMM: "bdf", RelTol: 1e-4, AbsTol: 1e-8}
}

// Validate checks the configuration before any native call is made.
func (c Config) Validate() error {
	return sundials.ValidateStruct(c)
}

func (c Config) lmm() native.LMM {
	if c.LMM == "adams" {
		return native.Adams
	}
	return native.BDF
}
