package kinsol

import (
	"fmt"
	"strings"

	"github.com/sunml/sundials-go/internal/native"
	"github.com/sunml/sundials-go/pkg/sundials"
)

// Config holds the solver settings applied when a session is created. Zero
// values keep the library defaults.
type Config struct {
	MaxIters      int64   `yaml:"max_iters" validate:"gte=0"`
	FuncNormTol   float64 `yaml:"fnormtol" validate:"gte=0,finite"`
	ScaledStepTol float64 `yaml:"scsteptol" validate:"gte=0,finite"`
	// PrintLevel controls how much the info handler receives, 0 to 3.
	PrintLevel int `yaml:"print_level" validate:"gte=0,lte=3"`
}

// DefaultConfig returns the library defaults.
func DefaultConfig() Config { return Config{} }

// Validate checks the configuration before any native call is made.
func (c Config) Validate() error {
	return sundials.ValidateStruct(c)
}

// Strategy is the global strategy used by Solve.
type Strategy int

const (
	Newton Strategy = iota
	LineSearch
	Picard
	FixedPoint
)

var strategyNames = [...]string{
	Newton:     "newton",
	LineSearch: "linesearch",
	Picard:     "picard",
	FixedPoint: "fixedpoint",
}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// ParseStrategy parses a strategy name as printed by String.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range strategyNames {
		if n == name {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", sundials.ErrIllegalInput, name)
}

func (s Strategy) valid() bool { return s >= Newton && s <= FixedPoint }

// native maps s to the KINSOL constant. Callers check valid first; an
// unknown strategy maps to a value KINSOL rejects as illegal input.
func (s Strategy) native() native.Strategy {
	switch s {
	case Newton:
		return native.Newton
	case LineSearch:
		return native.LineSearch
	case Picard:
		return native.Picard
	case FixedPoint:
		return native.FixedPoint
	}
	return -1
}
