package sundials

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]Backend{
		"":          BackendAuto,
		"auto":      BackendAuto,
		"native":    BackendNative,
		"reference": BackendReference,
	} {
		got, err := ParseBackend(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseBackend("gpu")
	require.ErrorIs(t, err, ErrIllegalInput)
}

func TestNewOptionsDefaults(t *testing.T) {
	o := NewOptions(nil)
	require.NotNil(t, o.Logger)
	if NativeLinked() {
		assert.Equal(t, BackendNative, o.Backend)
	} else {
		assert.Equal(t, BackendReference, o.Backend)
	}
	assert.Equal(t, BackendReference, NewOptions(WithBackend(BackendReference)).Backend)
}

type tolerances struct {
	RelTol float64  `yaml:"rtol" validate:"gte=0,finite"`
	Stop   *float64 `yaml:"stop_time,omitempty" validate:"omitempty,finite"`
	Name   string   `validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(tolerances{RelTol: 1e-4, Name: "ok"}))

	err := ValidateStruct(tolerances{RelTol: -1, Name: "neg"})
	require.ErrorIs(t, err, ErrIllegalInput)
	assert.Contains(t, err.Error(), "rtol")

	nan := math.NaN()
	err = ValidateStruct(tolerances{Stop: &nan, Name: "nan"})
	require.ErrorIs(t, err, ErrIllegalInput)
	assert.Contains(t, err.Error(), "stop_time")

	err = ValidateStruct(tolerances{})
	require.ErrorIs(t, err, ErrIllegalInput)
	assert.Contains(t, err.Error(), "Name")
}

func TestNewConfigValidator(t *testing.T) {
	v, err := newConfigValidator()
	require.NoError(t, err)
	require.NotNil(t, v)

	require.NoError(t, v.Struct(tolerances{RelTol: 1, Name: "ok"}))
	assert.Error(t, v.Struct(tolerances{RelTol: math.Inf(1), Name: "inf"}))
	assert.NotPanics(t, func() { _ = v.Var(math.NaN(), "finite") })
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, WrapperVersion())
	if !NativeLinked() {
		assert.Contains(t, NativeVersion(), SupportedNative)
	}
}
