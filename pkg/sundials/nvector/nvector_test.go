package nvector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapAliasesPayload(t *testing.T) {
	data := []float64{1, 2, 3}
	v := Wrap(data)
	assert.Equal(t, 3, v.Len())

	v.Data()[1] = 20
	assert.Equal(t, 20.0, data[1])
	assert.Same(t, &data[0], &v.Data()[0])
}

func TestCheck(t *testing.T) {
	v := New(3)
	require.NoError(t, v.Check(New(3)))
	require.ErrorIs(t, v.Check(New(2)), ErrIncompatibleLength)
	require.ErrorIs(t, v.Check(nil), ErrIncompatibleLength)
	require.ErrorIs(t, CheckLen(nil, 0), ErrIncompatibleLength)
	require.ErrorIs(t, CheckLen(v, 4), ErrIncompatibleLength)
}

func TestOperations(t *testing.T) {
	v := Wrap([]float64{1, -4, 2})
	assert.Equal(t, 4.0, v.MaxNorm())

	c := v.Clone()
	c.Fill(2)
	assert.Equal(t, []float64{1, -4, 2}, v.Data())
	assert.Equal(t, []float64{2, 2, 2}, c.Data())

	d, err := v.Dot(c)
	require.NoError(t, err)
	assert.Equal(t, -2.0, d)

	_, err = v.Dot(New(1))
	require.ErrorIs(t, err, ErrIncompatibleLength)
}
