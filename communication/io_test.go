package communication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIO(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	io := NewIO()
	_, ok := io.GetInput(0)
	assert.False(ok)

	require.NoError(io.SetInput(2, "x"))
	require.ErrorIs(io.SetInput(2, "y"), ErrInputAlreadySet)
	inp, ok := io.GetInput(2)
	require.True(ok)
	assert.Equal("x", inp)

	io.Output([]byte("a"))
	io.Output([]byte("b"))
	assert.Equal([][]byte{[]byte("a"), []byte("b")}, io.Outputs())
	assert.Equal([][]byte{[]byte("a"), []byte("b")}, io.ReadOutputs())
	assert.Empty(io.Outputs())
	assert.Empty(io.ReadOutputs())

	single := NewSingleInputIO(42)
	inp, ok = single.GetInput(0)
	require.True(ok)
	assert.Equal(42, inp)
	require.ErrorIs(single.SetInput(0, 43), ErrInputAlreadySet)
}

func TestTargets(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]int{0, 1, 2}, All.Resolve(3))
	assert.Equal([]int{2}, To(2).Resolve(3))
	assert.Empty(To().Resolve(3))
}
