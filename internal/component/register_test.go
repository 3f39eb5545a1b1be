package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/scriptworld/internal/core/typereg"
)

func TestRegister(t *testing.T) {
	r := typereg.NewRegistry()
	require.NoError(t, Register(r))

	tr, ok := r.Resolve("Transform")
	require.True(t, ok)
	assert.True(t, tr.IsComponent())
	v, ok := tr.New()
	require.True(t, ok)
	assert.Equal(t, 1.0, v.(*Transform).Scale.X)

	parent, ok := r.Resolve("Parent")
	require.True(t, ok)
	assert.False(t, parent.CanDefault())

	clock, ok := r.Resolve("Clock")
	require.True(t, ok)
	assert.True(t, clock.IsResource())
	assert.False(t, clock.IsComponent())

	assert.Error(t, Register(r), "second registration collides")
}
