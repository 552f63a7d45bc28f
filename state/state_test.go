package state_test

import (
	"testing"

	"github.com/cadl-lang/cadlc/state"
	"github.com/stretchr/testify/require"
)

func TestKeysAreUniqueAndStable(t *testing.T) {
	k1 := state.NewKey()
	k2 := state.NewKey()
	require.NotEqual(t, k1, k2)
	require.Equal(t, k1, k1)
}

func TestMapMaterializesLazilyAndPersists(t *testing.T) {
	reg := state.NewRegistry()
	key := state.NewKey()
	m := reg.Map(key)
	m["a"] = 1
	require.Equal(t, 1, reg.Map(key)["a"], "second Map(key) call must return the same underlying map")
}

func TestSetAddHas(t *testing.T) {
	reg := state.NewRegistry()
	key := state.NewKey()
	require.False(t, reg.Has(key, "x"))
	reg.Add(key, "x")
	require.True(t, reg.Has(key, "x"))
}

func TestTwoKeysDoNotShareState(t *testing.T) {
	reg := state.NewRegistry()
	k1, k2 := state.NewKey(), state.NewKey()
	reg.Add(k1, "x")
	require.False(t, reg.Has(k2, "x"))
}
