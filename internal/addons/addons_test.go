package addons

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToggleFlipsMembership(t *testing.T) {
	s := NewSelection()
	require.False(t, s.IsActive(Charts))

	require.True(t, s.Toggle(Charts))
	require.True(t, s.IsActive(Charts))

	require.False(t, s.Toggle(Charts))
	require.False(t, s.IsActive(Charts))
}

func TestActiveIsSortedAndNilWhenEmpty(t *testing.T) {
	s := NewSelection()
	require.Nil(t, s.Active())

	s.Toggle("zeta")
	s.Toggle("alpha")
	require.Equal(t, []string{"alpha", "zeta"}, s.Active())
}

func TestResetEmptiesSelection(t *testing.T) {
	s := NewSelection()
	s.Toggle(Charts)
	s.Reset()
	require.False(t, s.IsActive(Charts))
	require.Nil(t, s.Active())
}
