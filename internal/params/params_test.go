package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dysprosium/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadParamsDefaultsWhenUnset(t *testing.T) {
	s := openTestStore(t)

	p, err := s.LoadParams()
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultParams(), p)
}

func TestSaveAndLoadParamsRoundTrip(t *testing.T) {
	s := openTestStore(t)

	want := engine.DefaultParams()
	want.RookOpenFileBonus = 42
	require.NoError(t, s.SaveParams(want))

	got, err := s.LoadParams()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOpeningMoveRoundTrip(t *testing.T) {
	s := openTestStore(t)

	const fen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

	_, ok := s.LookupOpeningMove(fen)
	assert.False(t, ok, "expected no cached move before saving one")

	require.NoError(t, s.SaveOpeningMove(fen, "e2e4"))

	move, ok := s.LookupOpeningMove(fen)
	require.True(t, ok)
	assert.Equal(t, "e2e4", move)
}
