package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLeaderboardOrdering(t *testing.T) {
	l := NewLeaderboard()

	l.Record(1, 50)
	l.Record(2, -30)
	l.Record(3, 120)
	l.Record(1, 25)

	top := l.Top(2)
	require.Len(t, top, 2)
	require.EqualValues(t, 3, top[0].UID)
	require.InDelta(t, 120, top[0].Profit, 1e-9)
	require.EqualValues(t, 1, top[1].UID)
	require.InDelta(t, 75, top[1].Profit, 1e-9)

	require.Len(t, l.Top(10), 3)
}
