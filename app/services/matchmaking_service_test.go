package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lonetown/app/models"
)

func newMatchmaking(t *testing.T, pairings PairingStore, profiles ...models.Profile) (*MatchmakingService, *MemoryProfileStore) {
	t.Helper()
	store := NewMemoryProfileStore()
	seedProfiles(t, store, profiles...)
	svc := NewMatchmakingService(store, pairings)
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func TestFindMatchPrefersHigherScore(t *testing.T) {
	svc, _ := newMatchmaking(t, nil,
		models.Profile{UserID: "abc12", Question1: "honesty", Question2: "hiking"},
		models.Profile{UserID: "xyz99", Question1: "honesty", Question2: "partying"},
		models.Profile{UserID: "def34", Question1: "honesty", Question2: "hiking"},
	)

	pair, err := svc.FindMatch(context.Background(), "abc12")
	require.NoError(t, err)
	assert.Equal(t, "def34", pair.PartnerID)
	assert.Equal(t, "abc12_def34", pair.MatchID)
	assert.Equal(t, 2, pair.Score)
}

func TestFindMatchZeroScoreTakesFirstScanned(t *testing.T) {
	svc, _ := newMatchmaking(t, nil,
		models.Profile{UserID: "abc12", Question1: "honesty", Question2: "hiking"},
		models.Profile{UserID: "zzz00", Question1: "humor", Question2: "reading"},
		models.Profile{UserID: "aaa00", Question1: "ambition", Question2: "partying"},
	)

	pair, err := svc.FindMatch(context.Background(), "abc12")
	require.NoError(t, err)
	assert.Equal(t, "zzz00", pair.PartnerID)
	assert.Equal(t, 0, pair.Score)
	assert.Equal(t, "abc12_zzz00", pair.MatchID)
}

func TestFindMatchTieKeepsFirstEncountered(t *testing.T) {
	svc, _ := newMatchmaking(t, nil,
		models.Profile{UserID: "abc12", Question1: "honesty", Question2: "hiking"},
		models.Profile{UserID: "one", Question1: "humor", Question2: "hiking"},
		models.Profile{UserID: "two", Question1: "honesty", Question2: "reading"},
	)

	pair, err := svc.FindMatch(context.Background(), "abc12")
	require.NoError(t, err)
	assert.Equal(t, "one", pair.PartnerID)
}

func TestFindMatchErrors(t *testing.T) {
	svc, _ := newMatchmaking(t, nil,
		models.Profile{UserID: "abc12", Question1: "honesty", Question2: "hiking"},
	)

	_, err := svc.FindMatch(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.FindMatch(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.FindMatch(context.Background(), "abc12")
	assert.ErrorIs(t, err, models.ErrNoMatchAvailable)
}

func TestFindMatchRecordsLastMatchedAt(t *testing.T) {
	svc, store := newMatchmaking(t, nil,
		models.Profile{UserID: "abc12", Question1: "honesty", Question2: "hiking"},
		models.Profile{UserID: "xyz99", Question1: "honesty", Question2: "partying"},
	)

	_, err := svc.FindMatch(context.Background(), "abc12")
	require.NoError(t, err)

	for _, id := range []string{"abc12", "xyz99"} {
		p, err := store.Get(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, p.LastMatchedAt, id)
		assert.Equal(t, testNow, *p.LastMatchedAt)
	}
}

func TestFindMatchWithoutReservationsIsStateless(t *testing.T) {
	svc, _ := newMatchmaking(t, nil,
		models.Profile{UserID: "abc12", Question1: "honesty", Question2: "hiking"},
		models.Profile{UserID: "def34", Question1: "honesty", Question2: "hiking"},
		models.Profile{UserID: "ghi56", Question1: "honesty", Question2: "hiking"},
	)

	// nothing is reserved, so abc12 is handed out again while paired with def34
	a, err := svc.FindMatch(context.Background(), "abc12")
	require.NoError(t, err)
	b, err := svc.FindMatch(context.Background(), "ghi56")
	require.NoError(t, err)
	assert.Equal(t, "def34", a.PartnerID)
	assert.Equal(t, "abc12", b.PartnerID)
}

func TestFindMatchWithReservations(t *testing.T) {
	svc, _ := newMatchmaking(t, NewMemoryPairingStore(),
		models.Profile{UserID: "abc12", Question1: "honesty", Question2: "hiking"},
		models.Profile{UserID: "def34", Question1: "honesty", Question2: "hiking"},
		models.Profile{UserID: "ghi56", Question1: "honesty", Question2: "hiking"},
		models.Profile{UserID: "jkl78", Question1: "humor", Question2: "reading"},
	)
	ctx := context.Background()

	first, err := svc.FindMatch(ctx, "abc12")
	require.NoError(t, err)
	assert.Equal(t, "def34", first.PartnerID)

	again, err := svc.FindMatch(ctx, "abc12")
	require.NoError(t, err)
	assert.Equal(t, first.MatchID, again.MatchID)

	mutual, err := svc.FindMatch(ctx, "def34")
	require.NoError(t, err)
	assert.Equal(t, "abc12", mutual.PartnerID)
	assert.Equal(t, first.MatchID, mutual.MatchID)

	// abc12 and def34 are taken, so ghi56 falls back to the only free profile
	third, err := svc.FindMatch(ctx, "ghi56")
	require.NoError(t, err)
	assert.Equal(t, "jkl78", third.PartnerID)
	assert.Equal(t, 0, third.Score)
}

func TestFindMatchReservationsExhausted(t *testing.T) {
	pairings := NewMemoryPairingStore()
	svc, _ := newMatchmaking(t, pairings,
		models.Profile{UserID: "abc12", Question1: "honesty", Question2: "hiking"},
		models.Profile{UserID: "def34", Question1: "honesty", Question2: "hiking"},
		models.Profile{UserID: "ghi56", Question1: "honesty", Question2: "hiking"},
	)
	ctx := context.Background()

	_, err := svc.FindMatch(ctx, "abc12")
	require.NoError(t, err)

	_, err = svc.FindMatch(ctx, "ghi56")
	assert.ErrorIs(t, err, models.ErrNoMatchAvailable)
}

func TestFindMatchNextDayIsFresh(t *testing.T) {
	svc, _ := newMatchmaking(t, NewMemoryPairingStore(),
		models.Profile{UserID: "abc12", Question1: "honesty", Question2: "hiking"},
		models.Profile{UserID: "def34", Question1: "humor", Question2: "reading"},
		models.Profile{UserID: "ghi56", Question1: "ambition", Question2: "partying"},
	)
	ctx := context.Background()

	first, err := svc.FindMatch(ctx, "abc12")
	require.NoError(t, err)
	assert.Equal(t, "def34", first.PartnerID)

	svc.now = func() time.Time { return testNow.Add(24 * time.Hour) }
	next, err := svc.FindMatch(ctx, "ghi56")
	require.NoError(t, err)
	assert.Equal(t, "abc12", next.PartnerID)
}

func TestSelectBest(t *testing.T) {
	user := models.Profile{UserID: "abc12", Question1: "honesty", Question2: "hiking"}

	i, score := SelectBest(user, nil)
	assert.Equal(t, -1, i)
	assert.Equal(t, -1, score)

	i, score = SelectBest(user, []models.Profile{
		{UserID: "xyz99", Question1: "honesty", Question2: "partying"},
		{UserID: "def34", Question1: "honesty", Question2: "hiking"},
		{UserID: "dup", Question1: "honesty", Question2: "hiking"},
	})
	assert.Equal(t, 1, i)
	assert.Equal(t, 2, score)
}
