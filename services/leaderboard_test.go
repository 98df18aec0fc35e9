package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalCompetitionRanking(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	for _, row := range []struct {
		username string
		points   int
	}{
		{"dave", 10},
		{"carol", 20},
		{"bob", 30},
		{"alice", 30},
	} {
		user := store.addUser(row.username)
		require.NoError(t, store.SetUserPoints(ctx, user.ID, row.points))
	}

	standings, err := NewLeaderboardService(store).Global(ctx, 0)
	require.NoError(t, err)
	require.Len(t, standings, 4)

	// tied totals share a rank, the next rank skips
	assert.Equal(t, []int{1, 1, 3, 4}, ranksOf(standings))
	assert.Equal(t, []string{"alice", "bob", "carol", "dave"}, usernamesOf(standings))
}

func TestGlobalLimit(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	for i := 0; i < DefaultLeaderboardSize+10; i++ {
		user := store.addUser(fmt.Sprintf("user-%03d", i))
		require.NoError(t, store.SetUserPoints(ctx, user.ID, i))
	}

	service := NewLeaderboardService(store)

	standings, err := service.Global(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, standings, 3)

	standings, err = service.Global(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, standings, DefaultLeaderboardSize)
}

func TestEventStandingsComputedFromPicks(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	event := store.addEvent("UFC 315", time.Now().UTC())
	main := store.addFight(event.ID, "Muhammad", "Della Maddalena")
	coMain := store.addFight(event.ID, "Shevchenko", "Fiorot")

	alice := store.addUser("alice")
	bob := store.addUser("bob")

	// stale all-time totals must not leak into event standings
	require.NoError(t, store.SetUserPoints(ctx, alice.ID, 999))

	scored := func(userID, fightID string, points int) {
		pick := store.addPick(userID, fightID, "A", "KO", 1)
		require.NoError(t, store.UpdatePickPoints(ctx, pick.ID, points, RuleVersionCurrent))
	}
	scored(alice.ID, main.ID, 10)
	scored(alice.ID, coMain.ID, 2)
	scored(bob.ID, main.ID, 5)

	// an unscored pick contributes nothing
	store.addPick(bob.ID, coMain.ID, "B", "DEC", 0)

	standings, err := NewLeaderboardService(store).Event(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, standings, 2)

	assert.Equal(t, "alice", standings[0].Username)
	assert.Equal(t, 12, standings[0].Points)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, "bob", standings[1].Username)
	assert.Equal(t, 5, standings[1].Points)
	assert.Equal(t, 2, standings[1].Rank)
}

func TestYearlyBucketsByEventDate(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	lastYear := store.addEvent("UFC 300", time.Date(2025, time.April, 13, 0, 0, 0, 0, time.UTC))
	thisYear := store.addEvent("UFC 305", time.Date(2026, time.February, 8, 0, 0, 0, 0, time.UTC))
	newYearsEve := store.addEvent("Year End Show", time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC))

	oldFight := store.addFight(lastYear.ID, "Red", "Blue")
	newFight := store.addFight(thisYear.ID, "Red", "Blue")
	eveFight := store.addFight(newYearsEve.ID, "Red", "Blue")

	alice := store.addUser("alice")
	for fightID, points := range map[string]int{oldFight.ID: 10, newFight.ID: 5, eveFight.ID: 2} {
		pick := store.addPick(alice.ID, fightID, "A", "KO", 1)
		require.NoError(t, store.UpdatePickPoints(ctx, pick.ID, points, RuleVersionCurrent))
	}

	service := NewLeaderboardService(store)

	standings, err := service.Yearly(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Equal(t, 12, standings[0].Points, "2025 season is both 2025 events, nothing else")

	standings, err = service.Yearly(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Equal(t, 5, standings[0].Points)

	standings, err = service.Yearly(ctx, 2020)
	require.NoError(t, err)
	assert.Empty(t, standings)
}

func TestSeasonBounds(t *testing.T) {
	start, end := SeasonBounds(2025)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}

func ranksOf(standings []Standing) []int {
	ranks := make([]int, 0, len(standings))
	for _, s := range standings {
		ranks = append(ranks, s.Rank)
	}
	return ranks
}

func usernamesOf(standings []Standing) []string {
	usernames := make([]string, 0, len(standings))
	for _, s := range standings {
		usernames = append(usernames, s.Username)
	}
	return usernames
}
