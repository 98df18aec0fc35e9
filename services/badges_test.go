package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fight-picks-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBadgeFixture(t *testing.T) (*memStore, *BadgeService) {
	t.Helper()
	store := newMemStore()
	badges := NewBadgeService(store)
	require.NoError(t, badges.SeedBadgeCatalog(context.Background()))
	return store, badges
}

func TestSeedBadgeCatalogIdempotent(t *testing.T) {
	store, badges := newBadgeFixture(t)

	require.NoError(t, badges.SeedBadgeCatalog(context.Background()))
	assert.Len(t, store.badges, len(models.BadgeCatalog))
}

func TestFirstPickBadge(t *testing.T) {
	store, badges := newBadgeFixture(t)
	ctx := context.Background()

	event := store.addEvent("UFC 310", time.Now().UTC())
	fight := store.addFight(event.ID, "Pantoja", "Asakura")
	user := store.addUser("alice")

	granted, err := badges.EvaluateBadges(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.Empty(t, granted, "no picks yet, nothing earned")

	store.addPick(user.ID, fight.ID, "A", "KO", 1)

	granted, err = badges.EvaluateBadges(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.Contains(t, granted, models.BadgeFirstPick)
}

func TestPerfectEventBadge(t *testing.T) {
	store, badges := newBadgeFixture(t)
	ctx := context.Background()

	event := store.addEvent("UFC 311", time.Now().UTC())
	fights := []*models.Fight{
		store.addFight(event.ID, "Makhachev", "Tsarukyan"),
		store.addFight(event.ID, "Dvalishvili", "Nurmagomedov"),
		store.addFight(event.ID, "Rakhmonov", "Garry"),
	}

	perfect := store.addUser("alice") // every winner right, methods mostly wrong
	missedOne := store.addUser("bob") // one wrong winner

	store.addPick(perfect.ID, fights[0].ID, "A", "DEC", 0)
	store.addPick(perfect.ID, fights[1].ID, "A", "KO", 2)
	store.addPick(perfect.ID, fights[2].ID, "A", "SUB", 1)

	store.addPick(missedOne.ID, fights[0].ID, "A", "SUB", 1)
	store.addPick(missedOne.ID, fights[1].ID, "B", "KO", 2)
	store.addPick(missedOne.ID, fights[2].ID, "A", "SUB", 1)

	store.setResult(fights[0].ID, "A", "SUB", 1)
	store.setResult(fights[1].ID, "A", "DEC", 0)

	// Card not finished yet — no perfect-event badge even with all winners right so far
	granted, err := badges.EvaluateBadges(ctx, perfect.ID, event.ID)
	require.NoError(t, err)
	assert.NotContains(t, granted, models.BadgePerfectEvent)

	store.setResult(fights[2].ID, "A", "KO", 3)

	granted, err = badges.EvaluateBadges(ctx, perfect.ID, event.ID)
	require.NoError(t, err)
	assert.Contains(t, granted, models.BadgePerfectEvent)

	granted, err = badges.EvaluateBadges(ctx, missedOne.ID, event.ID)
	require.NoError(t, err)
	assert.NotContains(t, granted, models.BadgePerfectEvent)
}

func TestPerfectEventRequiresFullCardCoverage(t *testing.T) {
	store, badges := newBadgeFixture(t)
	ctx := context.Background()

	event := store.addEvent("UFC 312", time.Now().UTC())
	picked := store.addFight(event.ID, "DuPlessis", "Strickland")
	skipped := store.addFight(event.ID, "Davis", "Nurmagomedov")

	user := store.addUser("alice")
	store.addPick(user.ID, picked.ID, "A", "KO", 1)
	// no pick on the second fight

	store.setResult(picked.ID, "A", "KO", 1)
	store.setResult(skipped.ID, "A", "DEC", 0)

	granted, err := badges.EvaluateBadges(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.NotContains(t, granted, models.BadgePerfectEvent)
}

func TestBadgeNeverGrantedTwice(t *testing.T) {
	store, badges := newBadgeFixture(t)
	ctx := context.Background()

	event := store.addEvent("UFC 313", time.Now().UTC())
	fight := store.addFight(event.ID, "Pereira", "Ankalaev")
	user := store.addUser("alice")
	store.addPick(user.ID, fight.ID, "A", "KO", 1)

	granted, err := badges.EvaluateBadges(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.Contains(t, granted, models.BadgeFirstPick)

	granted, err = badges.EvaluateBadges(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.Empty(t, granted, "second evaluation must grant nothing new")

	assert.Equal(t, 1, store.grantCount(user.ID, models.BadgeFirstPick))
}

func TestVeteranBadge(t *testing.T) {
	store, badges := newBadgeFixture(t)
	ctx := context.Background()

	user := store.addUser("alice")

	var lastEventID string
	for i := 0; i < veteranEventCount; i++ {
		event := store.addEvent(fmt.Sprintf("UFC %d", 320+i), time.Now().UTC())
		fight := store.addFight(event.ID, "Red", "Blue")
		store.addPick(user.ID, fight.ID, "A", "DEC", 0)
		lastEventID = event.ID

		granted, err := badges.EvaluateBadges(ctx, user.ID, event.ID)
		require.NoError(t, err)
		if i < veteranEventCount-1 {
			assert.NotContains(t, granted, models.BadgeVeteran, "after %d events", i+1)
		}
	}

	assert.Equal(t, 1, store.grantCount(user.ID, models.BadgeVeteran),
		"veteran badge granted exactly once at event %s", lastEventID)
}

func TestVeteranCountsEventsNotFights(t *testing.T) {
	store, badges := newBadgeFixture(t)
	ctx := context.Background()

	user := store.addUser("alice")
	event := store.addEvent("UFC 330", time.Now().UTC())
	for i := 0; i < veteranEventCount+2; i++ {
		fight := store.addFight(event.ID, "Red", "Blue")
		store.addPick(user.ID, fight.ID, "A", "DEC", 0)
	}

	granted, err := badges.EvaluateBadges(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.NotContains(t, granted, models.BadgeVeteran,
		"many fights on one card is still one event")
}

// erroringStore makes one rule's data source fail to prove rules are isolated.
type erroringStore struct {
	Store
}

func (e *erroringStore) CountDistinctPickEvents(context.Context, string) (int64, error) {
	return 0, fmt.Errorf("simulated persistence failure")
}

func TestRuleFailureDoesNotBlockOtherRules(t *testing.T) {
	store, _ := newBadgeFixture(t)
	ctx := context.Background()

	event := store.addEvent("UFC 331", time.Now().UTC())
	fight := store.addFight(event.ID, "Holloway", "Topuria")
	user := store.addUser("alice")
	store.addPick(user.ID, fight.ID, "A", "KO", 1)

	badges := NewBadgeService(&erroringStore{Store: store})

	granted, err := badges.EvaluateBadges(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.Contains(t, granted, models.BadgeFirstPick,
		"veteran rule failing must not block first-pick")
}
