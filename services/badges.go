package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"fight-picks-system/models"
)

// veteranEventCount is how many distinct events a user must have picked on.
const veteranEventCount = 5

// badgeRule is one independent achievement predicate. Rules only read state and
// answer grant/no-grant; adding an achievement means appending to badgeRules,
// never touching existing rules.
type badgeRule struct {
	Name  string
	Check func(ctx context.Context, store Store, userID, eventID string) (bool, error)
}

// badgeRules is the registry the evaluator walks. Underdog Hunter is seeded in
// the catalog but has no rule yet: it needs odds data the schema doesn't carry.
var badgeRules = []badgeRule{
	{Name: models.BadgeFirstPick, Check: checkFirstPick},
	{Name: models.BadgePerfectEvent, Check: checkPerfectEvent},
	{Name: models.BadgeVeteran, Check: checkVeteran},
}

// BadgeService evaluates achievement rules and grants badges. All grants are
// monotonic: once earned, never revoked, never duplicated.
type BadgeService struct {
	Store Store
}

func NewBadgeService(store Store) *BadgeService {
	return &BadgeService{Store: store}
}

// EvaluateBadges runs every rule for the user in the context of the given event
// and grants whatever is newly earned. A failing rule is logged and skipped so it
// cannot block the others; the returned error is only for the unrecoverable case
// of every rule failing the same way (callers treat it as advisory regardless).
func (s *BadgeService) EvaluateBadges(ctx context.Context, userID, eventID string) ([]string, error) {
	var granted []string

	for _, rule := range badgeRules {
		earned, err := rule.Check(ctx, s.Store, userID, eventID)
		if err != nil {
			log.Printf("[BADGES] rule %q failed for user %s: %v", rule.Name, userID, err)
			continue
		}
		if !earned {
			continue
		}

		wasNew, err := s.grantByName(ctx, userID, rule.Name)
		if err != nil {
			log.Printf("[BADGES] granting %q to user %s failed: %v", rule.Name, userID, err)
			continue
		}
		if wasNew {
			granted = append(granted, rule.Name)
			log.Printf("[BADGES] awarded %q to user %s", rule.Name, userID)
		}
	}

	return granted, nil
}

// grantByName grants the named badge unless the user already holds it. Returns
// whether the grant was new.
func (s *BadgeService) grantByName(ctx context.Context, userID, name string) (bool, error) {
	badge, err := s.Store.GetBadgeByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("badge %q: %w", name, ErrBadgeUnknown)
	}
	if err != nil {
		return false, err
	}

	has, err := s.Store.UserHasBadge(ctx, userID, badge.ID)
	if err != nil {
		return false, err
	}
	if has {
		return false, nil
	}

	if err := s.Store.GrantBadge(ctx, userID, badge.ID); err != nil {
		return false, err
	}
	return true, nil
}

// checkFirstPick: earned the first time the user has any pick at all.
func checkFirstPick(ctx context.Context, store Store, userID, _ string) (bool, error) {
	picks, err := store.GetPicksByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return len(picks) > 0, nil
}

// checkPerfectEvent: every fight on the card has a complete result, the user
// picked every fight, and every predicted winner matches the official winner.
// Method and round do not matter here, only winner-correctness across the card.
func checkPerfectEvent(ctx context.Context, store Store, userID, eventID string) (bool, error) {
	fights, err := store.ListEventFights(ctx, eventID)
	if err != nil {
		return false, err
	}
	if len(fights) == 0 {
		return false, nil
	}

	winners := make(map[string]string, len(fights))
	for _, fight := range fights {
		if !fight.HasCompleteResult() {
			return false, nil
		}
		winners[fight.ID] = *fight.Winner
	}

	picks, err := store.ListEventPicksByUser(ctx, userID, eventID)
	if err != nil {
		return false, err
	}
	if len(picks) != len(fights) {
		return false, nil
	}

	for _, pick := range picks {
		if winners[pick.FightID] != pick.Winner {
			return false, nil
		}
	}
	return true, nil
}

// checkVeteran: picks spread across at least veteranEventCount distinct events,
// counted by event, not by fight.
func checkVeteran(ctx context.Context, store Store, userID, _ string) (bool, error) {
	count, err := store.CountDistinctPickEvents(ctx, userID)
	if err != nil {
		return false, err
	}
	return count >= veteranEventCount, nil
}

// SeedBadgeCatalog inserts any catalog badge missing from the database. Idempotent,
// run at startup.
func (s *BadgeService) SeedBadgeCatalog(ctx context.Context) error {
	for _, badge := range models.BadgeCatalog {
		_, err := s.Store.GetBadgeByName(ctx, badge.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("look up badge %q: %w", badge.Name, err)
		}

		create := badge
		if err := s.Store.CreateBadge(ctx, &create); err != nil {
			return fmt.Errorf("seed badge %q: %w", badge.Name, err)
		}
		log.Printf("[BADGES] seeded catalog badge %q", badge.Name)
	}
	return nil
}
