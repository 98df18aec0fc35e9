package services

import (
	"context"
	"fmt"
	"log"

	"fight-picks-system/models"
)

// ResultService runs the recompute pipeline that keeps pick points, user totals
// and badge grants consistent with the official fight results. Every step is an
// idempotent overwrite, so re-running after a correction self-heals all derived
// state instead of accumulating drift.
type ResultService struct {
	Store  Store
	Badges *BadgeService
}

func NewResultService(store Store, badges *BadgeService) *ResultService {
	return &ResultService{Store: store, Badges: badges}
}

// RecomputeFight re-scores every pick on the fight under the current rules, then
// recomputes the total and re-evaluates badges for every affected user. Returns
// the number of picks updated. Fails with ErrIncompleteResult when the fight's
// result is not fully set and ErrNotFound when the fight does not exist.
func (s *ResultService) RecomputeFight(ctx context.Context, fightID string) (int, error) {
	fight, err := s.Store.GetFightWithPicks(ctx, fightID)
	if err != nil {
		return 0, fmt.Errorf("load fight %s: %w", fightID, err)
	}

	if !fight.HasCompleteResult() {
		return 0, ErrIncompleteResult
	}

	result := PickOutcome{
		Winner: *fight.Winner,
		Method: *fight.Method,
	}
	if fight.Round != nil {
		result.Round = *fight.Round
	}

	updated := 0
	affected := make(map[string]bool)

	for _, pick := range fight.Picks {
		points := ScorePick(PickOutcome{
			Winner: pick.Winner,
			Method: pick.Method,
			Round:  pick.Round,
		}, result)

		if err := s.Store.UpdatePickPoints(ctx, pick.ID, points, RuleVersionCurrent); err != nil {
			return updated, fmt.Errorf("update points for pick %s: %w", pick.ID, err)
		}
		updated++
		affected[pick.UserID] = true
	}

	for userID := range affected {
		if _, err := s.RecomputeUserTotal(ctx, userID); err != nil {
			return updated, fmt.Errorf("recompute total for user %s: %w", userID, err)
		}

		if s.Badges != nil {
			// Badge evaluation must not block the pipeline; grants are monotonic
			// and will be retried on the next recompute touching this user.
			if _, err := s.Badges.EvaluateBadges(ctx, userID, fight.EventID); err != nil {
				log.Printf("[RESULTS] badge evaluation failed for user %s: %v", userID, err)
			}
		}
	}

	return updated, nil
}

// RecomputeUserTotal rewrites the user's denormalized total as the sum of their
// non-NULL pick points. Always a full recompute, never a delta: a correction to
// any single fight self-heals the total without knowing what changed.
func (s *ResultService) RecomputeUserTotal(ctx context.Context, userID string) (int, error) {
	picks, err := s.Store.GetPicksByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load picks for user %s: %w", userID, err)
	}

	total := 0
	for _, pick := range picks {
		if pick.Points != nil {
			total += *pick.Points
		}
	}

	if err := s.Store.SetUserPoints(ctx, userID, total); err != nil {
		return 0, fmt.Errorf("write total for user %s: %w", userID, err)
	}
	return total, nil
}

// RecomputeAll re-scores every fight that has a complete result. This is the bulk
// migration path after a ruleset change, re-running every pick under the current
// rules. Fights with incomplete results are skipped, not failed.
func (s *ResultService) RecomputeAll(ctx context.Context) (fights, picks int, err error) {
	withResults, err := s.Store.ListFightsWithResults(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list fights with results: %w", err)
	}

	for _, fight := range withResults {
		if !fight.HasCompleteResult() {
			continue
		}
		updated, err := s.RecomputeFight(ctx, fight.ID)
		if err != nil {
			return fights, picks, fmt.Errorf("recompute fight %s (%s vs %s): %w",
				fight.ID, fight.FighterA, fight.FighterB, err)
		}
		fights++
		picks += updated
	}

	log.Printf("[RESULTS] bulk recompute done: %d fights, %d picks", fights, picks)
	return fights, picks, nil
}

// ResolveWinnerSide maps an admin-submitted winner to the canonical side "A"/"B".
// Accepts the side letters themselves or either fighter's name.
func ResolveWinnerSide(fight *models.Fight, winner string) (string, error) {
	switch winner {
	case models.WinnerSideA, models.WinnerSideB:
		return winner, nil
	case fight.FighterA:
		return models.WinnerSideA, nil
	case fight.FighterB:
		return models.WinnerSideB, nil
	default:
		return "", fmt.Errorf("winner %q is neither a side nor a fighter of this bout", winner)
	}
}
