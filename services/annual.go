package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fight-picks-system/models"
)

// AwardService runs the end-of-season "Best of <year>" computation. The job is
// idempotent: re-running refreshes the badge description (scores may have been
// corrected) and never duplicates grants.
type AwardService struct {
	Store Store

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewAwardService(store Store) *AwardService {
	return &AwardService{Store: store, Now: time.Now}
}

// AnnualAwardSummary reports what an award run did.
type AnnualAwardSummary struct {
	Year     int      `json:"year"`
	MaxScore int      `json:"max_score"`
	Winners  []string `json:"winners"`
	Badge    string   `json:"badge"`
	Actions  []string `json:"actions"`
}

// AnnualBadgeName returns the badge name for a season.
func AnnualBadgeName(year int) string {
	return fmt.Sprintf("Best of %d", year)
}

// AwardAnnualBadge finds the season's top scorer(s) and grants them the year
// badge. Ties are all awarded, no tiebreak. Guarded by ErrTooEarly until the
// season is over unless force is set; reports ErrNoEventsFound/ErrNoScoredPicks
// when there is nothing to award.
func (s *AwardService) AwardAnnualBadge(ctx context.Context, year int, force bool) (*AnnualAwardSummary, error) {
	_, seasonEnd := SeasonBounds(year)
	if s.Now().Before(seasonEnd) && !force {
		return nil, fmt.Errorf("award for %d before %s: %w", year, seasonEnd.Format(time.RFC3339), ErrTooEarly)
	}

	events, err := s.Store.ListEventsInYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("list events in %d: %w", year, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("year %d: %w", year, ErrNoEventsFound)
	}

	eventIDs := make([]string, 0, len(events))
	for _, event := range events {
		eventIDs = append(eventIDs, event.ID)
	}

	picks, err := s.Store.ListScoredPicksForEvents(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("list scored picks for %d: %w", year, err)
	}
	if len(picks) == 0 {
		return nil, fmt.Errorf("year %d: %w", year, ErrNoScoredPicks)
	}

	totals := make(map[string]int)
	for _, pick := range picks {
		if pick.Points != nil {
			totals[pick.UserID] += *pick.Points
		}
	}

	maxScore := 0
	for _, total := range totals {
		if total > maxScore {
			maxScore = total
		}
	}
	if maxScore <= 0 {
		return nil, fmt.Errorf("year %d has no positive totals: %w", year, ErrNoScoredPicks)
	}

	var winners []string
	for userID, total := range totals {
		if total == maxScore {
			winners = append(winners, userID)
		}
	}

	badgeName := AnnualBadgeName(year)
	description := fmt.Sprintf("Top scorer with %d points", maxScore)

	badge, err := s.Store.GetBadgeByName(ctx, badgeName)
	switch {
	case errors.Is(err, ErrNotFound):
		badge = &models.Badge{
			Name:        badgeName,
			Description: description,
			Icon:        "Trophy",
		}
		if err := s.Store.CreateBadge(ctx, badge); err != nil {
			return nil, fmt.Errorf("create badge %q: %w", badgeName, err)
		}
		log.Printf("[AWARDS] created badge %q", badgeName)
	case err != nil:
		return nil, fmt.Errorf("look up badge %q: %w", badgeName, err)
	default:
		// Re-runs keep the embedded winning score current after corrections.
		if err := s.Store.UpdateBadgeDescription(ctx, badge.ID, description); err != nil {
			return nil, fmt.Errorf("refresh badge %q: %w", badgeName, err)
		}
	}

	summary := &AnnualAwardSummary{
		Year:     year,
		MaxScore: maxScore,
		Winners:  winners,
		Badge:    badgeName,
	}

	for _, userID := range winners {
		has, err := s.Store.UserHasBadge(ctx, userID, badge.ID)
		if err != nil {
			log.Printf("[AWARDS] holder check failed for user %s: %v", userID, err)
			continue
		}
		if has {
			summary.Actions = append(summary.Actions, fmt.Sprintf("user %s already has badge", userID))
			continue
		}
		if err := s.Store.GrantBadge(ctx, userID, badge.ID); err != nil {
			log.Printf("[AWARDS] grant failed for user %s: %v", userID, err)
			continue
		}
		summary.Actions = append(summary.Actions, fmt.Sprintf("awarded to user %s", userID))
	}

	log.Printf("[AWARDS] %q: top score %d, %d winner(s)", badgeName, maxScore, len(winners))
	return summary, nil
}
