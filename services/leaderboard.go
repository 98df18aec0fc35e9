package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fight-picks-system/models"
)

// DefaultLeaderboardSize caps the global leaderboard window.
const DefaultLeaderboardSize = 50

// Standing is one leaderboard row. Rank follows competition ranking: tied totals
// share a rank and the next rank skips accordingly ([30,30,20,10] → [1,1,3,4]).
type Standing struct {
	UserID   string         `json:"user_id"`
	Username string         `json:"username"`
	Points   int            `json:"points"`
	Rank     int            `json:"rank"`
	Badges   []models.Badge `json:"badges"`
}

// LeaderboardService answers the three ranking queries. Strictly read-only:
// it aggregates whatever is persisted and never writes anything back.
type LeaderboardService struct {
	Store Store
}

func NewLeaderboardService(store Store) *LeaderboardService {
	return &LeaderboardService{Store: store}
}

// Global ranks users by their denormalized all-time totals, capped to limit
// (DefaultLeaderboardSize when limit <= 0).
func (s *LeaderboardService) Global(ctx context.Context, limit int) ([]Standing, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}

	users, err := s.Store.ListTopUsersByPoints(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list top users: %w", err)
	}

	standings := make([]Standing, 0, len(users))
	for _, user := range users {
		standings = append(standings, Standing{
			UserID:   user.ID,
			Username: user.Username,
			Points:   user.Points,
			Badges:   badgesOf(user),
		})
	}

	rankStandings(standings)
	return standings, nil
}

// Event ranks users by the sum of their scored picks on one event, computed live
// from pick rows rather than the denormalized totals.
func (s *LeaderboardService) Event(ctx context.Context, eventID string) ([]Standing, error) {
	picks, err := s.Store.ListScoredPicksForEvents(ctx, []string{eventID})
	if err != nil {
		return nil, fmt.Errorf("list picks for event %s: %w", eventID, err)
	}
	return s.standingsFromPicks(ctx, picks)
}

// Yearly ranks users by the sum of their scored picks across every event whose
// date falls inside the calendar year (UTC).
func (s *LeaderboardService) Yearly(ctx context.Context, year int) ([]Standing, error) {
	events, err := s.Store.ListEventsInYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("list events in %d: %w", year, err)
	}

	eventIDs := make([]string, 0, len(events))
	for _, event := range events {
		eventIDs = append(eventIDs, event.ID)
	}

	picks, err := s.Store.ListScoredPicksForEvents(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("list picks for %d: %w", year, err)
	}
	return s.standingsFromPicks(ctx, picks)
}

// SeasonBounds returns the UTC window [Jan 1 year, Jan 1 year+1) of a season.
func SeasonBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

func (s *LeaderboardService) standingsFromPicks(ctx context.Context, picks []models.Pick) ([]Standing, error) {
	totals := make(map[string]int)
	for _, pick := range picks {
		if pick.Points != nil {
			totals[pick.UserID] += *pick.Points
		}
	}

	userIDs := make([]string, 0, len(totals))
	for userID := range totals {
		userIDs = append(userIDs, userID)
	}

	users, err := s.Store.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	standings := make([]Standing, 0, len(users))
	for _, user := range users {
		standings = append(standings, Standing{
			UserID:   user.ID,
			Username: user.Username,
			Points:   totals[user.ID],
			Badges:   badgesOf(user),
		})
	}

	rankStandings(standings)
	return standings, nil
}

// rankStandings sorts by points descending (username ascending among ties, for
// stable output) and assigns competition ranks: 1 + the number of users with
// strictly more points.
func rankStandings(standings []Standing) {
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		return standings[i].Username < standings[j].Username
	})

	for i := range standings {
		if i > 0 && standings[i].Points == standings[i-1].Points {
			standings[i].Rank = standings[i-1].Rank
		} else {
			standings[i].Rank = i + 1
		}
	}
}

func badgesOf(user models.User) []models.Badge {
	badges := make([]models.Badge, 0, len(user.Badges))
	for _, ub := range user.Badges {
		badges = append(badges, ub.Badge)
	}
	return badges
}
