package services

import (
	"context"
	"sort"
	"time"

	"fight-picks-system/models"

	"github.com/google/uuid"
)

// memStore is an in-memory Store used by the engine tests. It mirrors the
// GormStore contract: ErrNotFound for missing records, duplicate badge grants
// are no-ops, scored-pick queries skip NULL points.
type memStore struct {
	users      map[string]*models.User
	events     map[string]*models.Event
	fights     map[string]*models.Fight
	picks      map[string]*models.Pick
	badges     map[string]*models.Badge
	userBadges []models.UserBadge
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]*models.User),
		events: make(map[string]*models.Event),
		fights: make(map[string]*models.Fight),
		picks:  make(map[string]*models.Pick),
		badges: make(map[string]*models.Badge),
	}
}

// --- seeding helpers ---

func (m *memStore) addUser(username string) *models.User {
	user := &models.User{ID: uuid.NewString(), Username: username, Email: username + "@test.local"}
	m.users[user.ID] = user
	return user
}

func (m *memStore) addEvent(name string, date time.Time) *models.Event {
	event := &models.Event{ID: uuid.NewString(), Name: name, Slug: name, Date: date}
	m.events[event.ID] = event
	return event
}

func (m *memStore) addFight(eventID, fighterA, fighterB string) *models.Fight {
	fight := &models.Fight{
		ID:              uuid.NewString(),
		EventID:         eventID,
		FighterA:        fighterA,
		FighterB:        fighterB,
		ScheduledRounds: 3,
	}
	m.fights[fight.ID] = fight
	return fight
}

func (m *memStore) addPick(userID, fightID, winner, method string, round int) *models.Pick {
	pick := &models.Pick{
		ID:      uuid.NewString(),
		UserID:  userID,
		FightID: fightID,
		Winner:  winner,
		Method:  method,
		Round:   round,
	}
	m.picks[pick.ID] = pick
	return pick
}

func (m *memStore) setResult(fightID, winner, method string, round int) {
	fight := m.fights[fightID]
	fight.Winner = &winner
	fight.Method = &method
	fight.Round = &round
}

// --- Store implementation ---

func (m *memStore) GetFightWithPicks(_ context.Context, fightID string) (*models.Fight, error) {
	fight, ok := m.fights[fightID]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *fight
	for _, pick := range m.picks {
		if pick.FightID == fightID {
			copy.Picks = append(copy.Picks, *pick)
		}
	}
	return &copy, nil
}

func (m *memStore) ListEventFights(_ context.Context, eventID string) ([]models.Fight, error) {
	var fights []models.Fight
	for _, fight := range m.fights {
		if fight.EventID == eventID {
			fights = append(fights, *fight)
		}
	}
	return fights, nil
}

func (m *memStore) ListFightsWithResults(_ context.Context) ([]models.Fight, error) {
	var fights []models.Fight
	for _, fight := range m.fights {
		if fight.Winner != nil && fight.Method != nil {
			fights = append(fights, *fight)
		}
	}
	return fights, nil
}

func (m *memStore) UpdatePickPoints(_ context.Context, pickID string, points, ruleVersion int) error {
	pick, ok := m.picks[pickID]
	if !ok {
		return ErrNotFound
	}
	p := points
	pick.Points = &p
	pick.RuleVersion = ruleVersion
	return nil
}

func (m *memStore) GetPicksByUser(_ context.Context, userID string) ([]models.Pick, error) {
	var picks []models.Pick
	for _, pick := range m.picks {
		if pick.UserID == userID {
			picks = append(picks, *pick)
		}
	}
	return picks, nil
}

func (m *memStore) ListEventPicksByUser(_ context.Context, userID, eventID string) ([]models.Pick, error) {
	var picks []models.Pick
	for _, pick := range m.picks {
		if pick.UserID != userID {
			continue
		}
		if fight, ok := m.fights[pick.FightID]; ok && fight.EventID == eventID {
			picks = append(picks, *pick)
		}
	}
	return picks, nil
}

func (m *memStore) CountDistinctPickEvents(_ context.Context, userID string) (int64, error) {
	seen := make(map[string]bool)
	for _, pick := range m.picks {
		if pick.UserID != userID {
			continue
		}
		if fight, ok := m.fights[pick.FightID]; ok {
			seen[fight.EventID] = true
		}
	}
	return int64(len(seen)), nil
}

func (m *memStore) ListScoredPicksForEvents(_ context.Context, eventIDs []string) ([]models.Pick, error) {
	wanted := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		wanted[id] = true
	}
	var picks []models.Pick
	for _, pick := range m.picks {
		if pick.Points == nil {
			continue
		}
		if fight, ok := m.fights[pick.FightID]; ok && wanted[fight.EventID] {
			picks = append(picks, *pick)
		}
	}
	return picks, nil
}

func (m *memStore) ListEventsInYear(_ context.Context, year int) ([]models.Event, error) {
	start, end := SeasonBounds(year)
	var events []models.Event
	for _, event := range m.events {
		if !event.Date.Before(start) && event.Date.Before(end) {
			events = append(events, *event)
		}
	}
	return events, nil
}

func (m *memStore) SetUserPoints(_ context.Context, userID string, total int) error {
	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.Points = total
	return nil
}

func (m *memStore) GetUsersByIDs(_ context.Context, userIDs []string) ([]models.User, error) {
	var users []models.User
	for _, id := range userIDs {
		if user, ok := m.users[id]; ok {
			users = append(users, m.withBadges(*user))
		}
	}
	return users, nil
}

func (m *memStore) ListTopUsersByPoints(_ context.Context, limit int) ([]models.User, error) {
	var users []models.User
	for _, user := range m.users {
		users = append(users, m.withBadges(*user))
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Points != users[j].Points {
			return users[i].Points > users[j].Points
		}
		return users[i].Username < users[j].Username
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (m *memStore) withBadges(user models.User) models.User {
	for _, ub := range m.userBadges {
		if ub.UserID == user.ID {
			granted := ub
			granted.Badge = *m.badges[ub.BadgeID]
			user.Badges = append(user.Badges, granted)
		}
	}
	return user
}

func (m *memStore) GetBadgeByName(_ context.Context, name string) (*models.Badge, error) {
	for _, badge := range m.badges {
		if badge.Name == name {
			copy := *badge
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) CreateBadge(_ context.Context, badge *models.Badge) error {
	if badge.ID == "" {
		badge.ID = uuid.NewString()
	}
	stored := *badge
	m.badges[badge.ID] = &stored
	return nil
}

func (m *memStore) UpdateBadgeDescription(_ context.Context, badgeID, description string) error {
	badge, ok := m.badges[badgeID]
	if !ok {
		return ErrNotFound
	}
	badge.Description = description
	return nil
}

func (m *memStore) UserHasBadge(_ context.Context, userID, badgeID string) (bool, error) {
	for _, ub := range m.userBadges {
		if ub.UserID == userID && ub.BadgeID == badgeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) GrantBadge(_ context.Context, userID, badgeID string) error {
	for _, ub := range m.userBadges {
		if ub.UserID == userID && ub.BadgeID == badgeID {
			return nil // duplicate insert counts as success
		}
	}
	m.userBadges = append(m.userBadges, models.UserBadge{
		ID:        uuid.NewString(),
		UserID:    userID,
		BadgeID:   badgeID,
		AwardedAt: time.Now(),
	})
	return nil
}

// grantCount is a test hook: how many UserBadge rows exist for (user, badge).
func (m *memStore) grantCount(userID, badgeName string) int {
	count := 0
	for _, ub := range m.userBadges {
		if ub.UserID == userID && m.badges[ub.BadgeID].Name == badgeName {
			count++
		}
	}
	return count
}
