package services

import (
	"context"
	"errors"
	"time"

	"fight-picks-system/models"

	"gorm.io/gorm"
)

// Store is the persistence surface the scoring/standings engine runs against.
// Lookups of a single record return ErrNotFound when it does not exist; list
// methods return empty slices. GrantBadge must tolerate concurrent evaluation:
// inserting a (user, badge) pair that already exists is a no-op, not an error.
type Store interface {
	GetFightWithPicks(ctx context.Context, fightID string) (*models.Fight, error)
	ListEventFights(ctx context.Context, eventID string) ([]models.Fight, error)
	ListFightsWithResults(ctx context.Context) ([]models.Fight, error)

	UpdatePickPoints(ctx context.Context, pickID string, points, ruleVersion int) error
	GetPicksByUser(ctx context.Context, userID string) ([]models.Pick, error)
	ListEventPicksByUser(ctx context.Context, userID, eventID string) ([]models.Pick, error)
	CountDistinctPickEvents(ctx context.Context, userID string) (int64, error)
	ListScoredPicksForEvents(ctx context.Context, eventIDs []string) ([]models.Pick, error)

	ListEventsInYear(ctx context.Context, year int) ([]models.Event, error)

	SetUserPoints(ctx context.Context, userID string, total int) error
	GetUsersByIDs(ctx context.Context, userIDs []string) ([]models.User, error)
	ListTopUsersByPoints(ctx context.Context, limit int) ([]models.User, error)

	GetBadgeByName(ctx context.Context, name string) (*models.Badge, error)
	CreateBadge(ctx context.Context, badge *models.Badge) error
	UpdateBadgeDescription(ctx context.Context, badgeID, description string) error
	UserHasBadge(ctx context.Context, userID, badgeID string) (bool, error)
	GrantBadge(ctx context.Context, userID, badgeID string) error
}

// GormStore implements Store over the application database.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) GetFightWithPicks(ctx context.Context, fightID string) (*models.Fight, error) {
	var fight models.Fight
	err := s.DB.WithContext(ctx).Preload("Picks").First(&fight, "id = ?", fightID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fight, nil
}

func (s *GormStore) ListEventFights(ctx context.Context, eventID string) ([]models.Fight, error) {
	var fights []models.Fight
	err := s.DB.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("sort_order ASC").
		Find(&fights).Error
	return fights, err
}

func (s *GormStore) ListFightsWithResults(ctx context.Context) ([]models.Fight, error) {
	var fights []models.Fight
	err := s.DB.WithContext(ctx).
		Where("winner IS NOT NULL AND method IS NOT NULL").
		Find(&fights).Error
	return fights, err
}

func (s *GormStore) UpdatePickPoints(ctx context.Context, pickID string, points, ruleVersion int) error {
	return s.DB.WithContext(ctx).Model(&models.Pick{}).
		Where("id = ?", pickID).
		Updates(map[string]interface{}{
			"points":       points,
			"rule_version": ruleVersion,
		}).Error
}

func (s *GormStore) GetPicksByUser(ctx context.Context, userID string) ([]models.Pick, error) {
	var picks []models.Pick
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&picks).Error
	return picks, err
}

func (s *GormStore) ListEventPicksByUser(ctx context.Context, userID, eventID string) ([]models.Pick, error) {
	var picks []models.Pick
	err := s.DB.WithContext(ctx).
		Joins("JOIN fights ON fights.id = picks.fight_id").
		Where("picks.user_id = ? AND fights.event_id = ?", userID, eventID).
		Preload("Fight").
		Find(&picks).Error
	return picks, err
}

func (s *GormStore) CountDistinctPickEvents(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Pick{}).
		Joins("JOIN fights ON fights.id = picks.fight_id").
		Where("picks.user_id = ?", userID).
		Distinct("fights.event_id").
		Count(&count).Error
	return count, err
}

func (s *GormStore) ListScoredPicksForEvents(ctx context.Context, eventIDs []string) ([]models.Pick, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	var picks []models.Pick
	err := s.DB.WithContext(ctx).
		Joins("JOIN fights ON fights.id = picks.fight_id").
		Where("fights.event_id IN ? AND picks.points IS NOT NULL", eventIDs).
		Find(&picks).Error
	return picks, err
}

func (s *GormStore) ListEventsInYear(ctx context.Context, year int) ([]models.Event, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var events []models.Event
	err := s.DB.WithContext(ctx).
		Where("date >= ? AND date < ?", start, end).
		Order("date ASC").
		Find(&events).Error
	return events, err
}

func (s *GormStore) SetUserPoints(ctx context.Context, userID string, total int) error {
	return s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("points", total).Error
}

func (s *GormStore) GetUsersByIDs(ctx context.Context, userIDs []string) ([]models.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var users []models.User
	err := s.DB.WithContext(ctx).
		Preload("Badges.Badge").
		Where("id IN ?", userIDs).
		Find(&users).Error
	return users, err
}

func (s *GormStore) ListTopUsersByPoints(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := s.DB.WithContext(ctx).
		Preload("Badges.Badge").
		Order("points DESC, username ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (s *GormStore) GetBadgeByName(ctx context.Context, name string) (*models.Badge, error) {
	var badge models.Badge
	err := s.DB.WithContext(ctx).First(&badge, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

func (s *GormStore) CreateBadge(ctx context.Context, badge *models.Badge) error {
	return s.DB.WithContext(ctx).Create(badge).Error
}

func (s *GormStore) UpdateBadgeDescription(ctx context.Context, badgeID, description string) error {
	return s.DB.WithContext(ctx).Model(&models.Badge{}).
		Where("id = ?", badgeID).
		Update("description", description).Error
}

func (s *GormStore) UserHasBadge(ctx context.Context, userID, badgeID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) GrantBadge(ctx context.Context, userID, badgeID string) error {
	err := s.DB.WithContext(ctx).Create(&models.UserBadge{
		UserID:  userID,
		BadgeID: badgeID,
	}).Error
	// A concurrent evaluation may have granted it first; the unique index on
	// (user_id, badge_id) makes that a duplicate insert, which counts as success.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}
