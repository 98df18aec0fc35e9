package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"fight-picks-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PickService owns the user-facing pick surface: submitting predictions before
// lock and reading back picks and badges for the dashboard.
type PickService struct {
	DB *gorm.DB
}

func NewPickService(db *gorm.DB) *PickService {
	return &PickService{DB: db}
}

// SubmitPick creates or updates the caller's pick for a fight. One pick per
// (user, fight); rejected once the event date has passed.
func (s *PickService) SubmitPick(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		FightID string `json:"fight_id"`
		Winner  string `json:"winner"`
		Method  string `json:"method"`
		Round   int    `json:"round"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}

	var fight models.Fight
	err := s.DB.Preload("Event").First(&fight, "id = ?", req.FightID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "fight not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load fight", "cause": err.Error()})
	}

	if fight.Event.Locked(time.Now()) {
		return c.Status(409).JSON(fiber.Map{"error": ErrPicksLocked.Error()})
	}

	winner := strings.ToUpper(strings.TrimSpace(req.Winner))
	if winner != models.WinnerSideA && winner != models.WinnerSideB {
		return c.Status(400).JSON(fiber.Map{"error": "winner must be A or B"})
	}

	method := NormalizeMethod(req.Method)
	if method != models.MethodKO && method != models.MethodSub && method != models.MethodDec {
		return c.Status(400).JSON(fiber.Map{"error": "method must be KO, SUB or DEC"})
	}

	round := req.Round
	if method == models.MethodDec {
		round = 0
	} else if round < 1 || round > fight.ScheduledRounds {
		return c.Status(400).JSON(fiber.Map{"error": "round must be between 1 and " + strconv.Itoa(fight.ScheduledRounds)})
	}

	pick := models.Pick{
		UserID:  userID,
		FightID: req.FightID,
		Winner:  winner,
		Method:  method,
		Round:   round,
	}
	// One statement, race-safe: two concurrent first submissions both land on the
	// (user_id, fight_id) unique index and the loser becomes an update.
	if err := s.DB.Clauses(pickUpsertClause()).Create(&pick).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to save pick", "cause": err.Error()})
	}

	return c.JSON(pick)
}

// pickUpsertClause resolves a duplicate (user_id, fight_id) insert into an update
// of the prediction fields. Points and rule_version stay untouched; only the
// scoring pipeline writes those.
func pickUpsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "fight_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"winner", "method", "round", "updated_at"}),
	}
}

// GetUserPicks returns the caller's picks with fight and event context, newest
// events first.
func (s *PickService) GetUserPicks(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var picks []models.Pick
	err := s.DB.Preload("Fight.Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&picks).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load picks", "cause": err.Error()})
	}

	return c.JSON(picks)
}

// GetUserBadges returns the caller's earned badges with their definitions.
func (s *PickService) GetUserBadges(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var userBadges []models.UserBadge
	err := s.DB.Preload("Badge").
		Where("user_id = ?", userID).
		Order("awarded_at DESC").
		Find(&userBadges).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load badges", "cause": err.Error()})
	}

	response := make([]fiber.Map, 0, len(userBadges))
	for _, ub := range userBadges {
		response = append(response, fiber.Map{
			"id":          ub.ID,
			"name":        ub.Badge.Name,
			"description": ub.Badge.Description,
			"icon":        ub.Badge.Icon,
			"awarded_at":  ub.AwardedAt,
		})
	}
	return c.JSON(response)
}
