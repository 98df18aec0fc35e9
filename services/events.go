package services

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fight-picks-system/models"
	"fight-picks-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventService owns the event/fight admin surface: card CRUD, fight ordering and
// official result entry. Result writes hand off to the ResultService pipeline so
// derived state (pick points, totals, badges) is never left stale.
type EventService struct {
	DB      *gorm.DB
	Results *ResultService
}

func NewEventService(db *gorm.DB, results *ResultService) *EventService {
	return &EventService{DB: db, Results: results}
}

// ListEvents returns all events, newest first, with fight counts.
func (s *EventService) ListEvents(c *fiber.Ctx) error {
	var events []models.Event
	if err := s.DB.Order("date DESC").Find(&events).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to list events", "cause": err.Error()})
	}

	for i := range events {
		s.DB.Model(&models.Fight{}).Where("event_id = ?", events[i].ID).Count(&events[i].FightCount)
	}

	return c.JSON(events)
}

// GetEvent returns one event with its fights in card order. The path parameter
// may be the event's id or its slug.
func (s *EventService) GetEvent(c *fiber.Ctx) error {
	id := c.Params("id")

	var event models.Event
	err := s.DB.Preload("Fights", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).First(&event, eventLookupQuery(id), id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "event not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load event", "cause": err.Error()})
	}

	return c.JSON(event)
}

// CreateEvent creates a card from form values: name, date (RFC3339, stored UTC)
// and an optional poster image uploaded to R2.
func (s *EventService) CreateEvent(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	dateStr := c.FormValue("date")

	if name == "" || dateStr == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name and date are required"})
	}

	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid date (use RFC3339)"})
	}

	var imageURL string
	if poster, err := c.FormFile("image"); err == nil && poster.Size > 0 {
		imageURL, err = savePoster(poster)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload poster", "cause": err.Error()})
		}
	}

	event := models.Event{
		Name:  name,
		Slug:  slug.Make(name),
		Date:  date.UTC(),
		Image: imageURL,
	}

	if err := s.DB.Create(&event).Error; err != nil {
		// Slug collision — retry once with a random suffix.
		event.ID = ""
		event.Slug = fmt.Sprintf("%s-%d", slug.Make(name), rand.Intn(1000))
		if err := s.DB.Create(&event).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to create event", "cause": err.Error()})
		}
	}

	log.Printf("[EVENTS] created event %s (%s)", event.Name, event.ID)
	return c.Status(201).JSON(event)
}

// UpdateEvent updates name/date/poster; the slug follows the name.
func (s *EventService) UpdateEvent(c *fiber.Ctx) error {
	id := c.Params("id")

	var event models.Event
	if err := s.DB.First(&event, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "event not found"})
	}

	if name := strings.TrimSpace(c.FormValue("name")); name != "" {
		event.Name = name
		event.Slug = slug.Make(name)
	}
	if dateStr := c.FormValue("date"); dateStr != "" {
		date, err := time.Parse(time.RFC3339, dateStr)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid date (use RFC3339)"})
		}
		event.Date = date.UTC()
	}
	if poster, err := c.FormFile("image"); err == nil && poster.Size > 0 {
		url, err := savePoster(poster)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload poster", "cause": err.Error()})
		}
		event.Image = url
	}

	if err := s.DB.Save(&event).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update event", "cause": err.Error()})
	}

	return c.JSON(event)
}

// DeleteEvent removes the event, its fights and their picks, then recomputes the
// totals of every user who had picks on the card so no stale points survive.
func (s *EventService) DeleteEvent(c *fiber.Ctx) error {
	id := c.Params("id")

	var event models.Event
	if err := s.DB.First(&event, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "event not found"})
	}

	affected, err := s.distinctPickUsers(s.DB.Model(&models.Pick{}).
		Joins("JOIN fights ON fights.id = picks.fight_id").
		Where("fights.event_id = ?", id))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to collect affected users", "cause": err.Error()})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("fight_id IN (?)",
			tx.Model(&models.Fight{}).Select("id").Where("event_id = ?", id),
		).Delete(&models.Pick{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.Fight{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete event", "cause": err.Error()})
	}

	s.recomputeTotals(c, affected)

	log.Printf("[EVENTS] deleted event %s, recomputed %d user totals", id, len(affected))
	return c.JSON(fiber.Map{"success": true, "affected_users": len(affected)})
}

// CreateFight appends a fight to the card at the next order slot.
func (s *EventService) CreateFight(c *fiber.Ctx) error {
	eventID := c.Params("id")

	var event models.Event
	if err := s.DB.First(&event, "id = ?", eventID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "event not found"})
	}

	fighterA := strings.TrimSpace(c.FormValue("fighter_a"))
	fighterB := strings.TrimSpace(c.FormValue("fighter_b"))
	if fighterA == "" || fighterB == "" {
		return c.Status(400).JSON(fiber.Map{"error": "fighter_a and fighter_b are required"})
	}

	scheduledRounds := 3
	if v := c.FormValue("scheduled_rounds"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || (n != 3 && n != 5) {
			return c.Status(400).JSON(fiber.Map{"error": "scheduled_rounds must be 3 or 5"})
		}
		scheduledRounds = n
	}

	var maxOrder int
	s.DB.Model(&models.Fight{}).Where("event_id = ?", eventID).
		Select("COALESCE(MAX(sort_order), 0)").Scan(&maxOrder)

	fight := models.Fight{
		EventID:         eventID,
		FighterA:        fighterA,
		FighterB:        fighterB,
		Order:           maxOrder + 1,
		ScheduledRounds: scheduledRounds,
	}
	if err := s.DB.Create(&fight).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create fight", "cause": err.Error()})
	}

	return c.Status(201).JSON(fight)
}

// UpdateFight changes the matchup fields; results go through SubmitResult.
func (s *EventService) UpdateFight(c *fiber.Ctx) error {
	id := c.Params("id")

	var fight models.Fight
	if err := s.DB.First(&fight, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "fight not found"})
	}

	if v := strings.TrimSpace(c.FormValue("fighter_a")); v != "" {
		fight.FighterA = v
	}
	if v := strings.TrimSpace(c.FormValue("fighter_b")); v != "" {
		fight.FighterB = v
	}
	if v := c.FormValue("scheduled_rounds"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || (n != 3 && n != 5) {
			return c.Status(400).JSON(fiber.Map{"error": "scheduled_rounds must be 3 or 5"})
		}
		fight.ScheduledRounds = n
	}

	if err := s.DB.Save(&fight).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update fight", "cause": err.Error()})
	}

	return c.JSON(fight)
}

// DeleteFight removes the fight and its picks, then recomputes affected totals.
func (s *EventService) DeleteFight(c *fiber.Ctx) error {
	id := c.Params("id")

	var fight models.Fight
	if err := s.DB.First(&fight, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "fight not found"})
	}

	affected, err := s.distinctPickUsers(s.DB.Model(&models.Pick{}).Where("fight_id = ?", id))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to collect affected users", "cause": err.Error()})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("fight_id = ?", id).Delete(&models.Pick{}).Error; err != nil {
			return err
		}
		return tx.Delete(&fight).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete fight", "cause": err.Error()})
	}

	s.recomputeTotals(c, affected)

	return c.JSON(fiber.Map{"success": true, "affected_users": len(affected)})
}

// ReorderFight swaps the fight with its neighbor in the given direction ("UP"
// moves it earlier on the card).
func (s *EventService) ReorderFight(c *fiber.Ctx) error {
	id := c.Params("id")
	direction := strings.ToUpper(c.FormValue("direction"))
	if direction != "UP" && direction != "DOWN" {
		return c.Status(400).JSON(fiber.Map{"error": "direction must be UP or DOWN"})
	}

	var fight models.Fight
	if err := s.DB.First(&fight, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "fight not found"})
	}

	targetOrder := fight.Order + 1
	if direction == "UP" {
		targetOrder = fight.Order - 1
	}

	var other models.Fight
	err := s.DB.Where("event_id = ? AND sort_order = ?", fight.EventID, targetOrder).First(&other).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(409).JSON(fiber.Map{"error": "cannot move further"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to reorder", "cause": err.Error()})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Fight{}).Where("id = ?", fight.ID).
			Update("sort_order", targetOrder).Error; err != nil {
			return err
		}
		return tx.Model(&models.Fight{}).Where("id = ?", other.ID).
			Update("sort_order", fight.Order).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to reorder", "cause": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true})
}

// SubmitResult records (or corrects) the official result and runs the recompute
// pipeline. The winner may arrive as a side letter or a fighter name; decisions
// force round 0.
func (s *EventService) SubmitResult(c *fiber.Ctx) error {
	id := c.Params("id")

	var fight models.Fight
	if err := s.DB.First(&fight, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "fight not found"})
	}

	winner, err := ResolveWinnerSide(&fight, strings.TrimSpace(c.FormValue("winner")))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	method := NormalizeMethod(c.FormValue("method"))
	if method != models.MethodKO && method != models.MethodSub && method != models.MethodDec {
		return c.Status(400).JSON(fiber.Map{"error": "method must be KO, SUB or DEC"})
	}

	round := 0
	if method != models.MethodDec {
		round, err = strconv.Atoi(c.FormValue("round"))
		if err != nil || round < 1 || round > fight.ScheduledRounds {
			return c.Status(400).JSON(fiber.Map{
				"error": fmt.Sprintf("round must be between 1 and %d", fight.ScheduledRounds),
			})
		}
	}

	fight.Winner = &winner
	fight.Method = &method
	fight.Round = &round
	if err := s.DB.Save(&fight).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to save result", "cause": err.Error()})
	}

	updated, err := s.Results.RecomputeFight(c.Context(), fight.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "result saved but recompute failed", "cause": err.Error()})
	}

	log.Printf("[EVENTS] result set for %s vs %s (%s %s R%d), %d picks rescored",
		fight.FighterA, fight.FighterB, winner, method, round, updated)
	return c.JSON(fiber.Map{"success": true, "updated_picks": updated})
}

// RecomputeAll re-scores every fight with a complete result (rule migrations,
// score corrections in bulk).
func (s *EventService) RecomputeAll(c *fiber.Ctx) error {
	fights, picks, err := s.Results.RecomputeAll(c.Context())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "bulk recompute failed", "cause": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "fights": fights, "picks": picks})
}

// eventLookupQuery picks the column a path parameter is matched against: uuids
// hit the primary key, anything else is treated as a slug. Postgres rejects
// non-uuid text bound against the uuid id column, so the lookup has to choose
// one column up front instead of OR-ing both.
func eventLookupQuery(param string) string {
	if uuid.Validate(param) == nil {
		return "id = ?"
	}
	return "slug = ?"
}

// savePoster stores an event poster on R2 when configured, otherwise in the
// local uploads directory served under /uploads.
func savePoster(poster *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(poster.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	name := uuid.NewString() + ext

	if utils.R2Ready() {
		return utils.UploadFileToR2(poster, "events/"+name)
	}

	if err := utils.SaveFile(poster, utils.GetUploadPath(name)); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

func (s *EventService) distinctPickUsers(q *gorm.DB) ([]string, error) {
	var userIDs []string
	err := q.Distinct("picks.user_id").Pluck("picks.user_id", &userIDs).Error
	return userIDs, err
}

func (s *EventService) recomputeTotals(c *fiber.Ctx, userIDs []string) {
	for _, userID := range userIDs {
		if _, err := s.Results.RecomputeUserTotal(c.Context(), userID); err != nil {
			log.Printf("[EVENTS] total recompute failed for user %s: %v", userID, err)
		}
	}
}
