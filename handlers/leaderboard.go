package handlers

import (
	"errors"
	"strconv"
	"time"

	"fight-picks-system/middleware"
	"fight-picks-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboards *services.LeaderboardService, awards *services.AwardService) {
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "0"))
		standings, err := leaderboards.Global(c.Context(), limit)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to build leaderboard", "cause": err.Error()})
		}
		return c.JSON(standings)
	})

	app.Get("/leaderboard/event/:id", func(c *fiber.Ctx) error {
		standings, err := leaderboards.Event(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to build event leaderboard", "cause": err.Error()})
		}
		return c.JSON(standings)
	})

	app.Get("/leaderboard/year/:year", func(c *fiber.Ctx) error {
		year, err := strconv.Atoi(c.Params("year"))
		if err != nil || year < 2000 || year > time.Now().UTC().Year()+1 {
			return c.Status(400).JSON(fiber.Map{"error": "invalid year"})
		}
		standings, err := leaderboards.Yearly(c.Context(), year)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to build season leaderboard", "cause": err.Error()})
		}
		return c.JSON(standings)
	})

	// Admin: manual annual award run (the scheduler covers the normal path)
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())
	admin.Post("/awards/annual", func(c *fiber.Ctx) error {
		year, err := strconv.Atoi(c.Query("year"))
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "year query parameter is required"})
		}
		force := c.Query("force") == "true"

		summary, err := awards.AwardAnnualBadge(c.Context(), year, force)
		switch {
		case errors.Is(err, services.ErrTooEarly):
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrNoEventsFound), errors.Is(err, services.ErrNoScoredPicks):
			return c.Status(422).JSON(fiber.Map{"error": err.Error()})
		case err != nil:
			return c.Status(500).JSON(fiber.Map{"error": "annual award failed", "cause": err.Error()})
		}
		return c.JSON(summary)
	})
}
