package handlers

import (
	"fight-picks-system/middleware"
	"fight-picks-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPickRoutes(app *fiber.App, pickService *services.PickService) {
	// 🔐 Secured routes — require user context from the gateway
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/picks", pickService.SubmitPick)
	secured.Get("/user/picks", pickService.GetUserPicks)
	secured.Get("/user/badges", pickService.GetUserBadges)
}
