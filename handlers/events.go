package handlers

import (
	"fight-picks-system/middleware"
	"fight-picks-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, eventService *services.EventService) {
	// Public card browsing
	app.Get("/events", eventService.ListEvents)
	app.Get("/events/:id", eventService.GetEvent)

	// Admin: card management and result entry
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	admin.Post("/events", eventService.CreateEvent)
	admin.Put("/events/:id", eventService.UpdateEvent)
	admin.Delete("/events/:id", eventService.DeleteEvent)

	admin.Post("/events/:id/fights", eventService.CreateFight)
	admin.Put("/fights/:id", eventService.UpdateFight)
	admin.Delete("/fights/:id", eventService.DeleteFight)
	admin.Post("/fights/:id/reorder", eventService.ReorderFight)

	// Setting (or correcting) a result triggers the full recompute pipeline
	admin.Post("/fights/:id/result", eventService.SubmitResult)
	admin.Post("/recompute", eventService.RecomputeAll)
}
