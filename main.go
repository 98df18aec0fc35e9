package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"fight-picks-system/handlers"
	"fight-picks-system/middleware"
	"fight-picks-system/models"
	"fight-picks-system/services"
	"fight-picks-system/utils"
	"fight-picks-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024, // 20MB, posters only
	})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		// Duplicate badge grants rely on gorm.ErrDuplicatedKey translation
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Fight{},
		&models.Pick{},
		&models.Badge{},
		&models.UserBadge{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.InitR2(); err != nil {
		log.Printf("⚠️  R2 not configured (%v) — posters will be stored locally", err)
		if err := utils.EnsureUploadDir(); err != nil {
			log.Fatal("failed to ensure upload dir:", err)
		}
	}

	store := services.NewGormStore(db)
	badgeService := services.NewBadgeService(store)
	resultService := services.NewResultService(store, badgeService)
	leaderboardService := services.NewLeaderboardService(store)
	awardService := services.NewAwardService(store)
	eventService := services.NewEventService(db, resultService)
	pickService := services.NewPickService(db)

	if err := badgeService.SeedBadgeCatalog(context.Background()); err != nil {
		log.Fatal("failed to seed badge catalog:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional: import upcoming cards from the MMA stats API
	if apiKey := os.Getenv("RAPID_API_KEY"); apiKey != "" {
		apiHost := os.Getenv("MMA_API_HOST")
		if apiHost == "" {
			apiHost = "mma-stats.p.rapidapi.com"
		}
		importWorker := workers.NewEventImportWorker(db, "https://"+apiHost, apiKey, apiHost)
		importWorker.Start(ctx)
	} else {
		log.Println("⚠️  RAPID_API_KEY not set — event import worker disabled, cards are admin-managed only")
	}

	awardService.StartAnnualAwardScheduler()

	// ✅ Setup routes — enforced Gateway auth + consistent /s/ prefix for user routes
	handlers.SetupEventRoutes(app, eventService)
	handlers.SetupPickRoutes(app, pickService)
	handlers.SetupLeaderboardRoutes(app, leaderboardService, awardService)

	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Annual award scheduler running (daily)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
