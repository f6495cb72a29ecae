// path: main.go
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/access"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/audit"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/ban"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/controllers"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/database"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/lifecycle"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/moderation"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/notify"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/routes"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	if err := database.Connect(context.Background()); err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = database.Disconnect(ctx)
	}()

	recordStore := store.NewMongo(database.DB())

	var notifier notify.Notifier = notify.Log{}
	if broker := os.Getenv("NOTIFY_MQTT_URL"); broker != "" {
		mq, err := notify.NewMQTT(broker,
			getenv("NOTIFY_MQTT_CLIENT_ID", "civictrack-api"),
			getenv("NOTIFY_MQTT_TOPIC", "civictrack/events"))
		if err != nil {
			log.Fatalf("mqtt connect failed: %v", err)
		}
		defer mq.Close()
		notifier = mq
	}

	evaluator := ban.NewEvaluator(recordStore)
	issuesEng := lifecycle.New(recordStore, notifier)
	modEng := moderation.New(recordStore, notifier, audit.NewMongo(database.DB()), evaluator)

	controllers.Setup(recordStore, access.NewGuard(), issuesEng, modEng, evaluator)

	// Daily sweep over recently active flaggers; reviews also trigger
	// evaluation inline, this catches the ones nobody reviewed.
	c := cron.New()
	if err := ban.NewSweeper(evaluator, notifier).Schedule(c); err != nil {
		log.Fatalf("cron schedule failed: %v", err)
	}
	c.Start()
	defer c.Stop()

	app := fiber.New()
	app.Use(recover.New())

	// Log concise request lines
	app.Use(logger.New(logger.Config{
		TimeFormat: "15:04:05",
	}))

	// CORS (dev-friendly)
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:3001, http://localhost:3002",
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
		AllowHeaders:     "*",
		AllowCredentials: false,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	// Health
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	// API
	routes.Register(app)

	addr := ":" + getenv("PORT", "3005")
	log.Println("API listening on", addr)
	log.Fatal(app.Listen(addr))
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
