package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/database"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/handlers"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/jobs"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/notifications"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/routes"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/services"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/store"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/websocket"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()
	notifications.InitEmailService()

	c := cron.New()
	c.AddFunc("0 * * * *", jobs.DeactivateStaleListings)
	go c.Start()
	log.Println("✅ Cron job for stale listings scheduled successfully.")

	hub := websocket.NewHub()
	chatService := services.NewChatService(
		store.NewConversationStore(database.DB),
		store.NewMessageStore(database.DB),
		hub,
	)
	handlers.InitMessaging(chatService, hub)

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "SwapSpot",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to SwapSpot API",
		})
	})

	routes.AuthRoutes(app)
	routes.ProfileRoutes(app)
	routes.ItemRoutes(app)
	routes.ChatRoutes(app)
	routes.UploadRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	log.Println("✅ Server is running on port 8080")
	err := app.Listen(":8080")
	if err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
