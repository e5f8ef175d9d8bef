package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/handlers"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/middleware"
)

func ChatRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	chat := api.Group("/chat", middleware.Protected())
	chat.Post("", handlers.AccessChat)
	chat.Get("/my-conversations", handlers.GetMyConversations)
	chat.Post("/message", handlers.SendMessage)
	chat.Get("/:conversationId", handlers.GetConversationMessages)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(handlers.ServeWs))
}
