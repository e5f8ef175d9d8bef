package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/handlers"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/middleware"
)

func ItemRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	items := api.Group("/items")
	items.Get("", handlers.GetAllItems)

	items.Post("", middleware.Protected(), handlers.CreateItem)
	items.Post("/ai-price", middleware.Protected(), handlers.GetPriceSuggestion)
	items.Get("/:id", handlers.GetItemByID)
	items.Put("/:id", middleware.Protected(), handlers.UpdateItem)
	items.Delete("/:id", middleware.Protected(), handlers.DeleteItem)
}
