package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/handlers"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/middleware"
)

func ProfileRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/users", handlers.ListUsers)

	profile := api.Group("/profile/me", middleware.Protected())
	profile.Get("", handlers.GetProfile)
	profile.Put("", handlers.UpdateProfile)
	profile.Put("/password", handlers.ChangePassword)
	profile.Delete("", handlers.DeleteAccount)
	profile.Get("/report", handlers.GetActivityReport)
}
