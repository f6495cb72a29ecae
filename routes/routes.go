// path: routes/routes.go
package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/controllers"
	"github.com/jamwal-aryan/NullPointers-CivicTrack-sub000/middleware"
)

// Register attaches all API endpoints to the app.
func Register(app *fiber.App) {
	api := app.Group("/api", middleware.Identity())

	api.Post("/issues", controllers.HandleCreateIssue)
	api.Get("/issues", controllers.HandleListIssues)
	api.Get("/issues/:id", controllers.HandleGetIssue)
	api.Get("/issues/:id/history", controllers.HandleGetHistory)

	// Status moves are restricted to municipal staff.
	api.Patch("/issues/:id/status",
		middleware.RequireRole("authority", "admin"),
		controllers.HandleUpdateStatus)

	api.Post("/issues/:id/flags", controllers.HandleSubmitFlag)

	admin := api.Group("/admin", middleware.RequireRole("admin"))
	admin.Post("/issues/:id/review", controllers.HandleReviewFlags)
	admin.Get("/users/:id/flagging-stats", controllers.HandleFlaggingStats)
}
