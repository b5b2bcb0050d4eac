package routes

import (
	"coursemarket/backend/clients/identity"
	"coursemarket/backend/clients/media"
	"coursemarket/backend/config"
	"coursemarket/backend/controllers"
	"coursemarket/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, idClient identity.Client, uploader media.Uploader) {
	protectUser := middleware.ProtectUser(cfg)
	protectEducator := middleware.ProtectEducator(cfg, idClient)

	// Public catalog + purchase flow
	courseController := controllers.NewCourseController(db, cfg)
	course := app.Group("/api/course")
	course.Get("/all", courseController.GetAllCourses)
	course.Post("/purchase", protectUser, courseController.CreatePurchase)
	course.Post("/purchase/confirm", protectUser, courseController.ConfirmPurchase)
	course.Get("/:id", courseController.GetCourseByID)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	user := app.Group("/api/user", protectUser)
	user.Get("/data", userController.GetUserData)
	user.Get("/enrolled-courses", userController.GetEnrolledCourses)
	user.Post("/update-course-progress", userController.UpdateCourseProgress)
	user.Post("/get-course-progress", userController.GetCourseProgress)
	user.Post("/add-rating", userController.AddRating)

	// Educator routes; ownership of individual courses is checked per handler
	educatorController := controllers.NewEducatorController(db, cfg, idClient, uploader)
	app.Post("/api/educator/update-role", protectUser, educatorController.UpdateRoleToEducator)
	educator := app.Group("/api/educator", protectEducator)
	educator.Get("/courses", educatorController.GetEducatorCourses)
	educator.Get("/dashboard", educatorController.GetDashboard)
	educator.Get("/enrolled-students", educatorController.GetEnrolledStudents)
	educator.Post("/add-course", educatorController.AddCourse)
	educator.Put("/course/:id", educatorController.UpdateCourse)
	educator.Delete("/course/:id", educatorController.DeleteCourse)

	// Identity provider lifecycle webhooks (signature-verified, no bearer auth)
	webhookController := controllers.NewWebhookController(db, cfg)
	app.Post("/api/webhooks/identity", webhookController.HandleIdentityEvent)
}
