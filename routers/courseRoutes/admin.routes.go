package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up all admin course management routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course")

	// Course lifecycle
	adminGroup.Post("/create", middleware.JWTMiddleware, controllers.AdminCreateCourse)
	adminGroup.Post("/:id/publish", middleware.JWTMiddleware, controllers.AdminPublishCourse)
	adminGroup.Post("/:id/version", middleware.JWTMiddleware, controllers.AdminCreateCourseVersion)
	adminGroup.Post("/:id/duplicate", middleware.JWTMiddleware, controllers.AdminDuplicateCourse)
	adminGroup.Delete("/:id", middleware.JWTMiddleware, controllers.AdminDeleteCourse)

	// Structure management
	versionGroup := app.Group("/admin/version")
	versionGroup.Post("/:id/module", middleware.JWTMiddleware, controllers.AdminCreateModule)

	moduleGroup := app.Group("/admin/module")
	moduleGroup.Post("/:id/lesson", middleware.JWTMiddleware, controllers.AdminCreateLesson)

	lessonGroup := app.Group("/admin/lesson")
	lessonGroup.Post("/:id/quiz", middleware.JWTMiddleware, controllers.AdminCreateQuiz)

	quizGroup := app.Group("/admin/quiz")
	quizGroup.Post("/:id/question", middleware.JWTMiddleware, controllers.AdminAddQuestion)

	// Badges
	badgeGroup := app.Group("/admin/badge")
	badgeGroup.Post("/create", middleware.JWTMiddleware, controllers.AdminCreateBadge)
}
