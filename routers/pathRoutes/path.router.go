package pathRoutes

import (
	controllers "lms/controllers/path"
	"lms/middleware"
	validators "lms/validators/path"

	"github.com/gofiber/fiber/v2"
)

// SetupPathRoutes sets up learning path routes
func SetupPathRoutes(app *fiber.App) {
	// Admin path management
	adminGroup := app.Group("/admin/path")
	adminGroup.Post("/create", middleware.JWTMiddleware, controllers.AdminCreatePath)
	adminGroup.Post("/:id/step", middleware.JWTMiddleware, validators.AddStep(), controllers.AdminAddStep)
	adminGroup.Delete("/:id/step/:stepId", middleware.JWTMiddleware, validators.StepParam(), controllers.AdminRemoveStep)
	adminGroup.Post("/:id/reorder", middleware.JWTMiddleware, validators.ReorderSteps(), controllers.AdminReorderSteps)
	adminGroup.Post("/:id/publish", middleware.JWTMiddleware, validators.PathParam(), controllers.AdminPublishPath)

	// Learner enrollment and progress
	pathGroup := app.Group("/path")
	pathGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.PathParam(), controllers.EnrollInPath)

	enrollGroup := app.Group("/path-enrollment")
	enrollGroup.Get("/:id/progress", middleware.JWTMiddleware, validators.PathEnrollmentParam(), controllers.GetPathProgress)
	enrollGroup.Post("/:id/step/:stepId/progress", middleware.JWTMiddleware, validators.StepProgress(), controllers.UpdateStepProgress)
	enrollGroup.Post("/:id/step/:stepId/complete", middleware.JWTMiddleware, validators.EnrollmentStepParam(), controllers.CompleteStep)
	enrollGroup.Post("/:id/step/:stepId/skip", middleware.JWTMiddleware, validators.EnrollmentStepParam(), controllers.SkipStep)
	enrollGroup.Post("/:id/suspend", middleware.JWTMiddleware, validators.Suspend(), controllers.SuspendEnrollment)
	enrollGroup.Post("/:id/resume", middleware.JWTMiddleware, validators.PathEnrollmentParam(), controllers.ResumeEnrollment)
}
