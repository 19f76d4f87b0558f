package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all learner-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Enrollment (by course version)
	courseGroup.Post("/version/:id/enroll", middleware.JWTMiddleware, validators.EnrollCourse(), controllers.EnrollInCourse)

	// Enrollment progress and completion
	enrollGroup := app.Group("/enrollment")
	enrollGroup.Get("/:id/progress", middleware.JWTMiddleware, validators.EnrollmentParam(), controllers.GetCourseProgress)
	enrollGroup.Post("/:id/complete", middleware.JWTMiddleware, validators.EnrollmentParam(), controllers.CompleteCourse)

	// Lesson progress
	enrollGroup.Post("/:id/lesson/:lessonId/progress", middleware.JWTMiddleware, validators.UpdateLessonProgress(), controllers.UpdateLessonProgress)
	enrollGroup.Post("/:id/lesson/:lessonId/complete", middleware.JWTMiddleware, validators.CompleteLesson(), controllers.CompleteLesson)
	enrollGroup.Post("/:id/lesson/:lessonId/validate", middleware.JWTMiddleware, validators.CompleteLesson(), controllers.ValidateLessonCompletion)

	// Quiz attempts
	quizGroup := app.Group("/quiz")
	quizGroup.Post("/:id/attempt", middleware.JWTMiddleware, validators.StartQuiz(), controllers.StartQuizAttempt)
	quizGroup.Get("/:id/attempts", middleware.JWTMiddleware, validators.StartQuiz(), controllers.GetQuizAttempts)

	attemptGroup := app.Group("/attempt")
	attemptGroup.Post("/:id/submit", middleware.JWTMiddleware, validators.SubmitQuiz(), controllers.SubmitQuizAttempt)

	// User records
	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, validators.GetUserEnrollments(), controllers.GetUserEnrollments)
	userGroup.Get("/training-records", middleware.JWTMiddleware, controllers.GetTrainingRecords)
	userGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
	userGroup.Get("/badges", middleware.JWTMiddleware, controllers.GetUserBadges)

	badgeGroup := app.Group("/badge")
	badgeGroup.Get("/:id/eligibility", middleware.JWTMiddleware, controllers.CheckBadgeEligibility)
}
