package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

func ownedEnrollment(c *fiber.Ctx, userID uint) (*courseModels.Enrollment, error) {
	enrollmentID := c.Locals("enrollmentID").(int)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("id = ? AND user_id = ? AND is_deleted = ?", enrollmentID, userID, false).First(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// UpdateLessonProgress records a consumption event for one lesson
func UpdateLessonProgress(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollment, err := ownedEnrollment(c, user.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	lessonID := c.Locals("lessonID").(int)
	reqData, ok := c.Locals("validatedLessonProgress").(*courseValidator.LessonProgressBody)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	tracker := services.NewProgressTracker(database.Database.Db)
	progress, err := tracker.UpdateProgress(enrollment.ID, uint(lessonID), reqData.Percentage, reqData.PositionSeconds, reqData.TimeSpentSeconds)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", progress)
}

// CompleteLesson marks a lesson as manually completed
func CompleteLesson(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(int)
	lessonID := c.Locals("lessonID").(int)

	tracker := services.NewProgressTracker(database.Database.Db)
	progress, err := tracker.CompleteManually(user.ID, uint(enrollmentID), uint(lessonID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed successfully!", progress)
}

// ValidateLessonCompletion checks a completion claim without persisting it
func ValidateLessonCompletion(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollment, err := ownedEnrollment(c, user.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	claim := new(services.CompletionClaim)
	if err := c.BodyParser(claim); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	tracker := services.NewProgressTracker(database.Database.Db)
	if err := tracker.ValidateCompletionEligibility(enrollment.ID, uint(lessonID), *claim); err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson is eligible for completion!", nil)
}
