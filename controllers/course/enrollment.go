package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"

	"github.com/gofiber/fiber/v2"
)

// EnrollInCourse enrolls the caller into a course version
func EnrollInCourse(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	versionID := c.Locals("courseVersionID").(int)

	manager := services.NewEnrollmentManager(database.Database.Db)
	enrollment, err := manager.Enroll(user.ID, uint(versionID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in course successfully!", enrollment)
}

// GetUserEnrollments lists the caller's enrollments
func GetUserEnrollments(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	query := database.Database.Db.Where("user_id = ? AND is_deleted = ?", user.ID, false).Order("id DESC")

	// Apply pagination when the validator stashed one
	if reqData, ok := c.Locals("validatedEnrollmentList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	}); ok {
		offset := (*reqData.Page - 1) * *reqData.Limit
		query = query.Offset(offset).Limit(*reqData.Limit)
	}

	var enrollments []courseModels.Enrollment
	if err := query.Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
}

// GetCourseProgress returns the caller's aggregate progress for one enrollment
func GetCourseProgress(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(int)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("id = ? AND user_id = ? AND is_deleted = ?", enrollmentID, user.ID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	manager := services.NewEnrollmentManager(database.Database.Db)
	progress, err := manager.ComputeCourseProgress(enrollment.ID)
	if err != nil {
		return serviceError(c, err)
	}

	var lessonProgress []courseModels.LessonProgress
	if err := database.Database.Db.Where("enrollment_id = ? AND is_deleted = ?", enrollment.ID, false).Find(&lessonProgress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lesson progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment": enrollment,
		"progress":   progress,
		"lessons":    lessonProgress,
	})
}

// CompleteCourse finalizes an enrollment and runs the completion cascade
func CompleteCourse(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(int)

	manager := services.NewEnrollmentManager(database.Database.Db)
	result, err := manager.CompleteEnrollment(user.ID, uint(enrollmentID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course completed successfully!", result)
}
