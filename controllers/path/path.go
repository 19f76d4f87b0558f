package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/services"
	pathValidator "lms/validators/path"

	"github.com/gofiber/fiber/v2"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, false
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func serviceError(c *fiber.Ctx, err error) error {
	return middleware.JsonResponse(c, services.HTTPStatus(err), false, err.Error(), nil)
}

// AdminCreatePath creates a draft learning path
func AdminCreatePath(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	reqData := new(struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if reqData.Title == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Path title is required!", nil)
	}

	engine := services.NewPathEngine(database.Database.Db)
	path, err := engine.CreatePath(reqData.Title, reqData.Description)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Learning path created successfully!", path)
}

// AdminAddStep appends a step to a draft or published path
func AdminAddStep(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	pathID := c.Locals("pathID").(int)
	input, ok := c.Locals("validatedStep").(*services.StepInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	engine := services.NewPathEngine(database.Database.Db)
	step, err := engine.AddStep(uint(pathID), *input)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Step added successfully!", step)
}

// AdminRemoveStep soft deletes a step and recomputes enrollments
func AdminRemoveStep(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	pathID := c.Locals("pathID").(int)
	stepID := c.Locals("stepID").(int)

	engine := services.NewPathEngine(database.Database.Db)
	if err := engine.RemoveStep(uint(pathID), uint(stepID)); err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Step removed successfully!", nil)
}

// AdminReorderSteps applies a complete new step ordering
func AdminReorderSteps(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	pathID := c.Locals("pathID").(int)
	reqData, ok := c.Locals("validatedReorder").(*pathValidator.ReorderBody)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	engine := services.NewPathEngine(database.Database.Db)
	steps, err := engine.ReorderSteps(uint(pathID), reqData.StepIDs)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Steps reordered successfully!", steps)
}

// AdminPublishPath makes a path available for enrollment
func AdminPublishPath(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	pathID := c.Locals("pathID").(int)

	engine := services.NewPathEngine(database.Database.Db)
	path, err := engine.Publish(uint(pathID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Learning path published successfully!", path)
}

// EnrollInPath enrolls the caller into a published path
func EnrollInPath(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	pathID := c.Locals("pathID").(int)

	engine := services.NewPathEngine(database.Database.Db)
	enrollment, err := engine.EnrollUser(user.ID, uint(pathID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in learning path successfully!", enrollment)
}

// UpdateStepProgress moves one step to the requested status
func UpdateStepProgress(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("pathEnrollmentID").(int)
	stepID := c.Locals("stepID").(int)
	reqData, ok := c.Locals("validatedStepStatus").(*struct {
		Status string `json:"status"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	engine := services.NewPathEngine(database.Database.Db)
	enrollment, err := engine.UpdateStepProgress(user.ID, uint(enrollmentID), uint(stepID), reqData.Status)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Step progress updated successfully!", enrollment)
}

// CompleteStep marks one step as completed
func CompleteStep(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("pathEnrollmentID").(int)
	stepID := c.Locals("stepID").(int)

	engine := services.NewPathEngine(database.Database.Db)
	enrollment, err := engine.CompleteStep(user.ID, uint(enrollmentID), uint(stepID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Step completed successfully!", enrollment)
}

// SkipStep marks one step as skipped
func SkipStep(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("pathEnrollmentID").(int)
	stepID := c.Locals("stepID").(int)

	engine := services.NewPathEngine(database.Database.Db)
	enrollment, err := engine.SkipStep(user.ID, uint(enrollmentID), uint(stepID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Step skipped successfully!", enrollment)
}

// SuspendEnrollment pauses an active path enrollment
func SuspendEnrollment(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("pathEnrollmentID").(int)
	reqData, ok := c.Locals("validatedSuspend").(*struct {
		Reason string `json:"reason"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	engine := services.NewPathEngine(database.Database.Db)
	enrollment, err := engine.Suspend(user.ID, uint(enrollmentID), reqData.Reason)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment suspended successfully!", enrollment)
}

// ResumeEnrollment reactivates a suspended path enrollment
func ResumeEnrollment(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("pathEnrollmentID").(int)

	engine := services.NewPathEngine(database.Database.Db)
	enrollment, err := engine.Resume(user.ID, uint(enrollmentID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment resumed successfully!", enrollment)
}

// GetPathProgress returns the caller's enrollment with per-step state
func GetPathProgress(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("pathEnrollmentID").(int)

	engine := services.NewPathEngine(database.Database.Db)
	progress, err := engine.GetProgress(user.ID, uint(enrollmentID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Path progress fetched successfully!", progress)
}
