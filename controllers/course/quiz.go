package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// StartQuizAttempt opens a new attempt for the caller
func StartQuizAttempt(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizID := c.Locals("quizID").(int)
	reqData, ok := c.Locals("validatedQuizStart").(*courseValidator.QuizStartBody)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	engine := services.NewQuizEngine(database.Database.Db)
	attempt, err := engine.StartAttempt(uint(quizID), user.ID, reqData.EnrollmentID)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz attempt started!", attempt)
}

// SubmitQuizAttempt grades an open attempt
func SubmitQuizAttempt(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	attemptID := c.Locals("attemptID").(int)
	reqData, ok := c.Locals("validatedQuizSubmit").(*courseValidator.QuizSubmitBody)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	engine := services.NewQuizEngine(database.Database.Db)
	attempt, err := engine.SubmitAttempt(uint(attemptID), user.ID, reqData.Answers, reqData.TimeSpentSeconds)
	if err != nil {
		return serviceError(c, err)
	}

	message := "Quiz submitted. Better luck next time!"
	if attempt.Passed {
		message = "Quiz passed successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, attempt)
}

// GetQuizAttempts lists the caller's attempts for one quiz
func GetQuizAttempts(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizID := c.Locals("quizID").(int)

	var attempts []courseModels.QuizAttempt
	if err := database.Database.Db.
		Where("quiz_id = ? AND user_id = ? AND is_deleted = ?", quizID, user.ID, false).
		Order("attempt_number ASC").
		Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", attempts)
}
