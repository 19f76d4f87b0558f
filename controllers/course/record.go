package controllers

import (
	"strconv"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"

	"github.com/gofiber/fiber/v2"
)

// GetTrainingRecords lists the caller's immutable training records
func GetTrainingRecords(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var records []courseModels.TrainingRecord
	if err := database.Database.Db.
		Where("user_id = ? AND is_deleted = ?", user.ID, false).
		Order("completed_at DESC").
		Find(&records).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch training records!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Training records fetched successfully!", records)
}

// GetUserCertificates lists the caller's certificates
func GetUserCertificates(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var certificates []courseModels.Certificate
	if err := database.Database.Db.
		Where("user_id = ? AND is_deleted = ?", user.ID, false).
		Order("issued_at DESC").
		Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certificates)
}

// GetUserBadges lists the caller's earned badges
func GetUserBadges(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var badges []courseModels.UserBadge
	if err := database.Database.Db.
		Where("user_id = ? AND is_deleted = ?", user.ID, false).
		Order("awarded_at DESC").
		Find(&badges).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch badges!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Badges fetched successfully!", badges)
}

// CheckBadgeEligibility reports whether the caller currently qualifies for a badge
func CheckBadgeEligibility(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	badgeID, err := strconv.Atoi(c.Params("id"))
	if err != nil || badgeID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid badge ID!", nil)
	}

	evaluator := services.NewBadgeEvaluator(database.Database.Db)
	eligible, err := evaluator.CheckEligibility(user.ID, uint(badgeID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Eligibility checked successfully!", fiber.Map{
		"badge_id": badgeID,
		"eligible": eligible,
	})
}
