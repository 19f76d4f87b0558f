package controllers

import (
	"errors"

	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/services"

	"github.com/gofiber/fiber/v2"
)

// currentUser resolves the authenticated user from the JWT locals.
func currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, errors.New("unauthorized")
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, errors.New("user not found")
	}
	return &user, nil
}

// requireAdmin resolves the authenticated user and rejects non-admins.
func requireAdmin(c *fiber.Ctx) (*models.User, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}
	if user.Role != "ADMIN" {
		return nil, errors.New("forbidden")
	}
	return user, nil
}

// serviceError maps a service error onto the JSON envelope.
func serviceError(c *fiber.Ctx, err error) error {
	return middleware.JsonResponse(c, services.HTTPStatus(err), false, err.Error(), nil)
}
