package courseValidator

import (
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// EnrollCourse validates the course version ID in the URL
func EnrollCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		versionIDStr := strings.TrimSpace(c.Params("id"))
		if versionIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course version ID is required!", nil)
		}

		versionID, err := strconv.Atoi(versionIDStr)
		if err != nil || versionID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course version ID!", nil)
		}

		c.Locals("courseVersionID", versionID)
		return c.Next()
	}
}

// EnrollmentParam validates the enrollment ID in the URL
func EnrollmentParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentIDStr := strings.TrimSpace(c.Params("id"))
		if enrollmentIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Enrollment ID is required!", nil)
		}

		enrollmentID, err := strconv.Atoi(enrollmentIDStr)
		if err != nil || enrollmentID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment ID!", nil)
		}

		c.Locals("enrollmentID", enrollmentID)
		return c.Next()
	}
}

// GetUserEnrollments validates optional pagination
func GetUserEnrollments() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit != nil && *reqData.Limit < 1 {
			errors["limit"] = "Limit must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		if reqData.Page != nil && reqData.Limit != nil {
			c.Locals("validatedEnrollmentList", reqData)
		}
		return c.Next()
	}
}
