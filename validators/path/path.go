package pathValidator

import (
	"strconv"
	"strings"

	"lms/middleware"
	"lms/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// PathParam validates the learning path ID in the URL
func PathParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		pathID, err := positiveParam(c, "id")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid path ID!", nil)
		}
		c.Locals("pathID", pathID)
		return c.Next()
	}
}

// StepParam validates the path and step IDs in the URL
func StepParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		pathID, err := positiveParam(c, "id")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid path ID!", nil)
		}
		stepID, err := positiveParam(c, "stepId")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid step ID!", nil)
		}
		c.Locals("pathID", pathID)
		c.Locals("stepID", stepID)
		return c.Next()
	}
}

// AddStep validates the step payload
func AddStep() fiber.Handler {
	return func(c *fiber.Ctx) error {
		pathID, err := positiveParam(c, "id")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid path ID!", nil)
		}

		reqData := new(services.StepInput)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Step title is required!"
		}
		if strings.TrimSpace(reqData.StepType) == "" {
			errors["step_type"] = "Step type is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("pathID", pathID)
		c.Locals("validatedStep", reqData)
		return c.Next()
	}
}

// ReorderBody is the complete desired step ordering
type ReorderBody struct {
	StepIDs []uint `json:"step_ids" validate:"required,min=1"`
}

// ReorderSteps validates the reorder payload
func ReorderSteps() fiber.Handler {
	return func(c *fiber.Ctx) error {
		pathID, err := positiveParam(c, "id")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid path ID!", nil)
		}

		reqData := new(ReorderBody)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "step_ids must list every step of the path!", nil)
		}

		c.Locals("pathID", pathID)
		c.Locals("validatedReorder", reqData)
		return c.Next()
	}
}

// EnrollmentStepParam validates the enrollment and step IDs in the URL
func EnrollmentStepParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, err := positiveParam(c, "id")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment ID!", nil)
		}
		stepID, err := positiveParam(c, "stepId")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid step ID!", nil)
		}
		c.Locals("pathEnrollmentID", enrollmentID)
		c.Locals("stepID", stepID)
		return c.Next()
	}
}

// PathEnrollmentParam validates the path enrollment ID in the URL
func PathEnrollmentParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, err := positiveParam(c, "id")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment ID!", nil)
		}
		c.Locals("pathEnrollmentID", enrollmentID)
		return c.Next()
	}
}

// StepProgress validates the enrollment/step IDs and the status payload
func StepProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, err := positiveParam(c, "id")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment ID!", nil)
		}
		stepID, err := positiveParam(c, "stepId")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid step ID!", nil)
		}

		reqData := new(struct {
			Status string `json:"status"`
		})
		if len(c.Body()) > 0 {
			if parseErr := c.BodyParser(reqData); parseErr != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}
		reqData.Status = strings.ToUpper(strings.TrimSpace(reqData.Status))

		c.Locals("pathEnrollmentID", enrollmentID)
		c.Locals("stepID", stepID)
		c.Locals("validatedStepStatus", reqData)
		return c.Next()
	}
}

// Suspend validates the enrollment ID and the optional reason
func Suspend() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, err := positiveParam(c, "id")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment ID!", nil)
		}

		reqData := new(struct {
			Reason string `json:"reason"`
		})
		if len(c.Body()) > 0 {
			if parseErr := c.BodyParser(reqData); parseErr != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		c.Locals("pathEnrollmentID", enrollmentID)
		c.Locals("validatedSuspend", reqData)
		return c.Next()
	}
}

func positiveParam(c *fiber.Ctx, name string) (int, error) {
	raw := strings.TrimSpace(c.Params(name))
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fiber.ErrBadRequest
	}
	return value, nil
}
