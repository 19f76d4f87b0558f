package courseValidator

import (
	"strconv"
	"strings"

	"lms/middleware"
	"lms/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// LessonProgressBody is the consumption event payload
type LessonProgressBody struct {
	Percentage       float64 `json:"percentage"`
	PositionSeconds  int     `json:"position_seconds" validate:"gte=0"`
	TimeSpentSeconds int     `json:"time_spent_seconds" validate:"gte=0"`
}

// UpdateLessonProgress validates the enrollment/lesson IDs and the body
func UpdateLessonProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := lessonParams(c); err != nil {
			return err
		}

		reqData := new(LessonProgressBody)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid progress payload!", nil)
		}

		c.Locals("validatedLessonProgress", reqData)
		return c.Next()
	}
}

// CompleteLesson validates the enrollment/lesson IDs
func CompleteLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := lessonParams(c); err != nil {
			return err
		}
		return c.Next()
	}
}

// QuizStartBody optionally links the attempt to an enrollment
type QuizStartBody struct {
	EnrollmentID *uint `json:"enrollment_id"`
}

// StartQuiz validates the quiz ID and the optional enrollment link
func StartQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		quizID, err := positiveParam(c, "id")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quiz ID!", nil)
		}

		reqData := new(QuizStartBody)
		if len(c.Body()) > 0 {
			if parseErr := c.BodyParser(reqData); parseErr != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		c.Locals("quizID", quizID)
		c.Locals("validatedQuizStart", reqData)
		return c.Next()
	}
}

// QuizSubmitBody carries the tagged answers
type QuizSubmitBody struct {
	Answers          []services.Answer `json:"answers" validate:"required,min=1"`
	TimeSpentSeconds int               `json:"time_spent_seconds" validate:"gte=0"`
}

// SubmitQuiz validates the attempt ID and the answer payload
func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		attemptID, err := positiveParam(c, "id")
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid attempt ID!", nil)
		}

		reqData := new(QuizSubmitBody)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "At least one answer is required!", nil)
		}

		c.Locals("attemptID", attemptID)
		c.Locals("validatedQuizSubmit", reqData)
		return c.Next()
	}
}

func lessonParams(c *fiber.Ctx) error {
	enrollmentID, err := positiveParam(c, "id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid enrollment ID!", nil)
	}
	lessonID, err := positiveParam(c, "lessonId")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
	}
	c.Locals("enrollmentID", enrollmentID)
	c.Locals("lessonID", lessonID)
	return nil
}

func positiveParam(c *fiber.Ctx, name string) (int, error) {
	raw := strings.TrimSpace(c.Params(name))
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fiber.ErrBadRequest
	}
	return value, nil
}
