package controllers

import (
	"strconv"

	"lms/database"
	"lms/middleware"
	"lms/services"

	"github.com/gofiber/fiber/v2"
)

func adminIDParam(c *fiber.Ctx, name string) (uint, bool) {
	value, err := strconv.Atoi(c.Params(name))
	if err != nil || value <= 0 {
		return 0, false
	}
	return uint(value), true
}

// AdminCreateCourse creates a draft course with its initial version
func AdminCreateCourse(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	input := new(services.CourseInput)
	if err := c.BodyParser(input); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if input.Title == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course title is required!", nil)
	}

	manager := services.NewCourseManager(database.Database.Db)
	course, version, err := manager.CreateCourse(*input)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", fiber.Map{
		"course":  course,
		"version": version,
	})
}

// AdminPublishCourse makes a course available for enrollment
func AdminPublishCourse(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	courseID, ok := adminIDParam(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	manager := services.NewCourseManager(database.Database.Db)
	course, err := manager.PublishCourse(courseID)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course published successfully!", course)
}

// AdminCreateCourseVersion snapshots the current structure into a new version
func AdminCreateCourseVersion(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	courseID, ok := adminIDParam(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	manager := services.NewCourseManager(database.Database.Db)
	version, err := manager.CreateCourseVersion(courseID)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course version created successfully!", version)
}

// AdminDuplicateCourse clones a course with its full structure
func AdminDuplicateCourse(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	courseID, ok := adminIDParam(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	manager := services.NewCourseManager(database.Database.Db)
	clone, err := manager.DuplicateCourse(courseID)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course duplicated successfully!", clone)
}

// AdminDeleteCourse soft deletes a course and its structure
func AdminDeleteCourse(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	courseID, ok := adminIDParam(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	manager := services.NewCourseManager(database.Database.Db)
	if err := manager.DeleteCourse(courseID); err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// AdminCreateModule appends a module to a course version
func AdminCreateModule(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	versionID, ok := adminIDParam(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course version ID!", nil)
	}

	reqData := new(struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		OrderIndex  int    `json:"order_index"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if reqData.Title == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Module title is required!", nil)
	}

	manager := services.NewCourseManager(database.Database.Db)
	module, err := manager.AddModule(versionID, reqData.Title, reqData.Description, reqData.OrderIndex)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// AdminCreateLesson appends a lesson to a module
func AdminCreateLesson(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	moduleID, ok := adminIDParam(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module ID!", nil)
	}

	input := new(services.LessonInput)
	if err := c.BodyParser(input); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if input.Title == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Lesson title is required!", nil)
	}

	manager := services.NewCourseManager(database.Database.Db)
	lesson, err := manager.AddLesson(moduleID, *input)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// AdminCreateQuiz attaches a quiz to a lesson
func AdminCreateQuiz(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	lessonID, ok := adminIDParam(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
	}

	reqData := new(struct {
		Title        string `json:"title"`
		PassingScore int    `json:"passing_score"`
		MaxAttempts  int    `json:"max_attempts"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	manager := services.NewCourseManager(database.Database.Db)
	quiz, err := manager.CreateQuiz(lessonID, reqData.Title, reqData.PassingScore, reqData.MaxAttempts)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

// AdminAddQuestion appends a question with its answer key to a quiz
func AdminAddQuestion(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	quizID, ok := adminIDParam(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quiz ID!", nil)
	}

	input := new(services.QuestionInput)
	if err := c.BodyParser(input); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if input.Prompt == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Question prompt is required!", nil)
	}

	manager := services.NewCourseManager(database.Database.Db)
	question, err := manager.AddQuestion(quizID, *input)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added successfully!", question)
}

// AdminCreateBadge creates a badge tied to a set of required courses
func AdminCreateBadge(c *fiber.Ctx) error {
	if _, err := requireAdmin(c); err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	reqData := new(struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		CourseIDs   []uint `json:"course_ids"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if reqData.Name == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Badge name is required!", nil)
	}

	manager := services.NewCourseManager(database.Database.Db)
	badge, err := manager.CreateBadge(reqData.Name, reqData.Description, reqData.CourseIDs)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Badge created successfully!", badge)
}
