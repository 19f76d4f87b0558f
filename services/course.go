package services

import (
	"errors"

	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// CourseManager owns course authoring: structure CRUD, versioning,
// duplication and cascading deletion.
type CourseManager struct {
	db *gorm.DB
}

func NewCourseManager(db *gorm.DB) *CourseManager {
	return &CourseManager{db: db}
}

// CourseInput is the authoring payload for a course.
type CourseInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Author       string `json:"author"`
	ThumbnailURL string `json:"thumbnail_url"`
	ValidityDays int    `json:"validity_days"`
}

// CreateCourse creates a draft course with its initial version.
func (cm *CourseManager) CreateCourse(input CourseInput) (*courseModels.Course, *courseModels.CourseVersion, error) {
	course := courseModels.Course{
		Title:        input.Title,
		Description:  input.Description,
		Author:       input.Author,
		ThumbnailURL: input.ThumbnailURL,
		ValidityDays: input.ValidityDays,
		Status:       "DRAFT",
	}
	var version courseModels.CourseVersion
	err := cm.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&course).Error; err != nil {
			return err
		}
		version = courseModels.CourseVersion{CourseID: course.ID, VersionNumber: 1, IsCurrent: true}
		return tx.Create(&version).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &course, &version, nil
}

// PublishCourse makes a course available for enrollment.
func (cm *CourseManager) PublishCourse(courseID uint) (*courseModels.Course, error) {
	course, err := cm.loadCourse(courseID)
	if err != nil {
		return nil, err
	}
	err = cm.db.Model(course).Updates(map[string]interface{}{"is_published": true, "status": "ACTIVE"}).Error
	if err != nil {
		return nil, err
	}
	return course, nil
}

// AddModule appends a module to a course version.
func (cm *CourseManager) AddModule(courseVersionID uint, title, description string, orderIndex int) (*courseModels.Module, error) {
	var version courseModels.CourseVersion
	err := cm.db.Where("id = ? AND is_deleted = ?", courseVersionID, false).First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrCodeNotFound, "Course version not found!")
	}
	if err != nil {
		return nil, err
	}

	module := courseModels.Module{
		CourseVersionID: courseVersionID,
		Title:           title,
		Description:     description,
		OrderIndex:      orderIndex,
	}
	if err := cm.db.Create(&module).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

// LessonInput is the authoring payload for a lesson.
type LessonInput struct {
	Title           string `json:"title"`
	ContentType     string `json:"content_type"`
	Body            string `json:"body"`
	VideoURL        string `json:"video_url"`
	DocumentURL     string `json:"document_url"`
	DurationSeconds int    `json:"duration_seconds"`
	OrderIndex      int    `json:"order_index"`
}

// AddLesson appends a lesson to a module.
func (cm *CourseManager) AddLesson(moduleID uint, input LessonInput) (*courseModels.Lesson, error) {
	var module courseModels.Module
	err := cm.db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrCodeNotFound, "Module not found!")
	}
	if err != nil {
		return nil, err
	}

	lesson := courseModels.Lesson{
		ModuleID:        moduleID,
		Title:           input.Title,
		ContentType:     input.ContentType,
		Body:            input.Body,
		VideoURL:        input.VideoURL,
		DocumentURL:     input.DocumentURL,
		DurationSeconds: input.DurationSeconds,
		OrderIndex:      input.OrderIndex,
	}
	if err := cm.db.Create(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

// CreateQuiz attaches a quiz to a lesson.
func (cm *CourseManager) CreateQuiz(lessonID uint, title string, passingScore, maxAttempts int) (*courseModels.Quiz, error) {
	if _, err := loadLesson(cm.db, lessonID); err != nil {
		return nil, err
	}
	if passingScore <= 0 {
		passingScore = 70
	}
	if passingScore > 100 {
		return nil, NewError(ErrCodeValidation, "Passing score cannot exceed 100!")
	}

	quiz := courseModels.Quiz{
		LessonID:     lessonID,
		Title:        title,
		PassingScore: passingScore,
		MaxAttempts:  maxAttempts,
	}
	if err := cm.db.Create(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// QuestionInput is the authoring payload for a quiz question.
type QuestionInput struct {
	Prompt       string   `json:"prompt"`
	QuestionType string   `json:"question_type"`
	Options      []string `json:"options"`
	Key          Answer   `json:"key"`
	OrderIndex   int      `json:"order_index"`
}

// AddQuestion appends a question with its answer key; the key must match
// the question type and reference existing options.
func (cm *CourseManager) AddQuestion(quizID uint, input QuestionInput) (*courseModels.QuizQuestion, error) {
	if _, err := loadQuiz(cm.db, quizID); err != nil {
		return nil, err
	}

	switch input.QuestionType {
	case QuestionSingleChoice, QuestionMultiSelect:
		if len(input.Options) < 2 {
			return nil, NewError(ErrCodeValidation, "Choice questions need at least two options!")
		}
	case QuestionTrueFalse:
	default:
		return nil, Errorf(ErrCodeValidation, "Unknown question type %q!", input.QuestionType)
	}

	options, err := encodeOptions(input.Options)
	if err != nil {
		return nil, err
	}
	key, err := EncodeAnswerKey(input.Key)
	if err != nil {
		return nil, err
	}

	question := courseModels.QuizQuestion{
		QuizID:        quizID,
		Prompt:        input.Prompt,
		QuestionType:  input.QuestionType,
		Options:       options,
		CorrectAnswer: key,
		OrderIndex:    input.OrderIndex,
	}
	if err := ValidateAnswerShape(&question, withQuestionID(input.Key, 0)); err != nil {
		return nil, err
	}
	if err := cm.db.Create(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// CreateBadge defines a badge gated by the given required courses.
func (cm *CourseManager) CreateBadge(name, description string, requiredCourseIDs []uint) (*courseModels.Badge, error) {
	badge := courseModels.Badge{Name: name, Description: description}
	err := cm.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&badge).Error; err != nil {
			return err
		}
		for _, courseID := range requiredCourseIDs {
			link := courseModels.BadgeCourse{BadgeID: badge.ID, CourseID: courseID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &badge, nil
}

// CreateCourseVersion opens a new version of a course, copying the full
// structure of the current version so it can be revised independently.
// Everything happens in one transaction.
func (cm *CourseManager) CreateCourseVersion(courseID uint) (*courseModels.CourseVersion, error) {
	if _, err := cm.loadCourse(courseID); err != nil {
		return nil, err
	}

	var current courseModels.CourseVersion
	err := cm.db.Where("course_id = ? AND is_current = ? AND is_deleted = ?", courseID, true, false).
		First(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrCodeNotFound, "Course has no current version!")
	}
	if err != nil {
		return nil, err
	}

	var next courseModels.CourseVersion
	err = cm.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&current).Update("is_current", false).Error; err != nil {
			return err
		}
		next = courseModels.CourseVersion{
			CourseID:      courseID,
			VersionNumber: current.VersionNumber + 1,
			IsCurrent:     true,
		}
		if err := tx.Create(&next).Error; err != nil {
			return err
		}
		return copyVersionStructure(tx, current.ID, next.ID)
	})
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// DuplicateCourse deep-copies a course: course, current version, modules,
// lessons, quizzes and questions, all inside one transaction.
func (cm *CourseManager) DuplicateCourse(courseID uint) (*courseModels.Course, error) {
	source, err := cm.loadCourse(courseID)
	if err != nil {
		return nil, err
	}

	var current courseModels.CourseVersion
	err = cm.db.Where("course_id = ? AND is_current = ? AND is_deleted = ?", courseID, true, false).
		First(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrCodeNotFound, "Course has no current version!")
	}
	if err != nil {
		return nil, err
	}

	clone := courseModels.Course{
		Title:        source.Title + " (Copy)",
		Description:  source.Description,
		Author:       source.Author,
		ThumbnailURL: source.ThumbnailURL,
		ValidityDays: source.ValidityDays,
		Status:       "DRAFT",
	}
	err = cm.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&clone).Error; err != nil {
			return err
		}
		version := courseModels.CourseVersion{CourseID: clone.ID, VersionNumber: 1, IsCurrent: true}
		if err := tx.Create(&version).Error; err != nil {
			return err
		}
		return copyVersionStructure(tx, current.ID, version.ID)
	})
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

// DeleteCourse soft-deletes a course and its whole tree: versions, modules,
// lessons, quizzes and questions, in one transaction.
func (cm *CourseManager) DeleteCourse(courseID uint) error {
	course, err := cm.loadCourse(courseID)
	if err != nil {
		return err
	}

	return cm.db.Transaction(func(tx *gorm.DB) error {
		var versions []courseModels.CourseVersion
		if err := tx.Where("course_id = ? AND is_deleted = ?", courseID, false).Find(&versions).Error; err != nil {
			return err
		}
		for _, version := range versions {
			var modules []courseModels.Module
			if err := tx.Where("course_version_id = ? AND is_deleted = ?", version.ID, false).Find(&modules).Error; err != nil {
				return err
			}
			for _, module := range modules {
				var lessons []courseModels.Lesson
				if err := tx.Where("module_id = ? AND is_deleted = ?", module.ID, false).Find(&lessons).Error; err != nil {
					return err
				}
				for _, lesson := range lessons {
					var quizzes []courseModels.Quiz
					if err := tx.Where("lesson_id = ? AND is_deleted = ?", lesson.ID, false).Find(&quizzes).Error; err != nil {
						return err
					}
					for _, quiz := range quizzes {
						if err := tx.Model(&courseModels.QuizQuestion{}).
							Where("quiz_id = ?", quiz.ID).Update("is_deleted", true).Error; err != nil {
							return err
						}
					}
					if err := tx.Model(&courseModels.Quiz{}).
						Where("lesson_id = ?", lesson.ID).Update("is_deleted", true).Error; err != nil {
						return err
					}
				}
				if err := tx.Model(&courseModels.Lesson{}).
					Where("module_id = ?", module.ID).Update("is_deleted", true).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&courseModels.Module{}).
				Where("course_version_id = ?", version.ID).Update("is_deleted", true).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&courseModels.CourseVersion{}).
			Where("course_id = ?", courseID).Update("is_deleted", true).Error; err != nil {
			return err
		}
		return tx.Model(course).Updates(map[string]interface{}{"is_deleted": true, "is_published": false}).Error
	})
}

// copyVersionStructure clones modules, lessons, quizzes and questions from
// one course version into another.
func copyVersionStructure(tx *gorm.DB, fromVersionID, toVersionID uint) error {
	var modules []courseModels.Module
	if err := tx.Where("course_version_id = ? AND is_deleted = ?", fromVersionID, false).
		Order("order_index asc").Find(&modules).Error; err != nil {
		return err
	}

	for _, module := range modules {
		newModule := courseModels.Module{
			CourseVersionID: toVersionID,
			Title:           module.Title,
			Description:     module.Description,
			OrderIndex:      module.OrderIndex,
		}
		if err := tx.Create(&newModule).Error; err != nil {
			return err
		}

		var lessons []courseModels.Lesson
		if err := tx.Where("module_id = ? AND is_deleted = ?", module.ID, false).
			Order("order_index asc").Find(&lessons).Error; err != nil {
			return err
		}
		for _, lesson := range lessons {
			newLesson := courseModels.Lesson{
				ModuleID:        newModule.ID,
				Title:           lesson.Title,
				ContentType:     lesson.ContentType,
				Body:            lesson.Body,
				VideoURL:        lesson.VideoURL,
				DocumentURL:     lesson.DocumentURL,
				DurationSeconds: lesson.DurationSeconds,
				OrderIndex:      lesson.OrderIndex,
			}
			if err := tx.Create(&newLesson).Error; err != nil {
				return err
			}

			var quizzes []courseModels.Quiz
			if err := tx.Where("lesson_id = ? AND is_deleted = ?", lesson.ID, false).Find(&quizzes).Error; err != nil {
				return err
			}
			for _, quiz := range quizzes {
				newQuiz := courseModels.Quiz{
					LessonID:     newLesson.ID,
					Title:        quiz.Title,
					PassingScore: quiz.PassingScore,
					MaxAttempts:  quiz.MaxAttempts,
				}
				if err := tx.Create(&newQuiz).Error; err != nil {
					return err
				}

				var questions []courseModels.QuizQuestion
				if err := tx.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).
					Order("order_index asc").Find(&questions).Error; err != nil {
					return err
				}
				for _, question := range questions {
					newQuestion := courseModels.QuizQuestion{
						QuizID:        newQuiz.ID,
						Prompt:        question.Prompt,
						QuestionType:  question.QuestionType,
						Options:       question.Options,
						CorrectAnswer: question.CorrectAnswer,
						OrderIndex:    question.OrderIndex,
					}
					if err := tx.Create(&newQuestion).Error; err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (cm *CourseManager) loadCourse(courseID uint) (*courseModels.Course, error) {
	var course courseModels.Course
	err := cm.db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrCodeNotFound, "Course not found!")
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func withQuestionID(answer Answer, id uint) Answer {
	answer.QuestionID = id
	return answer
}
