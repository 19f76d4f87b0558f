package services

import (
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateQuizPassingScoreDefaults(t *testing.T) {
	db := newTestDB(t)
	_, _, lessons := seedCourse(t, db, "RICH_TEXT")

	manager := NewCourseManager(db)

	quiz, err := manager.CreateQuiz(lessons[0], "Check", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 70, quiz.PassingScore)

	_, err = manager.CreateQuiz(lessons[0], "Check", 101, 0)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeValidation))
}

func TestAddQuestionValidatesAnswerKey(t *testing.T) {
	db := newTestDB(t)
	_, _, lessons := seedCourse(t, db, "RICH_TEXT")
	manager := NewCourseManager(db)
	quiz, err := manager.CreateQuiz(lessons[0], "Check", 70, 0)
	require.NoError(t, err)

	// Key references an option that does not exist
	_, err = manager.AddQuestion(quiz.ID, QuestionInput{
		Prompt:       "Pick one",
		QuestionType: QuestionSingleChoice,
		Options:      []string{"a", "b"},
		Key:          Answer{Selected: intPtr(5)},
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeValidation))

	// Choice questions need at least two options
	_, err = manager.AddQuestion(quiz.ID, QuestionInput{
		Prompt:       "Pick one",
		QuestionType: QuestionSingleChoice,
		Options:      []string{"a"},
		Key:          Answer{Selected: intPtr(0)},
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeValidation))

	// Valid question persists with its key
	question, err := manager.AddQuestion(quiz.ID, QuestionInput{
		Prompt:       "Pick one",
		QuestionType: QuestionSingleChoice,
		Options:      []string{"a", "b"},
		Key:          Answer{Selected: intPtr(1)},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, question.CorrectAnswer)
}

func countLiveRows(t *testing.T, db *gorm.DB, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where("is_deleted = ?", false).Where(where, args...).Count(&count).Error)
	return count
}

func TestCreateCourseVersionCopiesStructure(t *testing.T) {
	db := newTestDB(t)
	course, version, lessons := seedCourse(t, db, "RICH_TEXT", "VIDEO")
	_, _ = seedQuiz(t, db, lessons[0], 70, 0, threeQuestionSet())

	next, err := NewCourseManager(db).CreateCourseVersion(course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, next.VersionNumber)
	assert.True(t, next.IsCurrent)

	var old courseModels.CourseVersion
	require.NoError(t, db.First(&old, version.ID).Error)
	assert.False(t, old.IsCurrent)

	assert.Equal(t, int64(1), countLiveRows(t, db, &courseModels.Module{}, "course_version_id = ?", next.ID))

	var newModule courseModels.Module
	require.NoError(t, db.Where("course_version_id = ?", next.ID).First(&newModule).Error)
	assert.Equal(t, int64(2), countLiveRows(t, db, &courseModels.Lesson{}, "module_id = ?", newModule.ID))

	var newLessons []courseModels.Lesson
	require.NoError(t, db.Where("module_id = ?", newModule.ID).Order("order_index asc").Find(&newLessons).Error)
	assert.Equal(t, int64(1), countLiveRows(t, db, &courseModels.Quiz{}, "lesson_id = ?", newLessons[0].ID))

	var newQuiz courseModels.Quiz
	require.NoError(t, db.Where("lesson_id = ?", newLessons[0].ID).First(&newQuiz).Error)
	assert.Equal(t, int64(3), countLiveRows(t, db, &courseModels.QuizQuestion{}, "quiz_id = ?", newQuiz.ID))
}

func TestDuplicateCourseCopiesTree(t *testing.T) {
	db := newTestDB(t)
	course, _, lessons := seedCourse(t, db, "RICH_TEXT", "VIDEO")
	_, _ = seedQuiz(t, db, lessons[0], 70, 0, threeQuestionSet())

	clone, err := NewCourseManager(db).DuplicateCourse(course.ID)
	require.NoError(t, err)

	assert.Equal(t, course.Title+" (Copy)", clone.Title)
	assert.Equal(t, "DRAFT", clone.Status)
	assert.False(t, clone.IsPublished)
	assert.NotEqual(t, course.ID, clone.ID)

	var cloneVersion courseModels.CourseVersion
	require.NoError(t, db.Where("course_id = ?", clone.ID).First(&cloneVersion).Error)
	assert.Equal(t, 1, cloneVersion.VersionNumber)

	var cloneModule courseModels.Module
	require.NoError(t, db.Where("course_version_id = ?", cloneVersion.ID).First(&cloneModule).Error)
	assert.Equal(t, int64(2), countLiveRows(t, db, &courseModels.Lesson{}, "module_id = ?", cloneModule.ID))
}

func TestDeleteCourseCascades(t *testing.T) {
	db := newTestDB(t)
	course, version, lessons := seedCourse(t, db, "RICH_TEXT")
	quiz, _ := seedQuiz(t, db, lessons[0], 70, 0, threeQuestionSet())

	require.NoError(t, NewCourseManager(db).DeleteCourse(course.ID))

	var deleted courseModels.Course
	require.NoError(t, db.First(&deleted, course.ID).Error)
	assert.True(t, deleted.IsDeleted)
	assert.False(t, deleted.IsPublished)

	assert.Equal(t, int64(0), countLiveRows(t, db, &courseModels.CourseVersion{}, "course_id = ?", course.ID))
	assert.Equal(t, int64(0), countLiveRows(t, db, &courseModels.Module{}, "course_version_id = ?", version.ID))
	assert.Equal(t, int64(0), countLiveRows(t, db, &courseModels.Lesson{}, "module_id > ?", 0))
	assert.Equal(t, int64(0), countLiveRows(t, db, &courseModels.Quiz{}, "lesson_id = ?", lessons[0]))
	assert.Equal(t, int64(0), countLiveRows(t, db, &courseModels.QuizQuestion{}, "quiz_id = ?", quiz.ID))
}

func TestPublishCourseActivates(t *testing.T) {
	db := newTestDB(t)
	manager := NewCourseManager(db)

	course, version, err := manager.CreateCourse(CourseInput{Title: "New Hire Orientation"})
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", course.Status)
	assert.Equal(t, 1, version.VersionNumber)

	published, err := manager.PublishCourse(course.ID)
	require.NoError(t, err)

	var stored courseModels.Course
	require.NoError(t, db.First(&stored, published.ID).Error)
	assert.True(t, stored.IsPublished)
	assert.Equal(t, "ACTIVE", stored.Status)
}
