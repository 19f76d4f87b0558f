package services

import (
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedQuiz(t *testing.T, db *gorm.DB, lessonID uint, passingScore, maxAttempts int, questions []QuestionInput) (*courseModels.Quiz, []uint) {
	t.Helper()
	manager := NewCourseManager(db)

	quiz, err := manager.CreateQuiz(lessonID, "Knowledge Check", passingScore, maxAttempts)
	require.NoError(t, err)

	ids := make([]uint, 0, len(questions))
	for _, input := range questions {
		question, err := manager.AddQuestion(quiz.ID, input)
		require.NoError(t, err)
		ids = append(ids, question.ID)
	}
	return quiz, ids
}

func threeQuestionSet() []QuestionInput {
	return []QuestionInput{
		{
			Prompt:       "Pick the right option",
			QuestionType: QuestionSingleChoice,
			Options:      []string{"a", "b", "c"},
			Key:          Answer{Selected: intPtr(1)},
			OrderIndex:   1,
		},
		{
			Prompt:       "True or false",
			QuestionType: QuestionTrueFalse,
			Key:          Answer{Value: boolPtr(true)},
			OrderIndex:   2,
		},
		{
			Prompt:       "Pick all that apply",
			QuestionType: QuestionMultiSelect,
			Options:      []string{"a", "b", "c", "d"},
			Key:          Answer{Selections: []int{0, 2}},
			OrderIndex:   3,
		},
	}
}

func TestStartAttemptNumbersAreMonotonic(t *testing.T) {
	db := newTestDB(t)
	_, _, lessons := seedCourse(t, db, "RICH_TEXT")
	quiz, _ := seedQuiz(t, db, lessons[0], 70, 0, threeQuestionSet())

	engine := NewQuizEngine(db)
	for want := 1; want <= 3; want++ {
		attempt, err := engine.StartAttempt(quiz.ID, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, want, attempt.AttemptNumber)
	}
}

func TestStartAttemptEnforcesMaxAttempts(t *testing.T) {
	db := newTestDB(t)
	_, _, lessons := seedCourse(t, db, "RICH_TEXT")
	quiz, _ := seedQuiz(t, db, lessons[0], 70, 1, threeQuestionSet())

	engine := NewQuizEngine(db)
	_, err := engine.StartAttempt(quiz.ID, 1, nil)
	require.NoError(t, err)

	_, err = engine.StartAttempt(quiz.ID, 1, nil)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeValidation))

	// Another user is unaffected
	_, err = engine.StartAttempt(quiz.ID, 2, nil)
	assert.NoError(t, err)
}

func TestSubmitAttemptScoresAndRounds(t *testing.T) {
	db := newTestDB(t)
	_, _, lessons := seedCourse(t, db, "RICH_TEXT")
	quiz, questionIDs := seedQuiz(t, db, lessons[0], 70, 0, threeQuestionSet())

	engine := NewQuizEngine(db)
	attempt, err := engine.StartAttempt(quiz.ID, 1, nil)
	require.NoError(t, err)

	// 2 of 3 correct: 66.67 rounds to 67, below the 70 passing score
	submitted, err := engine.SubmitAttempt(attempt.ID, 1, []Answer{
		{QuestionID: questionIDs[0], Selected: intPtr(1)},
		{QuestionID: questionIDs[1], Value: boolPtr(false)},
		{QuestionID: questionIDs[2], Selections: []int{0, 2}},
	}, 120)
	require.NoError(t, err)

	assert.Equal(t, 67, submitted.Score)
	assert.False(t, submitted.Passed)
	assert.NotNil(t, submitted.CompletedAt)
}

func TestSubmitAttemptUnansweredNeverCorrect(t *testing.T) {
	db := newTestDB(t)
	_, _, lessons := seedCourse(t, db, "RICH_TEXT")
	quiz, questionIDs := seedQuiz(t, db, lessons[0], 70, 0, threeQuestionSet())

	engine := NewQuizEngine(db)
	attempt, err := engine.StartAttempt(quiz.ID, 1, nil)
	require.NoError(t, err)

	submitted, err := engine.SubmitAttempt(attempt.ID, 1, []Answer{
		{QuestionID: questionIDs[0], Selected: intPtr(1)},
	}, 60)
	require.NoError(t, err)

	// 1 of 3 correct
	assert.Equal(t, 33, submitted.Score)
	assert.False(t, submitted.Passed)
}

func TestMultiSelectComparesAsSet(t *testing.T) {
	db := newTestDB(t)
	_, _, lessons := seedCourse(t, db, "RICH_TEXT")
	quiz, questionIDs := seedQuiz(t, db, lessons[0], 100, 0, []QuestionInput{
		{
			Prompt:       "Pick all that apply",
			QuestionType: QuestionMultiSelect,
			Options:      []string{"a", "b", "c", "d"},
			Key:          Answer{Selections: []int{0, 2}},
			OrderIndex:   1,
		},
	})

	engine := NewQuizEngine(db)
	attempt, err := engine.StartAttempt(quiz.ID, 1, nil)
	require.NoError(t, err)

	// Reversed order still matches the key
	submitted, err := engine.SubmitAttempt(attempt.ID, 1, []Answer{
		{QuestionID: questionIDs[0], Selections: []int{2, 0}},
	}, 30)
	require.NoError(t, err)
	assert.Equal(t, 100, submitted.Score)
	assert.True(t, submitted.Passed)

	// A superset is wrong
	attempt, err = engine.StartAttempt(quiz.ID, 2, nil)
	require.NoError(t, err)
	submitted, err = engine.SubmitAttempt(attempt.ID, 2, []Answer{
		{QuestionID: questionIDs[0], Selections: []int{0, 2, 3}},
	}, 30)
	require.NoError(t, err)
	assert.Equal(t, 0, submitted.Score)
}

func TestSubmitAttemptRejectsDoubleSubmission(t *testing.T) {
	db := newTestDB(t)
	_, _, lessons := seedCourse(t, db, "RICH_TEXT")
	quiz, questionIDs := seedQuiz(t, db, lessons[0], 70, 0, threeQuestionSet())

	engine := NewQuizEngine(db)
	attempt, err := engine.StartAttempt(quiz.ID, 1, nil)
	require.NoError(t, err)

	answers := []Answer{{QuestionID: questionIDs[0], Selected: intPtr(1)}}
	_, err = engine.SubmitAttempt(attempt.ID, 1, answers, 60)
	require.NoError(t, err)

	_, err = engine.SubmitAttempt(attempt.ID, 1, answers, 60)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeValidation))
}

func TestSubmitAttemptRejectsMalformedAnswer(t *testing.T) {
	db := newTestDB(t)
	_, _, lessons := seedCourse(t, db, "RICH_TEXT")
	quiz, questionIDs := seedQuiz(t, db, lessons[0], 70, 0, threeQuestionSet())

	engine := NewQuizEngine(db)
	attempt, err := engine.StartAttempt(quiz.ID, 1, nil)
	require.NoError(t, err)

	// True/false payload on a single-choice question
	_, err = engine.SubmitAttempt(attempt.ID, 1, []Answer{
		{QuestionID: questionIDs[0], Value: boolPtr(true)},
	}, 60)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeValidation))

	// Out-of-range option index
	attempt2, err := engine.StartAttempt(quiz.ID, 2, nil)
	require.NoError(t, err)
	_, err = engine.SubmitAttempt(attempt2.ID, 2, []Answer{
		{QuestionID: questionIDs[0], Selected: intPtr(9)},
	}, 60)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeValidation))
}

func TestPassingQuizCompletesLinkedLesson(t *testing.T) {
	db := newTestDB(t)
	_, version, lessons := seedCourse(t, db, "RICH_TEXT", "RICH_TEXT")
	enrollment := enroll(t, db, 1, version.ID)
	quiz, questionIDs := seedQuiz(t, db, lessons[0], 50, 0, []QuestionInput{
		{
			Prompt:       "True or false",
			QuestionType: QuestionTrueFalse,
			Key:          Answer{Value: boolPtr(true)},
			OrderIndex:   1,
		},
	})

	engine := NewQuizEngine(db)
	attempt, err := engine.StartAttempt(quiz.ID, 1, &enrollment.ID)
	require.NoError(t, err)

	submitted, err := engine.SubmitAttempt(attempt.ID, 1, []Answer{
		{QuestionID: questionIDs[0], Value: boolPtr(true)},
	}, 45)
	require.NoError(t, err)
	require.True(t, submitted.Passed)

	var progress courseModels.LessonProgress
	require.NoError(t, db.Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, lessons[0]).First(&progress).Error)
	assert.Equal(t, LessonCompleted, progress.Status)
	assert.Equal(t, CompletionQuiz, progress.CompletionMethod)

	// One of two lessons done
	var updated courseModels.Enrollment
	require.NoError(t, db.First(&updated, enrollment.ID).Error)
	assert.Equal(t, float64(50), updated.Progress)
}

func TestFailedQuizLeavesLessonUntouched(t *testing.T) {
	db := newTestDB(t)
	_, version, lessons := seedCourse(t, db, "RICH_TEXT")
	enrollment := enroll(t, db, 1, version.ID)
	quiz, questionIDs := seedQuiz(t, db, lessons[0], 100, 0, []QuestionInput{
		{
			Prompt:       "True or false",
			QuestionType: QuestionTrueFalse,
			Key:          Answer{Value: boolPtr(true)},
			OrderIndex:   1,
		},
	})

	engine := NewQuizEngine(db)
	attempt, err := engine.StartAttempt(quiz.ID, 1, &enrollment.ID)
	require.NoError(t, err)

	submitted, err := engine.SubmitAttempt(attempt.ID, 1, []Answer{
		{QuestionID: questionIDs[0], Value: boolPtr(false)},
	}, 45)
	require.NoError(t, err)
	require.False(t, submitted.Passed)

	var count int64
	require.NoError(t, db.Model(&courseModels.LessonProgress{}).
		Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, lessons[0]).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
