package services

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	courseModels "lms/models/course"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizEngine manages quiz attempts and scoring.
type QuizEngine struct {
	db *gorm.DB
}

func NewQuizEngine(db *gorm.DB) *QuizEngine {
	return &QuizEngine{db: db}
}

// StartAttempt opens a new attempt with the next attempt number for
// (user, quiz). The unique attempt-number index turns a concurrent double
// start into a conflict instead of two rows sharing a number.
func (q *QuizEngine) StartAttempt(quizID, userID uint, enrollmentID *uint) (*courseModels.QuizAttempt, error) {
	quiz, err := loadQuiz(q.db, quizID)
	if err != nil {
		return nil, err
	}

	if enrollmentID != nil {
		enrollment, err := loadEnrollment(q.db, *enrollmentID)
		if err != nil {
			return nil, err
		}
		if enrollment.UserID != userID {
			return nil, NewError(ErrCodeOwnership, "Enrollment does not belong to the caller!")
		}
	}

	var maxNumber int
	err = q.db.Model(&courseModels.QuizAttempt{}).
		Where("quiz_id = ? AND user_id = ? AND is_deleted = ?", quizID, userID, false).
		Select("COALESCE(MAX(attempt_number), 0)").Scan(&maxNumber).Error
	if err != nil {
		return nil, err
	}

	if quiz.MaxAttempts > 0 && maxNumber >= quiz.MaxAttempts {
		return nil, Errorf(ErrCodeValidation, "Maximum of %d attempts reached for this quiz!", quiz.MaxAttempts)
	}

	attempt := courseModels.QuizAttempt{
		QuizID:        quizID,
		UserID:        userID,
		EnrollmentID:  enrollmentID,
		AttemptNumber: maxNumber + 1,
		StartedAt:     time.Now(),
	}
	if err := q.db.Create(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewError(ErrCodeConcurrency, "Another attempt was started at the same time, please retry!")
		}
		return nil, err
	}
	return &attempt, nil
}

// SubmitAttempt scores the attempt against the stored answer keys. Unanswered
// questions never count as correct. On a passing score linked to an
// enrollment, the quiz's lesson completes with method QUIZ and the course
// progress is recomputed, all within one transaction.
func (q *QuizEngine) SubmitAttempt(attemptID, userID uint, answers []Answer, timeSpentSeconds int) (*courseModels.QuizAttempt, error) {
	var attempt courseModels.QuizAttempt
	err := q.db.Where("id = ? AND is_deleted = ?", attemptID, false).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrCodeNotFound, "Quiz attempt not found!")
	}
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, NewError(ErrCodeOwnership, "Quiz attempt does not belong to the caller!")
	}
	if attempt.CompletedAt != nil {
		return nil, NewError(ErrCodeValidation, "Quiz attempt was already submitted!")
	}

	quiz, err := loadQuiz(q.db, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	var questions []courseModels.QuizQuestion
	if err := q.db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).
		Order("order_index asc").Find(&questions).Error; err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, NewError(ErrCodeValidation, "Quiz has no questions!")
	}

	byQuestion := make(map[uint]Answer, len(answers))
	for _, answer := range answers {
		byQuestion[answer.QuestionID] = answer
	}

	correct := 0
	for i := range questions {
		answer, answered := byQuestion[questions[i].ID]
		if !answered {
			continue
		}
		if err := ValidateAnswerShape(&questions[i], answer); err != nil {
			return nil, err
		}
		if answerIsCorrect(&questions[i], answer) {
			correct++
		}
	}

	score := int(math.Round(100 * float64(correct) / float64(len(questions))))
	passed := score >= quiz.PassingScore

	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	err = q.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&courseModels.QuizAttempt{}).
			Where("id = ? AND completed_at IS NULL", attempt.ID).
			Updates(map[string]interface{}{
				"score":              score,
				"passed":             passed,
				"answers":            datatypes.JSON(raw),
				"time_spent_seconds": timeSpentSeconds,
				"completed_at":       now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return NewError(ErrCodeConcurrency, "Quiz attempt was submitted by a concurrent request!")
		}

		if passed && attempt.EnrollmentID != nil {
			if _, err := completeLesson(tx, *attempt.EnrollmentID, quiz.LessonID, CompletionQuiz); err != nil {
				return err
			}
			if _, err := recomputeCourseProgress(tx, *attempt.EnrollmentID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return q.loadAttempt(attempt.ID)
}

func (q *QuizEngine) loadAttempt(id uint) (*courseModels.QuizAttempt, error) {
	var attempt courseModels.QuizAttempt
	if err := q.db.First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func loadQuiz(db *gorm.DB, quizID uint) (*courseModels.Quiz, error) {
	var quiz courseModels.Quiz
	err := db.Where("id = ? AND is_deleted = ?", quizID, false).First(&quiz).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrCodeNotFound, "Quiz not found!")
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}
