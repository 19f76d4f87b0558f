package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quiz is attached to a lesson and gates its completion when passed
type Quiz struct {
	gorm.Model
	LessonID     uint   `json:"lesson_id" gorm:"index;not null"`
	Title        string `json:"title"`
	PassingScore int    `json:"passing_score" gorm:"default:70"` // minimum score (0-100) to pass
	MaxAttempts  int    `json:"max_attempts" gorm:"default:0"`   // 0 = unlimited
	IsDeleted    bool   `gorm:"default:false"`
}

// QuizQuestion holds one question. Options and the correct answer are JSON
// payloads shaped by QuestionType (see services answer types).
type QuizQuestion struct {
	gorm.Model
	QuizID        uint           `json:"quiz_id" gorm:"index;not null"`
	Prompt        string         `json:"prompt" gorm:"type:text"`
	QuestionType  string         `json:"question_type" gorm:"default:'SINGLE_CHOICE'"` // SINGLE_CHOICE, TRUE_FALSE, MULTI_SELECT
	Options       datatypes.JSON `json:"options"`                                      // array of option labels
	CorrectAnswer datatypes.JSON `json:"-"`                                            // never serialized to clients
	OrderIndex    int            `json:"order_index" gorm:"default:0"`
	IsDeleted     bool           `gorm:"default:false"`
}

// QuizAttempt is append-only: CompletedAt and the score fields are written
// exactly once, on submission.
type QuizAttempt struct {
	gorm.Model
	QuizID           uint           `json:"quiz_id" gorm:"not null;uniqueIndex:uq_quiz_attempt_number"`
	UserID           uint           `json:"user_id" gorm:"not null;index;uniqueIndex:uq_quiz_attempt_number"`
	EnrollmentID     *uint          `json:"enrollment_id" gorm:"index"`
	AttemptNumber    int            `json:"attempt_number" gorm:"not null;uniqueIndex:uq_quiz_attempt_number"`
	Score            int            `json:"score" gorm:"default:0"` // 0-100
	Passed           bool           `json:"passed" gorm:"default:false"`
	Answers          datatypes.JSON `json:"answers"`
	TimeSpentSeconds int            `json:"time_spent_seconds" gorm:"default:0"`
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      *time.Time     `json:"completed_at"`
	IsDeleted        bool           `gorm:"default:false"`
}
