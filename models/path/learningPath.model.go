package path

import (
	"time"

	"gorm.io/gorm"
)

// LearningPath is an ordered sequence of steps a user progresses through as
// a unit
type LearningPath struct {
	gorm.Model
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status" gorm:"default:'DRAFT'"` // DRAFT, PUBLISHED
	IsDeleted   bool   `gorm:"default:false"`
}

// LearningPathStep carries a uniqueness constraint on (path, step_order)
// among live steps; reordering goes through the two-phase move in the
// services package.
type LearningPathStep struct {
	gorm.Model
	PathID      uint   `json:"path_id" gorm:"not null;uniqueIndex:uq_path_step_order,where:is_deleted = false"`
	StepOrder   int    `json:"step_order" gorm:"not null;uniqueIndex:uq_path_step_order"`
	StepType    string `json:"step_type" gorm:"default:'COURSE'"` // COURSE, QUIZ, EXTERNAL
	CourseID    *uint  `json:"course_id" gorm:"index"`            // for COURSE steps
	QuizID      *uint  `json:"quiz_id"`                           // for QUIZ steps
	ExternalURL string `json:"external_url"`                      // for EXTERNAL steps
	Title       string `json:"title"`
	IsRequired  bool   `json:"is_required" gorm:"default:true"`
	IsDeleted   bool   `gorm:"default:false"`
}

// LearningPathEnrollment tracks one user's run through a path. Progress is
// derived from step state, never set independently.
type LearningPathEnrollment struct {
	gorm.Model
	UserID         uint       `json:"user_id" gorm:"index;not null"`
	PathID         uint       `json:"path_id" gorm:"index;not null"`
	Status         string     `json:"status" gorm:"default:'ACTIVE'"` // ACTIVE, COMPLETED, FAILED, SUSPENDED
	Progress       float64    `json:"progress" gorm:"default:0"`
	SuspendReason  string     `json:"suspend_reason"`
	EnrolledAt     time.Time  `json:"enrolled_at"`
	CompletionDate *time.Time `json:"completion_date"`
	IsDeleted      bool       `gorm:"default:false"`
}

// LearningPathStepProgress is one row per (enrollment, step)
type LearningPathStepProgress struct {
	gorm.Model
	PathEnrollmentID uint       `json:"path_enrollment_id" gorm:"not null;uniqueIndex:uq_step_progress"`
	StepID           uint       `json:"step_id" gorm:"not null;index;uniqueIndex:uq_step_progress"`
	Status           string     `json:"status" gorm:"default:'NOT_STARTED'"` // NOT_STARTED, IN_PROGRESS, COMPLETED, FAILED, SKIPPED
	CompletedAt      *time.Time `json:"completed_at"`
	IsDeleted        bool       `gorm:"default:false"`
}
