package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment tracks a user's registration in one course version. One live
// row per (user, version); rows are never hard deleted.
type Enrollment struct {
	gorm.Model
	UserID          uint       `json:"user_id" gorm:"not null;uniqueIndex:uq_enroll_user_version,where:is_deleted = false"`
	CourseVersionID uint       `json:"course_version_id" gorm:"not null;index;uniqueIndex:uq_enroll_user_version"`
	Status          string     `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, IN_PROGRESS, COMPLETED, EXPIRED
	Progress        float64    `json:"progress" gorm:"default:0"`        // Completion percentage (0-100)
	EnrolledAt      time.Time  `json:"enrolled_at"`
	StartedAt       *time.Time `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	IsDeleted       bool       `gorm:"default:false"`
}

// LessonProgress is the per-lesson consumption state within one enrollment.
// One row per (enrollment, lesson); immutable once COMPLETED.
type LessonProgress struct {
	gorm.Model
	EnrollmentID        uint       `json:"enrollment_id" gorm:"not null;uniqueIndex:uq_lesson_progress"`
	LessonID            uint       `json:"lesson_id" gorm:"not null;index;uniqueIndex:uq_lesson_progress"`
	Status              string     `json:"status" gorm:"default:'NOT_STARTED'"` // NOT_STARTED, IN_PROGRESS, COMPLETED
	ProgressPercentage  float64    `json:"progress_percentage" gorm:"default:0"`
	LastPositionSeconds int        `json:"last_position_seconds" gorm:"default:0"` // video resume point
	TimeSpentSeconds    int        `json:"time_spent_seconds" gorm:"default:0"`
	CompletionMethod    string     `json:"completion_method"` // MANUAL, QUIZ, AUTO
	CompletedAt         *time.Time `json:"completed_at"`
	IsDeleted           bool       `gorm:"default:false"`
}
