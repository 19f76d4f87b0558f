package course

import (
	"time"

	"gorm.io/gorm"
)

// TrainingRecord is the immutable compliance record of one completed course
// per user. Completing another version of the same course merges into the
// existing row instead of creating a second record.
type TrainingRecord struct {
	gorm.Model
	UserID          uint      `json:"user_id" gorm:"not null;uniqueIndex:uq_training_record"`
	CourseID        uint      `json:"course_id" gorm:"not null;index;uniqueIndex:uq_training_record"`
	CourseVersionID uint      `json:"course_version_id" gorm:"not null"`
	CourseTitle     string    `json:"course_title"`
	CompletedAt     time.Time `json:"completed_at"`
	SignedBy        string    `json:"signed_by"`
	LockedAt        time.Time `json:"locked_at"` // set at creation, no update path
	IsDeleted       bool      `gorm:"default:false"`
}

// Certificate is issued for a training record or for a learning-path
// enrollment (at most one per path enrollment).
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"index;not null"`
	CourseID          *uint     `json:"course_id" gorm:"index"`
	TrainingRecordID  *uint     `json:"training_record_id" gorm:"index"`
	PathEnrollmentID  *uint     `json:"path_enrollment_id" gorm:"uniqueIndex:uq_cert_path_enrollment"`
	CertificateNumber string    `json:"certificate_number" gorm:"unique"`
	IssuedBy          string    `json:"issued_by"`
	IssuedAt          time.Time `json:"issued_at"`
	IsDeleted         bool      `gorm:"default:false"`
}
