package services

import (
	"errors"
	"math"
	"time"

	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// EnrollmentManager owns the course enrollment lifecycle and the aggregation
// of lesson progress into the course-level percentage.
type EnrollmentManager struct {
	db      *gorm.DB
	cascade *CompletionCascade
}

func NewEnrollmentManager(db *gorm.DB) *EnrollmentManager {
	return &EnrollmentManager{db: db, cascade: NewCompletionCascade()}
}

// Enroll registers the user in one course version. A live row for the pair
// already existing fails with AlreadyEnrolled; a concurrent duplicate insert
// collapses into the same failure through the unique index.
func (m *EnrollmentManager) Enroll(userID, courseVersionID uint) (*courseModels.Enrollment, error) {
	var version courseModels.CourseVersion
	err := m.db.Where("id = ? AND is_deleted = ?", courseVersionID, false).First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrCodeNotFound, "Course version not found!")
	}
	if err != nil {
		return nil, err
	}

	var course courseModels.Course
	err = m.db.Where("id = ? AND is_deleted = ? AND is_published = ?", version.CourseID, false, true).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrCodeNotFound, "Course not found or not published!")
	}
	if err != nil {
		return nil, err
	}

	var existing courseModels.Enrollment
	err = m.db.Where("user_id = ? AND course_version_id = ? AND is_deleted = ?", userID, courseVersionID, false).
		First(&existing).Error
	if err == nil {
		return nil, NewError(ErrCodeAlreadyEnrolled, "User already enrolled in this course version!")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment := courseModels.Enrollment{
		UserID:          userID,
		CourseVersionID: courseVersionID,
		Status:          EnrollmentEnrolled,
		EnrolledAt:      time.Now(),
	}
	if err := m.db.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewError(ErrCodeAlreadyEnrolled, "User already enrolled in this course version!")
		}
		return nil, err
	}
	return &enrollment, nil
}

// ComputeCourseProgress recomputes and persists the enrollment percentage
// from completed lessons. A course version with zero lessons yields 0%.
func (m *EnrollmentManager) ComputeCourseProgress(enrollmentID uint) (float64, error) {
	return recomputeCourseProgress(m.db, enrollmentID)
}

// CompletionResult bundles the artifacts produced by completing an
// enrollment.
type CompletionResult struct {
	Enrollment     *courseModels.Enrollment     `json:"enrollment"`
	TrainingRecord *courseModels.TrainingRecord `json:"training_record"`
	Certificate    *courseModels.Certificate    `json:"certificate"`
	AwardedBadges  []courseModels.UserBadge     `json:"awarded_badges"`
}

// CompleteEnrollment marks the enrollment completed and runs the completion
// cascade (training record, certificate, badge evaluation) in the same
// transaction. Re-invoking after success returns the existing artifacts.
func (m *EnrollmentManager) CompleteEnrollment(userID, enrollmentID uint) (*CompletionResult, error) {
	enrollment, err := loadEnrollment(m.db, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.UserID != userID {
		return nil, NewError(ErrCodeOwnership, "Enrollment does not belong to the caller!")
	}

	if enrollment.Status == EnrollmentCompleted {
		return m.existingCompletion(enrollment)
	}

	if _, err := recomputeCourseProgress(m.db, enrollmentID); err != nil {
		return nil, err
	}
	// Gate on the raw counts, not the rounded percentage: 199 of 200
	// lessons rounds to 100 but must not complete.
	completed, total, err := lessonCompletionCounts(m.db, enrollment.CourseVersionID, enrollmentID)
	if err != nil {
		return nil, err
	}
	if total == 0 || completed < total {
		return nil, Errorf(ErrCodeIneligible, "%d of %d lessons completed, all lessons must be completed first!", completed, total)
	}

	result := &CompletionResult{}
	err = m.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&courseModels.Enrollment{}).
			Where("id = ? AND status <> ?", enrollmentID, EnrollmentCompleted).
			Updates(map[string]interface{}{
				"status":       EnrollmentCompleted,
				"progress":     100,
				"completed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return NewError(ErrCodeConcurrency, "Enrollment was completed by a concurrent request!")
		}

		updated, err := loadEnrollment(tx, enrollmentID)
		if err != nil {
			return err
		}
		result.Enrollment = updated

		cascade, err := m.cascade.Run(tx, updated)
		if err != nil {
			return err
		}
		result.TrainingRecord = cascade.TrainingRecord
		result.Certificate = cascade.Certificate
		result.AwardedBadges = cascade.AwardedBadges
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// existingCompletion reassembles the cascade artifacts for an enrollment
// that already completed, so retries are safe no-ops.
func (m *EnrollmentManager) existingCompletion(enrollment *courseModels.Enrollment) (*CompletionResult, error) {
	result := &CompletionResult{Enrollment: enrollment}

	var version courseModels.CourseVersion
	if err := m.db.First(&version, enrollment.CourseVersionID).Error; err != nil {
		return nil, err
	}

	var record courseModels.TrainingRecord
	err := m.db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", enrollment.UserID, version.CourseID, false).
		First(&record).Error
	if err == nil {
		result.TrainingRecord = &record
		var certificate courseModels.Certificate
		if certErr := m.db.Where("training_record_id = ? AND is_deleted = ?", record.ID, false).
			First(&certificate).Error; certErr == nil {
			result.Certificate = &certificate
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return result, nil
}

// recomputeCourseProgress walks the version's module and lesson tree,
// counts completed lessons and persists the rounded percentage. The status
// guard keeps COMPLETED and EXPIRED enrollments untouched.
func recomputeCourseProgress(db *gorm.DB, enrollmentID uint) (float64, error) {
	enrollment, err := loadEnrollment(db, enrollmentID)
	if err != nil {
		return 0, err
	}

	completed, total, err := lessonCompletionCounts(db, enrollment.CourseVersionID, enrollmentID)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}

	progress := math.Round(100 * float64(completed) / float64(total))

	updates := map[string]interface{}{"progress": progress}
	if enrollment.Status == EnrollmentEnrolled && completed > 0 {
		updates["status"] = EnrollmentInProgress
		updates["started_at"] = time.Now()
	}
	err = db.Model(&courseModels.Enrollment{}).
		Where("id = ? AND status IN ?", enrollmentID, []string{EnrollmentEnrolled, EnrollmentInProgress}).
		Updates(updates).Error
	if err != nil {
		return 0, err
	}
	return progress, nil
}

// lessonCompletionCounts counts the live lessons of the course version and
// how many of them the enrollment has completed.
func lessonCompletionCounts(db *gorm.DB, courseVersionID, enrollmentID uint) (completed, total int64, err error) {
	err = db.Model(&courseModels.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_version_id = ? AND modules.is_deleted = ? AND lessons.is_deleted = ?",
			courseVersionID, false, false).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	err = db.Model(&courseModels.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("lesson_progresses.enrollment_id = ? AND lesson_progresses.status = ? AND lesson_progresses.is_deleted = ?",
			enrollmentID, LessonCompleted, false).
		Where("lessons.is_deleted = ? AND modules.is_deleted = ? AND modules.course_version_id = ?",
			false, false, courseVersionID).
		Count(&completed).Error
	if err != nil {
		return 0, 0, err
	}
	return completed, total, nil
}
