package services

import (
	"errors"
	"time"

	courseModels "lms/models/course"

	"gorm.io/gorm"
)

const (
	// Videos must be watched this far before manual completion is allowed.
	videoCompletionThreshold = 90.0
	// Claimed time spent must cover this share of the known lesson duration.
	minWatchTimeRatio = 0.5
)

// ProgressTracker records and validates per-lesson consumption.
type ProgressTracker struct {
	db *gorm.DB
}

func NewProgressTracker(db *gorm.DB) *ProgressTracker {
	return &ProgressTracker{db: db}
}

// CompletionClaim is the client-reported state checked by the anti-cheat
// validation. Values are never trusted for the authorization decision.
type CompletionClaim struct {
	Percentage       float64 `json:"percentage"`
	TimeSpentSeconds int     `json:"time_spent_seconds"`
}

// UpdateProgress upserts the lesson progress row for (enrollment, lesson).
// The percentage is clamped to [0,100] and time spent accumulates. A row
// that already reached COMPLETED is left untouched.
func (t *ProgressTracker) UpdateProgress(enrollmentID, lessonID uint, percentage float64, positionSeconds, timeSpentSeconds int) (*courseModels.LessonProgress, error) {
	percentage = clampPercentage(percentage)
	if positionSeconds < 0 {
		positionSeconds = 0
	}
	if timeSpentSeconds < 0 {
		timeSpentSeconds = 0
	}

	enrollment, err := loadEnrollment(t.db, enrollmentID)
	if err != nil {
		return nil, err
	}
	if _, err := loadLesson(t.db, lessonID); err != nil {
		return nil, err
	}

	progress, err := t.findProgress(enrollmentID, lessonID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if progress == nil {
		progress = &courseModels.LessonProgress{
			EnrollmentID:        enrollmentID,
			LessonID:            lessonID,
			Status:              LessonInProgress,
			ProgressPercentage:  percentage,
			LastPositionSeconds: positionSeconds,
			TimeSpentSeconds:    timeSpentSeconds,
		}
		if err := t.db.Create(progress).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a concurrent upsert race; fold into the winner's row.
				return t.UpdateProgress(enrollmentID, lessonID, percentage, positionSeconds, timeSpentSeconds)
			}
			return nil, err
		}
	} else {
		if progress.Status == LessonCompleted {
			return progress, nil
		}
		updates := map[string]interface{}{
			"status":                LessonInProgress,
			"progress_percentage":   percentage,
			"last_position_seconds": positionSeconds,
			"time_spent_seconds":    progress.TimeSpentSeconds + timeSpentSeconds,
		}
		if err := t.db.Model(progress).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if err := markEnrollmentStarted(t.db, enrollment); err != nil {
		return nil, err
	}
	return progress, nil
}

// CompleteManually marks a lesson completed on the learner's request. Video
// lessons require the stored progress to have reached the watch threshold;
// other content completes directly.
func (t *ProgressTracker) CompleteManually(userID, enrollmentID, lessonID uint) (*courseModels.LessonProgress, error) {
	enrollment, err := loadEnrollment(t.db, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.UserID != userID {
		return nil, NewError(ErrCodeOwnership, "Enrollment does not belong to the caller!")
	}
	lesson, err := loadLesson(t.db, lessonID)
	if err != nil {
		return nil, err
	}

	progress, err := t.findProgress(enrollmentID, lessonID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if lesson.IsVideo() {
		if progress == nil {
			return nil, Errorf(ErrCodeIneligible, "Video watched 0%%, at least %.0f%% is required!", videoCompletionThreshold)
		}
		if progress.Status != LessonCompleted && progress.ProgressPercentage < videoCompletionThreshold {
			return nil, Errorf(ErrCodeIneligible, "Video watched %.0f%%, at least %.0f%% is required!",
				progress.ProgressPercentage, videoCompletionThreshold)
		}
	}

	err = t.db.Transaction(func(tx *gorm.DB) error {
		progress, err = completeLesson(tx, enrollmentID, lessonID, CompletionManual)
		if err != nil {
			return err
		}
		_, err = recomputeCourseProgress(tx, enrollmentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// ValidateCompletionEligibility re-checks completion readiness server-side:
// the stored progress must have reached the watch threshold and the claimed
// time spent must cover half the known lesson duration. The client claim is
// used for diagnostics only.
func (t *ProgressTracker) ValidateCompletionEligibility(enrollmentID, lessonID uint, claim CompletionClaim) error {
	if _, err := loadEnrollment(t.db, enrollmentID); err != nil {
		return err
	}
	lesson, err := loadLesson(t.db, lessonID)
	if err != nil {
		return err
	}

	progress, err := t.findProgress(enrollmentID, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Errorf(ErrCodeIneligible, "No recorded progress for this lesson (client claims %.0f%%)!", claim.Percentage)
		}
		return err
	}
	if progress.ProgressPercentage < videoCompletionThreshold {
		return Errorf(ErrCodeIneligible, "Recorded progress is %.0f%%, at least %.0f%% is required (client claims %.0f%%)!",
			progress.ProgressPercentage, videoCompletionThreshold, claim.Percentage)
	}
	if lesson.DurationSeconds > 0 {
		minSeconds := int(float64(lesson.DurationSeconds) * minWatchTimeRatio)
		if claim.TimeSpentSeconds < minSeconds {
			return Errorf(ErrCodeIneligible, "Time spent %ds is below the required %ds for this lesson!",
				claim.TimeSpentSeconds, minSeconds)
		}
	}
	return nil
}

func (t *ProgressTracker) findProgress(enrollmentID, lessonID uint) (*courseModels.LessonProgress, error) {
	var progress courseModels.LessonProgress
	err := t.db.Where("enrollment_id = ? AND lesson_id = ? AND is_deleted = ?", enrollmentID, lessonID, false).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// completeLesson flips a lesson progress row to COMPLETED at 100%, creating
// the row when none exists. Already-completed rows are a no-op.
func completeLesson(tx *gorm.DB, enrollmentID, lessonID uint, method string) (*courseModels.LessonProgress, error) {
	now := time.Now()

	var progress courseModels.LessonProgress
	err := tx.Where("enrollment_id = ? AND lesson_id = ? AND is_deleted = ?", enrollmentID, lessonID, false).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = courseModels.LessonProgress{
			EnrollmentID:       enrollmentID,
			LessonID:           lessonID,
			Status:             LessonCompleted,
			ProgressPercentage: 100,
			CompletionMethod:   method,
			CompletedAt:        &now,
		}
		if createErr := tx.Create(&progress).Error; createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				return nil, NewError(ErrCodeConcurrency, "Lesson completion raced with another request!")
			}
			return nil, createErr
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}
	if progress.Status == LessonCompleted {
		return &progress, nil
	}

	res := tx.Model(&courseModels.LessonProgress{}).
		Where("id = ? AND status <> ?", progress.ID, LessonCompleted).
		Updates(map[string]interface{}{
			"status":              LessonCompleted,
			"progress_percentage": 100,
			"completion_method":   method,
			"completed_at":        now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, NewError(ErrCodeConcurrency, "Lesson completion raced with another request!")
	}
	return loadLessonProgress(tx, progress.ID)
}

func loadLessonProgress(tx *gorm.DB, id uint) (*courseModels.LessonProgress, error) {
	var progress courseModels.LessonProgress
	if err := tx.First(&progress, id).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func loadEnrollment(db *gorm.DB, enrollmentID uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	err := db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrCodeNotFound, "Enrollment not found!")
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func loadLesson(db *gorm.DB, lessonID uint) (*courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	err := db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrCodeNotFound, "Lesson not found!")
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// markEnrollmentStarted flips a fresh enrollment to IN_PROGRESS on the first
// recorded activity. The status guard keeps completed rows untouched.
func markEnrollmentStarted(db *gorm.DB, enrollment *courseModels.Enrollment) error {
	if enrollment.Status != EnrollmentEnrolled {
		return nil
	}
	now := time.Now()
	return db.Model(&courseModels.Enrollment{}).
		Where("id = ? AND status = ?", enrollment.ID, EnrollmentEnrolled).
		Updates(map[string]interface{}{"status": EnrollmentInProgress, "started_at": now}).Error
}

func clampPercentage(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
