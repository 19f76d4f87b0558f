package services

import (
	"errors"
	"log"
	"time"

	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// CompletionCascade produces the compliance artifacts of a completed
// enrollment: one training record per (user, course), a certificate, badge
// evaluation and learning-path step sync. Run executes entirely inside the
// caller's transaction so a failed step never leaves partial artifacts.
type CompletionCascade struct{}

func NewCompletionCascade() *CompletionCascade {
	return &CompletionCascade{}
}

// CascadeResult is what one cascade run produced or reused.
type CascadeResult struct {
	TrainingRecord *courseModels.TrainingRecord
	Certificate    *courseModels.Certificate
	AwardedBadges  []courseModels.UserBadge
}

// Run executes the cascade for a just-completed enrollment.
func (cc *CompletionCascade) Run(tx *gorm.DB, enrollment *courseModels.Enrollment) (*CascadeResult, error) {
	var version courseModels.CourseVersion
	if err := tx.First(&version, enrollment.CourseVersionID).Error; err != nil {
		return nil, err
	}
	var course courseModels.Course
	if err := tx.First(&course, version.CourseID).Error; err != nil {
		return nil, err
	}

	record, err := cc.upsertTrainingRecord(tx, enrollment, &version, &course)
	if err != nil {
		return nil, err
	}

	certificate, err := cc.ensureCertificate(tx, enrollment.UserID, course.ID, record.ID)
	if err != nil {
		return nil, err
	}

	// Badge awards are side effects of completion, never preconditions;
	// their failures are logged and swallowed.
	awarded := cc.evaluateBadges(tx, enrollment.UserID, course.ID)

	cc.syncPathSteps(tx, enrollment.UserID, course.ID)

	return &CascadeResult{TrainingRecord: record, Certificate: certificate, AwardedBadges: awarded}, nil
}

// upsertTrainingRecord keeps one logical record per (user, course): a record
// from an earlier completion of any version of the course is updated in
// place, never duplicated.
func (cc *CompletionCascade) upsertTrainingRecord(tx *gorm.DB, enrollment *courseModels.Enrollment, version *courseModels.CourseVersion, course *courseModels.Course) (*courseModels.TrainingRecord, error) {
	now := time.Now()

	var record courseModels.TrainingRecord
	err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", enrollment.UserID, course.ID, false).
		First(&record).Error
	if err == nil {
		updates := map[string]interface{}{
			"course_version_id": version.ID,
			"completed_at":      now,
			"signed_by":         course.Author,
		}
		if err := tx.Model(&record).Updates(updates).Error; err != nil {
			return nil, err
		}
		if err := tx.First(&record, record.ID).Error; err != nil {
			return nil, err
		}
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record = courseModels.TrainingRecord{
		UserID:          enrollment.UserID,
		CourseID:        course.ID,
		CourseVersionID: version.ID,
		CourseTitle:     course.Title,
		CompletedAt:     now,
		SignedBy:        course.Author,
		LockedAt:        now,
	}
	if err := tx.Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewError(ErrCodeConcurrency, "Training record creation raced with another completion!")
		}
		return nil, err
	}
	return &record, nil
}

// ensureCertificate reuses the training record's certificate when the
// cascade is re-run, issuing a fresh one otherwise.
func (cc *CompletionCascade) ensureCertificate(tx *gorm.DB, userID, courseID, trainingRecordID uint) (*courseModels.Certificate, error) {
	var existing courseModels.Certificate
	err := tx.Where("training_record_id = ? AND is_deleted = ?", trainingRecordID, false).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return issueCertificate(tx, userID, &courseID, &trainingRecordID, nil)
}

func (cc *CompletionCascade) evaluateBadges(tx *gorm.DB, userID, courseID uint) []courseModels.UserBadge {
	var links []courseModels.BadgeCourse
	if err := tx.Where("course_id = ? AND is_deleted = ?", courseID, false).Find(&links).Error; err != nil {
		log.Printf("badge evaluation skipped for user %d course %d: %v", userID, courseID, err)
		return nil
	}

	evaluator := NewBadgeEvaluator(tx)
	var awarded []courseModels.UserBadge
	for _, link := range links {
		userBadge, err := evaluator.AwardIfEligible(userID, link.BadgeID)
		if err != nil {
			log.Printf("badge %d award failed for user %d: %v", link.BadgeID, userID, err)
			continue
		}
		if userBadge != nil {
			awarded = append(awarded, *userBadge)
		}
	}
	return awarded
}

// syncPathSteps completes COURSE steps referencing the finished course in
// the user's active learning-path enrollments. Failures are logged; a path
// bookkeeping problem must not undo a course completion.
func (cc *CompletionCascade) syncPathSteps(tx *gorm.DB, userID, courseID uint) {
	if err := completeCourseSteps(tx, userID, courseID); err != nil {
		log.Printf("learning path sync failed for user %d course %d: %v", userID, courseID, err)
	}
}
