package services

import (
	"errors"
	"time"

	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// BadgeEvaluator determines and awards badges from completed-course sets.
type BadgeEvaluator struct {
	db *gorm.DB
}

func NewBadgeEvaluator(db *gorm.DB) *BadgeEvaluator {
	return &BadgeEvaluator{db: db}
}

// CheckEligibility reports whether the user qualifies for the badge right
// now. Badges without required courses are never auto-awarded, and a badge
// already held is never re-awarded.
func (b *BadgeEvaluator) CheckEligibility(userID, badgeID uint) (bool, error) {
	var badge courseModels.Badge
	err := b.db.Where("id = ? AND is_deleted = ?", badgeID, false).First(&badge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, NewError(ErrCodeNotFound, "Badge not found!")
	}
	if err != nil {
		return false, err
	}

	var required []courseModels.BadgeCourse
	if err := b.db.Where("badge_id = ? AND is_deleted = ?", badgeID, false).Find(&required).Error; err != nil {
		return false, err
	}
	if len(required) == 0 {
		return false, nil
	}

	var held int64
	err = b.db.Model(&courseModels.UserBadge{}).
		Where("user_id = ? AND badge_id = ? AND is_deleted = ?", userID, badgeID, false).
		Count(&held).Error
	if err != nil {
		return false, err
	}
	if held > 0 {
		return false, nil
	}

	for _, link := range required {
		var completed int64
		err = b.db.Model(&courseModels.Enrollment{}).
			Joins("JOIN course_versions ON course_versions.id = enrollments.course_version_id").
			Where("enrollments.user_id = ? AND enrollments.status = ? AND enrollments.is_deleted = ?",
				userID, EnrollmentCompleted, false).
			Where("course_versions.course_id = ?", link.CourseID).
			Count(&completed).Error
		if err != nil {
			return false, err
		}
		if completed == 0 {
			return false, nil
		}
	}
	return true, nil
}

// AwardIfEligible re-checks eligibility and creates the award record. The
// unique (user, badge) index collapses a concurrent double award into a
// silent no-op, so the check-then-act window is harmless.
func (b *BadgeEvaluator) AwardIfEligible(userID, badgeID uint) (*courseModels.UserBadge, error) {
	eligible, err := b.CheckEligibility(userID, badgeID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, nil
	}

	userBadge := courseModels.UserBadge{
		UserID:    userID,
		BadgeID:   badgeID,
		Reason:    "automatic award for course completion",
		AwardedAt: time.Now(),
	}
	if err := b.db.Create(&userBadge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil
		}
		return nil, err
	}
	return &userBadge, nil
}
