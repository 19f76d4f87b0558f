package course

import (
	"time"

	"gorm.io/gorm"
)

// Badge defines an award gated by a set of required courses
type Badge struct {
	gorm.Model
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
	IsDeleted   bool   `gorm:"default:false"`
}

// BadgeCourse links a badge to one of its required courses
type BadgeCourse struct {
	gorm.Model
	BadgeID   uint `json:"badge_id" gorm:"not null;uniqueIndex:uq_badge_course"`
	CourseID  uint `json:"course_id" gorm:"not null;index;uniqueIndex:uq_badge_course"`
	IsDeleted bool `gorm:"default:false"`
}

// UserBadge is the award record; a user holds a given badge at most once
type UserBadge struct {
	gorm.Model
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:uq_user_badge"`
	BadgeID   uint      `json:"badge_id" gorm:"not null;index;uniqueIndex:uq_user_badge"`
	Reason    string    `json:"reason"`
	AwardedAt time.Time `json:"awarded_at"`
	IsDeleted bool      `gorm:"default:false"`
}
