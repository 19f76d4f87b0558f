package course

import "gorm.io/gorm"

// Course represents a training course
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `json:"description"`
	Author       string `json:"author"`
	Status       string `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE, INACTIVE
	ThumbnailURL string `json:"thumbnail_url"`
	ValidityDays int    `json:"validity_days" gorm:"default:0"` // 0 = completion never expires
	IsPublished  bool   `json:"is_published" gorm:"default:false"`
	IsDeleted    bool   `gorm:"default:false"`
}

// CourseVersion is a revision of a course. Enrollments bind to a version;
// compliance records bind to the course itself.
type CourseVersion struct {
	gorm.Model
	CourseID      uint `json:"course_id" gorm:"index;not null"`
	VersionNumber int  `json:"version_number" gorm:"default:1"`
	IsCurrent     bool `json:"is_current" gorm:"default:true"`
	IsDeleted     bool `gorm:"default:false"`
}
