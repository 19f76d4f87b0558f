package course

import "gorm.io/gorm"

// Module represents a section within a course version
type Module struct {
	gorm.Model
	CourseVersionID uint   `json:"course_version_id" gorm:"index;not null"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	OrderIndex      int    `json:"order_index" gorm:"default:0"` // Module order in course
	IsDeleted       bool   `gorm:"default:false"`
}

// Lesson is a single consumable unit within a module
type Lesson struct {
	gorm.Model
	ModuleID        uint   `json:"module_id" gorm:"index;not null"`
	Title           string `json:"title"`
	ContentType     string `json:"content_type" gorm:"default:'RICH_TEXT'"` // VIDEO, RICH_TEXT, DOCUMENT
	Body            string `json:"body" gorm:"type:text"`                   // For RICH_TEXT type
	VideoURL        string `json:"video_url"`                               // For VIDEO type
	DocumentURL     string `json:"document_url"`                            // For DOCUMENT type
	DurationSeconds int    `json:"duration_seconds" gorm:"default:0"`       // Known media length
	OrderIndex      int    `json:"order_index" gorm:"default:0"`
	IsDeleted       bool   `gorm:"default:false"`
}

// IsVideo reports whether completing the lesson requires a watch threshold.
func (l *Lesson) IsVideo() bool {
	return l.ContentType == "VIDEO"
}
