package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	Title        string `gorm:"not null"`
	Subtitle     string
	Description  string `gorm:"not null"`
	About        string
	Includes     datatypes.JSON // string list
	Outcomes     datatypes.JSON // string list
	Requirements datatypes.JSON // string list
	Level        string         `gorm:"default:All Levels"`
	Language     string         `gorm:"default:English"`
	Thumbnail    string
	Price        float64 `gorm:"not null;check:price>=0"`
	Discount     float64 `gorm:"check:discount>=0 AND discount<=100"`
	IsPublished  bool    `gorm:"default:true"`
	Educator     string  `gorm:"index;not null"` // identity provider user id of the owner
	Chapters     []Chapter
	Ratings      []CourseRating
}

type Chapter struct {
	gorm.Model
	CourseID      uint   `gorm:"index"`
	ChapterUID    string `gorm:"not null"` // client-facing id, stable across edits
	Title         string `gorm:"not null"`
	SequenceOrder int
	Lectures      []Lecture
}

type Lecture struct {
	gorm.Model
	ChapterID       uint    `gorm:"index"`
	LectureUID      string  `gorm:"not null"` // referenced by progress records
	Title           string  `gorm:"not null"`
	DurationMinutes float64 `gorm:"check:duration_minutes>=0"`
	URL             string
	IsPreviewFree   bool
	SequenceOrder   int
}

// CourseRating holds one user's rating of one course. The unique index keeps
// the one-rating-per-user invariant; repeated ratings overwrite in place.
type CourseRating struct {
	gorm.Model
	CourseID uint   `gorm:"uniqueIndex:idx_course_rating_user"`
	UserID   string `gorm:"uniqueIndex:idx_course_rating_user"`
	Rating   int    `gorm:"check:rating>=1 AND rating<=5"`
}
