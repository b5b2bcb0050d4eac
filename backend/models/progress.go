package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseProgress is the per-(user, course) record of completed lecture ids.
// Created lazily on the first completion event; the completed set is
// append-only. Ids of lectures later removed from the course may linger, they
// simply stop counting toward totals computed from current course content.
type CourseProgress struct {
	gorm.Model
	UserID           string `gorm:"uniqueIndex:idx_progress_user_course"`
	CourseID         uint   `gorm:"uniqueIndex:idx_progress_user_course"`
	LectureCompleted datatypes.JSON // string list of lecture uids
}

func (p *CourseProgress) CompletedLectures() []string {
	var completed []string
	if len(p.LectureCompleted) > 0 {
		_ = json.Unmarshal(p.LectureCompleted, &completed)
	}
	return completed
}

func (p *CourseProgress) SetCompletedLectures(lectures []string) error {
	raw, err := json.Marshal(lectures)
	if err != nil {
		return err
	}
	p.LectureCompleted = datatypes.JSON(raw)
	return nil
}

// HasCompleted reports whether lectureUID is already in the completed set.
func (p *CourseProgress) HasCompleted(lectureUID string) bool {
	for _, id := range p.CompletedLectures() {
		if id == lectureUID {
			return true
		}
	}
	return false
}
