package models

import "gorm.io/gorm"

// Enrollment is the authoritative join relation between users and courses.
// "User's enrolled courses" and "course's enrolled students" are both views
// over this table, so the two are set-equivalent by construction. Rows are
// created only inside the purchase-confirmation transaction.
type Enrollment struct {
	gorm.Model
	CourseID uint   `gorm:"uniqueIndex:idx_enrollment_course_user"`
	UserID   string `gorm:"uniqueIndex:idx_enrollment_course_user"`
}
