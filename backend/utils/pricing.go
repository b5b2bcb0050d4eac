package utils

import (
	"math"

	"coursemarket/backend/models"
)

// PayableAmount is the amount charged for a course, snapshotted at purchase
// initiation: price minus discount percent, rounded to 2 decimals.
func PayableAmount(price, discount float64) float64 {
	return math.Round((price-(discount*price)/100)*100) / 100
}

// AverageRating is the arithmetic mean of all rating entries rounded to one
// decimal. An empty list yields 0.
func AverageRating(ratings []models.CourseRating) float64 {
	if len(ratings) == 0 {
		return 0
	}

	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}

	return math.Round(float64(sum)/float64(len(ratings))*10) / 10
}

// CompletionPercent derives percent complete from the completed-lecture count
// against the course's current lecture total, capped at 100. A course with no
// lectures reports 0.
func CompletionPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}

	percent := int(math.Round(float64(completed) / float64(total) * 100))
	if percent > 100 {
		percent = 100
	}
	return percent
}

// CountCompleted counts completed ids that still refer to current course
// lectures. Stale ids for removed lectures do not count.
func CountCompleted(completed []string, chapters []models.Chapter) int {
	current := make(map[string]bool)
	for _, chapter := range chapters {
		for _, lecture := range chapter.Lectures {
			current[lecture.LectureUID] = true
		}
	}

	count := 0
	for _, id := range completed {
		if current[id] {
			count++
		}
	}
	return count
}

// TotalLectures counts the lectures currently attached to a course.
func TotalLectures(chapters []models.Chapter) int {
	total := 0
	for _, chapter := range chapters {
		total += len(chapter.Lectures)
	}
	return total
}
