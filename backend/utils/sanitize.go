package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LectureInput is one lecture of the educator's course payload.
type LectureInput struct {
	LectureID     string  `json:"lectureId"`
	Title         string  `json:"lectureTitle"`
	Duration      float64 `json:"lectureDuration"`
	URL           string  `json:"lectureUrl"`
	IsPreviewFree bool    `json:"isPreviewFree"`
	Order         int     `json:"lectureOrder"`
}

// ChapterInput is one chapter of the educator's course payload.
type ChapterInput struct {
	ChapterID string         `json:"chapterId"`
	Order     int            `json:"chapterOrder"`
	Title     string         `json:"chapterTitle"`
	Lectures  []LectureInput `json:"chapterContent"`
}

// CourseInput is the JSON course payload carried in the multipart form.
type CourseInput struct {
	Title        string         `json:"courseTitle"`
	Subtitle     string         `json:"courseSubtitle"`
	Description  string         `json:"courseDescription"`
	About        string         `json:"courseAbout"`
	Includes     []string       `json:"courseIncludes"`
	Outcomes     []string       `json:"courseOutcomes"`
	Requirements []string       `json:"courseRequirements"`
	Level        string         `json:"courseLevel"`
	Language     string         `json:"courseLanguage"`
	Price        float64        `json:"coursePrice"`
	Discount     float64        `json:"discount"`
	Chapters     []ChapterInput `json:"courseContent"`
}

// NormalizeList trims every entry and drops empty ones.
func NormalizeList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// SanitizeCourseInput trims string fields, normalizes list fields and fills in
// missing chapter/lecture ids and orders. Runs before validation so that the
// checks see the payload as it will be persisted.
func SanitizeCourseInput(input *CourseInput) {
	input.Title = strings.TrimSpace(input.Title)
	input.Subtitle = strings.TrimSpace(input.Subtitle)
	input.Description = strings.TrimSpace(input.Description)
	input.About = strings.TrimSpace(input.About)
	input.Includes = NormalizeList(input.Includes)
	input.Outcomes = NormalizeList(input.Outcomes)
	input.Requirements = NormalizeList(input.Requirements)

	input.Level = strings.TrimSpace(input.Level)
	if input.Level == "" {
		input.Level = "All Levels"
	}
	input.Language = strings.TrimSpace(input.Language)
	if input.Language == "" {
		input.Language = "English"
	}

	for ci := range input.Chapters {
		chapter := &input.Chapters[ci]
		chapter.Title = strings.TrimSpace(chapter.Title)
		if chapter.ChapterID == "" {
			chapter.ChapterID = fmt.Sprintf("chapter-%d", ci+1)
		}
		if chapter.Order == 0 {
			chapter.Order = ci + 1
		}

		for li := range chapter.Lectures {
			lecture := &chapter.Lectures[li]
			lecture.Title = strings.TrimSpace(lecture.Title)
			lecture.URL = strings.TrimSpace(lecture.URL)
			if lecture.LectureID == "" {
				lecture.LectureID = fmt.Sprintf("%s-lecture-%s", chapter.ChapterID, uuid.NewString()[:8])
			}
			if lecture.Order == 0 {
				lecture.Order = li + 1
			}
		}
	}
}

// ValidateCourseInput checks a sanitized payload. All checks run before any
// write happens in the calling handler.
func ValidateCourseInput(input *CourseInput) error {
	if input.Title == "" || input.Description == "" || input.About == "" {
		return errors.New("Course title, description and about section are required")
	}
	if input.Price < 0 {
		return errors.New("Invalid course price")
	}
	if input.Discount < 0 || input.Discount > 100 {
		return errors.New("Discount must be between 0 and 100")
	}
	if len(input.Includes) == 0 {
		return errors.New("Add at least one course include item")
	}
	if len(input.Chapters) == 0 {
		return errors.New("Add at least one chapter")
	}

	for _, chapter := range input.Chapters {
		if chapter.Title == "" || len(chapter.Lectures) == 0 {
			return errors.New("Each chapter must contain valid lectures")
		}
		for _, lecture := range chapter.Lectures {
			if lecture.Title == "" || lecture.URL == "" || lecture.Duration <= 0 {
				return errors.New("Each chapter must contain valid lectures")
			}
		}
	}

	return nil
}

// JSONList serializes a string list for a datatypes.JSON column.
func JSONList(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	raw, _ := json.Marshal(values)
	return datatypes.JSON(raw)
}
