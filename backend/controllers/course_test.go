package controllers_test

import (
	"fmt"
	"testing"

	"coursemarket/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllCoursesListsOnlyPublished(t *testing.T) {
	educator := createUser(t, "Eva Educator")
	published := createCourse(t, educator.ID, 100, 20)

	unpublished := createCourse(t, educator.ID, 50, 0)
	require.NoError(t, db.Model(&models.Course{}).
		Where("id = ?", unpublished.ID).
		Update("is_published", false).Error)

	status, result := doRequest(t, jsonRequest(t, "GET", "/api/course/all", "", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["success"])

	courses := result["courses"].([]interface{})
	var seenPublished, seenUnpublished bool
	for _, raw := range courses {
		course := raw.(map[string]interface{})
		id := uint(course["id"].(float64))
		if id == published.ID {
			seenPublished = true
			assert.Equal(t, 80.0, course["payableAmount"])
			assert.Equal(t, "Eva Educator", course["educator"].(map[string]interface{})["name"])
			// Catalog entries carry no lecture bodies
			assert.NotContains(t, course, "courseContent")
		}
		if id == unpublished.ID {
			seenUnpublished = true
		}
	}
	assert.True(t, seenPublished)
	assert.False(t, seenUnpublished)
}

func TestGetCourseByIDBlanksNonPreviewLectures(t *testing.T) {
	educator := createUser(t, "Eva Educator")
	course := createCourse(t, educator.ID, 100, 20)

	status, result := doRequest(t, jsonRequest(t, "GET", fmt.Sprintf("/api/course/%d", course.ID), "", nil))
	assert.Equal(t, fiber.StatusOK, status)

	courseData := result["course"].(map[string]interface{})
	assert.Equal(t, 80.0, courseData["payableAmount"])

	chapters := courseData["courseContent"].([]interface{})
	require.Len(t, chapters, 1)
	lectures := chapters[0].(map[string]interface{})["chapterContent"].([]interface{})
	require.Len(t, lectures, 3)

	for _, raw := range lectures {
		lecture := raw.(map[string]interface{})
		if lecture["isPreviewFree"].(bool) {
			assert.NotEmpty(t, lecture["lectureUrl"])
		} else {
			assert.Empty(t, lecture["lectureUrl"])
		}
	}
}

func TestGetCourseByIDRatingDetails(t *testing.T) {
	educator := createUser(t, "Eva Educator")
	course := createCourse(t, educator.ID, 10, 0)

	rater := createUser(t, "Riley Rater")
	require.NoError(t, db.Create(&models.CourseRating{CourseID: course.ID, UserID: rater.ID, Rating: 4}).Error)
	// Rating left behind by a deleted user falls back to a placeholder name
	require.NoError(t, db.Create(&models.CourseRating{CourseID: course.ID, UserID: "user_gone", Rating: 5}).Error)

	status, result := doRequest(t, jsonRequest(t, "GET", fmt.Sprintf("/api/course/%d", course.ID), "", nil))
	assert.Equal(t, fiber.StatusOK, status)

	courseData := result["course"].(map[string]interface{})
	assert.Equal(t, 4.5, courseData["rating"])

	details := courseData["courseRatingDetails"].([]interface{})
	require.Len(t, details, 2)
	names := map[string]string{}
	for _, raw := range details {
		detail := raw.(map[string]interface{})
		names[detail["userId"].(string)] = detail["userName"].(string)
	}
	assert.Equal(t, "Riley Rater", names[rater.ID])
	assert.Equal(t, "Learner", names["user_gone"])
}

func TestGetCourseByIDNotFound(t *testing.T) {
	status, result := doRequest(t, jsonRequest(t, "GET", "/api/course/999999", "", nil))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, result["success"])
}
