package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"coursemarket/backend/clients/identity"
	"coursemarket/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createEducator(t *testing.T, name string) models.User {
	t.Helper()
	user := createUser(t, name)
	idProvider.roles[user.ID] = identity.RoleEducator
	return user
}

func validCourseData(title string) map[string]interface{} {
	return map[string]interface{}{
		"courseTitle":       title,
		"courseDescription": "Full description",
		"courseAbout":       "About the course",
		"courseIncludes":    []string{"Lifetime access"},
		"coursePrice":       100,
		"discount":          20,
		"courseContent": []map[string]interface{}{
			{
				"chapterId":    "chapter-1",
				"chapterTitle": "Getting Started",
				"chapterContent": []map[string]interface{}{
					{
						"lectureId":       "chapter-1-lecture-1",
						"lectureTitle":    "Intro",
						"lectureDuration": 10,
						"lectureUrl":      "https://media.test/intro",
						"isPreviewFree":   true,
					},
				},
			},
		},
	}
}

func multipartCourseRequest(t *testing.T, method, url, token string, courseData map[string]interface{}, withImage bool) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	raw, err := json.Marshal(courseData)
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("courseData", string(raw)))

	if withImage {
		fw, err := writer.CreateFormFile("image", "thumb.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", token)
	return req
}

func TestEducatorEndpointsRequireRole(t *testing.T) {
	student := createUser(t, "Sam Student")
	token := authToken(t, student.ID)

	var before int64
	db.Model(&models.Course{}).Count(&before)

	status, result := doRequest(t, multipartCourseRequest(t, "POST", "/api/educator/add-course", token,
		validCourseData("Role Gated"), true))
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, false, result["success"])

	// Forbidden call leaves no state behind
	var after int64
	db.Model(&models.Course{}).Count(&after)
	assert.Equal(t, before, after)

	status, _ = doRequest(t, jsonRequest(t, "GET", "/api/educator/dashboard", token, nil))
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestUpdateRoleToEducator(t *testing.T) {
	student := createUser(t, "Sam Student")
	token := authToken(t, student.ID)

	status, _ := doRequest(t, jsonRequest(t, "GET", "/api/educator/courses", token, nil))
	assert.Equal(t, fiber.StatusForbidden, status)

	status, result := doRequest(t, jsonRequest(t, "POST", "/api/educator/update-role", token, nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "You can publish a course now", result["message"])

	status, _ = doRequest(t, jsonRequest(t, "GET", "/api/educator/courses", token, nil))
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAddCourse(t *testing.T) {
	educator := createEducator(t, "Eva Educator")
	token := authToken(t, educator.ID)

	status, result := doRequest(t, multipartCourseRequest(t, "POST", "/api/educator/add-course", token,
		validCourseData("New Course"), true))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Course Added", result["message"])

	courseID := uint(result["courseId"].(float64))
	var course models.Course
	require.NoError(t, db.Preload("Chapters.Lectures").First(&course, courseID).Error)
	assert.Equal(t, "New Course", course.Title)
	assert.Equal(t, educator.ID, course.Educator)
	assert.Equal(t, "https://cdn.test/thumbnails/thumb.png", course.Thumbnail)
	require.Len(t, course.Chapters, 1)
	assert.Len(t, course.Chapters[0].Lectures, 1)
}

func TestAddCourseValidation(t *testing.T) {
	educator := createEducator(t, "Eva Educator")
	token := authToken(t, educator.ID)

	// Thumbnail required
	status, result := doRequest(t, multipartCourseRequest(t, "POST", "/api/educator/add-course", token,
		validCourseData("No Thumb"), false))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Thumbnail not attached", result["message"])

	// Discount out of range
	data := validCourseData("Bad Discount")
	data["discount"] = 120
	status, result = doRequest(t, multipartCourseRequest(t, "POST", "/api/educator/add-course", token, data, true))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Discount must be between 0 and 100", result["message"])

	// Negative price
	data = validCourseData("Bad Price")
	data["coursePrice"] = -1
	status, result = doRequest(t, multipartCourseRequest(t, "POST", "/api/educator/add-course", token, data, true))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid course price", result["message"])

	// Chapter without lectures
	data = validCourseData("Empty Chapter")
	data["courseContent"] = []map[string]interface{}{
		{"chapterId": "chapter-1", "chapterTitle": "Empty", "chapterContent": []map[string]interface{}{}},
	}
	status, result = doRequest(t, multipartCourseRequest(t, "POST", "/api/educator/add-course", token, data, true))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Each chapter must contain valid lectures", result["message"])
}

func TestUpdateCourseOwnershipEnforced(t *testing.T) {
	owner := createEducator(t, "Eva Owner")
	intruder := createEducator(t, "Ivy Intruder")
	course := createCourse(t, owner.ID, 10, 0)

	url := fmt.Sprintf("/api/educator/course/%d", course.ID)
	status, _ := doRequest(t, multipartCourseRequest(t, "PUT", url, authToken(t, intruder.ID),
		validCourseData("Hijacked"), false))
	assert.Equal(t, fiber.StatusForbidden, status)

	// Owner update replaces metadata and content
	data := validCourseData("Renamed Course")
	status, result := doRequest(t, multipartCourseRequest(t, "PUT", url, authToken(t, owner.ID), data, false))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Course Updated", result["message"])

	var updated models.Course
	require.NoError(t, db.Preload("Chapters.Lectures").First(&updated, course.ID).Error)
	assert.Equal(t, "Renamed Course", updated.Title)
	require.Len(t, updated.Chapters, 1)
	assert.Len(t, updated.Chapters[0].Lectures, 1)
}

func TestDeleteCourse(t *testing.T) {
	owner := createEducator(t, "Eva Owner")
	intruder := createEducator(t, "Ivy Intruder")
	student := createUser(t, "Sam Student")
	course := createCourse(t, owner.ID, 10, 0)
	enroll(t, student.ID, course.ID)

	url := fmt.Sprintf("/api/educator/course/%d", course.ID)

	status, _ := doRequest(t, jsonRequest(t, "DELETE", url, authToken(t, intruder.ID), nil))
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doRequest(t, jsonRequest(t, "DELETE", url, authToken(t, owner.ID), nil))
	assert.Equal(t, fiber.StatusOK, status)

	var count int64
	db.Model(&models.Course{}).Where("id = ?", course.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestEducatorDashboardAndRoster(t *testing.T) {
	educator := createEducator(t, "Eva Educator")
	student := createUser(t, "Sam Student")
	course := createCourse(t, educator.ID, 100, 20)
	studentToken := authToken(t, student.ID)

	_, result := doRequest(t, jsonRequest(t, "POST", "/api/course/purchase", studentToken,
		fiber.Map{"courseId": course.ID}))
	purchaseID := uint(result["purchaseId"].(float64))
	doRequest(t, jsonRequest(t, "POST", "/api/course/purchase/confirm", studentToken,
		fiber.Map{"purchaseId": purchaseID, "paymentMethod": "card"}))

	token := authToken(t, educator.ID)

	status, result := doRequest(t, jsonRequest(t, "GET", "/api/educator/dashboard", token, nil))
	assert.Equal(t, fiber.StatusOK, status)
	dashboard := result["dashboardData"].(map[string]interface{})
	assert.Equal(t, 1.0, dashboard["totalCourses"])
	assert.Equal(t, 80.0, dashboard["totalEarnings"])
	enrolledData := dashboard["enrolledStudentsData"].([]interface{})
	require.Len(t, enrolledData, 1)
	entry := enrolledData[0].(map[string]interface{})
	assert.Equal(t, "Test Course", entry["courseTitle"])
	assert.Equal(t, "Sam Student", entry["student"].(map[string]interface{})["name"])

	status, result = doRequest(t, jsonRequest(t, "GET", "/api/educator/enrolled-students", token, nil))
	assert.Equal(t, fiber.StatusOK, status)
	roster := result["enrolledStudents"].([]interface{})
	require.Len(t, roster, 1)
	rosterEntry := roster[0].(map[string]interface{})
	assert.Equal(t, "Test Course", rosterEntry["courseTitle"])
	assert.NotEmpty(t, rosterEntry["purchaseDate"])
}

func TestGetEducatorCourses(t *testing.T) {
	educator := createEducator(t, "Eva Educator")
	other := createEducator(t, "Raj Other")
	mine := createCourse(t, educator.ID, 10, 0)
	createCourse(t, other.ID, 10, 0)

	status, result := doRequest(t, jsonRequest(t, "GET", "/api/educator/courses", authToken(t, educator.ID), nil))
	assert.Equal(t, fiber.StatusOK, status)

	courses := result["courses"].([]interface{})
	require.Len(t, courses, 1)
	assert.Equal(t, mine.ID, uint(courses[0].(map[string]interface{})["id"].(float64)))
}
