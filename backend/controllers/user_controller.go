package controllers

import (
	"errors"

	"coursemarket/backend/config"
	"coursemarket/backend/middleware"
	"coursemarket/backend/models"
	"coursemarket/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// GetUserData godoc
// @Summary Get own profile
// @Description Returns the caller's webhook-synced profile
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/data [get]
func (uc *UserController) GetUserData(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := uc.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":       user.ID,
			"name":     user.Name,
			"email":    user.Email,
			"imageUrl": user.ImageURL,
		},
	})
}

// GetEnrolledCourses returns the caller's courses with full lecture links
// (enrollment grants content access) and derived completion percent.
func (uc *UserController) GetEnrolledCourses(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var enrollments []models.Enrollment
	if err := uc.DB.Where("user_id = ?", userID).Find(&enrollments).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	courseIDs := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		courseIDs = append(courseIDs, e.CourseID)
	}

	var courses []models.Course
	if len(courseIDs) > 0 {
		if err := uc.DB.
			Preload("Chapters", orderedChapters).
			Preload("Chapters.Lectures", orderedChapters).
			Where("id IN ?", courseIDs).
			Find(&courses).Error; err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
	}

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		var progress models.CourseProgress
		uc.DB.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&progress)

		completed := utils.CountCompleted(progress.CompletedLectures(), course.Chapters)
		total := utils.TotalLectures(course.Chapters)

		chapters := make([]fiber.Map, 0, len(course.Chapters))
		for _, chapter := range course.Chapters {
			lectures := make([]fiber.Map, 0, len(chapter.Lectures))
			for _, lecture := range chapter.Lectures {
				lectures = append(lectures, fiber.Map{
					"lectureId":       lecture.LectureUID,
					"lectureTitle":    lecture.Title,
					"lectureDuration": lecture.DurationMinutes,
					"lectureUrl":      lecture.URL,
					"isPreviewFree":   lecture.IsPreviewFree,
					"lectureOrder":    lecture.SequenceOrder,
				})
			}
			chapters = append(chapters, fiber.Map{
				"chapterId":      chapter.ChapterUID,
				"chapterOrder":   chapter.SequenceOrder,
				"chapterTitle":   chapter.Title,
				"chapterContent": lectures,
			})
		}

		result = append(result, fiber.Map{
			"id":               course.ID,
			"courseTitle":      course.Title,
			"courseSubtitle":   course.Subtitle,
			"thumbnail":        course.Thumbnail,
			"courseContent":    chapters,
			"totalLectures":    total,
			"lecturesComplete": completed,
			"percentCompleted": utils.CompletionPercent(completed, total),
		})
	}

	return c.JSON(fiber.Map{"success": true, "enrolledCourses": result})
}

// UpdateCourseProgress marks one lecture complete. The progress record is
// created lazily on the first completion; completion is monotonic, a repeated
// mark is reported as success without a write.
func (uc *UserController) UpdateCourseProgress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		CourseID  uint   `json:"courseId" validate:"required"`
		LectureID string `json:"lectureId" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(&input); err != nil {
		return utils.BadRequest(c, "courseId and lectureId are required")
	}

	var progress models.CourseProgress
	err := uc.DB.Where("user_id = ? AND course_id = ?", userID, input.CourseID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.CourseProgress{UserID: userID, CourseID: input.CourseID}
		if err := progress.SetCompletedLectures([]string{input.LectureID}); err != nil {
			return utils.InternalServerError(c, "Could not save progress")
		}
		if err := uc.DB.Create(&progress).Error; err != nil {
			return utils.InternalServerError(c, "Could not save progress")
		}
		return c.JSON(fiber.Map{"success": true, "message": "Course progress updated"})
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	if progress.HasCompleted(input.LectureID) {
		return c.JSON(fiber.Map{"success": true, "message": "Lecture already completed"})
	}

	if err := progress.SetCompletedLectures(append(progress.CompletedLectures(), input.LectureID)); err != nil {
		return utils.InternalServerError(c, "Could not save progress")
	}
	if err := uc.DB.Save(&progress).Error; err != nil {
		return utils.InternalServerError(c, "Could not save progress")
	}

	return c.JSON(fiber.Map{"success": true, "message": "Course progress updated"})
}

// GetCourseProgress returns the raw completed set plus the percent derived
// from the course's current lectures. No record yet means zero progress, not
// an error.
func (uc *UserController) GetCourseProgress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		CourseID uint `json:"courseId" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(&input); err != nil {
		return utils.BadRequest(c, "courseId is required")
	}

	var completed []string
	var progress models.CourseProgress
	err := uc.DB.Where("user_id = ? AND course_id = ?", userID, input.CourseID).First(&progress).Error
	if err == nil {
		completed = progress.CompletedLectures()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	var course models.Course
	if err := uc.DB.
		Preload("Chapters").
		Preload("Chapters.Lectures").
		First(&course, input.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	counted := utils.CountCompleted(completed, course.Chapters)
	total := utils.TotalLectures(course.Chapters)

	if completed == nil {
		completed = []string{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"progressData": fiber.Map{
			"courseId":         input.CourseID,
			"lectureCompleted": completed,
			"totalLectures":    total,
			"percentCompleted": utils.CompletionPercent(counted, total),
		},
	})
}

// AddRating rates a course 1-5. Rating is gated to enrolled users; a repeated
// rating by the same user overwrites the existing entry in place.
func (uc *UserController) AddRating(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		CourseID uint `json:"courseId" validate:"required"`
		Rating   int  `json:"rating" validate:"required,min=1,max=5"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(&input); err != nil {
		return utils.BadRequest(c, "Invalid Details")
	}

	var course models.Course
	if err := uc.DB.First(&course, input.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var enrolled int64
	uc.DB.Model(&models.Enrollment{}).
		Where("course_id = ? AND user_id = ?", course.ID, userID).
		Count(&enrolled)
	if enrolled == 0 {
		return utils.Forbidden(c, "User has not purchased this course")
	}

	var rating models.CourseRating
	err := uc.DB.Where("course_id = ? AND user_id = ?", course.ID, userID).First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rating = models.CourseRating{CourseID: course.ID, UserID: userID, Rating: input.Rating}
		if err := uc.DB.Create(&rating).Error; err != nil {
			return utils.InternalServerError(c, "Could not save rating")
		}
	} else if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	} else {
		rating.Rating = input.Rating
		if err := uc.DB.Save(&rating).Error; err != nil {
			return utils.InternalServerError(c, "Could not save rating")
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "Rating added successfully"})
}
