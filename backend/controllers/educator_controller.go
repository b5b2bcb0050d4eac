package controllers

import (
	"encoding/json"
	"errors"
	"strconv"

	"coursemarket/backend/clients/identity"
	"coursemarket/backend/clients/media"
	"coursemarket/backend/config"
	"coursemarket/backend/middleware"
	"coursemarket/backend/models"
	"coursemarket/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EducatorController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Identity identity.Client
	Media    media.Uploader
}

func NewEducatorController(db *gorm.DB, cfg *config.Config, idClient identity.Client, uploader media.Uploader) *EducatorController {
	return &EducatorController{DB: db, Cfg: cfg, Identity: idClient, Media: uploader}
}

// UpdateRoleToEducator asks the identity provider to grant the educator role
// to the caller. The role lives at the provider, not in this database.
func (ec *EducatorController) UpdateRoleToEducator(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	if err := ec.Identity.PromoteToEducator(c.Context(), userID); err != nil {
		return utils.InternalServerError(c, err.Error())
	}

	return c.JSON(fiber.Map{"success": true, "message": "You can publish a course now"})
}

// AddCourse godoc
// @Summary Create a course
// @Description Multipart form: courseData JSON payload plus an image thumbnail
// @Tags educator
// @Accept mpfd
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /educator/add-course [post]
func (ec *EducatorController) AddCourse(c *fiber.Ctx) error {
	educatorID := middleware.UserID(c)

	imageFile, err := c.FormFile("image")
	if err != nil {
		return utils.BadRequest(c, "Thumbnail not attached")
	}

	var input utils.CourseInput
	if err := json.Unmarshal([]byte(c.FormValue("courseData")), &input); err != nil {
		return utils.BadRequest(c, "Cannot parse course data")
	}

	utils.SanitizeCourseInput(&input)
	if err := utils.ValidateCourseInput(&input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	thumbnailURL, err := ec.Media.UploadImage(imageFile)
	if err != nil {
		return utils.InternalServerError(c, err.Error())
	}

	course := models.Course{
		Title:        input.Title,
		Subtitle:     input.Subtitle,
		Description:  input.Description,
		About:        input.About,
		Includes:     utils.JSONList(input.Includes),
		Outcomes:     utils.JSONList(input.Outcomes),
		Requirements: utils.JSONList(input.Requirements),
		Level:        input.Level,
		Language:     input.Language,
		Thumbnail:    thumbnailURL,
		Price:        input.Price,
		Discount:     input.Discount,
		IsPublished:  true,
		Educator:     educatorID,
		Chapters:     buildChapters(input.Chapters),
	}

	if err := ec.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return c.JSON(fiber.Map{"success": true, "message": "Course Added", "courseId": course.ID})
}

// UpdateCourse replaces a course's metadata and content. Only the owning
// educator may edit; the thumbnail is optional on update.
func (ec *EducatorController) UpdateCourse(c *fiber.Ctx) error {
	educatorID := middleware.UserID(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := ec.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if course.Educator != educatorID {
		return utils.Forbidden(c, "You don't have permission to edit this course")
	}

	var input utils.CourseInput
	if err := json.Unmarshal([]byte(c.FormValue("courseData")), &input); err != nil {
		return utils.BadRequest(c, "Cannot parse course data")
	}

	utils.SanitizeCourseInput(&input)
	if err := utils.ValidateCourseInput(&input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	thumbnailURL := course.Thumbnail
	if imageFile, err := c.FormFile("image"); err == nil {
		thumbnailURL, err = ec.Media.UploadImage(imageFile)
		if err != nil {
			return utils.InternalServerError(c, err.Error())
		}
	}

	err = ec.DB.Transaction(func(tx *gorm.DB) error {
		var chapterIDs []uint
		if err := tx.Model(&models.Chapter{}).
			Where("course_id = ?", course.ID).
			Pluck("id", &chapterIDs).Error; err != nil {
			return err
		}
		if len(chapterIDs) > 0 {
			if err := tx.Where("chapter_id IN ?", chapterIDs).Delete(&models.Lecture{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Chapter{}).Error; err != nil {
			return err
		}

		course.Title = input.Title
		course.Subtitle = input.Subtitle
		course.Description = input.Description
		course.About = input.About
		course.Includes = utils.JSONList(input.Includes)
		course.Outcomes = utils.JSONList(input.Outcomes)
		course.Requirements = utils.JSONList(input.Requirements)
		course.Level = input.Level
		course.Language = input.Language
		course.Thumbnail = thumbnailURL
		course.Price = input.Price
		course.Discount = input.Discount
		if err := tx.Save(&course).Error; err != nil {
			return err
		}

		chapters := buildChapters(input.Chapters)
		for i := range chapters {
			chapters[i].CourseID = course.ID
			if err := tx.Create(&chapters[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return c.JSON(fiber.Map{"success": true, "message": "Course Updated"})
}

// DeleteCourse removes a course and its dependent rows. Purchases stay as
// ledger history; progress records stay and simply stop counting.
func (ec *EducatorController) DeleteCourse(c *fiber.Ctx) error {
	educatorID := middleware.UserID(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := ec.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if course.Educator != educatorID {
		return utils.Forbidden(c, "You don't have permission to delete this course")
	}

	err = ec.DB.Transaction(func(tx *gorm.DB) error {
		var chapterIDs []uint
		if err := tx.Model(&models.Chapter{}).
			Where("course_id = ?", course.ID).
			Pluck("id", &chapterIDs).Error; err != nil {
			return err
		}
		if len(chapterIDs) > 0 {
			if err := tx.Where("chapter_id IN ?", chapterIDs).Delete(&models.Lecture{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Chapter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.CourseRating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete course")
	}

	return c.JSON(fiber.Map{"success": true, "message": "Course Deleted"})
}

// GetEducatorCourses lists the caller's own courses, published or not.
func (ec *EducatorController) GetEducatorCourses(c *fiber.Ctx) error {
	educatorID := middleware.UserID(c)

	var courses []models.Course
	if err := ec.DB.
		Preload("Chapters", orderedChapters).
		Preload("Chapters.Lectures", orderedChapters).
		Preload("Ratings").
		Where("educator = ?", educatorID).
		Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		var enrolled int64
		ec.DB.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrolled)

		result = append(result, fiber.Map{
			"id":            course.ID,
			"courseTitle":   course.Title,
			"coursePrice":   course.Price,
			"discount":      course.Discount,
			"isPublished":   course.IsPublished,
			"thumbnail":     course.Thumbnail,
			"totalLectures": utils.TotalLectures(course.Chapters),
			"rating":        utils.AverageRating(course.Ratings),
			"enrolledCount": enrolled,
		})
	}

	return c.JSON(fiber.Map{"success": true, "courses": result})
}

// GetDashboard aggregates the educator's courses: course count, revenue from
// completed purchases, and the enrolled students per course.
func (ec *EducatorController) GetDashboard(c *fiber.Ctx) error {
	educatorID := middleware.UserID(c)

	var courses []models.Course
	if err := ec.DB.Where("educator = ?", educatorID).Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	courseIDs := make([]uint, 0, len(courses))
	for _, course := range courses {
		courseIDs = append(courseIDs, course.ID)
	}

	totalEarnings := 0.0
	enrolledStudentsData := make([]fiber.Map, 0)

	if len(courseIDs) > 0 {
		var purchases []models.Purchase
		if err := ec.DB.
			Where("course_id IN ? AND status = ?", courseIDs, models.PurchaseStatusCompleted).
			Find(&purchases).Error; err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
		for _, purchase := range purchases {
			totalEarnings += purchase.Amount
		}

		var enrollments []models.Enrollment
		if err := ec.DB.Where("course_id IN ?", courseIDs).Find(&enrollments).Error; err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}

		titles := make(map[uint]string, len(courses))
		for _, course := range courses {
			titles[course.ID] = course.Title
		}

		studentIDs := make([]string, 0, len(enrollments))
		for _, e := range enrollments {
			studentIDs = append(studentIDs, e.UserID)
		}
		students := loadUsers(ec.DB, studentIDs)

		for _, e := range enrollments {
			student := students[e.UserID]
			enrolledStudentsData = append(enrolledStudentsData, fiber.Map{
				"courseTitle": titles[e.CourseID],
				"student": fiber.Map{
					"id":       e.UserID,
					"name":     student.Name,
					"imageUrl": student.ImageURL,
				},
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"dashboardData": fiber.Map{
			"totalCourses":         len(courses),
			"totalEarnings":        totalEarnings,
			"enrolledStudentsData": enrolledStudentsData,
		},
	})
}

// GetEnrolledStudents is the purchase-backed roster: who bought which of the
// educator's courses and when.
func (ec *EducatorController) GetEnrolledStudents(c *fiber.Ctx) error {
	educatorID := middleware.UserID(c)

	var courses []models.Course
	if err := ec.DB.Where("educator = ?", educatorID).Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	courseIDs := make([]uint, 0, len(courses))
	titles := make(map[uint]string, len(courses))
	for _, course := range courses {
		courseIDs = append(courseIDs, course.ID)
		titles[course.ID] = course.Title
	}

	enrolledStudents := make([]fiber.Map, 0)
	if len(courseIDs) > 0 {
		var purchases []models.Purchase
		if err := ec.DB.
			Where("course_id IN ? AND status = ?", courseIDs, models.PurchaseStatusCompleted).
			Order("created_at DESC").
			Find(&purchases).Error; err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}

		studentIDs := make([]string, 0, len(purchases))
		for _, purchase := range purchases {
			studentIDs = append(studentIDs, purchase.UserID)
		}
		students := loadUsers(ec.DB, studentIDs)

		for _, purchase := range purchases {
			student := students[purchase.UserID]
			enrolledStudents = append(enrolledStudents, fiber.Map{
				"courseTitle":  titles[purchase.CourseID],
				"purchaseDate": purchase.CreatedAt,
				"student": fiber.Map{
					"id":       purchase.UserID,
					"name":     student.Name,
					"imageUrl": student.ImageURL,
				},
			})
		}
	}

	return c.JSON(fiber.Map{"success": true, "enrolledStudents": enrolledStudents})
}

func buildChapters(inputs []utils.ChapterInput) []models.Chapter {
	chapters := make([]models.Chapter, 0, len(inputs))
	for _, ci := range inputs {
		lectures := make([]models.Lecture, 0, len(ci.Lectures))
		for _, li := range ci.Lectures {
			lectures = append(lectures, models.Lecture{
				LectureUID:      li.LectureID,
				Title:           li.Title,
				DurationMinutes: li.Duration,
				URL:             li.URL,
				IsPreviewFree:   li.IsPreviewFree,
				SequenceOrder:   li.Order,
			})
		}
		chapters = append(chapters, models.Chapter{
			ChapterUID:    ci.ChapterID,
			Title:         ci.Title,
			SequenceOrder: ci.Order,
			Lectures:      lectures,
		})
	}
	return chapters
}
