package controllers

import (
	"errors"
	"strconv"

	"coursemarket/backend/config"
	"coursemarket/backend/middleware"
	"coursemarket/backend/models"
	"coursemarket/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validate = validator.New()

type CourseController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCourseController(db *gorm.DB, cfg *config.Config) *CourseController {
	return &CourseController{DB: db, Cfg: cfg}
}

func orderedChapters(db *gorm.DB) *gorm.DB {
	return db.Order("sequence_order")
}

// GetAllCourses godoc
// @Summary List published courses
// @Description Returns the public catalog: published courses without their content or enrollment lists
// @Tags courses
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /course/all [get]
func (cc *CourseController) GetAllCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := cc.DB.Preload("Ratings").Where("is_published = ?", true).Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	educators := loadUsers(cc.DB, educatorIDs(courses))

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		result = append(result, fiber.Map{
			"id":             course.ID,
			"courseTitle":    course.Title,
			"courseSubtitle": course.Subtitle,
			"courseLevel":    course.Level,
			"courseLanguage": course.Language,
			"thumbnail":      course.Thumbnail,
			"coursePrice":    course.Price,
			"discount":       course.Discount,
			"payableAmount":  utils.PayableAmount(course.Price, course.Discount),
			"rating":         utils.AverageRating(course.Ratings),
			"ratingCount":    len(course.Ratings),
			"educator":       userDisplay(educators[course.Educator], course.Educator),
		})
	}

	return c.JSON(fiber.Map{"success": true, "courses": result})
}

// GetCourseByID returns the public course detail. Lecture URLs are blanked
// except for free-preview lectures; content access comes with enrollment.
func (cc *CourseController) GetCourseByID(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.
		Preload("Chapters", orderedChapters).
		Preload("Chapters.Lectures", orderedChapters).
		Preload("Ratings").
		First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	chapters := make([]fiber.Map, 0, len(course.Chapters))
	for _, chapter := range course.Chapters {
		lectures := make([]fiber.Map, 0, len(chapter.Lectures))
		for _, lecture := range chapter.Lectures {
			url := lecture.URL
			if !lecture.IsPreviewFree {
				url = ""
			}
			lectures = append(lectures, fiber.Map{
				"lectureId":       lecture.LectureUID,
				"lectureTitle":    lecture.Title,
				"lectureDuration": lecture.DurationMinutes,
				"lectureUrl":      url,
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

	raterIDs := make([]string, 0, len(course.Ratings))
	for _, r := range course.Ratings {
		raterIDs = append(raterIDs, r.UserID)
	}
	raters := loadUsers(cc.DB, raterIDs)

	ratingDetails := make([]fiber.Map, 0, len(course.Ratings))
	for _, r := range course.Ratings {
		name, image := "Learner", ""
		if rater, ok := raters[r.UserID]; ok {
			name, image = rater.Name, rater.ImageURL
		}
		ratingDetails = append(ratingDetails, fiber.Map{
			"userId":    r.UserID,
			"rating":    r.Rating,
			"userName":  name,
			"userImage": image,
		})
	}

	educators := loadUsers(cc.DB, []string{course.Educator})

	return c.JSON(fiber.Map{
		"success": true,
		"course": fiber.Map{
			"id":                  course.ID,
			"courseTitle":         course.Title,
			"courseSubtitle":      course.Subtitle,
			"courseDescription":   course.Description,
			"courseAbout":         course.About,
			"courseIncludes":      course.Includes,
			"courseOutcomes":      course.Outcomes,
			"courseRequirements":  course.Requirements,
			"courseLevel":         course.Level,
			"courseLanguage":      course.Language,
			"thumbnail":           course.Thumbnail,
			"coursePrice":         course.Price,
			"discount":            course.Discount,
			"isPublished":         course.IsPublished,
			"courseContent":       chapters,
			"payableAmount":       utils.PayableAmount(course.Price, course.Discount),
			"rating":              utils.AverageRating(course.Ratings),
			"courseRatingDetails": ratingDetails,
			"educator":            userDisplay(educators[course.Educator], course.Educator),
		},
	})
}

// CreatePurchase initiates the two-phase purchase flow. The payable amount is
// snapshotted here; an existing pending purchase for the same (user, course)
// is reused instead of creating a duplicate.
func (cc *CourseController) CreatePurchase(c *fiber.Ctx) error {
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

	var course models.Course
	if err := cc.DB.First(&course, input.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var user models.User
	if err := cc.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User profile not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var enrolled int64
	cc.DB.Model(&models.Enrollment{}).
		Where("course_id = ? AND user_id = ?", course.ID, userID).
		Count(&enrolled)
	if enrolled > 0 {
		return utils.Conflict(c, "You are already enrolled in this course")
	}

	// Reuse the latest pending purchase if one exists. The lookup-before-create
	// is not atomic; a duplicate created by a concurrent initiation is tolerated
	// and its confirmation becomes a no-op once the user is enrolled.
	var pending models.Purchase
	err := cc.DB.
		Where("course_id = ? AND user_id = ? AND status = ?", course.ID, userID, models.PurchaseStatusPending).
		Order("created_at DESC").
		First(&pending).Error
	if err == nil {
		return c.JSON(fiber.Map{
			"success":    true,
			"purchaseId": pending.ID,
			"amount":     pending.Amount,
			"courseId":   course.ID,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	purchase := models.Purchase{
		CourseID: course.ID,
		UserID:   userID,
		Amount:   utils.PayableAmount(course.Price, course.Discount),
		Status:   models.PurchaseStatusPending,
	}
	if err := cc.DB.Create(&purchase).Error; err != nil {
		return utils.InternalServerError(c, "Could not create purchase")
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"purchaseId": purchase.ID,
		"amount":     purchase.Amount,
		"courseId":   course.ID,
	})
}

var validPaymentMethods = map[string]bool{
	"card":       true,
	"upi":        true,
	"netbanking": true,
	"wallet":     true,
}

// ConfirmPurchase completes a pending purchase (simulating the external
// payment capture) and enrolls the user. Confirming an already-completed
// purchase reports success without reapplying side effects. The status flip
// and the enrollment row are written in one transaction, so enrollment never
// exists without its completed purchase.
func (cc *CourseController) ConfirmPurchase(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var input struct {
		PurchaseID    uint   `json:"purchaseId" validate:"required"`
		PaymentMethod string `json:"paymentMethod"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(&input); err != nil {
		return utils.BadRequest(c, "purchaseId is required")
	}

	var purchase models.Purchase
	if err := cc.DB.
		Where("id = ? AND user_id = ?", input.PurchaseID, userID).
		First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Purchase not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if purchase.Status == models.PurchaseStatusCompleted {
		return c.JSON(fiber.Map{
			"success":  true,
			"message":  "Payment already confirmed",
			"courseId": purchase.CourseID,
		})
	}

	var course models.Course
	if err := cc.DB.First(&course, purchase.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var user models.User
	if err := cc.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User profile not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	paymentMethod := input.PaymentMethod
	if !validPaymentMethods[paymentMethod] {
		paymentMethod = "card"
	}

	purchase.Status = models.PurchaseStatusCompleted
	purchase.PaymentMethod = paymentMethod
	purchase.TransactionID = "TXN-" + uuid.NewString()

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&purchase).Error; err != nil {
			return err
		}
		enrollment := models.Enrollment{CourseID: course.ID, UserID: userID}
		return tx.
			Where("course_id = ? AND user_id = ?", course.ID, userID).
			FirstOrCreate(&enrollment).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not confirm purchase")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Payment successful. You are now enrolled.",
		"courseId": course.ID,
	})
}

func educatorIDs(courses []models.Course) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0, len(courses))
	for _, course := range courses {
		if !seen[course.Educator] {
			seen[course.Educator] = true
			ids = append(ids, course.Educator)
		}
	}
	return ids
}

func loadUsers(db *gorm.DB, ids []string) map[string]models.User {
	users := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return users
	}

	var rows []models.User
	db.Where("id IN ?", ids).Find(&rows)
	for _, u := range rows {
		users[u.ID] = u
	}
	return users
}

func userDisplay(user models.User, fallbackID string) fiber.Map {
	if user.ID == "" {
		return fiber.Map{"id": fallbackID, "name": "", "imageUrl": ""}
	}
	return fiber.Map{"id": user.ID, "name": user.Name, "imageUrl": user.ImageURL}
}
