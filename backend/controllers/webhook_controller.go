package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"coursemarket/backend/config"
	"coursemarket/backend/models"
	"coursemarket/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type WebhookController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewWebhookController(db *gorm.DB, cfg *config.Config) *WebhookController {
	return &WebhookController{DB: db, Cfg: cfg}
}

type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		ImageURL       string `json:"image_url"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

// HandleIdentityEvent processes identity provider lifecycle webhooks. The
// signature is an HMAC-SHA256 hex digest of the raw body under the shared
// webhook secret; unsigned or mis-signed deliveries are rejected before any
// parsing side effect.
func (wc *WebhookController) HandleIdentityEvent(c *fiber.Ctx) error {
	body := c.Body()

	signature := strings.ToLower(c.Get("X-Webhook-Signature"))
	mac := hmac.New(sha256.New, []byte(wc.Cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if signature == "" || !hmac.Equal([]byte(signature), []byte(expected)) {
		return utils.Unauthorized(c, "Invalid webhook signature")
	}

	var event identityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return utils.BadRequest(c, "Cannot parse webhook payload")
	}
	if event.Data.ID == "" {
		return utils.BadRequest(c, "Missing user id in webhook payload")
	}

	switch event.Type {
	case "user.created", "user.updated":
		user := models.User{
			ID:       event.Data.ID,
			Name:     strings.TrimSpace(event.Data.FirstName + " " + event.Data.LastName),
			ImageURL: event.Data.ImageURL,
		}
		if len(event.Data.EmailAddresses) > 0 {
			user.Email = event.Data.EmailAddresses[0].EmailAddress
		}

		// Upsert: created and updated deliveries can arrive out of order.
		if err := wc.DB.Save(&user).Error; err != nil {
			return utils.InternalServerError(c, "Could not persist user")
		}

	case "user.deleted":
		if err := wc.DB.Delete(&models.User{}, "id = ?", event.Data.ID).Error; err != nil {
			return utils.InternalServerError(c, "Could not delete user")
		}

	default:
		// Unknown event types are acknowledged so the provider stops retrying.
	}

	return c.JSON(fiber.Map{"success": true})
}
