package admin

import (
	"fmt"

	"cardops-backend/internal/audit"
	"cardops-backend/internal/auth"
	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DeviceRequest struct {
	DeviceName string `json:"device_name"`
	Location   string `json:"location"`
	IsActive   *bool  `json:"is_active"`
}

// GET /api/devices
func ListDevicesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var devices []models.Device
		if err := db.Order("device_name ASC").Find(&devices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list devices")
		}
		return c.JSON(devices)
	}
}

// POST /api/devices
func RegisterDeviceHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DeviceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.DeviceName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing required field(s): device_name")
		}

		device := models.Device{
			DeviceName: body.DeviceName,
			Location:   body.Location,
			IsActive:   true,
		}
		if body.IsActive != nil {
			device.IsActive = *body.IsActive
		}

		if err := db.Create(&device).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not register device")
		}

		if userID, ok := c.Locals(auth.CtxUserIDKey).(uint); ok {
			var user models.User
			if db.First(&user, userID).Error == nil {
				_ = audit.WriteLog(db, audit.LogOptions{
					UserID:      userID,
					UserName:    user.Name,
					EntityType:  "device",
					EntityID:    device.ID,
					Action:      models.AuditActionCreate,
					Description: fmt.Sprintf("Device registered: %s", device.DeviceName),
					After:       device,
				})
			}
		}

		return c.Status(fiber.StatusCreated).JSON(device)
	}
}

// PUT /api/devices/:id
func UpdateDeviceHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var device models.Device
		if err := db.First(&device, "device_id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Device not found")
		}

		var body DeviceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		old := device

		if body.DeviceName != "" {
			device.DeviceName = body.DeviceName
		}
		if body.Location != "" {
			device.Location = body.Location
		}
		if body.IsActive != nil {
			device.IsActive = *body.IsActive
		}

		if err := db.Save(&device).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update device")
		}

		if userID, ok := c.Locals(auth.CtxUserIDKey).(uint); ok {
			var user models.User
			if db.First(&user, userID).Error == nil {
				_ = audit.WriteLog(db, audit.LogOptions{
					UserID:      userID,
					UserName:    user.Name,
					EntityType:  "device",
					EntityID:    device.ID,
					Action:      models.AuditActionUpdate,
					Description: fmt.Sprintf("Device updated: %s", device.DeviceName),
					Before:      old,
					After:       device,
				})
			}
		}

		return c.JSON(device)
	}
}
