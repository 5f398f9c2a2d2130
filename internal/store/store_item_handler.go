package store

import (
	"fmt"
	"strings"

	"cardops-backend/internal/audit"
	"cardops-backend/internal/auth"
	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StoreItemRequest struct {
	ItemName          string `json:"item_name"`
	QuantityReceived  int    `json:"quantity_received"`
	QuantityRequested int    `json:"quantity_requested"`
	CategoryName      string `json:"category_name"`
	VendorName        string `json:"vendor_name"`
	UnitPrice         string `json:"unit_price"`
	Storekeeper       string `json:"storekeeper"`
	Remarks           string `json:"remarks"`
	IsConfirmed       bool   `json:"is_confirmed"`
	SeenBy            string `json:"seen_by"`
}

type StoreItemResponse struct {
	ID                uint   `json:"id"`
	ItemName          string `json:"item_name"`
	QuantityReceived  int    `json:"quantity_received"`
	QuantityRequested int    `json:"quantity_requested"`
	CategoryName      string `json:"category_name"`
	VendorName        string `json:"vendor_name"`
	UnitPrice         string `json:"unit_price"`
	Storekeeper       string `json:"storekeeper"`
	Remarks           string `json:"remarks"`
	IsConfirmed       bool   `json:"is_confirmed"`
	SeenBy            string `json:"seen_by"`
	CreatedAt         string `json:"created_at"`
}

func toStoreItemResponse(item models.StoreItem) StoreItemResponse {
	resp := StoreItemResponse{
		ID:                item.ID,
		ItemName:          item.ItemName,
		QuantityReceived:  item.QuantityReceived,
		QuantityRequested: item.QuantityRequested,
		UnitPrice:         item.UnitPrice.StringFixed(2),
		Storekeeper:       item.Storekeeper,
		Remarks:           item.Remarks,
		IsConfirmed:       item.IsConfirmed,
		SeenBy:            item.SeenBy,
		CreatedAt:         item.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if item.Category != nil {
		resp.CategoryName = item.Category.Name
	}
	if item.Vendor != nil {
		resp.VendorName = item.Vendor.Name
	}
	return resp
}

func storeAuditUser(c *fiber.Ctx, db *gorm.DB) (uint, string) {
	userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
	if !ok {
		return 0, ""
	}
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return userID, ""
	}
	return userID, user.Name
}

// POST /api/store-items
func CreateStoreItemHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body StoreItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var missing []string
		if body.ItemName == "" {
			missing = append(missing, "item_name")
		}
		if body.QuantityReceived == 0 && body.QuantityRequested == 0 {
			missing = append(missing, "quantity_received")
		}
		if len(missing) > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Missing required field(s): %s", strings.Join(missing, ", ")))
		}

		item := models.StoreItem{
			ItemName:          body.ItemName,
			QuantityReceived:  body.QuantityReceived,
			QuantityRequested: body.QuantityRequested,
			Storekeeper:       body.Storekeeper,
			Remarks:           body.Remarks,
			IsConfirmed:       body.IsConfirmed,
			SeenBy:            body.SeenBy,
		}

		if body.UnitPrice != "" {
			price, err := decimal.NewFromString(body.UnitPrice)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "unit_price must be a number")
			}
			item.UnitPrice = price
		}

		cat, err := getOrCreateCategory(db, body.CategoryName)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not resolve category")
		}
		if cat != nil {
			item.CategoryID = &cat.ID
		}

		vendor, err := getOrCreateVendor(db, body.VendorName)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not resolve vendor")
		}
		if vendor != nil {
			item.VendorID = &vendor.ID
		}

		if err := db.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create item")
		}
		item.Category = cat
		item.Vendor = vendor

		userID, userName := storeAuditUser(c, db)
		if userName != "" {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "store_item",
				EntityID:    item.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Store item added: %s", item.ItemName),
				After:       item,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Item added",
			"item":    toStoreItemResponse(item),
		})
	}
}

// GET /api/store-items
func ListStoreItemsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Preload("Category").Preload("Vendor")

		if name := c.Query("item_name"); name != "" {
			dbq = dbq.Where("LOWER(item_name) LIKE ?", "%"+strings.ToLower(name)+"%")
		}

		var items []models.StoreItem
		if err := dbq.Order("created_at DESC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list items")
		}

		resp := make([]StoreItemResponse, 0, len(items))
		for _, item := range items {
			resp = append(resp, toStoreItemResponse(item))
		}
		return c.JSON(resp)
	}
}

// PUT /api/store-items/:id
func UpdateStoreItemHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.StoreItem
		if err := db.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item not found")
		}

		var body StoreItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		old := item

		if body.ItemName != "" {
			item.ItemName = body.ItemName
		}
		if body.QuantityReceived != 0 {
			item.QuantityReceived = body.QuantityReceived
		}
		if body.QuantityRequested != 0 {
			item.QuantityRequested = body.QuantityRequested
		}
		if body.UnitPrice != "" {
			price, err := decimal.NewFromString(body.UnitPrice)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "unit_price must be a number")
			}
			item.UnitPrice = price
		}
		if body.Storekeeper != "" {
			item.Storekeeper = body.Storekeeper
		}
		if body.Remarks != "" {
			item.Remarks = body.Remarks
		}
		if body.SeenBy != "" {
			item.SeenBy = body.SeenBy
		}
		item.IsConfirmed = body.IsConfirmed

		if err := db.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update item")
		}

		userID, userName := storeAuditUser(c, db)
		if userName != "" {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "store_item",
				EntityID:    item.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Store item updated: %s", item.ItemName),
				Before:      old,
				After:       item,
			})
		}

		return c.JSON(fiber.Map{"message": "Item updated"})
	}
}

// DELETE /api/store-items/:id
func DeleteStoreItemHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.StoreItem
		if err := db.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item not found")
		}

		if err := db.Delete(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete item")
		}

		userID, userName := storeAuditUser(c, db)
		if userName != "" {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "store_item",
				EntityID:    item.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Store item deleted: %s", item.ItemName),
				Before:      item,
			})
		}

		return c.JSON(fiber.Map{"message": "Item deleted"})
	}
}
