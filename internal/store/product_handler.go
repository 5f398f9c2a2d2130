package store

import (
	"fmt"
	"strings"
	"time"

	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRequest struct {
	Name           string `json:"name"`
	Unit           string `json:"unit"`
	CategoryName   string `json:"category_name"`
	VendorName     string `json:"vendor_name"`
	UnitPrice      string `json:"unit_price"`
	WaybillNumber  string `json:"waybill_number"`
	PackageQty     int    `json:"package"`
	PackagePerUnit int    `json:"package_per_unit"`
	InjectionDate  string `json:"injection_date"`
	DeliveryDate   string `json:"delivery_date"`
}

type ProductResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Unit           string `json:"unit"`
	CategoryName   string `json:"category_name"`
	VendorName     string `json:"vendor_name"`
	UnitPrice      string `json:"unit_price"`
	WaybillNumber  string `json:"waybill_number"`
	PackageQty     int    `json:"package"`
	PackagePerUnit int    `json:"package_per_unit"`
	CurrentBalance int    `json:"current_balance"`
	InjectionDate  string `json:"injection_date"`
	DeliveryDate   string `json:"delivery_date"`
}

func toProductResponse(p models.Product) ProductResponse {
	resp := ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Unit:           p.Unit,
		UnitPrice:      p.UnitPrice.StringFixed(2),
		WaybillNumber:  p.WaybillNumber,
		PackageQty:     p.PackageQty,
		PackagePerUnit: p.PackagePerUnit,
		CurrentBalance: p.CurrentBalance,
	}
	if p.InjectionDate != nil {
		resp.InjectionDate = p.InjectionDate.Format("2006-01-02")
	}
	if p.DeliveryDate != nil {
		resp.DeliveryDate = p.DeliveryDate.Format("2006-01-02")
	}
	if p.Category != nil {
		resp.CategoryName = p.Category.Name
	}
	if p.Vendor != nil {
		resp.VendorName = p.Vendor.Name
	}
	return resp
}

// getOrCreateCategory looks a category up by name, case-insensitively,
// creating it on first use.
func getOrCreateCategory(db *gorm.DB, name string) (*models.Category, error) {
	if name == "" {
		return nil, nil
	}
	var cat models.Category
	err := db.Where("LOWER(name) = ?", strings.ToLower(name)).First(&cat).Error
	if err == nil {
		return &cat, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	cat = models.Category{Name: name}
	if err := db.Create(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func getOrCreateVendor(db *gorm.DB, name string) (*models.Vendor, error) {
	if name == "" {
		return nil, nil
	}
	var vendor models.Vendor
	err := db.Where("LOWER(name) = ?", strings.ToLower(name)).First(&vendor).Error
	if err == nil {
		return &vendor, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	vendor = models.Vendor{Name: name}
	if err := db.Create(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// POST /api/products
func CreateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing required field(s): name")
		}

		var existing models.Product
		if err := db.Where("LOWER(name) = ?", strings.ToLower(body.Name)).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Product %s already exists", existing.Name))
		}

		perUnit := body.PackagePerUnit
		if perUnit <= 0 {
			perUnit = 1
		}

		// the opening stock is derived from the delivered packages
		product := models.Product{
			Name:           body.Name,
			Unit:           body.Unit,
			WaybillNumber:  body.WaybillNumber,
			PackageQty:     body.PackageQty,
			PackagePerUnit: body.PackagePerUnit,
			CurrentBalance: body.PackageQty * perUnit,
		}

		injectionDate := time.Now()
		if body.InjectionDate != "" {
			parsed, err := time.Parse("2006-01-02", body.InjectionDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "injection_date must be YYYY-MM-DD")
			}
			injectionDate = parsed
		}
		product.InjectionDate = &injectionDate

		if body.DeliveryDate != "" {
			parsed, err := time.Parse("2006-01-02", body.DeliveryDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "delivery_date must be YYYY-MM-DD")
			}
			product.DeliveryDate = &parsed
		}

		if body.UnitPrice != "" {
			price, err := decimal.NewFromString(body.UnitPrice)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "unit_price must be a number")
			}
			product.UnitPrice = price
		}

		cat, err := getOrCreateCategory(db, body.CategoryName)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not resolve category")
		}
		if cat != nil {
			product.CategoryID = &cat.ID
		}

		vendor, err := getOrCreateVendor(db, body.VendorName)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not resolve vendor")
		}
		if vendor != nil {
			product.VendorID = &vendor.ID
		}

		if err := db.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create product")
		}
		product.Category = cat
		product.Vendor = vendor

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Product created",
			"product": toProductResponse(product),
		})
	}
}

// GET /api/products
func ListProductsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := db.Preload("Category").Preload("Vendor").Order("name ASC").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}

		resp := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, toProductResponse(p))
		}
		return c.JSON(resp)
	}
}

// GET /api/products/:id
func GetProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var product models.Product
		if err := db.Preload("Category").Preload("Vendor").First(&product, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return c.JSON(toProductResponse(product))
	}
}

// PUT /api/products/:id
func UpdateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var product models.Product
		if err := db.First(&product, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != "" {
			product.Name = body.Name
		}
		if body.Unit != "" {
			product.Unit = body.Unit
		}
		if body.WaybillNumber != "" {
			product.WaybillNumber = body.WaybillNumber
		}
		if body.UnitPrice != "" {
			price, err := decimal.NewFromString(body.UnitPrice)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "unit_price must be a number")
			}
			product.UnitPrice = price
		}
		if body.PackageQty != 0 || body.PackagePerUnit != 0 {
			newPkg := product.PackageQty
			if body.PackageQty != 0 {
				newPkg = body.PackageQty
			}
			newPerUnit := product.PackagePerUnit
			if body.PackagePerUnit != 0 {
				newPerUnit = body.PackagePerUnit
			}
			oldPer := product.PackagePerUnit
			if oldPer <= 0 {
				oldPer = 1
			}
			newPer := newPerUnit
			if newPer <= 0 {
				newPer = 1
			}
			// resizing the delivery shifts the balance by the difference
			product.CurrentBalance += newPkg*newPer - product.PackageQty*oldPer
			product.PackageQty = newPkg
			product.PackagePerUnit = newPerUnit
		}
		if body.CategoryName != "" {
			cat, err := getOrCreateCategory(db, body.CategoryName)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not resolve category")
			}
			product.CategoryID = &cat.ID
		}
		if body.VendorName != "" {
			vendor, err := getOrCreateVendor(db, body.VendorName)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not resolve vendor")
			}
			product.VendorID = &vendor.ID
		}

		if err := db.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update product")
		}

		return c.JSON(fiber.Map{"message": "Product updated"})
	}
}
