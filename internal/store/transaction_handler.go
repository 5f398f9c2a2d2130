package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TransactionRequest struct {
	ProductID       uint   `json:"product_id"`
	TransactionType string `json:"transaction_type"`
	PackageQty      int    `json:"package"`
	PackagePerUnit  int    `json:"package_per_unit"`
	VendorID        *uint  `json:"vendor_id"`
	WaybillNumber   string `json:"waybill_number"`
	StaffID         uint   `json:"staff_id"`
	DepartmentID    uint   `json:"department_id"`
	TransactionDate string `json:"transaction_date"`
}

type TransactionResponse struct {
	ID              uint   `json:"id"`
	ProductID       uint   `json:"product_id"`
	ProductName     string `json:"product_name"`
	TransactionType string `json:"transaction_type"`
	PackageQty      int    `json:"package"`
	PackagePerUnit  int    `json:"package_per_unit"`
	Quantity        int    `json:"quantity"`
	WaybillNumber   string `json:"waybill_number"`
	StaffName       string `json:"staff_name"`
	DepartmentName  string `json:"department_name"`
	TransactionDate string `json:"transaction_date"`
	Balance         int    `json:"balance"`
}

func toTransactionResponse(t models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		ProductID:       t.ProductID,
		ProductName:     t.ProductName,
		TransactionType: string(t.TransactionType),
		PackageQty:      t.PackageQty,
		PackagePerUnit:  t.PackagePerUnit,
		Quantity:        t.PackageQty * t.PackagePerUnit,
		WaybillNumber:   t.WaybillNumber,
		StaffName:       t.Staff.Name,
		DepartmentName:  t.Department.Name,
		TransactionDate: t.TransactionDate.Format("2006-01-02"),
		Balance:         t.Balance,
	}
}

func parseTransactionType(s string) (models.TransactionType, error) {
	switch models.TransactionType(s) {
	case models.TransactionInjection, models.TransactionReturn,
		models.TransactionRelease, models.TransactionDamaged:
		return models.TransactionType(s), nil
	}
	return "", fmt.Errorf("unknown transaction type: %s", s)
}

// POST /api/transactions
//
// Inserting appends a snapshot to the ledger only. The product's
// denormalized current_balance is not written here; it moves on
// product edits and transaction edits.
func CreateTransactionHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var missing []string
		if body.ProductID == 0 {
			missing = append(missing, "product_id")
		}
		if body.TransactionType == "" {
			missing = append(missing, "transaction_type")
		}
		if body.PackageQty == 0 {
			missing = append(missing, "package")
		}
		if body.StaffID == 0 {
			missing = append(missing, "staff_id")
		}
		if body.DepartmentID == 0 {
			missing = append(missing, "department_id")
		}
		if len(missing) > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Missing required field(s): %s", strings.Join(missing, ", ")))
		}

		txType, err := parseTransactionType(body.TransactionType)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		perUnit := body.PackagePerUnit
		if perUnit <= 0 {
			perUnit = 1
		}

		txDate := time.Now()
		if body.TransactionDate != "" {
			txDate, err = time.Parse("2006-01-02", body.TransactionDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "transaction_date must be YYYY-MM-DD")
			}
		}

		var created models.Transaction
		txErr := db.Transaction(func(tx *gorm.DB) error {
			var product models.Product
			if err := tx.First(&product, "id = ?", body.ProductID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Product not found")
			}

			prev, err := lastBalance(tx, product.ID)
			if err != nil {
				return err
			}
			balance := prev + signedQuantity(txType, body.PackageQty, perUnit)

			created = models.Transaction{
				ProductID:       product.ID,
				ProductName:     product.Name,
				TransactionType: txType,
				PackageQty:      body.PackageQty,
				PackagePerUnit:  perUnit,
				VendorID:        body.VendorID,
				WaybillNumber:   body.WaybillNumber,
				StaffID:         body.StaffID,
				DepartmentID:    body.DepartmentID,
				TransactionDate: txDate,
				Balance:         balance,
			}
			return tx.Create(&created).Error
		})
		if txErr != nil {
			var fe *fiber.Error
			if errors.As(txErr, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save transaction")
		}

		db.Preload("Staff").Preload("Department").First(&created, created.ID)

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":     "Transaction recorded",
			"transaction": toTransactionResponse(created),
		})
	}
}

// GET /api/transactions/product/:productId
func ListProductTransactionsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var product models.Product
		if err := db.First(&product, "id = ?", c.Params("productId")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		var txs []models.Transaction
		err := db.Preload("Staff").Preload("Department").
			Where("product_id = ?", product.ID).
			Order("transaction_date ASC").
			Order("id ASC").
			Find(&txs).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list transactions")
		}

		resp := make([]TransactionResponse, 0, len(txs))
		for _, t := range txs {
			resp = append(resp, toTransactionResponse(t))
		}

		return c.JSON(fiber.Map{
			"product_name":    product.Name,
			"current_balance": product.CurrentBalance,
			"transactions":    resp,
		})
	}
}

// PUT /api/transactions/:id
//
// Editing applies the signed delta to the product's current balance.
// Snapshot balances are not rewritten, not even the edited row's own;
// the history keeps the values rows had when inserted.
func UpdateTransactionHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var existing models.Transaction
		if err := db.First(&existing, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Transaction not found")
		}

		var body TransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		newType := existing.TransactionType
		if body.TransactionType != "" {
			parsed, err := parseTransactionType(body.TransactionType)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			newType = parsed
		}
		newPackage := existing.PackageQty
		if body.PackageQty != 0 {
			newPackage = body.PackageQty
		}
		newPerUnit := existing.PackagePerUnit
		if body.PackagePerUnit > 0 {
			newPerUnit = body.PackagePerUnit
		}

		oldDelta := signedQuantity(existing.TransactionType, existing.PackageQty, existing.PackagePerUnit)
		newDelta := signedQuantity(newType, newPackage, newPerUnit)

		txErr := db.Transaction(func(tx *gorm.DB) error {
			existing.TransactionType = newType
			existing.PackageQty = newPackage
			existing.PackagePerUnit = newPerUnit
			if body.WaybillNumber != "" {
				existing.WaybillNumber = body.WaybillNumber
			}
			if body.VendorID != nil {
				existing.VendorID = body.VendorID
			}
			if body.StaffID != 0 {
				if err := tx.First(&models.User{}, "id = ?", body.StaffID).Error; err != nil {
					return fiber.NewError(fiber.StatusNotFound, "Staff member not found")
				}
				existing.StaffID = body.StaffID
			}
			if body.DepartmentID != 0 {
				if err := tx.First(&models.Department{}, "id = ?", body.DepartmentID).Error; err != nil {
					return fiber.NewError(fiber.StatusNotFound, "Department not found")
				}
				existing.DepartmentID = body.DepartmentID
			}
			if body.TransactionDate != "" {
				txDate, err := time.Parse("2006-01-02", body.TransactionDate)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "transaction_date must be YYYY-MM-DD")
				}
				existing.TransactionDate = txDate
			}
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}

			return tx.Model(&models.Product{}).Where("id = ?", existing.ProductID).
				Update("current_balance", gorm.Expr("current_balance + ?", newDelta-oldDelta)).Error
		})
		if txErr != nil {
			var fe *fiber.Error
			if errors.As(txErr, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update transaction")
		}

		return c.JSON(fiber.Map{"message": "Transaction updated"})
	}
}

// DELETE /api/transactions/:id
//
// Removal does not rebalance later snapshots.
func DeleteTransactionHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var existing models.Transaction
		if err := db.First(&existing, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Transaction not found")
		}

		if err := db.Delete(&existing).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete transaction")
		}

		return c.JSON(fiber.Map{"message": "Transaction deleted"})
	}
}
