package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cardops-backend/internal/database"
	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := setupDB(t)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"success": false, "error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
		},
	})
	app.Post("/api/transactions", CreateTransactionHandler(db))
	app.Get("/api/transactions/product/:productId", ListProductTransactionsHandler(db))
	app.Put("/api/transactions/:id", UpdateTransactionHandler(db))
	app.Delete("/api/transactions/:id", DeleteTransactionHandler(db))
	app.Post("/api/products", CreateProductHandler(db))
	app.Put("/api/products/:id", UpdateProductHandler(db))
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}

func seedLedgerFixtures(t *testing.T, db *gorm.DB) (models.Product, models.User, models.Department) {
	t.Helper()
	dept := models.Department{Name: "Card Production"}
	require.NoError(t, db.Create(&dept).Error)
	staff := models.User{
		Name: "dora", Email: "dora@example.com", PasswordHash: "x",
		Role: models.RoleOperator, DepartmentID: &dept.ID,
	}
	require.NoError(t, db.Create(&staff).Error)
	product := models.Product{Name: "Cleaning Ribbon", Unit: "roll"}
	require.NoError(t, db.Create(&product).Error)
	return product, staff, dept
}

func TestSignedQuantity(t *testing.T) {
	tests := []struct {
		txType  models.TransactionType
		pkg     int
		perUnit int
		want    int
	}{
		{models.TransactionInjection, 5, 10, 50},
		{models.TransactionReturn, 3, 1, 3},
		{models.TransactionRelease, 4, 10, -40},
		{models.TransactionDamaged, 2, 5, -10},
	}
	for _, tt := range tests {
		t.Run(string(tt.txType), func(t *testing.T) {
			assert.Equal(t, tt.want, signedQuantity(tt.txType, tt.pkg, tt.perUnit))
		})
	}
}

func TestCreateTransaction(t *testing.T) {
	app, db := setupApp(t)
	product, staff, dept := seedLedgerFixtures(t, db)

	post := func(txType string, pkg, perUnit int, date string) map[string]interface{} {
		resp, body := doJSON(t, app, "POST", "/api/transactions", fiber.Map{
			"product_id":       product.ID,
			"transaction_type": txType,
			"package":          pkg,
			"package_per_unit": perUnit,
			"staff_id":         staff.ID,
			"department_id":    dept.ID,
			"transaction_date": date,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		return body["transaction"].(map[string]interface{})
	}

	// each snapshot is the previous one plus the signed quantity
	tx1 := post("Injection", 5, 10, "2026-01-01")
	assert.EqualValues(t, 50, tx1["balance"])

	tx2 := post("Release", 2, 10, "2026-01-02")
	assert.EqualValues(t, 30, tx2["balance"])

	tx3 := post("Return", 1, 5, "2026-01-03")
	assert.EqualValues(t, 35, tx3["balance"])

	tx4 := post("Damaged", 1, 5, "2026-01-04")
	assert.EqualValues(t, 30, tx4["balance"])

	// inserting appends snapshots only; the denormalized counter stays put
	var p models.Product
	require.NoError(t, db.First(&p, product.ID).Error)
	assert.Equal(t, 0, p.CurrentBalance)

	t.Run("listing is chronological with names resolved", func(t *testing.T) {
		resp, body := doJSON(t, app, "GET", fmt.Sprintf("/api/transactions/product/%d", product.ID), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 0, body["current_balance"])

		txs := body["transactions"].([]interface{})
		require.Len(t, txs, 4)
		first := txs[0].(map[string]interface{})
		assert.Equal(t, "Injection", first["transaction_type"])
		assert.Equal(t, "dora", first["staff_name"])
		assert.Equal(t, "Card Production", first["department_name"])
	})

	t.Run("unknown transaction type rejected", func(t *testing.T) {
		resp, body := doJSON(t, app, "POST", "/api/transactions", fiber.Map{
			"product_id":       product.ID,
			"transaction_type": "Steal",
			"package":          1,
			"staff_id":         staff.ID,
			"department_id":    dept.ID,
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body["error"], "unknown transaction type")
	})

	t.Run("missing fields enumerated", func(t *testing.T) {
		resp, body := doJSON(t, app, "POST", "/api/transactions", fiber.Map{
			"transaction_type": "Injection",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Missing required field(s): product_id, package, staff_id, department_id", body["error"])
	})
}

func TestUpdateTransactionAppliesDeltaOnly(t *testing.T) {
	app, db := setupApp(t)
	product, staff, dept := seedLedgerFixtures(t, db)

	post := func(txType string, pkg int, date string) {
		resp, _ := doJSON(t, app, "POST", "/api/transactions", fiber.Map{
			"product_id":       product.ID,
			"transaction_type": txType,
			"package":          pkg,
			"package_per_unit": 1,
			"staff_id":         staff.ID,
			"department_id":    dept.ID,
			"transaction_date": date,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	post("Injection", 100, "2026-01-01") // balance 100
	post("Release", 30, "2026-01-02")    // balance 70

	var first models.Transaction
	require.NoError(t, db.Where("transaction_type = ?", "Injection").First(&first).Error)

	resp, _ := doJSON(t, app, "PUT", fmt.Sprintf("/api/transactions/%d", first.ID), fiber.Map{
		"package": 120,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// product balance shifts by the +20 delta
	var p models.Product
	require.NoError(t, db.First(&p, product.ID).Error)
	assert.Equal(t, 20, p.CurrentBalance)

	// no snapshot is rewritten, not even the edited row's own
	require.NoError(t, db.First(&first, first.ID).Error)
	assert.Equal(t, 100, first.Balance)
	assert.Equal(t, 120, first.PackageQty)

	var second models.Transaction
	require.NoError(t, db.Where("transaction_type = ?", "Release").First(&second).Error)
	assert.Equal(t, 70, second.Balance)
}

func TestUpdateTransactionFields(t *testing.T) {
	app, db := setupApp(t)
	product, staff, dept := seedLedgerFixtures(t, db)

	otherDept := models.Department{Name: "Quality Control"}
	require.NoError(t, db.Create(&otherDept).Error)
	otherStaff := models.User{
		Name: "ed", Email: "ed@example.com", PasswordHash: "x",
		Role: models.RoleOperator, DepartmentID: &otherDept.ID,
	}
	require.NoError(t, db.Create(&otherStaff).Error)

	resp, _ := doJSON(t, app, "POST", "/api/transactions", fiber.Map{
		"product_id":       product.ID,
		"transaction_type": "Injection",
		"package":          10,
		"package_per_unit": 1,
		"staff_id":         staff.ID,
		"department_id":    dept.ID,
		"transaction_date": "2026-01-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tx models.Transaction
	require.NoError(t, db.First(&tx).Error)

	resp, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/transactions/%d", tx.ID), fiber.Map{
		"staff_id":         otherStaff.ID,
		"department_id":    otherDept.ID,
		"transaction_date": "2026-02-15",
		"waybill_number":   "WB-77",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&tx, tx.ID).Error)
	assert.Equal(t, otherStaff.ID, tx.StaffID)
	assert.Equal(t, otherDept.ID, tx.DepartmentID)
	assert.Equal(t, "2026-02-15", tx.TransactionDate.Format("2006-01-02"))
	assert.Equal(t, "WB-77", tx.WaybillNumber)

	t.Run("unknown staff rejected", func(t *testing.T) {
		resp, body := doJSON(t, app, "PUT", fmt.Sprintf("/api/transactions/%d", tx.ID), fiber.Map{
			"staff_id": 9999,
		})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Staff member not found", body["error"])
	})
}

func TestDeleteTransactionLeavesSnapshots(t *testing.T) {
	app, db := setupApp(t)
	product, staff, dept := seedLedgerFixtures(t, db)

	for i, spec := range []struct {
		txType string
		pkg    int
	}{
		{"Injection", 100},
		{"Release", 30},
	} {
		resp, _ := doJSON(t, app, "POST", "/api/transactions", fiber.Map{
			"product_id":       product.ID,
			"transaction_type": spec.txType,
			"package":          spec.pkg,
			"package_per_unit": 1,
			"staff_id":         staff.ID,
			"department_id":    dept.ID,
			"transaction_date": fmt.Sprintf("2026-01-0%d", i+1),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var first models.Transaction
	require.NoError(t, db.Where("transaction_type = ?", "Injection").First(&first).Error)

	resp, _ := doJSON(t, app, "DELETE", fmt.Sprintf("/api/transactions/%d", first.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// later snapshot and the denormalized balance keep their stale values
	var second models.Transaction
	require.NoError(t, db.Where("transaction_type = ?", "Release").First(&second).Error)
	assert.Equal(t, 70, second.Balance)

	var p models.Product
	require.NoError(t, db.First(&p, product.ID).Error)
	assert.Equal(t, 0, p.CurrentBalance)
}

func TestCreateProductGetOrCreate(t *testing.T) {
	app, db := setupApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/products", fiber.Map{
		"name":          "Laminate Film",
		"unit":          "box",
		"category_name": "Consumables",
		"vendor_name":   "Acme Supplies",
		"unit_price":    "12.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// same names, different case: no new category or vendor rows
	resp, _ = doJSON(t, app, "POST", "/api/products", fiber.Map{
		"name":          "Toner Black",
		"category_name": "CONSUMABLES",
		"vendor_name":   "acme supplies",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var catCount, vendorCount int64
	db.Model(&models.Category{}).Count(&catCount)
	db.Model(&models.Vendor{}).Count(&vendorCount)
	assert.EqualValues(t, 1, catCount)
	assert.EqualValues(t, 1, vendorCount)

	t.Run("duplicate product name is 409", func(t *testing.T) {
		resp, body := doJSON(t, app, "POST", "/api/products", fiber.Map{
			"name": "laminate film",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Contains(t, body["error"], "already exists")
	})
}

func TestCreateProductDerivesBalance(t *testing.T) {
	app, db := setupApp(t)

	resp, body := doJSON(t, app, "POST", "/api/products", fiber.Map{
		"name":             "Cleaning Kit",
		"unit":             "box",
		"package":          5,
		"package_per_unit": 10,
		"injection_date":   "2026-03-01",
		"delivery_date":    "2026-03-04",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := body["product"].(map[string]interface{})
	assert.EqualValues(t, 50, created["current_balance"])
	assert.Equal(t, "2026-03-01", created["injection_date"])
	assert.Equal(t, "2026-03-04", created["delivery_date"])

	var p models.Product
	require.NoError(t, db.Where("name = ?", "Cleaning Kit").First(&p).Error)
	assert.Equal(t, 50, p.CurrentBalance)

	t.Run("resizing the delivery shifts the balance by the difference", func(t *testing.T) {
		resp, _ := doJSON(t, app, "PUT", fmt.Sprintf("/api/products/%d", p.ID), fiber.Map{
			"package": 8,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		require.NoError(t, db.First(&p, p.ID).Error)
		assert.Equal(t, 80, p.CurrentBalance)
		assert.Equal(t, 8, p.PackageQty)
		assert.Equal(t, 10, p.PackagePerUnit)
	})
}
