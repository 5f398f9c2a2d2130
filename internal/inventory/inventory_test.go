package inventory

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
	app.Post("/api/bank-cards", AddBankCardHandler(db))
	app.Get("/api/bank-cards", ListBankCardsHandler(db))
	app.Post("/api/card-issues", ProcessReleasedJobsHandler(db))
	app.Post("/api/card-issues/report", ReportCardIssueHandler(db))
	app.Post("/api/release-cards", ReleaseCardsHandler(db))
	app.Get("/api/today", UnreconciledReleasesHandler(db))
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

func seedBank(t *testing.T, db *gorm.DB, name string) models.Bank {
	t.Helper()
	bank := models.Bank{BankName: name}
	require.NoError(t, db.Create(&bank).Error)
	return bank
}

func seedJobCode(t *testing.T, db *gorm.DB, bankID uint, jobID string, qty int) models.JobCode {
	t.Helper()
	jc := models.JobCode{JobID: jobID, BankID: bankID, Quantity: qty}
	require.NoError(t, db.Create(&jc).Error)
	return jc
}

func TestAddBankCard(t *testing.T) {
	t.Run("creates stock row", func(t *testing.T) {
		app, db := setupApp(t)
		bank := seedBank(t, db, "First National")

		resp, body := doJSON(t, app, "POST", "/api/bank-cards", fiber.Map{
			"bank_id":           bank.ID,
			"card_brand":        "Visa",
			"qty_in_vault_good": 500,
			"submitted_by":      "alice",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])

		var stock models.BankCardStock
		require.NoError(t, db.First(&stock, "bank_id = ? AND card_brand = ?", bank.ID, "Visa").Error)
		assert.Equal(t, 500, stock.QtyInVaultGood)
		assert.Equal(t, 0, stock.Personalized)
		assert.Equal(t, 0, stock.OngoingPersonalization)
	})

	t.Run("enumerates missing fields", func(t *testing.T) {
		app, _ := setupApp(t)

		resp, body := doJSON(t, app, "POST", "/api/bank-cards", fiber.Map{
			"card_brand": "Visa",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Missing required field(s): bank_id, qty_in_vault_good, submitted_by", body["error"])
	})

	t.Run("unknown bank is 404", func(t *testing.T) {
		app, _ := setupApp(t)

		resp, body := doJSON(t, app, "POST", "/api/bank-cards", fiber.Map{
			"bank_id":           99,
			"card_brand":        "Visa",
			"qty_in_vault_good": 10,
			"submitted_by":      "alice",
		})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Bank not found", body["error"])
	})

	t.Run("duplicate bank and brand is 409", func(t *testing.T) {
		app, db := setupApp(t)
		bank := seedBank(t, db, "First National")

		payload := fiber.Map{
			"bank_id":           bank.ID,
			"card_brand":        "Visa",
			"qty_in_vault_good": 100,
			"submitted_by":      "alice",
		}
		resp, _ := doJSON(t, app, "POST", "/api/bank-cards", payload)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, body := doJSON(t, app, "POST", "/api/bank-cards", payload)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Contains(t, body["error"], "already exists")

		var count int64
		db.Model(&models.BankCardStock{}).Count(&count)
		assert.EqualValues(t, 1, count)
	})
}

func TestReleaseCards(t *testing.T) {
	t.Run("unknown job code aborts the whole batch", func(t *testing.T) {
		app, db := setupApp(t)
		bank := seedBank(t, db, "First National")
		seedJobCode(t, db, bank.ID, "JC100", 200)
		require.NoError(t, db.Create(&models.BankCardStock{
			BankID: bank.ID, CardBrand: "Visa", QtyInVaultGood: 500,
		}).Error)

		resp, body := doJSON(t, app, "POST", "/api/release-cards", fiber.Map{
			"bank_id":      bank.ID,
			"card_brand":   "Visa",
			"submitted_by": "bob",
			"jobs": []fiber.Map{
				{"job_code": "JC100", "quantity": 50},
				{"job_code": "JC999", "quantity": 30},
			},
		})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Job code JC999 does not exist for this bank", body["error"])

		var count int64
		db.Model(&models.ReleasedCard{}).Count(&count)
		assert.EqualValues(t, 0, count, "first entry must be rolled back")
	})

	t.Run("batch shares one reference and leaves the vault untouched", func(t *testing.T) {
		app, db := setupApp(t)
		bank := seedBank(t, db, "First National")
		seedJobCode(t, db, bank.ID, "JC100", 200)
		seedJobCode(t, db, bank.ID, "JC101", 100)
		require.NoError(t, db.Create(&models.BankCardStock{
			BankID: bank.ID, CardBrand: "Visa", QtyInVaultGood: 500,
		}).Error)

		resp, body := doJSON(t, app, "POST", "/api/release-cards", fiber.Map{
			"bank_id":      bank.ID,
			"card_brand":   "Visa",
			"submitted_by": "bob",
			"jobs": []fiber.Map{
				{"job_code": "JC100", "quantity": 50},
				{"job_code": "JC101", "quantity": 30},
			},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])

		var releases []models.ReleasedCard
		require.NoError(t, db.Find(&releases).Error)
		require.Len(t, releases, 2)
		assert.Equal(t, releases[0].Reference, releases[1].Reference)
		assert.False(t, releases[0].Processed)

		var stock models.BankCardStock
		require.NoError(t, db.First(&stock, "bank_id = ?", bank.ID).Error)
		assert.Equal(t, 500, stock.QtyInVaultGood)
	})
}

func TestProcessReleasedJobs(t *testing.T) {
	release := func(t *testing.T, app *fiber.App, bankID uint, jobCodes ...string) {
		t.Helper()
		entries := make([]fiber.Map, 0, len(jobCodes))
		for _, jc := range jobCodes {
			entries = append(entries, fiber.Map{"job_code": jc, "quantity": 50})
		}
		resp, _ := doJSON(t, app, "POST", "/api/release-cards", fiber.Map{
			"bank_id":      bankID,
			"card_brand":   "Visa",
			"submitted_by": "bob",
			"jobs":         entries,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	t.Run("decrements counters and marks release processed", func(t *testing.T) {
		app, db := setupApp(t)
		bank := seedBank(t, db, "First National")
		seedJobCode(t, db, bank.ID, "JC100", 200)
		require.NoError(t, db.Create(&models.BankCardStock{
			BankID: bank.ID, CardBrand: "Visa",
			QtyInVaultGood: 500, QtyInVaultDamaged: 20,
			Personalized: 40, OngoingPersonalization: 60, Duplicate: 10,
		}).Error)
		release(t, app, bank.ID, "JC100")

		resp, body := doJSON(t, app, "POST", "/api/card-issues", fiber.Map{
			"bank_id":      bank.ID,
			"card_brand":   "Visa",
			"submitted_by": "carol",
			"jobs": []fiber.Map{
				{"job_code": "JC100", "ongoing": 10, "personalized": 15, "damaged": 5, "duplicate": 3},
			},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Jobs processed successfully", body["message"])

		var stock models.BankCardStock
		require.NoError(t, db.First(&stock, "bank_id = ?", bank.ID).Error)
		assert.Equal(t, 50, stock.OngoingPersonalization) // 60 - 10
		assert.Equal(t, 25, stock.Personalized)           // 40 - 15
		assert.Equal(t, 15, stock.QtyInVaultDamaged)      // 20 - 5
		assert.Equal(t, 497, stock.QtyInVaultGood)        // 500 - 3 (duplicate)
		assert.Equal(t, 7, stock.Duplicate)               // 10 - 3
		assert.Equal(t, "carol", stock.SubmittedBy)

		var rel models.ReleasedCard
		require.NoError(t, db.First(&rel).Error)
		assert.True(t, rel.Processed)
		require.NotNil(t, rel.ProcessedAt)
	})

	t.Run("clamps counters at zero", func(t *testing.T) {
		app, db := setupApp(t)
		bank := seedBank(t, db, "First National")
		seedJobCode(t, db, bank.ID, "JC100", 200)
		require.NoError(t, db.Create(&models.BankCardStock{
			BankID: bank.ID, CardBrand: "Visa",
			QtyInVaultGood: 2, QtyInVaultDamaged: 1,
			Personalized: 3, OngoingPersonalization: 4, Duplicate: 1,
		}).Error)
		release(t, app, bank.ID, "JC100")

		resp, _ := doJSON(t, app, "POST", "/api/card-issues", fiber.Map{
			"bank_id":      bank.ID,
			"card_brand":   "Visa",
			"submitted_by": "carol",
			"jobs": []fiber.Map{
				{"job_code": "JC100", "ongoing": 100, "personalized": 100, "damaged": 100, "duplicate": 100},
			},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var stock models.BankCardStock
		require.NoError(t, db.First(&stock, "bank_id = ?", bank.ID).Error)
		assert.Equal(t, 0, stock.OngoingPersonalization)
		assert.Equal(t, 0, stock.Personalized)
		assert.Equal(t, 0, stock.QtyInVaultDamaged)
		assert.Equal(t, 0, stock.QtyInVaultGood)
		assert.Equal(t, 0, stock.Duplicate)
	})

	t.Run("reports unmatched entries as skipped", func(t *testing.T) {
		app, db := setupApp(t)
		bank := seedBank(t, db, "First National")
		seedJobCode(t, db, bank.ID, "JC100", 200)
		seedJobCode(t, db, bank.ID, "JC200", 100)
		require.NoError(t, db.Create(&models.BankCardStock{
			BankID: bank.ID, CardBrand: "Visa", QtyInVaultGood: 500, OngoingPersonalization: 50,
		}).Error)
		release(t, app, bank.ID, "JC100")

		resp, body := doJSON(t, app, "POST", "/api/card-issues", fiber.Map{
			"bank_id":      bank.ID,
			"card_brand":   "Visa",
			"submitted_by": "carol",
			"jobs": []fiber.Map{
				{"job_code": "JC100", "ongoing": 10},
				{"job_code": "JC200", "ongoing": 10}, // never released
			},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		skipped, ok := body["skipped"].([]interface{})
		require.True(t, ok)
		require.Len(t, skipped, 1)
		assert.Equal(t, "JC200", skipped[0])

		processed, ok := body["data"].([]interface{})
		require.True(t, ok)
		assert.Len(t, processed, 1)

		// the skipped entry must not touch the counters
		var stock models.BankCardStock
		require.NoError(t, db.First(&stock, "bank_id = ?", bank.ID).Error)
		assert.Equal(t, 40, stock.OngoingPersonalization)
	})

	t.Run("creates an issue row tagged damaged when both defect counts are set", func(t *testing.T) {
		app, db := setupApp(t)
		bank := seedBank(t, db, "First National")
		seedJobCode(t, db, bank.ID, "JC100", 200)
		require.NoError(t, db.Create(&models.BankCardStock{
			BankID: bank.ID, CardBrand: "Visa",
			QtyInVaultGood: 500, QtyInVaultDamaged: 50, Duplicate: 50,
		}).Error)
		release(t, app, bank.ID, "JC100")

		resp, _ := doJSON(t, app, "POST", "/api/card-issues", fiber.Map{
			"bank_id":      bank.ID,
			"card_brand":   "Visa",
			"submitted_by": "carol",
			"jobs": []fiber.Map{
				{"job_code": "JC100", "damaged": 4, "duplicate": 2},
			},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var issue models.CardIssue
		require.NoError(t, db.First(&issue).Error)
		assert.Equal(t, 4, issue.DamagedQty)
		assert.Equal(t, 2, issue.DuplicateQty)
		assert.Equal(t, models.IssueStatusDamaged, issue.CardStatus)
	})

	t.Run("no defect counts means no issue row", func(t *testing.T) {
		app, db := setupApp(t)
		bank := seedBank(t, db, "First National")
		seedJobCode(t, db, bank.ID, "JC100", 200)
		require.NoError(t, db.Create(&models.BankCardStock{
			BankID: bank.ID, CardBrand: "Visa", QtyInVaultGood: 500, OngoingPersonalization: 30,
		}).Error)
		release(t, app, bank.ID, "JC100")

		resp, _ := doJSON(t, app, "POST", "/api/card-issues", fiber.Map{
			"bank_id":      bank.ID,
			"card_brand":   "Visa",
			"submitted_by": "carol",
			"jobs":         []fiber.Map{{"job_code": "JC100", "ongoing": 10}},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var count int64
		db.Model(&models.CardIssue{}).Count(&count)
		assert.EqualValues(t, 0, count)
	})

	t.Run("rejects when every row is blank", func(t *testing.T) {
		app, db := setupApp(t)
		bank := seedBank(t, db, "First National")
		require.NoError(t, db.Create(&models.BankCardStock{
			BankID: bank.ID, CardBrand: "Visa", QtyInVaultGood: 500,
		}).Error)

		resp, body := doJSON(t, app, "POST", "/api/card-issues", fiber.Map{
			"bank_id":      bank.ID,
			"card_brand":   "Visa",
			"submitted_by": "carol",
			"jobs":         []fiber.Map{{"job_code": ""}},
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "No valid jobs to process", body["error"])
	})
}

func TestUnreconciledReleases(t *testing.T) {
	app, db := setupApp(t)
	bank := seedBank(t, db, "First National")
	seedJobCode(t, db, bank.ID, "JC100", 200)
	seedJobCode(t, db, bank.ID, "JC200", 100)
	seedJobCode(t, db, bank.ID, "JC300", 100)
	require.NoError(t, db.Create(&models.BankCardStock{
		BankID: bank.ID, CardBrand: "Visa", QtyInVaultGood: 500, OngoingPersonalization: 100,
	}).Error)

	resp, _ := doJSON(t, app, "POST", "/api/release-cards", fiber.Map{
		"bank_id":      bank.ID,
		"card_brand":   "Visa",
		"submitted_by": "bob",
		"jobs": []fiber.Map{
			{"job_code": "JC100", "quantity": 50},
			{"job_code": "JC200", "quantity": 30},
			{"job_code": "JC300", "quantity": 20},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// JC100 gets processed, JC200 gets a reported issue, JC300 stays open
	resp, _ = doJSON(t, app, "POST", "/api/card-issues", fiber.Map{
		"bank_id":      bank.ID,
		"card_brand":   "Visa",
		"submitted_by": "carol",
		"jobs":         []fiber.Map{{"job_code": "JC100", "ongoing": 10}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/api/card-issues/report", fiber.Map{
		"bank_id":      bank.ID,
		"card_brand":   "Visa",
		"job_code":     "JC200",
		"damaged_qty":  2,
		"submitted_by": "carol",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest("GET", fmt.Sprintf("/api/today?bank_id=%d", bank.ID), nil)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var rows []UnreconciledRelease
	require.NoError(t, json.Unmarshal(raw, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "JC300", rows[0].JobCode)
	assert.Equal(t, 20, rows[0].Quantity)
}

func TestReportCardIssue(t *testing.T) {
	app, db := setupApp(t)
	bank := seedBank(t, db, "First National")
	seedJobCode(t, db, bank.ID, "JC100", 200)
	require.NoError(t, db.Create(&models.BankCardStock{
		BankID: bank.ID, CardBrand: "Visa", QtyInVaultGood: 500,
	}).Error)

	resp, body := doJSON(t, app, "POST", "/api/card-issues/report", fiber.Map{
		"bank_id":       bank.ID,
		"card_brand":    "Visa",
		"job_code":      "JC100",
		"duplicate_qty": 3,
		"remark":        "double feed",
		"submitted_by":  "carol",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	var issue models.CardIssue
	require.NoError(t, db.First(&issue).Error)
	assert.Equal(t, models.IssueStatusDuplicate, issue.CardStatus)

	// counters untouched by a report
	var stock models.BankCardStock
	require.NoError(t, db.First(&stock, "bank_id = ?", bank.ID).Error)
	assert.Equal(t, 500, stock.QtyInVaultGood)
}
