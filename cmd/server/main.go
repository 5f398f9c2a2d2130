package main

import (
	"strings"

	"cardops-backend/internal/admin"
	"cardops-backend/internal/audit"
	"cardops-backend/internal/auth"
	"cardops-backend/internal/config"
	"cardops-backend/internal/database"
	"cardops-backend/internal/inventory"
	"cardops-backend/internal/jobs"
	"cardops-backend/internal/models"
	"cardops-backend/internal/qc"
	"cardops-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	db := database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"success": false,
					"error":   e.Message,
				})
			}
			logrus.WithError(err).Error("Unexpected error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Unexpected server error",
			})
		},
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	policy := jobs.EmptySidePolicy(cfg.JobStatusEmptySide)

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(db, cfg))
	api.Post("/auth/login", auth.LoginHandler(db, cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))

	// Bank card vault
	protected.Post("/bank-cards", inventory.AddBankCardHandler(db))
	protected.Get("/bank-cards", inventory.ListBankCardsHandler(db))
	protected.Post("/card-issues", inventory.ProcessReleasedJobsHandler(db))
	protected.Post("/card-issues/report", inventory.ReportCardIssueHandler(db))
	protected.Post("/release-cards", inventory.ReleaseCardsHandler(db))
	protected.Get("/today", inventory.UnreconciledReleasesHandler(db))

	// Job codes
	protected.Post("/job-codes/add", jobs.CreateJobCodeHandler(db))
	protected.Get("/job-codes", jobs.ListJobCodesHandler(db))
	protected.Get("/job-codes/search", jobs.SearchJobCodesHandler(db))
	protected.Get("/job-codes/:id", jobs.GetJobCodeHandler(db))
	protected.Put("/job-codes/edit/:id", jobs.UpdateJobCodeHandler(db))
	protected.Delete("/job-codes/delete/:id", jobs.DeleteJobCodeHandler(db))

	// Job intake and reconciliation
	protected.Post("/jobs", jobs.SubmitMailerJobsHandler(db))
	protected.Post("/machine-jobs", jobs.SubmitCardJobHandler(db))
	protected.Get("/check-job", jobs.CheckJobHandler(db))
	protected.Get("/job-management", jobs.JobManagementHandler(db, policy))

	// QC
	protected.Post("/qc-entries", qc.AddQcEntryHandler(db))
	protected.Get("/qc-entries", qc.GetQcEntriesHandler(db))
	protected.Get("/qc-entries/totals", qc.GetQcTotalsHandler(db))
	protected.Get("/qc-entries/week-report", qc.WeekReportHandler(db))
	protected.Get("/qc-entries/week-report/export", qc.ExportWeekReportHandler(db))
	protected.Post("/qc-entries/change-logs", qc.SaveChangeLogHandler(db))
	protected.Get("/qc-entries/change-logs", qc.GetChangeLogsHandler(db))

	// Store ledger
	protected.Post("/transactions", store.CreateTransactionHandler(db))
	protected.Get("/transactions/product/:productId", store.ListProductTransactionsHandler(db))
	protected.Put("/transactions/:id", store.UpdateTransactionHandler(db))
	protected.Delete("/transactions/:id", store.DeleteTransactionHandler(db))

	protected.Post("/products", store.CreateProductHandler(db))
	protected.Get("/products", store.ListProductsHandler(db))
	protected.Get("/products/:id", store.GetProductHandler(db))
	protected.Put("/products/:id", store.UpdateProductHandler(db))

	protected.Post("/store-items", store.CreateStoreItemHandler(db))
	protected.Get("/store-items", store.ListStoreItemsHandler(db))
	protected.Put("/store-items/:id", store.UpdateStoreItemHandler(db))
	protected.Delete("/store-items/:id", store.DeleteStoreItemHandler(db))

	protected.Get("/vendors", store.ListVendorsHandler(db))
	protected.Post("/vendors", store.CreateVendorHandler(db))
	protected.Get("/categories", store.ListCategoriesHandler(db))
	protected.Post("/categories", store.CreateCategoryHandler(db))

	// Reference data
	protected.Get("/banks", admin.ListBanksHandler(db))
	protected.Get("/banks/:id", admin.GetBankHandler(db))
	protected.Get("/departments", admin.ListDepartmentsHandler(db))
	protected.Get("/devices", admin.ListDevicesHandler(db))

	// Admin / supervisor routes
	adminRoutes := protected.Group("")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin, models.RoleSupervisor))

	adminRoutes.Post("/banks", admin.CreateBankHandler(db))
	adminRoutes.Post("/departments", admin.CreateDepartmentHandler(db))
	adminRoutes.Put("/departments/:id", admin.UpdateDepartmentHandler(db))
	adminRoutes.Delete("/departments/:id", admin.DeleteDepartmentHandler(db))
	adminRoutes.Post("/devices", admin.RegisterDeviceHandler(db))
	adminRoutes.Put("/devices/:id", admin.UpdateDeviceHandler(db))
	adminRoutes.Get("/staff", admin.ListStaffHandler(db))
	adminRoutes.Put("/staff/:id/role", admin.UpdateStaffRoleHandler(db))
	adminRoutes.Delete("/staff/:id", admin.DeleteStaffHandler(db))

	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler(db))
	adminRoutes.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler(db))

	logrus.Infof("Listening on :%s", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logrus.Fatalf("Server stopped: %v", err)
	}
}
