// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"fintrivox/internal/handlers"
	"fintrivox/internal/middleware"
	"fintrivox/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Ledger       *handlers.LedgerHandler
	Investment   *handlers.InvestmentHandler
	Catalog      *handlers.CatalogHandler
	Notification *handlers.NotificationHandler
	KYC          *handlers.KYCHandler
	Admin        *handlers.AdminHandler
	Health       *handlers.HealthHandler
}

type Options struct {
	AuthMiddleware *middleware.AuthMiddleware
	CronKey        string
	// Gatherer backs /metrics; nil leaves the endpoint unmounted.
	Gatherer prometheus.Gatherer
}

// SetupRoutes configures all application routes.
// Public and cron routes are registered before the auth group so its
// middleware never sees them.
func SetupRoutes(app *fiber.App, h Handlers, opts Options) {
	app.Get("/health", h.Health.HealthCheck)
	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Public endpoints (no auth required)
	api.Post("/register", h.Auth.RegisterUser)
	api.Post("/login", h.Auth.LoginUser)
	api.Post("/refresh", h.Auth.RefreshToken)
	api.Get("/plans", h.Catalog.ListPlans)
	api.Get("/payment-methods", h.Catalog.ListPaymentMethods)

	api.Post("/cron/accrue", middleware.CronKey(opts.CronKey), h.Investment.Accrue)

	protected := api.Group("", opts.AuthMiddleware.Handler)
	setupUserRoutes(protected, h)
	setupAdminRoutes(protected, h)
}

func setupUserRoutes(router fiber.Router, h Handlers) {
	router.Get("/me", h.Auth.Me)
	router.Post("/logout", h.Auth.LogoutUser)
	router.Post("/change-password", middleware.HasPermission(models.PermissionChangePassword), h.Auth.ChangePassword)
	router.Post("/withdrawal-key", h.Auth.SetWithdrawalKey)

	write := middleware.HasPermission(models.PermissionTransactionWrite)
	router.Post("/deposits", write, h.Ledger.CreateDeposit)
	router.Post("/deposits/:id/cancel", write, h.Ledger.CancelDeposit)
	router.Post("/withdrawals", write, h.Ledger.CreateWithdrawal)

	read := middleware.HasPermission(models.PermissionTransactionRead)
	router.Get("/transactions", read, h.Ledger.GetUserTransactions)
	router.Get("/transactions/:id", read, h.Ledger.GetTransaction)

	router.Post("/investments", middleware.HasPermission(models.PermissionInvestmentWrite), h.Investment.Create)
	router.Get("/investments", middleware.HasPermission(models.PermissionInvestmentRead), h.Investment.List)

	router.Get("/notifications", h.Notification.List)
	router.Post("/notifications/read-all", h.Notification.MarkAllRead)
	router.Post("/notifications/:id/read", h.Notification.MarkRead)

	router.Post("/kyc", h.KYC.SubmitKYC)
	router.Get("/kyc", h.KYC.GetStatus)
}

func setupAdminRoutes(router fiber.Router, h Handlers) {
	admin := router.Group("/admin", middleware.AdminAuthMiddleware)

	admin.Get("/stats", middleware.HasPermission(models.PermissionReadAdmin), h.Admin.GetStats)
	admin.Get("/transactions", middleware.HasPermission(models.PermissionReadAdmin), h.Ledger.GetAllTransactions)

	approve := middleware.HasPermission(models.PermissionApproveTransactions)
	admin.Post("/deposits/:id/approve", approve, h.Ledger.ApproveDeposit)
	admin.Post("/deposits/:id/reject", approve, h.Ledger.RejectDeposit)
	admin.Post("/withdrawals/:id/approve", approve, h.Ledger.ApproveWithdrawal)
	admin.Post("/withdrawals/:id/reject", approve, h.Ledger.RejectWithdrawal)

	admin.Post("/investments/:id/cancel", middleware.HasPermission(models.PermissionWriteAdmin), h.Investment.Cancel)

	plans := middleware.HasPermission(models.PermissionManagePlans)
	admin.Post("/plans", plans, h.Catalog.CreatePlan)
	admin.Put("/plans/:id", plans, h.Catalog.UpdatePlan)
	admin.Post("/payment-methods", plans, h.Catalog.CreatePaymentMethod)
	admin.Put("/payment-methods/:id", plans, h.Catalog.UpdatePaymentMethod)

	review := middleware.HasPermission(models.PermissionReviewKYC)
	admin.Get("/kyc", review, h.KYC.List)
	admin.Post("/kyc/:id/approve", review, h.KYC.Approve)
	admin.Post("/kyc/:id/reject", review, h.KYC.Reject)

	users := middleware.HasPermission(models.PermissionUserWrite)
	admin.Get("/users", middleware.HasPermission(models.PermissionReadAdmin), h.Admin.GetUsersPaginated)
	admin.Post("/users/:id/suspend", users, h.Admin.SuspendUser)
	admin.Post("/users/:id/activate", users, h.Admin.ActivateUser)
}
