// Command admin_seed creates the first admin account and the default
// reference data. Running it again leaves existing rows alone.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"fintrivox/internal/config"
	apperrors "fintrivox/internal/errors"
	"fintrivox/internal/models"
	"fintrivox/internal/repositories"
	"fintrivox/internal/services/catalog"
	"fintrivox/internal/validation"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var defaultPlans = []catalog.PlanInput{
	{
		Name:        "starter",
		Description: "Short term plan for first investments",
		MinAmount:   decimal.NewFromInt(100),
		MaxAmount:   decimal.NewFromInt(1000),
		DailyProfit: decimal.RequireFromString("1.5"),
		Duration:    7,
	},
	{
		Name:        "growth",
		Description: "Balanced plan",
		MinAmount:   decimal.NewFromInt(1000),
		MaxAmount:   decimal.NewFromInt(10000),
		DailyProfit: decimal.RequireFromString("2"),
		Duration:    30,
	},
	{
		Name:        "premium",
		Description: "Long term plan for large balances",
		MinAmount:   decimal.NewFromInt(10000),
		MaxAmount:   decimal.NewFromInt(100000),
		DailyProfit: decimal.RequireFromString("2.5"),
		Duration:    90,
	},
}

var defaultMethods = []catalog.PaymentMethodInput{
	{
		Name:        "usdt",
		DisplayName: "Tether (USDT)",
		FeeType:     models.FeeTypePercentage,
		Fee:         decimal.NewFromInt(1),
		MinAmount:   decimal.NewFromInt(10),
		MaxAmount:   decimal.NewFromInt(100000),
		Networks:    []string{"TRC20", "ERC20"},
	},
	{
		Name:        "btc",
		DisplayName: "Bitcoin",
		FeeType:     models.FeeTypeFixed,
		Fee:         decimal.NewFromInt(5),
		MinAmount:   decimal.NewFromInt(50),
		MaxAmount:   decimal.NewFromInt(100000),
		Networks:    []string{"BTC"},
	},
	{
		Name:        "card",
		DisplayName: "Card",
		Direction:   models.DirectionDeposit,
		Provider:    models.ProviderStripe,
		FeeType:     models.FeeTypePercentage,
		Fee:         decimal.RequireFromString("2.9"),
		MinAmount:   decimal.NewFromInt(10),
		MaxAmount:   decimal.NewFromInt(10000),
	},
}

func main() {
	config.LoadEnv()
	cfg := config.Load()

	adminEmail := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminName := config.GetEnv("ADMIN_NAME", "Administrator")

	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set in environment")
	}
	v := validation.New()
	v.Email("email", adminEmail)
	v.Password("password", adminPassword)
	if err := v.Err(); err != nil {
		log.Fatalf("Invalid admin credentials: %v", err)
	}

	db, err := repositories.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Printf("⚠️ Failed to close PostgreSQL connection: %v", err)
		}
	}()

	ctx := context.Background()
	users := repositories.NewUserRepository(db, nil)

	if err := seedAdmin(ctx, users, adminEmail, adminPassword, adminName); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	svc := catalog.NewService(repositories.NewPlanRepository(db), repositories.NewPaymentMethodRepository(db))
	for _, p := range defaultPlans {
		if _, err := svc.CreatePlan(ctx, p); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				log.Printf("Plan %s already exists", p.Name)
				continue
			}
			log.Fatalf("Failed to create plan %s: %v", p.Name, err)
		}
		log.Printf("✅ Plan %s created", p.Name)
	}
	for _, m := range defaultMethods {
		if _, err := svc.CreatePaymentMethod(ctx, m); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				log.Printf("Payment method %s already exists", m.Name)
				continue
			}
			log.Fatalf("Failed to create payment method %s: %v", m.Name, err)
		}
		log.Printf("✅ Payment method %s created", m.Name)
	}
}

func seedAdmin(ctx context.Context, users repositories.UserRepository, email, password, name string) error {
	if _, err := users.GetByEmail(ctx, email); err == nil {
		log.Println("Admin user already exists")
		return nil
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        email,
		Password:     string(hashedPassword),
		Name:         name,
		Role:         models.RoleAdmin,
		Status:       models.UserStatusActive,
		KYCStatus:    models.KYCStatusVerified,
		TokenVersion: 1,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	log.Println("✅ Admin account created successfully!")
	return nil
}
