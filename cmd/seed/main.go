// Command seed loads the starter catalog, an admin, one salesperson and a
// truck plate. Safe to run repeatedly: existing rows are kept, prices updated.
package main

import (
	"context"
	"log"

	"go-sales-ledger/internal/apperror"
	"go-sales-ledger/internal/auth"
	"go-sales-ledger/internal/database"
	"go-sales-ledger/internal/logger"
	"go-sales-ledger/internal/models"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type seedConfig struct {
	DBDriver      string `envconfig:"DB_DRIVER" default:"mysql"`
	DBDSN         string `envconfig:"DB_DSN" required:"true"`
	AdminPassword string `envconfig:"SEED_ADMIN_PASSWORD" default:"admin1234"`
	SalesPassword string `envconfig:"SEED_SALES_PASSWORD" default:"sales123"`
}

// Unit prices in ETB.
var catalog = []struct {
	code, name, price string
}{
	{"4769", "Fanta P/Apple 300 ml", "600.00"},
	{"1030", "COCA 300 ml", "600.00"},
	{"3030", "Fanta Orange 300 ml", "600.00"},
	{"2030", "Sprite 300 ml", "600.00"},
	{"10209", "Sch Novida P/Apple 300 ml", "600.00"},
	{"5464", "Sch Tonic 300 ml", "600.00"},
	{"5897", "Ambo 475 ml", "555.00"},
	{"2108", "Sprite 500 ml", "680.00"},
	{"1271", "COCA 500 ml", "640.00"},
	{"1460", "Fanta Orange 500 ml", "640.00"},
	{"1470", "Fanta P/Apple 500 ml", "640.00"},
	{"5898", "Ambo Original 500 ml", "640.00"},
	{"3698", "Predator Gold 400 ml", "625.00"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}
	var cfg seedConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, "warn", zlog)
	if err != nil {
		zlog.Fatalw("database connection failed", "error", err)
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(db); err != nil {
		zlog.Fatalw("migration failed", "error", err)
	}

	ctx := context.Background()
	store := database.NewStore(db)

	users := []struct {
		username, name, password, role, plate string
	}{
		{"admin", "System Administrator", cfg.AdminPassword, models.RoleAdmin, ""},
		{"sales1", "Sales Person 1", cfg.SalesPassword, models.RoleSalesperson, "ABC-1234"},
	}
	for _, u := range users {
		if err := ensureUser(ctx, store, u.username, u.name, u.password, u.role, u.plate); err != nil {
			zlog.Fatalw("seeding user failed", "username", u.username, "error", err)
		}
	}
	zlog.Infow("users seeded", "count", len(users))

	if err := store.CreatePlate(ctx, &models.PlateNumber{Plate: "ABC-1234"}); err != nil && !apperror.IsCode(err, apperror.CodeConflict) {
		zlog.Fatalw("seeding plate failed", "error", err)
	}

	products := make([]models.Product, 0, len(catalog))
	for _, p := range catalog {
		products = append(products, models.Product{
			ProductCode: p.code,
			ProductName: p.name,
			Price:       decimal.RequireFromString(p.price),
		})
	}
	if _, err := store.UpsertProducts(ctx, products); err != nil {
		zlog.Fatalw("seeding products failed", "error", err)
	}
	zlog.Infow("products seeded", "count", len(products))
}

func ensureUser(ctx context.Context, store *database.Store, username, name, password, role, plate string) error {
	_, err := store.UserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !apperror.IsNotFound(err) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return store.CreateUser(ctx, &models.User{
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		PlateNumber:  plate,
	})
}
