package models

import (
	"context"
	"fmt"
	"testing"

	"github.com/mkitchen/resto_backend/config"
	"github.com/mkitchen/resto_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTest opens a fresh in-memory database for one test and returns a
// context carrying a freshly created tenant.
func setupTest(t *testing.T) context.Context {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	config.SetDB(db)
	if err := MigrateTable(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	business, err := CreateBusiness(ctx, &NewBusiness{Name: "Test Kitchen"})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}
	ctx = utils.SetBusinessIdInContext(ctx, business.ID.String())
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "tester")
	return ctx
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
