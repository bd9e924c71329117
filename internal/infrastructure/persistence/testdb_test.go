package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a migrated in-memory SQLite database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

// newTestOrder builds a pending two-line order: 2 x 10.00 and 1 x 25.00
func newTestOrder(t *testing.T, storeID uuid.UUID, number string) *trade.Order {
	t.Helper()

	locationID := uuid.New()
	order, err := trade.NewOrderFromCart(trade.CartSnapshot{
		CartID:   uuid.New(),
		StoreID:  storeID,
		Email:    "buyer@example.com",
		Currency: "USD",
		Items: []trade.LineInput{
			{ProductID: uuid.New(), VariantID: uuid.New(), LocationID: locationID, Title: "Mug", SKU: "MUG-1", UnitPrice: decimal.NewFromInt(10), Quantity: 2},
			{ProductID: uuid.New(), VariantID: uuid.New(), LocationID: locationID, Title: "Poster", SKU: "POS-1", UnitPrice: decimal.NewFromInt(25), Quantity: 1},
		},
		ShippingTotal:  decimal.NewFromInt(5),
		ShippingMethod: "standard",
		ShippingAddress: &trade.Address{
			Name: "Ada", Line1: "1 Main St", City: "Springfield", PostalCode: "12345", CountryCode: "US",
		},
	}, number, decimal.Zero)
	require.NoError(t, err)
	return order
}
