package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGormOrderRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db, nil, nil)
	ctx := context.Background()
	storeID := uuid.New()

	order := newTestOrder(t, storeID, "ORD-20261019-00001")
	require.NoError(t, repo.Save(ctx, order))

	t.Run("finds order with items by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, storeID, order.ID)
		require.NoError(t, err)

		assert.Equal(t, order.OrderNumber, found.OrderNumber)
		assert.Equal(t, trade.OrderStatusPending, found.Status)
		assert.Equal(t, 1, found.Version)
		assert.True(t, decimal.NewFromInt(45).Equal(found.Subtotal))
		assert.True(t, decimal.NewFromInt(50).Equal(found.GrandTotal))
		require.Len(t, found.Items, 2)
		for _, want := range order.Items {
			got := found.GetItem(want.ID)
			require.NotNil(t, got)
			assert.Equal(t, want.Quantity, got.Quantity)
			assert.True(t, want.UnitPrice.Equal(got.UnitPrice))
			assert.Equal(t, want.VariantID, got.VariantID)
		}
		require.NotNil(t, found.ShippingAddress)
		assert.Equal(t, "Springfield", found.ShippingAddress.City)
	})

	t.Run("finds order by number and cart", func(t *testing.T) {
		byNumber, err := repo.FindByOrderNumber(ctx, storeID, order.OrderNumber)
		require.NoError(t, err)
		assert.Equal(t, order.ID, byNumber.ID)

		byCart, err := repo.FindByCartID(ctx, storeID, *order.CartID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, byCart.ID)
	})

	t.Run("scopes lookups to the store", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New(), order.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects a second order for the same cart", func(t *testing.T) {
		dup := newTestOrder(t, storeID, "ORD-20261019-00002")
		dup.CartID = order.CartID
		err := repo.Save(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db, nil, nil)
	ctx := context.Background()
	storeID := uuid.New()

	order := newTestOrder(t, storeID, "ORD-20261019-00001")
	require.NoError(t, repo.Save(ctx, order))

	t.Run("persists changes and children, bumps version", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, storeID, order.ID)
		require.NoError(t, err)

		require.NoError(t, loaded.Confirm("payment pending"))
		_, err = loaded.AddTransaction(trade.TransactionInput{
			Type:             trade.TransactionTypeCapture,
			Status:           trade.TransactionStatusSuccess,
			Amount:           decimal.NewFromInt(50),
			GatewayReference: "ch_1",
		})
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithLock(ctx, loaded))
		assert.Equal(t, 2, loaded.Version)

		reloaded, err := repo.FindByID(ctx, storeID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, reloaded.Version)
		assert.Equal(t, trade.OrderStatusConfirmed, reloaded.Status)
		assert.True(t, decimal.NewFromInt(50).Equal(reloaded.TotalPaid))
		require.Len(t, reloaded.Transactions, 1)
		assert.Equal(t, "ch_1", reloaded.Transactions[0].GatewayReference)
		assert.NotEmpty(t, reloaded.History)
		assert.NotNil(t, reloaded.ConfirmedAt)
	})

	t.Run("stale copy fails with a concurrency conflict", func(t *testing.T) {
		stale := order.Clone()
		stale.Notes = "late write"

		err := repo.SaveWithLock(ctx, stale)
		require.Error(t, err)
		assert.Equal(t, shared.CodeConcurrencyConflict, shared.ErrorCode(err))

		current, err := repo.FindByID(ctx, storeID, order.ID)
		require.NoError(t, err)
		assert.Empty(t, current.Notes)
	})

	t.Run("missing order is not found", func(t *testing.T) {
		ghost := newTestOrder(t, storeID, "ORD-20261019-00099")
		err := repo.SaveWithLock(ctx, ghost)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("removed lines are deleted", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, storeID, order.ID)
		require.NoError(t, err)
		kept := loaded.Items[0]
		loaded.Items = loaded.Items[:1]
		require.NoError(t, repo.SaveWithLock(ctx, loaded))

		reloaded, err := repo.FindByID(ctx, storeID, order.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Items, 1)
		assert.Equal(t, kept.ID, reloaded.Items[0].ID)
	})
}

func TestGormOrderRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db, nil, nil)
	ctx := context.Background()
	storeID := uuid.New()

	for i, number := range []string{"ORD-20261019-00001", "ORD-20261019-00002", "ORD-20261019-00003"} {
		o := newTestOrder(t, storeID, number)
		if i == 0 {
			o.Email = "vip@example.com"
			require.NoError(t, o.Confirm(""))
		}
		require.NoError(t, repo.Save(ctx, o))
	}
	require.NoError(t, repo.Save(ctx, newTestOrder(t, uuid.New(), "ORD-20261019-00001")))

	t.Run("lists store orders with pagination", func(t *testing.T) {
		orders, total, err := repo.FindAll(ctx, trade.OrderFilter{
			StoreID: storeID,
			Filter:  shared.Filter{Page: 1, PageSize: 2, OrderBy: "order_number", OrderDir: "asc"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, orders, 2)
		assert.Equal(t, "ORD-20261019-00001", orders[0].OrderNumber)
		assert.Len(t, orders[0].Items, 2)
	})

	t.Run("filters by status", func(t *testing.T) {
		status := trade.OrderStatusConfirmed
		orders, total, err := repo.FindAll(ctx, trade.OrderFilter{StoreID: storeID, Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, "vip@example.com", orders[0].Email)
	})

	t.Run("searches number and email", func(t *testing.T) {
		_, total, err := repo.FindAll(ctx, trade.OrderFilter{StoreID: storeID, Filter: shared.Filter{Search: "VIP"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		_, total, err = repo.FindAll(ctx, trade.OrderFilter{StoreID: storeID, Filter: shared.Filter{Search: "00003"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})
}

func TestGormOrderRepository_LogsIntegrityViolations(t *testing.T) {
	db := setupTestDB(t)
	core, logs := observer.New(zapcore.ErrorLevel)
	repo := NewGormOrderRepository(db, nil, zap.New(core))
	ctx := context.Background()
	storeID := uuid.New()

	order := newTestOrder(t, storeID, "ORD-20261019-00001")
	require.NoError(t, repo.Save(ctx, order))
	require.NoError(t, db.Model(&models.OrderModel{}).
		Where("id = ?", order.ID).
		Update("total_refunded", decimal.NewFromInt(10)).Error)

	found, err := repo.FindByID(ctx, storeID, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(found.TotalRefunded))

	entries := logs.FilterMessage("data integrity violation").All()
	require.Len(t, entries, 1)
	assert.Equal(t, order.OrderNumber, entries[0].ContextMap()["order_number"])
}

func TestGormOrderRepository_GenerateOrderNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db, NewOrderNumberGenerator("SO", nil), nil)
	ctx := context.Background()
	storeID := uuid.New()

	first, err := repo.GenerateOrderNumber(ctx, storeID)
	require.NoError(t, err)
	second, err := repo.GenerateOrderNumber(ctx, storeID)
	require.NoError(t, err)
	other, err := repo.GenerateOrderNumber(ctx, uuid.New())
	require.NoError(t, err)

	assert.Regexp(t, `^SO-\d{8}-00001$`, first)
	assert.Regexp(t, `^SO-\d{8}-00002$`, second)
	assert.Regexp(t, `^SO-\d{8}-00001$`, other)
}

func TestGormOrderRepository_SaveWithLock_Postgres(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	repo := NewGormOrderRepository(gormDB, nil, nil)

	order := newTestOrder(t, uuid.New(), "ORD-20261019-00001")

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET .+ WHERE .+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err = repo.SaveWithLock(context.Background(), order)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Equal(t, 1, order.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}
