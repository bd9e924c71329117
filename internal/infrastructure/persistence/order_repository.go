package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderUpdateColumns are the order columns rewritten by SaveWithLock.
// id, store_id, order_number, cart_id and created_at never change.
var orderUpdateColumns = []string{
	"customer_id", "email", "currency",
	"status", "payment_status", "fulfillment_status",
	"order_discount", "shipping_total", "tax_rate", "tax_override",
	"subtotal", "discount_total", "tax_total", "grand_total", "total_paid", "total_refunded",
	"shipping_method", "shipping_address", "notes", "cancel_reason",
	"confirmed_at", "cancelled_at", "completed_at",
	"version", "updated_at",
}

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db      *gorm.DB
	numbers *OrderNumberGenerator
	logger  *zap.Logger
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB, numbers *OrderNumberGenerator, logger *zap.Logger) *GormOrderRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if numbers == nil {
		numbers = NewOrderNumberGenerator(DefaultOrderNumberPrefix, nil)
	}
	return &GormOrderRepository{db: db, numbers: numbers, logger: logger}
}

// FindByID finds an order by ID within a store
func (r *GormOrderRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*trade.Order, error) {
	return r.findOne(ctx, r.db.WithContext(ctx), "store_id = ? AND id = ?", storeID, id)
}

// FindByIDForUpdate finds an order and locks its row until the transaction ends.
// SQLite ignores the lock; it serializes writers on its own.
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, storeID, id uuid.UUID) (*trade.Order, error) {
	locked := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findOne(ctx, locked, "store_id = ? AND id = ?", storeID, id)
}

// FindByOrderNumber finds an order by its number within a store
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (*trade.Order, error) {
	return r.findOne(ctx, r.db.WithContext(ctx), "store_id = ? AND order_number = ?", storeID, orderNumber)
}

// FindByCartID finds the order created from a cart
func (r *GormOrderRepository) FindByCartID(ctx context.Context, storeID, cartID uuid.UUID) (*trade.Order, error) {
	return r.findOne(ctx, r.db.WithContext(ctx), "store_id = ? AND cart_id = ?", storeID, cartID)
}

func (r *GormOrderRepository) findOne(ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.preload(db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	order := model.ToDomain()
	r.checkIntegrity(order)
	return order, nil
}

func (r *GormOrderRepository) preload(db *gorm.DB) *gorm.DB {
	byCreated := func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC, id ASC") }
	return db.
		Preload("Items", byCreated).
		Preload("Transactions", byCreated).
		Preload("Fulfillments", byCreated).
		Preload("Fulfillments.Items").
		Preload("Refunds", byCreated).
		Preload("Refunds.Items").
		Preload("History", byCreated)
}

// checkIntegrity logs stored-state invariant violations. They are never returned.
func (r *GormOrderRepository) checkIntegrity(order *trade.Order) {
	violations := order.CheckIntegrity()
	if len(violations) == 0 {
		return
	}
	r.logger.Error("data integrity violation",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Strings("violations", violations),
	)
}

// FindAll lists orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("store_id = ?", filter.StoreID)
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.FulfillmentStatus != nil {
		query = query.Where("fulfillment_status = ?", *filter.FulfillmentStatus)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, OrderSortFields, "created_at"))
	if filter.Paged() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.OrderModel
	if err := query.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at ASC, id ASC")
	}).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

// Save creates a new order with all its children.
// A second order for the same cart or number fails with ErrAlreadyExists.
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(models.OrderModelFromDomain(order)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return saveOrderChildren(tx, order)
	})
}

// SaveWithLock updates an order if its version is unchanged and bumps the version.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.OrderModelFromDomain(order)
		model.Version = order.Version + 1
		model.UpdatedAt = time.Now()

		result := tx.Model(model).
			Where("version = ?", order.Version).
			Select(orderUpdateColumns).
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return lockFailure(tx, &models.OrderModel{}, order.ID, "order")
		}

		if err := saveOrderChildren(tx, order); err != nil {
			return err
		}
		order.Version = model.Version
		order.UpdatedAt = model.UpdatedAt
		return nil
	})
}

// saveOrderChildren writes the child rows of an order. Mutable children are
// upserted, append-only ones are inserted once, and removed lines are deleted.
func saveOrderChildren(tx *gorm.DB, order *trade.Order) error {
	c := models.OrderChildrenFromDomain(order)

	itemIDs := make([]uuid.UUID, len(c.Items))
	for i := range c.Items {
		itemIDs[i] = c.Items[i].ID
	}
	deleteRemoved := tx.Where("order_id = ?", order.ID)
	if len(itemIDs) > 0 {
		deleteRemoved = deleteRemoved.Where("id NOT IN ?", itemIDs)
	}
	if err := deleteRemoved.Delete(&models.OrderItemModel{}).Error; err != nil {
		return err
	}

	upsert := tx.Omit(clause.Associations).Clauses(clause.OnConflict{UpdateAll: true})
	insertOnce := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true})

	if len(c.Items) > 0 {
		if err := upsert.Create(&c.Items).Error; err != nil {
			return err
		}
	}
	if len(c.Fulfillments) > 0 {
		if err := upsert.Create(&c.Fulfillments).Error; err != nil {
			return err
		}
	}
	if len(c.FulfillmentItems) > 0 {
		if err := insertOnce.Create(&c.FulfillmentItems).Error; err != nil {
			return err
		}
	}
	if len(c.Transactions) > 0 {
		if err := insertOnce.Create(&c.Transactions).Error; err != nil {
			return err
		}
	}
	if len(c.Refunds) > 0 {
		if err := insertOnce.Create(&c.Refunds).Error; err != nil {
			return err
		}
	}
	if len(c.RefundItems) > 0 {
		if err := insertOnce.Create(&c.RefundItems).Error; err != nil {
			return err
		}
	}
	if len(c.History) > 0 {
		if err := insertOnce.Create(&c.History).Error; err != nil {
			return err
		}
	}
	return nil
}

// GenerateOrderNumber generates a unique order number for a store
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context, storeID uuid.UUID) (string, error) {
	return r.numbers.Next(ctx, r.db.WithContext(ctx), storeID, time.Now())
}

// lockFailure tells a lost optimistic lock apart from a missing row
func lockFailure(tx *gorm.DB, model interface{}, id uuid.UUID, what string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.NewDomainErrorf(shared.CodeConcurrencyConflict, "The %s has been modified by another process", what)
}

// Ensure GormOrderRepository implements trade.OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
