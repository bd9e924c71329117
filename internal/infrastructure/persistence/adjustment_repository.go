package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// updateVersioned rewrites every mutable column of an aggregate row if the
// stored version still equals oldVersion. The model must carry oldVersion+1.
func updateVersioned(tx *gorm.DB, model interface{}, oldVersion int, id uuid.UUID, what string) error {
	result := tx.Model(model).
		Where("version = ?", oldVersion).
		Select("*").
		Omit("id", "store_id", "created_at", clause.Associations).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return lockFailure(tx, model, id, what)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// GormReturnRepository implements trade.ReturnRepository using GORM
type GormReturnRepository struct {
	db *gorm.DB
}

// NewGormReturnRepository creates a new GormReturnRepository
func NewGormReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// FindByID finds a return by ID within a store
func (r *GormReturnRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*trade.Return, error) {
	var model models.ReturnModel
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("store_id = ? AND id = ?", storeID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByOrder lists the returns of an order, oldest first
func (r *GormReturnRepository) FindByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]trade.Return, error) {
	var rows []models.ReturnModel
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("store_id = ? AND order_id = ?", storeID, orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	returns := make([]trade.Return, len(rows))
	for i := range rows {
		returns[i] = *rows[i].ToDomain()
	}
	return returns, nil
}

// Save creates a new return with its items
func (r *GormReturnRepository) Save(ctx context.Context, ret *trade.Return) error {
	model := &models.ReturnModel{}
	model.FromDomain(ret)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

// SaveWithLock updates a return under optimistic locking. Items are fixed at request time.
func (r *GormReturnRepository) SaveWithLock(ctx context.Context, ret *trade.Return) error {
	model := &models.ReturnModel{}
	model.FromDomain(ret)
	model.Version = ret.Version + 1
	model.UpdatedAt = time.Now()
	if err := updateVersioned(r.db.WithContext(ctx), model, ret.Version, ret.ID, "return"); err != nil {
		return err
	}
	ret.Version = model.Version
	ret.UpdatedAt = model.UpdatedAt
	return nil
}

// PendingQuantities sums, per order item, the units held by requested or received returns
func (r *GormReturnRepository) PendingQuantities(ctx context.Context, orderID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []struct {
		OrderItemID uuid.UUID
		Quantity    int
	}
	err := r.db.WithContext(ctx).
		Table("return_items").
		Select("return_items.order_item_id AS order_item_id, SUM(return_items.quantity) AS quantity").
		Joins("JOIN returns ON returns.id = return_items.return_id").
		Where("returns.order_id = ? AND returns.status IN ?", orderID,
			[]trade.ReturnStatus{trade.ReturnStatusRequested, trade.ReturnStatusReceived}).
		Group("return_items.order_item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	pending := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		pending[row.OrderItemID] = row.Quantity
	}
	return pending, nil
}

// GormClaimRepository implements trade.ClaimRepository using GORM
type GormClaimRepository struct {
	db *gorm.DB
}

// NewGormClaimRepository creates a new GormClaimRepository
func NewGormClaimRepository(db *gorm.DB) *GormClaimRepository {
	return &GormClaimRepository{db: db}
}

// FindByID finds a claim by ID within a store
func (r *GormClaimRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*trade.Claim, error) {
	var model models.ClaimModel
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("store_id = ? AND id = ?", storeID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByOrder lists the claims of an order, oldest first
func (r *GormClaimRepository) FindByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]trade.Claim, error) {
	var rows []models.ClaimModel
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("store_id = ? AND order_id = ?", storeID, orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	claims := make([]trade.Claim, len(rows))
	for i := range rows {
		claims[i] = *rows[i].ToDomain()
	}
	return claims, nil
}

// Save creates a new claim with its items
func (r *GormClaimRepository) Save(ctx context.Context, c *trade.Claim) error {
	model := &models.ClaimModel{}
	model.FromDomain(c)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

// SaveWithLock updates a claim under optimistic locking
func (r *GormClaimRepository) SaveWithLock(ctx context.Context, c *trade.Claim) error {
	model := &models.ClaimModel{}
	model.FromDomain(c)
	model.Version = c.Version + 1
	model.UpdatedAt = time.Now()
	if err := updateVersioned(r.db.WithContext(ctx), model, c.Version, c.ID, "claim"); err != nil {
		return err
	}
	c.Version = model.Version
	c.UpdatedAt = model.UpdatedAt
	return nil
}

// GormExchangeRepository implements trade.ExchangeRepository using GORM
type GormExchangeRepository struct {
	db *gorm.DB
}

// NewGormExchangeRepository creates a new GormExchangeRepository
func NewGormExchangeRepository(db *gorm.DB) *GormExchangeRepository {
	return &GormExchangeRepository{db: db}
}

// FindByID finds an exchange by ID within a store
func (r *GormExchangeRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*trade.Exchange, error) {
	var model models.ExchangeModel
	if err := r.db.WithContext(ctx).Preload("AdditionalItems").
		Where("store_id = ? AND id = ?", storeID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByOrder lists the exchanges of an order, oldest first
func (r *GormExchangeRepository) FindByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]trade.Exchange, error) {
	var rows []models.ExchangeModel
	if err := r.db.WithContext(ctx).Preload("AdditionalItems").
		Where("store_id = ? AND order_id = ?", storeID, orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	exchanges := make([]trade.Exchange, len(rows))
	for i := range rows {
		exchanges[i] = *rows[i].ToDomain()
	}
	return exchanges, nil
}

// Save creates a new exchange with its additional items
func (r *GormExchangeRepository) Save(ctx context.Context, e *trade.Exchange) error {
	model := &models.ExchangeModel{}
	model.FromDomain(e)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.AdditionalItems) == 0 {
			return nil
		}
		return tx.Create(&model.AdditionalItems).Error
	})
}

// SaveWithLock updates an exchange under optimistic locking.
// Additional items change as they are reserved and turned into order lines.
func (r *GormExchangeRepository) SaveWithLock(ctx context.Context, e *trade.Exchange) error {
	model := &models.ExchangeModel{}
	model.FromDomain(e)
	model.Version = e.Version + 1
	model.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateVersioned(tx, model, e.Version, e.ID, "exchange"); err != nil {
			return err
		}
		if len(model.AdditionalItems) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model.AdditionalItems).Error
	})
	if err != nil {
		return err
	}
	e.Version = model.Version
	e.UpdatedAt = model.UpdatedAt
	return nil
}

// GormOrderEditRepository implements trade.OrderEditRepository using GORM
type GormOrderEditRepository struct {
	db *gorm.DB
}

// NewGormOrderEditRepository creates a new GormOrderEditRepository
func NewGormOrderEditRepository(db *gorm.DB) *GormOrderEditRepository {
	return &GormOrderEditRepository{db: db}
}

// FindByID finds an order edit by ID within a store
func (r *GormOrderEditRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*trade.OrderEdit, error) {
	var model models.OrderEditModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain()
}

// FindByOrder lists the edits of an order, oldest first
func (r *GormOrderEditRepository) FindByOrder(ctx context.Context, storeID, orderID uuid.UUID) ([]trade.OrderEdit, error) {
	var rows []models.OrderEditModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND order_id = ?", storeID, orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	edits := make([]trade.OrderEdit, 0, len(rows))
	for i := range rows {
		edit, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		edits = append(edits, *edit)
	}
	return edits, nil
}

// Save creates a new order edit
func (r *GormOrderEditRepository) Save(ctx context.Context, e *trade.OrderEdit) error {
	model := &models.OrderEditModel{}
	model.FromDomain(e)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveWithLock updates an order edit under optimistic locking
func (r *GormOrderEditRepository) SaveWithLock(ctx context.Context, e *trade.OrderEdit) error {
	model := &models.OrderEditModel{}
	model.FromDomain(e)
	model.Version = e.Version + 1
	model.UpdatedAt = time.Now()
	if err := updateVersioned(r.db.WithContext(ctx), model, e.Version, e.ID, "order edit"); err != nil {
		return err
	}
	e.Version = model.Version
	e.UpdatedAt = model.UpdatedAt
	return nil
}

// Ensure the adjustment repositories implement their domain interfaces
var (
	_ trade.ReturnRepository    = (*GormReturnRepository)(nil)
	_ trade.ClaimRepository     = (*GormClaimRepository)(nil)
	_ trade.ExchangeRepository  = (*GormExchangeRepository)(nil)
	_ trade.OrderEditRepository = (*GormOrderEditRepository)(nil)
)
