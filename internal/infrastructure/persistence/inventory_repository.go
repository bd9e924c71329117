package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryItemRepository implements inventory.InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// FindByVariantAndLocation finds the stock of a variant at a location
func (r *GormInventoryItemRepository) FindByVariantAndLocation(ctx context.Context, variantID, locationID uuid.UUID) (*inventory.InventoryItem, error) {
	return findInventoryItem(r.db.WithContext(ctx), variantID, locationID)
}

// FindByVariant finds the stock of a variant across all locations
func (r *GormInventoryItemRepository) FindByVariant(ctx context.Context, variantID uuid.UUID) ([]inventory.InventoryItem, error) {
	var rows []models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Order("location_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]inventory.InventoryItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// GetOrCreate gets the existing inventory item or creates an empty one
func (r *GormInventoryItemRepository) GetOrCreate(ctx context.Context, variantID, locationID uuid.UUID) (*inventory.InventoryItem, error) {
	db := r.db.WithContext(ctx)
	if err := ensureInventoryItem(db, variantID, locationID); err != nil {
		return nil, err
	}
	return findInventoryItem(db, variantID, locationID)
}

// Save creates or updates an inventory item.
// Updates require the stored version to be one behind the item's.
func (r *GormInventoryItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	db := r.db.WithContext(ctx)
	err := saveInventoryItem(db, item)
	if errors.Is(err, shared.ErrNotFound) {
		return db.Create(models.InventoryItemModelFromDomain(item)).Error
	}
	return err
}

// ensureInventoryItem inserts an empty row for the pair unless one exists.
// ON CONFLICT keeps concurrent first reservations from racing on the unique index.
func ensureInventoryItem(db *gorm.DB, variantID, locationID uuid.UUID) error {
	item, err := inventory.NewInventoryItem(variantID, locationID)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "variant_id"}, {Name: "location_id"}},
		DoNothing: true,
	}).Create(models.InventoryItemModelFromDomain(item)).Error
}

func findInventoryItem(db *gorm.DB, variantID, locationID uuid.UUID) (*inventory.InventoryItem, error) {
	var model models.InventoryItemModel
	if err := db.Where("variant_id = ? AND location_id = ?", variantID, locationID).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// saveInventoryItem writes an item whose version was bumped once by the domain
func saveInventoryItem(db *gorm.DB, item *inventory.InventoryItem) error {
	result := db.Model(&models.InventoryItemModel{}).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Updates(map[string]interface{}{
			"quantity":          item.Quantity,
			"reserved_quantity": item.ReservedQuantity,
			"allow_backorder":   item.AllowBackorder,
			"version":           item.Version,
			"updated_at":        item.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return lockFailure(db, &models.InventoryItemModel{}, item.ID, "inventory item")
	}
	return nil
}

// GormStockMovementRepository implements inventory.StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends movements to the log
func (r *GormStockMovementRepository) Create(ctx context.Context, movements ...*inventory.StockMovement) error {
	return createMovements(r.db.WithContext(ctx), movements...)
}

func createMovements(db *gorm.DB, movements ...*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]models.StockMovementModel, len(movements))
	for i, m := range movements {
		rows[i].FromDomain(m)
	}
	return db.Create(&rows).Error
}

// FindAll lists movements matching the filter, newest first by default
func (r *GormStockMovementRepository) FindAll(ctx context.Context, filter inventory.MovementFilter) ([]inventory.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockMovementModel{})
	if filter.VariantID != nil {
		query = query.Where("variant_id = ?", *filter.VariantID)
	}
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.ReferenceType != "" {
		query = query.Where("reference_type = ?", filter.ReferenceType)
	}
	if filter.ReferenceID != nil {
		query = query.Where("reference_id = ?", *filter.ReferenceID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, MovementSortFields, "created_at"))
	if filter.Paged() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.StockMovementModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toMovements(rows), total, nil
}

// FindByReference lists movements posted for one business document, in posting order
func (r *GormStockMovementRepository) FindByReference(ctx context.Context, refType string, refID uuid.UUID) ([]inventory.StockMovement, error) {
	var rows []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toMovements(rows), nil
}

func toMovements(rows []models.StockMovementModel) []inventory.StockMovement {
	movements := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		movements[i] = rows[i].ToDomain()
	}
	return movements
}

// Ensure the inventory repositories implement their domain interfaces
var (
	_ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
	_ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
)
