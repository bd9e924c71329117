package persistence

import (
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AllModels lists every table of the order core in dependency order
func AllModels() []interface{} {
	return []interface{}{
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.TransactionModel{},
		&models.FulfillmentModel{},
		&models.FulfillmentItemModel{},
		&models.RefundModel{},
		&models.RefundItemModel{},
		&models.StatusHistoryModel{},
		&models.OrderNumberSequenceModel{},
		&models.ReturnModel{},
		&models.ReturnItemModel{},
		&models.ClaimModel{},
		&models.ClaimItemModel{},
		&models.ExchangeModel{},
		&models.ExchangeItemModel{},
		&models.OrderEditModel{},
		&models.InventoryItemModel{},
		&models.StockMovementModel{},
		&models.OutboxEntryModel{},
	}
}

// uniqueIndexes span the store column of the embedded base model, which
// struct tags cannot express
var uniqueIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS uq_orders_store_order_number ON orders (store_id, order_number)",
	"CREATE UNIQUE INDEX IF NOT EXISTS uq_orders_store_cart ON orders (store_id, cart_id)",
}

// AutoMigrate creates or updates the tables of every model
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return err
	}
	for _, stmt := range uniqueIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
