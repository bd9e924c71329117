package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/persistence/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultOrderNumberPrefix is used when no prefix is configured
const DefaultOrderNumberPrefix = "ORD"

// sequenceTTL outlives the day a counter belongs to
const sequenceTTL = 48 * time.Hour

// OrderNumberGenerator issues PREFIX-YYYYMMDD-NNNNN numbers from a per-store
// daily counter. The counter lives in Redis when a client is given and in the
// order_number_sequences table otherwise.
type OrderNumberGenerator struct {
	prefix string
	redis  *redis.Client
}

// NewOrderNumberGenerator creates a generator. client may be nil.
func NewOrderNumberGenerator(prefix string, client *redis.Client) *OrderNumberGenerator {
	if prefix == "" {
		prefix = DefaultOrderNumberPrefix
	}
	return &OrderNumberGenerator{prefix: prefix, redis: client}
}

// Next returns the next order number for a store on the day of now
func (g *OrderNumberGenerator) Next(ctx context.Context, db *gorm.DB, storeID uuid.UUID, now time.Time) (string, error) {
	day := now.UTC().Format("20060102")

	var (
		seq int64
		err error
	)
	if g.redis != nil {
		seq, err = g.nextFromRedis(ctx, storeID, day)
	} else {
		seq, err = nextFromTable(db, storeID, day)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}
	return fmt.Sprintf("%s-%s-%05d", g.prefix, day, seq), nil
}

func (g *OrderNumberGenerator) nextFromRedis(ctx context.Context, storeID uuid.UUID, day string) (int64, error) {
	key := fmt.Sprintf("order:number:%s:%s", storeID, day)
	pipe := g.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, sequenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// nextFromTable bumps the counter row with an upsert. The row stays locked
// until the surrounding transaction ends, so numbers are never handed out twice.
func nextFromTable(db *gorm.DB, storeID uuid.UUID, day string) (int64, error) {
	var seq int64
	err := db.Transaction(func(tx *gorm.DB) error {
		row := models.OrderNumberSequenceModel{StoreID: storeID, Day: day, Value: 1}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "store_id"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value": gorm.Expr("order_number_sequences.value + 1"),
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		var current models.OrderNumberSequenceModel
		if err := tx.Where("store_id = ? AND day = ?", storeID, day).First(&current).Error; err != nil {
			return err
		}
		seq = current.Value
		return nil
	})
	return seq, err
}
