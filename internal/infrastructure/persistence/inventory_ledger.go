package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryLedger implements inventory.Ledger on top of inventory_items
// and stock_movements.
//
// Postings first try a single conditional UPDATE that applies the change only
// if the stock rule holds. When no row matches, the level is locked and the
// domain rule is replayed: it either yields the precise error or a movement
// the UPDATE could not express (a clamped release, a first posting on a new
// level). Each posting runs in its own savepoint, so a failed posting leaves
// the caller's transaction usable.
type GormInventoryLedger struct {
	db *gorm.DB
}

// NewGormInventoryLedger creates a new GormInventoryLedger
func NewGormInventoryLedger(db *gorm.DB) *GormInventoryLedger {
	return &GormInventoryLedger{db: db}
}

// posting describes one ledger change
type posting struct {
	variantID  uuid.UUID
	locationID uuid.UUID
	kind       inventory.MovementType
	delta      int
	reason     string
	ref        inventory.Reference
	// condition and set drive the atomic UPDATE; empty condition skips it
	condition string
	condArgs  []interface{}
	set       map[string]interface{}
	// apply replays the change on a locked level
	apply func(item *inventory.InventoryItem) (*inventory.StockMovement, error)
}

// Reserve holds qty units for a document
func (l *GormInventoryLedger) Reserve(ctx context.Context, variantID, locationID uuid.UUID, qty int, ref inventory.Reference) (*inventory.StockMovement, error) {
	p := posting{
		variantID: variantID, locationID: locationID,
		kind: inventory.MovementTypeReservation, delta: qty, ref: ref,
		apply: func(item *inventory.InventoryItem) (*inventory.StockMovement, error) {
			return item.Reserve(qty, ref)
		},
	}
	if qty > 0 {
		p.condition = "(allow_backorder OR quantity - reserved_quantity >= ?)"
		p.condArgs = []interface{}{qty}
		p.set = map[string]interface{}{"reserved_quantity": gorm.Expr("reserved_quantity + ?", qty)}
	}
	return l.post(ctx, p)
}

// Release returns up to qty reserved units
func (l *GormInventoryLedger) Release(ctx context.Context, variantID, locationID uuid.UUID, qty int, ref inventory.Reference) (*inventory.StockMovement, error) {
	p := posting{
		variantID: variantID, locationID: locationID,
		kind: inventory.MovementTypeRelease, delta: -qty, ref: ref,
		apply: func(item *inventory.InventoryItem) (*inventory.StockMovement, error) {
			return item.Release(qty, ref)
		},
	}
	if qty > 0 {
		p.condition = "reserved_quantity >= ?"
		p.condArgs = []interface{}{qty}
		p.set = map[string]interface{}{"reserved_quantity": gorm.Expr("reserved_quantity - ?", qty)}
	}
	return l.post(ctx, p)
}

// Consume removes reserved units from stock
func (l *GormInventoryLedger) Consume(ctx context.Context, variantID, locationID uuid.UUID, qty int, ref inventory.Reference) (*inventory.StockMovement, error) {
	p := posting{
		variantID: variantID, locationID: locationID,
		kind: inventory.MovementTypeConsumption, delta: -qty, ref: ref,
		apply: func(item *inventory.InventoryItem) (*inventory.StockMovement, error) {
			return item.Consume(qty, ref)
		},
	}
	if qty > 0 {
		p.condition = "reserved_quantity >= ?"
		p.condArgs = []interface{}{qty}
		p.set = map[string]interface{}{
			"reserved_quantity": gorm.Expr("reserved_quantity - ?", qty),
			"quantity":          gorm.Expr("quantity - ?", qty),
		}
	}
	return l.post(ctx, p)
}

// Adjust applies a signed correction to on-hand stock
func (l *GormInventoryLedger) Adjust(ctx context.Context, variantID, locationID uuid.UUID, delta int, reason string, ref inventory.Reference) (*inventory.StockMovement, error) {
	p := posting{
		variantID: variantID, locationID: locationID,
		kind: inventory.MovementTypeAdjustment, delta: delta, reason: reason, ref: ref,
		apply: func(item *inventory.InventoryItem) (*inventory.StockMovement, error) {
			return item.Adjust(delta, reason, ref)
		},
	}
	if delta != 0 {
		p.condition = "quantity + ? >= 0 AND (allow_backorder OR quantity + ? >= reserved_quantity)"
		p.condArgs = []interface{}{delta, delta}
		p.set = map[string]interface{}{"quantity": gorm.Expr("quantity + ?", delta)}
	}
	return l.post(ctx, p)
}

// Transfer moves on-hand units between two locations. Both levels are locked
// in location order so opposite transfers cannot deadlock.
func (l *GormInventoryLedger) Transfer(ctx context.Context, variantID, fromLocationID, toLocationID uuid.UUID, qty int, reason string) ([]*inventory.StockMovement, error) {
	var movements []*inventory.StockMovement
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		first, second := fromLocationID, toLocationID
		if strings.Compare(first.String(), second.String()) > 0 {
			first, second = second, first
		}
		locked := make(map[uuid.UUID]*inventory.InventoryItem, 2)
		for _, locationID := range []uuid.UUID{first, second} {
			if _, ok := locked[locationID]; ok {
				continue
			}
			item, err := lockInventoryItem(tx, variantID, locationID)
			if err != nil {
				return err
			}
			locked[locationID] = item
		}

		from, to := locked[fromLocationID], locked[toLocationID]
		out, in, err := inventory.Transfer(from, to, qty, reason)
		if err != nil {
			return err
		}
		if err := saveInventoryItem(tx, from); err != nil {
			return err
		}
		if err := saveInventoryItem(tx, to); err != nil {
			return err
		}
		movements = []*inventory.StockMovement{out, in}
		return createMovements(tx, movements...)
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

func (l *GormInventoryLedger) post(ctx context.Context, p posting) (*inventory.StockMovement, error) {
	var movement *inventory.StockMovement
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := postAtomic(tx, p)
		if err != nil {
			return err
		}
		if m == nil {
			if m, err = postLocked(tx, p); err != nil {
				return err
			}
		}
		movement = m
		return createMovements(tx, m)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// postAtomic applies the posting with one conditional UPDATE. It returns a nil
// movement when the condition did not hold or the level does not exist.
func postAtomic(tx *gorm.DB, p posting) (*inventory.StockMovement, error) {
	if p.condition == "" {
		return nil, nil
	}
	set := make(map[string]interface{}, len(p.set)+2)
	for k, v := range p.set {
		set[k] = v
	}
	set["version"] = gorm.Expr("version + 1")
	set["updated_at"] = time.Now()

	result := tx.Model(&models.InventoryItemModel{}).
		Where("variant_id = ? AND location_id = ?", p.variantID, p.locationID).
		Where(p.condition, p.condArgs...).
		Updates(set)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	item, err := findInventoryItem(tx, p.variantID, p.locationID)
	if err != nil {
		return nil, err
	}
	return inventory.PostedMovement(item, p.kind, p.delta, p.reason, p.ref), nil
}

// postLocked replays the posting through the domain rule on a locked level
func postLocked(tx *gorm.DB, p posting) (*inventory.StockMovement, error) {
	item, err := lockInventoryItem(tx, p.variantID, p.locationID)
	if err != nil {
		return nil, err
	}
	m, err := p.apply(item)
	if err != nil {
		return nil, err
	}
	if err := saveInventoryItem(tx, item); err != nil {
		return nil, err
	}
	return m, nil
}

// lockInventoryItem loads the level row with a row lock, creating an empty
// level on first use. SQLite ignores FOR UPDATE and serializes writers instead.
func lockInventoryItem(tx *gorm.DB, variantID, locationID uuid.UUID) (*inventory.InventoryItem, error) {
	if err := ensureInventoryItem(tx, variantID, locationID); err != nil {
		return nil, err
	}
	var model models.InventoryItemModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("variant_id = ? AND location_id = ?", variantID, locationID).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Ensure GormInventoryLedger implements inventory.Ledger
var _ inventory.Ledger = (*GormInventoryLedger)(nil)
