package trade

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/inventory"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/trade"
	"github.com/stretchr/testify/mock"
)

// memState is everything a memStore persists. A transaction works on a copy
// and swaps it in on commit.
type memState struct {
	orders    map[uuid.UUID]*trade.Order
	returns   map[uuid.UUID]*trade.Return
	claims    map[uuid.UUID]*trade.Claim
	exchanges map[uuid.UUID]*trade.Exchange
	edits     map[uuid.UUID]*trade.OrderEdit
	stock     map[stockKey]*inventory.InventoryItem
	movements []inventory.StockMovement
	events    []shared.DomainEvent
	orderSeq  int
}

type stockKey struct {
	variantID  uuid.UUID
	locationID uuid.UUID
}

func (s *memState) clone() *memState {
	c := &memState{
		orders:    make(map[uuid.UUID]*trade.Order, len(s.orders)),
		returns:   make(map[uuid.UUID]*trade.Return, len(s.returns)),
		claims:    make(map[uuid.UUID]*trade.Claim, len(s.claims)),
		exchanges: make(map[uuid.UUID]*trade.Exchange, len(s.exchanges)),
		edits:     make(map[uuid.UUID]*trade.OrderEdit, len(s.edits)),
		stock:     make(map[stockKey]*inventory.InventoryItem, len(s.stock)),
		movements: append([]inventory.StockMovement(nil), s.movements...),
		events:    append([]shared.DomainEvent(nil), s.events...),
		orderSeq:  s.orderSeq,
	}
	for k, v := range s.orders {
		c.orders[k] = v.Clone()
	}
	for k, v := range s.returns {
		c.returns[k] = cloneReturn(v)
	}
	for k, v := range s.claims {
		c.claims[k] = cloneClaim(v)
	}
	for k, v := range s.exchanges {
		c.exchanges[k] = cloneExchange(v)
	}
	for k, v := range s.edits {
		c.edits[k] = cloneEdit(v)
	}
	for k, v := range s.stock {
		item := *v
		c.stock[k] = &item
	}
	return c
}

func cloneReturn(r *trade.Return) *trade.Return {
	c := *r
	c.Items = append([]trade.ReturnItem(nil), r.Items...)
	c.ClearDomainEvents()
	return &c
}

func cloneClaim(cl *trade.Claim) *trade.Claim {
	c := *cl
	c.Items = append([]trade.ClaimItem(nil), cl.Items...)
	c.ClearDomainEvents()
	return &c
}

func cloneExchange(e *trade.Exchange) *trade.Exchange {
	c := *e
	c.AdditionalItems = append([]trade.ExchangeItem(nil), e.AdditionalItems...)
	c.ClearDomainEvents()
	return &c
}

func cloneEdit(e *trade.OrderEdit) *trade.OrderEdit {
	c := *e
	c.Changes = append([]trade.EditChange(nil), e.Changes...)
	c.ClearDomainEvents()
	return &c
}

// memStore is a transactional in-memory backend for the orchestrators.
// Transactions are serialized; a failing fn leaves the committed state untouched.
type memStore struct {
	mu    sync.Mutex
	state *memState
}

func newMemStore() *memStore {
	return &memStore{state: (&memState{}).clone()}
}

func (m *memStore) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.state.clone()
	if err := fn(&memTx{ctx: ctx, st: work}); err != nil {
		return err
	}
	m.state = work
	return nil
}

// setStock puts qty units of a variant on hand at a location
func (m *memStore) setStock(variantID, locationID uuid.UUID, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, err := inventory.NewInventoryItem(variantID, locationID)
	if err != nil {
		panic(err)
	}
	item.Quantity = qty
	m.state.stock[stockKey{variantID, locationID}] = item
}

// stockOf returns a copy of the committed stock row
func (m *memStore) stockOf(variantID, locationID uuid.UUID) *inventory.InventoryItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.state.stock[stockKey{variantID, locationID}]; ok {
		c := *item
		return &c
	}
	return &inventory.InventoryItem{VariantID: variantID, LocationID: locationID}
}

func (m *memStore) order(id uuid.UUID) *trade.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.state.orders[id]; ok {
		return o.Clone()
	}
	return nil
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.orders)
}

func (m *memStore) movements() []inventory.StockMovement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]inventory.StockMovement(nil), m.state.movements...)
}

func (m *memStore) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.state.events))
	for i, e := range m.state.events {
		types[i] = e.EventType()
	}
	return types
}

type memTx struct {
	ctx context.Context
	st  *memState
}

func (t *memTx) OrderRepo() trade.OrderRepository         { return memOrders{t.st} }
func (t *memTx) ReturnRepo() trade.ReturnRepository       { return memReturns{t.st} }
func (t *memTx) ClaimRepo() trade.ClaimRepository         { return memClaims{t.st} }
func (t *memTx) ExchangeRepo() trade.ExchangeRepository   { return memExchanges{t.st} }
func (t *memTx) OrderEditRepo() trade.OrderEditRepository { return memEdits{t.st} }
func (t *memTx) Ledger() inventory.Ledger                 { return memLedger{t.st} }
func (t *memTx) Events() EventRecorder                    { return memRecorder{t.st} }

type memRecorder struct{ st *memState }

func (r memRecorder) Record(_ context.Context, events ...shared.DomainEvent) error {
	r.st.events = append(r.st.events, events...)
	return nil
}

type memOrders struct{ st *memState }

func (r memOrders) FindByID(_ context.Context, storeID, id uuid.UUID) (*trade.Order, error) {
	o, ok := r.st.orders[id]
	if !ok || !o.BelongsTo(storeID) {
		return nil, shared.ErrNotFound
	}
	return o.Clone(), nil
}

func (r memOrders) FindByIDForUpdate(ctx context.Context, storeID, id uuid.UUID) (*trade.Order, error) {
	return r.FindByID(ctx, storeID, id)
}

func (r memOrders) FindByOrderNumber(_ context.Context, storeID uuid.UUID, number string) (*trade.Order, error) {
	for _, o := range r.st.orders {
		if o.StoreID == storeID && o.OrderNumber == number {
			return o.Clone(), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memOrders) FindByCartID(_ context.Context, storeID, cartID uuid.UUID) (*trade.Order, error) {
	for _, o := range r.st.orders {
		if o.StoreID == storeID && o.CartID != nil && *o.CartID == cartID {
			return o.Clone(), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memOrders) FindAll(_ context.Context, filter trade.OrderFilter) ([]trade.Order, int64, error) {
	var out []trade.Order
	for _, o := range r.st.orders {
		if o.StoreID != filter.StoreID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		out = append(out, *o.Clone())
	}
	return out, int64(len(out)), nil
}

func (r memOrders) Save(_ context.Context, o *trade.Order) error {
	if _, ok := r.st.orders[o.ID]; ok {
		return shared.ErrAlreadyExists
	}
	if o.CartID != nil {
		for _, existing := range r.st.orders {
			if existing.CartID != nil && *existing.CartID == *o.CartID {
				return shared.ErrAlreadyExists
			}
		}
	}
	r.st.orders[o.ID] = o.Clone()
	return nil
}

func (r memOrders) SaveWithLock(_ context.Context, o *trade.Order) error {
	stored, ok := r.st.orders[o.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != o.Version {
		return shared.ErrConcurrencyConflict
	}
	o.IncrementVersion()
	r.st.orders[o.ID] = o.Clone()
	return nil
}

func (r memOrders) GenerateOrderNumber(_ context.Context, _ uuid.UUID) (string, error) {
	r.st.orderSeq++
	return fmt.Sprintf("ORD-20260101-%05d", r.st.orderSeq), nil
}

type memReturns struct{ st *memState }

func (r memReturns) FindByID(_ context.Context, storeID, id uuid.UUID) (*trade.Return, error) {
	ret, ok := r.st.returns[id]
	if !ok || !ret.BelongsTo(storeID) {
		return nil, shared.ErrNotFound
	}
	return cloneReturn(ret), nil
}

func (r memReturns) FindByOrder(_ context.Context, storeID, orderID uuid.UUID) ([]trade.Return, error) {
	var out []trade.Return
	for _, ret := range r.st.returns {
		if ret.StoreID == storeID && ret.OrderID == orderID {
			out = append(out, *cloneReturn(ret))
		}
	}
	return out, nil
}

func (r memReturns) Save(_ context.Context, ret *trade.Return) error {
	r.st.returns[ret.ID] = cloneReturn(ret)
	return nil
}

func (r memReturns) SaveWithLock(_ context.Context, ret *trade.Return) error {
	stored, ok := r.st.returns[ret.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != ret.Version {
		return shared.ErrConcurrencyConflict
	}
	ret.IncrementVersion()
	r.st.returns[ret.ID] = cloneReturn(ret)
	return nil
}

func (r memReturns) PendingQuantities(_ context.Context, orderID uuid.UUID) (map[uuid.UUID]int, error) {
	pending := make(map[uuid.UUID]int)
	for _, ret := range r.st.returns {
		if ret.OrderID != orderID || !ret.Status.IsOpen() {
			continue
		}
		for id, qty := range ret.Quantities() {
			pending[id] += qty
		}
	}
	return pending, nil
}

type memClaims struct{ st *memState }

func (r memClaims) FindByID(_ context.Context, storeID, id uuid.UUID) (*trade.Claim, error) {
	c, ok := r.st.claims[id]
	if !ok || !c.BelongsTo(storeID) {
		return nil, shared.ErrNotFound
	}
	return cloneClaim(c), nil
}

func (r memClaims) FindByOrder(_ context.Context, storeID, orderID uuid.UUID) ([]trade.Claim, error) {
	var out []trade.Claim
	for _, c := range r.st.claims {
		if c.StoreID == storeID && c.OrderID == orderID {
			out = append(out, *cloneClaim(c))
		}
	}
	return out, nil
}

func (r memClaims) Save(_ context.Context, c *trade.Claim) error {
	r.st.claims[c.ID] = cloneClaim(c)
	return nil
}

func (r memClaims) SaveWithLock(_ context.Context, c *trade.Claim) error {
	stored, ok := r.st.claims[c.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != c.Version {
		return shared.ErrConcurrencyConflict
	}
	c.IncrementVersion()
	r.st.claims[c.ID] = cloneClaim(c)
	return nil
}

type memExchanges struct{ st *memState }

func (r memExchanges) FindByID(_ context.Context, storeID, id uuid.UUID) (*trade.Exchange, error) {
	e, ok := r.st.exchanges[id]
	if !ok || !e.BelongsTo(storeID) {
		return nil, shared.ErrNotFound
	}
	return cloneExchange(e), nil
}

func (r memExchanges) FindByOrder(_ context.Context, storeID, orderID uuid.UUID) ([]trade.Exchange, error) {
	var out []trade.Exchange
	for _, e := range r.st.exchanges {
		if e.StoreID == storeID && e.OrderID == orderID {
			out = append(out, *cloneExchange(e))
		}
	}
	return out, nil
}

func (r memExchanges) Save(_ context.Context, e *trade.Exchange) error {
	r.st.exchanges[e.ID] = cloneExchange(e)
	return nil
}

func (r memExchanges) SaveWithLock(_ context.Context, e *trade.Exchange) error {
	stored, ok := r.st.exchanges[e.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != e.Version {
		return shared.ErrConcurrencyConflict
	}
	e.IncrementVersion()
	r.st.exchanges[e.ID] = cloneExchange(e)
	return nil
}

type memEdits struct{ st *memState }

func (r memEdits) FindByID(_ context.Context, storeID, id uuid.UUID) (*trade.OrderEdit, error) {
	e, ok := r.st.edits[id]
	if !ok || !e.BelongsTo(storeID) {
		return nil, shared.ErrNotFound
	}
	return cloneEdit(e), nil
}

func (r memEdits) FindByOrder(_ context.Context, storeID, orderID uuid.UUID) ([]trade.OrderEdit, error) {
	var out []trade.OrderEdit
	for _, e := range r.st.edits {
		if e.StoreID == storeID && e.OrderID == orderID {
			out = append(out, *cloneEdit(e))
		}
	}
	return out, nil
}

func (r memEdits) Save(_ context.Context, e *trade.OrderEdit) error {
	r.st.edits[e.ID] = cloneEdit(e)
	return nil
}

func (r memEdits) SaveWithLock(_ context.Context, e *trade.OrderEdit) error {
	stored, ok := r.st.edits[e.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != e.Version {
		return shared.ErrConcurrencyConflict
	}
	e.IncrementVersion()
	r.st.edits[e.ID] = cloneEdit(e)
	return nil
}

// memLedger posts movements against the transaction's copy of the stock
type memLedger struct{ st *memState }

func (l memLedger) item(variantID, locationID uuid.UUID) *inventory.InventoryItem {
	key := stockKey{variantID, locationID}
	if item, ok := l.st.stock[key]; ok {
		return item
	}
	item, err := inventory.NewInventoryItem(variantID, locationID)
	if err != nil {
		panic(err)
	}
	l.st.stock[key] = item
	return item
}

func (l memLedger) post(m *inventory.StockMovement, err error) (*inventory.StockMovement, error) {
	if err != nil {
		return nil, err
	}
	l.st.movements = append(l.st.movements, *m)
	return m, nil
}

func (l memLedger) Reserve(_ context.Context, variantID, locationID uuid.UUID, qty int, ref inventory.Reference) (*inventory.StockMovement, error) {
	return l.post(l.item(variantID, locationID).Reserve(qty, ref))
}

func (l memLedger) Release(_ context.Context, variantID, locationID uuid.UUID, qty int, ref inventory.Reference) (*inventory.StockMovement, error) {
	return l.post(l.item(variantID, locationID).Release(qty, ref))
}

func (l memLedger) Consume(_ context.Context, variantID, locationID uuid.UUID, qty int, ref inventory.Reference) (*inventory.StockMovement, error) {
	return l.post(l.item(variantID, locationID).Consume(qty, ref))
}

func (l memLedger) Adjust(_ context.Context, variantID, locationID uuid.UUID, delta int, reason string, ref inventory.Reference) (*inventory.StockMovement, error) {
	return l.post(l.item(variantID, locationID).Adjust(delta, reason, ref))
}

func (l memLedger) Transfer(_ context.Context, variantID, fromID, toID uuid.UUID, qty int, reason string) ([]*inventory.StockMovement, error) {
	out, in, err := inventory.Transfer(l.item(variantID, fromID), l.item(variantID, toID), qty, reason)
	if err != nil {
		return nil, err
	}
	l.st.movements = append(l.st.movements, *out, *in)
	return []*inventory.StockMovement{out, in}, nil
}

// MockPaymentProvider is a mock implementation of trade.PaymentProvider
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreatePayment(ctx context.Context, req trade.PaymentRequest) (*trade.PaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PaymentResult), args.Error(1)
}

func (m *MockPaymentProvider) Capture(ctx context.Context, req trade.PaymentRequest) (*trade.PaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PaymentResult), args.Error(1)
}

func (m *MockPaymentProvider) Refund(ctx context.Context, req trade.PaymentRequest) (*trade.PaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.PaymentResult), args.Error(1)
}

var (
	_ TransactionScope       = (*memStore)(nil)
	_ trade.PaymentProvider  = (*MockPaymentProvider)(nil)
	_ inventory.Ledger       = memLedger{}
	_ trade.OrderRepository  = memOrders{}
	_ trade.ReturnRepository = memReturns{}
)
