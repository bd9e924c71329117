// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities carry no GORM tags beyond the shared aggregate base
// 2. Persistence models contain all GORM annotations and table mappings
// 3. ToDomain / FromDomain convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: base persistence models (BaseModel, AggregateModel, StoreAggregateModel)
// - order.go: the order aggregate with items, transactions, fulfillments, refunds and history
// - adjustment.go: returns, claims, exchanges and order edits
// - inventory.go: stock levels and the movement log
// - outbox.go: outbox pattern model for event delivery
package models
