// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and AggregateModel
//   - catalog.go: categories and products
//   - partner.go: customers
//   - trade.go: orders, order lines and the daily order number sequence
//   - identity.go: users, verification codes and link tokens
//   - activity.go: activity log and notifications
package models
