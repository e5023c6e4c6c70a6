// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; each model converts to and from its
// domain type with ToDomain and a FromDomain constructor.
//
// Files:
//   - base.go: shared id, timestamp and version columns
//   - catalog.go: products and reviews
//   - identity.go: users
//   - cart.go: carts and cart lines
//   - order.go: orders and order lines
package models
