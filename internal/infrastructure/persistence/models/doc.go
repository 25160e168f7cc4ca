// Package models contains GORM persistence models that map to database tables.
// Domain types carry no ORM tags; models convert to and from them.
//
//   - base.go: shared id, timestamp and version columns
//   - property.go: parties, properties and tenancies (read by billing)
//   - bill.go: bills and bill line items
package models
