package billing

import (
	"context"

	"github.com/rentdesk/backend/internal/domain/billing"
)

// TransactionScope runs a unit of work against billing repositories that share
// one database transaction. The bill and its line items are written inside it.
type TransactionScope interface {
	// Execute runs fn within a transaction. An error from fn rolls the transaction back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to the current transaction
type TransactionalRepositories interface {
	BillRepo() billing.BillRepository
	TenancyRepo() billing.TenancyRepository
}

// NoOpTransactionScope runs the function directly against the given repositories.
// Useful for tests where atomicity is not under test.
type NoOpTransactionScope struct {
	billRepo    billing.BillRepository
	tenancyRepo billing.TenancyRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(billRepo billing.BillRepository, tenancyRepo billing.TenancyRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{billRepo: billRepo, tenancyRepo: tenancyRepo}
}

// Execute calls fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// BillRepo returns the bill repository
func (s *NoOpTransactionScope) BillRepo() billing.BillRepository {
	return s.billRepo
}

// TenancyRepo returns the tenancy repository
func (s *NoOpTransactionScope) TenancyRepo() billing.TenancyRepository {
	return s.tenancyRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
