package session

import (
	"context"

	"github.com/andreasstove999/pos-terminal/internal/backend"
	"github.com/andreasstove999/pos-terminal/internal/journal"
	"github.com/andreasstove999/pos-terminal/internal/store"
)

// Interfaces for everything the session talks to, declared here on the
// consumer side so tests can swap in fakes.

type Catalog interface {
	SearchProducts(ctx context.Context, query, warehouseID string) ([]backend.ProductMatch, error)
}

type Submitter interface {
	SubmitSale(ctx context.Context, req backend.SaleRequest) (backend.SaleResult, error)
}

type CustomerDirectory interface {
	GetCustomer(ctx context.Context, customerID string) (backend.Customer, error)
	CreateQuickCustomer(ctx context.Context, req backend.QuickCustomerRequest) (backend.Customer, error)
}

type Store interface {
	SetPreference(ctx context.Context, key, value string) error
	Preference(ctx context.Context, key string) (string, error)
	DeletePreference(ctx context.Context, key string) error
	AppendHeldSale(ctx context.Context, hs store.HeldSale) error
	HeldSales(ctx context.Context) ([]store.HeldSale, error)
}

type Journal interface {
	PublishSaleCompleted(ctx context.Context, ev journal.SaleCompleted) error
	PublishSaleHeld(ctx context.Context, ev journal.SaleHeld) error
}

type Scanner interface {
	Scan(ctx context.Context) (string, error)
}
