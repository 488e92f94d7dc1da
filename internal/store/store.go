// Package store is the till-local durable storage: operator preferences and
// the held-sales list. It replaces nothing server-side; it only has to
// survive a till restart, so a single SQLite file is enough.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/pos-terminal/internal/cart"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Preference keys. They mirror the knobs the operator last used so the till
// comes back up the way it was left.
const (
	PrefWarehouse     = "pos_warehouse_id"
	PrefCustomer      = "pos_last_customer"
	PrefPaymentMethod = "pos_payment_method"
)

// HeldSale is a suspended transaction: the cart plus the scalars needed to
// resume it later. Within this terminal the list is append-only; resuming is
// a backend concern that has no contract yet.
type HeldSale struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	Items           []cart.LineItem `json:"items"`
	HeldAt          time.Time       `json:"held_at"`
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store file and brings the schema up to date.
func Open(path string, logger *log.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	if err := runMigrations(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB, logger *log.Logger) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	if dirty {
		logger.Printf("store migrations: at version %d (dirty)", version)
	} else {
		logger.Printf("store migrations: at version %d", version)
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetPreference upserts a preference value.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

// Preference returns the stored value, or "" when the key was never set.
func (s *Store) Preference(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, nil
}

// DeletePreference removes a key; missing keys are fine.
func (s *Store) DeletePreference(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete preference %s: %w", key, err)
	}
	return nil
}

// AppendHeldSale persists a suspended transaction. The line items go in as a
// JSON blob: the till never queries into them, it only hands the snapshot
// back out whole.
func (s *Store) AppendHeldSale(ctx context.Context, hs HeldSale) error {
	items, err := json.Marshal(hs.Items)
	if err != nil {
		return fmt.Errorf("encode held sale items: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO held_sales (id, customer_id, discount_percent, tax_percent, items, held_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		hs.ID, hs.CustomerID, hs.DiscountPercent.String(), hs.TaxPercent.String(),
		string(items), hs.HeldAt.UTC())
	if err != nil {
		return fmt.Errorf("append held sale: %w", err)
	}
	return nil
}

// HeldSales lists suspended transactions, oldest first.
func (s *Store) HeldSales(ctx context.Context) ([]HeldSale, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_id, discount_percent, tax_percent, items, held_at
		 FROM held_sales ORDER BY held_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list held sales: %w", err)
	}
	defer rows.Close()

	var out []HeldSale
	for rows.Next() {
		var (
			hs                 HeldSale
			discount, tax, raw string
		)
		if err := rows.Scan(&hs.ID, &hs.CustomerID, &discount, &tax, &raw, &hs.HeldAt); err != nil {
			return nil, fmt.Errorf("scan held sale: %w", err)
		}
		if hs.DiscountPercent, err = decimal.NewFromString(discount); err != nil {
			return nil, fmt.Errorf("decode held sale %s: %w", hs.ID, err)
		}
		if hs.TaxPercent, err = decimal.NewFromString(tax); err != nil {
			return nil, fmt.Errorf("decode held sale %s: %w", hs.ID, err)
		}
		if err := json.Unmarshal([]byte(raw), &hs.Items); err != nil {
			return nil, fmt.Errorf("decode held sale %s items: %w", hs.ID, err)
		}
		out = append(out, hs)
	}
	return out, rows.Err()
}
