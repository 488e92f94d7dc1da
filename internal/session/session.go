// Package session drives one till's interaction flow: search, select,
// mutate, validate, submit, settle. It owns the cart plus the scalars that
// ride along with it (customer, discount, tax, received) and serializes all
// mutations, so a later operation always observes the state an earlier one
// left behind.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/pos-terminal/internal/backend"
	"github.com/andreasstove999/pos-terminal/internal/cart"
	"github.com/andreasstove999/pos-terminal/internal/journal"
	"github.com/andreasstove999/pos-terminal/internal/store"
)

var (
	// ErrCheckoutInFlight rejects a second submit while one is pending, so a
	// double-tapped button cannot produce two sales.
	ErrCheckoutInFlight = errors.New("checkout already in progress")

	// ErrNoWarehouse blocks search until a warehouse is selected.
	ErrNoWarehouse = errors.New("no warehouse selected")

	// ErrNameRequired rejects a quick-customer create with no name before it
	// goes near the network.
	ErrNameRequired = errors.New("customer name is required")
)

const DefaultPaymentMethod = "cash"

// Deps collects the session's collaborators. Journal and Scanner may be nil;
// the till works offline from the broker and without a camera.
type Deps struct {
	Logger    *log.Logger
	Catalog   Catalog
	Submitter Submitter
	Customers CustomerDirectory
	Store     Store
	Journal   Journal
	Scanner   Scanner
}

type Session struct {
	logger    *log.Logger
	catalog   Catalog
	submitter Submitter
	customers CustomerDirectory
	store     Store
	journal   Journal
	scanner   Scanner

	dispatch map[Action]func(context.Context) error

	mu               sync.Mutex
	cart             *cart.Cart
	warehouseID      string
	customerID       string
	priceLevel       cart.PriceLevel
	paymentMethod    string
	discountPercent  decimal.Decimal
	taxPercent       decimal.Decimal
	amountReceived   decimal.Decimal
	searchSeq        uint64
	checkoutInFlight bool
	lastSale         *backend.SaleResult
}

func New(deps Deps) *Session {
	s := &Session{
		logger:        deps.Logger,
		catalog:       deps.Catalog,
		submitter:     deps.Submitter,
		customers:     deps.Customers,
		store:         deps.Store,
		journal:       deps.Journal,
		scanner:       deps.Scanner,
		cart:          cart.New(),
		priceLevel:    cart.DefaultPriceLevel,
		paymentMethod: DefaultPaymentMethod,
	}
	s.dispatch = defaultDispatchTable(s)
	return s
}

// State is a consistent snapshot for rendering. Totals are recomputed on
// every call; nothing here is cached.
type State struct {
	WarehouseID      string              `json:"warehouse_id,omitempty"`
	CustomerID       string              `json:"customer_id,omitempty"`
	PriceLevel       cart.PriceLevel     `json:"price_level"`
	PaymentMethod    string              `json:"payment_method"`
	DiscountPercent  decimal.Decimal     `json:"discount_percent"`
	TaxPercent       decimal.Decimal     `json:"tax_percent"`
	AmountReceived   decimal.Decimal     `json:"amount_received"`
	Items            []cart.LineItem     `json:"items"`
	Totals           cart.Totals         `json:"totals"`
	CheckoutInFlight bool                `json:"checkout_in_flight"`
	LastSale         *backend.SaleResult `json:"last_sale,omitempty"`
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		WarehouseID:      s.warehouseID,
		CustomerID:       s.customerID,
		PriceLevel:       s.priceLevel,
		PaymentMethod:    s.paymentMethod,
		DiscountPercent:  s.discountPercent,
		TaxPercent:       s.taxPercent,
		AmountReceived:   s.amountReceived,
		Items:            s.cart.Items(),
		Totals:           s.cart.ComputeTotals(s.discountPercent, s.taxPercent, s.amountReceived),
		CheckoutInFlight: s.checkoutInFlight,
		LastSale:         s.lastSale,
	}
}

// RestorePreferences brings back the knobs from the last shift: warehouse,
// payment method, and the last customer (resolved through the directory so
// the price level is fresh). Lookup failures downgrade to walk-in.
func (s *Session) RestorePreferences(ctx context.Context) error {
	warehouse, err := s.store.Preference(ctx, store.PrefWarehouse)
	if err != nil {
		return err
	}
	payment, err := s.store.Preference(ctx, store.PrefPaymentMethod)
	if err != nil {
		return err
	}
	customerID, err := s.store.Preference(ctx, store.PrefCustomer)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if warehouse != "" {
		s.warehouseID = warehouse
	}
	if payment != "" {
		s.paymentMethod = payment
	}
	s.mu.Unlock()

	if customerID != "" {
		if err := s.SelectCustomer(ctx, customerID); err != nil {
			s.logger.Printf("restore customer %s: %v", customerID, err)
		}
	}
	return nil
}

func (s *Session) SelectWarehouse(ctx context.Context, warehouseID string) error {
	s.mu.Lock()
	s.warehouseID = warehouseID
	s.mu.Unlock()

	return s.store.SetPreference(ctx, store.PrefWarehouse, warehouseID)
}

// SelectCustomer resolves the customer's price level for new lines. An empty
// id resets to the walk-in default. Existing lines keep their add-time price
// either way; only newly added products see the new level.
func (s *Session) SelectCustomer(ctx context.Context, customerID string) error {
	if customerID == "" {
		s.mu.Lock()
		s.customerID = ""
		s.priceLevel = cart.DefaultPriceLevel
		s.mu.Unlock()
		return s.store.DeletePreference(ctx, store.PrefCustomer)
	}

	cust, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.customerID = cust.ID
	s.priceLevel = cust.PriceLevel
	if s.priceLevel < 1 || s.priceLevel > 4 {
		s.priceLevel = cart.DefaultPriceLevel
	}
	s.mu.Unlock()

	if err := s.store.SetPreference(ctx, store.PrefCustomer, cust.ID); err != nil {
		s.logger.Printf("persist customer preference: %v", err)
	}
	return nil
}

// QuickCustomer creates a walk-up customer through the backend and selects
// it in one step.
func (s *Session) QuickCustomer(ctx context.Context, req backend.QuickCustomerRequest) (backend.Customer, error) {
	if req.Name == "" {
		return backend.Customer{}, ErrNameRequired
	}

	cust, err := s.customers.CreateQuickCustomer(ctx, req)
	if err != nil {
		return backend.Customer{}, err
	}
	if err := s.SelectCustomer(ctx, cust.ID); err != nil {
		return backend.Customer{}, err
	}
	return cust, nil
}

func (s *Session) SetPaymentMethod(ctx context.Context, method string) error {
	s.mu.Lock()
	s.paymentMethod = method
	s.mu.Unlock()

	return s.store.SetPreference(ctx, store.PrefPaymentMethod, method)
}

func (s *Session) SetDiscountPercent(v decimal.Decimal) {
	s.mu.Lock()
	s.discountPercent = v
	s.mu.Unlock()
}

func (s *Session) SetTaxPercent(v decimal.Decimal) {
	s.mu.Lock()
	s.taxPercent = v
	s.mu.Unlock()
}

func (s *Session) SetAmountReceived(v decimal.Decimal) {
	s.mu.Lock()
	s.amountReceived = v
	s.mu.Unlock()
}

// SearchResult is what a search settles to. Stale marks a response that lost
// the race against a newer query and must be ignored by the caller.
type SearchResult struct {
	Matches   []backend.ProductMatch `json:"matches,omitempty"`
	AutoAdded *cart.LineItem         `json:"auto_added,omitempty"`
	Stale     bool                   `json:"-"`
}

// Search queries the catalog. A single exact match is added to the cart
// immediately, with no selection step. Responses are sequence-stamped: if a
// newer search was issued while this one was on the wire, its result is
// discarded.
func (s *Session) Search(ctx context.Context, query string) (SearchResult, error) {
	s.mu.Lock()
	if s.warehouseID == "" {
		s.mu.Unlock()
		return SearchResult{}, ErrNoWarehouse
	}
	s.searchSeq++
	seq := s.searchSeq
	warehouseID := s.warehouseID
	s.mu.Unlock()

	matches, err := s.catalog.SearchProducts(ctx, query, warehouseID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.searchSeq {
		return SearchResult{Stale: true}, nil
	}
	if err != nil {
		// Transient: the cart is untouched, the next keystroke retries.
		return SearchResult{}, err
	}

	if len(matches) == 1 && matches[0].ExactMatch {
		line := s.cart.AddItem(matches[0].Product(), s.priceLevel)
		added := *line
		return SearchResult{AutoAdded: &added}, nil
	}
	return SearchResult{Matches: matches}, nil
}

// Scan pulls a code from the scanner and runs it through Search.
func (s *Session) Scan(ctx context.Context) (SearchResult, error) {
	if s.scanner == nil {
		return SearchResult{}, errors.New("no scanner configured")
	}
	code, err := s.scanner.Scan(ctx)
	if err != nil {
		return SearchResult{}, err
	}
	return s.Search(ctx, code)
}

// AddProduct adds a match the operator picked from the result list.
func (s *Session) AddProduct(m backend.ProductMatch) cart.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.cart.AddItem(m.Product(), s.priceLevel)
}

func (s *Session) RemoveItem(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.RemoveItem(index)
}

func (s *Session) SetQuantity(index int, quantity decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.SetQuantity(index, quantity)
}

func (s *Session) SetUnitPrice(index int, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.SetUnitPrice(index, price)
}

func (s *Session) SetSerial(index int, serialID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.SetSerial(index, serialID)
}

func (s *Session) Totals() cart.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ComputeTotals(s.discountPercent, s.taxPercent, s.amountReceived)
}

// ClearCart empties the cart and resets discount, tax and received. The
// customer selection survives a clear; the next sale is often for the same
// person standing at the counter.
func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	s.cart.Clear()
	s.discountPercent = decimal.Zero
	s.taxPercent = decimal.Zero
	s.amountReceived = decimal.Zero
}

// Checkout validates locally, submits the sale, and settles. Validation
// failures abort before any network call. Only one submission may be in
// flight; the guard is released unconditionally when the call settles, on
// success and on failure alike. On failure the cart is preserved for retry.
func (s *Session) Checkout(ctx context.Context) (backend.SaleResult, error) {
	s.mu.Lock()
	if s.checkoutInFlight {
		s.mu.Unlock()
		return backend.SaleResult{}, ErrCheckoutInFlight
	}
	if err := s.cart.ValidateForCheckout(); err != nil {
		s.mu.Unlock()
		return backend.SaleResult{}, err
	}

	totals := s.cart.ComputeTotals(s.discountPercent, s.taxPercent, s.amountReceived)
	req := backend.SaleRequest{
		PaymentMethod:  s.paymentMethod,
		Items:          s.cart.Items(),
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		TaxAmount:      totals.TaxAmount,
		Total:          totals.Total,
	}
	if s.customerID != "" {
		id := s.customerID
		req.CustomerID = &id
	}
	customerID := s.customerID
	paymentMethod := s.paymentMethod
	lineCount := s.cart.Len()
	s.checkoutInFlight = true
	s.mu.Unlock()

	res, err := s.submitter.SubmitSale(ctx, req)

	s.mu.Lock()
	s.checkoutInFlight = false
	if err != nil {
		s.mu.Unlock()
		return backend.SaleResult{}, err
	}
	s.lastSale = &res
	s.clearLocked()
	s.mu.Unlock()

	s.publishSaleCompleted(ctx, res, customerID, paymentMethod, lineCount)
	return res, nil
}

func (s *Session) publishSaleCompleted(ctx context.Context, res backend.SaleResult, customerID, paymentMethod string, lineCount int) {
	if s.journal == nil {
		return
	}
	ev := journal.SaleCompleted{
		EventID:       uuid.NewString(),
		SaleID:        res.SaleID,
		InvoiceNumber: res.InvoiceNumber,
		CustomerID:    customerID,
		PaymentMethod: paymentMethod,
		Total:         res.Total,
		LineCount:     lineCount,
		Timestamp:     time.Now().UTC(),
	}
	if err := s.journal.PublishSaleCompleted(ctx, ev); err != nil {
		// The sale already went through; a journal gap is a log line, not a failure.
		s.logger.Printf("journal sale completed: %v", err)
	}
}

// Hold snapshots the transaction to the local store and clears the till for
// the next customer. Held sales are write-only here; resume has no contract yet.
func (s *Session) Hold(ctx context.Context) (store.HeldSale, error) {
	s.mu.Lock()
	if s.cart.Len() == 0 {
		s.mu.Unlock()
		return store.HeldSale{}, cart.ErrEmptyCart
	}
	hs := store.HeldSale{
		ID:              uuid.NewString(),
		CustomerID:      s.customerID,
		DiscountPercent: s.discountPercent,
		TaxPercent:      s.taxPercent,
		Items:           s.cart.Items(),
		HeldAt:          time.Now().UTC(),
	}

	// The store is a local file; holding the lock across the write keeps
	// snapshot-then-clear atomic against interleaved scans.
	if err := s.store.AppendHeldSale(ctx, hs); err != nil {
		// Keep the cart; losing the transaction is worse than not holding it.
		s.mu.Unlock()
		return store.HeldSale{}, err
	}
	s.clearLocked()
	s.mu.Unlock()

	if s.journal != nil {
		ev := journal.SaleHeld{
			EventID:    uuid.NewString(),
			HeldSaleID: hs.ID,
			CustomerID: hs.CustomerID,
			LineCount:  len(hs.Items),
			Timestamp:  hs.HeldAt,
		}
		if err := s.journal.PublishSaleHeld(ctx, ev); err != nil {
			s.logger.Printf("journal sale held: %v", err)
		}
	}
	return hs, nil
}

func (s *Session) HeldSales(ctx context.Context) ([]store.HeldSale, error) {
	return s.store.HeldSales(ctx)
}
