package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/pos-terminal/internal/backend"
	"github.com/andreasstove999/pos-terminal/internal/httpapi"
	"github.com/andreasstove999/pos-terminal/internal/journal"
	"github.com/andreasstove999/pos-terminal/internal/session"
	"github.com/andreasstove999/pos-terminal/internal/store"
)

type fakeBackend struct {
	searchFunc func(ctx context.Context, query, warehouseID string) ([]backend.ProductMatch, error)
	submitFunc func(ctx context.Context, req backend.SaleRequest) (backend.SaleResult, error)
}

func (f *fakeBackend) SearchProducts(ctx context.Context, query, warehouseID string) ([]backend.ProductMatch, error) {
	if f.searchFunc != nil {
		return f.searchFunc(ctx, query, warehouseID)
	}
	return nil, nil
}

func (f *fakeBackend) SubmitSale(ctx context.Context, req backend.SaleRequest) (backend.SaleResult, error) {
	if f.submitFunc != nil {
		return f.submitFunc(ctx, req)
	}
	return backend.SaleResult{SaleID: "s-1", InvoiceNumber: "POS-000001"}, nil
}

func (f *fakeBackend) GetCustomer(ctx context.Context, id string) (backend.Customer, error) {
	return backend.Customer{ID: id, Name: "Test", PriceLevel: 2}, nil
}

func (f *fakeBackend) CreateQuickCustomer(ctx context.Context, req backend.QuickCustomerRequest) (backend.Customer, error) {
	return backend.Customer{ID: "c-new", Name: req.Name, PriceLevel: 1}, nil
}

type memStore struct {
	prefs map[string]string
	held  []store.HeldSale
}

func (m *memStore) SetPreference(ctx context.Context, key, value string) error {
	m.prefs[key] = value
	return nil
}

func (m *memStore) Preference(ctx context.Context, key string) (string, error) {
	return m.prefs[key], nil
}

func (m *memStore) DeletePreference(ctx context.Context, key string) error {
	delete(m.prefs, key)
	return nil
}

func (m *memStore) AppendHeldSale(ctx context.Context, hs store.HeldSale) error {
	m.held = append(m.held, hs)
	return nil
}

func (m *memStore) HeldSales(ctx context.Context) ([]store.HeldSale, error) {
	return m.held, nil
}

type nopJournal struct{}

func (nopJournal) PublishSaleCompleted(ctx context.Context, ev journal.SaleCompleted) error {
	return nil
}
func (nopJournal) PublishSaleHeld(ctx context.Context, ev journal.SaleHeld) error { return nil }

type fixedScanner struct{ code string }

func (f fixedScanner) Scan(ctx context.Context) (string, error) { return f.code, nil }

func newTestServer(t *testing.T, be *fakeBackend) *httptest.Server {
	t.Helper()

	s := session.New(session.Deps{
		Logger:    log.New(io.Discard, "", 0),
		Catalog:   be,
		Submitter: be,
		Customers: be,
		Store:     &memStore{prefs: map[string]string{}},
		Journal:   nopJournal{},
		Scanner:   fixedScanner{code: "7701234567890"},
	})
	require.NoError(t, s.SelectWarehouse(context.Background(), "wh-1"))

	srv := httptest.NewServer(httpapi.NewRouter(httpapi.NewHandler(s)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func sampleMatch() backend.ProductMatch {
	var m backend.ProductMatch
	raw := `{"id":"p1","sku":"CAB-01","name":"Cable USB","price1":5.5,"quantity":12,"exact_match":false}`
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		panic(err)
	}
	return m
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAddUpdateRemoveItem(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pos/cart/items", sampleMatch())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/pos/cart/items/0", map[string]any{"quantity": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st session.State
	decode(t, resp, &st)
	require.Len(t, st.Items, 1)
	assert.Equal(t, "3", st.Items[0].Quantity.String())

	// Quantity beyond stock is rejected with 422.
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/pos/cart/items/0", map[string]any{"quantity": 99})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/pos/cart/items/0", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &st)
	assert.Empty(t, st.Items)
}

func TestAddItemBadRequest(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/pos/cart/items", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/pos/cart/items", map[string]any{"name": "no id"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchEndpoint(t *testing.T) {
	be := &fakeBackend{
		searchFunc: func(ctx context.Context, query, warehouseID string) ([]backend.ProductMatch, error) {
			m := sampleMatch()
			return []backend.ProductMatch{m}, nil
		},
	}
	srv := newTestServer(t, be)

	resp, err := http.Get(srv.URL + "/api/pos/search?q=cable")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res session.SearchResult
	decode(t, resp, &res)
	assert.Len(t, res.Matches, 1)

	// Missing query.
	resp, err = http.Get(srv.URL + "/api/pos/search")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchFailure(t *testing.T) {
	be := &fakeBackend{
		searchFunc: func(ctx context.Context, query, warehouseID string) ([]backend.ProductMatch, error) {
			return nil, backend.ErrSearchFailed
		},
	}
	srv := newTestServer(t, be)

	resp, err := http.Get(srv.URL + "/api/pos/search?q=x")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestCheckoutEndpoint(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		srv := newTestServer(t, &fakeBackend{})
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/pos/checkout", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("success", func(t *testing.T) {
		srv := newTestServer(t, &fakeBackend{})
		doJSON(t, http.MethodPost, srv.URL+"/api/pos/cart/items", sampleMatch())

		resp := doJSON(t, http.MethodPost, srv.URL+"/api/pos/checkout", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var res backend.SaleResult
		decode(t, resp, &res)
		assert.Equal(t, "POS-000001", res.InvoiceNumber)
	})

	t.Run("submission failure", func(t *testing.T) {
		be := &fakeBackend{
			submitFunc: func(ctx context.Context, req backend.SaleRequest) (backend.SaleResult, error) {
				return backend.SaleResult{}, backend.ErrSubmissionFailed
			},
		}
		srv := newTestServer(t, be)
		doJSON(t, http.MethodPost, srv.URL+"/api/pos/cart/items", sampleMatch())

		resp := doJSON(t, http.MethodPost, srv.URL+"/api/pos/checkout", nil)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})
}

func TestHoldAndHeldSales(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})
	doJSON(t, http.MethodPost, srv.URL+"/api/pos/cart/items", sampleMatch())

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pos/hold", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var hs store.HeldSale
	decode(t, resp, &hs)
	assert.NotEmpty(t, hs.ID)

	resp, err := http.Get(srv.URL + "/api/pos/held-sales")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var held []store.HeldSale
	decode(t, resp, &held)
	assert.Len(t, held, 1)
}

func TestSelectCustomerEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/pos/customer", map[string]string{"customer_id": "c-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st session.State
	decode(t, resp, &st)
	assert.Equal(t, "c-1", st.CustomerID)
	assert.EqualValues(t, 2, st.PriceLevel)
}

func TestUpdateSettingsEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{})

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/pos/settings", map[string]any{
		"discount_percent": 10,
		"tax_percent":      19,
		"payment_method":   "card",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st session.State
	decode(t, resp, &st)
	assert.Equal(t, "10", st.DiscountPercent.String())
	assert.Equal(t, "19", st.TaxPercent.String())
	assert.Equal(t, "card", st.PaymentMethod)
}

func TestScanEndpoint(t *testing.T) {
	be := &fakeBackend{
		searchFunc: func(ctx context.Context, query, warehouseID string) ([]backend.ProductMatch, error) {
			m := sampleMatch()
			m.Barcode = query
			m.ExactMatch = true
			return []backend.ProductMatch{m}, nil
		},
	}
	srv := newTestServer(t, be)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/pos/scan", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res session.SearchResult
	decode(t, resp, &res)
	require.NotNil(t, res.AutoAdded)
	assert.Equal(t, "p1", res.AutoAdded.ProductID)
}
