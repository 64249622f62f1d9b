package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"storefront/internal/backends/memory"
	"storefront/internal/cart"
	"storefront/internal/inventory"
	"storefront/internal/types"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/currency"
)

type HandlerTestSuite struct {
	suite.Suite

	mu        sync.Mutex
	stock     map[int64]int
	inventory *httptest.Server
	kv        *memory.KVStore
	api       *httptest.Server
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	s.stock = map[int64]int{1: 3, 2: 1, 3: 0}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /stock/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		var id int64
		_, _ = fmt.Sscan(r.PathValue("id"), &id)
		amount, ok := s.stock[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprintf(w, `{"id":%d,"amount":%d}`, id, amount)
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "404" {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprintf(w, `{"id":%s,"title":"Tênis %s","price":100.5,"image":"https://img/%s.jpg"}`, id, id, id)
	})
	s.inventory = httptest.NewServer(mux)

	s.kv = memory.NewKVStore()
	inv := inventory.NewClient(types.InventoryConfig{BaseURL: s.inventory.URL}, s.inventory.Client())
	store, err := cart.New(context.Background(), s.kv, inv, cart.Options{})
	s.Require().NoError(err)

	s.api = httptest.NewServer(NewHandler(store, currency.BRL).Router())
}

func (s *HandlerTestSuite) TearDownTest() {
	s.api.Close()
	s.inventory.Close()
}

func (s *HandlerTestSuite) do(method, path, body string) (int, Response) {
	req, err := http.NewRequest(method, s.api.URL+path, strings.NewReader(body))
	s.Require().NoError(err)
	resp, err := s.api.Client().Do(req)
	s.Require().NoError(err)
	defer func() {
		_ = resp.Body.Close()
	}()
	var out Response
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func (s *HandlerTestSuite) getCart() CartView {
	resp, err := s.api.Client().Get(s.api.URL + "/cart")
	s.Require().NoError(err)
	defer func() {
		_ = resp.Body.Close()
	}()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var v CartView
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (s *HandlerTestSuite) TestHealth() {
	resp, err := s.api.Client().Get(s.api.URL + "/health")
	s.Require().NoError(err)
	_ = resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *HandlerTestSuite) TestEmptyCart() {
	v := s.getCart()
	s.Empty(v.Items)
	s.Equal("0.00", v.Total)
	s.Equal(0, v.Count)
	s.Equal("BRL", v.Currency)
}

func (s *HandlerTestSuite) TestAddThenIncrement() {
	code, resp := s.do(http.MethodPost, "/cart/items/1", "")
	s.Equal(http.StatusOK, code)
	s.Equal("added", resp.Status)
	s.Equal(types.SignalMessages[types.Added], resp.Message)
	s.Require().NotNil(resp.Cart)
	s.Require().Len(resp.Cart.Items, 1)
	s.Equal(1, resp.Cart.Items[0].Amount)
	s.Equal("Tênis 1", resp.Cart.Items[0].Title)

	code, resp = s.do(http.MethodPost, "/cart/items/1", "")
	s.Equal(http.StatusOK, code)
	s.Equal(2, resp.Cart.Items[0].Amount)
	s.Equal("201.00", resp.Cart.Total)

	raw, err := s.kv.Get(context.Background(), types.DefaultStorageKey)
	s.Require().NoError(err)
	s.Contains(string(raw), `"price":100.5,"image":"https://img/1.jpg","amount":2`)

	resp2, err := s.api.Client().Get(s.api.URL + "/cart")
	s.Require().NoError(err)
	defer func() {
		_ = resp2.Body.Close()
	}()
	body, err := io.ReadAll(resp2.Body)
	s.Require().NoError(err)
	s.Contains(string(body), `"price":100.5`)
}

func (s *HandlerTestSuite) TestAddOutOfStock() {
	code, resp := s.do(http.MethodPost, "/cart/items/3", "")
	s.Equal(http.StatusConflict, code)
	s.Equal("out_of_stock", resp.Status)
	s.Empty(resp.Cart.Items)
}

func (s *HandlerTestSuite) TestAddUnknownProduct() {
	code, resp := s.do(http.MethodPost, "/cart/items/99", "")
	s.Equal(http.StatusBadGateway, code)
	s.Equal("add_failed", resp.Status)
}

func (s *HandlerTestSuite) TestRemove() {
	s.do(http.MethodPost, "/cart/items/1", "")
	s.do(http.MethodPost, "/cart/items/2", "")

	code, resp := s.do(http.MethodDelete, "/cart/items/1", "")
	s.Equal(http.StatusOK, code)
	s.Equal("removed", resp.Status)
	s.Require().Len(resp.Cart.Items, 1)
	s.Equal(int64(2), resp.Cart.Items[0].ID)

	code, resp = s.do(http.MethodDelete, "/cart/items/1", "")
	s.Equal(http.StatusNotFound, code)
	s.Equal("remove_failed", resp.Status)
}

func (s *HandlerTestSuite) TestUpdate() {
	s.do(http.MethodPost, "/cart/items/1", "")

	code, resp := s.do(http.MethodPut, "/cart/items/1", `{"amount":3}`)
	s.Equal(http.StatusOK, code)
	s.Equal("updated", resp.Status)
	s.Equal(3, resp.Cart.Items[0].Amount)

	code, resp = s.do(http.MethodPut, "/cart/items/1", `{"amount":4}`)
	s.Equal(http.StatusConflict, code)
	s.Equal("out_of_stock", resp.Status)
	s.Equal(3, resp.Cart.Items[0].Amount)

	code, resp = s.do(http.MethodPut, "/cart/items/1", `{"amount":0}`)
	s.Equal(http.StatusOK, code)
	s.Equal(statusIgnored, resp.Status)
	s.Equal(3, resp.Cart.Items[0].Amount)

	code, resp = s.do(http.MethodPut, "/cart/items/2", `{"amount":1}`)
	s.Equal(http.StatusOK, code)
	s.Equal(statusIgnored, resp.Status)
	s.Len(resp.Cart.Items, 1)
}

func (s *HandlerTestSuite) TestUpdateAfterRemoveIsIgnored() {
	s.do(http.MethodPost, "/cart/items/1", "")
	s.do(http.MethodDelete, "/cart/items/1", "")

	code, resp := s.do(http.MethodPut, "/cart/items/1", `{"amount":2}`)
	s.Equal(http.StatusOK, code)
	s.Equal(statusIgnored, resp.Status)
	s.Empty(resp.Cart.Items)
}

func (s *HandlerTestSuite) TestBadInput() {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"non numeric id", http.MethodPost, "/cart/items/abc", ""},
		{"zero id", http.MethodDelete, "/cart/items/0", ""},
		{"missing amount", http.MethodPut, "/cart/items/1", `{}`},
		{"invalid json", http.MethodPut, "/cart/items/1", `{"amount":`},
		{"string amount", http.MethodPut, "/cart/items/1", `{"amount":"2"}`},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			code, _ := s.do(tt.method, tt.path, tt.body)
			s.Equal(http.StatusBadRequest, code)
		})
	}
}

func (s *HandlerTestSuite) TestMethodNotAllowed() {
	code, _ := s.do(http.MethodPatch, "/cart/items/1", "")
	s.Equal(http.StatusMethodNotAllowed, code)
}

func TestStatusFor(t *testing.T) {
	cases := map[types.Kind]int{
		types.KindOutOfStock:   http.StatusConflict,
		types.KindAddFailed:    http.StatusBadGateway,
		types.KindUpdateFailed: http.StatusBadGateway,
		types.KindRemoveFailed: http.StatusNotFound,
		types.KindUnknown:      http.StatusInternalServerError,
	}
	for k, want := range cases {
		if got := statusFor(k); got != want {
			t.Errorf("statusFor(%s) = %d, want %d", k, got, want)
		}
	}
}
