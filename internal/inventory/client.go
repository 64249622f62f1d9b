package inventory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/internal/types"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

const maxResponseBytes = 1 << 20

// Client talks to a json-server style inventory API:
//
//	GET {base}/stock          -> [{"id":1,"amount":3}, ...]
//	GET {base}/stock/{id}     -> {"id":1,"amount":3}
//	GET {base}/products/{id}  -> {"id":1,"title":"...","price":179.9,"image":"..."}
//
// Stock is always fetched fresh. Product metadata is cached for the
// configured TTL.
type Client struct {
	baseURL    string
	http       *http.Client
	amountExpr string
	productTTL time.Duration
	products   *TTL[int64, types.Product]
}

// NewClient builds a client from cfg. A nil httpClient gets one with cfg's timeout.
func NewClient(cfg types.InventoryConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}
	expr := cfg.StockAmountExpr
	if expr == "" {
		expr = types.DefaultStockAmountExpr
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		http:       httpClient,
		amountExpr: expr,
		productTTL: cfg.ProductCacheTTL(),
		products:   NewTTL[int64, types.Product](),
	}
}

// Stock returns the available quantity of productID.
func (c *Client) Stock(ctx context.Context, productID int64) (types.StockRecord, error) {
	var payload map[string]any
	if err := c.get(ctx, "/stock/"+strconv.FormatInt(productID, 10), &payload); err != nil {
		return types.StockRecord{}, err
	}
	return c.stockRecord(productID, payload)
}

// AllStock returns every stock record in one request.
func (c *Client) AllStock(ctx context.Context) ([]types.StockRecord, error) {
	var payload []map[string]any
	if err := c.get(ctx, "/stock", &payload); err != nil {
		return nil, err
	}
	out := make([]types.StockRecord, 0, len(payload))
	for _, p := range payload {
		id, err := evalInt("id", p)
		if err != nil {
			return nil, types.Err(types.ErrInventoryAccess, err, "stock record without id")
		}
		rec, err := c.stockRecord(int64(id), p)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Product returns display metadata for productID.
func (c *Client) Product(ctx context.Context, productID int64) (types.Product, error) {
	if c.productTTL > 0 {
		if p, ok := c.products.Get(productID); ok {
			return p, nil
		}
		c.products.Purge()
	}
	var p types.Product
	if err := c.get(ctx, "/products/"+strconv.FormatInt(productID, 10), &p); err != nil {
		return types.Product{}, err
	}
	if p.ID == 0 {
		p.ID = productID
	}
	if c.productTTL > 0 {
		c.products.Set(productID, p, c.productTTL)
	}
	return p, nil
}

func (c *Client) stockRecord(productID int64, payload map[string]any) (types.StockRecord, error) {
	amount, err := evalInt(c.amountExpr, payload)
	if err != nil {
		return types.StockRecord{}, types.Err(types.ErrInventoryAccess, err, "stock for product %d", productID)
	}
	if amount < 0 {
		amount = 0
	}
	return types.StockRecord{ID: productID, Amount: amount}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return types.Err(types.ErrInventoryAccess, err, "build url for %s", path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return types.Err(types.ErrInventoryAccess, err, "new request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return types.Err(types.ErrInventoryAccess, err, "GET %s", u)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return types.Err(types.ErrInventoryAccess, err, "read %s", u)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return types.Err(types.ErrNotFound, nil, "GET %s", u)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		log.WithFields(log.Fields{
			"url":    u,
			"status": resp.StatusCode,
		}).Warn("inventory lookup failed")
		return types.Err(types.ErrInventoryAccess, nil, "GET %s: status %d", u, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return types.Err(types.ErrInventoryAccess, err, "decode %s", u)
	}
	return nil
}

// String is used in log lines.
func (c *Client) String() string {
	return fmt.Sprintf("inventory(%s)", c.baseURL)
}
