// Package storeapi is the typed client for the external order and catalog
// store. It is the process's only network edge: list and fetch orders,
// persist already-validated status transitions, and pull report data.
// It keeps no cache and never retries; every failure maps onto the apperr
// taxonomy and is the caller's decision to act on.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"bookstore-console/internal/apperr"
	"bookstore-console/internal/core"
)

const defaultTimeout = 15 * time.Second

// Config carries the connection settings for the store.
type Config struct {
	BaseURL string
	// Token, when set, is sent as a bearer token. Minting and refreshing
	// tokens happens outside this process.
	Token   string
	Timeout time.Duration
}

// Client talks JSON over HTTP to the order store.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	validate *validator.Validate
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		token:    cfg.Token,
		http:     &http.Client{Timeout: timeout},
		validate: validator.New(),
	}
}

// get performs a GET and hands back the body for decoding. Non-2xx responses
// and network failures are classified here so decoders never see them.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, apperr.TransportErr("Failed to reach the order store.", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.TransportErr("Failed to reach the order store.", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.TransportErr("Failed to read the store response.", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.NotFoundErr("The requested order no longer exists.")
	case resp.StatusCode == http.StatusConflict:
		return nil, apperr.ConflictErr("The order was changed by someone else. Refresh and try again.")
	default:
		return nil, apperr.TransportErr(
			fmt.Sprintf("The order store returned HTTP %d.", resp.StatusCode),
			fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode),
		)
	}
}

// decodeOrder validates and maps one wire record.
func (c *Client) decodeOrder(dto orderDTO) (core.Order, error) {
	if err := c.validate.Struct(dto); err != nil {
		return core.Order{}, apperr.DecodeErr("The store sent an order the console cannot read.", err)
	}
	order, err := dto.toDomain()
	if err != nil {
		return core.Order{}, apperr.DecodeErr("The store sent an order the console cannot read.", err)
	}
	return order, nil
}

// ListOrders fetches every order from the store.
func (c *Client) ListOrders(ctx context.Context) ([]core.Order, error) {
	body, err := c.get(ctx, "/Order")
	if err != nil {
		return nil, err
	}

	var list dotnetList[orderDTO]
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, apperr.DecodeErr("The store sent an order list the console cannot read.", err)
	}

	orders := make([]core.Order, 0, len(list.Items))
	for _, dto := range list.Items {
		order, err := c.decodeOrder(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// GetOrder fetches a single order by id.
func (c *Client) GetOrder(ctx context.Context, id int) (*core.Order, error) {
	body, err := c.get(ctx, "/Order/"+strconv.Itoa(id))
	if err != nil {
		return nil, err
	}

	var dto orderDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, apperr.DecodeErr("The store sent an order the console cannot read.", err)
	}
	order, err := c.decodeOrder(dto)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus persists a status transition the state machine has already
// validated. The store answers 409 when the order moved concurrently; that
// surfaces as apperr.Conflict and the caller must re-fetch before retrying.
func (c *Client) UpdateStatus(ctx context.Context, id int, to core.Status) (*core.Order, error) {
	payload, err := json.Marshal(statusUpdateRequest{Status: string(to)})
	if err != nil {
		return nil, apperr.DecodeErr("Failed to encode the status update.", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/Order/"+strconv.Itoa(id), bytes.NewReader(payload))
	if err != nil {
		return nil, apperr.TransportErr("Failed to reach the order store.", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	// The store echoes the updated order. An empty body is tolerated; the
	// caller then applies the transition to its own snapshot.
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var dto orderDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, apperr.DecodeErr("The store sent an order the console cannot read.", err)
	}
	order, err := c.decodeOrder(dto)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListInventory fetches raw catalog records for local report aggregation.
func (c *Client) ListInventory(ctx context.Context) ([]core.InventoryRecord, error) {
	body, err := c.get(ctx, "/Book")
	if err != nil {
		return nil, err
	}

	var list dotnetList[bookRecordDTO]
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, apperr.DecodeErr("The store sent a catalog list the console cannot read.", err)
	}

	records := make([]core.InventoryRecord, 0, len(list.Items))
	for _, dto := range list.Items {
		if err := c.validate.Struct(dto); err != nil {
			return nil, apperr.DecodeErr("The store sent a catalog record the console cannot read.", err)
		}
		records = append(records, dto.toDomain())
	}
	return records, nil
}

// FetchReportSeries pulls a pre-aggregated series from the store's report
// endpoints, for deployments where aggregation stays server-side.
func (c *Client) FetchReportSeries(ctx context.Context, kind core.ReportKind) (*core.ReportSeries, error) {
	body, err := c.get(ctx, "/Report/"+string(kind))
	if err != nil {
		return nil, err
	}

	var dto seriesDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, apperr.DecodeErr("The store sent a report the console cannot read.", err)
	}
	return dto.toDomain(), nil
}
