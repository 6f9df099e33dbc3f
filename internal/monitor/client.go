package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/northmart/storefront/internal/order"
)

var (
	ErrNoCredentials = errors.New("authentication token not found")
	ErrUnauthorized  = errors.New("your session has expired")
	ErrInvalidFormat = errors.New("invalid data format received from server")
	ErrNetwork       = errors.New("network error")
)

// APIError carries a server-supplied failure message for non-401 HTTP
// errors.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.Status)
}

// Client is the admin dashboard's REST client.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialStore
}

func NewClient(baseURL string, creds CredentialStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		creds:   creds,
	}
}

// Login opens an admin session and persists the issued token.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := c.do(ctx, http.MethodPost, "/admin/login", map[string]string{
		"email":    email,
		"password": password,
	}, false)
	if err != nil {
		return err
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Token == "" {
		return ErrInvalidFormat
	}

	return c.creds.Save(payload.Token)
}

// FetchActiveOrders requests today's actionable orders.
func (c *Client) FetchActiveOrders(ctx context.Context) ([]order.Order, error) {
	q := url.Values{}
	for _, s := range order.ActionableStatuses {
		q.Add("status", s.String())
	}
	q.Set("dateFilter", "today")

	body, err := c.do(ctx, http.MethodGet, "/admin/orders?"+q.Encode(), nil, true)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Orders json.RawMessage `json:"orders"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrInvalidFormat
	}
	if !isJSONArray(payload.Orders) {
		return nil, ErrInvalidFormat
	}

	var orders []order.Order
	if err := json.Unmarshal(payload.Orders, &orders); err != nil {
		return nil, ErrInvalidFormat
	}
	return orders, nil
}

// FetchStats requests the recent-orders summary.
func (c *Client) FetchStats(ctx context.Context) ([]order.Summary, error) {
	body, err := c.do(ctx, http.MethodGet, "/admin/stats", nil, true)
	if err != nil {
		return nil, err
	}

	var payload struct {
		RecentOrders json.RawMessage `json:"recentOrders"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrInvalidFormat
	}
	if !isJSONArray(payload.RecentOrders) {
		return nil, ErrInvalidFormat
	}

	var summaries []order.Summary
	if err := json.Unmarshal(payload.RecentOrders, &summaries); err != nil {
		return nil, ErrInvalidFormat
	}
	return summaries, nil
}

// UpdateOrderStatus issues a status-transition command.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status order.Status) error {
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/orders/%d/status", id), map[string]string{
		"status": status.String(),
	}, true)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, authed bool) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("client: failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("client: failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		token, err := c.creds.Token()
		if err != nil || token == "" {
			return nil, ErrNoCredentials
		}
		if !strings.HasPrefix(token, "Bearer ") {
			token = "Bearer " + token
		}
		req.Header.Set("Authorization", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return nil, apiErr
	}

	return body, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
