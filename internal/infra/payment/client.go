// Package payment talks to the hosted-checkout payment provider. The wire
// format is the provider's form-encoded REST API; all calls run through a
// circuit breaker so a provider outage fails fast instead of piling up
// request goroutines.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	domcheckout "example.com/glowshop/internal/domain/checkout"
	checkoutuc "example.com/glowshop/internal/usecase/checkout"
)

type Config struct {
	BaseURL string
	APIKey  string
	// SuccessURL should carry the provider's session-ID placeholder, e.g.
	// https://shop.example/checkout?success=true&session_id={CHECKOUT_SESSION_ID}
	SuccessURL string
	CancelURL  string
	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	apiKey     string
	successURL string
	cancelURL  string
	httpc      *http.Client
	cb         *gobreaker.CircuitBreaker[*apiSession]
}

func NewClient(cfg Config) *Client {
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	cb := gobreaker.NewCircuitBreaker[*apiSession](gobreaker.Settings{
		Name:    "payment-provider",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		httpc:      httpc,
		cb:         cb,
	}
}

// apiSession is the provider's session resource as it appears on the wire.
type apiSession struct {
	ID                string        `json:"id"`
	URL               string        `json:"url"`
	Status            string        `json:"status"`
	CustomerEmail     string        `json:"customer_email"`
	ClientReferenceID string        `json:"client_reference_id"`
	AmountTotal       int64         `json:"amount_total"`
	Currency          string        `json:"currency"`
	LineItems         []apiLineItem `json:"line_items"`
}

type apiLineItem struct {
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Quantity int64  `json:"quantity"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession opens a hosted checkout session and returns its redirect URL.
func (c *Client) CreateSession(ctx context.Context, in checkoutuc.CreateSessionInput) (*domcheckout.Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", in.Email)
	form.Set("success_url", c.successURL)
	form.Set("cancel_url", c.cancelURL)
	if in.UserID != nil {
		form.Set("client_reference_id", strconv.FormatInt(*in.UserID, 10))
	}
	for i, item := range in.Items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[name]", item.Name)
		form.Set(prefix+"[amount]", strconv.FormatInt(item.PriceCents, 10))
		form.Set(prefix+"[currency]", item.Currency)
		form.Set(prefix+"[quantity]", strconv.FormatInt(item.Quantity, 10))
	}

	sess, err := c.cb.Execute(func() (*apiSession, error) {
		return c.postForm(ctx, "/v1/checkout/sessions", form, in.IdempotencyKey)
	})
	if err != nil {
		return nil, err
	}
	return &domcheckout.Session{ID: sess.ID, URL: sess.URL}, nil
}

// GetSession fetches the authoritative session record after the buyer
// returns from the provider.
func (c *Client) GetSession(ctx context.Context, id string) (*checkoutuc.SessionDetails, error) {
	sess, err := c.cb.Execute(func() (*apiSession, error) {
		return c.get(ctx, "/v1/checkout/sessions/"+url.PathEscape(id))
	})
	if err != nil {
		return nil, err
	}

	details := &checkoutuc.SessionDetails{
		ID:         sess.ID,
		Status:     sess.Status,
		Email:      sess.CustomerEmail,
		TotalCents: sess.AmountTotal,
		Currency:   sess.Currency,
	}
	// The reference ID is the buyer's user ID for logged-in purchases;
	// guests leave it empty.
	if sess.ClientReferenceID != "" {
		if uid, err := strconv.ParseInt(sess.ClientReferenceID, 10, 64); err == nil {
			details.UserID = &uid
		}
	}
	for _, line := range sess.LineItems {
		details.Lines = append(details.Lines, checkoutuc.LineItem{
			Name:       line.Name,
			PriceCents: line.Amount,
			Currency:   line.Currency,
			Quantity:   line.Quantity,
		})
	}
	return details, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, idempotencyKey string) (*apiSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (*apiSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*apiSession, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("provider error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("provider error (%d)", resp.StatusCode)
	}

	var sess apiSession
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	return &sess, nil
}
