// Package stripe implements the payment-provider contract against a
// Stripe-style REST API: form-encoded requests, bearer auth, /v1 resources.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/trimly/accounts/internal/provider"
)

// Doer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds the Stripe API client configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	RefreshURL string
	ReturnURL  string
	Currency   string
}

// Client implements provider.Provider against the Stripe REST API.
type Client struct {
	cfg  Config
	http Doer
}

// NewClient creates a Stripe provider client.
func NewClient(cfg Config, doer Doer) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.stripe.com"
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &Client{cfg: cfg, http: doer}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "stripe"
}

type accountResponse struct {
	ID             string `json:"id"`
	ChargesEnabled bool   `json:"charges_enabled"`
}

type linkResponse struct {
	URL string `json:"url"`
}

type priceResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateAccount creates an express sub-account.
func (c *Client) CreateAccount(ctx context.Context) (*provider.Account, error) {
	form := url.Values{}
	form.Set("type", "express")

	var resp accountResponse
	if err := c.post(ctx, "/v1/accounts", form, &resp); err != nil {
		return nil, err
	}
	return &provider.Account{ID: resp.ID, ChargesEnabled: resp.ChargesEnabled}, nil
}

// GetAccount retrieves a sub-account and its charge-capability.
func (c *Client) GetAccount(ctx context.Context, id string) (*provider.Account, error) {
	var resp accountResponse
	if err := c.get(ctx, "/v1/accounts/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &provider.Account{ID: resp.ID, ChargesEnabled: resp.ChargesEnabled}, nil
}

// OnboardingLink returns an account-onboarding URL for the sub-account.
func (c *Client) OnboardingLink(ctx context.Context, id string) (string, error) {
	form := url.Values{}
	form.Set("account", id)
	form.Set("refresh_url", c.cfg.RefreshURL)
	form.Set("return_url", c.cfg.ReturnURL)
	form.Set("type", "account_onboarding")

	var resp linkResponse
	if err := c.post(ctx, "/v1/account_links", form, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// CreatePrice registers a price object. unitAmount is in minor units.
func (c *Client) CreatePrice(ctx context.Context, name string, unitAmount int64) (string, error) {
	form := url.Values{}
	form.Set("currency", c.cfg.Currency)
	form.Set("unit_amount", strconv.FormatInt(unitAmount, 10))
	form.Set("product_data[name]", name)

	var resp priceResponse
	if err := c.post(ctx, "/v1/prices", form, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create stripe request: %w", err)
	}
	return c.send(ctx, req, out)
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create stripe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(ctx, req, out)
}

func (c *Client) send(ctx context.Context, req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("stripe %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read stripe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var stripeErr errorResponse
		if json.Unmarshal(body, &stripeErr) == nil && stripeErr.Error.Message != "" {
			return fmt.Errorf("stripe %s %s: status %d: %s",
				req.Method, req.URL.Path, resp.StatusCode, stripeErr.Error.Message)
		}
		return fmt.Errorf("stripe %s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode stripe response: %w", err)
	}
	return nil
}
