// Package checkout talks to the Stripe REST API for hosted checkout.
package checkout

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

	"github.com/oklog/ulid/v2"
	paymentdomain "github.com/smallbiznis/zoonova/internal/payment/domain"
)

type Config struct {
	SecretKey string
	BaseURL   string
}

type Client struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = "https://api.stripe.com"
	}
	return &Client{
		secretKey: cfg.SecretKey,
		baseURL:   base,
		http:      httpClient,
	}
}

var _ paymentdomain.Gateway = (*Client)(nil)

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type intentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req paymentdomain.CheckoutRequest) (*paymentdomain.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("success_url", withOrderID(req.SuccessURL, req.OrderID))
	form.Set("cancel_url", withOrderID(req.CancelURL, req.OrderID))
	form.Set("customer_email", req.CustomerEmail)
	form.Set("metadata[order_id]", req.OrderID)
	form.Set("payment_intent_data[metadata][order_id]", req.OrderID)
	for i, line := range req.Lines {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", req.Currency)
		form.Set(prefix+"[price_data][product_data][name]", line.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(line.UnitPrice, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(line.Quantity))
	}

	var out sessionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &out); err != nil {
		return nil, err
	}
	return &paymentdomain.CheckoutSession{ID: out.ID, URL: out.URL}, nil
}

func (c *Client) RetrievePaymentIntent(ctx context.Context, id string) (*paymentdomain.PaymentIntent, error) {
	var out intentResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payment_intents/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &paymentdomain.PaymentIntent{ID: out.ID, Status: out.Status, Amount: out.Amount}, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Idempotency-Key", ulid.Make().String())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &paymentdomain.ProviderError{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &paymentdomain.ProviderError{StatusCode: resp.StatusCode, Message: err.Error()}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return &paymentdomain.ProviderError{
				StatusCode: resp.StatusCode,
				Code:       apiErr.Error.Code,
				Message:    apiErr.Error.Message,
			}
		}
		return &paymentdomain.ProviderError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &paymentdomain.ProviderError{StatusCode: resp.StatusCode, Message: "malformed response"}
	}
	return nil
}

func withOrderID(base, orderID string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "order_id=" + url.QueryEscape(orderID)
}

// Unconfigured is the gateway used when no Stripe secret key is set.
type Unconfigured struct{}

func (Unconfigured) CreateCheckoutSession(context.Context, paymentdomain.CheckoutRequest) (*paymentdomain.CheckoutSession, error) {
	return nil, paymentdomain.ErrNotConfigured
}

func (Unconfigured) RetrievePaymentIntent(context.Context, string) (*paymentdomain.PaymentIntent, error) {
	return nil, paymentdomain.ErrNotConfigured
}
