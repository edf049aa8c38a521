package paynow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

type Buyer struct {
	Email string `json:"email"`
}

type CreatePaymentRequest struct {
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	ExternalID      string `json:"externalId"`
	Description     string `json:"description"`
	Buyer           Buyer  `json:"buyer"`
	PaymentMethodID string `json:"paymentMethodId"`
	ContinueURL     string `json:"continueUrl,omitempty"`
}

// CreatePaymentResponse carries the synchronous half of payment creation.
// PaymentID may be empty on some gateway responses; that is not a decoding
// failure.
type CreatePaymentResponse struct {
	OK          bool
	StatusCode  int
	PaymentID   string
	RedirectURL string
}

type PaymentMethod struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type PaymentMethodGroup struct {
	Type           string          `json:"type"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
}

// Client talks to the paynow REST API. Calls are throttled and carry a
// bounded timeout so a slow processor cannot pile up goroutines.
type Client struct {
	Config     Config
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	BaseURL    string
}

func NewClient(cfg Config) *Client {
	return &Client{
		Config:     cfg,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Limiter:    rate.NewLimiter(rate.Limit(10), 20),
		BaseURL:    "https://" + cfg.Host(),
	}
}

// CreatePayment submits a payment-creation request. The body is signed with
// the signature key over the exact bytes sent, and the idempotency key makes
// network-level retries of one attempt safe.
func (c *Client) CreatePayment(ctx context.Context, req CreatePaymentRequest, idempotencyKey string) (CreatePaymentResponse, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return CreatePaymentResponse{}, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return CreatePaymentResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return CreatePaymentResponse{}, err
	}
	httpReq.Header.Set("Api-Key", c.Config.APIKey)
	httpReq.Header.Set("Signature", ComputeSignature([]byte(c.Config.SignatureKey), body))
	httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return CreatePaymentResponse{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return CreatePaymentResponse{}, err
	}

	var wire struct {
		PaymentID   string `json:"paymentId"`
		RedirectURL string `json:"redirectUrl"`
	}
	// error bodies are not JSON we care about; absent fields stay empty
	_ = json.Unmarshal(respBody, &wire)

	return CreatePaymentResponse{
		OK:          resp.StatusCode >= 200 && resp.StatusCode <= 299,
		StatusCode:  resp.StatusCode,
		PaymentID:   wire.PaymentID,
		RedirectURL: wire.RedirectURL,
	}, nil
}

// RefundPayment reverses a processor-side payment.
func (c *Client) RefundPayment(ctx context.Context, processorPaymentID string, amount int64, idempotencyKey string) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]int64{"amount": amount})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/payments/%s/refunds", c.BaseURL, processorPaymentID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Api-Key", c.Config.APIKey)
	httpReq.Header.Set("Signature", ComputeSignature([]byte(c.Config.SignatureKey), body))
	httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("paynow: refund of %s failed with status %d", processorPaymentID, resp.StatusCode)
	}
	return nil
}

// PaymentMethods lists the methods the processor currently offers, grouped
// the way the API returns them. Filtering by status is left to the caller.
func (c *Client) PaymentMethods(ctx context.Context) ([]PaymentMethodGroup, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v2/payments/paymentmethods", nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Api-Key", c.Config.APIKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("paynow: payment methods request failed with status %d", resp.StatusCode)
	}

	var groups []PaymentMethodGroup
	if err := json.NewDecoder(resp.Body).Decode(&groups); err != nil {
		return nil, err
	}
	return groups, nil
}
