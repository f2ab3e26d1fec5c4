package pix

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

	"github.com/agendahub/agendahub/pkg/qrcode"
)

// Client talks to the PIX payment provider's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a PIX provider client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}, nil
}

// CreatePayment registers a PIX charge and returns its QR code payload.
// When the provider response carries a brCode but no rendered image, the
// image is generated locally so callers always get a displayable QR.
func (c *Client) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.Customer.Name == "" || req.Customer.Cellphone == "" ||
		req.Customer.Email == "" || req.Customer.TaxID == "" {
		return nil, ErrMissingCustomerData
	}

	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/pixQrCode", req, &payment); err != nil {
		return nil, err
	}

	if payment.BRCodeBase64 == "" && payment.BRCode != "" {
		if img, err := qrcode.GenerateBase64Image(payment.BRCode, 0); err == nil {
			payment.BRCodeBase64 = img
		}
	}

	return &payment, nil
}

// GetPaymentStatus fetches the current status of a charge.
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*Payment, error) {
	if paymentID == "" {
		return nil, ErrPaymentNotFound
	}

	var payment Payment
	err := c.do(ctx, http.MethodGet, "/pixQrCode/check?id="+url.QueryEscape(paymentID), nil, &payment)
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// providerError is the provider's error response envelope.
type providerError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Join(ErrRequestFailed, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrPaymentNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var perr providerError
		if json.Unmarshal(raw, &perr) == nil && (perr.Error != "" || perr.Message != "") {
			msg := perr.Message
			if msg == "" {
				msg = perr.Error
			}
			return errors.Join(ErrProviderError, fmt.Errorf("status %d: %s", resp.StatusCode, msg))
		}
		return errors.Join(ErrProviderError, fmt.Errorf("status %d", resp.StatusCode))
	}

	// Some provider endpoints wrap the payload in {"data": ...}; accept both.
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(raw, &envelope) == nil && len(envelope.Data) > 0 {
		raw = envelope.Data
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Join(ErrRequestFailed, err)
	}

	return nil
}
