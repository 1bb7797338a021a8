package vatlayer

import (
	"context"
	"fmt"
	"time"

	httpClient "github.com/vatgate/vatgate-api/internal/client/http"
	"github.com/vatgate/vatgate-api/internal/logger"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://apilayer.net"
	defaultTimeout = 10 * time.Second
)

// Client manages communication with the vatlayer VAT validation API.
type Client struct {
	accessKey  string
	httpClient *httpClient.HTTPClient
}

// ClientOption modifies the Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient.NewHTTPClient(
			httpClient.WithBaseURL(baseURL),
			httpClient.WithTimeout(defaultTimeout),
		)
	}
}

// NewClient creates a new vatlayer API client. Lookups are a single attempt:
// a failed call surfaces as a technical error and is never retried here.
func NewClient(accessKey string, options ...ClientOption) *Client {
	client := &Client{
		accessKey: accessKey,
		httpClient: httpClient.NewHTTPClient(
			httpClient.WithBaseURL(defaultBaseURL),
			httpClient.WithTimeout(defaultTimeout),
		),
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// ValidationResponse matches the JSON returned by the validate endpoint.
type ValidationResponse struct {
	Valid       bool   `json:"valid"`
	FormatValid bool   `json:"format_valid"`
	Query       string `json:"query"`
	CountryCode string `json:"country_code"`
	VATNumber   string `json:"vat_number"`
	CompanyName string `json:"company_name"`
	Database    string `json:"database"`
}

// apiError is vatlayer's in-band error envelope, returned with status 200.
type apiError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

type validationEnvelope struct {
	ValidationResponse
	Success *bool     `json:"success,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

// Validate checks a VAT number against the registry and returns its verdict
// together with the registered company name.
func (c *Client) Validate(ctx context.Context, vatNumber string) (*ValidationResponse, error) {
	if vatNumber == "" {
		return nil, fmt.Errorf("vatNumber cannot be empty")
	}

	resp, err := c.httpClient.Get(ctx, "/api/validate",
		httpClient.WithQueryParam("access_key", c.accessKey),
		httpClient.WithQueryParam("vat_number", vatNumber),
	)
	if err != nil {
		logger.Error("vatlayer request failed", zap.String("vat_number", vatNumber), zap.Error(err))
		return nil, fmt.Errorf("failed to validate VAT number: %w", err)
	}

	var envelope validationEnvelope
	if err := c.httpClient.ProcessJSONResponse(resp, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode vatlayer response: %w", err)
	}

	// vatlayer reports API-level failures with a 200 status and an error
	// envelope, so a decoded body can still be a failure.
	if envelope.Error != nil {
		logger.Error("vatlayer returned an API error",
			zap.Int("code", envelope.Error.Code),
			zap.String("type", envelope.Error.Type))
		return nil, fmt.Errorf("vatlayer API error %d: %s", envelope.Error.Code, envelope.Error.Info)
	}

	result := envelope.ValidationResponse
	return &result, nil
}
