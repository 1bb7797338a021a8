package vatlayer

import "context"

// VatClientInterface defines the interface for VAT registry lookups
type VatClientInterface interface {
	Validate(ctx context.Context, vatNumber string) (*ValidationResponse, error)
}

// Ensure Client implements the interface
var _ VatClientInterface = (*Client)(nil)
