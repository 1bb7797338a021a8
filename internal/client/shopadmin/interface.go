package shopadmin

import "context"

// AdminClientInterface defines the interface for storefront admin operations
type AdminClientInterface interface {
	// Customer record
	GetCustomerTaxProfile(ctx context.Context, storefrontDomain, customerID string) (*CustomerTaxProfile, error)
	UpdateCustomerTaxProfile(ctx context.Context, storefrontDomain, customerID string, taxExempt bool, opts UpdateOptions) error
}

// Ensure AdminClient implements the interface
var _ AdminClientInterface = (*AdminClient)(nil)
