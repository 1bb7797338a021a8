package shopadmin

import (
	"context"
	"fmt"
	"time"

	"github.com/vatgate/vatgate-api/internal/auth"
	httpClient "github.com/vatgate/vatgate-api/internal/client/http"
	"github.com/vatgate/vatgate-api/internal/constants"
	"github.com/vatgate/vatgate-api/internal/logger"

	"go.uber.org/zap"
)

const customerTaxProfileQuery = `
query customerTaxProfile($id: ID!) {
  customer(id: $id) {
    id
    taxExempt
    metafield(namespace: "sufio", key: "vat_number") {
      namespace
      key
      value
    }
  }
}`

const customerUpdateMutation = `
mutation customerTaxProfileUpdate($input: CustomerInput!) {
  customerUpdate(input: $input) {
    customer {
      id
      taxExempt
    }
    userErrors {
      field
      message
    }
  }
}`

// AdminClient talks to the storefront admin GraphQL API. Access tokens are
// scoped per storefront domain and resolved through the token provider on
// every call, so one client serves all storefronts.
type AdminClient struct {
	tokens     auth.AccessTokenProvider
	httpClient *httpClient.HTTPClient
	apiVersion string
	scheme     string
}

// ClientOption modifies the AdminClient.
type ClientOption func(*AdminClient)

// WithAPIVersion overrides the pinned admin API version.
func WithAPIVersion(version string) ClientOption {
	return func(c *AdminClient) {
		c.apiVersion = version
	}
}

// WithRetries enables retries on the underlying HTTP client. Only the DLQ
// processor uses this; checkout-path calls stay single attempt.
func WithRetries() ClientOption {
	return func(c *AdminClient) {
		c.httpClient = httpClient.NewHTTPClient(
			httpClient.WithTimeout(15*time.Second),
			httpClient.WithRetryConfig(httpClient.DefaultRetryConfig()),
		)
	}
}

// WithScheme overrides the https scheme of the admin endpoint. Used in tests
// against local fake endpoints.
func WithScheme(scheme string) ClientOption {
	return func(c *AdminClient) {
		c.scheme = scheme
	}
}

// NewAdminClient creates a new admin API client.
func NewAdminClient(tokens auth.AccessTokenProvider, options ...ClientOption) *AdminClient {
	client := &AdminClient{
		tokens: tokens,
		httpClient: httpClient.NewHTTPClient(
			httpClient.WithTimeout(15 * time.Second),
		),
		apiVersion: constants.AdminAPIVersion,
		scheme:     "https",
	}
	for _, option := range options {
		option(client)
	}
	return client
}

func (c *AdminClient) endpoint(storefrontDomain string) string {
	return fmt.Sprintf("%s://%s/admin/api/%s/graphql.json", c.scheme, storefrontDomain, c.apiVersion)
}

func (c *AdminClient) post(ctx context.Context, storefrontDomain string, req graphQLRequest, target interface{}) error {
	token, err := c.tokens.AccessToken(ctx, storefrontDomain)
	if err != nil {
		return fmt.Errorf("failed to resolve admin token: %w", err)
	}

	resp, err := c.httpClient.Post(ctx, c.endpoint(storefrontDomain), req,
		httpClient.WithHeader("X-Shopify-Access-Token", token),
	)
	if err != nil {
		return fmt.Errorf("admin API request failed: %w", err)
	}

	if err := c.httpClient.ProcessJSONResponse(resp, target); err != nil {
		return fmt.Errorf("failed to decode admin API response: %w", err)
	}
	return nil
}

// GetCustomerTaxProfile fetches the stored VAT number and tax exemption flag
// for a customer. A customer without the metafield yields an empty VATNumber.
func (c *AdminClient) GetCustomerTaxProfile(ctx context.Context, storefrontDomain, customerID string) (*CustomerTaxProfile, error) {
	var response customerQueryResponse
	err := c.post(ctx, storefrontDomain, graphQLRequest{
		Query:     customerTaxProfileQuery,
		Variables: map[string]interface{}{"id": customerID},
	}, &response)
	if err != nil {
		return nil, err
	}

	if len(response.Errors) > 0 {
		return nil, fmt.Errorf("admin API query error: %s", response.Errors[0].Message)
	}
	if response.Data.Customer == nil {
		return nil, fmt.Errorf("customer %s not found", customerID)
	}

	profile := &CustomerTaxProfile{
		CustomerID: response.Data.Customer.ID,
		TaxExempt:  response.Data.Customer.TaxExempt,
	}
	if response.Data.Customer.Metafield != nil {
		profile.VATNumber = response.Data.Customer.Metafield.Value
	}
	return profile, nil
}

// UpdateCustomerTaxProfile sets the customer's tax exemption flag and writes
// only the metafields present in opts. Field-level user errors are logged and
// swallowed: the write is best effort and its failure is never surfaced to
// the shopper.
func (c *AdminClient) UpdateCustomerTaxProfile(ctx context.Context, storefrontDomain, customerID string, taxExempt bool, opts UpdateOptions) error {
	input := map[string]interface{}{
		"id":        customerID,
		"taxExempt": taxExempt,
	}

	var metafields []metafieldInput
	if opts.VATNumber != nil {
		metafields = append(metafields, metafieldInput{
			Namespace: MetafieldNamespaceVAT,
			Key:       MetafieldKeyVATNumber,
			Value:     *opts.VATNumber,
			Type:      metafieldTypeSingleLineText,
		})
	}
	if opts.InvoiceEmail != nil {
		metafields = append(metafields, metafieldInput{
			Namespace: MetafieldNamespaceBusiness,
			Key:       MetafieldKeyInvoiceMail,
			Value:     *opts.InvoiceEmail,
			Type:      metafieldTypeSingleLineText,
		})
	}
	if opts.Reference != nil {
		metafields = append(metafields, metafieldInput{
			Namespace: MetafieldNamespaceBusiness,
			Key:       MetafieldKeyReference,
			Value:     *opts.Reference,
			Type:      metafieldTypeSingleLineText,
		})
	}
	if len(metafields) > 0 {
		input["metafields"] = metafields
	}

	var response customerUpdateResponse
	err := c.post(ctx, storefrontDomain, graphQLRequest{
		Query:     customerUpdateMutation,
		Variables: map[string]interface{}{"input": input},
	}, &response)
	if err != nil {
		return err
	}

	if len(response.Errors) > 0 {
		return fmt.Errorf("admin API mutation error: %s", response.Errors[0].Message)
	}
	if response.Data.CustomerUpdate != nil {
		for _, ue := range response.Data.CustomerUpdate.UserErrors {
			logger.Warn("Customer update reported a user error",
				zap.String("customer_id", customerID),
				zap.Strings("field", ue.Field),
				zap.String("message", ue.Message))
		}
	}
	return nil
}
