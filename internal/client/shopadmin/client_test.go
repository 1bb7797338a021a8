package shopadmin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vatgate/vatgate-api/internal/auth"
	"github.com/vatgate/vatgate-api/internal/client/shopadmin"
	"github.com/vatgate/vatgate-api/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger()
}

type capturedRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func newAdminServer(t *testing.T, handler func(req capturedRequest) string) (*httptest.Server, *shopadmin.AdminClient, string) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2023-04/graphql.json", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Shopify-Access-Token"))

		var req capturedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(handler(req)))
	}))

	domain := server.Listener.Addr().String()
	client := shopadmin.NewAdminClient(
		auth.StaticTokenProvider{domain: "test-token"},
		shopadmin.WithScheme("http"),
	)
	return server, client, domain
}

func TestAdminClient_GetCustomerTaxProfile(t *testing.T) {
	server, client, domain := newAdminServer(t, func(req capturedRequest) string {
		assert.Contains(t, req.Query, "customerTaxProfile")
		assert.Equal(t, "gid://shopify/Customer/7", req.Variables["id"])
		return `{
			"data": {
				"customer": {
					"id": "gid://shopify/Customer/7",
					"taxExempt": true,
					"metafield": {"namespace": "sufio", "key": "vat_number", "value": "DE123456789"}
				}
			}
		}`
	})
	defer server.Close()

	profile, err := client.GetCustomerTaxProfile(context.Background(), domain, "gid://shopify/Customer/7")
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Customer/7", profile.CustomerID)
	assert.Equal(t, "DE123456789", profile.VATNumber)
	assert.True(t, profile.TaxExempt)
}

func TestAdminClient_GetCustomerTaxProfile_NoMetafield(t *testing.T) {
	server, client, domain := newAdminServer(t, func(req capturedRequest) string {
		return `{
			"data": {
				"customer": {
					"id": "gid://shopify/Customer/7",
					"taxExempt": false,
					"metafield": null
				}
			}
		}`
	})
	defer server.Close()

	profile, err := client.GetCustomerTaxProfile(context.Background(), domain, "gid://shopify/Customer/7")
	require.NoError(t, err)
	assert.Empty(t, profile.VATNumber)
	assert.False(t, profile.TaxExempt)
}

func TestAdminClient_GetCustomerTaxProfile_NotFound(t *testing.T) {
	server, client, domain := newAdminServer(t, func(req capturedRequest) string {
		return `{"data": {"customer": null}}`
	})
	defer server.Close()

	_, err := client.GetCustomerTaxProfile(context.Background(), domain, "gid://shopify/Customer/404")
	assert.Error(t, err)
}

func TestAdminClient_GetCustomerTaxProfile_QueryError(t *testing.T) {
	server, client, domain := newAdminServer(t, func(req capturedRequest) string {
		return `{"errors": [{"message": "access denied"}]}`
	})
	defer server.Close()

	_, err := client.GetCustomerTaxProfile(context.Background(), domain, "gid://shopify/Customer/7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestAdminClient_UpdateCustomerTaxProfile(t *testing.T) {
	var captured capturedRequest
	server, client, domain := newAdminServer(t, func(req capturedRequest) string {
		captured = req
		return `{
			"data": {
				"customerUpdate": {
					"customer": {"id": "gid://shopify/Customer/7", "taxExempt": true},
					"userErrors": []
				}
			}
		}`
	})
	defer server.Close()

	vat := "DE123456789"
	mail := "invoices@example.com"
	err := client.UpdateCustomerTaxProfile(context.Background(), domain, "gid://shopify/Customer/7", true, shopadmin.UpdateOptions{
		VATNumber:    &vat,
		InvoiceEmail: &mail,
	})
	require.NoError(t, err)

	assert.Contains(t, captured.Query, "customerTaxProfileUpdate")
	input, ok := captured.Variables["input"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "gid://shopify/Customer/7", input["id"])
	assert.Equal(t, true, input["taxExempt"])

	metafields, ok := input["metafields"].([]interface{})
	require.True(t, ok)
	require.Len(t, metafields, 2)

	first, ok := metafields[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "sufio", first["namespace"])
	assert.Equal(t, "vat_number", first["key"])
	assert.Equal(t, "DE123456789", first["value"])

	second, ok := metafields[1].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "business", second["namespace"])
	assert.Equal(t, "invoice_mail", second["key"])
	assert.Equal(t, "invoices@example.com", second["value"])
}

func TestAdminClient_UpdateCustomerTaxProfile_NoOptionalFields(t *testing.T) {
	var captured capturedRequest
	server, client, domain := newAdminServer(t, func(req capturedRequest) string {
		captured = req
		return `{"data": {"customerUpdate": {"customer": {"id": "x", "taxExempt": false}, "userErrors": []}}}`
	})
	defer server.Close()

	err := client.UpdateCustomerTaxProfile(context.Background(), domain, "gid://shopify/Customer/7", false, shopadmin.UpdateOptions{})
	require.NoError(t, err)

	input, ok := captured.Variables["input"].(map[string]interface{})
	require.True(t, ok)
	_, hasMetafields := input["metafields"]
	assert.False(t, hasMetafields)
}

func TestAdminClient_UpdateCustomerTaxProfile_UserErrorsSwallowed(t *testing.T) {
	server, client, domain := newAdminServer(t, func(req capturedRequest) string {
		return `{
			"data": {
				"customerUpdate": {
					"customer": null,
					"userErrors": [{"field": ["metafields"], "message": "value is too long"}]
				}
			}
		}`
	})
	defer server.Close()

	// Field-level user errors are logged, not returned: the write is best
	// effort and never surfaces to the shopper.
	err := client.UpdateCustomerTaxProfile(context.Background(), domain, "gid://shopify/Customer/7", true, shopadmin.UpdateOptions{})
	assert.NoError(t, err)
}

func TestAdminClient_MissingToken(t *testing.T) {
	client := shopadmin.NewAdminClient(auth.StaticTokenProvider{})

	_, err := client.GetCustomerTaxProfile(context.Background(), "unknown.myshopify.com", "gid://shopify/Customer/7")
	assert.Error(t, err)
}
