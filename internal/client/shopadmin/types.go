package shopadmin

// Metafield namespaces and keys used on the customer record.
const (
	MetafieldNamespaceVAT      = "sufio"
	MetafieldKeyVATNumber      = "vat_number"
	MetafieldNamespaceBusiness = "business"
	MetafieldKeyInvoiceMail    = "invoice_mail"
	MetafieldKeyReference      = "reference"

	metafieldTypeSingleLineText = "single_line_text_field"
)

// CustomerTaxProfile is the slice of the remote customer record this service
// cares about. An empty VATNumber means no number is stored.
type CustomerTaxProfile struct {
	CustomerID string
	VATNumber  string
	TaxExempt  bool
}

// UpdateOptions enumerates the optional fields of a customer update. A nil
// field is omitted from the mutation entirely; a pointer to the empty string
// clears the stored value.
type UpdateOptions struct {
	VATNumber    *string
	InvoiceEmail *string
	Reference    *string
}

// graphQLRequest is the admin API request envelope.
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type metafieldNode struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

type customerQueryResponse struct {
	Data struct {
		Customer *struct {
			ID        string         `json:"id"`
			TaxExempt bool           `json:"taxExempt"`
			Metafield *metafieldNode `json:"metafield"`
		} `json:"customer"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type customerUpdateResponse struct {
	Data struct {
		CustomerUpdate *struct {
			Customer *struct {
				ID        string `json:"id"`
				TaxExempt bool   `json:"taxExempt"`
			} `json:"customer"`
			UserErrors []userError `json:"userErrors"`
		} `json:"customerUpdate"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type metafieldInput struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}
