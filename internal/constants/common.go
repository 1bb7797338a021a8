package constants

// Deployment stages
const (
	ProdEnvironment = "production"
	DevEnvironment  = "development"
)

// DefaultHomeCountryCode is the merchant's own jurisdiction. A VAT number
// from this country is never tax exempt, however valid it is.
const DefaultHomeCountryCode = "NL"

// AdminAPIVersion pins the storefront admin GraphQL API version used for
// customer reads and writes.
const AdminAPIVersion = "2023-04"

// Order attribute keys forwarded to the checkout host on every field change.
const (
	AttributeBusinessUser = "Business user"
	AttributeVATNumber    = "VAT Registration Number"
	AttributeBillingMail  = "Billing Mail"
	AttributeNote         = "Note"
)
