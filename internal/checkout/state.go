package checkout

// Field identifies a shopper-editable widget field.
type Field string

const (
	FieldBusinessUser Field = "business_user"
	FieldVATNumber    Field = "vat_number"
	FieldInvoiceEmail Field = "invoice_email"
	FieldReference    Field = "reference"
)

// Phase tracks where the session's VAT number is in its validation lifecycle.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseFormatInvalid Phase = "format_invalid"
	PhasePendingLookup Phase = "pending_lookup"
	PhaseValid         Phase = "valid"
	PhaseRejected      Phase = "rejected"
	PhaseLookupFailed  Phase = "lookup_failed"
)

// Translation keys for shopper-facing messages. The engine stores keys only;
// the HTTP layer resolves them through the translator.
const (
	MsgFormat      = "error_format"
	MsgInvalid     = "error_invalid"
	MsgCompanyName = "error_company_name"
	MsgValidNative = "error_valid_native"
	MsgMail        = "error_mail"
	MsgTechnical   = "error_technical"
	MsgLogin       = "error_login"
)

// State is the complete reconciliation state of one checkout session. It is
// a value: Transition returns an updated copy and never mutates its input.
type State struct {
	// Shopper input
	BusinessUser bool
	VATNumber    string
	InvoiceEmail string
	Reference    string

	// Session environment
	CustomerID      string // empty for anonymous shoppers
	ShippingCompany string
	ShippingCountry string

	// Last known remote customer record snapshot
	RemoteFetched   bool
	StoredVATNumber string
	StoredTaxExempt bool

	// LastKnownVATNumber survives a toggle-off that clears the remote record,
	// so toggling business-user back on can restore the number.
	LastKnownVATNumber string

	// Derived validation state
	Phase              Phase
	FormatValid        bool
	LastValidated      string // VAT number the most recent lookup was issued for
	Valid              bool
	TaxExempt          bool
	NativeJurisdiction bool

	// Shopper-facing messages (translation keys)
	MessageKey      string
	MessageInfo     bool // message is informational, not an error
	EmailMessageKey string
}

// LoginRequired reports whether the session is tax exempt but anonymous, in
// which case the shopper must log in before the order may advance.
func (s State) LoginRequired() bool {
	return s.Valid && s.TaxExempt && s.CustomerID == ""
}

// Event is a discrete input to the reconciliation engine.
type Event interface {
	isEvent()
}

// SessionStarted opens a session with the host-provided environment.
type SessionStarted struct {
	CustomerID          string
	ShippingCompany     string
	ShippingCountryCode string
}

// InputChanged carries one shopper keystroke-level field change.
type InputChanged struct {
	Field Field
	Value string
}

// BusinessUserToggled flips the business-user checkbox.
type BusinessUserToggled struct {
	Enabled bool
}

// ShippingChanged carries a host-originated shipping address update.
type ShippingChanged struct {
	Company     string
	CountryCode string
}

// RemoteFetchCompleted delivers the result of a customer record fetch.
type RemoteFetchCompleted struct {
	VATNumber string
	TaxExempt bool
	Err       error
}

// LookupCompleted delivers the result of a VAT registry lookup. VATNumber is
// the number the lookup was issued for; results for a number the shopper has
// since edited away are discarded.
type LookupCompleted struct {
	VATNumber   string
	Valid       bool
	CompanyName string
	Err         error
}

func (SessionStarted) isEvent()       {}
func (InputChanged) isEvent()         {}
func (BusinessUserToggled) isEvent()  {}
func (ShippingChanged) isEvent()      {}
func (RemoteFetchCompleted) isEvent() {}
func (LookupCompleted) isEvent()      {}

// Command is a side effect requested by a transition. The engine never
// performs effects itself; the session service executes them.
type Command interface {
	isCommand()
}

// FetchCustomerRecord asks for the stored customer record.
type FetchCustomerRecord struct {
	CustomerID string
}

// LookupVAT asks the VAT registry to validate a number.
type LookupVAT struct {
	VATNumber string
}

// PersistOptions enumerates the optional fields of a customer write. A nil
// field is left untouched remotely; a pointer to the empty string clears it.
type PersistOptions struct {
	VATNumber    *string
	InvoiceEmail *string
	Reference    *string
}

// PersistCustomer writes the customer record. Best effort: failures are
// logged and never block the checkout gate.
type PersistCustomer struct {
	CustomerID string
	TaxExempt  bool
	Options    PersistOptions
}

// ApplyAttribute forwards a named key/value attribute to the order.
type ApplyAttribute struct {
	Key   string
	Value string
}

func (FetchCustomerRecord) isCommand() {}
func (LookupVAT) isCommand()           {}
func (PersistCustomer) isCommand()     {}
func (ApplyAttribute) isCommand()      {}
