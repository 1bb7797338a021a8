package checkout_test

import (
	"testing"

	"github.com/vatgate/vatgate-api/internal/checkout"

	"github.com/stretchr/testify/assert"
)

func TestMatchesVATFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "belgian number", input: "BE0123456789", want: true},
		{name: "belgian number lowercase", input: "be0123456789", want: true},
		{name: "belgian number without zero prefix", input: "BE123456789", want: false},
		{name: "dutch number", input: "NL123456789B01", want: true},
		{name: "dutch number lowercase b", input: "nl123456789b01", want: true},
		{name: "dutch number missing b suffix", input: "NL12345678901", want: false},
		{name: "german number", input: "DE123456789", want: true},
		{name: "german number too short", input: "DE12345678", want: false},
		{name: "german number too long", input: "DE1234567890", want: false},
		{name: "unsupported country", input: "FR12345678901", want: false},
		{name: "empty", input: "", want: false},
		{name: "leading whitespace", input: " DE123456789", want: false},
		{name: "trailing garbage", input: "DE123456789x", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkout.MatchesVATFormat(tt.input))
		})
	}
}

func TestMatchesEmailFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "empty is allowed", input: "", want: true},
		{name: "plain address", input: "invoices@example.com", want: true},
		{name: "subdomain", input: "billing@finance.example.co", want: true},
		{name: "dots and dashes in local part", input: "jan.de-vries@example.nl", want: true},
		{name: "missing at sign", input: "invoices.example.com", want: false},
		{name: "missing tld", input: "invoices@example", want: false},
		{name: "tld too long", input: "invoices@example.museum", want: false},
		{name: "spaces", input: "invoices @example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkout.MatchesEmailFormat(tt.input))
		})
	}
}

func TestCompanyNamesMatch(t *testing.T) {
	tests := []struct {
		name     string
		shipping string
		registry string
		want     bool
	}{
		{name: "identical", shipping: "Acme Trading", registry: "Acme Trading", want: true},
		{name: "case differs", shipping: "ACME TRADING", registry: "acme trading", want: true},
		{name: "punctuation stripped", shipping: "Acme Trading B.V.", registry: "Acme Trading BV", want: true},
		{name: "legal suffix noise", shipping: "ACME B.V.", registry: "acme bv", want: true},
		{name: "different company", shipping: "ACME", registry: "Totally Different Co", want: false},
		{name: "entirely different", shipping: "Acme Trading", registry: "Globex Corporation", want: false},
		{name: "shared prefix only", shipping: "Acme Trading International Holding", registry: "Acme", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkout.CompanyNamesMatch(tt.shipping, tt.registry))
		})
	}
}
