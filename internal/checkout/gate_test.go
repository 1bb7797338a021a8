package checkout_test

import (
	"testing"

	"github.com/vatgate/vatgate-api/internal/checkout"

	"github.com/stretchr/testify/assert"
)

func TestDecideAdvance(t *testing.T) {
	tests := []struct {
		name             string
		state            checkout.State
		canBlockProgress bool
		wantBehavior     checkout.Behavior
		wantMessageKey   string
	}{
		{
			name:             "empty session allowed",
			state:            checkout.State{},
			canBlockProgress: true,
			wantBehavior:     checkout.BehaviorAllow,
		},
		{
			name: "malformed number blocks",
			state: checkout.State{
				BusinessUser: true,
				VATNumber:    "DE12",
				FormatValid:  false,
			},
			canBlockProgress: true,
			wantBehavior:     checkout.BehaviorBlock,
			wantMessageKey:   checkout.MsgFormat,
		},
		{
			name: "empty field never blocks",
			state: checkout.State{
				BusinessUser: true,
				VATNumber:    "",
				FormatValid:  false,
			},
			canBlockProgress: true,
			wantBehavior:     checkout.BehaviorAllow,
		},
		{
			name: "unchecked box never blocks",
			state: checkout.State{
				BusinessUser: false,
				VATNumber:    "DE12",
				FormatValid:  false,
			},
			canBlockProgress: true,
			wantBehavior:     checkout.BehaviorAllow,
		},
		{
			name: "exempt anonymous shopper blocks on login",
			state: checkout.State{
				BusinessUser: true,
				VATNumber:    "DE123456789",
				FormatValid:  true,
				Valid:        true,
				TaxExempt:    true,
			},
			canBlockProgress: true,
			wantBehavior:     checkout.BehaviorBlock,
			wantMessageKey:   checkout.MsgLogin,
		},
		{
			name: "exempt logged-in shopper allowed",
			state: checkout.State{
				BusinessUser: true,
				VATNumber:    "DE123456789",
				FormatValid:  true,
				CustomerID:   "gid://shopify/Customer/7",
				Valid:        true,
				TaxExempt:    true,
			},
			canBlockProgress: true,
			wantBehavior:     checkout.BehaviorAllow,
		},
		{
			name: "valid native shopper allowed anonymously",
			state: checkout.State{
				BusinessUser:       true,
				VATNumber:          "NL123456789B01",
				FormatValid:        true,
				Valid:              true,
				TaxExempt:          false,
				NativeJurisdiction: true,
			},
			canBlockProgress: true,
			wantBehavior:     checkout.BehaviorAllow,
		},
		{
			name: "host cannot block",
			state: checkout.State{
				BusinessUser: true,
				VATNumber:    "DE12",
				FormatValid:  false,
			},
			canBlockProgress: false,
			wantBehavior:     checkout.BehaviorAllow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := checkout.DecideAdvance(tt.state, tt.canBlockProgress)
			assert.Equal(t, tt.wantBehavior, decision.Behavior)
			assert.Equal(t, tt.wantMessageKey, decision.MessageKey)
			if tt.wantBehavior == checkout.BehaviorBlock {
				assert.NotEmpty(t, decision.Reason)
			} else {
				assert.Empty(t, decision.Reason)
			}
		})
	}
}
