package checkout

import (
	"strconv"
	"strings"

	"github.com/vatgate/vatgate-api/internal/constants"
	"go.uber.org/zap"
)

// Engine is the reconciliation state machine. One transition function
// consumes an event and produces the next state plus the side effects the
// caller must execute. All validation and exemption rules live here.
type Engine struct {
	homeCountry string
	logger      *zap.Logger
}

// NewEngine creates a reconciliation engine. homeCountry is the merchant's
// own jurisdiction; a VAT number from it never grants exemption.
func NewEngine(homeCountry string, logger *zap.Logger) *Engine {
	if homeCountry == "" {
		homeCountry = constants.DefaultHomeCountryCode
	}
	return &Engine{homeCountry: homeCountry, logger: logger}
}

// HomeCountry returns the configured home jurisdiction code.
func (e *Engine) HomeCountry() string {
	return e.homeCountry
}

// Transition applies one event to the session state and returns the updated
// state along with the commands to execute. The input state is not modified.
func (e *Engine) Transition(s State, ev Event) (State, []Command) {
	var cmds []Command

	switch ev := ev.(type) {
	case SessionStarted:
		s.CustomerID = ev.CustomerID
		s.ShippingCompany = ev.ShippingCompany
		s.ShippingCountry = ev.ShippingCountryCode
		s.Phase = PhaseIdle
		if ev.CustomerID != "" {
			cmds = append(cmds, FetchCustomerRecord{CustomerID: ev.CustomerID})
		}

	case RemoteFetchCompleted:
		s.RemoteFetched = true
		if ev.Err != nil {
			// A failed fetch behaves as "no stored record": logged, swallowed,
			// and the shopper proceeds with unvalidated state.
			e.logger.Warn("Customer record fetch failed, proceeding without stored record",
				zap.String("customer_id", s.CustomerID),
				zap.Error(ev.Err))
			return s, cmds
		}
		s.StoredVATNumber = ev.VATNumber
		s.StoredTaxExempt = ev.TaxExempt
		if ev.VATNumber != "" {
			// A stored number was validated when it was persisted, so seeding
			// does not trigger a fresh lookup.
			s.LastKnownVATNumber = ev.VATNumber
			s.BusinessUser = true
			s.VATNumber = ev.VATNumber
			s.FormatValid = MatchesVATFormat(ev.VATNumber)
			s.LastValidated = ev.VATNumber
			s.Valid = true
			s.TaxExempt = ev.TaxExempt
			s.NativeJurisdiction = strings.EqualFold(s.ShippingCountry, e.homeCountry)
			s.Phase = PhaseValid
		}

	case BusinessUserToggled:
		if ev.Enabled == s.BusinessUser {
			return s, cmds
		}
		s.BusinessUser = ev.Enabled
		cmds = append(cmds, ApplyAttribute{Key: constants.AttributeBusinessUser, Value: strconv.FormatBool(ev.Enabled)})
		if !ev.Enabled {
			cmds = e.disableBusinessUser(&s, cmds)
		} else {
			cmds = e.enableBusinessUser(&s, cmds)
		}

	case InputChanged:
		cmds = e.applyInput(&s, ev, cmds)

	case ShippingChanged:
		companyChanged := ev.Company != s.ShippingCompany
		s.ShippingCompany = ev.Company
		s.ShippingCountry = ev.CountryCode
		if companyChanged {
			// The company name is part of what a lookup verifies, so changing
			// it makes the previous validation stale.
			s.LastValidated = ""
			cmds = e.maybeLookup(&s, cmds)
		}
		if s.Valid && s.Phase == PhaseValid {
			cmds = e.deriveExemption(&s, cmds, true)
		}

	case LookupCompleted:
		cmds = e.applyLookupResult(&s, ev, cmds)
	}

	return s, cmds
}

func (e *Engine) applyInput(s *State, ev InputChanged, cmds []Command) []Command {
	switch ev.Field {
	case FieldVATNumber:
		if !s.BusinessUser {
			// A VAT number is only meaningful for business users; never
			// record or validate one otherwise.
			return cmds
		}
		s.VATNumber = ev.Value
		s.FormatValid = MatchesVATFormat(ev.Value)
		cmds = append(cmds, ApplyAttribute{Key: constants.AttributeVATNumber, Value: ev.Value})
		if !s.FormatValid {
			if ev.Value == "" {
				s.Phase = PhaseIdle
			} else {
				s.Phase = PhaseFormatInvalid
			}
			return cmds
		}
		cmds = e.maybeLookup(s, cmds)

	case FieldInvoiceEmail:
		s.InvoiceEmail = ev.Value
		if MatchesEmailFormat(ev.Value) {
			s.EmailMessageKey = ""
		} else {
			s.EmailMessageKey = MsgMail
		}
		cmds = append(cmds, ApplyAttribute{Key: constants.AttributeBillingMail, Value: ev.Value})

	case FieldReference:
		s.Reference = ev.Value
		cmds = append(cmds, ApplyAttribute{Key: constants.AttributeNote, Value: ev.Value})
	}
	return cmds
}

func (e *Engine) disableBusinessUser(s *State, cmds []Command) []Command {
	hadStored := s.StoredVATNumber != ""
	s.VATNumber = ""
	s.FormatValid = false
	s.Valid = false
	s.TaxExempt = false
	s.NativeJurisdiction = false
	s.LastValidated = ""
	s.MessageKey = ""
	s.MessageInfo = false
	s.Phase = PhaseIdle
	if s.CustomerID != "" && hadStored {
		// The record still carries a VAT number; clear it right away.
		empty := ""
		cmds = append(cmds, PersistCustomer{
			CustomerID: s.CustomerID,
			TaxExempt:  false,
			Options:    PersistOptions{VATNumber: &empty},
		})
		s.StoredVATNumber = ""
		s.StoredTaxExempt = false
	}
	return cmds
}

func (e *Engine) enableBusinessUser(s *State, cmds []Command) []Command {
	if s.CustomerID == "" || s.LastKnownVATNumber == "" {
		return cmds
	}
	s.VATNumber = s.LastKnownVATNumber
	s.FormatValid = MatchesVATFormat(s.VATNumber)
	if s.VATNumber == s.StoredVATNumber {
		// The record still holds this number, so its stored verdict stands.
		s.LastValidated = s.VATNumber
		s.Valid = true
		s.TaxExempt = s.StoredTaxExempt
		s.Phase = PhaseValid
		return cmds
	}
	// The record no longer matches (e.g. it was cleared by a toggle-off), so
	// the restored number must be validated again.
	s.LastValidated = ""
	return e.maybeLookup(s, cmds)
}

// maybeLookup issues a registry lookup only on a meaningful change: format
// must match, a shipping company must be present, and the number must differ
// from the one the last lookup was issued for. This keeps validation
// edge-triggered instead of firing on every keystroke.
func (e *Engine) maybeLookup(s *State, cmds []Command) []Command {
	if !s.BusinessUser || !s.FormatValid || s.ShippingCompany == "" || s.VATNumber == s.LastValidated {
		return cmds
	}
	s.Phase = PhasePendingLookup
	s.LastValidated = s.VATNumber
	s.MessageKey = ""
	s.MessageInfo = false
	return append(cmds, LookupVAT{VATNumber: s.VATNumber})
}

func (e *Engine) applyLookupResult(s *State, ev LookupCompleted, cmds []Command) []Command {
	if ev.VATNumber != s.VATNumber {
		// A late response for a number the shopper has since edited away must
		// not overwrite newer state.
		e.logger.Debug("Discarding stale lookup result",
			zap.String("looked_up", ev.VATNumber),
			zap.String("current", s.VATNumber))
		return cmds
	}

	if ev.Err != nil {
		// Optimistic failure handling: the previous verdict is retained, only
		// a technical message is surfaced. Clearing LastValidated lets the
		// next meaningful change retry the same number.
		e.logger.Error("VAT lookup failed",
			zap.String("vat_number", ev.VATNumber),
			zap.Error(ev.Err))
		s.Phase = PhaseLookupFailed
		s.MessageKey = MsgTechnical
		s.MessageInfo = false
		s.LastValidated = ""
		return cmds
	}

	if !ev.Valid {
		s.Phase = PhaseRejected
		s.Valid = false
		s.TaxExempt = false
		s.NativeJurisdiction = false
		s.MessageKey = MsgInvalid
		s.MessageInfo = false
		return e.persistAfterLookup(s, cmds, false)
	}

	if !CompanyNamesMatch(s.ShippingCompany, ev.CompanyName) {
		e.logger.Info("Company name mismatch",
			zap.String("vat_number", ev.VATNumber),
			zap.String("shipping_company", s.ShippingCompany),
			zap.String("registry_company", ev.CompanyName))
		s.Phase = PhaseRejected
		s.Valid = false
		s.TaxExempt = false
		s.NativeJurisdiction = false
		s.MessageKey = MsgCompanyName
		s.MessageInfo = false
		return e.persistAfterLookup(s, cmds, false)
	}

	s.Valid = true
	s.Phase = PhaseValid
	return e.deriveExemption(s, cmds, true)
}

// deriveExemption computes the exemption verdict for a valid number and
// persists the record when the derived state drifted from the snapshot.
func (e *Engine) deriveExemption(s *State, cmds []Command, includeContact bool) []Command {
	if strings.EqualFold(s.ShippingCountry, e.homeCountry) {
		// Valid number, but the merchant's own jurisdiction never grants
		// exemption. Informational message, not an error.
		s.TaxExempt = false
		s.NativeJurisdiction = true
		s.MessageKey = MsgValidNative
		s.MessageInfo = true
	} else {
		s.TaxExempt = true
		s.NativeJurisdiction = false
		s.MessageKey = ""
		s.MessageInfo = false
	}
	return e.persistAfterLookup(s, cmds, includeContact)
}

// persistAfterLookup requests a customer write when the derived state differs
// from the last known remote snapshot. Anonymous sessions are never
// persisted; their state lives in order attributes only.
func (e *Engine) persistAfterLookup(s *State, cmds []Command, includeContact bool) []Command {
	if s.CustomerID == "" {
		return cmds
	}
	if s.VATNumber == s.StoredVATNumber && s.TaxExempt == s.StoredTaxExempt {
		return cmds
	}

	opts := PersistOptions{}
	if s.VATNumber != s.StoredVATNumber {
		v := s.VATNumber
		opts.VATNumber = &v
	}
	if includeContact && s.InvoiceEmail != "" && s.EmailMessageKey == "" {
		v := s.InvoiceEmail
		opts.InvoiceEmail = &v
	}
	if includeContact && s.Reference != "" {
		v := s.Reference
		opts.Reference = &v
	}

	cmds = append(cmds, PersistCustomer{
		CustomerID: s.CustomerID,
		TaxExempt:  s.TaxExempt,
		Options:    opts,
	})

	// Last-writer-wins: the snapshot tracks what we just wrote so identical
	// follow-up results skip the write.
	s.StoredVATNumber = s.VATNumber
	s.StoredTaxExempt = s.TaxExempt
	s.LastKnownVATNumber = s.VATNumber
	return cmds
}
