package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/vatgate/vatgate-api/internal/checkout"
	"github.com/vatgate/vatgate-api/internal/client/shopadmin"
	"github.com/vatgate/vatgate-api/internal/client/vatlayer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one shopper's checkout VAT session. All event application is
// serialized through the session mutex; the engine itself is pure.
type Session struct {
	ID               uuid.UUID
	StorefrontDomain string
	CreatedAt        time.Time

	mu         sync.Mutex
	state      checkout.State
	attributes map[string]string
}

// AttributeChange is one order attribute update produced by an event.
type AttributeChange struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SessionSnapshot is a read-only copy of a session for the HTTP layer.
type SessionSnapshot struct {
	ID               uuid.UUID
	StorefrontDomain string
	State            checkout.State
	Attributes       map[string]string
	AttributeChanges []AttributeChange
}

// StartSessionParams carries the host-provided session environment.
type StartSessionParams struct {
	StorefrontDomain    string
	CustomerID          string
	ShippingCompany     string
	ShippingCountryCode string
}

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = fmt.Errorf("session not found")

// SessionService owns checkout sessions and drives the reconciliation engine:
// it applies events, executes the resulting commands against the remote
// gateways, and hands persistence off to the best-effort persister.
type SessionService struct {
	admin     shopadmin.AdminClientInterface
	vat       vatlayer.VatClientInterface
	engine    *checkout.Engine
	persister Persister
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewSessionService creates a new session service.
func NewSessionService(
	admin shopadmin.AdminClientInterface,
	vat vatlayer.VatClientInterface,
	engine *checkout.Engine,
	persister Persister,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		admin:     admin,
		vat:       vat,
		engine:    engine,
		persister: persister,
		logger:    logger,
		sessions:  make(map[uuid.UUID]*Session),
	}
}

// StartSession opens a session. When a customer ID is present the stored
// customer record is fetched and the session is seeded from it; a fetch
// failure is treated as "no stored record" by the engine.
func (s *SessionService) StartSession(ctx context.Context, params StartSessionParams) (*SessionSnapshot, error) {
	if params.StorefrontDomain == "" {
		return nil, fmt.Errorf("storefront domain is required")
	}

	sess := &Session{
		ID:               uuid.New(),
		StorefrontDomain: params.StorefrontDomain,
		CreatedAt:        time.Now(),
		attributes:       make(map[string]string),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Info("Checkout session started",
		zap.String("session_id", sess.ID.String()),
		zap.String("storefront_domain", params.StorefrontDomain),
		zap.Bool("authenticated", params.CustomerID != ""))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	changes := s.dispatch(ctx, sess, checkout.SessionStarted{
		CustomerID:          params.CustomerID,
		ShippingCompany:     params.ShippingCompany,
		ShippingCountryCode: params.ShippingCountryCode,
	})
	return s.snapshotLocked(sess, changes), nil
}

// ApplyFieldChange applies one field change to the session and returns the
// updated snapshot, including any attribute changes to forward to the order.
func (s *SessionService) ApplyFieldChange(ctx context.Context, sessionID uuid.UUID, field, value string) (*SessionSnapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	var ev checkout.Event
	switch checkout.Field(field) {
	case checkout.FieldBusinessUser:
		enabled, parseErr := strconv.ParseBool(value)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid business_user value %q: %w", value, parseErr)
		}
		ev = checkout.BusinessUserToggled{Enabled: enabled}
	case checkout.FieldVATNumber, checkout.FieldInvoiceEmail, checkout.FieldReference:
		ev = checkout.InputChanged{Field: checkout.Field(field), Value: value}
	default:
		switch field {
		case "shipping_company":
			ev = checkout.ShippingChanged{Company: value, CountryCode: sess.state.ShippingCountry}
		case "shipping_country_code":
			ev = checkout.ShippingChanged{Company: sess.state.ShippingCompany, CountryCode: value}
		default:
			return nil, fmt.Errorf("unknown field %q", field)
		}
	}

	changes := s.dispatch(ctx, sess, ev)
	return s.snapshotLocked(sess, changes), nil
}

// Advance runs the checkout gate against the session's current state and
// applies the decision's message side effect. The gate never validates; it
// only reads flags the engine already derived.
func (s *SessionService) Advance(ctx context.Context, sessionID uuid.UUID, canBlockProgress bool) (checkout.GateDecision, *SessionSnapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return checkout.GateDecision{}, nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	decision := checkout.DecideAdvance(sess.state, canBlockProgress)
	if decision.Behavior == checkout.BehaviorBlock {
		sess.state.MessageKey = decision.MessageKey
		sess.state.MessageInfo = false
	} else if sess.state.MessageKey == checkout.MsgFormat || sess.state.MessageKey == checkout.MsgLogin {
		// Allowing clears gate-set messages; validation verdicts stay.
		sess.state.MessageKey = ""
	}

	s.logger.Debug("Checkout gate decision",
		zap.String("session_id", sessionID.String()),
		zap.String("behavior", string(decision.Behavior)),
		zap.String("reason", decision.Reason))

	return decision, s.snapshotLocked(sess, nil), nil
}

// GetSession returns the current snapshot of a session.
func (s *SessionService) GetSession(sessionID uuid.UUID) (*SessionSnapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.snapshotLocked(sess, nil), nil
}

func (s *SessionService) session(sessionID uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// dispatch applies an event and executes the commands it produces. Gateway
// calls are awaited in the caller's request, so their completion events run
// through the same queue; persistence is handed off and never awaited.
// The session mutex must be held.
func (s *SessionService) dispatch(ctx context.Context, sess *Session, ev checkout.Event) []AttributeChange {
	var changes []AttributeChange
	queue := []checkout.Event{ev}

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		state, cmds := s.engine.Transition(sess.state, next)
		sess.state = state

		for _, cmd := range cmds {
			switch cmd := cmd.(type) {
			case checkout.FetchCustomerRecord:
				profile, err := s.admin.GetCustomerTaxProfile(ctx, sess.StorefrontDomain, cmd.CustomerID)
				evt := checkout.RemoteFetchCompleted{Err: err}
				if err == nil {
					evt.VATNumber = profile.VATNumber
					evt.TaxExempt = profile.TaxExempt
				}
				queue = append(queue, evt)

			case checkout.LookupVAT:
				result, err := s.vat.Validate(ctx, cmd.VATNumber)
				evt := checkout.LookupCompleted{VATNumber: cmd.VATNumber, Err: err}
				if err == nil {
					evt.Valid = result.Valid
					evt.CompanyName = result.CompanyName
				}
				queue = append(queue, evt)

			case checkout.PersistCustomer:
				s.persister.Enqueue(PersistTask{
					ID:               uuid.New(),
					StorefrontDomain: sess.StorefrontDomain,
					CustomerID:       cmd.CustomerID,
					TaxExempt:        cmd.TaxExempt,
					VATNumber:        cmd.Options.VATNumber,
					InvoiceEmail:     cmd.Options.InvoiceEmail,
					Reference:        cmd.Options.Reference,
					EnqueuedAt:       time.Now().Unix(),
				})

			case checkout.ApplyAttribute:
				sess.attributes[cmd.Key] = cmd.Value
				changes = append(changes, AttributeChange{Key: cmd.Key, Value: cmd.Value})
			}
		}
	}

	return changes
}

func (s *SessionService) snapshotLocked(sess *Session, changes []AttributeChange) *SessionSnapshot {
	attrs := make(map[string]string, len(sess.attributes))
	for k, v := range sess.attributes {
		attrs[k] = v
	}
	return &SessionSnapshot{
		ID:               sess.ID,
		StorefrontDomain: sess.StorefrontDomain,
		State:            sess.state,
		Attributes:       attrs,
		AttributeChanges: changes,
	}
}
