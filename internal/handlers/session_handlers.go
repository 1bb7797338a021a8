package handlers

import (
	"net/http"

	"github.com/vatgate/vatgate-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionHandler struct {
	common *CommonServices
}

func NewSessionHandler(common *CommonServices) *SessionHandler {
	return &SessionHandler{common: common}
}

// CreateSessionRequest represents the request body for opening a checkout session
type CreateSessionRequest struct {
	StorefrontDomain    string `json:"storefront_domain" binding:"required"`
	CustomerID          string `json:"customer_id,omitempty"`
	ShippingCompany     string `json:"shipping_company,omitempty"`
	ShippingCountryCode string `json:"shipping_country_code,omitempty"`
}

// FieldEventRequest represents a single field change from the checkout widget
type FieldEventRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// AdvanceRequest represents a shopper attempt to advance past the checkout gate
type AdvanceRequest struct {
	CanBlockProgress bool `json:"can_block_progress"`
}

// AttributeChangeResponse is one order attribute update the host should apply
type AttributeChangeResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SessionResponse represents the standardized API response for session operations
type SessionResponse struct {
	ID               string `json:"id"`
	Object           string `json:"object"`
	StorefrontDomain string `json:"storefront_domain"`

	BusinessUser bool   `json:"business_user"`
	VATNumber    string `json:"vat_number,omitempty"`
	InvoiceEmail string `json:"invoice_email,omitempty"`
	Reference    string `json:"reference,omitempty"`

	Phase              string `json:"phase"`
	FormatValid        bool   `json:"format_valid"`
	Valid              bool   `json:"valid"`
	TaxExempt          bool   `json:"tax_exempt"`
	NativeJurisdiction bool   `json:"native_jurisdiction"`

	Message       string `json:"message,omitempty"`
	MessageIsInfo bool   `json:"message_is_info,omitempty"`
	EmailMessage  string `json:"email_message,omitempty"`

	LoginRequired bool   `json:"login_required"`
	LoginURL      string `json:"login_url,omitempty"`

	Attributes       map[string]string         `json:"attributes,omitempty"`
	AttributeChanges []AttributeChangeResponse `json:"attribute_changes,omitempty"`
}

// AdvanceResponse represents the checkout gate decision
type AdvanceResponse struct {
	Behavior string           `json:"behavior"`
	Reason   string           `json:"reason,omitempty"`
	Session  *SessionResponse `json:"session"`
}

// CreateSession godoc
// @Summary Open a checkout session
// @Description Opens a VAT verification session for one shopper checkout. When a customer ID is supplied the stored customer record is fetched and the session is seeded from it.
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body CreateSessionRequest true "Session environment"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Router /checkout/sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	snapshot, err := h.common.sessions.StartSession(c.Request.Context(), services.StartSessionParams{
		StorefrontDomain:    req.StorefrontDomain,
		CustomerID:          req.CustomerID,
		ShippingCompany:     req.ShippingCompany,
		ShippingCountryCode: req.ShippingCountryCode,
	})
	if err != nil {
		sendError(c, http.StatusBadRequest, "Failed to start session", err)
		return
	}

	sendSuccess(c, http.StatusCreated, h.toSessionResponse(snapshot))
}

// ApplyFieldEvent godoc
// @Summary Apply a field change
// @Description Applies one widget field change (vat_number, invoice_email, reference, business_user, shipping_company, shipping_country_code) to the session and returns the reconciled state.
// @Tags sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param event body FieldEventRequest true "Field change"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /checkout/sessions/{session_id}/events [post]
func (h *SessionHandler) ApplyFieldEvent(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid session ID format", err)
		return
	}

	var req FieldEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	snapshot, err := h.common.sessions.ApplyFieldChange(c.Request.Context(), sessionID, req.Field, req.Value)
	if err != nil {
		if err == services.ErrSessionNotFound {
			handleSessionError(c, err, "Session not found")
			return
		}
		sendError(c, http.StatusBadRequest, "Failed to apply field change", err)
		return
	}

	sendSuccess(c, http.StatusOK, h.toSessionResponse(snapshot))
}

// Advance godoc
// @Summary Attempt to advance checkout
// @Description Runs the checkout gate against the session's current validation state. The gate never validates; it only reads the flags the session has already derived.
// @Tags sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Param attempt body AdvanceRequest true "Advance attempt"
// @Success 200 {object} AdvanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /checkout/sessions/{session_id}/advance [post]
func (h *SessionHandler) Advance(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid session ID format", err)
		return
	}

	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	decision, snapshot, err := h.common.sessions.Advance(c.Request.Context(), sessionID, req.CanBlockProgress)
	if err != nil {
		handleSessionError(c, err, "Session not found")
		return
	}

	sendSuccess(c, http.StatusOK, AdvanceResponse{
		Behavior: string(decision.Behavior),
		Reason:   decision.Reason,
		Session:  h.toSessionResponse(snapshot),
	})
}

// GetSession godoc
// @Summary Get a checkout session
// @Description Retrieves the current state of an existing checkout session
// @Tags sessions
// @Accept json
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /checkout/sessions/{session_id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid session ID format", err)
		return
	}

	snapshot, err := h.common.sessions.GetSession(sessionID)
	if err != nil {
		handleSessionError(c, err, "Session not found")
		return
	}

	sendSuccess(c, http.StatusOK, h.toSessionResponse(snapshot))
}

func (h *SessionHandler) toSessionResponse(snapshot *services.SessionSnapshot) *SessionResponse {
	state := snapshot.State

	resp := &SessionResponse{
		ID:                 snapshot.ID.String(),
		Object:             "checkout_session",
		StorefrontDomain:   snapshot.StorefrontDomain,
		BusinessUser:       state.BusinessUser,
		VATNumber:          state.VATNumber,
		InvoiceEmail:       state.InvoiceEmail,
		Reference:          state.Reference,
		Phase:              string(state.Phase),
		FormatValid:        state.FormatValid,
		Valid:              state.Valid,
		TaxExempt:          state.TaxExempt,
		NativeJurisdiction: state.NativeJurisdiction,
		MessageIsInfo:      state.MessageInfo,
		LoginRequired:      state.LoginRequired(),
		Attributes:         snapshot.Attributes,
	}

	if state.MessageKey != "" {
		resp.Message = h.common.translator.T(state.MessageKey)
	}
	if state.EmailMessageKey != "" {
		resp.EmailMessage = h.common.translator.T(state.EmailMessageKey)
	}
	if resp.LoginRequired {
		resp.LoginURL = h.common.loginURL
	}

	for _, change := range snapshot.AttributeChanges {
		resp.AttributeChanges = append(resp.AttributeChanges, AttributeChangeResponse(change))
	}

	return resp
}
