package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vatgate/vatgate-api/internal/checkout"
	"github.com/vatgate/vatgate-api/internal/client/vatlayer"
	"github.com/vatgate/vatgate-api/internal/handlers"
	"github.com/vatgate/vatgate-api/internal/logger"
	"github.com/vatgate/vatgate-api/internal/mocks"
	"github.com/vatgate/vatgate-api/internal/services"
	"github.com/vatgate/vatgate-api/internal/translate"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitLogger()
}

// noopPersister drops tasks; handler tests never assert on persistence.
type noopPersister struct{}

func (noopPersister) Enqueue(services.PersistTask) {}

type handlerFixture struct {
	admin  *mocks.MockAdminClientInterface
	vat    *mocks.MockVatClientInterface
	router *gin.Engine
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	admin := mocks.NewMockAdminClientInterface(ctrl)
	vat := mocks.NewMockVatClientInterface(ctrl)
	engine := checkout.NewEngine("NL", zap.NewNop())
	service := services.NewSessionService(admin, vat, engine, noopPersister{}, zap.NewNop())

	common := handlers.NewCommonServices(service, translate.Default(), "https://acme.myshopify.com/account/login")
	handler := handlers.NewSessionHandler(common)

	router := gin.New()
	sessions := router.Group("/api/v1/checkout/sessions")
	{
		sessions.POST("", handler.CreateSession)
		sessions.GET("/:session_id", handler.GetSession)
		sessions.POST("/:session_id/events", handler.ApplyFieldEvent)
		sessions.POST("/:session_id/advance", handler.Advance)
	}

	return &handlerFixture{admin: admin, vat: vat, router: router}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *handlerFixture) createSession(t *testing.T) handlers.SessionResponse {
	w := f.do(t, http.MethodPost, "/api/v1/checkout/sessions", handlers.CreateSessionRequest{
		StorefrontDomain:    "acme.myshopify.com",
		ShippingCompany:     "Acme Trading",
		ShippingCountryCode: "DE",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp handlers.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSessionHandler_CreateSession(t *testing.T) {
	f := newHandlerFixture(t)

	resp := f.createSession(t)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "checkout_session", resp.Object)
	assert.Equal(t, "acme.myshopify.com", resp.StorefrontDomain)
	assert.Equal(t, string(checkout.PhaseIdle), resp.Phase)
}

func TestSessionHandler_CreateSession_MissingDomain(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/checkout/sessions", handlers.CreateSessionRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_ApplyFieldEvent_TranslatesMessages(t *testing.T) {
	f := newHandlerFixture(t)
	session := f.createSession(t)

	w := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/checkout/sessions/%s/events", session.ID), handlers.FieldEventRequest{
		Field: "business_user",
		Value: "true",
	})
	require.Equal(t, http.StatusOK, w.Code)

	f.vat.EXPECT().
		Validate(gomock.Any(), "DE123456789").
		Return(&vatlayer.ValidationResponse{Valid: false}, nil)

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/checkout/sessions/%s/events", session.ID), handlers.FieldEventRequest{
		Field: "vat_number",
		Value: "DE123456789",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(checkout.PhaseRejected), resp.Phase)
	assert.Equal(t, "This VAT number is not valid.", resp.Message)
	assert.False(t, resp.MessageIsInfo)
}

func TestSessionHandler_ApplyFieldEvent_ReturnsAttributeChanges(t *testing.T) {
	f := newHandlerFixture(t)
	session := f.createSession(t)

	w := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/checkout/sessions/%s/events", session.ID), handlers.FieldEventRequest{
		Field: "business_user",
		Value: "true",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.AttributeChanges, 1)
	assert.Equal(t, "Business user", resp.AttributeChanges[0].Key)
	assert.Equal(t, "true", resp.AttributeChanges[0].Value)
	assert.Equal(t, "true", resp.Attributes["Business user"])
}

func TestSessionHandler_ApplyFieldEvent_UnknownField(t *testing.T) {
	f := newHandlerFixture(t)
	session := f.createSession(t)

	w := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/checkout/sessions/%s/events", session.ID), handlers.FieldEventRequest{
		Field: "favorite_color",
		Value: "blue",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_ApplyFieldEvent_UnknownSession(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/checkout/sessions/0d1f9f60-83f4-4f68-8f0b-111111111111/events", handlers.FieldEventRequest{
		Field: "business_user",
		Value: "true",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/checkout/sessions/not-a-uuid/events", handlers.FieldEventRequest{
		Field: "business_user",
		Value: "true",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_Advance_BlocksWithLoginURL(t *testing.T) {
	f := newHandlerFixture(t)
	session := f.createSession(t)

	w := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/checkout/sessions/%s/events", session.ID), handlers.FieldEventRequest{
		Field: "business_user",
		Value: "true",
	})
	require.Equal(t, http.StatusOK, w.Code)

	f.vat.EXPECT().
		Validate(gomock.Any(), "DE123456789").
		Return(&vatlayer.ValidationResponse{Valid: true, CompanyName: "Acme Trading"}, nil)

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/checkout/sessions/%s/events", session.ID), handlers.FieldEventRequest{
		Field: "vat_number",
		Value: "DE123456789",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Valid, exempt and anonymous: the gate blocks and points at the login.
	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/checkout/sessions/%s/advance", session.ID), handlers.AdvanceRequest{
		CanBlockProgress: true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.AdvanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(checkout.BehaviorBlock), resp.Behavior)
	require.NotNil(t, resp.Session)
	assert.True(t, resp.Session.LoginRequired)
	assert.Equal(t, "https://acme.myshopify.com/account/login", resp.Session.LoginURL)
	assert.Equal(t, "Please login or create an account to order tax exempt.", resp.Session.Message)
}

func TestSessionHandler_GetSession(t *testing.T) {
	f := newHandlerFixture(t)
	session := f.createSession(t)

	w := f.do(t, http.MethodGet, "/api/v1/checkout/sessions/"+session.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, session.ID, resp.ID)

	w = f.do(t, http.MethodGet, "/api/v1/checkout/sessions/0d1f9f60-83f4-4f68-8f0b-111111111111", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
