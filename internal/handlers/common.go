package handlers

import (
	"net/http"

	"github.com/vatgate/vatgate-api/internal/logger"
	"github.com/vatgate/vatgate-api/internal/services"
	"github.com/vatgate/vatgate-api/internal/translate"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CommonServices holds common dependencies used across handlers
type CommonServices struct {
	sessions   *services.SessionService
	translator translate.Translator
	loginURL   string
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// NewCommonServices creates a new instance of CommonServices
func NewCommonServices(sessions *services.SessionService, translator translate.Translator, loginURL string) *CommonServices {
	if translator == nil {
		translator = translate.Default()
	}
	return &CommonServices{
		sessions:   sessions,
		translator: translator,
		loginURL:   loginURL,
	}
}

// sendError is a helper function that combines logging and error response
// It logs the error with the given message and sends a JSON error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// handleSessionError maps session errors to appropriate HTTP status codes
func handleSessionError(c *gin.Context, err error, notFoundMsg string) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		sendError(c, http.StatusNotFound, notFoundMsg, err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// sendSuccess is a helper function that sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}
