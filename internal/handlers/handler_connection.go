package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paymybuddy/backend/internal/apperrors"
	portssvc "github.com/paymybuddy/backend/internal/core/ports/services"
	"github.com/paymybuddy/backend/internal/core/services"
	"github.com/paymybuddy/backend/internal/dto"
	"github.com/paymybuddy/backend/internal/middleware"
)

// connectionHandler handles HTTP requests for the acquaintance graph.
type connectionHandler struct {
	connectionService portssvc.ConnectionSvcFacade
	accountService    portssvc.AccountSvcFacade
}

// newConnectionHandler creates a new connectionHandler.
func newConnectionHandler(cs portssvc.ConnectionSvcFacade, as portssvc.AccountSvcFacade) *connectionHandler {
	return &connectionHandler{
		connectionService: cs,
		accountService:    as,
	}
}

// registerConnectionRoutes registers all connection-related routes.
func registerConnectionRoutes(rg *gin.RouterGroup, connectionService portssvc.ConnectionSvcFacade, accountService portssvc.AccountSvcFacade) {
	h := newConnectionHandler(connectionService, accountService)

	connections := rg.Group("/connections")
	{
		connections.POST("", h.addConnection)
		connections.GET("", h.listConnections)
	}
}

func (h *connectionHandler) callerEmail(c *gin.Context) (string, bool) {
	accountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return "", false
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return "", false
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to resolve caller account", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to resolve account"})
		return "", false
	}

	return account.Email, true
}

// addConnection godoc
// @Summary Add a connection
// @Description Connects the authenticated account with another account by email. The connection is symmetric.
// @Tags connections
// @Accept json
// @Produce json
// @Param connection body dto.AddConnectionRequest true "Friend email"
// @Success 201 "Created"
// @Failure 400 {object} ErrorResponse "Invalid email or self connection"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "No account for that email"
// @Failure 409 {object} ErrorResponse "Already connected"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /connections [post]
func (h *connectionHandler) addConnection(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AddConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	ownerEmail, ok := h.callerEmail(c)
	if !ok {
		return
	}

	if err := h.connectionService.AddConnection(c.Request.Context(), ownerEmail, req.FriendEmail); err != nil {
		switch {
		case errors.Is(err, services.ErrSelfConnection):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "No account found for that email"})
		case errors.Is(err, services.ErrAlreadyConnected):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to add connection", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to add connection"})
		}
		return
	}

	c.Status(http.StatusCreated)
}

// listConnections godoc
// @Summary List connections
// @Description Returns the accounts connected to the authenticated account, for use as transfer targets.
// @Tags connections
// @Produce json
// @Success 200 {object} dto.ListConnectionsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /connections [get]
func (h *connectionHandler) listConnections(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	email, ok := h.callerEmail(c)
	if !ok {
		return
	}

	accounts, err := h.connectionService.ConnectionsOf(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Account not found"})
			return
		}
		logger.Error("Failed to list connections", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list connections"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListConnectionsResponse(accounts))
}
