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

// transferHandler handles HTTP requests for money transfers and history.
type transferHandler struct {
	transferService portssvc.TransferSvcFacade
	accountService  portssvc.AccountSvcFacade
}

// newTransferHandler creates a new transferHandler.
func newTransferHandler(ts portssvc.TransferSvcFacade, as portssvc.AccountSvcFacade) *transferHandler {
	return &transferHandler{
		transferService: ts,
		accountService:  as,
	}
}

// RegisterTransferRoutes registers all transfer-related routes.
func RegisterTransferRoutes(rg *gin.RouterGroup, transferService portssvc.TransferSvcFacade, accountService portssvc.AccountSvcFacade) {
	h := newTransferHandler(transferService, accountService)

	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.createTransfer)
		transfers.GET("", h.listTransfers)
	}
}

// callerEmail resolves the authenticated account's email. The transfer engine
// identifies parties by email, the token only carries the account ID.
func (h *transferHandler) callerEmail(c *gin.Context) (string, bool) {
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

// createTransfer godoc
// @Summary Transfer money
// @Description Moves the given amount from the authenticated account to the receiver and records a ledger entry.
// @Tags transfers
// @Accept json
// @Produce json
// @Param transfer body dto.CreateTransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 400 {object} ErrorResponse "Invalid amount, memo too long or self transfer"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Receiver not found"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers [post]
func (h *transferHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	senderEmail, ok := h.callerEmail(c)
	if !ok {
		return
	}

	transfer, err := h.transferService.Transfer(c.Request.Context(), senderEmail, req.ReceiverEmail, req.Amount, req.Memo)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfTransfer),
			errors.Is(err, services.ErrInvalidAmount),
			errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "Insufficient funds"})
		default:
			logger.Error("Failed to execute transfer", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to execute transfer"})
		}
		return
	}

	logger.Info("Transfer completed",
		slog.Int64("transfer_id", transfer.TransferID),
		slog.String("amount", transfer.Amount.String()),
	)
	c.JSON(http.StatusCreated, dto.ToTransferResponse(transfer))
}

// listTransfers godoc
// @Summary List transfer history
// @Description Returns the authenticated account's ledger entries, most recent first.
// @Tags transfers
// @Produce json
// @Success 200 {object} dto.ListTransfersResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /transfers [get]
func (h *transferHandler) listTransfers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	email, ok := h.callerEmail(c)
	if !ok {
		return
	}

	transfers, err := h.transferService.History(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Account not found"})
			return
		}
		logger.Error("Failed to list transfers", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list transfers"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListTransfersResponse(transfers))
}
