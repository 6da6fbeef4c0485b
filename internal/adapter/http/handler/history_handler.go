package handler

import (
	"strconv"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// HistoryHandler serves the sealed history view and the OTP-gated decrypt flow.
type HistoryHandler struct {
	historySvc ports.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historySvc ports.HistoryService) *HistoryHandler {
	return &HistoryHandler{historySvc: historySvc}
}

// History handles POST /history.
func (h *HistoryHandler) History(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	history, err := h.historySvc.History(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	self := c.GetString(middleware.CtxEmail)
	response.OK(c, dto.HistoryResponse{
		Sent:     toTransferEntries(history.Sent, self, true),
		Received: toTransferEntries(history.Received, self, false),
	})
}

// RequestDecryptOTP handles POST /history/request-decrypt-otp.
func (h *HistoryHandler) RequestDecryptOTP(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	if err := h.historySvc.RequestDecryptOTP(c.Request.Context(), accountID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.MessageResponse{Message: "OTP sent"})
}

// Decrypt handles POST /history/decrypt.
func (h *HistoryHandler) Decrypt(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DecryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	opened, err := h.historySvc.Decrypt(c.Request.Context(), accountID, req.TransactionID, req.OTP)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxAuditResourceID, strconv.FormatInt(opened.TransactionID, 10))
	response.OK(c, dto.DecryptResponse{
		Amount:  opened.Amount,
		Message: opened.Message,
	})
}

// toTransferEntries fills the caller's side of each row from the token's email claim and the other
// side from the record's counterpart.
func toTransferEntries(records []domain.TransferRecord, self string, sent bool) []dto.TransferEntry {
	entries := make([]dto.TransferEntry, 0, len(records))
	for _, r := range records {
		e := dto.TransferEntry{
			ID:               r.ID,
			EncryptedAmount:  r.AmountEnvelope,
			EncryptedMessage: r.MessageEnvelope,
			SettledAt:        r.SettledAt,
		}
		if sent {
			e.SenderEmail, e.ReceiverEmail = self, r.CounterpartEmail
		} else {
			e.SenderEmail, e.ReceiverEmail = r.CounterpartEmail, self
		}
		entries = append(entries, e)
	}
	return entries
}
