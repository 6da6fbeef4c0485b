package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

const defaultChainPage = 100

// ChainHandler exposes the transaction chain read-only.
type ChainHandler struct {
	chainSvc ports.ChainService
}

// NewChainHandler creates a new ChainHandler.
func NewChainHandler(chainSvc ports.ChainService) *ChainHandler {
	return &ChainHandler{chainSvc: chainSvc}
}

// List handles GET /chain?from=&limit=.
func (h *ChainHandler) List(c *gin.Context) {
	var q dto.ChainQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultChainPage
	}

	blocks, err := h.chainSvc.ListChain(c.Request.Context(), q.From, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.ChainBlockResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, toChainBlockResponse(b))
	}
	response.OK(c, dto.ChainResponse{Blocks: out})
}

// Verify handles GET /chain/verify.
func (h *ChainHandler) Verify(c *gin.Context) {
	report, err := h.chainSvc.VerifyIntegrity(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.ChainVerifyResponse{Valid: report.Valid, Length: report.Length}
	if !report.Valid {
		idx := report.FirstBadIndex
		resp.FirstBadIndex = &idx
	}
	response.OK(c, resp)
}

func toChainBlockResponse(b domain.ChainBlock) dto.ChainBlockResponse {
	resp := dto.ChainBlockResponse{
		Index:     b.Index,
		Data:      b.Ref(),
		Timestamp: b.CreatedAt,
		PrevHash:  b.PrevHash,
		Hash:      b.Hash,
	}
	if !b.IsGenesis() {
		id := b.TransactionID
		resp.TransactionID = &id
	}
	return resp
}
