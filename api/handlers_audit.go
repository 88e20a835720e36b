package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paw-chain/pawswap/pkg/audit"
	dextypes "github.com/paw-chain/pawswap/x/dex/types"
	farmtypes "github.com/paw-chain/pawswap/x/farm/types"
)

// handleGetTransactions queries the audit log, newest first.
func (s *Server) handleGetTransactions(c *gin.Context) {
	filter := audit.Filter{
		Kind:     audit.Kind(c.Query("kind")),
		UserID:   c.Query("userId"),
		EntityID: c.Query("entityId"),
		Limit:    ValidateLimit(c.Query("limit"), audit.DefaultLimit, audit.MaxLimit),
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		errs := &ValidationErrors{}
		errs.Add("kind", "kind must be one of swap, liquidity, farm")
		s.writeError(c, errs)
		return
	}

	records, err := s.app.Audit.Query(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if records == nil {
		records = []audit.Record{}
	}
	c.JSON(http.StatusOK, TransactionsResponse{Transactions: records, Count: len(records)})
}

// handleGetTransaction returns one audit record by id.
func (s *Server) handleGetTransaction(c *gin.Context) {
	record, err := s.app.Audit.Get(c.Request.Context(), c.Param("txId"))
	if errors.Is(err, audit.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Transaction not found", Code: "TRANSACTION_NOT_FOUND"})
		return
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// handleGetUserPositions lists a user's liquidity and farm positions.
func (s *Server) handleGetUserPositions(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("userId")
	resp := UserPositionsResponse{
		UserID:    userID,
		Liquidity: s.app.DexKeeper.UserPositions(ctx, userID),
		Farms:     s.app.FarmKeeper.UserPositions(ctx, userID),
	}
	if resp.Liquidity == nil {
		resp.Liquidity = []dextypes.LiquidityPosition{}
	}
	if resp.Farms == nil {
		resp.Farms = []farmtypes.FarmPosition{}
	}
	c.JSON(http.StatusOK, resp)
}

// handleCircuitBreakerStatus reports halted pools and the farms they affect.
func (s *Server) handleCircuitBreakerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.Breakers.GetGlobalStatus(c.Request.Context()))
}
