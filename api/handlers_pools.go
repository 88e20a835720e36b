package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	dextypes "github.com/paw-chain/pawswap/x/dex/types"
)

func (s *Server) poolResponse(ctx context.Context, pool dextypes.Pool) PoolResponse {
	resp := PoolResponse{Pool: pool, LPToken: dextypes.LPTokenID(pool.ID)}
	if tvl, err := s.app.DexKeeper.PoolTVL(ctx, pool); err == nil {
		resp.TVL = tvl.String()
	}
	return resp
}

// handleGetPools returns all liquidity pools
func (s *Server) handleGetPools(c *gin.Context) {
	ctx := c.Request.Context()
	pools := s.app.DexKeeper.ListPools(ctx)
	out := make([]PoolResponse, 0, len(pools))
	for _, pool := range pools {
		out = append(out, s.poolResponse(ctx, pool))
	}

	c.JSON(http.StatusOK, gin.H{
		"pools": out,
		"count": len(out),
	})
}

// handleGetPool returns a specific pool
func (s *Server) handleGetPool(c *gin.Context) {
	poolID, err := parseIDParam(c, "poolId")
	if err != nil {
		s.writeError(c, err)
		return
	}
	pool, err := s.app.DexKeeper.GetPool(c.Request.Context(), poolID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.poolResponse(c.Request.Context(), pool))
}

// handleCreatePool opens a pool, or returns the existing one for the pair.
func (s *Server) handleCreatePool(c *gin.Context) {
	var req CreatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	var a amounts
	a.token("tokenA", req.TokenA)
	a.token("tokenB", req.TokenB)
	if err := a.errs.err(); err != nil {
		s.writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	fee := s.app.DexKeeper.GetParams(ctx).DefaultFeeRateBps
	if req.FeeRateBps != nil {
		fee = *req.FeeRateBps
	}

	pool, created, err := s.app.DexKeeper.CreatePool(ctx, req.TokenA, req.TokenB, fee)
	if err != nil {
		s.writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, s.poolResponse(ctx, pool))
}

// handleGetPoolPositions lists the liquidity positions of a pool
func (s *Server) handleGetPoolPositions(c *gin.Context) {
	poolID, err := parseIDParam(c, "poolId")
	if err != nil {
		s.writeError(c, err)
		return
	}
	positions, err := s.app.DexKeeper.ListPositions(c.Request.Context(), poolID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"positions": positions,
		"count":     len(positions),
	})
}

// handleGetPoolPosition returns one user's position in a pool
func (s *Server) handleGetPoolPosition(c *gin.Context) {
	poolID, err := parseIDParam(c, "poolId")
	if err != nil {
		s.writeError(c, err)
		return
	}
	position, err := s.app.DexKeeper.GetPosition(c.Request.Context(), poolID, c.Param("userId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, position)
}

// handleAddLiquidity deposits into a pool
func (s *Server) handleAddLiquidity(c *gin.Context) {
	var req AddLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	var a amounts
	a.user(req.UserID)
	amount0 := a.required("amount0", req.Amount0)
	amount1 := a.required("amount1", req.Amount1)
	if err := a.errs.err(); err != nil {
		s.writeError(c, err)
		return
	}

	tx, err := s.app.DexKeeper.AddLiquidity(c.Request.Context(), req.PoolID, req.UserID, amount0, amount1, req.AutoAdjust)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// handleRemoveLiquidity burns LP shares for their pro-rata reserves
func (s *Server) handleRemoveLiquidity(c *gin.Context) {
	var req RemoveLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	var a amounts
	a.user(req.UserID)
	shares := a.required("lpShares", req.LpShares)
	min0 := a.optional("minAmount0", req.MinAmount0)
	min1 := a.optional("minAmount1", req.MinAmount1)
	if err := a.errs.err(); err != nil {
		s.writeError(c, err)
		return
	}

	tx, err := s.app.DexKeeper.RemoveLiquidity(c.Request.Context(), req.PoolID, req.UserID, shares, min0, min1)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// HaltPoolRequest carries the operator's reason for halting a pool.
type HaltPoolRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// handleHaltPool stops all mutations of a pool until it is resumed.
func (s *Server) handleHaltPool(c *gin.Context) {
	poolID, err := parseIDParam(c, "poolId")
	if err != nil {
		s.writeError(c, err)
		return
	}
	var req HaltPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := s.app.DexKeeper.HaltPool(c.Request.Context(), poolID, SanitizeString(req.Reason)); err != nil {
		s.writeError(c, err)
		return
	}
	s.handleGetPool(c)
}

// handleResumePool reopens a halted pool after checking its invariants.
func (s *Server) handleResumePool(c *gin.Context) {
	poolID, err := parseIDParam(c, "poolId")
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.app.DexKeeper.ResumePool(c.Request.Context(), poolID); err != nil {
		s.writeError(c, err)
		return
	}
	s.handleGetPool(c)
}
