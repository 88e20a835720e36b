package api

import (
	"net/http"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	"github.com/gin-gonic/gin"

	dextypes "github.com/paw-chain/pawswap/x/dex/types"
)

// handleGetQuote quotes a direct swap, falling back to the best multi-hop
// route when no usable direct pool exists. exactOut=true quotes the input
// needed for an exact output instead.
func (s *Server) handleGetQuote(c *gin.Context) {
	tokenIn, tokenOut := c.Query("tokenIn"), c.Query("tokenOut")
	exactOut, _ := strconv.ParseBool(c.DefaultQuery("exactOut", "false"))

	var a amounts
	a.token("tokenIn", tokenIn)
	a.token("tokenOut", tokenOut)
	amount := a.required("amount", c.Query("amount"))
	if err := a.errs.err(); err != nil {
		s.writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	if exactOut {
		quote, err := s.app.DexKeeper.GetQuoteExactOut(ctx, tokenIn, tokenOut, amount)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, QuoteResponse{Quote: quote})
		return
	}

	quote, err := s.app.DexKeeper.GetQuote(ctx, tokenIn, tokenOut, amount)
	if errorsmod.IsOf(err, dextypes.ErrPairNotFound, dextypes.ErrPoolEmpty) {
		quote, err = s.app.DexKeeper.FindBestRoute(ctx, tokenIn, tokenOut, amount)
		if err == nil {
			c.JSON(http.StatusOK, QuoteResponse{Quote: quote, MultiHop: len(quote.Route.Hops) > 1})
			return
		}
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, QuoteResponse{Quote: quote})
}

// handleFindRoute returns the best route of up to MaxHops pools.
func (s *Server) handleFindRoute(c *gin.Context) {
	tokenIn, tokenOut := c.Query("tokenIn"), c.Query("tokenOut")

	var a amounts
	a.token("tokenIn", tokenIn)
	a.token("tokenOut", tokenOut)
	amount := a.required("amount", c.Query("amount"))
	if err := a.errs.err(); err != nil {
		s.writeError(c, err)
		return
	}

	quote, err := s.app.DexKeeper.FindBestRoute(c.Request.Context(), tokenIn, tokenOut, amount)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, QuoteResponse{Quote: quote, MultiHop: len(quote.Route.Hops) > 1})
}

// handleSwap executes an exact-input swap against the direct pool.
func (s *Server) handleSwap(c *gin.Context) {
	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	var a amounts
	a.token("tokenIn", req.TokenIn)
	a.token("tokenOut", req.TokenOut)
	a.user(req.UserID)
	amountIn := a.required("amountIn", req.AmountIn)
	minOut := a.optional("minAmountOut", req.MinAmountOut)
	if err := a.errs.err(); err != nil {
		s.writeError(c, err)
		return
	}

	tx, err := s.app.DexKeeper.ExecuteSwap(c.Request.Context(), req.TokenIn, req.TokenOut, amountIn, minOut, req.UserID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// handleSwapExactOut buys an exact output amount.
func (s *Server) handleSwapExactOut(c *gin.Context) {
	var req SwapExactOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	var a amounts
	a.token("tokenIn", req.TokenIn)
	a.token("tokenOut", req.TokenOut)
	a.user(req.UserID)
	amountOut := a.required("amountOut", req.AmountOut)
	maxIn := a.required("maxAmountIn", req.MaxAmountIn)
	if err := a.errs.err(); err != nil {
		s.writeError(c, err)
		return
	}

	tx, err := s.app.DexKeeper.ExecuteSwapExactOut(c.Request.Context(), req.TokenIn, req.TokenOut, amountOut, maxIn, req.UserID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// handleRouteSwap executes a multi-hop swap along the given route.
func (s *Server) handleRouteSwap(c *gin.Context) {
	var req RouteSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	var a amounts
	a.user(req.UserID)
	amountIn := a.required("amountIn", req.AmountIn)
	minOut := a.optional("minAmountOut", req.MinAmountOut)
	if err := a.errs.err(); err != nil {
		s.writeError(c, err)
		return
	}

	tx, err := s.app.DexKeeper.ExecuteRouteSwap(c.Request.Context(), req.Route, amountIn, minOut, req.UserID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}
