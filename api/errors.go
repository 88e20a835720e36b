package api

import (
	"errors"
	"net/http"

	errorsmod "cosmossdk.io/errors"
	"github.com/gin-gonic/gin"

	dextypes "github.com/paw-chain/pawswap/x/dex/types"
	farmtypes "github.com/paw-chain/pawswap/x/farm/types"
	tokentypes "github.com/paw-chain/pawswap/x/token/types"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string      `json:"error"`
	Code      string      `json:"code,omitempty"`
	Details   interface{} `json:"details,omitempty"`
	Retryable bool        `json:"retryable"`
}

type errorClass struct {
	status int
	code   string
}

// errorClasses maps each registered sentinel to an HTTP status and a stable
// symbolic code. Order matters only for readability; sentinels are distinct.
var errorClasses = []struct {
	err   *errorsmod.Error
	class errorClass
}{
	// 400: the request itself is wrong
	{dextypes.ErrInvalidAmount, errorClass{http.StatusBadRequest, "INVALID_AMOUNT"}},
	{farmtypes.ErrInvalidAmount, errorClass{http.StatusBadRequest, "INVALID_AMOUNT"}},
	{tokentypes.ErrInvalidToken, errorClass{http.StatusBadRequest, "INVALID_TOKEN"}},
	{tokentypes.ErrInvalidPrice, errorClass{http.StatusBadRequest, "INVALID_PRICE"}},
	{dextypes.ErrInvalidTokenPair, errorClass{http.StatusBadRequest, "INVALID_TOKEN_PAIR"}},
	{dextypes.ErrInvalidFee, errorClass{http.StatusBadRequest, "INVALID_FEE"}},
	{dextypes.ErrRatioMismatch, errorClass{http.StatusBadRequest, "RATIO_MISMATCH"}},
	{dextypes.ErrInvalidRoute, errorClass{http.StatusBadRequest, "INVALID_ROUTE"}},
	{dextypes.ErrInvalidParams, errorClass{http.StatusBadRequest, "INVALID_PARAMS"}},
	{farmtypes.ErrInvalidParams, errorClass{http.StatusBadRequest, "INVALID_PARAMS"}},
	{dextypes.ErrInvalidUser, errorClass{http.StatusBadRequest, "INVALID_USER"}},
	{farmtypes.ErrInvalidUser, errorClass{http.StatusBadRequest, "INVALID_USER"}},
	{farmtypes.ErrInvalidRewardToken, errorClass{http.StatusBadRequest, "INVALID_REWARD_TOKEN"}},
	{farmtypes.ErrRewardRateTooHigh, errorClass{http.StatusBadRequest, "REWARD_RATE_TOO_HIGH"}},
	{dextypes.ErrOverflow, errorClass{http.StatusBadRequest, "AMOUNT_TOO_LARGE"}},
	{farmtypes.ErrOverflow, errorClass{http.StatusBadRequest, "AMOUNT_TOO_LARGE"}},

	// 422: well-formed but not satisfiable against current state
	{dextypes.ErrInsufficientLiquidity, errorClass{http.StatusUnprocessableEntity, "INSUFFICIENT_LIQUIDITY"}},
	{dextypes.ErrInsufficientShares, errorClass{http.StatusUnprocessableEntity, "INSUFFICIENT_SHARES"}},
	{farmtypes.ErrInsufficientStake, errorClass{http.StatusUnprocessableEntity, "INSUFFICIENT_STAKE"}},
	{farmtypes.ErrNothingToHarvest, errorClass{http.StatusUnprocessableEntity, "NOTHING_TO_HARVEST"}},
	{farmtypes.ErrCompoundUnsupported, errorClass{http.StatusUnprocessableEntity, "COMPOUND_UNSUPPORTED"}},
	{tokentypes.ErrTokenImmutable, errorClass{http.StatusUnprocessableEntity, "TOKEN_IMMUTABLE"}},
	{farmtypes.ErrTooManyFarms, errorClass{http.StatusUnprocessableEntity, "TOO_MANY_FARMS"}},

	// 409: price moved, re-quote and resubmit
	{dextypes.ErrSlippageExceeded, errorClass{http.StatusConflict, "SLIPPAGE_EXCEEDED"}},

	// 404
	{dextypes.ErrPoolEmpty, errorClass{http.StatusNotFound, "POOL_EMPTY"}},
	{dextypes.ErrPositionNotFound, errorClass{http.StatusNotFound, "POSITION_NOT_FOUND"}},
	{farmtypes.ErrPositionNotFound, errorClass{http.StatusNotFound, "POSITION_NOT_FOUND"}},
	{dextypes.ErrPairNotFound, errorClass{http.StatusNotFound, "PAIR_NOT_FOUND"}},
	{dextypes.ErrPoolNotFound, errorClass{http.StatusNotFound, "POOL_NOT_FOUND"}},
	{farmtypes.ErrFarmNotFound, errorClass{http.StatusNotFound, "FARM_NOT_FOUND"}},
	{tokentypes.ErrTokenNotFound, errorClass{http.StatusNotFound, "TOKEN_NOT_FOUND"}},
	{dextypes.ErrNoRoute, errorClass{http.StatusNotFound, "NO_ROUTE"}},

	// 503: the pool is halted until an operator resumes it
	{dextypes.ErrInvariantViolation, errorClass{http.StatusServiceUnavailable, "INVARIANT_VIOLATION"}},
	{farmtypes.ErrInvariantViolation, errorClass{http.StatusServiceUnavailable, "INVARIANT_VIOLATION"}},
	{dextypes.ErrPoolHalted, errorClass{http.StatusServiceUnavailable, "POOL_HALTED"}},
}

var internalError = errorClass{http.StatusInternalServerError, "INTERNAL_ERROR"}

func classify(err error) errorClass {
	for _, e := range errorClasses {
		if errorsmod.IsOf(err, e.err) {
			return e.class
		}
	}
	return internalError
}

// writeError renders err with the status of its error class. Unknown errors
// are logged and hidden behind a generic message.
func (s *Server) writeError(c *gin.Context, err error) {
	var verrs *ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Code:    "VALIDATION_ERROR",
			Details: verrs.Errors,
		})
		return
	}

	class := classify(err)
	if class == internalError {
		_ = c.Error(err)
		s.logger.Error("request failed", "path", c.Request.URL.Path, "err", err)
		c.JSON(class.status, ErrorResponse{Error: "Internal server error", Code: class.code})
		return
	}
	if dextypes.IsFatal(err) {
		_ = c.Error(err)
	}
	c.JSON(class.status, ErrorResponse{
		Error:     err.Error(),
		Code:      class.code,
		Retryable: dextypes.IsRetryable(err),
	})
}

// writeBindError reports a malformed JSON body.
func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request",
		Code:    "INVALID_REQUEST",
		Details: err.Error(),
	})
}
