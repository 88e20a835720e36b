package api

import (
	"context"
	"net/http"

	"cosmossdk.io/math"
	"github.com/gin-gonic/gin"

	farmtypes "github.com/paw-chain/pawswap/x/farm/types"
)

// handleListFarms returns all farms
func (s *Server) handleListFarms(c *gin.Context) {
	farms := s.app.FarmKeeper.ListFarms(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"farms": farms,
		"count": len(farms),
	})
}

// handleGetFarm returns a specific farm
func (s *Server) handleGetFarm(c *gin.Context) {
	farmID, err := parseIDParam(c, "farmId")
	if err != nil {
		s.writeError(c, err)
		return
	}
	farm, err := s.app.FarmKeeper.GetFarm(c.Request.Context(), farmID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, farm)
}

// handleCreateFarm opens a farm over a stake token.
func (s *Server) handleCreateFarm(c *gin.Context) {
	var req CreateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	var a amounts
	a.token("stakeToken", req.StakeToken)
	a.token("rewardToken", req.RewardToken)
	rate := a.required("rewardPerBlock", req.RewardPerBlock)
	budget := a.required("rewardBudget", req.RewardBudget)
	if err := a.errs.err(); err != nil {
		s.writeError(c, err)
		return
	}

	farm, err := s.app.FarmKeeper.CreateFarm(c.Request.Context(), req.StakeToken, req.RewardToken, rate, req.StartBlock, budget)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, farm)
}

// handleFundFarm tops up a farm's reward budget.
func (s *Server) handleFundFarm(c *gin.Context) {
	farmID, err := parseIDParam(c, "farmId")
	if err != nil {
		s.writeError(c, err)
		return
	}
	var req FundFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	var a amounts
	amount := a.required("amount", req.Amount)
	if err := a.errs.err(); err != nil {
		s.writeError(c, err)
		return
	}

	tx, err := s.app.FarmKeeper.FundFarm(c.Request.Context(), farmID, amount)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// handleSetRewardRate changes the per-block emission.
func (s *Server) handleSetRewardRate(c *gin.Context) {
	farmID, err := parseIDParam(c, "farmId")
	if err != nil {
		s.writeError(c, err)
		return
	}
	var req SetRewardRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	var a amounts
	rate := a.required("rewardPerBlock", req.RewardPerBlock)
	if err := a.errs.err(); err != nil {
		s.writeError(c, err)
		return
	}

	tx, err := s.app.FarmKeeper.SetRewardPerBlock(c.Request.Context(), farmID, rate)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// handleGetFarmPositions lists the stakers of a farm
func (s *Server) handleGetFarmPositions(c *gin.Context) {
	farmID, err := parseIDParam(c, "farmId")
	if err != nil {
		s.writeError(c, err)
		return
	}
	positions, err := s.app.FarmKeeper.ListPositions(c.Request.Context(), farmID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"positions": positions,
		"count":     len(positions),
	})
}

// farmAction binds a FarmActionRequest and runs fn. withAmount marks the
// actions that move stake; the others receive a zero amount.
func (s *Server) farmAction(c *gin.Context, withAmount bool, fn func(ctx context.Context, req FarmActionRequest, amount math.Int) (farmtypes.FarmTransaction, error)) {
	var req FarmActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	var a amounts
	a.user(req.UserID)
	amount := math.ZeroInt()
	if withAmount {
		amount = a.required("amount", req.Amount)
	}
	if err := a.errs.err(); err != nil {
		s.writeError(c, err)
		return
	}

	tx, err := fn(c.Request.Context(), req, amount)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (s *Server) handleStake(c *gin.Context) {
	s.farmAction(c, true, func(ctx context.Context, req FarmActionRequest, amount math.Int) (farmtypes.FarmTransaction, error) {
		return s.app.FarmKeeper.Stake(ctx, req.FarmID, req.UserID, amount)
	})
}

func (s *Server) handleUnstake(c *gin.Context) {
	s.farmAction(c, true, func(ctx context.Context, req FarmActionRequest, amount math.Int) (farmtypes.FarmTransaction, error) {
		return s.app.FarmKeeper.Unstake(ctx, req.FarmID, req.UserID, amount)
	})
}

func (s *Server) handleHarvest(c *gin.Context) {
	s.farmAction(c, false, func(ctx context.Context, req FarmActionRequest, _ math.Int) (farmtypes.FarmTransaction, error) {
		return s.app.FarmKeeper.Harvest(ctx, req.FarmID, req.UserID)
	})
}

func (s *Server) handleCompound(c *gin.Context) {
	s.farmAction(c, false, func(ctx context.Context, req FarmActionRequest, _ math.Int) (farmtypes.FarmTransaction, error) {
		return s.app.FarmKeeper.Compound(ctx, req.FarmID, req.UserID)
	})
}

// handlePendingReward reports the reward a user could harvest now.
func (s *Server) handlePendingReward(c *gin.Context) {
	farmID, err := parseIDParam(c, "farmId")
	if err != nil {
		s.writeError(c, err)
		return
	}
	userID := c.Param("userId")
	pending, err := s.app.FarmKeeper.PendingReward(c.Request.Context(), farmID, userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PendingRewardResponse{FarmID: farmID, UserID: userID, Pending: pending})
}
