package api

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// API version 1
	v1 := s.router.Group("/api/v1")
	{
		swap := v1.Group("/swap")
		{
			swap.GET("/quote", s.handleGetQuote)
			swap.GET("/route", s.handleFindRoute)
			swap.POST("", s.handleSwap)
			swap.POST("/exact-out", s.handleSwapExactOut)
			swap.POST("/route", s.handleRouteSwap)
		}

		tokens := v1.Group("/tokens")
		{
			tokens.GET("", s.handleListTokens)
			tokens.GET("/:tokenId", s.handleGetToken)
			tokens.POST("", s.handleRegisterToken)
			tokens.PUT("/:tokenId/price", s.handleSetPrice)
		}

		pools := v1.Group("/pools")
		{
			pools.GET("", s.handleGetPools)
			pools.POST("", s.handleCreatePool)
			pools.GET("/:poolId", s.handleGetPool)
			pools.GET("/:poolId/positions", s.handleGetPoolPositions)
			pools.GET("/:poolId/positions/:userId", s.handleGetPoolPosition)
			pools.POST("/:poolId/halt", s.handleHaltPool)
			pools.POST("/:poolId/resume", s.handleResumePool)
		}

		pool := v1.Group("/pool")
		{
			pool.POST("/add-liquidity", s.handleAddLiquidity)
			pool.POST("/remove-liquidity", s.handleRemoveLiquidity)
		}

		farms := v1.Group("/farms")
		{
			farms.GET("", s.handleListFarms)
			farms.POST("", s.handleCreateFarm)
			farms.GET("/:farmId", s.handleGetFarm)
			farms.GET("/:farmId/positions", s.handleGetFarmPositions)
			farms.POST("/:farmId/fund", s.handleFundFarm)
			farms.PUT("/:farmId/rate", s.handleSetRewardRate)
		}

		farm := v1.Group("/farm")
		{
			farm.POST("/stake", s.handleStake)
			farm.POST("/unstake", s.handleUnstake)
			farm.POST("/harvest", s.handleHarvest)
			farm.POST("/compound", s.handleCompound)
			farm.GET("/:farmId/pending/:userId", s.handlePendingReward)
		}

		v1.GET("/users/:userId/positions", s.handleGetUserPositions)
		v1.GET("/transactions", s.handleGetTransactions)
		v1.GET("/transactions/:txId", s.handleGetTransaction)
		v1.GET("/status/circuit-breakers", s.handleCircuitBreakerStatus)
	}

	// WebSocket endpoint
	s.router.GET("/ws", s.handleWebSocket)
}
