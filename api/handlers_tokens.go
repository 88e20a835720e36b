package api

import (
	"net/http"
	"strings"

	"cosmossdk.io/math"
	"github.com/gin-gonic/gin"

	tokentypes "github.com/paw-chain/pawswap/x/token/types"
)

// handleListTokens returns all registered tokens
func (s *Server) handleListTokens(c *gin.Context) {
	tokens := s.app.TokenKeeper.ListTokens(c.Request.Context())
	c.JSON(http.StatusOK, TokensResponse{Tokens: tokens, Count: len(tokens)})
}

// handleGetToken returns a specific token
func (s *Server) handleGetToken(c *gin.Context) {
	token, err := s.app.TokenKeeper.GetToken(c.Request.Context(), c.Param("tokenId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// handleRegisterToken adds a token, or updates one no pool references yet.
func (s *Server) handleRegisterToken(c *gin.Context) {
	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	var a amounts
	a.token("id", req.ID)
	token := tokentypes.Token{
		ID:       req.ID,
		Symbol:   SanitizeString(req.Symbol),
		Name:     SanitizeString(req.Name),
		Decimals: req.Decimals,
	}
	if strings.TrimSpace(req.Price) != "" {
		price, err := parsePrice(req.Price)
		if err != nil {
			s.writeError(c, err)
			return
		}
		token.Price = price
	}
	if err := a.errs.err(); err != nil {
		s.writeError(c, err)
		return
	}

	token, err := s.app.TokenKeeper.RegisterToken(c.Request.Context(), token)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

// handleSetPrice updates a token's reference price
func (s *Server) handleSetPrice(c *gin.Context) {
	var req SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		s.writeError(c, err)
		return
	}

	token, err := s.app.TokenKeeper.SetPrice(c.Request.Context(), c.Param("tokenId"), price)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func parsePrice(raw string) (math.LegacyDec, error) {
	price, err := math.LegacyNewDecFromStr(strings.TrimSpace(raw))
	if err != nil {
		return math.LegacyDec{}, tokentypes.ErrInvalidPrice.Wrapf("%q: %v", raw, err)
	}
	return price, nil
}
