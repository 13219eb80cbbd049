package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"supa-casino-backend/internal/middleware"
	"supa-casino-backend/internal/models"
	"supa-casino-backend/internal/services"
)

type GameHandler struct {
	games *services.GameService
	log   *logrus.Logger
}

func NewGameHandler(games *services.GameService, log *logrus.Logger) *GameHandler {
	return &GameHandler{games: games, log: log}
}

func historyJSON(rec *models.GameHistory) gin.H {
	return gin.H{
		"id":        rec.ID,
		"gameType":  rec.GameType,
		"betAmount": rec.BetAmount.String(),
		"winAmount": rec.WinAmount.String(),
		"result":    rec.Result,
		"createdAt": rec.CreatedAt,
	}
}

func (h *GameHandler) writePlayError(c *gin.Context, userID int, err error) {
	switch {
	case errors.Is(err, services.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
	case errors.Is(err, services.ErrInvalidDiceTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target must be between 0 and 100"})
	case errors.Is(err, services.ErrInvalidCoinChoice):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Choice must be heads or tails"})
	case errors.Is(err, services.ErrInvalidHand):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card in hand"})
	case errors.Is(err, services.ErrUnknownGameType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown game type"})
	default:
		h.log.WithError(err).WithField("user_id", userID).Error("play failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to play"})
	}
}

func (h *GameHandler) writeOutcome(c *gin.Context, outcome *services.PlayOutcome) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"gameType":  outcome.GameType,
		"balance":   outcome.Balance.StringFixed(2),
		"betAmount": outcome.BetAmount.String(),
		"winAmount": outcome.WinAmount.String(),
		"message":   outcome.Message,
		"result":    outcome.Result,
	})
}

func bindBet(c *gin.Context) (decimal.Decimal, bool) {
	var req models.BetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return decimal.Decimal{}, false
	}
	bet, err := models.ParseBetAmount(req.BetAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return decimal.Decimal{}, false
	}
	return bet, true
}

func (h *GameHandler) PlaySlots(c *gin.Context) {
	user := middleware.CurrentUser(c)
	bet, ok := bindBet(c)
	if !ok {
		return
	}

	outcome, err := h.games.PlaySlots(c.Request.Context(), user.ID, bet)
	if err != nil {
		h.writePlayError(c, user.ID, err)
		return
	}
	h.writeOutcome(c, outcome)
}

func (h *GameHandler) PlayDice(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.DiceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bet, err := models.ParseBetAmount(req.BetAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.games.PlayDice(c.Request.Context(), user.ID, bet, req.Target, req.Over)
	if err != nil {
		h.writePlayError(c, user.ID, err)
		return
	}
	h.writeOutcome(c, outcome)
}

func (h *GameHandler) PlayRoulette(c *gin.Context) {
	user := middleware.CurrentUser(c)
	bet, ok := bindBet(c)
	if !ok {
		return
	}

	outcome, err := h.games.PlayRoulette(c.Request.Context(), user.ID, bet)
	if err != nil {
		h.writePlayError(c, user.ID, err)
		return
	}
	h.writeOutcome(c, outcome)
}

func (h *GameHandler) PlayCoinFlip(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.CoinFlipBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bet, err := models.ParseBetAmount(req.BetAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.games.PlayCoinFlip(c.Request.Context(), user.ID, bet, req.Choice)
	if err != nil {
		h.writePlayError(c, user.ID, err)
		return
	}
	h.writeOutcome(c, outcome)
}

func (h *GameHandler) PlayWheel(c *gin.Context) {
	user := middleware.CurrentUser(c)
	bet, ok := bindBet(c)
	if !ok {
		return
	}

	outcome, err := h.games.PlayWheel(c.Request.Context(), user.ID, bet)
	if err != nil {
		h.writePlayError(c, user.ID, err)
		return
	}
	h.writeOutcome(c, outcome)
}

func (h *GameHandler) BlackjackDeal(c *gin.Context) {
	user := middleware.CurrentUser(c)
	bet, ok := bindBet(c)
	if !ok {
		return
	}

	hand, err := h.games.DealBlackjack(c.Request.Context(), user.ID, bet)
	if err != nil {
		h.writePlayError(c, user.ID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "hand": hand})
}

func (h *GameHandler) BlackjackHit(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.BlackjackHitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.games.HitBlackjack(req.Hand)
	if err != nil {
		h.writePlayError(c, user.ID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "hand": outcome.Hand, "total": outcome.Total, "bust": outcome.Bust})
}

func (h *GameHandler) BlackjackStand(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.BlackjackStandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bet, err := models.ParseBetAmount(req.BetAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.games.StandBlackjack(c.Request.Context(), user.ID, bet, req.PlayerCards, req.DealerCards)
	if err != nil {
		h.writePlayError(c, user.ID, err)
		return
	}
	h.writeOutcome(c, outcome)
}

// RecordPlay appends a play settled on the client.
func (h *GameHandler) RecordPlay(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.RecordPlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bet, err := models.ParseBetAmount(req.BetAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	win, err := models.ParseMoney(req.WinAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.games.RecordPlay(c.Request.Context(), user.ID, models.GameType(req.GameType), bet, win, req.Result)
	if err != nil {
		h.writePlayError(c, user.ID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "record": historyJSON(rec)})
}

func (h *GameHandler) History(c *gin.Context) {
	user := middleware.CurrentUser(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	records, err := h.games.History(c.Request.Context(), user.ID, limit)
	if err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Error("failed to get history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get history"})
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, rec := range records {
		out = append(out, historyJSON(rec))
	}
	c.JSON(http.StatusOK, gin.H{"history": out})
}
