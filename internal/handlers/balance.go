package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"supa-casino-backend/internal/middleware"
	"supa-casino-backend/internal/models"
	"supa-casino-backend/internal/services"
)

type BalanceHandler struct {
	balance *services.BalanceService
	log     *logrus.Logger
}

func NewBalanceHandler(balance *services.BalanceService, log *logrus.Logger) *BalanceHandler {
	return &BalanceHandler{balance: balance, log: log}
}

func balanceJSON(b *models.Balance) gin.H {
	return gin.H{
		"id":        b.ID,
		"userId":    b.UserID,
		"balance":   b.Amount.StringFixed(2),
		"createdAt": b.CreatedAt,
		"updatedAt": b.UpdatedAt,
	}
}

func (h *BalanceHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)

	balance, err := h.balance.Get(c.Request.Context(), user.ID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Error("failed to get balance")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get balance"})
		return
	}
	c.JSON(http.StatusOK, balanceJSON(balance))
}

func (h *BalanceHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.UpdateBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := models.ParseMoney(req.NewBalance)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	balance, err := h.balance.Update(c.Request.Context(), user.ID, amount)
	if err != nil {
		if errors.Is(err, services.ErrNegativeBalance) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Balance cannot be negative"})
			return
		}
		h.log.WithError(err).WithField("user_id", user.ID).Error("failed to update balance")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update balance"})
		return
	}
	c.JSON(http.StatusOK, balanceJSON(balance))
}

func (h *BalanceHandler) Reset(c *gin.Context) {
	user := middleware.CurrentUser(c)

	balance, err := h.balance.Reset(c.Request.Context(), user.ID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Error("failed to reset balance")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset balance"})
		return
	}
	c.JSON(http.StatusOK, balanceJSON(balance))
}

func (h *BalanceHandler) WithdrawalAddresses(c *gin.Context) {
	user := middleware.CurrentUser(c)

	addrs, err := h.balance.WithdrawalAddresses(c.Request.Context(), user.ID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Error("failed to get withdrawal addresses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get withdrawal addresses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addrs})
}

func (h *BalanceHandler) SetWithdrawalAddress(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.SetWithdrawalAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	addrs, err := h.balance.SetWithdrawalAddress(c.Request.Context(), user.ID, models.Crypto(req.Crypto), req.Address)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCrypto) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported cryptocurrency"})
			return
		}
		h.log.WithError(err).WithField("user_id", user.ID).Error("failed to set withdrawal address")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set withdrawal address"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "addresses": addrs})
}
