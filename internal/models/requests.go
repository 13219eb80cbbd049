package models

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Password  string `json:"password" binding:"required,min=6"`
	Name      string `json:"name"`
	Email     string `json:"email" binding:"omitempty,email"`
	PromoCode string `json:"promoCode"`
}

type LoginRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type UpdateBalanceRequest struct {
	NewBalance string `json:"newBalance" binding:"required"`
}

type SetWithdrawalAddressRequest struct {
	Crypto  string `json:"crypto" binding:"required"`
	Address string `json:"address"`
}

// RecordPlayRequest reports a play whose outcome was computed by the caller.
// The server appends it verbatim after shape validation.
type RecordPlayRequest struct {
	GameType  string `json:"gameType" binding:"required"`
	BetAmount string `json:"betAmount" binding:"required"`
	WinAmount string `json:"winAmount" binding:"required"`
	Result    string `json:"result"`
}

type BetRequest struct {
	BetAmount string `json:"betAmount" binding:"required"`
}

type DiceBetRequest struct {
	BetAmount string  `json:"betAmount" binding:"required"`
	Target    float64 `json:"target" binding:"required"`
	Over      bool    `json:"over"`
}

type CoinFlipBetRequest struct {
	BetAmount string `json:"betAmount" binding:"required"`
	Choice    string `json:"choice" binding:"required,oneof=heads tails"`
}

type BlackjackHitRequest struct {
	Hand []string `json:"hand" binding:"required,min=2"`
}

type BlackjackStandRequest struct {
	BetAmount   string   `json:"betAmount" binding:"required"`
	PlayerCards []string `json:"playerCards" binding:"required,min=2"`
	DealerCards []string `json:"dealerCards" binding:"required,min=1"`
}
