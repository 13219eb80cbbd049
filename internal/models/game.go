package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type GameType string

const (
	GameSlots     GameType = "slots"
	GameDice      GameType = "dice"
	GameRoulette  GameType = "roulette"
	GameBlackjack GameType = "blackjack"
	GameCoinFlip  GameType = "coinflip"
	GameWheel     GameType = "wheel"
)

func (t GameType) Valid() bool {
	switch t {
	case GameSlots, GameDice, GameRoulette, GameBlackjack, GameCoinFlip, GameWheel:
		return true
	}
	return false
}

// GameHistory is an append-only record of a single play. Records are never
// mutated or deleted; creation time orders a user's play history.
type GameHistory struct {
	ID        int             `json:"id"`
	UserID    int             `json:"userId"`
	GameType  GameType        `json:"gameType"`
	BetAmount decimal.Decimal `json:"betAmount"`
	WinAmount decimal.Decimal `json:"winAmount"`
	Result    json.RawMessage `json:"result,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Per-game result payloads, one shape per game type, discriminated by the
// history record's GameType tag.

type SlotsResult struct {
	Reels [3]string `json:"reels"`
}

type DiceResult struct {
	Roll       float64 `json:"roll"`
	Target     float64 `json:"target"`
	Over       bool    `json:"over"`
	Multiplier float64 `json:"multiplier"`
}

type RouletteResult struct {
	Number int    `json:"number"`
	Color  string `json:"color"`
}

type BlackjackResult struct {
	PlayerCards []string `json:"playerCards"`
	DealerCards []string `json:"dealerCards"`
	PlayerTotal int      `json:"playerTotal"`
	DealerTotal int      `json:"dealerTotal"`
}

type CoinFlipResult struct {
	Choice string `json:"choice"`
	Result string `json:"result"`
}

type WheelResult struct {
	Segment    int     `json:"segment"`
	Multiplier float64 `json:"multiplier"`
}
