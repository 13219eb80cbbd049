package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance holds the demo-money balance for a user. Exactly one record per
// user; created lazily at zero on first read.
type Balance struct {
	ID        int             `json:"id"`
	UserID    int             `json:"userId"`
	Amount    decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type Crypto string

const (
	CryptoUSDT Crypto = "USDT"
	CryptoBTC  Crypto = "BTC"
	CryptoETH  Crypto = "ETH"
	CryptoLTC  Crypto = "LTC"
)

func (c Crypto) Valid() bool {
	switch c {
	case CryptoUSDT, CryptoBTC, CryptoETH, CryptoLTC:
		return true
	}
	return false
}

// WithdrawalAddresses maps the supported currencies to free-form address
// strings. Unset entries are empty strings.
type WithdrawalAddresses struct {
	USDT string `json:"USDT"`
	BTC  string `json:"BTC"`
	ETH  string `json:"ETH"`
	LTC  string `json:"LTC"`
}

func (w *WithdrawalAddresses) Set(c Crypto, address string) {
	switch c {
	case CryptoUSDT:
		w.USDT = address
	case CryptoBTC:
		w.BTC = address
	case CryptoETH:
		w.ETH = address
	case CryptoLTC:
		w.LTC = address
	}
}

func (w *WithdrawalAddresses) Get(c Crypto) string {
	switch c {
	case CryptoUSDT:
		return w.USDT
	case CryptoBTC:
		return w.BTC
	case CryptoETH:
		return w.ETH
	case CryptoLTC:
		return w.LTC
	}
	return ""
}
