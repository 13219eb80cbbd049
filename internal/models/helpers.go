package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseBetAmount parses a client-supplied bet. Bets must be positive and at
// most two decimal places.
func ParseBetAmount(s string) (decimal.Decimal, error) {
	amount, err := ParseMoney(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("bet amount must be positive")
	}
	return amount, nil
}

// ParseMoney parses a non-negative two-decimal amount.
func ParseMoney(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("amount must not be negative")
	}
	if amount.Exponent() < -2 {
		return decimal.Decimal{}, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return amount, nil
}
