package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"supa-casino-backend/internal/models"
	"supa-casino-backend/internal/store"
)

var (
	// ErrNegativeBalance is returned when a balance update would go below zero.
	ErrNegativeBalance = errors.New("balance cannot be negative")
	// ErrInvalidCrypto is returned for withdrawal currencies outside the
	// supported set.
	ErrInvalidCrypto = errors.New("unsupported cryptocurrency")
)

// BalanceService manages the play-money balance and the withdrawal address
// book. Balance rows are created lazily at zero on first read.
type BalanceService struct {
	ledger    store.LedgerStore
	addresses store.AddressStore
}

func NewBalanceService(ledger store.LedgerStore, addresses store.AddressStore) *BalanceService {
	return &BalanceService{ledger: ledger, addresses: addresses}
}

func (s *BalanceService) Get(ctx context.Context, userID int) (*models.Balance, error) {
	balance, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// Update overwrites the balance with a client-supplied amount. The web
// client settles its own game outcomes through this call.
func (s *BalanceService) Update(ctx context.Context, userID int, amount decimal.Decimal) (*models.Balance, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeBalance
	}
	if _, err := s.ledger.Balance(ctx, userID); err != nil {
		return nil, fmt.Errorf("init balance: %w", err)
	}
	balance, err := s.ledger.SetBalance(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("set balance: %w", err)
	}
	return balance, nil
}

// Reset zeroes the balance.
func (s *BalanceService) Reset(ctx context.Context, userID int) (*models.Balance, error) {
	return s.Update(ctx, userID, decimal.Zero)
}

func (s *BalanceService) WithdrawalAddresses(ctx context.Context, userID int) (*models.WithdrawalAddresses, error) {
	addrs, err := s.addresses.WithdrawalAddresses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get withdrawal addresses: %w", err)
	}
	return addrs, nil
}

// SetWithdrawalAddress stores one address and returns the updated book.
// An empty address clears the slot.
func (s *BalanceService) SetWithdrawalAddress(ctx context.Context, userID int, crypto models.Crypto, address string) (*models.WithdrawalAddresses, error) {
	if !crypto.Valid() {
		return nil, ErrInvalidCrypto
	}
	if err := s.addresses.SetWithdrawalAddress(ctx, userID, crypto, strings.TrimSpace(address)); err != nil {
		return nil, fmt.Errorf("set withdrawal address: %w", err)
	}
	return s.WithdrawalAddresses(ctx, userID)
}
