// Package store defines the record-store contract the services run against.
// Implementations persist a handful of flat record collections; they make no
// transactional guarantees across calls.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"supa-casino-backend/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUsernameTaken is returned when creating a user with an existing username.
	ErrUsernameTaken = errors.New("username already exists")
)

// UserStore persists account records.
type UserStore interface {
	// CreateUser assigns an id and stores the user. Fails with
	// ErrUsernameTaken when the username is already in use.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UserByID(ctx context.Context, id int) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByOpenID(ctx context.Context, openID string) (*models.User, error)
	// UpsertOAuthUser creates or updates a user keyed by OpenID.
	UpsertOAuthUser(ctx context.Context, user *models.User) (*models.User, error)
	TouchLastSignedIn(ctx context.Context, userID int) error
}

// LedgerStore persists balances and the append-only play history.
type LedgerStore interface {
	// Balance returns the user's balance record, creating a zero-balance
	// record on first access.
	Balance(ctx context.Context, userID int) (*models.Balance, error)
	// SetBalance overwrites the stored amount. Fails with ErrNotFound when
	// no balance record exists yet.
	SetBalance(ctx context.Context, userID int, amount decimal.Decimal) (*models.Balance, error)
	// AppendHistory stores an immutable play record and assigns its id.
	AppendHistory(ctx context.Context, rec *models.GameHistory) (*models.GameHistory, error)
	// History returns up to limit records for the user, newest first.
	History(ctx context.Context, userID, limit int) ([]*models.GameHistory, error)
}

// SessionStore persists opaque session tokens.
type SessionStore interface {
	CreateSession(ctx context.Context, session *models.Session) error
	// Session returns the session for a token, expired or not; callers
	// check expiry. Unknown tokens fail with ErrNotFound.
	Session(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// AddressStore persists per-user withdrawal addresses.
type AddressStore interface {
	WithdrawalAddresses(ctx context.Context, userID int) (*models.WithdrawalAddresses, error)
	SetWithdrawalAddress(ctx context.Context, userID int, crypto models.Crypto, address string) error
}

// Store is the full record store backing the application.
type Store interface {
	UserStore
	LedgerStore
	SessionStore
	AddressStore
	Close() error
}
