// Package memstore is an in-memory record store used in tests and as a
// throwaway backend. Semantics mirror the JSON file store.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"supa-casino-backend/internal/models"
	"supa-casino-backend/internal/store"
)

type Store struct {
	mu        sync.Mutex
	users     []*models.User
	balances  map[int]*models.Balance
	history   []*models.GameHistory
	sessions  map[string]*models.Session
	addresses map[int]*models.WithdrawalAddresses

	nextUserID    int
	nextBalanceID int
	nextHistoryID int
}

func New() *Store {
	return &Store{
		balances:      map[int]*models.Balance{},
		sessions:      map[string]*models.Session{},
		addresses:     map[int]*models.WithdrawalAddresses{},
		nextUserID:    1,
		nextBalanceID: 1,
		nextHistoryID: 1,
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Username != "" {
		for _, u := range s.users {
			if u.Username == user.Username {
				return nil, store.ErrUsernameTaken
			}
		}
	}

	now := time.Now().UTC()
	stored := *user
	stored.ID = s.nextUserID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	stored.LastSignedIn = now
	if stored.LoginMethod == "" {
		stored.LoginMethod = models.LoginMethodLocal
	}
	if stored.Role == "" {
		stored.Role = models.RoleUser
	}
	s.nextUserID++
	s.users = append(s.users, &stored)

	copied := stored
	return &copied, nil
}

func (s *Store) UserByID(ctx context.Context, id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username != "" && u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UserByOpenID(ctx context.Context, openID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.OpenID != "" && u.OpenID == openID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpsertOAuthUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.OpenID == "" {
		return nil, errors.New("open id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, u := range s.users {
		if u.OpenID == user.OpenID {
			if user.Name != "" {
				u.Name = user.Name
			}
			if user.Email != "" {
				u.Email = user.Email
			}
			u.UpdatedAt = now
			u.LastSignedIn = now
			copied := *u
			return &copied, nil
		}
	}

	stored := models.User{
		ID:           s.nextUserID,
		OpenID:       user.OpenID,
		Name:         user.Name,
		Email:        user.Email,
		LoginMethod:  models.LoginMethodOAuth,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastSignedIn: now,
	}
	s.nextUserID++
	s.users = append(s.users, &stored)

	copied := stored
	return &copied, nil
}

func (s *Store) TouchLastSignedIn(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == userID {
			u.LastSignedIn = time.Now().UTC()
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) Balance(ctx context.Context, userID int) (*models.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.balances[userID]; ok {
		copied := *b
		return &copied, nil
	}

	now := time.Now().UTC()
	b := &models.Balance{
		ID:        s.nextBalanceID,
		UserID:    userID,
		Amount:    decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextBalanceID++
	s.balances[userID] = b

	copied := *b
	return &copied, nil
}

func (s *Store) SetBalance(ctx context.Context, userID int, amount decimal.Decimal) (*models.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.balances[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	b.Amount = amount
	b.UpdatedAt = time.Now().UTC()

	copied := *b
	return &copied, nil
}

func (s *Store) AppendHistory(ctx context.Context, rec *models.GameHistory) (*models.GameHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	stored.ID = s.nextHistoryID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.nextHistoryID++
	s.history = append(s.history, &stored)

	copied := stored
	return &copied, nil
}

func (s *Store) History(ctx context.Context, userID, limit int) ([]*models.GameHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	var out []*models.GameHistory
	for i := len(s.history) - 1; i >= 0 && len(out) < limit; i-- {
		if s.history[i].UserID != userID {
			continue
		}
		copied := *s.history[i]
		out = append(out, &copied)
	}
	return out, nil
}

func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.sessions[session.Token] = &copied
	return nil
}

func (s *Store) Session(ctx context.Context, token string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[token]; ok {
		copied := *sess
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *Store) WithdrawalAddresses(ctx context.Context, userID int) (*models.WithdrawalAddresses, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if addrs, ok := s.addresses[userID]; ok {
		copied := *addrs
		return &copied, nil
	}
	return &models.WithdrawalAddresses{}, nil
}

func (s *Store) SetWithdrawalAddress(ctx context.Context, userID int, crypto models.Crypto, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	addrs, ok := s.addresses[userID]
	if !ok {
		addrs = &models.WithdrawalAddresses{}
		s.addresses[userID] = addrs
	}
	addrs.Set(crypto, address)
	return nil
}
