// Package jsonstore persists all records in a single JSON document on disk.
// Every operation is a read-modify-write of the whole file; a mutex keeps
// the file itself consistent but there is no isolation across operations.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"supa-casino-backend/internal/models"
	"supa-casino-backend/internal/store"
)

type Store struct {
	path string
	mu   sync.Mutex
}

// Open prepares a JSON file store at path, creating the parent directory.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{path: path}, nil
}

func (s *Store) Close() error { return nil }

type storedUser struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	OpenID       string    `json:"openId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	LoginMethod  string    `json:"loginMethod"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastSignedIn time.Time `json:"lastSignedIn"`
}

type storedBalance struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type storedHistory struct {
	ID        int             `json:"id"`
	UserID    int             `json:"userId"`
	GameType  string          `json:"gameType"`
	BetAmount string          `json:"betAmount"`
	WinAmount string          `json:"winAmount"`
	Result    json.RawMessage `json:"result,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type storedSession struct {
	Token     string    `json:"token"`
	UserID    int       `json:"userId,omitempty"`
	OpenID    string    `json:"openId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type counters struct {
	Users        int `json:"users"`
	UserBalances int `json:"userBalances"`
	GameHistory  int `json:"gameHistory"`
}

type document struct {
	Users               []storedUser                           `json:"users"`
	UserBalances        []storedBalance                        `json:"userBalances"`
	GameHistory         []storedHistory                        `json:"gameHistory"`
	Sessions            []storedSession                        `json:"sessions"`
	WithdrawalAddresses map[string]*models.WithdrawalAddresses `json:"withdrawalAddresses"`
	NextIDs             counters                               `json:"nextIds"`
}

func emptyDocument() *document {
	return &document{
		Users:               []storedUser{},
		UserBalances:        []storedBalance{},
		GameHistory:         []storedHistory{},
		Sessions:            []storedSession{},
		WithdrawalAddresses: map[string]*models.WithdrawalAddresses{},
		NextIDs:             counters{Users: 1, UserBalances: 1, GameHistory: 1},
	}
}

// read loads the document, starting fresh when the file is missing or
// unreadable. A corrupt file is treated as empty rather than an error.
func (s *Store) read() *document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return emptyDocument()
	}
	doc := emptyDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return emptyDocument()
	}
	if doc.WithdrawalAddresses == nil {
		doc.WithdrawalAddresses = map[string]*models.WithdrawalAddresses{}
	}
	return doc
}

func (s *Store) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

func toUser(row *storedUser) *models.User {
	return &models.User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		OpenID:       row.OpenID,
		Name:         row.Name,
		Email:        row.Email,
		LoginMethod:  row.LoginMethod,
		Role:         models.Role(row.Role),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastSignedIn: row.LastSignedIn,
	}
}

func toBalance(row *storedBalance) (*models.Balance, error) {
	amount, err := decimal.NewFromString(row.Balance)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance %q for user %d: %w", row.Balance, row.UserID, err)
	}
	return &models.Balance{
		ID:        row.ID,
		UserID:    row.UserID,
		Amount:    amount,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func toHistory(row *storedHistory) (*models.GameHistory, error) {
	bet, err := decimal.NewFromString(row.BetAmount)
	if err != nil {
		return nil, fmt.Errorf("corrupt bet amount %q: %w", row.BetAmount, err)
	}
	win, err := decimal.NewFromString(row.WinAmount)
	if err != nil {
		return nil, fmt.Errorf("corrupt win amount %q: %w", row.WinAmount, err)
	}
	return &models.GameHistory{
		ID:        row.ID,
		UserID:    row.UserID,
		GameType:  models.GameType(row.GameType),
		BetAmount: bet,
		WinAmount: win,
		Result:    row.Result,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	if user.Username != "" {
		for i := range doc.Users {
			if doc.Users[i].Username == user.Username {
				return nil, store.ErrUsernameTaken
			}
		}
	}

	now := time.Now().UTC()
	row := storedUser{
		ID:           doc.NextIDs.Users,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		OpenID:       user.OpenID,
		Name:         user.Name,
		Email:        user.Email,
		LoginMethod:  user.LoginMethod,
		Role:         string(user.Role),
		CreatedAt:    now,
		UpdatedAt:    now,
		LastSignedIn: now,
	}
	if row.LoginMethod == "" {
		row.LoginMethod = models.LoginMethodLocal
	}
	if row.Role == "" {
		row.Role = string(models.RoleUser)
	}
	doc.NextIDs.Users++
	doc.Users = append(doc.Users, row)
	if err := s.write(doc); err != nil {
		return nil, err
	}
	return toUser(&row), nil
}

func (s *Store) UserByID(ctx context.Context, id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for i := range doc.Users {
		if doc.Users[i].ID == id {
			return toUser(&doc.Users[i]), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for i := range doc.Users {
		if doc.Users[i].Username != "" && doc.Users[i].Username == username {
			return toUser(&doc.Users[i]), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UserByOpenID(ctx context.Context, openID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for i := range doc.Users {
		if doc.Users[i].OpenID != "" && doc.Users[i].OpenID == openID {
			return toUser(&doc.Users[i]), nil
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

	doc := s.read()
	now := time.Now().UTC()
	for i := range doc.Users {
		if doc.Users[i].OpenID == user.OpenID {
			row := &doc.Users[i]
			if user.Name != "" {
				row.Name = user.Name
			}
			if user.Email != "" {
				row.Email = user.Email
			}
			row.UpdatedAt = now
			row.LastSignedIn = now
			if err := s.write(doc); err != nil {
				return nil, err
			}
			return toUser(row), nil
		}
	}

	row := storedUser{
		ID:           doc.NextIDs.Users,
		OpenID:       user.OpenID,
		Name:         user.Name,
		Email:        user.Email,
		LoginMethod:  models.LoginMethodOAuth,
		Role:         string(models.RoleUser),
		CreatedAt:    now,
		UpdatedAt:    now,
		LastSignedIn: now,
	}
	doc.NextIDs.Users++
	doc.Users = append(doc.Users, row)
	if err := s.write(doc); err != nil {
		return nil, err
	}
	return toUser(&row), nil
}

func (s *Store) TouchLastSignedIn(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for i := range doc.Users {
		if doc.Users[i].ID == userID {
			doc.Users[i].LastSignedIn = time.Now().UTC()
			return s.write(doc)
		}
	}
	return store.ErrNotFound
}

func (s *Store) Balance(ctx context.Context, userID int) (*models.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for i := range doc.UserBalances {
		if doc.UserBalances[i].UserID == userID {
			return toBalance(&doc.UserBalances[i])
		}
	}

	now := time.Now().UTC()
	row := storedBalance{
		ID:        doc.NextIDs.UserBalances,
		UserID:    userID,
		Balance:   "0.00",
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.NextIDs.UserBalances++
	doc.UserBalances = append(doc.UserBalances, row)
	if err := s.write(doc); err != nil {
		return nil, err
	}
	return toBalance(&row)
}

func (s *Store) SetBalance(ctx context.Context, userID int, amount decimal.Decimal) (*models.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for i := range doc.UserBalances {
		if doc.UserBalances[i].UserID == userID {
			doc.UserBalances[i].Balance = amount.StringFixed(2)
			doc.UserBalances[i].UpdatedAt = time.Now().UTC()
			if err := s.write(doc); err != nil {
				return nil, err
			}
			return toBalance(&doc.UserBalances[i])
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) AppendHistory(ctx context.Context, rec *models.GameHistory) (*models.GameHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	row := storedHistory{
		ID:        doc.NextIDs.GameHistory,
		UserID:    rec.UserID,
		GameType:  string(rec.GameType),
		BetAmount: rec.BetAmount.String(),
		WinAmount: rec.WinAmount.String(),
		Result:    rec.Result,
		CreatedAt: createdAt,
	}
	doc.NextIDs.GameHistory++
	doc.GameHistory = append(doc.GameHistory, row)
	if err := s.write(doc); err != nil {
		return nil, err
	}
	return toHistory(&row)
}

func (s *Store) History(ctx context.Context, userID, limit int) ([]*models.GameHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	doc := s.read()
	var out []*models.GameHistory
	// Records are appended chronologically; walk backwards for newest first.
	for i := len(doc.GameHistory) - 1; i >= 0 && len(out) < limit; i-- {
		if doc.GameHistory[i].UserID != userID {
			continue
		}
		rec, err := toHistory(&doc.GameHistory[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	doc.Sessions = append(doc.Sessions, storedSession{
		Token:     session.Token,
		UserID:    session.UserID,
		OpenID:    session.OpenID,
		ExpiresAt: session.ExpiresAt,
	})
	return s.write(doc)
}

func (s *Store) Session(ctx context.Context, token string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for i := range doc.Sessions {
		if doc.Sessions[i].Token == token {
			row := doc.Sessions[i]
			return &models.Session{
				Token:     row.Token,
				UserID:    row.UserID,
				OpenID:    row.OpenID,
				ExpiresAt: row.ExpiresAt,
			}, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for i := range doc.Sessions {
		if doc.Sessions[i].Token == token {
			doc.Sessions = append(doc.Sessions[:i], doc.Sessions[i+1:]...)
			return s.write(doc)
		}
	}
	return nil
}

func (s *Store) WithdrawalAddresses(ctx context.Context, userID int) (*models.WithdrawalAddresses, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	if addrs, ok := doc.WithdrawalAddresses[userKey(userID)]; ok {
		copied := *addrs
		return &copied, nil
	}
	return &models.WithdrawalAddresses{}, nil
}

func (s *Store) SetWithdrawalAddress(ctx context.Context, userID int, crypto models.Crypto, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	key := userKey(userID)
	addrs, ok := doc.WithdrawalAddresses[key]
	if !ok {
		addrs = &models.WithdrawalAddresses{}
		doc.WithdrawalAddresses[key] = addrs
	}
	addrs.Set(crypto, address)
	return s.write(doc)
}

func userKey(userID int) string {
	return fmt.Sprintf("%d", userID)
}
