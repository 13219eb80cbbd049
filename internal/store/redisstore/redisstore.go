// Package redisstore implements the record store on Redis. Records are
// stored as JSON values under per-entity keys with secondary index keys for
// username/openId lookups; history ids order a per-user sorted set.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"supa-casino-backend/internal/models"
	"supa-casino-backend/internal/store"
)

type Store struct {
	client *redis.Client
}

func Open(addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// storedUser carries the password hash, which the domain type hides from JSON.
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

func fromUser(u *models.User) *storedUser {
	return &storedUser{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		OpenID:       u.OpenID,
		Name:         u.Name,
		Email:        u.Email,
		LoginMethod:  u.LoginMethod,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastSignedIn: u.LastSignedIn,
	}
}

func (row *storedUser) toUser() *models.User {
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

func (s *Store) saveUser(ctx context.Context, row *storedUser) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return s.client.Set(ctx, fmt.Sprintf(keyUser, row.ID), data, 0).Err()
}

func (s *Store) userByKey(ctx context.Context, key string) (*models.User, error) {
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var row storedUser
	if err := json.Unmarshal([]byte(data), &row); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return row.toUser(), nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	id, err := s.client.Incr(ctx, counterUsers).Result()
	if err != nil {
		return nil, fmt.Errorf("allocate user id: %w", err)
	}

	if user.Username != "" {
		ok, err := s.client.SetNX(ctx, fmt.Sprintf(keyUsernameIndex, user.Username), id, 0).Result()
		if err != nil {
			return nil, fmt.Errorf("index username: %w", err)
		}
		if !ok {
			return nil, store.ErrUsernameTaken
		}
	}

	now := time.Now().UTC()
	row := fromUser(user)
	row.ID = int(id)
	row.CreatedAt = now
	row.UpdatedAt = now
	row.LastSignedIn = now
	if row.LoginMethod == "" {
		row.LoginMethod = models.LoginMethodLocal
	}
	if row.Role == "" {
		row.Role = string(models.RoleUser)
	}

	if user.OpenID != "" {
		if err := s.client.Set(ctx, fmt.Sprintf(keyOpenIDIndex, user.OpenID), id, 0).Err(); err != nil {
			return nil, fmt.Errorf("index open id: %w", err)
		}
	}
	if err := s.saveUser(ctx, row); err != nil {
		return nil, err
	}
	return row.toUser(), nil
}

func (s *Store) UserByID(ctx context.Context, id int) (*models.User, error) {
	return s.userByKey(ctx, fmt.Sprintf(keyUser, id))
}

func (s *Store) userByIndex(ctx context.Context, indexKey string) (*models.User, error) {
	id, err := s.client.Get(ctx, indexKey).Int()
	if err == redis.Nil {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve index: %w", err)
	}
	return s.UserByID(ctx, id)
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userByIndex(ctx, fmt.Sprintf(keyUsernameIndex, username))
}

func (s *Store) UserByOpenID(ctx context.Context, openID string) (*models.User, error) {
	return s.userByIndex(ctx, fmt.Sprintf(keyOpenIDIndex, openID))
}

func (s *Store) UpsertOAuthUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.OpenID == "" {
		return nil, errors.New("open id is required")
	}

	existing, err := s.UserByOpenID(ctx, user.OpenID)
	if err == nil {
		now := time.Now().UTC()
		row := fromUser(existing)
		if user.Name != "" {
			row.Name = user.Name
		}
		if user.Email != "" {
			row.Email = user.Email
		}
		row.UpdatedAt = now
		row.LastSignedIn = now
		if err := s.saveUser(ctx, row); err != nil {
			return nil, err
		}
		return row.toUser(), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	return s.CreateUser(ctx, &models.User{
		OpenID:      user.OpenID,
		Name:        user.Name,
		Email:       user.Email,
		LoginMethod: models.LoginMethodOAuth,
	})
}

func (s *Store) TouchLastSignedIn(ctx context.Context, userID int) error {
	user, err := s.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	row := fromUser(user)
	row.LastSignedIn = time.Now().UTC()
	return s.saveUser(ctx, row)
}

func (s *Store) Balance(ctx context.Context, userID int) (*models.Balance, error) {
	key := fmt.Sprintf(keyBalance, userID)

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		id, err := s.client.Incr(ctx, counterBalances).Result()
		if err != nil {
			return nil, fmt.Errorf("allocate balance id: %w", err)
		}
		now := time.Now().UTC()
		balance := &models.Balance{
			ID:        int(id),
			UserID:    userID,
			Amount:    decimal.Zero,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.saveBalance(ctx, balance); err != nil {
			return nil, err
		}
		return balance, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	var balance models.Balance
	if err := json.Unmarshal([]byte(data), &balance); err != nil {
		return nil, fmt.Errorf("unmarshal balance: %w", err)
	}
	return &balance, nil
}

func (s *Store) saveBalance(ctx context.Context, balance *models.Balance) error {
	data, err := json.Marshal(balance)
	if err != nil {
		return fmt.Errorf("marshal balance: %w", err)
	}
	return s.client.Set(ctx, fmt.Sprintf(keyBalance, balance.UserID), data, 0).Err()
}

func (s *Store) SetBalance(ctx context.Context, userID int, amount decimal.Decimal) (*models.Balance, error) {
	key := fmt.Sprintf(keyBalance, userID)

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	var balance models.Balance
	if err := json.Unmarshal([]byte(data), &balance); err != nil {
		return nil, fmt.Errorf("unmarshal balance: %w", err)
	}
	balance.Amount = amount
	balance.UpdatedAt = time.Now().UTC()
	if err := s.saveBalance(ctx, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

func (s *Store) AppendHistory(ctx context.Context, rec *models.GameHistory) (*models.GameHistory, error) {
	id, err := s.client.Incr(ctx, counterHistory).Result()
	if err != nil {
		return nil, fmt.Errorf("allocate history id: %w", err)
	}

	stored := *rec
	stored.ID = int(id)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("marshal history record: %w", err)
	}
	if err := s.client.Set(ctx, fmt.Sprintf(keyHistoryRecord, stored.ID), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("save history record: %w", err)
	}

	// Ids are monotonic, so scoring by id keeps the set in creation order.
	err = s.client.ZAdd(ctx, fmt.Sprintf(keyUserHistory, stored.UserID), redis.Z{
		Score:  float64(stored.ID),
		Member: stored.ID,
	}).Err()
	if err != nil {
		return nil, fmt.Errorf("index history record: %w", err)
	}

	return &stored, nil
}

func (s *Store) History(ctx context.Context, userID, limit int) ([]*models.GameHistory, error) {
	if limit <= 0 {
		limit = 50
	}

	ids, err := s.client.ZRevRange(ctx, fmt.Sprintf(keyUserHistory, userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("get history ids: %w", err)
	}

	var out []*models.GameHistory
	for _, raw := range ids {
		id, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		data, err := s.client.Get(ctx, fmt.Sprintf(keyHistoryRecord, id)).Result()
		if err != nil {
			continue
		}
		var rec models.GameHistory
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			continue
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.Set(ctx, fmt.Sprintf(keySession, session.Token), data, ttl).Err()
}

func (s *Store) Session(ctx context.Context, token string) (*models.Session, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(keySession, token)).Result()
	if err == redis.Nil {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, fmt.Sprintf(keySession, token)).Err()
}

func (s *Store) WithdrawalAddresses(ctx context.Context, userID int) (*models.WithdrawalAddresses, error) {
	fields, err := s.client.HGetAll(ctx, fmt.Sprintf(keyAddresses, userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get withdrawal addresses: %w", err)
	}

	addrs := &models.WithdrawalAddresses{}
	for field, address := range fields {
		addrs.Set(models.Crypto(field), address)
	}
	return addrs, nil
}

func (s *Store) SetWithdrawalAddress(ctx context.Context, userID int, crypto models.Crypto, address string) error {
	return s.client.HSet(ctx, fmt.Sprintf(keyAddresses, userID), string(crypto), address).Err()
}
