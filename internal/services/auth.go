package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"supa-casino-backend/internal/models"
	"supa-casino-backend/internal/store"
)

var (
	// ErrInvalidCredentials is returned for both unknown usernames and wrong
	// passwords so login failures are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
)

// PromoCode grants the boosted starting balance at registration.
const PromoCode = "SUPA"

var promoBalance = decimal.NewFromInt(2500)

// AuthService handles registration, login and session resolution. Sessions
// are opaque random tokens stored server side, so logout invalidates them
// immediately.
type AuthService struct {
	users       store.UserStore
	ledger      store.LedgerStore
	sessions    store.SessionStore
	log         *logrus.Logger
	sessionTTL  time.Duration
	rememberTTL time.Duration
}

func NewAuthService(users store.UserStore, ledger store.LedgerStore, sessions store.SessionStore, log *logrus.Logger, sessionTTL, rememberTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if rememberTTL <= 0 {
		rememberTTL = 30 * 24 * time.Hour
	}
	return &AuthService{
		users:       users,
		ledger:      ledger,
		sessions:    sessions,
		log:         log,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
	}
}

// AuthResult carries the signed-in user and the session to hand back as a
// cookie.
type AuthResult struct {
	User    *models.User
	Session *models.Session
}

// Register creates a local account, applies the promo code if it matches and
// signs the new user in.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Name:         req.Name,
		Email:        req.Email,
		LoginMethod:  models.LoginMethodLocal,
		Role:         models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if strings.EqualFold(strings.TrimSpace(req.PromoCode), PromoCode) {
		// Ensure the balance row exists before overwriting it.
		if _, err := s.ledger.Balance(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("init balance: %w", err)
		}
		if _, err := s.ledger.SetBalance(ctx, user.ID, promoBalance); err != nil {
			return nil, fmt.Errorf("apply promo balance: %w", err)
		}
		s.log.WithField("user_id", user.ID).Info("promo code applied at registration")
	}

	session, err := s.issueSession(ctx, user, false)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Session: session}, nil
}

// Login verifies the password and issues a fresh session. RememberMe extends
// the session lifetime from the default to the long TTL.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, error) {
	user, err := s.users.UserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.TouchLastSignedIn(ctx, user.ID); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to touch last signed in")
	}

	session, err := s.issueSession(ctx, user, req.RememberMe)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Session: session}, nil
}

// Logout deletes the session; unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// UserForToken resolves a session cookie to its user. Expired or unknown
// sessions return ErrNotFound.
func (s *AuthService) UserForToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, store.ErrNotFound
	}
	session, err := s.sessions.Session(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, store.ErrNotFound
	}

	if session.UserID != 0 {
		return s.users.UserByID(ctx, session.UserID)
	}
	if session.OpenID != "" {
		return s.users.UserByOpenID(ctx, session.OpenID)
	}
	return nil, store.ErrNotFound
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User, remember bool) (*models.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	ttl := s.sessionTTL
	if remember {
		ttl = s.rememberTTL
	}
	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		OpenID:    user.OpenID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
