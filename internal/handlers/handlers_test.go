package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supa-casino-backend/internal/services"
	"supa-casino-backend/internal/store/memstore"
)

const testCookie = "casino_session"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	st := memstore.New()
	hub := NewHub(log)

	authService := services.NewAuthService(st, st, st, log, 24*time.Hour, 30*24*time.Hour)
	balanceService := services.NewBalanceService(st, st)
	gameService := services.NewGameService(st, services.NewSeededGenerator(1), hub, log)

	cookie := CookieOptions{Name: testCookie}

	return NewRouter(RouterDeps{
		Auth:       authService,
		AuthH:      NewAuthHandler(authService, cookie, log),
		BalanceH:   NewBalanceHandler(balanceService, log),
		GameH:      NewGameHandler(gameService, log),
		Hub:        hub,
		CookieName: testCookie,
		Log:        log,
	})
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func register(t *testing.T, r *gin.Engine, username, promo string) []*http.Cookie {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"username":  username,
		"password":  "hunter22",
		"promoCode": promo,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return []*http.Cookie{sessionCookie(t, w)}
}

func TestRegisterLoginFlow(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"username": "alice",
		"password": "hunter22",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])

	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.Positive(t, cookie.MaxAge)

	t.Run("short password rejected", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
			"username": "bob",
			"password": "short",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
			"username": "alice",
			"password": "hunter22",
		}, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("login works", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
			"username": "alice",
			"password": "hunter22",
		}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		sessionCookie(t, w)
	})

	t.Run("bad password unauthorized", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
			"username": "alice",
			"password": "wrong",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMeNever401(t *testing.T) {
	r := newTestRouter(t)

	t.Run("anonymous gets null user", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/auth/me", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user":null}`, w.Body.String())
	})

	t.Run("signed in gets the user", func(t *testing.T) {
		cookies := register(t, r, "alice", "")
		w := doJSON(t, r, http.MethodGet, "/api/auth/me", nil, cookies)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		user := body["user"].(map[string]any)
		assert.Equal(t, "alice", user["username"])
	})
}

func TestLogoutClearsSession(t *testing.T) {
	r := newTestRouter(t)
	cookies := register(t, r, "alice", "")

	w := doJSON(t, r, http.MethodPost, "/api/auth/logout", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := sessionCookie(t, w)
	assert.Negative(t, cleared.MaxAge)

	// The old token no longer resolves.
	w = doJSON(t, r, http.MethodGet, "/api/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":null}`, w.Body.String())
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/api/balance", "/api/games/history"} {
		w := doJSON(t, r, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := doJSON(t, r, http.MethodPost, "/api/games/slots", gin.H{"betAmount": "1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPromoBalanceAndUpdate(t *testing.T) {
	r := newTestRouter(t)
	cookies := register(t, r, "alice", "SUPA")

	w := doJSON(t, r, http.MethodGet, "/api/balance", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "2500.00", body["balance"])

	t.Run("update", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/balance/update", gin.H{"newBalance": "123.45"}, cookies)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "123.45", decode(t, w)["balance"])
	})

	t.Run("negative update rejected", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/balance/update", gin.H{"newBalance": "-1"}, cookies)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reset", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/balance/reset", nil, cookies)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "0.00", decode(t, w)["balance"])
	})
}

func TestWithdrawalAddressEndpoints(t *testing.T) {
	r := newTestRouter(t)
	cookies := register(t, r, "alice", "")

	w := doJSON(t, r, http.MethodPost, "/api/balance/withdrawal-address", gin.H{
		"crypto":  "BTC",
		"address": " bc1qxyz ",
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/balance/withdrawal-addresses", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	addrs := body["addresses"].(map[string]any)
	assert.Equal(t, "bc1qxyz", addrs["BTC"])

	t.Run("unsupported currency rejected", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/balance/withdrawal-address", gin.H{
			"crypto":  "DOGE",
			"address": "Dxyz",
		}, cookies)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPlayEndpoints(t *testing.T) {
	r := newTestRouter(t)
	cookies := register(t, r, "alice", "SUPA")

	t.Run("coinflip", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/games/coinflip", gin.H{
			"betAmount": "10",
			"choice":    "heads",
		}, cookies)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, "coinflip", body["gameType"])
		assert.NotEmpty(t, body["message"])
		assert.NotEmpty(t, body["balance"])
	})

	t.Run("dice with bad target", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/games/dice", gin.H{
			"betAmount": "10",
			"target":    150,
		}, cookies)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("slots with oversized bet", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/games/slots", gin.H{
			"betAmount": "1000000",
		}, cookies)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Insufficient balance")
	})

	t.Run("blackjack deal then stand", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/games/blackjack/deal", gin.H{"betAmount": "25"}, cookies)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		hand := body["hand"].(map[string]any)
		assert.Len(t, hand["playerCards"], 2)

		w = doJSON(t, r, http.MethodPost, "/api/games/blackjack/stand", gin.H{
			"betAmount":   "25",
			"playerCards": []string{"A", "K"},
			"dealerCards": []string{"9"},
		}, cookies)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "blackjack", decode(t, w)["gameType"])
	})

	t.Run("record client-settled play", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/games/play", gin.H{
			"gameType":  "wheel",
			"betAmount": "5",
			"winAmount": "10",
			"result":    `{"segment":8,"multiplier":10}`,
		}, cookies)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("history lists plays newest first", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/games/history?limit=10", nil, cookies)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		history := body["history"].([]any)
		require.NotEmpty(t, history)
		first := history[0].(map[string]any)
		assert.Equal(t, "wheel", first["gameType"])
	})
}
