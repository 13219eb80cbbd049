package jsonstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supa-casino-backend/internal/models"
	"supa-casino-backend/internal/store"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "store.json")
	st, err := Open(path)
	require.NoError(t, err)
	return st, path
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	user, err := st.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, models.LoginMethodLocal, user.LoginMethod)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.CreatedAt.IsZero())

	t.Run("lookup by id and username", func(t *testing.T) {
		byID, err := st.UserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", byID.Username)

		byName, err := st.UserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byName.ID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := st.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "other"})
		assert.ErrorIs(t, err, store.ErrUsernameTaken)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := st.UserByID(ctx, 999)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("ids increment", func(t *testing.T) {
		second, err := st.CreateUser(ctx, &models.User{Username: "bob", PasswordHash: "hash"})
		require.NoError(t, err)
		assert.Equal(t, 2, second.ID)
	})

	t.Run("touch last signed in", func(t *testing.T) {
		before, err := st.UserByID(ctx, user.ID)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)

		require.NoError(t, st.TouchLastSignedIn(ctx, user.ID))
		after, err := st.UserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, after.LastSignedIn.After(before.LastSignedIn))
	})
}

func TestOAuthUpsert(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	created, err := st.UpsertOAuthUser(ctx, &models.User{OpenID: "oid-1", Name: "Alice", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.LoginMethodOAuth, created.LoginMethod)

	updated, err := st.UpsertOAuthUser(ctx, &models.User{OpenID: "oid-1", Name: "Alice B"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID, "upsert must not create a second row")
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, "a@example.com", updated.Email, "empty fields keep prior values")

	byOpenID, err := st.UserByOpenID(ctx, "oid-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byOpenID.ID)
}

func TestBalances(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	t.Run("created lazily at zero", func(t *testing.T) {
		balance, err := st.Balance(ctx, 1)
		require.NoError(t, err)
		assert.True(t, balance.Amount.IsZero())
		assert.Equal(t, 1, balance.ID)

		again, err := st.Balance(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, balance.ID, again.ID)
	})

	t.Run("set requires an existing row", func(t *testing.T) {
		_, err := st.SetBalance(ctx, 42, decimal.NewFromInt(10))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("set and read back", func(t *testing.T) {
		amount, _ := decimal.NewFromString("123.45")
		updated, err := st.SetBalance(ctx, 1, amount)
		require.NoError(t, err)
		assert.True(t, updated.Amount.Equal(amount))

		balance, err := st.Balance(ctx, 1)
		require.NoError(t, err)
		assert.True(t, balance.Amount.Equal(amount))
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := st.AppendHistory(ctx, &models.GameHistory{
			UserID:    1,
			GameType:  models.GameSlots,
			BetAmount: decimal.NewFromInt(10),
			WinAmount: decimal.Zero,
			Result:    json.RawMessage(`{"reels":["🍒","🍋","⭐"]}`),
		})
		require.NoError(t, err)
	}
	_, err := st.AppendHistory(ctx, &models.GameHistory{
		UserID:    2,
		GameType:  models.GameDice,
		BetAmount: decimal.NewFromInt(1),
		WinAmount: decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	t.Run("newest first per user", func(t *testing.T) {
		records, err := st.History(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, records, 5)
		assert.Equal(t, 5, records[0].ID)
		assert.Equal(t, 1, records[4].ID)
		for _, rec := range records {
			assert.Equal(t, 1, rec.UserID)
		}
	})

	t.Run("limit honored", func(t *testing.T) {
		records, err := st.History(ctx, 1, 2)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("result payload survives", func(t *testing.T) {
		records, err := st.History(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.JSONEq(t, `{"reels":["🍒","🍋","⭐"]}`, string(records[0].Result))
	})
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	session := &models.Session{
		Token:     "tok-1",
		UserID:    7,
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, st.CreateSession(ctx, session))

	loaded, err := st.Session(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.UserID)

	require.NoError(t, st.DeleteSession(ctx, "tok-1"))
	_, err = st.Session(ctx, "tok-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Deleting an unknown token is a no-op.
	assert.NoError(t, st.DeleteSession(ctx, "tok-1"))
}

func TestWithdrawalAddresses(t *testing.T) {
	ctx := context.Background()
	st, _ := openTestStore(t)

	addrs, err := st.WithdrawalAddresses(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &models.WithdrawalAddresses{}, addrs)

	require.NoError(t, st.SetWithdrawalAddress(ctx, 1, models.CryptoETH, "0xabc"))
	require.NoError(t, st.SetWithdrawalAddress(ctx, 1, models.CryptoLTC, "Lxyz"))

	addrs, err = st.WithdrawalAddresses(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", addrs.ETH)
	assert.Equal(t, "Lxyz", addrs.LTC)
	assert.Empty(t, addrs.BTC)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	ctx := context.Background()
	st, path := openTestStore(t)

	user, err := st.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "hash"})
	require.NoError(t, err)
	_, err = st.Balance(ctx, user.ID)
	require.NoError(t, err)
	amount, _ := decimal.NewFromString("99.50")
	_, err = st.SetBalance(ctx, user.ID, amount)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	reopened, err := Open(path)
	require.NoError(t, err)

	loaded, err := reopened.UserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)

	balance, err := reopened.Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Amount.Equal(amount))

	next, err := reopened.CreateUser(ctx, &models.User{Username: "bob", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, user.ID+1, next.ID, "id counter survives reopen")
}

func TestCorruptFileStartsFresh(t *testing.T) {
	ctx := context.Background()
	st, path := openTestStore(t)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := st.UserByID(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	user, err := st.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
}
