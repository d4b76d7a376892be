package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/store"
	"storefront/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("test_secret"))
	require.NoError(t, err)
	return signed
}

func saveSession(t *testing.T, st repository.KVStore, s model.Session) {
	t.Helper()
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	require.NoError(t, st.Save(context.Background(), repository.KeySession, raw))
}

func TestManager_Current_NoSession(t *testing.T) {
	m := NewManager(store.NewMemStore())

	_, ok := m.Current(context.Background())
	assert.False(t, ok)
}

func TestManager_Current_CorruptEntry(t *testing.T) {
	st := store.NewMemStore()
	require.NoError(t, st.Save(context.Background(), repository.KeySession, []byte("{oops")))

	m := NewManager(st)
	_, ok := m.Current(context.Background())
	assert.False(t, ok)
}

func TestManager_Current_ValidToken(t *testing.T) {
	st := store.NewMemStore()
	tok := signToken(t, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	saveSession(t, st, model.Session{
		AccessToken: tok,
		User:        model.UserProfile{ID: 42, Email: "a@example.com"},
	})

	m := NewManager(st)
	sess, ok := m.Current(context.Background())
	require.True(t, ok)
	assert.Equal(t, int64(42), sess.User.ID)
	assert.Equal(t, tok, sess.AccessToken)
}

// 期限切れトークンは「未ログイン」扱い
func TestManager_Current_ExpiredToken(t *testing.T) {
	st := store.NewMemStore()
	tok := signToken(t, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	saveSession(t, st, model.Session{AccessToken: tok})

	m := NewManager(st)
	_, ok := m.Current(context.Background())
	assert.False(t, ok)
}

// expの無いトークンは有効扱い（検証はリモート側の仕事）
func TestManager_Current_TokenWithoutExp(t *testing.T) {
	st := store.NewMemStore()
	tok := signToken(t, jwt.MapClaims{"sub": "42"})
	saveSession(t, st, model.Session{AccessToken: tok})

	m := NewManager(st)
	_, ok := m.Current(context.Background())
	assert.True(t, ok)
}

// JWTですらない文字列は期限切れ扱い
func TestManager_Current_GarbageToken(t *testing.T) {
	st := store.NewMemStore()
	saveSession(t, st, model.Session{AccessToken: "not-a-jwt"})

	m := NewManager(st)
	_, ok := m.Current(context.Background())
	assert.False(t, ok)
}

func TestTokenExpired_Boundary(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tok := signToken(t, jwt.MapClaims{"exp": now.Unix()})
	assert.True(t, tokenExpired(tok, now))

	tok = signToken(t, jwt.MapClaims{"exp": now.Add(time.Second).Unix()})
	assert.False(t, tokenExpired(tok, now))
}
