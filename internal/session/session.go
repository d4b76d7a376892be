// Package session はストアに保存されたセッション資格情報を読む。
// 発行・更新はスコープ外（ログインフローが書き込む）。ここでは読むだけ。
package session

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"github.com/golang-jwt/jwt/v4"
)

type Manager struct {
	store repository.KVStore
}

// DI
func NewManager(store repository.KVStore) *Manager {
	return &Manager{store: store}
}

// Current は有効なセッションを返す。
// キーが無い・壊れている・トークンが期限切れ、はすべて「未ログイン」扱い。
func (m *Manager) Current(ctx context.Context) (model.Session, bool) {
	raw, found, err := m.store.Load(ctx, repository.KeySession)
	if err != nil {
		log.Printf("session: load failed: %v", err)
		return model.Session{}, false
	}
	if !found {
		return model.Session{}, false
	}

	var s model.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Printf("session: corrupt entry ignored: %v", err)
		return model.Session{}, false
	}
	if s.AccessToken == "" {
		return model.Session{}, false
	}
	if tokenExpired(s.AccessToken, time.Now()) {
		return model.Session{}, false
	}

	return s, true
}

// expクレームだけ見る。署名検証はしない（検証者はリモートの注文API）。
// パースできないトークンは期限切れ扱い。expが無ければ有効扱い。
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return now.Unix() >= int64(exp)
}
