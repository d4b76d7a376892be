package repository

import "context"

// 永続キーバリューストアの約束。
// カート・お気に入り・セッションの唯一の永続先（ブラウザのdurable storage相当）。
//
// Load はキーが無ければ (nil, false, nil) を返す。
// Save は呼び出し側から見て同期だが、失敗しても集約は処理を止めない
// （そのセッション中はメモリ上のコピーが正となる）。
type KVStore interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
}

// 永続キー
const (
	KeyCart      = "cart"
	KeyFavorites = "favorites"
	KeySession   = "session"
)
