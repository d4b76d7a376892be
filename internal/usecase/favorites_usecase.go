package usecase

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"sync"

	"storefront/internal/bus"
	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

const favoritesSchemaVersion = 1

type favoritesEnvelope struct {
	SchemaVersion int                  `json:"schema_version"`
	Items         []model.FavoriteItem `json:"items"`
}

// FavoritesUsecase はお気に入りの業務ロジックです。
// 永続化と配信の流れはカートと同じ。数量・在庫の概念だけ無い。
type FavoritesUsecase struct {
	store repository.KVStore
	bus   *bus.Bus
	clock Clock

	mu       sync.Mutex
	hydrated bool
	items    []model.FavoriteItem
}

// DI
func NewFavoritesUsecase(store repository.KVStore, b *bus.Bus, clock Clock) *FavoritesUsecase {
	return &FavoritesUsecase{
		store: store,
		bus:   b,
		clock: clock,
	}
}

type FavoriteInput struct {
	ProductID     int64
	Name          string
	Image         string
	Price         int64
	DiscountPrice *int64
}

// Toggle は無ければ追加、あれば削除（1操作で冪等）。
// 追加されたらtrue、削除されたらfalseを返す。
func (u *FavoritesUsecase) Toggle(ctx context.Context, in FavoriteInput) (bool, error) {
	if in.ProductID <= 0 {
		return false, NewHTTPError(http.StatusBadRequest, "invalid product")
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.ensureHydrated(ctx)

	for i, it := range u.items {
		if it.ProductID == in.ProductID {
			u.items = append(u.items[:i:i], u.items[i+1:]...)
			u.persistAndPublish(ctx)
			return false, nil
		}
	}

	u.items = append(u.items, model.FavoriteItem{
		ProductID:     in.ProductID,
		Name:          in.Name,
		Image:         in.Image,
		Price:         in.Price,
		DiscountPrice: in.DiscountPrice,
		AddedAt:       u.clock.Now(),
	})

	u.persistAndPublish(ctx)
	return true, nil
}

// お気に入り一覧（追加が新しい順）
func (u *FavoritesUsecase) List(ctx context.Context) []model.FavoriteItem {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ensureHydrated(ctx)

	cp := make([]model.FavoriteItem, len(u.items))
	copy(cp, u.items)

	sort.SliceStable(cp, func(i, j int) bool {
		return cp[i].AddedAt.After(cp[j].AddedAt)
	})
	return cp
}

// お気に入り画面からの明示的な削除
func (u *FavoritesUsecase) Remove(ctx context.Context, productID int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ensureHydrated(ctx)

	for i, it := range u.items {
		if it.ProductID == productID {
			u.items = append(u.items[:i:i], u.items[i+1:]...)
			u.persistAndPublish(ctx)
			return nil
		}
	}
	return NewHTTPError(http.StatusNotFound, "not found")
}

func (u *FavoritesUsecase) Count(ctx context.Context) int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ensureHydrated(ctx)

	return int64(len(u.items))
}

func (u *FavoritesUsecase) ensureHydrated(ctx context.Context) {
	if u.hydrated {
		return
	}
	u.hydrated = true

	raw, found, err := u.store.Load(ctx, repository.KeyFavorites)
	if err != nil {
		log.Printf("favorites: load failed, starting empty: %v", err)
		return
	}
	if !found {
		return
	}

	var env favoritesEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.SchemaVersion >= 1 {
		u.items = env.Items
		return
	}

	var legacy []model.FavoriteItem
	if err := json.Unmarshal(raw, &legacy); err == nil {
		u.items = legacy
		return
	}

	log.Printf("favorites: corrupt stored value ignored")
}

// muを握った状態でのみ呼ぶ
func (u *FavoritesUsecase) persistAndPublish(ctx context.Context) {
	env := favoritesEnvelope{SchemaVersion: favoritesSchemaVersion, Items: u.items}
	if env.Items == nil {
		env.Items = []model.FavoriteItem{}
	}

	raw, err := json.Marshal(env)
	if err != nil {
		log.Printf("favorites: marshal failed: %v", err)
	} else if err := u.store.Save(ctx, repository.KeyFavorites, raw); err != nil {
		log.Printf("favorites: persist failed, keeping in-memory state: %v", err)
	}

	u.bus.Publish(bus.Event{Topic: bus.TopicFavoritesChanged, Count: int64(len(u.items))})
}
