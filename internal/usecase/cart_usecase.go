package usecase

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"storefront/internal/bus"
	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

// 保存形式のバージョン。将来形式を変えるとき、既存カートを黙って捨てないための印。
const cartSchemaVersion = 1

type cartEnvelope struct {
	SchemaVersion int              `json:"schema_version"`
	Items         []model.CartLine `json:"items"`
}

// CartUsecase はカートの業務ロジックです。
// 起動時にストアから一度だけ復元し、以後はメモリ上の明細が正。
// 変更のたびにストアへ書き戻し、cart-changedを配信する。
// 書き戻しの失敗は握りつぶしてログに残す（そのセッション中の動作は止めない）。
type CartUsecase struct {
	store repository.KVStore
	bus   *bus.Bus
	clock Clock

	mu       sync.Mutex
	hydrated bool
	lines    []model.CartLine
}

// DI
func NewCartUsecase(store repository.KVStore, b *bus.Bus, clock Clock) *CartUsecase {
	return &CartUsecase{
		store: store,
		bus:   b,
		clock: clock,
	}
}

type AddItemInput struct {
	ProductID     int64
	VariantID     int64
	Name          string
	SKU           string
	Color         string
	Size          string
	Image         string
	Price         int64
	DiscountPrice *int64
	MaxQuantity   int64
	Quantity      int64
}

type CartView struct {
	Items []model.CartLine `json:"items"`
	Total int64            `json:"total"`
	Count int64            `json:"count"`
}

// カートに追加（同一の商品×バリアントは数量加算。重複行は作らない）。
// MaxQuantityに対するクランプはここではしない（在庫検証は確定時の一回だけ）。
func (u *CartUsecase) AddItem(ctx context.Context, in AddItemInput) (CartView, error) {
	if in.ProductID <= 0 || in.VariantID <= 0 {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if in.Quantity < 1 {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if in.Price < 0 {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.ensureHydrated(ctx)

	now := u.clock.Now()

	merged := false
	for i := range u.lines {
		if u.lines[i].SameUnit(in.ProductID, in.VariantID) {
			u.lines[i].Quantity += in.Quantity
			u.lines[i].AddedAt = now
			merged = true
			break
		}
	}

	if !merged {
		u.lines = append(u.lines, model.CartLine{
			ProductID:     in.ProductID,
			VariantID:     in.VariantID,
			Name:          in.Name,
			SKU:           in.SKU,
			Color:         in.Color,
			Size:          in.Size,
			Image:         in.Image,
			Price:         in.Price,
			DiscountPrice: in.DiscountPrice,
			Quantity:      in.Quantity,
			MaxQuantity:   in.MaxQuantity,
			AddedAt:       now,
		})
	}

	u.persistAndPublish(ctx)
	return u.viewLocked(), nil
}

// 数量の増減。結果が0以下になったら行ごと削除（確認は取らない）。
// 上限クランプはしない（UI側のステッパーが上限で止める約束）。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, index int, delta int64) (CartView, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ensureHydrated(ctx)

	if index < 0 || index >= len(u.lines) {
		return CartView{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	newQty := u.lines[index].Quantity + delta
	if newQty <= 0 {
		u.lines = append(u.lines[:index:index], u.lines[index+1:]...)
	} else {
		u.lines[index].Quantity = newQty
		u.lines[index].AddedAt = u.clock.Now()
	}

	u.persistAndPublish(ctx)
	return u.viewLocked(), nil
}

// 数量の直接入力。
// 空や数値でない入力は何もしない（直前の数量のまま）。0以下は行を削除。
func (u *CartUsecase) SetQuantity(ctx context.Context, index int, raw string) (CartView, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ensureHydrated(ctx)

	if index < 0 || index >= len(u.lines) {
		return CartView{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return u.viewLocked(), nil
	}
	qty, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return u.viewLocked(), nil
	}

	if qty <= 0 {
		u.lines = append(u.lines[:index:index], u.lines[index+1:]...)
	} else {
		u.lines[index].Quantity = qty
		u.lines[index].AddedAt = u.clock.Now()
	}

	u.persistAndPublish(ctx)
	return u.viewLocked(), nil
}

// 行削除（確認ダイアログはUIの仕事。ここでは無条件に消す）
func (u *CartUsecase) RemoveItem(ctx context.Context, index int) (CartView, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ensureHydrated(ctx)

	if index < 0 || index >= len(u.lines) {
		return CartView{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	u.lines = append(u.lines[:index:index], u.lines[index+1:]...)

	u.persistAndPublish(ctx)
	return u.viewLocked(), nil
}

// カートを空にする（確定成功時にも呼ばれる）。cart-changedは0件で配信。
func (u *CartUsecase) Clear(ctx context.Context) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ensureHydrated(ctx)

	u.lines = nil

	u.persistAndPublish(ctx)
}

// 現在の明細のコピーを追加順で返す。
func (u *CartUsecase) Snapshot(ctx context.Context) []model.CartLine {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ensureHydrated(ctx)

	cp := make([]model.CartLine, len(u.lines))
	copy(cp, u.lines)
	return cp
}

// 合計（数量 × 有効単価の総和）。int64の最小通貨単位で計算する。
func (u *CartUsecase) Total(ctx context.Context) int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ensureHydrated(ctx)

	var total int64
	for _, l := range u.lines {
		total += l.Subtotal()
	}
	return total
}

func (u *CartUsecase) View(ctx context.Context) CartView {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.ensureHydrated(ctx)

	return u.viewLocked()
}

// muを握った状態でのみ呼ぶ
func (u *CartUsecase) viewLocked() CartView {
	items := make([]model.CartLine, len(u.lines))
	copy(items, u.lines)

	var total, count int64
	for _, l := range u.lines {
		total += l.Subtotal()
		count += l.Quantity
	}

	return CartView{Items: items, Total: total, Count: count}
}

// ストアから一度だけ復元する。壊れた値は空扱い（エラーにはしない）。
func (u *CartUsecase) ensureHydrated(ctx context.Context) {
	if u.hydrated {
		return
	}
	u.hydrated = true

	raw, found, err := u.store.Load(ctx, repository.KeyCart)
	if err != nil {
		log.Printf("cart: load failed, starting empty: %v", err)
		return
	}
	if !found {
		return
	}

	u.lines = decodeCartPayload(raw)
}

func decodeCartPayload(raw []byte) []model.CartLine {
	var env cartEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.SchemaVersion >= 1 {
		return env.Items
	}

	// バージョン無しの旧形式（素の配列）も読めるようにしておく
	var legacy []model.CartLine
	if err := json.Unmarshal(raw, &legacy); err == nil {
		return legacy
	}

	log.Printf("cart: corrupt stored value ignored")
	return nil
}

// 書き戻し＋配信。muを握った状態でのみ呼ぶ。
// 保存に失敗してもメモリ上の状態が正のまま進む（リロード後に消える可能性だけ残る）。
func (u *CartUsecase) persistAndPublish(ctx context.Context) {
	env := cartEnvelope{SchemaVersion: cartSchemaVersion, Items: u.lines}
	if env.Items == nil {
		env.Items = []model.CartLine{}
	}

	raw, err := json.Marshal(env)
	if err != nil {
		log.Printf("cart: marshal failed: %v", err)
	} else if err := u.store.Save(ctx, repository.KeyCart, raw); err != nil {
		log.Printf("cart: persist failed, keeping in-memory state: %v", err)
	}

	var count int64
	for _, l := range u.lines {
		count += l.Quantity
	}
	u.bus.Publish(bus.Event{Topic: bus.TopicCartChanged, Count: count})
}
