package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"storefront/internal/bus"
	"storefront/internal/domain/model"
	"storefront/internal/infra/store"
	"storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =====================
// テスト用の部品
// =====================

// 呼ぶたびに1秒進む時計
type stepClock struct {
	t time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

// 保存が必ず失敗するストア
type brokenStore struct{}

func (s *brokenStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *brokenStore) Save(ctx context.Context, key string, value []byte) error {
	return errors.New("quota exceeded")
}

func newCartUC() (*CartUsecase, *store.MemStore, *bus.Bus) {
	st := store.NewMemStore()
	b := bus.New()
	return NewCartUsecase(st, b, newStepClock()), st, b
}

func addInput(productID, variantID, price, qty, maxQty int64) AddItemInput {
	return AddItemInput{
		ProductID:   productID,
		VariantID:   variantID,
		Name:        "test item",
		SKU:         "SKU",
		Price:       price,
		Quantity:    qty,
		MaxQuantity: maxQty,
	}
}

// =====================
// 追加とマージ
// =====================

// 同一の(product, variant)は数量加算され、重複行は絶対に作られない。
func TestCartUsecase_AddItem_MergesSamePair(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newCartUC()

	_, err := uc.AddItem(ctx, addInput(1, 10, 100000, 2, 10))
	require.NoError(t, err)

	out, err := uc.AddItem(ctx, addInput(1, 10, 100000, 3, 10))
	require.NoError(t, err)

	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, int64(5), out.Items[0].Quantity)
	assert.Equal(t, int64(500000), out.Total)
}

func TestCartUsecase_AddItem_DistinctPairsKeepSeparateLines(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newCartUC()

	pairs := [][2]int64{{1, 10}, {1, 11}, {2, 10}, {3, 30}}
	for _, p := range pairs {
		_, err := uc.AddItem(ctx, addInput(p[0], p[1], 1000, 1, 5))
		require.NoError(t, err)
	}

	snap := uc.Snapshot(ctx)
	assert.Equal(t, len(pairs), len(snap))

	//追加順が保たれる
	for i, p := range pairs {
		assert.Equal(t, p[0], snap[i].ProductID)
		assert.Equal(t, p[1], snap[i].VariantID)
	}
}

func TestCartUsecase_AddItem_InvalidInput(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newCartUC()

	_, err := uc.AddItem(ctx, addInput(0, 10, 1000, 1, 5))
	assert.Error(t, err)

	_, err = uc.AddItem(ctx, addInput(1, 10, 1000, 0, 5))
	assert.Error(t, err)

	assert.Equal(t, 0, len(uc.Snapshot(ctx)))
}

// =====================
// 合計
// =====================

func TestCartUsecase_Total_EmptyCartIsZero(t *testing.T) {
	uc, _, _ := newCartUC()
	assert.Equal(t, int64(0), uc.Total(context.Background()))
}

// 割引あり・なし混在のランダムなカートで、独立に計算した合計と一致する。
func TestCartUsecase_Total_MatchesIndependentSum(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(46))

	for trial := 0; trial < 3; trial++ {
		uc, _, _ := newCartUC()

		var want int64
		lineCount := 3 + rng.Intn(5)
		for i := 0; i < lineCount; i++ {
			price := int64(1000 * (1 + rng.Intn(500)))
			qty := int64(1 + rng.Intn(9))

			in := addInput(int64(i+1), int64(100+i), price, qty, 99)

			effective := price
			if rng.Intn(2) == 0 {
				discount := price - int64(rng.Intn(int(price)))
				in.DiscountPrice = &discount
				if discount < price {
					effective = discount
				}
			}

			_, err := uc.AddItem(ctx, in)
			require.NoError(t, err)

			want += qty * effective
		}

		assert.Equal(t, want, uc.Total(ctx), "trial %d", trial)
	}
}

// =====================
// 数量変更
// =====================

// 0以下になったら行ごと消える。他の行の順序と値は変わらない。
func TestCartUsecase_UpdateQuantity_RemovesLineAtZero(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newCartUC()

	_, err := uc.AddItem(ctx, addInput(1, 10, 1000, 2, 5))
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, addInput(2, 20, 2000, 3, 5))
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, addInput(3, 30, 3000, 4, 5))
	require.NoError(t, err)

	before := uc.Snapshot(ctx)

	out, err := uc.UpdateQuantity(ctx, 1, -3)
	require.NoError(t, err)

	require.Equal(t, 2, len(out.Items))
	assert.Equal(t, before[0], out.Items[0])
	assert.Equal(t, before[2], out.Items[1])
}

func TestCartUsecase_UpdateQuantity_AddsDelta(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newCartUC()

	_, err := uc.AddItem(ctx, addInput(1, 10, 1000, 2, 3))
	require.NoError(t, err)

	// 上限クランプはしない（検証は確定時）
	out, err := uc.UpdateQuantity(ctx, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.Items[0].Quantity)
}

func TestCartUsecase_UpdateQuantity_IndexOutOfRange(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newCartUC()

	_, err := uc.UpdateQuantity(ctx, 0, 1)
	he, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

// 空文字・非数値の入力は何もしない（スナップショットが変わらない）
func TestCartUsecase_SetQuantity_IgnoresNonNumericInput(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newCartUC()

	_, err := uc.AddItem(ctx, addInput(1, 10, 1000, 2, 5))
	require.NoError(t, err)

	before := uc.Snapshot(ctx)

	for _, raw := range []string{"", "abc", "  ", "1.5"} {
		out, err := uc.SetQuantity(ctx, 0, raw)
		require.NoError(t, err)
		assert.Equal(t, before, out.Items, "input %q", raw)
	}
}

func TestCartUsecase_SetQuantity_SetsExactValue(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newCartUC()

	_, err := uc.AddItem(ctx, addInput(1, 10, 1000, 2, 5))
	require.NoError(t, err)

	out, err := uc.SetQuantity(ctx, 0, "9")
	require.NoError(t, err)
	assert.Equal(t, int64(9), out.Items[0].Quantity)
}

func TestCartUsecase_SetQuantity_RemovesAtZeroOrNegative(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newCartUC()

	_, err := uc.AddItem(ctx, addInput(1, 10, 1000, 2, 5))
	require.NoError(t, err)

	out, err := uc.SetQuantity(ctx, 0, "0")
	require.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))
}

// =====================
// 削除・クリア・配信
// =====================

func TestCartUsecase_RemoveItem(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newCartUC()

	_, err := uc.AddItem(ctx, addInput(1, 10, 1000, 2, 5))
	require.NoError(t, err)

	out, err := uc.RemoveItem(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))

	_, err = uc.RemoveItem(ctx, 0)
	assert.Error(t, err)
}

// 変更のたびにcart-changedが数量合計で飛ぶ。クリア後は0。
func TestCartUsecase_PublishesCartChanged(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	b := bus.New()
	uc := NewCartUsecase(st, b, newStepClock())

	var counts []int64
	unsubscribe := b.Subscribe(bus.TopicCartChanged, func(e bus.Event) {
		counts = append(counts, e.Count)
	})
	defer unsubscribe()

	_, err := uc.AddItem(ctx, addInput(1, 10, 1000, 2, 5))
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, addInput(2, 20, 1000, 3, 5))
	require.NoError(t, err)

	uc.Clear(ctx)

	assert.Equal(t, []int64{2, 5, 0}, counts)
}

// =====================
// 永続化
// =====================

func TestCartUsecase_HydratesFromStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	b := bus.New()

	uc1 := NewCartUsecase(st, b, newStepClock())
	_, err := uc1.AddItem(ctx, addInput(1, 10, 1000, 2, 5))
	require.NoError(t, err)

	// 別のプロセス相当：同じストアから復元
	uc2 := NewCartUsecase(st, b, newStepClock())
	snap := uc2.Snapshot(ctx)
	require.Equal(t, 1, len(snap))
	assert.Equal(t, int64(2), snap[0].Quantity)
}

// 再読込→再保存でバイト列が変わらない（round-trip）
func TestCartUsecase_PersistedPayloadRoundTrips(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	uc := NewCartUsecase(st, bus.New(), newStepClock())

	discount := int64(800)
	in := addInput(1, 10, 1000, 2, 5)
	in.DiscountPrice = &discount
	_, err := uc.AddItem(ctx, in)
	require.NoError(t, err)

	raw1, found, err := st.Load(ctx, repository.KeyCart)
	require.NoError(t, err)
	require.True(t, found)

	items := decodeCartPayload(raw1)
	raw2, err := json.Marshal(cartEnvelope{SchemaVersion: cartSchemaVersion, Items: items})
	require.NoError(t, err)

	assert.Equal(t, raw1, raw2)
}

// 保存失敗はそのセッション中の動作を止めない
func TestCartUsecase_KeepsWorkingWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	uc := NewCartUsecase(&brokenStore{}, bus.New(), newStepClock())

	out, err := uc.AddItem(ctx, addInput(1, 10, 1000, 2, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, len(out.Items))

	out, err = uc.UpdateQuantity(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Items[0].Quantity)
}

// 壊れた保存値は空扱い（エラーにしない）
func TestCartUsecase_CorruptPayloadStartsEmpty(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	require.NoError(t, st.Save(ctx, repository.KeyCart, []byte("{broken")))

	uc := NewCartUsecase(st, bus.New(), newStepClock())
	assert.Equal(t, 0, len(uc.Snapshot(ctx)))
}

// バージョン無しの旧形式（素の配列）も読める
func TestCartUsecase_ReadsLegacyArrayPayload(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()

	legacy := []model.CartLine{{ProductID: 1, VariantID: 10, Price: 1000, Quantity: 2, MaxQuantity: 5}}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, repository.KeyCart, raw))

	uc := NewCartUsecase(st, bus.New(), newStepClock())
	snap := uc.Snapshot(ctx)
	require.Equal(t, 1, len(snap))
	assert.Equal(t, int64(2), snap[0].Quantity)
}
