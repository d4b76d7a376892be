// Package bus はプロセス内のpublish/subscribe。
// カート／お気に入りの変更を、親子関係の無い画面（ヘッダーバッジ等）へ伝えるためのもの。
package bus

import (
	"log"
	"sync"
)

// トピックは閉じた集合。自由な文字列イベントは使わない。
type Topic string

const (
	TopicCartChanged      Topic = "cart-changed"
	TopicFavoritesChanged Topic = "favorites-changed"
)

// ペイロードは変更後の総件数（カートは数量合計、お気に入りは件数）
type Event struct {
	Topic Topic
	Count int64
}

type Handler func(Event)

type subscriber struct {
	id int64
	fn Handler
}

// Bus は同期配信のイベントバス。
// 購読順に配信し、途中のハンドラがpanicしても残りへの配信は止めない。
type Bus struct {
	mu     sync.Mutex
	nextID int64
	subs   map[Topic][]subscriber
}

func New() *Bus {
	return &Bus{subs: map[Topic][]subscriber{}}
}

// Subscribe は購読を登録し、解除用の関数を返す。
// 購読した側は寿命が尽きるときに必ず解除すること（解体済みの画面へ配信しないため）。
// 解除は何度呼んでも安全。
func (b *Bus) Subscribe(topic Topic, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscriber{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		list := b.subs[topic]
		for i, s := range list {
			if s.id == id {
				b.subs[topic] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish は現在の購読者全員へ同期配信する。
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	list := make([]subscriber, len(b.subs[e.Topic]))
	copy(list, b.subs[e.Topic])
	b.mu.Unlock()

	for _, s := range list {
		dispatch(s.fn, e)
	}
}

func dispatch(fn Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("bus: handler panic on %s: %v", e.Topic, r)
		}
	}()
	fn(e)
}
