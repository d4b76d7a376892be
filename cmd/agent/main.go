package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"storefront/internal/bus"
	"storefront/internal/client"
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/store"
	"storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/session"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func newStore(cfg config.Config) (repository.KVStore, error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := store.ConnectPostgres()
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&store.KVEntry{}); err != nil {
			return nil, err
		}
		return store.NewGormStore(db), nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return store.NewRedisStore(rdb), nil

	case "memory":
		return store.NewMemStore(), nil

	default:
		return store.NewFileStore(cfg.DataDir)
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//永続ストア
	st, err := newStore(cfg)
	if err != nil {
		panic(err)
	}

	//イベントバス
	b := bus.New()

	//usecaseに渡す部品
	clock := &realClock{}
	sessions := session.NewManager(st)
	orders := client.NewOrderClient(cfg.OrderAPIURL, &http.Client{})

	//Usecase生成
	cartUC := usecase.NewCartUsecase(st, b, clock)
	favUC := usecase.NewFavoritesUsecase(st, b, clock)
	checkoutUC := usecase.NewCheckoutUsecase(cartUC, sessions, orders, usecase.QRConfig{
		BankID:      cfg.BankID,
		AccountNo:   cfg.BankAccountNo,
		AccountName: cfg.BankAccountName,
	})

	//ヘッダーバッジ相当（件数の変化をログに出す）
	unsubCart := b.Subscribe(bus.TopicCartChanged, func(e bus.Event) {
		log.Printf("cart badge: %d", e.Count)
	})
	defer unsubCart()
	unsubFav := b.Subscribe(bus.TopicFavoritesChanged, func(e bus.Event) {
		log.Printf("favorites badge: %d", e.Count)
	})
	defer unsubFav()

	//Handler生成
	cartH := handler.NewCartHandler(cartUC)
	favH := handler.NewFavoritesHandler(favUC)
	checkoutH := handler.NewCheckoutHandler(checkoutUC)
	orderH := handler.NewOrderHandler(orders, sessions)

	//Server起動
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		if v[0] != ':' {
			addr = ":" + v
		} else {
			addr = v
		}
	}

	if err := server.Start(addr, cartH, favH, checkoutH, orderH); err != nil {
		panic(err)
	}
}
