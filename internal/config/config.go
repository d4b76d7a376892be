package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	OrderAPIURL string // リモートの注文APIのベースURL

	StoreBackend string // file / postgres / redis / memory
	DataDir      string // fileバックエンドの保存先
	RedisAddr    string // redisバックエンドの接続先

	// 振込QRの固定の振込先
	BankID          string
	BankAccountNo   string
	BankAccountName string
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port:  os.Getenv("PORT"),
		GoEnv: os.Getenv("GO_ENV"),

		OrderAPIURL: os.Getenv("ORDER_API_URL"),

		StoreBackend: getenv("STORE_BACKEND", "file"),
		DataDir:      getenv("DATA_DIR", "data"),
		RedisAddr:    getenv("REDIS_ADDR", "localhost:6379"),

		BankID:          getenv("BANK_ID", "970422"),
		BankAccountNo:   os.Getenv("BANK_ACCOUNT_NO"),
		BankAccountName: os.Getenv("BANK_ACCOUNT_NAME"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.OrderAPIURL == "" {
		return Config{}, fmt.Errorf("ORDER_API_URL is required")
	}
	if cfg.BankAccountNo == "" {
		return Config{}, fmt.Errorf("BANK_ACCOUNT_NO is required")
	}
	if cfg.BankAccountName == "" {
		return Config{}, fmt.Errorf("BANK_ACCOUNT_NAME is required")
	}

	switch cfg.StoreBackend {
	case "file", "postgres", "redis", "memory":
	default:
		return Config{}, fmt.Errorf("STORE_BACKEND must be file/postgres/redis/memory")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
