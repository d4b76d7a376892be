// Package client はリモートの注文APIを呼ぶ。
// レスポンスは {data, errorMessage} のエンベロープ形式。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"storefront/internal/domain/model"

	"github.com/google/uuid"
)

// 注文送信の明細（ワイヤ形式はcamelCase）
type OrderLine struct {
	VariantID int64 `json:"variantId"`
	Quantity  int64 `json:"quantity"`
	Price     int64 `json:"price"`
}

type OrderRequest struct {
	ShippingName    string              `json:"shippingName"`
	ShippingPhone   string              `json:"shippingPhone"`
	ShippingAddress string              `json:"shippingAddress"`
	Note            string              `json:"note"`
	PaymentMethod   model.PaymentMethod `json:"paymentMethod"`
	Items           []OrderLine         `json:"items"`
	Subtotal        int64               `json:"subtotal"`
	ShippingFee     int64               `json:"shippingFee"`
	Total           int64               `json:"total"`
}

type envelope struct {
	Data         *model.Order `json:"data"`
	ErrorMessage string       `json:"errorMessage"`
}

type OrderClient struct {
	baseURL    string
	httpClient *http.Client
}

// DI（httpClientがnilならhttp.DefaultClient。タイムアウト・リトライは付けない）
func NewOrderClient(baseURL string, httpClient *http.Client) *OrderClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OrderClient{baseURL: baseURL, httpClient: httpClient}
}

// SubmitOrder は注文を送信する。
// 失敗理由の優先順位: 通信エラー > 非2xx > 壊れたJSON > errorMessage。
func (c *OrderClient) SubmitOrder(ctx context.Context, token string, in OrderRequest) (model.Order, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return model.Order{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return model.Order{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	// 同じ注文の二重送信を防ぐ（サーバー側で同一キーは同一結果）
	req.Header.Set("Idempotency-Key", uuid.NewString())

	return c.do(req)
}

// GetOrder は注文を1件取得する（注文詳細画面用、読み取り専用）。
func (c *OrderClient) GetOrder(ctx context.Context, token string, orderID string) (model.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders/"+orderID, nil)
	if err != nil {
		return model.Order{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return c.do(req)
}

func (c *OrderClient) do(req *http.Request) (model.Order, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return model.Order{}, fmt.Errorf("order api unreachable: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return model.Order{}, fmt.Errorf("order api unreachable: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		// 非2xxでもエンベロープのerrorMessageがあればそれを使う
		var env envelope
		if jsonErr := json.Unmarshal(raw, &env); jsonErr == nil && env.ErrorMessage != "" {
			return model.Order{}, fmt.Errorf("order api: %s", env.ErrorMessage)
		}
		return model.Order{}, fmt.Errorf("order api: status %d", res.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return model.Order{}, fmt.Errorf("order api: invalid response: %w", err)
	}
	if env.ErrorMessage != "" {
		return model.Order{}, fmt.Errorf("order api: %s", env.ErrorMessage)
	}
	if env.Data == nil {
		return model.Order{}, fmt.Errorf("order api: invalid response: missing data")
	}

	return *env.Data, nil
}
