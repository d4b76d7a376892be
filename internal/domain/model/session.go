package model

// ログイン済みユーザーのプロフィール（発行はスコープ外。ストアから読むだけ）
type UserProfile struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// セッション資格情報。AccessToken は注文APIに付けるbearerトークン。
type Session struct {
	AccessToken string      `json:"access_token"`
	User        UserProfile `json:"user"`
}
