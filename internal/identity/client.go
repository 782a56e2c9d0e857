// Package identity は外部IDプロバイダー（Supabase Auth）のHTTPクライアントを提供する。
// 匿名キーを使うClientと、サービスロールキーを使うAdminClientの2種類があり、
// ユーザー作成・パスワードサインイン・トークンのユーザー解決を扱う。
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config はIDプロバイダークライアントの設定。
// BaseURLはテスト時にhttptestサーバーへ差し替え可能。
type Config struct {
	BaseURL    string // 例: "https://xyzcompany.supabase.co"
	AnonKey    string
	ServiceKey string

	// HTTPClientが未指定の場合はタイムアウト付きのデフォルトクライアントを使用する。
	HTTPClient *http.Client
}

// ProviderUser はIDプロバイダーが保持するユーザーレコード。
type ProviderUser struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// SignInResult はパスワードサインイン成功時の結果。
type SignInResult struct {
	AccessToken string
	User        *ProviderUser
}

// Client は匿名キーによるIDプロバイダークライアント。
// サインインとトークン検証（トークン→ユーザー解決）を提供する。
type Client struct {
	config Config
	http   *http.Client
}

// NewClient はClientを生成する。
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		http:   httpClientOrDefault(config.HTTPClient),
	}
}

// providerUserResponse はGoTrueのユーザーオブジェクトのレスポンス。
type providerUserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	UserMetadata struct {
		Name string `json:"name"`
	} `json:"user_metadata"`
}

func (r *providerUserResponse) toProviderUser() *ProviderUser {
	return &ProviderUser{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.UserMetadata.Name,
		CreatedAt: r.CreatedAt,
	}
}

// tokenResponse はトークンエンドポイントのレスポンス。
type tokenResponse struct {
	AccessToken string               `json:"access_token"`
	TokenType   string               `json:"token_type"`
	ExpiresIn   int                  `json:"expires_in"`
	User        providerUserResponse `json:"user"`
}

// SignInWithPassword はメールアドレスとパスワードでサインインする。
// 認証失敗時はProviderErrorを返す。
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	respBody, err := c.doJSON(ctx, http.MethodPost,
		c.config.BaseURL+"/auth/v1/token?grant_type=password",
		c.config.AnonKey, "", body)
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse sign-in response: %w", err)
	}

	if tr.AccessToken == "" || tr.User.ID == "" {
		return nil, fmt.Errorf("incomplete sign-in response from provider")
	}

	return &SignInResult{
		AccessToken: tr.AccessToken,
		User:        tr.User.toProviderUser(),
	}, nil
}

// GetUser はアクセストークンをプロバイダーで検証し、対応するユーザーを返す。
// トークンが無効・期限切れの場合はProviderErrorを返す。
func (c *Client) GetUser(ctx context.Context, accessToken string) (*ProviderUser, error) {
	respBody, err := c.doJSON(ctx, http.MethodGet,
		c.config.BaseURL+"/auth/v1/user",
		c.config.AnonKey, accessToken, nil)
	if err != nil {
		return nil, err
	}

	var ur providerUserResponse
	if err := json.Unmarshal(respBody, &ur); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}

	if ur.ID == "" {
		return nil, fmt.Errorf("empty user id in provider response")
	}

	return ur.toProviderUser(), nil
}

// doJSON はJSONリクエストを送信し、2xx以外の場合はProviderErrorを返す。
// apiKeyはapikeyヘッダーに、bearerが空でなければAuthorizationヘッダーに設定する。
// bearerが空の場合はapiKeyをAuthorizationにも使用する（Supabaseの規約）。
func (c *Client) doJSON(ctx context.Context, method, url, apiKey, bearer string, body interface{}) ([]byte, error) {
	return doJSON(ctx, c.http, method, url, apiKey, bearer, body)
}

func doJSON(ctx context.Context, client *http.Client, method, url, apiKey, bearer string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider request: %w", err)
	}

	req.Header.Set("apikey", apiKey)
	if bearer == "" {
		bearer = apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseProviderError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

func httpClientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// isJSONContent は簡易的にJSONボディかどうかを判定する。
func isJSONContent(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	return strings.HasPrefix(trimmed, "{")
}
