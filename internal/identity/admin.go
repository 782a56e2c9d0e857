package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// AdminClient はサービスロールキーによる特権クライアント。
// ユーザーの直接作成など管理者APIを呼び出す。
type AdminClient struct {
	config Config
	http   *http.Client
}

// NewAdminClient はAdminClientを生成する。
func NewAdminClient(config Config) *AdminClient {
	return &AdminClient{
		config: config,
		http:   httpClientOrDefault(config.HTTPClient),
	}
}

// createUserRequest は管理者ユーザー作成APIのリクエストボディ。
type createUserRequest struct {
	Email        string            `json:"email"`
	Password     string            `json:"password"`
	EmailConfirm bool              `json:"email_confirm"`
	UserMetadata map[string]string `json:"user_metadata"`
}

// CreateUser はメール確認済み状態でユーザーを作成する。
// 確認メールのフローを経由せず、登録後すぐにサインイン可能になる。
// プロバイダー側で拒否された場合（メール重複等）はProviderErrorを返す。
func (c *AdminClient) CreateUser(ctx context.Context, email, password, name string) (*ProviderUser, error) {
	body := createUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
		UserMetadata: map[string]string{"name": name},
	}

	respBody, err := doJSON(ctx, c.http, http.MethodPost,
		c.config.BaseURL+"/auth/v1/admin/users",
		c.config.ServiceKey, "", body)
	if err != nil {
		return nil, err
	}

	var ur providerUserResponse
	if err := json.Unmarshal(respBody, &ur); err != nil {
		return nil, fmt.Errorf("failed to parse create-user response: %w", err)
	}

	if ur.ID == "" {
		return nil, fmt.Errorf("empty user id in create-user response")
	}

	user := ur.toProviderUser()
	// 作成直後はuser_metadataが未反映のレスポンスを返す実装があるため、
	// リクエストで渡したnameを優先する。
	if user.Name == "" {
		user.Name = name
	}

	return user, nil
}
