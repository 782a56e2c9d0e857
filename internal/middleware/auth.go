// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hitoshi/crowdlog/internal/token"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// TokenVerifier はセッショントークンの検証に必要なインターフェース。
// token.Serviceの部分集合として定義する。
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンをローカルで検証する
// ミドルウェアを返す。検証済みユーザーIDをリクエストコンテキストに注入する。
// トークンが無い場合は401、無効・期限切れの場合は403を返す。
// この検証はIDプロバイダーには問い合わせない（/api/auth/me のプロバイダー検証とは別系統）。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Authorization: Bearer <token> からトークンを取得
			raw := BearerToken(r)
			if raw == "" {
				writeAuthError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			// 2. ローカル検証（署名＋有効期限）。
			// 期限切れも署名不正も、履歴ルートでは同じ403として扱う。
			claims, err := verifier.Verify(raw)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			// 3. 認証済みユーザーIDをコンテキストに注入
			ctx := context.WithValue(r.Context(), userIDContextKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// ヘッダーが無い、または形式が異なる場合は空文字を返す。
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// writeAuthError は認証エラーのJSONレスポンスを書き込む。
func writeAuthError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
