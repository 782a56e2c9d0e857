package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// ハンドラーはこの閉じたコード集合で分岐し、HTTPステータスへ変換する。
// Statusが0以外の場合はコードごとの既定ステータスより優先される
// （IDプロバイダーが返したステータスをそのまま伝搬するケース用）。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
	Details string // 補足情報（プロバイダーのdetails等、省略可）
	Status  int    // HTTPステータスの上書き（0なら既定値を使用）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeMissingToken   = "MISSING_TOKEN"
	ErrCodeInvalidToken   = "INVALID_TOKEN"
	ErrCodeExpiredToken   = "EXPIRED_TOKEN"
	ErrCodeAuthFailed     = "AUTHENTICATION_FAILED"
	ErrCodeUserNotFound   = "USER_NOT_FOUND"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeProviderError  = "PROVIDER_ERROR"
)

// NewValidationError は必須フィールド欠落エラーを生成する。
// missingには欠落したフィールド名を渡す。
func NewValidationError(message string, missing ...string) *APIError {
	details := ""
	for i, f := range missing {
		if i > 0 {
			details += ", "
		}
		details += f
	}
	return &APIError{
		Code:    ErrCodeValidation,
		Message: message,
		Details: details,
	}
}

// NewMissingTokenError はAuthorizationヘッダー欠落エラーを生成する。
func NewMissingTokenError() *APIError {
	return &APIError{
		Code:    ErrCodeMissingToken,
		Message: "No token provided",
	}
}

// NewInvalidTokenError は署名不正・解析不能トークンのエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidToken,
		Message: "Invalid or expired token",
	}
}

// NewExpiredTokenError は期限切れトークンのエラーを生成する。
func NewExpiredTokenError() *APIError {
	return &APIError{
		Code:    ErrCodeExpiredToken,
		Message: "Invalid or expired token",
	}
}

// NewAuthenticationFailedError は認証失敗エラーを生成する。
// messageが空の場合は既定のメッセージを使用する。
func NewAuthenticationFailedError(message string) *APIError {
	if message == "" {
		message = "Invalid email or password"
	}
	return &APIError{
		Code:    ErrCodeAuthFailed,
		Message: message,
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeUserNotFound,
		Message: "User not found",
	}
}

// NewInternalError は内部エラーを生成する。
// detailsは開発モードでのみレスポンスに含まれる。
func NewInternalError(details string) *APIError {
	return &APIError{
		Code:    ErrCodeInternal,
		Message: "Internal Server Error",
		Details: details,
	}
}
