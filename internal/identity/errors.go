package identity

import (
	"encoding/json"
	"fmt"
)

// ProviderError はIDプロバイダーが返したエラーを表す。
// プロバイダーのレスポンスはフィールド構成が一定でないため、
// ここで閉じた型に正規化し、ハンドラー側はこの型のみで分岐する。
type ProviderError struct {
	Status  int    // プロバイダーが返したHTTPステータス
	Code    string // プロバイダーのエラーコード（例: "user_already_exists"）
	Message string
	Details string
}

// Error はerrorインターフェースを実装する。
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (status %d, code %q): %s", e.Status, e.Code, e.Message)
}

// providerErrorBody はGoTrueのエラーレスポンスの揺れを吸収するための型。
// 新旧APIで {"msg": ...} / {"message": ...} / {"error_description": ...} が混在する。
type providerErrorBody struct {
	Code             json.RawMessage `json:"code"` // 数値または文字列
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	ErrorField       string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Details          string          `json:"details"`
}

// parseProviderError は非2xxレスポンスをProviderErrorに正規化する。
// JSONとして解析できない場合はボディをそのままメッセージにする。
func parseProviderError(status int, body []byte) *ProviderError {
	pe := &ProviderError{Status: status}

	if !isJSONContent(body) {
		pe.Message = string(body)
		return pe
	}

	var eb providerErrorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		pe.Message = string(body)
		return pe
	}

	// コードの優先順位: error_code > code(文字列) > error
	switch {
	case eb.ErrorCode != "":
		pe.Code = eb.ErrorCode
	case len(eb.Code) > 0:
		var s string
		if err := json.Unmarshal(eb.Code, &s); err == nil {
			pe.Code = s
		}
	case eb.ErrorField != "":
		pe.Code = eb.ErrorField
	}

	// メッセージの優先順位: msg > message > error_description
	switch {
	case eb.Msg != "":
		pe.Message = eb.Msg
	case eb.Message != "":
		pe.Message = eb.Message
	case eb.ErrorDescription != "":
		pe.Message = eb.ErrorDescription
	default:
		pe.Message = string(body)
	}

	pe.Details = eb.Details

	return pe
}
