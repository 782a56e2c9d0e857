// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/crowdlog/internal/model"
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// errorResponse はエラーレスポンスの共通フォーマット。
// プロバイダー由来のエラーではcode・detailsにプロバイダーの値がそのまま入る。
type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// writeAPIError はAPIErrorをHTTPレスポンスに変換して書き込む。
// APIError.Statusが設定されていればそれを優先し、
// 未設定の場合はエラーコードから既定のステータスを引く。
func writeAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	status := apiErr.Status
	if status == 0 {
		status = defaultStatusForCode(apiErr.Code)
	}

	writeJSON(w, status, errorResponse{
		Error:   apiErr.Message,
		Code:    apiErr.Code,
		Details: apiErr.Details,
	})
}

// defaultStatusForCode はエラーコードから既定のHTTPステータスを引く。
func defaultStatusForCode(code string) int {
	switch code {
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeMissingToken, model.ErrCodeInvalidToken, model.ErrCodeExpiredToken, model.ErrCodeAuthFailed:
		return http.StatusUnauthorized
	case model.ErrCodeUserNotFound, model.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError はサービス層から返されたエラーをHTTPレスポンスに変換する。
// APIError以外のエラーは内部サーバーエラーとして扱い、
// 詳細は開発モードのときのみレスポンスに含める。
func handleServiceError(w http.ResponseWriter, err error, dev bool) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIError(w, apiErr)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))

	resp := errorResponse{Error: "Internal Server Error"}
	if dev {
		resp.Details = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}
