package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/crowdlog/internal/history"
	"github.com/hitoshi/crowdlog/internal/middleware"
	"github.com/hitoshi/crowdlog/internal/model"
)

// HistoryServiceInterface は履歴ハンドラーが必要とするサービスインターフェース。
type HistoryServiceInterface interface {
	// Record は検出記録を作成する。
	Record(ctx context.Context, userID string, peopleCount int, imageURL *string) (*model.Detection, error)
	// List はユーザーの検出履歴をdetected_at降順で返す。
	List(ctx context.Context, userID string, limit, offset int) (*history.ListResult, error)
	// Summarize はユーザーの検出履歴を集計する。
	Summarize(ctx context.Context, userID string, start, end *time.Time) (*model.DetectionSummary, error)
}

// HistoryHandler は検出履歴のHTTPハンドラー。
// すべてのルートは認証ミドルウェア通過後に呼ばれる前提で、
// ユーザーIDは検証済みトークンのクレームから取得する。
type HistoryHandler struct {
	service HistoryServiceInterface
	dev     bool
}

// NewHistoryHandler はHistoryHandlerを生成する。
func NewHistoryHandler(service HistoryServiceInterface, dev bool) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		dev:     dev,
	}
}

// --- リクエスト・レスポンス型 ---

// recordRequest は検出記録作成リクエストのボディ。
// people_countの「未指定」と「0」を区別するためポインタで受ける。
type recordRequest struct {
	PeopleCount *int    `json:"people_count"`
	ImageURL    *string `json:"image_url"`
}

// detectionResponse は検出記録のAPIレスポンス。
type detectionResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	PeopleCount int       `json:"people_count"`
	ImageURL    *string   `json:"image_url"`
	DetectedAt  time.Time `json:"detected_at"`
}

// recordResponse は検出記録作成成功のレスポンス。
type recordResponse struct {
	Message string            `json:"message"`
	Data    detectionResponse `json:"data"`
}

// paginationResponse はページネーション情報。
type paginationResponse struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// listResponse は一覧取得のレスポンス。
type listResponse struct {
	Data       []detectionResponse `json:"data"`
	Pagination paginationResponse  `json:"pagination"`
}

// summaryResponse は集計のレスポンス。
type summaryResponse struct {
	TotalDetections int        `json:"totalDetections"`
	TotalPeople     int        `json:"totalPeople"`
	AveragePeople   float64    `json:"averagePeople"`
	LastDetection   *time.Time `json:"lastDetection"`
}

func toDetectionResponse(d *model.Detection) detectionResponse {
	return detectionResponse{
		ID:          d.ID,
		UserID:      d.UserID,
		PeopleCount: d.PeopleCount,
		ImageURL:    d.ImageURL,
		DetectedAt:  d.DetectedAt,
	}
}

// Record は検出記録を作成する。
// POST /api/history
func (h *HistoryHandler) Record(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIError(w, model.NewMissingTokenError())
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, model.NewValidationError("Invalid request body"))
		return
	}

	if req.PeopleCount == nil {
		writeAPIError(w, model.NewValidationError("Missing required fields", "people_count"))
		return
	}

	detection, err := h.service.Record(r.Context(), userID, *req.PeopleCount, req.ImageURL)
	if err != nil {
		handleServiceError(w, err, h.dev)
		return
	}

	writeJSON(w, http.StatusCreated, recordResponse{
		Message: "Detection recorded",
		Data:    toDetectionResponse(detection),
	})
}

// List はユーザーの検出履歴を取得する。
// GET /api/history?limit=100&offset=0
// limit・offsetが数値として解釈できない場合は既定値を使用する。
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIError(w, model.NewMissingTokenError())
		return
	}

	limit := queryInt(r, "limit", history.DefaultLimit)
	offset := queryInt(r, "offset", history.DefaultOffset)

	result, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		handleServiceError(w, err, h.dev)
		return
	}

	data := make([]detectionResponse, 0, len(result.Detections))
	for _, d := range result.Detections {
		data = append(data, toDetectionResponse(d))
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data: data,
		Pagination: paginationResponse{
			Total:  result.Total,
			Limit:  result.Limit,
			Offset: result.Offset,
		},
	})
}

// Summary はユーザーの検出履歴の集計を取得する。
// GET /api/history/summary?startDate=...&endDate=...
// startDate・endDateはdetected_atの包含境界で、片方のみ・両方・なしのいずれも可。
// データベースエラーはエラーメッセージをそのまま500で返す。
func (h *HistoryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIError(w, model.NewMissingTokenError())
		return
	}

	start, err := queryTime(r, "startDate")
	if err != nil {
		writeAPIError(w, model.NewValidationError("Invalid startDate", "startDate"))
		return
	}
	end, err := queryTime(r, "endDate")
	if err != nil {
		writeAPIError(w, model.NewValidationError("Invalid endDate", "endDate"))
		return
	}

	summary, err := h.service.Summarize(r.Context(), userID, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		TotalDetections: summary.TotalDetections,
		TotalPeople:     summary.TotalPeople,
		AveragePeople:   summary.AveragePeople,
		LastDetection:   summary.LastDetection,
	})
}

// queryInt はクエリパラメータを整数として取得する。
// 未指定または解釈不能な場合はdefaultValを返す。
func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// queryTime はクエリパラメータを時刻として取得する。
// RFC3339と日付のみ（YYYY-MM-DD）の両形式を受け付ける。
// 未指定の場合はnilを返す。
func queryTime(r *http.Request, key string) (*time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
