package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/crowdlog/internal/auth"
	"github.com/hitoshi/crowdlog/internal/middleware"
	"github.com/hitoshi/crowdlog/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register はIDプロバイダーでユーザーを作成する。
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	// Login はパスワード認証とセッショントークン発行を行う。
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	// CurrentUser はプロバイダー発行トークンから現在のユーザーを解決する。
	CurrentUser(ctx context.Context, accessToken string) (*model.User, error)
}

// DBChecker は接続診断エンドポイントが必要とするインターフェース。
type DBChecker interface {
	// CurrentTime はデータベースの現在時刻を返す（SELECT now()）。
	CurrentTime(ctx context.Context) (time.Time, error)
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	checker DBChecker
	dev     bool
}

// NewAuthHandler はAuthHandlerを生成する。
// devがtrueの場合、500レスポンスにエラー詳細を含める。
func NewAuthHandler(service AuthServiceInterface, checker DBChecker, dev bool) *AuthHandler {
	return &AuthHandler{
		service: service,
		checker: checker,
		dev:     dev,
	}
}

// --- リクエスト・レスポンス型 ---

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// registerResponse はユーザー登録成功のレスポンス。
type registerResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse はログイン成功のレスポンス。
type loginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
	Message string       `json:"message"`
}

// meResponse は/meのレスポンス（ローカルミラーのusers行をそのまま返す）。
type meResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// validationErrorResponse は必須フィールド欠落のレスポンス。
type validationErrorResponse struct {
	Error    string   `json:"error"`
	Code     string   `json:"code"`
	Required []string `json:"required"`
}

// Register はユーザー登録を処理する。
// POST /api/auth/register
// バリデーションはプロバイダー呼び出しの前に行い、欠落フィールドを列挙して400を返す。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, model.NewValidationError("Invalid request body"))
		return
	}

	missing := missingFields(map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
	}, "name", "email", "password")
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, validationErrorResponse{
			Error:    "Name, email, and password are required",
			Code:     "missing_fields",
			Required: missing,
		})
		return
	}

	user, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err, h.dev)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Success: true,
		Message: "User registered successfully",
		User: userResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
		},
	})
}

// Login はログインを処理する。
// POST /api/auth/login
// 成功時はこのサービスが署名したセッショントークンを返す。
// nameが未設定のユーザーはメールのローカル部を名前として返す。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, model.NewValidationError("Invalid request body"))
		return
	}

	missing := missingFields(map[string]string{
		"email":    req.Email,
		"password": req.Password,
	}, "email", "password")
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, validationErrorResponse{
			Error:    "Missing required fields",
			Code:     "missing_fields",
			Required: missing,
		})
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err, h.dev)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Token:   result.Token,
		User: userResponse{
			ID:    result.User.ID,
			Email: result.User.Email,
			Name:  result.User.DisplayName(),
		},
		Message: "Login successful",
	})
}

// Me は現在のユーザー情報を返す。
// GET /api/auth/me
// トークンの検証はIDプロバイダー側で行う（履歴ルートのローカル検証とは別系統）。
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	tok := middleware.BearerToken(r)
	if tok == "" {
		writeAPIError(w, model.NewMissingTokenError())
		return
	}

	user, err := h.service.CurrentUser(r.Context(), tok)
	if err != nil {
		handleServiceError(w, err, h.dev)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	})
}

// TestDB はデータベース接続を診断する。
// GET /api/auth/test-db
func (h *AuthHandler) TestDB(w http.ResponseWriter, r *http.Request) {
	now, err := h.checker.CurrentTime(r.Context())
	if err != nil {
		slog.Error("database connection test failed", slog.String("error", err.Error()))
		resp := errorResponse{Error: "Database connection failed"}
		if h.dev {
			resp.Details = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"currentTime": now,
		"message":     "Database connection successful!",
	})
}

// missingFields は値が空のフィールド名をorderの順で返す。
func missingFields(values map[string]string, order ...string) []string {
	var missing []string
	for _, name := range order {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
