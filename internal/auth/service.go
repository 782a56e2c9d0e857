// Package auth はユーザー登録・ログイン・本人確認のビジネスロジックを提供する。
// 認証情報の正はあくまで外部IDプロバイダーであり、このサービスは
// プロバイダーへの委譲とローカルミラー（usersテーブル）の参照、
// セッショントークンの発行のみを行う。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/crowdlog/internal/identity"
	"github.com/hitoshi/crowdlog/internal/model"
	"github.com/hitoshi/crowdlog/internal/repository"
)

// IdentityClient は匿名キー側のIDプロバイダー操作のインターフェース。
type IdentityClient interface {
	// SignInWithPassword はメールアドレスとパスワードでサインインする。
	SignInWithPassword(ctx context.Context, email, password string) (*identity.SignInResult, error)
	// GetUser はプロバイダー発行のアクセストークンをユーザーに解決する。
	GetUser(ctx context.Context, accessToken string) (*identity.ProviderUser, error)
}

// IdentityAdmin は特権側のIDプロバイダー操作のインターフェース。
type IdentityAdmin interface {
	// CreateUser はメール確認済み状態でユーザーを作成する。
	CreateUser(ctx context.Context, email, password, name string) (*identity.ProviderUser, error)
}

// TokenIssuer はセッショントークン発行のインターフェース。
type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	client   IdentityClient
	admin    IdentityAdmin
	userRepo repository.UserRepository
	issuer   TokenIssuer
}

// NewService はServiceを生成する。
func NewService(client IdentityClient, admin IdentityAdmin, userRepo repository.UserRepository, issuer TokenIssuer) *Service {
	return &Service{
		client:   client,
		admin:    admin,
		userRepo: userRepo,
		issuer:   issuer,
	}
}

// Register はIDプロバイダーの特権クライアントでユーザーを作成する。
// メールは確認済みとして作成されるため、登録後すぐにログイン可能。
// この段階ではセッショントークンは発行しない。
// プロバイダーに拒否された場合はステータス・コード・詳細をそのまま伝搬する
// （ステータス未指定の場合は400）。
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	created, err := s.admin.CreateUser(ctx, email, password, name)
	if err != nil {
		var pe *identity.ProviderError
		if errors.As(err, &pe) {
			slog.Warn("provider rejected user creation",
				slog.String("email", email),
				slog.Int("provider_status", pe.Status),
				slog.String("provider_code", pe.Code),
			)
			return nil, providerAPIError(pe)
		}
		return nil, fmt.Errorf("failed to create user at provider: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", created.ID),
		slog.String("email", created.Email),
	)

	return &model.User{
		ID:        created.ID,
		Email:     created.Email,
		Name:      name,
		CreatedAt: created.CreatedAt,
	}, nil
}

// LoginResult はログイン成功時の結果。
type LoginResult struct {
	Token string
	User  *model.User
}

// Login はIDプロバイダーでパスワード認証し、セッショントークンを発行する。
// 認証失敗はAUTHENTICATION_FAILED（プロバイダーのメッセージを使用）。
// 認証成功後にローカルミラーのusers行が引けない場合はデータ不整合であり、
// INTERNAL_ERRORとして扱う。
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	signIn, err := s.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		message := ""
		var pe *identity.ProviderError
		if errors.As(err, &pe) {
			message = pe.Message
		}
		slog.Warn("login failed", slog.String("email", email))
		return nil, model.NewAuthenticationFailedError(message)
	}

	// ローカルミラーからユーザー行を取得する。
	// プロバイダーに存在するのにミラーに無い場合はデータ不整合。
	user, err := s.userRepo.FindByID(ctx, signIn.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mirrored user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s authenticated at provider but missing from users table", signIn.User.ID)
	}

	tok, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	slog.Info("login successful", slog.String("user_id", user.ID))

	return &LoginResult{
		Token: tok,
		User:  user,
	}, nil
}

// CurrentUser はプロバイダー発行のアクセストークンから現在のユーザーを解決する。
// トークン検証はローカルのセッショントークンではなくIDプロバイダー側で行う。
// 履歴ルートのローカル検証とは意図的に別系統（二重の検証経路）であり、
// 統合すると信頼セマンティクスが変わるため統合しないこと。
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*model.User, error) {
	providerUser, err := s.client.GetUser(ctx, accessToken)
	if err != nil {
		var pe *identity.ProviderError
		if errors.As(err, &pe) {
			return nil, model.NewInvalidTokenError()
		}
		return nil, fmt.Errorf("failed to verify token at provider: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, providerUser.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mirrored user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}

// providerAPIError はProviderErrorをAPIErrorへ変換する。
// ステータス・コード・メッセージ・詳細はプロバイダーの値をそのまま使う。
func providerAPIError(pe *identity.ProviderError) *model.APIError {
	code := pe.Code
	if code == "" {
		code = "registration_failed"
	}
	status := pe.Status
	if status == 0 {
		status = 400
	}
	message := pe.Message
	if message == "" {
		message = "Registration failed"
	}
	return &model.APIError{
		Code:    code,
		Message: message,
		Details: pe.Details,
		Status:  status,
	}
}
