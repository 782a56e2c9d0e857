// Package token はセッショントークンの発行と検証を提供する。
// IDプロバイダー自身が発行するトークンとは別に、ログイン成功後に
// このサービスが署名するステートレスなBearerトークンを扱う。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/crowdlog/internal/model"
)

// 検証失敗の種別。ハンドラー側でステータスコードを出し分けるために区別する。
var (
	// ErrInvalidToken は署名不正・解析不能・アルゴリズム不一致を表す。
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken は有効期限切れを表す。
	ErrExpiredToken = errors.New("token expired")
)

// Claims はセッショントークンに埋め込むクレーム。
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Service はHMAC-SHA256によるトークンの発行・検証を行う。
// 状態を持たず、secretと入力のみの純関数として動作する。
type Service struct {
	secret []byte
	expiry time.Duration
}

// NewService はServiceを生成する。
// expiryが0以下の場合は1時間を使用する。
func NewService(secret string, expiry time.Duration) *Service {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Service{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Issue はユーザー情報からセッショントークンを発行する。
// クレームには id / email / name を含め、有効期限は発行時刻+expiry。
func (s *Service) Issue(user *model.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.DisplayName(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークン文字列を検証し、クレームを返す。
// 期限切れはErrExpiredToken、それ以外の検証失敗はErrInvalidTokenを返す。
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// アルゴリズム混同攻撃を防ぐため、HMAC以外の署名方式は拒否する
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
