package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/crowdlog/internal/model"
)

const testSecret = "test-jwt-secret-at-least-32-bytes!"

func testUser() *model.User {
	return &model.User{
		ID:    "user-123",
		Email: "taro@example.com",
		Name:  "Taro",
	}
}

func TestService_IssueAndVerify_RoundTrip(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	tok, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if tok == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-123")
	}
	if claims.Email != "taro@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "taro@example.com")
	}
	if claims.Name != "Taro" {
		t.Errorf("Name = %q, want %q", claims.Name, "Taro")
	}
}

// nameが未設定のユーザーはメールのローカル部がクレームに入ることを検証
func TestService_Issue_NameFallsBackToEmailLocalPart(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	user := &model.User{ID: "user-456", Email: "hanako@example.com"}
	tok, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.Name != "hanako" {
		t.Errorf("Name = %q, want %q", claims.Name, "hanako")
	}
}

func TestService_Verify_ExpiredToken_ReturnsErrExpiredToken(t *testing.T) {
	// 負のexpiryで発行時点から期限切れのトークンを作る
	svc := &Service{secret: []byte(testSecret), expiry: -time.Minute}

	tok, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	_, err = svc.Verify(tok)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify error = %v, want ErrExpiredToken", err)
	}
}

func TestService_Verify_WrongSecret_ReturnsErrInvalidToken(t *testing.T) {
	issuer := NewService(testSecret, time.Hour)
	verifier := NewService("another-secret-that-does-not-match", time.Hour)

	tok, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	_, err = verifier.Verify(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify error = %v, want ErrInvalidToken", err)
	}
}

func TestService_Verify_MalformedToken_ReturnsErrInvalidToken(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	_, err := svc.Verify("not-a-jwt")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify error = %v, want ErrInvalidToken", err)
	}
}

// alg=noneのトークンが拒否されることを検証（アルゴリズム混同対策）
func TestService_Verify_UnsignedToken_ReturnsErrInvalidToken(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}

	_, err = svc.Verify(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify error = %v, want ErrInvalidToken", err)
	}
}

// expiryが0以下の場合は1時間にフォールバックすることを検証
func TestNewService_NonPositiveExpiry_DefaultsToOneHour(t *testing.T) {
	svc := NewService(testSecret, 0)
	if svc.expiry != time.Hour {
		t.Errorf("expiry = %v, want %v", svc.expiry, time.Hour)
	}
}
