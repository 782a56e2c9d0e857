package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAdminClient_CreateUser_Success(t *testing.T) {
	var gotAPIKey, gotAuth string
	var gotBody createUserRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/admin/users" {
			t.Errorf("path = %q, want /auth/v1/admin/users", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "uuid-new",
			"email": "taro@example.com",
			"created_at": "2026-03-10T10:00:00Z",
			"user_metadata": {"name": "Taro"}
		}`))
	}))
	defer server.Close()

	admin := NewAdminClient(testConfig(server.URL))
	user, err := admin.CreateUser(context.Background(), "taro@example.com", "password123", "Taro")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	// 管理者APIはサービスロールキーを使う
	if gotAPIKey != "test-service-key" {
		t.Errorf("apikey header = %q, want test-service-key", gotAPIKey)
	}
	if gotAuth != "Bearer test-service-key" {
		t.Errorf("Authorization header = %q, want Bearer test-service-key", gotAuth)
	}

	if !gotBody.EmailConfirm {
		t.Error("email_confirm should be true")
	}
	if gotBody.UserMetadata["name"] != "Taro" {
		t.Errorf("user_metadata.name = %q, want Taro", gotBody.UserMetadata["name"])
	}

	if user.ID != "uuid-new" {
		t.Errorf("ID = %q, want uuid-new", user.ID)
	}
	if user.Name != "Taro" {
		t.Errorf("Name = %q, want Taro", user.Name)
	}
}

// user_metadataが未反映のレスポンスでもリクエストのnameが採用されることを検証
func TestAdminClient_CreateUser_MissingMetadataName_UsesRequestName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "uuid-new", "email": "taro@example.com"}`))
	}))
	defer server.Close()

	admin := NewAdminClient(testConfig(server.URL))
	user, err := admin.CreateUser(context.Background(), "taro@example.com", "password123", "Taro")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if user.Name != "Taro" {
		t.Errorf("Name = %q, want Taro", user.Name)
	}
}

func TestAdminClient_CreateUser_DuplicateEmail_ReturnsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error_code": "email_exists", "msg": "A user with this email address has already been registered"}`))
	}))
	defer server.Close()

	admin := NewAdminClient(testConfig(server.URL))
	_, err := admin.CreateUser(context.Background(), "taro@example.com", "password123", "Taro")
	if err == nil {
		t.Fatal("expected error for duplicate email")
	}

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error %T should be *ProviderError", err)
	}
	if pe.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want 422", pe.Status)
	}
	if pe.Code != "email_exists" {
		t.Errorf("Code = %q, want email_exists", pe.Code)
	}
}

func TestAdminClient_CreateUser_EmptyID_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"email": "taro@example.com"}`))
	}))
	defer server.Close()

	admin := NewAdminClient(testConfig(server.URL))
	_, err := admin.CreateUser(context.Background(), "taro@example.com", "password123", "Taro")
	if err == nil {
		t.Fatal("expected error for empty user id")
	}
}
