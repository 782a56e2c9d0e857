package identity

import "testing"

// GoTrueのエラーボディはフィールド構成に揺れがあるため、
// 代表的なバリエーションが正しく正規化されることを検証する。
func TestParseProviderError_BodyVariants(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    string
		wantMessage string
	}{
		{
			name:        "error_code and msg",
			status:      400,
			body:        `{"error_code": "invalid_credentials", "msg": "Invalid login credentials"}`,
			wantCode:    "invalid_credentials",
			wantMessage: "Invalid login credentials",
		},
		{
			name:        "numeric code with message",
			status:      422,
			body:        `{"code": 422, "message": "Password should be at least 6 characters"}`,
			wantCode:    "",
			wantMessage: "Password should be at least 6 characters",
		},
		{
			name:        "string code",
			status:      400,
			body:        `{"code": "weak_password", "msg": "Password is too weak"}`,
			wantCode:    "weak_password",
			wantMessage: "Password is too weak",
		},
		{
			name:        "oauth style error and description",
			status:      400,
			body:        `{"error": "invalid_grant", "error_description": "Invalid login credentials"}`,
			wantCode:    "invalid_grant",
			wantMessage: "Invalid login credentials",
		},
		{
			name:        "non-json body",
			status:      502,
			body:        "Bad Gateway",
			wantCode:    "",
			wantMessage: "Bad Gateway",
		},
		{
			name:        "json without known fields",
			status:      500,
			body:        `{"unexpected": true}`,
			wantCode:    "",
			wantMessage: `{"unexpected": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := parseProviderError(tt.status, []byte(tt.body))

			if pe.Status != tt.status {
				t.Errorf("Status = %d, want %d", pe.Status, tt.status)
			}
			if pe.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", pe.Code, tt.wantCode)
			}
			if pe.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", pe.Message, tt.wantMessage)
			}
		})
	}
}

func TestProviderError_Error(t *testing.T) {
	pe := &ProviderError{Status: 400, Code: "invalid_credentials", Message: "Invalid login credentials"}
	got := pe.Error()
	want := `provider error (status 400, code "invalid_credentials"): Invalid login credentials`
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
