package model

import "testing"

func TestNewValidationError_JoinsMissingFields(t *testing.T) {
	err := NewValidationError("Missing required fields", "name", "password")

	if err.Code != ErrCodeValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeValidation)
	}
	if err.Details != "name, password" {
		t.Errorf("Details = %q, want %q", err.Details, "name, password")
	}
}

func TestNewAuthenticationFailedError_DefaultMessage(t *testing.T) {
	err := NewAuthenticationFailedError("")
	if err.Message != "Invalid email or password" {
		t.Errorf("Message = %q, want default", err.Message)
	}

	err = NewAuthenticationFailedError("Invalid login credentials")
	if err.Message != "Invalid login credentials" {
		t.Errorf("Message = %q, want provider message", err.Message)
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Code: ErrCodeUserNotFound, Message: "User not found"}
	want := "[USER_NOT_FOUND] User not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
