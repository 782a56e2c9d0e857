package repository

import "testing"

// PostgresDetectionRepoはDetectionRepositoryインターフェースを満たすことを検証
func TestPostgresDetectionRepo_ImplementsInterface(t *testing.T) {
	var _ DetectionRepository = (*PostgresDetectionRepo)(nil)
}

// NewPostgresDetectionRepoが正しく初期化されることを検証
func TestNewPostgresDetectionRepo_Initializes(t *testing.T) {
	repo := NewPostgresDetectionRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}
