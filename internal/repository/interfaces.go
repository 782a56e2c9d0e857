// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/crowdlog/internal/model"
)

// UserRepository はユーザーデータ（IDプロバイダーのミラー）の読み取りインターフェース。
// usersテーブルはプロバイダー側が正であり、このサービスからは書き込まない。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// DetectionRepository は検出履歴の永続化インターフェース。
type DetectionRepository interface {
	// Create は検出記録を挿入する。
	// detected_atはデータベースのクロックで採番し、挿入後のdに反映する。
	Create(ctx context.Context, d *model.Detection) error

	// ListByUserID はユーザーの検出履歴をdetected_at降順で取得する。
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Detection, error)

	// CountByUserID はユーザーの検出記録の総数を返す。
	CountByUserID(ctx context.Context, userID string) (int, error)

	// Summarize はユーザーの検出履歴を集計する。
	// start・endはdetected_atの包含境界で、nilの場合はその側の境界なし。
	Summarize(ctx context.Context, userID string, start, end *time.Time) (*model.DetectionSummary, error)
}
