// Package history は検出履歴の記録・一覧・集計のビジネスロジックを提供する。
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/crowdlog/internal/model"
	"github.com/hitoshi/crowdlog/internal/repository"
)

// 一覧取得のページネーション既定値。
const (
	DefaultLimit  = 100
	DefaultOffset = 0
)

// RecordCounter は記録成功時のメトリクス通知インターフェース。
type RecordCounter interface {
	RecordDetection()
}

// Service は検出履歴に関するビジネスロジックを提供する。
type Service struct {
	repo    repository.DetectionRepository
	metrics RecordCounter
}

// NewService はServiceを生成する。metricsはnil可。
func NewService(repo repository.DetectionRepository, metrics RecordCounter) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
	}
}

// Record は検出記録を作成する。
// people_countは0以上であること。IDはこの層でUUIDを採番し、
// detected_atはデータベース側のクロックで確定する。
func (s *Service) Record(ctx context.Context, userID string, peopleCount int, imageURL *string) (*model.Detection, error) {
	if peopleCount < 0 {
		return nil, model.NewValidationError("people_count must be non-negative", "people_count")
	}

	d := &model.Detection{
		ID:          uuid.New().String(),
		UserID:      userID,
		PeopleCount: peopleCount,
		ImageURL:    imageURL,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to record detection: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordDetection()
	}

	slog.Info("detection recorded",
		slog.String("detection_id", d.ID),
		slog.String("user_id", userID),
		slog.Int("people_count", peopleCount),
	)

	return d, nil
}

// ListResult は一覧取得の結果。
type ListResult struct {
	Detections []*model.Detection
	Total      int
	Limit      int
	Offset     int
}

// List はユーザーの検出履歴をdetected_at降順で取得する。
// totalは同じユーザーフィルタでの別カウントクエリの結果。
// limitが0以下の場合は既定値100、offsetが負の場合は0を使用する。
func (s *Service) List(ctx context.Context, userID string, limit, offset int) (*ListResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = DefaultOffset
	}

	total, err := s.repo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count detections: %w", err)
	}

	detections, err := s.repo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list detections: %w", err)
	}

	return &ListResult{
		Detections: detections,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// Summarize はユーザーの検出履歴を集計する。
// start・endはdetected_atの包含境界で、nilはその側の境界なしを意味する。
func (s *Service) Summarize(ctx context.Context, userID string, start, end *time.Time) (*model.DetectionSummary, error) {
	summary, err := s.repo.Summarize(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize detections: %w", err)
	}

	return summary, nil
}
