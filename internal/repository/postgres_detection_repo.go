package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/crowdlog/internal/model"
)

// PostgresDetectionRepo はPostgreSQLを使用した検出履歴リポジトリ。
type PostgresDetectionRepo struct {
	db *sql.DB
}

// NewPostgresDetectionRepo はPostgresDetectionRepoを生成する。
func NewPostgresDetectionRepo(db *sql.DB) *PostgresDetectionRepo {
	return &PostgresDetectionRepo{db: db}
}

// Create は検出記録を挿入する。
// detected_atはデータベースのnow()で採番し、採番結果をdに書き戻す。
func (r *PostgresDetectionRepo) Create(ctx context.Context, d *model.Detection) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO detection_history (id, user_id, people_count, image_url, detected_at)
		 VALUES ($1, $2, $3, $4, now())
		 RETURNING detected_at`,
		d.ID, d.UserID, d.PeopleCount, d.ImageURL,
	).Scan(&d.DetectedAt)
	if err != nil {
		return fmt.Errorf("failed to insert detection: %w", err)
	}

	return nil
}

// ListByUserID はユーザーの検出履歴をdetected_at降順で取得する。
func (r *PostgresDetectionRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Detection, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, people_count, image_url, detected_at
		 FROM detection_history
		 WHERE user_id = $1
		 ORDER BY detected_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list detections: %w", err)
	}
	defer rows.Close()

	detections := []*model.Detection{}
	for rows.Next() {
		d := &model.Detection{}
		var imageURL sql.NullString
		if err := rows.Scan(&d.ID, &d.UserID, &d.PeopleCount, &imageURL, &d.DetectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		if imageURL.Valid {
			d.ImageURL = &imageURL.String
		}
		detections = append(detections, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate detections: %w", err)
	}

	return detections, nil
}

// CountByUserID はユーザーの検出記録の総数を返す。
func (r *PostgresDetectionRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM detection_history WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count detections: %w", err)
	}

	return count, nil
}

// Summarize はユーザーの検出履歴を集計する。
// start・endはdetected_atの包含境界で、指定された組み合わせに応じて
// WHERE句を切り替える。記録が0件の場合は各値0、LastDetectionはnil。
func (r *PostgresDetectionRepo) Summarize(ctx context.Context, userID string, start, end *time.Time) (*model.DetectionSummary, error) {
	args := []interface{}{userID}
	dateFilter := ""

	switch {
	case start != nil && end != nil:
		args = append(args, *start, *end)
		dateFilter = "AND detected_at BETWEEN $2 AND $3"
	case start != nil:
		args = append(args, *start)
		dateFilter = "AND detected_at >= $2"
	case end != nil:
		args = append(args, *end)
		dateFilter = "AND detected_at <= $2"
	}

	query := fmt.Sprintf(`SELECT
		COUNT(*) AS total_detections,
		COALESCE(SUM(people_count), 0) AS total_people,
		CASE WHEN COUNT(*) > 0 THEN ROUND(AVG(people_count)::numeric, 2) ELSE 0 END AS average_people,
		MAX(detected_at) AS last_detection
	 FROM detection_history
	 WHERE user_id = $1 %s`, dateFilter)

	summary := &model.DetectionSummary{}
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&summary.TotalDetections,
		&summary.TotalPeople,
		&summary.AveragePeople,
		&last,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize detections: %w", err)
	}

	if last.Valid {
		summary.LastDetection = &last.Time
	}

	return summary, nil
}

// compile-time interface check
var _ DetectionRepository = (*PostgresDetectionRepo)(nil)
