package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Checker はデータベース接続の診断を提供する。
// /api/auth/test-db エンドポイントから使用する。
type Checker struct {
	db *sql.DB
}

// NewChecker はCheckerを生成する。
func NewChecker(db *sql.DB) *Checker {
	return &Checker{db: db}
}

// CurrentTime はデータベースの現在時刻を返す。
// 接続とクエリ実行の両方が成功することの確認を兼ねる。
func (c *Checker) CurrentTime(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := c.db.QueryRowContext(ctx, `SELECT now()`).Scan(&now); err != nil {
		return time.Time{}, fmt.Errorf("failed to query current time: %w", err)
	}
	return now, nil
}
