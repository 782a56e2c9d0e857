package model

import "time"

// Detection は1件の人数検出記録を表す。
// 認証済みユーザーが作成し、作成後は不変。削除はこのサービスからは行わない。
type Detection struct {
	ID          string
	UserID      string
	PeopleCount int
	ImageURL    *string // 画像参照は任意
	DetectedAt  time.Time
}

// DetectionSummary は検出履歴の集計結果を表す。
// 対象期間に記録が1件もない場合、各値は0、LastDetectionはnilになる。
type DetectionSummary struct {
	TotalDetections int
	TotalPeople     int
	AveragePeople   float64
	LastDetection   *time.Time
}
