// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// IDは外部IDプロバイダーが発行した識別子で、ローカルのusersテーブルは
// プロバイダー側レコードのミラーとして扱う。このサービスからは更新しない。
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// DisplayName は表示用の名前を返す。
// nameが未設定の場合はメールアドレスのローカル部にフォールバックする。
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}
