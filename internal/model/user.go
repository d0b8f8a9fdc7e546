// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// メールアドレスで一意に識別され、初回ログイン時に作成される。
type User struct {
	ID      string
	Email   string
	Name    string
	Picture string
	// GoogleRefreshToken はカレンダー連携用の長期リフレッシュトークン。
	// 未連携の場合は空文字列。
	GoogleRefreshToken string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasCalendarAccess はカレンダー連携用のリフレッシュトークンを保持しているかを返す。
func (u *User) HasCalendarAccess() bool {
	return u != nil && u.GoogleRefreshToken != ""
}
