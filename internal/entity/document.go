package entity

import (
	"io"
	"time"
)

type Document struct {
	ID             int        `json:"id" db:"id"`
	UserID         int        `json:"user_id" db:"user_id"`
	FileName       string     `json:"file_name" db:"file_name"`
	FileType       string     `json:"file_type" db:"file_type"`
	FileSize       int64      `json:"file_size" db:"file_size"`
	StoragePath    string     `json:"-" db:"storage_path"`
	ShareToken     *string    `json:"share_token,omitempty" db:"share_token"`
	ShareExpiresAt *time.Time `json:"share_expires_at,omitempty" db:"share_expires_at"`
	IsSafe         bool       `json:"is_safe" db:"is_safe"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	// RawBytes заполняется только на пути загрузки, в БД не хранится
	RawBytes io.Reader `json:"-" db:"-"`
}

// HasValidShare проверяет, что ссылка на документ существует и ещё не истекла
func (d *Document) HasValidShare(now time.Time) bool {
	return d.ShareToken != nil && d.ShareExpiresAt != nil && d.ShareExpiresAt.After(now)
}

type ShareLink struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
