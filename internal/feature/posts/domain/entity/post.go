// Package entity はpostsフィーチャーのドメインモデルを定義します。
package entity

import "time"

// Post は日付付きの旅行記事です。UserIDは作成後に変更されません。
type Post struct {
	ID          uint       `gorm:"primaryKey"`
	Title       string     `gorm:"size:200;not null"`
	Description string     `gorm:"type:text"`
	Date        *time.Time `gorm:"type:date;index"`
	Address     string     `gorm:"size:255"`
	Latitude    *float64
	Longitude   *float64
	MapEmbed    string  `gorm:"type:text"`
	UserID      uint    `gorm:"not null;index"`
	Photos      []Photo `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Photo is an uploaded image attached to a post.
// Filename is the server-generated stored name, never the client's.
type Photo struct {
	ID         uint      `gorm:"primaryKey"`
	PostID     uint      `gorm:"not null;index"`
	Filename   string    `gorm:"size:255;not null"`
	UploadedAt time.Time `gorm:"autoCreateTime"`
}
