// Package domain はpostsフィーチャーのドメインルールとエラーを定義します。
package domain

import "errors"

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrForbidden         = errors.New("not the owner of this post")
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)
