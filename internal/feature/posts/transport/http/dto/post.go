// Package dto はpostsフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"strconv"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"portfolio_blog/internal/feature/posts/domain"
	"portfolio_blog/internal/feature/posts/domain/entity"
)

// PostForm は作成・編集フォームの入力値です。編集画面の初期値にも使います。
type PostForm struct {
	ID          uint   `form:"-"`
	Title       string `form:"title"`
	Description string `form:"description"`
	Date        string `form:"date"`
	Address     string `form:"address"`
	Latitude    string `form:"latitude"`
	Longitude   string `form:"longitude"`
	MapEmbed    string `form:"map_iframe"`
}

// Fields converts the form into the domain's editable fields.
func (f PostForm) Fields() domain.PostFields {
	return domain.PostFields{
		Title:       f.Title,
		Description: f.Description,
		Date:        f.Date,
		Address:     f.Address,
		Latitude:    f.Latitude,
		Longitude:   f.Longitude,
		MapEmbed:    f.MapEmbed,
	}
}

// PostFormFrom fills a form with the current values of p.
func PostFormFrom(p *entity.Post) PostForm {
	f := PostForm{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		MapEmbed:    p.MapEmbed,
	}
	if p.Date != nil {
		f.Date = p.Date.Format(domain.DateLayout)
	}
	if p.Latitude != nil {
		f.Latitude = strconv.FormatFloat(*p.Latitude, 'f', -1, 64)
	}
	if p.Longitude != nil {
		f.Longitude = strconv.FormatFloat(*p.Longitude, 'f', -1, 64)
	}
	return f
}

// PhotoResponse は写真のレスポンスDTOです。
type PhotoResponse struct {
	ID         uint      `json:"id"`
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// PostResponse は記事のレスポンスDTOです。
type PostResponse struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Date        *openapi_types.Date `json:"date"` // YYYY-MM-DD、未設定ならnull
	Address     string              `json:"address"`
	Latitude    *float64            `json:"latitude"`
	Longitude   *float64            `json:"longitude"`
	MapEmbed    string              `json:"map_embed"`
	UserID      uint                `json:"user_id"`
	Owner       string              `json:"owner,omitempty"` // 詳細表示のみ
	Photos      []PhotoResponse     `json:"photos"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NewPostResponse maps p to its JSON shape. photoURL turns a stored name into a link.
func NewPostResponse(p *entity.Post, photoURL func(string) string) PostResponse {
	out := PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		MapEmbed:    p.MapEmbed,
		UserID:      p.UserID,
		Photos:      make([]PhotoResponse, 0, len(p.Photos)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Date != nil {
		out.Date = &openapi_types.Date{Time: *p.Date}
	}
	for _, ph := range p.Photos {
		out.Photos = append(out.Photos, PhotoResponse{
			ID:         ph.ID,
			Filename:   ph.Filename,
			URL:        photoURL(ph.Filename),
			UploadedAt: ph.UploadedAt,
		})
	}
	return out
}
