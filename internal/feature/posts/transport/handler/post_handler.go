// Package handler はpostsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portfolio_blog/internal/feature/posts/domain"
	"portfolio_blog/internal/feature/posts/domain/entity"
	"portfolio_blog/internal/feature/posts/transport/http/dto"
	"portfolio_blog/internal/feature/posts/usecase"
	"portfolio_blog/internal/platform/http/view"
	"portfolio_blog/internal/platform/session"
)

// PostUsecase は記事操作のユースケースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PostUsecase interface {
	Create(ctx context.Context, ownerID uint, fields domain.PostFields, uploads []usecase.PhotoUpload) (*entity.Post, error)
	Get(ctx context.Context, id uint) (*entity.Post, error)
	List(ctx context.Context) ([]entity.Post, error)
	Update(ctx context.Context, id, actorID uint, fields domain.PostFields) (*entity.Post, error)
	Delete(ctx context.Context, id, actorID uint) error
}

// UserDirectory resolves a post owner's display name.
type UserDirectory interface {
	Username(ctx context.Context, id uint) (string, error)
}

// PhotoLinker turns a stored photo name into a public URL.
type PhotoLinker interface {
	URL(name string) string
}

// PostHandler は記事のHTTPリクエストを処理します。
type PostHandler struct {
	posts  PostUsecase
	users  UserDirectory
	photos PhotoLinker
}

// NewPostHandler はPostHandlerの新しいインスタンスを生成します。
func NewPostHandler(posts PostUsecase, users UserDirectory, photos PhotoLinker) *PostHandler {
	return &PostHandler{posts: posts, users: users, photos: photos}
}

// writeError はドメインエラーをHTTPステータスに変換します。詳細はログにのみ出します。
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPostNotFound):
		c.String(http.StatusNotFound, "post not found")
	case errors.Is(err, domain.ErrForbidden):
		c.String(http.StatusForbidden, "you can only change your own posts")
	case errors.Is(err, domain.ErrTitleRequired),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidCoordinate):
		c.String(http.StatusBadRequest, err.Error())
	default:
		slog.Error("post request failed", "error", err, "path", c.Request.URL.Path)
		c.String(http.StatusInternalServerError, "internal server error")
	}
}

// postID parses :id. Non-numeric IDs are treated as missing posts.
func postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.String(http.StatusNotFound, "post not found")
		return 0, false
	}
	return uint(id), true
}

// currentUser returns the logged-in user set by session.AuthRequired.
func currentUser(c *gin.Context) (uint, bool) {
	id, ok := session.UserID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, session.LoginPath)
		return 0, false
	}
	return id, true
}

// List は公開フィードをJSONで返します。
//
// エンドポイント: GET /
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, dto.NewPostResponse(&posts[i], h.photos.URL))
	}
	c.JSON(http.StatusOK, out)
}

// Show は1件の記事を写真と投稿者名付きで返します。
//
// エンドポイント: GET /post/:id
func (h *PostHandler) Show(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	out := dto.NewPostResponse(post, h.photos.URL)
	if name, err := h.users.Username(c.Request.Context(), post.UserID); err != nil {
		slog.Warn("failed to resolve post owner", "post_id", post.ID, "user_id", post.UserID, "error", err)
	} else {
		out.Owner = name
	}
	c.JSON(http.StatusOK, out)
}

// NewForm は作成フォームを表示します。
//
// エンドポイント: GET /create
func (h *PostHandler) NewForm(c *gin.Context) {
	c.HTML(http.StatusOK, view.PostFormPage, gin.H{"Action": "/create", "Post": dto.PostForm{}})
}

// Create は記事を作成し、フィードへリダイレクトします。
//
// エンドポイント: POST /create (multipart/form-data, 写真は "photos")
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var form dto.PostForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "invalid form")
		return
	}

	uploads, closeAll, err := openUploads(c)
	if err != nil {
		slog.Warn("failed to read uploaded photos", "error", err, "remote_addr", c.ClientIP())
		c.String(http.StatusBadRequest, "invalid photo upload")
		return
	}
	defer closeAll()

	post, err := h.posts.Create(c.Request.Context(), userID, form.Fields(), uploads)
	if err != nil {
		writeError(c, err)
		return
	}
	slog.Info("post created", "post_id", post.ID, "user_id", userID, "photos", len(post.Photos))
	c.Redirect(http.StatusSeeOther, "/")
}

// openUploads opens every file sent in the "photos" field.
// Requests that are not multipart simply carry no photos.
func openUploads(c *gin.Context) ([]usecase.PhotoUpload, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, closeAll, nil
		}
		return nil, closeAll, err
	}

	var uploads []usecase.PhotoUpload
	for _, fh := range form.File["photos"] {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		uploads = append(uploads, usecase.PhotoUpload{Filename: fh.Filename, Content: f})
	}
	return uploads, closeAll, nil
}

// EditForm は所有者にのみ、現在の値を入れた編集フォームを表示します。
//
// エンドポイント: GET /edit/:id
func (h *PostHandler) EditForm(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := domain.Authorize(post, userID); err != nil {
		writeError(c, err)
		return
	}
	c.HTML(http.StatusOK, view.PostFormPage, gin.H{
		"Action": "/edit/" + strconv.FormatUint(uint64(post.ID), 10),
		"Post":   dto.PostFormFrom(post),
	})
}

// Update は記事を更新し、詳細へリダイレクトします。
//
// エンドポイント: POST /edit/:id
func (h *PostHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}
	var form dto.PostForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "invalid form")
		return
	}
	post, err := h.posts.Update(c.Request.Context(), id, userID, form.Fields())
	if err != nil {
		writeError(c, err)
		return
	}
	slog.Info("post updated", "post_id", post.ID, "user_id", userID)
	c.Redirect(http.StatusSeeOther, "/post/"+strconv.FormatUint(uint64(post.ID), 10))
}

// Delete は記事を削除し、フィードへリダイレクトします。
//
// エンドポイント: GET, POST /delete/:id
func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := postID(c)
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), id, userID); err != nil {
		writeError(c, err)
		return
	}
	slog.Info("post deleted", "post_id", id, "user_id", userID)
	c.Redirect(http.StatusSeeOther, "/")
}
