package dto

// RegisterReq は POST /register のフォーム入力です。
// 空パスワードはユースケース側で ErrInvalidPassword として扱います。
type RegisterReq struct {
	Username string `form:"username" binding:"required,max=80"`
	Email    string `form:"email" binding:"required,email,max=255"`
	Password string `form:"password"`
}

// ResendReq は POST /confirm/resend のフォーム入力です。
type ResendReq struct {
	Email string `form:"email" binding:"required,email"`
}
