// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// LoginReq は POST /login のフォーム入力です。
type LoginReq struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password"`
}
