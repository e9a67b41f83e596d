// Package view は最小限のHTMLフォームテンプレートを埋め込みで提供します。
package view

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Template names rendered by the handlers.
const (
	RegisterPage = "register.html"
	LoginPage    = "login.html"
	PostFormPage = "post_form.html"
)

// Templates parses the embedded templates. It panics on a broken template,
// which can only happen at build time.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(files, "templates/*.html"))
}
