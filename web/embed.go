package web

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// StaticFS embeds the single-page client.
//
//go:embed static/*
var StaticFS embed.FS

// Handler serves the embedded client. Paths that name no file fall back to
// index.html so client-side routes survive a reload.
func Handler() http.Handler {
	sub, err := fs.Sub(StaticFS, "static")
	if err != nil {
		panic(err)
	}
	files := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}
		if _, err := fs.Stat(sub, name); err != nil {
			r2 := r.Clone(r.Context())
			r2.URL.Path = "/"
			files.ServeHTTP(w, r2)
			return
		}
		files.ServeHTTP(w, r)
	})
}
