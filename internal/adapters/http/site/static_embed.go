package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/**
var staticFS embed.FS

// indexFile is the front-end document served for / and its aliases.
const indexFile = "index.html"

// assets is staticFS rooted at static/.
var assets fs.FS = func() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return staticFS
	}
	return sub
}()

// FS returns an http.FileSystem for the embedded front-end assets.
func FS() http.FileSystem {
	return http.FS(assets)
}
