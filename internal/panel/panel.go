package panel

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
)

//go:embed web/*
var content embed.FS

// Handler serves the preview page.
//
// With dir set to an existing directory the files are read from disk, so
// the page can be edited without rebuilding. Otherwise the embedded copy is
// used. Paths that name no file get index.html.
func Handler(dir string) http.Handler {
	var fsys fs.FS
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			fsys = os.DirFS(dir)
		}
	}
	if fsys == nil {
		sub, err := fs.Sub(content, "web")
		if err != nil {
			panic(fmt.Sprintf("panel: embedded assets: %v", err))
		}
		fsys = sub
	}
	files := http.FileServerFS(fsys)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, must-revalidate")

		name := path.Clean(r.URL.Path)
		if name != "/" && name != "." {
			if _, err := fs.Stat(fsys, name[1:]); err != nil {
				r.URL.Path = "/"
			}
		}
		files.ServeHTTP(w, r)
	})
}
