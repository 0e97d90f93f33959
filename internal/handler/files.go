package handler

import (
	"net/http"
	"path"
	"strings"
)

// SnapshotFiles serves saved snapshot files under urlPrefix. A session may
// only read files from its own snapshots/<workspace>/ directory.
func SnapshotFiles(root http.FileSystem, urlPrefix string) http.Handler {
	urlPrefix = strings.TrimSuffix(urlPrefix, "/")
	files := http.StripPrefix(urlPrefix, http.FileServer(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, ok := workspace(w, r)
		if !ok {
			return
		}
		name := path.Clean(strings.TrimPrefix(r.URL.Path, urlPrefix))
		own := path.Join("/snapshots", ws) + "/"
		if !strings.HasPrefix(name, own) || name == own {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		files.ServeHTTP(w, r)
	})
}
