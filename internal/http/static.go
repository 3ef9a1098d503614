package http

import (
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// StaticController serves the front end from a directory on disk.
type StaticController struct {
	root string
}

func NewStaticController(root string) *StaticController {
	return &StaticController{root: root}
}

// Serve answers any GET that no API route matched. "/" maps to index.html;
// paths containing ".." are refused before touching the filesystem.
func (sc *StaticController) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		respondNotFound(c, "route")
		return
	}

	requested := c.Request.URL.Path
	if strings.Contains(requested, "..") {
		respondBadRequest(c, "invalid path")
		return
	}
	if requested == "" || strings.HasSuffix(requested, "/") {
		requested += "index.html"
	}

	path := filepath.Join(sc.root, filepath.FromSlash(strings.TrimPrefix(requested, "/")))
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
		respondNotFound(c, "file")
		return
	}
	if err != nil {
		respondInternalError(c, err, "static file")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		respondInternalError(c, err, "static file")
		return
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}
