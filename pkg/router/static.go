package router

import (
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Suhaibinator/SServer/pkg/common"
	"go.uber.org/zap"
)

// readFile reads static files; tests replace it to simulate I/O failures
var readFile = os.ReadFile

// SetStaticDir sets the directory served when no route matches.
// The directory must exist.
func (r *Router) SetStaticDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("static dir %q: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("static dir %q: not a directory", dir)
	}
	r.staticDir = filepath.Clean(dir)
	return nil
}

// serveStatic returns the file under the static directory named by the request path.
// The boolean is false when no regular file exists there.
func (r *Router) serveStatic(req *common.Request) (*common.Response, bool) {
	full, ok := resolveStaticPath(r.staticDir, req.Path())
	if !ok {
		r.logger.Warn("Static path escapes root",
			zap.String("path", req.Path()),
			zap.String("remote_addr", req.RemoteAddr),
		)
		return nil, false
	}

	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}

	content, err := readFile(full)
	if err != nil {
		r.logger.Error("Failed to read static file",
			zap.Error(err),
			zap.String("file", full),
		)
		return common.InternalServerError(), true
	}

	resp := common.OK().SetBody(content)
	if ct := mime.TypeByExtension(filepath.Ext(full)); ct != "" {
		resp.SetHeader("Content-Type", ct)
	}
	return resp, true
}

// resolveStaticPath maps a request path to a file path inside root.
// ".." segments are resolved against "/" before joining, so the result never leaves root.
func resolveStaticPath(root, requestPath string) (string, bool) {
	if strings.ContainsRune(requestPath, 0) {
		return "", false
	}
	cleaned := path.Clean("/" + requestPath)
	full := filepath.Join(root, filepath.FromSlash(cleaned))

	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}
