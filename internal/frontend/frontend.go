package frontend

import (
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/lab-edge/internal/version"
	"github.com/ethpandaops/lab-edge/web"
)

const indexFileName = "index.html"

// Frontend serves the static site as a single-page app.
type Frontend struct {
	fs         fs.FS
	indexCache *IndexCache
	logger     logrus.FieldLogger
	devMode    bool
}

// New creates a frontend backed by the embedded site, falling back to
// web/frontend on disk when nothing is embedded (dev mode).
func New(logger logrus.FieldLogger) (*Frontend, error) {
	log := logger.WithField("component", "frontend")

	embedFS, err := web.GetFS()
	devMode := false

	if err != nil || !web.Exists() {
		log.Info("Embedded FS not available, using local filesystem (dev mode)")

		devMode = true
		embedFS = os.DirFS("web/frontend")
	} else {
		log.Info("Using embedded filesystem")
	}

	f, err := NewWithFS(log, embedFS)
	if err != nil {
		return nil, err
	}

	f.devMode = devMode

	return f, nil
}

// NewWithFS creates a frontend serving filesystem.
// Build information is exposed to the page as window.__VERSION__.
func NewWithFS(logger logrus.FieldLogger, filesystem fs.FS) (*Frontend, error) {
	indexCache := &IndexCache{}
	if err := indexCache.Prewarm(logger, filesystem, globalsFor(filesystem)); err != nil {
		return nil, fmt.Errorf("failed to prewarm index cache: %w", err)
	}

	return &Frontend{
		fs:         filesystem,
		indexCache: indexCache,
		logger:     logger,
	}, nil
}

func globalsFor(filesystem fs.FS) map[string]interface{} {
	return map[string]interface{}{
		"version": version.GetWithFrontend(filesystem),
	}
}

// Refresh re-reads the site's version and re-injects it into the cached
// index.html. In dev mode index.html itself is reloaded from disk.
func (f *Frontend) Refresh() error {
	globals := globalsFor(f.fs)

	if f.devMode {
		return f.indexCache.Prewarm(f.logger, f.fs, globals)
	}

	if err := f.indexCache.Update(globals); err != nil {
		return err
	}

	f.logger.Info("Refreshed index.html globals")

	return nil
}

// DevMode reports whether files are served from disk.
func (f *Frontend) DevMode() bool {
	return f.devMode
}

// ServeHTTP handles frontend requests.
func (f *Frontend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cleanPath := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if cleanPath == "" || cleanPath == indexFileName {
		f.serveIndex(w)

		return
	}

	file, err := f.fs.Open(cleanPath)
	if err != nil {
		f.logger.WithField("path", r.URL.Path).Debug("File not found, serving index.html for SPA routing")

		f.serveIndex(w)

		return
	}

	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		f.logger.WithError(err).Error("Failed to stat file")

		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	// Directories fall through to the SPA as well
	if stat.IsDir() {
		f.serveIndex(w)

		return
	}

	readSeeker, ok := file.(io.ReadSeeker)
	if !ok {
		f.logger.WithField("path", cleanPath).Error("File does not implement io.ReadSeeker")

		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	setAssetHeaders(w.Header(), cleanPath)

	http.ServeContent(w, r, cleanPath, stat.ModTime(), readSeeker)
}

// serveIndex serves the cached index.html.
func (f *Frontend) serveIndex(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(f.indexCache.GetInjected()); err != nil {
		f.logger.WithError(err).Error("Failed to write index.html response")
	}
}

// setAssetHeaders sets content type and a one year immutable cache.
func setAssetHeaders(h http.Header, filePath string) {
	contentType := mime.TypeByExtension(path.Ext(filePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", "public, max-age=31536000, immutable")
}
