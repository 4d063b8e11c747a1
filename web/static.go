package web

import (
	"embed"
	"io/fs"
)

//go:embed all:frontend/*
var embeddedFiles embed.FS

// GetFS returns the embedded static site rooted at web/frontend.
// Release builds copy the built site into web/frontend before compiling.
func GetFS() (fs.FS, error) {
	return fs.Sub(embeddedFiles, "frontend")
}

// Exists reports whether a site was embedded at build time. Without one the
// frontend serves web/frontend from disk.
func Exists() bool {
	entries, err := embeddedFiles.ReadDir("frontend")
	if err != nil {
		return false
	}

	return len(entries) > 0
}
