// Package storage defines the content directory abstraction.
package storage

import "github.com/starford/postview/internal/models"

// Provider is the interface for content file operations.
type Provider interface {
	// List returns metadata for files under dir whose extension is one of exts.
	List(dir string, exts ...string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Root returns the absolute content root.
	Root() string
}
