// Package storage defines the guide-library file-system abstraction.
package storage

import "github.com/abdulrhmanalqassas/guidekit/internal/models"

// Provider is the interface for guide file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to the library root).
	List(dir string) ([]models.GuideMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the library root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the library root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the library root).
	Delete(path string) error
}
