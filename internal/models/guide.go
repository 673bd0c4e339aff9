// Package models defines the domain types for guidekit.
package models

import "time"

// GuideMetadata is a lightweight representation returned by list operations.
type GuideMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
