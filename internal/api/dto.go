package api

import (
	"github.com/abdulrhmanalqassas/guidekit/internal/guideservice"
	"github.com/abdulrhmanalqassas/guidekit/internal/index"
)

// CreateGuideRequest is the request body for creating a guide.
type CreateGuideRequest struct {
	Path    string `json:"path" example:"frontend/react.md" validate:"required"`
	Content string `json:"content" example:"# React Guide\nRules." validate:"required"`
}

// UpdateGuideRequest is the request body for updating a guide.
type UpdateGuideRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// GuideDetail is the full guide response type (aliased from the domain layer).
type GuideDetail = guideservice.GuideDetail

// GuideListItem is a lightweight item in a list response (aliased from the domain layer).
type GuideListItem = guideservice.GuideListItem

// GuideListResponse wraps paginated guide listings.
type GuideListResponse struct {
	Guides []GuideListItem `json:"guides" validate:"required"`
	Total  int             `json:"total" example:"7" validate:"required"`
}

// ValidationReport is the per-document validation response (aliased from the domain layer).
type ValidationReport = guideservice.ValidationReport

// ReportResponse wraps the library-wide findings report.
type ReportResponse struct {
	Findings []index.Finding `json:"findings" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// GraphResponse wraps the cross-reference graph.
type GraphResponse struct {
	Nodes []index.GraphNode `json:"nodes" validate:"required"`
	Links []index.GraphLink `json:"links" validate:"required"`
}
