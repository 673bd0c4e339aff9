// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes guidekit tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdulrhmanalqassas/guidekit/internal/guide"
	"github.com/abdulrhmanalqassas/guidekit/internal/guideservice"
)

// Server wraps the MCP server with guidekit tools.
type Server struct {
	mcp *server.MCPServer
	svc *guideservice.Service
}

// New creates a new MCP server with all guidekit tools registered.
func New(svc *guideservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"guidekit",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_guides",
		mcp.WithDescription("Full-text search through guide content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchGuides)

	s.mcp.AddTool(mcp.NewTool("read_guide",
		mcp.WithDescription("Read the full Markdown content of a guide."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the guide (e.g. frontend/react.md)")),
	), s.readGuide)

	s.mcp.AddTool(mcp.NewTool("create_guide",
		mcp.WithDescription("Create a new guide at the specified path. "+
			"Content MUST follow the guide authoring contract (headings open sections, "+
			"anchor links resolve, agreements tables, terminated fences, rectangular "+
			"tables). Read the contract first via the get_authoring_contract tool or "+
			"the guidekit://authoring-contract resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new guide (must end with .md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content following the authoring contract")),
	), s.createGuide)

	s.mcp.AddTool(mcp.NewTool("validate_guide",
		mcp.WithDescription("Validate a guide: reports broken anchor links and duplicate agreement keys."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the guide to validate")),
	), s.validateGuide)

	s.mcp.AddTool(mcp.NewTool("render_guide",
		mcp.WithDescription("Render a guide in canonical markdown or html."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the guide to render")),
		mcp.WithString("format", mcp.Description("Output format: markdown (default) or html")),
	), s.renderGuide)

	s.mcp.AddTool(mcp.NewTool("get_authoring_contract",
		mcp.WithDescription("Returns the canonical guide authoring contract. "+
			"Call this before creating or updating guides to ensure correct structure."),
	), s.getAuthoringContract)

	s.mcp.AddTool(mcp.NewTool("list_guides",
		mcp.WithDescription("List all guides in the library."),
	), s.listGuides)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all guides that cross-reference the specified guide."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the guide to find backlinks for")),
	), s.getBacklinks)

	// Resource: authoring contract.
	s.mcp.AddResource(
		mcp.NewResource("guidekit://authoring-contract", "Guide Authoring Contract",
			mcp.WithResourceDescription("Canonical guide document format that all guides must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchGuides(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.RenderGuide(ctx, path, guideservice.FormatMarkdown)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) createGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	detail, err := s.svc.CreateGuide(ctx, path, []byte(content))
	if err != nil {
		var pe *guide.ParseError
		if errors.As(err, &pe) {
			return mcp.NewToolResultError(fmt.Sprintf("malformed document at line %d: %s", pe.Line, pe.Msg)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	msg := fmt.Sprintf("created: %s", path)
	if !detail.Report.Clean() {
		rep, _ := json.MarshalIndent(detail.Report, "", "  ")
		msg += "\nvalidation findings:\n" + string(rep)
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) validateGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := s.svc.Validate(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if report.Clean() {
		return mcp.NewToolResultText("no findings"), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) renderGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := guideservice.FormatMarkdown
	if f, ferr := req.RequireString("format"); ferr == nil && f != "" {
		format = f
	}
	out, err := s.svc.RenderGuide(ctx, path, format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) listGuides(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, _, err := s.svc.ListGuides(ctx, 0, 0, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var paths []string
	for _, it := range items {
		paths = append(paths, it.Path)
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no guides found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getAuthoringContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(AuthoringContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "guidekit://authoring-contract",
			MIMEType: "text/markdown",
			Text:     AuthoringContract,
		},
	}, nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}
