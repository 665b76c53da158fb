// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes postview tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/postview/internal/apperr"
	"github.com/starford/postview/internal/blog"
	"github.com/starford/postview/internal/dates"
	"github.com/starford/postview/internal/render"
	"github.com/starford/postview/internal/session"
	"github.com/starford/postview/internal/urlenc"
)

const feedFormatURI = "postview://feed-format"

// Server wraps the MCP server with postview tools.
type Server struct {
	mcp       *server.MCPServer
	svc       *blog.Service
	renderer  *session.Manager
	siteTitle string
	labels    render.Labels
}

// Option configures a Server.
type Option func(*Server)

// WithSite sets the title and labels used by render_page.
func WithSite(title string, labels render.Labels) Option {
	return func(s *Server) {
		s.siteTitle = title
		s.labels = labels
	}
}

// New creates a new MCP server with all postview tools registered.
func New(svc *blog.Service, opts ...Option) *Server {
	s := &Server{svc: svc, siteTitle: "postview", labels: render.DefaultLabels()}
	for _, opt := range opts {
		opt(s)
	}
	s.renderer = session.NewManager(session.WithLabels(s.labels))

	s.mcp = server.NewMCPServer(
		"postview",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List posts of the current feed in feed order."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of posts (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Number of posts to skip")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read a post as the reader shows it: title, display date, reading time and text."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search through post titles, excerpts and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("feed_status",
		mcp.WithDescription("Report the number of posts, the feed checksum and the last ingest."),
	), s.feedStatus)

	s.mcp.AddTool(mcp.NewTool("ingest_feed",
		mcp.WithDescription("Replace the feed with a JSON or JSONP payload. "+
			"Read the format first via the get_feed_format tool or the "+feedFormatURI+" resource."),
		mcp.WithString("payload", mcp.Required(), mcp.Description("Feed payload: {\"posts\": [...]} or callback({...});")),
	), s.ingestFeed)

	s.mcp.AddTool(mcp.NewTool("render_page",
		mcp.WithDescription("Render the viewer page HTML at a URL, e.g. /#post/<slug> for an open reader."),
		mcp.WithString("url", mcp.Description("Page URL (default /)")),
	), s.renderPage)

	s.mcp.AddTool(mcp.NewTool("get_feed_format",
		mcp.WithDescription("Returns the feed payload format accepted by ingest_feed."),
	), s.getFeedFormat)

	s.mcp.AddResource(
		mcp.NewResource(feedFormatURI, "Feed Format",
			mcp.WithResourceDescription("Payload format for feeds ingested by postview."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFeedFormatResource,
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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 50)
	offset := req.GetInt("offset", 0)
	rows, total, err := s.svc.ListPosts(ctx, limit, offset)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"posts": rows, "total": total}), nil
}

type readerView struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Minutes  int    `json:"reading_minutes"`
	Image    string `json:"image_url,omitempty"`
	Fragment string `json:"fragment"`
	Content  string `json:"content"`
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.GetPost(ctx, slug)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(readerView{
		Slug:     p.Slug,
		Title:    p.Title,
		Date:     dates.Display(p.Date),
		Minutes:  render.ReadingMinutes(p.Content),
		Image:    p.ImageURL,
		Fragment: urlenc.PostFragment(p.Slug),
		Content:  p.Content,
	}), nil
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no posts found"), nil
	}
	return jsonResult(results), nil
}

func (s *Server) feedStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st), nil
}

func (s *Server) ingestFeed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := req.RequireString("payload")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.IngestRaw(ctx, blog.SourceAPI, []byte(payload), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) renderPage(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url := req.GetString("url", "/")
	v, err := s.renderer.Render(url, s.svc.Latest())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := render.RenderPage(session.Document(v, s.siteTitle, ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getFeedFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FeedFormatContract), nil
}

func (s *Server) readFeedFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      feedFormatURI,
			MIMEType: "text/markdown",
			Text:     FeedFormatContract,
		},
	}, nil
}
