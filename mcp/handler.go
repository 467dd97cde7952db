package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/foomo/contentserver-navigation/catalog"
	"github.com/foomo/contentserver-navigation/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const Version = "0.1.0"

type PathRequest struct {
	Path string `json:"path"` // The content path the view is bound to
}

type NewsRequest struct {
	Path  string `json:"path"`
	Limit int    `json:"limit"` // Maximum number of news items
}

type ProjectReferencesRequest struct {
	Path      string `json:"path"`
	ChunkSize int    `json:"chunkSize"` // Number of buckets
	Randomize bool   `json:"randomize"` // Shuffle before distributing
}

// NewServer creates a new MCP server exposing the navigation view tools
func NewServer(logger *zap.Logger, serviceInstance service.Service) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	// Create a new MCP server
	s := server.NewMCPServer(
		"Content Navigation MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	pathOption := mcp.WithString("path",
		mcp.Required(),
		mcp.Description("The content path, e.g. '/services/consulting'"),
	)

	s.AddTool(mcp.NewTool("getNavigation",
		mcp.WithDescription("Get the main navigation tree below the navigation root of a content path"),
		pathOption,
	), mcp.NewTypedToolHandler(getNavigationHandler(logger, serviceInstance)))

	s.AddTool(mcp.NewTool("getNews",
		mcp.WithDescription("Get the most recent news items, blog posts excluded"),
		pathOption,
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of news items, defaults to the site setting"),
		),
	), mcp.NewTypedToolHandler(getNewsHandler(logger, serviceInstance)))

	s.AddTool(mcp.NewTool("getProjectReferences",
		mcp.WithDescription("Get the project references distributed round-robin across buckets"),
		pathOption,
		mcp.WithNumber("chunkSize",
			mcp.Description("Number of buckets, defaults to the site setting"),
		),
		mcp.WithBoolean("randomize",
			mcp.Description("Shuffle the references before distributing them"),
		),
	), mcp.NewTypedToolHandler(getProjectReferencesHandler(logger, serviceInstance)))

	s.AddTool(mcp.NewTool("getTestimonial",
		mcp.WithDescription("Get a random testimonial below the navigation root"),
		pathOption,
	), mcp.NewTypedToolHandler(getTestimonialHandler(logger, serviceInstance)))

	s.AddTool(mcp.NewTool("getBreadcrumbs",
		mcp.WithDescription("Get the breadcrumbs of a content path"),
		pathOption,
	), mcp.NewTypedToolHandler(getBreadcrumbsHandler(logger, serviceInstance)))

	s.AddTool(mcp.NewTool("getPage",
		mcp.WithDescription("Get all view data of a content path: navigation, news, references, testimonial, breadcrumbs and layout"),
		pathOption,
	), mcp.NewTypedToolHandler(getPageHandler(logger, serviceInstance)))

	return s
}

// bindView validates the path and binds the view; a nil view comes with an error result
func bindView(ctx context.Context, logger *zap.Logger, serviceInstance service.Service, path string) (*service.View, *mcp.CallToolResult) {
	if path == "" {
		return nil, mcp.NewToolResultError("path is required")
	}
	view, err := serviceInstance.View(ctx, path)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, mcp.NewToolResultError(fmt.Sprintf("no content at %s", path))
	} else if err != nil {
		requestLogger(ctx, logger).Error("failed to bind view", zap.String("path", path), zap.Error(err))
		return nil, mcp.NewToolResultError(fmt.Sprintf("failed to load content: %v", err))
	}
	return view, nil
}

// toolResult converts a view result to a JSON text result
func toolResult(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render view: %v", err)), nil
	}
	responseBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseBytes)), nil
}

func getNavigationHandler(logger *zap.Logger, serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args PathRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args PathRequest) (*mcp.CallToolResult, error) {
		view, errResult := bindView(ctx, logger, serviceInstance, args.Path)
		if view == nil {
			return errResult, nil
		}
		return toolResult(view.Navigation())
	}
}

func getNewsHandler(logger *zap.Logger, serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args NewsRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args NewsRequest) (*mcp.CallToolResult, error) {
		if args.Limit < 0 {
			return mcp.NewToolResultError("limit must not be negative"), nil
		}
		view, errResult := bindView(ctx, logger, serviceInstance, args.Path)
		if view == nil {
			return errResult, nil
		}
		return toolResult(view.News(args.Limit))
	}
}

func getProjectReferencesHandler(logger *zap.Logger, serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args ProjectReferencesRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ProjectReferencesRequest) (*mcp.CallToolResult, error) {
		if args.ChunkSize < 0 {
			return mcp.NewToolResultError("chunkSize must not be negative"), nil
		}
		view, errResult := bindView(ctx, logger, serviceInstance, args.Path)
		if view == nil {
			return errResult, nil
		}
		return toolResult(view.ProjectReferences(args.ChunkSize, args.Randomize))
	}
}

func getTestimonialHandler(logger *zap.Logger, serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args PathRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args PathRequest) (*mcp.CallToolResult, error) {
		view, errResult := bindView(ctx, logger, serviceInstance, args.Path)
		if view == nil {
			return errResult, nil
		}
		return toolResult(view.Testimonial())
	}
}

func getBreadcrumbsHandler(logger *zap.Logger, serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args PathRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args PathRequest) (*mcp.CallToolResult, error) {
		view, errResult := bindView(ctx, logger, serviceInstance, args.Path)
		if view == nil {
			return errResult, nil
		}
		return toolResult(view.Breadcrumbs())
	}
}

func getPageHandler(logger *zap.Logger, serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args PathRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args PathRequest) (*mcp.CallToolResult, error) {
		view, errResult := bindView(ctx, logger, serviceInstance, args.Path)
		if view == nil {
			return errResult, nil
		}
		return toolResult(view.Page())
	}
}
