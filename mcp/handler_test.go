package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/foomo/contentserver-navigation/catalog"
	"github.com/foomo/contentserver-navigation/config"
	"github.com/foomo/contentserver-navigation/service"
	"github.com/foomo/contentserver-navigation/service/vo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testService(t *testing.T) service.Service {
	t.Helper()
	c, err := catalog.LoadMemory("../catalog/testdata/site.yaml", "https://www.zopyx.com")
	require.NoError(t, err)
	return service.NewService(zaptest.NewLogger(t), c, service.SiteSettingsFromConfig(config.Default()))
}

func callRequest(name string, args any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	switch content := result.Content[0].(type) {
	case mcp.TextContent:
		return content.Text
	case *mcp.TextContent:
		return content.Text
	}
	t.Fatal("expected text content")
	return ""
}

func TestNewServer(t *testing.T) {
	// Test that we can create a server
	server := NewServer(nil, testService(t))
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
}

func TestGetNavigationHandler(t *testing.T) {
	args := PathRequest{Path: "/services"}
	handler := getNavigationHandler(zaptest.NewLogger(t), testService(t))
	result, err := handler(context.Background(), callRequest("getNavigation", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var entries []vo.NavigationEntry
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &entries))
	require.Len(t, entries, 4)
	assert.Equal(t, "Services", entries[0].Title)
}

func TestGetNewsHandler(t *testing.T) {
	args := NewsRequest{Path: "/", Limit: 2}
	handler := getNewsHandler(zaptest.NewLogger(t), testService(t))
	result, err := handler(context.Background(), callRequest("getNews", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var news []vo.NewsEntry
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &news))
	require.Len(t, news, 2)
	assert.Equal(t, "01.03.2024", news[0].Created)
}

func TestGetProjectReferencesHandler(t *testing.T) {
	args := ProjectReferencesRequest{Path: "/", ChunkSize: 2, Randomize: true}
	handler := getProjectReferencesHandler(zaptest.NewLogger(t), testService(t))
	result, err := handler(context.Background(), callRequest("getProjectReferences", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var chunks [][]vo.ProjectReference
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &chunks))
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 3)
	assert.Len(t, chunks[1], 2)
}

func TestGetTestimonialHandler(t *testing.T) {
	args := PathRequest{Path: "/"}
	handler := getTestimonialHandler(zaptest.NewLogger(t), testService(t))
	result, err := handler(context.Background(), callRequest("getTestimonial", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var testimonial vo.Testimonial
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &testimonial))
	assert.NotEmpty(t, testimonial.Markdown)
}

func TestGetBreadcrumbsAndPageHandlers(t *testing.T) {
	svc := testService(t)
	args := PathRequest{Path: "/de/leistungen"}
	ctx := withHTTPRequest(context.Background(), &http.Request{RemoteAddr: "127.0.0.1:1234", Header: http.Header{}})

	result, err := getBreadcrumbsHandler(zaptest.NewLogger(t), svc)(ctx, callRequest("getBreadcrumbs", args), args)
	require.NoError(t, err)
	var crumbs []vo.Crumb
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &crumbs))
	assert.Len(t, crumbs, 2)

	result, err = getPageHandler(zaptest.NewLogger(t), svc)(ctx, callRequest("getPage", args), args)
	require.NoError(t, err)
	var page vo.Page
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &page))
	assert.Equal(t, "Leistungen", page.Title)
	assert.Equal(t, "Deutsch", page.NavRoot.Title)
	require.Len(t, page.Breadcrumbs, 1)
	assert.Equal(t, "Leistungen", page.Breadcrumbs[0].Title)
	assert.Nil(t, page.Testimonial)
}

func TestHandlerValidation(t *testing.T) {
	svc := testService(t)
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	// Test validation for missing path
	result, err := getNavigationHandler(logger, svc)(ctx, callRequest("getNavigation", PathRequest{}), PathRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = getTestimonialHandler(logger, svc)(ctx, callRequest("getTestimonial", PathRequest{Path: "/missing"}), PathRequest{Path: "/missing"})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "no content at /missing")

	newsArgs := NewsRequest{Path: "/", Limit: -1}
	result, err = getNewsHandler(logger, svc)(ctx, callRequest("getNews", newsArgs), newsArgs)
	require.NoError(t, err)
	assert.True(t, result.IsError)

	refArgs := ProjectReferencesRequest{Path: "/", ChunkSize: -1}
	result, err = getProjectReferencesHandler(logger, svc)(ctx, callRequest("getProjectReferences", refArgs), refArgs)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestRequestLogger(t *testing.T) {
	logger := zaptest.NewLogger(t)
	assert.Same(t, logger, requestLogger(context.Background(), logger))

	ctx := withHTTPRequest(context.Background(), &http.Request{RemoteAddr: "127.0.0.1:1234", Header: http.Header{}})
	req, ok := httpRequestFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1:1234", req.RemoteAddr)
	assert.NotSame(t, logger, requestLogger(ctx, logger))
}
