package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load("testdata/config.yaml")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	// defaults survive for keys the file does not set
	assert.Equal(t, "/mcp", cfg.HTTP.MCPEndpoint)
	assert.Equal(t, CatalogContentServer, cfg.Catalog.Kind)
	assert.Equal(t, "zopyx", cfg.Catalog.ContentServer.RootID)
	assert.Equal(t, 30*time.Second, cfg.Catalog.ContentServer.SnapshotTTL)
	assert.Equal(t, []string{"Folder", "Subsite"}, cfg.PortalTypes.Folders)
	assert.Equal(t, "News Item", cfg.PortalTypes.News)
	assert.Equal(t, []string{"Plone Site"}, cfg.Layout.FullWidthTypes)
	assert.Equal(t, 12, cfg.Layout.GridColumns)
	assert.Equal(t, 5, cfg.Defaults.NewsItems)
	assert.Equal(t, 4, cfg.Defaults.ChunkSize)

	logger, err := cfg.Logger()
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/missing.yaml")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.Validate(), "memory catalog without fixture")

	cfg.Catalog.Fixture = "site.yaml"
	require.NoError(t, cfg.Validate())

	cfg.Catalog.Kind = "solr"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Catalog.Kind = CatalogContentServer
	cfg.Catalog.ContentServer.URL = "http://contentserver"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mimeTypes")

	cfg.Catalog.ContentServer.MimeTypes = []string{"Folder"}
	cfg.Catalog.ContentServer.SnapshotTTL = -time.Second
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshotTTL")

	cfg = Default()
	cfg.Catalog.Fixture = "site.yaml"
	cfg.Layout.LeftSlotSpan = 8
	cfg.Layout.RightSlotSpan = 8
	require.Error(t, cfg.Validate())
}

func TestLoggerInvalidLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "loud"
	_, err := cfg.Logger()
	require.Error(t, err)
}
