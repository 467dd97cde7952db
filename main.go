package main

import (
	"errors"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/foomo/contentserver-navigation/catalog"
	"github.com/foomo/contentserver-navigation/config"
	"github.com/foomo/contentserver-navigation/mcp"
	"github.com/foomo/contentserver-navigation/service"
	"github.com/foomo/contentserver-navigation/web"
	"github.com/foomo/contentserver/requests"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	// Define command line flags
	configFile := flag.String("config", "", "YAML config file")
	fixture := flag.String("fixture", "", "YAML catalog fixture, selects the memory catalog")
	httpAddr := flag.String("http", "", "HTTP server address (e.g., ':8080')")
	stdioMode := flag.Bool("stdio", false, "Run the MCP server in stdio mode")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if *fixture != "" {
		cfg.Catalog.Kind = config.CatalogMemory
		cfg.Catalog.Fixture = *fixture
	}
	if *httpAddr != "" {
		cfg.HTTP.Addr = *httpAddr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := cfg.Logger()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	c, err := newCatalog(cfg)
	if err != nil {
		logger.Fatal("failed to create catalog", zap.Error(err))
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	serviceInstance := service.NewService(
		logger,
		catalog.NewInstrumented(c, registry),
		service.SiteSettingsFromConfig(cfg),
	)
	s := mcp.NewServer(logger, serviceInstance)

	if *stdioMode || cfg.HTTP.Addr == "" {
		// Start the stdio server
		logger.Info("Starting MCP server in stdio mode")
		if err := server.ServeStdio(s); err != nil {
			logger.Fatal("stdio server failed", zap.Error(err))
		}
		return
	}

	router, err := web.NewRouter(logger, serviceInstance, web.Options{
		MCP:         mcp.NewMcpHTTPServer(s, cfg.HTTP.MCPEndpoint),
		MCPEndpoint: cfg.HTTP.MCPEndpoint,
		Gatherer:    registry,
	})
	if err != nil {
		logger.Fatal("failed to create router", zap.Error(err))
	}
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	logger.Info("Starting HTTP server", zap.String("addr", cfg.HTTP.Addr), zap.String("catalog", cfg.Catalog.Kind))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}
}

func newCatalog(cfg config.Config) (catalog.Catalog, error) {
	if cfg.Catalog.Kind == config.CatalogMemory {
		return catalog.LoadMemory(cfg.Catalog.Fixture, cfg.Catalog.BaseURL)
	}
	cs := cfg.Catalog.ContentServer
	return catalog.NewContentServer(catalog.ContentServerSettings{
		Env: &requests.Env{
			Groups: cs.Groups,
		},
		URL:         cs.URL,
		RootID:      cs.RootID,
		Dimension:   cs.Dimension,
		BaseURL:     cfg.Catalog.BaseURL,
		MimeTypes:   cs.MimeTypes,
		SnapshotTTL: cs.SnapshotTTL,
	}, &http.Client{Timeout: 10 * time.Second}), nil
}
