package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	CatalogMemory        = "memory"
	CatalogContentServer = "contentserver"
)

type Config struct {
	Logging     Logging     `yaml:"logging"`
	HTTP        HTTP        `yaml:"http"`
	Catalog     Catalog     `yaml:"catalog"`
	PortalTypes PortalTypes `yaml:"portalTypes"`
	Layout      Layout      `yaml:"layout"`
	Defaults    Defaults    `yaml:"defaults"`
}

type Logging struct {
	Development bool   `yaml:"development"`
	Level       string `yaml:"level"`
}

type HTTP struct {
	Addr        string `yaml:"addr"`
	MCPEndpoint string `yaml:"mcpEndpoint"`
}

type Catalog struct {
	Kind          string        `yaml:"kind"`
	Fixture       string        `yaml:"fixture"`
	BaseURL       string        `yaml:"baseURL"`
	ContentServer ContentServer `yaml:"contentServer"`
}

type ContentServer struct {
	URL       string   `yaml:"url"`
	RootID    string   `yaml:"rootID"`
	Dimension string   `yaml:"dimension"`
	Groups    []string `yaml:"groups"`
	MimeTypes []string `yaml:"mimeTypes"`
	// SnapshotTTL bounds how long a fetched node tree is reused
	SnapshotTTL time.Duration `yaml:"snapshotTTL"`
}

// PortalTypes names the content types the theme queries for
type PortalTypes struct {
	Folders          []string `yaml:"folders"`
	NavigationRoots  []string `yaml:"navigationRoots"`
	News             string   `yaml:"news"`
	ProjectReference string   `yaml:"projectReference"`
	Testimonial      string   `yaml:"testimonial"`
	BlogSubject      string   `yaml:"blogSubject"`
}

// Layout holds the slot rules keyed off the portal type of the context
type Layout struct {
	GridColumns      int      `yaml:"gridColumns"`
	LeftSlotSpan     int      `yaml:"leftSlotSpan"`
	RightSlotSpan    int      `yaml:"rightSlotSpan"`
	FullWidthTypes   []string `yaml:"fullWidthTypes"`
	NoLeftSlotTypes  []string `yaml:"noLeftSlotTypes"`
	NoRightSlotTypes []string `yaml:"noRightSlotTypes"`
}

type Defaults struct {
	NewsItems           int  `yaml:"newsItems"`
	ChunkSize           int  `yaml:"chunkSize"`
	RandomizeReferences bool `yaml:"randomizeReferences"`
}

func Default() Config {
	return Config{
		Logging: Logging{Level: "info"},
		HTTP: HTTP{
			MCPEndpoint: "/mcp",
		},
		Catalog: Catalog{
			Kind: CatalogMemory,
			ContentServer: ContentServer{
				RootID:      "root",
				SnapshotTTL: 5 * time.Second,
			},
		},
		PortalTypes: PortalTypes{
			Folders:          []string{"Folder"},
			NavigationRoots:  []string{"Plone Site"},
			News:             "News Item",
			ProjectReference: "zopyx.policy.projectreference",
			Testimonial:      "zopyx.policy.testimonial",
			BlogSubject:      "BlogItem",
		},
		Layout: Layout{
			GridColumns:   12,
			LeftSlotSpan:  3,
			RightSlotSpan: 3,
		},
		Defaults: Defaults{
			NewsItems: 3,
			ChunkSize: 4,
		},
	}
}

// Load reads filename on top of the defaults. An empty filename yields the
// defaults. Call Validate once all overrides are applied.
func Load(filename string) (Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.Catalog.Kind {
	case CatalogMemory:
		if c.Catalog.Fixture == "" {
			errs = append(errs, errors.New("catalog.fixture is required for the memory catalog"))
		}
	case CatalogContentServer:
		if c.Catalog.ContentServer.URL == "" {
			errs = append(errs, errors.New("catalog.contentServer.url is required"))
		}
		if len(c.Catalog.ContentServer.MimeTypes) == 0 {
			errs = append(errs, errors.New("catalog.contentServer.mimeTypes must not be empty"))
		}
		if c.Catalog.ContentServer.SnapshotTTL < 0 {
			errs = append(errs, errors.New("catalog.contentServer.snapshotTTL must not be negative"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog kind %q", c.Catalog.Kind))
	}
	if c.Layout.GridColumns < c.Layout.LeftSlotSpan+c.Layout.RightSlotSpan {
		errs = append(errs, errors.New("layout slot spans exceed the grid"))
	}
	if c.Defaults.NewsItems <= 0 || c.Defaults.ChunkSize <= 0 {
		errs = append(errs, errors.New("defaults must be positive"))
	}
	return errors.Join(errs...)
}

// Logger builds the zap logger configured in Logging
func (c Config) Logger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if c.Logging.Level != "" {
		level, err := zap.ParseAtomicLevel(c.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		zc.Level = level
	}
	return zc.Build()
}
