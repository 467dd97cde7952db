package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/foomo/contentserver-navigation/catalog"
	"github.com/foomo/contentserver-navigation/config"
	"github.com/foomo/contentserver-navigation/richtext"
	"github.com/foomo/contentserver-navigation/service/vo"
	"go.uber.org/zap"
)

type Service interface {
	// View binds the navigation view to the content object at path
	View(ctx context.Context, path string) (*View, error)
}

// BreadcrumbsView renders the breadcrumbs of a content object
type BreadcrumbsView interface {
	Breadcrumbs(ctx context.Context, brain catalog.Brain) ([]vo.Crumb, error)
}

type SiteSettings struct {
	PortalTypes config.PortalTypes
	Layout      config.Layout
	Defaults    config.Defaults
}

func SiteSettingsFromConfig(cfg config.Config) SiteSettings {
	return SiteSettings{
		PortalTypes: cfg.PortalTypes,
		Layout:      cfg.Layout,
		Defaults:    cfg.Defaults,
	}
}

type service struct {
	logger       *zap.Logger
	catalog      catalog.Catalog
	breadcrumbs  BreadcrumbsView
	siteSettings SiteSettings
	render       func(source, format string) (richtext.Text, error)

	randMutex sync.Mutex
	rand      *rand.Rand
}

type Option func(*service)

// WithRand replaces the global random source used for shuffling references
// and picking testimonials
func WithRand(r *rand.Rand) Option {
	return func(s *service) {
		s.rand = r
	}
}

func WithBreadcrumbsView(breadcrumbs BreadcrumbsView) Option {
	return func(s *service) {
		s.breadcrumbs = breadcrumbs
	}
}

func NewService(
	logger *zap.Logger,
	c catalog.Catalog,
	siteSettings SiteSettings,
	opts ...Option,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		logger:       logger,
		catalog:      c,
		siteSettings: siteSettings,
		render:       richtext.Render,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.breadcrumbs == nil {
		s.breadcrumbs = NewCatalogBreadcrumbs(c)
	}
	return s
}

func (s *service) View(ctx context.Context, path string) (*View, error) {
	brain, err := s.catalog.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("bound view", zap.String("path", brain.Path), zap.String("portalType", brain.PortalType))
	return &View{
		ctx:     ctx,
		service: s,
		context: *brain,
	}, nil
}

func (s *service) intN(n int) int {
	if s.rand == nil {
		return rand.IntN(n)
	}
	s.randMutex.Lock()
	defer s.randMutex.Unlock()
	return s.rand.IntN(n)
}

func (s *service) shuffle(n int, swap func(i, j int)) {
	if s.rand == nil {
		rand.Shuffle(n, swap)
		return
	}
	s.randMutex.Lock()
	defer s.randMutex.Unlock()
	s.rand.Shuffle(n, swap)
}

// CatalogBreadcrumbs builds breadcrumbs from the catalog parents of a
// content object. The site root is left to the template.
type CatalogBreadcrumbs struct {
	catalog catalog.Catalog
}

func NewCatalogBreadcrumbs(c catalog.Catalog) *CatalogBreadcrumbs {
	return &CatalogBreadcrumbs{catalog: c}
}

func (b *CatalogBreadcrumbs) Breadcrumbs(ctx context.Context, brain catalog.Brain) ([]vo.Crumb, error) {
	parents, err := b.catalog.Parents(ctx, brain.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load parents: %w", err)
	}
	crumbs := []vo.Crumb{}
	for _, parent := range append(parents, brain) {
		if parent.Path == "/" {
			continue
		}
		crumbs = append(crumbs, vo.Crumb{
			ID:     parent.ID,
			Title:  parent.Title,
			URL:    parent.URL,
			Active: parent.Path == brain.Path,
		})
	}
	return crumbs, nil
}

func isNavigationRoot(brain catalog.Brain, types []string) bool {
	return brain.NavigationRoot || brain.Path == "/" || slices.Contains(types, brain.PortalType)
}
