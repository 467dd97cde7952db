package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/foomo/contentserver-navigation/catalog"
	"github.com/foomo/contentserver-navigation/service/vo"
)

const createdLayout = "02.01.2006"

// View is the navigation view bound to one content object and request.
// It is not safe for concurrent use.
type View struct {
	ctx     context.Context
	service *service
	context catalog.Brain
	navRoot *catalog.Brain
}

// Context returns the content object the view is bound to
func (v *View) Context() catalog.Brain {
	return v.context
}

// NavRoot resolves the navigation root: the nearest ancestor or self that is
// flagged as navigation root or has a navigation root portal type.
func (v *View) NavRoot() (catalog.Brain, error) {
	if v.navRoot != nil {
		return *v.navRoot, nil
	}
	types := v.service.siteSettings.PortalTypes.NavigationRoots
	if isNavigationRoot(v.context, types) {
		v.navRoot = &v.context
		return v.context, nil
	}
	parents, err := v.service.catalog.Parents(v.ctx, v.context.Path)
	if err != nil {
		return catalog.Brain{}, fmt.Errorf("failed to load parents: %w", err)
	}
	for i := len(parents) - 1; i >= 0; i-- {
		if isNavigationRoot(parents[i], types) {
			v.navRoot = &parents[i]
			return parents[i], nil
		}
	}
	root, err := v.service.catalog.Get(v.ctx, "/")
	if err != nil {
		return catalog.Brain{}, fmt.Errorf("failed to load site root: %w", err)
	}
	v.navRoot = root
	return *root, nil
}

// Navigation returns the main menu: the visible folders below the navigation
// root, each with its visible children.
func (v *View) Navigation() ([]vo.NavigationEntry, error) {
	root, err := v.NavRoot()
	if err != nil {
		return nil, err
	}
	folders, err := v.service.catalog.Search(v.ctx, catalog.Query{
		PortalTypes: v.service.siteSettings.PortalTypes.Folders,
		Path:        root.Path,
		Depth:       1,
		SortOn:      catalog.SortOnPosition,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query folders: %w", err)
	}

	entries := []vo.NavigationEntry{}
	for _, folder := range folders {
		if folder.ExcludeFromNav {
			continue
		}
		entry := vo.NavigationEntry{
			Title:    folder.Title,
			URL:      folder.URL,
			ID:       folder.ID,
			Children: []vo.ChildLink{},
		}
		if !folder.ExcludeSubcontent {
			children, err := v.children(folder)
			if err != nil {
				return nil, err
			}
			if len(children) == 1 {
				entry.URL = children[0].URL
			} else {
				entry.Children = children
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (v *View) children(folder catalog.Brain) ([]vo.ChildLink, error) {
	brains, err := v.service.catalog.Search(v.ctx, catalog.Query{
		Path:   folder.Path,
		Depth:  1,
		SortOn: catalog.SortOnPosition,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query children of %s: %w", folder.Path, err)
	}
	children := []vo.ChildLink{}
	for _, brain := range brains {
		if brain.ExcludeFromNav {
			continue
		}
		children = append(children, vo.ChildLink{
			Title: brain.Title,
			URL:   brain.URL,
			ID:    brain.ID,
		})
	}
	return children, nil
}

// News returns the most recent news items, blog posts excluded
func (v *View) News(numItems int) ([]vo.NewsEntry, error) {
	if numItems <= 0 {
		numItems = v.service.siteSettings.Defaults.NewsItems
	}
	portalTypes := v.service.siteSettings.PortalTypes
	brains, err := v.service.catalog.Search(v.ctx, catalog.Query{
		PortalTypes: []string{portalTypes.News},
		SortOn:      catalog.SortOnCreated,
		SortOrder:   catalog.SortOrderDescending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	news := []vo.NewsEntry{}
	for _, brain := range brains {
		if len(news) == numItems {
			break
		}
		if brain.HasSubject(portalTypes.BlogSubject) {
			continue
		}
		news = append(news, vo.NewsEntry{
			Title:       brain.Title,
			URL:         brain.URL,
			Description: brain.Description,
			Created:     brain.Created.Format(createdLayout),
		})
	}
	return news, nil
}

// ProjectReferences returns the project references distributed round-robin
// across chunkSize buckets, optionally shuffled first
func (v *View) ProjectReferences(chunkSize int, randomize bool) ([][]vo.ProjectReference, error) {
	if chunkSize <= 0 {
		chunkSize = v.service.siteSettings.Defaults.ChunkSize
	}
	brains, err := v.service.catalog.Search(v.ctx, catalog.Query{
		PortalTypes: []string{v.service.siteSettings.PortalTypes.ProjectReference},
		SortOn:      catalog.SortOnPosition,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query project references: %w", err)
	}
	refs := make([]vo.ProjectReference, len(brains))
	for i, brain := range brains {
		refs[i] = vo.ProjectReference{
			ID:          brain.ID,
			Title:       brain.Title,
			URL:         brain.URL,
			Description: brain.Description,
			Image:       brain.Field("image"),
		}
	}
	if randomize {
		v.service.shuffle(len(refs), func(i, j int) {
			refs[i], refs[j] = refs[j], refs[i]
		})
	}
	return Chunk(refs, chunkSize), nil
}

// Testimonial picks a random testimonial below the navigation root. It
// returns nil if there is none.
func (v *View) Testimonial() (*vo.Testimonial, error) {
	root, err := v.NavRoot()
	if err != nil {
		return nil, err
	}
	brains, err := v.service.catalog.Search(v.ctx, catalog.Query{
		PortalTypes: []string{v.service.siteSettings.PortalTypes.Testimonial},
		Path:        root.Path,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query testimonials: %w", err)
	}
	if len(brains) == 0 {
		return nil, nil
	}
	brain := brains[v.service.intN(len(brains))]
	text, err := v.service.render(brain.Field("text"), brain.Field("textFormat"))
	if err != nil {
		return nil, fmt.Errorf("failed to render testimonial %s: %w", brain.Path, err)
	}
	return &vo.Testimonial{
		ID:       brain.ID,
		Title:    brain.Title,
		URL:      brain.URL,
		Author:   brain.Field("author"),
		Text:     text.HTML,
		Markdown: text.Markdown,
	}, nil
}

func (v *View) Breadcrumbs() ([]vo.Crumb, error) {
	return v.service.breadcrumbs.Breadcrumbs(v.ctx, v.context)
}

// Layout evaluates the slot rules for the portal type of the context
func (v *View) Layout() vo.Layout {
	rules := v.service.siteSettings.Layout
	portalType := v.context.PortalType
	fullWidth := slices.Contains(rules.FullWidthTypes, portalType)
	layout := vo.Layout{
		PortalType:    portalType,
		FullWidth:     fullWidth,
		ShowLeftSlot:  !fullWidth && !slices.Contains(rules.NoLeftSlotTypes, portalType),
		ShowRightSlot: !fullWidth && !slices.Contains(rules.NoRightSlotTypes, portalType),
		ContentSpan:   rules.GridColumns,
	}
	if layout.ShowLeftSlot {
		layout.LeftSlotSpan = rules.LeftSlotSpan
		layout.ContentSpan -= rules.LeftSlotSpan
	}
	if layout.ShowRightSlot {
		layout.RightSlotSpan = rules.RightSlotSpan
		layout.ContentSpan -= rules.RightSlotSpan
	}
	return layout
}

func (v *View) ShowLeftSlot() bool {
	return v.Layout().ShowLeftSlot
}

func (v *View) ShowRightSlot() bool {
	return v.Layout().ShowRightSlot
}

func (v *View) ContentSpan() int {
	return v.Layout().ContentSpan
}

func (v *View) IsFullWidth() bool {
	return v.Layout().FullWidth
}

// Page collects everything the page template renders
func (v *View) Page() (*vo.Page, error) {
	root, err := v.NavRoot()
	if err != nil {
		return nil, err
	}
	navigation, err := v.Navigation()
	if err != nil {
		return nil, err
	}
	news, err := v.News(0)
	if err != nil {
		return nil, err
	}
	defaults := v.service.siteSettings.Defaults
	refs, err := v.ProjectReferences(defaults.ChunkSize, defaults.RandomizeReferences)
	if err != nil {
		return nil, err
	}
	testimonial, err := v.Testimonial()
	if err != nil {
		return nil, err
	}
	breadcrumbs, err := v.Breadcrumbs()
	if err != nil {
		return nil, err
	}
	// the navigation root heads the trail on its own
	if i := slices.IndexFunc(breadcrumbs, func(c vo.Crumb) bool { return c.ID == root.ID }); i >= 0 {
		breadcrumbs = breadcrumbs[i+1:]
	}
	return &vo.Page{
		ID:          v.context.ID,
		Title:       v.context.Title,
		Description: v.context.Description,
		URL:         v.context.URL,
		NavRoot: vo.Crumb{
			ID:     root.ID,
			Title:  root.Title,
			URL:    root.URL,
			Active: root.Path == v.context.Path,
		},
		Navigation:        navigation,
		News:              news,
		ProjectReferences: refs,
		Testimonial:       testimonial,
		Breadcrumbs:       breadcrumbs,
		Layout:            v.Layout(),
	}, nil
}
