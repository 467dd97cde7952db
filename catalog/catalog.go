package catalog

import (
	"context"
	"errors"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ErrNotFound is returned when no content object lives at the requested path.
var ErrNotFound = errors.New("content not found")

const (
	SortOnCreated       = "created"
	SortOnTitle         = "sortable_title"
	SortOnPosition      = "getObjPositionInParent"
	SortOrderAscending  = "ascending"
	SortOrderDescending = "descending"
)

// Catalog is the query interface over the content objects of a site
type Catalog interface {
	// Search returns the brains matching the query. It never returns the
	// query path itself.
	Search(ctx context.Context, query Query) ([]Brain, error)
	// Get resolves a single content object by path
	Get(ctx context.Context, path string) (*Brain, error)
	// Parents returns the ancestors of path, site root first
	Parents(ctx context.Context, path string) ([]Brain, error)
}

type Query struct {
	PortalTypes []string
	Path        string // subtree root, empty for the whole site
	Depth       int    // 1 = direct children only, 0 = unlimited
	SortOn      string
	SortOrder   string
	Limit       int
}

// Brain is a lightweight query result referencing a content object
type Brain struct {
	ID                string         `json:"id"`
	Path              string         `json:"path"`
	URL               string         `json:"url"`
	Title             string         `json:"title"`
	Description       string         `json:"description,omitempty"`
	PortalType        string         `json:"portalType"`
	Created           time.Time      `json:"created"`
	Subject           []string       `json:"subject,omitempty"`
	ExcludeFromNav    bool           `json:"excludeFromNav,omitempty"`
	ExcludeSubcontent bool           `json:"excludeSubcontent,omitempty"`
	NavigationRoot    bool           `json:"navigationRoot,omitempty"`
	Position          int            `json:"position"`
	Data              map[string]any `json:"data,omitempty"`
}

// HasSubject reports whether the brain is tagged with subject
func (b Brain) HasSubject(subject string) bool {
	return slices.Contains(b.Subject, subject)
}

// Field returns a data field as string, empty when missing
func (b Brain) Field(key string) string {
	if b.Data == nil {
		return ""
	}
	return cast.ToString(b.Data[key])
}

// item data keys
const (
	fieldTitle             = "title"
	fieldDescription       = "description"
	fieldCreated           = "created"
	fieldSubject           = "subject"
	fieldExcludeFromNav    = "excludeFromNav"
	fieldExcludeSubcontent = "excludeSubcontent"
	fieldNavigationRoot    = "navigationRoot"
)

// newBrain maps the loosely typed data of a content item onto a brain
func newBrain(baseURL, id, uri, name, portalType string, position int, data map[string]any) Brain {
	p := NormalizePath(uri)
	b := Brain{
		ID:                id,
		Path:              p,
		URL:               strings.TrimSuffix(baseURL, "/") + p,
		Title:             cast.ToString(data[fieldTitle]),
		Description:       cast.ToString(data[fieldDescription]),
		PortalType:        portalType,
		Subject:           cast.ToStringSlice(data[fieldSubject]),
		ExcludeFromNav:    cast.ToBool(data[fieldExcludeFromNav]),
		ExcludeSubcontent: cast.ToBool(data[fieldExcludeSubcontent]),
		NavigationRoot:    cast.ToBool(data[fieldNavigationRoot]),
		Position:          position,
		Data:              data,
	}
	if b.Title == "" {
		b.Title = name
	}
	if created, err := cast.ToTimeE(data[fieldCreated]); err == nil {
		b.Created = created
	}
	return b
}

// NormalizePath cleans p into an absolute slash separated path
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

// contains reports whether p lies strictly below root, at most depth levels deep
func contains(root, p string, depth int) bool {
	if root == p {
		return false
	}
	var rel string
	if root == "/" {
		rel = strings.TrimPrefix(p, "/")
	} else {
		if !strings.HasPrefix(p, root+"/") {
			return false
		}
		rel = strings.TrimPrefix(p, root+"/")
	}
	if depth <= 0 {
		return true
	}
	return strings.Count(rel, "/")+1 <= depth
}

// apply filters and sorts brains, which are expected in tree order
func apply(brains []Brain, query Query) []Brain {
	root := ""
	if query.Path != "" {
		root = NormalizePath(query.Path)
	}
	results := []Brain{}
	for _, b := range brains {
		if len(query.PortalTypes) > 0 && !slices.Contains(query.PortalTypes, b.PortalType) {
			continue
		}
		if root != "" {
			if !contains(root, b.Path, query.Depth) {
				continue
			}
		} else if query.Depth > 0 && !contains("/", b.Path, query.Depth) {
			continue
		}
		results = append(results, b)
	}

	descending := query.SortOrder == SortOrderDescending
	sortStable := func(compare func(a, b Brain) int) {
		if descending {
			// negated so that ties keep their position order
			slices.SortStableFunc(results, func(a, b Brain) int { return compare(b, a) })
			return
		}
		slices.SortStableFunc(results, compare)
	}
	switch query.SortOn {
	case SortOnCreated:
		sortStable(func(a, b Brain) int {
			return a.Created.Compare(b.Created)
		})
	case SortOnTitle:
		sortStable(func(a, b Brain) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		})
	default:
		if descending {
			slices.Reverse(results)
		}
	}
	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}
	return results
}
