package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	contentserverclient "github.com/foomo/contentserver/client"
	"github.com/foomo/contentserver/content"
	"github.com/foomo/contentserver/requests"
	"golang.org/x/sync/singleflight"
)

type ContentServerSettings struct {
	Env       *requests.Env
	URL       string
	RootID    string
	Dimension string
	BaseURL   string
	MimeTypes []string
	// SnapshotTTL is how long a fetched node tree serves searches. Zero
	// fetches the tree on every search.
	SnapshotTTL time.Duration
}

// ContentServer reads the catalog from a foomo content server. Searches run
// on a snapshot of the expanded node tree below the root node, which is
// refreshed once it is older than SnapshotTTL.
type ContentServer struct {
	client   *contentserverclient.Client
	settings ContentServerSettings
	now      func() time.Time

	group      singleflight.Group
	mutex      sync.RWMutex
	cached     *Memory
	cachedTime time.Time
}

func NewContentServer(settings ContentServerSettings, httpClient *http.Client) *ContentServer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if settings.Env == nil {
		settings.Env = &requests.Env{}
	}
	if settings.Dimension != "" && len(settings.Env.Dimensions) == 0 {
		settings.Env.Dimensions = []string{settings.Dimension}
	}
	client := contentserverclient.New(
		contentserverclient.NewHTTPTransport(
			settings.URL,
			contentserverclient.HTTPTransportWithHTTPClient(httpClient),
		))
	return &ContentServer{
		client:   client,
		settings: settings,
		now:      time.Now,
	}
}

// snapshot returns the cached tree while it is fresh. Concurrent refreshes
// share one request.
func (c *ContentServer) snapshot(ctx context.Context) (*Memory, error) {
	if c.settings.SnapshotTTL > 0 {
		c.mutex.RLock()
		cached, cachedTime := c.cached, c.cachedTime
		c.mutex.RUnlock()
		if cached != nil && c.now().Sub(cachedTime) < c.settings.SnapshotTTL {
			return cached, nil
		}
	}
	v, err, _ := c.group.Do("snapshot", func() (any, error) {
		m, err := c.fetchSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		c.mutex.Lock()
		c.cached, c.cachedTime = m, c.now()
		c.mutex.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Memory), nil
}

func (c *ContentServer) fetchSnapshot(ctx context.Context) (*Memory, error) {
	nodes, err := c.client.GetNodes(ctx, c.settings.Env, map[string]*requests.Node{
		c.settings.RootID: {
			ID:        c.settings.RootID,
			Dimension: c.settings.Dimension,
			MimeTypes: c.settings.MimeTypes,
			Expand:    true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	root, ok := nodes[c.settings.RootID]
	if !ok || root.Item == nil {
		return nil, errors.New("root node not found")
	}

	brains := []Brain{}
	var walk func(n *content.Node, position int) error
	walk = func(n *content.Node, position int) error {
		brains = append(brains, c.brain(n.Item, position))
		for i, id := range n.Index {
			child, ok := n.Nodes[id]
			if !ok || child.Item == nil {
				return fmt.Errorf("child node %q not found", id)
			}
			if err := walk(child, i); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, 0); err != nil {
		return nil, err
	}
	return NewMemory(brains...), nil
}

func (c *ContentServer) brain(item *content.Item, position int) Brain {
	return newBrain(c.settings.BaseURL, item.ID, item.URI, item.Name, item.MimeType, position, item.Data)
}

func (c *ContentServer) siteContent(ctx context.Context, p string) (*content.SiteContent, error) {
	siteContent, err := c.client.GetContent(ctx, &requests.Content{
		URI:   NormalizePath(p),
		Env:   c.settings.Env,
		Nodes: map[string]*requests.Node{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	if siteContent.Item == nil || int(siteContent.Status) == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return siteContent, nil
}

func (c *ContentServer) Search(ctx context.Context, query Query) ([]Brain, error) {
	m, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return m.Search(ctx, query)
}

func (c *ContentServer) Get(ctx context.Context, p string) (*Brain, error) {
	siteContent, err := c.siteContent(ctx, p)
	if err != nil {
		return nil, err
	}
	b := c.brain(siteContent.Item, 0)
	return &b, nil
}

func (c *ContentServer) Parents(ctx context.Context, p string) ([]Brain, error) {
	siteContent, err := c.siteContent(ctx, p)
	if err != nil {
		return nil, err
	}
	// the content server lists the path nearest parent first
	parents := make([]Brain, 0, len(siteContent.Path))
	for i := len(siteContent.Path) - 1; i >= 0; i-- {
		item := siteContent.Path[i]
		if item == nil || !strings.HasPrefix(item.URI, "/") {
			continue
		}
		parents = append(parents, c.brain(item, 0))
	}
	return parents, nil
}
