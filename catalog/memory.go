package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Memory is an immutable in-memory catalog. Brains are kept in tree order.
type Memory struct {
	brains []Brain
	byPath map[string]int
}

func NewMemory(brains ...Brain) *Memory {
	m := &Memory{
		brains: make([]Brain, 0, len(brains)),
		byPath: make(map[string]int, len(brains)),
	}
	for _, b := range brains {
		b.Path = NormalizePath(b.Path)
		if i, ok := m.byPath[b.Path]; ok {
			m.brains[i] = b
			continue
		}
		m.byPath[b.Path] = len(m.brains)
		m.brains = append(m.brains, b)
	}
	return m
}

func (m *Memory) Search(ctx context.Context, query Query) ([]Brain, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return apply(m.brains, query), nil
}

func (m *Memory) Get(ctx context.Context, p string) (*Brain, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i, ok := m.byPath[NormalizePath(p)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	b := m.brains[i]
	return &b, nil
}

func (m *Memory) Parents(ctx context.Context, p string) ([]Brain, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p = NormalizePath(p)
	if _, ok := m.byPath[p]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	parents := []Brain{}
	if p == "/" {
		return parents, nil
	}
	candidates := []string{"/"}
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i := 1; i < len(parts); i++ {
		candidates = append(candidates, "/"+strings.Join(parts[:i], "/"))
	}
	for _, c := range candidates {
		if i, ok := m.byPath[c]; ok {
			parents = append(parents, m.brains[i])
		}
	}
	return parents, nil
}

// fixtureNode is a content item in a YAML fixture tree. Everything besides
// id, type and children ends up in the item data.
type fixtureNode struct {
	ID       string         `yaml:"id"`
	Type     string         `yaml:"type"`
	Children []fixtureNode  `yaml:"children"`
	Data     map[string]any `yaml:",inline"`
}

// LoadMemory reads a YAML fixture tree whose top level node is the site root
func LoadMemory(filename, baseURL string) (*Memory, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseMemory(raw, baseURL)
}

func ParseMemory(raw []byte, baseURL string) (*Memory, error) {
	var root fixtureNode
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	brains := []Brain{}
	var walk func(n fixtureNode, uri string, position int) error
	walk = func(n fixtureNode, uri string, position int) error {
		if n.ID == "" {
			return fmt.Errorf("fixture node below %q has no id", uri)
		}
		brains = append(brains, newBrain(baseURL, n.ID, uri, n.ID, n.Type, position, n.Data))
		for i, c := range n.Children {
			childURI := strings.TrimSuffix(uri, "/") + "/" + c.ID
			if err := walk(c, childURI, i); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, "/", 0); err != nil {
		return nil, err
	}
	return NewMemory(brains...), nil
}
