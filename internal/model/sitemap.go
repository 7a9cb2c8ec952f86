package model

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// RootKey is the synthetic segment under which the site root's PageResult
// is stored. A URL whose path is empty or "/" has no path segment of its
// own, so its record attaches to this key at the top level of the tree.
const RootKey = "/"

// SitemapNode is a single node in the sitemap tree, keyed by one path
// segment. A node with leaf data and no children is a file; a node with
// children (with or without leaf data) is a directory.
type SitemapNode struct {
	// Data is the PageResult for the URL ending at this node, if fetched.
	Data *PageResult

	// Children maps child path segments to their nodes.
	Children map[string]*SitemapNode
}

// newSitemapNode creates an empty node.
func newSitemapNode() *SitemapNode {
	return &SitemapNode{Children: make(map[string]*SitemapNode)}
}

// IsDirectory reports whether the node has at least one child, implying a
// crawlable directory URL.
func (n *SitemapNode) IsDirectory() bool {
	return len(n.Children) > 0
}

// MarshalJSON encodes the node as an object of its children plus an
// optional "_data" key holding the page record.
func (n *SitemapNode) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Children)+1)
	if n.Data != nil {
		out["_data"] = n.Data
	}
	for segment, child := range n.Children {
		out[segment] = child
	}
	return json.Marshal(out)
}

// Sitemap is a tree keyed by URL path segments that accumulates one
// PageResult per discovered URL. It is safe for concurrent use; workers
// insert during the crawl and the tree becomes effectively read-only once
// the discovery loop reaches its fixpoint.
type Sitemap struct {
	mu   sync.RWMutex
	root *SitemapNode
}

// NewSitemap creates an empty sitemap tree.
func NewSitemap() *Sitemap {
	return &Sitemap{root: newSitemapNode()}
}

// Insert stores the result under the node addressed by the URL's path
// segments, creating intermediate nodes as needed. Re-inserting the same
// canonical URL overwrites the leaf data at that path.
func (s *Sitemap) Insert(canonicalURL string, result *PageResult) {
	segments := pathSegments(canonicalURL)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(segments) == 0 {
		segments = []string{RootKey}
	}

	node := s.root
	for _, segment := range segments {
		child, ok := node.Children[segment]
		if !ok {
			child = newSitemapNode()
			node.Children[segment] = child
		}
		node = child
	}
	node.Data = result
}

// DirectoryURLs walks the tree and, for every directory-shaped node,
// reconstructs its URL by joining path segments from the root against the
// given base. The returned slice is sorted for deterministic output.
// This set drives the discovery loop's re-probing passes.
func (s *Sitemap) DirectoryURLs(base *url.URL) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := base.Scheme + "://" + base.Host
	var dirs []string
	var walk func(node *SitemapNode, path []string)
	walk = func(node *SitemapNode, path []string) {
		for segment, child := range node.Children {
			if !child.IsDirectory() {
				continue
			}
			childPath := append(path[:len(path):len(path)], segment)
			dirs = append(dirs, prefix+"/"+strings.Join(childPath, "/")+"/")
			walk(child, childPath)
		}
	}
	walk(s.root, nil)

	sort.Strings(dirs)
	return dirs
}

// Root returns the top-level node of the tree. The caller must not mutate
// the returned structure while a crawl is running.
func (s *Sitemap) Root() *SitemapNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// MarshalJSON encodes the whole tree as nested objects, each directory key
// mapping to an object of its children plus an optional "_data" record.
func (s *Sitemap) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root.MarshalJSON()
}

// pathSegments splits a URL path on "/", discarding empty segments.
// An unparsable URL yields no segments and falls back to the root key.
func pathSegments(rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	parts := strings.Split(u.Path, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}
