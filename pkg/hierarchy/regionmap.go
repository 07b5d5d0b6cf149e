// Package hierarchy navigates brain-region hierarchies such as the AIBS
// 1.json file: a tree of regions with ids, acronyms and names, queried by
// exact value or regular expression, optionally including descendants.
package hierarchy

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Node is one region of the hierarchy.
type Node struct {
	ID       int     `json:"id"`
	Acronym  string  `json:"acronym"`
	Name     string  `json:"name"`
	Children []*Node `json:"children"`
}

// RegionMap indexes a region hierarchy for Find queries.
type RegionMap struct {
	roots []*Node
	byID  map[int]*Node
}

// IDSet is a set of region identifiers.
type IDSet map[int]struct{}

// Contains reports whether id is in the set.
func (s IDSet) Contains(id int) bool {
	_, ok := s[id]
	return ok
}

// Intersect returns the intersection of s and other.
func (s IDSet) Intersect(other IDSet) IDSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(IDSet)
	for id := range small {
		if large.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the ids in increasing order.
func (s IDSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// FromNode builds a RegionMap from an in-memory hierarchy. Duplicate region
// ids are rejected.
func FromNode(roots ...*Node) (*RegionMap, error) {
	rm := &RegionMap{roots: roots, byID: make(map[int]*Node)}
	var index func(n *Node) error
	index = func(n *Node) error {
		if _, dup := rm.byID[n.ID]; dup {
			return fmt.Errorf("duplicate region id %d", n.ID)
		}
		rm.byID[n.ID] = n
		for _, child := range n.Children {
			if err := index(child); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range roots {
		if err := index(root); err != nil {
			return nil, err
		}
	}
	return rm, nil
}

// FromJSON parses a hierarchy from JSON. Both a bare root node and the AIBS
// envelope {"msg": [root, ...]} are accepted.
func FromJSON(data []byte) (*RegionMap, error) {
	var envelope struct {
		Msg []*Node `json:"msg"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Msg) > 0 {
		return FromNode(envelope.Msg...)
	}
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing hierarchy: %w", err)
	}
	return FromNode(&root)
}

// Load reads a hierarchy JSON file.
func Load(path string) (*RegionMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hierarchy file: %w", err)
	}
	return FromJSON(data)
}

// Get returns the region with the given id.
func (rm *RegionMap) Get(id int) (*Node, bool) {
	n, ok := rm.byID[id]
	return n, ok
}

// Size returns the number of regions in the hierarchy.
func (rm *RegionMap) Size() int { return len(rm.byID) }

// Find returns the ids of the regions whose attribute matches query.
// attribute is one of "acronym", "name" or "id". A query starting with '@'
// is interpreted as a regular expression over the attribute value, anything
// else as an exact match. With withDescendants set, the full subtree of
// every matched region is included.
func (rm *RegionMap) Find(query, attribute string, withDescendants bool) (IDSet, error) {
	match, err := compileMatcher(query, attribute)
	if err != nil {
		return nil, err
	}
	ids := make(IDSet)
	var walk func(n *Node)
	walk = func(n *Node) {
		if match(n) {
			if withDescendants {
				collect(n, ids)
			} else {
				ids[n.ID] = struct{}{}
			}
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, root := range rm.roots {
		walk(root)
	}
	return ids, nil
}

func collect(n *Node, ids IDSet) {
	ids[n.ID] = struct{}{}
	for _, child := range n.Children {
		collect(child, ids)
	}
}

func compileMatcher(query, attribute string) (func(*Node) bool, error) {
	value, err := attributeGetter(attribute)
	if err != nil {
		return nil, err
	}
	if pattern, ok := strings.CutPrefix(query, "@"); ok {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid query %q: %w", query, err)
		}
		return func(n *Node) bool { return re.MatchString(value(n)) }, nil
	}
	return func(n *Node) bool { return value(n) == query }, nil
}

func attributeGetter(attribute string) (func(*Node) string, error) {
	switch attribute {
	case "acronym":
		return func(n *Node) string { return n.Acronym }, nil
	case "name":
		return func(n *Node) string { return n.Name }, nil
	case "id":
		return func(n *Node) string { return strconv.Itoa(n.ID) }, nil
	default:
		return nil, fmt.Errorf("unknown region attribute %q, expected acronym, name or id", attribute)
	}
}
