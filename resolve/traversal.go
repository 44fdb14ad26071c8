package resolve

import (
	"os"
	"strings"
)

// DependencyFilter decides whether a node should be visited/kept while a
// traversal walks the ancestor stack (spec §4.6).
type DependencyFilter interface {
	Accept(node *DependencyNode, ancestors []*DependencyNode) bool
}

// DependencyFilterFunc adapts a plain function to a DependencyFilter.
type DependencyFilterFunc func(node *DependencyNode, ancestors []*DependencyNode) bool

func (f DependencyFilterFunc) Accept(node *DependencyNode, ancestors []*DependencyNode) bool {
	return f(node, ancestors)
}

// PreorderNodes lists nodes in pre-order (parent before children),
// deduplicated by node identity, each passing filter if one is given (spec
// §4.6: "consume on first visitEnter ... never consume again").
func PreorderNodes(root *DependencyNode, filter DependencyFilter) []*DependencyNode {
	var out []*DependencyNode
	seen := make(map[*DependencyNode]bool)
	var ancestors []*DependencyNode

	var walk func(n *DependencyNode)
	walk = func(n *DependencyNode) {
		if seen[n] {
			return
		}
		seen[n] = true
		if filter == nil || filter.Accept(n, ancestors) {
			out = append(out, n)
		}
		ancestors = append(ancestors, n)
		for _, c := range n.Children {
			walk(c)
		}
		ancestors = ancestors[:len(ancestors)-1]
	}
	walk(root)
	return out
}

// PostorderNodes lists nodes in post-order (children before parent),
// deduplicated by node identity (spec §4.6: "consume on visitLeave").
func PostorderNodes(root *DependencyNode, filter DependencyFilter) []*DependencyNode {
	var out []*DependencyNode
	seen := make(map[*DependencyNode]bool)
	var ancestors []*DependencyNode

	var walk func(n *DependencyNode)
	walk = func(n *DependencyNode) {
		if seen[n] {
			return
		}
		seen[n] = true
		ancestors = append(ancestors, n)
		for _, c := range n.Children {
			walk(c)
		}
		ancestors = ancestors[:len(ancestors)-1]
		if filter == nil || filter.Accept(n, ancestors) {
			out = append(out, n)
		}
	}
	walk(root)
	return out
}

// LevelorderNodes lists nodes bucketed by depth, shallowest first,
// deduplicated by node identity (spec §4.6: "emit buckets in increasing
// depth once the root's visitLeave fires").
func LevelorderNodes(root *DependencyNode, filter DependencyFilter) []*DependencyNode {
	seen := make(map[*DependencyNode]bool)
	var buckets [][]*DependencyNode
	var ancestors []*DependencyNode

	var walk func(n *DependencyNode, depth int)
	walk = func(n *DependencyNode, depth int) {
		if seen[n] {
			return
		}
		seen[n] = true
		for len(buckets) <= depth {
			buckets = append(buckets, nil)
		}
		if filter == nil || filter.Accept(n, ancestors) {
			buckets[depth] = append(buckets[depth], n)
		}
		ancestors = append(ancestors, n)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
		ancestors = ancestors[:len(ancestors)-1]
	}
	walk(root, 0)

	var out []*DependencyNode
	for _, b := range buckets {
		out = append(out, b...)
	}
	return out
}

// resolved reports whether a node's artifact carries a backing file, i.e. it
// was actually resolved rather than merely collected (spec §4.6).
func resolved(n *DependencyNode) bool {
	return n.Dependency != nil && n.Dependency.Artifact().File() != ""
}

// Dependencies extracts the Dependency of each node in list, optionally
// excluding unresolved entries (spec §4.6 "Derived outputs").
func Dependencies(list []*DependencyNode, excludeUnresolved bool) []Dependency {
	out := make([]Dependency, 0, len(list))
	for _, n := range list {
		if n.Dependency == nil {
			continue
		}
		if excludeUnresolved && !resolved(n) {
			continue
		}
		out = append(out, *n.Dependency)
	}
	return out
}

// Artifacts extracts the Artifact of each node in list, optionally excluding
// unresolved entries.
func Artifacts(list []*DependencyNode, excludeUnresolved bool) []Artifact {
	out := make([]Artifact, 0, len(list))
	for _, n := range list {
		if n.Dependency == nil {
			continue
		}
		if excludeUnresolved && !resolved(n) {
			continue
		}
		out = append(out, n.Dependency.Artifact())
	}
	return out
}

// Files lists the backing file path of every resolved node in list.
func Files(list []*DependencyNode) []string {
	var out []string
	for _, n := range list {
		if n.Dependency == nil {
			continue
		}
		if f := n.Dependency.Artifact().File(); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Classpath joins the resolved file paths of list using the platform path
// list separator (spec §4.6: "Classpath string using the platform path
// separator").
func Classpath(list []*DependencyNode) string {
	return strings.Join(Files(list), string(os.PathListSeparator))
}
