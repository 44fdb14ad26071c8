package resolve

import (
	"bytes"
	"fmt"
)

// Dumper renders a preorder ASCII tree of a collected/resolved graph, one
// line per node, with indentation computed from each node's is-last-child
// position among its parent's children (spec §4.6).
type Dumper struct {
	// Decorate, if set, is appended after the node's coordinate string.
	// The default decorator shows effective scope/optionality and
	// management/conflict annotations (spec §4.6).
	Decorate func(n *DependencyNode) string
}

// NewDumper builds a Dumper with the default decorator.
func NewDumper() *Dumper {
	return &Dumper{Decorate: defaultDecorator}
}

// Dump renders root's subtree to a string.
func (d *Dumper) Dump(root *DependencyNode) string {
	var buf bytes.Buffer
	d.dump(&buf, root, nil, true)
	return buf.String()
}

func (d *Dumper) dump(buf *bytes.Buffer, n *DependencyNode, prefixStack []bool, isRoot bool) {
	d.writeLine(buf, n, prefixStack, isRoot)
	for i, c := range n.Children {
		isLast := i == len(n.Children)-1
		d.dump(buf, c, append(prefixStack, isLast), false)
	}
}

func (d *Dumper) writeLine(buf *bytes.Buffer, n *DependencyNode, prefixStack []bool, isRoot bool) {
	for i, last := range prefixStack {
		isLastLevel := i == len(prefixStack)-1
		switch {
		case isLastLevel && last:
			buf.WriteString("\\-")
		case isLastLevel:
			buf.WriteString("+-")
		case last:
			buf.WriteString("   ")
		default:
			buf.WriteString("|  ")
		}
	}

	if isRoot {
		buf.WriteString("(root)")
	} else if n.Dependency != nil {
		buf.WriteString(n.Dependency.Artifact().String())
	}

	if d.Decorate != nil {
		if s := d.Decorate(n); s != "" {
			buf.WriteString(" ")
			buf.WriteString(s)
		}
	}
	buf.WriteString("\n")
}

// defaultDecorator implements the decorators listed in spec §4.6: effective
// scope/optionality, premanaged-attribute annotations, range annotation, and
// loser annotations.
func defaultDecorator(n *DependencyNode) string {
	if n.Dependency == nil {
		return ""
	}
	var buf bytes.Buffer

	scope, _ := n.Data[DataEffectiveScope].(string)
	if scope == "" {
		scope = n.Dependency.Scope()
	}
	optional, hasOptional := n.Dependency.Optional()
	if eff, ok := n.Data[DataEffectiveOptional].(bool); ok {
		optional, hasOptional = eff, true
	}
	if hasOptional && optional {
		fmt.Fprintf(&buf, "[%s, optional]", scope)
	} else {
		fmt.Fprintf(&buf, "[%s]", scope)
	}

	if v, ok := n.Data[DataPremanagedVersion]; ok {
		fmt.Fprintf(&buf, " (version managed from %v)", v)
	}
	if v, ok := n.Data[DataPremanagedScope]; ok {
		fmt.Fprintf(&buf, " (scope managed from %v)", v)
	}
	if v, ok := n.Data[DataPremanagedOptional]; ok {
		fmt.Fprintf(&buf, " (optionality managed from %v)", v)
	}
	if v, ok := n.Data[DataPremanagedExclusions]; ok {
		fmt.Fprintf(&buf, " (exclusions managed from %v)", v)
	}
	if v, ok := n.Data[DataPremanagedProperties]; ok {
		fmt.Fprintf(&buf, " (properties managed from %v)", v)
	}

	if n.VersionConstraint.IsRange() {
		fmt.Fprintf(&buf, " (range '%s')", n.VersionConstraint.Expression())
	}

	if winner, ok := n.Data[DataConflictWinner]; ok {
		if wn, ok := winner.(*DependencyNode); ok && wn.Dependency != nil {
			fmt.Fprintf(&buf, " (conflicts with %s)", wn.Dependency.Artifact())
		} else {
			buf.WriteString(" (nearer exists)")
		}
	}

	return buf.String()
}

// CycleAwareDumper wraps a Dumper, stopping recursion and emitting a
// back-reference marker whenever the current node's versionless artifact id
// matches an ancestor already on the path (spec §4.6: "emits
// <indent><node> ^N and refuses to recurse").
type CycleAwareDumper struct {
	Inner *Dumper
}

// NewCycleAwareDumper wraps d (or a default Dumper if d is nil).
func NewCycleAwareDumper(d *Dumper) *CycleAwareDumper {
	if d == nil {
		d = NewDumper()
	}
	return &CycleAwareDumper{Inner: d}
}

// Dump renders root's subtree, short-circuiting cycles.
func (c *CycleAwareDumper) Dump(root *DependencyNode) string {
	var buf bytes.Buffer
	var path []*DependencyNode
	c.dump(&buf, root, nil, true, path)
	return buf.String()
}

func (c *CycleAwareDumper) dump(buf *bytes.Buffer, n *DependencyNode, prefixStack []bool, isRoot bool, path []*DependencyNode) {
	if !isRoot && n.Dependency != nil {
		for i, anc := range path {
			if anc.Dependency != nil && anc.GACE() == n.GACE() {
				c.Inner.writeLine(buf, n, prefixStack, false)
				// Backtrack the newline just written to append the marker.
				s := buf.String()
				buf.Reset()
				buf.WriteString(s[:len(s)-1])
				fmt.Fprintf(buf, " ^%d\n", i)
				return
			}
		}
	}

	c.Inner.writeLine(buf, n, prefixStack, isRoot)
	path = append(path, n)
	for i, ch := range n.Children {
		isLast := i == len(n.Children)-1
		c.dump(buf, ch, append(prefixStack, isLast), false, path)
	}
}
