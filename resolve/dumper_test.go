package resolve

import (
	"strings"
	"testing"
)

func TestDumperIndentation(t *testing.T) {
	a, _ := ParseArtifact("com.example:A:1.0")
	aNode := NewChildNode(NewDependency(a, ScopeCompile), 1, 1)
	b, _ := ParseArtifact("com.example:B:1.0")
	bNode := NewChildNode(NewDependency(b, ScopeCompile), 1, 2)

	root := NewRootNode(nil)
	root.Children = []*DependencyNode{aNode, bNode}

	out := NewDumper().Dump(root)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "+-") {
		t.Errorf("first (non-last) child should use +- prefix, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "\\-") {
		t.Errorf("last child should use \\- prefix, got %q", lines[2])
	}
}

func TestDumperAnnotatesLoser(t *testing.T) {
	a, _ := ParseArtifact("com.example:A:1.0")
	aNode := NewChildNode(NewDependency(a, ScopeCompile), 1, 1)
	winner := NewChildNode(NewDependency(a, ScopeCompile), 1, 0)
	aNode.setData(DataConflictWinner, winner)

	root := NewRootNode(nil)
	root.Children = []*DependencyNode{aNode}

	out := NewDumper().Dump(root)
	if !strings.Contains(out, "conflicts with") {
		t.Errorf("expected a conflict annotation in output, got %q", out)
	}
}

func TestDumperAnnotatesRangeRedundantLoserAsNearerExists(t *testing.T) {
	a, _ := ParseArtifact("com.example:A:1.0")
	aNode := NewChildNode(NewDependency(a, ScopeCompile), 1, 1)
	aNode.setData(DataConflictWinner, true)

	root := NewRootNode(nil)
	root.Children = []*DependencyNode{aNode}

	out := NewDumper().Dump(root)
	if !strings.Contains(out, "(nearer exists)") {
		t.Errorf("expected a (nearer exists) annotation in output, got %q", out)
	}
	if strings.Contains(out, "conflicts with") {
		t.Errorf("range-redundant loser should not be rendered as a conflict, got %q", out)
	}
}

func TestCycleAwareDumperEmitsBackReference(t *testing.T) {
	a, _ := ParseArtifact("com.example:A:1.0")
	aNode := NewChildNode(NewDependency(a, ScopeCompile), 1, 1)
	// a back-edge to itself, same GACE as an ancestor already on the path.
	backEdge := NewChildNode(NewDependency(a, ScopeCompile), 2, 2)
	aNode.Children = []*DependencyNode{backEdge}

	root := NewRootNode(nil)
	root.Children = []*DependencyNode{aNode}

	out := NewCycleAwareDumper(nil).Dump(root)
	if !strings.Contains(out, "^1") {
		t.Errorf("expected a ^1 back-reference marker, got %q", out)
	}
}
