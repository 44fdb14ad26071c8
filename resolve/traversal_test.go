package resolve

import "testing"

func buildTraversalTree() *DependencyNode {
	d, _ := ParseArtifact("com.example:D:1.0")
	dNode := NewChildNode(NewDependency(d, ScopeCompile), 2, 3)

	b, _ := ParseArtifact("com.example:B:1.0")
	bNode := NewChildNode(NewDependency(b, ScopeCompile), 1, 1)
	bNode.Children = []*DependencyNode{dNode}

	c, _ := ParseArtifact("com.example:C:1.0")
	cNode := NewChildNode(NewDependency(c, ScopeCompile), 1, 2)
	cNode.Children = []*DependencyNode{dNode} // shared: same pointer reached twice

	root := NewRootNode(nil)
	root.Children = []*DependencyNode{bNode, cNode}
	return root
}

func TestPreorderDedupesByIdentity(t *testing.T) {
	root := buildTraversalTree()
	list := PreorderNodes(root, nil)

	count := 0
	for _, n := range list {
		if n.Dependency != nil && n.Dependency.Artifact().ArtifactID() == "D" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("D reached via two paths should appear once in preorder, got %d", count)
	}
	if list[0].Dependency != nil {
		t.Fatalf("first preorder entry should be the root, got %v", list[0])
	}
}

func TestPostorderChildBeforeParent(t *testing.T) {
	root := buildTraversalTree()
	list := PostorderNodes(root, nil)

	pos := make(map[string]int)
	for i, n := range list {
		if n.Dependency != nil {
			pos[n.Dependency.Artifact().ArtifactID()] = i
		}
	}
	if pos["D"] >= pos["B"] {
		t.Fatalf("D should be emitted before its parent B in postorder: %v", pos)
	}
}

func TestLevelorderGroupsByDepth(t *testing.T) {
	root := buildTraversalTree()
	list := LevelorderNodes(root, nil)

	if list[0].Dependency != nil {
		t.Fatalf("root should be first in level-order")
	}
	depthOf := map[string]int{"B": 1, "C": 1, "D": 2}
	seenDepth1 := false
	for _, n := range list[1:] {
		if n.Dependency == nil {
			continue
		}
		id := n.Dependency.Artifact().ArtifactID()
		if depthOf[id] == 1 {
			seenDepth1 = true
		}
		if depthOf[id] == 2 && !seenDepth1 {
			t.Fatalf("depth-2 node %s appeared before any depth-1 node", id)
		}
	}
}

func TestClasspathUsesResolvedFilesOnly(t *testing.T) {
	art, _ := ParseArtifact("com.example:foo:1.0")
	unresolved := NewChildNode(NewDependency(art, ScopeCompile), 1, 1)

	resolvedArt := art.WithFile("/repo/foo-1.0.jar")
	resolvedNode := NewChildNode(NewDependency(resolvedArt, ScopeCompile), 1, 2)

	list := []*DependencyNode{unresolved, resolvedNode}
	files := Files(list)
	if len(files) != 1 || files[0] != "/repo/foo-1.0.jar" {
		t.Fatalf("Files() = %v, want only the resolved entry", files)
	}
}
