package resolve

import "testing"

func TestOptionalDependencySelectorAllowsDirectRejectsTransitive(t *testing.T) {
	sel := NewOptionalDependencySelector()
	art, _ := ParseArtifact("com.example:foo:1.0")
	optDep := NewDependency(art, ScopeCompile).WithOptional(true)

	if !sel.Select(optDep) {
		t.Error("direct optional dependency should be selected")
	}

	child := sel.DeriveChild(PolicyContext{})
	if child.Select(optDep) {
		t.Error("transitive optional dependency should be rejected")
	}
	// A required dependency is always selected, even transitively.
	reqDep := NewDependency(art, ScopeCompile)
	if !child.Select(reqDep) {
		t.Error("required dependency should still be selected transitively")
	}
}

func TestExclusionDependencySelectorAccumulatesDownPath(t *testing.T) {
	sel := NewExclusionDependencySelector(nil)
	excluded, _ := ParseArtifact("com.example:bar:1.0")
	dep := NewDependency(excluded, ScopeCompile)

	if !sel.Select(dep) {
		t.Fatal("nothing excluded yet, should select")
	}

	parentDep := NewDependency(dep.Artifact(), ScopeCompile).AddExclusions([]Exclusion{NewExclusion("com.example", "bar", "", "")})
	child := sel.DeriveChild(PolicyContext{Dependency: parentDep})
	if child.Select(dep) {
		t.Error("exclusion inherited from parent's declared exclusions should reject the match")
	}
}

func TestNearestDependencyManagerNeverOverwritesCloserEntry(t *testing.T) {
	rootArt, _ := ParseArtifact("com.example:foo:1.0")
	mgr := NewNearestDependencyManager([]Dependency{NewDependency(rootArt, ScopeCompile)})

	childArt, _ := ParseArtifact("com.example:foo:2.0")
	mgmt := mgr.Manage(NewDependency(childArt, ScopeCompile))
	if mgmt.Version == nil || *mgmt.Version != "1.0" {
		t.Fatalf("expected root-managed version 1.0, got %+v", mgmt)
	}

	// A descriptor-contributed managed dependency for the same GACE must not
	// override the already-established root entry.
	descArt, _ := ParseArtifact("com.example:foo:3.0")
	next := mgr.DeriveChild(PolicyContext{Descriptor: ArtifactDescriptor{
		ManagedDependencies: []Dependency{NewDependency(descArt, ScopeCompile)},
	}})
	mgmt2 := next.Manage(NewDependency(childArt, ScopeCompile))
	if mgmt2.Version == nil || *mgmt2.Version != "1.0" {
		t.Fatalf("nearest (root) managed version should still win, got %+v", mgmt2)
	}
}

func TestSnapshotVersionFilterTransitiveOnly(t *testing.T) {
	f := NewSnapshotVersionFilter()
	ctx := &FilterContext{Candidates: []Version{"1.0-SNAPSHOT", "1.0"}}
	f.Filter(ctx)
	if len(ctx.Candidates) != 2 {
		t.Fatalf("direct-level filter should pass everything through, got %v", ctx.Candidates)
	}

	child := f.DeriveChild(PolicyContext{})
	ctx2 := &FilterContext{Candidates: []Version{"1.0-SNAPSHOT", "1.0"}}
	child.Filter(ctx2)
	if len(ctx2.Candidates) != 1 || ctx2.Candidates[0] != "1.0" {
		t.Fatalf("transitive filter should drop snapshots, got %v", ctx2.Candidates)
	}
}
