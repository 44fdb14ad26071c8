package resolve

import "testing"

func TestInternArtifactReturnsCanonicalInstance(t *testing.T) {
	pool := NewDataPool(PoolStrong)
	a1, _ := ParseArtifact("com.example:foo:1.0")
	a2, _ := ParseArtifact("com.example:foo:1.0")

	i1 := pool.InternArtifact(a1)
	i2 := pool.InternArtifact(a2)

	if !i1.Equal(i2) {
		t.Fatalf("interned artifacts not equal: %v vs %v", i1, i2)
	}
}

func TestDataPoolChildrenBucketCollision(t *testing.T) {
	pool := NewDataPool(PoolStrong)
	art, _ := ParseArtifact("com.example:foo:1.0")

	k1 := GraphKey{Artifact: art, Selector: staticTrueSelector{}}
	k2 := GraphKey{Artifact: art, Selector: &OptionalDependencySelector{}}

	n1 := []*DependencyNode{NewChildNode(NewDependency(art, ScopeCompile), 1, 1)}
	n2 := []*DependencyNode{NewChildNode(NewDependency(art, ScopeRuntime), 1, 1)}

	pool.PutChildren(k1, n1, 1)
	pool.PutChildren(k2, n2, 2)

	got1, depth1, ok := pool.Children(k1)
	if !ok || depth1 != 1 || len(got1) != 1 || got1[0].Dependency.Scope() != ScopeCompile {
		t.Fatalf("Children(k1) = %v, %v, %v; want the compile-scope entry at depth 1", got1, depth1, ok)
	}

	got2, depth2, ok := pool.Children(k2)
	if !ok || depth2 != 2 || len(got2) != 1 || got2[0].Dependency.Scope() != ScopeRuntime {
		t.Fatalf("Children(k2) = %v, %v, %v; want the runtime-scope entry at depth 2", got2, depth2, ok)
	}
}

func TestDataPoolEvictChildren(t *testing.T) {
	pool := NewDataPool(PoolStrong)
	art, _ := ParseArtifact("com.example:foo:1.0")
	k := GraphKey{Artifact: art}

	pool.PutChildren(k, nil, 1)
	if _, _, ok := pool.Children(k); !ok {
		t.Fatal("expected cached entry before eviction")
	}
	pool.EvictChildren(k)
	if _, _, ok := pool.Children(k); ok {
		t.Fatal("expected no cached entry after eviction")
	}
}

func TestPoolWeakPurgesUntouchedEntries(t *testing.T) {
	pool := NewDataPool(PoolWeak)
	kept, _ := ParseArtifact("com.example:kept:1.0")
	dropped, _ := ParseArtifact("com.example:dropped:1.0")

	pool.InternArtifact(kept)
	pool.InternArtifact(dropped)

	// Simulate a second collection that only re-interns "kept".
	pool.PurgeUnused()
	pool.InternArtifact(kept)
	pool.PurgeUnused()

	if _, ok := pool.artifacts[kept.internKey()]; !ok {
		t.Fatal("expected an artifact re-interned every collection to survive")
	}
	if _, ok := pool.artifacts[dropped.internKey()]; ok {
		t.Fatal("expected an artifact absent from a later collection to be purged")
	}
}

func TestPoolStrongIgnoresPurgeUnused(t *testing.T) {
	pool := NewDataPool(PoolStrong)
	art, _ := ParseArtifact("com.example:foo:1.0")
	pool.InternArtifact(art)

	pool.PurgeUnused()
	pool.PurgeUnused()

	if _, ok := pool.artifacts[art.internKey()]; !ok {
		t.Fatal("PoolStrong entries must survive PurgeUnused")
	}
}

func TestResetCollectionCachesClearsButKeepsInterning(t *testing.T) {
	pool := NewDataPool(PoolStrong)
	art, _ := ParseArtifact("com.example:foo:1.0")
	pool.InternArtifact(art)
	k := GraphKey{Artifact: art}
	pool.PutChildren(k, nil, 1)

	pool.ResetCollectionCaches()

	if _, _, ok := pool.Children(k); ok {
		t.Fatal("children cache should be cleared by ResetCollectionCaches")
	}
	// Artifact interning is session-scoped, unaffected by collection reset.
	got := pool.InternArtifact(art)
	if !got.Equal(art) {
		t.Fatal("artifact interning should survive ResetCollectionCaches")
	}
}
