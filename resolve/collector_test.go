package resolve

import (
	"context"
	"testing"

	"github.com/artifactgraph/resolve/internal/workpool"
)

// fakeEntry is one artifact's descriptor in a fakeRepository.
type fakeEntry struct {
	deps    []Dependency
	managed []Dependency
	missing bool
	invalid bool
}

// fakeRepository is a minimal in-memory DescriptorSource/VersionRangeSource
// for exercising the collector without a real repository transport.
type fakeRepository struct {
	entries map[string]fakeEntry // keyed by g:a:v
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{entries: make(map[string]fakeEntry)}
}

func (r *fakeRepository) add(coord string, deps ...Dependency) {
	r.entries[coord] = fakeEntry{deps: deps}
}

func (r *fakeRepository) key(a Artifact) string {
	return a.GroupID() + ":" + a.ArtifactID() + ":" + a.Version()
}

func (r *fakeRepository) ReadDescriptor(session *Session, req ArtifactDescriptorRequest) (ArtifactDescriptor, error) {
	e, ok := r.entries[r.key(req.Artifact)]
	if !ok {
		return ArtifactDescriptor{}, &MissingDescriptorError{Artifact: req.Artifact}
	}
	if e.invalid {
		return ArtifactDescriptor{}, &InvalidDescriptorError{Artifact: req.Artifact}
	}
	return ArtifactDescriptor{
		Artifact:            req.Artifact.WithFile(r.key(req.Artifact)),
		Dependencies:        e.deps,
		ManagedDependencies: e.managed,
	}, nil
}

func (r *fakeRepository) ResolveRange(session *Session, req VersionRangeRequest) (VersionRangeResult, error) {
	v := Version(req.Artifact.Version())
	return VersionRangeResult{Versions: []Version{v}}, nil
}

func dep(coord, scope string) Dependency {
	a, err := ParseArtifact(coord)
	if err != nil {
		panic(err)
	}
	return NewDependency(a, scope)
}

func newTestSession() *Session {
	return NewSession(NewDataPool(PoolStrong), nil)
}

func TestCollectLinearChain(t *testing.T) {
	repo := newFakeRepository()
	repo.add("com.example:app:1.0", dep("com.example:lib:1.0", ScopeCompile))
	repo.add("com.example:lib:1.0", dep("com.example:util:1.0", ScopeCompile))
	repo.add("com.example:util:1.0")

	collector := NewCollector(repo, repo)
	session := newTestSession()
	rootArt, _ := ParseArtifact("com.example:app:1.0")

	result, err := collector.Collect(context.Background(), session, CollectRequest{RootArtifact: &rootArt})
	if err != nil {
		t.Fatalf("Collect: %s", err)
	}
	if len(result.Exceptions) != 0 {
		t.Fatalf("unexpected exceptions: %v", result.Exceptions)
	}
	if len(result.Root.Children) != 1 || result.Root.Children[0].Dependency.Artifact().ArtifactID() != "lib" {
		t.Fatalf("expected single lib child, got %v", result.Root.Children)
	}
	lib := result.Root.Children[0]
	if len(lib.Children) != 1 || lib.Children[0].Dependency.Artifact().ArtifactID() != "util" {
		t.Fatalf("expected lib -> util, got %v", lib.Children)
	}
}

func TestCollectDetectsCycle(t *testing.T) {
	repo := newFakeRepository()
	repo.add("com.example:a:1.0", dep("com.example:b:1.0", ScopeCompile))
	repo.add("com.example:b:1.0", dep("com.example:a:1.0", ScopeCompile))

	collector := NewCollector(repo, repo)
	session := newTestSession()
	rootArt, _ := ParseArtifact("com.example:a:1.0")

	result, err := collector.Collect(context.Background(), session, CollectRequest{RootArtifact: &rootArt})
	if err != nil {
		t.Fatalf("Collect: %s", err)
	}
	if len(result.Cycles) != 1 {
		t.Fatalf("expected one recorded cycle, got %v", result.Cycles)
	}
}

func TestCollectRecordsMissingDescriptorException(t *testing.T) {
	repo := newFakeRepository()
	repo.add("com.example:app:1.0", dep("com.example:ghost:1.0", ScopeCompile))
	// "ghost" is never added, so its descriptor fetch fails.

	collector := NewCollector(repo, repo)
	session := newTestSession()
	rootArt, _ := ParseArtifact("com.example:app:1.0")

	result, err := collector.Collect(context.Background(), session, CollectRequest{RootArtifact: &rootArt})
	if err != nil {
		t.Fatalf("Collect: %s", err)
	}
	if len(result.Exceptions) != 1 || result.Exceptions[0].Kind != KindDescriptorMissing {
		t.Fatalf("expected one descriptor-missing exception, got %v", result.Exceptions)
	}
}

func TestFetchDescriptorMarksReplayedErrorFromCache(t *testing.T) {
	repo := newFakeRepository()
	// "ghost" is never added, so every fetch for it fails.
	collector := NewCollector(repo, repo)
	session := newTestSession()

	ex := &expansion{
		ctx:     context.Background(),
		session: session,
		pool:    session.Pool,
		c:       collector,
		pool2:   workpool.New(0),
		result:  &CollectResult{},
	}

	ghost, _ := ParseArtifact("com.example:ghost:1.0")
	req := ArtifactDescriptorRequest{Artifact: ghost}

	_, err1, fromCache1 := ex.fetchDescriptor(req)
	if err1 == nil {
		t.Fatal("expected the first fetch to fail")
	}
	if fromCache1 {
		t.Fatal("first fetch should not be marked fromCache")
	}

	_, err2, fromCache2 := ex.fetchDescriptor(req)
	if err2 == nil {
		t.Fatal("expected the replayed fetch to still report failure")
	}
	if !fromCache2 {
		t.Fatal("second fetch should replay the cached error with fromCache = true")
	}
}

func TestCollectIgnoreMissingDescriptorsDemotesFailure(t *testing.T) {
	repo := newFakeRepository()
	repo.add("com.example:app:1.0", dep("com.example:ghost:1.0", ScopeCompile))

	collector := NewCollector(repo, repo)
	session := newTestSession()
	session.IgnoreMissingDescriptors = true
	rootArt, _ := ParseArtifact("com.example:app:1.0")

	result, err := collector.Collect(context.Background(), session, CollectRequest{RootArtifact: &rootArt})
	if err != nil {
		t.Fatalf("Collect: %s", err)
	}
	if len(result.Exceptions) != 0 {
		t.Fatalf("expected no exceptions once missing descriptors are ignored, got %v", result.Exceptions)
	}
	if len(result.Root.Children) != 1 || len(result.Root.Children[0].Children) != 0 {
		t.Fatalf("expected ghost to be present as a childless stub, got %v", result.Root.Children)
	}
}

func TestCollectSkipperReusesSiblingExpansion(t *testing.T) {
	repo := newFakeRepository()
	repo.add("com.example:app:1.0",
		dep("com.example:a:1.0", ScopeCompile),
		dep("com.example:b:1.0", ScopeCompile))
	repo.add("com.example:a:1.0", dep("com.example:shared:1.0", ScopeCompile))
	repo.add("com.example:b:1.0", dep("com.example:shared:1.0", ScopeCompile))
	repo.add("com.example:shared:1.0", dep("com.example:leaf:1.0", ScopeCompile))
	repo.add("com.example:leaf:1.0")

	collector := NewCollector(repo, repo)
	collector.Skipper = NewCachingSkipper()
	session := newTestSession()
	rootArt, _ := ParseArtifact("com.example:app:1.0")

	result, err := collector.Collect(context.Background(), session, CollectRequest{RootArtifact: &rootArt})
	if err != nil {
		t.Fatalf("Collect: %s", err)
	}
	if len(result.Exceptions) != 0 {
		t.Fatalf("unexpected exceptions: %v", result.Exceptions)
	}

	for _, top := range result.Root.Children {
		if len(top.Children) != 1 || top.Children[0].Dependency.Artifact().ArtifactID() != "shared" {
			t.Fatalf("expected each of a/b to have a shared child, got %v", top.Children)
		}
		shared := top.Children[0]
		if len(shared.Children) != 1 || shared.Children[0].Dependency.Artifact().ArtifactID() != "leaf" {
			t.Fatalf("expected shared's reused subtree to include leaf, got %v", shared.Children)
		}
	}
}

func TestCollectCancellation(t *testing.T) {
	repo := newFakeRepository()
	repo.add("com.example:app:1.0", dep("com.example:lib:1.0", ScopeCompile))
	repo.add("com.example:lib:1.0")

	collector := NewCollector(repo, repo)
	session := newTestSession()
	rootArt, _ := ParseArtifact("com.example:app:1.0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := collector.Collect(ctx, session, CollectRequest{RootArtifact: &rootArt})
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
	if _, ok := err.(*CancelledError); !ok {
		t.Fatalf("expected *CancelledError, got %T: %v", err, err)
	}
	if result == nil {
		t.Fatal("expected a partial result even on cancellation")
	}
}
