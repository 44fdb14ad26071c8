package resolve

// PolicyContext carries the information available to a policy's DeriveChild
// method: the dependency edge that was just traversed, and the descriptor
// fetched for it (spec §4.3: "Derive child policies" happens after the
// descriptor fetch, so managers can fold in a descriptor's own managed
// dependencies).
type PolicyContext struct {
	Dependency Dependency
	Descriptor ArtifactDescriptor
}

// DependencySelector decides whether a dependency edge should be followed at
// all (spec §6).
type DependencySelector interface {
	Select(d Dependency) bool
	DeriveChild(ctx PolicyContext) DependencySelector
}

// DependencyManagement is the (possibly partial) set of overrides a
// DependencyManager applies to a dependency. A nil field means "no
// override" for that subject.
type DependencyManagement struct {
	Version    *string
	Scope      *string
	Optional   *bool
	Exclusions []Exclusion
	Properties map[string]string
}

// DependencyManager computes version/scope/optionality/exclusion/property
// overrides for a dependency (spec §6, §4.3).
type DependencyManager interface {
	Manage(d Dependency) DependencyManagement
	DeriveChild(ctx PolicyContext) DependencyManager
}

// DependencyTraverser decides whether to recurse into a dependency's own
// children (spec §6).
type DependencyTraverser interface {
	Traverse(d Dependency) bool
	DeriveChild(ctx PolicyContext) DependencyTraverser
}

// FilterContext is mutated in place by VersionFilter.Filter to narrow the
// candidate version list (spec §6).
type FilterContext struct {
	Dependency Dependency
	Candidates []Version
}

// VersionFilter removes disallowed versions from the candidate list (spec
// §6).
type VersionFilter interface {
	Filter(ctx *FilterContext)
	DeriveChild(ctx PolicyContext) VersionFilter
}

// ---- DependencySelector implementations ----

// staticTrueSelector accepts every dependency and never changes. It is the
// default when no selection policy is configured.
type staticTrueSelector struct{}

func (staticTrueSelector) Select(Dependency) bool                        { return true }
func (staticTrueSelector) DeriveChild(PolicyContext) DependencySelector  { return staticTrueSelector{} }

// NewDefaultDependencySelector returns the accept-everything selector.
func NewDefaultDependencySelector() DependencySelector { return staticTrueSelector{} }

// OptionalDependencySelector rejects dependencies marked optional once past
// the direct (depth-1) level; direct optional dependencies are still
// followed, matching the common Maven convention that only the declaring
// project's own optional flag is informational, not a transitive cutoff.
type OptionalDependencySelector struct {
	transitive bool
}

// NewOptionalDependencySelector returns a selector rejecting optional
// dependencies once transitive is true.
func NewOptionalDependencySelector() *OptionalDependencySelector {
	return &OptionalDependencySelector{}
}

func (s *OptionalDependencySelector) Select(d Dependency) bool {
	if !s.transitive {
		return true
	}
	v, ok := d.Optional()
	return !ok || !v
}

func (s *OptionalDependencySelector) DeriveChild(PolicyContext) DependencySelector {
	if s.transitive {
		return s
	}
	return &OptionalDependencySelector{transitive: true}
}

// ExclusionDependencySelector rejects any dependency matched by an
// accumulated set of Exclusions, growing the set by each traversed
// dependency's own Exclusions as the collector descends (spec §3, §6).
type ExclusionDependencySelector struct {
	exclusions exclusionSet
}

// NewExclusionDependencySelector returns a selector starting from the given
// root-level exclusions (often empty).
func NewExclusionDependencySelector(initial []Exclusion) *ExclusionDependencySelector {
	return &ExclusionDependencySelector{exclusions: newExclusionSet(initial)}
}

func (s *ExclusionDependencySelector) Select(d Dependency) bool {
	return !s.exclusions.excludes(d.Artifact())
}

func (s *ExclusionDependencySelector) DeriveChild(ctx PolicyContext) DependencySelector {
	merged := s.exclusions.union(ctx.Dependency.Exclusions())
	if s.exclusions.equal(merged) {
		return s
	}
	return &ExclusionDependencySelector{exclusions: merged}
}

// ScopeDependencySelector rejects dependencies whose declared scope is in a
// blocked set, at every level including the direct one (DeriveChild returns
// the same selector).
type ScopeDependencySelector struct {
	blocked map[string]bool
}

// NewScopeDependencySelector returns a selector blocking the given scopes.
func NewScopeDependencySelector(blocked ...string) *ScopeDependencySelector {
	m := make(map[string]bool, len(blocked))
	for _, s := range blocked {
		m[s] = true
	}
	return &ScopeDependencySelector{blocked: m}
}

func (s *ScopeDependencySelector) Select(d Dependency) bool {
	return !s.blocked[d.Scope()]
}

func (s *ScopeDependencySelector) DeriveChild(PolicyContext) DependencySelector { return s }

// AndDependencySelector requires every member selector to accept.
type AndDependencySelector struct {
	members []DependencySelector
}

// NewAndDependencySelector combines selectors with AND semantics.
func NewAndDependencySelector(members ...DependencySelector) *AndDependencySelector {
	return &AndDependencySelector{members: members}
}

func (s *AndDependencySelector) Select(d Dependency) bool {
	for _, m := range s.members {
		if !m.Select(d) {
			return false
		}
	}
	return true
}

func (s *AndDependencySelector) DeriveChild(ctx PolicyContext) DependencySelector {
	next := make([]DependencySelector, len(s.members))
	changed := false
	for i, m := range s.members {
		next[i] = m.DeriveChild(ctx)
		if next[i] != m {
			changed = true
		}
	}
	if !changed {
		return s
	}
	return &AndDependencySelector{members: next}
}

// ---- DependencyManager implementations ----

// NoopDependencyManager applies no overrides and never changes.
type NoopDependencyManager struct{}

func (NoopDependencyManager) Manage(Dependency) DependencyManagement       { return DependencyManagement{} }
func (NoopDependencyManager) DeriveChild(PolicyContext) DependencyManager { return NoopDependencyManager{} }

// NewDefaultDependencyManager returns the no-op manager.
func NewDefaultDependencyManager() DependencyManager { return NoopDependencyManager{} }

// NearestDependencyManager pins version/scope/optionality/exclusions by
// GACE, matching Maven's nearest-declaration dependencyManagement semantics:
// an entry established closer to the root always wins over one discovered
// deeper, so DeriveChild never overwrites an existing GACE entry.
type NearestDependencyManager struct {
	byGACE map[string]Dependency
}

// NewNearestDependencyManager seeds the manager with the root's managed
// dependency list (spec §3, §4.3).
func NewNearestDependencyManager(managed []Dependency) *NearestDependencyManager {
	m := &NearestDependencyManager{byGACE: make(map[string]Dependency, len(managed))}
	for _, d := range managed {
		gace := d.Artifact().GACE()
		if _, ok := m.byGACE[gace]; !ok {
			m.byGACE[gace] = d
		}
	}
	return m
}

func (m *NearestDependencyManager) Manage(d Dependency) DependencyManagement {
	managed, ok := m.byGACE[d.Artifact().GACE()]
	if !ok {
		return DependencyManagement{}
	}
	var mgmt DependencyManagement
	if managed.Artifact().Version() != "" && managed.Artifact().Version() != d.Artifact().Version() {
		v := managed.Artifact().Version()
		mgmt.Version = &v
	}
	if managed.Scope() != "" && managed.Scope() != d.Scope() {
		s := managed.Scope()
		mgmt.Scope = &s
	}
	if v, set := managed.Optional(); set {
		cur, curSet := d.Optional()
		if !curSet || cur != v {
			mgmt.Optional = &v
		}
	}
	if excl := managed.Exclusions(); len(excl) > 0 {
		mgmt.Exclusions = excl
	}
	return mgmt
}

func (m *NearestDependencyManager) DeriveChild(ctx PolicyContext) DependencyManager {
	if len(ctx.Descriptor.ManagedDependencies) == 0 {
		return m
	}
	next := make(map[string]Dependency, len(m.byGACE))
	for k, v := range m.byGACE {
		next[k] = v
	}
	changed := false
	for _, d := range ctx.Descriptor.ManagedDependencies {
		gace := d.Artifact().GACE()
		if _, ok := next[gace]; !ok {
			next[gace] = d
			changed = true
		}
	}
	if !changed {
		return m
	}
	return &NearestDependencyManager{byGACE: next}
}

// ---- DependencyTraverser implementations ----

// staticTraverser always returns the same traverse decision and never
// changes; it is the default (traverse everything).
type staticTraverser struct{ traverse bool }

func (s staticTraverser) Traverse(Dependency) bool                      { return s.traverse }
func (s staticTraverser) DeriveChild(PolicyContext) DependencyTraverser { return s }

// NewDefaultDependencyTraverser returns a traverser that recurses into
// every dependency.
func NewDefaultDependencyTraverser() DependencyTraverser { return staticTraverser{traverse: true} }

// ScopeDependencyTraverser stops recursion once a dependency's scope is in
// a configured cutoff set -- e.g. never descend into "test"/"provided"
// dependencies' own transitive graph.
type ScopeDependencyTraverser struct {
	cutoff map[string]bool
}

// NewScopeDependencyTraverser returns a traverser cutting off recursion at
// the given scopes.
func NewScopeDependencyTraverser(cutoff ...string) *ScopeDependencyTraverser {
	m := make(map[string]bool, len(cutoff))
	for _, s := range cutoff {
		m[s] = true
	}
	return &ScopeDependencyTraverser{cutoff: m}
}

func (t *ScopeDependencyTraverser) Traverse(d Dependency) bool { return !t.cutoff[d.Scope()] }
func (t *ScopeDependencyTraverser) DeriveChild(PolicyContext) DependencyTraverser { return t }

// ---- VersionFilter implementations ----

// noopVersionFilter passes every candidate through unchanged.
type noopVersionFilter struct{}

func (noopVersionFilter) Filter(*FilterContext)                     {}
func (noopVersionFilter) DeriveChild(PolicyContext) VersionFilter { return noopVersionFilter{} }

// NewDefaultVersionFilter returns the pass-through filter.
func NewDefaultVersionFilter() VersionFilter { return noopVersionFilter{} }

// SnapshotVersionFilter removes versions whose string carries a "-SNAPSHOT"
// qualifier once past the direct level, matching the common policy of only
// ever accepting snapshots the root project declared explicitly.
type SnapshotVersionFilter struct {
	transitive bool
}

// NewSnapshotVersionFilter returns a filter excluding snapshot versions once
// transitive is true.
func NewSnapshotVersionFilter() *SnapshotVersionFilter { return &SnapshotVersionFilter{} }

func (f *SnapshotVersionFilter) Filter(ctx *FilterContext) {
	if !f.transitive {
		return
	}
	out := ctx.Candidates[:0]
	for _, v := range ctx.Candidates {
		if !isSnapshot(v) {
			out = append(out, v)
		}
	}
	ctx.Candidates = out
}

func isSnapshot(v Version) bool {
	s := string(v)
	return len(s) >= 9 && s[len(s)-9:] == "-SNAPSHOT"
}

func (f *SnapshotVersionFilter) DeriveChild(PolicyContext) VersionFilter {
	if f.transitive {
		return f
	}
	return &SnapshotVersionFilter{transitive: true}
}
