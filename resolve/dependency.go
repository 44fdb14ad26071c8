package resolve

// Well-known scope strings. ScopeDeriver/ScopeSelector implementations are
// free to use other strings; these are simply the defaults the collector and
// the default Maven-like policies recognize (spec Glossary: "Scope").
const (
	ScopeCompile  = "compile"
	ScopeRuntime  = "runtime"
	ScopeProvided = "provided"
	ScopeTest     = "test"
	ScopeSystem   = "system"
)

// Dependency pairs an Artifact with its role in the graph: the scope it's
// used at, whether it's optional, and the exclusions it carries. It is
// immutable; every setter returns a new value when the field actually
// changes, the same instance otherwise (spec §3).
type Dependency struct {
	artifact   Artifact
	scope      string
	optional   *bool
	exclusions exclusionSet
}

// NewDependency builds a Dependency. scope defaults to ScopeCompile when
// empty, matching a bare "no scope specified" declaration.
func NewDependency(artifact Artifact, scope string) Dependency {
	if scope == "" {
		scope = ScopeCompile
	}
	return Dependency{artifact: artifact, scope: scope}
}

func (d Dependency) Artifact() Artifact { return d.artifact }
func (d Dependency) Scope() string      { return d.scope }

// Optional reports the dependency's optionality and whether it was ever set
// at all (a nil optionality is distinct from an explicit false, per spec §3's
// "optional (nullable)").
func (d Dependency) Optional() (value bool, isSet bool) {
	if d.optional == nil {
		return false, false
	}
	return *d.optional, true
}

func (d Dependency) Exclusions() []Exclusion { return d.exclusions.slice() }

func (d Dependency) IsExcludedBy(a Artifact) bool { return d.exclusions.excludes(a) }

// WithArtifact returns the same Dependency if artifact is unchanged, else a
// copy carrying the new artifact.
func (d Dependency) WithArtifact(a Artifact) Dependency {
	if d.artifact.Equal(a) {
		return d
	}
	nd := d
	nd.artifact = a
	return nd
}

// WithScope returns the same Dependency if scope is unchanged, else a copy.
func (d Dependency) WithScope(scope string) Dependency {
	if d.scope == scope {
		return d
	}
	nd := d
	nd.scope = scope
	return nd
}

// WithOptional returns a copy with optionality pinned to value.
func (d Dependency) WithOptional(value bool) Dependency {
	if d.optional != nil && *d.optional == value {
		return d
	}
	nd := d
	v := value
	nd.optional = &v
	return nd
}

// WithExclusions returns a copy whose exclusion set is replaced (order- and
// duplicate-normalized) by items.
func (d Dependency) WithExclusions(items []Exclusion) Dependency {
	ns := newExclusionSet(items)
	if d.exclusions.equal(ns) {
		return d
	}
	nd := d
	nd.exclusions = ns
	return nd
}

// AddExclusions merges more into the existing exclusion set, preserving
// order and de-duplicating.
func (d Dependency) AddExclusions(more []Exclusion) Dependency {
	merged := d.exclusions.union(more)
	if d.exclusions.equal(merged) {
		return d
	}
	nd := d
	nd.exclusions = merged
	return nd
}

// Equal reports whether d and o carry identical artifact, scope, optionality
// and exclusion set.
func (d Dependency) Equal(o Dependency) bool {
	dv, dok := d.Optional()
	ov, ook := o.Optional()
	return d.artifact.Equal(o.artifact) &&
		d.scope == o.scope &&
		dok == ook && (!dok || dv == ov) &&
		d.exclusions.equal(o.exclusions)
}

// internKey is the string used to intern a Dependency against the pool.
func (d Dependency) internKey() string {
	v, ok := d.Optional()
	opt := "?"
	if ok {
		if v {
			opt = "T"
		} else {
			opt = "F"
		}
	}
	key := d.artifact.internKey() + "|" + d.scope + "|" + opt
	for _, e := range d.exclusions.items {
		key += "|" + e.GroupID + ":" + e.ArtifactID + ":" + e.Classifier + ":" + e.Extension
	}
	return key
}
