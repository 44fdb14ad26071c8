package resolve

import "strings"

// Version is an opaque version token. The collector never interprets the
// string itself; all ordering and matching is delegated to a Comparator
// (spec §1 Non-goals: "implementing specific version-comparison semantics
// beyond the contract in this section").
type Version string

// Comparator totally orders a set of Versions and matches them against range
// expressions. A concrete implementation (e.g. resolve/semver.Scheme) is
// supplied by the embedding application; resolve itself only depends on this
// contract.
type Comparator interface {
	// Compare returns <0, 0, >0 as a < b, a == b, a > b.
	Compare(a, b Version) int
	// Matches reports whether v satisfies the range/recommendation
	// expression expr.
	Matches(v Version, expr string) bool
}

// VersionConstraint is a parsed constraint: either a range expression (e.g.
// "[1.0,2.0)") or a single recommended version. The zero value matches
// anything.
type VersionConstraint struct {
	expr        string
	recommended bool
}

// NewRangeConstraint builds a VersionConstraint from a range expression.
func NewRangeConstraint(expr string) VersionConstraint {
	return VersionConstraint{expr: expr}
}

// NewRecommendedConstraint builds a VersionConstraint pinning a single
// recommended version (still subject to range-filtering if the surrounding
// context supplies one).
func NewRecommendedConstraint(version string) VersionConstraint {
	return VersionConstraint{expr: version, recommended: true}
}

// IsRange reports whether the constraint is a range expression as opposed to
// a bare recommended version.
func (c VersionConstraint) IsRange() bool {
	return !c.recommended && strings.ContainsAny(c.expr, "[](),")
}

// Expression returns the raw constraint text.
func (c VersionConstraint) Expression() string { return c.expr }

// Matches reports whether v satisfies the constraint under cmp.
func (c VersionConstraint) Matches(v Version, cmp Comparator) bool {
	if c.expr == "" {
		return true
	}
	if c.recommended {
		return string(v) == c.expr
	}
	return cmp.Matches(v, c.expr)
}

func (c VersionConstraint) String() string { return c.expr }

// VersionRangeResult is the output of resolving a VersionConstraint against
// a set of repositories: the ordered candidate versions (tie-break order is
// the order supplied here, per spec §4.3), the repository each version came
// from, and the constraint that produced it.
type VersionRangeResult struct {
	Constraint VersionConstraint
	Versions   []Version
	Origin     map[Version]RemoteRepository
}

// RepositoryOf returns the repository a version was reported from, if known.
func (r VersionRangeResult) RepositoryOf(v Version) (RemoteRepository, bool) {
	if r.Origin == nil {
		return RemoteRepository{}, false
	}
	repo, ok := r.Origin[v]
	return repo, ok
}
