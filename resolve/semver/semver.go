// Package semver supplies the default resolve.Comparator, built on
// Masterminds/semver. Callers needing Maven-range or other version schemes
// supply their own Comparator; resolve's core never depends on this
// package directly.
package semver

import (
	mastersemver "github.com/Masterminds/semver"

	"github.com/artifactgraph/resolve/resolve"
)

// Scheme implements resolve.Comparator over Masterminds/semver versions.
// Versions that fail to parse as semver sort below every version that does,
// and are compared lexically against one another; this keeps Compare total
// even over a mixed or malformed candidate list.
type Scheme struct{}

// Compare orders a and b, falling back to lexical ordering if either fails
// to parse as semver.
func (Scheme) Compare(a, b resolve.Version) int {
	va, erra := mastersemver.NewVersion(string(a))
	vb, errb := mastersemver.NewVersion(string(b))
	switch {
	case erra == nil && errb == nil:
		return va.Compare(vb)
	case erra != nil && errb != nil:
		return compareLexical(string(a), string(b))
	case erra != nil:
		return -1
	default:
		return 1
	}
}

// Matches reports whether v satisfies the Masterminds/semver constraint
// expression expr.
func (Scheme) Matches(v resolve.Version, expr string) bool {
	cs, err := mastersemver.NewConstraint(expr)
	if err != nil {
		return string(v) == expr
	}
	ver, err := mastersemver.NewVersion(string(v))
	if err != nil {
		return false
	}
	return cs.Check(ver)
}

func compareLexical(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
