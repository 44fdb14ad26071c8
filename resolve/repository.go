package resolve

// RepositoryPolicy captures whether a repository serves a given kind of
// artifact (release or snapshot) at all; per spec §3 policies are compared
// for ConstraintKey purposes by the enabled flag alone.
type RepositoryPolicy struct {
	Enabled bool
}

// RemoteRepository identifies a remote source of descriptors/artifacts. The
// collector never talks to one directly; it is passed through to the
// external DescriptorSource/VersionRangeSource and used locally only for
// identity/equality comparisons (cache keys) and the repo-id path-safety
// helper.
type RemoteRepository struct {
	ID          string
	ContentType string
	URL         string
	Releases    RepositoryPolicy
	Snapshots   RepositoryPolicy
	MirrorOf    []string
	IsManager   bool
	Blocked     bool
}

// constraintKeyEqual reports whether r and o are interchangeable for the
// purposes of DataPool's per-artifact VersionRangeResult cache key (spec
// §4.2): same id/url/content-type/manager/blocked/mirror list, and policies
// equal only by their enabled flag.
func (r RemoteRepository) constraintKeyEqual(o RemoteRepository) bool {
	if r.ID != o.ID || r.URL != o.URL || r.ContentType != o.ContentType {
		return false
	}
	if r.IsManager != o.IsManager || r.Blocked != o.Blocked {
		return false
	}
	if r.Releases.Enabled != o.Releases.Enabled || r.Snapshots.Enabled != o.Snapshots.Enabled {
		return false
	}
	if len(r.MirrorOf) != len(o.MirrorOf) {
		return false
	}
	for i := range r.MirrorOf {
		if r.MirrorOf[i] != o.MirrorOf[i] {
			return false
		}
	}
	return true
}

// reposEqual compares two ordered repository lists using constraintKeyEqual
// element-wise; this is the "repositories-with-policy-flags-equal" half of a
// ConstraintKey/GraphKey (spec §4.2).
func reposEqual(a, b []RemoteRepository) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].constraintKeyEqual(b[i]) {
			return false
		}
	}
	return true
}

// reposKey returns a deterministic string encoding of an ordered repository
// list, suitable as part of a cache key.
func reposKey(repos []RemoteRepository) string {
	s := ""
	for _, r := range repos {
		s += r.ID + "!" + r.URL + "!" + r.ContentType + "|"
		if r.Releases.Enabled {
			s += "R"
		}
		if r.Snapshots.Enabled {
			s += "S"
		}
		if r.IsManager {
			s += "M"
		}
		if r.Blocked {
			s += "B"
		}
		s += ";"
	}
	return s
}

// isCanonicalCentral reports whether r is the well-known Maven Central
// repository under any of its canonical URL spellings, per spec §6.
func isCanonicalCentral(r RemoteRepository) bool {
	if r.ID != "central" || r.ContentType != "" && r.ContentType != "default" {
		return false
	}
	if r.IsManager || r.Blocked || len(r.MirrorOf) != 0 {
		return false
	}
	if !r.Releases.Enabled || r.Snapshots.Enabled {
		return false
	}
	switch trimTrailingSlash(r.URL) {
	case "https://repo.maven.apache.org/maven2",
		"https://repo1.maven.org/maven2",
		"https://central.maven.org/maven2":
		return true
	}
	return false
}

func trimTrailingSlash(s string) string {
	if len(s) > 0 && s[len(s)-1] == '/' {
		return s[:len(s)-1]
	}
	return s
}
