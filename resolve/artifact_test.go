package resolve

import "testing"

func TestParseArtifact(t *testing.T) {
	cases := []struct {
		in         string
		groupID    string
		artifactID string
		ext        string
		classifier string
		version    string
		wantErr    bool
	}{
		{in: "com.example:foo:1.0", groupID: "com.example", artifactID: "foo", ext: "jar", version: "1.0"},
		{in: "com.example:foo:war:1.0", groupID: "com.example", artifactID: "foo", ext: "war", version: "1.0"},
		{in: "com.example:foo:jar:tests:1.0", groupID: "com.example", artifactID: "foo", ext: "jar", classifier: "tests", version: "1.0"},
		{in: "com.example:foo::tests:1.0", groupID: "com.example", artifactID: "foo", ext: "jar", classifier: "tests", version: "1.0"},
		{in: "not-a-coordinate", wantErr: true},
		{in: "a:b", wantErr: true},
	}

	for _, c := range cases {
		a, err := ParseArtifact(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseArtifact(%q): expected error, got none", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseArtifact(%q): unexpected error: %s", c.in, err)
		}
		if a.GroupID() != c.groupID || a.ArtifactID() != c.artifactID || a.Extension() != c.ext ||
			a.Classifier() != c.classifier || a.Version() != c.version {
			t.Errorf("ParseArtifact(%q) = %+v, want g=%s a=%s e=%s c=%s v=%s",
				c.in, a, c.groupID, c.artifactID, c.ext, c.classifier, c.version)
		}
	}
}

func TestArtifactGACEIgnoresVersion(t *testing.T) {
	a1, _ := ParseArtifact("com.example:foo:1.0")
	a2, _ := ParseArtifact("com.example:foo:2.0")
	if a1.GACE() != a2.GACE() {
		t.Errorf("GACE differs across versions: %q vs %q", a1.GACE(), a2.GACE())
	}
}

func TestArtifactWithVersionIdentityWhenUnchanged(t *testing.T) {
	a, _ := ParseArtifact("com.example:foo:1.0")
	if got := a.WithVersion("1.0"); got.Version() != a.Version() {
		t.Errorf("WithVersion with same value changed version: %q", got.Version())
	}
	na := a.WithVersion("2.0")
	if na.Version() != "2.0" || a.Version() != "1.0" {
		t.Errorf("WithVersion mutated receiver or didn't apply: old=%q new=%q", a.Version(), na.Version())
	}
}

func TestArtifactBaseVersionStripsSnapshotTimestamp(t *testing.T) {
	a, _ := ParseArtifact("com.example:foo:1.0-20210101.120000-1")
	if got, want := a.BaseVersion(), "1.0-SNAPSHOT"; got != want {
		t.Errorf("BaseVersion() = %q, want %q", got, want)
	}

	release, _ := ParseArtifact("com.example:foo:1.0")
	if got, want := release.BaseVersion(), "1.0"; got != want {
		t.Errorf("BaseVersion() for a release version = %q, want %q", got, want)
	}
}

func TestArtifactEqual(t *testing.T) {
	a1, _ := ParseArtifact("com.example:foo:1.0")
	a2, _ := ParseArtifact("com.example:foo:1.0")
	a3, _ := ParseArtifact("com.example:foo:1.1")
	if !a1.Equal(a2) {
		t.Error("identical coordinates should be equal")
	}
	if a1.Equal(a3) {
		t.Error("different versions should not be equal")
	}
}

func TestArtifactStringRoundTripsShorthand(t *testing.T) {
	a, _ := ParseArtifact("com.example:foo:1.0")
	if got := a.String(); got != "com.example:foo:1.0" {
		t.Errorf("String() = %q, want default-extension shorthand", got)
	}

	a2, _ := ParseArtifact("com.example:foo:jar:tests:1.0")
	if got := a2.String(); got != "com.example:foo:jar:tests:1.0" {
		t.Errorf("String() = %q, want full form with classifier", got)
	}
}

func TestExclusionExcludesWildcards(t *testing.T) {
	ex := NewExclusion("com.example", "*", "", "")
	a, _ := ParseArtifact("com.example:foo:1.0")
	b, _ := ParseArtifact("org.other:foo:1.0")
	if !ex.Excludes(a) {
		t.Error("exclusion should match same group, any artifact")
	}
	if ex.Excludes(b) {
		t.Error("exclusion should not match a different group")
	}
}
